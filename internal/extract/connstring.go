package extract

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/Sunspark/MauroDataCollector/pkg/mauro"
)

// PostgresConnString returns connStr in a form pgx can parse. URIs and
// libpq keyword/value strings pass through; ADO.NET strings
// (Host=h;Port=5432;Database=d;Username=u;Password=p) become a URI.
func PostgresConnString(connStr string) (string, error) {
	connStr = strings.TrimSpace(connStr)
	if connStr == "" {
		return "", &mauro.ConfigError{Field: "connection", Reason: "is required"}
	}
	if strings.HasPrefix(connStr, "postgresql://") || strings.HasPrefix(connStr, "postgres://") {
		return connStr, nil
	}
	if !strings.Contains(connStr, ";") {
		return connStr, nil
	}
	return parseADONET(connStr)
}

func parseADONET(connStr string) (string, error) {
	host, port, database := "localhost", 5432, "postgres"
	var user, password string
	query := url.Values{}

	for _, part := range strings.Split(connStr, ";") {
		key, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)

		switch strings.ToLower(key) {
		case "host", "server":
			host = value
		case "port":
			p, err := strconv.Atoi(value)
			if err != nil {
				return "", &mauro.ConfigError{Field: "connection port", Value: value, Reason: "must be a number"}
			}
			port = p
		case "database", "initial catalog":
			database = value
		case "username", "user id", "uid":
			user = value
		case "password", "pwd":
			password = value
		case "sslmode", "ssl mode":
			query.Set("sslmode", strings.ToLower(value))
		case "application name", "applicationname":
			query.Set("application_name", value)
		case "timeout", "connect timeout", "connecttimeout":
			query.Set("connect_timeout", value)
		}
	}

	u := &url.URL{
		Scheme:   "postgresql",
		Host:     fmt.Sprintf("%s:%d", host, port),
		Path:     "/" + database,
		RawQuery: query.Encode(),
	}
	switch {
	case user != "" && password != "":
		u.User = url.UserPassword(user, password)
	case user != "":
		u.User = url.User(user)
	}
	return u.String(), nil
}
