package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Sunspark/MauroDataCollector/internal/extract"
	"github.com/Sunspark/MauroDataCollector/internal/sheet"
)

// EnvSourcePassword supplies the SQL Server password when --password is not set.
const EnvSourcePassword = "MAURO_SOURCE_PASSWORD"

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract table and column metadata into a Simple Excel Model",
	Long: `Extract reads the tables, views and columns of one database and writes
them as a Simple Excel Model workbook ready for the catalog's Excel importer.

The workbook has a DataModels sheet, an empty Enumerations sheet and one
sheet named after the server with a row per table and a row per column.`,
}

var extractMSSQLCmd = &cobra.Command{
	Use:   "mssql",
	Short: "Extract from SQL Server",
	Long: `Extract metadata from one SQL Server database using SQL authentication.

Table and column descriptions come from MS_Description extended properties.

Password:
  Use $MAURO_SOURCE_PASSWORD (or a .env file) rather than --password.

Examples:
  maurodc extract mssql --server 'db01\SQLEXPRESS' --db Sales --username reader
  maurodc extract mssql --server db01:1433 --db Sales --username reader -o sales.xlsx`,
	Args: cobra.NoArgs,
	RunE: runExtractMSSQL,
}

var extractPostgresCmd = &cobra.Command{
	Use:   "postgres",
	Short: "Extract from PostgreSQL",
	Long: `Extract metadata from one PostgreSQL database.

Table and column descriptions come from COMMENT ON. System schemas are skipped.

Examples:
  maurodc extract postgres --connection postgresql://reader@localhost:5432/sales`,
	Args: cobra.NoArgs,
	RunE: runExtractPostgres,
}

type extractFlagValues struct {
	output string

	server, database, username, password string
	encrypt, trustServerCert             bool

	connection string
}

var extractFlags extractFlagValues

func init() {
	rootCmd.AddCommand(extractCmd)
	extractCmd.AddCommand(extractMSSQLCmd, extractPostgresCmd)

	extractCmd.PersistentFlags().StringVarP(&extractFlags.output, "output", "o", "",
		"Output workbook (default <server>_<db>_ForMauro_<timestamp>.xlsx)")

	m := extractMSSQLCmd.Flags()
	m.StringVarP(&extractFlags.server, "server", "s", "", `Server as host, host:port or host\instance`)
	m.StringVarP(&extractFlags.database, "db", "d", "", "Database to extract")
	m.StringVarP(&extractFlags.username, "username", "U", "", "SQL login")
	m.StringVar(&extractFlags.password, "password", "", "SQL password (prefer $"+EnvSourcePassword+")")
	m.BoolVar(&extractFlags.encrypt, "encrypt", false, "Encrypt the connection")
	m.BoolVar(&extractFlags.trustServerCert, "trust-server-certificate", false, "Accept any server certificate")
	_ = extractMSSQLCmd.MarkFlagRequired("server")
	_ = extractMSSQLCmd.MarkFlagRequired("db")
	_ = extractMSSQLCmd.MarkFlagRequired("username")

	extractPostgresCmd.Flags().StringVar(&extractFlags.connection, "connection", "",
		"PostgreSQL connection string (URI or key=value)")
	_ = extractPostgresCmd.MarkFlagRequired("connection")
}

func runExtractMSSQL(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	run, err := startLogging("extract", settings)
	if err != nil {
		return err
	}
	defer run.Close()
	logger := run.Logger()

	password := extractFlags.password
	if !flagChanged(cmd, "password") {
		password = os.Getenv(EnvSourcePassword)
	}
	cfg := extract.MSSQLConfig{
		Server:                 extractFlags.server,
		Database:               extractFlags.database,
		Username:               extractFlags.username,
		Password:               password,
		Encrypt:                extractFlags.encrypt,
		TrustServerCertificate: extractFlags.trustServerCert,
	}
	logger.Info("Execution begins", zap.String("server", cfg.Server), zap.String("database", cfg.Database))

	ctx, cancel := signalContext()
	defer cancel()

	src, err := extract.NewMSSQL(ctx, cfg, logger)
	if err != nil {
		logger.Error("Connection failed", zap.Error(err))
		return err
	}
	defer src.Close()

	output := extractFlags.output
	if output == "" {
		output = extract.DefaultOutputFile(cfg.Server, cfg.Database, time.Now())
	}
	return extractTo(ctx, cmd, src, cfg.Server, output, logger)
}

func runExtractPostgres(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	run, err := startLogging("extract", settings)
	if err != nil {
		return err
	}
	defer run.Close()
	logger := run.Logger()

	ctx, cancel := signalContext()
	defer cancel()

	src, err := extract.NewPostgres(ctx, extractFlags.connection, logger)
	if err != nil {
		logger.Error("Connection failed", zap.Error(err))
		return err
	}
	defer src.Close()
	logger.Info("Execution begins", zap.String("server", src.Host()), zap.String("database", src.Database()))

	output := extractFlags.output
	if output == "" {
		output = extract.DefaultOutputFile(src.Host(), src.Database(), time.Now())
	}
	return extractTo(ctx, cmd, src, src.Host(), output, logger)
}

func extractTo(ctx context.Context, cmd *cobra.Command, src extract.Source, server, output string, logger *zap.Logger) error {
	schema, err := src.Extract(ctx)
	if err != nil {
		logger.Error("Extraction failed", zap.Error(err))
		return err
	}
	return writeModel(cmd, extract.BuildModel(server, src.Engine(), schema), output, logger)
}

// writeModel saves model and prints the output path to stdout.
func writeModel(cmd *cobra.Command, model *sheet.Model, output string, logger *zap.Logger) error {
	if err := model.Write(output); err != nil {
		logger.Error("Failed to write workbook", zap.String("output", output), zap.Error(err))
		return err
	}
	logger.Info("Execution ends", zap.String("output", output))
	fmt.Fprintln(cmd.OutOrStdout(), output)
	return nil
}
