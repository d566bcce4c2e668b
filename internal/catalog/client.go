// Package catalog provides a client for the Mauro Data Mapper catalog API.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Sunspark/MauroDataCollector/internal/logging"
	"github.com/Sunspark/MauroDataCollector/internal/retry"
	"github.com/Sunspark/MauroDataCollector/pkg/mauro"
)

// nodeResponse is the subset of the path endpoint's JSON body the client reads.
type nodeResponse struct {
	ID         string  `json:"id"`
	Path       *string `json:"path"`
	Label      string  `json:"label"`
	DomainType string  `json:"domainType"`
	Finalised  bool    `json:"finalised"`
	BranchName string  `json:"branchName"`
}

// Client resolves catalog paths. Its URL and key are fixed at construction.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	executor   *retry.Executor
	logger     *zap.Logger
}

var _ mauro.Catalog = (*Client)(nil)

// NewClient validates cfg and creates a client. It performs no network I/O.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger = logging.OrNop(logger).Named("catalog")

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = mauro.DefaultHTTPTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	maxAttempts := cfg.MaxAttempts
	if maxAttempts < 0 {
		maxAttempts = 0
	}
	var opts []retry.BackoffOption
	if cfg.InitialDelay > 0 {
		opts = append(opts, retry.WithInitialDelay(cfg.InitialDelay))
	}
	if cfg.MaxDelay > 0 {
		opts = append(opts, retry.WithMaxDelay(cfg.MaxDelay))
	}
	executor := retry.NewExecutor(
		retry.NewHTTPErrorClassifier(),
		retry.NewExponentialBackoff(maxAttempts, opts...),
	).WithOnRetry(func(attempt int, err error, delay time.Duration) {
		logger.Warn("Retrying catalog lookup",
			zap.Int("attempt", attempt+1),
			zap.Duration("delay", delay),
			zap.Error(err))
	})

	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		httpClient: httpClient,
		executor:   executor,
		logger:     logger,
	}, nil
}

// BaseURL returns the validated base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ResolvePath looks up a serialized hierarchy path. Transient failures are
// retried; the result is always exactly one LookupOutcome.
func (c *Client) ResolvePath(ctx context.Context, path string) mauro.LookupOutcome {
	endpoint := joinURL(c.baseURL, "path/"+url.PathEscape(path))

	var outcome mauro.LookupOutcome
	err := c.executor.Execute(ctx, func(ctx context.Context) error {
		var attemptErr error
		outcome, attemptErr = c.lookupOnce(ctx, endpoint, path)
		return attemptErr
	})
	if err != nil {
		var statusErr *retry.StatusError
		if errors.As(err, &statusErr) {
			return mauro.TransportError(statusErr.StatusCode, err)
		}
		return mauro.TransportError(0, err)
	}
	return outcome
}

// lookupOnce performs one request. A returned error means the attempt failed
// at the transport level and may be retried.
func (c *Client) lookupOnce(ctx context.Context, endpoint, path string) (mauro.LookupOutcome, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return mauro.LookupOutcome{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set(mauro.APIKeyHeader, c.apiKey)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("Resolving path",
		zap.String("url", endpoint),
		zap.String("api_key", logging.RedactAPIKey(c.apiKey)))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return mauro.LookupOutcome{}, fmt.Errorf("failed to call catalog: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return mauro.LookupOutcome{}, fmt.Errorf("failed to read response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusNotFound:
		return mauro.NotFound(), nil
	case http.StatusOK:
		return c.classify(path, body), nil
	}

	c.logger.Debug("Catalog returned error",
		zap.Int("status", resp.StatusCode),
		zap.String("body", truncate(string(body), 512)))
	return mauro.LookupOutcome{}, &retry.StatusError{StatusCode: resp.StatusCode}
}

func (c *Client) classify(requested string, body []byte) mauro.LookupOutcome {
	var node nodeResponse
	if err := json.Unmarshal(body, &node); err != nil {
		return mauro.TransportError(http.StatusOK, fmt.Errorf("failed to parse response: %w", err))
	}
	if node.ID == "" {
		return mauro.TransportError(http.StatusOK, errors.New("response has no node id"))
	}

	// the catalog may answer with its closest match; only an identical path counts
	if node.Path == nil || *node.Path != requested {
		returned := ""
		if node.Path != nil {
			returned = *node.Path
		}
		c.logger.Debug("Catalog returned a different path",
			zap.String("requested", requested),
			zap.String("returned", returned))
		return mauro.Ambiguous()
	}

	// Path is attached by the caller, which holds the typed hierarchy
	ref := mauro.CatalogNodeRef{
		ID:         node.ID,
		Label:      node.Label,
		DomainType: node.DomainType,
	}
	if node.Finalised {
		return mauro.ResolvedFinalised(ref)
	}
	return mauro.ResolvedDraft(ref)
}

// CreateNode is not available in this version of the client.
func (c *Client) CreateNode(ctx context.Context, path mauro.HierarchyPath, intents []mauro.PropertyWriteIntent) (mauro.CatalogNodeRef, error) {
	return mauro.CatalogNodeRef{}, fmt.Errorf("create %s: %w", path, mauro.ErrNotImplemented)
}

// UpdateNode is not available in this version of the client.
func (c *Client) UpdateNode(ctx context.Context, ref mauro.CatalogNodeRef, intents []mauro.PropertyWriteIntent) error {
	return fmt.Errorf("update %s: %w", ref.ID, mauro.ErrNotImplemented)
}

// BranchNode is not available in this version of the client.
// TODO: wire to the model-version branch endpoint once its request body is agreed.
func (c *Client) BranchNode(ctx context.Context, ref mauro.CatalogNodeRef) (mauro.CatalogNodeRef, error) {
	return mauro.CatalogNodeRef{}, fmt.Errorf("branch %s: %w", ref.ID, mauro.ErrNotImplemented)
}

// joinURL appends endpoint to base with exactly one slash between them.
func joinURL(base, endpoint string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(endpoint, "/")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
