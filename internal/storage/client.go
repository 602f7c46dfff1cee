// Package storage is a client for the Supabase Storage REST API, used by
// the backup tool to keep database dumps in a bucket.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	apperrors "moneylens/internal/errors"
	"moneylens/internal/resilience"
)

var tracer = otel.Tracer("moneylens/storage")

// listPageSize matches the Storage API default page.
const listPageSize = 100

// Object is one entry of a bucket listing.
type Object struct {
	Name      string                 `json:"name"`
	ID        string                 `json:"id,omitempty"`
	UpdatedAt time.Time              `json:"updated_at"`
	CreatedAt time.Time              `json:"created_at"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// Client talks to one Supabase project's storage endpoint.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	cb         *gobreaker.CircuitBreaker
	cfg        resilience.Config
	logger     *zap.SugaredLogger
}

// NewClient creates a storage client. A nil httpClient uses a client with a
// 30s timeout.
func NewClient(httpClient *http.Client, baseURL, apiKey string, cfg resilience.Config, logger *zap.SugaredLogger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		cb:         resilience.NewCircuitBreaker("supabase-storage"),
		cfg:        cfg,
		logger:     logger,
	}
}

// StatusError is a non-2xx answer from the Storage API.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("storage returned status %d: %s", e.StatusCode, e.Body)
}

// doRequest sends one authenticated request and returns the response body.
// 4xx answers are marked permanent so they are not retried.
func (c *Client) doRequest(ctx context.Context, method, path, contentType string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/storage/v1/"+path, reader)
	if err != nil {
		return nil, resilience.Permanent(err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warnw("storage request failed", "method", method, "path", path, "error", err)
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warnw("storage non-2xx response", "method", method, "path", path, "status", resp.StatusCode)
		statusErr := &StatusError{StatusCode: resp.StatusCode, Body: string(data)}
		if resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return nil, resilience.Permanent(statusErr)
		}
		return nil, statusErr
	}
	c.logger.Debugw("storage request ok", "method", method, "path", path, "status", resp.StatusCode)
	return data, nil
}

// call runs one operation through the breaker and retry loop inside a span.
func (c *Client) call(ctx context.Context, op, bucket string, fn func(ctx context.Context) error) error {
	ctx, span := tracer.Start(ctx, "Storage."+op)
	defer span.End()
	span.SetAttributes(attribute.String("storage.bucket", bucket))

	err := resilience.Call(ctx, c.cb, c.cfg, func() error { return fn(ctx) })
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return apperrors.Wrap(apperrors.ErrUpstream, err)
	}
	return nil
}

// List returns the objects directly under prefix, sorted by name.
func (c *Client) List(ctx context.Context, bucket, prefix string) ([]Object, error) {
	payload, err := json.Marshal(map[string]interface{}{
		"prefix": prefix,
		"limit":  listPageSize,
		"offset": 0,
		"sortBy": map[string]string{"column": "name", "order": "asc"},
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var objects []Object
	err = c.call(ctx, "List", bucket, func(ctx context.Context) error {
		body, err := c.doRequest(ctx, http.MethodPost, "object/list/"+url.PathEscape(bucket), "application/json", payload)
		if err != nil {
			return err
		}
		objects = nil
		if err := json.Unmarshal(body, &objects); err != nil {
			return resilience.Permanent(fmt.Errorf("decode listing: %w", err))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return objects, nil
}

// Upload stores content at path and returns the object's full key
// ("bucket/path").
func (c *Client) Upload(ctx context.Context, bucket, path string, content []byte, contentType string) (string, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	var key string
	err := c.call(ctx, "Upload", bucket, func(ctx context.Context) error {
		body, err := c.doRequest(ctx, http.MethodPost, "object/"+url.PathEscape(bucket)+"/"+escapePath(path), contentType, content)
		if err != nil {
			return err
		}
		var resp struct {
			Key string `json:"Key"`
		}
		if err := json.Unmarshal(body, &resp); err != nil {
			return resilience.Permanent(fmt.Errorf("decode upload: %w", err))
		}
		key = resp.Key
		return nil
	})
	if err != nil {
		return "", err
	}
	if key == "" {
		key = bucket + "/" + path
	}
	return key, nil
}

// Remove deletes the given object paths and returns the objects the API
// reports as removed.
func (c *Client) Remove(ctx context.Context, bucket string, paths []string) ([]Object, error) {
	if len(paths) == 0 {
		return []Object{}, nil
	}
	payload, err := json.Marshal(map[string][]string{"prefixes": paths})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var removed []Object
	err = c.call(ctx, "Remove", bucket, func(ctx context.Context) error {
		body, err := c.doRequest(ctx, http.MethodDelete, "object/"+url.PathEscape(bucket), "application/json", payload)
		if err != nil {
			return err
		}
		removed = nil
		if err := json.Unmarshal(body, &removed); err != nil {
			return resilience.Permanent(fmt.Errorf("decode removal: %w", err))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}

func escapePath(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
