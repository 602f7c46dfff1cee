// Package client provides a typed HTTP client for the MoneyLens API.
//
// Failed calls return the server's error as an *errors.AppError with the
// code and message unchanged. Calls are never retried.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	apperrors "moneylens/internal/errors"
	"moneylens/internal/models"
)

// Client talks to the /api/v1 routes. After Login every request carries the
// access token.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu    sync.RWMutex
	token string
}

// NewClient creates a client for the API at baseURL. A nil httpClient uses
// http.DefaultClient.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// SetToken replaces the bearer token sent with each request.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) bearer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// do sends body as JSON and decodes a 2xx response into out, which may be
// nil.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	target := c.baseURL + "/api/v1" + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if token := c.bearer(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(method, path, resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s %s response: %w", method, path, err)
	}
	return nil
}

func decodeError(method, path string, resp *http.Response) error {
	var body errorBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.Error.Code == "" {
		return fmt.Errorf("%s %s: unexpected status %d", method, path, resp.StatusCode)
	}
	return &apperrors.AppError{
		Code:       body.Error.Code,
		Message:    body.Error.Message,
		StatusCode: resp.StatusCode,
	}
}

// Login exchanges credentials for a token pair and uses the access token
// from then on. It returns the signed-in user's id.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	req := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{Email: email, Password: password}

	var resp struct {
		AccessToken string `json:"access_token"`
		User        struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, req, &resp); err != nil {
		return "", err
	}
	c.SetToken(resp.AccessToken)
	return resp.User.ID, nil
}

// filterQuery encodes a filter the way the list and sum routes read it.
func filterQuery(f models.TransactionFilter) url.Values {
	q := url.Values{}
	if f.From != nil {
		q.Set("from", f.From.String())
	}
	if f.To != nil {
		q.Set("to", f.To.String())
	}
	if f.Type != nil {
		q.Set("type", string(*f.Type))
	}
	if f.Category != nil {
		q.Set("category", *f.Category)
	}
	if f.BankAccount != nil {
		q.Set("bank_account", *f.BankAccount)
	}
	if len(f.TagsAny) > 0 {
		q.Set("tags_any", strings.Join(f.TagsAny, ","))
	}
	if len(f.TagsAll) > 0 {
		q.Set("tags_all", strings.Join(f.TagsAll, ","))
	}
	if f.OrderBy != "" {
		q.Set("order_by", f.OrderBy)
	}
	if f.OrderDir != "" {
		q.Set("order_dir", f.OrderDir)
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	if f.Offset > 0 {
		q.Set("offset", strconv.Itoa(f.Offset))
	}
	return q
}

// ListTransactions returns the transactions matching filter.
func (c *Client) ListTransactions(ctx context.Context, filter models.TransactionFilter) ([]models.Transaction, error) {
	var resp struct {
		Transactions []models.Transaction `json:"transactions"`
	}
	if err := c.do(ctx, http.MethodGet, "/transactions", filterQuery(filter), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Transactions, nil
}

// CreateTransaction records a transaction of the given type.
func (c *Client) CreateTransaction(ctx context.Context, txType models.TransactionType, input models.TransactionInput) (*models.Transaction, error) {
	if !txType.Valid() {
		return nil, apperrors.ErrInvalidTransactionType
	}
	var resp struct {
		Transaction models.Transaction `json:"transaction"`
	}
	if err := c.do(ctx, http.MethodPost, "/transactions/"+string(txType), nil, input, &resp); err != nil {
		return nil, err
	}
	return &resp.Transaction, nil
}

// UpdateTransaction sends only the fields present in changes.
func (c *Client) UpdateTransaction(ctx context.Context, id string, changes models.TransactionChanges) (*models.Transaction, error) {
	var resp struct {
		Transaction models.Transaction `json:"transaction"`
	}
	if err := c.do(ctx, http.MethodPatch, "/transactions/"+url.PathEscape(id), nil, changes, &resp); err != nil {
		return nil, err
	}
	return &resp.Transaction, nil
}

// DeleteTransaction removes one transaction.
func (c *Client) DeleteTransaction(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/transactions/"+url.PathEscape(id), nil, nil, nil)
}

// DeleteTransactions removes the listed transactions and returns how many
// went away.
func (c *Client) DeleteTransactions(ctx context.Context, ids []string) (int64, error) {
	req := struct {
		IDs []string `json:"ids"`
	}{IDs: ids}
	var resp struct {
		Deleted int64 `json:"deleted"`
	}
	if err := c.do(ctx, http.MethodDelete, "/transactions", nil, req, &resp); err != nil {
		return 0, err
	}
	return resp.Deleted, nil
}

// SumTransactions totals the amount of every matching transaction.
func (c *Client) SumTransactions(ctx context.Context, filter models.TransactionFilter) (decimal.Decimal, error) {
	filter.OrderBy, filter.OrderDir, filter.Limit, filter.Offset = "", "", 0, 0
	var resp struct {
		Total decimal.Decimal `json:"total"`
	}
	if err := c.do(ctx, http.MethodGet, "/transactions/sum", filterQuery(filter), nil, &resp); err != nil {
		return decimal.Zero, err
	}
	return resp.Total, nil
}

func periodQuery(key string, period *models.Date) url.Values {
	q := url.Values{}
	if period != nil {
		q.Set(key, period.String())
	}
	return q
}

// MonthlyTotals returns per-type totals for month, or for every month when
// month is nil.
func (c *Client) MonthlyTotals(ctx context.Context, month *models.Date) ([]models.MonthlyTotal, error) {
	var resp struct {
		Totals []models.MonthlyTotal `json:"totals"`
	}
	if err := c.do(ctx, http.MethodGet, "/totals/monthly", periodQuery("month", month), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Totals, nil
}

// YearlyTotals returns per-type totals for year, or for every year.
func (c *Client) YearlyTotals(ctx context.Context, year *models.Date) ([]models.YearlyTotal, error) {
	var resp struct {
		Totals []models.YearlyTotal `json:"totals"`
	}
	if err := c.do(ctx, http.MethodGet, "/totals/yearly", periodQuery("year", year), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Totals, nil
}

// MonthlyCategoryTotals returns per-category totals for month.
func (c *Client) MonthlyCategoryTotals(ctx context.Context, month *models.Date) ([]models.MonthlyCategoryTotal, error) {
	var resp struct {
		Totals []models.MonthlyCategoryTotal `json:"totals"`
	}
	if err := c.do(ctx, http.MethodGet, "/totals/monthly/categories", periodQuery("month", month), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Totals, nil
}

// MonthOverview returns the dashboard figures for the month containing
// month.
func (c *Client) MonthOverview(ctx context.Context, month models.Date) (*models.MonthOverview, error) {
	var resp struct {
		Overview models.MonthOverview `json:"overview"`
	}
	if err := c.do(ctx, http.MethodGet, "/totals/overview", periodQuery("month", &month), nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Overview, nil
}
