package client

import (
	"context"
	"net/http"
	"net/url"

	"moneylens/internal/models"
)

// ListCategories returns the categories with their usage counts, narrowed
// to txType when it is set.
func (c *Client) ListCategories(ctx context.Context, txType *models.TransactionType) ([]models.CategoryWithUsage, error) {
	q := url.Values{}
	if txType != nil {
		q.Set("type", string(*txType))
	}
	var resp struct {
		Categories []models.CategoryWithUsage `json:"categories"`
	}
	if err := c.do(ctx, http.MethodGet, "/categories", q, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Categories, nil
}

func (c *Client) CreateCategory(ctx context.Context, input models.CategoryInput) (*models.Category, error) {
	var resp struct {
		Category models.Category `json:"category"`
	}
	if err := c.do(ctx, http.MethodPost, "/categories", nil, input, &resp); err != nil {
		return nil, err
	}
	return &resp.Category, nil
}

func (c *Client) UpdateCategory(ctx context.Context, id string, changes models.ReferenceChanges) (*models.Category, error) {
	var resp struct {
		Category models.Category `json:"category"`
	}
	if err := c.do(ctx, http.MethodPatch, "/categories/"+url.PathEscape(id), nil, changes, &resp); err != nil {
		return nil, err
	}
	return &resp.Category, nil
}

func (c *Client) ListTags(ctx context.Context) ([]models.TagWithUsage, error) {
	var resp struct {
		Tags []models.TagWithUsage `json:"tags"`
	}
	if err := c.do(ctx, http.MethodGet, "/tags", nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Tags, nil
}

func (c *Client) CreateTag(ctx context.Context, input models.ReferenceInput) (*models.Tag, error) {
	var resp struct {
		Tag models.Tag `json:"tag"`
	}
	if err := c.do(ctx, http.MethodPost, "/tags", nil, input, &resp); err != nil {
		return nil, err
	}
	return &resp.Tag, nil
}

func (c *Client) UpdateTag(ctx context.Context, id string, changes models.ReferenceChanges) (*models.Tag, error) {
	var resp struct {
		Tag models.Tag `json:"tag"`
	}
	if err := c.do(ctx, http.MethodPatch, "/tags/"+url.PathEscape(id), nil, changes, &resp); err != nil {
		return nil, err
	}
	return &resp.Tag, nil
}

func (c *Client) ListBankAccounts(ctx context.Context) ([]models.BankAccountWithUsage, error) {
	var resp struct {
		BankAccounts []models.BankAccountWithUsage `json:"bank_accounts"`
	}
	if err := c.do(ctx, http.MethodGet, "/bank-accounts", nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.BankAccounts, nil
}

func (c *Client) CreateBankAccount(ctx context.Context, input models.ReferenceInput) (*models.BankAccount, error) {
	var resp struct {
		BankAccount models.BankAccount `json:"bank_account"`
	}
	if err := c.do(ctx, http.MethodPost, "/bank-accounts", nil, input, &resp); err != nil {
		return nil, err
	}
	return &resp.BankAccount, nil
}

func (c *Client) UpdateBankAccount(ctx context.Context, id string, changes models.ReferenceChanges) (*models.BankAccount, error) {
	var resp struct {
		BankAccount models.BankAccount `json:"bank_account"`
	}
	if err := c.do(ctx, http.MethodPatch, "/bank-accounts/"+url.PathEscape(id), nil, changes, &resp); err != nil {
		return nil, err
	}
	return &resp.BankAccount, nil
}

var referencePaths = map[models.ReferenceKind]string{
	models.ReferenceCategory:    "/categories/",
	models.ReferenceTag:         "/tags/",
	models.ReferenceBankAccount: "/bank-accounts/",
}

// SafeDelete removes a category, tag or bank account unless transactions
// still use it. A refusal is not an error: the result carries the count.
func (c *Client) SafeDelete(ctx context.Context, kind models.ReferenceKind, id string) (*models.SafeDeleteResult, error) {
	prefix, ok := referencePaths[kind]
	if !ok {
		return nil, &unknownKindError{kind: kind}
	}
	var result models.SafeDeleteResult
	if err := c.do(ctx, http.MethodDelete, prefix+url.PathEscape(id), nil, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

type unknownKindError struct{ kind models.ReferenceKind }

func (e *unknownKindError) Error() string { return "unknown reference kind " + string(e.kind) }

// PreviewBulkUpload stages payload for review. A non-nil targetDate moves
// every transaction to that date.
func (c *Client) PreviewBulkUpload(ctx context.Context, payload models.BulkPayload, targetDate *models.Date) (*models.BulkPreview, error) {
	q := url.Values{}
	if targetDate != nil {
		q.Set("date", targetDate.String())
	}
	var resp struct {
		Preview models.BulkPreview `json:"preview"`
	}
	if err := c.do(ctx, http.MethodPost, "/bulk-upload/preview", q, payload, &resp); err != nil {
		return nil, err
	}
	return &resp.Preview, nil
}

// CommitBulkUpload inserts a previewed upload. A preview commits once.
func (c *Client) CommitBulkUpload(ctx context.Context, previewID string) (*models.BulkResult, error) {
	req := struct {
		PreviewID string `json:"preview_id"`
	}{PreviewID: previewID}
	var resp struct {
		Result models.BulkResult `json:"result"`
	}
	if err := c.do(ctx, http.MethodPost, "/bulk-upload/commit", nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp.Result, nil
}
