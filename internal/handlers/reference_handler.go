package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"moneylens/internal/models"
	"moneylens/internal/observability"
	"moneylens/internal/services"
)

// referenceDeleter is shared by the category, tag and bank account
// handlers: DELETE on any of them is a safe delete.
type referenceDeleter struct {
	safeDeleter  services.SafeDeleter
	auditService services.AuditServicer
	metrics      *observability.Metrics
}

func (d referenceDeleter) safeDelete(c *gin.Context, kind models.ReferenceKind) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := d.safeDeleter.SafeDelete(c.Request.Context(), userID, kind, id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if result.Deleted {
		d.auditService.Log(c.Request.Context(), userID, "DELETE_REFERENCE", string(kind), id, c.ClientIP(), nil)
	} else {
		d.metrics.SafeDeleteBlocked(string(kind))
	}
	c.JSON(http.StatusOK, result)
}

// CategoryHandler handles category-related requests
type CategoryHandler struct {
	referenceDeleter
	categoryService services.CategoryServicer
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categoryService services.CategoryServicer, safeDeleter services.SafeDeleter, auditService services.AuditServicer, metrics *observability.Metrics) *CategoryHandler {
	return &CategoryHandler{
		referenceDeleter: referenceDeleter{safeDeleter: safeDeleter, auditService: auditService, metrics: metrics},
		categoryService:  categoryService,
	}
}

// ListCategories handles the retrieval of the user's categories
// @Summary     List categories
// @Description List categories sorted by name with the number of transactions using each
// @Tags        categories
// @Produce     json
// @Security    BearerAuth
// @Param       type query string false "earn, spend or save"
// @Success     200 {object} map[string][]models.CategoryWithUsage "Categories"
// @Failure     400 {object} ErrorResponse "Invalid type"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /categories [get]
func (h *CategoryHandler) ListCategories(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	txType, err := queryType(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	categories, err := h.categoryService.ListCategories(c.Request.Context(), userID, txType)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// CreateCategory handles the creation of a new category
// @Summary     Create a category
// @Tags        categories
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body models.CategoryInput true "Category details"
// @Success     201 {object} models.Category "Category created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     409 {object} ErrorResponse "Duplicate name"
// @Router      /categories [post]
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req models.CategoryInput
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidInput(c, err)
		return
	}

	category, err := h.categoryService.CreateCategory(c.Request.Context(), userID, req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), userID, "CREATE_CATEGORY", "category", category.ID, c.ClientIP(),
		map[string]interface{}{"name": category.Name, "type": category.Type})
	c.JSON(http.StatusCreated, gin.H{"category": category})
}

// GetCategoryByID handles the retrieval of a specific category
// @Summary     Get category by ID
// @Tags        categories
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Category ID"
// @Success     200 {object} models.Category "Category"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Router      /categories/{id} [get]
func (h *CategoryHandler) GetCategoryByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	category, err := h.categoryService.GetCategoryByID(c.Request.Context(), userID, id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"category": category})
}

// UpdateCategory renames or re-describes a category
// @Summary     Update category
// @Description A rename relabels every transaction that uses the category
// @Tags        categories
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                  true "Category ID"
// @Param       request body models.ReferenceChanges true "Fields to update"
// @Success     200 {object} models.Category "Updated category"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Failure     409 {object} ErrorResponse "Duplicate name"
// @Router      /categories/{id} [patch]
func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var changes models.ReferenceChanges
	if err := c.ShouldBindJSON(&changes); err != nil {
		invalidInput(c, err)
		return
	}

	category, err := h.categoryService.UpdateCategory(c.Request.Context(), userID, id, changes)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), userID, "UPDATE_CATEGORY", "category", id, c.ClientIP(), nil)
	c.JSON(http.StatusOK, gin.H{"category": category})
}

// DeleteCategory removes a category nothing uses
// @Summary     Delete category
// @Description Delete the category when no transaction uses it; otherwise report how many do
// @Tags        categories
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Category ID"
// @Success     200 {object} models.SafeDeleteResult "Outcome"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Router      /categories/{id} [delete]
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	h.safeDelete(c, models.ReferenceCategory)
}

// TagHandler handles tag-related requests
type TagHandler struct {
	referenceDeleter
	tagService services.TagServicer
}

// NewTagHandler creates a new TagHandler
func NewTagHandler(tagService services.TagServicer, safeDeleter services.SafeDeleter, auditService services.AuditServicer, metrics *observability.Metrics) *TagHandler {
	return &TagHandler{
		referenceDeleter: referenceDeleter{safeDeleter: safeDeleter, auditService: auditService, metrics: metrics},
		tagService:       tagService,
	}
}

// ListTags handles the retrieval of the user's tags
// @Summary     List tags
// @Tags        tags
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string][]models.TagWithUsage "Tags"
// @Router      /tags [get]
func (h *TagHandler) ListTags(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	tags, err := h.tagService.ListTags(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tags": tags})
}

// CreateTag handles the creation of a new tag
// @Summary     Create a tag
// @Tags        tags
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body models.ReferenceInput true "Tag details"
// @Success     201 {object} models.Tag "Tag created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     409 {object} ErrorResponse "Duplicate name"
// @Router      /tags [post]
func (h *TagHandler) CreateTag(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req models.ReferenceInput
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidInput(c, err)
		return
	}

	tag, err := h.tagService.CreateTag(c.Request.Context(), userID, req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), userID, "CREATE_TAG", "tag", tag.ID, c.ClientIP(),
		map[string]interface{}{"name": tag.Name})
	c.JSON(http.StatusCreated, gin.H{"tag": tag})
}

// GetTagByID handles the retrieval of a specific tag
// @Summary     Get tag by ID
// @Tags        tags
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Tag ID"
// @Success     200 {object} models.Tag "Tag"
// @Failure     404 {object} ErrorResponse "Tag not found"
// @Router      /tags/{id} [get]
func (h *TagHandler) GetTagByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	tag, err := h.tagService.GetTagByID(c.Request.Context(), userID, id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tag": tag})
}

// UpdateTag renames or re-describes a tag
// @Summary     Update tag
// @Tags        tags
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                  true "Tag ID"
// @Param       request body models.ReferenceChanges true "Fields to update"
// @Success     200 {object} models.Tag "Updated tag"
// @Failure     404 {object} ErrorResponse "Tag not found"
// @Failure     409 {object} ErrorResponse "Duplicate name"
// @Router      /tags/{id} [patch]
func (h *TagHandler) UpdateTag(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var changes models.ReferenceChanges
	if err := c.ShouldBindJSON(&changes); err != nil {
		invalidInput(c, err)
		return
	}

	tag, err := h.tagService.UpdateTag(c.Request.Context(), userID, id, changes)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), userID, "UPDATE_TAG", "tag", id, c.ClientIP(), nil)
	c.JSON(http.StatusOK, gin.H{"tag": tag})
}

// DeleteTag removes a tag nothing uses
// @Summary     Delete tag
// @Tags        tags
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Tag ID"
// @Success     200 {object} models.SafeDeleteResult "Outcome"
// @Failure     404 {object} ErrorResponse "Tag not found"
// @Router      /tags/{id} [delete]
func (h *TagHandler) DeleteTag(c *gin.Context) {
	h.safeDelete(c, models.ReferenceTag)
}

// BankAccountHandler handles bank-account requests
type BankAccountHandler struct {
	referenceDeleter
	bankAccountService services.BankAccountServicer
}

// NewBankAccountHandler creates a new BankAccountHandler
func NewBankAccountHandler(bankAccountService services.BankAccountServicer, safeDeleter services.SafeDeleter, auditService services.AuditServicer, metrics *observability.Metrics) *BankAccountHandler {
	return &BankAccountHandler{
		referenceDeleter:   referenceDeleter{safeDeleter: safeDeleter, auditService: auditService, metrics: metrics},
		bankAccountService: bankAccountService,
	}
}

// ListBankAccounts handles the retrieval of the user's bank accounts
// @Summary     List bank accounts
// @Tags        bank-accounts
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string][]models.BankAccountWithUsage "Bank accounts"
// @Router      /bank-accounts [get]
func (h *BankAccountHandler) ListBankAccounts(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	accounts, err := h.bankAccountService.ListBankAccounts(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"bank_accounts": accounts})
}

// CreateBankAccount handles the creation of a new bank account
// @Summary     Create a bank account
// @Tags        bank-accounts
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body models.ReferenceInput true "Bank account details"
// @Success     201 {object} models.BankAccount "Bank account created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     409 {object} ErrorResponse "Duplicate name"
// @Router      /bank-accounts [post]
func (h *BankAccountHandler) CreateBankAccount(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req models.ReferenceInput
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidInput(c, err)
		return
	}

	account, err := h.bankAccountService.CreateBankAccount(c.Request.Context(), userID, req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), userID, "CREATE_BANK_ACCOUNT", "bank_account", account.ID, c.ClientIP(),
		map[string]interface{}{"name": account.Name})
	c.JSON(http.StatusCreated, gin.H{"bank_account": account})
}

// GetBankAccountByID handles the retrieval of a specific bank account
// @Summary     Get bank account by ID
// @Tags        bank-accounts
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Bank account ID"
// @Success     200 {object} models.BankAccount "Bank account"
// @Failure     404 {object} ErrorResponse "Bank account not found"
// @Router      /bank-accounts/{id} [get]
func (h *BankAccountHandler) GetBankAccountByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	account, err := h.bankAccountService.GetBankAccountByID(c.Request.Context(), userID, id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"bank_account": account})
}

// UpdateBankAccount renames or re-describes a bank account
// @Summary     Update bank account
// @Description A rename relabels every transaction that uses the account
// @Tags        bank-accounts
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                  true "Bank account ID"
// @Param       request body models.ReferenceChanges true "Fields to update"
// @Success     200 {object} models.BankAccount "Updated bank account"
// @Failure     404 {object} ErrorResponse "Bank account not found"
// @Failure     409 {object} ErrorResponse "Duplicate name"
// @Router      /bank-accounts/{id} [patch]
func (h *BankAccountHandler) UpdateBankAccount(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var changes models.ReferenceChanges
	if err := c.ShouldBindJSON(&changes); err != nil {
		invalidInput(c, err)
		return
	}

	account, err := h.bankAccountService.UpdateBankAccount(c.Request.Context(), userID, id, changes)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), userID, "UPDATE_BANK_ACCOUNT", "bank_account", id, c.ClientIP(), nil)
	c.JSON(http.StatusOK, gin.H{"bank_account": account})
}

// DeleteBankAccount removes a bank account nothing uses
// @Summary     Delete bank account
// @Tags        bank-accounts
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Bank account ID"
// @Success     200 {object} models.SafeDeleteResult "Outcome"
// @Failure     404 {object} ErrorResponse "Bank account not found"
// @Router      /bank-accounts/{id} [delete]
func (h *BankAccountHandler) DeleteBankAccount(c *gin.Context) {
	h.safeDelete(c, models.ReferenceBankAccount)
}
