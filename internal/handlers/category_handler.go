package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/course-marketplace/internal/models"
	"github.com/SAP-F-2025/course-marketplace/internal/services"
	"github.com/SAP-F-2025/course-marketplace/internal/utils"
)

type CategoryHandler struct {
	BaseHandler
	categoryService services.CategoryService
}

func NewCategoryHandler(categoryService services.CategoryService, logger utils.Logger) *CategoryHandler {
	return &CategoryHandler{
		BaseHandler:     NewBaseHandler(logger),
		categoryService: categoryService,
	}
}

// ListCategories godoc
// @Tags catalog
// @Router /catalog/categories [get]
func (h *CategoryHandler) ListCategories(c *gin.Context) {
	categories, err := h.categoryService.List(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, categories)
}

// GetCategory godoc
// @Tags catalog
// @Router /catalog/categories/{id} [get]
func (h *CategoryHandler) GetCategory(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	category, err := h.categoryService.Get(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, category)
}

// CreateCategory godoc
// @Tags categories
// @Router /categories [post]
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var req models.CategoryCreateRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Creating category", "name", req.Name)

	category, err := h.categoryService.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, category)
}

// UpdateCategory godoc
// @Tags categories
// @Router /categories/{id} [put]
func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req models.CategoryUpdateRequest
	if !h.bindJSON(c, &req) {
		return
	}

	category, err := h.categoryService.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, category)
}

// DeleteCategory godoc
// @Tags categories
// @Router /categories/{id} [delete]
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Deleting category", "category_id", id)

	if err := h.categoryService.Delete(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
