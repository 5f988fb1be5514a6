package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"product-importer/models"
	"product-importer/repository"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CreateProductRequest defines the expected structure for creating a product.
type CreateProductRequest struct {
	SKU         string `json:"sku" validate:"required"`
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Active      *bool  `json:"active"`
}

// ProductController handles product CRUD requests.
type ProductController struct {
	repo      repository.ProductRepository
	validator *RequestValidator
}

func NewProductController(repo repository.ProductRepository, validator *RequestValidator) *ProductController {
	return &ProductController{repo: repo, validator: validator}
}

// ListProducts returns products with optional filtering and pagination.
func (pc *ProductController) ListProducts(c *gin.Context) {
	skip, limit, err := pc.validator.ParseSkipLimit(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	active, err := pc.validator.ParseOptionalBool(c, "active")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	filter := models.ProductFilter{
		SKU:         strings.TrimSpace(c.Query("sku")),
		Name:        strings.TrimSpace(c.Query("name")),
		Description: strings.TrimSpace(c.Query("description")),
		Active:      active,
		Skip:        skip,
		Limit:       limit,
	}

	products, total, err := pc.repo.List(c.Request.Context(), filter)
	if err != nil {
		zap.L().Error("Failed to list products", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list products"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": products, "total": total})
}

// CreateProduct creates or overwrites a product by normalized sku. This is
// the interactive upsert path; it behaves differently from ingestion on
// purpose.
func (pc *ProductController) CreateProduct(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := pc.validator.ValidateStruct(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	product, err := pc.repo.Upsert(c.Request.Context(), &models.Product{
		SKU:         req.SKU,
		Name:        req.Name,
		Description: req.Description,
		Active:      active,
	})
	if err != nil {
		zap.L().Error("Failed to upsert product", zap.String("sku", req.SKU), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save product"})
		return
	}

	c.JSON(http.StatusOK, product)
}

// UpdateProduct partially updates a product by ID.
func (pc *ProductController) UpdateProduct(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var patch models.ProductPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	product, err := pc.repo.Patch(c.Request.Context(), id, patch)
	if err == gorm.ErrRecordNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}
	if err != nil {
		zap.L().Error("Failed to patch product", zap.Uint("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
		return
	}

	c.JSON(http.StatusOK, product)
}

// DeleteProduct deletes a single product by ID.
func (pc *ProductController) DeleteProduct(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err = pc.repo.Delete(c.Request.Context(), id)
	if err == gorm.ErrRecordNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}
	if err != nil {
		zap.L().Error("Failed to delete product", zap.Uint("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete product"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// BulkDeleteProducts deletes all products. Requires confirm=true.
func (pc *ProductController) BulkDeleteProducts(c *gin.Context) {
	if strings.ToLower(c.Query("confirm")) != "true" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please confirm by sending confirm=true"})
		return
	}

	deleted, err := pc.repo.DeleteAll(c.Request.Context())
	if err != nil {
		zap.L().Error("Failed to bulk delete products", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete products"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

func parseID(c *gin.Context) (uint, error) {
	raw := strings.TrimSpace(c.Param("id"))
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return uint(id), nil
}
