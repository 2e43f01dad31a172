package transport

import (
	"context"
	"net/http"

	"storefront-catalog/internal/apperror"
	"storefront-catalog/internal/domain"
	"storefront-catalog/internal/middleware"
	"storefront-catalog/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CreateProductRequest represents the product creation payload
type CreateProductRequest struct {
	Title          string             `json:"title" validate:"required,max=255"`
	Slug           string             `json:"slug" validate:"required,max=255,slug"`
	Description    string             `json:"description" validate:"max=10000"`
	Brand          *string            `json:"brand" validate:"omitempty,max=100"`
	Badge          *string            `json:"badge" validate:"omitempty,max=50"`
	Tags           []string           `json:"tags" validate:"omitempty,dive,required,max=50"`
	Price          decimal.Decimal    `json:"price" validate:"required,gt=0"`
	OriginalPrice  *decimal.Decimal   `json:"originalPrice" validate:"omitempty,gt=0"`
	Currency       string             `json:"currency" validate:"omitempty,len=3,uppercase"`
	SKU            *string            `json:"sku" validate:"omitempty,max=100"`
	StockQuantity  int                `json:"stockQuantity" validate:"gte=0"`
	CategoryID     string             `json:"categoryId" validate:"required,uuid"`
	IsActive       *bool              `json:"isActive"`
	Images         []string           `json:"images" validate:"omitempty,dive,url"`
	Specifications map[string]any     `json:"specifications"`
	Variants       map[string]any     `json:"variants"`
	Dimensions     *domain.Dimensions `json:"dimensions"`
	Weight         *float64           `json:"weight" validate:"omitempty,gt=0"`
	WeightUnit     *string            `json:"weightUnit" validate:"omitempty,max=10"`
}

// UpdateProductRequest is a partial update; absent fields are left unchanged.
// Engagement counters are not accepted here.
type UpdateProductRequest struct {
	Title          *string            `json:"title" validate:"omitempty,min=1,max=255"`
	Slug           *string            `json:"slug" validate:"omitempty,max=255,slug"`
	Description    *string            `json:"description" validate:"omitempty,max=10000"`
	Brand          *string            `json:"brand" validate:"omitempty,max=100"`
	Badge          *string            `json:"badge" validate:"omitempty,max=50"`
	Tags           []string           `json:"tags" validate:"omitempty,dive,required,max=50"`
	Price          *decimal.Decimal   `json:"price" validate:"omitempty,gt=0"`
	OriginalPrice  *decimal.Decimal   `json:"originalPrice" validate:"omitempty,gt=0"`
	Currency       *string            `json:"currency" validate:"omitempty,len=3,uppercase"`
	SKU            *string            `json:"sku" validate:"omitempty,max=100"`
	StockQuantity  *int               `json:"stockQuantity" validate:"omitempty,gte=0"`
	CategoryID     *string            `json:"categoryId" validate:"omitempty,uuid"`
	IsActive       *bool              `json:"isActive"`
	Images         []string           `json:"images" validate:"omitempty,dive,url"`
	Specifications map[string]any     `json:"specifications"`
	Variants       map[string]any     `json:"variants"`
	Dimensions     *domain.Dimensions `json:"dimensions"`
	Weight         *float64           `json:"weight" validate:"omitempty,gt=0"`
	WeightUnit     *string            `json:"weightUnit" validate:"omitempty,max=10"`
}

// UpdateStockRequest represents the stock update payload
type UpdateStockRequest struct {
	Quantity *int `json:"quantity" validate:"required,gte=0"`
}

// UpdateRatingRequest represents the rating update payload
type UpdateRatingRequest struct {
	Rating      *float64 `json:"rating" validate:"required,gte=0,lte=5"`
	ReviewCount *int     `json:"reviewCount" validate:"required,gte=0"`
}

// AddImagesRequest represents the image append payload
type AddImagesRequest struct {
	Images []string `json:"images" validate:"required,min=1,dive,url"`
}

// RemoveImageRequest represents the image removal payload
type RemoveImageRequest struct {
	URL string `json:"url" validate:"required,url"`
}

// ReorderImagesRequest represents the image reorder payload
type ReorderImagesRequest struct {
	Images []string `json:"images" validate:"required,dive,url"`
}

// ProductHandler handles HTTP requests for catalog operations
type ProductHandler struct {
	productService     service.ProductService
	logger             *zap.Logger
	searchDefaultLimit int
	searchMaxLimit     int
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService service.ProductService, searchDefaultLimit, searchMaxLimit int, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		productService:     productService,
		logger:             logger,
		searchDefaultLimit: searchDefaultLimit,
		searchMaxLimit:     searchMaxLimit,
	}
}

// RegisterRoutes registers all product routes. Writes run behind adminOnly.
func (h *ProductHandler) RegisterRoutes(r chi.Router, adminOnly ...func(http.Handler) http.Handler) {
	r.Route("/api/products", func(r chi.Router) {
		// Public routes
		r.Get("/", h.List)
		r.Get("/search", h.Search)
		r.Get("/slug/{slug}", h.GetBySlug)
		r.Get("/{id}", h.GetByID)

		// Admin routes
		r.Group(func(r chi.Router) {
			r.Use(adminOnly...)
			r.Post("/", h.Create)
			r.Put("/{id}", h.Update)
			r.Delete("/{id}", h.SoftDelete)
			r.Delete("/{id}/permanent", h.HardDelete)
			r.Patch("/{id}/stock", h.UpdateStock)
			r.Patch("/{id}/rating", h.UpdateRating)
			r.Post("/{id}/images", h.AddImages)
			r.Delete("/{id}/images", h.RemoveImage)
			r.Put("/{id}/images/order", h.ReorderImages)
		})
	})
}

// List handles the filtered, sorted and paginated listing
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	params, err := parseListParams(r.URL.Query())
	if err != nil {
		middleware.RespondWithError(w, r, err)
		return
	}

	page, err := h.productService.List(r.Context(), params.Filter, params.Sort, params.Pagination)
	if err != nil {
		middleware.RespondWithError(w, r, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, page)
}

// Search handles free-text search over active, in-stock products
func (h *ProductHandler) Search(w http.ResponseWriter, r *http.Request) {
	term, limit, err := parseSearchParams(r.URL.Query(), h.searchDefaultLimit, h.searchMaxLimit)
	if err != nil {
		middleware.RespondWithError(w, r, err)
		return
	}

	products, err := h.productService.Search(r.Context(), term, limit)
	if err != nil {
		middleware.RespondWithError(w, r, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, products)
}

// GetByID records a view and returns the product
func (h *ProductHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	if err := h.productService.IncrementView(r.Context(), id); err != nil {
		middleware.RespondWithError(w, r, err)
		return
	}

	product, err := h.productService.GetByID(r.Context(), id)
	if err != nil {
		middleware.RespondWithError(w, r, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// GetBySlug returns the product with the given slug
func (h *ProductHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	product, err := h.productService.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		middleware.RespondWithError(w, r, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// Create handles product creation
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Create product validation failed", zap.Error(err))
		middleware.RespondWithError(w, r, err)
		return
	}

	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		middleware.RespondWithError(w, r, invalidField("categoryId", "Invalid UUID", "uuid"))
		return
	}

	product, err := h.productService.Create(r.Context(), service.CreateProductInput{
		Title:          req.Title,
		Slug:           req.Slug,
		Description:    req.Description,
		Brand:          req.Brand,
		Badge:          req.Badge,
		Tags:           req.Tags,
		Price:          req.Price,
		OriginalPrice:  req.OriginalPrice,
		Currency:       req.Currency,
		SKU:            req.SKU,
		StockQuantity:  req.StockQuantity,
		CategoryID:     categoryID,
		IsActive:       req.IsActive,
		Images:         req.Images,
		Specifications: req.Specifications,
		Variants:       req.Variants,
		Dimensions:     req.Dimensions,
		Weight:         req.Weight,
		WeightUnit:     req.WeightUnit,
	})
	if err != nil {
		middleware.RespondWithError(w, r, err)
		return
	}

	middleware.RespondWithMessage(w, http.StatusCreated, product, "Product created successfully")
}

// Update handles partial product updates
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	var req UpdateProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Update product validation failed", zap.Error(err))
		middleware.RespondWithError(w, r, err)
		return
	}

	input := service.UpdateProductInput{
		Title:          req.Title,
		Slug:           req.Slug,
		Description:    req.Description,
		Brand:          req.Brand,
		Badge:          req.Badge,
		Tags:           req.Tags,
		Price:          req.Price,
		OriginalPrice:  req.OriginalPrice,
		Currency:       req.Currency,
		SKU:            req.SKU,
		StockQuantity:  req.StockQuantity,
		IsActive:       req.IsActive,
		Images:         req.Images,
		Specifications: req.Specifications,
		Variants:       req.Variants,
		Dimensions:     req.Dimensions,
		Weight:         req.Weight,
		WeightUnit:     req.WeightUnit,
	}
	if req.CategoryID != nil {
		categoryID, err := uuid.Parse(*req.CategoryID)
		if err != nil {
			middleware.RespondWithError(w, r, invalidField("categoryId", "Invalid UUID", "uuid"))
			return
		}
		input.CategoryID = &categoryID
	}

	product, err := h.productService.Update(r.Context(), id, input)
	if err != nil {
		middleware.RespondWithError(w, r, err)
		return
	}

	middleware.RespondWithMessage(w, http.StatusOK, product, "Product updated successfully")
}

// SoftDelete deactivates a product
func (h *ProductHandler) SoftDelete(w http.ResponseWriter, r *http.Request) {
	h.deleteProduct(w, r, h.productService.SoftDelete, "Product deactivated successfully")
}

// HardDelete removes a product permanently
func (h *ProductHandler) HardDelete(w http.ResponseWriter, r *http.Request) {
	h.deleteProduct(w, r, h.productService.HardDelete, "Product deleted permanently")
}

func (h *ProductHandler) deleteProduct(w http.ResponseWriter, r *http.Request, del func(ctx context.Context, id uuid.UUID) (bool, error), message string) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	deleted, err := del(r.Context(), id)
	if err != nil {
		middleware.RespondWithError(w, r, err)
		return
	}
	if !deleted {
		middleware.RespondWithError(w, r, domain.ErrProductNotFound)
		return
	}

	middleware.RespondWithMessage(w, http.StatusOK, nil, message)
}

// UpdateStock sets the stock quantity
func (h *ProductHandler) UpdateStock(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	var req UpdateStockRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithError(w, r, err)
		return
	}

	product, err := h.productService.UpdateStock(r.Context(), id, *req.Quantity)
	if err != nil {
		middleware.RespondWithError(w, r, err)
		return
	}

	middleware.RespondWithMessage(w, http.StatusOK, product, "Stock updated successfully")
}

// UpdateRating overwrites the aggregate rating
func (h *ProductHandler) UpdateRating(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	var req UpdateRatingRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithError(w, r, err)
		return
	}

	product, err := h.productService.UpdateRating(r.Context(), id, *req.Rating, *req.ReviewCount)
	if err != nil {
		middleware.RespondWithError(w, r, err)
		return
	}

	middleware.RespondWithMessage(w, http.StatusOK, product, "Rating updated successfully")
}

// AddImages appends images to a product
func (h *ProductHandler) AddImages(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	var req AddImagesRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithError(w, r, err)
		return
	}

	product, err := h.productService.AddImages(r.Context(), id, req.Images)
	if err != nil {
		middleware.RespondWithError(w, r, err)
		return
	}

	middleware.RespondWithMessage(w, http.StatusOK, product, "Images added successfully")
}

// RemoveImage removes one image URL from a product
func (h *ProductHandler) RemoveImage(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	var req RemoveImageRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithError(w, r, err)
		return
	}

	product, err := h.productService.RemoveImage(r.Context(), id, req.URL)
	if err != nil {
		middleware.RespondWithError(w, r, err)
		return
	}

	middleware.RespondWithMessage(w, http.StatusOK, product, "Image removed successfully")
}

// ReorderImages replaces the image order
func (h *ProductHandler) ReorderImages(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	var req ReorderImagesRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithError(w, r, err)
		return
	}

	product, err := h.productService.ReorderImages(r.Context(), id, req.Images)
	if err != nil {
		middleware.RespondWithError(w, r, err)
		return
	}

	middleware.RespondWithMessage(w, http.StatusOK, product, "Images reordered successfully")
}

// productID parses the {id} path parameter, rendering a Validation error
// when it is not a UUID
func productID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, r, invalidField("id", "Invalid product ID", "uuid"))
		return uuid.Nil, false
	}
	return id, true
}

func invalidField(field, message, code string) error {
	return apperror.FromValidation([]apperror.FieldError{{Field: field, Message: message, Code: code}})
}
