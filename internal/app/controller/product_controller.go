package controller

import (
	"encoding/json"
	stdErrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/khatrisoftware/alankar-backend/internal/app/service"
	"github.com/khatrisoftware/alankar-backend/internal/errors"
	"github.com/khatrisoftware/alankar-backend/internal/middleware"
)

type ProductController struct {
	productService service.ProductService
}

func NewProductController(productService service.ProductService) *ProductController {
	return &ProductController{
		productService: productService,
	}
}

type DeleteProductsRequest struct {
	Codes *[]string `json:"codes"`
}

// respondBindError turns a JSON decode failure into a 400. Type mismatches
// are reported per field like validation errors.
func respondBindError(c *gin.Context, err error) {
	var typeErr *json.UnmarshalTypeError
	switch {
	case stdErrors.As(err, &typeErr) && typeErr.Field != "":
		errors.RespondWithValidationError(c, map[string]string{
			typeErr.Field: "must be of type " + typeErr.Type.String(),
		})
	case stdErrors.Is(err, service.ErrInvalidPrice):
		errors.RespondWithValidationError(c, map[string]string{
			"price": err.Error(),
		})
	default:
		errors.BadRequest(c, errors.ValidationInvalidInput, "Invalid JSON body")
	}
}

// respondServiceError maps service errors onto HTTP replies.
func respondServiceError(c *gin.Context, err error, action string) {
	var verr *service.ValidationError
	switch {
	case stdErrors.As(err, &verr):
		errors.RespondWithValidationError(c, verr.Fields)
	case stdErrors.Is(err, service.ErrProductNotFound):
		errors.NotFound(c, errors.ProductNotFound, "Product not found")
	case stdErrors.Is(err, service.ErrProductCodeConflict):
		errors.Conflict(c, errors.ProductCodeConflict, "Product code already exists")
	case stdErrors.Is(err, service.ErrEmptyCodeList):
		errors.BadRequest(c, errors.ValidationEmptyList, "codes must be a non-empty array")
	default:
		errors.ParseAndRespond(c, err, action)
	}
}

// ListProducts returns a page of product summaries
// GET /api/products
func (ctrl *ProductController) ListProducts(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	query := service.ListProductsQuery{
		Page:      c.Query("page"),
		Limit:     c.Query("limit"),
		SortBy:    c.Query("sortBy"),
		SortOrder: c.Query("sortOrder"),
		Search:    c.Query("search"),
		Code:      c.Query("code"),
		Name:      c.Query("name"),
		Gender:    c.Query("gender"),
		Category:  c.Query("category"),
		MetalType: c.Query("metalType"),
	}
	if onSale, ok := c.GetQuery("onSale"); ok {
		query.OnSale = &onSale
	}

	page, err := ctrl.productService.ListProducts(c.Request.Context(), query)
	if err != nil {
		log.Error("Failed to list products", err, nil)
		respondServiceError(c, err, "list products")
		return
	}

	c.JSON(http.StatusOK, page)
}

// GetProduct returns a single product
// GET /api/products/:code
func (ctrl *ProductController) GetProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	code := c.Param("code")

	product, err := ctrl.productService.GetProduct(c.Request.Context(), code)
	if err != nil {
		if !stdErrors.Is(err, service.ErrProductNotFound) {
			log.Error("Failed to fetch product", err, map[string]interface{}{
				"code": code,
			})
		}
		respondServiceError(c, err, "fetch product")
		return
	}

	c.JSON(http.StatusOK, product)
}

// CreateProduct creates a product with a generated code
// POST /api/products
func (ctrl *ProductController) CreateProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var input service.CreateProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		log.Warn("Invalid product creation request", map[string]interface{}{
			"error": err.Error(),
		})
		respondBindError(c, err)
		return
	}

	product, err := ctrl.productService.CreateProduct(c.Request.Context(), input)
	if err != nil {
		log.Warn("Product creation failed", map[string]interface{}{
			"error": err.Error(),
		})
		respondServiceError(c, err, "create product")
		return
	}

	log.Info("Product created successfully", map[string]interface{}{
		"code": product.Code,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message": "Product created",
		"product": product,
	})
}

// UpdateProduct applies a partial update
// PUT /api/products/:code
func (ctrl *ProductController) UpdateProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	code := c.Param("code")

	var input service.UpdateProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		log.Warn("Invalid product update request", map[string]interface{}{
			"code":  code,
			"error": err.Error(),
		})
		respondBindError(c, err)
		return
	}

	product, err := ctrl.productService.UpdateProduct(c.Request.Context(), code, input)
	if err != nil {
		log.Warn("Product update failed", map[string]interface{}{
			"code":  code,
			"error": err.Error(),
		})
		respondServiceError(c, err, "update product")
		return
	}

	log.Info("Product updated successfully", map[string]interface{}{
		"code": code,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Product updated",
		"product": product,
	})
}

// DeleteProducts removes every product whose code is listed
// DELETE /api/products
func (ctrl *ProductController) DeleteProducts(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req DeleteProductsRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Codes == nil {
		log.Warn("Invalid bulk delete request", nil)
		errors.BadRequest(c, errors.ValidationInvalidInput, "codes must be a non-empty array")
		return
	}

	result, err := ctrl.productService.DeleteProductsBulk(c.Request.Context(), *req.Codes)
	if err != nil {
		respondServiceError(c, err, "delete products")
		return
	}

	log.Info("Products deleted", map[string]interface{}{
		"requested": result.Requested,
		"deleted":   result.Deleted,
	})

	c.JSON(http.StatusOK, gin.H{
		"message":   "Deleted products",
		"requested": result.Requested,
		"deleted":   result.Deleted,
	})
}

// GetFilters returns every category and metal type
// GET /api/filters
func (ctrl *ProductController) GetFilters(c *gin.Context) {
	c.JSON(http.StatusOK, ctrl.productService.GetFilters())
}
