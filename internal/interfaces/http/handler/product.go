package handler

import (
	"io"
	"mime/multipart"
	"strings"

	"github.com/gin-gonic/gin"
	catalogapp "github.com/shopfront/backend/internal/application/catalog"
)

// imagesFormField is the multipart field carrying product image files
const imagesFormField = "images"

// ProductHandler handles product-related API endpoints
type ProductHandler struct {
	BaseHandler
	productService *catalogapp.ProductService
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService *catalogapp.ProductService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
	}
}

// List godoc
// @Summary      List products
// @Description  Page through the catalog, filtered by name keyword and category
// @Tags         products
// @Produce      json
// @Param        keyword query string false "Case-insensitive name filter"
// @Param        category query string false "Exact category"
// @Param        page query int false "Page number" minimum(1)
// @Success      200 {object} dto.Response{data=catalogapp.ProductListResult}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /products [get]
func (h *ProductHandler) List(c *gin.Context) {
	var req catalogapp.ListProductsRequest
	if !h.BindQuery(c, &req) {
		return
	}

	result, err := h.productService.List(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, result, result.TotalProducts, result.Page, catalogapp.DefaultPageSize)
}

// Featured godoc
// @Summary      Featured products
// @Tags         products
// @Produce      json
// @Success      200 {object} dto.Response{data=[]catalogapp.ProductResponse}
// @Router       /products/featured [get]
func (h *ProductHandler) Featured(c *gin.Context) {
	products, err := h.productService.Featured(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, products)
}

// Categories godoc
// @Summary      Product categories
// @Description  Distinct categories of the catalog, sorted
// @Tags         products
// @Produce      json
// @Success      200 {object} dto.Response{data=[]string}
// @Router       /products/categories [get]
func (h *ProductHandler) Categories(c *gin.Context) {
	categories, err := h.productService.Categories(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, categories)
}

// Stats godoc
// @Summary      Product statistics
// @Tags         products
// @Produce      json
// @Success      200 {object} dto.Response{data=catalog.ProductStats}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /products/stats [get]
func (h *ProductHandler) Stats(c *gin.Context) {
	stats, err := h.productService.Stats(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}

// Top godoc
// @Summary      Top products
// @Description  Best sellers with their average rating, or the best stocked products when nothing has sold
// @Tags         products
// @Produce      json
// @Success      200 {object} dto.Response{data=[]report.TopProduct}
// @Router       /products/top [get]
func (h *ProductHandler) Top(c *gin.Context) {
	top, err := h.productService.TopProducts(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, top)
}

// GetByID godoc
// @Summary      Get product by ID
// @Tags         products
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Success      200 {object} dto.Response{data=catalogapp.ProductResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /products/{id} [get]
func (h *ProductHandler) GetByID(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id", "product")
	if !ok {
		return
	}

	product, err := h.productService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Create godoc
// @Summary      Create a product
// @Description  Accepts JSON, or multipart form fields with up to 5 image files (jpg, jpeg, png, webp; 5 MB each)
// @Tags         products
// @Accept       json,mpfd
// @Produce      json
// @Param        request body catalogapp.CreateProductRequest true "Product"
// @Success      201 {object} dto.Response{data=catalogapp.ProductResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      413 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /products [post]
func (h *ProductHandler) Create(c *gin.Context) {
	var req catalogapp.CreateProductRequest
	if !h.bindProduct(c, &req) {
		return
	}
	uploads, ok := h.uploads(c)
	if !ok {
		return
	}

	product, err := h.productService.Create(c.Request.Context(), req, uploads)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, product)
}

// Update godoc
// @Summary      Update a product
// @Description  Partial update. New image files or image URLs replace the current images.
// @Tags         products
// @Accept       json,mpfd
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Param        request body catalogapp.UpdateProductRequest true "Changes"
// @Success      200 {object} dto.Response{data=catalogapp.ProductResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /products/{id} [put]
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id", "product")
	if !ok {
		return
	}

	var req catalogapp.UpdateProductRequest
	if !h.bindProduct(c, &req) {
		return
	}
	uploads, ok := h.uploads(c)
	if !ok {
		return
	}

	product, err := h.productService.Update(c.Request.Context(), id, req, uploads)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Delete godoc
// @Summary      Delete a product
// @Description  Removes the product, its images and every cart line referencing it
// @Tags         products
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Success      200 {object} dto.Response{data=MessageData}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /products/{id} [delete]
func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id", "product")
	if !ok {
		return
	}

	if err := h.productService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Message(c, "Product removed")
}

// bindProduct binds JSON or multipart form fields depending on Content-Type
func (h *ProductHandler) bindProduct(c *gin.Context, obj any) bool {
	if err := c.ShouldBind(obj); err != nil {
		h.handleBindError(c, err)
		return false
	}
	return true
}

// uploads collects the image files of a multipart request. Other content
// types carry no files.
func (h *ProductHandler) uploads(c *gin.Context) ([]catalogapp.ImageUpload, bool) {
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		return nil, true
	}

	form, err := c.MultipartForm()
	if err != nil {
		h.handleBindError(c, err)
		return nil, false
	}

	files := form.File[imagesFormField]
	if len(files) == 0 {
		return nil, true
	}
	uploads := make([]catalogapp.ImageUpload, len(files))
	for i, fh := range files {
		uploads[i] = toImageUpload(fh)
	}
	return uploads, true
}

func toImageUpload(fh *multipart.FileHeader) catalogapp.ImageUpload {
	return catalogapp.ImageUpload{
		FileName:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}
