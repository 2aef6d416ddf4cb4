package catalog

import (
	"context"
	"encoding/json"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/catalog"
	"github.com/shopfront/backend/internal/domain/report"
	"github.com/shopfront/backend/internal/domain/review"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProductService handles product-related business operations
type ProductService struct {
	productRepo    catalog.ProductRepository
	reportRepo     report.ReportRepository
	reviewRepo     review.ReviewRepository
	storage        ImageStorage
	policy         UploadPolicy
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewProductService creates a new ProductService
func NewProductService(
	productRepo catalog.ProductRepository,
	reportRepo report.ReportRepository,
	reviewRepo review.ReviewRepository,
	storage ImageStorage,
	logger *zap.Logger,
) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		reportRepo:  reportRepo,
		reviewRepo:  reviewRepo,
		storage:     storage,
		policy:      DefaultUploadPolicy(),
		logger:      logger,
	}
}

// SetUploadPolicy overrides the default upload limits
func (s *ProductService) SetUploadPolicy(policy UploadPolicy) {
	s.policy = policy
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *ProductService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// List returns one page of products matching keyword and category
func (s *ProductService) List(ctx context.Context, req ListProductsRequest) (*ProductListResult, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}

	products, total, err := s.productRepo.FindAll(ctx, catalog.ProductFilter{
		Keyword:  strings.TrimSpace(req.Keyword),
		Category: strings.TrimSpace(req.Category),
		Page:     page,
		PageSize: DefaultPageSize,
	})
	if err != nil {
		return nil, err
	}

	paged := shared.NewPaginated(ToProductResponses(products), total, page, DefaultPageSize)
	return &ProductListResult{
		Products:      paged.Items,
		Page:          paged.Page,
		Pages:         paged.TotalPages,
		TotalProducts: paged.Total,
	}, nil
}

// Featured returns the featured products shown on the storefront
func (s *ProductService) Featured(ctx context.Context) ([]ProductResponse, error) {
	products, err := s.productRepo.FindFeatured(ctx, FeaturedLimit)
	if err != nil {
		return nil, err
	}
	return ToProductResponses(products), nil
}

// Categories returns the distinct categories in use
func (s *ProductService) Categories(ctx context.Context) ([]string, error) {
	categories, err := s.productRepo.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	if categories == nil {
		categories = []string{}
	}
	return categories, nil
}

// Stats returns the product count and total stock
func (s *ProductService) Stats(ctx context.Context) (catalog.ProductStats, error) {
	return s.productRepo.Stats(ctx)
}

// GetByID retrieves a product by ID
func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToProductResponse(product)
	return &response, nil
}

// TopProducts returns the best sellers across non-cancelled orders with
// their average rating. When nothing has been sold yet the products with
// the most stock are returned instead.
func (s *ProductService) TopProducts(ctx context.Context) ([]report.TopProduct, error) {
	sales, err := s.reportRepo.TopSellingProducts(ctx, TopProductsLimit)
	if err != nil {
		return nil, err
	}

	sold := make(map[uuid.UUID]int64, len(sales))
	var products []catalog.Product
	if len(sales) > 0 {
		ids := make([]uuid.UUID, len(sales))
		for i, sale := range sales {
			ids[i] = sale.ProductID
			sold[sale.ProductID] = sale.TotalQuantity
		}
		found, err := s.productRepo.FindByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		// keep sales order; products deleted since are dropped
		byID := make(map[uuid.UUID]catalog.Product, len(found))
		for _, p := range found {
			byID[p.ID] = p
		}
		for _, id := range ids {
			if p, ok := byID[id]; ok {
				products = append(products, p)
			}
		}
	}

	if len(products) == 0 {
		products, err = s.productRepo.FindTopByStock(ctx, TopProductsLimit)
		if err != nil {
			return nil, err
		}
	}

	ids := make([]uuid.UUID, len(products))
	for i := range products {
		ids[i] = products[i].ID
	}
	ratings, err := s.reviewRepo.RatingSummaries(ctx, ids)
	if err != nil {
		return nil, err
	}

	top := make([]report.TopProduct, len(products))
	for i, p := range products {
		rating := report.DefaultRating
		var count int64
		if summary, ok := ratings[p.ID]; ok && summary.Count > 0 {
			rating = summary.Average
			count = summary.Count
		}
		top[i] = report.TopProduct{
			ProductID:   p.ID,
			Name:        p.Name,
			Description: p.Description,
			Price:       p.Price,
			Stock:       p.Stock,
			Rating:      rating,
			ReviewCount: count,
			TotalSold:   sold[p.ID],
		}
	}
	return top, nil
}

// Create creates a new product and stores its uploaded images
func (s *ProductService) Create(ctx context.Context, req CreateProductRequest, uploads []ImageUpload) (*ProductResponse, error) {
	price, err := parsePrice(req.Price)
	if err != nil {
		return nil, err
	}
	if len(req.ImageURLs)+len(uploads) > catalog.MaxProductImages {
		return nil, shared.NewValidationError("A product can have at most 5 images")
	}
	if err := s.policy.Validate(uploads); err != nil {
		return nil, err
	}

	product, err := catalog.NewProduct(req.Name, req.Description, req.Category, price, req.Stock)
	if err != nil {
		return nil, err
	}
	product.SetFeatured(req.IsFeatured)

	stored, err := storeImages(ctx, s.storage, product.ID, uploads)
	if err != nil {
		return nil, err
	}
	if err := product.SetImages(append(slices.Clone(req.ImageURLs), stored...)); err != nil {
		removeImages(ctx, s.storage, stored)
		return nil, err
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		removeImages(ctx, s.storage, stored)
		return nil, err
	}

	s.logger.Info("Product created",
		zap.String("product_id", product.ID.String()),
		zap.String("name", product.Name),
		zap.Int("images", len(product.Images)))

	s.publishDomainEvents(ctx, product)

	response := ToProductResponse(product)
	return &response, nil
}

// Update applies a partial update. New uploads and explicit image URLs
// replace the image list; images dropped from the list are deleted from storage.
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, req UpdateProductRequest, uploads []ImageUpload) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	name, description, category := product.Name, product.Description, product.Category
	if req.Name != nil {
		name = *req.Name
	}
	if req.Description != nil {
		description = *req.Description
	}
	if req.Category != nil {
		category = *req.Category
	}
	if err := product.Update(name, description, category); err != nil {
		return nil, err
	}

	if req.Price != nil {
		price, err := parsePrice(*req.Price)
		if err != nil {
			return nil, err
		}
		if err := product.SetPrice(price); err != nil {
			return nil, err
		}
	}
	if req.Stock != nil {
		if err := product.SetStock(*req.Stock); err != nil {
			return nil, err
		}
	}
	if req.IsFeatured != nil {
		product.SetFeatured(*req.IsFeatured)
	}

	replaceImages := len(uploads) > 0 || req.ImageURLs != nil
	var stored, dropped []string
	if replaceImages {
		if len(req.ImageURLs)+len(uploads) > catalog.MaxProductImages {
			return nil, shared.NewValidationError("A product can have at most 5 images")
		}
		if err := s.policy.Validate(uploads); err != nil {
			return nil, err
		}
		stored, err = storeImages(ctx, s.storage, product.ID, uploads)
		if err != nil {
			return nil, err
		}
		next := append(slices.Clone(req.ImageURLs), stored...)
		for _, old := range product.Images {
			if !slices.Contains(next, old) {
				dropped = append(dropped, old)
			}
		}
		if err := product.SetImages(next); err != nil {
			removeImages(ctx, s.storage, stored)
			return nil, err
		}
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		removeImages(ctx, s.storage, stored)
		return nil, err
	}
	removeImages(ctx, s.storage, dropped)

	s.logger.Info("Product updated", zap.String("product_id", product.ID.String()))

	s.publishDomainEvents(ctx, product)

	response := ToProductResponse(product)
	return &response, nil
}

// Delete removes a product from the catalog and from every cart. Orders keep
// their snapshot of the product.
func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.productRepo.Delete(ctx, id); err != nil {
		return err
	}
	removeImages(ctx, s.storage, product.Images)

	s.logger.Info("Product deleted",
		zap.String("product_id", id.String()),
		zap.String("name", product.Name))

	product.MarkDeleted()
	s.publishDomainEvents(ctx, product)
	return nil
}

// publishDomainEvents publishes all pending domain events of the product
func (s *ProductService) publishDomainEvents(ctx context.Context, product *catalog.Product) {
	events := product.PullDomainEvents()
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	// errors are logged by the event bus
	_ = s.eventPublisher.Publish(ctx, events...)
}

func parsePrice(raw json.Number) (decimal.Decimal, error) {
	value := strings.TrimSpace(raw.String())
	if value == "" {
		return decimal.Zero, shared.NewValidationError("Price is required")
	}
	price, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, shared.NewValidationError("Price must be a number")
	}
	if price.IsNegative() {
		return decimal.Zero, shared.NewValidationError("Price cannot be negative")
	}
	return price.Round(2), nil
}
