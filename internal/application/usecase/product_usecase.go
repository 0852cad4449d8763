package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/application/ports"
	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

// ProductUseCase catálogo: productos y sus variantes. Stock y costos solo cambian vía movimientos.
type ProductUseCase struct {
	txRunner ports.TxRunner
	products repository.ProductRepository
	variants repository.VariantRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(txRunner ports.TxRunner, products repository.ProductRepository, variants repository.VariantRepository) *ProductUseCase {
	return &ProductUseCase{txRunner: txRunner, products: products, variants: variants}
}

// Create crea el producto con sus variantes. Sin variantes se crea una en unidad base con factor 1.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	in.SKU = strings.TrimSpace(in.SKU)
	existing, err := uc.products.GetBySKU(ctx, in.SKU)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	now := time.Now()
	product := &entity.Product{
		ID:          uuid.New().String(),
		SKU:         in.SKU,
		Name:        in.Name,
		Description: in.Description,
		BaseUnit:    in.BaseUnit,
		Stock:       decimal.Zero,
		MinStock:    in.MinStock,
		AverageCost: decimal.Zero,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	reqs := in.Variants
	if len(reqs) == 0 {
		reqs = []dto.CreateVariantRequest{{Name: in.BaseUnit, Unit: in.BaseUnit, ConversionToBase: decimal.NewFromInt(1)}}
	}
	variants := make([]*entity.ProductVariant, 0, len(reqs))
	for _, r := range reqs {
		v, err := newVariant(product.ID, r, now)
		if err != nil {
			return nil, err
		}
		variants = append(variants, v)
	}

	err = uc.txRunner.Run(ctx, func(repos repository.Repos) error {
		if err := repos.Products.Create(ctx, product); err != nil {
			return err
		}
		for _, v := range variants {
			if err := repos.Variants.Create(ctx, v); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toProductResponse(product, variants), nil
}

func newVariant(productID string, r dto.CreateVariantRequest, now time.Time) (*entity.ProductVariant, error) {
	if !r.ConversionToBase.IsPositive() {
		return nil, domain.Invalid("conversion_to_base", "debe ser mayor a cero")
	}
	if r.SellPrice.IsNegative() {
		return nil, domain.Invalid("sell_price", "no puede ser negativo")
	}
	return &entity.ProductVariant{
		ID:               uuid.New().String(),
		ProductID:        productID,
		Name:             r.Name,
		Unit:             r.Unit,
		ConversionToBase: r.ConversionToBase,
		SellPrice:        r.SellPrice,
		IsActive:         true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// GetByID obtiene un producto con sus variantes.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	variants, err := uc.variants.ListByProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	return toProductResponse(product, variants), nil
}

// Update actualiza datos descriptivos y stock mínimo.
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if in.Name != nil {
		product.Name = *in.Name
	}
	if in.Description != nil {
		product.Description = *in.Description
	}
	if in.MinStock != nil {
		if in.MinStock.IsNegative() {
			return nil, domain.Invalid("min_stock", "no puede ser negativo")
		}
		product.MinStock = *in.MinStock
	}
	if in.IsActive != nil {
		product.IsActive = *in.IsActive
	}
	product.UpdatedAt = time.Now()
	if err := uc.products.Update(ctx, product); err != nil {
		return nil, err
	}
	return uc.GetByID(ctx, id)
}

// List lista productos con paginación.
func (uc *ProductUseCase) List(ctx context.Context, limit, offset int) (*dto.ProductListResponse, error) {
	list, err := uc.products.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(p, nil))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

// AddVariant agrega una presentación de venta al producto.
func (uc *ProductUseCase) AddVariant(ctx context.Context, productID string, in dto.CreateVariantRequest) (*dto.VariantResponse, error) {
	product, err := uc.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	v, err := newVariant(productID, in, time.Now())
	if err != nil {
		return nil, err
	}
	if err := uc.variants.Create(ctx, v); err != nil {
		return nil, err
	}
	out := toVariantResponse(v)
	return &out, nil
}

// UpdateVariant cambia precio, factor o estado. Las líneas de venta ya registradas no se tocan.
func (uc *ProductUseCase) UpdateVariant(ctx context.Context, variantID string, in dto.UpdateVariantRequest) (*dto.VariantResponse, error) {
	v, err := uc.variants.GetByID(ctx, variantID)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, domain.ErrNotFound
	}
	if in.Name != nil {
		v.Name = *in.Name
	}
	if in.ConversionToBase != nil {
		if !in.ConversionToBase.IsPositive() {
			return nil, domain.Invalid("conversion_to_base", "debe ser mayor a cero")
		}
		v.ConversionToBase = *in.ConversionToBase
	}
	if in.SellPrice != nil {
		if in.SellPrice.IsNegative() {
			return nil, domain.Invalid("sell_price", "no puede ser negativo")
		}
		v.SellPrice = *in.SellPrice
	}
	if in.IsActive != nil {
		v.IsActive = *in.IsActive
	}
	v.UpdatedAt = time.Now()
	if err := uc.variants.Update(ctx, v); err != nil {
		return nil, err
	}
	out := toVariantResponse(v)
	return &out, nil
}

func toProductResponse(p *entity.Product, variants []*entity.ProductVariant) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	out := &dto.ProductResponse{
		ID:               p.ID,
		SKU:              p.SKU,
		Name:             p.Name,
		Description:      p.Description,
		BaseUnit:         p.BaseUnit,
		Stock:            p.Stock,
		MinStock:         p.MinStock,
		AverageCost:      p.AverageCost,
		LastPurchaseCost: p.LastPurchaseCost,
		IsActive:         p.IsActive,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
	for _, v := range variants {
		out.Variants = append(out.Variants, toVariantResponse(v))
	}
	return out
}

func toVariantResponse(v *entity.ProductVariant) dto.VariantResponse {
	return dto.VariantResponse{
		ID:               v.ID,
		ProductID:        v.ProductID,
		Name:             v.Name,
		Unit:             v.Unit,
		ConversionToBase: v.ConversionToBase,
		SellPrice:        v.SellPrice,
		IsActive:         v.IsActive,
	}
}
