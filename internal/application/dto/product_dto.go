package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateVariantRequest presentación de venta. ConversionToBase convierte 1 unidad a unidad base.
type CreateVariantRequest struct {
	Name             string          `json:"name" validate:"required,max=100"`
	Unit             string          `json:"unit" validate:"omitempty,max=30"`
	ConversionToBase decimal.Decimal `json:"conversion_to_base" validate:"gt=0"`
	SellPrice        decimal.Decimal `json:"sell_price" validate:"gte=0"`
}

// CreateProductRequest entrada para crear un producto. Stock y costo nacen en cero; suben con compras.
type CreateProductRequest struct {
	SKU         string                 `json:"sku" validate:"required,min=1,max=100"`
	Name        string                 `json:"name" validate:"required,min=1,max=200"`
	Description string                 `json:"description" validate:"max=1000"`
	BaseUnit    string                 `json:"base_unit" validate:"required,max=30"`
	MinStock    decimal.Decimal        `json:"min_stock" validate:"gte=0"`
	Variants    []CreateVariantRequest `json:"variants" validate:"omitempty,dive"`
}

// UpdateProductRequest entrada para actualizar un producto (sin stock ni costos).
type UpdateProductRequest struct {
	Name        *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string          `json:"description"`
	MinStock    *decimal.Decimal `json:"min_stock"`
	IsActive    *bool            `json:"is_active"`
}

// UpdateVariantRequest cambia precio o factor; las ventas ya hechas conservan su copia.
type UpdateVariantRequest struct {
	Name             *string          `json:"name" validate:"omitempty,min=1,max=100"`
	ConversionToBase *decimal.Decimal `json:"conversion_to_base"`
	SellPrice        *decimal.Decimal `json:"sell_price"`
	IsActive         *bool            `json:"is_active"`
}

// VariantResponse salida de una variante.
type VariantResponse struct {
	ID               string          `json:"id"`
	ProductID        string          `json:"product_id"`
	Name             string          `json:"name"`
	Unit             string          `json:"unit"`
	ConversionToBase decimal.Decimal `json:"conversion_to_base"`
	SellPrice        decimal.Decimal `json:"sell_price"`
	IsActive         bool            `json:"is_active"`
}

// ProductResponse salida de un producto con sus variantes.
type ProductResponse struct {
	ID               string            `json:"id"`
	SKU              string            `json:"sku"`
	Name             string            `json:"name"`
	Description      string            `json:"description"`
	BaseUnit         string            `json:"base_unit"`
	Stock            decimal.Decimal   `json:"stock"`
	MinStock         decimal.Decimal   `json:"min_stock"`
	AverageCost      decimal.Decimal   `json:"average_cost"`
	LastPurchaseCost decimal.Decimal   `json:"last_purchase_cost"`
	IsActive         bool              `json:"is_active"`
	Variants         []VariantResponse `json:"variants,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
