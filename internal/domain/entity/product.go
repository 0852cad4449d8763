package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del catálogo. Stock se lleva en unidad base.
// AverageCost es costo promedio ponderado por unidad base; solo cambia con compras y ajustes positivos con costo.
type Product struct {
	ID               string
	SKU              string // único
	Name             string
	Description      string
	BaseUnit         string // ej. "unidad", "gramo"
	Stock            decimal.Decimal
	MinStock         decimal.Decimal
	AverageCost      decimal.Decimal
	LastPurchaseCost decimal.Decimal
	IsActive         bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ProductVariant presentación de venta de un producto (ej. caja x12).
// ConversionToBase > 0 convierte 1 unidad de la variante a unidades base.
type ProductVariant struct {
	ID               string
	ProductID        string
	Name             string
	Unit             string
	ConversionToBase decimal.Decimal
	SellPrice        decimal.Decimal
	IsActive         bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
