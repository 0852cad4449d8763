package usecase_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/application/usecase"
	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/infrastructure/memory"
)

func TestProductUseCase_CrearConVariantes(t *testing.T) {
	store := memory.New()
	repos := store.Repos()
	uc := usecase.NewProductUseCase(store, repos.Products, repos.Variants)
	ctx := context.Background()

	p, err := uc.Create(ctx, dto.CreateProductRequest{
		SKU: "ARZ-1", Name: "Arroz", BaseUnit: "unidad", MinStock: decimal.NewFromInt(24),
		Variants: []dto.CreateVariantRequest{
			{Name: "Unidad", ConversionToBase: decimal.NewFromInt(1), SellPrice: decimal.NewFromInt(1500)},
			{Name: "Caja x12", ConversionToBase: decimal.NewFromInt(12), SellPrice: decimal.NewFromInt(15000)},
		},
	})
	require.NoError(t, err)
	assert.True(t, p.Stock.IsZero())
	assert.Len(t, p.Variants, 2)

	_, err = uc.Create(ctx, dto.CreateProductRequest{SKU: "ARZ-1", Name: "Otro", BaseUnit: "unidad"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = uc.Create(ctx, dto.CreateProductRequest{
		SKU: "X", Name: "X", BaseUnit: "unidad",
		Variants: []dto.CreateVariantRequest{{Name: "mala", ConversionToBase: decimal.Zero}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	price := decimal.NewFromInt(16000)
	v, err := uc.UpdateVariant(ctx, p.Variants[1].ID, dto.UpdateVariantRequest{SellPrice: &price})
	require.NoError(t, err)
	assert.True(t, v.SellPrice.Equal(price))

	got, err := uc.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, got.Variants, 2)

	_, err = uc.GetByID(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProductUseCase_SinVariantesCreaUnidadBase(t *testing.T) {
	store := memory.New()
	repos := store.Repos()
	uc := usecase.NewProductUseCase(store, repos.Products, repos.Variants)

	p, err := uc.Create(context.Background(), dto.CreateProductRequest{SKU: "SAL", Name: "Sal", BaseUnit: "libra"})
	require.NoError(t, err)
	require.Len(t, p.Variants, 1)
	assert.True(t, p.Variants[0].ConversionToBase.Equal(decimal.NewFromInt(1)))
}

func TestCustomerUseCase(t *testing.T) {
	store := memory.New()
	uc := usecase.NewCustomerUseCase(store.Repos().Customers)
	ctx := context.Background()

	c, err := uc.Create(ctx, dto.CreateCustomerRequest{Name: "Ana Pérez", Phone: "3001234567"})
	require.NoError(t, err)
	assert.True(t, c.CreditBalance.IsZero())

	name := "Ana María Pérez"
	up, err := uc.Update(ctx, c.ID, dto.UpdateCustomerRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, name, up.Name)

	list, err := uc.List(ctx, "maría", 10, 0)
	require.NoError(t, err)
	assert.Len(t, list.Items, 1)

	_, err = uc.GetByID(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
