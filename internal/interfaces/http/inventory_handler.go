package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/application/inventory"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

// InventoryHandler compras, ajustes, kardex y reposición (protegido).
type InventoryHandler struct {
	purchases     *inventory.PurchaseUseCase
	adjustments   *inventory.AdjustmentUseCase
	replenishment *inventory.ReplenishmentUseCase
	val           *Validator
	errs          *ErrorMapper
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(
	purchases *inventory.PurchaseUseCase,
	adjustments *inventory.AdjustmentUseCase,
	replenishment *inventory.ReplenishmentUseCase,
	val *Validator,
	errs *ErrorMapper,
) *InventoryHandler {
	return &InventoryHandler{purchases: purchases, adjustments: adjustments, replenishment: replenishment, val: val, errs: errs}
}

// ReceivePurchase godoc
// @Summary      Recibir compra
// @Description  Suma stock y recalcula el costo promedio ponderado por cada línea.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReceivePurchaseRequest  true  "Proveedor y líneas (qty y unit_cost en unidades de la variante)"
// @Success      201   {object}  dto.APIResponse{data=dto.PurchaseResponse}
// @Failure      400   {object}  dto.APIResponse
// @Failure      404   {object}  dto.APIResponse
// @Router       /api/purchases [post]
func (h *InventoryHandler) ReceivePurchase(c *fiber.Ctx) error {
	var in dto.ReceivePurchaseRequest
	if !bind(c, h.val, &in) {
		return nil
	}
	items := make([]inventory.PurchaseLineInput, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, inventory.PurchaseLineInput{
			ProductID: it.ProductID,
			VariantID: it.VariantID,
			Qty:       it.Qty,
			UnitCost:  it.UnitCost,
		})
	}
	p, err := h.purchases.ReceivePurchase(c.UserContext(), GetUserID(c), inventory.ReceivePurchaseInput{
		SupplierName: in.SupplierName,
		Notes:        in.Notes,
		Items:        items,
	})
	if err != nil {
		return h.errs.Respond(c, err)
	}
	return created(c, toPurchaseResponse(p))
}

// GetPurchase GET /api/purchases/:id
func (h *InventoryHandler) GetPurchase(c *fiber.Ctx) error {
	p, err := h.purchases.GetPurchase(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.errs.Respond(c, err)
	}
	return ok(c, toPurchaseResponse(p))
}

// ListPurchases GET /api/purchases?limit=&offset=
func (h *InventoryHandler) ListPurchases(c *fiber.Ctx) error {
	limit, offset := paging(c)
	list, err := h.purchases.ListPurchases(c.UserContext(), limit, offset)
	if err != nil {
		return h.errs.Respond(c, err)
	}
	out := make([]dto.PurchaseResponse, 0, len(list))
	for _, p := range list {
		out = append(out, toPurchaseResponse(p))
	}
	return ok(c, out)
}

// CancelPurchase POST /api/purchases/:id/cancel (admin). No revierte el costo promedio.
func (h *InventoryHandler) CancelPurchase(c *fiber.Ctx) error {
	p, err := h.purchases.CancelPurchase(c.UserContext(), GetUserID(c), c.Params("id"))
	if err != nil {
		return h.errs.Respond(c, err)
	}
	return ok(c, toPurchaseResponse(p))
}

// AdjustStock godoc
// @Summary      Ajuste manual de inventario
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustStockRequest  true  "qty con signo; unit_cost opcional para ajustes positivos"
// @Success      201   {object}  dto.APIResponse{data=dto.StockMutationDTO}
// @Failure      400   {object}  dto.APIResponse
// @Failure      409   {object}  dto.APIResponse
// @Router       /api/inventory/adjustments [post]
func (h *InventoryHandler) AdjustStock(c *fiber.Ctx) error {
	var in dto.AdjustStockRequest
	if !bind(c, h.val, &in) {
		return nil
	}
	m, err := h.adjustments.AdjustStock(c.UserContext(), GetUserID(c), inventory.AdjustStockInput{
		ProductID: in.ProductID,
		VariantID: in.VariantID,
		Qty:       in.Qty,
		UnitCost:  in.UnitCost,
		Notes:     in.Notes,
	})
	if err != nil {
		return h.errs.Respond(c, err)
	}
	return created(c, toStockMutationDTO(m))
}

// ReturnToSupplier POST /api/inventory/supplier-returns
func (h *InventoryHandler) ReturnToSupplier(c *fiber.Ctx) error {
	var in dto.SupplierReturnRequest
	if !bind(c, h.val, &in) {
		return nil
	}
	m, err := h.adjustments.ReturnToSupplier(c.UserContext(), GetUserID(c), inventory.SupplierReturnInput{
		ProductID: in.ProductID,
		VariantID: in.VariantID,
		Qty:       in.Qty,
		Reference: in.Reference,
		Notes:     in.Notes,
	})
	if err != nil {
		return h.errs.Respond(c, err)
	}
	return created(c, toStockMutationDTO(m))
}

// Mutations godoc
// @Summary      Kardex de un producto
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id          path   string  true   "ID del producto"
// @Param        variant_id  query  string  false  "Filtrar por variante"
// @Param        from        query  string  false  "YYYY-MM-DD"
// @Param        to          query  string  false  "YYYY-MM-DD"
// @Success      200  {object}  dto.APIResponse{data=[]dto.StockMutationDTO}
// @Router       /api/inventory/products/{id}/mutations [get]
func (h *InventoryHandler) Mutations(c *fiber.Ctx) error {
	limit, offset := paging(c)
	f := repository.MutationFilter{
		ProductID: c.Params("id"),
		VariantID: c.Query("variant_id"),
		Limit:     limit,
		Offset:    offset,
	}
	var err error
	if f.From, err = queryDate(c, "from", false); err != nil {
		return fail(c, fiber.StatusBadRequest, "VALIDATION", "from debe tener formato YYYY-MM-DD")
	}
	if f.To, err = queryDate(c, "to", true); err != nil {
		return fail(c, fiber.StatusBadRequest, "VALIDATION", "to debe tener formato YYYY-MM-DD")
	}
	list, err := h.adjustments.ListMutations(c.UserContext(), f)
	if err != nil {
		return h.errs.Respond(c, err)
	}
	out := make([]dto.StockMutationDTO, 0, len(list))
	for _, m := range list {
		out = append(out, toStockMutationDTO(m))
	}
	return ok(c, out)
}

// GetReplenishmentList godoc
// @Summary      Lista de reposición
// @Description  Productos bajo su stock mínimo con la cantidad sugerida de pedido,
//
//	ordenados por margen histórico y volumen de ventas.
//
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.APIResponse{data=[]dto.ReplenishmentSuggestionDTO}
// @Failure      401  {object}  dto.APIResponse
// @Router       /api/inventory/replenishment-list [get]
func (h *InventoryHandler) GetReplenishmentList(c *fiber.Ctx) error {
	list, err := h.replenishment.GenerateReplenishmentList(c.UserContext())
	if err != nil {
		return h.errs.Respond(c, err)
	}
	if list == nil {
		list = []dto.ReplenishmentSuggestionDTO{}
	}
	return ok(c, list)
}
