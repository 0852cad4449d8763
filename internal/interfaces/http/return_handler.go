package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/application/returns"
)

// ReturnHandler devoluciones y cambios.
type ReturnHandler struct {
	uc   *returns.UseCase
	val  *Validator
	errs *ErrorMapper
}

// NewReturnHandler construye el handler.
func NewReturnHandler(uc *returns.UseCase, val *Validator, errs *ErrorMapper) *ReturnHandler {
	return &ReturnHandler{uc: uc, val: val, errs: errs}
}

// Lookup godoc
// @Summary      Buscar venta para devolución
// @Description  Devuelve las líneas con lo ya devuelto y el máximo devolvible. blocked=true si la venta tiene deuda activa.
// @Tags         returns
// @Security     Bearer
// @Produce      json
// @Param        invoice  path  string  true  "Número de factura"
// @Success      200      {object}  dto.APIResponse{data=dto.ReturnableSaleResponse}
// @Failure      404      {object}  dto.APIResponse
// @Router       /api/returns/lookup/{invoice} [get]
func (h *ReturnHandler) Lookup(c *fiber.Ctx) error {
	out, err := h.uc.LookupReturnable(c.UserContext(), c.Params("invoice"))
	if err != nil {
		return h.errs.Respond(c, err)
	}
	return ok(c, toReturnableSaleResponse(out))
}

// Create godoc
// @Summary      Registrar devolución o cambio
// @Tags         returns
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateReturnRequest  true  "Líneas devueltas y compensación"
// @Success      201   {object}  dto.APIResponse{data=dto.ReturnResultResponse}
// @Failure      400   {object}  dto.APIResponse
// @Failure      409   {object}  dto.APIResponse  "DEBT_OUTSTANDING, CONFLICT o INSUFFICIENT_STOCK"
// @Failure      422   {object}  dto.APIResponse  "EXCHANGE_OVER_LIMIT"
// @Router       /api/returns [post]
func (h *ReturnHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateReturnRequest
	if !bind(c, h.val, &in) {
		return nil
	}
	items := make([]returns.ReturnLineInput, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, returns.ReturnLineInput{SaleItemID: it.SaleItemID, Qty: it.Qty, ReturnedToStock: it.ReturnedToStock})
	}
	exchange := make([]returns.ExchangeLineInput, 0, len(in.ExchangeItems))
	for _, it := range in.ExchangeItems {
		exchange = append(exchange, returns.ExchangeLineInput{ProductID: it.ProductID, VariantID: it.VariantID, Qty: it.Qty})
	}
	res, err := h.uc.CreateReturn(c.UserContext(), GetUserID(c), returns.CreateReturnInput{
		InvoiceNumber:      in.InvoiceNumber,
		CustomerID:         in.CustomerID,
		Items:              items,
		CompensationType:   in.CompensationType,
		SurplusDisposition: in.SurplusDisposition,
		ExchangeItems:      exchange,
		Reason:             in.Reason,
	})
	if err != nil {
		return h.errs.Respond(c, err)
	}
	return created(c, toReturnResultResponse(res))
}

// GetByID GET /api/returns/:id
func (h *ReturnHandler) GetByID(c *fiber.Ctx) error {
	ret, err := h.uc.GetReturn(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.errs.Respond(c, err)
	}
	return ok(c, toReturnResponse(ret))
}

// ListBySale GET /api/sales/:id/returns
func (h *ReturnHandler) ListBySale(c *fiber.Ctx) error {
	list, err := h.uc.ListReturnsBySale(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.errs.Respond(c, err)
	}
	out := make([]dto.ReturnResponse, 0, len(list))
	for _, r := range list {
		out = append(out, toReturnResponse(r))
	}
	return ok(c, out)
}

// Cancel godoc
// @Summary      Anular devolución (admin)
// @Tags         returns
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la devolución"
// @Success      200  {object}  dto.APIResponse{data=dto.ReturnResponse}
// @Failure      409  {object}  dto.APIResponse
// @Failure      422  {object}  dto.APIResponse  "BALANCE_EXCEEDED si el saldo a favor ya se usó"
// @Router       /api/returns/{id}/cancel [post]
func (h *ReturnHandler) Cancel(c *fiber.Ctx) error {
	ret, err := h.uc.CancelReturn(c.UserContext(), GetUserID(c), c.Params("id"))
	if err != nil {
		return h.errs.Respond(c, err)
	}
	return ok(c, toReturnResponse(ret))
}
