package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/application/sales"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

// SaleHandler ventas: creación, consulta y anulación.
type SaleHandler struct {
	uc       *sales.UseCase
	receipts *sales.ReceiptUseCase
	val      *Validator
	errs     *ErrorMapper
}

// NewSaleHandler construye el handler. receipts nil desactiva el comprobante PDF.
func NewSaleHandler(uc *sales.UseCase, receipts *sales.ReceiptUseCase, val *Validator, errs *ErrorMapper) *SaleHandler {
	return &SaleHandler{uc: uc, receipts: receipts, val: val, errs: errs}
}

// Create godoc
// @Summary      Registrar venta
// @Description  Valida stock, saldo a favor y pago en una sola transacción. Todo o nada.
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateSaleRequest  true  "Carrito y pago"
// @Success      201   {object}  dto.APIResponse{data=dto.SaleResultResponse}
// @Failure      400   {object}  dto.APIResponse
// @Failure      409   {object}  dto.APIResponse  "INSUFFICIENT_STOCK con detalle por línea"
// @Failure      422   {object}  dto.APIResponse  "BALANCE_EXCEEDED o INSUFFICIENT_PAYMENT"
// @Router       /api/sales [post]
func (h *SaleHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateSaleRequest
	if !bind(c, h.val, &in) {
		return nil
	}
	lines := make([]sales.LineInput, 0, len(in.Items))
	for _, it := range in.Items {
		lines = append(lines, sales.LineInput{ProductID: it.ProductID, VariantID: it.VariantID, Qty: it.Qty})
	}
	res, err := h.uc.CreateSale(c.UserContext(), GetUserID(c), sales.CreateSaleInput{
		CustomerID:       in.CustomerID,
		Items:            lines,
		TotalPaid:        in.TotalPaid,
		TotalBalanceUsed: in.TotalBalanceUsed,
		ShouldPayOldDebt: in.ShouldPayOldDebt,
		IsDebt:           in.IsDebt,
		Notes:            in.Notes,
	})
	if err != nil {
		return h.errs.Respond(c, err)
	}
	return created(c, toSaleResultResponse(res))
}

// GetByID godoc
// @Summary      Obtener venta
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la venta"
// @Success      200  {object}  dto.APIResponse{data=dto.SaleResponse}
// @Failure      404  {object}  dto.APIResponse
// @Router       /api/sales/{id} [get]
func (h *SaleHandler) GetByID(c *fiber.Ctx) error {
	sale, err := h.uc.GetSale(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.errs.Respond(c, err)
	}
	return ok(c, toSaleResponse(sale))
}

// GetByInvoice GET /api/sales/invoice/:number
func (h *SaleHandler) GetByInvoice(c *fiber.Ctx) error {
	sale, err := h.uc.GetByInvoice(c.UserContext(), c.Params("number"))
	if err != nil {
		return h.errs.Respond(c, err)
	}
	return ok(c, toSaleResponse(sale))
}

// List GET /api/sales?customer_id=&status=&from=&to=&limit=&offset=
// from/to en formato 2006-01-02.
func (h *SaleHandler) List(c *fiber.Ctx) error {
	limit, offset := paging(c)
	f := repository.SaleFilter{
		CustomerID: c.Query("customer_id"),
		Status:     c.Query("status"),
		Limit:      limit,
		Offset:     offset,
	}
	var err error
	if f.From, err = queryDate(c, "from", false); err != nil {
		return fail(c, fiber.StatusBadRequest, "VALIDATION", "from debe tener formato YYYY-MM-DD")
	}
	if f.To, err = queryDate(c, "to", true); err != nil {
		return fail(c, fiber.StatusBadRequest, "VALIDATION", "to debe tener formato YYYY-MM-DD")
	}
	list, err := h.uc.ListSales(c.UserContext(), f)
	if err != nil {
		return h.errs.Respond(c, err)
	}
	out := make([]dto.SaleResponse, 0, len(list))
	for _, s := range list {
		out = append(out, toSaleResponse(s))
	}
	return ok(c, out)
}

// Cancel godoc
// @Summary      Anular venta (admin)
// @Description  Repone stock, restituye saldo a favor y revierte abonos a deudas anteriores.
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la venta"
// @Param        body  body  dto.CancelRequest  false  "Motivo"
// @Success      200   {object}  dto.APIResponse{data=dto.SaleResponse}
// @Failure      404   {object}  dto.APIResponse
// @Failure      409   {object}  dto.APIResponse
// @Router       /api/sales/{id}/cancel [post]
func (h *SaleHandler) Cancel(c *fiber.Ctx) error {
	var in dto.CancelRequest
	if len(c.Body()) > 0 && !bind(c, h.val, &in) {
		return nil
	}
	sale, err := h.uc.CancelSale(c.UserContext(), GetUserID(c), c.Params("id"), in.Reason)
	if err != nil {
		return h.errs.Respond(c, err)
	}
	return ok(c, toSaleResponse(sale))
}

// Receipt godoc
// @Summary      Comprobante de venta en PDF
// @Tags         sales
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID de la venta"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.APIResponse
// @Router       /api/sales/{id}/receipt [get]
func (h *SaleHandler) Receipt(c *fiber.Ctx) error {
	if h.receipts == nil {
		return fail(c, fiber.StatusNotFound, "NOT_FOUND", "comprobante no disponible")
	}
	doc, filename, err := h.receipts.DownloadReceipt(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.errs.Respond(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="`+filename+`"`)
	return c.Send(doc)
}

// queryDate lee una fecha YYYY-MM-DD; endOfDay la lleva a 23:59:59.
func queryDate(c *fiber.Ctx, key string, endOfDay bool) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation("2006-01-02", raw, time.Local)
	if err != nil {
		return nil, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}
