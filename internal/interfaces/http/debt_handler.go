package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pos-api/internal/application/debts"
	"github.com/jhoicas/pos-api/internal/application/dto"
)

// DebtHandler consulta y abonos de deudas.
type DebtHandler struct {
	uc   *debts.UseCase
	val  *Validator
	errs *ErrorMapper
}

// NewDebtHandler construye el handler.
func NewDebtHandler(uc *debts.UseCase, val *Validator, errs *ErrorMapper) *DebtHandler {
	return &DebtHandler{uc: uc, val: val, errs: errs}
}

// GetByID GET /api/debts/:id
func (h *DebtHandler) GetByID(c *fiber.Ctx) error {
	d, err := h.uc.GetDebt(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.errs.Respond(c, err)
	}
	return ok(c, toDebtResponse(d))
}

// Payments GET /api/debts/:id/payments
func (h *DebtHandler) Payments(c *fiber.Ctx) error {
	if _, err := h.uc.GetDebt(c.UserContext(), c.Params("id")); err != nil {
		return h.errs.Respond(c, err)
	}
	list, err := h.uc.ListPayments(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.errs.Respond(c, err)
	}
	out := make([]dto.DebtPaymentResponse, 0, len(list))
	for _, p := range list {
		out = append(out, toDebtPaymentResponse(p))
	}
	return ok(c, out)
}

// Pay godoc
// @Summary      Abonar a una deuda
// @Tags         debts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la deuda"
// @Param        body  body  dto.PaymentRequest  true  "Monto"
// @Success      201   {object}  dto.APIResponse{data=dto.PaymentResultResponse}
// @Failure      400   {object}  dto.APIResponse
// @Failure      409   {object}  dto.APIResponse
// @Failure      422   {object}  dto.APIResponse  "PAYMENT_EXCEEDS_DEBT"
// @Router       /api/debts/{id}/payments [post]
func (h *DebtHandler) Pay(c *fiber.Ctx) error {
	var in dto.PaymentRequest
	if !bind(c, h.val, &in) {
		return nil
	}
	res, err := h.uc.ApplyPayment(c.UserContext(), GetUserID(c), c.Params("id"), in.Amount)
	if err != nil {
		return h.errs.Respond(c, err)
	}
	return created(c, toPaymentResultResponse(res))
}

// MarkPaid godoc
// @Summary      Saldar deuda (abona el saldo restante)
// @Tags         debts
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la deuda"
// @Success      200  {object}  dto.APIResponse{data=dto.PaymentResultResponse}
// @Router       /api/debts/{id}/mark-paid [post]
func (h *DebtHandler) MarkPaid(c *fiber.Ctx) error {
	res, err := h.uc.MarkPaid(c.UserContext(), GetUserID(c), c.Params("id"))
	if err != nil {
		return h.errs.Respond(c, err)
	}
	return ok(c, toPaymentResultResponse(res))
}
