package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pos-api/internal/application/debts"
	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/application/usecase"
)

// CustomerHandler maneja las peticiones HTTP de clientes (protegido).
type CustomerHandler struct {
	uc    *usecase.CustomerUseCase
	debts *debts.UseCase
	val   *Validator
	errs  *ErrorMapper
}

// NewCustomerHandler construye el handler.
func NewCustomerHandler(uc *usecase.CustomerUseCase, debtUC *debts.UseCase, val *Validator, errs *ErrorMapper) *CustomerHandler {
	return &CustomerHandler{uc: uc, debts: debtUC, val: val, errs: errs}
}

// Create POST /api/customers
func (h *CustomerHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateCustomerRequest
	if !bind(c, h.val, &in) {
		return nil
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return h.errs.Respond(c, err)
	}
	return created(c, out)
}

// GetByID GET /api/customers/:id
func (h *CustomerHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.errs.Respond(c, err)
	}
	return ok(c, out)
}

// Update PUT /api/customers/:id
func (h *CustomerHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateCustomerRequest
	if !bind(c, h.val, &in) {
		return nil
	}
	out, err := h.uc.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return h.errs.Respond(c, err)
	}
	return ok(c, out)
}

// List GET /api/customers?search=&limit=&offset=
func (h *CustomerHandler) List(c *fiber.Ctx) error {
	limit, offset := paging(c)
	out, err := h.uc.List(c.UserContext(), c.Query("search"), limit, offset)
	if err != nil {
		return h.errs.Respond(c, err)
	}
	return ok(c, out)
}

// Debts GET /api/customers/:id/debts?all=true
// Por defecto solo deudas activas; total_debt siempre es la suma de saldos activos.
func (h *CustomerHandler) Debts(c *fiber.Ctx) error {
	summary, err := h.debts.CustomerDebtSummary(c.UserContext(), c.Params("id"), !c.QueryBool("all", false))
	if err != nil {
		return h.errs.Respond(c, err)
	}
	return ok(c, toCustomerDebtsResponse(summary))
}
