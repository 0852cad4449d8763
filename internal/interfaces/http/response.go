package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/pkg/logger"
)

func ok(c *fiber.Ctx, data interface{}) error {
	return c.JSON(dto.APIResponse{Success: true, Data: data})
}

func created(c *fiber.Ctx, data interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(dto.APIResponse{Success: true, Data: data})
}

func fail(c *fiber.Ctx, status int, code, msg string) error {
	return c.Status(status).JSON(dto.APIResponse{Success: false, Code: code, Error: msg})
}

func validationFailed(c *fiber.Ctx, fields map[string][]string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.APIResponse{
		Success: false, Code: "VALIDATION", Error: "datos inválidos", Errors: fields,
	})
}

// ErrorMapper traduce errores de dominio a respuestas HTTP. Los errores no tipados
// son fallas de persistencia: 500 genérico y el detalle solo va al log.
type ErrorMapper struct {
	log *logger.Logger
}

// NewErrorMapper construye el mapper.
func NewErrorMapper(log *logger.Logger) *ErrorMapper {
	return &ErrorMapper{log: log}
}

// Respond escribe la respuesta de error adecuada para err.
func (m *ErrorMapper) Respond(c *fiber.Ctx, err error) error {
	var (
		validation  *domain.ValidationError
		stock       *domain.InsufficientStockError
		balance     *domain.BalanceExceededError
		exchange    *domain.ExchangeOverLimitError
		outstanding *domain.DebtOutstandingError
		payment     *domain.InsufficientPaymentError
		exceeds     *domain.PaymentExceedsDebtError
	)
	switch {
	case errors.As(err, &validation):
		return validationFailed(c, validation.Fields)
	case errors.As(err, &stock):
		return detailed(c, fiber.StatusConflict, "INSUFFICIENT_STOCK", err, stock.Lines)
	case errors.As(err, &balance):
		return detailed(c, fiber.StatusUnprocessableEntity, "BALANCE_EXCEEDED", err, balance)
	case errors.As(err, &exchange):
		return detailed(c, fiber.StatusUnprocessableEntity, "EXCHANGE_OVER_LIMIT", err, exchange)
	case errors.As(err, &outstanding):
		return detailed(c, fiber.StatusConflict, "DEBT_OUTSTANDING", err, outstanding)
	case errors.As(err, &payment):
		return detailed(c, fiber.StatusUnprocessableEntity, "INSUFFICIENT_PAYMENT", err, payment)
	case errors.As(err, &exceeds):
		return detailed(c, fiber.StatusUnprocessableEntity, "PAYMENT_EXCEEDS_DEBT", err, exceeds)
	case errors.Is(err, domain.ErrInsufficientStock):
		return fail(c, fiber.StatusConflict, "INSUFFICIENT_STOCK", err.Error())
	case errors.Is(err, domain.ErrInvalidInput):
		return fail(c, fiber.StatusBadRequest, "VALIDATION", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return fail(c, fiber.StatusNotFound, "NOT_FOUND", "recurso no encontrado")
	case errors.Is(err, domain.ErrDuplicate), errors.Is(err, domain.ErrUsernameAlreadyExists):
		return fail(c, fiber.StatusConflict, "DUPLICATE", err.Error())
	case errors.Is(err, domain.ErrConflict):
		return fail(c, fiber.StatusConflict, "CONFLICT", err.Error())
	case errors.Is(err, domain.ErrUnauthorized), errors.Is(err, domain.ErrUserNotFound):
		return fail(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "credenciales inválidas")
	case errors.Is(err, domain.ErrForbidden):
		return fail(c, fiber.StatusForbidden, "FORBIDDEN", "acceso denegado")
	}
	m.log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("falla de persistencia")
	return fail(c, fiber.StatusInternalServerError, "INTERNAL", "error interno, intente de nuevo")
}

func detailed(c *fiber.Ctx, status int, code string, err error, details interface{}) error {
	return c.Status(status).JSON(dto.APIResponse{Success: false, Code: code, Error: err.Error(), Details: details})
}

// paging lee limit/offset con tope de 100.
func paging(c *fiber.Ctx) (int, int) {
	limit := c.QueryInt("limit", 20)
	offset := c.QueryInt("offset", 0)
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
