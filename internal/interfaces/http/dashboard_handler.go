package http

import (
	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/pos-api/internal/application/analytics"
)

// DashboardHandler maneja los endpoints del módulo de Dashboard.
type DashboardHandler struct {
	uc   *appanalytics.DashboardUseCase
	errs *ErrorMapper
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(uc *appanalytics.DashboardUseCase, errs *ErrorMapper) *DashboardHandler {
	return &DashboardHandler{uc: uc, errs: errs}
}

// GetSummary devuelve el resumen financiero del día y del mes en curso.
// GET /api/dashboard/summary
//
// Respuesta: DashboardSummaryDTO (today_sales, today_margin, monthly_sales,
// monthly_margin, top_products[5], outstanding_debt, date_label).
// Ventas netas de devoluciones; las anuladas no cuentan.
func (h *DashboardHandler) GetSummary(c *fiber.Ctx) error {
	summary, err := h.uc.GetSummary(c.UserContext())
	if err != nil {
		return h.errs.Respond(c, err)
	}
	return ok(c, summary)
}
