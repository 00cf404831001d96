package http

import (
	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/cargotrack-api/internal/application/analytics"
)

// DashboardHandler endpoints de analítica.
type DashboardHandler struct {
	uc *appanalytics.DashboardUseCase
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(uc *appanalytics.DashboardUseCase) *DashboardHandler {
	return &DashboardHandler{uc: uc}
}

// GetDashboard godoc
// @Summary      Dashboard de transacciones
// @Description  KPIs, serie diaria, totales por tipo y top 10 de embarques por valor en los últimos days días.
// @Tags         analytics
// @Security     Bearer
// @Produce      json
// @Param        days  query  int  false  "Ventana en días (1-365)"  default(30)
// @Success      200   {object}  dto.DashboardResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/analytics/dashboard [get]
func (h *DashboardHandler) GetDashboard(c *fiber.Ctx) error {
	days, err := queryIntOr(c, "days", appanalytics.DefaultDays)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.GetDashboard(c.UserContext(), days)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
