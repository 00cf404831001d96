package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/cargotrack-api/internal/application/contract"
	"github.com/jhoicas/cargotrack-api/internal/application/dto"
	"github.com/jhoicas/cargotrack-api/internal/application/shipment"
	"github.com/jhoicas/cargotrack-api/internal/application/transaction"
)

// ShipmentHandler embarques: versiones, vista actual, ítems espejo, contratos y reporte.
type ShipmentHandler struct {
	uc        *shipment.ShipmentUseCase
	report    *shipment.ReportUseCase
	txs       *transaction.TransactionUseCase
	contracts *contract.ContractUseCase
}

// NewShipmentHandler construye el handler.
func NewShipmentHandler(
	uc *shipment.ShipmentUseCase,
	report *shipment.ReportUseCase,
	txs *transaction.TransactionUseCase,
	contracts *contract.ContractUseCase,
) *ShipmentHandler {
	return &ShipmentHandler{uc: uc, report: report, txs: txs, contracts: contracts}
}

// Create godoc
// @Summary      Crear embarque (versión 1)
// @Tags         shipments
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ShipmentWriteRequest  true  "Estado, fechas, buque, origen y destino"
// @Success      201   {object}  dto.WriteVersionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/shipments [post]
func (h *ShipmentHandler) Create(c *fiber.Ctx) error {
	var in dto.ShipmentWriteRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Create(c.UserContext(), in, GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Update godoc
// @Summary      Escribir nueva versión
// @Description  Los campos omitidos se conservan de la versión actual; null los limpia.
// @Tags         shipments
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del embarque"
// @Param        body  body  dto.ShipmentWriteRequest  true  "Campos a cambiar"
// @Success      200   {object}  dto.WriteVersionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/shipments/{id} [patch]
func (h *ShipmentHandler) Update(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return missingID(c)
	}
	var in dto.ShipmentWriteRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Update(c.UserContext(), id, in, GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Vista actual, historial e ítems
// @Tags         shipments
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del embarque"
// @Success      200  {object}  dto.ShipmentDetailResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/shipments/{id} [get]
func (h *ShipmentHandler) GetByID(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return missingID(c)
	}
	out, err := h.uc.Get(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar embarques (vista actual)
// @Tags         shipments
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite"  default(20)
// @Param        offset  query  int  false  "Offset"  default(0)
// @Success      200     {object}  dto.ShipmentListResponse
// @Router       /api/shipments [get]
func (h *ShipmentHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext(), pageFromQuery(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Borrar embarque
// @Description  Borra el embarque con su historial e ítems; las transacciones quedan sin asignar.
// @Tags         shipments
// @Security     Bearer
// @Param        id   path  string  true  "ID del embarque"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/shipments/{id} [delete]
func (h *ShipmentHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return missingID(c)
	}
	if err := h.uc.Delete(c.UserContext(), id); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// History godoc
// @Summary      Historial de versiones
// @Tags         shipments
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del embarque"
// @Success      200  {array}   dto.ShipmentVersionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/shipments/{id}/history [get]
func (h *ShipmentHandler) History(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return missingID(c)
	}
	out, err := h.uc.History(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// DeleteVersion godoc
// @Summary      Borrar una versión (correctivo)
// @Description  Si era la versión actual, el puntero pasa a la de mayor número restante.
// @Tags         shipments
// @Security     Bearer
// @Param        id         path  string  true  "ID del embarque"
// @Param        versionId  path  string  true  "ID de la versión"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/shipments/{id}/versions/{versionId} [delete]
func (h *ShipmentHandler) DeleteVersion(c *fiber.Ctx) error {
	id, versionID := c.Params("id"), c.Params("versionId")
	if id == "" || versionID == "" {
		return missingID(c)
	}
	if err := h.uc.DeleteVersion(c.UserContext(), id, versionID); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Items godoc
// @Summary      Ítems de carga (espejo de líneas)
// @Tags         shipments
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del embarque"
// @Success      200  {array}   dto.ShipmentItemResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/shipments/{id}/items [get]
func (h *ShipmentHandler) Items(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return missingID(c)
	}
	out, err := h.uc.Items(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// RebuildItems godoc
// @Summary      Reconstruir ítems espejo
// @Tags         shipments
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del embarque"
// @Success      200  {object}  map[string]int
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/shipments/{id}/items/rebuild [post]
func (h *ShipmentHandler) RebuildItems(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return missingID(c)
	}
	n, err := h.txs.RebuildItems(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"items": n})
}

// Contracts godoc
// @Summary      Contratos del embarque
// @Tags         shipments
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del embarque"
// @Success      200  {array}   dto.ContractResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/shipments/{id}/contracts [get]
func (h *ShipmentHandler) Contracts(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return missingID(c)
	}
	out, err := h.contracts.ListByShipment(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Transactions godoc
// @Summary      Transacciones del embarque
// @Tags         shipments
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del embarque"
// @Success      200  {array}   dto.TransactionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/shipments/{id}/transactions [get]
func (h *ShipmentHandler) Transactions(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return missingID(c)
	}
	out, err := h.txs.ListByShipment(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// CreateTransaction godoc
// @Summary      Crear transacción en el embarque
// @Tags         shipments
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del embarque"
// @Param        body  body  dto.CreateTransactionRequest  true  "Tipo, fecha y referencia"
// @Success      201   {object}  dto.TransactionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/shipments/{id}/transactions [post]
func (h *ShipmentHandler) CreateTransaction(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return missingID(c)
	}
	var in dto.CreateTransactionRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	in.ShipmentID = &id
	out, err := h.txs.Create(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Report godoc
// @Summary      Reporte PDF del embarque
// @Tags         shipments
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID del embarque"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/shipments/{id}/report.pdf [get]
func (h *ShipmentHandler) Report(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return missingID(c)
	}
	pdf, err := h.report.Generate(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`inline; filename="shipment-%s.pdf"`, id))
	return c.Send(pdf)
}
