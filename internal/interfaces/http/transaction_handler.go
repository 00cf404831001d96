package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/cargotrack-api/internal/application/dto"
	"github.com/jhoicas/cargotrack-api/internal/application/transaction"
)

// TransactionHandler transacciones, sus líneas y partes.
type TransactionHandler struct {
	uc    *transaction.TransactionUseCase
	lines *transaction.TransactionLineService
}

// NewTransactionHandler construye el handler.
func NewTransactionHandler(uc *transaction.TransactionUseCase, lines *transaction.TransactionLineService) *TransactionHandler {
	return &TransactionHandler{uc: uc, lines: lines}
}

// Create godoc
// @Summary      Crear transacción
// @Tags         transactions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateTransactionRequest  true  "Tipo, fecha, referencia y embarque opcional"
// @Success      201   {object}  dto.TransactionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/transactions [post]
func (h *TransactionHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateTransactionRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Transacción con líneas, partes y contratos
// @Tags         transactions
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la transacción"
// @Success      200  {object}  dto.TransactionDetailResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/transactions/{id} [get]
func (h *TransactionHandler) GetByID(c *fiber.Ctx) error {
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
// @Summary      Listar transacciones
// @Tags         transactions
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite"  default(20)
// @Param        offset  query  int  false  "Offset"  default(0)
// @Success      200     {object}  dto.TransactionListResponse
// @Router       /api/transactions [get]
func (h *TransactionHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext(), pageFromQuery(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar cabecera
// @Tags         transactions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la transacción"
// @Param        body  body  dto.UpdateTransactionRequest  true  "Campos a cambiar"
// @Success      200   {object}  dto.TransactionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/transactions/{id} [patch]
func (h *TransactionHandler) Update(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return missingID(c)
	}
	var in dto.UpdateTransactionRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Update(c.UserContext(), id, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Assign godoc
// @Summary      Asignar o desasignar embarque
// @Description  shipment_id null deja la transacción sin asignar. Los ítems espejo se mueven con ella.
// @Tags         transactions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la transacción"
// @Param        body  body  dto.AssignShipmentRequest  true  "Embarque destino"
// @Success      200   {object}  dto.TransactionResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/transactions/{id}/shipment [put]
func (h *TransactionHandler) Assign(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return missingID(c)
	}
	var in dto.AssignShipmentRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Assign(c.UserContext(), id, in.ShipmentID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Borrar transacción
// @Tags         transactions
// @Security     Bearer
// @Param        id   path  string  true  "ID de la transacción"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/transactions/{id} [delete]
func (h *TransactionHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return missingID(c)
	}
	if err := h.uc.Delete(c.UserContext(), id); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// CreateLine godoc
// @Summary      Agregar línea
// @Description  line_value se calcula como quantity × unit_price; no se acepta del cliente.
// @Tags         transactions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la transacción"
// @Param        body  body  dto.CreateLineRequest  true  "Descripción, cantidad y precio"
// @Success      201   {object}  dto.TransactionLineResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/transactions/{id}/lines [post]
func (h *TransactionHandler) CreateLine(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return missingID(c)
	}
	var in dto.CreateLineRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	input, err := transaction.ToLineInput(in)
	if err != nil {
		return writeError(c, err)
	}
	line, err := h.lines.Create(c.UserContext(), id, input)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(transaction.ToLineResponse(line))
}

// UpdateLine godoc
// @Summary      Actualizar línea
// @Tags         transactions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id      path  string  true  "ID de la transacción"
// @Param        lineId  path  string  true  "ID de la línea"
// @Param        body    body  dto.UpdateLineRequest  true  "Campos a cambiar"
// @Success      200     {object}  dto.TransactionLineResponse
// @Failure      404     {object}  dto.ErrorResponse
// @Failure      422     {object}  dto.ErrorResponse
// @Router       /api/transactions/{id}/lines/{lineId} [patch]
func (h *TransactionHandler) UpdateLine(c *fiber.Ctx) error {
	id, lineID := c.Params("id"), c.Params("lineId")
	if id == "" || lineID == "" {
		return missingID(c)
	}
	var in dto.UpdateLineRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	patch, err := transaction.ToLinePatch(in)
	if err != nil {
		return writeError(c, err)
	}
	line, err := h.lines.Update(c.UserContext(), id, lineID, patch)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(transaction.ToLineResponse(line))
}

// DeleteLine godoc
// @Summary      Borrar línea
// @Tags         transactions
// @Security     Bearer
// @Param        id      path  string  true  "ID de la transacción"
// @Param        lineId  path  string  true  "ID de la línea"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/transactions/{id}/lines/{lineId} [delete]
func (h *TransactionHandler) DeleteLine(c *fiber.Ctx) error {
	id, lineID := c.Params("id"), c.Params("lineId")
	if id == "" || lineID == "" {
		return missingID(c)
	}
	if err := h.lines.Delete(c.UserContext(), id, lineID); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AttachParty godoc
// @Summary      Vincular parte con un rol
// @Tags         transactions
// @Security     Bearer
// @Accept       json
// @Param        id    path  string  true  "ID de la transacción"
// @Param        body  body  dto.AttachPartyRequest  true  "Parte y rol"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/transactions/{id}/parties [post]
func (h *TransactionHandler) AttachParty(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return missingID(c)
	}
	var in dto.AttachPartyRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if err := h.uc.AttachParty(c.UserContext(), id, in); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// DetachParty godoc
// @Summary      Desvincular parte
// @Tags         transactions
// @Security     Bearer
// @Param        id       path  string  true  "ID de la transacción"
// @Param        partyId  path  string  true  "ID de la parte"
// @Param        role     path  string  true  "Rol"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/transactions/{id}/parties/{partyId}/{role} [delete]
func (h *TransactionHandler) DetachParty(c *fiber.Ctx) error {
	id, partyID, role := c.Params("id"), c.Params("partyId"), c.Params("role")
	if id == "" || partyID == "" || role == "" {
		return missingID(c)
	}
	if err := h.uc.DetachParty(c.UserContext(), id, partyID, role); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
