package http

import (
	"fmt"
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/cargotrack-api/internal/application/contract"
	"github.com/jhoicas/cargotrack-api/internal/application/dto"
	"github.com/jhoicas/cargotrack-api/internal/domain"
)

// ContractHandler contratos PDF de transacciones.
type ContractHandler struct {
	uc *contract.ContractUseCase
}

// NewContractHandler construye el handler.
func NewContractHandler(uc *contract.ContractUseCase) *ContractHandler {
	return &ContractHandler{uc: uc}
}

// Index godoc
// @Summary      Contratos y transacciones sin contrato
// @Tags         contracts
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite"  default(20)
// @Param        offset  query  int  false  "Offset"  default(0)
// @Success      200     {object}  dto.ContractIndexResponse
// @Router       /api/contracts [get]
func (h *ContractHandler) Index(c *fiber.Ctx) error {
	out, err := h.uc.Index(c.UserContext(), pageFromQuery(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Upload godoc
// @Summary      Cargar contrato PDF
// @Description  multipart/form-data con campo "pdf", o JSON con pdf_base64 (crudo o data URL). Máximo 20 MiB.
// @Tags         contracts
// @Security     Bearer
// @Accept       multipart/form-data
// @Accept       json
// @Produce      json
// @Param        id    path      string                     true   "ID de la transacción"
// @Param        pdf   formData  file                       false  "Archivo PDF"
// @Param        body  body      dto.UploadContractRequest  false  "PDF en base64"
// @Success      201   {object}  dto.ContractResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/transactions/{id}/contracts [post]
func (h *ContractHandler) Upload(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return missingID(c)
	}
	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		fh, err := c.FormFile("pdf")
		if err != nil {
			return writeError(c, domain.NewValidationError("pdf", "archivo requerido"))
		}
		if fh.Size > contract.MaxPDFSize {
			return writeError(c, domain.NewValidationError("pdf", "supera el máximo de 20 MiB"))
		}
		f, err := fh.Open()
		if err != nil {
			return writeError(c, err)
		}
		defer f.Close()
		data, err := io.ReadAll(io.LimitReader(f, contract.MaxPDFSize+1))
		if err != nil {
			return writeError(c, err)
		}
		out, err := h.uc.Upload(c.UserContext(), id, fh.Filename, data)
		if err != nil {
			return writeError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(out)
	}

	var in dto.UploadContractRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.UploadBase64(c.UserContext(), id, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener contrato
// @Tags         contracts
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del contrato"
// @Success      200  {object}  dto.ContractResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/contracts/{id} [get]
func (h *ContractHandler) GetByID(c *fiber.Ctx) error {
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

// PDF godoc
// @Summary      Descargar el PDF (inline)
// @Tags         contracts
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID del contrato"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/contracts/{id}/pdf [get]
func (h *ContractHandler) PDF(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return missingID(c)
	}
	data, filename, err := h.uc.Download(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, contract.PDFMime)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`inline; filename="%s"`, filename))
	return c.Send(data)
}

// Delete godoc
// @Summary      Borrar contrato y su archivo
// @Tags         contracts
// @Security     Bearer
// @Param        id   path  string  true  "ID del contrato"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/contracts/{id} [delete]
func (h *ContractHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return missingID(c)
	}
	if err := h.uc.Delete(c.UserContext(), id); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
