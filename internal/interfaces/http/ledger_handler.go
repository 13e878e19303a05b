package http

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Kardex-api/internal/application/dto"
	"github.com/jhoicas/Kardex-api/internal/application/ledger"
	"github.com/jhoicas/Kardex-api/internal/domain"
)

// LedgerHandler maneja las peticiones HTTP del kardex (protegido).
type LedgerHandler struct {
	recorder *ledger.RecorderUseCase
	query    *ledger.QueryUseCase
	audit    *ledger.AuditUseCase
	importer *ledger.OpeningImportUseCase
}

// NewLedgerHandler construye el handler.
func NewLedgerHandler(
	recorder *ledger.RecorderUseCase,
	query *ledger.QueryUseCase,
	audit *ledger.AuditUseCase,
	importer *ledger.OpeningImportUseCase,
) *LedgerHandler {
	return &LedgerHandler{recorder: recorder, query: query, audit: audit, importer: importer}
}

// RecordSale godoc
// @Summary      Registrar venta en el kardex
// @Tags         ledger
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RecordEventRequest  true  "source_id, product_id, quantity, unit"
// @Success      201   {object}  map[string]string
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/ledger/sales [post]
func (h *LedgerHandler) RecordSale(c *fiber.Ctx) error {
	return h.recordEvent(c, h.recorder.RecordSale)
}

// RecordPurchase registra una compra (entrada) en el kardex.
// @Router /api/ledger/purchases [post]
func (h *LedgerHandler) RecordPurchase(c *fiber.Ctx) error {
	return h.recordEvent(c, h.recorder.RecordPurchase)
}

// RecordProduction registra una producción manual con su consumo de fórmula.
// @Router /api/ledger/productions [post]
func (h *LedgerHandler) RecordProduction(c *fiber.Ctx) error {
	return h.recordEvent(c, h.recorder.RecordProduction)
}

func (h *LedgerHandler) recordEvent(c *fiber.Ctx, record func(ctx context.Context, in ledger.EventInput) error) error {
	companyID, userID := GetCompanyID(c), GetUserID(c)
	if companyID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.RecordEventRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	input := ledger.EventInput{
		CompanyID: companyID,
		UserID:    userID,
		SourceID:  in.SourceID,
		ProductID: in.ProductID,
		Quantity:  in.Quantity,
		Unit:      in.Unit,
		Notes:     in.Notes,
	}
	if in.Date != nil {
		input.Date = *in.Date
	}
	if err := record(c.Context(), input); err != nil {
		return ledgerError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "evento registrado en el kardex"})
}

// RecordAdjustment registra un ajuste manual (in/out) sin expansión de fórmula.
// @Router /api/ledger/adjustments [post]
func (h *LedgerHandler) RecordAdjustment(c *fiber.Ctx) error {
	return h.recordDirect(c, false)
}

// RecordOpening registra una carga inicial de stock.
// @Router /api/ledger/openings [post]
func (h *LedgerHandler) RecordOpening(c *fiber.Ctx) error {
	return h.recordDirect(c, true)
}

func (h *LedgerHandler) recordDirect(c *fiber.Ctx, opening bool) error {
	companyID, userID := GetCompanyID(c), GetUserID(c)
	if companyID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.RecordAdjustmentRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.Direction != "in" && in.Direction != "out" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "direction debe ser in u out"})
	}
	input := ledger.AdjustmentInput{
		CompanyID: companyID,
		UserID:    userID,
		ProductID: in.ProductID,
		Quantity:  in.Quantity,
		Unit:      in.Unit,
		Credit:    in.Direction == "in",
		Notes:     in.Notes,
	}
	if in.Date != nil {
		input.Date = *in.Date
	}
	var err error
	if opening {
		err = h.recorder.RecordOpening(c.Context(), input)
	} else {
		err = h.recorder.RecordAdjustment(c.Context(), input)
	}
	if err != nil {
		return ledgerError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "registro creado en el kardex"})
}

// Reverse elimina en bloque los registros ligados a un documento fuente borrado.
// Solo admin: es la excepción explícita a la inmutabilidad del kardex.
// @Router /api/ledger/{sourceType}/{sourceId} [delete]
func (h *LedgerHandler) Reverse(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	sourceType := c.Params("sourceType")
	sourceID := c.Params("sourceId")
	if err := h.recorder.Reverse(c.Context(), companyID, sourceType, sourceID); err != nil {
		return ledgerError(c, err)
	}
	return c.JSON(fiber.Map{"message": "reversión completada"})
}

// GetBalance devuelve el saldo derivado de un producto, opcionalmente a una fecha.
// @Router /api/ledger/products/{id}/balance [get]
func (h *LedgerHandler) GetBalance(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	asOf, err := parseTimeQuery(c, "as_of")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "as_of debe ser RFC3339 o YYYY-MM-DD"})
	}
	balance, err := h.query.GetBalance(c.Context(), companyID, c.Params("id"), asOf)
	if err != nil {
		return ledgerError(c, err)
	}
	return c.JSON(balance)
}

// ListEntries lista registros del kardex de un producto.
// @Router /api/ledger/products/{id}/entries [get]
func (h *LedgerHandler) ListEntries(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	from, err := parseTimeQuery(c, "from")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from debe ser RFC3339 o YYYY-MM-DD"})
	}
	to, err := parseTimeQuery(c, "to")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to debe ser RFC3339 o YYYY-MM-DD"})
	}
	page := dto.PageRequest{Limit: c.QueryInt("limit"), Offset: c.QueryInt("offset")}
	list, err := h.query.ListEntries(c.Context(), companyID, c.Params("id"), from, to, page)
	if err != nil {
		return ledgerError(c, err)
	}
	return c.JSON(list)
}

// AuditProduct corre la auditoría de integridad de un producto.
// @Router /api/ledger/products/{id}/audit [get]
func (h *LedgerHandler) AuditProduct(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	report, err := h.audit.AuditProduct(c.Context(), companyID, c.Params("id"))
	if err != nil {
		return ledgerError(c, err)
	}
	return c.JSON(report)
}

// ImportOpenings carga masiva de saldos iniciales desde XLSX/CSV (multipart "file").
// @Router /api/ledger/openings/import [post]
func (h *LedgerHandler) ImportOpenings(c *fiber.Ctx) error {
	companyID, userID := GetCompanyID(c), GetUserID(c)
	if companyID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "archivo requerido (multipart file)"})
	}
	f, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "no se pudo abrir el archivo"})
	}
	defer f.Close()
	result, err := h.importer.Import(c.Context(), companyID, userID, fileHeader.Filename, f)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "IMPORT_FAILED", Message: err.Error()})
	}
	return c.JSON(result)
}

// ledgerError traduce errores de dominio a códigos HTTP.
func ledgerError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
	case errors.Is(err, domain.ErrInvalidConversion):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_CONVERSION", Message: err.Error()})
	case errors.Is(err, domain.ErrFormulaNotFound):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "FORMULA_NOT_FOUND", Message: err.Error()})
	case errors.Is(err, domain.ErrNegativeStock):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "NEGATIVE_STOCK", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "producto no encontrado"})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado al recurso"})
	case errors.Is(err, domain.ErrBatchWriteFailed):
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "BATCH_WRITE_FAILED", Message: "lote no aplicado; el evento es seguro de reintentar"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}

func parseTimeQuery(c *fiber.Ctx, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
