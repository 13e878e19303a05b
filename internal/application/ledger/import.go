package ledger

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"github.com/jhoicas/Kardex-api/internal/application/dto"
	"github.com/jhoicas/Kardex-api/internal/domain/repository"
)

// OpeningImportUseCase carga masiva de saldos iniciales desde un archivo
// XLSX/CSV. Cada fila válida se registra como un OPENING independiente a
// través del recorder (cada fila es su propio lote atómico).
type OpeningImportUseCase struct {
	recorder    *RecorderUseCase
	productRepo repository.ProductRepository
}

// NewOpeningImportUseCase construye el caso de uso de importación.
func NewOpeningImportUseCase(recorder *RecorderUseCase, productRepo repository.ProductRepository) *OpeningImportUseCase {
	return &OpeningImportUseCase{recorder: recorder, productRepo: productRepo}
}

type openingRow struct {
	SKU      string
	Quantity string
	Unit     string
}

// Import procesa el archivo y devuelve el resumen fila a fila. Formato
// esperado: columnas SKU, CANTIDAD, UNIDAD (con fila de encabezado).
func (uc *OpeningImportUseCase) Import(ctx context.Context, companyID, userID, filename string, r io.Reader) (*dto.ImportResult, error) {
	var rows []openingRow
	var err error
	name := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(name, ".xlsx") || strings.HasSuffix(name, ".xls"):
		rows, err = parseXLSX(r)
	case strings.HasSuffix(name, ".csv"):
		rows, err = parseCSV(r)
	default:
		return nil, fmt.Errorf("formato no soportado: se espera .xlsx o .csv")
	}
	if err != nil {
		return nil, fmt.Errorf("parsear archivo: %w", err)
	}

	result := &dto.ImportResult{TotalRows: len(rows), Errors: []string{}}
	for i, row := range rows {
		line := i + 2 // +2: encabezado y base 1
		if row.SKU == "" {
			result.FailedCount++
			result.Errors = append(result.Errors, fmt.Sprintf("fila %d: SKU requerido", line))
			continue
		}
		qty, err := decimal.NewFromString(strings.TrimSpace(row.Quantity))
		if err != nil || !qty.GreaterThan(decimal.Zero) {
			result.FailedCount++
			result.Errors = append(result.Errors, fmt.Sprintf("fila %d: cantidad inválida %q", line, row.Quantity))
			continue
		}
		product, err := uc.productRepo.GetByCompanyAndSKU(companyID, row.SKU)
		if err != nil {
			return nil, err
		}
		if product == nil {
			result.FailedCount++
			result.Errors = append(result.Errors, fmt.Sprintf("fila %d: SKU %q no existe", line, row.SKU))
			continue
		}
		err = uc.recorder.RecordOpening(ctx, AdjustmentInput{
			CompanyID: companyID,
			UserID:    userID,
			ProductID: product.ID,
			Quantity:  qty,
			Unit:      strings.TrimSpace(row.Unit),
			Notes:     "importación de saldo inicial",
		})
		if err != nil {
			result.FailedCount++
			result.Errors = append(result.Errors, fmt.Sprintf("fila %d: %v", line, err))
			continue
		}
		result.SuccessCount++
	}
	return result, nil
}

func parseXLSX(r io.Reader) ([]openingRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	sheet := f.GetSheetName(0)
	raw, err := f.GetRows(sheet)
	if err != nil {
		return nil, err
	}
	return toOpeningRows(raw), nil
}

func parseCSV(r io.Reader) ([]openingRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	raw, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	return toOpeningRows(raw), nil
}

func toOpeningRows(raw [][]string) []openingRow {
	var rows []openingRow
	for i, rec := range raw {
		if i == 0 { // encabezado
			continue
		}
		var row openingRow
		if len(rec) > 0 {
			row.SKU = strings.TrimSpace(rec[0])
		}
		if len(rec) > 1 {
			row.Quantity = rec[1]
		}
		if len(rec) > 2 {
			row.Unit = rec[2]
		}
		if row.SKU == "" && row.Quantity == "" {
			continue // fila vacía
		}
		rows = append(rows, row)
	}
	return rows
}
