package ledger_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"github.com/jhoicas/Kardex-api/internal/application/ledger"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
)

func buildImporter(s *fakeStore) *ledger.OpeningImportUseCase {
	return ledger.NewOpeningImportUseCase(buildRecorder(s, false), &fakeProductRepo{s: s})
}

// ── CSV ───────────────────────────────────────────────────────────────────────

func TestImport_CSVRegistraAperturasPorFila(t *testing.T) {
	s := buildStore()
	uc := buildImporter(s)
	antes := len(s.entriesByType(entity.TransactionOPENING))

	csvData := strings.Join([]string{
		"SKU,CANTIDAD,UNIDAD",
		"HAR-001,24,KG",
		"AZU-001,12.5,",
	}, "\n")

	result, err := uc.Import(context.Background(), testCompanyID, "user-1", "saldos.csv", strings.NewReader(csvData))
	require.NoError(t, err)

	assert.Equal(t, 2, result.TotalRows)
	assert.Equal(t, 2, result.SuccessCount)
	assert.Equal(t, 0, result.FailedCount)
	assert.Empty(t, result.Errors)

	aperturas := s.entriesByType(entity.TransactionOPENING)
	require.Len(t, aperturas, antes+2)

	// 24 KG de harina = 1.2 bultos, redondeado a 2: la importación pasa por el
	// mismo recorder que cualquier otro evento.
	ultima := aperturas[len(aperturas)-2]
	assert.Equal(t, "ing-harina", ultima.ProductID)
	assert.True(t, ultima.QuantityIn.Equal(decimal.NewFromInt(2)),
		"la conversión y el redondeo aplican también al importar, got %s", ultima.QuantityIn)
}

// Las filas malas se reportan con su número de línea y NO bloquean las buenas.
func TestImport_FilasInvalidasNoAbortanElResto(t *testing.T) {
	s := buildStore()
	uc := buildImporter(s)

	csvData := strings.Join([]string{
		"SKU,CANTIDAD,UNIDAD",
		"HAR-001,abc,KG",       // cantidad no numérica
		"SKU-FANTASMA,5,",      // SKU inexistente
		"AZU-001,-3,",          // cantidad no positiva
		"AZU-001,10,",          // válida
	}, "\n")

	result, err := uc.Import(context.Background(), testCompanyID, "user-1", "saldos.csv", strings.NewReader(csvData))
	require.NoError(t, err)

	assert.Equal(t, 4, result.TotalRows)
	assert.Equal(t, 1, result.SuccessCount)
	assert.Equal(t, 3, result.FailedCount)
	require.Len(t, result.Errors, 3)
	assert.Contains(t, result.Errors[0], "fila 2")
	assert.Contains(t, result.Errors[1], "fila 3")
	assert.Contains(t, result.Errors[2], "fila 4")
}

func TestImport_FormatoDesconocidoFalla(t *testing.T) {
	uc := buildImporter(buildStore())
	_, err := uc.Import(context.Background(), testCompanyID, "user-1", "saldos.pdf", strings.NewReader(""))
	assert.Error(t, err)
}

// ── XLSX ──────────────────────────────────────────────────────────────────────

func TestImport_XLSXRegistraAperturas(t *testing.T) {
	s := buildStore()
	uc := buildImporter(s)

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	filas := [][]interface{}{
		{"SKU", "CANTIDAD", "UNIDAD"},
		{"AZU-001", "7.5", ""},
		{"HAR-001", "3", "BG"},
	}
	for i, fila := range filas {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &fila))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	result, err := uc.Import(context.Background(), testCompanyID, "user-1", "saldos.xlsx", bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)

	assert.Equal(t, 2, result.TotalRows)
	assert.Equal(t, 2, result.SuccessCount, "errores: %v", result.Errors)
}

func TestImport_XLSXCorruptoFalla(t *testing.T) {
	uc := buildImporter(buildStore())
	_, err := uc.Import(context.Background(), testCompanyID, "user-1", "saldos.xlsx",
		strings.NewReader("esto no es un xlsx"))
	assert.Error(t, err)
}
