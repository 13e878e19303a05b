package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecordEventRequest body para registrar una venta, compra o producción en el kardex.
// SourceID es el id del documento fuente (venta/compra/registro de producción);
// Unit es la unidad en la que se capturó la cantidad (vacía = unidad primaria).
type RecordEventRequest struct {
	SourceID  string          `json:"source_id" validate:"required"`
	ProductID string          `json:"product_id" validate:"required"`
	Quantity  decimal.Decimal `json:"quantity"`
	Unit      string          `json:"unit,omitempty"`
	Date      *time.Time      `json:"date,omitempty"`
	Notes     string          `json:"notes,omitempty"`
}

// RecordAdjustmentRequest body para un ajuste manual o carga inicial.
// Direction: "in" acredita, "out" debita.
type RecordAdjustmentRequest struct {
	ProductID string          `json:"product_id" validate:"required"`
	Quantity  decimal.Decimal `json:"quantity"`
	Unit      string          `json:"unit,omitempty"`
	Direction string          `json:"direction" validate:"required,oneof=in out"`
	Date      *time.Time      `json:"date,omitempty"`
	Notes     string          `json:"notes,omitempty"`
}

// BalanceResponse saldo de un producto derivado de los registros crudos.
type BalanceResponse struct {
	ProductID string          `json:"product_id"`
	In        decimal.Decimal `json:"quantity_in_total"`
	Out       decimal.Decimal `json:"quantity_out_total"`
	Net       decimal.Decimal `json:"net"`
	AsOf      *time.Time      `json:"as_of,omitempty"`
	Unit      string          `json:"unit"` // unidad primaria del producto
}

// LedgerEntryResponse un registro del kardex.
type LedgerEntryResponse struct {
	ID                    string          `json:"id"`
	ProductID             string          `json:"product_id"`
	Date                  time.Time       `json:"date"`
	TransactionType       string          `json:"transaction_type"`
	QuantityIn            decimal.Decimal `json:"quantity_in"`
	QuantityOut           decimal.Decimal `json:"quantity_out"`
	TransUnit             string          `json:"trans_unit,omitempty"`
	TransConversionFactor decimal.Decimal `json:"trans_conversion_factor"`
	RelatedID             string          `json:"related_id,omitempty"`
	Notes                 string          `json:"notes,omitempty"`
	CreatedAt             time.Time       `json:"created_at"`
}

// LedgerListResponse lista paginada de registros.
type LedgerListResponse struct {
	Items []LedgerEntryResponse `json:"items"`
	Page  PageResponse          `json:"page"`
}

// OrphanFinding un registro del kardex cuyo documento fuente ya no existe.
type OrphanFinding struct {
	EntryID         string `json:"entry_id"`
	TransactionType string `json:"transaction_type"`
	RelatedID       string `json:"related_id"`
	SourceType      string `json:"source_type"`
}

// CountCheck conciliación documento fuente vs registros del kardex para un tipo.
type CountCheck struct {
	SourceType  string `json:"source_type"`
	SourceCount int64  `json:"source_count"`
	LedgerCount int64  `json:"ledger_count"`
	Mismatch    bool   `json:"mismatch"`
}

// AuditReport resultado de la auditoría de integridad de un producto.
// Los hallazgos se reportan, nunca se reparan automáticamente.
type AuditReport struct {
	ProductID          string          `json:"product_id"`
	Orphans            []OrphanFinding `json:"orphans"`
	CountChecks        []CountCheck    `json:"count_checks"`
	CountMismatch      bool            `json:"count_mismatch"`
	RecomputedIn       decimal.Decimal `json:"recomputed_in"`
	RecomputedOut      decimal.Decimal `json:"recomputed_out"`
	RecomputedNet      decimal.Decimal `json:"recomputed_net"`
	ReportedNet        decimal.Decimal `json:"reported_net"`
	BalanceDivergence  bool            `json:"balance_divergence"`
	EntriesExamined    int             `json:"entries_examined"`
	GeneratedAt        time.Time       `json:"generated_at"`
}

// ImportResult resumen de una importación masiva de saldos iniciales.
type ImportResult struct {
	TotalRows    int      `json:"total_rows"`
	SuccessCount int      `json:"success_count"`
	FailedCount  int      `json:"failed_count"`
	Errors       []string `json:"errors"`
}
