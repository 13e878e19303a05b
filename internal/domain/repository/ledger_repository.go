package repository

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
)

// LedgerBalance es el saldo derivado de los registros crudos del kardex.
type LedgerBalance struct {
	In  decimal.Decimal
	Out decimal.Decimal
}

// Net devuelve in - out.
func (b LedgerBalance) Net() decimal.Decimal {
	return b.In.Sub(b.Out)
}

// LedgerRepository define el puerto del kardex (log append-only). El saldo se
// deriva SIEMPRE sumando registros; nunca se cachea de forma independiente.
type LedgerRepository interface {
	// AppendBatch inserta el lote completo. La atomicidad multi-registro la
	// garantiza la transacción en la que corre el repositorio (TxRunner).
	AppendBatch(entries []*entity.LedgerEntry) error
	// Balance suma quantity_in/quantity_out del producto hasta asOf inclusive
	// (nil = sin corte).
	Balance(productID string, asOf *time.Time) (LedgerBalance, error)
	// ListByProduct lista registros ordenados por fecha e id ascendente.
	// limit <= 0 devuelve todos los registros (lo usa el auditor).
	ListByProduct(productID string, from, to *time.Time, limit, offset int) ([]*entity.LedgerEntry, error)
	CountByProductAndType(productID, transactionType string) (int64, error)
	// DeleteByRelated elimina en bloque los registros de la empresa ligados a
	// un documento fuente borrado. Es la única excepción a la inmutabilidad y
	// solo se invoca desde la reversión explícita del recorder.
	DeleteByRelated(companyID, relatedID string, types []string) (int64, error)
}
