package ledger

import (
	"context"

	"github.com/jhoicas/Kardex-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza que cada evento de negocio escriba
// su lote de kardex completo o nada.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		ledgerRepo repository.LedgerRepository,
		productRepo repository.ProductRepository,
		formulaRepo repository.FormulaRepository,
	) error) error

	// RunReadOnly abre una transacción de solo lectura con snapshot estable
	// (REPEATABLE READ) para que las auditorías multi-consulta reporten cifras
	// de un único punto en el tiempo.
	RunReadOnly(ctx context.Context, fn func(
		ledgerRepo repository.LedgerRepository,
		sourceRepo repository.SourceDocumentRepository,
	) error) error
}
