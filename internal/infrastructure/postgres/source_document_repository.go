package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Kardex-api/internal/domain"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/jhoicas/Kardex-api/internal/domain/repository"
)

var _ repository.SourceDocumentRepository = (*SourceDocumentRepo)(nil)

// Tablas de documentos fuente, propiedad de otros componentes del sistema.
// El motor solo las lee para verificar existencia y conciliar conteos.
var sourceTables = map[string]string{
	entity.SourceSale:       "sales",
	entity.SourcePurchase:   "purchases",
	entity.SourceProduction: "production_log",
}

// SourceDocumentRepo implementación de solo lectura sobre las tablas fuente.
type SourceDocumentRepo struct {
	q Querier
}

// NewSourceDocumentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSourceDocumentRepository(q Querier) *SourceDocumentRepo {
	return &SourceDocumentRepo{q: q}
}

// Exists verifica que el documento fuente aún exista.
func (r *SourceDocumentRepo) Exists(sourceType, id string) (bool, error) {
	table, ok := sourceTables[sourceType]
	if !ok {
		return false, domain.ErrInvalidInput
	}
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE id = $1)`, table)
	var exists bool
	if err := r.q.QueryRow(context.Background(), query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("exists %s: %w", sourceType, err)
	}
	return exists, nil
}

// CountByProduct cuenta documentos fuente de un producto (para conciliación).
func (r *SourceDocumentRepo) CountByProduct(sourceType, productID string) (int64, error) {
	table, ok := sourceTables[sourceType]
	if !ok {
		return 0, domain.ErrInvalidInput
	}
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE product_id = $1`, table)
	var n int64
	if err := r.q.QueryRow(context.Background(), query, productID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", sourceType, err)
	}
	return n, nil
}
