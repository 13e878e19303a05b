package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/jhoicas/Kardex-api/internal/domain/repository"
)

var _ repository.FormulaRepository = (*FormulaRepo)(nil)

// FormulaRepo implementación del puerto FormulaRepository sobre PostgreSQL (usable con pool o tx).
type FormulaRepo struct {
	q Querier
}

// NewFormulaRepository construye el adaptador. Pasar pool o tx (Querier).
func NewFormulaRepository(q Querier) *FormulaRepo {
	return &FormulaRepo{q: q}
}

// ListByProduct lista las líneas de fórmula de un producto.
func (r *FormulaRepo) ListByProduct(productID string) ([]*entity.FormulaEntry, error) {
	query := `
		SELECT id, product_id, ingredient_id, quantity, unit_type, created_at, updated_at
		FROM product_formulas WHERE product_id = $1 ORDER BY created_at ASC, id ASC`
	rows, err := r.q.Query(context.Background(), query, productID)
	if err != nil {
		return nil, fmt.Errorf("list formula: %w", err)
	}
	defer rows.Close()
	var list []*entity.FormulaEntry
	for rows.Next() {
		var fe entity.FormulaEntry
		var unitType *string
		if err := rows.Scan(&fe.ID, &fe.ProductID, &fe.IngredientID, &fe.Quantity, &unitType, &fe.CreatedAt, &fe.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan formula entry: %w", err)
		}
		if unitType != nil {
			fe.UnitType = *unitType
		}
		list = append(list, &fe)
	}
	return list, rows.Err()
}

// Replace reemplaza la fórmula completa del producto (borrar + insertar).
// Debe invocarse sobre un repositorio atado a una tx (TxRunner) para que un
// fallo a mitad de inserción no deje la fórmula parcial.
func (r *FormulaRepo) Replace(productID string, entries []*entity.FormulaEntry) error {
	if err := r.DeleteByProduct(productID); err != nil {
		return err
	}
	query := `
		INSERT INTO product_formulas (id, product_id, ingredient_id, quantity, unit_type, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	for _, fe := range entries {
		if fe.ID == "" {
			fe.ID = uuid.New().String()
		}
		_, err := r.q.Exec(context.Background(), query,
			fe.ID, productID, fe.IngredientID, fe.Quantity, fe.NormalizedUnitType(),
			fe.CreatedAt, fe.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert formula entry: %w", err)
		}
	}
	return nil
}

// DeleteByProduct elimina la fórmula de un producto.
func (r *FormulaRepo) DeleteByProduct(productID string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM product_formulas WHERE product_id = $1`, productID)
	if err != nil {
		return fmt.Errorf("delete formula: %w", err)
	}
	return nil
}
