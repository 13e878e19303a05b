package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/jhoicas/Kardex-api/internal/domain/repository"
)

var _ repository.LedgerRepository = (*LedgerRepo)(nil)

// LedgerRepo implementación del kardex sobre PostgreSQL (usable con pool o tx).
// La tabla stock_ledger es append-only: aquí no hay UPDATE, y el único DELETE
// es DeleteByRelated, invocado exclusivamente por la reversión del recorder.
type LedgerRepo struct {
	q Querier
}

// NewLedgerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLedgerRepository(q Querier) *LedgerRepo {
	return &LedgerRepo{q: q}
}

const ledgerColumns = `id, company_id, product_id, date, transaction_type, quantity_in, quantity_out, trans_unit, trans_conversion_factor, related_id, notes, created_at, created_by`

// AppendBatch inserta el lote completo de registros. La atomicidad la da la
// transacción del caller: sobre una tx, un fallo en cualquier INSERT revierte
// los anteriores del lote.
func (r *LedgerRepo) AppendBatch(entries []*entity.LedgerEntry) error {
	query := `
		INSERT INTO stock_ledger (` + ledgerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	for _, e := range entries {
		if e.ID == "" {
			e.ID = uuid.New().String()
		}
		relatedID := (*string)(nil)
		if e.RelatedID != "" {
			relatedID = &e.RelatedID
		}
		createdBy := (*string)(nil)
		if e.CreatedBy != "" {
			createdBy = &e.CreatedBy
		}
		_, err := r.q.Exec(context.Background(), query,
			e.ID, e.CompanyID, e.ProductID, e.Date, e.TransactionType,
			e.QuantityIn, e.QuantityOut, e.TransUnit, e.TransConversionFactor,
			relatedID, e.Notes, e.CreatedAt, createdBy,
		)
		if err != nil {
			return fmt.Errorf("append ledger entry: %w", err)
		}
	}
	return nil
}

// Balance suma quantity_in/quantity_out del producto hasta asOf inclusive.
func (r *LedgerRepo) Balance(productID string, asOf *time.Time) (repository.LedgerBalance, error) {
	query := `
		SELECT COALESCE(SUM(quantity_in), 0), COALESCE(SUM(quantity_out), 0)
		FROM stock_ledger WHERE product_id = $1`
	args := []any{productID}
	if asOf != nil {
		query += " AND date <= $2"
		args = append(args, *asOf)
	}
	var b repository.LedgerBalance
	if err := r.q.QueryRow(context.Background(), query, args...).Scan(&b.In, &b.Out); err != nil {
		return repository.LedgerBalance{}, fmt.Errorf("balance: %w", err)
	}
	return b, nil
}

// ListByProduct lista registros ordenados por fecha e id ascendente.
// limit <= 0 omite LIMIT/OFFSET (lo usa el auditor para leer todo el log).
func (r *LedgerRepo) ListByProduct(productID string, from, to *time.Time, limit, offset int) ([]*entity.LedgerEntry, error) {
	query := `
		SELECT ` + ledgerColumns + `
		FROM stock_ledger WHERE product_id = $1`
	args := []any{productID}
	pos := 2
	if from != nil {
		query += fmt.Sprintf(" AND date >= $%d", pos)
		args = append(args, *from)
		pos++
	}
	if to != nil {
		query += fmt.Sprintf(" AND date <= $%d", pos)
		args = append(args, *to)
		pos++
	}
	query += " ORDER BY date ASC, id ASC"
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", pos, pos+1)
		args = append(args, limit, offset)
	}

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list ledger by product: %w", err)
	}
	defer rows.Close()
	var list []*entity.LedgerEntry
	for rows.Next() {
		var e entity.LedgerEntry
		var relatedID, createdBy *string
		if err := rows.Scan(&e.ID, &e.CompanyID, &e.ProductID, &e.Date, &e.TransactionType,
			&e.QuantityIn, &e.QuantityOut, &e.TransUnit, &e.TransConversionFactor,
			&relatedID, &e.Notes, &e.CreatedAt, &createdBy); err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		if relatedID != nil {
			e.RelatedID = *relatedID
		}
		if createdBy != nil {
			e.CreatedBy = *createdBy
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}

// CountByProductAndType cuenta registros de un tipo para un producto.
func (r *LedgerRepo) CountByProductAndType(productID, transactionType string) (int64, error) {
	query := `SELECT COUNT(*) FROM stock_ledger WHERE product_id = $1 AND transaction_type = $2`
	var n int64
	if err := r.q.QueryRow(context.Background(), query, productID, transactionType).Scan(&n); err != nil {
		return 0, fmt.Errorf("count ledger entries: %w", err)
	}
	return n, nil
}

// DeleteByRelated elimina en bloque los registros de los tipos dados ligados a
// un documento fuente (cascada de la reversión explícita), acotado a la empresa.
func (r *LedgerRepo) DeleteByRelated(companyID, relatedID string, types []string) (int64, error) {
	query := `DELETE FROM stock_ledger WHERE company_id = $1 AND related_id = $2 AND transaction_type = ANY($3)`
	tag, err := r.q.Exec(context.Background(), query, companyID, relatedID, types)
	if err != nil {
		return 0, fmt.Errorf("delete ledger by related: %w", err)
	}
	return tag.RowsAffected(), nil
}
