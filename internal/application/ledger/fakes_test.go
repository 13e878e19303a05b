package ledger_test

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/jhoicas/Kardex-api/internal/domain/repository"
)

// fakeStore es un almacén en memoria compartido por los repositorios falsos.
// El fakeTxRunner le da semántica transaccional: si la función del lote falla,
// el slice de registros vuelve al estado previo (rollback).
type fakeStore struct {
	products map[string]*entity.Product
	formulas map[string][]*entity.FormulaEntry
	entries  []*entity.LedgerEntry
	// sources[tipo][id] = productID del documento fuente existente
	sources map[string]map[string]string

	// failAppendAfter > 0 hace fallar AppendBatch tras insertar N registros,
	// simulando un fallo a mitad de lote.
	failAppendAfter int

	// ghostOnLock simula un producto borrado entre la lectura inicial y el
	// bloqueo dentro de la tx: GetForUpdate devuelve (nil, nil) para ese id.
	ghostOnLock string

	lockOrder    []string // ids bloqueados vía GetForUpdate, en orden
	existsCalled int      // invocaciones a SourceDocumentRepository.Exists
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		products: make(map[string]*entity.Product),
		formulas: make(map[string][]*entity.FormulaEntry),
		sources:  map[string]map[string]string{},
	}
}

func (s *fakeStore) addProduct(p *entity.Product) { s.products[p.ID] = p }

func (s *fakeStore) addSource(sourceType, id, productID string) {
	if s.sources[sourceType] == nil {
		s.sources[sourceType] = make(map[string]string)
	}
	s.sources[sourceType][id] = productID
}

func (s *fakeStore) seedEntry(e *entity.LedgerEntry) {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	if e.Date.IsZero() {
		e.Date = time.Now()
	}
	s.entries = append(s.entries, e)
}

func (s *fakeStore) entriesByType(transactionType string) []*entity.LedgerEntry {
	var out []*entity.LedgerEntry
	for _, e := range s.entries {
		if e.TransactionType == transactionType {
			out = append(out, e)
		}
	}
	return out
}

// ── ProductRepository ─────────────────────────────────────────────────────────

type fakeProductRepo struct{ s *fakeStore }

func (r *fakeProductRepo) Create(p *entity.Product) error { r.s.products[p.ID] = p; return nil }

func (r *fakeProductRepo) GetByID(id string) (*entity.Product, error) {
	return r.s.products[id], nil
}

func (r *fakeProductRepo) GetByCompanyAndSKU(companyID, sku string) (*entity.Product, error) {
	for _, p := range r.s.products {
		if p.CompanyID == companyID && p.SKU == sku {
			return p, nil
		}
	}
	return nil, nil
}

func (r *fakeProductRepo) GetForUpdate(id string) (*entity.Product, error) {
	r.s.lockOrder = append(r.s.lockOrder, id)
	if id == r.s.ghostOnLock {
		return nil, nil
	}
	return r.s.products[id], nil
}

func (r *fakeProductRepo) Update(p *entity.Product) error { r.s.products[p.ID] = p; return nil }

func (r *fakeProductRepo) ListByCompany(companyID string, limit, offset int) ([]*entity.Product, error) {
	var out []*entity.Product
	for _, p := range r.s.products {
		if p.CompanyID == companyID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeProductRepo) Delete(id string) error { delete(r.s.products, id); return nil }

// ── FormulaRepository ─────────────────────────────────────────────────────────

type fakeFormulaRepo struct{ s *fakeStore }

func (r *fakeFormulaRepo) ListByProduct(productID string) ([]*entity.FormulaEntry, error) {
	return r.s.formulas[productID], nil
}

func (r *fakeFormulaRepo) Replace(productID string, entries []*entity.FormulaEntry) error {
	r.s.formulas[productID] = entries
	return nil
}

func (r *fakeFormulaRepo) DeleteByProduct(productID string) error {
	delete(r.s.formulas, productID)
	return nil
}

// ── LedgerRepository ──────────────────────────────────────────────────────────

type fakeLedgerRepo struct{ s *fakeStore }

func (r *fakeLedgerRepo) AppendBatch(entries []*entity.LedgerEntry) error {
	for i, e := range entries {
		if r.s.failAppendAfter > 0 && i >= r.s.failAppendAfter {
			return errors.New("fallo simulado a mitad de lote")
		}
		r.s.entries = append(r.s.entries, e)
	}
	return nil
}

func (r *fakeLedgerRepo) Balance(productID string, asOf *time.Time) (repository.LedgerBalance, error) {
	b := repository.LedgerBalance{In: decimal.Zero, Out: decimal.Zero}
	for _, e := range r.s.entries {
		if e.ProductID != productID {
			continue
		}
		if asOf != nil && e.Date.After(*asOf) {
			continue
		}
		b.In = b.In.Add(e.QuantityIn)
		b.Out = b.Out.Add(e.QuantityOut)
	}
	return b, nil
}

func (r *fakeLedgerRepo) ListByProduct(productID string, from, to *time.Time, limit, offset int) ([]*entity.LedgerEntry, error) {
	var out []*entity.LedgerEntry
	for _, e := range r.s.entries {
		if e.ProductID != productID {
			continue
		}
		if from != nil && e.Date.Before(*from) {
			continue
		}
		if to != nil && e.Date.After(*to) {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	if offset > 0 {
		if offset >= len(out) {
			return nil, nil
		}
		out = out[offset:]
	}
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeLedgerRepo) CountByProductAndType(productID, transactionType string) (int64, error) {
	var n int64
	for _, e := range r.s.entries {
		if e.ProductID == productID && e.TransactionType == transactionType {
			n++
		}
	}
	return n, nil
}

func (r *fakeLedgerRepo) DeleteByRelated(companyID, relatedID string, types []string) (int64, error) {
	match := make(map[string]struct{}, len(types))
	for _, t := range types {
		match[t] = struct{}{}
	}
	var kept []*entity.LedgerEntry
	var deleted int64
	for _, e := range r.s.entries {
		if _, ok := match[e.TransactionType]; ok && e.CompanyID == companyID && e.RelatedID == relatedID {
			deleted++
			continue
		}
		kept = append(kept, e)
	}
	r.s.entries = kept
	return deleted, nil
}

// ── SourceDocumentRepository ──────────────────────────────────────────────────

type fakeSourceRepo struct{ s *fakeStore }

func (r *fakeSourceRepo) Exists(sourceType, id string) (bool, error) {
	r.s.existsCalled++
	_, ok := r.s.sources[sourceType][id]
	return ok, nil
}

func (r *fakeSourceRepo) CountByProduct(sourceType, productID string) (int64, error) {
	var n int64
	for _, pid := range r.s.sources[sourceType] {
		if pid == productID {
			n++
		}
	}
	return n, nil
}

// ── TxRunner ──────────────────────────────────────────────────────────────────

// fakeTxRunner imita la semántica de la transacción real: si la función del
// lote devuelve error, los registros vuelven al estado previo.
type fakeTxRunner struct{ s *fakeStore }

func (t *fakeTxRunner) Run(ctx context.Context, fn func(
	repository.LedgerRepository,
	repository.ProductRepository,
	repository.FormulaRepository,
) error) error {
	snapshot := make([]*entity.LedgerEntry, len(t.s.entries))
	copy(snapshot, t.s.entries)

	err := fn(&fakeLedgerRepo{s: t.s}, &fakeProductRepo{s: t.s}, &fakeFormulaRepo{s: t.s})
	if err != nil {
		t.s.entries = snapshot // rollback
	}
	return err
}

func (t *fakeTxRunner) RunReadOnly(ctx context.Context, fn func(
	repository.LedgerRepository,
	repository.SourceDocumentRepository,
) error) error {
	return fn(&fakeLedgerRepo{s: t.s}, &fakeSourceRepo{s: t.s})
}
