package ledger

import (
	"context"
	"time"

	"github.com/jhoicas/Kardex-api/internal/application/dto"
	"github.com/jhoicas/Kardex-api/internal/domain"
	"github.com/jhoicas/Kardex-api/internal/domain/repository"
)

// QueryUseCase consultas de solo lectura sobre el kardex: saldo derivado y
// listado de registros. Las lecturas van directo al repositorio (pool), sin
// transacción de escritura.
type QueryUseCase struct {
	ledgerRepo  repository.LedgerRepository
	productRepo repository.ProductRepository
}

// NewQueryUseCase construye el caso de uso de consulta.
func NewQueryUseCase(ledgerRepo repository.LedgerRepository, productRepo repository.ProductRepository) *QueryUseCase {
	return &QueryUseCase{ledgerRepo: ledgerRepo, productRepo: productRepo}
}

// GetBalance devuelve el saldo de un producto sumando los registros crudos
// hasta asOf inclusive (nil = saldo actual).
func (uc *QueryUseCase) GetBalance(ctx context.Context, companyID, productID string, asOf *time.Time) (*dto.BalanceResponse, error) {
	product, err := uc.productRepo.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if product.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	balance, err := uc.ledgerRepo.Balance(productID, asOf)
	if err != nil {
		return nil, err
	}
	return &dto.BalanceResponse{
		ProductID: productID,
		In:        balance.In,
		Out:       balance.Out,
		Net:       balance.Net(),
		AsOf:      asOf,
		Unit:      product.PrimaryUnit,
	}, nil
}

// ListEntries lista los registros de un producto ordenados por fecha e id
// ascendente, con filtro de rango de fechas y paginación.
func (uc *QueryUseCase) ListEntries(ctx context.Context, companyID, productID string, from, to *time.Time, page dto.PageRequest) (*dto.LedgerListResponse, error) {
	product, err := uc.productRepo.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if product.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	page.DefaultPage()
	entries, err := uc.ledgerRepo.ListByProduct(productID, from, to, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.LedgerEntryResponse, 0, len(entries))
	for _, e := range entries {
		items = append(items, dto.LedgerEntryResponse{
			ID:                    e.ID,
			ProductID:             e.ProductID,
			Date:                  e.Date,
			TransactionType:       e.TransactionType,
			QuantityIn:            e.QuantityIn,
			QuantityOut:           e.QuantityOut,
			TransUnit:             e.TransUnit,
			TransConversionFactor: e.TransConversionFactor,
			RelatedID:             e.RelatedID,
			Notes:                 e.Notes,
			CreatedAt:             e.CreatedAt,
		})
	}
	return &dto.LedgerListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}
