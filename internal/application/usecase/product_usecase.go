package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/Kardex-api/internal/application/dto"
	"github.com/jhoicas/Kardex-api/internal/application/ledger"
	"github.com/jhoicas/Kardex-api/internal/domain"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/jhoicas/Kardex-api/internal/domain/repository"
)

// ProductUseCase casos de uso CRUD para productos y su fórmula. El stock no se
// edita aquí: solo se mueve a través del recorder de kardex.
type ProductUseCase struct {
	repo        repository.ProductRepository
	formulaRepo repository.FormulaRepository
	txRunner    ledger.TxRunner
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository, formulaRepo repository.FormulaRepository, txRunner ledger.TxRunner) *ProductUseCase {
	return &ProductUseCase{repo: repo, formulaRepo: formulaRepo, txRunner: txRunner}
}

// Create crea un nuevo producto validando el invariante de doble unidad.
func (uc *ProductUseCase) Create(companyID string, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	existing, _ := uc.repo.GetByCompanyAndSKU(companyID, in.SKU)
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	now := time.Now()
	product := &entity.Product{
		ID:             uuid.New().String(),
		CompanyID:      companyID,
		SKU:            in.SKU,
		Name:           in.Name,
		Description:    in.Description,
		PrimaryUnit:    in.PrimaryUnit,
		SecondaryUnit:  in.SecondaryUnit,
		ConversionRate: in.ConversionRate,
		HasDualUnits:   in.HasDualUnits,
		MaintainStock:  in.MaintainStock,
		IsManufactured: in.IsManufactured,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if !product.ValidateUnits() {
		return nil, domain.ErrInvalidConversion
	}
	if err := uc.repo.Create(product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// GetByID obtiene un producto por ID.
func (uc *ProductUseCase) GetByID(id string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, nil
	}
	return toProductResponse(product), nil
}

// Update actualiza un producto. Revalida el invariante de doble unidad.
func (uc *ProductUseCase) Update(id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, nil
	}
	if in.Name != nil {
		product.Name = *in.Name
	}
	if in.Description != nil {
		product.Description = *in.Description
	}
	if in.PrimaryUnit != nil {
		product.PrimaryUnit = *in.PrimaryUnit
	}
	if in.SecondaryUnit != nil {
		product.SecondaryUnit = *in.SecondaryUnit
	}
	if in.ConversionRate != nil {
		product.ConversionRate = *in.ConversionRate
	}
	if in.HasDualUnits != nil {
		product.HasDualUnits = *in.HasDualUnits
	}
	if in.MaintainStock != nil {
		product.MaintainStock = *in.MaintainStock
	}
	if in.IsManufactured != nil {
		product.IsManufactured = *in.IsManufactured
	}
	if !product.ValidateUnits() {
		return nil, domain.ErrInvalidConversion
	}
	product.UpdatedAt = time.Now()
	if err := uc.repo.Update(product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// List lista los productos de una empresa.
func (uc *ProductUseCase) List(companyID string, page dto.PageRequest) (*dto.ProductListResponse, error) {
	page.DefaultPage()
	products, err := uc.repo.ListByCompany(companyID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(products))
	for _, p := range products {
		items = append(items, *toProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// maxFormulaDepth acota el recorrido del grafo de fórmulas al validar ciclos.
const maxFormulaDepth = 8

// ReplaceFormula reemplaza la lista de materiales de un producto. Valida que
// cada ingrediente exista, mantenga stock, pertenezca a la empresa y que el
// grafo resultante no referencie al propio producto ni directa ni
// transitivamente (recorrido acotado, sin recursión sin guarda). El reemplazo
// (borrar + insertar) corre en una transacción: nunca queda fórmula parcial.
func (uc *ProductUseCase) ReplaceFormula(ctx context.Context, companyID, productID string, in dto.ReplaceFormulaRequest) error {
	product, err := uc.repo.GetByID(productID)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.ErrNotFound
	}
	if product.CompanyID != companyID {
		return domain.ErrForbidden
	}
	now := time.Now()
	entries := make([]*entity.FormulaEntry, 0, len(in.Entries))
	for _, e := range in.Entries {
		if e.IngredientID == productID {
			return domain.ErrFormulaCycle
		}
		if !e.Quantity.GreaterThan(decimal.Zero) {
			return domain.ErrInvalidInput
		}
		if e.UnitType != "" && e.UnitType != entity.FormulaUnitPrimary && e.UnitType != entity.FormulaUnitSecondary {
			return domain.ErrInvalidInput
		}
		ingredient, err := uc.repo.GetByID(e.IngredientID)
		if err != nil {
			return err
		}
		if ingredient == nil {
			return domain.ErrNotFound
		}
		if ingredient.CompanyID != companyID {
			return domain.ErrForbidden
		}
		if !ingredient.MaintainStock {
			return domain.ErrInvalidInput
		}
		if e.UnitType == entity.FormulaUnitSecondary && !ingredient.HasDualUnits {
			return domain.ErrInvalidConversion
		}
		if err := uc.checkNoCycle(productID, e.IngredientID, maxFormulaDepth); err != nil {
			return err
		}
		entries = append(entries, &entity.FormulaEntry{
			ID:           uuid.New().String(),
			ProductID:    productID,
			IngredientID: e.IngredientID,
			Quantity:     e.Quantity,
			UnitType:     e.UnitType,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	}
	return uc.txRunner.Run(ctx, func(
		_ repository.LedgerRepository,
		_ repository.ProductRepository,
		formulaRepo repository.FormulaRepository,
	) error {
		return formulaRepo.Replace(productID, entries)
	})
}

// GetFormula devuelve la fórmula actual del producto.
func (uc *ProductUseCase) GetFormula(companyID, productID string) ([]dto.FormulaEntryResponse, error) {
	product, err := uc.repo.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if product.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	entries, err := uc.formulaRepo.ListByProduct(productID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.FormulaEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.FormulaEntryResponse{
			ID:           e.ID,
			IngredientID: e.IngredientID,
			Quantity:     e.Quantity,
			UnitType:     e.NormalizedUnitType(),
		})
	}
	return out, nil
}

// checkNoCycle verifica que desde ingredientID no se alcance rootID siguiendo
// fórmulas existentes, hasta maxFormulaDepth niveles.
func (uc *ProductUseCase) checkNoCycle(rootID, ingredientID string, depth int) error {
	if depth <= 0 {
		return domain.ErrFormulaCycle
	}
	sub, err := uc.formulaRepo.ListByProduct(ingredientID)
	if err != nil {
		return err
	}
	for _, fe := range sub {
		if fe.IngredientID == rootID {
			return domain.ErrFormulaCycle
		}
		if err := uc.checkNoCycle(rootID, fe.IngredientID, depth-1); err != nil {
			return err
		}
	}
	return nil
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:             p.ID,
		CompanyID:      p.CompanyID,
		SKU:            p.SKU,
		Name:           p.Name,
		Description:    p.Description,
		PrimaryUnit:    p.PrimaryUnit,
		SecondaryUnit:  p.SecondaryUnit,
		ConversionRate: p.ConversionRate,
		HasDualUnits:   p.HasDualUnits,
		MaintainStock:  p.MaintainStock,
		IsManufactured: p.IsManufactured,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}
