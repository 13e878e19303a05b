package ledger

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/Kardex-api/internal/domain"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/jhoicas/Kardex-api/internal/domain/formula"
	"github.com/jhoicas/Kardex-api/internal/domain/repository"
	"github.com/jhoicas/Kardex-api/internal/domain/units"
	"github.com/jhoicas/Kardex-api/pkg/logger"
)

// RecorderUseCase es el único componente que escribe en el kardex. Convierte
// cada evento de negocio (venta, compra, producción, ajuste) en un lote de
// registros correcto y lo persiste de forma atómica vía TxRunner. Ningún otro
// código debe escribir la tabla stock_ledger directamente.
type RecorderUseCase struct {
	txRunner      TxRunner
	productRepo   repository.ProductRepository
	conv          *units.Converter
	expander      *formula.Expander
	allowNegative bool
	log           *logger.Logger
}

// NewRecorderUseCase construye el recorder. allowNegative habilita ventas en
// negativo (backorder) según la política del despliegue.
func NewRecorderUseCase(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	conv *units.Converter,
	expander *formula.Expander,
	allowNegative bool,
	log *logger.Logger,
) *RecorderUseCase {
	return &RecorderUseCase{
		txRunner:      txRunner,
		productRepo:   productRepo,
		conv:          conv,
		expander:      expander,
		allowNegative: allowNegative,
		log:           log,
	}
}

// EventInput entrada común para registrar un evento de negocio en el kardex.
// Quantity va en Unit (vacía = unidad primaria del producto); SourceID es el
// id del documento fuente que originó el evento.
type EventInput struct {
	CompanyID string
	UserID    string
	SourceID  string
	ProductID string
	Quantity  decimal.Decimal
	Unit      string
	Date      time.Time // cero = ahora
	Notes     string
}

// AdjustmentInput entrada para ajustes manuales y cargas iniciales (sin expansión).
type AdjustmentInput struct {
	CompanyID string
	UserID    string
	ProductID string
	Quantity  decimal.Decimal
	Unit      string
	Credit    bool // true acredita (quantity_in), false debita (quantity_out)
	Date      time.Time
	Notes     string
}

// RecordSale debita el producto vendido y, si se fabrica con fórmula, debita
// cada ingrediente; todo en un solo lote atómico ligado al id de la venta.
func (uc *RecorderUseCase) RecordSale(ctx context.Context, in EventInput) error {
	product, err := uc.loadEventProduct(in)
	if err != nil {
		return err
	}
	if product == nil {
		return nil // producto sin control de stock: no genera kardex
	}
	date := normalizeDate(in.Date)
	return uc.txRunner.Run(ctx, func(
		ledgerRepo repository.LedgerRepository,
		productRepo repository.ProductRepository,
		formulaRepo repository.FormulaRepository,
	) error {
		// Serializa los lotes que tocan este producto.
		locked, err := productRepo.GetForUpdate(in.ProductID)
		if err != nil {
			return err
		}
		if locked == nil {
			// Borrado entre la lectura inicial y el bloqueo dentro de la tx.
			return domain.ErrNotFound
		}
		qty, err := uc.toPrimaryRounded(locked, in.Quantity, in.Unit)
		if err != nil {
			return err
		}
		if err := uc.checkNegative(ledgerRepo, in.ProductID, qty); err != nil {
			return err
		}
		entries := []*entity.LedgerEntry{
			uc.newEntry(locked, in, date, entity.TransactionSALE, decimal.Zero, qty),
		}
		if locked.IsManufactured {
			consumptions, err := uc.expandLocked(productRepo, formulaRepo, ledgerRepo, locked, qty, false)
			if err != nil {
				return err
			}
			entries = append(entries, uc.consumptionEntries(in, date, consumptions)...)
		}
		return uc.appendBatch(ledgerRepo, entries)
	})
}

// RecordPurchase acredita el producto comprado.
func (uc *RecorderUseCase) RecordPurchase(ctx context.Context, in EventInput) error {
	product, err := uc.loadEventProduct(in)
	if err != nil {
		return err
	}
	if product == nil {
		return nil
	}
	date := normalizeDate(in.Date)
	return uc.txRunner.Run(ctx, func(
		ledgerRepo repository.LedgerRepository,
		productRepo repository.ProductRepository,
		_ repository.FormulaRepository,
	) error {
		locked, err := productRepo.GetForUpdate(in.ProductID)
		if err != nil {
			return err
		}
		if locked == nil {
			return domain.ErrNotFound
		}
		qty, err := uc.toPrimaryRounded(locked, in.Quantity, in.Unit)
		if err != nil {
			return err
		}
		entry := uc.newEntry(locked, in, date, entity.TransactionPURCHASE, qty, decimal.Zero)
		return uc.appendBatch(ledgerRepo, []*entity.LedgerEntry{entry})
	})
}

// RecordProduction registra una manufactura manual: acredita el terminado y
// debita cada ingrediente según la fórmula, en un lote atómico. Un producto
// marcado como manufacturado sin fórmula definida es un error (ErrFormulaNotFound).
func (uc *RecorderUseCase) RecordProduction(ctx context.Context, in EventInput) error {
	product, err := uc.loadEventProduct(in)
	if err != nil {
		return err
	}
	if product == nil {
		return nil
	}
	date := normalizeDate(in.Date)
	return uc.txRunner.Run(ctx, func(
		ledgerRepo repository.LedgerRepository,
		productRepo repository.ProductRepository,
		formulaRepo repository.FormulaRepository,
	) error {
		locked, err := productRepo.GetForUpdate(in.ProductID)
		if err != nil {
			return err
		}
		if locked == nil {
			return domain.ErrNotFound
		}
		qty, err := uc.toPrimaryRounded(locked, in.Quantity, in.Unit)
		if err != nil {
			return err
		}
		required := locked.IsManufactured
		consumptions, err := uc.expandLocked(productRepo, formulaRepo, ledgerRepo, locked, qty, required)
		if err != nil {
			return err
		}
		entries := []*entity.LedgerEntry{
			uc.newEntry(locked, in, date, entity.TransactionPRODUCTION, qty, decimal.Zero),
		}
		entries = append(entries, uc.consumptionEntries(in, date, consumptions)...)
		return uc.appendBatch(ledgerRepo, entries)
	})
}

// RecordAdjustment registra una corrección manual (ADJUSTMENT) sin expansión.
func (uc *RecorderUseCase) RecordAdjustment(ctx context.Context, in AdjustmentInput) error {
	return uc.recordDirect(ctx, in, entity.TransactionADJUSTMENT)
}

// RecordOpening registra la carga inicial de stock (OPENING) sin expansión.
func (uc *RecorderUseCase) RecordOpening(ctx context.Context, in AdjustmentInput) error {
	in.Credit = true
	return uc.recordDirect(ctx, in, entity.TransactionOPENING)
}

func (uc *RecorderUseCase) recordDirect(ctx context.Context, in AdjustmentInput, transactionType string) error {
	product, err := uc.loadProduct(in.CompanyID, in.ProductID)
	if err != nil {
		return err
	}
	if product == nil {
		return nil
	}
	date := normalizeDate(in.Date)
	return uc.txRunner.Run(ctx, func(
		ledgerRepo repository.LedgerRepository,
		productRepo repository.ProductRepository,
		_ repository.FormulaRepository,
	) error {
		locked, err := productRepo.GetForUpdate(in.ProductID)
		if err != nil {
			return err
		}
		if locked == nil {
			return domain.ErrNotFound
		}
		qty, err := uc.toPrimaryRounded(locked, in.Quantity, in.Unit)
		if err != nil {
			return err
		}
		qtyIn, qtyOut := qty, decimal.Zero
		if !in.Credit {
			qtyIn, qtyOut = decimal.Zero, qty
			if err := uc.checkNegative(ledgerRepo, in.ProductID, qty); err != nil {
				return err
			}
		}
		entry := &entity.LedgerEntry{
			ID:                    uuid.New().String(),
			CompanyID:             in.CompanyID,
			ProductID:             in.ProductID,
			Date:                  date,
			TransactionType:       transactionType,
			QuantityIn:            qtyIn,
			QuantityOut:           qtyOut,
			TransUnit:             unitOrPrimary(locked, in.Unit),
			TransConversionFactor: factorFor(locked, in.Unit),
			Notes:                 in.Notes,
			CreatedAt:             time.Now(),
			CreatedBy:             in.UserID,
		}
		return uc.appendBatch(ledgerRepo, []*entity.LedgerEntry{entry})
	})
}

// Reverse elimina en un solo lote todos los registros del kardex ligados a un
// documento fuente borrado (venta, compra o producción, con sus consumos).
// Es la excepción explícita y auditada a la inmutabilidad del log, acotada a
// la empresa del llamante.
func (uc *RecorderUseCase) Reverse(ctx context.Context, companyID, sourceType, sourceID string) error {
	types := entity.ReversibleTypes(sourceType)
	if types == nil || companyID == "" || sourceID == "" {
		return domain.ErrInvalidInput
	}
	return uc.txRunner.Run(ctx, func(
		ledgerRepo repository.LedgerRepository,
		_ repository.ProductRepository,
		_ repository.FormulaRepository,
	) error {
		deleted, err := ledgerRepo.DeleteByRelated(companyID, sourceID, types)
		if err != nil {
			return fmt.Errorf("%w: %s", domain.ErrBatchWriteFailed, err)
		}
		uc.log.Info().
			Str("company_id", companyID).
			Str("source_type", sourceType).
			Str("source_id", sourceID).
			Int64("entries_deleted", deleted).
			Msg("reversión de kardex por borrado de documento fuente")
		return nil
	})
}

// loadEventProduct valida la entrada común de los eventos con documento fuente.
// Sin SourceID el lote quedaría con related_id vacío: irrevertible y huérfano
// garantizado en cada auditoría.
func (uc *RecorderUseCase) loadEventProduct(in EventInput) (*entity.Product, error) {
	if in.SourceID == "" {
		return nil, domain.ErrInvalidInput
	}
	return uc.loadProduct(in.CompanyID, in.ProductID)
}

// loadProduct valida existencia y pertenencia a la empresa. Devuelve (nil, nil)
// cuando el producto no mantiene stock: el evento no genera kardex.
func (uc *RecorderUseCase) loadProduct(companyID, productID string) (*entity.Product, error) {
	if companyID == "" || productID == "" {
		return nil, domain.ErrInvalidInput
	}
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
	if !product.MaintainStock {
		uc.log.Debug().Str("product_id", productID).Msg("producto sin control de stock, evento ignorado")
		return nil, nil
	}
	return product, nil
}

// toPrimaryRounded convierte la cantidad capturada a unidad primaria y aplica
// la política de redondeo de almacenamiento. Toda conversión ocurre ANTES de
// escribir; el kardex nunca reinterpreta cantidades ya persistidas.
func (uc *RecorderUseCase) toPrimaryRounded(p *entity.Product, qty decimal.Decimal, unit string) (decimal.Decimal, error) {
	if !qty.GreaterThan(decimal.Zero) {
		return decimal.Zero, domain.ErrInvalidInput
	}
	primary, err := uc.conv.ToPrimary(p, qty, unit)
	if err != nil {
		return decimal.Zero, err
	}
	return uc.conv.RoundForStorage(p.PrimaryUnit, primary), nil
}

// checkNegative rechaza el débito si dejaría el saldo neto en negativo y la
// política del despliegue no admite backorder.
func (uc *RecorderUseCase) checkNegative(ledgerRepo repository.LedgerRepository, productID string, debit decimal.Decimal) error {
	if uc.allowNegative {
		return nil
	}
	balance, err := ledgerRepo.Balance(productID, nil)
	if err != nil {
		return err
	}
	if balance.Net().Sub(debit).IsNegative() {
		return domain.ErrNegativeStock
	}
	return nil
}

// expandLocked carga la fórmula, bloquea los ingredientes en orden estable de
// id (evita deadlocks entre lotes concurrentes), valida saldos y expande.
func (uc *RecorderUseCase) expandLocked(
	productRepo repository.ProductRepository,
	formulaRepo repository.FormulaRepository,
	ledgerRepo repository.LedgerRepository,
	product *entity.Product,
	producedQty decimal.Decimal,
	required bool,
) ([]formula.Consumption, error) {
	fentries, err := formulaRepo.ListByProduct(product.ID)
	if err != nil {
		return nil, err
	}
	if len(fentries) == 0 {
		if required {
			return nil, domain.ErrFormulaNotFound
		}
		return nil, nil
	}
	ids := make([]string, 0, len(fentries))
	for _, fe := range fentries {
		ids = append(ids, fe.IngredientID)
	}
	sort.Strings(ids)
	ingredients := make(map[string]*entity.Product, len(ids))
	for _, id := range ids {
		ing, err := productRepo.GetForUpdate(id)
		if err != nil {
			return nil, err
		}
		if ing == nil {
			return nil, domain.ErrNotFound
		}
		ingredients[id] = ing
	}
	consumptions, err := uc.expander.Expand(fentries, ingredients, producedQty)
	if err != nil {
		return nil, err
	}
	for _, c := range consumptions {
		if err := uc.checkNegative(ledgerRepo, c.IngredientID, c.Quantity); err != nil {
			return nil, err
		}
	}
	return consumptions, nil
}

func (uc *RecorderUseCase) consumptionEntries(in EventInput, date time.Time, consumptions []formula.Consumption) []*entity.LedgerEntry {
	entries := make([]*entity.LedgerEntry, 0, len(consumptions))
	for _, c := range consumptions {
		entries = append(entries, &entity.LedgerEntry{
			ID:                    uuid.New().String(),
			CompanyID:             in.CompanyID,
			ProductID:             c.IngredientID,
			Date:                  date,
			TransactionType:       entity.TransactionCONSUMPTION,
			QuantityIn:            decimal.Zero,
			QuantityOut:           c.Quantity,
			TransUnit:             c.TransUnit,
			TransConversionFactor: c.Factor,
			RelatedID:             in.SourceID,
			Notes:                 in.Notes,
			CreatedAt:             time.Now(),
			CreatedBy:             in.UserID,
		})
	}
	return entries
}

func (uc *RecorderUseCase) newEntry(p *entity.Product, in EventInput, date time.Time, transactionType string, qtyIn, qtyOut decimal.Decimal) *entity.LedgerEntry {
	return &entity.LedgerEntry{
		ID:                    uuid.New().String(),
		CompanyID:             in.CompanyID,
		ProductID:             in.ProductID,
		Date:                  date,
		TransactionType:       transactionType,
		QuantityIn:            qtyIn,
		QuantityOut:           qtyOut,
		TransUnit:             unitOrPrimary(p, in.Unit),
		TransConversionFactor: factorFor(p, in.Unit),
		RelatedID:             in.SourceID,
		Notes:                 in.Notes,
		CreatedAt:             time.Now(),
		CreatedBy:             in.UserID,
	}
}

func (uc *RecorderUseCase) appendBatch(ledgerRepo repository.LedgerRepository, entries []*entity.LedgerEntry) error {
	if err := ledgerRepo.AppendBatch(entries); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrBatchWriteFailed, err)
	}
	return nil
}

func unitOrPrimary(p *entity.Product, unit string) string {
	if unit == "" {
		return p.PrimaryUnit
	}
	return unit
}

// factorFor conserva la tasa vigente al registrar, solo para auditoría/consulta.
func factorFor(p *entity.Product, unit string) decimal.Decimal {
	if unit != "" && p.HasDualUnits && unit != p.PrimaryUnit {
		return p.ConversionRate
	}
	return decimal.NewFromInt(1)
}

func normalizeDate(d time.Time) time.Time {
	if d.IsZero() {
		return time.Now()
	}
	return d
}
