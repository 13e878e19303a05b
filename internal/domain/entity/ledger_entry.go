package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de transacción del kardex.
const (
	TransactionOPENING     = "OPENING"     // carga inicial de inventario
	TransactionPURCHASE    = "PURCHASE"    // compra (entrada)
	TransactionSALE        = "SALE"        // venta (salida)
	TransactionPRODUCTION  = "PRODUCTION"  // producción manual (entrada de terminado)
	TransactionCONSUMPTION = "CONSUMPTION" // consumo de materia prima derivado de fórmula
	TransactionADJUSTMENT  = "ADJUSTMENT"  // corrección manual (entrada o salida)
)

// Tipos de documento fuente que el kardex referencia vía RelatedID.
const (
	SourceSale       = "sale"
	SourcePurchase   = "purchase"
	SourceProduction = "production"
)

// LedgerEntry es un registro inmutable del kardex (única fuente de verdad del
// stock). QuantityIn/QuantityOut van SIEMPRE en la unidad primaria del producto;
// TransUnit y TransConversionFactor conservan cómo se capturó la transacción
// original, solo para auditoría, nunca para reinterpretar las cantidades.
type LedgerEntry struct {
	ID                    string
	CompanyID             string
	ProductID             string
	Date                  time.Time
	TransactionType       string
	QuantityIn            decimal.Decimal // >= 0, unidad primaria
	QuantityOut           decimal.Decimal // >= 0, unidad primaria
	TransUnit             string          // unidad original de captura
	TransConversionFactor decimal.Decimal // factor primaria->secundaria vigente al registrar (1 si no aplica)
	RelatedID             string          // documento fuente; puede quedar huérfano si el documento se borra
	Notes                 string
	CreatedAt             time.Time
	CreatedBy             string
}

// Net devuelve el efecto neto del registro sobre el saldo (in - out).
func (e *LedgerEntry) Net() decimal.Decimal {
	return e.QuantityIn.Sub(e.QuantityOut)
}

// ReversibleTypes devuelve los tipos de registro que una reversión del
// documento fuente dado debe eliminar en bloque. Un sourceType desconocido
// devuelve nil.
func ReversibleTypes(sourceType string) []string {
	switch sourceType {
	case SourceSale:
		return []string{TransactionSALE, TransactionCONSUMPTION}
	case SourcePurchase:
		return []string{TransactionPURCHASE}
	case SourceProduction:
		return []string{TransactionPRODUCTION, TransactionCONSUMPTION}
	}
	return nil
}
