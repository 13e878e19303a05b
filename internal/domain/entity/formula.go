package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Unidad en la que está expresada la cantidad de una línea de fórmula.
const (
	FormulaUnitPrimary   = "primary"
	FormulaUnitSecondary = "secondary"
)

// FormulaEntry es una línea de la lista de materiales (fórmula) de un producto:
// cuánto del ingrediente se consume por UNA unidad primaria de producto terminado.
// La expansión es de un solo nivel; los ciclos se rechazan al editar la fórmula.
type FormulaEntry struct {
	ID           string
	ProductID    string          // producto terminado
	IngredientID string          // producto ingrediente (debe mantener stock)
	Quantity     decimal.Decimal // consumo por unidad producida, en UnitType del ingrediente
	UnitType     string          // primary | secondary (vacío = primary)
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NormalizedUnitType devuelve el UnitType aplicando el default (primary).
func (f *FormulaEntry) NormalizedUnitType() string {
	if f.UnitType == FormulaUnitSecondary {
		return FormulaUnitSecondary
	}
	return FormulaUnitPrimary
}
