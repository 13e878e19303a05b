package formula

import (
	"github.com/shopspring/decimal"
	"github.com/jhoicas/Kardex-api/internal/domain"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/jhoicas/Kardex-api/internal/domain/units"
)

// Consumption es el consumo concreto de un ingrediente derivado de una fórmula,
// ya convertido y redondeado a la unidad primaria del ingrediente.
type Consumption struct {
	IngredientID string
	Quantity     decimal.Decimal // unidad primaria del ingrediente, lista para el kardex
	TransUnit    string          // unidad en la que la fórmula expresó el consumo
	Factor       decimal.Decimal // tasa de conversión del ingrediente aplicada (1 si no hubo)
}

// Expander resuelve la lista de materiales de un producto en consumos concretos
// para una cantidad producida (expansión de UN solo nivel; sin sub-recetas).
type Expander struct {
	conv *units.Converter
}

// NewExpander construye el expansor sobre el conversor de unidades.
func NewExpander(conv *units.Converter) *Expander {
	return &Expander{conv: conv}
}

// Expand calcula el consumo de cada línea de fórmula para producedQty unidades
// PRIMARIAS del producto terminado. ingredients debe contener el producto de
// cada IngredientID. Fórmula vacía devuelve lista vacía sin error: no todo
// producto se fabrica a partir de ingredientes.
func (e *Expander) Expand(entries []*entity.FormulaEntry, ingredients map[string]*entity.Product, producedQty decimal.Decimal) ([]Consumption, error) {
	if !producedQty.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	out := make([]Consumption, 0, len(entries))
	for _, fe := range entries {
		ing, ok := ingredients[fe.IngredientID]
		if !ok || ing == nil {
			return nil, domain.ErrNotFound
		}
		raw := producedQty.Mul(fe.Quantity)
		transUnit := ing.PrimaryUnit
		factor := decimal.NewFromInt(1)
		primaryQty := raw
		if fe.NormalizedUnitType() == entity.FormulaUnitSecondary {
			converted, err := e.conv.ToPrimary(ing, raw, ing.SecondaryUnit)
			if err != nil {
				return nil, err
			}
			primaryQty = converted
			transUnit = ing.SecondaryUnit
			factor = ing.ConversionRate
		}
		out = append(out, Consumption{
			IngredientID: fe.IngredientID,
			Quantity:     e.conv.RoundForStorage(ing.PrimaryUnit, primaryQty),
			TransUnit:    transUnit,
			Factor:       factor,
		})
	}
	return out, nil
}

// ExpandRequired es Expand pero exige que exista fórmula: lo usa la producción
// manual sobre productos marcados como manufacturados.
func (e *Expander) ExpandRequired(entries []*entity.FormulaEntry, ingredients map[string]*entity.Product, producedQty decimal.Decimal) ([]Consumption, error) {
	if len(entries) == 0 {
		return nil, domain.ErrFormulaNotFound
	}
	return e.Expand(entries, ingredients, producedQty)
}
