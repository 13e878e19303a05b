package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto o SKU del catálogo (multi-empresa).
// El kardex registra siempre en PrimaryUnit; SecondaryUnit es una unidad
// alterna de captura/consulta relacionada por ConversionRate (primaria -> secundaria).
type Product struct {
	ID             string
	CompanyID      string
	SKU            string // código único por empresa
	Name           string
	Description    string
	PrimaryUnit    string          // unidad canónica del kardex (BULTO, UND, CAJA...)
	SecondaryUnit  string          // unidad alterna (KG, LTR...); vacía si no aplica
	ConversionRate decimal.Decimal // cuántas unidades secundarias hay en una primaria
	HasDualUnits   bool            // booleano estricto: si es false se ignoran los campos secundarios
	MaintainStock  bool            // si es false el kardex no genera registros para este producto
	IsManufactured bool            // producido a partir de una fórmula (requiere fórmula al producir)
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ValidateUnits verifica el invariante de doble unidad: con HasDualUnits debe
// existir SecondaryUnit y ConversionRate > 0.
func (p *Product) ValidateUnits() bool {
	if !p.HasDualUnits {
		return p.PrimaryUnit != ""
	}
	return p.PrimaryUnit != "" && p.SecondaryUnit != "" && p.ConversionRate.GreaterThan(decimal.Zero)
}
