package units

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/Kardex-api/internal/domain"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
)

// defaultFractionalUnits son los marcadores de unidades fraccionables
// (peso/volumen/longitud). Cualquier unidad fuera de este conjunto se trata
// como unidad de conteo entero (bultos, cajas, unidades) y se redondea hacia
// arriba antes de almacenar: no existe media bolsa entregable, y redondear
// hacia abajo sub-registraría el consumo.
var defaultFractionalUnits = []string{
	"KG", "G", "GR", "GRAMO", "LTR", "LT", "L", "ML", "MT", "M", "CM", "TON", "LB", "OZ", "GL", "GAL",
}

// Converter convierte cantidades entre la unidad primaria y secundaria de un
// producto y aplica la política de redondeo de almacenamiento (servicio de dominio puro).
type Converter struct {
	fractional map[string]struct{}
}

// NewConverter construye el conversor. markers vacío usa el conjunto por defecto.
func NewConverter(markers []string) *Converter {
	if len(markers) == 0 {
		markers = defaultFractionalUnits
	}
	set := make(map[string]struct{}, len(markers))
	for _, m := range markers {
		m = strings.ToUpper(strings.TrimSpace(m))
		if m != "" {
			set[m] = struct{}{}
		}
	}
	return &Converter{fractional: set}
}

// IsFractional indica si la unidad admite cantidades fraccionarias.
func (c *Converter) IsFractional(unit string) bool {
	_, ok := c.fractional[strings.ToUpper(strings.TrimSpace(unit))]
	return ok
}

// ToPrimary convierte una cantidad capturada en sourceUnit a la unidad primaria
// del producto. sourceUnit vacío se interpreta como la unidad primaria.
// Falla con domain.ErrInvalidConversion si la unidad no es ni la primaria ni la
// secundaria del producto, o si el producto dual tiene tasa ausente o no positiva.
func (c *Converter) ToPrimary(p *entity.Product, qty decimal.Decimal, sourceUnit string) (decimal.Decimal, error) {
	unit := strings.ToUpper(strings.TrimSpace(sourceUnit))
	primary := strings.ToUpper(strings.TrimSpace(p.PrimaryUnit))
	if unit == "" || unit == primary {
		return qty, nil
	}
	// HasDualUnits estricto: sin doble unidad los campos secundarios se ignoran
	// aunque estén poblados.
	if !p.HasDualUnits {
		return decimal.Zero, domain.ErrInvalidConversion
	}
	secondary := strings.ToUpper(strings.TrimSpace(p.SecondaryUnit))
	if unit != secondary {
		return decimal.Zero, domain.ErrInvalidConversion
	}
	if !p.ConversionRate.GreaterThan(decimal.Zero) {
		return decimal.Zero, domain.ErrInvalidConversion
	}
	return qty.Div(p.ConversionRate), nil
}

// ToSecondary convierte una cantidad primaria a la unidad secundaria del producto.
func (c *Converter) ToSecondary(p *entity.Product, primaryQty decimal.Decimal) (decimal.Decimal, error) {
	if !p.HasDualUnits || !p.ConversionRate.GreaterThan(decimal.Zero) {
		return decimal.Zero, domain.ErrInvalidConversion
	}
	return primaryQty.Mul(p.ConversionRate), nil
}

// RoundForStorage aplica la política de redondeo antes de persistir: unidades
// de conteo entero redondean hacia arriba (techo), las fraccionables conservan
// toda la precisión. Es idempotente.
func (c *Converter) RoundForStorage(unit string, qty decimal.Decimal) decimal.Decimal {
	if c.IsFractional(unit) {
		return qty
	}
	return qty.Ceil()
}
