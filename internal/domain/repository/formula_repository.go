package repository

import "github.com/jhoicas/Kardex-api/internal/domain/entity"

// FormulaRepository define el puerto de persistencia para las líneas de
// fórmula (lista de materiales) de un producto.
type FormulaRepository interface {
	ListByProduct(productID string) ([]*entity.FormulaEntry, error)
	// Replace reemplaza la fórmula completa del producto (borrar + insertar).
	// La validación de ciclos y de maintain_stock ocurre en el caso de uso.
	Replace(productID string, entries []*entity.FormulaEntry) error
	DeleteByProduct(productID string) error
}
