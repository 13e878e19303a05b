package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto.
type CreateProductRequest struct {
	SKU            string          `json:"sku" validate:"required,min=1,max=100"`
	Name           string          `json:"name" validate:"required,min=1,max=200"`
	Description    string          `json:"description"`
	PrimaryUnit    string          `json:"primary_unit" validate:"required"`
	SecondaryUnit  string          `json:"secondary_unit,omitempty"`
	ConversionRate decimal.Decimal `json:"conversion_rate"`
	HasDualUnits   bool            `json:"has_dual_units"`
	MaintainStock  bool            `json:"maintain_stock"`
	IsManufactured bool            `json:"is_manufactured"`
}

// UpdateProductRequest entrada para actualizar un producto.
type UpdateProductRequest struct {
	Name           *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Description    *string          `json:"description"`
	PrimaryUnit    *string          `json:"primary_unit"`
	SecondaryUnit  *string          `json:"secondary_unit"`
	ConversionRate *decimal.Decimal `json:"conversion_rate"`
	HasDualUnits   *bool            `json:"has_dual_units"`
	MaintainStock  *bool            `json:"maintain_stock"`
	IsManufactured *bool            `json:"is_manufactured"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID             string          `json:"id"`
	CompanyID      string          `json:"company_id"`
	SKU            string          `json:"sku"`
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	PrimaryUnit    string          `json:"primary_unit"`
	SecondaryUnit  string          `json:"secondary_unit,omitempty"`
	ConversionRate decimal.Decimal `json:"conversion_rate"`
	HasDualUnits   bool            `json:"has_dual_units"`
	MaintainStock  bool            `json:"maintain_stock"`
	IsManufactured bool            `json:"is_manufactured"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// FormulaEntryRequest una línea de fórmula al reemplazar la lista de materiales.
type FormulaEntryRequest struct {
	IngredientID string          `json:"ingredient_id" validate:"required"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitType     string          `json:"unit_type,omitempty"` // primary | secondary
}

// ReplaceFormulaRequest body para PUT /api/products/:id/formula.
type ReplaceFormulaRequest struct {
	Entries []FormulaEntryRequest `json:"entries"`
}

// FormulaEntryResponse una línea de fórmula.
type FormulaEntryResponse struct {
	ID           string          `json:"id"`
	IngredientID string          `json:"ingredient_id"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitType     string          `json:"unit_type"`
}
