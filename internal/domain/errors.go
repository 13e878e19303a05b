package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInvalidConversion = errors.New("configuración de unidades inválida para la conversión")
	ErrFormulaNotFound   = errors.New("el producto manufacturado no tiene fórmula definida")
	ErrNegativeStock     = errors.New("la operación dejaría el stock en negativo")
	ErrBatchWriteFailed  = errors.New("escritura atómica del lote de kardex fallida")
	ErrFormulaCycle      = errors.New("la fórmula referencia directa o transitivamente al propio producto")
)
