package repository

// SourceDocumentRepository consulta los documentos fuente (ventas, compras,
// registro de producción) cuyo esquema pertenece a otros componentes del
// sistema; el motor solo verifica existencia y cuenta filas para conciliación.
type SourceDocumentRepository interface {
	Exists(sourceType, id string) (bool, error)
	CountByProduct(sourceType, productID string) (int64, error)
}
