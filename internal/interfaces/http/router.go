package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Kardex-api/internal/application/ledger"
	"github.com/jhoicas/Kardex-api/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	CompanyUC *usecase.CompanyUseCase
	ProductUC *usecase.ProductUseCase
	Recorder  *ledger.RecorderUseCase
	Query     *ledger.QueryUseCase
	Audit     *ledger.AuditUseCase
	Importer  *ledger.OpeningImportUseCase
	JWTSecret string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Companies (público por ahora; se puede proteger con AuthMiddleware(deps.JWTSecret))
	companies := api.Group("/companies")
	companyHandler := NewCompanyHandler(deps.CompanyUC)
	companies.Get("/", companyHandler.List)
	companies.Post("/", companyHandler.Create)
	companies.Get("/:id", companyHandler.GetByID)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Products y fórmulas (protegido)
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", productHandler.Update)
	products.Get("/:id/formula", productHandler.GetFormula)
	products.Put("/:id/formula", productHandler.ReplaceFormula)

	// Kardex (protegido)
	ledgerGroup := protected.Group("/ledger")
	ledgerHandler := NewLedgerHandler(deps.Recorder, deps.Query, deps.Audit, deps.Importer)
	ledgerGroup.Post("/sales", ledgerHandler.RecordSale)
	ledgerGroup.Post("/purchases", ledgerHandler.RecordPurchase)
	ledgerGroup.Post("/productions", ledgerHandler.RecordProduction)
	ledgerGroup.Post("/adjustments", ledgerHandler.RecordAdjustment)
	ledgerGroup.Post("/openings", ledgerHandler.RecordOpening)
	ledgerGroup.Post("/openings/import", ledgerHandler.ImportOpenings)
	ledgerGroup.Get("/products/:id/balance", ledgerHandler.GetBalance)
	ledgerGroup.Get("/products/:id/entries", ledgerHandler.ListEntries)
	ledgerGroup.Get("/products/:id/audit", RequireRole("admin", "auditor"), ledgerHandler.AuditProduct)

	// Reversión: borra en cascada los registros de un documento fuente.
	// Restringida a admin por ser la excepción a la inmutabilidad del log.
	ledgerGroup.Delete("/:sourceType/:sourceId", RequireRole("admin"), ledgerHandler.Reverse)
}
