package http

import (
	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/cargotrack-api/internal/application/analytics"
	"github.com/jhoicas/cargotrack-api/internal/application/auth"
	"github.com/jhoicas/cargotrack-api/internal/application/contract"
	"github.com/jhoicas/cargotrack-api/internal/application/shipment"
	"github.com/jhoicas/cargotrack-api/internal/application/transaction"
	"github.com/jhoicas/cargotrack-api/internal/application/usecase"
	"github.com/jhoicas/cargotrack-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC        *auth.AuthUseCase
	UserUC        *usecase.UserUseCase
	LocationUC    *usecase.LocationUseCase
	VesselUC      *usecase.VesselUseCase
	ProductUC     *usecase.ProductUseCase
	PartyUC       *usecase.PartyUseCase
	ShipmentUC    *shipment.ShipmentUseCase
	ReportUC      *shipment.ReportUseCase
	TransactionUC *transaction.TransactionUseCase
	LineService   *transaction.TransactionLineService
	ContractUC    *contract.ContractUseCase
	DashboardUC   *appanalytics.DashboardUseCase
	JWTSecret     string
}

// Router registra las rutas de la API.
//
// Roles: viewer lee, operator escribe, admin además borra embarques y versiones
// y reconstruye los ítems espejo.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	read := RequireRole(entity.RoleAdmin, entity.RoleOperator, entity.RoleViewer)
	write := RequireRole(entity.RoleAdmin, entity.RoleOperator)
	admin := RequireRole(entity.RoleAdmin)

	protected.Get("/me", read, NewUserHandler(deps.UserUC).Me)

	locations := protected.Group("/locations")
	locationHandler := NewLocationHandler(deps.LocationUC)
	locations.Get("/", read, locationHandler.List)
	locations.Post("/", write, locationHandler.Create)
	locations.Get("/:id", read, locationHandler.GetByID)

	vessels := protected.Group("/vessels")
	vesselHandler := NewVesselHandler(deps.VesselUC)
	vessels.Get("/", read, vesselHandler.List)
	vessels.Post("/", write, vesselHandler.Create)
	vessels.Get("/:id", read, vesselHandler.GetByID)

	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Get("/", read, productHandler.List)
	products.Post("/", write, productHandler.Create)
	products.Get("/:id", read, productHandler.GetByID)

	parties := protected.Group("/parties")
	partyHandler := NewPartyHandler(deps.PartyUC)
	parties.Get("/", read, partyHandler.List)
	parties.Post("/", write, partyHandler.Create)
	parties.Get("/:id", read, partyHandler.GetByID)

	shipments := protected.Group("/shipments")
	shipmentHandler := NewShipmentHandler(deps.ShipmentUC, deps.ReportUC, deps.TransactionUC, deps.ContractUC)
	shipments.Get("/", read, shipmentHandler.List)
	shipments.Post("/", write, shipmentHandler.Create)
	shipments.Get("/:id", read, shipmentHandler.GetByID)
	shipments.Patch("/:id", write, shipmentHandler.Update)
	shipments.Delete("/:id", admin, shipmentHandler.Delete)
	shipments.Get("/:id/history", read, shipmentHandler.History)
	shipments.Delete("/:id/versions/:versionId", admin, shipmentHandler.DeleteVersion)
	shipments.Get("/:id/items", read, shipmentHandler.Items)
	shipments.Post("/:id/items/rebuild", admin, shipmentHandler.RebuildItems)
	shipments.Get("/:id/contracts", read, shipmentHandler.Contracts)
	shipments.Get("/:id/transactions", read, shipmentHandler.Transactions)
	shipments.Post("/:id/transactions", write, shipmentHandler.CreateTransaction)
	shipments.Get("/:id/report.pdf", read, shipmentHandler.Report)

	transactions := protected.Group("/transactions")
	txHandler := NewTransactionHandler(deps.TransactionUC, deps.LineService)
	contractHandler := NewContractHandler(deps.ContractUC)
	transactions.Get("/", read, txHandler.List)
	transactions.Post("/", write, txHandler.Create)
	transactions.Get("/:id", read, txHandler.GetByID)
	transactions.Patch("/:id", write, txHandler.Update)
	transactions.Delete("/:id", write, txHandler.Delete)
	transactions.Put("/:id/shipment", write, txHandler.Assign)
	transactions.Post("/:id/lines", write, txHandler.CreateLine)
	transactions.Patch("/:id/lines/:lineId", write, txHandler.UpdateLine)
	transactions.Delete("/:id/lines/:lineId", write, txHandler.DeleteLine)
	transactions.Post("/:id/parties", write, txHandler.AttachParty)
	transactions.Delete("/:id/parties/:partyId/:role", write, txHandler.DetachParty)
	transactions.Post("/:id/contracts", write, contractHandler.Upload)

	contracts := protected.Group("/contracts")
	contracts.Get("/", read, contractHandler.Index)
	contracts.Get("/:id", read, contractHandler.GetByID)
	contracts.Get("/:id/pdf", read, contractHandler.PDF)
	contracts.Delete("/:id", write, contractHandler.Delete)

	analyticsGroup := protected.Group("/analytics")
	dashboardHandler := NewDashboardHandler(deps.DashboardUC)
	analyticsGroup.Get("/dashboard", read, dashboardHandler.GetDashboard)
}
