package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/swaggo/swag"

	"github.com/jhoicas/cargotrack-api/docs"
	appanalytics "github.com/jhoicas/cargotrack-api/internal/application/analytics"
	"github.com/jhoicas/cargotrack-api/internal/application/auth"
	"github.com/jhoicas/cargotrack-api/internal/application/contract"
	"github.com/jhoicas/cargotrack-api/internal/application/shipment"
	"github.com/jhoicas/cargotrack-api/internal/application/transaction"
	"github.com/jhoicas/cargotrack-api/internal/application/usecase"
	"github.com/jhoicas/cargotrack-api/internal/domain/repository"
	"github.com/jhoicas/cargotrack-api/internal/infrastructure/cache"
	"github.com/jhoicas/cargotrack-api/internal/infrastructure/events"
	"github.com/jhoicas/cargotrack-api/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/cargotrack-api/internal/infrastructure/pdf"
	"github.com/jhoicas/cargotrack-api/internal/infrastructure/postgres"
	"github.com/jhoicas/cargotrack-api/internal/infrastructure/storage"
	httpRouter "github.com/jhoicas/cargotrack-api/internal/interfaces/http"
	"github.com/jhoicas/cargotrack-api/pkg/config"
	"github.com/jhoicas/cargotrack-api/pkg/logger"
)

// txRunner transacciones de los tres agregados (embarque, libro de transacciones, contratos).
type txRunner interface {
	shipment.TxRunner
	transaction.LedgerTxRunner
	contract.ContractTxRunner
}

// backend repositorios de lectura y runner transaccional de un mismo almacén.
type backend struct {
	runner       txRunner
	users        repository.UserRepository
	locations    repository.LocationRepository
	vessels      repository.VesselRepository
	products     repository.ProductRepository
	parties      repository.PartyRepository
	shipments    repository.ShipmentRepository
	versions     repository.ShipmentVersionRepository
	items        repository.ShipmentItemRepository
	transactions repository.TransactionRepository
	lines        repository.TransactionLineRepository
	blobs        repository.BlobRepository
	contracts    repository.ContractRepository
	analytics    repository.AnalyticsRepository
	close        func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.App.StoreDriver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	be, err := openBackend(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("abrir almacén de datos")
	}
	defer be.close()

	blobStorage, closeStorage, err := openStorage(ctx, cfg.Storage)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Storage.Driver).Msg("almacenamiento de contratos")
	}
	defer closeStorage()

	var publisher shipment.EventPublisher = events.NopPublisher{}
	if cfg.Kafka.Enabled() {
		kp := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.ShipmentTopic, log)
		defer kp.Close()
		publisher = kp
	}

	var dashboardCache appanalytics.Cache = cache.NewMemoryCache()
	if cfg.Redis.Enabled() {
		rc, err := cache.NewRedisCache(ctx, cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("redis no disponible, se usa caché en memoria")
		} else {
			defer rc.Close()
			dashboardCache = rc
		}
	}

	validator := shipment.NewValidator(be.locations, be.vessels)
	writer := shipment.NewWriteVersionUseCase(be.runner, publisher, log)
	shipmentUC := shipment.NewShipmentUseCase(be.shipments, be.versions, be.items, validator, writer, be.runner, log)
	reportUC := shipment.NewReportUseCase(be.shipments, be.versions, be.items, be.transactions, infrapdf.NewMarotoReportGenerator())

	mirror := transaction.NewShipmentItemMirror(log)
	lineService := transaction.NewTransactionLineService(be.runner, be.products, mirror)
	transactionUC := transaction.NewTransactionUseCase(
		be.transactions, be.lines, be.parties, be.contracts, be.shipments, be.runner, mirror, lineService, log,
	)
	contractUC := contract.NewContractUseCase(
		blobStorage, be.runner, be.contracts, be.blobs, be.transactions, be.shipments, log,
	)
	dashboardUC := appanalytics.NewDashboardUseCase(be.analytics, dashboardCache, cfg.Redis.TTL, log)

	authUC := auth.NewAuthUseCase(be.users, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		BodyLimit:    contract.MaxPDFSize * 2,
		ReadTimeout:  time.Second * 30,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	swaggerDoc, err := swag.ReadDoc(docs.SwaggerInfo.InstanceName())
	if err != nil {
		log.Fatal().Err(err).Msg("leer especificación swagger")
	}
	app.Use(swagger.New(swagger.Config{
		BasePath:    "/",
		FilePath:    "./docs/swagger.json",
		FileContent: []byte(swaggerDoc),
		Path:        "docs",
		Title:       docs.SwaggerInfo.Title,
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:        authUC,
		UserUC:        usecase.NewUserUseCase(be.users),
		LocationUC:    usecase.NewLocationUseCase(be.locations),
		VesselUC:      usecase.NewVesselUseCase(be.vessels),
		ProductUC:     usecase.NewProductUseCase(be.products),
		PartyUC:       usecase.NewPartyUseCase(be.parties),
		ShipmentUC:    shipmentUC,
		ReportUC:      reportUC,
		TransactionUC: transactionUC,
		LineService:   lineService,
		ContractUC:    contractUC,
		DashboardUC:   dashboardUC,
		JWTSecret:     cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

// openBackend PostgreSQL (con migraciones) o el almacén en memoria según STORE_DRIVER.
func openBackend(ctx context.Context, cfg *config.Config, log *logger.Logger) (*backend, error) {
	if cfg.App.StoreDriver == "memory" {
		s := memory.New()
		return &backend{
			runner:       s,
			users:        s.Users(),
			locations:    s.Locations(),
			vessels:      s.Vessels(),
			products:     s.Products(),
			parties:      s.Parties(),
			shipments:    s.Shipments(),
			versions:     s.Versions(),
			items:        s.Items(),
			transactions: s.Transactions(),
			lines:        s.Lines(),
			blobs:        s.Blobs(),
			contracts:    s.Contracts(),
			analytics:    s.Analytics(),
			close:        func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	if err := postgres.Migrate(ctx, pool, log); err != nil {
		pool.Close()
		return nil, err
	}
	return &backend{
		runner:       postgres.NewTxRunner(pool),
		users:        postgres.NewUserRepository(pool),
		locations:    postgres.NewLocationRepository(pool),
		vessels:      postgres.NewVesselRepository(pool),
		products:     postgres.NewProductRepository(pool),
		parties:      postgres.NewPartyRepository(pool),
		shipments:    postgres.NewShipmentRepository(pool),
		versions:     postgres.NewShipmentVersionRepository(pool),
		items:        postgres.NewShipmentItemRepository(pool),
		transactions: postgres.NewTransactionRepository(pool),
		lines:        postgres.NewTransactionLineRepository(pool),
		blobs:        postgres.NewBlobRepository(pool),
		contracts:    postgres.NewContractRepository(pool),
		analytics:    postgres.NewAnalyticsRepository(pool),
		close:        pool.Close,
	}, nil
}

func openStorage(ctx context.Context, cfg config.StorageConfig) (contract.BlobStorage, func(), error) {
	if cfg.Driver == storage.DriverGCS {
		gcs, err := storage.NewGCSStorage(ctx, cfg.GCSBucket, cfg.GCSCredentials)
		if err != nil {
			return nil, nil, err
		}
		return gcs, func() { _ = gcs.Close() }, nil
	}
	local, err := storage.NewLocalStorage(cfg.LocalDir)
	if err != nil {
		return nil, nil, err
	}
	return local, func() {}, nil
}
