// seed carga historiales de embarques desde un CSV.
//
// Uso: go run ./cmd/seed [-latin1] [-products catalogo.csv] [historial.csv]
//
// Columnas: shipment_ref,version,status,cargo_sailing_date,eta,vessel,origin,destination,reason
// Cada embarque se crea, recibe sus versiones en bloque (COPY) y queda apuntando a la última
// en una sola transacción, que se repite si el bloqueo del embarque no está disponible. Ubicaciones y buques se crean por nombre si no existen.
//
// El catálogo de productos (sku,name,material_code) se carga antes del historial y
// actualiza nombre y código de material de los SKU existentes.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/cargotrack-api/internal/application/shipment"
	"github.com/jhoicas/cargotrack-api/internal/infrastructure/postgres"
	"github.com/jhoicas/cargotrack-api/pkg/config"
	"github.com/jhoicas/cargotrack-api/pkg/logger"
)

func main() {
	latin1 := flag.Bool("latin1", false, "los CSV vienen en ISO-8859-1")
	productsPath := flag.String("products", "", "CSV del catálogo de productos")
	flag.Parse()
	if flag.NArg() > 1 || (flag.NArg() == 0 && *productsPath == "") {
		fmt.Fprintln(os.Stderr, "uso: seed [-latin1] [-products catalogo.csv] [historial.csv]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()
	if err := postgres.Migrate(ctx, pool, log); err != nil {
		log.Fatal().Err(err).Msg("migraciones")
	}

	s := &seeder{
		repair:    shipment.NewPointerRepair(postgres.NewTxRunner(pool), cfg.Repair.MaxTries, log),
		locations: postgres.NewLocationRepository(pool),
		vessels:   postgres.NewVesselRepository(pool),
		products:  postgres.NewProductRepository(pool),
		log:       log.Component("seed"),
	}

	if *productsPath != "" {
		r, closeFn, err := openCSV(*productsPath, *latin1)
		if err != nil {
			log.Fatal().Err(err).Msg("abrir catálogo")
		}
		n, err := s.LoadProducts(ctx, r)
		closeFn()
		if err != nil {
			log.Fatal().Err(err).Msg("seed de productos")
		}
		log.Info().Int("products", n).Msg("catálogo cargado")
	}
	if flag.NArg() == 0 {
		return
	}

	r, closeFn, err := openCSV(flag.Arg(0), *latin1)
	if err != nil {
		log.Fatal().Err(err).Msg("abrir CSV")
	}
	defer closeFn()
	res, err := s.Run(ctx, r)
	if err != nil {
		log.Fatal().Err(err).Msg("seed")
	}
	log.Info().
		Int("shipments", res.Shipments).
		Int64("versions", res.Versions).
		Msg("seed completado")
}

// openCSV abre path y, si latin1, decodifica ISO-8859-1 a UTF-8.
func openCSV(path string, latin1 bool) (io.Reader, func(), error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() { _ = f.Close() }
	if latin1 {
		return transform.NewReader(f, charmap.ISO8859_1.NewDecoder()), closeFn, nil
	}
	return f, closeFn, nil
}
