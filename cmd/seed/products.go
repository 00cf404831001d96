package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jhoicas/cargotrack-api/internal/domain/entity"
	"github.com/jhoicas/cargotrack-api/pkg/ulid"
)

var productColumns = []string{"sku", "name", "material_code"}

// LoadProducts inserta o actualiza el catálogo por SKU. Devuelve las filas procesadas.
func (s *seeder) LoadProducts(ctx context.Context, r io.Reader) (int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(productColumns)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return 0, fmt.Errorf("catálogo vacío")
		}
		return 0, fmt.Errorf("leer cabecera: %w", err)
	}
	for i, col := range productColumns {
		if !strings.EqualFold(strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff")), col) {
			return 0, fmt.Errorf("columna %d: se esperaba %q", i+1, col)
		}
	}

	n := 0
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return n, nil
		}
		if err != nil {
			return n, fmt.Errorf("línea %d: %w", line, err)
		}
		p, err := s.productFrom(rec)
		if err != nil {
			return n, fmt.Errorf("línea %d: %w", line, err)
		}
		if _, err := s.products.UpsertBySKU(ctx, p); err != nil {
			return n, fmt.Errorf("línea %d: %w", line, err)
		}
		n++
	}
}

func (s *seeder) productFrom(rec []string) (*entity.Product, error) {
	for i := range rec {
		rec[i] = strings.TrimSpace(rec[i])
	}
	if rec[0] == "" {
		return nil, fmt.Errorf("sku vacío")
	}
	if rec[1] == "" {
		return nil, fmt.Errorf("name vacío")
	}
	now := time.Now
	if s.now != nil {
		now = s.now
	}
	ts := now()
	p := &entity.Product{ID: ulid.NewAt(ts), SKU: rec[0], Name: rec[1], CreatedAt: ts, UpdatedAt: ts}
	if rec[2] != "" {
		p.MaterialCode = &rec[2]
	}
	return p, nil
}
