package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jhoicas/cargotrack-api/internal/application/dto"
	"github.com/jhoicas/cargotrack-api/internal/application/shipment"
	"github.com/jhoicas/cargotrack-api/internal/domain/entity"
	"github.com/jhoicas/cargotrack-api/internal/domain/repository"
	domainshipment "github.com/jhoicas/cargotrack-api/internal/domain/shipment"
	"github.com/jhoicas/cargotrack-api/pkg/logger"
	"github.com/jhoicas/cargotrack-api/pkg/ulid"
)

var columns = []string{"shipment_ref", "version", "status", "cargo_sailing_date", "eta", "vessel", "origin", "destination", "reason"}

// row fila del CSV ya parseada.
type row struct {
	ref         string
	version     int
	status      string
	sailing     *time.Time
	eta         *time.Time
	vessel      string
	origin      string
	destination string
	reason      string
}

type result struct {
	Shipments int
	Versions  int64
}

type seeder struct {
	repair    *shipment.PointerRepair
	locations repository.LocationRepository
	vessels   repository.VesselRepository
	products  repository.ProductRepository
	log       *logger.Logger
	now       func() time.Time
}

// Run lee el CSV completo, agrupa por shipment_ref y carga cada embarque.
func (s *seeder) Run(ctx context.Context, r io.Reader) (*result, error) {
	rows, err := readRows(r)
	if err != nil {
		return nil, err
	}
	groups := make(map[string][]row)
	var refs []string
	for _, rw := range rows {
		if _, ok := groups[rw.ref]; !ok {
			refs = append(refs, rw.ref)
		}
		groups[rw.ref] = append(groups[rw.ref], rw)
	}

	out := &result{}
	for _, ref := range refs {
		n, err := s.loadShipment(ctx, ref, groups[ref])
		if err != nil {
			return out, fmt.Errorf("embarque %s: %w", ref, err)
		}
		out.Shipments++
		out.Versions += n
	}
	return out, nil
}

// loadShipment crea el embarque, inserta sus versiones en bloque y fija el puntero en una sola tx.
func (s *seeder) loadShipment(ctx context.Context, ref string, rows []row) (int64, error) {
	sort.Slice(rows, func(i, j int) bool { return rows[i].version < rows[j].version })
	for i, rw := range rows {
		if rw.version != i+1 {
			return 0, fmt.Errorf("versiones no consecutivas: se esperaba %d y llegó %d", i+1, rw.version)
		}
	}

	now := time.Now()
	if s.now != nil {
		now = s.now()
	}
	shipmentID := ulid.NewAt(now)

	list := make([]*entity.ShipmentVersion, 0, len(rows))
	for _, rw := range rows {
		v := &entity.ShipmentVersion{
			ID:               ulid.NewAt(now),
			ShipmentID:       shipmentID,
			Version:          rw.version,
			Status:           rw.status,
			CargoSailingDate: rw.sailing,
			ETA:              rw.eta,
			CreatedAt:        now,
		}
		if rw.reason != "" {
			reason := rw.reason
			v.Reason = &reason
		}
		var err error
		if v.VesselID, err = s.vesselID(ctx, rw.vessel); err != nil {
			return 0, err
		}
		if v.OriginID, err = s.locationID(ctx, rw.origin); err != nil {
			return 0, err
		}
		if v.DestinationID, err = s.locationID(ctx, rw.destination); err != nil {
			return 0, err
		}
		if err := shipment.CheckAttributes(attributesOf(v)); err != nil {
			return 0, fmt.Errorf("versión %d: %w", v.Version, err)
		}
		list = append(list, v)
	}

	var n int64
	err := s.repair.Run(ctx, "seed", shipmentID, func(shipments repository.ShipmentRepository, versions repository.ShipmentVersionRepository) error {
		if err := shipments.Create(ctx, &entity.Shipment{ID: shipmentID, CreatedAt: now, UpdatedAt: now}); err != nil {
			return err
		}
		var err error
		if n, err = versions.BulkAppend(ctx, list); err != nil {
			return err
		}
		return shipment.RepointOnCreated(ctx, shipments, versions, shipmentID, list[len(list)-1].ID)
	})
	if err != nil {
		return 0, err
	}
	s.log.Info().
		Str("shipment_ref", ref).
		Str("shipment_id", shipmentID).
		Int("versions", len(list)).
		Msg("embarque cargado")
	return n, nil
}

func attributesOf(v *entity.ShipmentVersion) domainshipment.Attributes {
	return domainshipment.Attributes{
		Status:           v.Status,
		CargoSailingDate: v.CargoSailingDate,
		ETA:              v.ETA,
		VesselID:         v.VesselID,
		OriginID:         v.OriginID,
		DestinationID:    v.DestinationID,
	}
}

func (s *seeder) locationID(ctx context.Context, name string) (*string, error) {
	if name == "" {
		return nil, nil
	}
	loc, err := s.locations.UpsertByName(ctx, name)
	if err != nil {
		return nil, err
	}
	return &loc.ID, nil
}

func (s *seeder) vesselID(ctx context.Context, name string) (*string, error) {
	if name == "" {
		return nil, nil
	}
	v, err := s.vessels.UpsertByName(ctx, name)
	if err != nil {
		return nil, err
	}
	return &v.ID, nil
}

// readRows valida la cabecera y parsea todas las filas.
func readRows(r io.Reader) ([]row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(columns)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("CSV vacío")
		}
		return nil, fmt.Errorf("leer cabecera: %w", err)
	}
	for i, col := range columns {
		if !strings.EqualFold(strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff")), col) {
			return nil, fmt.Errorf("columna %d: se esperaba %q", i+1, col)
		}
	}

	var rows []row
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", line, err)
		}
		rw, err := parseRow(rec)
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", line, err)
		}
		rows = append(rows, rw)
	}
	return rows, nil
}

func parseRow(rec []string) (row, error) {
	for i := range rec {
		rec[i] = strings.TrimSpace(rec[i])
	}
	rw := row{
		ref:         rec[0],
		status:      strings.ToUpper(rec[2]),
		vessel:      rec[5],
		origin:      rec[6],
		destination: rec[7],
		reason:      rec[8],
	}
	if rw.ref == "" {
		return rw, fmt.Errorf("shipment_ref vacío")
	}
	v, err := strconv.Atoi(rec[1])
	if err != nil || v < 1 {
		return rw, fmt.Errorf("version inválida %q", rec[1])
	}
	rw.version = v
	if !entity.ValidStatus(rw.status) {
		return rw, fmt.Errorf("status inválido %q", rec[2])
	}
	if rw.sailing, err = parseDate(rec[3]); err != nil {
		return rw, fmt.Errorf("cargo_sailing_date: %w", err)
	}
	if rw.eta, err = parseDate(rec[4]); err != nil {
		return rw, fmt.Errorf("eta: %w", err)
	}
	// Ubicaciones por nombre: el upsert no distingue mayúsculas.
	attrs := domainshipment.Attributes{
		CargoSailingDate: rw.sailing,
		ETA:              rw.eta,
		OriginID:         nameKey(rw.origin),
		DestinationID:    nameKey(rw.destination),
	}
	if err := shipment.CheckAttributes(attrs); err != nil {
		return rw, err
	}
	if rw.reason != "" {
		if err := shipment.CheckReason(&rw.reason); err != nil {
			return rw, err
		}
	}
	return rw, nil
}

func nameKey(name string) *string {
	if name == "" {
		return nil
	}
	k := strings.ToLower(name)
	return &k
}

func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(dto.DateLayout, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
