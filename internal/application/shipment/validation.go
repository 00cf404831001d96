package shipment

import (
	"context"
	"unicode/utf8"

	"github.com/jhoicas/cargotrack-api/internal/domain"
	"github.com/jhoicas/cargotrack-api/internal/domain/entity"
	"github.com/jhoicas/cargotrack-api/internal/domain/repository"
	"github.com/jhoicas/cargotrack-api/internal/domain/shipment"
	"github.com/jhoicas/cargotrack-api/pkg/ulid"
)

// MaxReasonLength longitud máxima de reason.
const MaxReasonLength = 255

// Validator valida el parche antes de invocar al agregado: enumerados, formato e existencia
// de referencias, orden de fechas y origen distinto de destino sobre los valores fusionados.
type Validator struct {
	locations repository.LocationRepository
	vessels   repository.VesselRepository
}

// NewValidator construye el validador.
func NewValidator(locations repository.LocationRepository, vessels repository.VesselRepository) *Validator {
	return &Validator{locations: locations, vessels: vessels}
}

// ValidateCreate status, origin_id y destination_id son obligatorios.
func (v *Validator) ValidateCreate(ctx context.Context, p shipment.Patch, reason *string) error {
	if !p.Status.Set || p.Status.Value == nil {
		return domain.NewValidationError("status", "es requerido")
	}
	if !p.OriginID.Set || p.OriginID.Value == nil {
		return domain.NewValidationError("origin_id", "es requerido")
	}
	if !p.DestinationID.Set || p.DestinationID.Value == nil {
		return domain.NewValidationError("destination_id", "es requerido")
	}
	return v.validate(ctx, nil, p, reason)
}

// ValidateUpdate solo se validan los campos enviados; prev es la versión actual (puede ser nil).
func (v *Validator) ValidateUpdate(ctx context.Context, prev *entity.ShipmentVersion, p shipment.Patch, reason *string) error {
	if p.Empty() {
		return domain.NewValidationError("", "no se envió ningún campo versionado")
	}
	return v.validate(ctx, prev, p, reason)
}

func (v *Validator) validate(ctx context.Context, prev *entity.ShipmentVersion, p shipment.Patch, reason *string) error {
	if p.Status.Set {
		if p.Status.Value == nil {
			return domain.NewValidationError("status", "no puede ser null")
		}
		if !entity.ValidStatus(*p.Status.Value) {
			return domain.NewValidationError("status", "debe ser PLANNED, IN_TRANSIT, ARRIVED o CLOSED")
		}
	}
	if p.OriginID.Set && p.OriginID.Value == nil {
		return domain.NewValidationError("origin_id", "no puede ser null")
	}
	if p.DestinationID.Set && p.DestinationID.Value == nil {
		return domain.NewValidationError("destination_id", "no puede ser null")
	}

	if err := v.checkLocation(ctx, "origin_id", p.OriginID); err != nil {
		return err
	}
	if err := v.checkLocation(ctx, "destination_id", p.DestinationID); err != nil {
		return err
	}
	if p.VesselID.Set && p.VesselID.Value != nil {
		if !ulid.Valid(*p.VesselID.Value) {
			return domain.NewValidationError("vessel_id", "no es un ULID válido")
		}
		vessel, err := v.vessels.GetByID(ctx, *p.VesselID.Value)
		if err != nil {
			return err
		}
		if vessel == nil {
			return domain.NewValidationError("vessel_id", "el buque no existe")
		}
	}

	if err := CheckReason(reason); err != nil {
		return err
	}
	return CheckAttributes(shipment.Merge(prev, p))
}

// CheckAttributes reglas sobre los valores efectivos de una versión: origen distinto de
// destino y eta igual o posterior al zarpe.
func CheckAttributes(a shipment.Attributes) error {
	if a.OriginID != nil && a.DestinationID != nil && *a.OriginID == *a.DestinationID {
		return domain.NewValidationError("destination_id", "debe ser distinto del origen")
	}
	if a.CargoSailingDate != nil && a.ETA != nil && a.ETA.Before(*a.CargoSailingDate) {
		return domain.NewValidationError("eta", "debe ser igual o posterior a cargo_sailing_date")
	}
	return nil
}

// CheckReason reason admite hasta MaxReasonLength caracteres.
func CheckReason(reason *string) error {
	if reason != nil && utf8.RuneCountInString(*reason) > MaxReasonLength {
		return domain.NewValidationError("reason", "máximo 255 caracteres")
	}
	return nil
}

func (v *Validator) checkLocation(ctx context.Context, field string, f shipment.Field[string]) error {
	if !f.Set || f.Value == nil {
		return nil
	}
	if !ulid.Valid(*f.Value) {
		return domain.NewValidationError(field, "no es un ULID válido")
	}
	loc, err := v.locations.GetByID(ctx, *f.Value)
	if err != nil {
		return err
	}
	if loc == nil {
		return domain.NewValidationError(field, "la ubicación no existe")
	}
	return nil
}
