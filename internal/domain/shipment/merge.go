package shipment

import (
	"time"

	"github.com/jhoicas/cargotrack-api/internal/domain/entity"
)

// Attributes conjunto completo de atributos de una versión.
type Attributes struct {
	Status           string
	CargoSailingDate *time.Time
	ETA              *time.Time
	VesselID         *string
	OriginID         *string
	DestinationID    *string
}

// Merge calcula los atributos de la siguiente versión: valor del parche si fue enviado,
// si no el de la versión previa, si no el valor por defecto (status PLANNED).
// prev puede ser nil (primera versión).
func Merge(prev *entity.ShipmentVersion, p Patch) Attributes {
	var base Attributes
	if prev != nil {
		base = Attributes{
			Status:           prev.Status,
			CargoSailingDate: prev.CargoSailingDate,
			ETA:              prev.ETA,
			VesselID:         prev.VesselID,
			OriginID:         prev.OriginID,
			DestinationID:    prev.DestinationID,
		}
	}

	out := Attributes{
		CargoSailingDate: p.CargoSailingDate.Resolve(base.CargoSailingDate),
		ETA:              p.ETA.Resolve(base.ETA),
		VesselID:         p.VesselID.Resolve(base.VesselID),
		OriginID:         p.OriginID.Resolve(base.OriginID),
		DestinationID:    p.DestinationID.Resolve(base.DestinationID),
	}

	// status no admite null: un null explícito cae al valor previo o al defecto
	switch {
	case p.Status.Set && p.Status.Value != nil:
		out.Status = *p.Status.Value
	case base.Status != "":
		out.Status = base.Status
	default:
		out.Status = entity.StatusPlanned
	}
	return out
}

// NextVersion número de la siguiente versión dado el máximo actual (0 si no hay versiones).
func NextVersion(current int) int {
	return current + 1
}

// NewVersion construye la fila de versión a insertar.
func NewVersion(id, shipmentID string, number int, attrs Attributes, actorID, reason *string, now time.Time) *entity.ShipmentVersion {
	return &entity.ShipmentVersion{
		ID:               id,
		ShipmentID:       shipmentID,
		Version:          number,
		Status:           attrs.Status,
		CargoSailingDate: attrs.CargoSailingDate,
		ETA:              attrs.ETA,
		VesselID:         attrs.VesselID,
		OriginID:         attrs.OriginID,
		DestinationID:    attrs.DestinationID,
		ActorID:          actorID,
		Reason:           reason,
		CreatedAt:        now,
	}
}

// Latest devuelve la versión con mayor número, o nil si la lista está vacía.
func Latest(versions []*entity.ShipmentVersion) *entity.ShipmentVersion {
	var best *entity.ShipmentVersion
	for _, v := range versions {
		if best == nil || v.Version > best.Version {
			best = v
		}
	}
	return best
}
