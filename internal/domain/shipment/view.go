package shipment

import (
	"time"

	"github.com/jhoicas/cargotrack-api/internal/domain/entity"
)

// View vista actual del embarque: la identidad unida a la versión apuntada.
// Nunca se persiste; se calcula en cada lectura.
type View struct {
	ShipmentID       string
	LatestVersionID  *string
	Version          int // 0 si aún no hay versiones
	Status           string
	CargoSailingDate *time.Time
	ETA              *time.Time
	VesselID         *string
	VesselName       *string
	OriginID         *string
	OriginName       *string
	DestinationID    *string
	DestinationName  *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Project une el embarque con la versión apuntada. current puede ser nil.
// Los nombres de buque y ubicaciones los completa quien tenga acceso a ellos.
func Project(s *entity.Shipment, current *entity.ShipmentVersion) *View {
	v := &View{
		ShipmentID:      s.ID,
		LatestVersionID: s.LatestVersionID,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
	if current == nil {
		return v
	}
	v.Version = current.Version
	v.Status = current.Status
	v.CargoSailingDate = current.CargoSailingDate
	v.ETA = current.ETA
	v.VesselID = current.VesselID
	v.OriginID = current.OriginID
	v.DestinationID = current.DestinationID
	return v
}
