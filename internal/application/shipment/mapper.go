package shipment

import (
	"time"

	"github.com/jhoicas/cargotrack-api/internal/application/dto"
	"github.com/jhoicas/cargotrack-api/internal/domain/entity"
	"github.com/jhoicas/cargotrack-api/internal/domain/shipment"
)

// PatchFromRequest traduce el cuerpo HTTP (tri-estado) al parche de dominio.
func PatchFromRequest(in dto.ShipmentWriteRequest) shipment.Patch {
	return shipment.Patch{
		Status:           shipment.Field[string](in.Status),
		CargoSailingDate: dateField(in.CargoSailingDate),
		ETA:              dateField(in.ETA),
		VesselID:         shipment.Field[string](in.VesselID),
		OriginID:         shipment.Field[string](in.OriginID),
		DestinationID:    shipment.Field[string](in.DestinationID),
	}
}

func dateField(o dto.Optional[dto.Date]) shipment.Field[time.Time] {
	if !o.Set {
		return shipment.Field[time.Time]{}
	}
	if o.Value == nil {
		return shipment.Null[time.Time]()
	}
	return shipment.Some(o.Value.Time)
}

func toShipmentResponse(v *shipment.View) dto.ShipmentResponse {
	return dto.ShipmentResponse{
		ID:               v.ShipmentID,
		LatestVersionID:  v.LatestVersionID,
		Version:          v.Version,
		Status:           v.Status,
		CargoSailingDate: dto.FormatDate(v.CargoSailingDate),
		ETA:              dto.FormatDate(v.ETA),
		VesselID:         v.VesselID,
		VesselName:       v.VesselName,
		OriginID:         v.OriginID,
		OriginName:       v.OriginName,
		DestinationID:    v.DestinationID,
		DestinationName:  v.DestinationName,
		CreatedAt:        v.CreatedAt,
		UpdatedAt:        v.UpdatedAt,
	}
}

func toVersionResponse(v *entity.ShipmentVersion) dto.ShipmentVersionResponse {
	return dto.ShipmentVersionResponse{
		ID:               v.ID,
		ShipmentID:       v.ShipmentID,
		Version:          v.Version,
		Status:           v.Status,
		CargoSailingDate: dto.FormatDate(v.CargoSailingDate),
		ETA:              dto.FormatDate(v.ETA),
		VesselID:         v.VesselID,
		OriginID:         v.OriginID,
		DestinationID:    v.DestinationID,
		ActorID:          v.ActorID,
		Reason:           v.Reason,
		CreatedAt:        v.CreatedAt,
	}
}

// ToItemResponse ítem espejo a DTO.
func ToItemResponse(it *entity.ShipmentItem) dto.ShipmentItemResponse {
	return dto.ShipmentItemResponse{
		ID:                it.ID,
		ShipmentID:        it.ShipmentID,
		TransactionLineID: it.TransactionLineID,
		Description:       it.Description,
		Quantity:          it.Quantity.String(),
		UnitPrice:         it.UnitPrice.StringFixed(2),
		UpdatedAt:         it.UpdatedAt,
	}
}

func toWriteResponse(r *WriteVersionResult) *dto.WriteVersionResponse {
	return &dto.WriteVersionResponse{
		ShipmentID: r.ShipmentID,
		VersionID:  r.VersionID,
		Version:    r.Version,
		Status:     r.Status,
	}
}
