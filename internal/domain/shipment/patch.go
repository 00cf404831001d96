// Package shipment contiene la lógica pura del historial de versiones:
// fusión de cambios parciales sobre la última versión y la vista actual.
package shipment

import "time"

// Field valor tri-estado de un parche: ausente (Set=false), null explícito (Set=true, Value=nil)
// o un valor (Set=true, Value!=nil).
type Field[T any] struct {
	Set   bool
	Value *T
}

// Some construye un Field con valor.
func Some[T any](v T) Field[T] {
	return Field[T]{Set: true, Value: &v}
}

// Null construye un Field con null explícito.
func Null[T any]() Field[T] {
	return Field[T]{Set: true}
}

// Resolve devuelve el valor del parche si fue enviado (incluido null) o el valor previo.
func (f Field[T]) Resolve(prev *T) *T {
	if f.Set {
		return f.Value
	}
	return prev
}

// Patch atributos versionados que el llamador quiere cambiar.
type Patch struct {
	Status           Field[string]
	CargoSailingDate Field[time.Time]
	ETA              Field[time.Time]
	VesselID         Field[string]
	OriginID         Field[string]
	DestinationID    Field[string]
}

// Empty indica si el parche no trae ningún campo.
func (p Patch) Empty() bool {
	return !p.Status.Set && !p.CargoSailingDate.Set && !p.ETA.Set &&
		!p.VesselID.Set && !p.OriginID.Set && !p.DestinationID.Set
}
