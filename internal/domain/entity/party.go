package entity

import "time"

// Tipos de parte.
const (
	PartyTypeCompany    = "COMPANY"
	PartyTypeIndividual = "INDIVIDUAL"
)

// Roles de una parte dentro de una transacción.
const (
	PartyRoleBuyer   = "BUYER"
	PartyRoleSeller  = "SELLER"
	PartyRoleCarrier = "CARRIER"
	PartyRoleInsurer = "INSURER"
	PartyRoleBroker  = "BROKER"
)

// ValidPartyType indica si t es un tipo de parte conocido.
func ValidPartyType(t string) bool {
	return t == PartyTypeCompany || t == PartyTypeIndividual
}

// ValidPartyRole indica si r es un rol de parte conocido.
func ValidPartyRole(r string) bool {
	switch r {
	case PartyRoleBuyer, PartyRoleSeller, PartyRoleCarrier, PartyRoleInsurer, PartyRoleBroker:
		return true
	}
	return false
}

// Party contraparte comercial (empresa o persona).
type Party struct {
	ID        string
	Name      string
	Type      *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TransactionParty vínculo parte-transacción con rol; único por (transacción, parte, rol).
type TransactionParty struct {
	ID            string
	TransactionID string
	PartyID       string
	PartyName     string // poblado en lecturas
	Role          string
	CreatedAt     time.Time
}
