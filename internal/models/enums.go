package models

// Role is the closed set of user roles.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleAgent  Role = "agent"
	RoleViewer Role = "viewer"
)

// Roles lists every role in a stable order.
var Roles = []Role{RoleAdmin, RoleAgent, RoleViewer}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleAgent, RoleViewer:
		return true
	}
	return false
}

// PropertyStatus is the listing state of a property.
type PropertyStatus string

const (
	PropertyAvailable PropertyStatus = "available"
	PropertySold      PropertyStatus = "sold"
	PropertyRented    PropertyStatus = "rented"
	PropertyReserved  PropertyStatus = "reserved"
)

func (s PropertyStatus) Valid() bool {
	switch s {
	case PropertyAvailable, PropertySold, PropertyRented, PropertyReserved:
		return true
	}
	return false
}

// ContractType distinguishes rentals from sales.
type ContractType string

const (
	ContractRental ContractType = "rental"
	ContractSale   ContractType = "sale"
)

func (t ContractType) Valid() bool {
	return t == ContractRental || t == ContractSale
}

// ContractStatus is the lifecycle state of a contract.
type ContractStatus string

const (
	ContractDraft     ContractStatus = "draft"
	ContractSigned    ContractStatus = "signed"
	ContractCancelled ContractStatus = "cancelled"
)

func (s ContractStatus) Valid() bool {
	switch s {
	case ContractDraft, ContractSigned, ContractCancelled:
		return true
	}
	return false
}

// VisitStatus is the lifecycle state of a visit.
type VisitStatus string

const (
	VisitScheduled VisitStatus = "scheduled"
	VisitCompleted VisitStatus = "completed"
	VisitCanceled  VisitStatus = "canceled"
)

func (s VisitStatus) Valid() bool {
	switch s {
	case VisitScheduled, VisitCompleted, VisitCanceled:
		return true
	}
	return false
}
