package domain

// Status represents the lifecycle status of an asset. The string values are
// the legacy Portuguese codes kept for wire and storage compatibility with
// the back-office clients.
type Status string

const (
	StatusAvailable      Status = "disponivel"    // in a depot, assignable
	StatusInUse          Status = "em_uso"        // held by a technician or client
	StatusMaintenance    Status = "em_manutencao" // open maintenance ticket
	StatusUnavailable    Status = "indisponivel"  // temporarily out of service, no holder
	StatusDecommissioned Status = "baixado"       // terminal
)

// HolderKind identifies what kind of entity currently possesses an asset.
type HolderKind string

const (
	HolderNone       HolderKind = "none"
	HolderDepot      HolderKind = "depot"
	HolderTechnician HolderKind = "technician"
	HolderClient     HolderKind = "client"
)

// ValidStatus reports whether s is one of the closed set of statuses.
func ValidStatus(s Status) bool {
	switch s {
	case StatusAvailable, StatusInUse, StatusMaintenance, StatusUnavailable, StatusDecommissioned:
		return true
	}
	return false
}

// ValidHolderKind reports whether k is a known holder kind.
func ValidHolderKind(k HolderKind) bool {
	switch k {
	case HolderNone, HolderDepot, HolderTechnician, HolderClient:
		return true
	}
	return false
}

// AllowTransition is the lifecycle transition table. A status maps to the set
// of statuses an event may move the asset into. Same-status entries cover
// holder-only changes (depot to depot, technician to technician).
var AllowTransition = map[Status][]Status{
	StatusAvailable:   {StatusAvailable, StatusInUse, StatusMaintenance, StatusUnavailable, StatusDecommissioned},
	StatusInUse:       {StatusAvailable, StatusInUse, StatusMaintenance, StatusUnavailable, StatusDecommissioned},
	StatusMaintenance: {StatusAvailable, StatusDecommissioned},
	StatusUnavailable: {StatusAvailable, StatusInUse, StatusMaintenance, StatusUnavailable, StatusDecommissioned},
	// terminal: nothing leaves baixado
	StatusDecommissioned: {},
}

// CanTransition reports whether from -> to is a legal lifecycle transition.
func CanTransition(from, to Status) bool {
	allowed, ok := AllowTransition[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// StatusForHolder returns the status implied by transferring an asset to a
// holder of the given kind: depots make it available, technicians and
// clients put it in use.
func StatusForHolder(kind HolderKind) Status {
	if kind == HolderDepot {
		return StatusAvailable
	}
	return StatusInUse
}

// Holder is a directory entry an asset can be transferred to.
type Holder struct {
	ID        string     `json:"id"`
	CompanyID string     `json:"company_id"`
	Kind      HolderKind `json:"kind"`
	Name      string     `json:"name"`
	Document  string     `json:"document,omitempty"`
	Email     string     `json:"email,omitempty"`
	Phone     string     `json:"phone,omitempty"`
	Active    bool       `json:"active"`
}
