package decision

type LoadState string

const (
	// LoadFresh: no saved payload existed, or one was just reset.
	LoadFresh LoadState = "fresh"
	// LoadRepaired: a saved payload loaded with repairs.
	LoadRepaired LoadState = "repaired"
	// LoadReset: a saved payload was rejected and replaced with defaults.
	LoadReset LoadState = "reset"
	// LoadClean: a saved payload loaded untouched.
	LoadClean LoadState = "clean"
)

type LoadStatus struct {
	State   LoadState `json:"state"`
	Message string    `json:"message,omitempty"`
}

type PersistenceState string

const (
	PersistenceOK       PersistenceState = "ok"
	PersistenceDegraded PersistenceState = "degraded"
	PersistenceDisabled PersistenceState = "disabled"
)

// Status reports how the board loaded and whether durability currently holds.
type Status struct {
	Load        LoadStatus       `json:"load"`
	Persistence PersistenceState `json:"persistence"`
	LastSavedAt int64            `json:"last_saved_at,omitempty"`
}
