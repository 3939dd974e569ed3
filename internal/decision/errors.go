package decision

// ErrorScope distinguishes capacity errors shown once per collection from a
// single entity's invalid field.
type ErrorScope string

const (
	ScopeSection ErrorScope = "section"
	ScopeField   ErrorScope = "field"
)

const (
	SectionOptions  = "options"
	SectionCriteria = "criteria"
)

// Error is a rejected mutation. Advisory and non-fatal: the board is left
// unchanged and the caller corrects and retries.
type Error struct {
	Scope    ErrorScope `json:"scope"`
	Section  string     `json:"section"`
	EntityID string     `json:"entity_id,omitempty"`
	Message  string     `json:"message"`
}

func (e *Error) Error() string {
	return e.Message
}

func sectionError(section, message string) *Error {
	return &Error{Scope: ScopeSection, Section: section, Message: message}
}

func fieldError(section, entityID, message string) *Error {
	return &Error{Scope: ScopeField, Section: section, EntityID: entityID, Message: message}
}
