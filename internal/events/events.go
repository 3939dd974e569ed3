package events

const (
	StreamName   = "VERDICT_EVENTS"
	StreamMaxAge = "720h" // 30 days
)

func SubjectBoardUpdated(key string) string    { return "verdict.board." + key + ".updated" }
func SubjectBoardReset(key string) string      { return "verdict.board." + key + ".reset" }
func SubjectBoardSaved(key string) string      { return "verdict.board." + key + ".saved" }
func SubjectBoardSaveFailed(key string) string { return "verdict.board." + key + ".save_failed" }

// BoardMutatedEvent is published after every successful mutation.
type BoardMutatedEvent struct {
	Key       string `json:"key"`
	Op        string `json:"op"`
	UpdatedAt int64  `json:"updated_at"`
}

// BoardSavedEvent reports the outcome of a debounced save.
type BoardSavedEvent struct {
	Key   string `json:"key"`
	Error string `json:"error,omitempty"`
}
