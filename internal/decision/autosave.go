package decision

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/patchline/verdict/internal/events"
	"github.com/patchline/verdict/internal/model"
)

var autosaveFailures = promauto.NewCounter(prometheus.CounterOpts{
	Name: "verdict_autosave_failures_total",
	Help: "Debounced board saves that failed.",
})

// autosaver debounces persistence writes: a new mutation reschedules (not
// queues) any pending save, so a burst of edits persists only its final state.
// Writes are fire-and-forget; a failure warns and marks persistence degraded
// but never rolls back the in-memory board.
type autosaver struct {
	mu    sync.Mutex // guards the service board, status and the timer
	svc   *Service
	delay time.Duration
	timer *time.Timer
}

func newAutosaver(svc *Service, delay time.Duration) *autosaver {
	return &autosaver{svc: svc, delay: delay}
}

// schedule arms the save timer, superseding any pending one. Caller holds mu.
func (a *autosaver) schedule() {
	if a.svc.deps.Store == nil {
		return
	}
	a.cancelLocked()
	a.timer = time.AfterFunc(a.delay, a.flush)
}

// cancelLocked drops any pending save. Caller holds mu.
func (a *autosaver) cancelLocked() {
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
}

// flush serializes the current board and writes it. The payload is captured
// under the lock but written outside it so a slow store never blocks edits.
func (a *autosaver) flush() {
	a.mu.Lock()
	a.timer = nil
	payload := a.snapshotPayloadLocked()
	a.mu.Unlock()

	a.save(payload)
}

func (a *autosaver) snapshotPayloadLocked() []byte {
	payload, err := json.Marshal(a.svc.board.Serialize())
	if err != nil {
		// Serialize produces plain structs and maps; this cannot fail.
		a.svc.deps.Logger.Error("serialize board", "error", err)
		return nil
	}
	return payload
}

func (a *autosaver) save(payload []byte) {
	if payload == nil || a.svc.deps.Store == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := a.svc.deps.Store.SaveBoard(ctx, a.svc.deps.BoardKey, payload)

	a.mu.Lock()
	if err != nil {
		a.svc.status.Persistence = PersistenceDegraded
	} else {
		a.svc.status.Persistence = PersistenceOK
		a.svc.status.LastSavedAt = model.Now()
	}
	a.mu.Unlock()

	if err != nil {
		autosaveFailures.Inc()
		a.svc.deps.Logger.Warn("could not save board, continuing in memory", "error", err)
		a.svc.publish(events.SubjectBoardSaveFailed(a.svc.deps.BoardKey), events.BoardSavedEvent{
			Key:   a.svc.deps.BoardKey,
			Error: err.Error(),
		})
		return
	}
	a.svc.publish(events.SubjectBoardSaved(a.svc.deps.BoardKey), events.BoardSavedEvent{
		Key: a.svc.deps.BoardKey,
	})
}

// close cancels any pending timer and runs one final synchronous save.
func (a *autosaver) close() {
	a.mu.Lock()
	a.cancelLocked()
	payload := a.snapshotPayloadLocked()
	a.mu.Unlock()

	a.save(payload)
}
