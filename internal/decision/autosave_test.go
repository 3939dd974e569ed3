package decision

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/patchline/verdict/internal/model"
)

func newSavingService(st *memStore, delay time.Duration) *Service {
	return New(model.NewDefault(), LoadStatus{State: LoadFresh}, Deps{
		Store:     st,
		BoardKey:  "default",
		Logger:    testLogger(),
		SaveDelay: delay,
	})
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func TestAutosaveCoalescesBursts(t *testing.T) {
	st := &memStore{}
	svc := newSavingService(st, 30*time.Millisecond)
	defer svc.Close()

	// a burst of edits well inside the debounce window
	svc.SetTitle("a")
	svc.SetTitle("ab")
	svc.AddOption("Cabin")
	snap, _ := svc.SetTitle("abc")

	waitFor(t, func() bool { return st.saves() >= 1 })
	if got := st.saves(); got != 1 {
		t.Errorf("expected one coalesced save, got %d", got)
	}

	var payload model.Payload
	if err := json.Unmarshal(st.saved[len(st.saved)-1], &payload); err != nil {
		t.Fatalf("unmarshal saved payload: %v", err)
	}
	if payload.Title != "abc" {
		t.Errorf("persisted title %q, want final state", payload.Title)
	}
	if len(payload.Options) != len(snap.Board.Options) {
		t.Errorf("persisted %d options, board has %d", len(payload.Options), len(snap.Board.Options))
	}
}

func TestAutosaveUpdatesStatus(t *testing.T) {
	st := &memStore{}
	svc := newSavingService(st, 10*time.Millisecond)
	defer svc.Close()

	if svc.Status().LastSavedAt != 0 {
		t.Error("nothing saved yet")
	}
	svc.SetTitle("a")
	waitFor(t, func() bool { return svc.Status().LastSavedAt != 0 })
	if svc.Status().Persistence != PersistenceOK {
		t.Errorf("persistence %s", svc.Status().Persistence)
	}
}

func TestAutosaveFailureDegrades(t *testing.T) {
	st := &memStore{failSave: errors.New("disk full")}
	svc := newSavingService(st, 10*time.Millisecond)
	defer svc.Close()

	svc.SetTitle("a")
	waitFor(t, func() bool { return svc.Status().Persistence == PersistenceDegraded })

	// a later successful save recovers
	st.mu.Lock()
	st.failSave = nil
	st.mu.Unlock()
	svc.SetTitle("b")
	waitFor(t, func() bool { return svc.Status().Persistence == PersistenceOK })
}

func TestCloseFlushesPendingSave(t *testing.T) {
	st := &memStore{}
	svc := newSavingService(st, time.Hour) // never fires on its own
	svc.SetTitle("unsaved")
	svc.Close()

	if st.saves() != 1 {
		t.Fatalf("expected the close flush, got %d saves", st.saves())
	}
	var payload model.Payload
	if err := json.Unmarshal(st.saved[0], &payload); err != nil {
		t.Fatalf("unmarshal saved payload: %v", err)
	}
	if payload.Title != "unsaved" {
		t.Errorf("persisted title %q", payload.Title)
	}
}

func TestResetCancelsPendingSave(t *testing.T) {
	st := &memStore{}
	svc := newSavingService(st, 50*time.Millisecond)
	defer svc.Close()

	svc.SetTitle("doomed")
	svc.Reset(context.Background())
	time.Sleep(120 * time.Millisecond)

	if got := st.saves(); got != 0 {
		t.Errorf("pending save should die with the reset, got %d saves", got)
	}
}

func TestLoadMissingBoard(t *testing.T) {
	m, status := Load(context.Background(), &memStore{}, "default", testLogger())
	if status.State != LoadFresh {
		t.Errorf("state %s", status.State)
	}
	if len(m.Options) != 2 || len(m.Criteria) != 3 {
		t.Error("expected the default board")
	}
}

func TestLoadWithoutStore(t *testing.T) {
	m, status := Load(context.Background(), nil, "default", testLogger())
	if status.State != LoadFresh || status.Message == "" {
		t.Errorf("got %+v", status)
	}
	if m == nil {
		t.Fatal("expected a usable board")
	}
}

func TestLoadRejectedPayloadResets(t *testing.T) {
	st := &memStore{saved: [][]byte{[]byte(`[1,2,3]`)}}
	m, status := Load(context.Background(), st, "default", testLogger())
	if status.State != LoadReset {
		t.Errorf("state %s", status.State)
	}
	if len(m.Options) != 2 {
		t.Error("expected the default board after a reset")
	}
}

func TestLoadRepairedPayload(t *testing.T) {
	st := &memStore{saved: [][]byte{[]byte(`{"version":1,"options":[],"criteria":[]}`)}}
	m, status := Load(context.Background(), st, "default", testLogger())
	if status.State != LoadRepaired {
		t.Errorf("state %s", status.State)
	}
	if len(m.Options) != model.MinOptions || len(m.Criteria) != model.MinCriteria {
		t.Errorf("%d options, %d criteria", len(m.Options), len(m.Criteria))
	}
}

func TestLoadCleanPayload(t *testing.T) {
	seed := New(model.NewDefault(), LoadStatus{State: LoadFresh}, Deps{Logger: testLogger()})
	payload, err := json.Marshal(seed.Snapshot().Board.Serialize())
	if err != nil {
		t.Fatal(err)
	}
	seed.Close()

	st := &memStore{saved: [][]byte{payload}}
	m, status := Load(context.Background(), st, "default", testLogger())
	if status.State != LoadClean {
		t.Errorf("state %s", status.State)
	}
	if len(m.Options) != 2 {
		t.Errorf("%d options", len(m.Options))
	}
}
