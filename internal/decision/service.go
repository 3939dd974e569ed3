// Package decision owns the live board and applies mutations against it.
// Every operation is atomic: it fully applies (touching UpdatedAt, scheduling
// a save, publishing an event) or fully rejects with a structured Error.
package decision

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/patchline/verdict/internal/events"
	"github.com/patchline/verdict/internal/model"
	"github.com/patchline/verdict/internal/scoring"
	"github.com/patchline/verdict/internal/store"
)

// Snapshot is what handlers hand outward after a read or a successful
// mutation: a detached copy of the board plus its freshly computed report.
type Snapshot struct {
	Board  *model.DecisionModel
	Report *scoring.Report
}

// Deps are the service's collaborators. Store and Events may be nil; the
// service then runs memory-only and silent, respectively.
type Deps struct {
	Store     store.Store
	BoardKey  string
	Events    events.Client
	Logger    *slog.Logger
	SaveDelay time.Duration
}

type Service struct {
	deps  Deps
	saver *autosaver

	// Guarded by the saver's mutex; see autosave.go. Handlers run
	// concurrently, so every read and mutation serializes on that lock.
	board  *model.DecisionModel
	status Status
}

// New wraps an already-sanitized board. loadStatus describes how the board
// came to be (fresh, repaired, reset) and is surfaced via Status.
func New(board *model.DecisionModel, loadStatus LoadStatus, deps Deps) *Service {
	if deps.SaveDelay <= 0 {
		deps.SaveDelay = 150 * time.Millisecond
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	s := &Service{
		deps:  deps,
		board: board,
		status: Status{
			Load:        loadStatus,
			Persistence: PersistenceOK,
		},
	}
	if deps.Store == nil {
		s.status.Persistence = PersistenceDisabled
	}
	s.saver = newAutosaver(s, deps.SaveDelay)
	return s
}

// Close flushes any pending save.
func (s *Service) Close() {
	s.saver.close()
}

// Snapshot returns a detached copy of the board and its report.
func (s *Service) Snapshot() *Snapshot {
	s.saver.mu.Lock()
	defer s.saver.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Service) snapshotLocked() *Snapshot {
	board := s.board.Clone()
	return &Snapshot{Board: board, Report: scoring.Score(board)}
}

// Status reports load outcome and persistence health.
func (s *Service) Status() Status {
	s.saver.mu.Lock()
	defer s.saver.mu.Unlock()
	return s.status
}

// apply runs one mutation under the board lock. fn reports whether it changed
// anything; only real changes touch UpdatedAt, reschedule the save and publish
// an event. A returned *Error leaves the board untouched.
func (s *Service) apply(op string, fn func(m *model.DecisionModel) (bool, *Error)) (*Snapshot, *Error) {
	s.saver.mu.Lock()
	defer s.saver.mu.Unlock()

	mutated, opErr := fn(s.board)
	if opErr != nil {
		s.deps.Logger.Info("mutation rejected", "op", op, "scope", opErr.Scope, "message", opErr.Message)
		return nil, opErr
	}

	if mutated {
		s.board.UpdatedAt = model.Now()
		s.saver.schedule()
		s.publish(events.SubjectBoardUpdated(s.deps.BoardKey), events.BoardMutatedEvent{
			Key:       s.deps.BoardKey,
			Op:        op,
			UpdatedAt: s.board.UpdatedAt,
		})
	}
	return s.snapshotLocked(), nil
}

func (s *Service) publish(subject string, data interface{}) {
	if s.deps.Events == nil {
		return
	}
	if err := s.deps.Events.Publish(subject, data); err != nil {
		s.deps.Logger.Warn("event publish failed", "subject", subject, "error", err)
	}
}

// SetTitle trims and truncates; always succeeds.
func (s *Service) SetTitle(text string) (*Snapshot, *Error) {
	return s.apply("set_title", func(m *model.DecisionModel) (bool, *Error) {
		m.Title = model.Truncate(strings.TrimSpace(text), model.MaxTitleLength)
		return true, nil
	})
}

// AddOption appends a new option. With an empty name a non-colliding default
// is generated; a supplied name is validated like a rename.
func (s *Service) AddOption(name string) (*Snapshot, *Error) {
	return s.apply("add_option", func(m *model.DecisionModel) (bool, *Error) {
		if len(m.Options) >= model.MaxOptions {
			return false, sectionError(SectionOptions, "You can add up to 20 options.")
		}
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			trimmed = model.NextDefaultName(m.OptionNames(), "Option")
		} else if msg := validateOptionName(m, trimmed, ""); msg != "" {
			return false, fieldError(SectionOptions, "", msg)
		}
		m.Options = append(m.Options, model.NewOption(trimmed, model.Now()))
		return true, nil
	})
}

// RenameOption validates the trimmed name (non-empty, length, unique among the
// other options) and applies it. Unknown ids are a silent no-op.
func (s *Service) RenameOption(id, name string) (*Snapshot, *Error) {
	return s.apply("rename_option", func(m *model.DecisionModel) (bool, *Error) {
		option := m.FindOption(id)
		if option == nil {
			return false, nil
		}
		trimmed := strings.TrimSpace(name)
		if msg := validateOptionName(m, trimmed, id); msg != "" {
			return false, fieldError(SectionOptions, id, msg)
		}
		option.Name = trimmed
		return true, nil
	})
}

// SetOptionNote truncates and stores the note; unknown ids are a silent no-op.
func (s *Service) SetOptionNote(id, text string) (*Snapshot, *Error) {
	return s.apply("set_option_note", func(m *model.DecisionModel) (bool, *Error) {
		option := m.FindOption(id)
		if option == nil {
			return false, nil
		}
		option.Note = model.Truncate(text, model.MaxNoteLength)
		return true, nil
	})
}

// DeleteOption removes the option and cascade-deletes its ratings. Rejected
// when the floor of 2 options would be violated.
func (s *Service) DeleteOption(id string) (*Snapshot, *Error) {
	return s.apply("delete_option", func(m *model.DecisionModel) (bool, *Error) {
		if len(m.Options) <= model.MinOptions {
			return false, sectionError(SectionOptions, "At least 2 options required.")
		}
		if m.FindOption(id) == nil {
			return false, nil
		}
		kept := m.Options[:0]
		for _, o := range m.Options {
			if o.ID != id {
				kept = append(kept, o)
			}
		}
		m.Options = kept
		m.PruneRatingsForOption(id)
		return true, nil
	})
}

// AddCriterion mirrors AddOption with criterion bounds; generated criteria get
// the middle weight.
func (s *Service) AddCriterion(name string) (*Snapshot, *Error) {
	return s.apply("add_criterion", func(m *model.DecisionModel) (bool, *Error) {
		if len(m.Criteria) >= model.MaxCriteria {
			return false, sectionError(SectionCriteria, "You can add up to 20 criteria.")
		}
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			trimmed = model.NextDefaultName(m.CriterionNames(), "Criterion")
		} else if msg := validateCriterionName(m, trimmed, ""); msg != "" {
			return false, fieldError(SectionCriteria, "", msg)
		}
		m.Criteria = append(m.Criteria, model.NewCriterion(trimmed, 3, model.Now()))
		return true, nil
	})
}

func (s *Service) RenameCriterion(id, name string) (*Snapshot, *Error) {
	return s.apply("rename_criterion", func(m *model.DecisionModel) (bool, *Error) {
		criterion := m.FindCriterion(id)
		if criterion == nil {
			return false, nil
		}
		trimmed := strings.TrimSpace(name)
		if msg := validateCriterionName(m, trimmed, id); msg != "" {
			return false, fieldError(SectionCriteria, id, msg)
		}
		criterion.Name = trimmed
		return true, nil
	})
}

// SetCriterionWeight clamps into [1,5]; unknown ids are a silent no-op.
func (s *Service) SetCriterionWeight(id string, weight int) (*Snapshot, *Error) {
	return s.apply("set_criterion_weight", func(m *model.DecisionModel) (bool, *Error) {
		criterion := m.FindCriterion(id)
		if criterion == nil {
			return false, nil
		}
		criterion.Weight = model.ClampInt(weight, model.MinWeight, model.MaxWeight)
		return true, nil
	})
}

// DeleteCriterion removes the criterion and cascade-deletes its ratings.
func (s *Service) DeleteCriterion(id string) (*Snapshot, *Error) {
	return s.apply("delete_criterion", func(m *model.DecisionModel) (bool, *Error) {
		if len(m.Criteria) <= model.MinCriteria {
			return false, sectionError(SectionCriteria, "At least 1 criterion required.")
		}
		if m.FindCriterion(id) == nil {
			return false, nil
		}
		kept := m.Criteria[:0]
		for _, c := range m.Criteria {
			if c.ID != id {
				kept = append(kept, c)
			}
		}
		m.Criteria = kept
		m.PruneRatingsForCriterion(id)
		return true, nil
	})
}

// SetRating clamps the value and stores it, overwriting any prior rating for
// the pair. A missing option or criterion makes it a silent no-op.
func (s *Service) SetRating(optionID, criterionID string, value int) (*Snapshot, *Error) {
	return s.apply("set_rating", func(m *model.DecisionModel) (bool, *Error) {
		if m.FindOption(optionID) == nil || m.FindCriterion(criterionID) == nil {
			return false, nil
		}
		key := model.RatingKey{OptionID: optionID, CriterionID: criterionID}
		m.Ratings[key] = model.ClampInt(value, model.MinRating, model.MaxRating)
		return true, nil
	})
}

// ClearRating removes the rating for the pair if present.
func (s *Service) ClearRating(optionID, criterionID string) (*Snapshot, *Error) {
	return s.apply("clear_rating", func(m *model.DecisionModel) (bool, *Error) {
		key := model.RatingKey{OptionID: optionID, CriterionID: criterionID}
		if _, ok := m.Ratings[key]; !ok {
			return false, nil
		}
		delete(m.Ratings, key)
		return true, nil
	})
}

// Reset discards the board for a fresh default one and clears the persisted
// payload. A storage failure degrades to memory-only with a warning; the
// in-memory reset always wins.
func (s *Service) Reset(ctx context.Context) *Snapshot {
	s.saver.mu.Lock()
	defer s.saver.mu.Unlock()

	s.saver.cancelLocked()
	s.board = model.NewDefault()
	s.status.Load = LoadStatus{State: LoadFresh, Message: "Decision reset to default state."}

	if s.deps.Store != nil {
		if err := s.deps.Store.DeleteBoard(ctx, s.deps.BoardKey); err != nil {
			s.deps.Logger.Warn("could not clear saved board", "error", err)
			s.status.Persistence = PersistenceDegraded
		} else {
			s.status.Persistence = PersistenceOK
		}
	}

	s.publish(events.SubjectBoardReset(s.deps.BoardKey), events.BoardMutatedEvent{
		Key:       s.deps.BoardKey,
		Op:        "reset",
		UpdatedAt: s.board.UpdatedAt,
	})
	return s.snapshotLocked()
}

func validateOptionName(m *model.DecisionModel, name, selfID string) string {
	if name == "" {
		return "Option name is required."
	}
	if len([]rune(name)) > model.MaxOptionNameLength {
		return "Option name must be 60 characters or fewer."
	}
	lower := strings.ToLower(name)
	for _, o := range m.Options {
		if o.ID == selfID {
			continue
		}
		if strings.ToLower(strings.TrimSpace(o.Name)) == lower {
			return "Option names must be unique."
		}
	}
	return ""
}

func validateCriterionName(m *model.DecisionModel, name, selfID string) string {
	if name == "" {
		return "Criterion name is required."
	}
	if len([]rune(name)) > model.MaxCriterionNameLength {
		return "Criterion name must be 40 characters or fewer."
	}
	lower := strings.ToLower(name)
	for _, c := range m.Criteria {
		if c.ID == selfID {
			continue
		}
		if strings.ToLower(strings.TrimSpace(c.Name)) == lower {
			return "Criterion names must be unique."
		}
	}
	return ""
}
