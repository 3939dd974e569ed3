package model

import (
	"time"

	"github.com/google/uuid"
)

// Version is the only persisted payload version this build reads or writes.
const Version = 1

const (
	MinOptions  = 2
	MaxOptions  = 20
	MinCriteria = 1
	MaxCriteria = 20

	MaxTitleLength         = 80
	MaxOptionNameLength    = 60
	MaxCriterionNameLength = 40
	MaxNoteLength          = 500

	MinWeight = 1
	MaxWeight = 5
	MinRating = 1
	MaxRating = 5
)

// WeightLabels maps a criterion weight to its display label.
var WeightLabels = map[int]string{
	1: "Meh",
	2: "Slight",
	3: "Medium",
	4: "Important",
	5: "Dealbreaker",
}

type Option struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Note      string `json:"note"`
	CreatedAt int64  `json:"createdAt"`
}

type Criterion struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Weight    int    `json:"weight"`
	CreatedAt int64  `json:"createdAt"`
}

// RatingKey identifies one (option, criterion) cell. Ratings are keyed by the
// ordered pair, not the joined string, so ids containing the wire delimiter
// cannot collide.
type RatingKey struct {
	OptionID    string
	CriterionID string
}

// DecisionModel is the aggregate root: one decision board. It exclusively owns
// its options, criteria and ratings.
type DecisionModel struct {
	Version   int
	Title     string
	Options   []*Option
	Criteria  []*Criterion
	Ratings   map[RatingKey]int
	UpdatedAt int64
}

// NewID returns a process-unique opaque identifier.
func NewID() string {
	return uuid.NewString()
}

// Now returns the current time as epoch milliseconds, the timestamp unit used
// throughout the model.
func Now() int64 {
	return time.Now().UnixMilli()
}

// NewOption builds an option with a fresh id. The name is truncated, never
// validated; callers validate first.
func NewOption(name string, createdAt int64) *Option {
	return &Option{
		ID:        NewID(),
		Name:      Truncate(name, MaxOptionNameLength),
		Note:      "",
		CreatedAt: createdAt,
	}
}

// NewCriterion builds a criterion with a fresh id and a clamped weight.
func NewCriterion(name string, weight int, createdAt int64) *Criterion {
	return &Criterion{
		ID:        NewID(),
		Name:      Truncate(name, MaxCriterionNameLength),
		Weight:    ClampInt(weight, MinWeight, MaxWeight),
		CreatedAt: createdAt,
	}
}

// NewDefault returns a fresh default board: two blank options and three
// pre-weighted criteria. Creation timestamps are staggered so creation order
// stays a usable tie-break key.
func NewDefault() *DecisionModel {
	now := Now()
	options := []*Option{
		NewOption("Option A", now),
		NewOption("Option B", now+1),
	}
	criteria := []*Criterion{
		NewCriterion("Price", 4, now+100),
		NewCriterion("Quality", 5, now+101),
		NewCriterion("Convenience", 3, now+102),
	}
	return &DecisionModel{
		Version:   Version,
		Title:     "",
		Options:   options,
		Criteria:  criteria,
		Ratings:   map[RatingKey]int{},
		UpdatedAt: now,
	}
}

// FindOption returns the option with the given id, or nil.
func (m *DecisionModel) FindOption(id string) *Option {
	for _, o := range m.Options {
		if o.ID == id {
			return o
		}
	}
	return nil
}

// FindCriterion returns the criterion with the given id, or nil.
func (m *DecisionModel) FindCriterion(id string) *Criterion {
	for _, c := range m.Criteria {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// Rating returns the stored rating for the pair, or 0 when unrated.
func (m *DecisionModel) Rating(optionID, criterionID string) int {
	v, ok := m.Ratings[RatingKey{OptionID: optionID, CriterionID: criterionID}]
	if !ok || v < MinRating || v > MaxRating {
		return 0
	}
	return v
}

// PruneRatingsForOption drops every rating keyed to the option.
func (m *DecisionModel) PruneRatingsForOption(optionID string) {
	for key := range m.Ratings {
		if key.OptionID == optionID {
			delete(m.Ratings, key)
		}
	}
}

// PruneRatingsForCriterion drops every rating keyed to the criterion.
func (m *DecisionModel) PruneRatingsForCriterion(criterionID string) {
	for key := range m.Ratings {
		if key.CriterionID == criterionID {
			delete(m.Ratings, key)
		}
	}
}

// Clone returns a deep copy. Handlers hand clones outward so nothing aliases
// the live board.
func (m *DecisionModel) Clone() *DecisionModel {
	out := &DecisionModel{
		Version:   m.Version,
		Title:     m.Title,
		Options:   make([]*Option, len(m.Options)),
		Criteria:  make([]*Criterion, len(m.Criteria)),
		Ratings:   make(map[RatingKey]int, len(m.Ratings)),
		UpdatedAt: m.UpdatedAt,
	}
	for i, o := range m.Options {
		clone := *o
		out.Options[i] = &clone
	}
	for i, c := range m.Criteria {
		clone := *c
		out.Criteria[i] = &clone
	}
	for k, v := range m.Ratings {
		out.Ratings[k] = v
	}
	return out
}

// ClampInt clamps v into [min, max].
func ClampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// Truncate cuts s to at most max runes.
func Truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
