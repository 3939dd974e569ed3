// Package scoring ranks a board's options by weighted score. Score is a pure
// function over the model; it is recomputed after every mutation and never
// memoizes (boards are at most 20x20).
package scoring

import (
	"sort"

	"github.com/patchline/verdict/internal/model"
)

// RankedOption is one row of the ranking.
type RankedOption struct {
	Option   *model.Option `json:"option"`
	RawScore int           `json:"raw_score"`
	Percent  float64       `json:"percent"`
}

// Reason is one criterion's contribution to an option's score.
type Reason struct {
	Criterion    *model.Criterion `json:"criterion"`
	Rating       int              `json:"rating"`
	Contribution int              `json:"contribution"`
}

// Report is the full scoring output for one board.
type Report struct {
	MaxPossible int                 `json:"max_possible"`
	Ranking     []RankedOption      `json:"ranking"`
	Winners     []RankedOption      `json:"winners"`
	IsZeroTie   bool                `json:"is_zero_tie"`
	TopReasons  map[string][]Reason `json:"top_reasons"`
}

// maxReasons caps the per-option reasons list.
const maxReasons = 3

// Score computes the ranking, winner set and top reasons for a board.
//
// Ranking order is total: raw score descending, then option createdAt
// ascending, then original position ascending. Winners are every option
// sharing the top raw score; when that top score is 0 the tie is flagged as a
// zero tie (nothing rated yet) so callers can message it differently.
func Score(m *model.DecisionModel) *Report {
	maxPossible := 0
	for _, c := range m.Criteria {
		maxPossible += c.Weight * model.MaxRating
	}

	position := make(map[string]int, len(m.Options))
	for i, o := range m.Options {
		position[o.ID] = i
	}

	ranking := make([]RankedOption, 0, len(m.Options))
	for _, o := range m.Options {
		raw := 0
		for _, c := range m.Criteria {
			raw += m.Rating(o.ID, c.ID) * c.Weight
		}
		pct := 0.0
		if maxPossible > 0 {
			pct = float64(raw) / float64(maxPossible) * 100
		}
		ranking = append(ranking, RankedOption{Option: o, RawScore: raw, Percent: pct})
	}

	sort.SliceStable(ranking, func(i, j int) bool {
		a, b := ranking[i], ranking[j]
		if a.RawScore != b.RawScore {
			return a.RawScore > b.RawScore
		}
		if a.Option.CreatedAt != b.Option.CreatedAt {
			return a.Option.CreatedAt < b.Option.CreatedAt
		}
		return position[a.Option.ID] < position[b.Option.ID]
	})

	highest := 0
	if len(ranking) > 0 {
		highest = ranking[0].RawScore
	}
	winners := make([]RankedOption, 0, 1)
	for _, r := range ranking {
		if r.RawScore == highest {
			winners = append(winners, r)
		}
	}

	isZeroTie := len(ranking) > 0 && len(winners) == len(ranking) && highest == 0

	reasons := make(map[string][]Reason, len(winners))
	for _, o := range m.Options {
		reasons[o.ID] = topReasons(m, o.ID)
	}

	return &Report{
		MaxPossible: maxPossible,
		Ranking:     ranking,
		Winners:     winners,
		IsZeroTie:   isZeroTie,
		TopReasons:  reasons,
	}
}

// topReasons returns the option's highest-contributing criteria, at most
// maxReasons, excluding zero contributions. Order: contribution descending,
// weight descending, criterion createdAt ascending, original position.
func topReasons(m *model.DecisionModel, optionID string) []Reason {
	position := make(map[string]int, len(m.Criteria))
	for i, c := range m.Criteria {
		position[c.ID] = i
	}

	reasons := make([]Reason, 0, len(m.Criteria))
	for _, c := range m.Criteria {
		rating := m.Rating(optionID, c.ID)
		contribution := rating * c.Weight
		if contribution <= 0 {
			continue
		}
		reasons = append(reasons, Reason{Criterion: c, Rating: rating, Contribution: contribution})
	}

	sort.SliceStable(reasons, func(i, j int) bool {
		a, b := reasons[i], reasons[j]
		if a.Contribution != b.Contribution {
			return a.Contribution > b.Contribution
		}
		if a.Criterion.Weight != b.Criterion.Weight {
			return a.Criterion.Weight > b.Criterion.Weight
		}
		if a.Criterion.CreatedAt != b.Criterion.CreatedAt {
			return a.Criterion.CreatedAt < b.Criterion.CreatedAt
		}
		return position[a.Criterion.ID] < position[b.Criterion.ID]
	})

	if len(reasons) > maxReasons {
		reasons = reasons[:maxReasons]
	}
	return reasons
}
