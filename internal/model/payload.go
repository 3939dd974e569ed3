package model

import "strings"

// Wire shapes for the persisted payload. Ratings travel as a flat map keyed by
// "optionID:criterionID"; the joined form exists only here.

type OptionPayload struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Note      string `json:"note"`
	CreatedAt int64  `json:"createdAt"`
}

type CriterionPayload struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Weight    int    `json:"weight"`
	CreatedAt int64  `json:"createdAt"`
}

type Payload struct {
	Version   int                `json:"version"`
	Title     string             `json:"title"`
	Options   []OptionPayload    `json:"options"`
	Criteria  []CriterionPayload `json:"criteria"`
	Ratings   map[string]int     `json:"ratings"`
	UpdatedAt int64              `json:"updatedAt"`
}

// RatingWireKey joins a pair into its wire form.
func RatingWireKey(optionID, criterionID string) string {
	return optionID + ":" + criterionID
}

// SplitRatingWireKey parses a wire key back into its pair. Generated option
// ids never contain the delimiter, so the first colon splits the pair.
func SplitRatingWireKey(key string) (optionID, criterionID string, ok bool) {
	i := strings.Index(key, ":")
	if i < 0 {
		return "", "", false
	}
	return key[:i], key[i+1:], true
}

// Serialize produces the wire payload. Names are re-trimmed and truncated,
// weights re-clamped, and ratings that reference missing entities or carry
// out-of-range values are dropped, so a serialized board always sanitizes back
// unchanged.
func (m *DecisionModel) Serialize() *Payload {
	p := &Payload{
		Version:   Version,
		Title:     Truncate(strings.TrimSpace(m.Title), MaxTitleLength),
		Options:   make([]OptionPayload, len(m.Options)),
		Criteria:  make([]CriterionPayload, len(m.Criteria)),
		Ratings:   map[string]int{},
		UpdatedAt: m.UpdatedAt,
	}

	optionIDs := make(map[string]bool, len(m.Options))
	for i, o := range m.Options {
		p.Options[i] = OptionPayload{
			ID:        o.ID,
			Name:      Truncate(strings.TrimSpace(o.Name), MaxOptionNameLength),
			Note:      Truncate(o.Note, MaxNoteLength),
			CreatedAt: o.CreatedAt,
		}
		optionIDs[o.ID] = true
	}

	criterionIDs := make(map[string]bool, len(m.Criteria))
	for i, c := range m.Criteria {
		p.Criteria[i] = CriterionPayload{
			ID:        c.ID,
			Name:      Truncate(strings.TrimSpace(c.Name), MaxCriterionNameLength),
			Weight:    ClampInt(c.Weight, MinWeight, MaxWeight),
			CreatedAt: c.CreatedAt,
		}
		criterionIDs[c.ID] = true
	}

	for key, value := range m.Ratings {
		if !optionIDs[key.OptionID] || !criterionIDs[key.CriterionID] {
			continue
		}
		if value < MinRating || value > MaxRating {
			continue
		}
		p.Ratings[RatingWireKey(key.OptionID, key.CriterionID)] = value
	}

	return p
}
