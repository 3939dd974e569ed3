// Package sanitize repairs untrusted persisted payloads into valid boards.
// Interactive edits and cold-load repair share the same uniquification and
// bounds rules, so a board accepted here is indistinguishable from one built
// through the mutation API.
package sanitize

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/patchline/verdict/internal/model"
)

// ErrRejectedFormat means the payload cannot be repaired at all: not a JSON
// object, or a schema version with no migration path. Callers substitute a
// fresh default board.
var ErrRejectedFormat = errors.New("unsupported payload format")

// Result is a repaired board plus whether any field needed correction.
type Result struct {
	Model    *model.DecisionModel
	Repaired bool
}

// Payload decodes and repairs a raw persisted payload.
func Payload(raw []byte) (*Result, error) {
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRejectedFormat, err)
	}
	return Value(decoded)
}

// Value repairs an already-decoded payload value.
func Value(raw any) (*Result, error) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: payload is not an object", ErrRejectedFormat)
	}

	version, ok := intField(obj["version"])
	if !ok || version != model.Version {
		// no migration path exists from any other version
		return nil, fmt.Errorf("%w: version %v", ErrRejectedFormat, obj["version"])
	}

	repaired := false

	title := ""
	if s, ok := obj["title"].(string); ok {
		title = s
	} else if obj["title"] != nil {
		repaired = true
	}
	if truncated := model.Truncate(title, model.MaxTitleLength); truncated != title {
		title = truncated
		repaired = true
	}

	options, optionsRepaired := sanitizeOptions(obj["options"])
	criteria, criteriaRepaired := sanitizeCriteria(obj["criteria"])
	repaired = repaired || optionsRepaired || criteriaRepaired

	ratings, ratingsRepaired := sanitizeRatings(obj["ratings"], options, criteria)
	repaired = repaired || ratingsRepaired

	updatedAt, ok := finiteInt64(obj["updatedAt"])
	if !ok {
		updatedAt = model.Now()
		repaired = true
	}

	return &Result{
		Repaired: repaired,
		Model: &model.DecisionModel{
			Version:   model.Version,
			Title:     title,
			Options:   options,
			Criteria:  criteria,
			Ratings:   ratings,
			UpdatedAt: updatedAt,
		},
	}, nil
}

func sanitizeOptions(input any) ([]*model.Option, bool) {
	repaired := false
	source, ok := input.([]any)
	if !ok {
		repaired = true
	}

	items := make([]*model.Option, 0, model.MinOptions)
	used := model.NameSet{}
	ordinal := 1

	for _, raw := range source {
		if len(items) >= model.MaxOptions {
			repaired = true
			break
		}
		entry, ok := raw.(map[string]any)
		if !ok {
			repaired = true
			continue
		}

		name, nameRepaired := cleanName(entry["name"], model.MaxOptionNameLength)
		unique := model.UniqueName(name, used, "Option", model.MaxOptionNameLength, ordinal)
		repaired = repaired || nameRepaired || unique != name

		note := ""
		if s, ok := entry["note"].(string); ok {
			note = s
		} else {
			repaired = true
		}
		if truncated := model.Truncate(note, model.MaxNoteLength); truncated != note {
			note = truncated
			repaired = true
		}

		id, idRepaired := cleanID(entry["id"])
		createdAt, ok := finiteInt64(entry["createdAt"])
		if !ok {
			createdAt = model.Now() + int64(len(items))
			repaired = true
		}
		repaired = repaired || idRepaired

		items = append(items, &model.Option{ID: id, Name: unique, Note: note, CreatedAt: createdAt})
		ordinal++
	}

	for len(items) < model.MinOptions {
		name := model.UniqueName("", used, "Option", model.MaxOptionNameLength, ordinal)
		items = append(items, model.NewOption(name, model.Now()+int64(ordinal)))
		repaired = true
		ordinal++
	}

	return items, repaired
}

func sanitizeCriteria(input any) ([]*model.Criterion, bool) {
	repaired := false
	source, ok := input.([]any)
	if !ok {
		repaired = true
	}

	items := make([]*model.Criterion, 0, model.MinCriteria)
	used := model.NameSet{}
	ordinal := 1

	for _, raw := range source {
		if len(items) >= model.MaxCriteria {
			repaired = true
			break
		}
		entry, ok := raw.(map[string]any)
		if !ok {
			repaired = true
			continue
		}

		name, nameRepaired := cleanName(entry["name"], model.MaxCriterionNameLength)
		unique := model.UniqueName(name, used, "Criterion", model.MaxCriterionNameLength, ordinal)
		repaired = repaired || nameRepaired || unique != name

		weight, weightRepaired := cleanWeight(entry["weight"])
		repaired = repaired || weightRepaired

		id, idRepaired := cleanID(entry["id"])
		createdAt, ok := finiteInt64(entry["createdAt"])
		if !ok {
			createdAt = model.Now() + int64(len(items))
			repaired = true
		}
		repaired = repaired || idRepaired

		items = append(items, &model.Criterion{ID: id, Name: unique, Weight: weight, CreatedAt: createdAt})
		ordinal++
	}

	for len(items) < model.MinCriteria {
		name := model.UniqueName("", used, "Criterion", model.MaxCriterionNameLength, ordinal)
		items = append(items, model.NewCriterion(name, 3, model.Now()+int64(ordinal)))
		repaired = true
		ordinal++
	}

	return items, repaired
}

func sanitizeRatings(input any, options []*model.Option, criteria []*model.Criterion) (map[model.RatingKey]int, bool) {
	items := map[model.RatingKey]int{}
	source, ok := input.(map[string]any)
	if !ok {
		return items, true
	}

	optionIDs := make(map[string]bool, len(options))
	for _, o := range options {
		optionIDs[o.ID] = true
	}
	criterionIDs := make(map[string]bool, len(criteria))
	for _, c := range criteria {
		criterionIDs[c.ID] = true
	}

	repaired := false
	for key, raw := range source {
		optionID, criterionID, ok := model.SplitRatingWireKey(key)
		if !ok || !optionIDs[optionID] || !criterionIDs[criterionID] {
			repaired = true
			continue
		}
		value, ok := intField(raw)
		if !ok || value < model.MinRating || value > model.MaxRating {
			repaired = true
			continue
		}
		items[model.RatingKey{OptionID: optionID, CriterionID: criterionID}] = value
	}

	return items, repaired
}

// cleanName extracts a trimmed, truncated name. Missing, non-string, empty and
// over-length inputs all count as repairs.
func cleanName(raw any, maxLength int) (string, bool) {
	s, ok := raw.(string)
	if !ok {
		return "", true
	}
	trimmed := strings.TrimSpace(s)
	cleaned := model.Truncate(trimmed, maxLength)
	return cleaned, trimmed == "" || cleaned != trimmed
}

func cleanID(raw any) (string, bool) {
	if s, ok := raw.(string); ok && s != "" {
		return s, false
	}
	return model.NewID(), true
}

func cleanWeight(raw any) (int, bool) {
	v, ok := intField(raw)
	if !ok {
		return model.MinWeight, true
	}
	clamped := model.ClampInt(v, model.MinWeight, model.MaxWeight)
	return clamped, clamped != v
}

// intField accepts only integral JSON numbers.
func intField(raw any) (int, bool) {
	f, ok := raw.(float64)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

func finiteInt64(raw any) (int64, bool) {
	f, ok := raw.(float64)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int64(f), true
}
