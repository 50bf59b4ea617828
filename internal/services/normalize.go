package services

import (
	"encoding/json"
	"strconv"

	"github.com/docuforms/docuforms-api/internal/models"
	"github.com/docuforms/docuforms-api/internal/types"
)

// NormalizeAnswers coerces any accepted answers shape into the canonical
// []models.Answer form. The function is total over the FlexAnswers shapes and
// idempotent: an already-normalized list passes through unchanged because
// every field is sourced from the existing record with no fallback triggered.
func NormalizeAnswers(in types.FlexAnswers) []models.Answer {
	switch in.Shape {
	case types.ShapeList:
		out := make([]models.Answer, 0, len(in.List))
		for i, element := range in.List {
			out = append(out, normalizeListElement(i, element))
		}
		return out

	case types.ShapeMap:
		// Legacy key/value shape. It carries no result information, so the
		// outcome always defaults.
		out := make([]models.Answer, 0, len(in.Entries))
		for _, entry := range in.Entries {
			out = append(out, models.Answer{
				ID:     entry.Key,
				Label:  entry.Key,
				Value:  entry.Value,
				Result: models.ResultPass,
			})
		}
		return out

	case types.ShapeScalar:
		return []models.Answer{{
			ID:     "value",
			Label:  "value",
			Value:  in.Scalar,
			Result: models.ResultPass,
		}}

	default:
		return []models.Answer{}
	}
}

// NormalizeStoredAnswers re-normalizes a persisted answers column. Rows stored
// under a legacy shape come back in the canonical list shape, so every
// response conforms regardless of how the row was written historically.
func NormalizeStoredAnswers(raw []byte) []models.Answer {
	var flex types.FlexAnswers
	if err := json.Unmarshal(raw, &flex); err != nil {
		return []models.Answer{}
	}
	return NormalizeAnswers(flex)
}

func normalizeListElement(i int, element interface{}) models.Answer {
	record, ok := element.(map[string]interface{})
	if !ok {
		// Not a structured record: wrap the raw element.
		index := strconv.Itoa(i)
		return models.Answer{ID: index, Label: index, Value: element, Result: models.ResultPass}
	}

	id := firstString(record, "id", "field_id", "name")
	if id == "" {
		id = strconv.Itoa(i)
	}

	// A present label is authoritative even when empty, so re-normalizing a
	// stored canonical record yields it unchanged.
	label, hasLabel := record["label"].(string)
	if !hasLabel {
		label = firstString(record, "id", "field_id", "name")
	}

	value, present := record["value"]
	if !present {
		value = record["answer"]
	}

	result := models.ResultPass
	if r, ok := record["result"].(string); ok && models.ValidResult(r) {
		result = r
	}

	return models.Answer{ID: id, Label: label, Value: value, Result: result}
}

// firstString returns the first non-empty string value among the given keys.
func firstString(record map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		if s, ok := record[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
