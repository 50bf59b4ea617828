package types

import (
	"encoding/json"
	"testing"
)

// TestFlexAnswersListShape tests array decoding
func TestFlexAnswersListShape(t *testing.T) {
	var f FlexAnswers
	if err := json.Unmarshal([]byte(`[{"id":"a"},"b",3]`), &f); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if f.Shape != ShapeList || len(f.List) != 3 {
		t.Errorf("Expected list shape with 3 elements, got shape=%d len=%d", f.Shape, len(f.List))
	}
}

// TestFlexAnswersMapOrder tests that object decoding preserves key order
func TestFlexAnswersMapOrder(t *testing.T) {
	var f FlexAnswers
	raw := `{"z": 1, "a": {"nested": true}, "m": [1, 2]}`
	if err := json.Unmarshal([]byte(raw), &f); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if f.Shape != ShapeMap {
		t.Fatalf("Expected map shape, got %d", f.Shape)
	}

	wantKeys := []string{"z", "a", "m"}
	if len(f.Entries) != len(wantKeys) {
		t.Fatalf("Expected %d entries, got %d", len(wantKeys), len(f.Entries))
	}
	for i, key := range wantKeys {
		if f.Entries[i].Key != key {
			t.Errorf("Entry %d: expected key %q, got %q", i, key, f.Entries[i].Key)
		}
	}
}

// TestFlexAnswersScalarShape tests bare scalar decoding
func TestFlexAnswersScalarShape(t *testing.T) {
	for raw, want := range map[string]interface{}{
		`"text"`: "text",
		`42`:     float64(42),
		`true`:   true,
	} {
		var f FlexAnswers
		if err := json.Unmarshal([]byte(raw), &f); err != nil {
			t.Fatalf("%s: unmarshal failed: %v", raw, err)
		}
		if f.Shape != ShapeScalar || f.Scalar != want {
			t.Errorf("%s: expected scalar %v, got shape=%d scalar=%v", raw, want, f.Shape, f.Scalar)
		}
	}
}

// TestFlexAnswersEmptyShapes tests null and empty-object decoding
func TestFlexAnswersEmptyShapes(t *testing.T) {
	for _, raw := range []string{`null`, `{}`} {
		var f FlexAnswers
		if err := json.Unmarshal([]byte(raw), &f); err != nil {
			t.Fatalf("%s: unmarshal failed: %v", raw, err)
		}
		if f.Shape != ShapeEmpty {
			t.Errorf("%s: expected empty shape, got %d", raw, f.Shape)
		}
	}
}

// TestFlexAnswersInvalid tests malformed input
func TestFlexAnswersInvalid(t *testing.T) {
	var f FlexAnswers
	if err := json.Unmarshal([]byte(`{"key": `), &f); err == nil {
		t.Error("Expected error for truncated object")
	}
}

// TestOptionalID tests absent vs null vs value semantics
func TestOptionalID(t *testing.T) {
	var body struct {
		ParentID OptionalID `json:"parent_id"`
	}

	// Absent
	if err := json.Unmarshal([]byte(`{}`), &body); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if body.ParentID.Set {
		t.Error("Absent field should not be Set")
	}

	// Explicit null
	body.ParentID = OptionalID{}
	if err := json.Unmarshal([]byte(`{"parent_id": null}`), &body); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if !body.ParentID.Set || body.ParentID.Valid {
		t.Errorf("Null field should be Set and not Valid: %+v", body.ParentID)
	}

	// Number and numeric string
	for _, raw := range []string{`{"parent_id": 7}`, `{"parent_id": "7"}`} {
		body.ParentID = OptionalID{}
		if err := json.Unmarshal([]byte(raw), &body); err != nil {
			t.Fatalf("%s: unmarshal failed: %v", raw, err)
		}
		if !body.ParentID.Set || !body.ParentID.Valid || body.ParentID.Value != 7 {
			t.Errorf("%s: expected value 7, got %+v", raw, body.ParentID)
		}
	}
}
