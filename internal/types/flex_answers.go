// flex_answers.go
//
// A document tree and form submission service for Keycloak-secured sites
// Copyright (c) 2026 Marta Kowalik <marta@docuforms.dev> (https://www.docuforms.dev), DocuForms
//
// This file is part of docuforms-api.
// docuforms-api is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// docuforms-api is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with docuforms-api.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Marta Kowalik <marta@docuforms.dev> (https://www.docuforms.dev), DocuForms"
//    in this material, copies, or source code of derived works.

package types

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// AnswerShape discriminates the accepted wire shapes for submission answers.
type AnswerShape int

const (
	ShapeEmpty AnswerShape = iota
	ShapeList
	ShapeMap
	ShapeScalar
)

// AnswerEntry is one key/value pair from the legacy mapping shape, kept in
// document order.
type AnswerEntry struct {
	Key   string
	Value interface{}
}

// FlexAnswers is a tagged union over the three historical wire shapes for
// answers: a JSON array of answer records, a legacy key/value object, or a
// bare scalar. Absent or null input decodes to the empty shape.
type FlexAnswers struct {
	Shape   AnswerShape
	List    []interface{}
	Entries []AnswerEntry
	Scalar  interface{}
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (f *FlexAnswers) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		f.Shape = ShapeEmpty
		return nil
	}

	switch trimmed[0] {
	case '[':
		var list []interface{}
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return err
		}
		f.Shape = ShapeList
		f.List = list
		return nil
	case '{':
		entries, err := decodeOrderedObject(trimmed)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			f.Shape = ShapeEmpty
			return nil
		}
		f.Shape = ShapeMap
		f.Entries = entries
		return nil
	default:
		var scalar interface{}
		if err := json.Unmarshal(trimmed, &scalar); err != nil {
			return err
		}
		f.Shape = ShapeScalar
		f.Scalar = scalar
		return nil
	}
}

// decodeOrderedObject reads a JSON object preserving key order, which the
// standard map decoding discards.
func decodeOrderedObject(data []byte) ([]AnswerEntry, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	if _, err := dec.Token(); err != nil {
		return nil, err
	}

	var entries []AnswerEntry
	for dec.More() {
		keyToken, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyToken.(string)
		if !ok {
			return nil, fmt.Errorf("FlexAnswers: unexpected object key %v", keyToken)
		}

		var value interface{}
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}
		entries = append(entries, AnswerEntry{Key: key, Value: value})
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}

	return entries, nil
}
