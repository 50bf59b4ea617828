package types

// OptionalID distinguishes an absent field from an explicit null in partial
// update bodies. Set is true whenever the field appeared in the payload;
// Valid is false for an explicit null.
type OptionalID struct {
	Set   bool
	Valid bool
	Value uint64
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (o *OptionalID) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Valid = false
		return nil
	}

	var f FlexUint64
	if err := f.UnmarshalJSON(data); err != nil {
		return err
	}
	o.Valid = true
	o.Value = f.Uint64()
	return nil
}
