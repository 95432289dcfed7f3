package conv

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
)

// Convert performs a best-effort conversion of the input value into the type
// pointed to by outPtr. Assignable values are copied directly, anything else
// goes through a JSON round-trip. A nil input leaves the destination untouched.
func Convert(in any, outPtr any) error {
	if outPtr == nil {
		return fmt.Errorf("conv.Convert: outPtr cannot be nil")
	}
	v := reflect.ValueOf(outPtr)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return fmt.Errorf("conv.Convert: outPtr must be a non-nil pointer")
	}
	if in == nil {
		return nil
	}
	inVal := reflect.ValueOf(in)
	if inVal.Type().AssignableTo(v.Elem().Type()) {
		v.Elem().Set(inVal)
		return nil
	}
	data, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, outPtr)
}

// ToMap converts an arbitrary input value into a map[string]interface{}.
func ToMap(in any) (map[string]interface{}, error) {
	var m map[string]interface{}
	if err := Convert(in, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// Normalize turns any Go value into its generic JSON form (maps, slices,
// float64, string, bool, nil) so it can be compared or schema validated.
func Normalize(in any) (any, error) {
	if in == nil {
		return nil, nil
	}
	data, err := json.Marshal(in)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// Decode parses raw JSON into its generic form. Empty or blank input decodes
// to nil.
func Decode(data []byte) (any, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Equal reports whether a and b have the same JSON representation.
func Equal(a, b any) bool {
	na, errA := Normalize(a)
	nb, errB := Normalize(b)
	if errA != nil || errB != nil {
		return false
	}
	return reflect.DeepEqual(na, nb)
}
