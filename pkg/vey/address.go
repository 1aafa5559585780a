package vey

import (
	"encoding/json"
)

// Wire keys exchanged with the remote API. The postal code is camel-cased on
// the wire while every other key matches the field name.
const (
	keyStreet     = "street"
	keyCity       = "city"
	keyProvince   = "province"
	keyPostalCode = "postalCode"
	keyCountry    = "country"
)

// Address is a postal address. Every field is optional; nil means absent.
type Address struct {
	Street     *string
	City       *string
	Province   *string
	PostalCode *string
	Country    *string
}

// String returns a pointer to s, for building Address literals.
func String(s string) *string {
	return &s
}

// ToMap returns the wire representation of the address. All five keys are
// always present; absent fields map to nil.
func (a Address) ToMap() map[string]any {
	return map[string]any{
		keyStreet:     optional(a.Street),
		keyCity:       optional(a.City),
		keyProvince:   optional(a.Province),
		keyPostalCode: optional(a.PostalCode),
		keyCountry:    optional(a.Country),
	}
}

// AddressFromMap builds an Address from its wire representation. Missing keys
// and non-string values yield nil fields.
func AddressFromMap(m map[string]any) Address {
	return Address{
		Street:     stringAt(m, keyStreet),
		City:       stringAt(m, keyCity),
		Province:   stringAt(m, keyProvince),
		PostalCode: stringAt(m, keyPostalCode),
		Country:    stringAt(m, keyCountry),
	}
}

// MarshalJSON encodes the wire representation, with null for absent fields.
func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.ToMap())
}

// UnmarshalJSON decodes the wire representation permissively.
func (a *Address) UnmarshalJSON(data []byte) error {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*a = AddressFromMap(m)
	return nil
}

// ValidationResult is the outcome of a remote validation.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// ValidationResultFromMap builds a ValidationResult from a response payload.
// A missing "valid" key means false and a missing "errors" key means no
// errors; it never fails.
func ValidationResultFromMap(m map[string]any) ValidationResult {
	res := ValidationResult{Errors: []string{}}
	if v, ok := m["valid"].(bool); ok {
		res.Valid = v
	}
	if list, ok := m["errors"].([]any); ok {
		for _, item := range list {
			if s, ok := item.(string); ok {
				res.Errors = append(res.Errors, s)
			}
		}
	}
	return res
}

// UnmarshalJSON decodes a response payload with the same defaults as
// ValidationResultFromMap.
func (r *ValidationResult) UnmarshalJSON(data []byte) error {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*r = ValidationResultFromMap(m)
	return nil
}

func optional(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func stringAt(m map[string]any, key string) *string {
	s, ok := m[key].(string)
	if !ok {
		return nil
	}
	return &s
}
