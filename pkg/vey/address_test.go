package vey

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddress_ToMapAlwaysHasFiveKeys(t *testing.T) {
	tests := []struct {
		name string
		addr Address
	}{
		{"empty", Address{}},
		{"postal code only", Address{PostalCode: String("150-0002")}},
		{"full", Address{
			Street:     String("1-2-3 Shibuya"),
			City:       String("Shibuya-ku"),
			Province:   String("Tokyo"),
			PostalCode: String("150-0002"),
			Country:    String("JP"),
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := tt.addr.ToMap()
			assert.Len(t, m, 5)
			for _, key := range []string{"street", "city", "province", "postalCode", "country"} {
				assert.Contains(t, m, key)
			}
			assert.NotContains(t, m, "postal_code")
		})
	}
}

func TestAddress_ToMapNilForAbsent(t *testing.T) {
	m := Address{City: String("Osaka")}.ToMap()
	assert.Equal(t, "Osaka", m["city"])
	assert.Nil(t, m["street"])
	assert.Nil(t, m["postalCode"])
}

func TestAddress_RoundTrip(t *testing.T) {
	addrs := []Address{
		{},
		{Street: String("1600 Amphitheatre Pkwy")},
		{PostalCode: String("94043"), Country: String("US")},
		{
			Street:     String("1600 Amphitheatre Pkwy"),
			City:       String("Mountain View"),
			Province:   String("CA"),
			PostalCode: String("94043"),
			Country:    String("US"),
		},
		{Street: String("")},
	}

	for _, a := range addrs {
		assert.Equal(t, a, AddressFromMap(a.ToMap()))
	}
}

func TestAddressFromMap_Permissive(t *testing.T) {
	a := AddressFromMap(map[string]any{
		"postalCode":  "10001",
		"postal_code": "ignored",
		"city":        42,
		"extra":       "x",
	})
	require.NotNil(t, a.PostalCode)
	assert.Equal(t, "10001", *a.PostalCode)
	assert.Nil(t, a.City)
	assert.Nil(t, a.Street)

	assert.Equal(t, Address{}, AddressFromMap(nil))
}

func TestAddress_JSONUsesWireKeys(t *testing.T) {
	data, err := json.Marshal(Address{PostalCode: String("100-0001")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"street":null,"city":null,"province":null,"postalCode":"100-0001","country":null}`, string(data))

	var a Address
	require.NoError(t, json.Unmarshal([]byte(`{"postalCode":"100-0001","country":"JP"}`), &a))
	assert.Equal(t, Address{PostalCode: String("100-0001"), Country: String("JP")}, a)
}

func TestValidationResultFromMap_Defaults(t *testing.T) {
	res := ValidationResultFromMap(map[string]any{})
	assert.False(t, res.Valid)
	assert.NotNil(t, res.Errors)
	assert.Empty(t, res.Errors)

	res = ValidationResultFromMap(nil)
	assert.False(t, res.Valid)
	assert.Empty(t, res.Errors)
}

func TestValidationResultFromMap_Values(t *testing.T) {
	res := ValidationResultFromMap(map[string]any{
		"valid":  false,
		"errors": []any{"bad postal code", 7, "missing street"},
	})
	assert.False(t, res.Valid)
	assert.Equal(t, []string{"bad postal code", "missing street"}, res.Errors)

	res = ValidationResultFromMap(map[string]any{"valid": true})
	assert.True(t, res.Valid)
	assert.Empty(t, res.Errors)
}

func TestValidationResult_UnmarshalJSON(t *testing.T) {
	var res ValidationResult
	require.NoError(t, json.Unmarshal([]byte(`{}`), &res))
	assert.False(t, res.Valid)
	assert.Equal(t, []string{}, res.Errors)

	require.NoError(t, json.Unmarshal([]byte(`{"valid":true,"errors":[]}`), &res))
	assert.True(t, res.Valid)

	assert.Error(t, json.Unmarshal([]byte(`{not json`), &res))
}
