package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewShippingAddress(t *testing.T) {
	t.Run("valid address is normalized", func(t *testing.T) {
		addr, err := NewShippingAddress("  Jane Doe ", " Jane@Example.COM ", "0901234567", "12 Main St", "ring twice")
		require.NoError(t, err)
		assert.Equal(t, "Jane Doe", addr.Name())
		assert.Equal(t, "jane@example.com", addr.Email())
		assert.Equal(t, "0901234567", addr.Phone())
		assert.Equal(t, "12 Main St", addr.Address())
		assert.Equal(t, "ring twice", addr.Note())
		assert.False(t, addr.IsEmpty())
	})

	t.Run("email is optional", func(t *testing.T) {
		addr, err := NewShippingAddress("Jane", "", "0901234567", "12 Main St", "")
		require.NoError(t, err)
		assert.Empty(t, addr.Email())
	})

	tests := []struct {
		name    string
		rName   string
		email   string
		phone   string
		address string
	}{
		{"missing name", "", "", "1", "a"},
		{"missing phone", "n", "", "", "a"},
		{"missing address", "n", "", "1", ""},
		{"bad email", "n", "not-an-email", "1", "a"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewShippingAddress(tt.rName, tt.email, tt.phone, tt.address, "")
			assert.Error(t, err)
		})
	}
}

func TestShippingAddress_ValueScan(t *testing.T) {
	addr, err := NewShippingAddress("Jane", "jane@example.com", "0901", "12 Main St", "")
	require.NoError(t, err)

	v, err := addr.Value()
	require.NoError(t, err)

	var scanned ShippingAddress
	require.NoError(t, scanned.Scan(v))
	assert.True(t, addr.Equals(scanned))

	var fromBytes ShippingAddress
	require.NoError(t, fromBytes.Scan([]byte(v.(string))))
	assert.True(t, addr.Equals(fromBytes))

	var empty ShippingAddress
	require.NoError(t, empty.Scan(nil))
	assert.True(t, empty.IsEmpty())

	assert.Error(t, empty.Scan(42))
}

func TestShippingAddress_UnmarshalJSONValidates(t *testing.T) {
	var addr ShippingAddress
	err := json.Unmarshal([]byte(`{"name":"Jane","phone":"","address":"x"}`), &addr)
	assert.Error(t, err)
}
