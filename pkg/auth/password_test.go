package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := HashPassword("Sup3rSecret!")
	require.NoError(t, err)
	assert.NotEqual(t, "Sup3rSecret!", hash)

	assert.NoError(t, ComparePassword(hash, "Sup3rSecret!"))
	assert.Error(t, ComparePassword(hash, "Sup3rSecret!x"))
}

func TestHashPassword_Empty(t *testing.T) {
	_, err := HashPassword("")
	assert.Error(t, err)
}

func TestHashPassword_UniqueSalts(t *testing.T) {
	h1, err := HashPassword("Sup3rSecret!")
	require.NoError(t, err)
	h2, err := HashPassword("Sup3rSecret!")
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"valid", "GoodPassw0rd", false},
		{"too short", "Ab1", true},
		{"no uppercase", "badpassw0rd", true},
		{"no lowercase", "BADPASSW0RD", true},
		{"no digit", "BadPassword", true},
		{"common", "Password123", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGenerateTokenKey(t *testing.T) {
	k1, err := GenerateTokenKey()
	require.NoError(t, err)
	k2, err := GenerateTokenKey()
	require.NoError(t, err)

	assert.NotEmpty(t, k1)
	assert.NotEqual(t, k1, k2)
}
