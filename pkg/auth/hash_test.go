package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	hashService := &HashService{Cost: bcrypt.MinCost}

	tests := []struct {
		name        string
		password    string
		expectedErr error
	}{
		{
			name:     "Campus account password",
			password: "dorm-4-lamp",
		},
		{
			name:     "Exactly 72 bytes",
			password: strings.Repeat("a", 72),
		},
		{
			name:        "Empty password",
			password:    "",
			expectedErr: ErrEmptyPassword,
		},
		{
			name:        "Past the bcrypt limit",
			password:    strings.Repeat("a", 73),
			expectedErr: ErrPasswordTooLong,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hashed, err := hashService.HashPassword(tt.password)
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.Empty(t, hashed)
				return
			}
			assert.NoError(t, err)
			cost, err := bcrypt.Cost([]byte(hashed))
			assert.NoError(t, err)
			assert.Equal(t, bcrypt.MinCost, cost)
		})
	}
}

func TestHashPassword_DefaultCost(t *testing.T) {
	hashed, err := (&HashService{}).HashPassword("dorm-4-lamp")
	assert.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hashed))
	assert.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
}

func TestComparePassword(t *testing.T) {
	hashService := &HashService{Cost: bcrypt.MinCost}
	stored, err := hashService.HashPassword("dorm-4-lamp")
	assert.NoError(t, err)

	tests := []struct {
		name     string
		hashed   string
		password string
		match    bool
	}{
		{name: "Same password", hashed: stored, password: "dorm-4-lamp", match: true},
		{name: "Wrong password", hashed: stored, password: "dorm-5-lamp"},
		{name: "Empty password", hashed: stored, password: ""},
		{name: "Account without hash", hashed: "", password: "dorm-4-lamp"},
		{name: "Corrupt hash", hashed: "not-a-bcrypt-hash", password: "dorm-4-lamp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.match, hashService.ComparePassword(tt.hashed, tt.password))
		})
	}
}
