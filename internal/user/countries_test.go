package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCountries(t *testing.T) {
	cs := Countries()
	assert.Len(t, cs, 20)
	assert.Equal(t, "US", cs[0].Code)
	assert.Equal(t, Country{Code: "AM", Label: "Armenia"}, cs[1])

	seen := make(map[string]bool)
	for _, c := range cs {
		assert.False(t, seen[c.Code], "duplicate code %s", c.Code)
		seen[c.Code] = true
		assert.NotEmpty(t, c.Label)
	}
}

func TestCountryName(t *testing.T) {
	assert.Equal(t, "Armenia", CountryName("AM"))
	assert.Equal(t, "Armenia", CountryName(" am "))
	assert.Equal(t, "Japan", CountryName("JP"))
	assert.Equal(t, "NOT-A-CODE", CountryName("not-a-code"))
}
