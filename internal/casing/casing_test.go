package casing_test

import (
	"testing"

	"github.com/tailbits/jsonapi/internal/casing"
	"gotest.tools/v3/assert"
)

func TestToSnakeCase(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Dog", "dog"},
		{"DogHouses", "dog_houses"},
		{"favoriteToy", "favorite_toy"},
		{"favorite_toy", "favorite_toy"},
		{"HTTPServer", "http_server"},
		{"userID", "user_id"},
		{"dog-houses", "dog_houses"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, casing.ToSnakeCase(tt.in), tt.want)
		})
	}
}

func TestToCamelCase(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"favorite_toy", "favoriteToy"},
		{"favoriteToy", "favoriteToy"},
		{"FavoriteToy", "favoriteToy"},
		{"dog-houses", "dogHouses"},
		{"ID", "id"},
		{"UserID", "userId"},
		{"age", "age"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, casing.ToCamelCase(tt.in), tt.want)
		})
	}
}

func TestCaseRoundTrip(t *testing.T) {
	for _, name := range []string{"age", "favoriteToy", "ownerId", "lastSeenAt"} {
		assert.Equal(t, casing.ToCamelCase(casing.ToSnakeCase(name)), name)
	}
}

func TestUpperFirst(t *testing.T) {
	assert.Equal(t, casing.UpperFirst("dog"), "Dog")
	assert.Equal(t, casing.UpperFirst(""), "")
	assert.Equal(t, casing.ToKebabCase("DogHouse"), "dog-house")
	assert.Equal(t, casing.SnakeToTitleCase("dog_houses"), "Dog Houses")
}
