package derive

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTravelMode(t *testing.T) {
	tests := []struct {
		code *float64
		want string
	}{
		{fp(1), "Air"},
		{fp(2), "Sea"},
		{fp(3), "Land"},
		{fp(9), "Not Reported"},
		{fp(99), "Not Reported"},
		{fp(1.5), "Not Reported"},
		{nil, "Not Reported"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TravelMode(tt.code))
	}
}

func TestVisaCategory(t *testing.T) {
	tests := []struct {
		code *float64
		want string
	}{
		{fp(1), "Business"},
		{fp(2), "Pleasure"},
		{fp(3), "Student"},
		{fp(0), "Unknown"},
		{fp(42), "Unknown"},
		{nil, "Unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, VisaCategory(tt.code))
	}
}
