package enrich

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sells-group/i94-warehouse/internal/model"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func fp(v float64) *float64 { return &v }

func TestNewCountryIndex_Capitalizes(t *testing.T) {
	idx, err := NewCountryIndex([]model.CountryCode{
		{Code: 692, Description: "ECUADOR"},
		{Code: 582, Description: " 'MEXICO AIR SEA, AND NOT REPORTED' "},
		{Code: 103, Description: "united states"},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, idx.Len())

	assert.Equal(t, "Ecuador", *idx.Name(fp(692)))
	assert.Equal(t, "Mexico Air Sea, And Not Reported", *idx.Name(fp(582)))
	assert.Equal(t, "United States", *idx.Name(fp(103)))
}

func TestCountryIndex_Unmatched(t *testing.T) {
	idx, err := NewCountryIndex([]model.CountryCode{{Code: 692, Description: "ECUADOR"}})
	require.NoError(t, err)

	assert.Nil(t, idx.Name(nil))
	assert.Nil(t, idx.Name(fp(1)))
	assert.Nil(t, idx.Name(fp(692.5)))

	var empty *CountryIndex
	assert.Nil(t, empty.Name(fp(692)))
	assert.Zero(t, empty.Len())
}

func TestNewCountryIndex_Duplicates(t *testing.T) {
	idx, err := NewCountryIndex([]model.CountryCode{
		{Code: 692, Description: "ECUADOR"},
		{Code: 692, Description: "Ecuador"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, idx.Len())

	_, err = NewCountryIndex([]model.CountryCode{
		{Code: 692, Description: "ECUADOR"},
		{Code: 692, Description: "PERU"},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateKey))
	assert.Contains(t, err.Error(), "692")
}
