package reportingdb

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFloatPtr(t *testing.T) {
	assert.Nil(t, floatPtr(decimal.NullDecimal{}))

	got := floatPtr(decimal.NullDecimal{Decimal: decimal.RequireFromString("1234.50"), Valid: true})
	require.NotNil(t, got)
	assert.Equal(t, 1234.5, *got)
}

func TestUTCPtr(t *testing.T) {
	assert.Nil(t, utcPtr(nil))
	zero := time.Time{}
	assert.Nil(t, utcPtr(&zero))

	local := time.Date(2024, 3, 5, 3, 0, 0, 0, time.FixedZone("AST", 3*3600))
	got := utcPtr(&local)
	require.NotNil(t, got)
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), *got)
}
