package emission

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatInt(t *testing.T) {
	assert.Equal(t, "0", formatInt(0))
	assert.Equal(t, "999", formatInt(999))
	assert.Equal(t, "50 000", formatInt(50000))
	assert.Equal(t, "250 000 000", formatInt(250_000_000))
}

func TestFormatDecimal(t *testing.T) {
	assert.Equal(t, "2 500", formatDecimal(decimal.NewFromInt(2500)))
	assert.Equal(t, "1 000.55", formatDecimal(decimal.RequireFromString("1000.55")))
	assert.Equal(t, "50 000", formatDecimal(decimal.RequireFromString("50000.00")))
	assert.Equal(t, "999.99", formatDecimal(decimal.RequireFromString("999.99")))
}
