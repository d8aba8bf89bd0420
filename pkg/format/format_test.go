package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCurrency(t *testing.T) {
	assert.Equal(t, "$0.00", Currency(0))
	assert.Equal(t, "$80.00", Currency(80))
	assert.Equal(t, "$1,234.50", Currency(1234.5))
	assert.Equal(t, "$1,234,567.89", Currency(1234567.891))
	assert.Equal(t, "-$15.25", Currency(-15.25))
}

func TestPercent(t *testing.T) {
	assert.Equal(t, "70.0%", Percent(70))
	assert.Equal(t, "85.7%", Percent(85.714))
	assert.Equal(t, "0.0%", Percent(0))
}

func TestCount(t *testing.T) {
	assert.Equal(t, "0", Count(0))
	assert.Equal(t, "999", Count(999))
	assert.Equal(t, "1,000", Count(1000))
	assert.Equal(t, "12,345,678", Count(12345678))
	assert.Equal(t, "-4,200", Count(-4200))
}

func TestNumber(t *testing.T) {
	assert.Equal(t, "1,234.6", Number(1234.56, 1))
	assert.Equal(t, "1,235", Number(1234.56, 0))
}
