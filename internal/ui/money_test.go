package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMoney(t *testing.T) {
	assert.Equal(t, "$0.00", Money(0))
	assert.Equal(t, "$600.00", Money(600))
	assert.Equal(t, "$2,400.00", Money(2400))
	assert.Equal(t, "$157.89", Money(157.894))
}

func TestPercent(t *testing.T) {
	assert.Equal(t, "50%", Percent(50))
	assert.Equal(t, "100%", Percent(100))
}
