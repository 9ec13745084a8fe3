package ident

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGenerator_Next_Format(t *testing.T) {
	fixed := time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)
	gen := NewWithClock(func() time.Time { return fixed })

	number := gen.Next(PrefixSale)

	parts := strings.Split(number, "-")
	assert.Len(t, parts, 3)
	assert.Equal(t, "SALE", parts[0])
	assert.Equal(t, "20260315", parts[1])
	assert.Len(t, parts[2], 6)
	assert.Equal(t, strings.ToUpper(parts[2]), parts[2])
}

func TestGenerator_Next_Distinct(t *testing.T) {
	gen := New()

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		n := gen.Next(PrefixInvoice)
		assert.False(t, seen[n], "duplicate number %s", n)
		seen[n] = true
	}
}

func TestFixed_Next(t *testing.T) {
	gen := Fixed{Number: "SALE-20260101-AAAAAA"}

	assert.Equal(t, "SALE-20260101-AAAAAA", gen.Next(PrefixSale))
	assert.Equal(t, "SALE-20260101-AAAAAA", gen.Next(PrefixLPO))
}
