package ident

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NumberGenerator issues document numbers (sale, invoice, LPO). It is
// injected into the engines so tests can pin the numbers and the clock.
type NumberGenerator interface {
	Next(prefix string) string
}

// Document number prefixes.
const (
	PrefixSale    = "SALE"
	PrefixInvoice = "INV"
	PrefixLPO     = "LPO"
)

// Generator produces numbers of the form PREFIX-20060102-ABCDEF, with the
// date taken from the injected clock and a uuid-derived suffix instead of
// bare timestamp+rand. Uniqueness is still backed by the database's unique
// column; a collision surfaces as a conflict, not silent reuse.
type Generator struct {
	now func() time.Time
}

func New() *Generator {
	return &Generator{now: time.Now}
}

// NewWithClock is for tests.
func NewWithClock(now func() time.Time) *Generator {
	return &Generator{now: now}
}

func (g *Generator) Next(prefix string) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:6])
	return fmt.Sprintf("%s-%s-%s", prefix, g.now().Format("20060102"), suffix)
}

// Fixed always returns the same number; test double.
type Fixed struct {
	Number string
}

func (f Fixed) Next(prefix string) string {
	return f.Number
}
