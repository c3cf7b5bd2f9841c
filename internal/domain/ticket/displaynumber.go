package ticket

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// NumberKind distinguishes the two shapes a ticket number can take.
type NumberKind int

const (
	// KindSequential is a counter value rendered zero-padded to 4 digits.
	KindSequential NumberKind = iota
	// KindManual is free text typed by a user and stored verbatim.
	KindManual
)

func (k NumberKind) String() string {
	switch k {
	case KindSequential:
		return "sequential"
	case KindManual:
		return "manual"
	default:
		return "unknown"
	}
}

const sequenceWidth = 4

// DisplayNumber is the identifier printed on a ticket.
type DisplayNumber struct {
	kind NumberKind
	seq  uint32
	text string
}

// Sequential returns the n-th ticket of a day.
func Sequential(n uint32) DisplayNumber {
	return DisplayNumber{kind: KindSequential, seq: n}
}

// Manual wraps a user-supplied identifier.
func Manual(text string) DisplayNumber {
	return DisplayNumber{kind: KindManual, text: text}
}

// FirstOfDay is the number issued when today's sequence is empty or unreadable.
func FirstOfDay() DisplayNumber {
	return Sequential(1)
}

// ParseDisplayNumber classifies a ledger or user value. Only a plain
// non-negative base-10 integer that fits in 32 bits is sequential;
// everything else (signs, decimals, letters, blanks) is manual.
func ParseDisplayNumber(s string) DisplayNumber {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" || !isDigits(trimmed) {
		return Manual(s)
	}
	n, err := strconv.ParseUint(trimmed, 10, 32)
	if err != nil {
		return Manual(s)
	}
	return Sequential(uint32(n))
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func (d DisplayNumber) Kind() NumberKind {
	return d.kind
}

func (d DisplayNumber) IsSequential() bool {
	return d.kind == KindSequential
}

// Sequence returns the counter value of a sequential number.
func (d DisplayNumber) Sequence() (uint32, bool) {
	if d.kind != KindSequential {
		return 0, false
	}
	return d.seq, true
}

// Next returns the number that follows d. A manual number has no
// successor, so the day restarts at FirstOfDay.
func (d DisplayNumber) Next() DisplayNumber {
	if d.kind != KindSequential || d.seq == math.MaxUint32 {
		return FirstOfDay()
	}
	return Sequential(d.seq + 1)
}

func (d DisplayNumber) String() string {
	if d.kind == KindManual {
		return d.text
	}
	return fmt.Sprintf("%0*d", sequenceWidth, d.seq)
}
