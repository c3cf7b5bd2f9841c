package ticket

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDisplayNumber(t *testing.T) {
	tests := []struct {
		input      string
		wantKind   NumberKind
		wantString string
	}{
		{"0007", KindSequential, "0007"},
		{"7", KindSequential, "0007"},
		{" 0041 ", KindSequential, "0041"},
		{"12345", KindSequential, "12345"},
		{"0", KindSequential, "0000"},
		{"WALK-IN-7", KindManual, "WALK-IN-7"},
		{"A12", KindManual, "A12"},
		{"-3", KindManual, "-3"},
		{"+3", KindManual, "+3"},
		{"12.5", KindManual, "12.5"},
		{"", KindManual, ""},
		{"99999999999", KindManual, "99999999999"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ParseDisplayNumber(tt.input)
			assert.Equal(t, tt.wantKind, got.Kind())
			assert.Equal(t, tt.wantString, got.String())
		})
	}
}

func TestDisplayNumber_Next(t *testing.T) {
	assert.Equal(t, "0042", Sequential(41).Next().String())
	assert.Equal(t, "0001", Sequential(0).Next().String())
	assert.Equal(t, "10000", Sequential(9999).Next().String())
	assert.Equal(t, "0001", Manual("WALK-IN-7").Next().String())
	assert.Equal(t, FirstOfDay(), Sequential(math.MaxUint32).Next())
}

func TestDisplayNumber_Sequence(t *testing.T) {
	n, ok := Sequential(12).Sequence()
	assert.True(t, ok)
	assert.Equal(t, uint32(12), n)

	_, ok = Manual("x").Sequence()
	assert.False(t, ok)
}

func TestNumberKind_String(t *testing.T) {
	assert.Equal(t, "sequential", KindSequential.String())
	assert.Equal(t, "manual", KindManual.String())
	assert.Equal(t, "unknown", NumberKind(9).String())
}
