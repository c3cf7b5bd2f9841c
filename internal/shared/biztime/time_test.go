package biztime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatLedgerTimestamp(t *testing.T) {
	utc := time.Date(2025, 3, 14, 15, 30, 45, 0, time.UTC)
	assert.Equal(t, "2025-03-15 00:30:45", FormatLedgerTimestamp(utc))

	plus9 := time.Date(2025, 3, 14, 8, 0, 0, 0, ledgerZone)
	assert.Equal(t, "2025-03-14 08:00:00", FormatLedgerTimestamp(plus9))
}

func TestParseLedgerTimestamp(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{"canonical", "2025-03-14 08:05:09", time.Date(2025, 3, 14, 8, 5, 9, 0, ledgerZone)},
		{"without seconds", "2025-03-14 08:05", time.Date(2025, 3, 14, 8, 5, 0, 0, ledgerZone)},
		{"slashes", "2025/03/14 08:05:09", time.Date(2025, 3, 14, 8, 5, 9, 0, ledgerZone)},
		{"sheet us locale", "3/14/2025 8:05:09", time.Date(2025, 3, 14, 8, 5, 9, 0, ledgerZone)},
		{"rfc3339", "2025-03-13T23:05:09Z", time.Date(2025, 3, 13, 23, 5, 9, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLedgerTimestamp(tt.input)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %s got %s", tt.want, got)
		})
	}
}

func TestParseLedgerTimestamp_Invalid(t *testing.T) {
	for _, input := range []string{"", "Timestamp", "yesterday", "2025-13-40 99:99:99"} {
		_, err := ParseLedgerTimestamp(input)
		assert.Error(t, err, input)
	}
}

func TestSameDay_UsesReferenceLocation(t *testing.T) {
	a := time.Date(2025, 3, 14, 23, 59, 59, 0, ledgerZone)
	b := time.Date(2025, 3, 15, 0, 0, 1, 0, ledgerZone)

	assert.False(t, SameDay(a, b, ledgerZone))
	// Both instants fall on 14 March in UTC.
	assert.True(t, SameDay(a, b, time.UTC))
}

func TestSetLocation(t *testing.T) {
	original := Location()
	t.Cleanup(func() { SetLocation(original) })

	zone := time.FixedZone("test", 3600)
	SetLocation(zone)

	assert.Equal(t, zone, Location())
	assert.Equal(t, zone, Now().Location())
}
