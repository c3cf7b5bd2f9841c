// Package biztime provides utilities for business timezone calculations.
//
// Two zones matter to the counter:
//   - the business timezone, which decides where "today" starts and ends
//     (local midnight at the counter);
//   - the ledger zone, a fixed UTC+9 offset used for every timestamp written
//     to the ledger, independent of the host or the tz database.
//
// Implicit Local timezone is prohibited: callers obtain "now" through Now()
// so the day boundary never depends on the host's TZ setting.
package biztime

import (
	"fmt"
	"sync"
	"time"
)

const (
	// DefaultTimezone is the default business timezone (WIT, UTC+9, no DST).
	DefaultTimezone = "Asia/Jayapura"

	// LedgerLayout is the layout of the issuedAt column in the ledger.
	LedgerLayout = "2006-01-02 15:04:05"

	ledgerOffsetSeconds = 9 * 60 * 60
)

var (
	bizLocation   *time.Location
	bizLocationMu sync.RWMutex

	ledgerZone = time.FixedZone("UTC+9", ledgerOffsetSeconds)
)

// ledgerParseLayouts are the shapes a spreadsheet may re-render a
// USER_ENTERED timestamp into. The canonical layout comes first.
var ledgerParseLayouts = []string{
	LedgerLayout,
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006/01/02 15:04:05",
	"2006/1/2 15:04:05",
	"2006-1-2 15:04:05",
	"1/2/2006 15:04:05",
	"2006-01-02",
}

// Init initializes the business timezone. Should be called once at startup.
// If tz is empty, defaults to Asia/Jayapura.
func Init(tz string) error {
	if tz == "" {
		tz = DefaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return fmt.Errorf("failed to load business timezone %q: %w", tz, err)
	}
	SetLocation(loc)
	return nil
}

// SetLocation overrides the business timezone.
func SetLocation(loc *time.Location) {
	bizLocationMu.Lock()
	bizLocation = loc
	bizLocationMu.Unlock()
}

// Location returns the business timezone location.
// Falls back to the ledger zone when the tz database is unavailable.
func Location() *time.Location {
	bizLocationMu.RLock()
	loc := bizLocation
	bizLocationMu.RUnlock()
	if loc != nil {
		return loc
	}
	if err := Init(""); err != nil {
		SetLocation(ledgerZone)
		return ledgerZone
	}
	return Location()
}

// LedgerZone returns the fixed UTC+9 zone used for ledger timestamps.
func LedgerZone() *time.Location {
	return ledgerZone
}

// Now returns the current instant expressed in the business timezone.
func Now() time.Time {
	return time.Now().In(Location())
}

// NowUTC returns current time in UTC.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// SameDay reports whether a and b fall on the same calendar day as seen
// from ref's location.
func SameDay(a, b time.Time, ref *time.Location) bool {
	a = a.In(ref)
	b = b.In(ref)
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// FormatLedgerTimestamp renders t in the ledger zone using LedgerLayout.
func FormatLedgerTimestamp(t time.Time) string {
	return t.In(ledgerZone).Format(LedgerLayout)
}

// ParseLedgerTimestamp parses a ledger timestamp. Values without an explicit
// offset are interpreted in the ledger zone.
func ParseLedgerTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	for _, layout := range ledgerParseLayouts {
		if t, err := time.ParseInLocation(layout, s, ledgerZone); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid ledger timestamp %q", s)
}
