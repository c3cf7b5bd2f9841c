package ticket

import (
	"strings"
	"time"

	"github.com/antrian-kiosk/antrian/internal/shared/biztime"
)

// SequenceResolver derives the next ticket number from a ledger snapshot.
// It holds no state: the same rows and the same calendar day always yield
// the same answer, and nothing is reserved.
type SequenceResolver struct{}

func NewSequenceResolver() *SequenceResolver {
	return &SequenceResolver{}
}

// ComputeNextNumber returns the number that follows the last row issued on
// now's calendar day. Insertion order decides "last", not numeric value.
// An empty day, or a last number that is not an integer, yields 0001.
func (r *SequenceResolver) ComputeNextNumber(rows []Row, now time.Time) DisplayNumber {
	last, ok := r.LastIssuedToday(rows, now)
	if !ok {
		return FirstOfDay()
	}
	return ParseDisplayNumber(last.Number).Next()
}

// LastIssuedToday returns the last row, in ledger order, whose timestamp
// falls on the same calendar day as now (midnight in now's location).
func (r *SequenceResolver) LastIssuedToday(rows []Row, now time.Time) (Row, bool) {
	today := TodayPartition(rows, now)
	if len(today) == 0 {
		return Row{}, false
	}
	return today[len(today)-1], true
}

// TodayPartition keeps the rows issued on now's calendar day, preserving
// order. Rows missing either column or carrying an unparseable timestamp
// never belong to any day.
func TodayPartition(rows []Row, now time.Time) []Row {
	var today []Row
	for _, row := range rows {
		if strings.TrimSpace(row.Number) == "" || strings.TrimSpace(row.Timestamp) == "" {
			continue
		}
		issuedAt, err := biztime.ParseLedgerTimestamp(strings.TrimSpace(row.Timestamp))
		if err != nil {
			continue
		}
		if biztime.SameDay(issuedAt, now, now.Location()) {
			today = append(today, row)
		}
	}
	return today
}
