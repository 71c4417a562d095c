package savings

import (
	"fmt"
	"time"

	"cashon/internal/models"

	"github.com/shopspring/decimal"
)

// periodsPerYear is how many accrual periods a frequency has in a year.
var periodsPerYear = map[models.Frequency]int64{
	models.FrequencyDaily:   365,
	models.FrequencyWeekly:  52,
	models.FrequencyMonthly: 12,
}

// ValidFrequency reports whether interest accrues for f.
func ValidFrequency(f models.Frequency) bool {
	_, ok := periodsPerYear[f]
	return ok
}

// InterestFor returns one period's simple interest on principal at the given
// annual rate, rounded to kobo. Unknown frequencies earn nothing.
func InterestFor(frequency models.Frequency, principal, annualRate decimal.Decimal) decimal.Decimal {
	periods, ok := periodsPerYear[frequency]
	if !ok {
		return decimal.Zero
	}
	return annualRate.Div(decimal.NewFromInt(periods)).Mul(principal).Round(2)
}

// PeriodKey names the accrual period containing t. A saving accrues at most
// once per key. Unknown frequencies return "".
func PeriodKey(frequency models.Frequency, t time.Time) string {
	t = t.UTC()
	switch frequency {
	case models.FrequencyDaily:
		return t.Format("2006-01-02")
	case models.FrequencyWeekly:
		year, week := t.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week)
	case models.FrequencyMonthly:
		return t.Format("2006-01")
	default:
		return ""
	}
}

// batchID groups the activities written by one sweep.
func batchID(now time.Time) string {
	return "INTEREST_" + now.UTC().Format("20060102_150405")
}

func daysBetween(from, to time.Time) int {
	if to.Before(from) {
		return 0
	}
	return int(to.Sub(from).Hours() / 24)
}
