package pricing

import (
	"errors"

	"github.com/shopspring/decimal"
)

var ErrNegativeRate = errors.New("rates must not be negative")

// Policy turns a booked duration into a price.
type Policy struct {
	// DailyThreshold is the duration in hours from which the daily rate replaces the hourly one.
	DailyThreshold decimal.Decimal
}

func NewPolicy(dailyThresholdHours float64) Policy {
	return Policy{DailyThreshold: decimal.NewFromFloat(dailyThresholdHours)}
}

// Quote returns the total price rounded to cents.
func (p Policy) Quote(hours, hourlyRate, dailyRate decimal.Decimal) (decimal.Decimal, error) {
	if hourlyRate.IsNegative() || dailyRate.IsNegative() {
		return decimal.Zero, ErrNegativeRate
	}
	if dailyRate.IsPositive() && p.DailyThreshold.IsPositive() && hours.GreaterThanOrEqual(p.DailyThreshold) {
		return dailyRate.Round(2), nil
	}
	return hourlyRate.Mul(hours).Round(2), nil
}
