// Package expenses aggregates a vehicle's expense records into period totals
// and its share of the fleet's spending.
package expenses

import (
	"github.com/shopspring/decimal"
	"github.com/ukydev/carlog/internal/dates"
	"github.com/ukydev/carlog/internal/models"
)

var hundred = decimal.NewFromInt(100)

// Summary holds the derived expense totals for one vehicle.
type Summary struct {
	TotalForVehicle     float64                            `json:"total_for_vehicle"`
	MonthlyForVehicle   float64                            `json:"monthly_for_vehicle"`
	YearlyForVehicle    float64                            `json:"yearly_for_vehicle"`
	PercentOfFleetTotal float64                            `json:"percent_of_fleet_total"`
	ByCategory          map[models.ExpenseCategory]float64 `json:"by_category"`
}

// RestOfYear is the yearly total excluding the current month.
func (s Summary) RestOfYear() float64 {
	return decimal.NewFromFloat(s.YearlyForVehicle).
		Sub(decimal.NewFromFloat(s.MonthlyForVehicle)).
		InexactFloat64()
}

// Summarize totals vehicle expenses against today's month and year. An
// expense whose date does not parse still counts toward the vehicle total but
// not toward the monthly or yearly buckets. The fleet percentage is zero when
// the fleet total is zero.
func Summarize(vehicle, all []models.Expense, today dates.Date) Summary {
	var total, monthly, yearly decimal.Decimal
	byCategory := make(map[models.ExpenseCategory]decimal.Decimal)

	for _, e := range vehicle {
		amount := decimal.NewFromFloat(e.Amount)
		total = total.Add(amount)
		byCategory[e.Category] = byCategory[e.Category].Add(amount)

		d := dates.Parse(e.Date)
		if !d.Valid || d.Date.Year != today.Year {
			continue
		}
		yearly = yearly.Add(amount)
		if d.Date.Month == today.Month {
			monthly = monthly.Add(amount)
		}
	}

	fleet := Total(all)
	percent := decimal.Zero
	if !fleet.IsZero() {
		percent = total.Div(fleet).Mul(hundred)
	}

	summary := Summary{
		TotalForVehicle:     total.InexactFloat64(),
		MonthlyForVehicle:   monthly.InexactFloat64(),
		YearlyForVehicle:    yearly.InexactFloat64(),
		PercentOfFleetTotal: percent.InexactFloat64(),
		ByCategory:          make(map[models.ExpenseCategory]float64, len(byCategory)),
	}
	for c, v := range byCategory {
		summary.ByCategory[c] = v.InexactFloat64()
	}
	return summary
}

// Total sums the amounts of records.
func Total(records []models.Expense) decimal.Decimal {
	sum := decimal.Zero
	for _, e := range records {
		sum = sum.Add(decimal.NewFromFloat(e.Amount))
	}
	return sum
}
