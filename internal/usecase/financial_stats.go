package usecase

import (
	"sort"
	"time"

	"nutriflow/internal/domain/entity"
)

type FinancialStats struct {
	TotalIncome   float64 `json:"totalIncome"`
	TotalExpenses float64 `json:"totalExpenses"`
	PendingIncome float64 `json:"pendingIncome"`
	Balance       float64 `json:"balance"`
}

// ComputeStats totals paid income and expenses, pending income, and the
// paid balance. Canceled records count nowhere.
func ComputeStats(records []*entity.FinancialRecord) FinancialStats {
	var stats FinancialStats
	for _, r := range records {
		switch {
		case r.Type == entity.RecordIncome && r.Status == entity.RecordPaid:
			stats.TotalIncome += r.Value
		case r.Type == entity.RecordExpense && r.Status == entity.RecordPaid:
			stats.TotalExpenses += r.Value
		case r.Type == entity.RecordIncome && r.Status == entity.RecordPending:
			stats.PendingIncome += r.Value
		}
	}
	stats.Balance = stats.TotalIncome - stats.TotalExpenses
	return stats
}

type ChartPoint struct {
	Month    string  `json:"month"`
	Income   float64 `json:"receitas"`
	Expenses float64 `json:"despesas"`
	Profit   float64 `json:"lucro"`
}

var monthAbbrevPT = [...]string{"jan", "fev", "mar", "abr", "mai", "jun", "jul", "ago", "set", "out", "nov", "dez"}

// MonthlyChart groups paid records by calendar month, oldest first. Months
// with only unpaid records still appear with zero totals.
func MonthlyChart(records []*entity.FinancialRecord, loc *time.Location) []ChartPoint {
	if loc == nil {
		loc = time.Local
	}
	type key struct {
		year  int
		month time.Month
	}
	totals := make(map[key]*ChartPoint)
	keys := make([]key, 0)
	for _, r := range records {
		d := r.Date.In(loc)
		k := key{d.Year(), d.Month()}
		point, ok := totals[k]
		if !ok {
			point = &ChartPoint{Month: monthAbbrevPT[d.Month()-1]}
			totals[k] = point
			keys = append(keys, k)
		}
		if r.Status != entity.RecordPaid {
			continue
		}
		if r.Type == entity.RecordIncome {
			point.Income += r.Value
		} else {
			point.Expenses += r.Value
		}
	}

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].year != keys[j].year {
			return keys[i].year < keys[j].year
		}
		return keys[i].month < keys[j].month
	})
	out := make([]ChartPoint, 0, len(keys))
	for _, k := range keys {
		point := totals[k]
		point.Profit = point.Income - point.Expenses
		out = append(out, *point)
	}
	return out
}

type CategoryTotal struct {
	Category string  `json:"category"`
	Name     string  `json:"name"`
	Value    float64 `json:"value"`
}

// Categories sums paid records per category. Records without one count as
// "other". Largest totals come first.
func Categories(records []*entity.FinancialRecord) []CategoryTotal {
	totals := make(map[string]float64)
	for _, r := range records {
		if r.Status != entity.RecordPaid {
			continue
		}
		category := r.Category
		if category == "" {
			category = entity.DefaultCategory
		}
		totals[category] += r.Value
	}

	out := make([]CategoryTotal, 0, len(totals))
	for category, value := range totals {
		out = append(out, CategoryTotal{
			Category: category,
			Name:     entity.CategoryLabel(category),
			Value:    value,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return out[i].Value > out[j].Value
		}
		return out[i].Category < out[j].Category
	})
	return out
}
