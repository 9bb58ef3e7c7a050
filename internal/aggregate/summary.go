// Package aggregate computes dashboard KPIs and time-bucketed series from a
// filtered transaction list.
//
// Every function here is order-independent except CumulativeBalance, which
// sorts by timestamp itself. Sums over an empty set are zero, never an error.
package aggregate

import (
	"time"

	"finboard/internal/core"
)

// Summary holds the scalar KPIs of a transaction list.
//
// SavingsRate and ExpenseRatio are zero when TotalIncome is not positive;
// the *Defined flags tell a real zero apart from that sentinel.
type Summary struct {
	TotalIncome         core.Money `json:"total_income"`
	TotalExpense        core.Money `json:"total_expense"`
	Balance             core.Money `json:"balance"`
	SavingsRate         float64    `json:"savings_rate"`
	SavingsRateDefined  bool       `json:"savings_rate_defined"`
	ExpenseRatio        float64    `json:"expense_ratio"`
	ExpenseRatioDefined bool       `json:"expense_ratio_defined"`
	AvgIncome           core.Money `json:"avg_income"`
	AvgExpense          core.Money `json:"avg_expense"`
	AvgDailySpend       core.Money `json:"avg_daily_spend"`
	WeeksCovered        int        `json:"weeks_covered"`
	DaysCovered         int        `json:"days_covered"`

	Transactions int `json:"transactions"`
	IncomeCount  int `json:"income_count"`
	ExpenseCount int `json:"expense_count"`
	UnknownKind  int `json:"unknown_kind"`
	// ExcludedAmounts counts income/expense rows left out of the sums
	// because their amount is missing.
	ExcludedAmounts int `json:"excluded_amounts"`
}

// Summarize computes the scalar KPIs.
func Summarize(txs []core.Transaction) Summary {
	s := Summary{Transactions: len(txs)}
	dailyExpense := map[time.Time]int64{}
	weeks := map[time.Time]struct{}{}

	for _, tx := range txs {
		if tx.HasTimestamp() {
			day := tx.Date()
			if _, ok := dailyExpense[day]; !ok {
				dailyExpense[day] = 0
			}
			weeks[core.WeekStart(day)] = struct{}{}
		}

		switch tx.Kind {
		case core.KindIncome, core.KindExpense:
		default:
			s.UnknownKind++
			continue
		}
		if !tx.HasAmount() {
			s.ExcludedAmounts++
			continue
		}
		if tx.Kind == core.KindIncome {
			s.IncomeCount++
			s.TotalIncome = s.TotalIncome.Add(tx.Amount)
			continue
		}
		s.ExpenseCount++
		s.TotalExpense = s.TotalExpense.Add(tx.Amount)
		if tx.HasTimestamp() {
			dailyExpense[tx.Date()] += tx.Amount.Cents
		}
	}

	s.Balance = s.TotalIncome.Sub(s.TotalExpense)
	if s.TotalIncome.Cents > 0 {
		s.SavingsRate = float64(s.Balance.Cents) / float64(s.TotalIncome.Cents)
		s.SavingsRateDefined = true
		s.ExpenseRatio = float64(s.TotalExpense.Cents) / float64(s.TotalIncome.Cents)
		s.ExpenseRatioDefined = true
	}
	s.AvgIncome = meanCents(s.TotalIncome.Cents, s.IncomeCount)
	s.AvgExpense = meanCents(s.TotalExpense.Cents, s.ExpenseCount)

	var daySum int64
	for _, v := range dailyExpense {
		daySum += v
	}
	s.DaysCovered = len(dailyExpense)
	s.AvgDailySpend = meanCents(daySum, len(dailyExpense))
	s.WeeksCovered = len(weeks)
	return s
}

// meanCents divides with half-away-from-zero rounding; zero when n is zero.
func meanCents(sum int64, n int) core.Money {
	if n == 0 {
		return core.Money{}
	}
	d := int64(n)
	q, r := sum/d, sum%d
	if r < 0 {
		r = -r
	}
	if 2*r >= d {
		if sum < 0 {
			q--
		} else {
			q++
		}
	}
	return core.Money{Cents: q}
}
