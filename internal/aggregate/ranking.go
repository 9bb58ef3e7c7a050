package aggregate

import (
	"sort"
	"time"

	"finboard/internal/core"
)

// CategoryBreakdown sums expense amounts per category, largest first.
// Categories whose expense sum is zero are omitted; ties sort by name.
func CategoryBreakdown(txs []core.Transaction) []core.CategoryAmount {
	sums := map[string]int64{}
	for _, tx := range txs {
		if tx.Kind != core.KindExpense || !tx.HasAmount() {
			continue
		}
		sums[tx.Category] += tx.Amount.Cents
	}
	out := make([]core.CategoryAmount, 0, len(sums))
	for name, cents := range sums {
		if cents == 0 {
			continue
		}
		out = append(out, core.CategoryAmount{Name: name, Amount: core.Money{Cents: cents}})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount.Cents != out[j].Amount.Cents {
			return out[i].Amount.Cents > out[j].Amount.Cents
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// BalancePoint is one step of the running balance.
type BalancePoint struct {
	Seq       int        `json:"seq"`
	Timestamp time.Time  `json:"timestamp"`
	Delta     core.Money `json:"delta"`
	Balance   core.Money `json:"balance"`
}

// CumulativeBalance returns the running sum of signed amounts ordered by
// timestamp, ties kept in input order. Rows without a timestamp are skipped.
func CumulativeBalance(txs []core.Transaction) []BalancePoint {
	ordered := make([]core.Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.HasTimestamp() {
			ordered = append(ordered, tx)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Timestamp.Before(ordered[j].Timestamp)
	})

	out := make([]BalancePoint, 0, len(ordered))
	var running core.Money
	for _, tx := range ordered {
		delta := tx.Signed()
		running = running.Add(delta)
		out = append(out, BalancePoint{Seq: tx.Seq, Timestamp: tx.Timestamp, Delta: delta, Balance: running})
	}
	return out
}

// TopN returns up to n transactions with the largest amounts. Equal amounts
// keep their input order. Rows with a missing amount are never ranked.
func TopN(txs []core.Transaction, n int) []core.Transaction {
	if n <= 0 {
		return []core.Transaction{}
	}
	ranked := make([]core.Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.HasAmount() {
			ranked = append(ranked, tx)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Amount.Cents > ranked[j].Amount.Cents
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

const DefaultTopN = 10

type Options struct {
	TopN int
}

// Result bundles everything the aggregator derives from one filtered list.
type Result struct {
	Summary    Summary               `json:"summary"`
	Daily      []Bucket              `json:"daily"`
	Weekly     []Bucket              `json:"weekly"`
	Monthly    []Bucket              `json:"monthly"`
	Categories []core.CategoryAmount `json:"categories"`
	Cumulative []BalancePoint        `json:"cumulative"`
	Top        []core.Transaction    `json:"top"`

	MonthlyIncome  MonthlySeries `json:"-"`
	MonthlyExpense MonthlySeries `json:"-"`
}

// Compute runs every aggregation over txs. A zero TopN uses DefaultTopN.
func Compute(txs []core.Transaction, opts Options) Result {
	n := opts.TopN
	if n == 0 {
		n = DefaultTopN
	}
	income, expense := MonthlyPair(txs)
	return Result{
		Summary:        Summarize(txs),
		Daily:          Series(txs, Day),
		Weekly:         Series(txs, Week),
		Monthly:        Series(txs, Month),
		Categories:     CategoryBreakdown(txs),
		Cumulative:     CumulativeBalance(txs),
		Top:            TopN(txs, n),
		MonthlyIncome:  income,
		MonthlyExpense: expense,
	}
}
