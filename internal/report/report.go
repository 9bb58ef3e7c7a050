// Package report formats dashboard reports for people: display labels for
// categories and a plain-text rendering for terminals.
package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"finboard/internal/aggregate"
	"finboard/internal/core"
	"finboard/internal/services"
)

// CategoryLabel turns a normalized category key into a title-cased label.
func CategoryLabel(category string) string {
	if category == "" {
		return "(uncategorized)"
	}
	return cases.Title(language.Und).String(category)
}

// CategoryLabels maps each category key to its display label.
func CategoryLabels(categories []string) map[string]string {
	caser := cases.Title(language.Und)
	out := make(map[string]string, len(categories))
	for _, c := range categories {
		out[c] = caser.String(c)
	}
	return out
}

// Percent formats a ratio, or "n/a" when it is undefined.
func Percent(v float64, defined bool) string {
	if !defined {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%%", v*100)
}

// WriteText renders r as aligned plain-text tables.
func WriteText(w io.Writer, r *services.Report) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	p := func(format string, args ...any) { fmt.Fprintf(tw, format, args...) }

	s := r.Summary
	p("Period\t%s .. %s\t\n", orDash(r.Criteria.Start), orDash(r.Criteria.End))
	p("Transactions\t%d of %d\t\n", r.Selected, r.Stats.Rows)
	p("Income\t%s\t\n", s.TotalIncome)
	p("Expense\t%s\t\n", s.TotalExpense)
	p("Balance\t%s\t\n", s.Balance)
	p("Savings rate\t%s\t\n", Percent(s.SavingsRate, s.SavingsRateDefined))
	p("Expense ratio\t%s\t\n", Percent(s.ExpenseRatio, s.ExpenseRatioDefined))
	p("Avg income\t%s\t\n", s.AvgIncome)
	p("Avg expense\t%s\t\n", s.AvgExpense)
	p("Avg daily spend\t%s\t\n", s.AvgDailySpend)
	p("Weeks covered\t%d\t\n", s.WeeksCovered)
	if degraded := r.Stats.MissingTimestamp + r.Stats.MissingAmount; degraded > 0 {
		p("Unparsed fields\t%d\t\n", degraded)
	}

	if len(r.Monthly) > 0 {
		p("\nMonth\tIncome\tExpense\tNet\t\n")
		for _, b := range r.Monthly {
			p("%s\t%s\t%s\t%s\t\n", b.Label, b.Income, b.Expense, b.Net())
		}
	}

	if len(r.Categories) > 0 {
		p("\nCategory\tSpent\t\n")
		for _, c := range r.Categories {
			p("%s\t%s\t\n", CategoryLabel(c.Name), c.Amount)
		}
	}

	if len(r.Top) > 0 {
		p("\nTop\tDate\tCategory\tKind\tAmount\t\n")
		for i, tx := range r.Top {
			p("%d\t%s\t%s\t%s\t%s\t\n", i+1, txDate(tx), CategoryLabel(tx.Category), tx.Kind, tx.Amount)
		}
	}

	switch {
	case r.Forecast != nil:
		p("\nForecast\tIncome\tExpense\t\n")
		for _, pt := range r.Forecast.Predicted {
			p("%s\t%s\t%s\t\n", pt.Label, pt.Income, pt.Expense)
		}
	case r.ForecastError != "":
		p("\nForecast unavailable: %s\n", r.ForecastError)
	}

	return tw.Flush()
}

// WriteSeries renders one bucketed series, used for daily and weekly views.
func WriteSeries(w io.Writer, title string, buckets []aggregate.Bucket) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "%s\tIncome\tExpense\tCount\t\n", strings.ToUpper(title[:1])+title[1:])
	for _, b := range buckets {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t\n", b.Label, b.Income, b.Expense, b.Count)
	}
	return tw.Flush()
}

func txDate(tx core.Transaction) string {
	if !tx.HasTimestamp() {
		return "-"
	}
	return tx.Timestamp.Format("2006-01-02")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
