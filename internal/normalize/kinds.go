package normalize

import (
	"strings"

	"finboard/internal/core"
)

// kindTable maps lower-cased raw type values to canonical kinds. Both the
// Income/Expense and the Credit/Debit vocabularies appear in real sheets.
var kindTable = map[string]core.Kind{
	"income":     core.KindIncome,
	"credit":     core.KindIncome,
	"cr":         core.KindIncome,
	"deposit":    core.KindIncome,
	"salary":     core.KindIncome,
	"refund":     core.KindIncome,
	"in":         core.KindIncome,
	"inflow":     core.KindIncome,
	"entrata":    core.KindIncome,
	"expense":    core.KindExpense,
	"debit":      core.KindExpense,
	"dr":         core.KindExpense,
	"withdrawal": core.KindExpense,
	"payment":    core.KindExpense,
	"purchase":   core.KindExpense,
	"out":        core.KindExpense,
	"outflow":    core.KindExpense,
	"spesa":      core.KindExpense,
}

// KindTable returns a copy of the built-in type mapping.
func KindTable() map[string]core.Kind {
	out := make(map[string]core.Kind, len(kindTable))
	for k, v := range kindTable {
		out[k] = v
	}
	return out
}

func lookupKind(table map[string]core.Kind, raw string) (core.Kind, bool) {
	key := strings.ToLower(strings.Join(strings.Fields(raw), " "))
	if key == "" {
		return core.KindUnknown, false
	}
	k, ok := table[key]
	if !ok {
		return core.KindUnknown, false
	}
	return k, true
}
