package models

import (
	"time"

	"github.com/shopspring/decimal"

	"rmarinho/granabot/internal/normalizer"
)

// Goals sheet columns, in ledger order.
const (
	GoalColName = iota
	GoalColTargetAmount
	GoalColCurrentAmort
	GoalColProgressPercent
	GoalColMonthlyRequired
	GoalColEndDate
	GoalColStatus
	GoalColPriority
	GoalColumns
)

// GoalRecord is one row of the goals ledger. ProgressPercent and
// MonthlyRequired are derived.
type GoalRecord struct {
	Name         string
	TargetAmount decimal.Decimal
	CurrentAmort decimal.Decimal
	EndDate      string
	Status       string
	Priority     string

	ProgressPercent decimal.Decimal
	MonthlyRequired decimal.Decimal
}

// GoalFromRow decodes a ledger row into a GoalRecord.
func GoalFromRow(row []string) GoalRecord {
	get := func(i int) string {
		if i < len(row) {
			return row[i]
		}
		return ""
	}
	amount := func(i int) decimal.Decimal {
		v, ok := normalizer.ParseAmount(get(i))
		if !ok {
			return decimal.Zero
		}
		return v
	}
	return GoalRecord{
		Name:            get(GoalColName),
		TargetAmount:    amount(GoalColTargetAmount),
		CurrentAmort:    amount(GoalColCurrentAmort),
		ProgressPercent: amount(GoalColProgressPercent),
		MonthlyRequired: amount(GoalColMonthlyRequired),
		EndDate:         get(GoalColEndDate),
		Status:          get(GoalColStatus),
		Priority:        get(GoalColPriority),
	}
}

// ToRow encodes the record as a full ledger row in column order.
func (g GoalRecord) ToRow() []string {
	row := make([]string, GoalColumns)
	row[GoalColName] = g.Name
	row[GoalColTargetAmount] = g.TargetAmount.StringFixed(2)
	row[GoalColCurrentAmort] = g.CurrentAmort.StringFixed(2)
	row[GoalColProgressPercent] = g.ProgressPercent.StringFixed(2)
	row[GoalColMonthlyRequired] = g.MonthlyRequired.StringFixed(2)
	row[GoalColEndDate] = g.EndDate
	row[GoalColStatus] = g.Status
	row[GoalColPriority] = g.Priority
	return row
}

// Recompute refreshes ProgressPercent and MonthlyRequired. The monthly
// requirement spreads the remaining amount over the months left until the
// end date; a past or unparseable end date counts as one month.
func (g *GoalRecord) Recompute(now time.Time) {
	if g.TargetAmount.IsPositive() {
		g.ProgressPercent = g.CurrentAmort.Div(g.TargetAmount).Mul(decimal.NewFromInt(100)).Round(2)
	} else {
		g.ProgressPercent = decimal.Zero
	}

	remaining := g.TargetAmount.Sub(g.CurrentAmort)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}
	months := 1
	if end, ok := normalizer.ParseDateOnly(g.EndDate); ok {
		months = (end.Year()-now.Year())*12 + int(end.Month()) - int(now.Month())
		if months < 1 {
			months = 1
		}
	}
	g.MonthlyRequired = remaining.Div(decimal.NewFromInt(int64(months))).Round(2)
}
