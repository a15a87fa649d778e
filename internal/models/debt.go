package models

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"rmarinho/granabot/internal/normalizer"
)

// Debt status values as stored in the ledger.
const (
	DebtStatusOnTime  = "Em dia"
	DebtStatusOverdue = "Atrasada"
)

// Debts sheet columns, in ledger order. The last four are derived and
// recomputed on every balance-affecting update.
const (
	DebtColName = iota
	DebtColCreditor
	DebtColType
	DebtColOriginalAmount
	DebtColCurrentBalance
	DebtColInstallmentAmount
	DebtColInterestRate
	DebtColDueDay
	DebtColStartDate
	DebtColTotalInstallments
	DebtColStatus
	DebtColOwner
	DebtColNotes
	DebtColPercentPaid
	DebtColNextDueDate
	DebtColDaysOverdue
	DebtColPayoffDate
	DebtColumns
)

// DebtRecord is one row of the debts ledger.
type DebtRecord struct {
	Name              string
	Creditor          string
	Type              string
	OriginalAmount    decimal.Decimal
	CurrentBalance    decimal.Decimal
	InstallmentAmount decimal.Decimal
	InterestRate      decimal.Decimal
	DueDay            int
	StartDate         string
	TotalInstallments int
	Status            string
	Owner             string
	Notes             string

	PercentPaid decimal.Decimal
	NextDueDate string
	DaysOverdue int
	PayoffDate  string
}

// DebtFromRow decodes a ledger row into a DebtRecord. Short rows are left
// padded with zero values so older sheets without the derived columns still
// load.
func DebtFromRow(row []string) DebtRecord {
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
	intCol := func(i int) int {
		n, _ := strconv.Atoi(get(i))
		return n
	}
	d := DebtRecord{
		Name:              get(DebtColName),
		Creditor:          get(DebtColCreditor),
		Type:              get(DebtColType),
		OriginalAmount:    amount(DebtColOriginalAmount),
		CurrentBalance:    amount(DebtColCurrentBalance),
		InstallmentAmount: amount(DebtColInstallmentAmount),
		InterestRate:      amount(DebtColInterestRate),
		DueDay:            intCol(DebtColDueDay),
		StartDate:         get(DebtColStartDate),
		TotalInstallments: intCol(DebtColTotalInstallments),
		Status:            get(DebtColStatus),
		Owner:             get(DebtColOwner),
		Notes:             get(DebtColNotes),
		PercentPaid:       amount(DebtColPercentPaid),
		NextDueDate:       get(DebtColNextDueDate),
		DaysOverdue:       intCol(DebtColDaysOverdue),
		PayoffDate:        get(DebtColPayoffDate),
	}
	return d
}

// ToRow encodes the record as a full ledger row in column order.
func (d DebtRecord) ToRow() []string {
	row := make([]string, DebtColumns)
	row[DebtColName] = d.Name
	row[DebtColCreditor] = d.Creditor
	row[DebtColType] = d.Type
	row[DebtColOriginalAmount] = d.OriginalAmount.StringFixed(2)
	row[DebtColCurrentBalance] = d.CurrentBalance.StringFixed(2)
	row[DebtColInstallmentAmount] = d.InstallmentAmount.StringFixed(2)
	row[DebtColInterestRate] = d.InterestRate.StringFixed(2)
	row[DebtColDueDay] = strconv.Itoa(d.DueDay)
	row[DebtColStartDate] = d.StartDate
	row[DebtColTotalInstallments] = strconv.Itoa(d.TotalInstallments)
	row[DebtColStatus] = d.Status
	row[DebtColOwner] = d.Owner
	row[DebtColNotes] = d.Notes
	row[DebtColPercentPaid] = d.PercentPaid.StringFixed(2)
	row[DebtColNextDueDate] = d.NextDueDate
	row[DebtColDaysOverdue] = strconv.Itoa(d.DaysOverdue)
	row[DebtColPayoffDate] = d.PayoffDate
	return row
}

// Recompute refreshes the derived columns from the principal ones. now is
// injected so tests stay deterministic.
func (d *DebtRecord) Recompute(now time.Time) {
	if d.OriginalAmount.IsPositive() {
		paid := decimal.NewFromInt(1).Sub(d.CurrentBalance.Div(d.OriginalAmount))
		d.PercentPaid = paid.Mul(decimal.NewFromInt(100)).Round(2)
	} else {
		d.PercentPaid = decimal.Zero
	}

	next := nextDueDate(now, d.DueDay)
	d.NextDueDate = next.Format("02/01/2006")

	if d.Status == DebtStatusOverdue {
		last := next.AddDate(0, -1, 0)
		d.DaysOverdue = int(now.Sub(last).Hours() / 24)
		if d.DaysOverdue < 0 {
			d.DaysOverdue = 0
		}
	} else {
		d.DaysOverdue = 0
	}

	if d.InstallmentAmount.IsPositive() && d.CurrentBalance.IsPositive() {
		remaining := int(d.CurrentBalance.Div(d.InstallmentAmount).Ceil().IntPart())
		d.PayoffDate = next.AddDate(0, remaining-1, 0).Format("02/01/2006")
	} else {
		d.PayoffDate = ""
	}
}

// nextDueDate returns the next occurrence of dueDay, clamped to the length
// of the target month (dueDay 31 falls on the 30th in April).
func nextDueDate(now time.Time, dueDay int) time.Time {
	if dueDay < 1 {
		dueDay = 1
	}
	year, month := now.Year(), now.Month()
	if now.Day() > dueDay {
		month++
	}
	firstOfMonth := time.Date(year, month, 1, 0, 0, 0, 0, now.Location())
	lastDay := firstOfMonth.AddDate(0, 1, -1).Day()
	if dueDay > lastDay {
		dueDay = lastDay
	}
	return time.Date(firstOfMonth.Year(), firstOfMonth.Month(), dueDay, 0, 0, 0, 0, now.Location())
}
