package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebtRowRoundTrip(t *testing.T) {
	d := DebtRecord{
		Name:              "Financiamento Carro",
		Creditor:          "Banco Azul",
		Type:              "Financiamento",
		OriginalAmount:    decimal.NewFromInt(30000),
		CurrentBalance:    decimal.NewFromInt(12000),
		InstallmentAmount: decimal.NewFromInt(850),
		InterestRate:      decimal.NewFromFloat(1.5),
		DueDay:            10,
		StartDate:         "05/01/2024",
		TotalInstallments: 48,
		Status:            DebtStatusOnTime,
		Owner:             "Rafael",
	}
	d.Recompute(time.Date(2026, time.March, 3, 0, 0, 0, 0, time.Local))

	row := d.ToRow()
	require.Len(t, row, DebtColumns)

	decoded := DebtFromRow(row)
	assert.Equal(t, d.Name, decoded.Name)
	assert.True(t, decoded.CurrentBalance.Equal(d.CurrentBalance))
	assert.Equal(t, d.DueDay, decoded.DueDay)
	assert.Equal(t, d.Status, decoded.Status)
	assert.True(t, decoded.PercentPaid.Equal(d.PercentPaid))
}

func TestDebtRecompute(t *testing.T) {
	now := time.Date(2026, time.March, 3, 0, 0, 0, 0, time.Local)

	d := DebtRecord{
		OriginalAmount:    decimal.NewFromInt(1000),
		CurrentBalance:    decimal.NewFromInt(250),
		InstallmentAmount: decimal.NewFromInt(100),
		DueDay:            10,
		Status:            DebtStatusOnTime,
	}
	d.Recompute(now)

	assert.True(t, d.PercentPaid.Equal(decimal.NewFromInt(75)), "got %s", d.PercentPaid)
	assert.Equal(t, "10/03/2026", d.NextDueDate)
	assert.Equal(t, 0, d.DaysOverdue)
	// 250/100 rounds up to 3 installments: March, April, May.
	assert.Equal(t, "10/05/2026", d.PayoffDate)
}

func TestDebtRecomputeDueDayPassed(t *testing.T) {
	now := time.Date(2026, time.March, 15, 0, 0, 0, 0, time.Local)
	d := DebtRecord{
		OriginalAmount: decimal.NewFromInt(100),
		CurrentBalance: decimal.NewFromInt(100),
		DueDay:         10,
		Status:         DebtStatusOverdue,
	}
	d.Recompute(now)

	assert.Equal(t, "10/04/2026", d.NextDueDate)
	assert.Equal(t, 5, d.DaysOverdue)
	assert.True(t, d.PercentPaid.IsZero())
}

func TestNextDueDateClampsToMonthEnd(t *testing.T) {
	now := time.Date(2026, time.April, 1, 0, 0, 0, 0, time.Local)
	d := DebtRecord{DueDay: 31, OriginalAmount: decimal.NewFromInt(1), CurrentBalance: decimal.Zero}
	d.Recompute(now)
	assert.Equal(t, "30/04/2026", d.NextDueDate)
}

func TestGoalRecompute(t *testing.T) {
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.Local)
	g := GoalRecord{
		Name:         "Reserva",
		TargetAmount: decimal.NewFromInt(12000),
		CurrentAmort: decimal.NewFromInt(3000),
		EndDate:      "01/07/2026",
	}
	g.Recompute(now)

	assert.True(t, g.ProgressPercent.Equal(decimal.NewFromInt(25)), "got %s", g.ProgressPercent)
	// 9000 remaining over 6 months.
	assert.True(t, g.MonthlyRequired.Equal(decimal.NewFromInt(1500)), "got %s", g.MonthlyRequired)
}

func TestExpenseRow(t *testing.T) {
	amount := decimal.NewFromFloat(45.9)
	d := TransactionDraft{
		Description:   "Mercado",
		Amount:        &amount,
		Category:      "Alimentação",
		PaymentMethod: MethodPix,
		Kind:          KindExpense,
	}
	row := ExpenseRow(d, time.Date(2026, time.March, 5, 0, 0, 0, 0, time.Local))

	assert.Equal(t, "05/03/2026", row[ExpenseColDate])
	assert.Equal(t, "45.90", row[ExpenseColAmount])
	assert.Equal(t, "Não", row[ExpenseColRecurring])
}
