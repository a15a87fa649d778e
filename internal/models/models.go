// Package models defines the ledger data model shared by the dialogue,
// matcher and analytics layers: transaction drafts built up during a
// conversation, debt and goal records with their derived columns, and the
// row codecs that map them onto spreadsheet rows.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Kind distinguishes the two directions of a transaction draft.
type Kind string

const (
	KindExpense Kind = "gasto"
	KindIncome  Kind = "receita"
)

// Payment and receipt method values recognized by the dialogue flows.
const (
	MethodDebit  = "Débito"
	MethodCash   = "Dinheiro"
	MethodPix    = "Pix"
	MethodCredit = "Crédito"
)

// TransactionDraft is a transaction being assembled either in one shot by
// the classifier or incrementally across a flow. Pointer fields mean
// "not collected yet"; the flows ask for the first missing field.
type TransactionDraft struct {
	Description   string
	Amount        *decimal.Decimal
	Category      string
	Subcategory   string
	PaymentMethod string
	Recurring     bool
	Notes         string
	Date          *time.Time
	Kind          Kind
}

// Cash expense ledger columns.
const (
	ExpenseColDate = iota
	ExpenseColDescription
	ExpenseColAmount
	ExpenseColCategory
	ExpenseColSubcategory
	ExpenseColMethod
	ExpenseColRecurring
	ExpenseColNotes
	ExpenseColumns
)

// Income ledger columns.
const (
	IncomeColDate = iota
	IncomeColDescription
	IncomeColAmount
	IncomeColCategory
	IncomeColMethod
	IncomeColRecurring
	IncomeColNotes
	IncomeColumns
)

// Card ledger columns. Every configured credit card has its own sheet with
// this layout; BillingMonth carries the "Março de 2026" statement label.
const (
	CardColDate = iota
	CardColDescription
	CardColAmount
	CardColCategory
	CardColInstallment
	CardColBillingMonth
	CardColCard
	CardColumns
)

// ExpenseRow renders a draft as a cash-ledger row.
func ExpenseRow(d TransactionDraft, date time.Time) []string {
	row := make([]string, ExpenseColumns)
	row[ExpenseColDate] = date.Format("02/01/2006")
	row[ExpenseColDescription] = d.Description
	row[ExpenseColAmount] = amountString(d.Amount)
	row[ExpenseColCategory] = d.Category
	row[ExpenseColSubcategory] = d.Subcategory
	row[ExpenseColMethod] = d.PaymentMethod
	row[ExpenseColRecurring] = boolString(d.Recurring)
	row[ExpenseColNotes] = d.Notes
	return row
}

// IncomeRow renders a draft as an income-ledger row.
func IncomeRow(d TransactionDraft, date time.Time) []string {
	row := make([]string, IncomeColumns)
	row[IncomeColDate] = date.Format("02/01/2006")
	row[IncomeColDescription] = d.Description
	row[IncomeColAmount] = amountString(d.Amount)
	row[IncomeColCategory] = d.Category
	row[IncomeColMethod] = d.PaymentMethod
	row[IncomeColRecurring] = boolString(d.Recurring)
	row[IncomeColNotes] = d.Notes
	return row
}

func amountString(v *decimal.Decimal) string {
	if v == nil {
		return ""
	}
	return v.StringFixed(2)
}

func boolString(b bool) string {
	if b {
		return "Sim"
	}
	return "Não"
}
