package dialogue

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"rmarinho/granabot/internal/debtmatcher"
	"rmarinho/granabot/internal/ledger"
	"rmarinho/granabot/internal/models"
	"rmarinho/granabot/internal/normalizer"
	"rmarinho/granabot/internal/session"
)

// paymentPayload remembers which debt row a pending payment targets.
type paymentPayload struct {
	RowIndex int
	Row      []string
}

// deletePayload remembers the rows a pending deletion will remove.
type deletePayload struct {
	Sheet   string
	Indices []int
	Labels  []string
}

// updatePayload carries the tied candidates of an ambiguous debt update.
type updatePayload struct {
	Candidates []debtmatcher.Candidate
	NewValue   decimal.Decimal
}

// StartDebtPayment applies a payment to the debt matching name. With the
// amount already known the payment lands immediately; otherwise the amount
// question opens. Multiple matches list the options without opening a
// session, since the sender retries with a fuller name.
func (c *Controller) StartDebtPayment(ctx context.Context, sender, name string, amount *decimal.Decimal) string {
	table, err := c.store.ReadTable(ctx, c.cfg.Sheets.Debts)
	if err != nil {
		c.log.WithError(err).Error("Failed to read debts ledger")
		return msgPersistError
	}
	rows := dataRows(table)

	matches := findDebtRows(name, rows)
	switch len(matches) {
	case 0:
		return msgDebtNotFound
	case 1:
		if amount == nil {
			c.sessions.Put(sender, &session.Session{
				Action: session.ActionAwaitingPaymentAmount,
				Data:   paymentPayload{RowIndex: matches[0], Row: rows[matches[0]]},
			})
			return msgAskPaymentAmount
		}
		return c.applyDebtPayment(ctx, matches[0], rows[matches[0]], *amount)
	default:
		picked := make([][]string, len(matches))
		for i, idx := range matches {
			picked[i] = rows[idx]
		}
		return msgDebtList(picked)
	}
}

func (c *Controller) handlePaymentAmount(ctx context.Context, sender, text string, s *session.Session) string {
	p, ok := s.Data.(paymentPayload)
	if !ok {
		c.sessions.Clear(sender)
		return msgDidntUnderstand
	}
	amount, ok := normalizer.ParseAmount(text)
	if !ok || !amount.IsPositive() {
		return msgInvalidAmount
	}
	defer c.sessions.Clear(sender)
	return c.applyDebtPayment(ctx, p.RowIndex, p.Row, amount)
}

// applyDebtPayment decrements the balance, clamped at zero, refreshes the
// derived columns and rewrites the whole row.
func (c *Controller) applyDebtPayment(ctx context.Context, rowIdx int, row []string, amount decimal.Decimal) string {
	d := models.DebtFromRow(row)
	d.CurrentBalance = d.CurrentBalance.Sub(amount)
	if d.CurrentBalance.IsNegative() {
		d.CurrentBalance = decimal.Zero
	}
	d.Recompute(c.now())

	ref := ledger.RowRef(c.cfg.Sheets.Debts, rowIdx, 0, models.DebtColumns-1)
	if err := c.store.UpdateRange(ctx, ref, d.ToRow()); err != nil {
		c.log.WithError(err).Error("Failed to update debt row")
		return msgPersistError
	}
	return msgPaymentApplied(d, amount)
}

// StartDeletion collects expense rows matching the description in the
// period and opens the delete confirmation.
func (c *Controller) StartDeletion(ctx context.Context, sender, descricao string, mes *int, ano int) string {
	table, err := c.store.ReadTable(ctx, c.cfg.Sheets.Expenses)
	if err != nil {
		c.log.WithError(err).Error("Failed to read expenses ledger")
		return msgPersistError
	}
	rows := dataRows(table)

	var indices []int
	var labels []string
	needle := normalizer.Normalize(descricao)
	for i, row := range rows {
		if needle != "" && !strings.Contains(normalizer.Normalize(cellAt(row, models.ExpenseColDescription)), needle) {
			continue
		}
		date, ok := normalizer.ParseDateOnly(cellAt(row, models.ExpenseColDate))
		if !ok || !dateInPeriod(date.Year(), int(date.Month())-1, mes, ano) {
			continue
		}
		indices = append(indices, i)
		labels = append(labels, fmt.Sprintf("%s — %s (%s)",
			cellAt(row, models.ExpenseColDescription),
			cellAt(row, models.ExpenseColAmount),
			cellAt(row, models.ExpenseColDate)))
	}
	if len(indices) == 0 {
		return msgNothingToDelete
	}

	c.sessions.Put(sender, &session.Session{
		Action: session.ActionConfirmingDelete,
		Data:   deletePayload{Sheet: c.cfg.Sheets.Expenses, Indices: indices, Labels: labels},
	})
	return msgDeleteCandidates(labels)
}

func (c *Controller) handleConfirmingDelete(ctx context.Context, sender, text string, s *session.Session) string {
	p, ok := s.Data.(deletePayload)
	if !ok {
		c.sessions.Clear(sender)
		return msgDidntUnderstand
	}
	defer c.sessions.Clear(sender)
	if !saidYes(text) {
		return msgCancelled
	}

	// Descending order keeps lower indices valid while rows disappear.
	indices := append([]int(nil), p.Indices...)
	sort.Sort(sort.Reverse(sort.IntSlice(indices)))
	if err := c.store.DeleteRows(ctx, p.Sheet, indices); err != nil {
		c.log.WithError(err).Error("Failed to delete ledger rows")
		return msgPersistError
	}
	return msgDeleted(len(indices))
}

// StartDebtUpdate resolves a free-text balance update through the matcher.
// A single winner is applied at once; tied candidates open a numbered
// choice whose session dies on any invalid selection.
func (c *Controller) StartDebtUpdate(ctx context.Context, sender, text string, m *debtmatcher.Matcher) (string, bool) {
	if !debtmatcher.Recognized(text) {
		return "", false
	}
	table, err := c.store.ReadTable(ctx, c.cfg.Sheets.Debts)
	if err != nil {
		c.log.WithError(err).Error("Failed to read debts ledger")
		return msgPersistError, true
	}
	rows := dataRows(table)

	match := m.Match(text, rows)
	switch match.Outcome {
	case debtmatcher.OutcomeNotRecognized:
		return "", false
	case debtmatcher.OutcomeNotFound:
		return msgDebtNotFound, true
	case debtmatcher.OutcomeMatched:
		return c.applyDebtUpdate(ctx, match.Candidates[0], match.NewValue), true
	default:
		c.sessions.Put(sender, &session.Session{
			Action: session.ActionConfirmingDebtUpdate,
			Data:   updatePayload{Candidates: match.Candidates, NewValue: match.NewValue},
		})
		return msgChooseDebtUpdate(match.Candidates, match.NewValue), true
	}
}

func (c *Controller) handleConfirmingDebtUpdate(ctx context.Context, sender, text string, s *session.Session) string {
	p, ok := s.Data.(updatePayload)
	if !ok {
		c.sessions.Clear(sender)
		return msgDidntUnderstand
	}
	defer c.sessions.Clear(sender)
	idx, ok := selectionIndex(text, len(p.Candidates))
	if !ok {
		return msgInvalidSelection
	}
	return c.applyDebtUpdate(ctx, p.Candidates[idx], p.NewValue)
}

// applyDebtUpdate rewrites the balance cell and the recomputed paid
// percentage of the chosen row.
func (c *Controller) applyDebtUpdate(ctx context.Context, cand debtmatcher.Candidate, newValue decimal.Decimal) string {
	d := models.DebtFromRow(cand.Row)
	oldValue := d.CurrentBalance
	d.CurrentBalance = newValue
	d.Recompute(c.now())

	balanceRef := ledger.CellRef(c.cfg.Sheets.Debts, cand.RowIndex, models.DebtColCurrentBalance)
	if err := c.store.UpdateRange(ctx, balanceRef, []string{d.CurrentBalance.StringFixed(2)}); err != nil {
		c.log.WithError(err).Error("Failed to update debt balance")
		return msgPersistError
	}
	percentRef := ledger.CellRef(c.cfg.Sheets.Debts, cand.RowIndex, models.DebtColPercentPaid)
	if err := c.store.UpdateRange(ctx, percentRef, []string{d.PercentPaid.StringFixed(2)}); err != nil {
		c.log.WithError(err).Error("Failed to update debt paid percentage")
		return msgPersistError
	}
	return msgDebtUpdated(d.Name, oldValue, newValue)
}

// findDebtRows returns the data-row indices whose name or creditor contains
// every token of the reference.
func findDebtRows(name string, rows [][]string) []int {
	tokens := strings.Fields(normalizer.Normalize(name))
	if len(tokens) == 0 {
		return nil
	}
	var out []int
	for i, row := range rows {
		haystack := normalizer.Normalize(cellAt(row, models.DebtColName) + " " + cellAt(row, models.DebtColCreditor))
		all := true
		for _, t := range tokens {
			if !strings.Contains(haystack, t) {
				all = false
				break
			}
		}
		if all {
			out = append(out, i)
		}
	}
	return out
}

// dataRows strips the header row of a raw table read.
func dataRows(table [][]string) [][]string {
	if len(table) <= 1 {
		return nil
	}
	return table[1:]
}

// dateInPeriod reports whether a (year, zero-based month) falls inside the
// query period; a nil month means the whole year.
func dateInPeriod(year, monthIdx int, mes *int, ano int) bool {
	if ano != 0 && year != ano {
		return false
	}
	if mes != nil && monthIdx != *mes {
		return false
	}
	return true
}
