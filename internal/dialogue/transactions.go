package dialogue

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"rmarinho/granabot/internal/config"
	"rmarinho/granabot/internal/llm"
	"rmarinho/granabot/internal/models"
	"rmarinho/granabot/internal/normalizer"
	"rmarinho/granabot/internal/session"
)

// txPayload carries a single draft across method/card/installment turns.
type txPayload struct {
	Draft models.TransactionDraft
}

// cardPayload carries one or more credit drafts through card selection and
// installment collection. Batch marks the multi-draft origin so the final
// reply counts rows instead of echoing one purchase; Saved and Total keep
// the rows already persisted before the card flow so the closing count
// covers the whole batch.
type cardPayload struct {
	Drafts []models.TransactionDraft
	Card   config.Card
	Batch  bool
	Saved  int
	Total  int
}

// batchPayload carries the drafts of a registrar_transacoes confirmation.
type batchPayload struct {
	Drafts []models.TransactionDraft
}

// StartExpense registers a single expense. When the payment method is
// missing it opens the method question; a credit answer continues into the
// card flow.
func (c *Controller) StartExpense(ctx context.Context, sender string, d models.TransactionDraft) string {
	d.Kind = models.KindExpense
	if d.PaymentMethod == "" {
		c.sessions.Put(sender, &session.Session{Action: session.ActionAwaitingPaymentMethod, Data: txPayload{Draft: d}})
		return msgAskPaymentMethod
	}
	if d.PaymentMethod == models.MethodCredit {
		return c.enterCardFlow(ctx, sender, []models.TransactionDraft{d}, false, 0, 1)
	}
	return c.saveExpense(ctx, d)
}

// StartIncome registers a single income entry, asking for the receipt
// method when missing.
func (c *Controller) StartIncome(ctx context.Context, sender string, d models.TransactionDraft) string {
	d.Kind = models.KindIncome
	if d.PaymentMethod == "" {
		c.sessions.Put(sender, &session.Session{Action: session.ActionAwaitingReceiptMethod, Data: txPayload{Draft: d}})
		return msgAskReceiptMethod
	}
	return c.saveIncome(ctx, d)
}

// StartBatch opens the confirmation step for a multi-transaction message.
func (c *Controller) StartBatch(sender string, drafts []models.TransactionDraft) string {
	if len(drafts) == 0 {
		return msgDidntUnderstand
	}
	c.sessions.Put(sender, &session.Session{Action: session.ActionConfirmingBatch, Data: batchPayload{Drafts: drafts}})
	return msgConfirmBatch(drafts)
}

func (c *Controller) handlePaymentMethod(ctx context.Context, sender, text string, s *session.Session) string {
	p, ok := s.Data.(txPayload)
	if !ok {
		c.sessions.Clear(sender)
		return msgDidntUnderstand
	}
	method := classifyPaymentMethod(text)
	if method == "" {
		return msgAskPaymentMethod
	}
	p.Draft.PaymentMethod = method
	if method == models.MethodCredit {
		return c.enterCardFlow(ctx, sender, []models.TransactionDraft{p.Draft}, false, 0, 1)
	}
	defer c.sessions.Clear(sender)
	return c.saveExpense(ctx, p.Draft)
}

func (c *Controller) handleReceiptMethod(ctx context.Context, sender, text string, s *session.Session) string {
	p, ok := s.Data.(txPayload)
	if !ok {
		c.sessions.Clear(sender)
		return msgDidntUnderstand
	}
	method := classifyReceiptMethod(text)
	if method == "" {
		return msgAskReceiptMethod
	}
	p.Draft.PaymentMethod = method
	defer c.sessions.Clear(sender)
	return c.saveIncome(ctx, p.Draft)
}

// enterCardFlow routes credit drafts through card selection. With no card
// configured the purchase lands on the cash ledger marked Crédito; with a
// single card the selection step is skipped. saved rows were already
// persisted by the caller and total is the full batch size, so closing
// replies count everything the user sent.
func (c *Controller) enterCardFlow(ctx context.Context, sender string, drafts []models.TransactionDraft, batch bool, saved, total int) string {
	switch len(c.cfg.Cards) {
	case 0:
		c.sessions.Clear(sender)
		if len(drafts) == 1 && !batch {
			d := drafts[0]
			d.PaymentMethod = models.MethodCredit
			return c.saveExpense(ctx, d)
		}
		for _, d := range drafts {
			d.PaymentMethod = models.MethodCredit
			if err := c.appendExpense(ctx, d); err != nil {
				c.log.WithError(err).WithField("description", d.Description).Error("Failed to save credit expense")
				continue
			}
			saved++
		}
		return msgBatchSaved(saved, total)
	case 1:
		c.sessions.Put(sender, &session.Session{
			Action: session.ActionAwaitingInstallments,
			Data:   cardPayload{Drafts: drafts, Card: c.cfg.Cards[0], Batch: batch, Saved: saved, Total: total},
		})
		return msgAskInstallments
	default:
		c.sessions.Put(sender, &session.Session{
			Action: session.ActionAwaitingCardSelection,
			Data:   cardPayload{Drafts: drafts, Batch: batch, Saved: saved, Total: total},
		})
		return msgChooseCard(c.cfg.Cards)
	}
}

func (c *Controller) handleCardSelection(ctx context.Context, sender, text string, s *session.Session) string {
	p, ok := s.Data.(cardPayload)
	if !ok {
		c.sessions.Clear(sender)
		return msgDidntUnderstand
	}
	if idx, ok := selectionIndex(text, len(c.cfg.Cards)); ok {
		p.Card = c.cfg.Cards[idx]
	} else if card, ok := c.cfg.FindCard(text); ok {
		p.Card = card
	} else {
		return msgChooseCard(c.cfg.Cards)
	}
	s.Action = session.ActionAwaitingInstallments
	s.Data = p
	c.sessions.Put(sender, s)
	return msgAskInstallments
}

func (c *Controller) handleInstallments(ctx context.Context, sender, text string, s *session.Session) string {
	p, ok := s.Data.(cardPayload)
	if !ok {
		c.sessions.Clear(sender)
		return msgDidntUnderstand
	}

	counts, ok := c.installmentCounts(ctx, text, p.Drafts)
	if !ok {
		return msgAskInstallments
	}

	defer c.sessions.Clear(sender)
	saved := 0
	var lastReply string
	for i, d := range p.Drafts {
		reply, err := c.saveCardPurchase(ctx, d, p.Card, counts[i])
		if err != nil {
			c.log.WithError(err).WithField("description", d.Description).Error("Failed to save card purchase")
			continue
		}
		saved++
		lastReply = reply
	}

	if p.Batch || len(p.Drafts) > 1 {
		return msgBatchSaved(p.Saved+saved, p.Total)
	}
	if saved == 0 {
		return msgPersistError
	}
	return lastReply
}

// installmentCounts resolves the installment count of each draft. With a
// single draft any answer containing a number works; with several drafts a
// bare number is shared and anything else is delegated to the model, which
// maps draft positions to counts. Model failure defaults every draft to
// one installment rather than blocking the flow.
func (c *Controller) installmentCounts(ctx context.Context, text string, drafts []models.TransactionDraft) ([]int, bool) {
	counts := make([]int, len(drafts))
	for i := range counts {
		counts[i] = 1
	}

	if len(drafts) == 1 {
		n, ok := parseCount(text)
		if !ok {
			return nil, false
		}
		counts[0] = n
		return counts, true
	}
	if n, ok := bareCount(text); ok {
		for i := range counts {
			counts[i] = n
		}
		return counts, true
	}

	descriptions := make([]string, len(drafts))
	for i, d := range drafts {
		descriptions[i] = d.Description
	}
	raw, err := c.model.ClassifyStructured(ctx, llm.BuildInstallmentMappingPrompt(descriptions, text))
	if err != nil {
		c.log.WithError(err).Warn("Installment mapping failed, defaulting to single installments")
		return counts, true
	}
	for key, v := range raw {
		idx, err := strconv.Atoi(key)
		if err != nil || idx < 1 || idx > len(drafts) {
			continue
		}
		if f, ok := v.(float64); ok && int(f) >= 1 {
			counts[idx-1] = int(f)
		}
	}
	return counts, true
}

// bareCount accepts only answers that are a single number like "3" or "3x".
func bareCount(text string) (int, bool) {
	fields := strings.Fields(normalizer.Normalize(text))
	if len(fields) != 1 {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSuffix(fields[0], "x"))
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

func (c *Controller) handleConfirmingBatch(ctx context.Context, sender, text string, s *session.Session) string {
	p, ok := s.Data.(batchPayload)
	if !ok {
		c.sessions.Clear(sender)
		return msgDidntUnderstand
	}
	if !saidYes(text) {
		c.sessions.Clear(sender)
		return msgCancelled
	}

	// Credit drafts wait for a card; everything else persists now.
	var credit, direct []models.TransactionDraft
	for _, d := range p.Drafts {
		if d.Kind == models.KindExpense && d.PaymentMethod == models.MethodCredit {
			credit = append(credit, d)
		} else {
			direct = append(direct, d)
		}
	}

	// Drafts without any method get one shared follow-up question.
	var missing int
	for _, d := range direct {
		if d.PaymentMethod == "" {
			missing++
		}
	}
	if missing > 0 {
		s.Action = session.ActionAwaitingBatchMethod
		s.Data = batchPayload{Drafts: p.Drafts}
		c.sessions.Put(sender, s)
		return msgAskPaymentMethod
	}

	saved := c.saveDirect(ctx, direct)
	if len(credit) > 0 {
		// The card flow replaces the session; direct rows are already in.
		return c.enterCardFlow(ctx, sender, credit, true, saved, len(p.Drafts))
	}
	c.sessions.Clear(sender)
	return msgBatchSaved(saved, len(p.Drafts))
}

func (c *Controller) handleBatchMethod(ctx context.Context, sender, text string, s *session.Session) string {
	p, ok := s.Data.(batchPayload)
	if !ok {
		c.sessions.Clear(sender)
		return msgDidntUnderstand
	}
	method := classifyPaymentMethod(text)
	if method == "" {
		return msgAskPaymentMethod
	}
	for i := range p.Drafts {
		if p.Drafts[i].PaymentMethod == "" {
			p.Drafts[i].PaymentMethod = method
		}
	}

	var credit, direct []models.TransactionDraft
	for _, d := range p.Drafts {
		if d.Kind == models.KindExpense && d.PaymentMethod == models.MethodCredit {
			credit = append(credit, d)
		} else {
			direct = append(direct, d)
		}
	}
	saved := c.saveDirect(ctx, direct)
	if len(credit) > 0 {
		return c.enterCardFlow(ctx, sender, credit, true, saved, len(p.Drafts))
	}
	c.sessions.Clear(sender)
	return msgBatchSaved(saved, len(p.Drafts))
}

// saveDirect persists non-credit drafts one by one, counting successes so
// a partial batch is reported honestly.
func (c *Controller) saveDirect(ctx context.Context, drafts []models.TransactionDraft) int {
	saved := 0
	for _, d := range drafts {
		var err error
		if d.Kind == models.KindIncome {
			err = c.appendIncome(ctx, d)
		} else {
			err = c.appendExpense(ctx, d)
		}
		if err != nil {
			c.log.WithError(err).WithField("description", d.Description).Error("Failed to save transaction")
			continue
		}
		saved++
	}
	return saved
}

func (c *Controller) saveExpense(ctx context.Context, d models.TransactionDraft) string {
	if err := c.appendExpense(ctx, d); err != nil {
		c.log.WithError(err).Error("Failed to save expense")
		return msgPersistError
	}
	return msgExpenseSaved(d)
}

func (c *Controller) saveIncome(ctx context.Context, d models.TransactionDraft) string {
	if err := c.appendIncome(ctx, d); err != nil {
		c.log.WithError(err).Error("Failed to save income")
		return msgPersistError
	}
	return msgIncomeSaved(d)
}

func (c *Controller) appendExpense(ctx context.Context, d models.TransactionDraft) error {
	return c.store.AppendRow(ctx, c.cfg.Sheets.Expenses, models.ExpenseRow(d, c.todayOr(d.Date)))
}

func (c *Controller) appendIncome(ctx context.Context, d models.TransactionDraft) error {
	return c.store.AppendRow(ctx, c.cfg.Sheets.Income, models.IncomeRow(d, c.todayOr(d.Date)))
}

// saveCardPurchase splits a draft into installment rows and appends each
// one to the card's own sheet.
func (c *Controller) saveCardPurchase(ctx context.Context, d models.TransactionDraft, card config.Card, n int) (string, error) {
	if d.Amount == nil {
		return "", fmt.Errorf("card purchase %q has no amount", d.Description)
	}
	purchase := c.todayOr(d.Date)
	installments := splitInstallments(*d.Amount, n, purchase, card.ClosingDay)
	for _, inst := range installments {
		row := make([]string, models.CardColumns)
		row[models.CardColDate] = purchase.Format("02/01/2006")
		row[models.CardColDescription] = d.Description
		row[models.CardColAmount] = inst.Amount.StringFixed(2)
		row[models.CardColCategory] = d.Category
		row[models.CardColInstallment] = inst.Tag()
		row[models.CardColBillingMonth] = inst.BillingLabel()
		row[models.CardColCard] = card.Name
		if err := c.store.AppendRow(ctx, card.Sheet, row); err != nil {
			return "", err
		}
	}
	return msgCardSaved(d, card, installments), nil
}
