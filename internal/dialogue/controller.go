// Package dialogue implements the multi-turn conversation engine: creation
// flows that ask for one missing field at a time, credit-card installment
// handling, batch confirmation, debt payments and the confirmation steps of
// destructive operations. All state lives in the session store keyed by
// sender; every turn either advances a flow, completes it, or destroys it.
package dialogue

import (
	"context"
	"strconv"
	"strings"
	"time"

	"rmarinho/granabot/internal/config"
	"rmarinho/granabot/internal/ledger"
	"rmarinho/granabot/internal/llm"
	"rmarinho/granabot/internal/logging"
	"rmarinho/granabot/internal/models"
	"rmarinho/granabot/internal/normalizer"
	"rmarinho/granabot/internal/session"
)

// Controller drives every multi-turn flow. now is injected so billing
// months and due dates stay deterministic in tests.
type Controller struct {
	store    ledger.Store
	sessions session.Store
	model    llm.Client
	cfg      *config.Config
	log      logging.Logger
	now      func() time.Time
}

// New creates a Controller.
func New(store ledger.Store, sessions session.Store, model llm.Client, cfg *config.Config, log logging.Logger) *Controller {
	return &Controller{
		store:    store,
		sessions: sessions,
		model:    model,
		cfg:      cfg,
		log:      log,
		now:      time.Now,
	}
}

// Resume continues the sender's in-progress flow, if any. The second
// return value reports whether a session existed; when false, the caller
// should treat the message as a fresh one.
func (c *Controller) Resume(ctx context.Context, sender, text string) (string, bool) {
	s, ok := c.sessions.Get(sender)
	if !ok {
		return "", false
	}

	// "cancelar" aborts any data-collection state. The confirmation
	// states have their own vocabulary where "não" already declines.
	if isCancel(text) && s.Action != session.ActionConfirmingBatch && s.Action != session.ActionConfirmingDelete {
		c.sessions.Clear(sender)
		return msgCancelled, true
	}

	switch s.Action {
	case session.ActionCreatingDebt:
		return c.advanceFlow(ctx, sender, text, s, debtFlow, c.completeDebt), true
	case session.ActionCreatingGoal:
		return c.advanceFlow(ctx, sender, text, s, goalFlow, c.completeGoal), true
	case session.ActionAwaitingPaymentMethod:
		return c.handlePaymentMethod(ctx, sender, text, s), true
	case session.ActionAwaitingReceiptMethod:
		return c.handleReceiptMethod(ctx, sender, text, s), true
	case session.ActionAwaitingCardSelection:
		return c.handleCardSelection(ctx, sender, text, s), true
	case session.ActionAwaitingInstallments:
		return c.handleInstallments(ctx, sender, text, s), true
	case session.ActionConfirmingBatch:
		return c.handleConfirmingBatch(ctx, sender, text, s), true
	case session.ActionAwaitingBatchMethod:
		return c.handleBatchMethod(ctx, sender, text, s), true
	case session.ActionAwaitingPaymentAmount:
		return c.handlePaymentAmount(ctx, sender, text, s), true
	case session.ActionConfirmingDelete:
		return c.handleConfirmingDelete(ctx, sender, text, s), true
	case session.ActionConfirmingDebtUpdate:
		return c.handleConfirmingDebtUpdate(ctx, sender, text, s), true
	default:
		c.log.WithField("action", string(s.Action)).Warn("Unknown session action, destroying session")
		c.sessions.Clear(sender)
		return msgDidntUnderstand, true
	}
}

// classifyPaymentMethod maps free-text answers onto the canonical method
// values. The empty string means the answer was not recognized.
func classifyPaymentMethod(text string) string {
	n := normalizer.Normalize(text)
	switch {
	case strings.Contains(n, "credito") || strings.Contains(n, "cartao"):
		return models.MethodCredit
	case strings.Contains(n, "debito"):
		return models.MethodDebit
	case strings.Contains(n, "pix"):
		return models.MethodPix
	case strings.Contains(n, "dinheiro"):
		return models.MethodCash
	default:
		return ""
	}
}

// classifyReceiptMethod maps free-text answers for income receipts.
func classifyReceiptMethod(text string) string {
	n := normalizer.Normalize(text)
	switch {
	case strings.Contains(n, "pix"):
		return models.MethodPix
	case strings.Contains(n, "transferencia") || strings.Contains(n, "ted") || strings.Contains(n, "deposito"):
		return "Transferência"
	case strings.Contains(n, "dinheiro"):
		return models.MethodCash
	default:
		return ""
	}
}

// selectionIndex parses a 1-based menu answer into a 0-based index. ok is
// false for anything that is not a number between 1 and max.
func selectionIndex(text string, max int) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || n < 1 || n > max {
		return 0, false
	}
	return n - 1, true
}
