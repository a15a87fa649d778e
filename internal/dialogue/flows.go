package dialogue

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"rmarinho/granabot/internal/models"
	"rmarinho/granabot/internal/normalizer"
	"rmarinho/granabot/internal/session"
)

// fieldStep is one question of a creation flow. Validate returns the
// canonical value to store; a false return re-asks the same question
// without advancing.
type fieldStep struct {
	Field    string
	Question string
	Validate func(input string) (string, bool)
}

// flowData is the incremental payload of a creation flow: canonical values
// keyed by field name. The next question is always the first field in
// declared order that is still missing, which makes re-entry idempotent.
type flowData map[string]string

func validateNonEmpty(input string) (string, bool) {
	v := strings.TrimSpace(input)
	return v, v != ""
}

func validateAmount(input string) (string, bool) {
	v, ok := normalizer.ParseAmount(input)
	if !ok || !v.IsPositive() {
		return "", false
	}
	return v.StringFixed(2), true
}

func validateAmountOrZero(input string) (string, bool) {
	v, ok := normalizer.ParseAmount(input)
	if !ok || v.IsNegative() {
		return "", false
	}
	return v.StringFixed(2), true
}

func validateDay(input string) (string, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || n < 1 || n > 31 {
		return "", false
	}
	return strconv.Itoa(n), true
}

func validateCount(input string) (string, bool) {
	n, ok := parseCount(input)
	if !ok {
		return "", false
	}
	return strconv.Itoa(n), true
}

func validateDate(input string) (string, bool) {
	t, ok := normalizer.ParseDateOnly(input)
	if !ok {
		return "", false
	}
	return t.Format("02/01/2006"), true
}

// parseCount extracts a positive integer from answers like "3", "3x" or
// "em 3 vezes".
func parseCount(input string) (int, bool) {
	for _, w := range strings.Fields(normalizer.Normalize(input)) {
		w = strings.TrimSuffix(w, "x")
		if n, err := strconv.Atoi(w); err == nil && n >= 1 {
			return n, true
		}
	}
	return 0, false
}

var debtFlow = []fieldStep{
	{"nome", "Vamos lá! Qual o nome da dívida? (ex: Financiamento do carro)", validateNonEmpty},
	{"credor", "Quem é o credor? (banco, loja, pessoa...)", validateNonEmpty},
	{"tipo", "Qual o tipo? (financiamento, empréstimo, cartão, pessoal...)", validateNonEmpty},
	{"valor_total", "Qual o valor total da dívida?", validateAmount},
	{"parcela", "Qual o valor da parcela?", validateAmount},
	{"juros", "Qual a taxa de juros ao mês? (em %, pode mandar 0)", validateAmountOrZero},
	{"dia_vencimento", "Qual o dia de vencimento? (1 a 31)", validateDay},
	{"data_inicio", "Quando começou? (DD/MM/AAAA)", validateDate},
	{"total_parcelas", "Quantas parcelas ao todo?", validateCount},
}

var goalFlow = []fieldStep{
	{"nome", "Boa! Qual o nome da meta? (ex: Reserva de emergência)", validateNonEmpty},
	{"valor_alvo", "Qual o valor que você quer alcançar?", validateAmount},
	{"valor_atual", "Quanto você já tem guardado? (pode ser 0)", validateAmountOrZero},
	{"data_fim", "Até quando quer alcançar? (DD/MM/AAAA)", validateDate},
	{"prioridade", "Qual a prioridade? (alta, média ou baixa)", validateNonEmpty},
}

// StartDebtFlow opens the debt-creation flow for a sender.
func (c *Controller) StartDebtFlow(sender string) string {
	c.sessions.Put(sender, &session.Session{Action: session.ActionCreatingDebt, Data: flowData{}})
	return debtFlow[0].Question
}

// StartGoalFlow opens the goal-creation flow for a sender.
func (c *Controller) StartGoalFlow(sender string) string {
	c.sessions.Put(sender, &session.Session{Action: session.ActionCreatingGoal, Data: flowData{}})
	return goalFlow[0].Question
}

// advanceFlow validates the answer against the first missing field and
// returns the next question, or calls complete when nothing is missing.
func (c *Controller) advanceFlow(ctx context.Context, sender, text string, s *session.Session,
	flow []fieldStep, complete func(ctx context.Context, data flowData) (string, error)) string {

	data, ok := s.Data.(flowData)
	if !ok {
		c.sessions.Clear(sender)
		return msgDidntUnderstand
	}

	pending := firstMissing(flow, data)
	if pending >= 0 {
		value, valid := flow[pending].Validate(text)
		if !valid {
			// Re-ask without advancing.
			return flow[pending].Question
		}
		data[flow[pending].Field] = value
	}

	next := firstMissing(flow, data)
	if next >= 0 {
		s.Step = next
		s.Data = data
		c.sessions.Put(sender, s)
		return flow[next].Question
	}

	// Flow complete; the session always dies here, even when the write
	// fails, so the sender is never stuck.
	defer c.sessions.Clear(sender)
	reply, err := complete(ctx, data)
	if err != nil {
		c.log.WithError(err).Error("Failed to persist completed flow")
		return msgPersistError
	}
	return reply
}

func firstMissing(flow []fieldStep, data flowData) int {
	for i, step := range flow {
		if _, ok := data[step.Field]; !ok {
			return i
		}
	}
	return -1
}

func (c *Controller) completeDebt(ctx context.Context, data flowData) (string, error) {
	amount := mustDecimal(data["valor_total"])
	installment := mustDecimal(data["parcela"])
	interest := mustDecimal(data["juros"])
	dueDay, _ := strconv.Atoi(data["dia_vencimento"])
	totalInstallments, _ := strconv.Atoi(data["total_parcelas"])

	d := models.DebtRecord{
		Name:              data["nome"],
		Creditor:          data["credor"],
		Type:              data["tipo"],
		OriginalAmount:    amount,
		CurrentBalance:    amount,
		InstallmentAmount: installment,
		InterestRate:      interest,
		DueDay:            dueDay,
		StartDate:         data["data_inicio"],
		TotalInstallments: totalInstallments,
		Status:            models.DebtStatusOnTime,
	}
	d.Recompute(c.now())

	if err := c.store.AppendRow(ctx, c.cfg.Sheets.Debts, d.ToRow()); err != nil {
		return "", err
	}
	return msgDebtCreated(d), nil
}

func (c *Controller) completeGoal(ctx context.Context, data flowData) (string, error) {
	g := models.GoalRecord{
		Name:         data["nome"],
		TargetAmount: mustDecimal(data["valor_alvo"]),
		CurrentAmort: mustDecimal(data["valor_atual"]),
		EndDate:      data["data_fim"],
		Status:       "Em andamento",
		Priority:     data["prioridade"],
	}
	g.Recompute(c.now())

	if err := c.store.AppendRow(ctx, c.cfg.Sheets.Goals, g.ToRow()); err != nil {
		return "", err
	}
	return msgGoalCreated(g), nil
}

// mustDecimal re-parses a value the flow already validated.
func mustDecimal(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return v
}

// todayOr picks the draft date when present, else the current day.
func (c *Controller) todayOr(d *time.Time) time.Time {
	if d != nil {
		return *d
	}
	return c.now()
}
