package dialogue

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"rmarinho/granabot/internal/analytics"
	"rmarinho/granabot/internal/config"
	"rmarinho/granabot/internal/debtmatcher"
	"rmarinho/granabot/internal/models"
	"rmarinho/granabot/internal/normalizer"
)

// Fixed replies. Flow questions live next to their field steps.
const (
	msgCancelled        = "Tudo bem, cancelei por aqui. 👍"
	msgPersistError     = "Poxa, não consegui salvar agora. 😕 Tenta de novo em instantes?"
	msgDidntUnderstand  = "Não entendi. 🤔 Pode repetir de outro jeito?"
	msgAskPaymentMethod = "Como você pagou? (débito, crédito, pix ou dinheiro)"
	msgAskReceiptMethod = "Como você recebeu? (pix, transferência, dinheiro ou depósito)"
	msgAskInstallments  = "Em quantas parcelas?"
	msgAskPaymentAmount = "Qual valor você pagou?"
	msgInvalidAmount    = "Preciso de um valor maior que zero. Quanto foi?"
	msgInvalidSelection = "Essa opção não existe, então cancelei a atualização. Pode começar de novo."
	msgDebtNotFound     = "Não achei nenhuma dívida parecida com essa. 🤷"
	msgNothingToDelete  = "Não encontrei lançamentos para apagar com essa descrição."
)

func msgExpenseSaved(d models.TransactionDraft) string {
	return fmt.Sprintf("✅ Gasto anotado: %s — %s (%s)",
		d.Description, draftAmount(d), d.PaymentMethod)
}

func msgIncomeSaved(d models.TransactionDraft) string {
	return fmt.Sprintf("✅ Receita anotada: %s — %s (%s)",
		d.Description, draftAmount(d), d.PaymentMethod)
}

func draftAmount(d models.TransactionDraft) string {
	if d.Amount == nil {
		return "?"
	}
	return analytics.FormatBRL(*d.Amount)
}

func msgCardSaved(d models.TransactionDraft, card config.Card, installments []Installment) string {
	first := installments[0]
	if first.Count == 1 {
		return fmt.Sprintf("✅ Compra no %s anotada: %s — %s (fatura de %s)",
			card.Name, d.Description, analytics.FormatBRL(first.Amount), first.BillingLabel())
	}
	return fmt.Sprintf("✅ Compra no %s anotada: %s — %dx de %s a partir da fatura de %s",
		card.Name, d.Description, first.Count, analytics.FormatBRL(first.Amount), first.BillingLabel())
}

func msgChooseCard(cards []config.Card) string {
	var b strings.Builder
	b.WriteString("Em qual cartão? Responda com o número ou o nome:\n")
	for i, c := range cards {
		fmt.Fprintf(&b, "%d. %s\n", i+1, c.Name)
	}
	return strings.TrimRight(b.String(), "\n")
}

func msgConfirmBatch(drafts []models.TransactionDraft) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Encontrei %d lançamentos:\n", len(drafts))
	for i, d := range drafts {
		kind := "gasto"
		if d.Kind == models.KindIncome {
			kind = "receita"
		}
		amount := "?"
		if d.Amount != nil {
			amount = analytics.FormatBRL(*d.Amount)
		}
		fmt.Fprintf(&b, "%d. [%s] %s — %s\n", i+1, kind, d.Description, amount)
	}
	b.WriteString("Posso salvar todos? (sim/não)")
	return b.String()
}

func msgBatchSaved(saved, total int) string {
	if saved == total {
		return fmt.Sprintf("✅ Prontinho! Salvei %d lançamentos.", total)
	}
	return fmt.Sprintf("⚠️ Salvei %d de %d lançamentos. Os demais não deram certo, tenta de novo depois.", saved, total)
}

func msgPaymentApplied(d models.DebtRecord, paid decimal.Decimal) string {
	return fmt.Sprintf("✅ Pagamento de %s registrado na dívida %s.\nSaldo atual: %s (%s%% quitada)",
		analytics.FormatBRL(paid), d.Name,
		analytics.FormatBRL(d.CurrentBalance), d.PercentPaid.StringFixed(0))
}

func msgDebtList(rows [][]string) string {
	var b strings.Builder
	b.WriteString("Achei mais de uma dívida parecida. Me fala o nome mais completo:\n")
	for _, row := range rows {
		fmt.Fprintf(&b, "- %s (%s)\n", cellAt(row, models.DebtColName), cellAt(row, models.DebtColCreditor))
	}
	return strings.TrimRight(b.String(), "\n")
}

func msgDebtCreated(d models.DebtRecord) string {
	return fmt.Sprintf("✅ Dívida %s cadastrada!\nSaldo: %s | Vence dia %d",
		d.Name, analytics.FormatBRL(d.CurrentBalance), d.DueDay)
}

func msgGoalCreated(g models.GoalRecord) string {
	return fmt.Sprintf("✅ Meta %s criada!\nFaltam %s — guarde %s por mês até %s.",
		g.Name, analytics.FormatBRL(g.TargetAmount.Sub(g.CurrentAmort)),
		analytics.FormatBRL(g.MonthlyRequired), g.EndDate)
}

func msgChooseDebtUpdate(candidates []debtmatcher.Candidate, newValue decimal.Decimal) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Encontrei %d dívidas parecidas. Qual delas vai para %s?\n",
		len(candidates), analytics.FormatBRL(newValue))
	for i, c := range candidates {
		balance := cellAt(c.Row, models.DebtColCurrentBalance)
		fmt.Fprintf(&b, "%d. %s (%s) — saldo %s\n",
			i+1, cellAt(c.Row, models.DebtColName), cellAt(c.Row, models.DebtColCreditor), balance)
	}
	b.WriteString("Responda com o número ou \"cancelar\".")
	return b.String()
}

func msgDebtUpdated(name string, oldValue, newValue decimal.Decimal) string {
	return fmt.Sprintf("✅ Saldo da dívida %s atualizado: %s → %s",
		name, analytics.FormatBRL(oldValue), analytics.FormatBRL(newValue))
}

func msgDeleteCandidates(labels []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Vou apagar %d lançamento(s):\n", len(labels))
	for _, l := range labels {
		b.WriteString("- " + l + "\n")
	}
	b.WriteString("Confirma? (sim/não)")
	return b.String()
}

func msgDeleted(n int) string {
	return fmt.Sprintf("🗑️ Apaguei %d lançamento(s).", n)
}

// isCancel detects the global abort keyword, case and accent insensitive.
func isCancel(text string) bool {
	return strings.Contains(normalizer.Normalize(text), "cancelar")
}

// saidYes recognizes the confirmation vocabulary.
func saidYes(text string) bool {
	n := strings.TrimSpace(normalizer.Normalize(text))
	return n == "sim" || n == "s" || strings.HasPrefix(n, "sim,") || strings.HasPrefix(n, "sim ")
}

func cellAt(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}
