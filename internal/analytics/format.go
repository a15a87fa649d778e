package analytics

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"rmarinho/granabot/internal/normalizer"
)

// FormatBRL renders an amount as "R$ 1.234,56".
func FormatBRL(v decimal.Decimal) string {
	fixed := v.StringFixed(2)
	neg := strings.HasPrefix(fixed, "-")
	fixed = strings.TrimPrefix(fixed, "-")

	parts := strings.SplitN(fixed, ".", 2)
	intPart, decPart := parts[0], parts[1]

	var groups []string
	for len(intPart) > 3 {
		groups = append([]string{intPart[len(intPart)-3:]}, groups...)
		intPart = intPart[:len(intPart)-3]
	}
	groups = append([]string{intPart}, groups...)

	out := "R$ " + strings.Join(groups, ".") + "," + decPart
	if neg {
		out = "-" + out
	}
	return out
}

// periodLabel renders the period of a query for reply text: "em Março de
// 2026" or "em 2026".
func periodLabel(p Params) string {
	if p.Mes != nil {
		return "em " + normalizer.BillingLabel(*p.Mes, p.Ano)
	}
	return fmt.Sprintf("em %d", p.Ano)
}

func categoryLabel(p Params) string {
	if p.Categoria == "" {
		return ""
	}
	return " com " + p.Categoria
}

func msgTotal(p Params, total decimal.Decimal) string {
	return fmt.Sprintf("💸 Você gastou %s%s %s.", FormatBRL(total), categoryLabel(p), periodLabel(p))
}

func msgAverage(p Params, avg decimal.Decimal, n int) string {
	return fmt.Sprintf("📊 Média de %s por lançamento%s %s (%d lançamentos).",
		FormatBRL(avg), categoryLabel(p), periodLabel(p), n)
}

func msgNoExpenses(p Params) string {
	return fmt.Sprintf("Não encontrei gastos%s %s.", categoryLabel(p), periodLabel(p))
}

func msgListing(p Params, entries []entry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🧾 Gastos%s %s:\n", categoryLabel(p), periodLabel(p))
	total := decimal.Zero
	for _, e := range entries {
		fmt.Fprintf(&b, "- %s %s: %s\n", e.Date, e.Description, FormatBRL(e.Amount))
		total = total.Add(e.Amount)
	}
	fmt.Fprintf(&b, "Total: %s", FormatBRL(total))
	return b.String()
}

func msgCount(p Params, count int) string {
	words := strings.Join(p.Palavras, ", ")
	if count == 0 {
		return fmt.Sprintf("Não encontrei lançamentos parecidos com \"%s\" %s.", words, periodLabel(p))
	}
	return fmt.Sprintf("🔎 Encontrei %d lançamento(s) parecido(s) com \"%s\" %s.", count, words, periodLabel(p))
}

func msgNoDuplicates(p Params) string {
	return fmt.Sprintf("Nenhum valor repetido %s.", periodLabel(p))
}

func msgDuplicates(p Params, groups [][]entry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "👀 Valores repetidos %s:\n", periodLabel(p))
	for _, g := range groups {
		var descs []string
		for _, e := range g {
			descs = append(descs, e.Description)
		}
		fmt.Fprintf(&b, "- %s (%dx): %s\n", FormatBRL(g[0].Amount), len(g), strings.Join(descs, ", "))
	}
	return strings.TrimRight(b.String(), "\n")
}

func msgMinMax(p Params, minE, maxE entry) string {
	return fmt.Sprintf("📈 Maior gasto %s: %s (%s)\n📉 Menor gasto: %s (%s)",
		periodLabel(p), FormatBRL(maxE.Amount), maxE.Description,
		FormatBRL(minE.Amount), minE.Description)
}

func msgBalance(p Params, income, expenses decimal.Decimal) string {
	balance := income.Sub(expenses)
	emoji := "✅"
	if balance.IsNegative() {
		emoji = "🔴"
	}
	return fmt.Sprintf("%s Saldo %s: %s\nReceitas: %s\nGastos: %s",
		emoji, periodLabel(p), FormatBRL(balance), FormatBRL(income), FormatBRL(expenses))
}
