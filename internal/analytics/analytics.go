// Package analytics answers classified analytical questions over the
// ledgers: totals, averages, listings, occurrence counts, duplicate
// detection, extrema and the monthly balance. Cash and card ledgers are
// merged where an aggregate calls for it; rows without a parseable date
// are silently excluded, never treated as errors.
package analytics

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"rmarinho/granabot/internal/models"
	"rmarinho/granabot/internal/normalizer"
)

// Intent is the closed set of analytical questions this package answers.
type Intent string

const (
	IntentTotalCategoria Intent = "total_gastos_categoria_mes"
	IntentMediaCategoria Intent = "media_gastos_categoria_mes"
	IntentListagem       Intent = "listagem_gastos_categoria"
	IntentContagem       Intent = "contagem_ocorrencias"
	IntentDuplicados     Intent = "gastos_valores_duplicados"
	IntentMaiorMenor     Intent = "maior_menor_gasto"
	IntentSaldo          Intent = "saldo_do_mes"
	IntentGeneric        Intent = "pergunta_geral"
)

// ParseIntent maps a classifier intent string onto the closed set. Unknown
// strings map to IntentGeneric.
func ParseIntent(s string) Intent {
	switch Intent(s) {
	case IntentTotalCategoria, IntentMediaCategoria, IntentListagem,
		IntentContagem, IntentDuplicados, IntentMaiorMenor, IntentSaldo:
		return Intent(s)
	default:
		return IntentGeneric
	}
}

// Params are the normalized query parameters. Mes is zero-based; nil means
// the whole year.
type Params struct {
	Categoria string
	Mes       *int
	Ano       int
	Palavras  []string
}

// Query is one analytical question ready to run.
type Query struct {
	Intent Intent
	Params Params
}

// ParamsFrom normalizes raw classifier parameters. An absent month
// defaults to the current month; an explicit null month means the whole
// year. The year always parses as base-10 and defaults to the current one.
func ParamsFrom(raw map[string]any, now time.Time) Params {
	p := Params{Ano: now.Year()}
	if raw == nil {
		m := int(now.Month()) - 1
		p.Mes = &m
		return p
	}

	if cat, ok := raw["categoria"].(string); ok {
		p.Categoria = strings.TrimSpace(cat)
	}

	if mesRaw, present := raw["mes"]; !present {
		m := int(now.Month()) - 1
		p.Mes = &m
	} else if mesRaw != nil {
		if idx, ok := normalizer.MonthIndex(mesRaw); ok {
			p.Mes = &idx
		} else {
			m := int(now.Month()) - 1
			p.Mes = &m
		}
	}

	switch v := raw["ano"].(type) {
	case float64:
		p.Ano = int(v)
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			p.Ano = n
		}
	}

	switch v := raw["palavras"].(type) {
	case []any:
		for _, w := range v {
			if s, ok := w.(string); ok && strings.TrimSpace(s) != "" {
				p.Palavras = append(p.Palavras, strings.TrimSpace(s))
			}
		}
	case string:
		if strings.TrimSpace(v) != "" {
			p.Palavras = append(p.Palavras, strings.TrimSpace(v))
		}
	}

	return p
}

// DataSources carries the raw data rows (headers already stripped) of every
// ledger an aggregate may need. Cards maps card name to that card's rows.
type DataSources struct {
	Expenses [][]string
	Income   [][]string
	Debts    [][]string
	Goals    [][]string
	Cards    map[string][][]string
}

// Answer is the orchestrator result. Generic marks the pergunta_geral
// fallback: the caller should hand the raw question to the model instead.
type Answer struct {
	Generic bool
	Text    string
}

// similarityThreshold tolerates minor misspellings in occurrence counting
// without matching unrelated words.
const similarityThreshold = 0.65

// Run dispatches a query to its aggregate.
func Run(q Query, ds DataSources) Answer {
	switch q.Intent {
	case IntentTotalCategoria:
		return totalByCategory(q.Params, ds)
	case IntentMediaCategoria:
		return averageByCategory(q.Params, ds)
	case IntentListagem:
		return listByCategory(q.Params, ds)
	case IntentContagem:
		return countOccurrences(q.Params, ds)
	case IntentDuplicados:
		return duplicateAmounts(q.Params, ds)
	case IntentMaiorMenor:
		return minMaxExpense(q.Params, ds)
	case IntentSaldo:
		return monthBalance(q.Params, ds)
	default:
		return Answer{Generic: true}
	}
}

// entry is one expense row lifted out of a cash or card ledger.
type entry struct {
	Date        string
	Description string
	Amount      decimal.Decimal
	FromCard    string
}

// cashEntries filters the cash expense ledger by period and optional
// category. Rows without a parseable date are skipped.
func cashEntries(p Params, rows [][]string) []entry {
	var out []entry
	for _, row := range rows {
		date, ok := rowDate(cell(row, models.ExpenseColDate))
		if !ok || !inPeriod(date, p.Mes, p.Ano) {
			continue
		}
		if p.Categoria != "" && !categoryMatches(p.Categoria, row) {
			continue
		}
		amount, ok := normalizer.ParseAmount(cell(row, models.ExpenseColAmount))
		if !ok {
			continue
		}
		out = append(out, entry{
			Date:        cell(row, models.ExpenseColDate),
			Description: cell(row, models.ExpenseColDescription),
			Amount:      amount,
		})
	}
	return out
}

// cardEntries filters every card ledger by billing label and optional
// category.
func cardEntries(p Params, ds DataSources) []entry {
	var out []entry
	for card, rows := range ds.Cards {
		for _, row := range rows {
			if !billingInPeriod(cell(row, models.CardColBillingMonth), p.Mes, p.Ano) {
				continue
			}
			if p.Categoria != "" && !cardCategoryMatches(p.Categoria, row) {
				continue
			}
			amount, ok := normalizer.ParseAmount(cell(row, models.CardColAmount))
			if !ok {
				continue
			}
			out = append(out, entry{
				Date:        cell(row, models.CardColDate),
				Description: cell(row, models.CardColDescription),
				Amount:      amount,
				FromCard:    card,
			})
		}
	}
	return out
}

func totalByCategory(p Params, ds DataSources) Answer {
	total := decimal.Zero
	for _, e := range cashEntries(p, ds.Expenses) {
		total = total.Add(e.Amount)
	}
	// Card purchases join the total only when the question names a month,
	// because card rows are keyed by billing label, not purchase date.
	if p.Mes != nil {
		for _, e := range cardEntries(p, ds) {
			total = total.Add(e.Amount)
		}
	}
	return Answer{Text: msgTotal(p, total)}
}

func averageByCategory(p Params, ds DataSources) Answer {
	// Card ledgers stay out of the average; see DESIGN.md.
	entries := cashEntries(p, ds.Expenses)
	if len(entries) == 0 {
		return Answer{Text: msgNoExpenses(p)}
	}
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.Amount)
	}
	avg := total.Div(decimal.NewFromInt(int64(len(entries))))
	return Answer{Text: msgAverage(p, avg, len(entries))}
}

func listByCategory(p Params, ds DataSources) Answer {
	entries := cashEntries(p, ds.Expenses)
	if len(entries) == 0 {
		return Answer{Text: msgNoExpenses(p)}
	}
	return Answer{Text: msgListing(p, entries)}
}

func countOccurrences(p Params, ds DataSources) Answer {
	if len(p.Palavras) == 0 {
		return Answer{Generic: true}
	}
	merged := append(cashEntries(stripCategory(p), ds.Expenses), cardEntries(stripCategory(p), ds)...)

	count := 0
	for _, e := range merged {
		if descriptionMentions(e.Description, p.Palavras) {
			count++
		}
	}
	return Answer{Text: msgCount(p, count)}
}

// descriptionMentions reports whether any word of the description is
// similar enough to any of the requested keywords.
func descriptionMentions(description string, keywords []string) bool {
	for _, word := range strings.Fields(description) {
		for _, kw := range keywords {
			if normalizer.Similarity(word, kw) > similarityThreshold {
				return true
			}
		}
	}
	return false
}

func duplicateAmounts(p Params, ds DataSources) Answer {
	entries := cashEntries(stripCategory(p), ds.Expenses)

	buckets := make(map[string][]entry)
	var order []string
	for _, e := range entries {
		key := e.Amount.StringFixed(2)
		if _, seen := buckets[key]; !seen {
			order = append(order, key)
		}
		buckets[key] = append(buckets[key], e)
	}

	var dups [][]entry
	for _, key := range order {
		if len(buckets[key]) >= 2 {
			dups = append(dups, buckets[key])
		}
	}
	if len(dups) == 0 {
		return Answer{Text: msgNoDuplicates(p)}
	}
	return Answer{Text: msgDuplicates(p, dups)}
}

func minMaxExpense(p Params, ds DataSources) Answer {
	merged := append(cashEntries(stripCategory(p), ds.Expenses), cardEntries(stripCategory(p), ds)...)
	if len(merged) == 0 {
		return Answer{Text: msgNoExpenses(p)}
	}

	minE, maxE := merged[0], merged[0]
	for _, e := range merged[1:] {
		if e.Amount.LessThan(minE.Amount) {
			minE = e
		}
		if e.Amount.GreaterThan(maxE.Amount) {
			maxE = e
		}
	}
	return Answer{Text: msgMinMax(p, minE, maxE)}
}

func monthBalance(p Params, ds DataSources) Answer {
	q := stripCategory(p)

	income := decimal.Zero
	for _, row := range ds.Income {
		date, ok := rowDate(cell(row, models.IncomeColDate))
		if !ok || !inPeriod(date, q.Mes, q.Ano) {
			continue
		}
		if amount, ok := normalizer.ParseAmount(cell(row, models.IncomeColAmount)); ok {
			income = income.Add(amount)
		}
	}

	expenses := decimal.Zero
	for _, e := range cashEntries(q, ds.Expenses) {
		expenses = expenses.Add(e.Amount)
	}
	for _, e := range cardEntries(q, ds) {
		expenses = expenses.Add(e.Amount)
	}

	return Answer{Text: msgBalance(p, income, expenses)}
}

func stripCategory(p Params) Params {
	p.Categoria = ""
	return p
}

// categoryMatches checks category, subcategory and description with
// normalized substring containment.
func categoryMatches(categoria string, row []string) bool {
	needle := normalizer.Normalize(categoria)
	for _, col := range []int{models.ExpenseColCategory, models.ExpenseColSubcategory, models.ExpenseColDescription} {
		if strings.Contains(normalizer.Normalize(cell(row, col)), needle) {
			return true
		}
	}
	return false
}

func cardCategoryMatches(categoria string, row []string) bool {
	needle := normalizer.Normalize(categoria)
	for _, col := range []int{models.CardColCategory, models.CardColDescription} {
		if strings.Contains(normalizer.Normalize(cell(row, col)), needle) {
			return true
		}
	}
	return false
}

func inPeriod(date time.Time, mes *int, ano int) bool {
	if date.Year() != ano {
		return false
	}
	return mes == nil || int(date.Month())-1 == *mes
}

// billingInPeriod matches a card row's billing label against the period: a
// month-scoped query needs the exact "Mês de Ano" label, a year-scoped one
// only the year.
func billingInPeriod(label string, mes *int, ano int) bool {
	n := normalizer.Normalize(label)
	if mes != nil {
		return n == normalizer.Normalize(normalizer.BillingLabel(*mes, ano))
	}
	return strings.Contains(n, strconv.Itoa(ano))
}

func rowDate(s string) (time.Time, bool) {
	if t, ok := normalizer.ParseDateOnly(s); ok {
		return t, true
	}
	return normalizer.ParseDateTime(s)
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}
