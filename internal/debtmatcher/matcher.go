// Package debtmatcher locates the debt a free-text "update" utterance is
// talking about. It extracts the target reference, an optional old balance
// and the new value from the message, scores every ledger row against the
// reference, and either resolves a single row or surfaces the tied
// candidates for the user to pick from.
package debtmatcher

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"rmarinho/granabot/internal/logging"
	"rmarinho/granabot/internal/models"
	"rmarinho/granabot/internal/normalizer"
)

// Outcome tells the caller how to proceed.
type Outcome int

const (
	// OutcomeNotRecognized means the message is not a debt update at all;
	// the caller falls through to other intents.
	OutcomeNotRecognized Outcome = iota
	// OutcomeNotFound means the message is a debt update but no ledger row
	// matched the reference.
	OutcomeNotFound
	// OutcomeMatched means exactly one row won; apply the update.
	OutcomeMatched
	// OutcomeAmbiguous means several rows tied at the top score; ask the
	// user to choose.
	OutcomeAmbiguous
)

// Candidate is one scored ledger row. Score is a relative ranking unit,
// not a probability.
type Candidate struct {
	RowIndex int
	Row      []string
	Score    int
}

// Match is the full result of matching one utterance against the ledger.
type Match struct {
	Outcome    Outcome
	NewValue   decimal.Decimal
	OldValue   *decimal.Decimal
	Reference  string
	Candidates []Candidate
}

var (
	updateVerbs    = []string{"atualiz", "alter", "mud", "ajust", "corrig"}
	domainKeywords = []string{"divida", "financiamento", "emprestimo", "parcela", "juros", "fatura"}

	// stopwords are dropped from the target reference before scoring.
	stopwords = map[string]bool{
		"de": true, "da": true, "do": true, "das": true, "dos": true,
		"em": true, "no": true, "na": true, "nos": true, "nas": true,
		"para": true, "pra": true, "com": true, "a": true, "o": true,
		"as": true, "os": true, "e": true, "que": true,
		"minha": true, "meu": true, "uma": true, "um": true,
	}

	oldValuePattern = regexp.MustCompile(`(?:^|\s)de\s+((?:r\$\s*)?\d[\d.,]*\s*[km]?)`)
	cutPattern      = regexp.MustCompile(`\b(de|para|pra)\b`)
)

// oldBalanceBonus dominates token score so an old-balance hint wins over
// textual similarity.
const oldBalanceBonus = 100

// Matcher scores debt ledger rows against imprecise textual references.
type Matcher struct {
	log logging.Logger
}

// New creates a Matcher.
func New(log logging.Logger) *Matcher {
	return &Matcher{log: log}
}

// Recognized reports whether the text is an update-debt command: it needs
// both an update-type verb and a debt-domain keyword.
func Recognized(text string) bool {
	n := normalizer.Normalize(text)
	hasVerb := false
	for _, v := range updateVerbs {
		if strings.Contains(n, v) {
			hasVerb = true
			break
		}
	}
	if !hasVerb {
		return false
	}
	for _, k := range domainKeywords {
		if strings.Contains(n, k) {
			return true
		}
	}
	return false
}

// Match parses the utterance and scores it against the debt rows (data rows
// only, no header). RowIndex values index into rows.
func (m *Matcher) Match(text string, rows [][]string) Match {
	if !Recognized(text) {
		return Match{Outcome: OutcomeNotRecognized}
	}

	newValue, oldValue, reference, ok := parseCommand(text)
	if !ok {
		return Match{Outcome: OutcomeNotFound, Reference: reference}
	}

	candidates := scoreRows(reference, oldValue, rows)
	m.log.WithField("reference", reference).Debug("Scored debt candidates",
		logging.Field{Key: "candidates", Value: len(candidates)})

	result := Match{
		NewValue:   newValue,
		OldValue:   oldValue,
		Reference:  reference,
		Candidates: candidates,
	}
	switch len(candidates) {
	case 0:
		result.Outcome = OutcomeNotFound
	case 1:
		result.Outcome = OutcomeMatched
	default:
		result.Outcome = OutcomeAmbiguous
	}
	return result
}

// parseCommand extracts (newValue, oldValue, reference) from the utterance.
// The last " para "/" pra " is the pivot between reference and new value;
// without a pivot the last numeric token is the new value.
func parseCommand(text string) (decimal.Decimal, *decimal.Decimal, string, bool) {
	n := normalizer.Normalize(text)

	pivot, pivotLen := -1, 0
	for _, sep := range []string{" para ", " pra "} {
		if idx := strings.LastIndex(n, sep); idx > pivot {
			pivot, pivotLen = idx, len(sep)
		}
	}

	var newValue decimal.Decimal
	var ok bool
	head := n
	if pivot >= 0 {
		head = n[:pivot]
		newValue, ok = normalizer.ParseAmount(n[pivot+pivotLen:])
	} else {
		newValue, ok = normalizer.ParseLastAmount(n)
	}

	var oldValue *decimal.Decimal
	if ms := oldValuePattern.FindAllStringSubmatch(head, -1); len(ms) > 0 {
		if v, vok := normalizer.ParseAmount(ms[len(ms)-1][1]); vok {
			oldValue = &v
		}
	}

	return newValue, oldValue, extractReference(head), ok
}

// extractReference strips the leading verb+keyword phrase, cuts at the
// first de/para/pra, and trims leading articles.
func extractReference(head string) string {
	ref := head
	for _, k := range domainKeywords {
		if idx := strings.Index(ref, k); idx >= 0 {
			ref = ref[idx+len(k):]
			break
		}
	}
	if loc := cutPattern.FindStringIndex(ref); loc != nil {
		ref = ref[:loc[0]]
	}

	words := strings.Fields(ref)
	for len(words) > 0 && stopwords[words[0]] {
		words = words[1:]
	}
	return strings.Join(words, " ")
}

// scoreRows ranks every row and keeps the ones tied at the maximum score.
func scoreRows(reference string, oldValue *decimal.Decimal, rows [][]string) []Candidate {
	tokens := referenceTokens(reference)
	tolerance := decimal.NewFromFloat(0.01)

	var best int
	var candidates []Candidate
	for i, row := range rows {
		haystack := normalizer.Normalize(rowText(row))

		tokenScore := 0
		for _, tok := range tokens {
			if strings.Contains(haystack, tok) {
				tokenScore++
			}
		}
		// Precision guard: a multi-token reference must land at least two
		// tokens, otherwise a single accidental word match would win.
		if len(tokens) >= 2 && tokenScore < 2 {
			tokenScore = 0
		}

		oldScore := 0
		if oldValue != nil {
			if balance, ok := normalizer.ParseAmount(cell(row, models.DebtColCurrentBalance)); ok {
				if balance.Sub(*oldValue).Abs().LessThanOrEqual(tolerance) {
					oldScore = oldBalanceBonus
				}
			}
		}

		score := tokenScore*10 + oldScore
		if len(tokens) == 0 {
			score = oldScore
		}
		if score == 0 {
			continue
		}

		c := Candidate{RowIndex: i, Row: row, Score: score}
		switch {
		case score > best:
			best = score
			candidates = []Candidate{c}
		case score == best:
			candidates = append(candidates, c)
		}
	}
	return candidates
}

var numericToken = regexp.MustCompile(`^[\d.,]+$`)

func referenceTokens(reference string) []string {
	var tokens []string
	for _, w := range strings.Fields(reference) {
		// Amounts left in the text are not part of the name reference.
		if len([]rune(w)) < 2 || stopwords[w] || numericToken.MatchString(w) {
			continue
		}
		tokens = append(tokens, w)
	}
	return tokens
}

func rowText(row []string) string {
	return cell(row, models.DebtColName) + " " + cell(row, models.DebtColCreditor)
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}
