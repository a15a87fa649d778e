package dialogue

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"rmarinho/granabot/internal/normalizer"
)

// Installment is one slice of a credit-card purchase, assigned to the
// billing month it will appear on.
type Installment struct {
	Index    int
	Count    int
	Amount   decimal.Decimal
	MonthIdx int
	Year     int
}

// Tag renders the "2/3" installment marker.
func (i Installment) Tag() string {
	return fmt.Sprintf("%d/%d", i.Index, i.Count)
}

// BillingLabel renders the human-readable statement label.
func (i Installment) BillingLabel() string {
	return normalizer.BillingLabel(i.MonthIdx, i.Year)
}

// splitInstallments divides a purchase into n installments and computes
// each one's billing month: purchases after the card's closing day land on
// the next statement, and each further installment advances one month,
// carrying the year when the month wraps.
func splitInstallments(total decimal.Decimal, n int, purchase time.Time, closingDay int) []Installment {
	if n < 1 {
		n = 1
	}
	per := total.Div(decimal.NewFromInt(int64(n))).Round(2)

	out := make([]Installment, 0, n)
	for i := 1; i <= n; i++ {
		month := int(purchase.Month()) - 1
		if purchase.Day() > closingDay {
			month++
		}
		month += i - 1
		year := purchase.Year() + month/12
		month = month % 12

		out = append(out, Installment{
			Index:    i,
			Count:    n,
			Amount:   per,
			MonthIdx: month,
			Year:     year,
		})
	}
	return out
}
