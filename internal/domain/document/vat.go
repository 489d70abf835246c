package document

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	hundred   = decimal.NewFromInt(100)
	tolerance = decimal.NewFromFloat(0.01)
)

func round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// LineInput is the priced part of a document line
type LineInput struct {
	Quantity        decimal.Decimal
	UnitPriceHT     decimal.Decimal
	DiscountPercent decimal.Decimal
	TVARate         int
}

// LineTotals is the result of pricing one line. Every step is rounded to centimes.
type LineTotals struct {
	LineTotal      decimal.Decimal `json:"lineTotal"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	NetHT          decimal.Decimal `json:"netHT"`
	TVAAmount      decimal.Decimal `json:"tvaAmount"`
	TotalTTC       decimal.Decimal `json:"totalTTC"`
	TVARate        int             `json:"tvaRate"`
}

// VATBreakdownEntry is the taxable base and VAT for one rate
type VATBreakdownEntry struct {
	Rate        int             `json:"rate"`
	Description string          `json:"description"`
	BaseHT      decimal.Decimal `json:"baseHT"`
	Amount      decimal.Decimal `json:"amount"`
}

// Totals is the full computation of a document
type Totals struct {
	Lines                []LineTotals        `json:"lines"`
	SubtotalHT           decimal.Decimal     `json:"subtotalHT"`
	TotalLineDiscounts   decimal.Decimal     `json:"totalLineDiscounts"`
	NetHT                decimal.Decimal     `json:"netHT"`
	GlobalDiscountAmount decimal.Decimal     `json:"globalDiscountAmount"`
	TaxableHT            decimal.Decimal     `json:"taxableHT"`
	VATBreakdown         []VATBreakdownEntry `json:"vatBreakdown"`
	TotalVAT             decimal.Decimal     `json:"totalVAT"`
	TotalTTC             decimal.Decimal     `json:"totalTTC"`
}

// CalculateLine prices a single line
func CalculateLine(in LineInput) LineTotals {
	lineTotal := round2(in.Quantity.Mul(in.UnitPriceHT))
	discount := round2(lineTotal.Mul(in.DiscountPercent).Div(hundred))
	net := round2(lineTotal.Sub(discount))
	tva := round2(net.Mul(decimal.NewFromInt(int64(in.TVARate))).Div(hundred))
	return LineTotals{
		LineTotal:      lineTotal,
		DiscountAmount: discount,
		NetHT:          net,
		TVAAmount:      tva,
		TotalTTC:       round2(net.Add(tva)),
		TVARate:        in.TVARate,
	}
}

// CalculateTotals prices every line, applies the global discount and builds the
// VAT breakdown. The global discount is spread over the rates in proportion to
// their net amount.
func CalculateTotals(lines []LineInput, discountType DiscountType, discountValue decimal.Decimal) Totals {
	t := Totals{Lines: make([]LineTotals, 0, len(lines))}
	byRate := make(map[int]decimal.Decimal)
	subtotal, lineDiscounts := decimal.Zero, decimal.Zero
	for _, in := range lines {
		lt := CalculateLine(in)
		t.Lines = append(t.Lines, lt)
		subtotal = subtotal.Add(lt.LineTotal)
		lineDiscounts = lineDiscounts.Add(lt.DiscountAmount)
		byRate[lt.TVARate] = byRate[lt.TVARate].Add(lt.NetHT)
	}
	t.SubtotalHT = round2(subtotal)
	t.TotalLineDiscounts = round2(lineDiscounts)
	t.NetHT = round2(t.SubtotalHT.Sub(t.TotalLineDiscounts))

	t.GlobalDiscountAmount = decimal.Zero
	if !discountValue.IsZero() {
		switch discountType {
		case DiscountPercentage:
			t.GlobalDiscountAmount = round2(t.NetHT.Mul(discountValue).Div(hundred))
		case DiscountFixed:
			t.GlobalDiscountAmount = decimal.Max(decimal.Zero, decimal.Min(round2(discountValue), t.NetHT))
		}
	}
	t.TaxableHT = round2(t.NetHT.Sub(t.GlobalDiscountAmount))

	totalVAT := decimal.Zero
	for rate, rateNet := range byRate {
		base := rateNet
		if t.GlobalDiscountAmount.IsPositive() && t.NetHT.IsPositive() {
			share := t.GlobalDiscountAmount.Mul(rateNet).Div(t.NetHT)
			base = round2(rateNet.Sub(share))
		}
		amount := round2(base.Mul(decimal.NewFromInt(int64(rate))).Div(hundred))
		t.VATBreakdown = append(t.VATBreakdown, VATBreakdownEntry{
			Rate:        rate,
			Description: RateDescription(rate),
			BaseHT:      round2(base),
			Amount:      amount,
		})
		totalVAT = totalVAT.Add(amount)
	}
	sort.Slice(t.VATBreakdown, func(i, j int) bool { return t.VATBreakdown[i].Rate < t.VATBreakdown[j].Rate })

	t.TotalVAT = round2(totalVAT)
	t.TotalTTC = round2(t.TaxableHT.Add(t.TotalVAT))
	return t
}

// RateDescription returns the label printed next to a VAT rate
func RateDescription(rate int) string {
	switch rate {
	case 0:
		return "Exonéré"
	case 7, 10, 14:
		return fmt.Sprintf("TVA réduite %d%%", rate)
	case 20:
		return "TVA standard 20%"
	default:
		return fmt.Sprintf("TVA %d%%", rate)
	}
}

var frPrinter = message.NewPrinter(language.French)

// FormatMAD formats an amount in dirhams, French style ("1 234,50 DH")
func FormatMAD(amount decimal.Decimal) string {
	f, _ := amount.Round(2).Float64()
	return frPrinter.Sprintf("%.2f", f) + " DH"
}

var (
	wordUnits = []string{"", "un", "deux", "trois", "quatre", "cinq", "six", "sept", "huit", "neuf"}
	wordTeens = []string{"dix", "onze", "douze", "treize", "quatorze", "quinze", "seize", "dix-sept", "dix-huit", "dix-neuf"}
	wordTens  = []string{"", "", "vingt", "trente", "quarante", "cinquante", "soixante", "soixante", "quatre-vingt", "quatre-vingt"}
)

func hundredsToWords(n int64) string {
	if n == 0 {
		return ""
	}
	var b strings.Builder
	h, rem := n/100, n%100
	if h > 0 {
		if h == 1 {
			b.WriteString("cent")
		} else {
			b.WriteString(wordUnits[h] + " cent")
			if rem == 0 {
				b.WriteString("s")
			}
		}
	}
	if rem == 0 {
		return b.String()
	}
	if b.Len() > 0 {
		b.WriteString(" ")
	}
	switch {
	case rem < 10:
		b.WriteString(wordUnits[rem])
	case rem < 20:
		b.WriteString(wordTeens[rem-10])
	default:
		t, u := rem/10, rem%10
		switch {
		case t == 7 && u == 1:
			b.WriteString(wordTens[t] + " et onze")
		case t == 7 || t == 9:
			b.WriteString(wordTens[t] + "-" + wordTeens[u])
		case u == 1 && t != 8:
			b.WriteString(wordTens[t] + " et un")
		case u == 0:
			b.WriteString(wordTens[t])
			if t == 8 {
				b.WriteString("s")
			}
		default:
			b.WriteString(wordTens[t] + "-" + wordUnits[u])
		}
	}
	return b.String()
}

// AmountToWordsFR spells an amount in French dirhams and centimes, as printed on invoices
func AmountToWordsFR(amount decimal.Decimal) string {
	amount = amount.Round(2)
	if amount.IsZero() {
		return "zéro dirham"
	}
	whole := amount.Floor().IntPart()
	centimes := amount.Sub(amount.Floor()).Mul(hundred).Round(0).IntPart()

	var parts []string
	millions, thousands, rest := whole/1_000_000, (whole%1_000_000)/1000, whole%1000
	if millions == 1 {
		parts = append(parts, "un million")
	} else if millions > 1 {
		parts = append(parts, hundredsToWords(millions)+" millions")
	}
	if thousands == 1 {
		parts = append(parts, "mille")
	} else if thousands > 1 {
		parts = append(parts, hundredsToWords(thousands)+" mille")
	}
	if rest > 0 {
		parts = append(parts, hundredsToWords(rest))
	}

	result := strings.Join(parts, " ") + " dirham"
	if whole > 1 {
		result += "s"
	}
	if centimes > 0 {
		result += " et " + hundredsToWords(centimes) + " centime"
		if centimes > 1 {
			result += "s"
		}
	}
	result = strings.TrimLeft(result, " ")
	r := []rune(result)
	return strings.ToUpper(string(r[0])) + string(r[1:])
}

// TotalsCheck is the outcome of recomputing a stored document
type TotalsCheck struct {
	Valid         bool     `json:"isValid"`
	Discrepancies []string `json:"discrepancies"`
	Recalculated  Totals   `json:"recalculated"`
}

func differs(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().GreaterThan(tolerance)
}

// VerifyTotals recomputes the document from its lines and reports every stored
// amount that drifts by more than one centime.
func VerifyTotals(d *Document) TotalsCheck {
	inputs := make([]LineInput, len(d.Items))
	for i, it := range d.Items {
		inputs[i] = it.lineInput()
	}
	calc := CalculateTotals(inputs, d.DiscountType, d.DiscountValue)
	check := TotalsCheck{Discrepancies: []string{}, Recalculated: calc}

	for i, it := range d.Items {
		line := calc.Lines[i]
		if differs(it.TotalHT, line.NetHT) {
			check.Discrepancies = append(check.Discrepancies,
				fmt.Sprintf("Ligne %d: HT stocké (%s) ≠ calculé (%s)", i+1, it.TotalHT, line.NetHT))
		}
		if differs(it.TotalTVA, line.TVAAmount) {
			check.Discrepancies = append(check.Discrepancies,
				fmt.Sprintf("Ligne %d: TVA stockée (%s) ≠ calculée (%s)", i+1, it.TotalTVA, line.TVAAmount))
		}
	}
	if differs(d.TotalHT, calc.TaxableHT) {
		check.Discrepancies = append(check.Discrepancies,
			fmt.Sprintf("Total HT: stocké (%s) ≠ calculé (%s)", d.TotalHT, calc.TaxableHT))
	}
	if differs(d.TotalTVA, calc.TotalVAT) {
		check.Discrepancies = append(check.Discrepancies,
			fmt.Sprintf("Total TVA: stocké (%s) ≠ calculé (%s)", d.TotalTVA, calc.TotalVAT))
	}
	if differs(d.TotalTTC, calc.TotalTTC) {
		check.Discrepancies = append(check.Discrepancies,
			fmt.Sprintf("Total TTC: stocké (%s) ≠ calculé (%s)", d.TotalTTC, calc.TotalTTC))
	}
	check.Valid = len(check.Discrepancies) == 0
	return check
}
