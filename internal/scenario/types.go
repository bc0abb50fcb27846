package scenario

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/procurebot/negotiator/internal/offer"
)

// #region product

// Product describes the perishable good under negotiation. The core
// never sees this; it exists for the harness and CLIs.
type Product struct {
	Name        string             `json:"name"`
	Category    string             `json:"category"`
	Quantity    int                `json:"quantity"`
	Grade       offer.QualityGrade `json:"grade"`
	Origin      string             `json:"origin"`
	MarketPrice decimal.Decimal    `json:"market_price"`
}

// #endregion product

// #region triplets

// Triplet is one difficulty setting: the buyer's budget and the hidden
// seller floor, both derived from the market price.
type Triplet struct {
	Label       string
	BuyerBudget decimal.Decimal
	SellerFloor decimal.Decimal
}

// Triplets returns the easy/medium/hard settings for a market price.
func Triplets(market decimal.Decimal) []Triplet {
	mul := func(f float64) decimal.Decimal {
		return market.Mul(decimal.NewFromFloat(f)).Round(2)
	}
	return []Triplet{
		{Label: "easy", BuyerBudget: mul(1.2), SellerFloor: mul(0.80)},
		{Label: "medium", BuyerBudget: mul(1.0), SellerFloor: mul(0.85)},
		{Label: "hard", BuyerBudget: mul(0.9), SellerFloor: mul(0.82)},
	}
}

// #endregion triplets

// #region fair-price

var premiumOrigins = []string{"Ratnagiri", "Alphonso", "Devgad"}

// FairPrice estimates a fair price from the market reference, adjusted
// for quality grade, origin, and bulk quantity.
func FairPrice(p Product) decimal.Decimal {
	adj := p.Grade.Multiplier()

	originAdj := 0.95
	for _, prem := range premiumOrigins {
		if strings.Contains(p.Origin, prem) {
			originAdj = 1.1
			break
		}
	}

	qtyAdj := 1.0
	switch {
	case p.Quantity >= 500:
		qtyAdj = 0.90
	case p.Quantity >= 200:
		qtyAdj = 0.95
	}

	return p.MarketPrice.
		Mul(decimal.NewFromFloat(adj)).
		Mul(decimal.NewFromFloat(originAdj)).
		Mul(decimal.NewFromFloat(qtyAdj)).
		Round(2)
}

// #endregion fair-price

// #region money

// FormatMoney renders a price with a currency symbol and thousands
// separators, e.g. "₹180,000".
func FormatMoney(d decimal.Decimal, currency string) string {
	s := d.Round(2).String()

	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart, fracPart, hasFrac := strings.Cut(s, ".")
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	out := currency + b.String()
	if hasFrac {
		out += "." + fracPart
	}
	if neg {
		out = "-" + out
	}
	return out
}

// #endregion money
