package scenario

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/procurebot/negotiator/internal/offer"
	"github.com/procurebot/negotiator/internal/policy"
)

// #region products

// BuiltinProducts returns the reference goods used by the built-in
// scenario suite.
func BuiltinProducts() []Product {
	return []Product{
		{
			Name:        "Alphonso Mangoes",
			Category:    "Mangoes",
			Quantity:    100,
			Grade:       offer.GradeA,
			Origin:      "Ratnagiri",
			MarketPrice: decimal.NewFromInt(180000),
		},
		{
			Name:        "Kesar Mangoes",
			Category:    "Mangoes",
			Quantity:    150,
			Grade:       offer.GradeB,
			Origin:      "Gujarat",
			MarketPrice: decimal.NewFromInt(150000),
		},
	}
}

// #endregion products

// #region builtin-fixtures

// BuiltinFixtures expands every product across the difficulty triplets
// against the standard seller, plus one stubborn counterpart that
// never meets the budget.
func BuiltinFixtures() []Fixture {
	var fixtures []Fixture

	for _, prod := range BuiltinProducts() {
		for _, trip := range Triplets(prod.MarketPrice) {
			target := decimal.Min(trip.BuyerBudget, prod.MarketPrice.Mul(decimal.NewFromFloat(0.9)).Round(2))
			fixtures = append(fixtures, Fixture{
				Description: fmt.Sprintf("%s — %s", prod.Name, trip.Label),
				Product:     prod,
				Constraint: offer.BudgetConstraint{
					MaxTotalPrice: trip.BuyerBudget,
					TargetPrice:   target,
					MinQuantity:   prod.Quantity,
					MaxQuantity:   prod.Quantity,
					QualityFloor:  prod.Grade,
				},
				Personality: offer.ProfileByName("analytical"),
				MaxRounds:   10,
				Seller:      FixtureSeller{Kind: "standard", Floor: trip.SellerFloor},
				Expected: Expected{
					State:         policy.StateAccepted,
					MaxFinalPrice: target,
				},
			})
		}
	}

	// A counterpart that never goes near the budget: must time out.
	stubborn := BuiltinProducts()[0]
	ask := stubborn.MarketPrice.Mul(decimal.NewFromFloat(1.4)).Round(2)
	fixtures = append(fixtures, Fixture{
		Description: fmt.Sprintf("%s — stubborn", stubborn.Name),
		Product:     stubborn,
		Constraint: offer.BudgetConstraint{
			MaxTotalPrice: stubborn.MarketPrice.Mul(decimal.NewFromFloat(1.2)).Round(2),
			TargetPrice:   stubborn.MarketPrice.Mul(decimal.NewFromFloat(0.9)).Round(2),
			MinQuantity:   stubborn.Quantity,
			MaxQuantity:   stubborn.Quantity,
			QualityFloor:  stubborn.Grade,
		},
		Personality: offer.ProfileByName("analytical"),
		MaxRounds:   10,
		Seller:      FixtureSeller{Kind: "scripted", Script: []decimal.Decimal{ask}},
		Expected:    Expected{State: policy.StateTimedOut},
	})

	return fixtures
}

// #endregion builtin-fixtures
