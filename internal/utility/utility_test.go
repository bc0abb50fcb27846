package utility

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/procurebot/negotiator/internal/offer"
)

func testConstraint(t *testing.T) offer.BudgetConstraint {
	t.Helper()
	return offer.BudgetConstraint{
		MaxTotalPrice: decimal.NewFromInt(100),
		TargetPrice:   decimal.NewFromInt(70),
		MinQuantity:   10,
		MaxQuantity:   20,
		QualityFloor:  offer.GradeB,
	}
}

func testOffer(t *testing.T, price int64, round int) offer.Offer {
	t.Helper()
	return offer.Offer{
		Price:    decimal.NewFromInt(price),
		Quantity: 15,
		Grade:    offer.GradeA,
		Round:    round,
		Proposer: offer.PartySeller,
	}
}

// #region purity

func TestScoreIsPure(t *testing.T) {
	c := testConstraint(t)
	p := offer.ProfileByName("analytical")
	o := testOffer(t, 80, 3)

	first := Score(o, c, p, 10, DefaultConfig())
	for i := 0; i < 5; i++ {
		if got := Score(o, c, p, 10, DefaultConfig()); got != first {
			t.Fatalf("Score not deterministic: %.6f vs %.6f", first, got)
		}
	}
}

// #endregion purity

// #region terms

func TestScoreWeighting(t *testing.T) {
	c := testConstraint(t)
	p := offer.ProfileByName("analytical")

	// Round 0, in-range quantity, grade A over floor B: savings 0.2,
	// fit 0.8 (grade multiplier times full quantity fit), no decay.
	got := Score(testOffer(t, 80, 0), c, p, 10, DefaultConfig())
	want := (0.60*0.2 + 0.25*0.8 + 0.15*1) / 1.0
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("Score = %.6f, want %.6f", got, want)
	}
}

func TestGradeMultiplierDifferentiatesScores(t *testing.T) {
	c := testConstraint(t)
	p := offer.ProfileByName("analytical")

	score := func(g offer.QualityGrade) float64 {
		o := testOffer(t, 80, 0)
		o.Grade = g
		return Score(o, c, p, 10, DefaultConfig())
	}

	b, a, export := score(offer.GradeB), score(offer.GradeA), score(offer.GradeExport)
	if !(b < a && a < export) {
		t.Fatalf("grades not ordered in the score: B=%.4f A=%.4f Export=%.4f", b, a, export)
	}
	// Each step is the multiplier gap (0.2) at the fit weight.
	if math.Abs(export-a-0.25*0.2) > 1e-9 || math.Abs(a-b-0.25*0.2) > 1e-9 {
		t.Errorf("grade steps = %.4f, %.4f, want 0.05 each", export-a, a-b)
	}
}

func TestScoreBounds(t *testing.T) {
	c := testConstraint(t)
	p := offer.ProfileByName("analytical")

	tests := []struct {
		name  string
		offer offer.Offer
		round int
	}{
		{"price far above budget", testOffer(t, 500, 0), 0},
		{"price near zero", testOffer(t, 1, 0), 0},
		{"past deadline round", testOffer(t, 80, 15), 15},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := tt.offer
			o.Round = tt.round
			got := Score(o, c, p, 10, DefaultConfig())
			if got < 0 || got > 1 {
				t.Errorf("Score = %.6f outside [0,1]", got)
			}
		})
	}
}

func TestSubFloorQualityZeroesFit(t *testing.T) {
	c := testConstraint(t)
	c.QualityFloor = offer.GradeA
	p := offer.ProfileByName("analytical")

	o := testOffer(t, 80, 0)
	o.Grade = offer.GradeB

	got := Score(o, c, p, 10, DefaultConfig())
	want := (0.60*0.2 + 0.15*1) / 1.0 // fit term drops out entirely
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("Score = %.6f, want %.6f", got, want)
	}
}

func TestQuantityDeviationReducesFit(t *testing.T) {
	c := testConstraint(t)
	p := offer.ProfileByName("analytical")

	inRange := testOffer(t, 80, 0)
	over := testOffer(t, 80, 0)
	over.Quantity = 30 // 10 over a max of 20: quantity fit halves

	sIn := Score(inRange, c, p, 10, DefaultConfig())
	sOver := Score(over, c, p, 10, DefaultConfig())
	if sOver >= sIn {
		t.Errorf("out-of-range quantity scored %.4f >= in-range %.4f", sOver, sIn)
	}

	want := sIn - 0.25*0.8*0.5 // grade-A fit 0.8 -> 0.4 at weight 0.25
	if math.Abs(sOver-want) > 1e-9 {
		t.Errorf("Score = %.6f, want %.6f", sOver, want)
	}
}

func TestLateRoundsScoreLower(t *testing.T) {
	c := testConstraint(t)
	p := offer.ProfileByName("analytical")

	early := Score(testOffer(t, 80, 1), c, p, 10, DefaultConfig())
	late := Score(testOffer(t, 80, 8), c, p, 10, DefaultConfig())
	if late >= early {
		t.Errorf("late round scored %.4f >= early %.4f", late, early)
	}
}

func TestPatienceSoftensDecay(t *testing.T) {
	c := testConstraint(t)
	patient := offer.PersonalityProfile{RiskTolerance: 0.5, Patience: 1, Aggressiveness: 0.5}
	impatient := offer.PersonalityProfile{RiskTolerance: 0.5, Patience: 0, Aggressiveness: 0.5}

	o := testOffer(t, 80, 8)
	if Score(o, c, patient, 10, DefaultConfig()) <= Score(o, c, impatient, 10, DefaultConfig()) {
		t.Error("patience did not soften the deadline penalty")
	}
}

// #endregion terms
