package offer

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// #region party

// Party identifies which side of the negotiation proposed an offer.
type Party string

const (
	PartyBuyer  Party = "buyer"
	PartySeller Party = "seller"
)

// Valid reports whether the party is one of the two known sides.
func (p Party) Valid() bool {
	return p == PartyBuyer || p == PartySeller
}

// #endregion party

// #region quality-grade

// QualityGrade is the graded quality of the negotiated good, ordered
// B < A < Export.
type QualityGrade string

const (
	GradeB      QualityGrade = "B"
	GradeA      QualityGrade = "A"
	GradeExport QualityGrade = "Export"
)

var gradeRank = map[QualityGrade]int{
	GradeB:      0,
	GradeA:      1,
	GradeExport: 2,
}

// Valid reports whether the grade is a known enum value.
func (g QualityGrade) Valid() bool {
	_, ok := gradeRank[g]
	return ok
}

// AtLeast reports whether g meets or exceeds the floor grade.
func (g QualityGrade) AtLeast(floor QualityGrade) bool {
	return gradeRank[g] >= gradeRank[floor]
}

// Multiplier returns the grade's price adjustment factor
// (Export 1.0, A 0.8, B 0.6).
func (g QualityGrade) Multiplier() float64 {
	switch g {
	case GradeExport:
		return 1.0
	case GradeA:
		return 0.8
	case GradeB:
		return 0.6
	}
	return 0.7
}

// #endregion quality-grade

// #region offer

// Offer is one immutable proposal in a negotiation. Once appended to
// the memory log it is never mutated or removed.
type Offer struct {
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
	Grade    QualityGrade    `json:"grade"`
	Round    int             `json:"round"`
	Proposer Party           `json:"proposer"`
}

// Validate checks the offer's own fields, independent of any session.
// Turn-order checks belong to the session controller.
func (o Offer) Validate() error {
	if !o.Price.IsPositive() {
		return fmt.Errorf("non-positive price %s", o.Price)
	}
	if o.Quantity <= 0 {
		return fmt.Errorf("non-positive quantity %d", o.Quantity)
	}
	if !o.Grade.Valid() {
		return fmt.Errorf("unknown quality grade %q", o.Grade)
	}
	if o.Round < 0 {
		return fmt.Errorf("negative round %d", o.Round)
	}
	if !o.Proposer.Valid() {
		return fmt.Errorf("unknown proposer %q", o.Proposer)
	}
	return nil
}

// #endregion offer
