package memlog

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/procurebot/negotiator/internal/offer"
)

func mkOffer(t *testing.T, price int64, round int, p offer.Party) offer.Offer {
	t.Helper()
	return offer.Offer{
		Price:    decimal.NewFromInt(price),
		Quantity: 10,
		Grade:    offer.GradeA,
		Round:    round,
		Proposer: p,
	}
}

func TestAppendPreservesOrder(t *testing.T) {
	l := New()
	l.Append(mkOffer(t, 100, 0, offer.PartySeller))
	l.Append(mkOffer(t, 70, 0, offer.PartyBuyer))
	l.Append(mkOffer(t, 95, 1, offer.PartySeller))

	if l.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", l.Len())
	}

	entries := l.Entries()
	wantPrices := []int64{100, 70, 95}
	for i, want := range wantPrices {
		if !entries[i].Price.Equal(decimal.NewFromInt(want)) {
			t.Errorf("entry %d price = %s, want %d", i, entries[i].Price, want)
		}
	}
}

func TestEntriesReturnsCopy(t *testing.T) {
	l := New()
	l.Append(mkOffer(t, 100, 0, offer.PartySeller))

	entries := l.Entries()
	entries[0].Price = decimal.NewFromInt(1)

	if !l.Entries()[0].Price.Equal(decimal.NewFromInt(100)) {
		t.Error("mutating the returned slice changed the log")
	}
}

func TestByParty(t *testing.T) {
	l := New()
	l.Append(mkOffer(t, 100, 0, offer.PartySeller))
	l.Append(mkOffer(t, 70, 0, offer.PartyBuyer))
	l.Append(mkOffer(t, 95, 1, offer.PartySeller))
	l.Append(mkOffer(t, 75, 1, offer.PartyBuyer))

	buyers := l.ByParty(offer.PartyBuyer)
	if len(buyers) != 2 {
		t.Fatalf("ByParty(buyer) len = %d, want 2", len(buyers))
	}
	if !buyers[0].Price.Equal(decimal.NewFromInt(70)) || !buyers[1].Price.Equal(decimal.NewFromInt(75)) {
		t.Errorf("buyer prices = %s, %s", buyers[0].Price, buyers[1].Price)
	}
}

func TestLast(t *testing.T) {
	l := New()
	if _, ok := l.Last(offer.PartyBuyer); ok {
		t.Error("Last on empty log reported an entry")
	}

	l.Append(mkOffer(t, 100, 0, offer.PartySeller))
	if _, ok := l.Last(offer.PartyBuyer); ok {
		t.Error("Last(buyer) found a seller entry")
	}

	l.Append(mkOffer(t, 70, 0, offer.PartyBuyer))
	l.Append(mkOffer(t, 75, 1, offer.PartyBuyer))

	last, ok := l.Last(offer.PartyBuyer)
	if !ok {
		t.Fatal("Last(buyer) found nothing")
	}
	if !last.Price.Equal(decimal.NewFromInt(75)) {
		t.Errorf("Last(buyer) price = %s, want 75", last.Price)
	}
}
