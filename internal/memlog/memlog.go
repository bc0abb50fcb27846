// Package memlog provides the append-only, round-indexed memory log of
// every offer exchanged in one negotiation session. Entries are never
// mutated or removed.
package memlog

import (
	"github.com/procurebot/negotiator/internal/offer"
)

// #region log

// Log records offers in arrival order.
type Log struct {
	entries []offer.Offer
}

// New returns an empty log.
func New() *Log {
	return &Log{}
}

// Append records one offer. Offers are stored by value; callers cannot
// reach back into the log to change history.
func (l *Log) Append(o offer.Offer) {
	l.entries = append(l.entries, o)
}

// Len returns the number of recorded offers.
func (l *Log) Len() int {
	return len(l.entries)
}

// Entries returns a copy of the full history in arrival order.
func (l *Log) Entries() []offer.Offer {
	out := make([]offer.Offer, len(l.entries))
	copy(out, l.entries)
	return out
}

// ByParty returns the offers proposed by one party, in round order.
func (l *Log) ByParty(p offer.Party) []offer.Offer {
	var out []offer.Offer
	for _, e := range l.entries {
		if e.Proposer == p {
			out = append(out, e)
		}
	}
	return out
}

// Last returns the most recent offer by the given party.
func (l *Log) Last(p offer.Party) (offer.Offer, bool) {
	for i := len(l.entries) - 1; i >= 0; i-- {
		if l.entries[i].Proposer == p {
			return l.entries[i], true
		}
	}
	return offer.Offer{}, false
}

// #endregion log
