package inventory

import (
	"sort"
	"time"

	"github.com/greenbite/engine/internal/domain/ingredient"
)

// expiringSoonDays bounds the window used to flag lots nearing expiry.
const expiringSoonDays = 3

// Snapshot is an immutable view of a user's active lots taken at plan time.
// Lots are held in ascending expiry order so earliest-expiring stock is
// always considered first.
type Snapshot struct {
	today time.Time
	lots  []*Lot
}

// NewSnapshot filters lots down to the active ones as of today and orders
// them by ascending expiry date.
func NewSnapshot(lots []*Lot, today time.Time) *Snapshot {
	active := make([]*Lot, 0, len(lots))
	for _, l := range lots {
		if l.Active(today) {
			active = append(active, l)
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		return active[i].ExpiryDate.Before(active[j].ExpiryDate)
	})
	return &Snapshot{today: today, lots: active}
}

// Lots returns the active lots in ascending expiry order.
func (s *Snapshot) Lots() []*Lot {
	return s.lots
}

// Empty reports whether no active stock remains.
func (s *Snapshot) Empty() bool {
	return len(s.lots) == 0
}

// Tokens returns the synonym-expanded token set over all active lots.
// Recipe ingredients match against this set.
func (s *Snapshot) Tokens() map[string]struct{} {
	tokens := make(map[string]struct{})
	for _, l := range s.lots {
		for _, t := range ingredient.ExpandTokens(l.Name) {
			tokens[t] = struct{}{}
		}
	}
	return tokens
}

// QuantityMap sums remaining quantity per exact normalized token. Synonym
// variants keep separate buckets here; only matching expands synonyms.
func (s *Snapshot) QuantityMap() map[string]float64 {
	q := make(map[string]float64)
	for _, l := range s.lots {
		if l.Token == "" {
			continue
		}
		q[l.Token] += l.Quantity
	}
	return q
}

// ExpiryWeight scores urgency for a token: lots expiring sooner weigh more.
// The weight is max(1, 30 - daysLeft) of the earliest-expiring lot carrying
// the token, and zero when no lot matches.
func (s *Snapshot) ExpiryWeight(token string) float64 {
	for _, l := range s.lots {
		if l.Token != token {
			continue
		}
		w := 30 - l.DaysLeft(s.today)
		if w < 1 {
			w = 1
		}
		return float64(w)
	}
	return 0
}

// ExpiringSoon returns lots whose expiry falls within the next few days.
func (s *Snapshot) ExpiringSoon() []*Lot {
	var soon []*Lot
	for _, l := range s.lots {
		if l.DaysLeft(s.today) <= expiringSoonDays {
			soon = append(soon, l)
		}
	}
	return soon
}
