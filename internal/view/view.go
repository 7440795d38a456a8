// Package view computes the console's derived read models. Everything here
// is pure and recomputed from freshly fetched data on every call.
package view

import (
	"sort"
	"strings"
	"time"

	"github.com/apedo/eglise-console/internal/domain"
)

// Age buckets.
const (
	childUntil = 15
	youthUntil = 35
)

// Age is the calendar-aware number of whole years between birth and ref:
// one less when ref's month/day precedes the birthday.
func Age(birth, ref time.Time) int {
	age := ref.Year() - birth.Year()
	if ref.Month() < birth.Month() || (ref.Month() == birth.Month() && ref.Day() < birth.Day()) {
		age--
	}
	return age
}

// Demographics breaks the registry down by gender, age bucket and arrival.
// Members without a readable birth date count in no age bucket, and members
// without a recognised gender in neither Men nor Women.
func Demographics(members []domain.Member, now time.Time) domain.Demographics {
	d := domain.Demographics{Total: len(members)}
	for _, m := range members {
		switch m.Gender {
		case domain.GenderMale:
			d.Men++
		case domain.GenderFemale:
			d.Women++
		}

		if birth, ok := domain.ParseDate(m.BirthDate); ok {
			switch age := Age(birth, now); {
			case age < childUntil:
				d.Children++
			case age < youthUntil:
				d.Youth++
			default:
				d.Adults++
			}
		}

		if arrival, ok := domain.ParseDate(m.ArrivalDate); ok &&
			arrival.Month() == now.Month() && arrival.Year() == now.Year() {
			d.NewThisMonth++
		}
	}
	return d
}

// TotalBalance is the cash plus bank balance as computed by the backend.
// It is never rebuilt from the transaction list.
func TotalBalance(stats domain.TreasuryStats) float64 {
	return stats.CurrentCaisseBalance + stats.CurrentBanqueBalance
}

// SearchMembers filters by full name or matricule, case-insensitively, and
// sorts newest (highest id) first. An empty term keeps everyone.
func SearchMembers(members []domain.Member, term string) []domain.Member {
	term = strings.ToLower(strings.TrimSpace(term))

	out := make([]domain.Member, 0, len(members))
	for _, m := range members {
		if term == "" ||
			strings.Contains(strings.ToLower(m.FullName()), term) ||
			strings.Contains(strings.ToLower(m.Matricule), term) {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}
