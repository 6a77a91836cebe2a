// Package balance computes per-member spending aggregates for a group.
// Everything here is pure: no I/O, no errors, nil inputs behave as empty
// collections and yield zero totals.
package balance

import (
	"math"
	"time"

	"github.com/splitkaro/bff-go/internal/domain"
)

// RoundCents rounds a monetary amount to 2 decimal places, halves away from
// zero.
func RoundCents(x float64) float64 {
	return math.Round(x*100) / 100
}

// Totals aggregates each member's own embedded expense list into one Balance
// per member, rounded to cents. Members without an expense list contribute a
// zero balance, never an error. Only usable with payloads that embed per-user
// expenses.
func Totals(members []domain.Member) []domain.Balance {
	balances := make([]domain.Balance, 0, len(members))
	for _, m := range members {
		var spent float64
		for _, e := range m.Expenses {
			spent += e.Amount
		}
		balances = append(balances, domain.Balance{
			UserID:     m.UserID,
			TotalSpent: RoundCents(spent),
		})
	}
	return balances
}

// FilteredTotals aggregates a flat expense list (typically one calendar
// month) against the member roster. Unlike Totals, results are NOT rounded:
// callers format for display.
func FilteredTotals(expenses []domain.Expense, members []domain.Member) []domain.Balance {
	balances := make([]domain.Balance, 0, len(members))
	for _, m := range members {
		var spent float64
		for _, e := range MemberExpenses(expenses, m.UserID, members) {
			spent += e.Amount
		}
		balances = append(balances, domain.Balance{UserID: m.UserID, TotalSpent: spent})
	}
	return balances
}

// MemberExpenses filters a flat expense list down to those attributable to
// userID. The match is deliberately permissive: upstream payloads are
// inconsistent about whether paidBy holds an identifier, a display name, or a
// username, and about identifier types. All comparisons are done on the
// canonical string forms.
func MemberExpenses(expenses []domain.Expense, userID string, members []domain.Member) []domain.Expense {
	if userID == "" {
		return nil
	}

	var member *domain.Member
	for i := range members {
		if members[i].UserID == userID {
			member = &members[i]
			break
		}
	}

	var out []domain.Expense
	for _, e := range expenses {
		switch {
		case e.PaidBy == userID,
			e.UserID == userID,
			member != nil && member.Name != "" && e.PaidBy == member.Name,
			member != nil && member.Username != "" && e.PaidBy == member.Username:
			out = append(out, e)
		}
	}
	return out
}

// Total sums an arbitrary expense collection. Raw float sum, no rounding.
func Total(expenses []domain.Expense) float64 {
	var total float64
	for _, e := range expenses {
		total += e.Amount
	}
	return total
}

// InMonth returns the expenses whose payment date falls in the given calendar
// month. Expenses with unparsable dates are skipped.
func InMonth(expenses []domain.Expense, year int, month time.Month) []domain.Expense {
	var out []domain.Expense
	for _, e := range expenses {
		d, err := time.Parse("2006-01-02", e.PaymentDate)
		if err != nil {
			continue
		}
		if d.Year() == year && d.Month() == month {
			out = append(out, e)
		}
	}
	return out
}

// Percent returns part as a percentage of total, and 0 when total is zero so
// empty groups never surface NaN or Inf.
func Percent(part, total float64) float64 {
	if total == 0 {
		return 0
	}
	return part / total * 100
}

// ForUser picks the balance entry for userID out of a computed balance list,
// or 0 when the user has none.
func ForUser(balances []domain.Balance, userID string) float64 {
	for _, b := range balances {
		if b.UserID == userID {
			return b.TotalSpent
		}
	}
	return 0
}
