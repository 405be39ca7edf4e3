package credits

import "fmt"

// InsufficientCreditsError is returned when a debit would take the balance
// below zero. The balance and ledger are left untouched.
type InsufficientCreditsError struct {
	Required  int
	Available int
}

func (e *InsufficientCreditsError) Error() string {
	return fmt.Sprintf("insufficient credits: required %d, available %d", e.Required, e.Available)
}
