package domain

import "github.com/jonboulle/clockwork"

// clock is the package time source used for ResolvedAt stamps. Tests freeze
// it via SetClock to get reproducible output documents.
var clock = clockwork.NewRealClock()

// SetClock swaps the package time source. Pass nil to restore the real clock.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}
