package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchingGiftTransitions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		from MatchingGiftStatus
		to   MatchingGiftStatus
		ok   bool
	}{
		{MatchPending, MatchSubmitted, true},
		{MatchSubmitted, MatchApproved, true},
		{MatchSubmitted, MatchDenied, true},
		{MatchApproved, MatchPaid, true},
		{MatchApproved, MatchDenied, true},

		{MatchPending, MatchApproved, false},
		{MatchPending, MatchPaid, false},
		{MatchPending, MatchDenied, false},
		{MatchSubmitted, MatchPaid, false},
		{MatchPaid, MatchDenied, false},
		{MatchDenied, MatchSubmitted, false},
		{MatchPaid, MatchPending, false},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.ok, tc.from.CanTransitionTo(tc.to),
			"%s -> %s", tc.from, tc.to)
	}
}
