package domain

import "testing"

func TestCardStatus_CanTransitionTo(t *testing.T) {
	cases := []struct {
		from, to CardStatus
		want     bool
	}{
		{StatusPending, StatusActive, true},
		{StatusActive, StatusBlockPending, true},
		{StatusActive, StatusBlocked, true},
		{StatusActive, StatusExpired, true},
		{StatusBlockPending, StatusBlocked, true},
		{StatusBlockPending, StatusActive, true},
		{StatusBlocked, StatusActive, false},
		{StatusExpired, StatusActive, false},
		{StatusPending, StatusBlocked, false},
		{StatusBlockPending, StatusExpired, false},
	}

	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.want {
			t.Errorf("%s -> %s: got %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestParseCardStatus(t *testing.T) {
	for _, valid := range []string{"PENDING", "ACTIVE", "BLOCK_PENDING", "BLOCKED", "EXPIRED"} {
		if _, ok := ParseCardStatus(valid); !ok {
			t.Errorf("expected %q to parse", valid)
		}
	}
	for _, invalid := range []string{"", "active", "FROZEN", "pending"} {
		if _, ok := ParseCardStatus(invalid); ok {
			t.Errorf("expected %q to be rejected", invalid)
		}
	}
}
