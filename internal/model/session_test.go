package model

import "testing"

func TestValidStatusTransition(t *testing.T) {
	cases := []struct {
		from, to SessionStatus
		want     bool
	}{
		{SessionStatusAutomated, SessionStatusLive, true},
		{SessionStatusAutomated, SessionStatusClosed, true},
		{SessionStatusLive, SessionStatusClosed, true},
		{SessionStatusLive, SessionStatusAutomated, false},
		{SessionStatusClosed, SessionStatusLive, false},
		{SessionStatusClosed, SessionStatusAutomated, false},
		{SessionStatusAutomated, SessionStatusAutomated, false},
	}
	for _, tc := range cases {
		if got := ValidStatusTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("ValidStatusTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}
