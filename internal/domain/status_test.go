package domain

import "testing"

func TestValidTransition_AllowedPath(t *testing.T) {
	if !ValidTransition(StatusWaiting, StatusServing) {
		t.Fatalf("WAITING -> SERVING must be allowed")
	}
	if !ValidTransition(StatusServing, StatusServed) {
		t.Fatalf("SERVING -> SERVED must be allowed")
	}
}

func TestValidTransition_RejectsBackwardAndSkips(t *testing.T) {
	cases := [][2]string{
		{StatusServing, StatusWaiting}, // backward
		{StatusServed, StatusServing},  // out of terminal
		{StatusServed, StatusWaiting},  // out of terminal
		{StatusWaiting, StatusServed},  // skip
		{StatusWaiting, StatusWaiting}, // self loop
		{StatusServing, StatusServing}, // self loop
	}
	for _, c := range cases {
		if ValidTransition(c[0], c[1]) {
			t.Errorf("%s -> %s must be rejected", c[0], c[1])
		}
	}
}

func TestValidTransition_UnknownStatus(t *testing.T) {
	if ValidTransition("CANCELLED", StatusServing) {
		t.Fatalf("unknown source status must be rejected")
	}
	if ValidTransition(StatusWaiting, "CANCELLED") {
		t.Fatalf("unknown target status must be rejected")
	}
}

func TestKnownStatus(t *testing.T) {
	for _, s := range []string{StatusWaiting, StatusServing, StatusServed} {
		if !KnownStatus(s) {
			t.Errorf("KnownStatus(%q) = false, want true", s)
		}
	}
	if KnownStatus("waiting") {
		t.Fatalf("status comparison must be case-sensitive")
	}
	if KnownStatus("") {
		t.Fatalf("empty status must not be known")
	}
}
