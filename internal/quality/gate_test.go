package quality

import "testing"

func TestIsLowQualityEmptyAndWhitespace(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\t  "} {
		if !IsLowQuality(text) {
			t.Fatalf("expected %q to be low quality", text)
		}
	}
}

func TestIsLowQualityLengthFloor(t *testing.T) {
	if !IsLowQuality("Too short to be useful.") {
		t.Fatalf("expected text below the length floor to be low quality")
	}
	if IsLowQuality("Ticket to Ride is a classic fun gateway game for new players.") {
		t.Fatalf("expected a real answer to be acceptable")
	}
}

func TestIsLowQualityPlaceholderPhrases(t *testing.T) {
	cases := []string{
		"Let me think about that for a second, this is a tricky one!",
		"I'm looking into that for you right now, hold tight while I gather details.",
		"Sure! LOOKING INTO THAT as we speak, check back with me shortly please.",
	}
	for _, text := range cases {
		if !IsLowQuality(text) {
			t.Fatalf("expected placeholder %q to be low quality", text)
		}
	}
}

func TestIsLowQualityDeterministic(t *testing.T) {
	text := "Wingspan plays great at 2-3 players and scales well with the Oceania expansion."
	first := IsLowQuality(text)
	for i := 0; i < 100; i++ {
		if IsLowQuality(text) != first {
			t.Fatalf("verdict changed between calls")
		}
	}
	if first {
		t.Fatalf("expected acceptable verdict for %q", text)
	}
}
