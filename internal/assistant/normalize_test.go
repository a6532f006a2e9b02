package assistant

import "testing"

func TestClassifyProse(t *testing.T) {
	shape, payload := Classify("Catan is a great entry point for new players.")
	if shape != ShapeProse {
		t.Fatalf("expected prose, got %v", shape)
	}
	if payload != "Catan is a great entry point for new players." {
		t.Fatalf("prose payload changed: %q", payload)
	}
}

func TestClassifyWrappedEnvelope(t *testing.T) {
	raw := `{"message": "Try Azul, it plays in under 45 minutes."}`
	shape, payload := Classify(raw)
	if shape != ShapeWrappedEnvelope {
		t.Fatalf("expected envelope, got %v", shape)
	}
	if payload != "Try Azul, it plays in under 45 minutes." {
		t.Fatalf("unexpected payload: %q", payload)
	}
}

func TestClassifyLeakedCriteria(t *testing.T) {
	raw := `{"game_name": "Catan", "min_players": 3, "max_players": 4}`
	shape, _ := Classify(raw)
	if shape != ShapeLeakedCriteria {
		t.Fatalf("expected leaked criteria, got %v", shape)
	}
	if got := Normalize(raw); got != leakPlaceholder {
		t.Fatalf("expected leak placeholder, got %q", got)
	}
}

func TestClassifyUnparseable(t *testing.T) {
	raw := `{"this is not valid json`
	shape, payload := Classify(raw)
	if shape != ShapeUnparseable {
		t.Fatalf("expected unparseable, got %v", shape)
	}
	if payload != raw {
		t.Fatalf("unparseable payload changed: %q", payload)
	}
	if got := Normalize(raw); got != raw {
		t.Fatalf("unparseable text should pass through, got %q", got)
	}
}

func TestClassifyStructuredButUnrelated(t *testing.T) {
	raw := `{"weather": "sunny", "day": "tuesday", "mood": "good"}`
	shape, _ := Classify(raw)
	if shape == ShapeLeakedCriteria {
		t.Fatalf("unrelated object misclassified as leaked criteria")
	}
	if got := Normalize(raw); got != raw {
		t.Fatalf("unrelated object should pass through, got %q", got)
	}
}

func TestNormalizeEnvelopeUnwraps(t *testing.T) {
	raw := `{"response": "Pandemic is fully cooperative, so nobody is eliminated."}`
	if got := Normalize(raw); got != "Pandemic is fully cooperative, so nobody is eliminated." {
		t.Fatalf("unexpected normalized text: %q", got)
	}
}
