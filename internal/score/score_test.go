package score

import (
	"testing"

	"lead-intake-backend/internal/model"
)

func TestComputeIsDeterministic(t *testing.T) {
	answers := map[string]string{
		model.AnswerFault:          model.FaultOtherDriver,
		model.AnswerInjured:        model.AnswerYes,
		model.AnswerPainLevel:      "7",
		model.AnswerOtherInsurance: model.AnswerYes,
	}
	first := Compute(answers)
	for i := 0; i < 5; i++ {
		if got := Compute(answers); got != first {
			t.Fatalf("Compute varied: %d then %d", first, got)
		}
	}
	if first != Max {
		t.Fatalf("full-factor score = %d, want clamp to %d", first, Max)
	}
}

func TestComputeClampsLow(t *testing.T) {
	answers := map[string]string{model.AnswerFault: model.FaultSelf}
	if got := Compute(answers); got != Min {
		t.Fatalf("self-fault score = %d, want %d", got, Min)
	}
}

func TestComputeFactors(t *testing.T) {
	cases := []struct {
		name    string
		answers map[string]string
		want    int
	}{
		{"empty", map[string]string{}, 10},
		{"other driver", map[string]string{model.AnswerFault: model.FaultOtherDriver}, 50},
		{"shared fault", map[string]string{model.AnswerFault: model.FaultShared}, 20},
		{"injured only", map[string]string{model.AnswerInjured: model.AnswerYes}, 40},
		{"low pain no bonus", map[string]string{model.AnswerPainLevel: "4"}, 10},
		{"high pain bonus", map[string]string{model.AnswerPainLevel: "6"}, 20},
		{"insured other driver", map[string]string{model.AnswerOtherInsurance: model.AnswerYes}, 20},
	}
	for _, tc := range cases {
		if got := Compute(tc.answers); got != tc.want {
			t.Errorf("%s: Compute = %d, want %d", tc.name, got, tc.want)
		}
	}
}

func TestDisqualifiedForcesZero(t *testing.T) {
	answers := map[string]string{
		model.AnswerFault:         model.FaultOtherDriver,
		model.AnswerInjured:       model.AnswerYes,
		model.AnswerHasAttorney:   model.AnswerYes,
		model.AnswerSeekingChange: model.AnswerNo,
	}
	if !Disqualified(answers) {
		t.Fatal("represented-and-staying lead not disqualified")
	}
	if got := Compute(answers); got != 0 {
		t.Fatalf("disqualified score = %d, want 0", got)
	}

	answers[model.AnswerSeekingChange] = model.AnswerYes
	if Disqualified(answers) {
		t.Fatal("lead seeking new representation marked disqualified")
	}
}

func TestRoute(t *testing.T) {
	if Route(EscalateThreshold) != DecisionEscalate {
		t.Errorf("Route(%d) != escalate", EscalateThreshold)
	}
	if Route(EscalateThreshold-1) != DecisionPacket {
		t.Errorf("Route(%d) != packet", EscalateThreshold-1)
	}
	if Route(0) != DecisionPacket {
		t.Error("Route(0) != packet")
	}
}
