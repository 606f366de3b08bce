// Package score implements the lead scoring and routing policy. Scoring is a
// pure function of the accumulated answer map so the checkpoint can recompute
// it at any time and always get the same result.
package score

import (
	"strconv"

	"lead-intake-backend/internal/model"
)

const (
	Min = 0
	Max = 95

	base = 10

	// EscalateThreshold is the score at or above which a lead is handed to
	// a live specialist instead of the informational packet.
	EscalateThreshold = 50
)

type Decision string

const (
	DecisionEscalate Decision = "escalate"
	DecisionPacket   Decision = "packet"
)

// Disqualified reports whether the visitor already retains counsel and is not
// seeking a change. Such leads score 0 regardless of every other factor.
func Disqualified(answers map[string]string) bool {
	return answers[model.AnswerHasAttorney] == model.AnswerYes &&
		answers[model.AnswerSeekingChange] != model.AnswerYes
}

// Compute returns the lead score clamped to [Min, Max].
func Compute(answers map[string]string) int {
	if Disqualified(answers) {
		return 0
	}

	total := base

	switch answers[model.AnswerFault] {
	case model.FaultOtherDriver:
		total += 40
	case model.FaultShared:
		total += 10
	case model.FaultSelf:
		total -= 50
	}

	if answers[model.AnswerInjured] == model.AnswerYes {
		total += 30
	}
	if level, err := strconv.Atoi(answers[model.AnswerPainLevel]); err == nil && level >= 6 {
		total += 10
	}
	if answers[model.AnswerOtherInsurance] == model.AnswerYes {
		total += 10
	}

	if total < Min {
		return Min
	}
	if total > Max {
		return Max
	}
	return total
}

// Route maps a computed score onto the conversational continuation.
func Route(total int) Decision {
	if total >= EscalateThreshold {
		return DecisionEscalate
	}
	return DecisionPacket
}
