package model

// Answer map keys accumulated by the dialogue engine. Free-form by design;
// these constants just keep the writers and the scoring policy in sync.
const (
	AnswerFullName        = "fullName"
	AnswerContact         = "contact"
	AnswerBestTime        = "bestTime"
	AnswerAccidentWhen    = "accidentWhen"
	AnswerInjured         = "injured"
	AnswerPainLevel       = "painLevel"
	AnswerHospitalized    = "hospitalized"
	AnswerFault           = "fault"
	AnswerOtherInsurance  = "otherInsurance"
	AnswerHasAttorney     = "hasAttorney"
	AnswerSeekingChange   = "seekingChange"
	AnswerInjuryType      = "injuryType"
	AnswerDescription     = "description"
	AnswerEvidenceOffered = "evidenceOffered"
	AnswerEvidencePlates  = "evidencePlates"
	AnswerEvidenceScene   = "evidenceScene"
	AnswerEvidenceDocs    = "evidenceDocs"
	AnswerScore           = "score"
)

// Canonical values for enumerated answers.
const (
	AnswerYes = "yes"
	AnswerNo  = "no"

	FaultOtherDriver = "other_driver"
	FaultShared      = "shared"
	FaultSelf        = "self"
)
