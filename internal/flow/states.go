package flow

// State identifies one node of the dialogue graph. States are named, not
// numbered: unrelated branches can never collide by reusing an integer.
type State string

const (
	StateGreeting        State = "GREETING"
	StatePhone           State = "PHONE"
	StateSMSContact      State = "SMS_CONTACT"
	StateCallbackContact State = "CALLBACK_CONTACT"
	StateCallbackTime    State = "CALLBACK_TIME"
	StateScheduleContact State = "SCHEDULE_CONTACT"
	StateScheduleTime    State = "SCHEDULE_TIME"
	StateFastTrackName   State = "FASTTRACK_NAME"
	StateValuationFollow State = "VALUATION_FOLLOWUP"
	StateMenu            State = "MENU"

	// "At the scene" evidence-capture loop. Funnels back into the shared
	// qualification sub-graph at StateInjuryTiming.
	StateSceneSafety State = "SCENE_SAFETY"
	StateScenePlates State = "SCENE_PLATES"
	StateScenePhoto  State = "SCENE_PHOTO"
	StateSceneDocs   State = "SCENE_DOCS"

	// Shared qualification sub-graph. Every entry mode converges here.
	StateInjuryTiming   State = "INJURY_TIMING"
	StateInjured        State = "INJURED"
	StatePainLevel      State = "PAIN_LEVEL"
	StateHospitalized   State = "HOSPITALIZED"
	StateFault          State = "FAULT"
	StateOtherInsurance State = "OTHER_INSURANCE"
	StateRepresentation State = "REPRESENTATION"
	StateSeekingChange  State = "SEEKING_CHANGE"
	StateInjuryType     State = "INJURY_TYPE"
	StateDescription    State = "DESCRIPTION"
	StateEvidenceOffer  State = "EVIDENCE_OFFER"

	// Post-scoring states.
	StateConnecting    State = "CONNECTING" // waiting for a live specialist
	StateFallbackOffer State = "FALLBACK_OFFER"
	StateDisqualified  State = "DISQUALIFIED"
	StateDone          State = "DONE"
)

// EntryMode selects the starting node for a new session. All modes share one
// graph; they are different doors into the same house.
type EntryMode string

const (
	EntryStandard  EntryMode = "standard"
	EntrySMS       EntryMode = "sms"
	EntryCallback  EntryMode = "callback"
	EntrySchedule  EntryMode = "schedule"
	EntryFastTrack EntryMode = "fasttrack"
	EntryValuation EntryMode = "valuation"
	EntryAtScene   EntryMode = "at_scene"
	EntryMenu      EntryMode = "menu"
)

var entryStates = map[EntryMode]State{
	EntryStandard:  StateGreeting,
	EntrySMS:       StateSMSContact,
	EntryCallback:  StateCallbackContact,
	EntrySchedule:  StateScheduleContact,
	EntryFastTrack: StateFastTrackName,
	EntryValuation: StateValuationFollow,
	EntryAtScene:   StateSceneSafety,
	EntryMenu:      StateMenu,
}

// StartState resolves an entry mode to its starting node.
func StartState(mode EntryMode) (State, bool) {
	state, ok := entryStates[mode]
	return state, ok
}

// Terminal reports whether the machine produces no further automated prompts
// from this state. StateConnecting is terminal for the machine: from there the
// session belongs to the live-takeover path.
func Terminal(state State) bool {
	switch state {
	case StateConnecting, StateDisqualified, StateDone:
		return true
	}
	return false
}

// AwaitsUpload reports whether the state advances only on an evidence upload.
func AwaitsUpload(state State) bool {
	switch state {
	case StateScenePlates, StateScenePhoto, StateSceneDocs:
		return true
	}
	return false
}
