// Package flow implements the intake dialogue state machine. Advance is pure:
// it maps (state, input, answers, language) to the next state, the automated
// replies to send, and a list of side-effect descriptors for the caller to
// execute. It never touches storage, timers, or the network itself.
package flow

import (
	"strconv"
	"strings"

	"lead-intake-backend/internal/locale"
	"lead-intake-backend/internal/model"
	"lead-intake-backend/internal/score"
	"lead-intake-backend/internal/validate"
)

// Input is one visitor submission: either text or the outcome of an evidence
// upload performed by the storage collaborator.
type Input struct {
	Text        string
	UploadURL   string
	UploadError bool
}

// Option is one quick-reply button offered alongside a prompt.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type EffectKind string

const (
	EffectEscalate        EffectKind = "escalate"
	EffectSubmitLead      EffectKind = "submit_lead"
	EffectNotify          EffectKind = "notify"
	EffectSwitchLanguage  EffectKind = "switch_language"
	EffectDelayedFallback EffectKind = "delayed_fallback"
	EffectClose           EffectKind = "close"
)

// Effect describes a side effect the caller must carry out after persisting
// the turn: arm the takeover path, submit the lead, fire a webhook, switch
// the session language, schedule the delayed fallback offer, or close.
type Effect struct {
	Kind     EffectKind
	Event    string // notify event name
	Target   string // language tag or close reason
	Score    int
	Decision score.Decision
}

type Result struct {
	Next     State
	Replies  []string
	Options  []Option
	Answers  map[string]string
	Effects  []Effect
	Advanced bool
}

// Enter produces the opening prompt for a fresh session in the given mode.
func Enter(mode EntryMode, lang string) (Result, bool) {
	state, ok := StartState(mode)
	if !ok {
		return Result{}, false
	}
	c := locale.ForLanguage(lang)
	res := Result{
		Next:     state,
		Replies:  []string{promptFor(c, state, nil)},
		Options:  optionsFor(c, state),
		Answers:  map[string]string{},
		Advanced: true,
	}
	if mode == EntryFastTrack {
		res.Effects = append(res.Effects, Effect{Kind: EffectNotify, Event: "fasttrack.entered"})
	}
	return res, true
}

// Advance runs one dialogue step. On validation failure the state does not
// change: the caller still records the visitor's own turn, and the result
// carries the state's validation-error prompt plus the same options again.
func Advance(current State, in Input, answers map[string]string, lang string) Result {
	updated := cloneAnswers(answers)
	c := locale.ForLanguage(lang)

	// Language switching pre-empts state parsing entirely.
	if in.UploadURL == "" && !in.UploadError {
		if target, ok := locale.SwitchTarget(lang, in.Text); ok {
			tc := locale.ForLanguage(target)
			return Result{
				Next:     current,
				Replies:  []string{tc.Text(locale.PromptLanguageSwitched), promptFor(tc, current, updated)},
				Options:  optionsFor(tc, current),
				Answers:  updated,
				Effects:  []Effect{{Kind: EffectSwitchLanguage, Target: target}},
				Advanced: false,
			}
		}
	}

	handler, ok := handlers[current]
	if !ok {
		// Terminal states produce nothing; relay-only from here.
		return Result{Next: current, Answers: updated}
	}

	step, valid := handler(c, in, updated)
	if !valid {
		return Result{
			Next:     current,
			Replies:  []string{c.Text(step.errKey)},
			Options:  optionsFor(c, current),
			Answers:  updated,
			Advanced: false,
		}
	}

	res := Result{
		Next:     step.next,
		Replies:  step.replies,
		Answers:  updated,
		Effects:  step.effects,
		Advanced: true,
	}
	if !step.skipPrompt && !Terminal(step.next) {
		res.Replies = append(res.Replies, promptFor(c, step.next, updated))
		res.Options = optionsFor(c, step.next)
	}
	return res
}

// step is what a state handler returns on success; errKey is only read when
// the handler reports invalid input.
type step struct {
	next       State
	replies    []string
	effects    []Effect
	errKey     locale.Key
	skipPrompt bool
}

type stateHandler func(c *locale.Catalog, in Input, answers map[string]string) (step, bool)

var handlers map[State]stateHandler

func init() {
	handlers = map[State]stateHandler{
		StateGreeting:        nameHandler(StatePhone),
		StateFastTrackName:   nameHandler(StatePhone),
		StatePhone:           contactHandler(StateInjuryTiming),
		StateSMSContact:      contactHandler(StateInjuryTiming),
		StateCallbackContact: contactHandler(StateCallbackTime),
		StateScheduleContact: contactHandler(StateScheduleTime),
		StateCallbackTime:    bestTimeHandler(StateInjuryTiming),
		StateScheduleTime:    bestTimeHandler(StateInjuryTiming),
		StateValuationFollow: handleValuationFollow,
		StateMenu:            handleMenu,
		StateSceneSafety:     handleSceneSafety,
		StateScenePlates:     uploadHandler(model.AnswerEvidencePlates, StateScenePhoto),
		StateScenePhoto:      uploadHandler(model.AnswerEvidenceScene, StateSceneDocs),
		StateSceneDocs:       uploadHandler(model.AnswerEvidenceDocs, StateInjuryTiming),
		StateInjuryTiming:    choiceHandler(model.AnswerAccidentWhen, StateInjured),
		StateInjured:         handleInjured,
		StatePainLevel:       handlePainLevel,
		StateHospitalized:    yesNoHandler(model.AnswerHospitalized, StateFault),
		StateFault:           choiceHandler(model.AnswerFault, StateOtherInsurance),
		StateOtherInsurance:  yesNoHandler(model.AnswerOtherInsurance, StateRepresentation),
		StateRepresentation:  handleRepresentation,
		StateSeekingChange:   handleSeekingChange,
		StateInjuryType:      choiceHandler(model.AnswerInjuryType, StateDescription),
		StateDescription:     handleDescription,
		StateEvidenceOffer:   handleEvidenceOffer,
		StateFallbackOffer:   handleFallbackOffer,
	}
}

func nameHandler(next State) stateHandler {
	return func(c *locale.Catalog, in Input, answers map[string]string) (step, bool) {
		name, ok := validate.Name(in.Text)
		if !ok {
			return step{errKey: locale.ErrName}, false
		}
		answers[model.AnswerFullName] = name
		return step{next: next}, true
	}
}

func contactHandler(next State) stateHandler {
	return func(c *locale.Catalog, in Input, answers map[string]string) (step, bool) {
		contact, ok := validate.Contact(in.Text)
		if !ok {
			return step{errKey: locale.ErrContact}, false
		}
		answers[model.AnswerContact] = contact
		return step{next: next}, true
	}
}

func bestTimeHandler(next State) stateHandler {
	return func(c *locale.Catalog, in Input, answers map[string]string) (step, bool) {
		text, ok := validate.FreeText(in.Text)
		if !ok {
			return step{errKey: locale.ErrChoice}, false
		}
		answers[model.AnswerBestTime] = text
		return step{next: next}, true
	}
}

func yesNoHandler(key string, next State) stateHandler {
	return func(c *locale.Catalog, in Input, answers map[string]string) (step, bool) {
		yes, ok := validate.YesNo(in.Text)
		if !ok {
			return step{errKey: locale.ErrYesNo}, false
		}
		answers[key] = yesNoValue(yes)
		return step{next: next}, true
	}
}

func choiceHandler(key string, next State) stateHandler {
	return func(c *locale.Catalog, in Input, answers map[string]string) (step, bool) {
		value, ok := matchChoice(in.Text, optionsForKey(c, key))
		if !ok {
			return step{errKey: locale.ErrChoice}, false
		}
		answers[key] = value
		return step{next: next}, true
	}
}

func uploadHandler(key string, next State) stateHandler {
	return func(c *locale.Catalog, in Input, answers map[string]string) (step, bool) {
		if in.UploadError {
			return step{errKey: locale.PromptSceneUploadFail}, false
		}
		// Text never satisfies an evidence step; only an upload does.
		if in.UploadURL == "" {
			return step{errKey: locale.ErrUploadRequired}, false
		}
		answers[key] = in.UploadURL
		return step{next: next}, true
	}
}

func handleValuationFollow(c *locale.Catalog, in Input, answers map[string]string) (step, bool) {
	yes, ok := validate.YesNo(in.Text)
	if !ok {
		return step{errKey: locale.ErrYesNo}, false
	}
	if yes {
		return step{
			next:       StateConnecting,
			replies:    []string{c.Text(locale.PromptConnecting)},
			effects:    []Effect{{Kind: EffectEscalate}, {Kind: EffectNotify, Event: "session.escalated"}},
			skipPrompt: true,
		}, true
	}
	return step{next: StateMenu}, true
}

func handleMenu(c *locale.Catalog, in Input, answers map[string]string) (step, bool) {
	value, ok := matchChoice(in.Text, optionsFor(c, StateMenu))
	if !ok {
		return step{errKey: locale.ErrChoice}, false
	}
	switch value {
	case "callback":
		return step{next: StateCallbackContact}, true
	case "schedule":
		return step{next: StateScheduleContact}, true
	case "scene":
		return step{next: StateSceneSafety}, true
	default:
		return step{next: StateGreeting}, true
	}
}

func handleSceneSafety(c *locale.Catalog, in Input, answers map[string]string) (step, bool) {
	yes, ok := validate.YesNo(in.Text)
	if !ok {
		return step{errKey: locale.ErrYesNo}, false
	}
	if !yes {
		// Not a validation failure: acknowledge, point at 911, and re-ask.
		return step{next: StateSceneSafety, replies: []string{c.Text(locale.PromptSceneUnsafe)}}, true
	}
	return step{next: StateScenePlates}, true
}

func handleInjured(c *locale.Catalog, in Input, answers map[string]string) (step, bool) {
	yes, ok := validate.YesNo(in.Text)
	if !ok {
		return step{errKey: locale.ErrYesNo}, false
	}
	answers[model.AnswerInjured] = yesNoValue(yes)
	if yes {
		return step{next: StatePainLevel}, true
	}
	return step{next: StateFault}, true
}

func handlePainLevel(c *locale.Catalog, in Input, answers map[string]string) (step, bool) {
	level, ok := validate.PainLevel(in.Text)
	if !ok {
		return step{errKey: locale.ErrPainLevel}, false
	}
	answers[model.AnswerPainLevel] = strconv.Itoa(level)
	return step{next: StateHospitalized}, true
}

func handleRepresentation(c *locale.Catalog, in Input, answers map[string]string) (step, bool) {
	yes, ok := validate.YesNo(in.Text)
	if !ok {
		return step{errKey: locale.ErrYesNo}, false
	}
	answers[model.AnswerHasAttorney] = yesNoValue(yes)
	if yes {
		return step{next: StateSeekingChange}, true
	}
	return step{next: StateInjuryType}, true
}

func handleSeekingChange(c *locale.Catalog, in Input, answers map[string]string) (step, bool) {
	yes, ok := validate.YesNo(in.Text)
	if !ok {
		return step{errKey: locale.ErrYesNo}, false
	}
	answers[model.AnswerSeekingChange] = yesNoValue(yes)
	if !yes {
		// Already represented and staying put: forced score 0, distinct
		// closing message, lead still recorded.
		answers[model.AnswerScore] = "0"
		return step{
			next:    StateDisqualified,
			replies: []string{c.Text(locale.PromptDisqualified)},
			effects: []Effect{
				{Kind: EffectSubmitLead, Score: 0, Decision: score.DecisionPacket},
				{Kind: EffectClose, Target: model.CloseReasonAlreadyRepresented},
			},
			skipPrompt: true,
		}, true
	}
	return step{next: StateInjuryType}, true
}

func handleDescription(c *locale.Catalog, in Input, answers map[string]string) (step, bool) {
	text, ok := validate.FreeText(in.Text)
	if !ok {
		return step{errKey: locale.ErrChoice}, false
	}
	answers[model.AnswerDescription] = text
	return step{next: StateEvidenceOffer}, true
}

// handleEvidenceOffer is the scoring checkpoint: the last qualification
// answer lands here, the lead is submitted regardless of score, and the
// routing decision picks the continuation.
func handleEvidenceOffer(c *locale.Catalog, in Input, answers map[string]string) (step, bool) {
	yes, ok := validate.YesNo(in.Text)
	if !ok {
		return step{errKey: locale.ErrYesNo}, false
	}
	answers[model.AnswerEvidenceOffered] = yesNoValue(yes)

	total := score.Compute(answers)
	answers[model.AnswerScore] = strconv.Itoa(total)
	decision := score.Route(total)

	effects := []Effect{{Kind: EffectSubmitLead, Score: total, Decision: decision}}

	if decision == score.DecisionEscalate {
		effects = append(effects,
			Effect{Kind: EffectEscalate},
			Effect{Kind: EffectNotify, Event: "session.escalated"},
		)
		return step{
			next:       StateConnecting,
			replies:    []string{c.Text(locale.PromptConnecting)},
			effects:    effects,
			skipPrompt: true,
		}, true
	}

	// Low score: informational packet now, live-chat/schedule offer after a
	// short delay. Never a dead end.
	effects = append(effects, Effect{Kind: EffectDelayedFallback})
	return step{
		next:       StateFallbackOffer,
		replies:    []string{c.Text(locale.PromptPacket)},
		effects:    effects,
		skipPrompt: true,
	}, true
}

func handleFallbackOffer(c *locale.Catalog, in Input, answers map[string]string) (step, bool) {
	value, ok := matchChoice(in.Text, optionsFor(c, StateFallbackOffer))
	if !ok {
		return step{errKey: locale.ErrChoice}, false
	}
	switch value {
	case "live_chat":
		return step{
			next:       StateConnecting,
			replies:    []string{c.Text(locale.PromptConnecting)},
			effects:    []Effect{{Kind: EffectEscalate}, {Kind: EffectNotify, Event: "session.escalated"}},
			skipPrompt: true,
		}, true
	case "schedule":
		return step{next: StateScheduleContact}, true
	default:
		return step{
			next:       StateDone,
			replies:    []string{c.Text(locale.PromptDone)},
			effects:    []Effect{{Kind: EffectClose, Target: model.CloseReasonResolved}},
			skipPrompt: true,
		}, true
	}
}

func yesNoValue(yes bool) string {
	if yes {
		return model.AnswerYes
	}
	return model.AnswerNo
}

func cloneAnswers(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// matchChoice resolves a quick-reply selection from the option value, the
// localized label, or a 1-based index. Partial label matches are accepted so
// "other driver" satisfies "The other driver".
func matchChoice(raw string, options []Option) (string, bool) {
	input := strings.ToLower(strings.TrimSpace(raw))
	if input == "" || len(options) == 0 {
		return "", false
	}
	if idx, err := strconv.Atoi(input); err == nil {
		if idx >= 1 && idx <= len(options) {
			return options[idx-1].Value, true
		}
		return "", false
	}
	for _, opt := range options {
		value := strings.ToLower(opt.Value)
		label := strings.ToLower(opt.Label)
		if input == value || input == strings.ReplaceAll(value, "_", " ") || input == label {
			return opt.Value, true
		}
	}
	for _, opt := range options {
		value := strings.ReplaceAll(strings.ToLower(opt.Value), "_", " ")
		label := strings.ToLower(opt.Label)
		if len(input) < 3 {
			continue
		}
		if strings.Contains(label, input) || strings.Contains(input, label) || strings.Contains(input, value) {
			return opt.Value, true
		}
	}
	return "", false
}
