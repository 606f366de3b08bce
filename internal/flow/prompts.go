package flow

import (
	"strings"

	"lead-intake-backend/internal/locale"
	"lead-intake-backend/internal/model"
)

var statePrompts = map[State]locale.Key{
	StateGreeting:        locale.PromptGreeting,
	StateSMSContact:      locale.PromptSMSContact,
	StateCallbackContact: locale.PromptCallbackContact,
	StateCallbackTime:    locale.PromptCallbackTime,
	StateScheduleContact: locale.PromptScheduleContact,
	StateScheduleTime:    locale.PromptScheduleTime,
	StateFastTrackName:   locale.PromptFastTrack,
	StateValuationFollow: locale.PromptValuationFollow,
	StateMenu:            locale.PromptMenu,
	StateSceneSafety:     locale.PromptSceneSafety,
	StateScenePlates:     locale.PromptScenePlates,
	StateScenePhoto:      locale.PromptScenePhoto,
	StateSceneDocs:       locale.PromptSceneDocs,
	StateInjuryTiming:    locale.PromptInjuryTiming,
	StateInjured:         locale.PromptInjured,
	StatePainLevel:       locale.PromptPainLevel,
	StateHospitalized:    locale.PromptHospitalized,
	StateFault:           locale.PromptFault,
	StateOtherInsurance:  locale.PromptOtherInsurance,
	StateRepresentation:  locale.PromptRepresentation,
	StateSeekingChange:   locale.PromptSeekingChange,
	StateInjuryType:      locale.PromptInjuryType,
	StateDescription:     locale.PromptDescription,
	StateEvidenceOffer:   locale.PromptEvidenceOffer,
	StateFallbackOffer:   locale.PromptFallbackOffer,
}

// Prompt returns the localized prompt text and quick replies for a state.
// Used by callers that re-issue a state's prompt outside a normal advance,
// such as the delayed fallback offer and the busy-fallback path.
func Prompt(state State, lang string, answers map[string]string) (string, []Option) {
	c := locale.ForLanguage(lang)
	return promptFor(c, state, answers), optionsFor(c, state)
}

func promptFor(c *locale.Catalog, state State, answers map[string]string) string {
	if state == StatePhone {
		return c.Textf(locale.PromptPhone, firstName(answers[model.AnswerFullName]))
	}
	if key, ok := statePrompts[state]; ok {
		return c.Text(key)
	}
	return ""
}

func firstName(full string) string {
	fields := strings.Fields(full)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func yesNoOptions(c *locale.Catalog) []Option {
	return []Option{
		{Value: model.AnswerYes, Label: c.Text(locale.OptYes)},
		{Value: model.AnswerNo, Label: c.Text(locale.OptNo)},
	}
}

func optionsFor(c *locale.Catalog, state State) []Option {
	switch state {
	case StateInjured, StateHospitalized, StateOtherInsurance, StateRepresentation,
		StateSeekingChange, StateEvidenceOffer, StateValuationFollow, StateSceneSafety:
		return yesNoOptions(c)
	case StateInjuryTiming:
		return optionsForKey(c, model.AnswerAccidentWhen)
	case StateFault:
		return optionsForKey(c, model.AnswerFault)
	case StateInjuryType:
		return optionsForKey(c, model.AnswerInjuryType)
	case StateMenu:
		return []Option{
			{Value: "qualify", Label: c.Text(locale.OptMenuQualify)},
			{Value: "callback", Label: c.Text(locale.OptMenuCallback)},
			{Value: "schedule", Label: c.Text(locale.OptMenuSchedule)},
			{Value: "scene", Label: c.Text(locale.OptMenuScene)},
		}
	case StateFallbackOffer:
		return []Option{
			{Value: "live_chat", Label: c.Text(locale.OptFallbackLiveChat)},
			{Value: "schedule", Label: c.Text(locale.OptFallbackSchedule)},
			{Value: "done", Label: c.Text(locale.OptFallbackDone)},
		}
	}
	return nil
}

func optionsForKey(c *locale.Catalog, key string) []Option {
	switch key {
	case model.AnswerAccidentWhen:
		return []Option{
			{Value: "today", Label: c.Text(locale.OptWhenToday)},
			{Value: "this_week", Label: c.Text(locale.OptWhenWeek)},
			{Value: "this_month", Label: c.Text(locale.OptWhenMonth)},
			{Value: "older", Label: c.Text(locale.OptWhenOlder)},
		}
	case model.AnswerFault:
		return []Option{
			{Value: model.FaultOtherDriver, Label: c.Text(locale.OptFaultOtherDriver)},
			{Value: model.FaultShared, Label: c.Text(locale.OptFaultShared)},
			{Value: model.FaultSelf, Label: c.Text(locale.OptFaultSelf)},
		}
	case model.AnswerInjuryType:
		return []Option{
			{Value: "whiplash", Label: c.Text(locale.OptInjuryWhiplash)},
			{Value: "fracture", Label: c.Text(locale.OptInjuryFracture)},
			{Value: "soft_tissue", Label: c.Text(locale.OptInjurySoftTissue)},
			{Value: "head", Label: c.Text(locale.OptInjuryHead)},
			{Value: "other", Label: c.Text(locale.OptInjuryOther)},
		}
	}
	return nil
}
