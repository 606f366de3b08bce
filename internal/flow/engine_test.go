package flow

import (
	"testing"

	"lead-intake-backend/internal/locale"
	"lead-intake-backend/internal/model"
	"lead-intake-backend/internal/score"
)

func TestEnterStartsAtModeEntry(t *testing.T) {
	cases := []struct {
		mode EntryMode
		want State
	}{
		{EntryStandard, StateGreeting},
		{EntrySMS, StateSMSContact},
		{EntryCallback, StateCallbackContact},
		{EntrySchedule, StateScheduleContact},
		{EntryFastTrack, StateFastTrackName},
		{EntryValuation, StateValuationFollow},
		{EntryAtScene, StateSceneSafety},
		{EntryMenu, StateMenu},
	}
	for _, tc := range cases {
		res, ok := Enter(tc.mode, locale.LangEnglish)
		if !ok {
			t.Fatalf("Enter(%s) not ok", tc.mode)
		}
		if res.Next != tc.want {
			t.Errorf("Enter(%s) = %s, want %s", tc.mode, res.Next, tc.want)
		}
		if len(res.Replies) != 1 {
			t.Errorf("Enter(%s) produced %d replies, want 1", tc.mode, len(res.Replies))
		}
	}
}

func TestEnterUnknownMode(t *testing.T) {
	if _, ok := Enter("teleport", locale.LangEnglish); ok {
		t.Fatal("Enter accepted an unknown mode")
	}
}

func TestEnterFastTrackNotifies(t *testing.T) {
	res, _ := Enter(EntryFastTrack, locale.LangEnglish)
	if len(res.Effects) != 1 || res.Effects[0].Kind != EffectNotify {
		t.Fatalf("fast-track entry effects = %+v, want a notify effect", res.Effects)
	}
}

func TestAdvanceLanguageSwitch(t *testing.T) {
	res := Advance(StateGreeting, Input{Text: "en español por favor"}, nil, locale.LangEnglish)

	if res.Advanced {
		t.Fatal("language switch should not advance the state")
	}
	if res.Next != StateGreeting {
		t.Fatalf("state moved to %s on language switch", res.Next)
	}
	if len(res.Effects) != 1 || res.Effects[0].Kind != EffectSwitchLanguage || res.Effects[0].Target != locale.LangSpanish {
		t.Fatalf("effects = %+v, want switch to es", res.Effects)
	}
	want := locale.ForLanguage(locale.LangSpanish).Text(locale.PromptLanguageSwitched)
	if len(res.Replies) != 2 || res.Replies[0] != want {
		t.Fatalf("replies = %+v, want acknowledgement plus re-issued prompt in Spanish", res.Replies)
	}
}

func TestAdvanceValidationKeepsState(t *testing.T) {
	res := Advance(StatePhone, Input{Text: "not a number"}, map[string]string{}, locale.LangEnglish)

	if res.Advanced {
		t.Fatal("invalid contact advanced the state")
	}
	if res.Next != StatePhone {
		t.Fatalf("state = %s, want PHONE", res.Next)
	}
	want := locale.ForLanguage(locale.LangEnglish).Text(locale.ErrContact)
	if len(res.Replies) != 1 || res.Replies[0] != want {
		t.Fatalf("replies = %+v, want the contact error", res.Replies)
	}
}

func TestAdvanceDoesNotMutateCallerAnswers(t *testing.T) {
	answers := map[string]string{model.AnswerFullName: "Jane Doe"}
	res := Advance(StatePhone, Input{Text: "jane@example.com"}, answers, locale.LangEnglish)

	if _, ok := answers[model.AnswerContact]; ok {
		t.Fatal("Advance wrote into the caller's answer map")
	}
	if res.Answers[model.AnswerContact] != "jane@example.com" {
		t.Fatalf("result answers = %+v, want recorded contact", res.Answers)
	}
}

func TestSceneSafetyUnsafeReasks(t *testing.T) {
	res := Advance(StateSceneSafety, Input{Text: "no"}, map[string]string{}, locale.LangEnglish)

	if res.Next != StateSceneSafety {
		t.Fatalf("state = %s, want SCENE_SAFETY", res.Next)
	}
	want := locale.ForLanguage(locale.LangEnglish).Text(locale.PromptSceneUnsafe)
	if len(res.Replies) != 2 || res.Replies[0] != want {
		t.Fatalf("replies = %+v, want 911 guidance then the safety question again", res.Replies)
	}
}

func TestMenuBranches(t *testing.T) {
	cases := []struct {
		input string
		want  State
	}{
		{"1", StateGreeting},
		{"2", StateCallbackContact},
		{"schedule", StateScheduleContact},
		{"scene", StateSceneSafety},
	}
	for _, tc := range cases {
		res := Advance(StateMenu, Input{Text: tc.input}, map[string]string{}, locale.LangEnglish)
		if res.Next != tc.want {
			t.Errorf("menu %q -> %s, want %s", tc.input, res.Next, tc.want)
		}
	}
}

func TestEvidenceStateRequiresUpload(t *testing.T) {
	res := Advance(StateScenePlates, Input{Text: "here you go"}, map[string]string{}, locale.LangEnglish)

	if res.Advanced {
		t.Fatal("text advanced an upload-only state")
	}
	want := locale.ForLanguage(locale.LangEnglish).Text(locale.ErrUploadRequired)
	if len(res.Replies) != 1 || res.Replies[0] != want {
		t.Fatalf("replies = %+v, want the upload-required error", res.Replies)
	}
}

func TestEvidenceUploadAdvances(t *testing.T) {
	res := Advance(StateScenePlates, Input{UploadURL: "https://e.example.com/p.jpg"}, map[string]string{}, locale.LangEnglish)

	if res.Next != StateScenePhoto {
		t.Fatalf("state = %s, want SCENE_PHOTO", res.Next)
	}
	if res.Answers[model.AnswerEvidencePlates] != "https://e.example.com/p.jpg" {
		t.Fatalf("answers = %+v, want the upload URL recorded", res.Answers)
	}
}

func TestEvidenceOfferEscalatesHighScore(t *testing.T) {
	answers := map[string]string{
		model.AnswerFault:   model.FaultOtherDriver,
		model.AnswerInjured: model.AnswerYes,
	}
	res := Advance(StateEvidenceOffer, Input{Text: "yes"}, answers, locale.LangEnglish)

	if res.Next != StateConnecting {
		t.Fatalf("state = %s, want CONNECTING", res.Next)
	}
	if len(res.Effects) != 3 {
		t.Fatalf("effects = %+v, want lead + escalate + notify", res.Effects)
	}
	if res.Effects[0].Kind != EffectSubmitLead || res.Effects[0].Decision != score.DecisionEscalate {
		t.Fatalf("first effect = %+v, want an escalating lead submission", res.Effects[0])
	}
	if res.Effects[0].Score != 80 {
		t.Fatalf("lead score = %d, want 80", res.Effects[0].Score)
	}
}

func TestEvidenceOfferPacketsLowScore(t *testing.T) {
	answers := map[string]string{model.AnswerFault: model.FaultSelf}
	res := Advance(StateEvidenceOffer, Input{Text: "no"}, answers, locale.LangEnglish)

	if res.Next != StateFallbackOffer {
		t.Fatalf("state = %s, want FALLBACK_OFFER", res.Next)
	}
	var sawDelayed bool
	for _, effect := range res.Effects {
		if effect.Kind == EffectDelayedFallback {
			sawDelayed = true
		}
		if effect.Kind == EffectSubmitLead && effect.Decision != score.DecisionPacket {
			t.Fatalf("lead decision = %s, want packet", effect.Decision)
		}
	}
	if !sawDelayed {
		t.Fatalf("effects = %+v, want a delayed fallback", res.Effects)
	}
}

func TestFallbackOfferBranches(t *testing.T) {
	res := Advance(StateFallbackOffer, Input{Text: "live chat"}, map[string]string{}, locale.LangEnglish)
	if res.Next != StateConnecting {
		t.Fatalf("live chat -> %s, want CONNECTING", res.Next)
	}

	res = Advance(StateFallbackOffer, Input{Text: "done"}, map[string]string{}, locale.LangEnglish)
	if res.Next != StateDone {
		t.Fatalf("done -> %s, want DONE", res.Next)
	}
	if len(res.Effects) != 1 || res.Effects[0].Kind != EffectClose || res.Effects[0].Target != model.CloseReasonResolved {
		t.Fatalf("effects = %+v, want a resolved close", res.Effects)
	}
}

func TestTerminalStateProducesNothing(t *testing.T) {
	res := Advance(StateConnecting, Input{Text: "hello?"}, map[string]string{}, locale.LangEnglish)

	if len(res.Replies) != 0 || len(res.Effects) != 0 {
		t.Fatalf("terminal state produced output: %+v", res)
	}
	if res.Next != StateConnecting {
		t.Fatalf("terminal state moved to %s", res.Next)
	}
}

func TestMatchChoice(t *testing.T) {
	options := []Option{
		{Value: model.FaultOtherDriver, Label: "The other driver"},
		{Value: model.FaultShared, Label: "We both were"},
		{Value: model.FaultSelf, Label: "I was"},
	}
	cases := []struct {
		input string
		want  string
		ok    bool
	}{
		{"1", model.FaultOtherDriver, true},
		{"3", model.FaultSelf, true},
		{"4", "", false},
		{"other_driver", model.FaultOtherDriver, true},
		{"other driver", model.FaultOtherDriver, true},
		{"The Other Driver", model.FaultOtherDriver, true},
		{"we both were", model.FaultShared, true},
		{"", "", false},
		{"dunno", "", false},
	}
	for _, tc := range cases {
		got, ok := matchChoice(tc.input, options)
		if ok != tc.ok || got != tc.want {
			t.Errorf("matchChoice(%q) = (%q, %v), want (%q, %v)", tc.input, got, ok, tc.want, tc.ok)
		}
	}
}
