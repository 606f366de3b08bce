package locale

import "testing"

func TestCatalogParity(t *testing.T) {
	en := catalogs[LangEnglish]
	es := catalogs[LangSpanish]

	for key := range en {
		if _, ok := es[key]; !ok {
			t.Errorf("key %s missing from the Spanish catalog", key)
		}
	}
	for key := range es {
		if _, ok := en[key]; !ok {
			t.Errorf("key %s missing from the English catalog", key)
		}
	}
}

func TestForLanguageFallsBackToEnglish(t *testing.T) {
	c := ForLanguage("fr")
	if c.Language() != LangEnglish {
		t.Fatalf("Language() = %s, want en fallback", c.Language())
	}
	if c.Text(PromptGreeting) != catalogs[LangEnglish][PromptGreeting] {
		t.Fatal("fallback catalog does not serve English text")
	}
}

func TestTextUnknownKey(t *testing.T) {
	c := ForLanguage(LangSpanish)
	if got := c.Text("no.such.key"); got != "no.such.key" {
		t.Fatalf("Text(unknown) = %q, want the key itself", got)
	}
}

func TestSwitchTarget(t *testing.T) {
	cases := []struct {
		current string
		input   string
		want    string
		ok      bool
	}{
		{LangEnglish, "en español por favor", LangSpanish, true},
		{LangEnglish, "ESPANOL", LangSpanish, true},
		{LangEnglish, "do you speak spanish?", LangSpanish, true},
		{LangSpanish, "in english please", LangEnglish, true},
		{LangSpanish, "inglés", LangEnglish, true},
		{LangEnglish, "english please", "", false}, // already English
		{LangSpanish, "español", "", false},        // already Spanish
		{LangEnglish, "my name is Jane", "", false},
	}
	for _, tc := range cases {
		got, ok := SwitchTarget(tc.current, tc.input)
		if ok != tc.ok || got != tc.want {
			t.Errorf("SwitchTarget(%s, %q) = (%q, %v), want (%q, %v)",
				tc.current, tc.input, got, ok, tc.want, tc.ok)
		}
	}
}
