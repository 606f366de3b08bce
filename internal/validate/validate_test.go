package validate

import "testing"

func TestContact(t *testing.T) {
	cases := []struct {
		input string
		want  string
		ok    bool
	}{
		{"jane@example.com", "jane@example.com", true},
		{"JANE@Example.COM", "jane@example.com", true},
		{"(555) 123-4567", "(555) 123-4567", true},
		{"+1 555 123 4567", "+1 555 123 4567", true},
		{"555-1234", "", false}, // too few digits
		{"call me", "", false},
		{"jane@", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := Contact(tc.input)
		if ok != tc.ok || got != tc.want {
			t.Errorf("Contact(%q) = (%q, %v), want (%q, %v)", tc.input, got, ok, tc.want, tc.ok)
		}
	}
}

func TestYesNo(t *testing.T) {
	cases := []struct {
		input string
		yes   bool
		ok    bool
	}{
		{"yes", true, true},
		{"Yeah, definitely", true, true},
		{"sí", true, true},
		{"claro", true, true},
		{"no", false, true},
		{"nope", false, true},
		{"nunca", false, true},
		{"maybe", false, false},
		{"yes and no", false, false}, // ambiguous
		{"", false, false},
		{"yesterday", false, false}, // token, not substring
	}
	for _, tc := range cases {
		yes, ok := YesNo(tc.input)
		if ok != tc.ok || (ok && yes != tc.yes) {
			t.Errorf("YesNo(%q) = (%v, %v), want (%v, %v)", tc.input, yes, ok, tc.yes, tc.ok)
		}
	}
}

func TestName(t *testing.T) {
	if _, ok := Name("J"); ok {
		t.Error("single rune accepted as a name")
	}
	if _, ok := Name("   "); ok {
		t.Error("whitespace accepted as a name")
	}
	got, ok := Name("  Jane Doe  ")
	if !ok || got != "Jane Doe" {
		t.Errorf("Name = (%q, %v), want trimmed name", got, ok)
	}
}

func TestPainLevel(t *testing.T) {
	cases := []struct {
		input string
		want  int
		ok    bool
	}{
		{"7", 7, true},
		{"about an 8 I think", 8, true},
		{"0", 0, true},
		{"10", 10, true},
		{"11", 0, false},
		{"none", 0, false},
	}
	for _, tc := range cases {
		got, ok := PainLevel(tc.input)
		if ok != tc.ok || got != tc.want {
			t.Errorf("PainLevel(%q) = (%d, %v), want (%d, %v)", tc.input, got, ok, tc.want, tc.ok)
		}
	}
}
