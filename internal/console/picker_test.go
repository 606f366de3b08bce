package console

import (
	"fmt"
	"testing"
)

func testCatalog() []CannedResponse {
	return []CannedResponse{
		{Trigger: "greeting", Body: "Hi, this is one of our intake specialists."},
		{Trigger: "docs", Body: "Could you share any photos or documents?"},
		{Trigger: "callback", Body: "I can have one of our attorneys call you back."},
		{Trigger: "thanks", Body: "Thank you, I have everything I need for now."},
	}
}

func TestPickerActivatesOnPrefix(t *testing.T) {
	p := NewPicker(testCatalog())

	p.Observe("hello")
	if p.Active() {
		t.Fatal("picker active without the prefix")
	}

	p.Observe("/")
	if !p.Active() {
		t.Fatal("picker not active on bare prefix")
	}
	if len(p.Matches()) != 4 {
		t.Fatalf("bare prefix matched %d, want the whole catalog", len(p.Matches()))
	}
}

func TestPickerFilters(t *testing.T) {
	p := NewPicker(testCatalog())

	p.Observe("/call")
	matches := p.Matches()
	if len(matches) != 1 || matches[0].Trigger != "callback" {
		t.Fatalf("matches = %+v, want callback only", matches)
	}

	// Body text matches too.
	p.Observe("/photos")
	matches = p.Matches()
	if len(matches) != 1 || matches[0].Trigger != "docs" {
		t.Fatalf("matches = %+v, want docs via body text", matches)
	}

	p.Observe("/zzz")
	if p.Active() {
		t.Fatal("picker active with zero matches")
	}
}

func TestPickerCapsResults(t *testing.T) {
	catalog := make([]CannedResponse, 0, MaxPickerResults+3)
	for i := 0; i < MaxPickerResults+3; i++ {
		catalog = append(catalog, CannedResponse{
			Trigger: fmt.Sprintf("canned-%d", i),
			Body:    "body",
		})
	}
	p := NewPicker(catalog)

	p.Observe("/")
	if len(p.Matches()) != MaxPickerResults {
		t.Fatalf("matches = %d, want cap of %d", len(p.Matches()), MaxPickerResults)
	}
}

func TestPickerCursorWraps(t *testing.T) {
	p := NewPicker(testCatalog())
	p.Observe("/")

	p.MoveUp()
	if p.Cursor() != 3 {
		t.Fatalf("cursor = %d after MoveUp from 0, want 3", p.Cursor())
	}
	p.MoveDown()
	if p.Cursor() != 0 {
		t.Fatalf("cursor = %d, want wrap back to 0", p.Cursor())
	}
}

func TestPickerCommit(t *testing.T) {
	p := NewPicker(testCatalog())
	p.Observe("/")
	p.MoveDown()

	body, ok := p.Commit()
	if !ok || body != testCatalog()[1].Body {
		t.Fatalf("Commit = (%q, %v), want the second body", body, ok)
	}
	if p.Active() {
		t.Fatal("picker still active after commit")
	}

	if _, ok := p.Commit(); ok {
		t.Fatal("commit succeeded on an inactive picker")
	}
}

func TestPickerDismiss(t *testing.T) {
	p := NewPicker(testCatalog())
	p.Observe("/")
	p.MoveDown()
	p.Dismiss()

	if p.Active() || p.Cursor() != 0 || p.Matches() != nil {
		t.Fatal("dismiss did not reset the picker")
	}
}
