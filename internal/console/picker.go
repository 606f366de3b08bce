package console

import "strings"

const (
	// PickerPrefix in the first column of the composer opens the picker;
	// the rest of the line is the filter.
	PickerPrefix = "/"

	// MaxPickerResults bounds the menu height.
	MaxPickerResults = 5
)

// CannedResponse is one prepared reply an operator can insert.
type CannedResponse struct {
	Trigger string
	Body    string
}

// Picker is the prefix-triggered fuzzy menu over the canned-response catalog.
// Committing a selection replaces the composer text; it never sends anything.
type Picker struct {
	catalog []CannedResponse
	active  bool
	matches []CannedResponse
	cursor  int
}

func NewPicker(catalog []CannedResponse) *Picker {
	return &Picker{catalog: catalog}
}

// Observe re-evaluates the picker against the current composer text. It
// activates when the text starts with the prefix and filters on the rest.
func (p *Picker) Observe(composer string) {
	if !strings.HasPrefix(composer, PickerPrefix) {
		p.reset()
		return
	}
	filter := strings.ToLower(strings.TrimPrefix(composer, PickerPrefix))

	matches := make([]CannedResponse, 0, MaxPickerResults)
	for _, canned := range p.catalog {
		if filter == "" ||
			strings.Contains(strings.ToLower(canned.Trigger), filter) ||
			strings.Contains(strings.ToLower(canned.Body), filter) {
			matches = append(matches, canned)
			if len(matches) == MaxPickerResults {
				break
			}
		}
	}

	p.active = len(matches) > 0
	p.matches = matches
	if p.cursor >= len(matches) {
		p.cursor = 0
	}
}

func (p *Picker) Active() bool {
	return p.active
}

func (p *Picker) Matches() []CannedResponse {
	return p.matches
}

func (p *Picker) Cursor() int {
	return p.cursor
}

// MoveDown advances the selection cursor, wrapping past the end.
func (p *Picker) MoveDown() {
	if p.active && len(p.matches) > 0 {
		p.cursor = (p.cursor + 1) % len(p.matches)
	}
}

// MoveUp moves the selection cursor back, wrapping past the start.
func (p *Picker) MoveUp() {
	if p.active && len(p.matches) > 0 {
		p.cursor = (p.cursor - 1 + len(p.matches)) % len(p.matches)
	}
}

// Commit returns the selected canned body to place in the composer
// (replacing, not appending) and closes the menu.
func (p *Picker) Commit() (string, bool) {
	if !p.active || len(p.matches) == 0 {
		return "", false
	}
	body := p.matches[p.cursor].Body
	p.reset()
	return body, true
}

// Dismiss closes the menu without touching the composer text.
func (p *Picker) Dismiss() {
	p.reset()
}

func (p *Picker) reset() {
	p.active = false
	p.matches = nil
	p.cursor = 0
}
