package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"lead-intake-backend/internal/console"
	"lead-intake-backend/internal/dto"
	"lead-intake-backend/internal/transcript"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	gws "github.com/gorilla/websocket"
)

const (
	defaultAPIBase = "http://localhost:83/api/console/v1"
	defaultWSBase  = "ws://localhost:83/api/console/v1"
	slotLogLines   = 200
)

type config struct {
	apiBase  string
	wsBase   string
	email    string
	password string
}

func main() {
	var cfg config
	flag.StringVar(&cfg.apiBase, "api", defaultAPIBase, "console API base URL")
	flag.StringVar(&cfg.wsBase, "ws", defaultWSBase, "console websocket base URL")
	flag.StringVar(&cfg.email, "email", "", "operator email")
	flag.StringVar(&cfg.password, "password", "", "operator password")
	flag.Parse()

	if cfg.email == "" || cfg.password == "" {
		fmt.Fprintln(os.Stderr, "operator-console: -email and -password are required")
		os.Exit(2)
	}

	client := &apiClient{base: cfg.apiBase, http: &http.Client{Timeout: 10 * time.Second}}
	if err := client.login(cfg.email, cfg.password); err != nil {
		fmt.Fprintf(os.Stderr, "login failed: %v\n", err)
		os.Exit(1)
	}

	m := newModel(cfg, client)
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "operator-console: %v\n", err)
		os.Exit(1)
	}
}

type apiClient struct {
	base  string
	http  *http.Client
	token string
}

func (c *apiClient) login(email, password string) error {
	var resp dto.AuthResponse
	if err := c.post("/login", dto.LoginRequest{Email: email, Password: password}, &resp); err != nil {
		return err
	}
	c.token = resp.AccessToken
	return nil
}

func (c *apiClient) listSessions() ([]dto.SessionResponse, error) {
	var resp dto.SessionListResponse
	if err := c.get("/sessions", &resp); err != nil {
		return nil, err
	}
	return resp.Sessions, nil
}

func (c *apiClient) transcriptOf(sessionID string) (dto.TranscriptResponse, error) {
	var resp dto.TranscriptResponse
	err := c.get("/sessions/"+sessionID, &resp)
	return resp, err
}

func (c *apiClient) cannedResponses() ([]console.CannedResponse, error) {
	var resp dto.CannedResponseListResponse
	if err := c.get("/canned", &resp); err != nil {
		return nil, err
	}
	out := make([]console.CannedResponse, 0, len(resp.Responses))
	for _, r := range resp.Responses {
		out = append(out, console.CannedResponse{Trigger: r.Trigger, Body: r.Body})
	}
	return out, nil
}

func (c *apiClient) postTurn(sessionID, content string) error {
	return c.post("/sessions/"+sessionID+"/messages", dto.PostOperatorTurnRequest{Content: content}, nil)
}

func (c *apiClient) closeSession(sessionID string) error {
	return c.post("/sessions/"+sessionID+"/close", dto.CloseSessionRequest{Reason: "resolved"}, nil)
}

func (c *apiClient) get(path string, out interface{}) error {
	req, err := http.NewRequest(http.MethodGet, c.base+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *apiClient) post(path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, c.base+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *apiClient) do(req *http.Request, out interface{}) error {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= 300 {
		var apiErr struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(res.Body).Decode(&apiErr)
		if apiErr.Message == "" {
			apiErr.Message = res.Status
		}
		return fmt.Errorf("%s %s: %s", req.Method, req.URL.Path, apiErr.Message)
	}
	if out != nil {
		return json.NewDecoder(res.Body).Decode(out)
	}
	return nil
}

// wireMessage is the envelope the websocket hub writes to clients.
type wireMessage struct {
	Content   string `json:"content"`
	SessionID string `json:"sessionId"`
}

type feedEventMsg struct {
	sessionID string
	line      string
	status    string
}

type sessionsMsg struct {
	sessions []dto.SessionResponse
	err      error
}

type cannedMsg struct {
	responses []console.CannedResponse
	err       error
}

type errMsg struct{ err error }

type slotConnMsg struct {
	sessionID string
	conn      *gws.Conn
}

type slotView struct {
	sessionID string
	status    string
	lines     []string
	conn      *gws.Conn
}

type model struct {
	cfg    config
	client *apiClient

	slots  *console.SlotManager
	picker *console.Picker
	input  textinput.Model

	sessions      []dto.SessionResponse
	sessionCursor int
	active        int
	views         [console.SlotCount]slotView

	events chan feedEventMsg
	status string

	width  int
	height int

	styles styles
}

type styles struct {
	header     lipgloss.Style
	slotActive lipgloss.Style
	slotIdle   lipgloss.Style
	slotTitle  lipgloss.Style
	visitor    lipgloss.Style
	automation lipgloss.Style
	operator   lipgloss.Style
	picker     lipgloss.Style
	pickerSel  lipgloss.Style
	footer     lipgloss.Style
	errText    lipgloss.Style
}

func newStyles() styles {
	var (
		blue  = lipgloss.Color("#01cdfe")
		mint  = lipgloss.Color("#05ffa1")
		pink  = lipgloss.Color("#ff71ce")
		muted = lipgloss.Color("#6f6f8f")
	)
	return styles{
		header:     lipgloss.NewStyle().Foreground(blue).Bold(true),
		slotActive: lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(mint).Padding(0, 1),
		slotIdle:   lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(muted).Padding(0, 1),
		slotTitle:  lipgloss.NewStyle().Bold(true),
		visitor:    lipgloss.NewStyle().Foreground(mint),
		automation: lipgloss.NewStyle().Foreground(muted),
		operator:   lipgloss.NewStyle().Foreground(blue),
		picker:     lipgloss.NewStyle().Foreground(muted),
		pickerSel:  lipgloss.NewStyle().Foreground(pink).Bold(true),
		footer:     lipgloss.NewStyle().Foreground(muted),
		errText:    lipgloss.NewStyle().Foreground(pink).Bold(true),
	}
}

func newModel(cfg config, client *apiClient) model {
	input := textinput.New()
	input.Placeholder = "message, or / for canned responses"
	input.CharLimit = 2000
	input.Focus()

	return model{
		cfg:    cfg,
		client: client,
		slots:  console.NewSlotManager(),
		picker: console.NewPicker(nil),
		input:  input,
		events: make(chan feedEventMsg, 64),
		styles: newStyles(),
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		m.fetchSessionsCmd(),
		m.fetchCannedCmd(),
		m.listenFeedCmd(),
		m.waitEventCmd(),
		textinput.Blink,
	)
}

func (m model) fetchSessionsCmd() tea.Cmd {
	return func() tea.Msg {
		sessions, err := m.client.listSessions()
		return sessionsMsg{sessions: sessions, err: err}
	}
}

func (m model) fetchCannedCmd() tea.Cmd {
	return func() tea.Msg {
		responses, err := m.client.cannedResponses()
		return cannedMsg{responses: responses, err: err}
	}
}

// listenFeedCmd tails the console-wide feed so new and escalated sessions
// show up without polling.
func (m model) listenFeedCmd() tea.Cmd {
	events := m.events
	url := m.cfg.wsBase + "/ws/feed?token=" + m.client.token
	return func() tea.Msg {
		conn, _, err := gws.DefaultDialer.Dial(url, nil)
		if err != nil {
			return errMsg{fmt.Errorf("feed connect: %w", err)}
		}
		go func() {
			defer conn.Close()
			for {
				var wire wireMessage
				if err := conn.ReadJSON(&wire); err != nil {
					return
				}
				events <- feedEventMsg{line: "feed"}
			}
		}()
		return nil
	}
}

func (m model) waitEventCmd() tea.Cmd {
	events := m.events
	return func() tea.Msg {
		return <-events
	}
}

// joinSessionCmd opens the per-session websocket for a slot and streams its
// turns into the event channel.
func (m model) joinSessionCmd(sessionID string) tea.Cmd {
	events := m.events
	url := m.cfg.wsBase + "/ws/sessions/" + sessionID + "?token=" + m.client.token
	return func() tea.Msg {
		conn, _, err := gws.DefaultDialer.Dial(url, nil)
		if err != nil {
			return errMsg{fmt.Errorf("join %s: %w", sessionID, err)}
		}
		go func() {
			defer conn.Close()
			for {
				var wire wireMessage
				if err := conn.ReadJSON(&wire); err != nil {
					return
				}
				for _, event := range decodeEvents(sessionID, wire.Content) {
					events <- event
				}
			}
		}()
		return slotConnMsg{sessionID: sessionID, conn: conn}
	}
}

func decodeEvents(sessionID, payload string) []feedEventMsg {
	var turn transcript.TurnEvent
	if err := json.Unmarshal([]byte(payload), &turn); err == nil && turn.Type == transcript.EventTurnCreated {
		return []feedEventMsg{{sessionID: sessionID, line: formatTurn(string(turn.Sender), turn.Content)}}
	}
	var status transcript.StatusEvent
	if err := json.Unmarshal([]byte(payload), &status); err == nil && status.Type == transcript.EventStatusChanged {
		return []feedEventMsg{{sessionID: sessionID, status: string(status.Status)}}
	}
	return nil
}

func formatTurn(sender, content string) string {
	return fmt.Sprintf("%s: %s", sender, content)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case sessionsMsg:
		if msg.err != nil {
			m.status = "sessions: " + msg.err.Error()
			return m, nil
		}
		m.sessions = msg.sessions
		if m.sessionCursor >= len(m.sessions) {
			m.sessionCursor = 0
		}
		return m, nil

	case cannedMsg:
		if msg.err != nil {
			m.status = "canned: " + msg.err.Error()
			return m, nil
		}
		m.picker = console.NewPicker(msg.responses)
		return m, nil

	case feedEventMsg:
		cmds := []tea.Cmd{m.waitEventCmd()}
		if msg.line == "feed" {
			cmds = append(cmds, m.fetchSessionsCmd())
		} else if idx := m.slots.IndexOf(msg.sessionID); idx >= 0 {
			view := &m.views[idx]
			if msg.status != "" {
				view.status = msg.status
			}
			if msg.line != "" {
				view.lines = append(view.lines, msg.line)
				if len(view.lines) > slotLogLines {
					view.lines = view.lines[len(view.lines)-slotLogLines:]
				}
			}
		}
		return m, tea.Batch(cmds...)

	case slotConnMsg:
		if idx := m.slots.IndexOf(msg.sessionID); idx >= 0 {
			m.views[idx].conn = msg.conn
		} else {
			// Slot was evicted before the dial finished.
			msg.conn.Close()
		}
		return m, nil

	case errMsg:
		m.status = msg.err.Error()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "tab":
		m.active = (m.active + 1) % console.SlotCount
		return m, nil

	case "up":
		if m.picker.Active() {
			m.picker.MoveUp()
			return m, nil
		}
		if m.sessionCursor > 0 {
			m.sessionCursor--
		}
		return m, nil

	case "down":
		if m.picker.Active() {
			m.picker.MoveDown()
			return m, nil
		}
		if m.sessionCursor < len(m.sessions)-1 {
			m.sessionCursor++
		}
		return m, nil

	case "esc":
		if m.picker.Active() {
			m.picker.Dismiss()
			m.input.SetValue("")
			m.picker.Observe("")
		}
		return m, nil

	case "ctrl+o":
		return m.openSelectedSession()

	case "ctrl+x":
		return m.closeActiveSession()

	case "enter":
		if m.picker.Active() {
			if body, ok := m.picker.Commit(); ok {
				m.input.SetValue(body)
				m.input.CursorEnd()
			}
			return m, nil
		}
		return m.sendComposer()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.picker.Observe(m.input.Value())
	return m, cmd
}

func (m model) openSelectedSession() (tea.Model, tea.Cmd) {
	if len(m.sessions) == 0 {
		return m, nil
	}
	session := m.sessions[m.sessionCursor]

	idx, evicted := m.slots.Open(session.SessionID)
	if evicted != "" {
		for i := range m.views {
			if m.views[i].sessionID == evicted {
				if m.views[i].conn != nil {
					m.views[i].conn.Close()
				}
				m.views[i] = slotView{}
			}
		}
	}
	m.active = idx

	if m.views[idx].sessionID == session.SessionID {
		return m, nil
	}
	m.views[idx] = slotView{sessionID: session.SessionID, status: session.Status}

	cmds := []tea.Cmd{m.joinSessionCmd(session.SessionID), m.backfillCmd(idx, session.SessionID)}
	return m, tea.Batch(cmds...)
}

func (m model) backfillCmd(idx int, sessionID string) tea.Cmd {
	events := m.events
	client := m.client
	return func() tea.Msg {
		result, err := client.transcriptOf(sessionID)
		if err != nil {
			return errMsg{err}
		}
		for _, turn := range result.Turns {
			events <- feedEventMsg{sessionID: sessionID, line: formatTurn(turn.Sender, turn.Content)}
		}
		return feedEventMsg{sessionID: sessionID, status: result.Session.Status}
	}
}

func (m model) closeActiveSession() (tea.Model, tea.Cmd) {
	view := m.views[m.active]
	if view.sessionID == "" {
		return m, nil
	}
	sessionID := view.sessionID
	client := m.client
	m.slots.Close(m.active)
	if view.conn != nil {
		view.conn.Close()
	}
	m.views[m.active] = slotView{}
	return m, func() tea.Msg {
		if err := client.closeSession(sessionID); err != nil {
			return errMsg{err}
		}
		return feedEventMsg{line: "feed"}
	}
}

func (m model) sendComposer() (tea.Model, tea.Cmd) {
	content := strings.TrimSpace(m.input.Value())
	view := m.views[m.active]
	if content == "" || view.sessionID == "" {
		return m, nil
	}
	m.input.SetValue("")
	m.picker.Observe("")

	sessionID := view.sessionID
	client := m.client
	return m, func() tea.Msg {
		if err := client.postTurn(sessionID, content); err != nil {
			return errMsg{err}
		}
		return nil
	}
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString(m.styles.header.Render("lead intake console"))
	b.WriteString("\n\n")

	b.WriteString(m.renderSessionList())
	b.WriteString("\n")
	b.WriteString(m.renderSlots())
	b.WriteString("\n")

	if m.picker.Active() {
		b.WriteString(m.renderPicker())
	}

	b.WriteString("> " + m.input.View())
	b.WriteString("\n")

	if m.status != "" {
		b.WriteString(m.styles.errText.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(m.styles.footer.Render("tab: slot · ctrl+o: open · ctrl+x: close · /: canned · ctrl+c: quit"))
	return b.String()
}

func (m model) renderSessionList() string {
	if len(m.sessions) == 0 {
		return m.styles.footer.Render("no sessions")
	}
	var b strings.Builder
	for i, session := range m.sessions {
		marker := "  "
		if i == m.sessionCursor {
			marker = "> "
		}
		line := fmt.Sprintf("%s%s [%s]", marker, session.SessionID, session.Status)
		if i == m.sessionCursor {
			line = m.styles.pickerSel.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func (m model) renderSlots() string {
	panels := make([]string, 0, console.SlotCount)
	for i := 0; i < console.SlotCount; i++ {
		view := m.views[i]
		title := fmt.Sprintf("slot %d", i+1)
		body := m.styles.footer.Render("empty")
		if view.sessionID != "" {
			title = fmt.Sprintf("slot %d · %s [%s]", i+1, view.sessionID, view.status)
			lines := view.lines
			if len(lines) > 8 {
				lines = lines[len(lines)-8:]
			}
			body = m.renderLines(lines)
		}

		style := m.styles.slotIdle
		if i == m.active {
			style = m.styles.slotActive
		}
		panels = append(panels, style.Render(m.styles.slotTitle.Render(title)+"\n"+body))
	}

	top := lipgloss.JoinHorizontal(lipgloss.Top, panels[0], panels[1])
	bottom := lipgloss.JoinHorizontal(lipgloss.Top, panels[2], panels[3])
	return lipgloss.JoinVertical(lipgloss.Left, top, bottom)
}

func (m model) renderLines(lines []string) string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		style := m.styles.automation
		switch {
		case strings.HasPrefix(line, "visitor:"):
			style = m.styles.visitor
		case strings.HasPrefix(line, "operator:"):
			style = m.styles.operator
		}
		out = append(out, style.Render(line))
	}
	return strings.Join(out, "\n")
}

func (m model) renderPicker() string {
	var b strings.Builder
	for i, match := range m.picker.Matches() {
		line := fmt.Sprintf("/%s — %s", match.Trigger, match.Body)
		if len(line) > 80 {
			line = line[:77] + "..."
		}
		if i == m.picker.Cursor() {
			b.WriteString(m.styles.pickerSel.Render(line))
		} else {
			b.WriteString(m.styles.picker.Render(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}
