package notify

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"time"
)

// Event names posted to the intake webhook.
const (
	EventSessionStarted   = "session.started"
	EventLeadQualified    = "lead.qualified"
	EventLeadSubmitted    = "lead.submitted"
	EventEscalation       = "escalation.requested"
	EventFastTrack        = "fasttrack.requested"
	EventSessionClosed    = "session.closed"
	EventOperatorTakeover = "operator.takeover"
)

type Payload struct {
	Event     string            `json:"event"`
	SessionID string            `json:"sessionId"`
	Fields    map[string]string `json:"fields,omitempty"`
	SentAt    string            `json:"sentAt"`
}

// Notifier posts intake checkpoints to an external webhook. Delivery is
// best-effort: failures are logged and never surfaced to the caller, so a
// dead webhook cannot stall a conversation.
type Notifier struct {
	url    string
	client *http.Client
	now    func() time.Time
}

func New(webhookURL string) *Notifier {
	return &Notifier{
		url: webhookURL,
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
		now: time.Now,
	}
}

// Send fires the notification in the background. A disabled notifier (empty
// URL) is valid and does nothing.
func (n *Notifier) Send(event, sessionID string, fields map[string]string) {
	if n == nil || n.url == "" {
		return
	}

	payload := Payload{
		Event:     event,
		SessionID: sessionID,
		Fields:    fields,
		SentAt:    n.now().UTC().Format(time.RFC3339),
	}

	go func() {
		body, err := json.Marshal(payload)
		if err != nil {
			log.Printf("notify: marshal %s for %s: %v", event, sessionID, err)
			return
		}

		res, err := n.client.Post(n.url, "application/json", bytes.NewReader(body))
		if err != nil {
			log.Printf("notify: deliver %s for %s: %v", event, sessionID, err)
			return
		}
		defer res.Body.Close()

		if res.StatusCode >= 300 {
			log.Printf("notify: deliver %s for %s: status %d", event, sessionID, res.StatusCode)
		}
	}()
}
