package domain

import (
	"time"

	"github.com/google/uuid"
)

type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Message is one chat bubble. Immutable once created; the conversation
// log is append-only.
type Message struct {
	ID          string
	Text        string
	Sender      Sender
	Intent      string
	ActionTaken string
	Timestamp   time.Time
}

func NewMessage(sender Sender, text string) Message {
	return Message{
		ID:        uuid.NewString(),
		Text:      text,
		Sender:    sender,
		Timestamp: time.Now(),
	}
}

// Reply is the backend's answer to one user utterance.
type Reply struct {
	Text        string
	Intent      string
	ActionTaken string
}

// Intents the backend is known to emit. Unrecognized values are shown
// verbatim, so this list is informative rather than exhaustive.
const (
	IntentCheckBalance   = "check_balance"
	IntentGetPricing     = "get_pricing"
	IntentContactSupport = "contact_support"
	IntentGetHours       = "get_hours"
	IntentPaymentMethods = "get_payment_methods"
	IntentResetPassword  = "reset_password"
	IntentGeneralQuery   = "general_query"
)

// Stats mirrors the backend's /api/stats payload.
type Stats struct {
	TotalFAQs  int
	TotalUsers int
}
