package negotiation

import (
	"time"

	"github.com/maeulmarket/server/market/persona"
	"github.com/maeulmarket/server/model"
)

// AcceptPhrase closes a negotiation at the current offer. The match is
// exact and case sensitive; anything else goes to the counterparty.
const AcceptPhrase = "네 알겠습니다"

// Message is one line of a negotiation transcript.
type Message struct {
	FromUser bool      `json:"from_user"`
	Text     string    `json:"text"`
	SentAt   time.Time `json:"sent_at"`
}

// session is a single account's live negotiation. All access goes
// through the Manager's lock.
type session struct {
	accountID   int64
	mode        model.TradeMode
	item        Item
	personality persona.Personality
	offer       int64 // price if settled right now
	messages    []Message
	hasError    bool // last resolver call failed
	pending     bool // a resolver call is in flight
}

// View is the caller-facing snapshot of a session.
type View struct {
	Active       bool            `json:"active"`
	Mode         model.TradeMode `json:"mode,omitempty"`
	ItemName     string          `json:"item_name,omitempty"`
	ImageURL     string          `json:"image_url,omitempty"`
	Personality  string          `json:"personality,omitempty"`
	CurrentPrice int64           `json:"current_price"`
	HasError     bool            `json:"has_error"`
	Pending      bool            `json:"pending"`
	Messages     []Message       `json:"messages"`
}

func (s *session) view() View {
	msgs := make([]Message, len(s.messages))
	copy(msgs, s.messages)
	return View{
		Active:       true,
		Mode:         s.mode,
		ItemName:     s.item.Name,
		ImageURL:     s.item.ImageURL,
		Personality:  s.personality.Label(),
		CurrentPrice: s.offer,
		HasError:     s.hasError,
		Pending:      s.pending,
		Messages:     msgs,
	}
}

func (s *session) append(fromUser bool, text string) {
	s.messages = append(s.messages, Message{FromUser: fromUser, Text: text, SentAt: time.Now()})
}
