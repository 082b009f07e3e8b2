// Package negotiation owns the price-bargaining state machine. Each
// account has at most one live session; every mutation of balance,
// inventory, or stock is delegated to the Settler.
package negotiation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/maeulmarket/server/market/persona"
	"github.com/maeulmarket/server/market/pricing"
	"github.com/maeulmarket/server/market/resolver"
	"github.com/maeulmarket/server/model"
	"go.uber.org/zap"
)

var (
	ErrSessionActive = errors.New("negotiation: another session is already active")
	ErrNoSession     = errors.New("negotiation: no active session")
	ErrPendingReply  = errors.New("negotiation: a reply is already pending")
	ErrEmptyMessage  = errors.New("negotiation: message is empty")
)

// Counterparty line shown when the user accepts but cannot pay.
const insufficientText = "어... 잔액이 부족하신 것 같은데요? 돈을 좀 더 챙겨 오세요."

// SettleOutcome reports what a settlement did. Completed is false when a
// buy was declined for insufficient balance; nothing was mutated then.
type SettleOutcome struct {
	Completed bool
	Balance   int64  // account balance after settlement
	OwnedID   string // minted inventory item on a completed buy
}

// Settler applies an agreed price to balance, inventory, and stock as
// one transaction. A returned error means nothing was applied.
type Settler interface {
	Settle(ctx context.Context, accountID int64, mode model.TradeMode, item Item, price int64) (*SettleOutcome, error)
}

// PriceResolver produces the counterparty's next line and price.
type PriceResolver interface {
	Resolve(ctx context.Context, in resolver.Input) resolver.Result
}

// PersonaSelector draws a counterparty disposition for a new session.
type PersonaSelector interface {
	Select(mode model.TradeMode) persona.Personality
}

// Manager holds every account's live session.
type Manager struct {
	mu       sync.Mutex
	sessions map[int64]*session

	selector PersonaSelector
	resolver PriceResolver
	settler  Settler
	rotAfter time.Duration
	logger   *zap.Logger
}

func NewManager(selector PersonaSelector, r PriceResolver, settler Settler, rotAfter time.Duration, logger *zap.Logger) *Manager {
	return &Manager{
		sessions: make(map[int64]*session),
		selector: selector,
		resolver: r,
		settler:  settler,
		rotAfter: rotAfter,
		logger:   logger,
	}
}

// Start opens a session for the account. A live session must be settled
// or cancelled first.
func (m *Manager) Start(accountID int64, mode model.TradeMode, item Item) (View, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[accountID]; ok {
		return View{}, ErrSessionActive
	}

	s := &session{
		accountID:   accountID,
		mode:        mode,
		item:        item,
		personality: m.selector.Select(mode),
		offer:       pricing.InitialOffer(mode, item.BasePrice, item.IsCleaned),
	}
	s.append(false, greeting(mode, item.Name, s.offer))
	m.sessions[accountID] = s

	m.logger.Info("negotiation started",
		zap.Int64("account_id", accountID),
		zap.String("mode", string(mode)),
		zap.String("item", item.Name),
		zap.Int64("offer", s.offer))
	return s.view(), nil
}

// Current returns the account's session view, or an inactive view.
func (m *Manager) Current(accountID int64) View {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[accountID]; ok {
		return s.view()
	}
	return View{Active: false, Messages: []Message{}}
}

// SubmitMessage appends the user's line and obtains the counterparty's
// answer. The exact accept phrase skips the resolver and settles at the
// current offer; the returned outcome is non-nil only on that path.
// Only one submission may be in flight per session.
func (m *Manager) SubmitMessage(ctx context.Context, accountID int64, text string) (View, *SettleOutcome, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return View{}, nil, ErrEmptyMessage
	}

	m.mu.Lock()
	s, ok := m.sessions[accountID]
	if !ok {
		m.mu.Unlock()
		return View{}, nil, ErrNoSession
	}
	if s.pending {
		m.mu.Unlock()
		return View{}, nil, ErrPendingReply
	}

	// The transcript reflects submission order even if the reply fails.
	s.append(true, text)

	if text == AcceptPhrase {
		return m.acceptLocked(ctx, s)
	}

	s.pending = true
	in := resolver.Input{
		Mode:         s.mode,
		ItemName:     s.item.Name,
		BasePrice:    s.item.BasePrice,
		IsCleaned:    s.item.IsCleaned,
		Spoiled:      pricing.Spoiled(s.item.IsFood, s.item.PurchaseTime, time.Now(), m.rotAfter),
		Personality:  s.personality,
		UserMessage:  text,
		CurrentPrice: s.offer,
		Transcript:   transcript(s.messages[:len(s.messages)-1]),
	}
	m.mu.Unlock()

	res := m.resolver.Resolve(ctx, in)

	m.mu.Lock()
	defer m.mu.Unlock()
	s.pending = false
	if cur, ok := m.sessions[accountID]; !ok || cur != s {
		// The session was settled or cancelled while we waited.
		return View{}, nil, ErrNoSession
	}
	if res.IsError {
		s.hasError = true
		return s.view(), nil, nil
	}
	s.hasError = false
	s.append(false, res.Text)
	s.offer = res.NewPrice
	return s.view(), nil, nil
}

// acceptLocked settles at the current offer. Called with m.mu held; the
// lock is dropped for the settlement itself.
func (m *Manager) acceptLocked(ctx context.Context, s *session) (View, *SettleOutcome, error) {
	accountID, mode, item, price := s.accountID, s.mode, s.item, s.offer
	s.pending = true
	m.mu.Unlock()

	out, err := m.settler.Settle(ctx, accountID, mode, item, price)

	m.mu.Lock()
	defer m.mu.Unlock()
	s.pending = false
	if err != nil {
		// Store failure: the session survives so the user can retry.
		m.logger.Error("settlement failed",
			zap.Int64("account_id", accountID),
			zap.Error(err))
		return s.view(), nil, err
	}
	if !out.Completed {
		// Buy declined for insufficient balance; keep haggling.
		s.append(false, insufficientText)
		return s.view(), out, nil
	}
	if cur, ok := m.sessions[accountID]; ok && cur == s {
		delete(m.sessions, accountID)
	}
	m.logger.Info("negotiation settled",
		zap.Int64("account_id", accountID),
		zap.String("mode", string(mode)),
		zap.Int64("price", price))
	return View{Active: false, Messages: []Message{}}, out, nil
}

// Cancel discards the session without touching money, inventory, or stock.
func (m *Manager) Cancel(accountID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[accountID]; !ok {
		return ErrNoSession
	}
	delete(m.sessions, accountID)
	return nil
}

// Exit auto-settles an abandoned session at the last known offer. A buy
// the account cannot afford is silently discarded with no transaction.
// Calling Exit with no live session is a no-op, so repeated exits are
// safe. A settlement error keeps the session so a retry stays possible.
func (m *Manager) Exit(ctx context.Context, accountID int64) (*SettleOutcome, error) {
	m.mu.Lock()
	s, ok := m.sessions[accountID]
	if !ok {
		m.mu.Unlock()
		return nil, nil
	}
	mode, item, price := s.mode, s.item, s.offer
	m.mu.Unlock()

	out, err := m.settler.Settle(ctx, accountID, mode, item, price)
	if err != nil {
		m.logger.Error("auto-settlement failed",
			zap.Int64("account_id", accountID),
			zap.Error(err))
		return nil, err
	}

	m.mu.Lock()
	if cur, ok := m.sessions[accountID]; ok && cur == s {
		delete(m.sessions, accountID)
	}
	m.mu.Unlock()
	return out, nil
}

func greeting(mode model.TradeMode, itemName string, offer int64) string {
	if mode == model.TradeSell {
		return fmt.Sprintf("%s 파신다고요? 한번 볼게요. 음... %d원 정도면 살게요.", itemName, offer)
	}
	return fmt.Sprintf("어서 오세요! %s 보러 오셨어요? %d원에 드릴게요.", itemName, offer)
}

func transcript(msgs []Message) []resolver.Message {
	out := make([]resolver.Message, len(msgs))
	for i, msg := range msgs {
		out[i] = resolver.Message{FromUser: msg.FromUser, Text: msg.Text}
	}
	return out
}
