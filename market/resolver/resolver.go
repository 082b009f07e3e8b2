// Package resolver turns a user's haggling message into the counterparty's
// reply and an updated price by calling an external text-generation provider.
// Every provider failure is absorbed here and converted into an in-character
// error result; nothing escapes to the negotiation layer as an error.
package resolver

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/maeulmarket/server/config"
	"github.com/maeulmarket/server/market/persona"
	"github.com/maeulmarket/server/model"
	"go.uber.org/zap"
)

// ErrRateLimited marks a retryable provider failure. Providers wrap it so
// the resolver can back off and retry; any other error fails immediately.
var ErrRateLimited = errors.New("resolver: provider rate limited")

// Fallback texts shown to the user when the provider cannot answer.
const (
	awayText   = "거래 상대방이 잠시 자리를 비운 것 같습니다. 잠시 후 다시 시도해주세요."
	noKeyText  = "상대방과 연결할 수 없습니다. (provider.api_key가 설정되지 않았습니다.)"
	mumbleText = "음... 뭐라고 하셨나요?"
)

// Message is one prior line of the negotiation transcript.
type Message struct {
	FromUser bool
	Text     string
}

// Input carries everything the provider needs to answer in character.
type Input struct {
	Mode         model.TradeMode
	ItemName     string
	BasePrice    int64
	IsCleaned    bool
	Spoiled      bool
	Personality  persona.Personality
	UserMessage  string
	CurrentPrice int64
	Transcript   []Message // prior messages, oldest first, excluding UserMessage
}

// Result is the resolver's answer. On IsError the price is always the
// caller's unchanged current price.
type Result struct {
	Text     string
	NewPrice int64
	IsError  bool
}

// ChatMessage is one provider-facing chat turn.
type ChatMessage struct {
	Role    string // "user" | "assistant"
	Content string
}

// Request is the provider-facing prompt.
type Request struct {
	System   string
	Messages []ChatMessage
}

// Reply is the provider's structured answer. NewPrice stays raw; the
// resolver coerces it and falls back on the current price if it cannot.
type Reply struct {
	Text     string
	NewPrice string
}

// Provider answers a negotiation prompt. Implementations classify
// rate-limit failures by wrapping ErrRateLimited.
type Provider interface {
	Configured() bool
	Complete(ctx context.Context, req Request) (*Reply, error)
}

// Resolver calls the provider with bounded exponential-backoff retries.
type Resolver struct {
	provider   Provider
	maxRetries int
	backoff    time.Duration
	sleep      func(time.Duration)
	logger     *zap.Logger
}

// New creates a Resolver. cfg.MaxRetries and cfg.BackoffBase fall back to
// 3 and 1s when unset.
func New(p Provider, cfg config.ProviderConfig, logger *zap.Logger) *Resolver {
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	backoff := cfg.BackoffBase
	if backoff <= 0 {
		backoff = time.Second
	}
	return &Resolver{
		provider:   p,
		maxRetries: maxRetries,
		backoff:    backoff,
		sleep:      time.Sleep,
		logger:     logger,
	}
}

// Resolve asks the provider for the counterparty's reply. It never returns
// an error: configuration and provider failures come back as IsError
// results with the caller's price unchanged.
func (r *Resolver) Resolve(ctx context.Context, in Input) Result {
	if r.provider == nil || !r.provider.Configured() {
		return Result{Text: noKeyText, NewPrice: in.CurrentPrice, IsError: true}
	}

	req := buildRequest(in)

	var reply *Reply
	var err error
	for attempt := 0; ; attempt++ {
		reply, err = r.provider.Complete(ctx, req)
		if err == nil {
			break
		}
		if !errors.Is(err, ErrRateLimited) || attempt >= r.maxRetries {
			r.logger.Warn("provider call failed",
				zap.Int("attempts", attempt+1),
				zap.Error(err))
			return Result{Text: awayText, NewPrice: in.CurrentPrice, IsError: true}
		}
		// 1s, 2s, 4s for the default base.
		r.sleep(r.backoff << attempt)
	}

	price, ok := coercePrice(reply.NewPrice)
	if !ok {
		price = in.CurrentPrice
	}
	text := reply.Text
	if text == "" {
		text = mumbleText
	}
	return Result{Text: text, NewPrice: price}
}

// coercePrice parses a provider price field into a non-negative integer.
func coercePrice(raw string) (int64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		if n < 0 {
			return 0, false
		}
		return n, true
	}
	// Providers occasionally answer with a float.
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		if f < 0 {
			return 0, false
		}
		return int64(f), true
	}
	return 0, false
}
