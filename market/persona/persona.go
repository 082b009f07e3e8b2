// Package persona draws the counterparty disposition for a negotiation.
package persona

import (
	"math/rand"

	"github.com/maeulmarket/server/model"
)

// Personality is a counterparty disposition, from agreeable to hostile.
type Personality int

const (
	Kind Personality = iota
	Normal
	Strange
	Rude
)

// Label is the Korean display name used in prompts and logs.
func (p Personality) Label() string {
	switch p {
	case Kind:
		return "친절함"
	case Normal:
		return "보통"
	case Strange:
		return "이상함"
	case Rude:
		return "욕설/무례"
	}
	return "보통"
}

// Description is the behavioral brief handed to the text-generation provider.
func (p Personality) Description() string {
	switch p {
	case Kind:
		return "매우 상냥하고 배려심이 깊습니다. 가격 제안을 기분 좋게 수락하는 편이며, 물건을 살 때는 오히려 더 얹어주기도 합니다. 말투에 '^^', 'ㅎㅎ', '감사합니다'가 많습니다."
	case Normal:
		return "평범한 중고 거래자입니다. 예의 바르지만 손해는 보지 않으려 하며, 합리적인 수준의 네고(협상)만 받아들입니다."
	case Strange:
		return "종잡을 수 없는 사람입니다. 갑자기 엉뚱한 소리를 하거나, 가격을 말도 안 되게 부르기도 합니다. 말투가 독특하고 예측이 불가능합니다."
	case Rude:
		return "매우 무례하고 예의가 없습니다. 가격 깎는 것을 극도로 싫어하며, 무리하게 네고를 요청하면 화를 내며 오히려 가격을 인상하거나 거래를 거부합니다. 말투가 거칠고 공격적입니다."
	}
	return ""
}

func (p Personality) String() string { return p.Label() }

// Selector draws a personality from a mode-specific weighted table.
// The random source is injected so tests can supply fixed sequences.
type Selector struct {
	randFloat func() float64
}

// NewSelector creates a Selector. Pass nil to use math/rand.
func NewSelector(randFloat func() float64) *Selector {
	if randFloat == nil {
		randFloat = rand.Float64
	}
	return &Selector{randFloat: randFloat}
}

// Select draws a personality for the given trade mode. Seller counterparties
// (buy mode) skew friendlier than buyer counterparties (sell mode), where
// most callers are ordinary hagglers.
func (s *Selector) Select(mode model.TradeMode) Personality {
	r := s.randFloat()
	if mode == model.TradeSell {
		// buyer persona: 10% rude, 5% strange, 10% kind, rest normal
		switch {
		case r < 0.10:
			return Rude
		case r < 0.15:
			return Strange
		case r < 0.25:
			return Kind
		default:
			return Normal
		}
	}
	// seller persona: 20% kind, 50% normal, 10% strange, 20% rude
	switch {
	case r < 0.20:
		return Kind
	case r < 0.70:
		return Normal
	case r < 0.80:
		return Strange
	default:
		return Rude
	}
}
