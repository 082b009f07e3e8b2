package persona

import (
	"testing"

	"github.com/maeulmarket/server/model"
	"github.com/stretchr/testify/assert"
)

// fixed returns a rand source that yields the given values in order.
func fixed(vals ...float64) func() float64 {
	i := 0
	return func() float64 {
		v := vals[i%len(vals)]
		i++
		return v
	}
}

func TestSelect_BuyTable(t *testing.T) {
	tests := []struct {
		r    float64
		want Personality
	}{
		{0.0, Kind},
		{0.19, Kind},
		{0.20, Normal},
		{0.69, Normal},
		{0.70, Strange},
		{0.79, Strange},
		{0.80, Rude},
		{0.99, Rude},
	}
	for _, tt := range tests {
		s := NewSelector(fixed(tt.r))
		assert.Equal(t, tt.want, s.Select(model.TradeBuy), "r=%v", tt.r)
	}
}

func TestSelect_SellTable(t *testing.T) {
	tests := []struct {
		r    float64
		want Personality
	}{
		{0.0, Rude},
		{0.09, Rude},
		{0.10, Strange},
		{0.14, Strange},
		{0.15, Kind},
		{0.24, Kind},
		{0.25, Normal},
		{0.99, Normal},
	}
	for _, tt := range tests {
		s := NewSelector(fixed(tt.r))
		assert.Equal(t, tt.want, s.Select(model.TradeSell), "r=%v", tt.r)
	}
}

func TestSelect_DefaultSource(t *testing.T) {
	s := NewSelector(nil)
	// Just verify every draw lands in the closed set.
	for i := 0; i < 100; i++ {
		p := s.Select(model.TradeBuy)
		assert.Contains(t, []Personality{Kind, Normal, Strange, Rude}, p)
	}
}

func TestPersonality_Label(t *testing.T) {
	assert.Equal(t, "친절함", Kind.Label())
	assert.Equal(t, "보통", Normal.Label())
	assert.Equal(t, "이상함", Strange.Label())
	assert.Equal(t, "욕설/무례", Rude.Label())
}

func TestPersonality_DescriptionNonEmpty(t *testing.T) {
	for _, p := range []Personality{Kind, Normal, Strange, Rude} {
		assert.NotEmpty(t, p.Description())
	}
}
