package pricing

import (
	"testing"
	"time"

	"github.com/maeulmarket/server/model"
	"github.com/stretchr/testify/assert"
)

func TestInitialOffer(t *testing.T) {
	tests := []struct {
		name      string
		mode      model.TradeMode
		basePrice int64
		isCleaned bool
		want      int64
	}{
		{"buy uses base price", model.TradeBuy, 45000, false, 45000},
		{"buy ignores cleaned flag", model.TradeBuy, 45000, true, 45000},
		{"sell uncleaned halves", model.TradeSell, 10000, false, 5000},
		{"sell cleaned keeps full value", model.TradeSell, 10000, true, 10000},
		{"sell odd price rounds down", model.TradeSell, 4999, false, 2499},
		{"zero base price", model.TradeSell, 0, false, 0},
		{"negative clamps to zero", model.TradeBuy, -100, false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InitialOffer(tt.mode, tt.basePrice, tt.isCleaned))
		})
	}
}

func TestInitialOffer_Deterministic(t *testing.T) {
	for i := 0; i < 5; i++ {
		assert.Equal(t, int64(2500), InitialOffer(model.TradeSell, 5001, false))
	}
}

func TestCleaningCost(t *testing.T) {
	assert.Equal(t, int64(4500), CleaningCost(45000))
	assert.Equal(t, int64(499), CleaningCost(4999))
	assert.Equal(t, int64(0), CleaningCost(5))
	assert.Equal(t, int64(0), CleaningCost(-10))
}

func TestSpoiled(t *testing.T) {
	now := time.Now()
	rotAfter := 30 * time.Minute

	fresh := now.Add(-10 * time.Minute)
	old := now.Add(-31 * time.Minute)

	assert.False(t, Spoiled(true, &fresh, now, rotAfter))
	assert.True(t, Spoiled(true, &old, now, rotAfter))
	assert.False(t, Spoiled(false, &old, now, rotAfter), "non-food never spoils")
	assert.False(t, Spoiled(true, nil, now, rotAfter), "no purchase time means no spoilage")
}
