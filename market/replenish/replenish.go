// Package replenish keeps the catalog populated. Neighbor accounts put
// new treasures up for sale on a fixed cadence, and the pool gets a
// top-up whenever active listings run low.
package replenish

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/maeulmarket/server/config"
	"github.com/maeulmarket/server/market/catalog"
	"github.com/maeulmarket/server/model"
	"github.com/maeulmarket/server/scheduler"
	"go.uber.org/zap"
)

var categories = []string{
	"전자기기", "의류", "가구", "도서", "식품", "취미", "생활가전",
	"반려동물", "스포츠", "뷰티", "잡화", "주방용품", "악세서리", "식물",
}

var adjectives = []string{
	"고급", "낡은", "미개봉", "빈티지", "감성", "실속형", "한정판", "레트로",
	"튼튼한", "심플한", "유니크한", "클래식한", "트렌디한", "가성비", "귀여운",
}

var nouns = []string{
	"에어팟", "아이패드", "맥북", "롱패딩", "원목 책상", "소설 전집", "수제 쿠키", "레고 세트", "공기청정기", "강아지 사료",
	"테니스 라켓", "수분 크림", "모니터", "자전거", "게이밍 체어", "커피 머신", "헤드폰", "운동화", "캠핑 텐트", "블루투스 스피커",
	"삼각김밥", "컵라면", "초코바", "생수", "포테이토칩", "캔커피", "토스트", "도넛", "샌드위치", "우유",
}

// foodNouns marks nouns that are edible regardless of drawn category.
var foodNouns = map[string]bool{
	"수제 쿠키": true, "삼각김밥": true, "컵라면": true, "초코바": true, "생수": true,
	"포테이토칩": true, "캔커피": true, "토스트": true, "도넛": true, "샌드위치": true, "우유": true,
}

const (
	foodStock  = 100
	otherStock = 900
)

// Replenisher posts generated listings on a schedule.
type Replenisher struct {
	store     *catalog.Store
	cfg       config.MarketConfig
	randFloat func() float64
	randIntn  func(int) int
	logger    *zap.Logger
}

func New(store *catalog.Store, cfg config.MarketConfig, logger *zap.Logger) *Replenisher {
	return &Replenisher{
		store:     store,
		cfg:       cfg,
		randFloat: rand.Float64,
		randIntn:  rand.Intn,
		logger:    logger,
	}
}

// Register hooks the replenish tick onto the scheduler.
func (r *Replenisher) Register(s *scheduler.Scheduler) {
	s.AddTicker("market.replenish", r.cfg.ReplenishInterval, func() {
		r.Tick(context.Background())
	})
}

// Tick posts one listing with the configured probability, then tops the
// pool up to the low-water mark if browsing has drained it.
func (r *Replenisher) Tick(ctx context.Context) {
	if r.randFloat() < r.cfg.ReplenishChance {
		if err := r.post(ctx); err != nil {
			r.logger.Warn("replenish post failed", zap.Error(err))
		}
	}

	count, err := r.store.CountActive(ctx)
	if err != nil {
		r.logger.Warn("replenish count failed", zap.Error(err))
		return
	}
	if count >= int64(r.cfg.ReplenishLowWater) {
		return
	}
	for i := 0; i < r.cfg.ReplenishBatchSize; i++ {
		if err := r.post(ctx); err != nil {
			r.logger.Warn("replenish top-up failed", zap.Error(err))
			return
		}
	}
}

// Seed fills an empty catalog so a fresh deployment has something to
// browse before the first tick lands.
func (r *Replenisher) Seed(ctx context.Context, n int) error {
	count, err := r.store.CountActive(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	for i := 0; i < n; i++ {
		if err := r.post(ctx); err != nil {
			return err
		}
	}
	r.logger.Info("catalog seeded", zap.Int("listings", n))
	return nil
}

func (r *Replenisher) post(ctx context.Context) error {
	l := r.generate()
	if err := r.store.Create(ctx, l); err != nil {
		return err
	}
	r.logger.Info("neighbor posted a listing",
		zap.String("name", l.Name),
		zap.String("category", l.Category),
		zap.Int64("base_price", l.BasePrice),
		zap.Int("stock", l.Stock))
	return nil
}

// generate draws a random listing. Food prices run 500..15000 won in 500
// steps; everything else runs 5000..1000000 in 5000 steps.
func (r *Replenisher) generate() *model.Listing {
	category := categories[r.randIntn(len(categories))]
	adj := adjectives[r.randIntn(len(adjectives))]
	noun := nouns[r.randIntn(len(nouns))]
	isFood := category == "식품" || foodNouns[noun]

	var basePrice int64
	stock := otherStock
	if isFood {
		basePrice = int64(r.randIntn(30)+1) * 500
		stock = foodStock
	} else {
		basePrice = int64(r.randIntn(200)+1) * 5000
	}

	return &model.Listing{
		Name:      fmt.Sprintf("%s %s (이웃 보물)", adj, noun),
		Category:  category,
		BasePrice: basePrice,
		IsFood:    isFood,
		IsCleaned: true,
		ImageURL:  fmt.Sprintf("https://picsum.photos/seed/%d/200/200", time.Now().UnixNano()),
		Stock:     stock,
	}
}
