package probe

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/google/uuid"
	"github.com/okian/tsuri/pkg/logger"
)

// Constants for random number generation.
const (
	randomFloatDivisor = 1000000
	invalidTabEvery    = 25
)

// Tabs, regions and queries the generator picks from. "deep-sea" is an
// unknown tab the service must reject.
var (
	tabs    = []string{"", "all", "beginner", "family", "night", "port", "Beginner"}
	regions = []string{"", "全国", "nationwide", "神奈川県", "神奈川", "Kanagawa Prefecture", "東京都", "千葉", "静岡県", "京都府", "北海道", "大阪", "沖縄県"}
	queries = []string{
		"アジ", "あじ", "aji", "チヌ", "くろだい", "シーバス", "スズキ", "めばる", "イカ",
		"本牧", "横浜", "大黒", "港", "ふ頭", "神奈川", "ファミリー",
		"サビキ", "ちょい投げ", "夜釣り", "潮", "tide", "初心者", "ルアー",
		"ｱｼﾞ", "ＡＪＩ", "zzz-no-match", "",
	}
)

// getRandomFloat returns a random float64 between 0.0 and 1.0 using crypto/rand.
func getRandomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

// getRandomIndex returns a random index below n.
func getRandomIndex(n int) int {
	if n <= 1 {
		return 0
	}
	v, _ := rand.Int(rand.Reader, big.NewInt(int64(n)))
	return int(v.Int64())
}

func pick(values []string) string { return values[getRandomIndex(len(values))] }

// RandomOrigin returns a random coordinate inside the Japan bounding box.
func RandomOrigin() (lat, lng float64) {
	return minLat + getRandomFloat()*(maxLat-minLat), minLng + getRandomFloat()*(maxLng-minLng)
}

// Generate creates n requests, a share of cfg.SearchRatio of them searches.
func Generate(ctx context.Context, cfg *Config, n int) ([]Request, error) {
	logger.Get().Info(ctx, "generating requests", logger.Int("count", n))

	reqs := make([]Request, n)
	for i := range reqs {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("context cancelled during generation: %w", err)
		}
		reqs[i] = generateSingle(i, cfg.SearchRatio)
	}
	return reqs, nil
}

func generateSingle(index int, searchRatio float64) Request {
	r := Request{ID: uuid.NewString()}
	if getRandomFloat() < searchRatio {
		r.Kind = KindSearch
		r.Query = pick(queries)
		return r
	}

	r.Kind = KindRank
	r.Tab = pick(tabs)
	if index%invalidTabEvery == invalidTabEvery-1 {
		r.Tab = "deep-sea"
	}
	r.Region = pick(regions)
	if getRandomFloat() < 0.5 {
		r.NearMe = true
		r.Lat, r.Lng = RandomOrigin()
	}
	return r
}
