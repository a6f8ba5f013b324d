package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"smartshop_back_end/internal/models"
)

func TestFallbackParseQueryBrand(t *testing.T) {
	cases := []struct {
		query string
		brand string
	}{
		{"điện thoại iPhone mới nhất", "Apple"},
		{"galaxy s24 còn hàng không", "Samsung"},
		{"redmi note giá rẻ", "Xiaomi"},
		{"oneplus 12 về chưa", "OPPO"},
		{"máy nokia bền", "Nokia"},
		{"điện thoại nào cũng được", ""},
	}

	for _, tc := range cases {
		got := FallbackParseQuery(tc.query)
		assert.Equal(t, tc.brand, got.Brand, tc.query)
		assert.False(t, got.UsedAI)
	}
}

func TestFallbackParseQueryPriceUnderOver(t *testing.T) {
	// "dưới 10 triệu" : plafond uniquement
	got := FallbackParseQuery("điện thoại dưới 10 triệu")
	assert.Equal(t, 0.0, got.MinPrice)
	assert.Equal(t, 10_000_000.0, got.MaxPrice)
	assert.Equal(t, "mid-range", got.PriceRange)

	// "trên 25 triệu" : plancher uniquement
	got = FallbackParseQuery("máy trên 25 triệu")
	assert.Equal(t, 25_000_000.0, got.MinPrice)
	assert.Equal(t, 0.0, got.MaxPrice)
	assert.Equal(t, "flagship", got.PriceRange)
}

func TestFallbackParseQueryPriceApprox(t *testing.T) {
	// "tầm 5 triệu" : fourchette ±20% autour du montant
	got := FallbackParseQuery("tầm 5 triệu thì mua gì")
	assert.InDelta(t, 4_000_000, got.MinPrice, 1)
	assert.InDelta(t, 6_000_000, got.MaxPrice, 1)
	assert.Equal(t, "budget", got.PriceRange)

	// Prix isolé : ±10%
	got = FallbackParseQuery("điện thoại 10 triệu")
	assert.InDelta(t, 9_000_000, got.MinPrice, 1)
	assert.InDelta(t, 11_000_000, got.MaxPrice, 1)
}

func TestFallbackParseQueryPriceUnits(t *testing.T) {
	// "tr" équivaut à "triệu", "k" vaut mille
	got := FallbackParseQuery("tai nghe dưới 500k")
	assert.Equal(t, 500_000.0, got.MaxPrice)
	assert.Equal(t, "budget", got.PriceRange)

	got = FallbackParseQuery("máy dưới 12tr")
	assert.Equal(t, 12_000_000.0, got.MaxPrice)

	// Décimale à virgule
	got = FallbackParseQuery("dưới 7,5 triệu")
	assert.Equal(t, 7_500_000.0, got.MaxPrice)
}

func TestFallbackParseQueryRangeKeywords(t *testing.T) {
	// Les mots-clés de gamme fixent des bornes par défaut
	got := FallbackParseQuery("điện thoại giá rẻ cho sinh viên")
	assert.Equal(t, "budget", got.PriceRange)
	assert.Equal(t, 8_000_000.0, got.MaxPrice)

	got = FallbackParseQuery("máy tầm trung ổn định")
	assert.Equal(t, "mid-range", got.PriceRange)
	assert.Equal(t, 8_000_000.0, got.MinPrice)
	assert.Equal(t, 20_000_000.0, got.MaxPrice)

	got = FallbackParseQuery("flagship cao cấp nhất")
	assert.Equal(t, "flagship", got.PriceRange)
	assert.Equal(t, 20_000_000.0, got.MinPrice)
}

func TestFallbackParseQueryIntent(t *testing.T) {
	assert.Equal(t, "buy", FallbackParseQuery("mua iphone").Intent)
	assert.Equal(t, "exclude", FallbackParseQuery("ghét samsung").Intent)
	assert.Equal(t, "compare_mode", FallbackParseQuery("so sánh iphone và galaxy").Intent)
	assert.Equal(t, "compare_mode", FallbackParseQuery("compare oppo vs vivo").Intent)
}

func TestFallbackParseQueryFeatures(t *testing.T) {
	got := FallbackParseQuery("điện thoại chụp ảnh đẹp pin trâu chơi game")

	assert.Contains(t, got.Features, "camera")
	assert.Contains(t, got.Features, "pin trau")
	assert.Contains(t, got.Features, "gaming")
	assert.Equal(t, got.Keywords, got.Features)
}

func TestStripDiacritics(t *testing.T) {
	assert.Equal(t, "dien thoai duoi 5 trieu", stripDiacritics("điện thoại dưới 5 triệu"))
	assert.Equal(t, "Dong Da", stripDiacritics("Đống Đa"))
	assert.Equal(t, "ascii only", stripDiacritics("ascii only"))
}

func TestExtractPrices(t *testing.T) {
	assert.Equal(t, []float64{5_000_000}, extractPrices("tam 5 trieu"))
	assert.Equal(t, []float64{500_000}, extractPrices("500k"))
	assert.Equal(t, []float64{10_000_000, 15_000_000}, extractPrices("tu 10tr den 15tr"))
	assert.Empty(t, extractPrices("khong co gia"))
}

func TestFallbackCompare(t *testing.T) {
	a := models.Product{ID: primitive.NewObjectID(), Name: "Galaxy A55", Price: 9_000_000}
	b := models.Product{ID: primitive.NewObjectID(), Name: "iPhone 15", Price: 22_000_000, IsFeatured: true}

	got := FallbackCompare([]models.Product{a, b})

	assert.False(t, got.UsedAI)
	assert.Equal(t, "Galaxy A55", got.BestValue)

	require.Len(t, got.Strengths, 2)
	assert.Contains(t, got.Strengths[0].Strengths, "Prix le plus avantageux")
	assert.Contains(t, got.Strengths[1].Strengths, "Produit mis en avant")

	require.Len(t, got.Differences, 1)
	assert.Equal(t, "Prix", got.Differences[0].Category)
	require.Len(t, got.Differences[0].Entries, 2)
	assert.True(t, got.Differences[0].Entries[0].IsBest)
	assert.False(t, got.Differences[0].Entries[1].IsBest)
}
