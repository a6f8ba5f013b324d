package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
)

func TestPageNormalizeDefaults(t *testing.T) {
	p := Page{}.Normalize()
	assert.Equal(t, 10, p.First)
	assert.Equal(t, 0, p.Offset)

	p = Page{First: -5, Offset: -3}.Normalize()
	assert.Equal(t, 10, p.First)
	assert.Equal(t, 0, p.Offset)
}

func TestPageNormalizeCap(t *testing.T) {
	p := Page{First: 500, Offset: 40}.Normalize()
	assert.Equal(t, 100, p.First)
	assert.Equal(t, 40, p.Offset)

	p = Page{First: 100}.Normalize()
	assert.Equal(t, 100, p.First)
}

func TestSortOptions(t *testing.T) {
	mapping := map[string]string{
		"PRICE":   "price",
		"CREATED": "created_at",
		"NAME":    "name",
	}

	cases := []struct {
		orderBy string
		want    bson.D
	}{
		{"", bson.D{{Key: "created_at", Value: -1}}},
		{"PRICE_ASC", bson.D{{Key: "price", Value: 1}}},
		{"PRICE_DESC", bson.D{{Key: "price", Value: -1}}},
		{"NAME_ASC", bson.D{{Key: "name", Value: 1}}},
		{"CREATED_DESC", bson.D{{Key: "created_at", Value: -1}}},
		// champ inconnu : retombe sur created_at, garde la direction
		{"BOGUS_ASC", bson.D{{Key: "created_at", Value: 1}}},
		// enum malformé sans underscore
		{"PRICE", bson.D{{Key: "created_at", Value: -1}}},
	}

	for _, c := range cases {
		got := SortOptions(c.orderBy, mapping)
		assert.Equal(t, c.want, got, "orderBy=%q", c.orderBy)
	}
}
