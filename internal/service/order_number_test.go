package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGenerateOrderNumber(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)
	ms := fmt.Sprintf("%d", now.UnixMilli())

	num := generateOrderNumber(7, now)

	assert.Equal(t, "DH2026"+ms[len(ms)-8:]+"007", num)
}

func TestGenerateOrderNumberSequencePadding(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	// Séquence sur 3 chiffres minimum, étendue au-delà
	assert.Contains(t, generateOrderNumber(1, now), "001")
	assert.Contains(t, generateOrderNumber(42, now), "042")
	assert.Contains(t, generateOrderNumber(1234, now), "1234")
}

func TestGenerateOrderNumberDiffersBySequence(t *testing.T) {
	now := time.Now()

	// Même instant, séquences différentes : numéros différents
	a := generateOrderNumber(1, now)
	b := generateOrderNumber(2, now)
	assert.NotEqual(t, a, b)
}
