package service

import (
	"fmt"
	"time"
)

// generateOrderNumber produit un numéro lisible DH<année><8 derniers chiffres
// du timestamp ms><séquence sur 3 chiffres min>. Le schéma seul ne garantit
// pas l'unicité sous concurrence : l'index unique sur order_number fait foi,
// l'insertion régénère en cas de collision.
func generateOrderNumber(seq int64, now time.Time) string {
	ts := fmt.Sprintf("%d", now.UnixMilli())
	if len(ts) > 8 {
		ts = ts[len(ts)-8:]
	}
	return fmt.Sprintf("DH%d%s%03d", now.Year(), ts, seq)
}
