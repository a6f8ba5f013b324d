package admin

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"smartshop_back_end/internal/models"
	"smartshop_back_end/internal/store"
)

var reportStore store.ReportStore

func InitReports(rs store.ReportStore) {
	reportStore = rs
}

// rangeFromQuery lit from/to (YYYY-MM-DD), 30 derniers jours par défaut.
// La borne de fin est poussée à la fin de journée pour rester inclusive.
func rangeFromQuery(c *gin.Context) (models.DateRange, bool) {
	now := time.Now()
	r := models.DateRange{From: now.AddDate(0, 0, -30), To: now}

	if raw := c.Query("from"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return r, false
		}
		r.From = t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return r, false
		}
		r.To = t.Add(24*time.Hour - time.Nanosecond)
	}
	return r, !r.To.Before(r.From)
}

//
// 📊 GET /api/admin/reports/stats?from=...&to=...
//
func GetReportStats(c *gin.Context) {
	r, ok := rangeFromQuery(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Période invalide (format attendu: YYYY-MM-DD)"})
		return
	}

	stats, err := reportStore.ReportStats(c.Request.Context(), r)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur calcul rapport"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"from":  r.From,
		"to":    r.To,
		"stats": stats,
	})
}

//
// 📊 GET /api/admin/reports/monthly?year=2026
//
func GetMonthlyReport(c *gin.Context) {
	year := time.Now().Year()
	if raw := c.Query("year"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 2000 || v > time.Now().Year()+1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Année invalide"})
			return
		}
		year = v
	}

	rows, err := reportStore.MonthlyReport(c.Request.Context(), year)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur calcul rapport mensuel"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"year": year, "months": rows})
}

//
// 📊 GET /api/admin/reports/products?from=...&to=...&search=...&limit=20
//
func GetProductSalesReport(c *gin.Context) {
	r, ok := rangeFromQuery(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Période invalide (format attendu: YYYY-MM-DD)"})
		return
	}

	limit := 20
	if raw := c.Query("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 && v <= 100 {
			limit = v
		}
	}

	rows, err := reportStore.ProductSales(c.Request.Context(), r, c.Query("search"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur calcul ventes par produit"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"from":  r.From,
		"to":    r.To,
		"items": rows,
	})
}
