package models

import "time"

// DateRange borne les rapports (inclusif des deux côtés).
type DateRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// MonthlyReportRow : revenus / commandes / produits vendus pour un mois.
type MonthlyReportRow struct {
	Year         int     `bson:"year" json:"year"`
	Month        int     `bson:"month" json:"month"`
	Revenue      float64 `bson:"revenue" json:"revenue"`
	OrderCount   int     `bson:"order_count" json:"order_count"`
	ProductCount int     `bson:"product_count" json:"product_count"`
}

// ProductSalesRow : classement des ventes par produit sur une période.
type ProductSalesRow struct {
	ProductID   string  `bson:"product_id" json:"product_id"`
	ProductName string  `bson:"product_name" json:"product_name"`
	ProductSKU  string  `bson:"product_sku" json:"product_sku"`
	TotalSold   int     `bson:"total_sold" json:"total_sold"`
	Revenue     float64 `bson:"revenue" json:"revenue"`
	Percentage  float64 `bson:"-" json:"percentage"`
}

// ReportStats : synthèse sur une période.
type ReportStats struct {
	TotalRevenue      float64 `json:"total_revenue"`
	TotalOrders       int     `json:"total_orders"`
	TotalProducts     int     `json:"total_products"`
	AverageOrderValue float64 `json:"average_order_value"`
}
