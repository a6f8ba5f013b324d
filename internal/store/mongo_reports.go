package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"smartshop_back_end/internal/models"
)

// activeStatuses : tout sauf cancelled. Les commandes annulées sortent des
// rapports, la restauration de stock les neutralise déjà côté inventaire.
var activeStatuses = []string{
	models.OrderStatusPending,
	models.OrderStatusConfirmed,
	models.OrderStatusProcessing,
	models.OrderStatusShipping,
	models.OrderStatusDelivered,
}

// MongoReportStore implémente ReportStore en lecture seule sur la base orders.
type MongoReportStore struct {
	orders     *mongo.Collection
	orderItems *mongo.Collection
}

func NewMongoReportStore(ordersDB *mongo.Database) *MongoReportStore {
	return &MongoReportStore{
		orders:     ordersDB.Collection("orders"),
		orderItems: ordersDB.Collection("order_items"),
	}
}

// OrderStats : rollup global. Le revenu ne compte que les commandes livrées.
func (s *MongoReportStore) OrderStats(ctx context.Context) (*models.OrderStats, error) {
	stats := &models.OrderStats{}

	byStatus := map[string]*int{
		models.OrderStatusPending:   &stats.PendingOrders,
		models.OrderStatusConfirmed: &stats.ConfirmedOrders,
		models.OrderStatusShipping:  &stats.ShippingOrders,
		models.OrderStatusDelivered: &stats.DeliveredOrders,
		models.OrderStatusCancelled: &stats.CancelledOrders,
	}

	total, err := s.orders.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("comptage commandes: %w", err)
	}
	stats.TotalOrders = int(total)

	for status, dst := range byStatus {
		n, err := s.orders.CountDocuments(ctx, bson.M{"status": status})
		if err != nil {
			return nil, fmt.Errorf("comptage commandes %s: %w", status, err)
		}
		*dst = int(n)
	}

	midnight := time.Now().Truncate(24 * time.Hour)
	today, err := s.orders.CountDocuments(ctx, bson.M{"order_date": bson.M{"$gte": midnight}})
	if err != nil {
		return nil, fmt.Errorf("comptage commandes du jour: %w", err)
	}
	stats.TodayOrders = int(today)

	cursor, err := s.orders.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"status": models.OrderStatusDelivered}}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": "$total_amount"},
		}}},
	})
	if err != nil {
		return nil, fmt.Errorf("agrégation revenu: %w", err)
	}
	defer cursor.Close(ctx)

	var revenue []struct {
		Total float64 `bson:"total"`
	}
	if err := cursor.All(ctx, &revenue); err != nil {
		return nil, fmt.Errorf("décodage revenu: %w", err)
	}
	if len(revenue) > 0 {
		stats.TotalRevenue = revenue[0].Total
	}
	return stats, nil
}

// ReportStats : synthèse revenu / commandes / produits vendus sur une période.
func (s *MongoReportStore) ReportStats(ctx context.Context, r models.DateRange) (*models.ReportStats, error) {
	orderMatch := bson.M{
		"order_date": bson.M{"$gte": r.From, "$lte": r.To},
		"status":     bson.M{"$in": activeStatuses},
	}

	cursor, err := s.orders.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: orderMatch}},
		{{Key: "$group", Value: bson.M{
			"_id":           nil,
			"total_revenue": bson.M{"$sum": "$total_amount"},
			"total_orders":  bson.M{"$sum": 1},
		}}},
	})
	if err != nil {
		return nil, fmt.Errorf("agrégation stats: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		TotalRevenue float64 `bson:"total_revenue"`
		TotalOrders  int     `bson:"total_orders"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("décodage stats: %w", err)
	}

	stats := &models.ReportStats{}
	if len(rows) > 0 {
		stats.TotalRevenue = rows[0].TotalRevenue
		stats.TotalOrders = rows[0].TotalOrders
	}
	if stats.TotalOrders > 0 {
		stats.AverageOrderValue = stats.TotalRevenue / float64(stats.TotalOrders)
	}

	products, err := s.sumItemQuantities(ctx, orderMatch)
	if err != nil {
		return nil, err
	}
	stats.TotalProducts = products
	return stats, nil
}

// MonthlyReport : douze lignes, les mois sans vente à zéro.
func (s *MongoReportStore) MonthlyReport(ctx context.Context, year int) ([]models.MonthlyReportRow, error) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year, time.December, 31, 23, 59, 59, 0, time.UTC)

	orderMatch := bson.M{
		"order_date": bson.M{"$gte": start, "$lte": end},
		"status":     bson.M{"$in": activeStatuses},
	}

	cursor, err := s.orders.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: orderMatch}},
		{{Key: "$group", Value: bson.M{
			"_id":         bson.M{"month": bson.M{"$month": "$order_date"}},
			"revenue":     bson.M{"$sum": "$total_amount"},
			"order_count": bson.M{"$sum": 1},
		}}},
	})
	if err != nil {
		return nil, fmt.Errorf("agrégation mensuelle: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		ID struct {
			Month int `bson:"month"`
		} `bson:"_id"`
		Revenue    float64 `bson:"revenue"`
		OrderCount int     `bson:"order_count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("décodage mensuel: %w", err)
	}

	itemsCursor, err := s.orderItems.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$lookup", Value: bson.M{
			"from":         "orders",
			"localField":   "order_id",
			"foreignField": "_id",
			"as":           "order",
		}}},
		{{Key: "$unwind", Value: "$order"}},
		{{Key: "$match", Value: bson.M{
			"order.order_date": bson.M{"$gte": start, "$lte": end},
			"order.status":     bson.M{"$in": activeStatuses},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":           bson.M{"month": bson.M{"$month": "$order.order_date"}},
			"product_count": bson.M{"$sum": "$quantity"},
		}}},
	})
	if err != nil {
		return nil, fmt.Errorf("agrégation produits mensuels: %w", err)
	}
	defer itemsCursor.Close(ctx)

	var itemRows []struct {
		ID struct {
			Month int `bson:"month"`
		} `bson:"_id"`
		ProductCount int `bson:"product_count"`
	}
	if err := itemsCursor.All(ctx, &itemRows); err != nil {
		return nil, fmt.Errorf("décodage produits mensuels: %w", err)
	}

	report := make([]models.MonthlyReportRow, 12)
	for m := 1; m <= 12; m++ {
		report[m-1] = models.MonthlyReportRow{Year: year, Month: m}
	}
	for _, r := range rows {
		if r.ID.Month >= 1 && r.ID.Month <= 12 {
			report[r.ID.Month-1].Revenue = r.Revenue
			report[r.ID.Month-1].OrderCount = r.OrderCount
		}
	}
	for _, r := range itemRows {
		if r.ID.Month >= 1 && r.ID.Month <= 12 {
			report[r.ID.Month-1].ProductCount = r.ProductCount
		}
	}
	return report, nil
}

// ProductSales : classement par produit, pourcentage calculé sur le revenu
// total de la période pour que la somme des parts fasse 100.
func (s *MongoReportStore) ProductSales(ctx context.Context, r models.DateRange, search string, limit int) ([]models.ProductSalesRow, error) {
	if limit <= 0 {
		limit = 10
	}

	match := bson.M{
		"order.order_date": bson.M{"$gte": r.From, "$lte": r.To},
		"order.status":     bson.M{"$in": activeStatuses},
	}
	if search != "" {
		match["$or"] = bson.A{
			bson.M{"product_name": bson.M{"$regex": search, "$options": "i"}},
			bson.M{"product_sku": bson.M{"$regex": search, "$options": "i"}},
		}
	}

	cursor, err := s.orderItems.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$lookup", Value: bson.M{
			"from":         "orders",
			"localField":   "order_id",
			"foreignField": "_id",
			"as":           "order",
		}}},
		{{Key: "$unwind", Value: "$order"}},
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{
			"_id":          "$product_id",
			"product_name": bson.M{"$first": "$product_name"},
			"product_sku":  bson.M{"$first": "$product_sku"},
			"total_sold":   bson.M{"$sum": "$quantity"},
			"revenue":      bson.M{"$sum": "$total_price"},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "revenue", Value: -1}}}},
		{{Key: "$limit", Value: limit}},
	})
	if err != nil {
		return nil, fmt.Errorf("agrégation ventes: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		ID          interface{} `bson:"_id"`
		ProductName string      `bson:"product_name"`
		ProductSKU  string      `bson:"product_sku"`
		TotalSold   int         `bson:"total_sold"`
		Revenue     float64     `bson:"revenue"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("décodage ventes: %w", err)
	}

	totalRevenue := 0.0
	for _, row := range rows {
		totalRevenue += row.Revenue
	}

	result := make([]models.ProductSalesRow, 0, len(rows))
	for _, row := range rows {
		sales := models.ProductSalesRow{
			ProductName: row.ProductName,
			ProductSKU:  row.ProductSKU,
			TotalSold:   row.TotalSold,
			Revenue:     row.Revenue,
		}
		if oid, ok := row.ID.(interface{ Hex() string }); ok {
			sales.ProductID = oid.Hex()
		}
		if totalRevenue > 0 {
			sales.Percentage = row.Revenue / totalRevenue * 100
		}
		result = append(result, sales)
	}
	return result, nil
}

func (s *MongoReportStore) sumItemQuantities(ctx context.Context, orderMatch bson.M) (int, error) {
	match := bson.M{}
	for k, v := range orderMatch {
		match["order."+k] = v
	}

	cursor, err := s.orderItems.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$lookup", Value: bson.M{
			"from":         "orders",
			"localField":   "order_id",
			"foreignField": "_id",
			"as":           "order",
		}}},
		{{Key: "$unwind", Value: "$order"}},
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": "$quantity"},
		}}},
	})
	if err != nil {
		return 0, fmt.Errorf("agrégation quantités: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Total int `bson:"total"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return 0, fmt.Errorf("décodage quantités: %w", err)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Total, nil
}
