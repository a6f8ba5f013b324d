package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"smartshop_back_end/internal/models"
)

type MongoOrderStore struct {
	orders *mongo.Collection
	items  *mongo.Collection
}

func NewMongoOrderStore(ordersDB *mongo.Database) *MongoOrderStore {
	return &MongoOrderStore{
		orders: ordersDB.Collection("orders"),
		items:  ordersDB.Collection("order_items"),
	}
}

func (s *MongoOrderStore) Insert(ctx context.Context, order *models.Order) error {
	res, err := s.orders.InsertOne(ctx, order)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// L'index unique sur order_number est la vraie garantie
			// d'unicité, le générateur peut collisionner sous concurrence
			return ErrDuplicateOrderNumber
		}
		return fmt.Errorf("création commande: %w", err)
	}
	order.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (s *MongoOrderStore) InsertItems(ctx context.Context, items []models.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	docs := make([]interface{}, len(items))
	for i := range items {
		docs[i] = items[i]
	}
	if _, err := s.items.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("création lignes de commande: %w", err)
	}
	return nil
}

func (s *MongoOrderStore) FindByNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	var order models.Order
	err := s.orders.FindOne(ctx, bson.M{"order_number": orderNumber}).Decode(&order)
	if err == mongo.ErrNoDocuments {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lecture commande: %w", err)
	}
	return &order, nil
}

func (s *MongoOrderStore) ItemsByOrderID(ctx context.Context, orderID primitive.ObjectID) ([]models.OrderItem, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := s.items.Find(ctx, bson.M{"order_id": orderID}, opts)
	if err != nil {
		return nil, fmt.Errorf("lecture lignes de commande: %w", err)
	}
	defer cursor.Close(ctx)

	var items []models.OrderItem
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("décodage lignes de commande: %w", err)
	}
	return items, nil
}

func (s *MongoOrderStore) Count(ctx context.Context) (int64, error) {
	return s.orders.CountDocuments(ctx, bson.M{})
}

var orderColumns = map[string]string{
	"DATE":   "order_date",
	"STATUS": "status",
	"TOTAL":  "total_amount",
}

func (s *MongoOrderStore) ListByUser(ctx context.Context, userID primitive.ObjectID, page Page) ([]models.Order, int64, error) {
	page = page.Normalize()
	filter := bson.M{"user_id": userID}

	totalCount, err := s.orders.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("comptage commandes: %w", err)
	}

	opts := options.Find().
		SetSort(SortOptions(page.OrderBy, orderColumns)).
		SetSkip(int64(page.Offset)).
		SetLimit(int64(page.First))

	cursor, err := s.orders.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("liste commandes: %w", err)
	}
	defer cursor.Close(ctx)

	var items []models.Order
	if err := cursor.All(ctx, &items); err != nil {
		return nil, 0, fmt.Errorf("décodage commandes: %w", err)
	}
	return items, totalCount, nil
}

func (s *MongoOrderStore) ListAll(ctx context.Context, cond OrderCondition, search string, page Page) ([]models.Order, int64, error) {
	page = page.Normalize()
	filter := bson.M{}

	if cond.Status != "" {
		filter["status"] = cond.Status
	}
	if cond.PaymentStatus != "" {
		filter["payment_status"] = cond.PaymentStatus
	}
	if cond.PaymentMethod != "" {
		filter["payment_method"] = cond.PaymentMethod
	}
	if cond.UserID != nil {
		filter["user_id"] = *cond.UserID
	}
	if cond.DateFrom != nil || cond.DateTo != nil {
		dr := bson.M{}
		if cond.DateFrom != nil {
			dr["$gte"] = *cond.DateFrom
		}
		if cond.DateTo != nil {
			dr["$lte"] = *cond.DateTo
		}
		filter["order_date"] = dr
	}
	if search != "" {
		rx := bson.M{"$regex": search, "$options": "i"}
		filter["$or"] = []bson.M{
			{"order_number": rx},
			{"customer_info.full_name": rx},
			{"customer_info.phone": rx},
			{"customer_info.address": rx},
		}
	}

	totalCount, err := s.orders.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("comptage commandes: %w", err)
	}

	opts := options.Find().
		SetSort(SortOptions(page.OrderBy, orderColumns)).
		SetSkip(int64(page.Offset)).
		SetLimit(int64(page.First))

	cursor, err := s.orders.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("liste commandes: %w", err)
	}
	defer cursor.Close(ctx)

	var items []models.Order
	if err := cursor.All(ctx, &items); err != nil {
		return nil, 0, fmt.Errorf("décodage commandes: %w", err)
	}
	return items, totalCount, nil
}

// timestampField associe chaque statut à son champ d'horodatage.
var timestampField = map[string]string{
	models.OrderStatusConfirmed:  "confirmed_at",
	models.OrderStatusProcessing: "processed_at",
	models.OrderStatusShipping:   "shipped_at",
	models.OrderStatusDelivered:  "delivered_at",
	models.OrderStatusCancelled:  "cancelled_at",
}

// UpdateStatus applique la transition sous précondition atomique : le
// filtre exige que le statut courant soit dans allowedFrom, donc une
// double annulation concurrente ne matche qu'une fois.
func (s *MongoOrderStore) UpdateStatus(ctx context.Context, orderNumber string, allowedFrom []string, change StatusChange) (*models.Order, error) {
	set := bson.M{"status": change.NewStatus}
	if field, ok := timestampField[change.NewStatus]; ok {
		set[field] = change.Timestamp
	}
	if change.AdminNotes != "" {
		set["admin_notes"] = change.AdminNotes
	}
	if change.SetPaymentPaid {
		set["payment_status"] = models.PaymentStatusPaid
	}

	after := options.After
	var order models.Order
	err := s.orders.FindOneAndUpdate(ctx,
		bson.M{"order_number": orderNumber, "status": bson.M{"$in": allowedFrom}},
		bson.M{"$set": set},
		&options.FindOneAndUpdateOptions{ReturnDocument: &after},
	).Decode(&order)

	if err == mongo.ErrNoDocuments {
		// La commande existe-t-elle, ou est-ce la précondition qui a échoué ?
		if _, ferr := s.FindByNumber(ctx, orderNumber); ferr != nil {
			return nil, ferr
		}
		return nil, ErrInvalidTransition
	}
	if err != nil {
		return nil, fmt.Errorf("transition de statut: %w", err)
	}
	return &order, nil
}

func (s *MongoOrderStore) UpdatePaymentStatus(ctx context.Context, orderNumber, paymentStatus string) (*models.Order, error) {
	after := options.After
	var order models.Order
	err := s.orders.FindOneAndUpdate(ctx,
		bson.M{"order_number": orderNumber},
		bson.M{"$set": bson.M{"payment_status": paymentStatus}},
		&options.FindOneAndUpdateOptions{ReturnDocument: &after},
	).Decode(&order)
	if err == mongo.ErrNoDocuments {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("statut de paiement: %w", err)
	}
	return &order, nil
}
