package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"smartshop_back_end/internal/models"
)

type MongoProductStore struct {
	products   *mongo.Collection
	brands     *mongo.Collection
	categories *mongo.Collection
	movements  *mongo.Collection
}

func NewMongoProductStore(productsDB *mongo.Database) *MongoProductStore {
	return &MongoProductStore{
		products:   productsDB.Collection("products"),
		brands:     productsDB.Collection("brands"),
		categories: productsDB.Collection("categories"),
		movements:  productsDB.Collection("stock_movements"),
	}
}

func (s *MongoProductStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	var p models.Product
	err := s.products.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return nil, ErrProductMissing
	}
	if err != nil {
		return nil, fmt.Errorf("lecture produit: %w", err)
	}
	return &p, nil
}

// DecrementStock : décrément conditionnel. Le filtre stock >= qty fait
// office de compare-and-decrement : si une commande concurrente a
// consommé le stock entre la lecture et ici, ModifiedCount vaut 0 et la
// transaction appelante doit avorter.
func (s *MongoProductStore) DecrementStock(ctx context.Context, id primitive.ObjectID, qty int) error {
	res, err := s.products.UpdateOne(ctx,
		bson.M{"_id": id, "stock": bson.M{"$gte": qty}},
		bson.M{
			"$inc": bson.M{"stock": -qty},
			"$set": bson.M{"updated_at": time.Now()},
		})
	if err != nil {
		return fmt.Errorf("décrément stock: %w", err)
	}
	if res.ModifiedCount == 0 {
		return ErrInsufficientStock
	}
	return nil
}

func (s *MongoProductStore) IncrementStock(ctx context.Context, id primitive.ObjectID, qty int) error {
	_, err := s.products.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{
			"$inc": bson.M{"stock": qty},
			"$set": bson.M{"updated_at": time.Now()},
		})
	if err != nil {
		return fmt.Errorf("restauration stock: %w", err)
	}
	return nil
}

func (s *MongoProductStore) LogMovement(ctx context.Context, m models.StockMovement) error {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	_, err := s.movements.InsertOne(ctx, m)
	return err
}

// Movements liste l'historique de stock, du plus récent au plus ancien.
// productID nil = tous les produits.
func (s *MongoProductStore) Movements(ctx context.Context, productID *primitive.ObjectID, page Page) ([]models.StockMovement, int64, error) {
	page = page.Normalize()
	filter := bson.M{}
	if productID != nil {
		filter["product_id"] = *productID
	}

	totalCount, err := s.movements.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("comptage mouvements: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(page.Offset)).
		SetLimit(int64(page.First))

	cursor, err := s.movements.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("liste mouvements: %w", err)
	}
	defer cursor.Close(ctx)

	var items []models.StockMovement
	if err := cursor.All(ctx, &items); err != nil {
		return nil, 0, fmt.Errorf("décodage mouvements: %w", err)
	}
	return items, totalCount, nil
}

// LowStock retourne les produits actifs sous leur seuil d'alerte.
func (s *MongoProductStore) LowStock(ctx context.Context) ([]models.StockAlert, error) {
	filter := bson.M{
		"is_active": true,
		"$expr":     bson.M{"$lte": bson.A{"$stock", "$low_stock_threshold"}},
	}
	cursor, err := s.products.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "stock", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("produits en stock bas: %w", err)
	}
	defer cursor.Close(ctx)

	var products []models.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("décodage stock bas: %w", err)
	}

	alerts := make([]models.StockAlert, 0, len(products))
	for _, p := range products {
		alertType := "low_stock"
		if p.Stock == 0 {
			alertType = "out_of_stock"
		}
		alerts = append(alerts, models.StockAlert{
			ProductID:      p.ID,
			ProductName:    p.Name,
			CurrentStock:   p.Stock,
			ThresholdStock: p.LowStockThreshold,
			AlertType:      alertType,
			CreatedAt:      time.Now(),
		})
	}
	return alerts, nil
}

// --- Catalogue (lectures + CRUD admin) ---

// ProductCondition reprend les filtres de la recherche catalogue.
type ProductCondition struct {
	Name       string
	CategoryID *primitive.ObjectID
	BrandID    *primitive.ObjectID
	IsActive   *bool
	IsFeatured *bool
	PriceMin   *float64
	PriceMax   *float64
	StockMin   *int
	StockMax   *int
}

func (c ProductCondition) toFilter() bson.M {
	filter := bson.M{}
	if c.Name != "" {
		filter["name"] = bson.M{"$regex": c.Name, "$options": "i"}
	}
	if c.CategoryID != nil {
		filter["category_id"] = *c.CategoryID
	}
	if c.BrandID != nil {
		filter["brand_id"] = *c.BrandID
	}
	if c.IsActive != nil {
		filter["is_active"] = *c.IsActive
	}
	if c.IsFeatured != nil {
		filter["is_featured"] = *c.IsFeatured
	}
	if c.PriceMin != nil || c.PriceMax != nil {
		pr := bson.M{}
		if c.PriceMin != nil {
			pr["$gte"] = *c.PriceMin
		}
		if c.PriceMax != nil {
			pr["$lte"] = *c.PriceMax
		}
		filter["price"] = pr
	}
	if c.StockMin != nil || c.StockMax != nil {
		sr := bson.M{}
		if c.StockMin != nil {
			sr["$gte"] = *c.StockMin
		}
		if c.StockMax != nil {
			sr["$lte"] = *c.StockMax
		}
		filter["stock"] = sr
	}
	return filter
}

var productColumns = map[string]string{
	"ID":      "_id",
	"NAME":    "name",
	"PRICE":   "price",
	"STOCK":   "stock",
	"CREATED": "created_at",
}

func (s *MongoProductStore) List(ctx context.Context, cond ProductCondition, page Page) ([]models.Product, int64, error) {
	page = page.Normalize()
	filter := cond.toFilter()

	totalCount, err := s.products.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("comptage produits: %w", err)
	}

	opts := options.Find().
		SetSort(SortOptions(page.OrderBy, productColumns)).
		SetSkip(int64(page.Offset)).
		SetLimit(int64(page.First))

	cursor, err := s.products.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("liste produits: %w", err)
	}
	defer cursor.Close(ctx)

	var items []models.Product
	if err := cursor.All(ctx, &items); err != nil {
		return nil, 0, fmt.Errorf("décodage produits: %w", err)
	}
	return items, totalCount, nil
}

// Search : recherche multi-termes (chaque terme doit matcher nom,
// description ou SKU), limitée aux produits actifs.
func (s *MongoProductStore) Search(ctx context.Context, query string, page Page) ([]models.Product, int64, error) {
	page = page.Normalize()

	var andConds []bson.M
	for _, term := range splitTerms(query) {
		rx := bson.M{"$regex": term, "$options": "i"}
		andConds = append(andConds, bson.M{"$or": []bson.M{
			{"name": rx},
			{"description": rx},
			{"sku": rx},
		}})
	}

	filter := bson.M{"is_active": true}
	if len(andConds) > 0 {
		filter["$and"] = andConds
	}

	totalCount, err := s.products.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("comptage recherche: %w", err)
	}

	opts := options.Find().
		SetSort(SortOptions(page.OrderBy, productColumns)).
		SetSkip(int64(page.Offset)).
		SetLimit(int64(page.First))

	cursor, err := s.products.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("recherche produits: %w", err)
	}
	defer cursor.Close(ctx)

	var items []models.Product
	if err := cursor.All(ctx, &items); err != nil {
		return nil, 0, fmt.Errorf("décodage recherche: %w", err)
	}
	return items, totalCount, nil
}

func (s *MongoProductStore) Create(ctx context.Context, p *models.Product) error {
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	res, err := s.products.InsertOne(ctx, p)
	if err != nil {
		return fmt.Errorf("création produit: %w", err)
	}
	p.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (s *MongoProductStore) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.Product, error) {
	set["updated_at"] = time.Now()
	after := options.After
	var p models.Product
	err := s.products.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		&options.FindOneAndUpdateOptions{ReturnDocument: &after},
	).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return nil, ErrProductMissing
	}
	if err != nil {
		return nil, fmt.Errorf("mise à jour produit: %w", err)
	}
	return &p, nil
}

func (s *MongoProductStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.products.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("suppression produit: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrProductMissing
	}
	return nil
}

// BrandName résout le nom d'une marque pour les snapshots ("Unknown" si absente).
func (s *MongoProductStore) BrandName(ctx context.Context, id *primitive.ObjectID) string {
	if id == nil {
		return "Unknown"
	}
	var b models.Brand
	if err := s.brands.FindOne(ctx, bson.M{"_id": *id}).Decode(&b); err != nil {
		return "Unknown"
	}
	return b.Name
}

// CategoryName résout le nom d'une catégorie pour les snapshots.
func (s *MongoProductStore) CategoryName(ctx context.Context, id *primitive.ObjectID) string {
	if id == nil {
		return "Unknown"
	}
	var c models.Category
	if err := s.categories.FindOne(ctx, bson.M{"_id": *id}).Decode(&c); err != nil {
		return "Unknown"
	}
	return c.Name
}

func splitTerms(query string) []string {
	return strings.Fields(strings.TrimSpace(query))
}
