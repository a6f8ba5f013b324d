package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"smartshop_back_end/internal/models"
	"smartshop_back_end/internal/store"
)

// memDB est l'état partagé des fakes. Les transactions sont sérialisées par
// le mutex et annulées par snapshot/restore : tout-ou-rien observable, comme
// les vraies transactions Mongo.
type memDB struct {
	mu sync.Mutex

	products   map[primitive.ObjectID]*models.Product
	brands     map[primitive.ObjectID]string
	categories map[primitive.ObjectID]string
	carts      map[primitive.ObjectID][]models.CartItem
	orders     map[string]*models.Order
	orderItems map[primitive.ObjectID][]models.OrderItem
	movements  []models.StockMovement

	// Injection de pannes
	duplicateNumberFailures int  // n premiers Insert → ErrDuplicateOrderNumber
	failClearCart           bool // ClearByUser échoue (panne en fin de transaction)

	// Comme Mongo : une écriture refusée avorte la transaction courante,
	// toute écriture suivante sur la même transaction échoue.
	txAborted bool
	txRuns    int
}

func newMemDB() *memDB {
	return &memDB{
		products:   map[primitive.ObjectID]*models.Product{},
		brands:     map[primitive.ObjectID]string{},
		categories: map[primitive.ObjectID]string{},
		carts:      map[primitive.ObjectID][]models.CartItem{},
		orders:     map[string]*models.Order{},
		orderItems: map[primitive.ObjectID][]models.OrderItem{},
	}
}

func (db *memDB) addProduct(name string, price float64, stock int) *models.Product {
	p := &models.Product{
		ID:       primitive.NewObjectID(),
		Name:     name,
		SKU:      strings.ToUpper(strings.ReplaceAll(name, " ", "-")),
		Price:    price,
		Stock:    stock,
		IsActive: true,
	}
	db.products[p.ID] = p
	return p
}

func (db *memDB) addCartLine(userID primitive.ObjectID, p *models.Product, qty int) {
	db.carts[userID] = append(db.carts[userID], models.CartItem{
		ID:          primitive.NewObjectID(),
		UserID:      userID,
		ProductID:   p.ID,
		ProductName: p.Name,
		Quantity:    qty,
		UnitPrice:   p.Price,
	})
}

type memSnapshot struct {
	products   map[primitive.ObjectID]*models.Product
	carts      map[primitive.ObjectID][]models.CartItem
	orders     map[string]*models.Order
	orderItems map[primitive.ObjectID][]models.OrderItem
	movements  []models.StockMovement
}

func (db *memDB) snapshot() memSnapshot {
	s := memSnapshot{
		products:   map[primitive.ObjectID]*models.Product{},
		carts:      map[primitive.ObjectID][]models.CartItem{},
		orders:     map[string]*models.Order{},
		orderItems: map[primitive.ObjectID][]models.OrderItem{},
		movements:  append([]models.StockMovement(nil), db.movements...),
	}
	for id, p := range db.products {
		cp := *p
		s.products[id] = &cp
	}
	for id, items := range db.carts {
		s.carts[id] = append([]models.CartItem(nil), items...)
	}
	for num, o := range db.orders {
		cp := *o
		s.orders[num] = &cp
	}
	for id, items := range db.orderItems {
		s.orderItems[id] = append([]models.OrderItem(nil), items...)
	}
	return s
}

func (db *memDB) restore(s memSnapshot) {
	db.products = s.products
	db.carts = s.carts
	db.orders = s.orders
	db.orderItems = s.orderItems
	db.movements = s.movements
}

// --- TxRunner ---

type fakeTx struct{ db *memDB }

func (t *fakeTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.db.mu.Lock()
	defer t.db.mu.Unlock()

	t.db.txRuns++
	t.db.txAborted = false

	snap := t.db.snapshot()
	if err := fn(ctx); err != nil {
		t.db.restore(snap)
		return err
	}
	return nil
}

// --- ProductStore ---

type fakeProducts struct{ db *memDB }

func (f *fakeProducts) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	p, ok := f.db.products[id]
	if !ok {
		return nil, store.ErrProductMissing
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProducts) DecrementStock(ctx context.Context, id primitive.ObjectID, qty int) error {
	p, ok := f.db.products[id]
	if !ok || p.Stock < qty {
		return store.ErrInsufficientStock
	}
	p.Stock -= qty
	return nil
}

func (f *fakeProducts) IncrementStock(ctx context.Context, id primitive.ObjectID, qty int) error {
	if p, ok := f.db.products[id]; ok {
		p.Stock += qty
	}
	return nil
}

func (f *fakeProducts) LogMovement(ctx context.Context, m models.StockMovement) error {
	f.db.movements = append(f.db.movements, m)
	return nil
}

func (f *fakeProducts) BrandName(ctx context.Context, id *primitive.ObjectID) string {
	if id == nil {
		return "Unknown"
	}
	if name, ok := f.db.brands[*id]; ok {
		return name
	}
	return "Unknown"
}

func (f *fakeProducts) CategoryName(ctx context.Context, id *primitive.ObjectID) string {
	if id == nil {
		return "Unknown"
	}
	if name, ok := f.db.categories[*id]; ok {
		return name
	}
	return "Unknown"
}

// --- CartStore ---

type fakeCarts struct{ db *memDB }

func (f *fakeCarts) GetByUser(ctx context.Context, userID primitive.ObjectID) ([]models.CartItem, error) {
	items := append([]models.CartItem(nil), f.db.carts[userID]...)
	for i := range items {
		if p, ok := f.db.products[items[i].ProductID]; ok {
			cp := *p
			items[i].Product = models.ProductRef{ID: p.ID, Resolved: &cp}
		} else {
			items[i].Product = models.ProductRef{ID: items[i].ProductID}
		}
	}
	return items, nil
}

func (f *fakeCarts) Insert(ctx context.Context, item models.CartItem) (*models.CartItem, error) {
	for _, existing := range f.db.carts[item.UserID] {
		if existing.ProductID == item.ProductID {
			return nil, store.ErrDuplicateCartItem
		}
	}
	item.ID = primitive.NewObjectID()
	item.AddedAt = time.Now()
	f.db.carts[item.UserID] = append(f.db.carts[item.UserID], item)
	return &item, nil
}

func (f *fakeCarts) UpdateQuantity(ctx context.Context, userID, productID primitive.ObjectID, quantity int) (*models.CartItem, error) {
	items := f.db.carts[userID]
	for i := range items {
		if items[i].ProductID == productID {
			items[i].Quantity = quantity
			cp := items[i]
			return &cp, nil
		}
	}
	return nil, store.ErrCartItemNotFound
}

func (f *fakeCarts) Remove(ctx context.Context, userID, productID primitive.ObjectID) error {
	items := f.db.carts[userID]
	for i := range items {
		if items[i].ProductID == productID {
			f.db.carts[userID] = append(items[:i], items[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *fakeCarts) ClearByUser(ctx context.Context, userID primitive.ObjectID) error {
	if f.db.failClearCart {
		return context.DeadlineExceeded
	}
	delete(f.db.carts, userID)
	return nil
}

func (f *fakeCarts) ItemCount(ctx context.Context, userID primitive.ObjectID) (int, error) {
	count := 0
	for _, item := range f.db.carts[userID] {
		count += item.Quantity
	}
	return count, nil
}

// --- OrderStore ---

type fakeOrders struct{ db *memDB }

func (f *fakeOrders) Insert(ctx context.Context, order *models.Order) error {
	if f.db.txAborted {
		return errors.New("NoSuchTransaction")
	}
	if f.db.duplicateNumberFailures > 0 {
		f.db.duplicateNumberFailures--
		f.db.txAborted = true
		return store.ErrDuplicateOrderNumber
	}
	if _, exists := f.db.orders[order.OrderNumber]; exists {
		f.db.txAborted = true
		return store.ErrDuplicateOrderNumber
	}
	order.ID = primitive.NewObjectID()
	cp := *order
	f.db.orders[order.OrderNumber] = &cp
	return nil
}

func (f *fakeOrders) InsertItems(ctx context.Context, items []models.OrderItem) error {
	for i := range items {
		items[i].ID = primitive.NewObjectID()
	}
	if len(items) > 0 {
		orderID := items[0].OrderID
		f.db.orderItems[orderID] = append(f.db.orderItems[orderID], items...)
	}
	return nil
}

func (f *fakeOrders) FindByNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	o, ok := f.db.orders[orderNumber]
	if !ok {
		return nil, store.ErrOrderNotFound
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOrders) ItemsByOrderID(ctx context.Context, orderID primitive.ObjectID) ([]models.OrderItem, error) {
	return append([]models.OrderItem(nil), f.db.orderItems[orderID]...), nil
}

func (f *fakeOrders) Count(ctx context.Context) (int64, error) {
	return int64(len(f.db.orders)), nil
}

func (f *fakeOrders) ListByUser(ctx context.Context, userID primitive.ObjectID, page store.Page) ([]models.Order, int64, error) {
	var out []models.Order
	for _, o := range f.db.orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeOrders) ListAll(ctx context.Context, cond store.OrderCondition, search string, page store.Page) ([]models.Order, int64, error) {
	var out []models.Order
	for _, o := range f.db.orders {
		if cond.Status != "" && o.Status != cond.Status {
			continue
		}
		if search != "" && !strings.Contains(o.OrderNumber, search) {
			continue
		}
		out = append(out, *o)
	}
	return out, int64(len(out)), nil
}

func (f *fakeOrders) UpdateStatus(ctx context.Context, orderNumber string, allowedFrom []string, change store.StatusChange) (*models.Order, error) {
	o, ok := f.db.orders[orderNumber]
	if !ok {
		return nil, store.ErrOrderNotFound
	}

	allowed := false
	for _, s := range allowedFrom {
		if o.Status == s {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, store.ErrInvalidTransition
	}

	o.Status = change.NewStatus
	if change.AdminNotes != "" {
		o.AdminNotes = change.AdminNotes
	}
	ts := change.Timestamp
	switch change.NewStatus {
	case models.OrderStatusConfirmed:
		o.ConfirmedAt = &ts
	case models.OrderStatusProcessing:
		o.ProcessedAt = &ts
	case models.OrderStatusShipping:
		o.ShippedAt = &ts
	case models.OrderStatusDelivered:
		o.DeliveredAt = &ts
	case models.OrderStatusCancelled:
		o.CancelledAt = &ts
	}
	if change.SetPaymentPaid {
		o.PaymentStatus = models.PaymentStatusPaid
	}

	cp := *o
	return &cp, nil
}

func (f *fakeOrders) UpdatePaymentStatus(ctx context.Context, orderNumber, paymentStatus string) (*models.Order, error) {
	o, ok := f.db.orders[orderNumber]
	if !ok {
		return nil, store.ErrOrderNotFound
	}
	o.PaymentStatus = paymentStatus
	cp := *o
	return &cp, nil
}

// --- ReportStore ---

type fakeReports struct{ db *memDB }

func (f *fakeReports) OrderStats(ctx context.Context) (*models.OrderStats, error) {
	stats := &models.OrderStats{}
	for _, o := range f.db.orders {
		stats.TotalOrders++
		switch o.Status {
		case models.OrderStatusPending:
			stats.PendingOrders++
		case models.OrderStatusConfirmed:
			stats.ConfirmedOrders++
		case models.OrderStatusShipping:
			stats.ShippingOrders++
		case models.OrderStatusDelivered:
			stats.DeliveredOrders++
			stats.TotalRevenue += o.TotalAmount
		case models.OrderStatusCancelled:
			stats.CancelledOrders++
		}
	}
	return stats, nil
}

func (f *fakeReports) ReportStats(ctx context.Context, r models.DateRange) (*models.ReportStats, error) {
	stats := &models.ReportStats{}
	for _, o := range f.db.orders {
		if o.Status == models.OrderStatusCancelled {
			continue
		}
		stats.TotalOrders++
		stats.TotalRevenue += o.TotalAmount
		for _, item := range f.db.orderItems[o.ID] {
			stats.TotalProducts += item.Quantity
		}
	}
	if stats.TotalOrders > 0 {
		stats.AverageOrderValue = stats.TotalRevenue / float64(stats.TotalOrders)
	}
	return stats, nil
}

func (f *fakeReports) MonthlyReport(ctx context.Context, year int) ([]models.MonthlyReportRow, error) {
	rows := make([]models.MonthlyReportRow, 12)
	for i := range rows {
		rows[i] = models.MonthlyReportRow{Year: year, Month: i + 1}
	}
	return rows, nil
}

func (f *fakeReports) ProductSales(ctx context.Context, r models.DateRange, search string, limit int) ([]models.ProductSalesRow, error) {
	return nil, nil
}

// newTestOrderService câble un OrderService complet sur un memDB vierge.
func newTestOrderService() (*OrderService, *memDB) {
	db := newMemDB()
	svc := NewOrderService(
		&fakeTx{db: db},
		&fakeProducts{db: db},
		&fakeCarts{db: db},
		&fakeOrders{db: db},
		&fakeReports{db: db},
	)
	return svc, db
}
