// orders.go

package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type OrderStatus string

const (
	StatusPendingPayment OrderStatus = "pending_payment"
	StatusProcessing     OrderStatus = "processing"
	StatusShipped        OrderStatus = "shipped"
	StatusDelivered      OrderStatus = "delivered"
	StatusCancelled      OrderStatus = "cancelled"
	StatusFailed         OrderStatus = "failed"
)

var statusHierarchy = []OrderStatus{StatusPendingPayment, StatusProcessing, StatusShipped, StatusDelivered}

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPendingPayment, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled, StatusFailed:
		return true
	}
	return false
}

// Terminal reports whether no further progression is expected.
func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled || s == StatusFailed
}

// StepIndex maps a status to its position in the forward progression, or -1
// for the absorbing failure states (and unknown statuses).
func StepIndex(s OrderStatus) int {
	for i, st := range statusHierarchy {
		if st == s {
			return i
		}
	}
	return -1
}

// IsForwardTransition reports whether moving from one status to another is a
// progression. The failure states are reachable from anywhere. This is a
// signal for the admin UI, not an enforced invariant: regressions are warned
// about but applied.
func IsForwardTransition(from, to OrderStatus) bool {
	if to == StatusCancelled || to == StatusFailed {
		return true
	}
	return StepIndex(to) > StepIndex(from)
}

var (
	ErrEmptyCart     = errors.New("cart is empty")
	ErrTotalMismatch = errors.New("line item total does not match unit price and quantity")
)

// BuildOrder snapshots the cart into a new order. Items are copied so later
// cart mutations cannot reach into the placed order, each line's stored total
// is checked against unitPrice*quantity, and the order total is the sum of
// line totals. Orders with a payment reference start in processing; without
// one they wait in pending_payment until the payment webhook lands.
func BuildOrder(userID string, items []CartItem, addr ShippingAddress, paymentMethod, paymentRef string, now time.Time) (*Order, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	snapshot := make([]CartItem, len(items))
	copy(snapshot, items)

	total := 0.0
	for _, it := range snapshot {
		if it.Quantity <= 0 {
			return nil, fmt.Errorf("item %s has non-positive quantity %d", it.ID, it.Quantity)
		}
		if math.Abs(it.TotalPrice-it.UnitPrice*float64(it.Quantity)) > 1e-9 {
			return nil, ErrTotalMismatch
		}
		total += it.TotalPrice
	}

	status := StatusPendingPayment
	if paymentRef != "" {
		status = StatusProcessing
	}

	return &Order{
		UserID:          userID,
		Items:           snapshot,
		ShippingAddress: addr,
		TotalAmount:     total,
		PaymentMethod:   paymentMethod,
		PaymentRef:      paymentRef,
		Status:          status,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// OrderStore persists placed orders.
type OrderStore interface {
	// Place writes the order and clears the user's cart as one atomic unit.
	Place(ctx context.Context, order *Order) error
	ListByUser(ctx context.Context, userID string) ([]Order, error)
	Get(ctx context.Context, id string) (*Order, error)
	ListAll(ctx context.Context) ([]Order, error)
	UpdateStatus(ctx context.Context, id string, status OrderStatus, trackingLink string) error
}

var ErrOrderNotFound = errors.New("order not found")

// ----- Mongo store -----

type mongoOrderStore struct {
	client *mongo.Client
	orders *mongo.Collection
	cart   *mongo.Collection
}

func newMongoOrderStore(client *mongo.Client, db *mongo.Database) *mongoOrderStore {
	return &mongoOrderStore{
		client: client,
		orders: db.Collection("orders"),
		cart:   db.Collection("cart_items"),
	}
}

// Place inserts the order and deletes the user's cart items inside one
// transaction, so a crash between the two writes cannot leave both artifacts.
func (s *mongoOrderStore) Place(ctx context.Context, order *Order) error {
	order.ID = primitive.NewObjectID()
	sess, err := s.client.StartSession()
	if err != nil {
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if _, err := s.orders.InsertOne(sc, order); err != nil {
			return nil, err
		}
		if _, err := s.cart.DeleteMany(sc, bson.M{"userId": order.UserID}); err != nil {
			return nil, err
		}
		return nil, nil
	})
	return err
}

func (s *mongoOrderStore) ListByUser(ctx context.Context, userID string) ([]Order, error) {
	cur, err := s.orders.Find(ctx, bson.M{"userId": userID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	var orders []Order
	if err := cur.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *mongoOrderStore) Get(ctx context.Context, id string) (*Order, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrOrderNotFound
	}
	var order Order
	err = s.orders.FindOne(ctx, bson.M{"_id": oid}).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *mongoOrderStore) ListAll(ctx context.Context) ([]Order, error) {
	cur, err := s.orders.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	var orders []Order
	if err := cur.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *mongoOrderStore) UpdateStatus(ctx context.Context, id string, status OrderStatus, trackingLink string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrOrderNotFound
	}
	set := bson.M{"status": status, "updatedAt": time.Now().UTC()}
	if trackingLink != "" {
		set["trackingLink"] = trackingLink
	}
	res, err := s.orders.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// ----- Handlers -----

type placeOrderRequest struct {
	ShippingAddress ShippingAddress `json:"shippingAddress" binding:"required"`
	PaymentMethod   string          `json:"paymentMethod" binding:"required"`
	PaymentRef      string          `json:"paymentRef"`
}

func placeOrder(c *gin.Context) {
	userID := c.GetString("userId")
	var req placeOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	m := NewCartManager(userID, cartStore)
	items, err := m.Items(c.Request.Context())
	if err != nil {
		cartError(c, err)
		return
	}

	order, err := BuildOrder(userID, items, req.ShippingAddress, req.PaymentMethod, req.PaymentRef, time.Now().UTC())
	if err != nil {
		switch {
		case errors.Is(err, ErrEmptyCart), errors.Is(err, ErrTotalMismatch):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			cartError(c, err)
		}
		return
	}

	if err := orderStore.Place(c.Request.Context(), order); err != nil {
		logger.Error("order placement failed", "user", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to place order"})
		return
	}

	logger.Info("order placed", "order", order.ID.Hex(), "user", userID, "total", order.TotalAmount)
	c.JSON(http.StatusOK, order)
}

func getOrders(c *gin.Context) {
	orders, err := orderStore.ListByUser(c.Request.Context(), c.GetString("userId"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, orders)
}

func getOrder(c *gin.Context) {
	order, err := orderStore.Get(c.Request.Context(), c.Param("orderId"))
	if errors.Is(err, ErrOrderNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if order.UserID != c.GetString("userId") && c.GetString("role") != string(RoleAdmin) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"order":     order,
		"stepIndex": StepIndex(order.Status),
		"terminal":  order.Status.Terminal(),
	})
}

// ----- Admin handlers -----

func adminListOrders(c *gin.Context) {
	orders, err := orderStore.ListAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, orders)
}

type updateStatusRequest struct {
	Status       OrderStatus `json:"status" binding:"required"`
	TrackingLink string      `json:"trackingLink"`
}

func adminUpdateOrderStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}
	if !req.Status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status"})
		return
	}

	orderID := c.Param("orderId")
	order, err := orderStore.Get(c.Request.Context(), orderID)
	if errors.Is(err, ErrOrderNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	forward := IsForwardTransition(order.Status, req.Status)
	if !forward {
		logger.Warn("order status regression",
			"order", orderID, "from", order.Status, "to", req.Status,
			"admin", c.GetString("userId"))
	}

	if err := orderStore.UpdateStatus(c.Request.Context(), orderID, req.Status, req.TrackingLink); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": req.Status, "forward": forward})
}
