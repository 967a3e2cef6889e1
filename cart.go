// cart.go

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrItemNotFound     = errors.New("cart item not found")
)

// CartStore persists one document per (user, line item).
type CartStore interface {
	ListItems(ctx context.Context, userID string) ([]CartItem, error)
	// GetItem returns ErrItemNotFound when the item is absent.
	GetItem(ctx context.Context, userID, itemID string) (*CartItem, error)
	PutItem(ctx context.Context, userID string, item CartItem) error
	// RemoveItem is a no-op when the item is absent.
	RemoveItem(ctx context.Context, userID, itemID string) error
	// Clear removes every item for the user in a single store operation.
	Clear(ctx context.Context, userID string) error
}

var cartItemNamespace = uuid.MustParse("7b0dd7a4-3c51-4b5e-9a6e-2f1f8c3a9d10")

// CartItemID derives the composite line-item id. The same product with a
// different size, material or customization is a different line item.
func CartItemID(productID, size, material string, c Customization) string {
	key := strings.Join([]string{productID, size, material, c.DesignURL, c.OverlayText, c.SavedDesignID}, "|")
	return uuid.NewSHA1(cartItemNamespace, []byte(key)).String()
}

// cartLocks serializes mutations per user. Without this, two in-flight writes
// for the same user race on the read-modify-write against the store and the
// later one wins.
var cartLocks sync.Map // userID -> *sync.Mutex

func lockCart(userID string) *sync.Mutex {
	m, _ := cartLocks.LoadOrStore(userID, &sync.Mutex{})
	mu := m.(*sync.Mutex)
	mu.Lock()
	return mu
}

// CartManager owns one authenticated user's cart. The user id and store are
// injected; nothing is read from ambient state.
type CartManager struct {
	userID string
	store  CartStore
}

func NewCartManager(userID string, store CartStore) *CartManager {
	return &CartManager{userID: userID, store: store}
}

// AddItem inserts a line item, or merges into the existing entry when the
// composite id matches: quantity is increased and the total recomputed from
// the stored unit price. The incoming unit price is ignored on merge.
func (m *CartManager) AddItem(ctx context.Context, item CartItem) (*CartItem, error) {
	if m.userID == "" {
		return nil, ErrNotAuthenticated
	}
	if item.Quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive, got %d", item.Quantity)
	}
	item.ID = CartItemID(item.ProductID, item.Size, item.Material, item.Customization)

	mu := lockCart(m.userID)
	defer mu.Unlock()

	existing, err := m.store.GetItem(ctx, m.userID, item.ID)
	if err != nil && !errors.Is(err, ErrItemNotFound) {
		return nil, err
	}
	if existing != nil {
		existing.Quantity += item.Quantity
		existing.TotalPrice = existing.UnitPrice * float64(existing.Quantity)
		if err := m.store.PutItem(ctx, m.userID, *existing); err != nil {
			return nil, err
		}
		return existing, nil
	}
	item.TotalPrice = item.UnitPrice * float64(item.Quantity)
	if err := m.store.PutItem(ctx, m.userID, item); err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateQuantity sets the quantity and recomputes the total from the stored
// unit price. A quantity of zero or less removes the item.
func (m *CartManager) UpdateQuantity(ctx context.Context, itemID string, quantity int) error {
	if m.userID == "" {
		return ErrNotAuthenticated
	}
	if quantity <= 0 {
		return m.RemoveItem(ctx, itemID)
	}

	mu := lockCart(m.userID)
	defer mu.Unlock()

	item, err := m.store.GetItem(ctx, m.userID, itemID)
	if err != nil {
		return err
	}
	item.Quantity = quantity
	item.TotalPrice = item.UnitPrice * float64(quantity)
	return m.store.PutItem(ctx, m.userID, *item)
}

// RemoveItem deletes the line item. Removing an absent item is not an error.
func (m *CartManager) RemoveItem(ctx context.Context, itemID string) error {
	if m.userID == "" {
		return ErrNotAuthenticated
	}
	mu := lockCart(m.userID)
	defer mu.Unlock()
	return m.store.RemoveItem(ctx, m.userID, itemID)
}

// Clear empties the cart. Partial clears are never observable.
func (m *CartManager) Clear(ctx context.Context) error {
	if m.userID == "" {
		return ErrNotAuthenticated
	}
	mu := lockCart(m.userID)
	defer mu.Unlock()
	return m.store.Clear(ctx, m.userID)
}

func (m *CartManager) Items(ctx context.Context) ([]CartItem, error) {
	if m.userID == "" {
		return nil, ErrNotAuthenticated
	}
	return m.store.ListItems(ctx, m.userID)
}

// CartTotal and CartCount are derived, never stored.

func CartTotal(items []CartItem) float64 {
	total := 0.0
	for _, it := range items {
		total += it.TotalPrice
	}
	return total
}

func CartCount(items []CartItem) int {
	count := 0
	for _, it := range items {
		count += it.Quantity
	}
	return count
}

// ----- Mongo store -----

type cartItemDoc struct {
	UserID   string `bson:"userId"`
	CartItem `bson:",inline"`
}

type mongoCartStore struct {
	col *mongo.Collection
}

func newMongoCartStore(db *mongo.Database) *mongoCartStore {
	return &mongoCartStore{col: db.Collection("cart_items")}
}

func (s *mongoCartStore) ListItems(ctx context.Context, userID string) ([]CartItem, error) {
	cur, err := s.col.Find(ctx, bson.M{"userId": userID})
	if err != nil {
		return nil, err
	}
	var docs []cartItemDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	items := make([]CartItem, 0, len(docs))
	for _, d := range docs {
		items = append(items, d.CartItem)
	}
	return items, nil
}

func (s *mongoCartStore) GetItem(ctx context.Context, userID, itemID string) (*CartItem, error) {
	var doc cartItemDoc
	err := s.col.FindOne(ctx, bson.M{"userId": userID, "itemId": itemID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, err
	}
	return &doc.CartItem, nil
}

func (s *mongoCartStore) PutItem(ctx context.Context, userID string, item CartItem) error {
	_, err := s.col.ReplaceOne(ctx,
		bson.M{"userId": userID, "itemId": item.ID},
		cartItemDoc{UserID: userID, CartItem: item},
		options.Replace().SetUpsert(true))
	return err
}

func (s *mongoCartStore) RemoveItem(ctx context.Context, userID, itemID string) error {
	_, err := s.col.DeleteOne(ctx, bson.M{"userId": userID, "itemId": itemID})
	return err
}

func (s *mongoCartStore) Clear(ctx context.Context, userID string) error {
	_, err := s.col.DeleteMany(ctx, bson.M{"userId": userID})
	return err
}

// ----- Handlers -----

func getCart(c *gin.Context) {
	m := NewCartManager(c.GetString("userId"), cartStore)
	items, err := m.Items(c.Request.Context())
	if err != nil {
		cartError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"total": CartTotal(items),
		"count": CartCount(items),
	})
}

type addToCartRequest struct {
	ProductID     string        `json:"productId" binding:"required"`
	Size          string        `json:"size" binding:"required"`
	Material      string        `json:"material" binding:"required"`
	Customization Customization `json:"customization"`
	Quantity      int           `json:"quantity" binding:"required"`
}

func addToCart(c *gin.Context) {
	var req addToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	// Price server-side from the catalog; the client never sets a unit price.
	product, material, size, err := resolveProductOptions(c.Request.Context(), req.ProductID, req.Material, req.Size)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item := CartItem{
		ProductID:     req.ProductID,
		ProductName:   product.Name,
		ProductImage:  product.DefaultImageURL,
		Size:          size.Label,
		Material:      material.Label,
		Customization: req.Customization,
		Quantity:      req.Quantity,
		UnitPrice:     Price(product.BasePrice, material.Tier, size.Tier),
	}

	m := NewCartManager(c.GetString("userId"), cartStore)
	stored, err := m.AddItem(c.Request.Context(), item)
	if err != nil {
		cartError(c, err)
		return
	}
	c.JSON(http.StatusOK, stored)
}

func updateCartItem(c *gin.Context) {
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}
	m := NewCartManager(c.GetString("userId"), cartStore)
	if err := m.UpdateQuantity(c.Request.Context(), c.Param("itemId"), req.Quantity); err != nil {
		cartError(c, err)
		return
	}
	getCart(c)
}

func removeCartItem(c *gin.Context) {
	m := NewCartManager(c.GetString("userId"), cartStore)
	if err := m.RemoveItem(c.Request.Context(), c.Param("itemId")); err != nil {
		cartError(c, err)
		return
	}
	getCart(c)
}

func clearCart(c *gin.Context) {
	m := NewCartManager(c.GetString("userId"), cartStore)
	if err := m.Clear(c.Request.Context()); err != nil {
		cartError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cleared"})
}

func cartError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotAuthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, ErrItemNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		logger.Error("cart operation failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
