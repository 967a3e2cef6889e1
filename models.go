// models.go

package main

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Email     string             `bson:"email" json:"email"`
	Phone     string             `bson:"phone" json:"phone"`
	Password  string             `bson:"password" json:"password,omitempty"`
	Role      Role               `bson:"role" json:"role"`
	PhotoURL  string             `bson:"photoUrl,omitempty" json:"photoUrl,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

type Category string

const (
	CategoryFlexBanner  Category = "Flex Banner"
	CategoryAcrylicSign Category = "Acrylic Sign"
	CategoryNeonSign    Category = "Neon Sign"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryFlexBanner, CategoryAcrylicSign, CategoryNeonSign:
		return true
	}
	return false
}

// MaterialOption and SizeOption carry an explicit pricing tier chosen at
// catalog-creation time. Tiers are never inferred from the label at checkout.
type MaterialOption struct {
	Label string       `bson:"label" json:"label"`
	Tier  MaterialTier `bson:"tier" json:"tier"`
}

type SizeOption struct {
	Label string   `bson:"label" json:"label"`
	Tier  SizeTier `bson:"tier" json:"tier"`
}

type Product struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name            string             `bson:"name" json:"name"`
	Category        Category           `bson:"category" json:"category"`
	Description     string             `bson:"description" json:"description"`
	Materials       []MaterialOption   `bson:"materials" json:"materials"`
	Sizes           []SizeOption       `bson:"sizes" json:"sizes"`
	BasePrice       float64            `bson:"basePrice" json:"basePrice"`
	ImageURLs       []string           `bson:"imageUrls" json:"imageUrls"`
	DefaultImageURL string             `bson:"defaultImageUrl" json:"defaultImageUrl"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type Customization struct {
	DesignURL     string `bson:"designUrl,omitempty" json:"designUrl,omitempty"`
	OverlayText   string `bson:"overlayText,omitempty" json:"overlayText,omitempty"`
	SavedDesignID string `bson:"savedDesignId,omitempty" json:"savedDesignId,omitempty"`
}

// CartItem is one configured line item. Two cart entries for the same product
// are distinct whenever size, material or customization differ; see CartItemID.
// TotalPrice is always UnitPrice * Quantity.
type CartItem struct {
	ID            string        `bson:"itemId" json:"id"`
	ProductID     string        `bson:"productId" json:"productId"`
	ProductName   string        `bson:"productName" json:"productName"`
	ProductImage  string        `bson:"productImage" json:"productImage"`
	Size          string        `bson:"size" json:"size"`
	Material      string        `bson:"material" json:"material"`
	Customization Customization `bson:"customization" json:"customization"`
	Quantity      int           `bson:"quantity" json:"quantity"`
	UnitPrice     float64       `bson:"unitPrice" json:"unitPrice"`
	TotalPrice    float64       `bson:"totalPrice" json:"totalPrice"`
}

type ShippingAddress struct {
	FullName     string `bson:"fullName" json:"fullName"`
	AddressLine1 string `bson:"addressLine1" json:"addressLine1"`
	AddressLine2 string `bson:"addressLine2,omitempty" json:"addressLine2,omitempty"`
	City         string `bson:"city" json:"city"`
	State        string `bson:"state" json:"state"`
	PostalCode   string `bson:"postalCode" json:"postalCode"`
	Country      string `bson:"country" json:"country"`
	PhoneNumber  string `bson:"phoneNumber" json:"phoneNumber"`
}

// Order is an immutable snapshot of the cart at placement time. Items are
// copied, never referenced; later cart edits do not touch a placed order.
// Orders are never deleted, only status-transitioned.
type Order struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID          string             `bson:"userId" json:"userId"`
	Items           []CartItem         `bson:"items" json:"items"`
	ShippingAddress ShippingAddress    `bson:"shippingAddress" json:"shippingAddress"`
	TotalAmount     float64            `bson:"totalAmount" json:"totalAmount"`
	PaymentMethod   string             `bson:"paymentMethod" json:"paymentMethod"`
	PaymentRef      string             `bson:"paymentRef,omitempty" json:"paymentRef,omitempty"`
	Status          OrderStatus        `bson:"status" json:"status"`
	TrackingLink    string             `bson:"trackingLink,omitempty" json:"trackingLink,omitempty"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// SavedDesign is an AI-generated design a user kept from the design studio.
type SavedDesign struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    string             `bson:"userId" json:"userId"`
	Prompt    string             `bson:"prompt" json:"prompt"`
	ImageURL  string             `bson:"imageUrl" json:"imageUrl"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
