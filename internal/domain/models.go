package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID           int       `db:"id"`
	Email        string    `db:"email"`
	FullName     string    `db:"full_name"`
	Address      string    `db:"address"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
}

// Account is a user as seen by themselves, with the current balance.
type Account struct {
	User
	BalanceCents int64
}

// ProfileUpdate lists the profile fields to change. A nil field is kept.
type ProfileUpdate struct {
	Email    *string
	FullName *string
	Address  *string
}

// UserMatch is one row of a user search by name.
type UserMatch struct {
	ID        int       `db:"id"`
	FullName  string    `db:"full_name"`
	Email     string    `db:"email"`
	Address   string    `db:"address"`
	CreatedAt time.Time `db:"created_at"`
	IsSeller  bool      `db:"is_seller"`
}

type Balance struct {
	UserID       int   `db:"user_id"`
	BalanceCents int64 `db:"balance_cents"`
}

type BalanceTransaction struct {
	ID          int64     `db:"id"`
	UserID      int       `db:"user_id"`
	AmountCents int64     `db:"amount_cents"`
	Note        string    `db:"note"`
	CreatedAt   time.Time `db:"created_at"`
}

// Product is read-only for this service. A nil Price means the product
// cannot be sold.
type Product struct {
	ID          int              `db:"id" json:"id"`
	Name        string           `db:"name" json:"name"`
	Description string           `db:"description" json:"description"`
	Price       *decimal.Decimal `db:"price" json:"price"`
	Available   bool             `db:"available" json:"available"`
}

type InventoryEntry struct {
	UserID    int `db:"user_id"`
	ProductID int `db:"product_id"`
	Quantity  int `db:"quantity"`
}

// InventoryItem is an inventory entry joined with its product.
type InventoryItem struct {
	ProductID int
	Quantity  int
	Name      string
	Price     *decimal.Decimal
	Available bool
}

type CartItem struct {
	ID        int `db:"id"`
	CartID    int `db:"cart_id"`
	ProductID int `db:"product_id"`
	Quantity  int `db:"quantity"`
}

// CartLine is a cart item joined with its product. Name and Price are nil
// when the product row is missing or has no price.
type CartLine struct {
	ItemID    int
	ProductID int
	Quantity  int
	Name      *string
	Price     *decimal.Decimal
}

type Order struct {
	ID         int         `db:"id"`
	BuyerID    int         `db:"buyer_id"`
	CreatedAt  time.Time   `db:"created_at"`
	TotalCents int64       `db:"total_cents"`
	Fulfilled  bool        `db:"fulfilled"`
	Lines      []OrderLine `db:"-"`
}

type OrderLine struct {
	ID             int        `db:"id"`
	OrderID        int        `db:"order_id"`
	ProductID      int        `db:"product_id"`
	SellerID       int        `db:"seller_id"`
	Quantity       int        `db:"quantity"`
	UnitPriceCents int64      `db:"unit_price_cents"`
	FulfilledAt    *time.Time `db:"fulfilled_at"`
	ProductName    string     `db:"-"`
	SellerName     string     `db:"-"`
}

// Involves reports whether userID bought the order or sold any of its lines.
func (o *Order) Involves(userID int) bool {
	if o.BuyerID == userID {
		return true
	}
	for _, line := range o.Lines {
		if line.SellerID == userID {
			return true
		}
	}
	return false
}

func (l OrderLine) LineTotalCents() int64 {
	return l.UnitPriceCents * int64(l.Quantity)
}

// PurchaseScope selects whose orders a purchase query reads: orders placed
// by UserID, or with AsSeller, orders containing lines sold by UserID.
type PurchaseScope struct {
	UserID   int
	AsSeller bool
}

// PurchaseFilter narrows a purchase listing. Zero values disable a filter.
type PurchaseFilter struct {
	ItemQuery  string
	SellerID   *int
	SellerName string
	StartAt    *time.Time
	EndBefore  *time.Time
}

type PurchaseLine struct {
	LineID         int
	ProductID      int
	ProductName    string
	Quantity       int
	UnitPriceCents int64
	LineTotalCents int64
	Fulfilled      bool
	SellerID       int
	SellerName     string
}

type PurchaseOrder struct {
	OrderID      int
	CreatedAt    time.Time
	TotalCents   int64
	ItemCount    int
	AllFulfilled bool
	Lines        []PurchaseLine
}

type PurchasePage struct {
	Orders      []PurchaseOrder
	TotalOrders int
}

type PurchaseSummary struct {
	OrderCount  int
	TotalCents  int64
	LastOrderAt *time.Time
}
