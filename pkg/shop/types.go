package shop

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Product is the backend's catalog record. Clients treat it as read-only.
type Product struct {
	ID          string          `json:"_id"`                   // Backend document ID, used by every cart call
	Name        string          `json:"name"`                  // Display name
	Price       decimal.Decimal `json:"price"`                 // Unit price, currency-agnostic
	Image       string          `json:"img"`                   // Image URL
	Category    string          `json:"category"`              // Category label
	Rating      float64         `json:"rating"`                // Average rating, 0-5
	ProductCode string          `json:"productId"`             // Seller-facing catalog code
	InStock     Count           `json:"instockValue"`          // Stock on hand
	Sold        Count           `json:"soldStockValue"`        // Units sold
	Visibility  string          `json:"visibility"`            // Visibility flag as sent by the backend
	Sizes       []string        `json:"size"`                  // Available sizes
	Material    string          `json:"material"`              // Material facet
	Color       string          `json:"color"`                 // Color facet
	Description string          `json:"description,omitempty"` // Long description (admin views)
	CreatedAt   *time.Time      `json:"createdAt,omitempty"`   // Creation time, when the backend provides one
}

// Count is a display-only counter. Numeric strings and fractions are
// accepted (fractions truncate); unreadable values decode as 0.
type Count int

// UnmarshalJSON accepts a number, a numeric string or null.
func (c *Count) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if raw == "" || raw == "null" {
		*c = 0
		return nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		*c = 0
		return nil
	}
	*c = Count(d.IntPart())
	return nil
}

// CartEntry is one (product, quantity) pair as stored by the backend cart.
type CartEntry struct {
	ProductID string `json:"_id"`
	Quantity  int    `json:"quantity"`
}

// Order is a historical order record. There is no client-side mutation path.
type Order struct {
	ID         string          `json:"_id"`
	OrderID    string          `json:"orderId"`
	Date       string          `json:"date"`
	Time       string          `json:"time"`
	Address    string          `json:"address"`
	Email      string          `json:"email"`
	Name       string          `json:"name"`
	ProductIDs []string        `json:"productIds"`
	TrackingID string          `json:"trackingId"`
	Total      decimal.Decimal `json:"price"`
	Products   []Product       `json:"products"`
}

// PlacedAt parses the order's date and time fields.
// The backend has sent both RFC3339 dates and separate date/time strings,
// so several layouts are tried. Returns false if none match.
func (o *Order) PlacedAt() (time.Time, bool) {
	date := strings.TrimSpace(o.Date)
	clock := strings.TrimSpace(o.Time)
	if date == "" {
		return time.Time{}, false
	}

	if t, err := time.Parse(time.RFC3339, date); err == nil {
		return t, true
	}

	if clock != "" {
		for _, layout := range []string{"2006-01-02 15:04:05", "2006-01-02 15:04", "2006-01-02 3:04:05 PM", "1/2/2006 3:04:05 PM"} {
			if t, err := time.ParseInLocation(layout, date+" "+clock, time.Local); err == nil {
				return t, true
			}
		}
	}

	for _, layout := range []string{"2006-01-02", "1/2/2006"} {
		if t, err := time.ParseInLocation(layout, date, time.Local); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

// User is a shopper profile.
type User struct {
	ID            string `json:"_id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	UserID        string `json:"userId"`
	AccountStatus string `json:"accountStatus"`
	Phone         string `json:"phone"`
}

// Credentials are the shopper sign-in fields.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration are the shopper sign-up fields.
type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
}

// SellerCredentials are the admin panel sign-in fields.
type SellerCredentials struct {
	SellerID     string `json:"sellerId"`
	EmailOrPhone string `json:"emailOrPhone"`
	Password     string `json:"password"`
}

// SellerRegistration are the admin panel sign-up fields.
type SellerRegistration struct {
	Name        string `json:"name"`
	Email       string `json:"emailId"`
	Password    string `json:"password"`
	PhoneNumber string `json:"phoneNumber"`
}

// ProductDraft is the payload the admin panel sends to create a product.
type ProductDraft struct {
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
}

// Validate checks the credentials before they are sent.
func (c *Credentials) Validate() error {
	if strings.TrimSpace(c.Email) == "" {
		return fmt.Errorf("email is required")
	}
	if c.Password == "" {
		return fmt.Errorf("password is required")
	}
	return nil
}

// Validate checks every sign-up field is present.
func (r *Registration) Validate() error {
	switch {
	case strings.TrimSpace(r.Name) == "":
		return fmt.Errorf("name is required")
	case strings.TrimSpace(r.Email) == "":
		return fmt.Errorf("email is required")
	case r.Password == "":
		return fmt.Errorf("password is required")
	case strings.TrimSpace(r.Phone) == "":
		return fmt.Errorf("phone is required")
	}
	return nil
}

// Validate checks the admin sign-in fields.
func (c *SellerCredentials) Validate() error {
	switch {
	case strings.TrimSpace(c.SellerID) == "":
		return fmt.Errorf("seller ID is required")
	case strings.TrimSpace(c.EmailOrPhone) == "":
		return fmt.Errorf("email or phone is required")
	case c.Password == "":
		return fmt.Errorf("password is required")
	}
	return nil
}

// Validate checks the seller sign-up fields.
func (r *SellerRegistration) Validate() error {
	switch {
	case strings.TrimSpace(r.Name) == "":
		return fmt.Errorf("name is required")
	case strings.TrimSpace(r.Email) == "":
		return fmt.Errorf("email is required")
	case r.Password == "":
		return fmt.Errorf("password is required")
	case strings.TrimSpace(r.PhoneNumber) == "":
		return fmt.Errorf("phone number is required")
	}
	return nil
}

// Validate checks a product draft before creation.
// Price must be positive; the other fields must be non-empty.
func (d *ProductDraft) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("product name is required")
	}
	if !d.Price.IsPositive() {
		return fmt.Errorf("invalid price: must be > 0, got %s", d.Price.String())
	}
	if strings.TrimSpace(d.Category) == "" {
		return fmt.Errorf("product category is required")
	}
	if strings.TrimSpace(d.Description) == "" {
		return fmt.Errorf("product description is required")
	}
	return nil
}
