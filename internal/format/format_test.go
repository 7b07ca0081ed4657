package format

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/dyluth/storefront/internal/cart"
	"github.com/dyluth/storefront/internal/catalog"
	"github.com/dyluth/storefront/pkg/shop"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCell(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		width    int
		expected string
	}{
		{"empty renders dash", "", 4, "-   "},
		{"pads short values", "ab", 4, "ab  "},
		{"exact width", "abcd", 4, "abcd"},
		{"truncates long values", "abcdefgh", 6, "abc..."},
		{"first non-empty line only", "\n  hello\nworld", 8, "hello   "},
		{"wide runes count as two columns", "日本語", 6, "日本語"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, cell(tt.value, tt.width))
		})
	}
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, Table, m)

	m, err = ParseMode("JSONL")
	require.NoError(t, err)
	assert.Equal(t, JSONL, m)

	_, err = ParseMode("yaml")
	assert.Error(t, err)
}

func TestMoney(t *testing.T) {
	assert.Equal(t, "₹1499.00", Money(decimal.NewFromInt(1499)))
	assert.Equal(t, "₹0.50", Money(decimal.RequireFromString("0.5")))
}

func TestCartTable(t *testing.T) {
	t.Run("empty cart shows message and hint", func(t *testing.T) {
		var buf bytes.Buffer
		n := CartTable(&buf, nil, decimal.Zero)
		assert.Equal(t, 0, n)
		assert.Equal(t, EmptyCartMessage+"\n"+ContinueShoppingHint+"\n", buf.String())
	})

	t.Run("lines and total", func(t *testing.T) {
		items := []cart.LineItem{
			{Product: shop.Product{ID: "6650aa11bb22", Name: "Linen Shirt", Price: decimal.NewFromInt(1200)}, Quantity: 2},
			{Product: shop.Product{ID: "p2", Name: "Scarf", Price: decimal.NewFromInt(300)}, Quantity: 1},
		}
		var buf bytes.Buffer
		n := CartTable(&buf, items, decimal.NewFromInt(2700))
		assert.Equal(t, 2, n)

		out := buf.String()
		assert.Contains(t, out, "6650aa11 ")
		assert.Contains(t, out, "₹2400.00")
		assert.Contains(t, out, "2 lines, 3 items")
		assert.Contains(t, out, "Total: ₹2700.00")
	})
}

func TestProductTable(t *testing.T) {
	var buf bytes.Buffer
	assert.Equal(t, 0, ProductTable(&buf, nil, "No products match."))
	assert.Equal(t, "No products match.\n", buf.String())

	buf.Reset()
	products := []shop.Product{{ID: "p1", Name: "Saree", Category: "Women", Price: decimal.NewFromInt(8000), Rating: 4.5, InStock: 3}}
	assert.Equal(t, 1, ProductTable(&buf, products, ""))
	lines := strings.Split(buf.String(), "\n")
	require.GreaterOrEqual(t, len(lines), 3)
	assert.True(t, strings.HasPrefix(lines[0], "ID "))
	assert.Contains(t, lines[2], "Saree")
	assert.Contains(t, lines[2], "₹8000.00")
	assert.Contains(t, lines[2], "4.5")
	assert.Contains(t, buf.String(), "1 product\n")
}

func TestCategoryTable(t *testing.T) {
	var buf bytes.Buffer
	cats := catalog.New([]shop.Product{
		{ID: "a", Name: "Shirt", Category: "Men"},
		{ID: "b", Name: "Saree", Category: "Women"},
	}).Categories()

	assert.Equal(t, 2, CategoryTable(&buf, cats))
	assert.Contains(t, buf.String(), "2 categories")
}

func TestOrderTable(t *testing.T) {
	var buf bytes.Buffer
	assert.Equal(t, 0, OrderTable(&buf, nil))
	assert.Contains(t, buf.String(), "No orders found.")

	buf.Reset()
	orders := []shop.Order{{OrderID: "ORD-1", Date: "2024-05-01", Time: "10:30", ProductIDs: []string{"a", "b"}, Total: decimal.NewFromInt(999), TrackingID: "TRK"}}
	assert.Equal(t, 1, OrderTable(&buf, orders))
	assert.Contains(t, buf.String(), "ORD-1")
	assert.Contains(t, buf.String(), "2024-05-01 10:30")
	assert.Contains(t, buf.String(), "₹999.00")
}

func TestWriteJSONL(t *testing.T) {
	var buf bytes.Buffer
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	products := []shop.Product{
		{ID: "p1", Name: "A", Price: decimal.NewFromInt(10), CreatedAt: &created},
		{ID: "p2", Name: "B", Price: decimal.NewFromInt(20)},
	}
	require.NoError(t, WriteJSONL(&buf, products))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	var first map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "p1", first["_id"])
}

func TestDroppedNotice(t *testing.T) {
	assert.Empty(t, DroppedNotice(nil))
	assert.Equal(t, "1 cart item could not be loaded and is hidden: [p2]", DroppedNotice([]string{"p2"}))
}
