// Package cart implements the session-backed shopping cart.
package cart

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/obutuz/Miley/internal/domain"
	"github.com/obutuz/Miley/internal/session"
	"gorm.io/gorm"
)

// SessionKey is where the cart lives inside the session.
const SessionKey = "cart"

// MaxQuantity bounds the quantity accepted by the add form.
const MaxQuantity = 20

// Item is the stored state of one cart line. Price is frozen when the
// product is first added.
type Item struct {
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// Line is a cart item joined with its product.
type Line struct {
	Product    domain.Product
	Quantity   int
	Price      float64
	TotalPrice float64
}

// Cart is a product-id keyed view over the session cart.
type Cart struct {
	sess  *session.Session
	items map[string]Item
}

// Load reads the cart from the session.
func Load(sess *session.Session) (*Cart, error) {
	items := map[string]Item{}
	if _, err := sess.Get(SessionKey, &items); err != nil {
		return nil, err
	}
	return &Cart{sess: sess, items: items}, nil
}

func key(productID uint) string {
	return strconv.FormatUint(uint64(productID), 10)
}

// Add puts quantity of product into the cart. With update the quantity
// replaces the current one, otherwise it is added to it. Lines that end at
// zero or below are removed.
func (c *Cart) Add(product domain.Product, quantity int, update bool) error {
	k := key(product.ID)
	item, ok := c.items[k]
	if !ok {
		item = Item{Price: product.Price}
	}
	if update {
		item.Quantity = quantity
	} else {
		item.Quantity += quantity
	}
	if item.Quantity <= 0 {
		delete(c.items, k)
	} else {
		c.items[k] = item
	}
	return c.save()
}

// Remove drops the product from the cart; removing an absent product is a no-op.
func (c *Cart) Remove(productID uint) error {
	k := key(productID)
	if _, ok := c.items[k]; !ok {
		return nil
	}
	delete(c.items, k)
	return c.save()
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.items = map[string]Item{}
	c.sess.Delete(SessionKey)
}

func (c *Cart) save() error {
	return c.sess.Set(SessionKey, c.items)
}

// Item returns the stored line for a product.
func (c *Cart) Item(productID uint) (Item, bool) {
	item, ok := c.items[key(productID)]
	return item, ok
}

// Len is the total number of units in the cart.
func (c *Cart) Len() int {
	n := 0
	for _, item := range c.items {
		n += item.Quantity
	}
	return n
}

// TotalPrice sums price times quantity over all lines.
func (c *Cart) TotalPrice() float64 {
	var total float64
	for _, item := range c.items {
		total += item.Price * float64(item.Quantity)
	}
	return total
}

// ProductIDs returns the ids in the cart in ascending order.
func (c *Cart) ProductIDs() []uint {
	ids := make([]uint, 0, len(c.items))
	for k := range c.items {
		id, err := strconv.ParseUint(k, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, uint(id))
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Lines joins the cart with its products. Products that no longer exist
// are skipped.
func (c *Cart) Lines(ctx context.Context, db *gorm.DB) ([]Line, error) {
	ids := c.ProductIDs()
	if len(ids) == 0 {
		return nil, nil
	}
	var products []domain.Product
	if err := db.WithContext(ctx).Where("id IN ?", ids).Order("id").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("load cart products: %w", err)
	}
	lines := make([]Line, 0, len(products))
	for _, p := range products {
		item := c.items[key(p.ID)]
		lines = append(lines, Line{
			Product:    p,
			Quantity:   item.Quantity,
			Price:      item.Price,
			TotalPrice: item.Price * float64(item.Quantity),
		})
	}
	return lines, nil
}
