package domain

import "time"

// Cart holds the in-progress sale for one terminal session. Lines are kept
// in first-add order; re-adding a product bumps its quantity in place and
// never reorders it.
type Cart struct {
	ID          string    `json:"id"`
	TerminalID  string    `json:"terminal_id"`
	Items       []Line    `json:"items"`
	TotalItems  int       `json:"total_items"`
	TotalAmount Money     `json:"total_amount"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Line is one row of the cart: a single product with its aggregated quantity.
// UnitPrice is snapshotted when the line is created and never changes
// afterwards, even if the catalog price moves.
type Line struct {
	ProductID int64   `json:"product_id"`
	Product   Product `json:"product"`
	Quantity  int     `json:"quantity"`
	UnitPrice Money   `json:"unit_price"`
	Total     Money   `json:"total"`
}

// FindLine returns the index of the line for the given product id, or -1.
func (c *Cart) FindLine(productID int64) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Action is one of the four cart transitions. The set is closed: Reduce
// matches every variant and leaves the cart untouched for anything else.
type Action interface{ isCartAction() }

// AddItem opens a line for the product at quantity 1, or increments the
// existing line's quantity by 1.
type AddItem struct{ Product Product }

// RemoveItem deletes the line for the product; absent lines are a no-op.
type RemoveItem struct{ ProductID int64 }

// SetQuantity sets the line's quantity to the given value; zero or negative
// removes the line entirely.
type SetQuantity struct {
	ProductID int64
	Quantity  int
}

// Clear resets the cart to empty.
type Clear struct{}

func (AddItem) isCartAction()     {}
func (RemoveItem) isCartAction()  {}
func (SetQuantity) isCartAction() {}
func (Clear) isCartAction()       {}

// Reduce applies one action to the cart and returns the next state. It is a
// pure function: the input cart is not mutated, totals are recomputed from
// the resulting lines on every transition, and no action can fail. A product
// without any price tier does not open a line; the service layer rejects such
// snapshots before they reach the reducer.
func Reduce(c Cart, action Action) Cart {
	switch a := action.(type) {
	case AddItem:
		idx := c.FindLine(a.Product.ID)
		if idx >= 0 {
			items := cloneLines(c.Items)
			items[idx].Quantity++
			items[idx].Total = items[idx].UnitPrice.Mul(items[idx].Quantity)
			return c.withItems(items)
		}
		price, ok := a.Product.SalePrice()
		if !ok {
			return c
		}
		items := cloneLines(c.Items)
		items = append(items, Line{
			ProductID: a.Product.ID,
			Product:   a.Product,
			Quantity:  1,
			UnitPrice: price,
			Total:     price,
		})
		return c.withItems(items)

	case RemoveItem:
		return c.withItems(deleteLine(c.Items, a.ProductID))

	case SetQuantity:
		if a.Quantity <= 0 {
			return c.withItems(deleteLine(c.Items, a.ProductID))
		}
		idx := c.FindLine(a.ProductID)
		if idx < 0 {
			return c.withItems(cloneLines(c.Items))
		}
		items := cloneLines(c.Items)
		items[idx].Quantity = a.Quantity
		items[idx].Total = items[idx].UnitPrice.Mul(a.Quantity)
		return c.withItems(items)

	case Clear:
		return c.withItems([]Line{})

	default:
		return c
	}
}

// withItems returns a copy of the cart with the given lines and totals
// recomputed from them.
func (c Cart) withItems(items []Line) Cart {
	c.Items = items
	c.TotalItems = 0
	c.TotalAmount = 0
	for i := range items {
		c.TotalItems += items[i].Quantity
		c.TotalAmount += items[i].UnitPrice.Mul(items[i].Quantity)
	}
	return c
}

func cloneLines(items []Line) []Line {
	out := make([]Line, len(items))
	copy(out, items)
	return out
}

func deleteLine(items []Line, productID int64) []Line {
	out := make([]Line, 0, len(items))
	for i := range items {
		if items[i].ProductID != productID {
			out = append(out, items[i])
		}
	}
	return out
}
