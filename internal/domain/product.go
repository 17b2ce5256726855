package domain

// Product is a catalog snapshot as received from the catalog service. The
// cart never re-fetches it: a line keeps the snapshot it was added with.
type Product struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	POSPrice      *Money `json:"posPrice,omitempty"`
	RetailPrice   *Money `json:"retailPrice,omitempty"`
	Barcode       string `json:"barcode,omitempty"`
	SKU           string `json:"sku,omitempty"`
	Image         string `json:"image,omitempty"`
	Weight        string `json:"weight,omitempty"`
	StockQuantity int    `json:"stockQuantity,omitempty"`
}

// SalePrice returns the price a cart line is opened at: the POS price when
// the catalog carries one, otherwise the retail price. The second return is
// false when neither tier is present.
func (p *Product) SalePrice() (Money, bool) {
	if p.POSPrice != nil {
		return *p.POSPrice, true
	}
	if p.RetailPrice != nil {
		return *p.RetailPrice, true
	}
	return 0, false
}
