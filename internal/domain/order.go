package domain

import "time"

// Payment methods accepted at the till.
const (
	PaymentCash = "cash"
	PaymentCard = "card"
)

// IsValidPaymentMethod checks whether the given method is accepted.
func IsValidPaymentMethod(method string) bool {
	return method == PaymentCash || method == PaymentCard
}

// Order is the order backend's record of a persisted sale. The backend is
// authoritative over all pricing here; Total may differ from the cart's
// locally tracked amount when the backend adds tax or shipping.
type Order struct {
	ID            int64       `json:"id"`
	UserID        int64       `json:"userId"`
	ShopID        int64       `json:"shopId"`
	LocationCode  string      `json:"locationCode"`
	Total         Money       `json:"total"`
	Status        string      `json:"status"`
	OrderSource   string      `json:"orderSource"`
	PaymentMethod string      `json:"paymentMethod"`
	CreatedAt     time.Time   `json:"createdAt"`
	Items         []OrderItem `json:"orderItems"`
	Shop          Shop        `json:"shop"`
}

// OrderItem is one persisted order line with the backend-confirmed unit price.
type OrderItem struct {
	ID               int64        `json:"id"`
	ProductID        int64        `json:"productId"`
	Quantity         int          `json:"quantity"`
	PriceAtOrderTime Money        `json:"priceAtOrderTime"`
	Subtotal         Money        `json:"subtotal"`
	Product          OrderProduct `json:"product"`
}

// OrderProduct is the slim product projection embedded in order lines.
type OrderProduct struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Image  string `json:"image,omitempty"`
	Weight string `json:"weight,omitempty"`
}

// Shop identifies the store an order was placed at, as printed on receipts.
type Shop struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
}

// CashDetails is the tender annotation for cash sales. It exists only on
// this side of the wire: the backend never stores it, the receipt prints it.
type CashDetails struct {
	ReceivedAmount Money `json:"received_amount"`
	Change         Money `json:"change"`
}

// CompletedSale is a finished checkout: the backend's order plus, for cash
// payments, the tendered amount and change handed back.
type CompletedSale struct {
	Order       Order        `json:"order"`
	CashDetails *CashDetails `json:"cash_details,omitempty"`
}
