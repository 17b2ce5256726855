package domain

import "time"

// Cashbook transaction types.
const (
	TransactionSale     = "sale"
	TransactionReturn   = "return"
	TransactionWithdraw = "withdraw"
	TransactionDeposit  = "deposit"
)

// ValidTransactionTypes returns the set of ledger transaction types.
func ValidTransactionTypes() []string {
	return []string{TransactionSale, TransactionReturn, TransactionWithdraw, TransactionDeposit}
}

// IsValidTransactionType checks whether the given type is a known ledger type.
func IsValidTransactionType(t string) bool {
	for _, v := range ValidTransactionTypes() {
		if v == t {
			return true
		}
	}
	return false
}

// Transaction is one cashbook ledger entry for the store's drawer.
type Transaction struct {
	ID              int64     `json:"id"`
	ShopID          int64     `json:"shop_id"`
	OrderID         *int64    `json:"order_id,omitempty"`
	Type            string    `json:"type"`
	PaymentMethod   string    `json:"payment_method"`
	Amount          Money     `json:"amount"`
	Notes           string    `json:"notes,omitempty"`
	TransactionDate time.Time `json:"transaction_date"`
	CreatedAt       time.Time `json:"created_at"`
}

// DaySummary aggregates one day of drawer activity per payment method.
// Closing balances are derived, never stored independently.
type DaySummary struct {
	ShopID           int64     `json:"shop_id"`
	SummaryDate      time.Time `json:"summary_date"`
	SalesCash        Money     `json:"total_sales_cash"`
	SalesCard        Money     `json:"total_sales_card"`
	ReturnsCash      Money     `json:"total_returns_cash"`
	ReturnsCard      Money     `json:"total_returns_card"`
	WithdrawalsCash  Money     `json:"total_withdrawals_cash"`
	WithdrawalsCard  Money     `json:"total_withdrawals_card"`
	DepositsCash     Money     `json:"total_deposits_cash"`
	DepositsCard     Money     `json:"total_deposits_card"`
	TransactionCount int       `json:"transaction_count"`
}

/// ClosingCash is the cash drawer delta for the day:
// sales + deposits - returns - withdrawals.
func (s *DaySummary) ClosingCash() Money {
	return s.SalesCash + s.DepositsCash - s.ReturnsCash - s.WithdrawalsCash
}

// ClosingCard is the card takings delta for the day.
func (s *DaySummary) ClosingCard() Money {
	return s.SalesCard + s.DepositsCard - s.ReturnsCard - s.WithdrawalsCard
}
