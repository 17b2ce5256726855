package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/greenbasket/pos/internal/domain"
	"github.com/greenbasket/pos/internal/repository"
	"github.com/greenbasket/pos/pkg/database"
	apperrors "github.com/greenbasket/pos/pkg/errors"
)

// CashbookRepository implements repository.CashbookRepository on PostgreSQL.
type CashbookRepository struct {
	pool database.DBTX
}

// NewCashbookRepository creates a PostgreSQL-backed cashbook repository.
func NewCashbookRepository(pool database.DBTX) *CashbookRepository {
	return &CashbookRepository{pool: pool}
}

// Record inserts one ledger entry and fills in the generated ID.
func (r *CashbookRepository) Record(ctx context.Context, tx *domain.Transaction) error {
	query := `
		INSERT INTO cashbook_transactions (shop_id, order_id, type, payment_method, amount, notes, transaction_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`

	err := r.pool.QueryRow(ctx, query,
		tx.ShopID,
		tx.OrderID,
		tx.Type,
		tx.PaymentMethod,
		int64(tx.Amount),
		tx.Notes,
		tx.TransactionDate,
		tx.CreatedAt,
	).Scan(&tx.ID)
	if err != nil {
		return fmt.Errorf("insert cashbook transaction: %w", err)
	}
	return nil
}

// List returns transactions for the shop matching the filter, newest first,
// plus the unpaged total count.
func (r *CashbookRepository) List(ctx context.Context, shopID int64, filter repository.TransactionFilter) ([]domain.Transaction, int, error) {
	conditions := []string{"shop_id = $1"}
	args := []any{shopID}
	argIndex := 2

	if filter.Type != "" {
		conditions = append(conditions, fmt.Sprintf("type = $%d", argIndex))
		args = append(args, filter.Type)
		argIndex++
	}
	if filter.PaymentMethod != "" {
		conditions = append(conditions, fmt.Sprintf("payment_method = $%d", argIndex))
		args = append(args, filter.PaymentMethod)
		argIndex++
	}
	if filter.StartDate != nil {
		conditions = append(conditions, fmt.Sprintf("transaction_date >= $%d", argIndex))
		args = append(args, *filter.StartDate)
		argIndex++
	}
	if filter.EndDate != nil {
		conditions = append(conditions, fmt.Sprintf("transaction_date < $%d", argIndex))
		args = append(args, *filter.EndDate)
		argIndex++
	}

	where := strings.Join(conditions, " AND ")

	var total int
	countQuery := "SELECT COUNT(*) FROM cashbook_transactions WHERE " + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count cashbook transactions: %w", err)
	}

	listQuery := fmt.Sprintf(`
		SELECT id, shop_id, order_id, type, payment_method, amount, notes, transaction_date, created_at
		FROM cashbook_transactions
		WHERE %s
		ORDER BY transaction_date DESC, id DESC
		LIMIT $%d OFFSET $%d`, where, argIndex, argIndex+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.pool.Query(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list cashbook transactions: %w", err)
	}
	defer rows.Close()

	transactions := []domain.Transaction{}
	for rows.Next() {
		var (
			t      domain.Transaction
			amount int64
		)
		if err := rows.Scan(
			&t.ID,
			&t.ShopID,
			&t.OrderID,
			&t.Type,
			&t.PaymentMethod,
			&amount,
			&t.Notes,
			&t.TransactionDate,
			&t.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan cashbook transaction: %w", err)
		}
		t.Amount = domain.Money(amount)
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate cashbook transactions: %w", err)
	}

	return transactions, total, nil
}

// GetByID retrieves a single ledger entry.
func (r *CashbookRepository) GetByID(ctx context.Context, id int64) (*domain.Transaction, error) {
	query := `
		SELECT id, shop_id, order_id, type, payment_method, amount, notes, transaction_date, created_at
		FROM cashbook_transactions
		WHERE id = $1`

	var (
		t      domain.Transaction
		amount int64
	)
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&t.ID,
		&t.ShopID,
		&t.OrderID,
		&t.Type,
		&t.PaymentMethod,
		&amount,
		&t.Notes,
		&t.TransactionDate,
		&t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan cashbook transaction: %w", err)
	}
	t.Amount = domain.Money(amount)
	return &t, nil
}

// DaySummary aggregates one calendar day of drawer activity in a single
// query using FILTER clauses, one sum per type/method pair.
func (r *CashbookRepository) DaySummary(ctx context.Context, shopID int64, day time.Time) (*domain.DaySummary, error) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)

	query := `
		SELECT
			COUNT(*),
			COALESCE(SUM(amount) FILTER (WHERE type = 'sale'     AND payment_method = 'cash'), 0),
			COALESCE(SUM(amount) FILTER (WHERE type = 'sale'     AND payment_method = 'card'), 0),
			COALESCE(SUM(amount) FILTER (WHERE type = 'return'   AND payment_method = 'cash'), 0),
			COALESCE(SUM(amount) FILTER (WHERE type = 'return'   AND payment_method = 'card'), 0),
			COALESCE(SUM(amount) FILTER (WHERE type = 'withdraw' AND payment_method = 'cash'), 0),
			COALESCE(SUM(amount) FILTER (WHERE type = 'withdraw' AND payment_method = 'card'), 0),
			COALESCE(SUM(amount) FILTER (WHERE type = 'deposit'  AND payment_method = 'cash'), 0),
			COALESCE(SUM(amount) FILTER (WHERE type = 'deposit'  AND payment_method = 'card'), 0)
		FROM cashbook_transactions
		WHERE shop_id = $1 AND transaction_date >= $2 AND transaction_date < $3`

	var (
		summary = domain.DaySummary{ShopID: shopID, SummaryDate: dayStart}

		salesCash, salesCard       int64
		returnsCash, returnsCard   int64
		withdrawCash, withdrawCard int64
		depositsCash, depositsCard int64
	)
	err := r.pool.QueryRow(ctx, query, shopID, dayStart, dayEnd).Scan(
		&summary.TransactionCount,
		&salesCash, &salesCard,
		&returnsCash, &returnsCard,
		&withdrawCash, &withdrawCard,
		&depositsCash, &depositsCard,
	)
	if err != nil {
		return nil, fmt.Errorf("aggregate day summary: %w", err)
	}

	summary.SalesCash = domain.Money(salesCash)
	summary.SalesCard = domain.Money(salesCard)
	summary.ReturnsCash = domain.Money(returnsCash)
	summary.ReturnsCard = domain.Money(returnsCard)
	summary.WithdrawalsCash = domain.Money(withdrawCash)
	summary.WithdrawalsCard = domain.Money(withdrawCard)
	summary.DepositsCash = domain.Money(depositsCash)
	summary.DepositsCard = domain.Money(depositsCard)

	return &summary, nil
}
