package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/greenbasket/pos/internal/domain"
	"github.com/greenbasket/pos/internal/event"
	"github.com/greenbasket/pos/internal/repository"
	apperrors "github.com/greenbasket/pos/pkg/errors"
)

// defaultCartTTL is how long an untouched session cart survives in Redis.
const defaultCartTTL = 12 * time.Hour

// CartService implements the business logic for the terminal's session cart.
type CartService struct {
	repo     repository.CartRepository
	producer *event.Producer
	logger   *slog.Logger
	cartTTL  time.Duration
}

// NewCartService creates a new cart service.
func NewCartService(repo repository.CartRepository, producer *event.Producer, logger *slog.Logger, cartTTL time.Duration) *CartService {
	if cartTTL <= 0 {
		cartTTL = defaultCartTTL
	}
	return &CartService{
		repo:     repo,
		producer: producer,
		logger:   logger,
		cartTTL:  cartTTL,
	}
}

// GetCart returns the terminal's cart, creating an empty one if none exists.
func (s *CartService) GetCart(ctx context.Context, terminalID string) (*domain.Cart, error) {
	if terminalID == "" {
		return nil, apperrors.InvalidInput("terminal id is required")
	}

	cart, err := s.repo.Get(ctx, terminalID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c := s.newCart(terminalID)
			return &c, nil
		}
		return nil, fmt.Errorf("get cart: %w", err)
	}
	return cart, nil
}

// AddItem adds one unit of the product to the cart. Re-adding a product the
// cart already holds bumps its quantity; the line keeps the unit price it
// was opened at.
func (s *CartService) AddItem(ctx context.Context, terminalID string, product *domain.Product) (*domain.Cart, error) {
	if terminalID == "" {
		return nil, apperrors.InvalidInput("terminal id is required")
	}
	if product == nil {
		return nil, apperrors.InvalidInput("product is required")
	}
	if product.ID <= 0 {
		return nil, apperrors.InvalidInput("product id is required")
	}

	// New lines need a sellable price. Existing lines keep their snapshot,
	// so only the first add for a product is gated on this.
	price, ok := product.SalePrice()
	if !ok {
		return nil, apperrors.InvalidInput(fmt.Sprintf("product %d has no sellable price", product.ID))
	}
	if price < 0 {
		return nil, apperrors.InvalidInput(fmt.Sprintf("product %d has a negative price", product.ID))
	}

	return s.dispatch(ctx, terminalID, domain.AddItem{Product: *product})
}

// RemoveItem removes the product's line from the cart. Removing a product
// that is not in the cart leaves the cart unchanged.
func (s *CartService) RemoveItem(ctx context.Context, terminalID string, productID int64) (*domain.Cart, error) {
	if terminalID == "" {
		return nil, apperrors.InvalidInput("terminal id is required")
	}
	if productID <= 0 {
		return nil, apperrors.InvalidInput("product id is required")
	}

	return s.dispatch(ctx, terminalID, domain.RemoveItem{ProductID: productID})
}

// SetQuantity overwrites the line's quantity. A quantity of zero or less
// removes the line.
func (s *CartService) SetQuantity(ctx context.Context, terminalID string, productID int64, quantity int) (*domain.Cart, error) {
	if terminalID == "" {
		return nil, apperrors.InvalidInput("terminal id is required")
	}
	if productID <= 0 {
		return nil, apperrors.InvalidInput("product id is required")
	}

	return s.dispatch(ctx, terminalID, domain.SetQuantity{ProductID: productID, Quantity: quantity})
}

// ClearCart empties the terminal's cart.
func (s *CartService) ClearCart(ctx context.Context, terminalID string) (*domain.Cart, error) {
	if terminalID == "" {
		return nil, apperrors.InvalidInput("terminal id is required")
	}

	return s.dispatch(ctx, terminalID, domain.Clear{})
}

// dispatch loads or creates the session cart, applies one action through the
// reducer, persists the result, and publishes the updated state.
func (s *CartService) dispatch(ctx context.Context, terminalID string, action domain.Action) (*domain.Cart, error) {
	cart, err := s.repo.Get(ctx, terminalID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("get cart: %w", err)
		}
		c := s.newCart(terminalID)
		cart = &c
	}

	now := time.Now().UTC()
	next := domain.Reduce(*cart, action)
	next.UpdatedAt = now
	next.ExpiresAt = now.Add(s.cartTTL)

	if err := s.repo.Save(ctx, &next); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}

	// Publish event; log but do not fail on error.
	if err := s.producer.PublishCartUpdated(ctx, &next); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish pos.cart.updated event",
			slog.String("cart_id", next.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "cart updated",
		slog.String("cart_id", next.ID),
		slog.String("terminal_id", terminalID),
		slog.Int("total_items", next.TotalItems),
		slog.String("total_amount", next.TotalAmount.String()),
	)

	return &next, nil
}

func (s *CartService) newCart(terminalID string) domain.Cart {
	now := time.Now().UTC()
	return domain.Cart{
		ID:         uuid.New().String(),
		TerminalID: terminalID,
		Items:      []domain.Line{},
		CreatedAt:  now,
		UpdatedAt:  now,
		ExpiresAt:  now.Add(s.cartTTL),
	}
}
