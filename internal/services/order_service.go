package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbm "pointfetch/internal/models/db_models"
	"pointfetch/internal/models/request_models"
	"pointfetch/internal/provider"
	"pointfetch/internal/repositories"
	"pointfetch/pkg/utils"
)

// TxRunner is satisfied by *gorm.DB; tests inject a pass-through.
type TxRunner interface {
	Transaction(fc func(tx *gorm.DB) error, opts ...*sql.TxOptions) error
}

type FulfillmentConfig struct {
	// PollTimeout bounds how long an order may sit non-terminal before the
	// poll step fails it with a refund.
	PollTimeout time.Duration
	// MaxSubmitAttempts bounds retryable submission errors per order.
	MaxSubmitAttempts int
}

type OrderService interface {
	CreateOrder(ctx context.Context, accountID uuid.UUID, in request_models.CreateOrderRequest) (*dbm.Order, error)
	GetOrder(ctx context.Context, accountID uuid.UUID, orderID uuid.UUID) (*dbm.Order, error)
	ListOrders(ctx context.Context, accountID uuid.UUID, page int, pageSize int) ([]dbm.Order, error)
	Cancel(ctx context.Context, accountID uuid.UUID, orderID uuid.UUID) (*dbm.Order, error)

	// Submit and PollOnce advance an order one step; the poller drives them.
	Submit(ctx context.Context, orderID uuid.UUID) error
	PollOnce(ctx context.Context, orderID uuid.UUID) error
}

type orderService struct {
	db       TxRunner
	orders   repositories.OrderRepository
	ledger   repositories.LedgerRepository
	provider provider.Client
	cfg      FulfillmentConfig
}

func NewOrderService(
	db TxRunner,
	orders repositories.OrderRepository,
	ledger repositories.LedgerRepository,
	providerClient provider.Client,
	cfg FulfillmentConfig,
) OrderService {
	return &orderService{
		db:       db,
		orders:   orders,
		ledger:   ledger,
		provider: providerClient,
		cfg:      cfg,
	}
}

// CreateOrder debits the reservation and writes the PENDING order in one
// transaction: either the user has a debit and a matching order row, or
// neither.
func (s *orderService) CreateOrder(ctx context.Context, accountID uuid.UUID, in request_models.CreateOrderRequest) (*dbm.Order, error) {
	site, ok := provider.LookupSite(in.ItemURL)
	if !ok {
		return nil, utils.ErrSiteUnsupported
	}
	if in.SiteID != "" && in.SiteID != site.ID {
		return nil, utils.ErrSiteUnsupported
	}

	order := &dbm.Order{
		BaseModel: dbm.BaseModel{ID: uuid.New()},
		AccountID: accountID,
		SiteID:    site.ID,
		ItemID:    in.ItemID,
		ItemURL:   in.ItemURL,
		Title:     in.Title,
		Cost:      site.Cost,
		Status:    dbm.OrderStatusPending,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := s.ledger.Debit(ctx, tx, accountID, order.Cost, "order reservation", &order.ID); err != nil {
			return err
		}
		return s.orders.Create(ctx, tx, order)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *orderService) GetOrder(ctx context.Context, accountID uuid.UUID, orderID uuid.UUID) (*dbm.Order, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil || order.AccountID != accountID {
		return nil, utils.ErrOrderNotFound
	}
	return order, nil
}

func (s *orderService) ListOrders(ctx context.Context, accountID uuid.UUID, page int, pageSize int) ([]dbm.Order, error) {
	if page < 1 {
		return nil, utils.ErrInvalidPage
	}
	if pageSize < 1 || pageSize > 100 {
		return nil, utils.ErrInvalidPageSize
	}
	return s.orders.ListByAccount(ctx, accountID, page, pageSize)
}

// Submit hands a PENDING order to the provider. Retryable submission errors
// leave the order PENDING for the next tick, bounded by MaxSubmitAttempts.
func (s *orderService) Submit(ctx context.Context, orderID uuid.UUID) error {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return err
	}
	if order == nil {
		return utils.ErrOrderNotFound
	}
	if order.Status != dbm.OrderStatusPending {
		return nil
	}

	taskID, err := s.provider.SubmitTask(ctx, order.ItemURL)
	if err != nil {
		if !provider.IsRetryable(err) {
			return s.fail(ctx, order, fmt.Sprintf("submission rejected: %v", err))
		}
		if order.SubmitAttempts+1 >= s.cfg.MaxSubmitAttempts {
			return s.fail(ctx, order, fmt.Sprintf("submission retries exhausted: %v", err))
		}
		return s.orders.IncrementSubmitAttempts(ctx, orderID)
	}

	err = s.orders.Transition(ctx, nil, orderID, dbm.OrderStatusPending, dbm.OrderStatusProcessing, repositories.TransitionFields{
		ProviderTaskID: &taskID,
	})
	if errors.Is(err, utils.ErrStaleTransition) {
		// A concurrent cancel won; the provider task is abandoned.
		log.Printf("order %s advanced elsewhere during submit", orderID)
		return nil
	}
	return err
}

// PollOnce advances a PROCESSING order from the provider's reported state.
func (s *orderService) PollOnce(ctx context.Context, orderID uuid.UUID) error {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return err
	}
	if order == nil {
		return utils.ErrOrderNotFound
	}
	if order.Status != dbm.OrderStatusProcessing {
		return nil
	}

	if s.cfg.PollTimeout > 0 && time.Since(time.Unix(order.CreatedAt, 0)) > s.cfg.PollTimeout {
		return s.fail(ctx, order, "poll timeout")
	}

	if order.ProviderTaskID == nil {
		return s.fail(ctx, order, "processing order has no provider task")
	}

	result, err := s.provider.PollTask(ctx, *order.ProviderTaskID)
	if err != nil {
		if provider.IsRetryable(err) {
			return nil
		}
		return s.fail(ctx, order, fmt.Sprintf("poll failed: %v", err))
	}

	switch result.Status {
	case provider.TaskReady:
		err := s.orders.Transition(ctx, nil, orderID, dbm.OrderStatusProcessing, dbm.OrderStatusCompleted, repositories.TransitionFields{
			DownloadURL: result.DownloadURL,
			FileName:    result.FileName,
			FileSize:    result.FileSize,
		})
		if errors.Is(err, utils.ErrStaleTransition) {
			return nil
		}
		return err
	case provider.TaskError:
		reason := result.ErrorDetail
		if reason == "" {
			reason = "provider task failed"
		}
		return s.fail(ctx, order, reason)
	default:
		// QUEUED or PROCESSING: nothing to do until the next tick.
		return nil
	}
}

// Cancel is a user-initiated failure. Before the provider finishes it wins
// and refunds; if a concurrent poll already completed the order the store
// transition loses and the caller sees a conflict.
func (s *orderService) Cancel(ctx context.Context, accountID uuid.UUID, orderID uuid.UUID) (*dbm.Order, error) {
	order, err := s.GetOrder(ctx, accountID, orderID)
	if err != nil {
		return nil, err
	}
	if order.Terminal() {
		return nil, utils.ErrOrderFinished
	}

	if err := s.fail(ctx, order, "cancelled by user"); err != nil {
		return nil, err
	}

	refreshed, err := s.GetOrder(ctx, accountID, orderID)
	if err != nil {
		return nil, err
	}
	if refreshed.Status != dbm.OrderStatusFailed {
		return nil, utils.ErrOrderFinished
	}
	return refreshed, nil
}

// fail moves the order to FAILED and refunds its cost. The conditional
// transition runs first and the refund is committed with it, so however many
// pollers and cancels race, at most one refund is ever written.
func (s *orderService) fail(ctx context.Context, order *dbm.Order, reason string) error {
	now := time.Now().Unix()
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.orders.Transition(ctx, tx, order.ID, order.Status, dbm.OrderStatusFailed, repositories.TransitionFields{
			FailureReason: reason,
			RefundedAt:    &now,
		}); err != nil {
			return err
		}
		_, err := s.ledger.Credit(ctx, tx, order.AccountID, order.Cost, dbm.PointsEntryRefund, "order refund", &order.ID)
		return err
	})
	if errors.Is(err, utils.ErrStaleTransition) {
		// Someone else already finished this order; no refund from us.
		return nil
	}
	return err
}
