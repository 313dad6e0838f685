package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbm "pointfetch/internal/models/db_models"
	"pointfetch/pkg/utils"
)

// TransitionFields carries the columns a status transition may set alongside
// the new status. Zero values are left untouched.
type TransitionFields struct {
	ProviderTaskID *string
	DownloadURL    string
	FileName       string
	FileSize       int64
	FailureReason  string
	RefundedAt     *int64
}

type OrderRepository interface {
	Create(ctx context.Context, tx *gorm.DB, order *dbm.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*dbm.Order, error)

	// Transition flips status only if the stored status still equals from.
	// Returns utils.ErrStaleTransition when another worker won the race.
	Transition(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, from, to dbm.OrderStatus, fields TransitionFields) error

	IncrementSubmitAttempts(ctx context.Context, orderID uuid.UUID) error
	ListNonTerminal(ctx context.Context, limit int) ([]dbm.Order, error)
	ListByAccount(ctx context.Context, accountID uuid.UUID, page int, pageSize int) ([]dbm.Order, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *orderRepository) Create(ctx context.Context, tx *gorm.DB, order *dbm.Order) error {
	return r.conn(tx).WithContext(ctx).Create(order).Error
}

func (r *orderRepository) FindByID(ctx context.Context, id uuid.UUID) (*dbm.Order, error) {
	var order dbm.Order
	err := r.db.WithContext(ctx).First(&order, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) Transition(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, from, to dbm.OrderStatus, fields TransitionFields) error {
	updates := map[string]interface{}{
		"status":     to,
		"updated_at": time.Now().Unix(),
	}
	if fields.ProviderTaskID != nil {
		updates["provider_task_id"] = *fields.ProviderTaskID
	}
	if fields.DownloadURL != "" {
		updates["download_url"] = fields.DownloadURL
	}
	if fields.FileName != "" {
		updates["file_name"] = fields.FileName
	}
	if fields.FileSize != 0 {
		updates["file_size"] = fields.FileSize
	}
	if fields.FailureReason != "" {
		updates["failure_reason"] = fields.FailureReason
	}
	if fields.RefundedAt != nil {
		updates["refunded_at"] = *fields.RefundedAt
	}

	res := r.conn(tx).WithContext(ctx).
		Model(&dbm.Order{}).
		Where("id = ? AND status = ?", orderID, from).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.ErrStaleTransition
	}
	return nil
}

func (r *orderRepository) IncrementSubmitAttempts(ctx context.Context, orderID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&dbm.Order{}).
		Where("id = ? AND status = ?", orderID, dbm.OrderStatusPending).
		UpdateColumn("submit_attempts", gorm.Expr("submit_attempts + 1")).Error
}

func (r *orderRepository) ListNonTerminal(ctx context.Context, limit int) ([]dbm.Order, error) {
	var orders []dbm.Order
	err := r.db.WithContext(ctx).
		Where("status IN ?", []dbm.OrderStatus{dbm.OrderStatusPending, dbm.OrderStatusProcessing}).
		Order("created_at ASC").
		Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) ListByAccount(ctx context.Context, accountID uuid.UUID, page int, pageSize int) ([]dbm.Order, error) {
	var orders []dbm.Order
	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}
