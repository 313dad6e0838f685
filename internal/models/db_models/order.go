package db_models

import "github.com/google/uuid"

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusCompleted  OrderStatus = "COMPLETED"
	OrderStatusFailed     OrderStatus = "FAILED"
)

// Legal transitions:
//
//	PENDING    -> PROCESSING (provider accepted the task)
//	PENDING    -> FAILED     (submission rejected or retries exhausted)
//	PROCESSING -> COMPLETED  (asset ready)
//	PROCESSING -> FAILED     (provider error or poll timeout)
//
// COMPLETED and FAILED are terminal. Orders are never deleted; together with
// the points history they form the audit trail for every debit/refund pair.
type Order struct {
	BaseModel
	AccountID uuid.UUID   `gorm:"index"`
	SiteID    string      `gorm:"size:64;index"`
	ItemID    string      `gorm:"size:128"`
	ItemURL   string
	Title     string
	Cost      int64       `gorm:"not null"` // points, fixed at creation
	Status    OrderStatus `gorm:"size:16;index"`

	ProviderTaskID *string `gorm:"index"`
	SubmitAttempts int     `gorm:"not null;default:0"`

	DownloadURL   string
	FileName      string
	FileSize      int64
	FailureReason string

	// Non-nil once a refund has been issued for this order.
	RefundedAt *int64

	Account Account `gorm:"foreignKey:AccountID"`
}

func (o *Order) Terminal() bool {
	return o.Status == OrderStatusCompleted || o.Status == OrderStatusFailed
}
