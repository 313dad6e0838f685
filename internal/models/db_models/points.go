package db_models

import "github.com/google/uuid"

type PointsEntryType string

const (
	PointsEntryPurchase PointsEntryType = "PURCHASE"
	PointsEntryUsage    PointsEntryType = "USAGE"
	PointsEntryRefund   PointsEntryType = "REFUND"
	PointsEntryBonus    PointsEntryType = "BONUS"
	PointsEntryRollover PointsEntryType = "ROLLOVER"
)

// PointsBalance is the single mutable row per account. It is only ever
// touched through the ledger repository so that every change pairs with
// exactly one PointsHistoryEntry.
type PointsBalance struct {
	BaseModel
	AccountID      uuid.UUID `gorm:"uniqueIndex"`
	CurrentPoints  int64     `gorm:"not null;default:0"`
	TotalPurchased int64     `gorm:"not null;default:0"`
	TotalUsed      int64     `gorm:"not null;default:0"`

	Account Account `gorm:"foreignKey:AccountID"`
}

// PointsHistoryEntry is append-only. Amount is signed: debits are negative,
// credits positive, so a user's entries sum to their balance delta.
type PointsHistoryEntry struct {
	BaseModel
	AccountID      uuid.UUID       `gorm:"index"`
	Type           PointsEntryType `gorm:"size:16;index"`
	Amount         int64           `gorm:"not null"`
	Description    string
	RelatedOrderID *uuid.UUID `gorm:"index"`
}
