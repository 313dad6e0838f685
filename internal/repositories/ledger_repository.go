package repositories

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbm "pointfetch/internal/models/db_models"
	"pointfetch/pkg/utils"
)

// LedgerRepository is the only writer of PointsBalance rows. Every debit or
// credit appends exactly one history entry in the same transaction.
//
// Methods taking tx participate in a caller-owned transaction; passing nil
// runs them against the repository's own connection.
type LedgerRepository interface {
	Debit(ctx context.Context, tx *gorm.DB, accountID uuid.UUID, amount int64, description string, orderID *uuid.UUID) (*dbm.PointsHistoryEntry, error)
	Credit(ctx context.Context, tx *gorm.DB, accountID uuid.UUID, amount int64, entryType dbm.PointsEntryType, description string, orderID *uuid.UUID) (*dbm.PointsHistoryEntry, error)
	BalanceOf(ctx context.Context, accountID uuid.UUID) (*dbm.PointsBalance, error)
	History(ctx context.Context, accountID uuid.UUID, page int, pageSize int) ([]dbm.PointsHistoryEntry, error)
}

type ledgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) LedgerRepository {
	return &ledgerRepository{db: db}
}

func (r *ledgerRepository) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

// Debit is a compare-and-decrement: the current_points >= amount guard makes
// two racing debits serialize at the row, so the balance can never go
// negative regardless of concurrent callers.
func (r *ledgerRepository) Debit(ctx context.Context, tx *gorm.DB, accountID uuid.UUID, amount int64, description string, orderID *uuid.UUID) (*dbm.PointsHistoryEntry, error) {
	db := r.conn(tx)

	res := db.WithContext(ctx).
		Model(&dbm.PointsBalance{}).
		Where("account_id = ? AND current_points >= ?", accountID, amount).
		Updates(map[string]interface{}{
			"current_points": gorm.Expr("current_points - ?", amount),
			"total_used":     gorm.Expr("total_used + ?", amount),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, utils.ErrInsufficientPoints
	}

	entry := &dbm.PointsHistoryEntry{
		AccountID:      accountID,
		Type:           dbm.PointsEntryUsage,
		Amount:         -amount,
		Description:    description,
		RelatedOrderID: orderID,
	}
	if err := db.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

func (r *ledgerRepository) Credit(ctx context.Context, tx *gorm.DB, accountID uuid.UUID, amount int64, entryType dbm.PointsEntryType, description string, orderID *uuid.UUID) (*dbm.PointsHistoryEntry, error) {
	db := r.conn(tx)

	updates := map[string]interface{}{
		"current_points": gorm.Expr("current_points + ?", amount),
	}
	if entryType == dbm.PointsEntryPurchase {
		updates["total_purchased"] = gorm.Expr("total_purchased + ?", amount)
	}

	res := db.WithContext(ctx).
		Model(&dbm.PointsBalance{}).
		Where("account_id = ?", accountID).
		Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		// First credit for this account creates the balance row.
		balance := &dbm.PointsBalance{
			AccountID:     accountID,
			CurrentPoints: amount,
		}
		if entryType == dbm.PointsEntryPurchase {
			balance.TotalPurchased = amount
		}
		if err := db.WithContext(ctx).Create(balance).Error; err != nil {
			return nil, err
		}
	}

	entry := &dbm.PointsHistoryEntry{
		AccountID:      accountID,
		Type:           entryType,
		Amount:         amount,
		Description:    description,
		RelatedOrderID: orderID,
	}
	if err := db.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

func (r *ledgerRepository) BalanceOf(ctx context.Context, accountID uuid.UUID) (*dbm.PointsBalance, error) {
	var balance dbm.PointsBalance
	err := r.db.WithContext(ctx).
		First(&balance, "account_id = ?", accountID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return &dbm.PointsBalance{AccountID: accountID}, nil
		}
		return nil, err
	}
	return &balance, nil
}

func (r *ledgerRepository) History(ctx context.Context, accountID uuid.UUID, page int, pageSize int) ([]dbm.PointsHistoryEntry, error) {
	var entries []dbm.PointsHistoryEntry
	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
