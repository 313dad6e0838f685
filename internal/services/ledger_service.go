package services

import (
	"context"

	"github.com/google/uuid"

	dbm "pointfetch/internal/models/db_models"
	"pointfetch/internal/models/response_models"
	"pointfetch/internal/repositories"
	"pointfetch/pkg/utils"
)

type LedgerService interface {
	GetBalance(ctx context.Context, accountID uuid.UUID) (*response_models.BalanceResponse, error)
	GetHistory(ctx context.Context, accountID uuid.UUID, page int, pageSize int) ([]response_models.PointsHistoryResponse, error)
	Grant(ctx context.Context, accountID uuid.UUID, amount int64, entryType dbm.PointsEntryType, description string) (*response_models.BalanceResponse, error)
}

type ledgerService struct {
	ledger   repositories.LedgerRepository
	accounts repositories.AccountRepository
}

func NewLedgerService(ledger repositories.LedgerRepository, accounts repositories.AccountRepository) LedgerService {
	return &ledgerService{
		ledger:   ledger,
		accounts: accounts,
	}
}

func (s *ledgerService) GetBalance(ctx context.Context, accountID uuid.UUID) (*response_models.BalanceResponse, error) {
	balance, err := s.ledger.BalanceOf(ctx, accountID)
	if err != nil {
		return nil, err
	}
	resp := response_models.ToBalanceResponse(balance)
	return &resp, nil
}

func (s *ledgerService) GetHistory(ctx context.Context, accountID uuid.UUID, page int, pageSize int) ([]response_models.PointsHistoryResponse, error) {
	if page < 1 {
		return nil, utils.ErrInvalidPage
	}
	if pageSize < 1 || pageSize > 100 {
		return nil, utils.ErrInvalidPageSize
	}

	entries, err := s.ledger.History(ctx, accountID, page, pageSize)
	if err != nil {
		return nil, err
	}
	return response_models.ToPointsHistoryResponses(entries), nil
}

// Grant credits points outside the order flow: purchases, promo bonuses,
// plan rollovers. Refunds are never granted here; they only come out of the
// fulfillment pipeline tied to a failed order.
func (s *ledgerService) Grant(ctx context.Context, accountID uuid.UUID, amount int64, entryType dbm.PointsEntryType, description string) (*response_models.BalanceResponse, error) {
	if amount <= 0 {
		return nil, utils.ErrInvalidAmount
	}
	switch entryType {
	case dbm.PointsEntryPurchase, dbm.PointsEntryBonus, dbm.PointsEntryRollover:
	default:
		return nil, utils.ErrInvalidEntryType
	}

	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, utils.ErrAccountNotFound
	}

	if _, err := s.ledger.Credit(ctx, nil, accountID, amount, entryType, description, nil); err != nil {
		return nil, err
	}
	return s.GetBalance(ctx, accountID)
}
