package services

import (
	"context"
	"database/sql"
	"sync"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbm "pointfetch/internal/models/db_models"
	"pointfetch/internal/provider"
	"pointfetch/internal/repositories"
	"pointfetch/pkg/utils"
)

type fakeTxRunner struct{}

func (fakeTxRunner) Transaction(fc func(tx *gorm.DB) error, opts ...*sql.TxOptions) error {
	return fc(nil)
}

// memLedger mirrors the ledger repository's semantics in memory: the mutex
// stands in for the row-level atomicity of the conditional UPDATE.
type memLedger struct {
	mu       sync.Mutex
	balances map[uuid.UUID]*dbm.PointsBalance
	entries  []dbm.PointsHistoryEntry
}

func newMemLedger() *memLedger {
	return &memLedger{balances: make(map[uuid.UUID]*dbm.PointsBalance)}
}

func (m *memLedger) seed(accountID uuid.UUID, points int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[accountID] = &dbm.PointsBalance{AccountID: accountID, CurrentPoints: points, TotalPurchased: points}
}

func (m *memLedger) Debit(ctx context.Context, tx *gorm.DB, accountID uuid.UUID, amount int64, description string, orderID *uuid.UUID) (*dbm.PointsHistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	balance := m.balances[accountID]
	if balance == nil || balance.CurrentPoints < amount {
		return nil, utils.ErrInsufficientPoints
	}
	balance.CurrentPoints -= amount
	balance.TotalUsed += amount

	entry := dbm.PointsHistoryEntry{
		BaseModel:      dbm.BaseModel{ID: uuid.New()},
		AccountID:      accountID,
		Type:           dbm.PointsEntryUsage,
		Amount:         -amount,
		Description:    description,
		RelatedOrderID: orderID,
	}
	m.entries = append(m.entries, entry)
	return &entry, nil
}

func (m *memLedger) Credit(ctx context.Context, tx *gorm.DB, accountID uuid.UUID, amount int64, entryType dbm.PointsEntryType, description string, orderID *uuid.UUID) (*dbm.PointsHistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	balance := m.balances[accountID]
	if balance == nil {
		balance = &dbm.PointsBalance{AccountID: accountID}
		m.balances[accountID] = balance
	}
	balance.CurrentPoints += amount
	if entryType == dbm.PointsEntryPurchase {
		balance.TotalPurchased += amount
	}

	entry := dbm.PointsHistoryEntry{
		BaseModel:      dbm.BaseModel{ID: uuid.New()},
		AccountID:      accountID,
		Type:           entryType,
		Amount:         amount,
		Description:    description,
		RelatedOrderID: orderID,
	}
	m.entries = append(m.entries, entry)
	return &entry, nil
}

func (m *memLedger) BalanceOf(ctx context.Context, accountID uuid.UUID) (*dbm.PointsBalance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if balance := m.balances[accountID]; balance != nil {
		copied := *balance
		return &copied, nil
	}
	return &dbm.PointsBalance{AccountID: accountID}, nil
}

func (m *memLedger) History(ctx context.Context, accountID uuid.UUID, page int, pageSize int) ([]dbm.PointsHistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []dbm.PointsHistoryEntry
	for _, entry := range m.entries {
		if entry.AccountID == accountID {
			out = append(out, entry)
		}
	}
	return out, nil
}

func (m *memLedger) points(accountID uuid.UUID) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if balance := m.balances[accountID]; balance != nil {
		return balance.CurrentPoints
	}
	return 0
}

func (m *memLedger) refundCount(orderID uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, entry := range m.entries {
		if entry.Type == dbm.PointsEntryRefund && entry.RelatedOrderID != nil && *entry.RelatedOrderID == orderID {
			n++
		}
	}
	return n
}

// memOrders mirrors the order repository; Transition enforces the
// expected-current-status guard exactly like the conditional UPDATE does.
type memOrders struct {
	mu     sync.Mutex
	orders map[uuid.UUID]*dbm.Order
}

func newMemOrders() *memOrders {
	return &memOrders{orders: make(map[uuid.UUID]*dbm.Order)}
}

func (m *memOrders) Create(ctx context.Context, tx *gorm.DB, order *dbm.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *order
	m.orders[order.ID] = &copied
	return nil
}

func (m *memOrders) FindByID(ctx context.Context, id uuid.UUID) (*dbm.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if order := m.orders[id]; order != nil {
		copied := *order
		return &copied, nil
	}
	return nil, nil
}

func (m *memOrders) Transition(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, from, to dbm.OrderStatus, fields repositories.TransitionFields) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	order := m.orders[orderID]
	if order == nil || order.Status != from {
		return utils.ErrStaleTransition
	}
	order.Status = to
	if fields.ProviderTaskID != nil {
		order.ProviderTaskID = fields.ProviderTaskID
	}
	if fields.DownloadURL != "" {
		order.DownloadURL = fields.DownloadURL
	}
	if fields.FileName != "" {
		order.FileName = fields.FileName
	}
	if fields.FileSize != 0 {
		order.FileSize = fields.FileSize
	}
	if fields.FailureReason != "" {
		order.FailureReason = fields.FailureReason
	}
	if fields.RefundedAt != nil {
		order.RefundedAt = fields.RefundedAt
	}
	return nil
}

func (m *memOrders) IncrementSubmitAttempts(ctx context.Context, orderID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if order := m.orders[orderID]; order != nil && order.Status == dbm.OrderStatusPending {
		order.SubmitAttempts++
	}
	return nil
}

func (m *memOrders) ListNonTerminal(ctx context.Context, limit int) ([]dbm.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []dbm.Order
	for _, order := range m.orders {
		if !order.Terminal() && len(out) < limit {
			out = append(out, *order)
		}
	}
	return out, nil
}

func (m *memOrders) ListByAccount(ctx context.Context, accountID uuid.UUID, page int, pageSize int) ([]dbm.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []dbm.Order
	for _, order := range m.orders {
		if order.AccountID == accountID {
			out = append(out, *order)
		}
	}
	return out, nil
}

func (m *memOrders) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.orders)
}

func (m *memOrders) get(id uuid.UUID) *dbm.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	if order := m.orders[id]; order != nil {
		copied := *order
		return &copied
	}
	return nil
}

type fakeProvider struct {
	mu          sync.Mutex
	taskID      string
	submitErr   error
	pollResult  provider.TaskResult
	pollErr     error
	submitCalls int
	pollCalls   int
}

func (f *fakeProvider) SubmitTask(ctx context.Context, itemURL string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitCalls++
	if f.submitErr != nil {
		return "", f.submitErr
	}
	if f.taskID == "" {
		return "task-1", nil
	}
	return f.taskID, nil
}

func (f *fakeProvider) PollTask(ctx context.Context, taskID string) (provider.TaskResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pollCalls++
	if f.pollErr != nil {
		return provider.TaskResult{}, f.pollErr
	}
	return f.pollResult, nil
}

type fakeAccounts struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]*dbm.Account
}

func newFakeAccounts(ids ...uuid.UUID) *fakeAccounts {
	f := &fakeAccounts{accounts: make(map[uuid.UUID]*dbm.Account)}
	for _, id := range ids {
		f.accounts[id] = &dbm.Account{BaseModel: dbm.BaseModel{ID: id}}
	}
	return f
}

func (f *fakeAccounts) FindByID(ctx context.Context, id uuid.UUID) (*dbm.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if account := f.accounts[id]; account != nil {
		copied := *account
		return &copied, nil
	}
	return nil, nil
}
