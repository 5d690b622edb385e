package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cultivategames/creditledger/internal/domain"
	"github.com/cultivategames/creditledger/internal/usecase"
)

// MockAccountRepository is an in-memory mock of AccountRepository. Any of
// the Func fields override the default map-backed behavior.
type MockAccountRepository struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]*domain.Account

	GetByIDFunc     func(ctx context.Context, playerID uuid.UUID) (*domain.Account, error)
	EnsureFunc      func(ctx context.Context, tx usecase.Transaction, playerID uuid.UUID, username string) error
	ApplyDeltaFunc  func(ctx context.Context, tx usecase.Transaction, playerID uuid.UUID, delta int64) (*domain.Account, error)
	SetBalanceFunc  func(ctx context.Context, tx usecase.Transaction, playerID uuid.UUID, balance int64) (*domain.Account, int64, error)
	AddRedeemedFunc func(ctx context.Context, tx usecase.Transaction, playerID uuid.UUID, amount int64) error
}

func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{
		accounts: make(map[uuid.UUID]*domain.Account),
	}
}

// Seed installs an account directly, bypassing the lazy-creation path.
func (m *MockAccountRepository) Seed(account *domain.Account) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *account
	m.accounts[account.PlayerID] = &cp
}

func (m *MockAccountRepository) GetByID(ctx context.Context, playerID uuid.UUID) (*domain.Account, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, playerID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if acc, ok := m.accounts[playerID]; ok {
		cp := *acc
		return &cp, nil
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) GetByUsername(ctx context.Context, username string) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, acc := range m.accounts {
		if acc.Username == username {
			cp := *acc
			return &cp, nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) Ensure(ctx context.Context, tx usecase.Transaction, playerID uuid.UUID, username string) error {
	if m.EnsureFunc != nil {
		return m.EnsureFunc(ctx, tx, playerID, username)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[playerID]; !ok {
		m.accounts[playerID] = domain.NewAccount(playerID, username, time.Now().UTC())
	}
	return nil
}

func (m *MockAccountRepository) ApplyDelta(ctx context.Context, tx usecase.Transaction, playerID uuid.UUID, delta int64) (*domain.Account, error) {
	if m.ApplyDeltaFunc != nil {
		return m.ApplyDeltaFunc(ctx, tx, playerID, delta)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.accounts[playerID]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	if acc.Balance+delta < 0 {
		return nil, domain.ErrInsufficientBalance
	}
	acc.Balance += delta
	acc.Version++
	acc.UpdatedAt = time.Now().UTC()
	cp := *acc
	return &cp, nil
}

func (m *MockAccountRepository) SetBalance(ctx context.Context, tx usecase.Transaction, playerID uuid.UUID, balance int64) (*domain.Account, int64, error) {
	if m.SetBalanceFunc != nil {
		return m.SetBalanceFunc(ctx, tx, playerID, balance)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.accounts[playerID]
	if !ok {
		return nil, 0, domain.ErrAccountNotFound
	}
	old := acc.Balance
	acc.Balance = balance
	acc.Version++
	cp := *acc
	return &cp, old, nil
}

func (m *MockAccountRepository) AddRedeemed(ctx context.Context, tx usecase.Transaction, playerID uuid.UUID, amount int64) error {
	if m.AddRedeemedFunc != nil {
		return m.AddRedeemedFunc(ctx, tx, playerID, amount)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.accounts[playerID]
	if !ok {
		return domain.ErrAccountNotFound
	}
	acc.Redeemed += amount
	return nil
}

func (m *MockAccountRepository) SetUsername(ctx context.Context, playerID uuid.UUID, username string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.accounts[playerID]
	if !ok {
		return domain.ErrAccountNotFound
	}
	acc.Username = username
	return nil
}

func (m *MockAccountRepository) Top(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := make([]*domain.Account, 0, len(m.accounts))
	for _, acc := range m.accounts {
		cp := *acc
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Balance > all[j].Balance })
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

// MockTransactionLogRepository is an in-memory mock of TransactionLogRepository.
type MockTransactionLogRepository struct {
	mu      sync.Mutex
	records []*domain.TransactionRecord

	CreateFunc func(ctx context.Context, tx usecase.Transaction, record *domain.TransactionRecord) error
}

func NewMockTransactionLogRepository() *MockTransactionLogRepository {
	return &MockTransactionLogRepository{}
}

func (m *MockTransactionLogRepository) Create(ctx context.Context, tx usecase.Transaction, record *domain.TransactionRecord) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, record)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *record
	m.records = append(m.records, &cp)
	return nil
}

func (m *MockTransactionLogRepository) ListByPlayer(ctx context.Context, playerID uuid.UUID, limit, offset int) ([]*domain.TransactionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.TransactionRecord
	for _, r := range m.records {
		if r.PlayerID == playerID {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

// Records returns a copy of everything written so far.
func (m *MockTransactionLogRepository) Records() []*domain.TransactionRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.TransactionRecord, len(m.records))
	copy(out, m.records)
	return out
}

// MockTransaction is a no-op usecase.Transaction.
type MockTransaction struct {
	Committed  bool
	RolledBack bool
}

func (t *MockTransaction) Commit(ctx context.Context) error {
	t.Committed = true
	return nil
}

func (t *MockTransaction) Rollback(ctx context.Context) error {
	t.RolledBack = true
	return nil
}

// MockTransactionManager is a mock of TransactionManager.
type MockTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	return &MockTransaction{}, nil
}

// MockIDGenerator is a mock of IDGenerator producing sequential IDs.
type MockIDGenerator struct {
	mu           sync.Mutex
	counter      int
	GenerateFunc func() string
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return fmt.Sprintf("id-%06d", m.counter)
}

// MockRetrier runs the operation once without retrying.
type MockRetrier struct {
	RetryFunc func(ctx context.Context, operation func() error) error
}

func NewMockRetrier() *MockRetrier {
	return &MockRetrier{}
}

func (m *MockRetrier) Retry(ctx context.Context, operation func() error) error {
	if m.RetryFunc != nil {
		return m.RetryFunc(ctx, operation)
	}
	return operation()
}

// MockExecutor runs tasks inline on the calling goroutine.
type MockExecutor struct {
	DoFunc func(ctx context.Context, key string, task func(ctx context.Context) error) error
}

func NewMockExecutor() *MockExecutor {
	return &MockExecutor{}
}

func (m *MockExecutor) Do(ctx context.Context, key string, task func(ctx context.Context) error) error {
	if m.DoFunc != nil {
		return m.DoFunc(ctx, key, task)
	}
	return task(ctx)
}

// MockBalanceCache is an in-memory mock of BalanceCache.
type MockBalanceCache struct {
	mu       sync.Mutex
	balances map[uuid.UUID]int64

	GetFunc         func(ctx context.Context, playerID uuid.UUID) (int64, bool, error)
	SetFunc         func(ctx context.Context, playerID uuid.UUID, balance int64) error
	SetIfAbsentFunc func(ctx context.Context, playerID uuid.UUID, balance int64) error
	InvalidateFunc  func(ctx context.Context, playerID uuid.UUID) error
}

func NewMockBalanceCache() *MockBalanceCache {
	return &MockBalanceCache{balances: make(map[uuid.UUID]int64)}
}

func (m *MockBalanceCache) Get(ctx context.Context, playerID uuid.UUID) (int64, bool, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, playerID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	balance, ok := m.balances[playerID]
	return balance, ok, nil
}

func (m *MockBalanceCache) Set(ctx context.Context, playerID uuid.UUID, balance int64) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, playerID, balance)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[playerID] = balance
	return nil
}

func (m *MockBalanceCache) SetIfAbsent(ctx context.Context, playerID uuid.UUID, balance int64) error {
	if m.SetIfAbsentFunc != nil {
		return m.SetIfAbsentFunc(ctx, playerID, balance)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.balances[playerID]; !ok {
		m.balances[playerID] = balance
	}
	return nil
}

func (m *MockBalanceCache) Invalidate(ctx context.Context, playerID uuid.UUID) error {
	if m.InvalidateFunc != nil {
		return m.InvalidateFunc(ctx, playerID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.balances, playerID)
	return nil
}

// MockProgressionHook records grants and fails on demand.
type MockProgressionHook struct {
	mu     sync.Mutex
	grants []Grant

	GrantProgressFunc func(ctx context.Context, playerID uuid.UUID, skill domain.Skill, levels int64) error
}

// Grant is one recorded call to GrantProgress.
type Grant struct {
	PlayerID uuid.UUID
	Skill    domain.Skill
	Levels   int64
}

func NewMockProgressionHook() *MockProgressionHook {
	return &MockProgressionHook{}
}

func (m *MockProgressionHook) GrantProgress(ctx context.Context, playerID uuid.UUID, skill domain.Skill, levels int64) error {
	if m.GrantProgressFunc != nil {
		return m.GrantProgressFunc(ctx, playerID, skill, levels)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.grants = append(m.grants, Grant{PlayerID: playerID, Skill: skill, Levels: levels})
	return nil
}

// Grants returns a copy of the recorded grants.
func (m *MockProgressionHook) Grants() []Grant {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Grant, len(m.grants))
	copy(out, m.grants)
	return out
}

// MockLedgerRepository is a mock of LedgerRepository.
type MockLedgerRepository struct {
	CheckConsistencyFunc func(ctx context.Context) ([]domain.ConsistencyViolation, error)
}

func NewMockLedgerRepository() *MockLedgerRepository {
	return &MockLedgerRepository{}
}

func (m *MockLedgerRepository) CheckConsistency(ctx context.Context) ([]domain.ConsistencyViolation, error) {
	if m.CheckConsistencyFunc != nil {
		return m.CheckConsistencyFunc(ctx)
	}
	return nil, nil
}
