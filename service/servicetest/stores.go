// Package servicetest provides in-memory stores for exercising services
// without a database.
package servicetest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"lever/core"

	"github.com/fox-one/pkg/property"
	"github.com/shopspring/decimal"
)

// MarketStore in-memory market store
type MarketStore struct {
	mu      sync.Mutex
	markets map[string]*core.Market
	nextID  uint64
}

func NewMarketStore() *MarketStore {
	return &MarketStore{markets: map[string]*core.Market{}}
}

func (s *MarketStore) Create(ctx context.Context, market *core.Market) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.markets[market.AssetID]; ok {
		return nil
	}

	s.nextID++
	market.ID = s.nextID
	s.markets[market.AssetID] = market
	return nil
}

func (s *MarketStore) Find(ctx context.Context, assetID string) (*core.Market, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if market, ok := s.markets[assetID]; ok {
		return market, nil
	}
	return &core.Market{}, nil
}

func (s *MarketStore) FindBySymbol(ctx context.Context, symbol string) (*core.Market, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, market := range s.markets {
		if market.Symbol == symbol {
			return market, nil
		}
	}
	return &core.Market{}, nil
}

func (s *MarketStore) FindByCToken(ctx context.Context, ctokenAssetID string) (*core.Market, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, market := range s.markets {
		if market.CTokenAssetID == ctokenAssetID {
			return market, nil
		}
	}
	return &core.Market{}, nil
}

func (s *MarketStore) All(ctx context.Context) ([]*core.Market, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	markets := make([]*core.Market, 0, len(s.markets))
	for _, market := range s.markets {
		markets = append(markets, market)
	}
	return markets, nil
}

func (s *MarketStore) AllAsMap(ctx context.Context) (map[string]*core.Market, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	maps := make(map[string]*core.Market, len(s.markets))
	for assetID, market := range s.markets {
		maps[assetID] = market
	}
	return maps, nil
}

func (s *MarketStore) Update(ctx context.Context, market *core.Market, version int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	market.Version = version + 1
	s.markets[market.AssetID] = market
	return nil
}

// AccountStore in-memory account & membership store
type AccountStore struct {
	mu          sync.Mutex
	accounts    map[string]*core.Account
	memberships map[string]*core.Membership
	nextID      uint64
}

func NewAccountStore() *AccountStore {
	return &AccountStore{
		accounts:    map[string]*core.Account{},
		memberships: map[string]*core.Membership{},
	}
}

func memberKey(userID, assetID string) string {
	return userID + ":" + assetID
}

func (s *AccountStore) Save(ctx context.Context, account *core.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[account.UserID]; ok {
		return nil
	}

	s.nextID++
	account.ID = s.nextID
	s.accounts[account.UserID] = account
	return nil
}

func (s *AccountStore) Find(ctx context.Context, userID string) (*core.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if account, ok := s.accounts[userID]; ok {
		return account, nil
	}
	return &core.Account{}, nil
}

func (s *AccountStore) Update(ctx context.Context, account *core.Account, version int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	account.Version = version + 1
	s.accounts[account.UserID] = account
	return nil
}

func (s *AccountStore) EnterMarket(ctx context.Context, userID, assetID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := memberKey(userID, assetID)
	if _, ok := s.memberships[key]; ok {
		return nil
	}

	s.nextID++
	s.memberships[key] = &core.Membership{
		ID:      s.nextID,
		UserID:  userID,
		AssetID: assetID,
	}
	return nil
}

func (s *AccountStore) ExitMarket(ctx context.Context, userID, assetID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.memberships, memberKey(userID, assetID))
	return nil
}

func (s *AccountStore) FindMembership(ctx context.Context, userID, assetID string) (*core.Membership, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if membership, ok := s.memberships[memberKey(userID, assetID)]; ok {
		return membership, nil
	}
	return &core.Membership{}, nil
}

func (s *AccountStore) Memberships(ctx context.Context, userID string) ([]*core.Membership, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var memberships []*core.Membership
	for _, membership := range s.memberships {
		if membership.UserID == userID {
			memberships = append(memberships, membership)
		}
	}
	return memberships, nil
}

// SupplyStore in-memory supply store
type SupplyStore struct {
	mu       sync.Mutex
	supplies map[string]*core.Supply
	nextID   uint64
}

func NewSupplyStore() *SupplyStore {
	return &SupplyStore{supplies: map[string]*core.Supply{}}
}

func (s *SupplyStore) Save(ctx context.Context, supply *core.Supply) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := memberKey(supply.UserID, supply.CTokenAssetID)
	if _, ok := s.supplies[key]; ok {
		return nil
	}

	s.nextID++
	supply.ID = s.nextID
	s.supplies[key] = supply
	return nil
}

func (s *SupplyStore) Find(ctx context.Context, userID, ctokenAssetID string) (*core.Supply, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if supply, ok := s.supplies[memberKey(userID, ctokenAssetID)]; ok {
		return supply, nil
	}
	return &core.Supply{}, nil
}

func (s *SupplyStore) FindByUser(ctx context.Context, userID string) ([]*core.Supply, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var supplies []*core.Supply
	for _, supply := range s.supplies {
		if supply.UserID == userID {
			supplies = append(supplies, supply)
		}
	}
	return supplies, nil
}

func (s *SupplyStore) FindByCToken(ctx context.Context, ctokenAssetID string) ([]*core.Supply, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var supplies []*core.Supply
	for _, supply := range s.supplies {
		if supply.CTokenAssetID == ctokenAssetID {
			supplies = append(supplies, supply)
		}
	}
	return supplies, nil
}

func (s *SupplyStore) Update(ctx context.Context, supply *core.Supply, version int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	supply.Version = version + 1
	s.supplies[memberKey(supply.UserID, supply.CTokenAssetID)] = supply
	return nil
}

// BorrowStore in-memory borrow store
type BorrowStore struct {
	mu      sync.Mutex
	borrows map[string]*core.Borrow
	nextID  uint64
}

func NewBorrowStore() *BorrowStore {
	return &BorrowStore{borrows: map[string]*core.Borrow{}}
}

func (s *BorrowStore) Create(ctx context.Context, borrow *core.Borrow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := memberKey(borrow.UserID, borrow.AssetID)
	if _, ok := s.borrows[key]; ok {
		return nil
	}

	s.nextID++
	borrow.ID = s.nextID
	s.borrows[key] = borrow
	return nil
}

func (s *BorrowStore) Find(ctx context.Context, userID, assetID string) (*core.Borrow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if borrow, ok := s.borrows[memberKey(userID, assetID)]; ok {
		return borrow, nil
	}
	return &core.Borrow{}, nil
}

func (s *BorrowStore) FindByUser(ctx context.Context, userID string) ([]*core.Borrow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var borrows []*core.Borrow
	for _, borrow := range s.borrows {
		if borrow.UserID == userID {
			borrows = append(borrows, borrow)
		}
	}
	return borrows, nil
}

func (s *BorrowStore) FindByAssetID(ctx context.Context, assetID string) ([]*core.Borrow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var borrows []*core.Borrow
	for _, borrow := range s.borrows {
		if borrow.AssetID == assetID {
			borrows = append(borrows, borrow)
		}
	}
	return borrows, nil
}

func (s *BorrowStore) Update(ctx context.Context, borrow *core.Borrow, version int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	borrow.Version = version + 1
	s.borrows[memberKey(borrow.UserID, borrow.AssetID)] = borrow
	return nil
}

func (s *BorrowStore) Users(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := map[string]bool{}
	var users []string
	for _, borrow := range s.borrows {
		if !seen[borrow.UserID] {
			seen[borrow.UserID] = true
			users = append(users, borrow.UserID)
		}
	}
	return users, nil
}

// EModeStore in-memory emode category store
type EModeStore struct {
	mu         sync.Mutex
	categories map[int64]*core.EModeCategory
}

func NewEModeStore() *EModeStore {
	return &EModeStore{categories: map[int64]*core.EModeCategory{}}
}

func (s *EModeStore) Save(ctx context.Context, category *core.EModeCategory) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.categories[category.ID] = category
	return nil
}

func (s *EModeStore) Find(ctx context.Context, id int64) (*core.EModeCategory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if category, ok := s.categories[id]; ok {
		return category, nil
	}
	return &core.EModeCategory{}, nil
}

func (s *EModeStore) All(ctx context.Context) ([]*core.EModeCategory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var categories []*core.EModeCategory
	for _, category := range s.categories {
		categories = append(categories, category)
	}
	return categories, nil
}

// DistributionStore in-memory distribution state & snapshot store
type DistributionStore struct {
	mu        sync.Mutex
	states    map[string]*core.DistributionState
	snapshots map[string]*core.DistributionSnapshot
	nextID    uint64
}

func NewDistributionStore() *DistributionStore {
	return &DistributionStore{
		states:    map[string]*core.DistributionState{},
		snapshots: map[string]*core.DistributionSnapshot{},
	}
}

func stateKey(assetID string, side core.DistributionSide) string {
	return fmt.Sprintf("%s:%d", assetID, side)
}

func snapshotKey(userID, assetID string, side core.DistributionSide) string {
	return fmt.Sprintf("%s:%s:%d", userID, assetID, side)
}

func (s *DistributionStore) SaveState(ctx context.Context, state *core.DistributionState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := stateKey(state.AssetID, state.Side)
	if _, ok := s.states[key]; ok {
		return nil
	}

	s.nextID++
	state.ID = s.nextID
	s.states[key] = state
	return nil
}

func (s *DistributionStore) FindState(ctx context.Context, assetID string, side core.DistributionSide) (*core.DistributionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if state, ok := s.states[stateKey(assetID, side)]; ok {
		return state, nil
	}
	return &core.DistributionState{}, nil
}

func (s *DistributionStore) AllStates(ctx context.Context) ([]*core.DistributionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var states []*core.DistributionState
	for _, state := range s.states {
		states = append(states, state)
	}
	return states, nil
}

func (s *DistributionStore) UpdateState(ctx context.Context, state *core.DistributionState, version int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state.Version = version + 1
	s.states[stateKey(state.AssetID, state.Side)] = state
	return nil
}

func (s *DistributionStore) SaveSnapshot(ctx context.Context, snapshot *core.DistributionSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := snapshotKey(snapshot.UserID, snapshot.AssetID, snapshot.Side)
	if _, ok := s.snapshots[key]; ok {
		return nil
	}

	s.nextID++
	snapshot.ID = s.nextID
	s.snapshots[key] = snapshot
	return nil
}

func (s *DistributionStore) FindSnapshot(ctx context.Context, userID, assetID string, side core.DistributionSide) (*core.DistributionSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if snapshot, ok := s.snapshots[snapshotKey(userID, assetID, side)]; ok {
		return snapshot, nil
	}
	return &core.DistributionSnapshot{}, nil
}

func (s *DistributionStore) UpdateSnapshot(ctx context.Context, snapshot *core.DistributionSnapshot, version int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot.Version = version + 1
	s.snapshots[snapshotKey(snapshot.UserID, snapshot.AssetID, snapshot.Side)] = snapshot
	return nil
}

// RewardStore in-memory reward ledger
type RewardStore struct {
	mu      sync.Mutex
	rewards map[string]*core.Reward
	claims  []*core.Claim
	nextID  uint64
}

func NewRewardStore() *RewardStore {
	return &RewardStore{rewards: map[string]*core.Reward{}}
}

func (s *RewardStore) Find(ctx context.Context, userID string) (*core.Reward, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if reward, ok := s.rewards[userID]; ok {
		return reward, nil
	}
	return &core.Reward{}, nil
}

func (s *RewardStore) Add(ctx context.Context, userID string, amount decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	reward, ok := s.rewards[userID]
	if !ok {
		s.nextID++
		reward = &core.Reward{ID: s.nextID, UserID: userID}
		s.rewards[userID] = reward
	}
	reward.Accrued = reward.Accrued.Add(amount)
	return nil
}

func (s *RewardStore) Settle(ctx context.Context, userID string) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reward, ok := s.rewards[userID]
	if !ok || !reward.Accrued.IsPositive() {
		return decimal.Zero, nil
	}

	settled := reward.Accrued
	reward.Accrued = decimal.Zero
	return settled, nil
}

func (s *RewardStore) CreateClaim(ctx context.Context, claim *core.Claim) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	claim.ID = s.nextID
	s.claims = append(s.claims, claim)
	return nil
}

func (s *RewardStore) Claims(ctx context.Context, userID string, limit int) ([]*core.Claim, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var claims []*core.Claim
	for _, claim := range s.claims {
		if claim.UserID == userID {
			claims = append(claims, claim)
		}
	}
	return claims, nil
}

// VaultStore in-memory vault store
type VaultStore struct {
	mu        sync.Mutex
	vaults    map[string]*core.Vault
	transfers []*core.Transfer
	nextID    uint64
}

func NewVaultStore() *VaultStore {
	return &VaultStore{vaults: map[string]*core.Vault{}}
}

func (s *VaultStore) Find(ctx context.Context, assetID string) (*core.Vault, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if vault, ok := s.vaults[assetID]; ok {
		return vault, nil
	}
	return &core.Vault{}, nil
}

func (s *VaultStore) Credit(ctx context.Context, assetID string, amount decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	vault, ok := s.vaults[assetID]
	if !ok {
		s.nextID++
		vault = &core.Vault{ID: s.nextID, AssetID: assetID}
		s.vaults[assetID] = vault
	}
	vault.Balance = vault.Balance.Add(amount)
	return nil
}

func (s *VaultStore) Debit(ctx context.Context, vault *core.Vault, amount decimal.Decimal, version int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	balance := vault.Balance.Sub(amount)
	if balance.IsNegative() {
		return core.ErrInsufficientTreasury
	}

	vault.Balance = balance
	vault.Version = version + 1
	s.vaults[vault.AssetID] = vault
	return nil
}

func (s *VaultStore) CreateTransfer(ctx context.Context, transfer *core.Transfer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	transfer.ID = s.nextID
	s.transfers = append(s.transfers, transfer)
	return nil
}

func (s *VaultStore) Transfers(ctx context.Context, userID string, limit int) ([]*core.Transfer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var transfers []*core.Transfer
	for _, transfer := range s.transfers {
		if transfer.UserID == userID {
			transfers = append(transfers, transfer)
		}
	}
	return transfers, nil
}

// FlowStore in-memory flow log
type FlowStore struct {
	mu     sync.Mutex
	flows  []*core.Flow
	nextID uint64
}

func NewFlowStore() *FlowStore {
	return &FlowStore{}
}

func (s *FlowStore) Create(ctx context.Context, flow *core.Flow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	flow.ID = s.nextID
	s.flows = append(s.flows, flow)
	return nil
}

func (s *FlowStore) List(ctx context.Context, fromID uint64, limit int) ([]*core.Flow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var flows []*core.Flow
	for _, flow := range s.flows {
		if flow.ID > fromID {
			flows = append(flows, flow)
		}
	}
	return flows, nil
}

func (s *FlowStore) ListByUser(ctx context.Context, userID string, limit int) ([]*core.Flow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var flows []*core.Flow
	for _, flow := range s.flows {
		if flow.UserID == userID {
			flows = append(flows, flow)
		}
	}
	return flows, nil
}

// PropertyStore in-memory property kv
type PropertyStore struct {
	mu     sync.Mutex
	values map[string]property.Value
}

func NewPropertyStore() *PropertyStore {
	return &PropertyStore{values: map[string]property.Value{}}
}

func (s *PropertyStore) Get(ctx context.Context, key string) (property.Value, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.values[key], nil
}

func (s *PropertyStore) Save(ctx context.Context, key string, value interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = property.Parse(value)
	return nil
}

func (s *PropertyStore) Expire(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.values, key)
	return nil
}

func (s *PropertyStore) List(ctx context.Context) (map[string]property.Value, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	values := make(map[string]property.Value, len(s.values))
	for key, value := range s.values {
		values[key] = value
	}
	return values, nil
}

// PriceStore in-memory oracle quote store
type PriceStore struct {
	mu     sync.Mutex
	prices map[string]*core.Price
	nextID uint64
}

func NewPriceStore() *PriceStore {
	return &PriceStore{prices: map[string]*core.Price{}}
}

func (s *PriceStore) Save(ctx context.Context, assetID string, price decimal.Decimal, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if row, ok := s.prices[assetID]; ok {
		row.Price = price
		row.UpdatedAt = at
		return nil
	}

	s.nextID++
	s.prices[assetID] = &core.Price{ID: s.nextID, AssetID: assetID, Price: price, UpdatedAt: at}
	return nil
}

func (s *PriceStore) Find(ctx context.Context, assetID string) (*core.Price, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if price, ok := s.prices[assetID]; ok {
		return price, nil
	}
	return &core.Price{}, nil
}
