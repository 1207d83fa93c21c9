package account

import (
	"context"
	"fmt"

	"lever/core"

	"github.com/bluele/gcache"
	"golang.org/x/sync/singleflight"
)

// Cache wraps the account store with a small read-through cache. Writes
// evict so a stale entry never outlives the row that produced it.
func Cache(store core.IAccountStore) core.IAccountStore {
	return &cacheAccountStore{
		IAccountStore: store,
		cache:         gcache.New(2048).LRU().Build(),
		sf:            &singleflight.Group{},
	}
}

type cacheAccountStore struct {
	core.IAccountStore
	cache gcache.Cache
	sf    *singleflight.Group
}

func (s *cacheAccountStore) Find(ctx context.Context, userID string) (*core.Account, error) {
	key := s.accountKey(userID)
	if v, err := s.cache.Get(key); err == nil {
		if account, ok := v.(*core.Account); ok {
			return account, nil
		}
	}

	v, err, _ := s.sf.Do(key, func() (interface{}, error) {
		account, err := s.IAccountStore.Find(ctx, userID)
		if err != nil {
			return nil, err
		}
		if account.ID > 0 {
			s.cache.Set(key, account)
		}
		return account, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*core.Account), nil
}

func (s *cacheAccountStore) Save(ctx context.Context, account *core.Account) error {
	if err := s.IAccountStore.Save(ctx, account); err != nil {
		return err
	}
	s.cache.Remove(s.accountKey(account.UserID))
	return nil
}

func (s *cacheAccountStore) Update(ctx context.Context, account *core.Account, version int64) error {
	if err := s.IAccountStore.Update(ctx, account, version); err != nil {
		return err
	}
	s.cache.Remove(s.accountKey(account.UserID))
	return nil
}

func (s *cacheAccountStore) accountKey(userID string) string {
	return fmt.Sprintf("account:id:%s", userID)
}
