package flow

import (
	"context"

	"lever/core"

	"github.com/fox-one/pkg/store/db"
)

type flowStore struct {
	db *db.DB
}

// New new flow store
func New(db *db.DB) core.IFlowStore {
	return &flowStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.Flow{})
		if err := tx.AutoMigrate(core.Flow{}).Error; err != nil {
			return err
		}

		if err := tx.AddUniqueIndex("idx_flows_trace_id", "trace_id").Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *flowStore) Create(ctx context.Context, flow *core.Flow) error {
	return s.db.Update().Where("trace_id = ?", flow.TraceID).FirstOrCreate(flow).Error
}

func (s *flowStore) List(ctx context.Context, fromID uint64, limit int) ([]*core.Flow, error) {
	var flows []*core.Flow
	if err := s.db.View().Where("id > ?", fromID).Limit(limit).Find(&flows).Error; err != nil {
		return nil, err
	}
	return flows, nil
}

func (s *flowStore) ListByUser(ctx context.Context, userID string, limit int) ([]*core.Flow, error) {
	var flows []*core.Flow
	if err := s.db.View().Where("user_id = ?", userID).Order("id desc").Limit(limit).Find(&flows).Error; err != nil {
		return nil, err
	}
	return flows, nil
}
