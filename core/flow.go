package core

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx/types"
)

// ActionType state transition kind recorded in the flow log
type ActionType int

const (
	// ActionTypeMarketAdded market added
	ActionTypeMarketAdded ActionType = iota + 1
	// ActionTypeParameterChanged risk parameter changed
	ActionTypeParameterChanged
	// ActionTypePaused pause switch engaged
	ActionTypePaused
	// ActionTypeUnpaused pause switch released
	ActionTypeUnpaused
	// ActionTypeMarketEntered membership entered
	ActionTypeMarketEntered
	// ActionTypeMarketExited membership exited
	ActionTypeMarketExited
	// ActionTypeEModeChanged account emode switched
	ActionTypeEModeChanged
	// ActionTypeSpeedChanged distribution speed changed
	ActionTypeSpeedChanged
	// ActionTypeLiquidation liquidation executed
	ActionTypeLiquidation
	// ActionTypeRewardClaimed reward claimed
	ActionTypeRewardClaimed
)

// FlowExtraData old/new values of a state transition
type FlowExtraData map[string]interface{}

// NewFlowExtra new flow extra instance
func NewFlowExtra() FlowExtraData {
	return make(FlowExtraData)
}

// Put put data
func (d FlowExtraData) Put(key string, value interface{}) {
	d[key] = value
}

// Format format as json bytes
func (d FlowExtraData) Format() []byte {
	bs, err := json.Marshal(d)
	if err != nil {
		return []byte("{}")
	}
	return bs
}

// Flow structured event carrying enough to reconstruct state from history
type Flow struct {
	ID        uint64         `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	TraceID   string         `sql:"size:36;unique_index:flow_trace_idx" json:"trace_id"`
	UserID    string         `sql:"size:36;index:flow_user_idx" json:"user_id"`
	AssetID   string         `sql:"size:36" json:"asset_id"`
	Action    ActionType     `json:"action"`
	Data      types.JSONText `sql:"type:varchar(2048)" json:"data"`
	CreatedAt time.Time      `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

// UnmarshalData unmarshal extra data
func (f *Flow) UnmarshalData(v interface{}) error {
	return json.Unmarshal(f.Data, v)
}

// IFlowStore flow store interface
type IFlowStore interface {
	Create(ctx context.Context, flow *Flow) error
	List(ctx context.Context, fromID uint64, limit int) ([]*Flow, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]*Flow, error)
}
