package policy

import (
	"context"
	"time"

	"lever/core"

	"github.com/fox-one/pkg/logger"
	uuidutil "github.com/fox-one/pkg/uuid"
)

const (
	protocolPausedKey = "pause_protocol"
	actionPausedKey   = "pause_action_"
)

// SetProtocolPaused flips the global switch. The owner may pause and
// unpause; the guardian may only pause.
func (s *policyService) SetProtocolPaused(ctx context.Context, caller string, paused bool) error {
	if err := s.requirePauser(caller, paused); err != nil {
		return err
	}

	if err := s.property.Save(ctx, protocolPausedKey, pauseFlag(paused)); err != nil {
		return err
	}

	if paused {
		if err := s.distributionService.Pause(ctx, caller); err != nil {
			return err
		}
	} else {
		// re-base distribution indices before speed accrual resumes
		if err := s.distributionService.Unpause(ctx, caller, time.Now()); err != nil {
			return err
		}
	}

	return s.logPause(ctx, caller, "", "protocol", paused)
}

func (s *policyService) SetActionPaused(ctx context.Context, caller string, action core.PauseAction, paused bool) error {
	if err := s.requirePauser(caller, paused); err != nil {
		return err
	}

	if err := s.property.Save(ctx, actionPausedKey+string(action), pauseFlag(paused)); err != nil {
		return err
	}

	return s.logPause(ctx, caller, "", string(action), paused)
}

func (s *policyService) SetMarketActionPaused(ctx context.Context, caller, assetID string, action core.MarketAction, paused bool) error {
	if err := s.requirePauser(caller, paused); err != nil {
		return err
	}

	market, err := s.marketStore.Find(ctx, assetID)
	if err != nil {
		return err
	}
	if market.ID == 0 {
		return core.ErrMarketNotFound
	}

	switch action {
	case core.MarketActionMint:
		market.MintPaused = paused
	case core.MarketActionRedeem:
		market.RedeemPaused = paused
	case core.MarketActionBorrow:
		market.BorrowPaused = paused
	default:
		return core.ErrInvalidParameter
	}

	if err := s.marketStore.Update(ctx, market, market.Version); err != nil {
		return err
	}

	return s.logPause(ctx, caller, assetID, "market_action", paused)
}

func (s *policyService) ProtocolPaused(ctx context.Context) (bool, error) {
	v, err := s.property.Get(ctx, protocolPausedKey)
	if err != nil {
		return false, err
	}

	return v.Int() != 0, nil
}

func (s *policyService) ActionPaused(ctx context.Context, action core.PauseAction) (bool, error) {
	v, err := s.property.Get(ctx, actionPausedKey+string(action))
	if err != nil {
		return false, err
	}

	return v.Int() != 0, nil
}

// property values are typed strings; pause switches are stored as 0/1
func pauseFlag(paused bool) int {
	if paused {
		return 1
	}
	return 0
}

func (s *policyService) requirePauser(caller string, paused bool) error {
	if s.system.IsAdmin(caller) {
		return nil
	}
	// the guardian can engage a pause but never release one
	if paused && s.system.IsGuardian(caller) {
		return nil
	}

	return core.ErrOperationForbidden
}

func (s *policyService) logPause(ctx context.Context, caller, assetID, scope string, paused bool) error {
	action := core.ActionTypeUnpaused
	if paused {
		action = core.ActionTypePaused
	}

	extra := core.NewFlowExtra()
	extra.Put("scope", scope)
	extra.Put("paused", paused)
	if assetID != "" {
		extra.Put("asset_id", assetID)
	}

	if err := s.flowStore.Create(ctx, &core.Flow{
		TraceID: uuidutil.New(),
		UserID:  caller,
		AssetID: assetID,
		Action:  action,
		Data:    extra.Format(),
	}); err != nil {
		return err
	}

	logger.FromContext(ctx).WithField("scope", scope).WithField("paused", paused).Infoln("pause switch changed")
	return nil
}
