package rest

import (
	"net/http"

	"lever/core"
	"lever/handler/param"
	"lever/handler/render"
	"lever/handler/views"
)

func accountHandler(
	marketStore core.IMarketStore,
	supplyStore core.ISupplyStore,
	borrowStore core.IBorrowStore,
	accountStore core.IAccountStore,
	rewardStore core.IRewardStore,
	accountService core.IAccountService,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var params struct {
			UserID string `json:"user_id"`
		}
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		account, err := accountStore.Find(ctx, params.UserID)
		if err != nil {
			render.BadRequest(w, err)
			return
		}

		equity, err := accountService.CalcAccountEquity(ctx, params.UserID, core.EquityBorrowLimit, nil)
		if err != nil {
			render.Err(w, err)
			return
		}

		memberships, err := accountStore.Memberships(ctx, params.UserID)
		if err != nil {
			render.BadRequest(w, err)
			return
		}

		assetIDs := make([]string, 0, len(memberships))
		for _, m := range memberships {
			assetIDs = append(assetIDs, m.AssetID)
		}

		supplies, err := supplyStore.FindByUser(ctx, params.UserID)
		if err != nil {
			render.BadRequest(w, err)
			return
		}

		borrows, err := borrowStore.FindByUser(ctx, params.UserID)
		if err != nil {
			render.BadRequest(w, err)
			return
		}

		reward, err := rewardStore.Find(ctx, params.UserID)
		if err != nil {
			render.BadRequest(w, err)
			return
		}

		render.JSON(w, &views.Account{
			UserID:        params.UserID,
			EModeID:       account.EModeID,
			Collateral:    equity.Collateral,
			Shortfall:     equity.Shortfall,
			SumCollateral: equity.SumCollateral,
			SumBorrow:     equity.SumBorrow,
			Memberships:   assetIDs,
			Supplies:      supplies,
			Borrows:       borrows,
			Reward:        reward.Accrued,
		})
	}
}
