package rest

import (
	"net/http"

	"lever/core"
	"lever/handler/param"
	"lever/handler/render"
)

func flowsHandler(flowStore core.IFlowStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var params struct {
			UserID string `json:"user_id"`
			FromID uint64 `json:"from_id"`
			Limit  int    `json:"limit"`
		}
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}
		if params.Limit <= 0 || params.Limit > 500 {
			params.Limit = 100
		}

		var (
			flows []*core.Flow
			err   error
		)
		if params.UserID != "" {
			flows, err = flowStore.ListByUser(ctx, params.UserID, params.Limit)
		} else {
			flows, err = flowStore.List(ctx, params.FromID, params.Limit)
		}
		if err != nil {
			render.BadRequest(w, err)
			return
		}

		render.JSON(w, flows)
	}
}
