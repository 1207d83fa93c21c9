package rest

import (
	"errors"
	"net/http"

	"lever/core"
	"lever/handler/render"

	"github.com/go-chi/chi"
)

// Handle handle rest api request
func Handle(
	marketStore core.IMarketStore,
	supplyStore core.ISupplyStore,
	borrowStore core.IBorrowStore,
	accountStore core.IAccountStore,
	rewardStore core.IRewardStore,
	flowStore core.IFlowStore,
	distributionStore core.IDistributionStore,
	accountService core.IAccountService,
) http.Handler {
	router := chi.NewRouter()

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		render.NotFoundRequest(w, errors.New("not found"))
	})

	router.Get("/markets/all", allMarketsHandler(marketStore, distributionStore))
	router.Get("/markets", marketHandler(marketStore, distributionStore))
	router.Get("/accounts", accountHandler(marketStore, supplyStore, borrowStore, accountStore, rewardStore, accountService))
	router.Get("/claims", claimsHandler(rewardStore))
	router.Get("/flows", flowsHandler(flowStore))

	return router
}
