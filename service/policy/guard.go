package policy

import (
	"fmt"
	"sync"

	"lever/core"
)

// opGuard tags in-flight operations so a market calling back into the
// dispatcher mid-operation is rejected instead of corrupting state.
type opGuard struct {
	mux      sync.Mutex
	inflight map[string]bool
}

func newOpGuard() *opGuard {
	return &opGuard{inflight: make(map[string]bool)}
}

func (g *opGuard) enter(op, userID, assetID string) error {
	key := fmt.Sprintf("%s:%s:%s", op, userID, assetID)

	g.mux.Lock()
	defer g.mux.Unlock()

	if g.inflight[key] {
		return core.ErrOperationInProgress
	}

	g.inflight[key] = true
	return nil
}

func (g *opGuard) exit(op, userID, assetID string) {
	key := fmt.Sprintf("%s:%s:%s", op, userID, assetID)

	g.mux.Lock()
	delete(g.inflight, key)
	g.mux.Unlock()
}
