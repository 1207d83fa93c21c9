package lever

import (
	"errors"
	"time"
)

var genesis int64

// SetupGenesis setup genesis timestamp
func SetupGenesis(t int64) {
	genesis = t
}

// GetBlockByTime get logical block by time
func GetBlockByTime(t time.Time) (int64, error) {
	seconds := t.UTC().Unix() - genesis
	if seconds <= 0 {
		return 0, errors.New("invalid blocks")
	}

	return seconds / SecondsPerBlock, nil
}
