package recorder

import (
	"context"
	"errors"
	"time"

	"CoinRadar/internal/model"
)

// ErrNoArchive is returned when no snapshot batch has been archived yet.
var ErrNoArchive = errors.New("no archived snapshots")

// CycleEvent records one refresh cycle.
type CycleEvent struct {
	CycleID   string
	StartedAt time.Time
	Duration  time.Duration
	Source    string // "live" or "archive"
	Result    string // "ok" or "error"
	Assets    int
	Ranked    int
	Error     string
}

// Recorder archives market snapshots and cycle events. Signals are never stored;
// they are recomputed from snapshots.
type Recorder interface {
	RecordSnapshots(ctx context.Context, cycleID string, snaps []model.AssetSnapshot) error
	RecordCycle(ctx context.Context, evt *CycleEvent) error
	// LatestSnapshots returns the most recently archived batch, or ErrNoArchive.
	LatestSnapshots(ctx context.Context) (cycleID string, snaps []model.AssetSnapshot, err error)
	// Prune keeps the snapshots of the newest keepCycles cycles.
	Prune(ctx context.Context, keepCycles int) error
	Close() error
}
