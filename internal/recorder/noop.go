package recorder

import (
	"context"

	"CoinRadar/internal/model"
)

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordSnapshots(context.Context, string, []model.AssetSnapshot) error {
	return nil
}
func (n *NoopRecorder) RecordCycle(context.Context, *CycleEvent) error { return nil }
func (n *NoopRecorder) LatestSnapshots(context.Context) (string, []model.AssetSnapshot, error) {
	return "", nil, ErrNoArchive
}
func (n *NoopRecorder) Prune(context.Context, int) error { return nil }
func (n *NoopRecorder) Close() error                     { return nil }
