package scheduler

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"sync"
	"time"

	"CoinRadar/internal/calculator"
	"CoinRadar/internal/collector"
	"CoinRadar/internal/metrics"
	"CoinRadar/internal/model"
	"CoinRadar/internal/notifier"
	"CoinRadar/internal/publisher"
	"CoinRadar/internal/recorder"
	"CoinRadar/internal/store"
	"CoinRadar/internal/strategy"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// ErrCycleRunning is returned when a refresh is requested while one is in progress.
var ErrCycleRunning = errors.New("refresh cycle already running")

const notifyRetries = 3

// Sender delivers a text report.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Options holds the engine and schedule parameters of a cycle.
type Options struct {
	RefreshCron     string
	ConfidenceFloor int
	TopK            int
	Workers         int
	KeepCycles      int
}

// Scheduler runs the collect, score, rank and publish cycle on a cron schedule.
type Scheduler struct {
	Cron      *cron.Cron
	Collector *collector.Collector
	Recorder  recorder.Recorder
	Store     *store.Store
	Publisher *publisher.Multi
	// Notifier is optional; nil disables the strong-signal report.
	Notifier Sender
	Metrics  *metrics.Recorder

	opts    Options
	log     zerolog.Logger
	ctx     context.Context
	running sync.Mutex
	now     func() time.Time
}

// NewScheduler creates a new Scheduler. pub may be nil.
func NewScheduler(ctx context.Context, col *collector.Collector, rec recorder.Recorder, st *store.Store,
	pub *publisher.Multi, sender Sender, m *metrics.Recorder, opts Options, log zerolog.Logger) *Scheduler {
	if pub == nil {
		pub = publisher.NewMulti()
	}
	s := &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Collector: col,
		Recorder:  rec,
		Store:     st,
		Publisher: pub,
		Notifier:  sender,
		Metrics:   m,
		opts:      opts,
		log:       log,
		ctx:       ctx,
		now:       time.Now,
	}
	pub.OnError = func(sink string, err error) {
		s.log.Error().Err(err).Str("sink", sink).Msg("publish failed")
		s.Metrics.RecordSinkError(sink)
	}
	return s
}

// Register adds the refresh job.
func (s *Scheduler) Register() error {
	if _, err := s.Cron.AddFunc(s.opts.RefreshCron, s.refreshTask); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.log.Info().Str("cron", s.opts.RefreshCron).Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for a running cycle.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.log.Info().Msg("scheduler stopped")
}

func (s *Scheduler) refreshTask() {
	if _, err := s.RunCycle(s.ctx); err != nil && !errors.Is(err, ErrCycleRunning) {
		s.log.Error().Err(err).Msg("refresh cycle failed")
	}
}

// RunCycle performs one refresh and stores the resulting board. Overlapping calls
// return ErrCycleRunning. A failed fetch falls back to the last archived batch.
func (s *Scheduler) RunCycle(ctx context.Context) (*store.Board, error) {
	if !s.running.TryLock() {
		return nil, ErrCycleRunning
	}
	defer s.running.Unlock()

	start := s.now()
	evt := &recorder.CycleEvent{
		CycleID:   uuid.NewString(),
		StartedAt: start,
		Source:    store.SourceLive,
	}
	log := s.log.With().Str("cycle_id", evt.CycleID).Logger()

	snaps, overview, err := s.collect(ctx, evt, log)
	if err != nil {
		evt.Result = "error"
		evt.Error = err.Error()
		evt.Duration = s.now().Sub(start)
		s.recordEvent(ctx, evt, log)
		s.Metrics.RecordCycle("error", evt.Duration)
		return nil, err
	}

	scored := strategy.ScoreBatch(snaps, s.opts.Workers)
	ranking := strategy.Rank(scored, s.opts.ConfidenceFloor, s.opts.TopK)

	board := &store.Board{
		CycleID:     evt.CycleID,
		GeneratedAt: s.now(),
		Source:      evt.Source,
		Scored:      scored,
		Ranking:     ranking,
		Overview:    overview,
	}
	s.Store.Replace(board)

	s.Metrics.RecordBoard(len(scored), len(ranking))
	for _, a := range scored {
		s.Metrics.RecordSignal(string(a.Signal.Type))
	}

	if s.Publisher.Len() > 0 {
		// Per-sink failures are reported through OnError.
		_ = s.Publisher.Publish(ctx, &publisher.Message{
			CycleID:     board.CycleID,
			GeneratedAt: board.GeneratedAt,
			Ranking:     ranking,
		})
	}
	if board.Source == store.SourceLive {
		s.notifyStrong(ctx, board, log)
	}

	evt.Result = "ok"
	evt.Assets = len(scored)
	evt.Ranked = len(ranking)
	evt.Duration = s.now().Sub(start)
	s.recordEvent(ctx, evt, log)
	s.Metrics.RecordCycle("ok", evt.Duration)

	log.Info().
		Str("source", board.Source).
		Int("assets", len(scored)).
		Int("ranked", len(ranking)).
		Dur("duration", evt.Duration).
		Msg("refresh cycle complete")
	return board, nil
}

// collect fetches a live batch and archives it, or loads the archive when the provider fails.
func (s *Scheduler) collect(ctx context.Context, evt *recorder.CycleEvent, log zerolog.Logger) ([]model.AssetSnapshot, *model.MarketOverview, error) {
	batch, err := s.Collector.Collect(ctx)
	if err == nil {
		if err := s.Recorder.RecordSnapshots(ctx, evt.CycleID, batch.Snapshots); err != nil {
			log.Error().Err(err).Msg("archive snapshots")
		} else if err := s.Recorder.Prune(ctx, s.opts.KeepCycles); err != nil {
			log.Warn().Err(err).Msg("prune archive")
		}
		return batch.Snapshots, batch.Overview, nil
	}

	log.Warn().Err(err).Msg("collect failed, falling back to archive")
	archivedID, snaps, aerr := s.Recorder.LatestSnapshots(ctx)
	if aerr != nil {
		return nil, nil, fmt.Errorf("collect: %w", errors.Join(err, aerr))
	}
	s.Metrics.RecordFallback()
	evt.Source = store.SourceArchive
	log.Info().Str("archived_cycle", archivedID).Int("assets", len(snaps)).Msg("serving archived snapshots")

	var overview *model.MarketOverview
	if prev, perr := s.Store.Board(); perr == nil {
		overview = prev.Overview
	}
	return snaps, overview, nil
}

func (s *Scheduler) notifyStrong(ctx context.Context, board *store.Board, log zerolog.Logger) {
	if s.Notifier == nil {
		return
	}
	strong := s.strongSignals(board)
	if len(strong) == 0 {
		return
	}
	if err := s.Notifier.SendWithRetry(ctx, notifier.FormatStrongSignals(strong, board.GeneratedAt), notifyRetries); err != nil {
		log.Error().Err(err).Msg("send strong signal report")
		s.Metrics.RecordSinkError("telegram")
	}
}

// strongSignals returns the board's strong buys, highest confidence first.
func (s *Scheduler) strongSignals(board *store.Board) model.RankedSelection {
	strong := strategy.Filter(board.Scored, strategy.FilterStrong)
	return strategy.Rank(strong, strategy.StrongConfidence, len(strong))
}

func (s *Scheduler) recordEvent(ctx context.Context, evt *recorder.CycleEvent, log zerolog.Logger) {
	if err := s.Recorder.RecordCycle(ctx, evt); err != nil {
		log.Error().Err(err).Msg("record cycle")
	}
}

const helpText = "Available commands:\n" +
	"/top - top ranked signals\n" +
	"/strong - strong buy signals\n" +
	"/coin &lt;symbol&gt; - indicator detail for one coin\n" +
	"/market - global market overview\n" +
	"/refresh - run a refresh now"

const notReadyText = "No data yet, the first refresh is still running."

// HandleCommand processes a chat command and returns the reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return helpText
	}
	name, _, _ := strings.Cut(strings.ToLower(fields[0]), "@")

	switch name {
	case "/top":
		board, err := s.Store.Board()
		if err != nil {
			return notReadyText
		}
		return notifier.FormatRanking(board.Ranking, s.opts.ConfidenceFloor, board.GeneratedAt)
	case "/strong":
		board, err := s.Store.Board()
		if err != nil {
			return notReadyText
		}
		return notifier.FormatStrongSignals(s.strongSignals(board), board.GeneratedAt)
	case "/coin":
		if len(fields) < 2 {
			return "Usage: /coin &lt;symbol&gt;"
		}
		asset, err := s.Store.Asset(fields[1])
		switch {
		case errors.Is(err, store.ErrNotFound):
			return fmt.Sprintf("Unknown coin %s.", html.EscapeString(strings.ToUpper(fields[1])))
		case err != nil:
			return notReadyText
		}
		return notifier.FormatCoinDetail(asset, calculator.Compute(&asset.Snapshot))
	case "/market":
		board, err := s.Store.Board()
		if err != nil {
			return notReadyText
		}
		if board.Overview == nil {
			return "Market overview unavailable."
		}
		return notifier.FormatMarket(board.Overview)
	case "/refresh":
		board, err := s.RunCycle(ctx)
		switch {
		case errors.Is(err, ErrCycleRunning):
			return "A refresh is already running."
		case err != nil:
			return "Refresh failed: " + html.EscapeString(err.Error())
		}
		return notifier.FormatRanking(board.Ranking, s.opts.ConfidenceFloor, board.GeneratedAt)
	default:
		return helpText
	}
}
