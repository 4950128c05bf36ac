package server

import (
	"net/http"
	"sync"
	"time"

	"CoinRadar/internal/calculator"
	"CoinRadar/internal/model"
	"CoinRadar/internal/notifier"
	"CoinRadar/internal/store"
	"CoinRadar/internal/strategy"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Handler serves the board held by a store.
type Handler struct {
	store *store.Store
	floor int
	topK  int
	log   zerolog.Logger

	quit      chan struct{}
	closeOnce sync.Once
}

// NewHandler creates a Handler. floor and topK are the ranking defaults.
func NewHandler(st *store.Store, floor, topK int, log zerolog.Logger) *Handler {
	return &Handler{
		store: st,
		floor: floor,
		topK:  topK,
		log:   log,
		quit:  make(chan struct{}),
	}
}

// RegisterRoutes implements Routes.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.health)
	e.GET("/ws", h.stream)

	api := e.Group("/api")
	api.GET("/signals/top", h.topSignals)
	api.GET("/coins", h.listCoins)
	api.GET("/coins/:symbol", h.getCoin)
	api.GET("/market", h.market)
}

// Close ends every open websocket stream.
func (h *Handler) Close() {
	h.closeOnce.Do(func() { close(h.quit) })
}

type topRequest struct {
	Floor int `query:"floor" validate:"min=0,max=100"`
	K     int `query:"k" validate:"min=0,max=250"`
}

type coinsRequest struct {
	Filter string `query:"filter" default:"all" validate:"oneof=all strong positive negative"`
	Query  string `query:"q" validate:"max=64"`
}

type coinRequest struct {
	Symbol string `param:"symbol" validate:"required,max=64"`
}

// coinRow is the list view of a scored asset, without the raw series.
type coinRow struct {
	ID             string       `json:"id"`
	Name           string       `json:"name"`
	Symbol         string       `json:"symbol"`
	Image          string       `json:"image,omitempty"`
	CurrentPrice   float64      `json:"current_price"`
	PriceChange24h float64      `json:"price_change_24h"`
	MarketCap      float64      `json:"market_cap"`
	TotalVolume    float64      `json:"total_volume"`
	Strong         bool         `json:"strong"`
	Signal         model.Signal `json:"signal"`
}

func toRows(in []model.ScoredAsset) []coinRow {
	rows := make([]coinRow, 0, len(in))
	for _, a := range in {
		s := a.Snapshot
		rows = append(rows, coinRow{
			ID:             s.ID,
			Name:           s.Name,
			Symbol:         s.Symbol,
			Image:          s.Image,
			CurrentPrice:   s.CurrentPrice,
			PriceChange24h: s.PriceChange24h,
			MarketCap:      s.MarketCap,
			TotalVolume:    s.TotalVolume,
			Strong:         strategy.IsStrong(a.Signal),
			Signal:         a.Signal,
		})
	}
	return rows
}

type topResponse struct {
	CycleID     string    `json:"cycle_id"`
	GeneratedAt time.Time `json:"generated_at"`
	Floor       int       `json:"floor"`
	K           int       `json:"k"`
	Ranking     []coinRow `json:"ranking"`
}

func (h *Handler) topSignals(c echo.Context) error {
	req := topRequest{Floor: h.floor, K: h.topK}
	if errs := ReadAndValidateRequest(c, &req); errs != nil {
		return BadRequestResponse(c, errs)
	}

	board, err := h.store.Board()
	if err != nil {
		return AppErrorResponse(c, fromStore(err))
	}

	ranking := board.Ranking
	if req.Floor != h.floor || req.K != h.topK {
		ranking = strategy.Rank(board.Scored, req.Floor, req.K)
	}
	return SuccessResponse(c, topResponse{
		CycleID:     board.CycleID,
		GeneratedAt: board.GeneratedAt,
		Floor:       req.Floor,
		K:           req.K,
		Ranking:     toRows(ranking),
	})
}

func (h *Handler) listCoins(c echo.Context) error {
	var req coinsRequest
	if errs := ReadAndValidateRequest(c, &req); errs != nil {
		return BadRequestResponse(c, errs)
	}
	mode, err := strategy.ParseFilterMode(req.Filter)
	if err != nil {
		return AppErrorResponse(c, BadRequestError(err.Error()))
	}

	scored, err := h.store.Scored()
	if err != nil {
		return AppErrorResponse(c, fromStore(err))
	}
	rows := toRows(strategy.Search(strategy.Filter(scored, mode), req.Query))
	return ListResponse(c, rows, len(rows))
}

type coinDetail struct {
	Snapshot   model.AssetSnapshot `json:"snapshot"`
	Indicators model.IndicatorSet  `json:"indicators"`
	Signal     model.Signal        `json:"signal"`
	Strong     bool                `json:"strong"`
}

func (h *Handler) getCoin(c echo.Context) error {
	var req coinRequest
	if errs := ReadAndValidateRequest(c, &req); errs != nil {
		return BadRequestResponse(c, errs)
	}

	asset, err := h.store.Asset(req.Symbol)
	if err != nil {
		if appErr := fromStore(err); appErr.Status == http.StatusNotFound {
			return AppErrorResponse(c, NotFoundErrorf("unknown symbol %q", req.Symbol))
		}
		return AppErrorResponse(c, fromStore(err))
	}
	return SuccessResponse(c, coinDetail{
		Snapshot:   asset.Snapshot,
		Indicators: calculator.Compute(&asset.Snapshot),
		Signal:     asset.Signal,
		Strong:     strategy.IsStrong(asset.Signal),
	})
}

type marketResponse struct {
	*model.MarketOverview
	Display struct {
		MarketCap string `json:"market_cap"`
		Volume    string `json:"volume"`
	} `json:"display"`
}

func (h *Handler) market(c echo.Context) error {
	board, err := h.store.Board()
	if err != nil {
		return AppErrorResponse(c, fromStore(err))
	}
	if board.Overview == nil {
		return AppErrorResponse(c, ServiceUnavailableError("market overview unavailable"))
	}
	resp := marketResponse{MarketOverview: board.Overview}
	resp.Display.MarketCap = notifier.FormatLargeUSD(board.Overview.TotalMarketCap)
	resp.Display.Volume = notifier.FormatLargeUSD(board.Overview.TotalVolume)
	return SuccessResponse(c, resp)
}

type healthResponse struct {
	Ready       bool       `json:"ready"`
	CycleID     string     `json:"cycle_id,omitempty"`
	Source      string     `json:"source,omitempty"`
	GeneratedAt *time.Time `json:"generated_at,omitempty"`
}

func (h *Handler) health(c echo.Context) error {
	var resp healthResponse
	if board, err := h.store.Board(); err == nil {
		resp.Ready = true
		resp.CycleID = board.CycleID
		resp.Source = board.Source
		resp.GeneratedAt = &board.GeneratedAt
	}
	return SuccessResponse(c, resp)
}
