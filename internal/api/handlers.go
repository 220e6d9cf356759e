package api

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/labstack/echo/v4"

	"vatmonitor/internal/demo"
	"vatmonitor/internal/engine"
	"vatmonitor/internal/models"
)

// MIMEArrowStream is the media type of the Arrow IPC stream export.
const MIMEArrowStream = "application/vnd.apache.arrow.stream"

const (
	defaultPageSize = 20
	sparklinePoints = 12
)

// Handler serves dashboard queries. Until SetEngine is called every data
// route answers 503.
type Handler struct {
	engine atomic.Pointer[engine.Engine]
}

func NewHandler(eng *engine.Engine) *Handler {
	h := &Handler{}
	if eng != nil {
		h.engine.Store(eng)
	}
	return h
}

// SetEngine swaps in a loaded engine. Safe to call while serving.
func (h *Handler) SetEngine(eng *engine.Engine) {
	h.engine.Store(eng)
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)

	api := e.Group("/api", h.requireEngine)
	api.GET("/sectors", h.GetSectors)
	api.GET("/sectors/:id/top-businesses", h.GetTopBusinesses)
	api.GET("/sectors/:id/businesses", h.GetBusinessActivity)
	api.GET("/banking/balance", h.GetBankingBalance)
	api.GET("/regions/top", h.GetTopRegions)
	api.GET("/regions/breakdown", h.GetRegionBreakdown)
	api.GET("/summary", h.GetSummary)
	api.GET("/trends/monthly", h.GetMonthlyTrend)
	api.GET("/trends/daily", h.GetDailyTrend)
	api.GET("/trends/yearly", h.GetYearlyTrend)
	api.GET("/trends/observed", h.GetObservedTrend)
	api.GET("/transaction-types/top", h.GetTopTransactionTypes)
	api.GET("/activity", h.GetActivity)
	api.GET("/transactions", h.GetTransactions)
	api.GET("/export/transactions.arrow", h.ExportTransactions)
}

const engineKey = "engine"

func (h *Handler) requireEngine(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		eng := h.engine.Load()
		if eng == nil {
			return echo.NewHTTPError(http.StatusServiceUnavailable, "data is still loading")
		}
		c.Set(engineKey, eng)
		return next(c)
	}
}

func engineOf(c echo.Context) *engine.Engine {
	return c.Get(engineKey).(*engine.Engine)
}

// --- PARAMS ---

func getPaginationParams(c echo.Context, defaultLimit int) (int, int, error) {
	limit, err := intParam(c, "limit")
	if err != nil {
		return 0, 0, err
	}
	if limit == 0 {
		limit = defaultLimit
	}
	offset, err := intParam(c, "offset")
	if err != nil {
		return 0, 0, err
	}
	return limit, offset, nil
}

// intParam reads a non-negative integer query parameter; absent means 0.
func intParam(c echo.Context, name string) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("%s must be a non-negative integer", name))
	}
	return n, nil
}

func parseFilter(c echo.Context, eng *engine.Engine) (engine.Filter, error) {
	var f engine.Filter
	var err error
	if f.SectorID, err = intParam(c, "sector"); err != nil {
		return f, err
	}
	if f.BusinessID, err = intParam(c, "business"); err != nil {
		return f, err
	}
	if f.StateID, err = intParam(c, "state"); err != nil {
		return f, err
	}

	loc := eng.Reference().Location()
	if f.From, err = dateParam(c, "from", loc); err != nil {
		return f, err
	}
	if f.To, err = dateParam(c, "to", loc); err != nil {
		return f, err
	}
	if !f.From.IsZero() && !f.To.IsZero() && !f.From.Before(f.To) {
		return f, echo.NewHTTPError(http.StatusBadRequest, "from must be before to")
	}
	return f, nil
}

func dateParam(c echo.Context, name string, loc *time.Location) (time.Time, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := engine.ParseDate(raw, loc)
	if err != nil {
		return time.Time{}, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("%s: %v", name, err))
	}
	return t, nil
}

func pathID(c echo.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "id must be a positive integer")
	}
	return id, nil
}

func notFound(err error) error {
	if errors.Is(err, engine.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return err
}

// --- HANDLERS ---

func (h *Handler) Health(c echo.Context) error {
	status := "ok"
	if h.engine.Load() == nil {
		status = "loading"
	}
	return c.JSON(http.StatusOK, map[string]string{"status": status})
}

func (h *Handler) GetSectors(c echo.Context) error {
	eng := engineOf(c)
	f, err := parseFilter(c, eng)
	if err != nil {
		return err
	}
	return respond(c, eng.SectorStats(f))
}

// RankedBusiness decorates a ranking row with a demo sparkline.
type RankedBusiness struct {
	models.BusinessRanking
	Sparkline []float64 `json:"sparkline"`
}

func (h *Handler) GetTopBusinesses(c echo.Context) error {
	eng := engineOf(c)
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if _, err := eng.LookupSector(id); err != nil {
		return notFound(err)
	}
	limit, err := intParam(c, "limit")
	if err != nil {
		return err
	}

	rows := eng.TopBusinesses(id, limit)
	out := make([]RankedBusiness, len(rows))
	for i, r := range rows {
		out[i] = RankedBusiness{
			BusinessRanking: r,
			Sparkline:       demo.Sparkline(uint64(r.ID), r.TotalAmount/sparklinePoints, sparklinePoints),
		}
	}
	return respond(c, out)
}

func (h *Handler) GetBusinessActivity(c echo.Context) error {
	eng := engineOf(c)
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if _, err := eng.LookupSector(id); err != nil {
		return notFound(err)
	}

	rows := eng.BusinessActivity(id)
	limit, offset, err := getPaginationParams(c, len(rows))
	if err != nil {
		return err
	}
	return respond(c, models.Page[models.BusinessRanking]{
		Data:   engine.Window(rows, limit, offset),
		Total:  len(rows),
		Limit:  limit,
		Offset: offset,
	})
}

func (h *Handler) GetBankingBalance(c echo.Context) error {
	return respond(c, engineOf(c).BankingBalance())
}

func (h *Handler) GetTopRegions(c echo.Context) error {
	eng := engineOf(c)
	f, err := parseFilter(c, eng)
	if err != nil {
		return err
	}
	limit, err := intParam(c, "limit")
	if err != nil {
		return err
	}
	return respond(c, eng.TopRegions(f, limit))
}

func (h *Handler) GetRegionBreakdown(c echo.Context) error {
	eng := engineOf(c)
	f, err := parseFilter(c, eng)
	if err != nil {
		return err
	}
	return respond(c, eng.RegionBreakdown(f))
}

func (h *Handler) GetSummary(c echo.Context) error {
	eng := engineOf(c)
	state, err := intParam(c, "state")
	if err != nil {
		return err
	}
	return respond(c, eng.Summary(state))
}

// TrendResponse carries trend points together with their chart form.
type TrendResponse struct {
	Points []models.TrendPoint `json:"points"`
	Chart  models.ChartData    `json:"chart"`
}

func trend(points []models.TrendPoint) TrendResponse {
	return TrendResponse{Points: points, Chart: engine.TrendChart(points)}
}

func (h *Handler) GetMonthlyTrend(c echo.Context) error {
	eng := engineOf(c)
	f, err := parseFilter(c, eng)
	if err != nil {
		return err
	}
	w, err := intParam(c, "window")
	if err != nil {
		return err
	}
	return respond(c, trend(eng.MonthlyTrend(f, w)))
}

func (h *Handler) GetDailyTrend(c echo.Context) error {
	eng := engineOf(c)
	f, err := parseFilter(c, eng)
	if err != nil {
		return err
	}
	w, err := intParam(c, "window")
	if err != nil {
		return err
	}
	return respond(c, trend(eng.DailyTrend(f, w)))
}

func (h *Handler) GetYearlyTrend(c echo.Context) error {
	eng := engineOf(c)
	f, err := parseFilter(c, eng)
	if err != nil {
		return err
	}
	return respond(c, trend(eng.YearlyTrend(f)))
}

// GetObservedTrend returns one point per month that has data, without
// filling gaps.
func (h *Handler) GetObservedTrend(c echo.Context) error {
	eng := engineOf(c)
	f, err := parseFilter(c, eng)
	if err != nil {
		return err
	}
	return respond(c, trend(eng.ObservedTrend(f)))
}

func (h *Handler) GetTopTransactionTypes(c echo.Context) error {
	eng := engineOf(c)
	f, err := parseFilter(c, eng)
	if err != nil {
		return err
	}
	limit, err := intParam(c, "limit")
	if err != nil {
		return err
	}
	return respond(c, eng.TopTransactionTypes(f, limit))
}

func (h *Handler) GetActivity(c echo.Context) error {
	eng := engineOf(c)
	f, err := parseFilter(c, eng)
	if err != nil {
		return err
	}
	limit, err := intParam(c, "limit")
	if err != nil {
		return err
	}
	return respond(c, eng.RecentActivity(f, limit))
}

func (h *Handler) GetTransactions(c echo.Context) error {
	eng := engineOf(c)
	f, err := parseFilter(c, eng)
	if err != nil {
		return err
	}
	limit, offset, err := getPaginationParams(c, defaultPageSize)
	if err != nil {
		return err
	}
	return respond(c, eng.Transactions(f, limit, offset))
}

func (h *Handler) ExportTransactions(c echo.Context) error {
	eng := engineOf(c)
	f, err := parseFilter(c, eng)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if _, err := eng.ExportArrow(&buf, f); err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="transactions.arrow"`)
	return c.Blob(http.StatusOK, MIMEArrowStream, buf.Bytes())
}
