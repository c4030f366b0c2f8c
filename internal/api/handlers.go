package api

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"gonum.org/v1/plot/vg"

	"eurostat/internal/dashboard"
	"eurostat/internal/engine"
	"eurostat/internal/logging"
	"eurostat/internal/models"
	"eurostat/internal/render"
)

type Handler struct {
	dash       *dashboard.Dashboard
	lineWidth  int
	lineHeight int
}

func NewHandler(dash *dashboard.Dashboard, lineWidth, lineHeight int) *Handler {
	return &Handler{dash: dash, lineWidth: lineWidth, lineHeight: lineHeight}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.Index)
	e.GET("/healthz", h.Health)

	api := e.Group("/api")
	api.GET("/years", h.GetYears)
	api.GET("/countries", h.GetCountries)
	api.GET("/records", h.GetRecords)
	api.GET("/chart/line.svg", h.GetLineSVG)
	api.GET("/chart/line.png", h.GetLinePNG)
	api.GET("/chart/bubble.png", h.GetBubblePNG)
	api.GET("/table", h.GetTable)
	api.GET("/table.html", h.GetTableHTML)
	api.GET("/export.arrow", h.GetArrow)
	api.POST("/reload", h.Reload)

	anim := api.Group("/animation")
	anim.GET("", h.GetAnimation)
	anim.POST("/start", h.StartAnimation)
	anim.POST("/stop", h.StopAnimation)
	anim.POST("/reset", h.ResetAnimation)
	anim.GET("/frame.png", h.GetAnimationFrame)
	anim.GET("/events", h.StreamAnimation)
}

// --- HELPERS ---
func getPaginationParams(c echo.Context, defaultLimit int) (int, int) {
	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || limit <= 0 {
		limit = defaultLimit
	}
	offset, err := strconv.Atoi(c.QueryParam("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}

// dataset answers 503 until the first load succeeds.
func (h *Handler) dataset() (*engine.Dataset, error) {
	ds, err := h.dash.Dataset()
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusServiceUnavailable, "dataset is loading")
	}
	return ds, nil
}

func indicatorParam(c echo.Context) (models.Indicator, error) {
	raw := c.QueryParam("indicator")
	ind, ok := engine.ParseIndicator(raw)
	if !ok {
		return "", echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("unknown indicator %q", raw))
	}
	return ind, nil
}

// yearParam reads ?year=, defaulting to the first available year.
func yearParam(c echo.Context, ds *engine.Dataset) (int, error) {
	raw := c.QueryParam("year")
	if raw == "" {
		years := ds.Years()
		if len(years) == 0 {
			return 0, echo.NewHTTPError(http.StatusNotFound, "dataset has no years")
		}
		return years[0], nil
	}
	year, err := strconv.Atoi(raw)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid year %q", raw))
	}
	return year, nil
}

func (h *Handler) lineSeries(c echo.Context) (models.LineSeries, error) {
	if _, err := h.dataset(); err != nil {
		return models.LineSeries{}, err
	}
	ind, err := indicatorParam(c)
	if err != nil {
		return models.LineSeries{}, err
	}
	country := strings.ToUpper(strings.TrimSpace(c.QueryParam("country")))

	series, err := h.dash.LineSeries(ind, country)
	if errors.Is(err, engine.ErrNoData) {
		logging.FromContext(c).Warn("no data for line chart", "indicator", ind, "country", country)
		return models.LineSeries{}, echo.NewHTTPError(http.StatusNotFound, "no data for the selected indicator and country")
	}
	return series, err
}

// --- HANDLERS ---
func (h *Handler) Health(c echo.Context) error {
	status := "ok"
	if _, err := h.dash.Dataset(); err != nil {
		status = "loading"
	}
	return c.JSON(http.StatusOK, map[string]string{"status": status})
}

func (h *Handler) GetYears(c echo.Context) error {
	ds, err := h.dataset()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ds.Years())
}

func (h *Handler) GetCountries(c echo.Context) error {
	return c.JSON(http.StatusOK, h.countryOptions())
}

func (h *Handler) GetRecords(c echo.Context) error {
	ds, err := h.dataset()
	if err != nil {
		return err
	}
	records := ds.Flatten()
	total := len(records)
	limit, offset := getPaginationParams(c, total)

	page := []models.FlatRecord{}
	if offset < total {
		end := offset + limit
		if end > total {
			end = total
		}
		page = records[offset:end]
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"data":   page,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

func (h *Handler) GetLineSVG(c echo.Context) error {
	series, err := h.lineSeries(c)
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, "image/svg+xml", render.LineChartSVG(series, h.lineWidth, h.lineHeight))
}

func (h *Handler) GetLinePNG(c echo.Context) error {
	series, err := h.lineSeries(c)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := render.WriteLinePlotPNG(&buf, series, vg.Points(float64(h.lineWidth)), vg.Points(float64(h.lineHeight))); err != nil {
		return err
	}
	return c.Blob(http.StatusOK, "image/png", buf.Bytes())
}

func (h *Handler) GetBubblePNG(c echo.Context) error {
	ds, err := h.dataset()
	if err != nil {
		return err
	}
	year, err := yearParam(c, ds)
	if err != nil {
		return err
	}
	frame, err := h.dash.BubbleFrame(year)
	if err != nil {
		return err
	}
	return writePNG(c, frame)
}

func writePNG(c echo.Context, frame models.BubbleFrame) error {
	var buf bytes.Buffer
	if err := render.WriteBubblePNG(&buf, frame); err != nil {
		return err
	}
	c.Response().Header().Set("X-Frame-Year", strconv.Itoa(frame.Year))
	return c.Blob(http.StatusOK, "image/png", buf.Bytes())
}

func (h *Handler) table(c echo.Context) (models.SummaryTable, error) {
	ds, err := h.dataset()
	if err != nil {
		return models.SummaryTable{}, err
	}
	year, err := yearParam(c, ds)
	if err != nil {
		return models.SummaryTable{}, err
	}
	return h.dash.Table(year)
}

func (h *Handler) GetTable(c echo.Context) error {
	table, err := h.table(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, table)
}

func (h *Handler) GetTableHTML(c echo.Context) error {
	table, err := h.table(c)
	if err != nil {
		return err
	}
	out, err := render.TableHTML(table)
	if err != nil {
		return err
	}
	return c.HTMLBlob(http.StatusOK, out)
}

func (h *Handler) GetArrow(c echo.Context) error {
	ds, err := h.dataset()
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := engine.WriteArrow(&buf, ds); err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="eurostat.arrow"`)
	return c.Blob(http.StatusOK, "application/vnd.apache.arrow.stream", buf.Bytes())
}

func (h *Handler) Reload(c echo.Context) error {
	if err := h.dash.Reload(c.Request().Context()); err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, "reload failed").SetInternal(err)
	}
	ds, _ := h.dash.Dataset()
	return c.JSON(http.StatusOK, map[string]interface{}{
		"triples": ds.Len(),
		"years":   ds.Years(),
	})
}
