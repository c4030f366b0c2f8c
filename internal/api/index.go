package api

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/labstack/echo/v4"

	"eurostat/internal/engine"
	"eurostat/internal/models"
)

//go:embed templates/index.html
var templatesFS embed.FS

var indexTmpl = template.Must(template.ParseFS(templatesFS, "templates/index.html"))

type countryOption struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

func (h *Handler) countryOptions() []countryOption {
	out := make([]countryOption, 0, len(h.dash.Countries()))
	for _, code := range h.dash.Countries() {
		out = append(out, countryOption{Code: code, Name: engine.CountryName(code)})
	}
	return out
}

type indexPage struct {
	Indicators []models.Indicator
	Countries  []countryOption
	Years      []int
	LineWidth  int
	LineHeight int
}

// Index serves the dashboard page. Year selectors stay empty until the
// dataset has loaded.
func (h *Handler) Index(c echo.Context) error {
	page := indexPage{
		Indicators: models.Indicators,
		LineWidth:  h.lineWidth,
		LineHeight: h.lineHeight,
		Countries:  h.countryOptions(),
	}
	if ds, err := h.dash.Dataset(); err == nil {
		page.Years = ds.Years()
	}

	var buf bytes.Buffer
	if err := indexTmpl.Execute(&buf, page); err != nil {
		return err
	}
	return c.HTMLBlob(http.StatusOK, buf.Bytes())
}
