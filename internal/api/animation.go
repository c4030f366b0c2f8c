package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v4"

	"eurostat/internal/animation"
	"eurostat/internal/logging"
)

func (h *Handler) GetAnimation(c echo.Context) error {
	return c.JSON(http.StatusOK, h.dash.AnimationStatus())
}

func (h *Handler) StartAnimation(c echo.Context) error {
	if _, err := h.dataset(); err != nil {
		return err
	}
	runID, err := h.dash.StartAnimation()
	if errors.Is(err, animation.ErrNoYears) {
		return echo.NewHTTPError(http.StatusConflict, "dataset has no years to animate")
	}
	if err != nil {
		return err
	}
	logging.FromContext(c).Info("animation requested", "run_id", runID)
	return c.JSON(http.StatusAccepted, h.dash.AnimationStatus())
}

func (h *Handler) StopAnimation(c echo.Context) error {
	h.dash.StopAnimation()
	return c.JSON(http.StatusOK, h.dash.AnimationStatus())
}

func (h *Handler) ResetAnimation(c echo.Context) error {
	h.dash.ResetAnimation()
	return c.JSON(http.StatusOK, h.dash.AnimationStatus())
}

// GetAnimationFrame serves the frame drawn by the last tick; 204 while the
// canvas is clear.
func (h *Handler) GetAnimationFrame(c echo.Context) error {
	frame, ok := h.dash.CurrentFrame()
	if !ok {
		return c.NoContent(http.StatusNoContent)
	}
	return writePNG(c, frame)
}

// StreamAnimation pushes every tick as a server-sent event until the client
// goes away.
func (h *Handler) StreamAnimation(c echo.Context) error {
	events, unsubscribe := h.dash.Subscribe()
	defer unsubscribe()

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set(echo.HeaderCacheControl, "no-cache")
	res.Header().Set(echo.HeaderConnection, "keep-alive")
	res.WriteHeader(http.StatusOK)
	res.Flush()

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			payload, err := json.Marshal(ev)
			if err != nil {
				return err
			}
			if _, err := fmt.Fprintf(res, "event: frame\ndata: %s\n\n", payload); err != nil {
				return nil
			}
			res.Flush()
		}
	}
}
