package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"eurostat/internal/models"
)

// Decode reads a JSON array of records.
func Decode(r io.Reader) ([]models.Record, error) {
	var records []models.Record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	return records, nil
}

// Load reads source (a file path or an http(s) URL), decodes and normalizes
// it. Nothing is retried.
func Load(ctx context.Context, source string) (*Dataset, error) {
	start := time.Now()

	rc, err := open(ctx, source)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	records, err := Decode(rc)
	if err != nil {
		return nil, err
	}

	ds, err := Normalize(records)
	if err != nil {
		return nil, fmt.Errorf("normalize %s: %w", source, err)
	}

	slog.Info("dataset loaded",
		"source", source,
		"records", len(records),
		"triples", ds.Len(),
		"years", len(ds.years),
		"elapsed", time.Since(start),
	)
	return ds, nil
}

func open(ctx context.Context, source string) (io.ReadCloser, error) {
	if !strings.HasPrefix(source, "http://") && !strings.HasPrefix(source, "https://") {
		f, err := os.Open(source)
		if err != nil {
			return nil, fmt.Errorf("open dataset: %w", err)
		}
		return f, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch dataset: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("fetch dataset: unexpected status %s", resp.Status)
	}
	return resp.Body, nil
}
