package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/plot/vg"

	"eurostat/internal/animation"
	"eurostat/internal/dashboard"
	"eurostat/internal/engine"
	"eurostat/internal/models"
	"eurostat/internal/render"
)

// resolveYear falls back to the first available year when year is 0.
func resolveYear(dash *dashboard.Dashboard, year int) (int, error) {
	if year != 0 {
		return year, nil
	}
	ds, err := dash.Dataset()
	if err != nil {
		return 0, err
	}
	years := ds.Years()
	if len(years) == 0 {
		return 0, fmt.Errorf("dataset has no years")
	}
	return years[0], nil
}

func parseIndicator(s string) (models.Indicator, error) {
	ind, ok := engine.ParseIndicator(s)
	if !ok {
		return "", fmt.Errorf("unknown indicator %q (want PIB, SV or POP)", s)
	}
	return ind, nil
}

func newTableCmd(opts *rootOptions) *cobra.Command {
	var year int
	var noColor bool

	cmd := &cobra.Command{
		Use:   "table",
		Short: "Print the colored summary table for a year",
		RunE: func(cmd *cobra.Command, args []string) error {
			dash, err := opts.load(cmd.Context())
			if err != nil {
				return err
			}
			if year, err = resolveYear(dash, year); err != nil {
				return err
			}
			table, err := dash.Table(year)
			if err != nil {
				return err
			}
			return render.WriteTableTerminal(cmd.OutOrStdout(), table, !noColor && !color.NoColor)
		},
	}
	cmd.Flags().IntVar(&year, "year", 0, "year (default: first available)")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable cell colors")
	return cmd
}

// writeFile creates path and hands it to write. The close error is
// reported when write itself succeeded.
func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()
	return write(f)
}

func writeLine(series models.LineSeries, out string) error {
	return writeFile(out, func(w io.Writer) error {
		if strings.EqualFold(filepath.Ext(out), ".png") {
			return render.WriteLinePlotPNG(w, series, 6*vg.Inch, 3*vg.Inch)
		}
		_, err := w.Write(render.LineChartSVG(series, 600, 300))
		return err
	})
}

func newLineCmd(opts *rootOptions) *cobra.Command {
	var indicator, country, out string

	cmd := &cobra.Command{
		Use:   "line",
		Short: "Draw the evolution of one indicator for one country (SVG or PNG)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ind, err := parseIndicator(indicator)
			if err != nil {
				return err
			}
			dash, err := opts.load(cmd.Context())
			if err != nil {
				return err
			}
			series, err := dash.LineSeries(ind, strings.ToUpper(country))
			if err != nil {
				return fmt.Errorf("%s/%s: %w", ind, country, err)
			}
			return writeLine(series, out)
		},
	}
	cmd.Flags().StringVar(&indicator, "indicator", "PIB", "PIB, SV or POP")
	cmd.Flags().StringVar(&country, "country", "BE", "country code")
	cmd.Flags().StringVarP(&out, "out", "o", "line.svg", "output file (.svg or .png)")
	return cmd
}

func writeBubble(frame models.BubbleFrame, out string) error {
	return writeFile(out, func(w io.Writer) error {
		return render.WriteBubblePNG(w, frame)
	})
}

func newBubbleCmd(opts *rootOptions) *cobra.Command {
	var year int
	var out string

	cmd := &cobra.Command{
		Use:   "bubble",
		Short: "Draw the bubble chart for a year",
		RunE: func(cmd *cobra.Command, args []string) error {
			dash, err := opts.load(cmd.Context())
			if err != nil {
				return err
			}
			if year, err = resolveYear(dash, year); err != nil {
				return err
			}
			frame, err := dash.BubbleFrame(year)
			if err != nil {
				return err
			}
			return writeBubble(frame, out)
		},
	}
	cmd.Flags().IntVar(&year, "year", 0, "year (default: first available)")
	cmd.Flags().StringVarP(&out, "out", "o", "bubble.png", "output PNG")
	return cmd
}

func newAnimateCmd(opts *rootOptions) *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "animate",
		Short: "Step through every year and write one bubble frame per tick",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := os.MkdirAll(outDir, 0755); err != nil {
				return err
			}
			dash, err := opts.load(cmd.Context())
			if err != nil {
				return err
			}

			events, unsubscribe := dash.Subscribe()
			defer unsubscribe()

			if _, err := dash.StartAnimation(); err != nil {
				return err
			}
			defer dash.StopAnimation()

			finished := make(chan struct{})
			go func() {
				_ = dash.WaitAnimation(cmd.Context())
				close(finished)
			}()

			write := func(ev animation.Event) error {
				frame, err := dash.BubbleFrame(ev.Year)
				if err != nil {
					return err
				}
				path := filepath.Join(outDir, fmt.Sprintf("bubble-%d.png", ev.Year))
				if err := writeBubble(frame, path); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), path)
				return nil
			}

			for {
				select {
				case <-cmd.Context().Done():
					return cmd.Context().Err()
				case ev := <-events:
					if err := write(ev); err != nil {
						return err
					}
					if ev.Complete {
						return nil
					}
				case <-finished:
					// The timer is gone; flush whatever is still buffered.
					for {
						select {
						case ev := <-events:
							if err := write(ev); err != nil {
								return err
							}
						default:
							return nil
						}
					}
				}
			}
		},
	}
	cmd.Flags().StringVar(&outDir, "out-dir", "frames", "directory for frames")
	cmd.Flags().DurationVar(&opts.interval, "interval", 800*time.Millisecond, "delay between frames")
	return cmd
}

func newExportCmd(opts *rootOptions) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the normalized store as an Arrow IPC stream",
		RunE: func(cmd *cobra.Command, args []string) error {
			dash, err := opts.load(cmd.Context())
			if err != nil {
				return err
			}
			ds, err := dash.Dataset()
			if err != nil {
				return err
			}
			return writeFile(out, func(w io.Writer) error {
				return engine.WriteArrow(w, ds)
			})
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "eurostat.arrow", "output file")
	return cmd
}

// newSnapshotCmd renders the three views of one selection concurrently.
func newSnapshotCmd(opts *rootOptions) *cobra.Command {
	var year int
	var indicator, country, outDir string

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Render line chart, bubble chart and table into a directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			ind, err := parseIndicator(indicator)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(outDir, 0755); err != nil {
				return err
			}
			dash, err := opts.load(cmd.Context())
			if err != nil {
				return err
			}
			if year, err = resolveYear(dash, year); err != nil {
				return err
			}
			return snapshot(cmd.Context(), dash, ind, strings.ToUpper(country), year, outDir)
		},
	}
	cmd.Flags().IntVar(&year, "year", 0, "year (default: first available)")
	cmd.Flags().StringVar(&indicator, "indicator", "PIB", "PIB, SV or POP")
	cmd.Flags().StringVar(&country, "country", "BE", "country code")
	cmd.Flags().StringVar(&outDir, "out-dir", "snapshot", "output directory")
	return cmd
}

func snapshot(ctx context.Context, dash *dashboard.Dashboard, ind models.Indicator, country string, year int, outDir string) error {
	g, _ := errgroup.WithContext(ctx)

	g.Go(func() error {
		series, err := dash.LineSeries(ind, country)
		if err != nil {
			return fmt.Errorf("line chart %s/%s: %w", ind, country, err)
		}
		return writeLine(series, filepath.Join(outDir, "line.svg"))
	})
	g.Go(func() error {
		frame, err := dash.BubbleFrame(year)
		if err != nil {
			return err
		}
		return writeBubble(frame, filepath.Join(outDir, "bubble.png"))
	})
	g.Go(func() error {
		table, err := dash.Table(year)
		if err != nil {
			return err
		}
		html, err := render.TableHTML(table)
		if err != nil {
			return err
		}
		return os.WriteFile(filepath.Join(outDir, "table.html"), html, 0644)
	})

	return g.Wait()
}
