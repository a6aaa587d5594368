package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/sirupsen/logrus"

	"MarketLens/internal/config"
	"MarketLens/internal/export"
	"MarketLens/internal/model"
)

func runAnalyze(ctx context.Context, cfg *config.Config, log logrus.FieldLogger, args []string) error {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	symbol := fs.String("symbol", "", "ticker (default: first watchlist entry)")
	from := fs.String("from", "", "start date YYYY-MM-DD (default: lookback before -to)")
	to := fs.String("to", "", "end date YYYY-MM-DD (default: today)")
	rows := fs.Int("rows", 10, "trailing rows to print")
	doExport := fs.Bool("export", false, "write the series to the export dir")
	format := fs.String("format", cfg.Export.Format, "export format: csv, json or parquet")
	record := fs.Bool("record", false, "store the run in the sqlite history")
	_ = fs.Parse(args)

	if *symbol == "" {
		*symbol = cfg.Watchlist[0].Ticker
	}
	r, err := parseRange(*from, *to)
	if err != nil {
		return err
	}

	col, err := newCollector(cfg, log, nil)
	if err != nil {
		return err
	}
	a, err := col.Analyze(ctx, strings.ToUpper(*symbol), r)
	if err != nil {
		return err
	}
	if err := printAnalysis(os.Stdout, a, *rows); err != nil {
		return err
	}

	if *doExport {
		e, err := export.NewSeriesExporter(*format)
		if err != nil {
			return err
		}
		path, err := export.WriteAnalysis(cfg.Export.Dir, a, e)
		if err != nil {
			return err
		}
		fmt.Printf("\nexported to %s\n", path)
	}
	if *record {
		rec := openRecorder(cfg, log)
		defer rec.Close()
		runID, err := rec.RecordAnalysis(ctx, a)
		if err != nil {
			return err
		}
		log.WithField("run_id", runID).Info("analysis recorded")
	}
	return nil
}

func parseRange(from, to string) (model.DateRange, error) {
	var r model.DateRange
	var err error
	if from != "" {
		if r.From, err = time.Parse("2006-01-02", from); err != nil {
			return r, fmt.Errorf("-from %q: %w", from, model.ErrInvalidInput)
		}
	}
	if to != "" {
		if r.To, err = time.Parse("2006-01-02", to); err != nil {
			return r, fmt.Errorf("-to %q: %w", to, model.ErrInvalidInput)
		}
	}
	return r, nil
}

func printAnalysis(out io.Writer, a *model.Analysis, rows int) error {
	s := a.Summary
	bars := a.Series.Bars
	fmt.Fprintf(out, "%s  %s ~ %s  (%d bars)\n", a.Series.Symbol,
		bars[0].Time.Format("2006-01-02"), bars[len(bars)-1].Time.Format("2006-01-02"), s.Bars)
	fmt.Fprintf(out, "start %.2f  end %.2f  return %+.2f%%  range %.2f ~ %.2f\n\n",
		s.StartPrice, s.EndPrice, s.ReturnPct, s.Low, s.High)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "date\tclose\tsma\tema\trsi\t")
	start := len(a.Indicators) - rows
	if start < 0 || rows <= 0 {
		start = 0
	}
	for _, p := range a.Indicators[start:] {
		fmt.Fprintf(w, "%s\t%.2f\t%s\t%.2f\t%s\t\n", p.Time.Format("2006-01-02"), p.Close,
			optFloat(p.SMA.Valid, p.SMA.Float64), p.EMA, optFloat(p.RSI.Valid, p.RSI.Float64))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if sig := a.Signal; sig != nil {
		fmt.Fprintf(out, "\nsignal %s (%+.3f), zone %s\n", sig.Tier.Label, sig.TotalScore, sig.Zone)
		for _, f := range sig.Factors {
			fmt.Fprintf(out, "  %-14s %+.1f x %.2f  %s\n", f.Name, f.RawScore, f.Weight, f.Commentary)
		}
		if sig.WarningMsg != "" {
			fmt.Fprintf(out, "  warning: %s\n", sig.WarningMsg)
		}
	}
	return nil
}

func optFloat(valid bool, v float64) string {
	if !valid {
		return "-"
	}
	return fmt.Sprintf("%.2f", v)
}
