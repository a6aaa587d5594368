package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"

	"MarketLens/internal/config"
	"MarketLens/internal/export"
	"MarketLens/internal/model"
	"MarketLens/internal/recorder"
)

func runRecommend(ctx context.Context, cfg *config.Config, log logrus.FieldLogger, args []string) error {
	fs := flag.NewFlagSet("recommend", flag.ExitOnError)
	item := fs.Int("item", 0, "content mode: items similar to this item id")
	name := fs.String("name", "", "content mode: items similar to the item with this name")
	user := fs.Int("user", 0, "collaborative mode: picks for this user id")
	top := fs.Int("top", cfg.Recommender.TopN, "number of results")
	record := fs.Bool("record", false, "store the query in the sqlite history")
	_ = fs.Parse(args)

	engine, err := loadEngine(cfg, log)
	if err != nil {
		return err
	}

	var (
		recs []model.Recommendation
		run  recorder.RecommendationRun
	)
	switch {
	case *item != 0:
		run = recorder.RecommendationRun{Mode: "content", Query: strconv.Itoa(*item)}
		recs, err = engine.SimilarTo(*item, *top)
	case *name != "":
		run = recorder.RecommendationRun{Mode: "content", Query: *name}
		recs, err = engine.SimilarToName(*name, *top)
	case *user != 0:
		run = recorder.RecommendationRun{Mode: "collaborative", Query: strconv.Itoa(*user)}
		recs, err = engine.ForUser(*user, *top)
	default:
		return fmt.Errorf("one of -item, -name or -user is required: %w", model.ErrInvalidInput)
	}
	if err != nil {
		return err
	}

	if err := export.WriteRecommendationsCSV(os.Stdout, recs); err != nil {
		return err
	}
	if *record {
		rec := openRecorder(cfg, log)
		defer rec.Close()
		run.Items = recs
		if _, err := rec.RecordRecommendations(ctx, &run); err != nil {
			return err
		}
	}
	return nil
}
