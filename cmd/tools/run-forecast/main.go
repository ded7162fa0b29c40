// Package main implements the run-forecast CLI tool: it drives one forecast
// run end to end without the HTTP server, for local development and
// operational debugging.
//
// Usage:
//
//	go run ./cmd/tools/run-forecast --business-unit=bu-1 --week-start=2026-09-06
//	go run ./cmd/tools/run-forecast --groups=groups.json --weeks=6 --export
//
// With --groups the planning groups are read from a JSON file; otherwise a
// single synthetic outbound group is used. In local mode (the default) the
// platform calls go to stubs; set FORECASTGEN_ENV and the platform variables
// to run against a real platform.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"

	"forecastgen/internal/config"
	"forecastgen/internal/external"
	"forecastgen/internal/forecasts"
	"forecastgen/internal/metrics"
	"forecastgen/internal/types"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		businessUnit = flag.String("business-unit", "bu-local", "business unit ID")
		timeZone     = flag.String("time-zone", "UTC", "business unit time zone")
		startDay     = flag.String("start-day", "Sunday", "business unit week start day")
		weekStart    = flag.String("week-start", "", "forecast week start date (YYYY-MM-DD, required)")
		weeks        = flag.Int("weeks", 0, "historical weeks to query (default from config)")
		groupsFile   = flag.String("groups", "", "JSON file with planning groups")
		inbound      = flag.Bool("inbound", false, "generate and merge an inbound forecast")
		export       = flag.Bool("export", false, "export the result to the platform after generation")
		timeout      = flag.Duration("timeout", 10*time.Minute, "overall run timeout")
	)
	flag.Parse()

	if *weekStart == "" {
		return fmt.Errorf("--week-start is required")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	if *weeks == 0 {
		*weeks = cfg.Forecast.HistoricalWeeks
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	groups, err := loadGroups(*groupsFile)
	if err != nil {
		return err
	}

	svc, err := buildService(cfg, logger)
	if err != nil {
		return err
	}

	run := &types.ForecastRun{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		BusinessUnit: types.BusinessUnitSettings{
			ID:             *businessUnit,
			TimeZone:       *timeZone,
			StartDayOfWeek: *startDay,
		},
		Options: types.ForecastOptions{
			WeekStart:       *weekStart,
			HistoricalWeeks: *weeks,
			IgnoreZeroes:    cfg.Forecast.IgnoreZeroes,
			GenerateInbound: *inbound,
			Description:     "run-forecast CLI",
		},
		State:     types.RunIdle,
		Generated: groups,
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := svc.Generate(ctx, run); err != nil {
		return fmt.Errorf("generation failed: %w", err)
	}
	printSummary(run)

	if *export {
		resp, err := svc.Export(ctx, run)
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}
		fmt.Printf("export: status=%s", resp.Status)
		if resp.Result != nil {
			fmt.Printf(" forecast=%s", resp.Result.ID)
		}
		fmt.Println()
	}
	return nil
}

func buildService(cfg *config.Config, logger *slog.Logger) (*forecasts.Service, error) {
	var (
		analytics     external.AnalyticsService
		wfm           external.WFMService
		notifications external.NotificationService
	)
	if cfg.IsLocal() {
		logger.Warn("local mode: using stub platform services")
		analytics = external.NewStubAnalyticsService(logger)
		wfm = external.NewStubWFMService(logger)
		notifications = external.NewStubNotificationService(logger)
	} else {
		base := external.NewBaseClient(
			&http.Client{Timeout: cfg.Platform.HTTPTimeout},
			"platform",
			external.DefaultRetryPolicy(),
			cfg.Platform.UserAgent,
		)
		analytics = external.NewAnalyticsClient(base, cfg.Platform.BaseURL, cfg.Platform.AuthToken)
		wfm = external.NewWFMClient(base, cfg.Platform.BaseURL, cfg.Platform.AuthToken, nil)
		// No notification webhook in CLI context; poll-free waits would
		// hang, so inbound generation relies on the synchronous response.
		notifications = external.NewStubNotificationService(logger)
	}
	return forecasts.NewService(analytics, wfm, notifications, metrics.New(), logger, types.RealClock{})
}

// loadGroups reads planning groups from a JSON file, or fabricates one
// outbound group when no file is given.
func loadGroups(path string) ([]*types.PlanningGroupForecast, error) {
	if path == "" {
		return []*types.PlanningGroupForecast{{
			PlanningGroup: types.EntityRef{ID: "pg-local", Name: "Local Outbound"},
			Campaign:      &types.EntityRef{ID: "camp-local", Name: "Local Campaign"},
			Metadata:      types.GroupMetadata{NumContacts: 1000},
		}}, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading groups file: %w", err)
	}
	var groups []*types.PlanningGroupForecast
	if err := json.Unmarshal(raw, &groups); err != nil {
		return nil, fmt.Errorf("parsing groups file: %w", err)
	}
	if len(groups) == 0 {
		return nil, fmt.Errorf("groups file %s contains no planning groups", path)
	}
	return groups, nil
}

func printSummary(run *types.ForecastRun) {
	state, reason := run.Status()
	fmt.Printf("run %s: %s", run.ID, state)
	if reason != "" {
		fmt.Printf(" (%s)", reason)
	}
	fmt.Println()

	for _, group := range run.Modified {
		status := group.Metadata.ForecastStatus
		if !status.IsForecast {
			fmt.Printf("  %-24s skipped: %s\n", group.PlanningGroup.ID, status.Reason)
			continue
		}
		contacts := group.ForecastData[types.MetricContacts]
		handle := group.ForecastData[types.MetricHandleTime]
		fmt.Printf("  %-24s contacts=%.1f handle_seconds=%.1f weeks=%d\n",
			group.PlanningGroup.ID,
			contacts.Total(),
			handle.Total(),
			len(group.HistoricalWeeks),
		)
	}
}
