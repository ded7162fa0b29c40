package forecasts

import (
	"bytes"
	"context"
	"encoding/json"
	"math"

	"github.com/klauspost/compress/gzip"

	"forecastgen/internal/averaging"
	"forecastgen/internal/intervals"
	"forecastgen/internal/types"
)

// exportDays is the number of day slices in an import series: the seven
// forecast days plus the first day replicated at the end, as the import
// endpoint requires.
const exportDays = types.DaysPerWeek + 1

// BuildImportBody assembles the import payload from the run's modified
// forecast. Days are emitted in business-unit week order starting at
// startDayIndex; values are rounded to two decimals here and nowhere
// earlier.
func BuildImportBody(run *types.ForecastRun, startDayIndex int) *types.ImportBody {
	body := &types.ImportBody{
		Description: run.Options.Description,
		WeekCount:   1,
	}

	for _, group := range run.Modified {
		data := group.ForecastData
		if data == nil {
			continue
		}
		contacts, ok := data[types.MetricContacts]
		if !ok {
			continue
		}
		handleTime, hasHT := data[types.MetricHandleTime]
		handled, hasHandled := data[types.MetricHandled]
		if !hasHT || !hasHandled {
			continue
		}

		aht, _, _ := averaging.WeightedAverages(handleTime, handled)

		body.PlanningGroups = append(body.PlanningGroups, types.ImportPlanningGroup{
			PlanningGroupID:                     group.PlanningGroup.ID,
			OfferedPerInterval:                  flattenForExport(contacts, startDayIndex),
			AverageHandleTimeSecondsPerInterval: flattenForExport(aht, startDayIndex),
		})
	}
	return body
}

// flattenForExport reorders a Sunday-indexed matrix into business-unit
// week order, replicates the first day as the eighth slice, and rounds.
func flattenForExport(m *types.Matrix, startDayIndex int) []float64 {
	out := make([]float64, 0, exportDays*types.IntervalsPerDay)
	for i := 0; i < exportDays; i++ {
		day := (startDayIndex + i) % types.DaysPerWeek
		for _, v := range m.Day(day) {
			out = append(out, roundToTwo(v))
		}
	}
	return out
}

func roundToTwo(v float64) float64 {
	return math.Round(v*100) / 100
}

// EncodeImportBody renders the body as gzipped JSON, the content type the
// upload destination expects.
func EncodeImportBody(body *types.ImportBody) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeExportEncodeFailed,
			"failed to encode import body", err)
	}

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(payload); err != nil {
		return nil, types.NewAppError(types.ErrCodeExportEncodeFailed,
			"failed to compress import body", err)
	}
	if err := zw.Close(); err != nil {
		return nil, types.NewAppError(types.ErrCodeExportEncodeFailed,
			"failed to finalize compressed import body", err)
	}
	return buf.Bytes(), nil
}

// Export uploads the run's modified forecast and starts its import.
// Requires a ready run.
func (s *Service) Export(ctx context.Context, run *types.ForecastRun) (*types.ImportResponse, error) {
	if run.State != types.RunReady {
		return nil, types.NewAppError(types.ErrCodeRunNotReady,
			"forecast export requires a ready run", nil)
	}
	startDay, err := intervals.ParseWeekday(run.BusinessUnit.StartDayOfWeek)
	if err != nil {
		return nil, err
	}

	body := BuildImportBody(run, int(startDay))
	if len(body.PlanningGroups) == 0 {
		return nil, types.NewAppError(types.ErrCodeRunNoHistoricalData,
			"run has no planning groups with forecast data to export", nil)
	}

	gzipped, err := EncodeImportBody(body)
	if err != nil {
		return nil, err
	}

	attrs, err := s.wfm.CreateImportUploadURL(ctx, run.BusinessUnit.ID, run.Options.WeekStart, len(gzipped))
	if err != nil {
		s.metrics.UpstreamCalls.WithLabelValues("wfm", "error").Inc()
		return nil, err
	}
	if err := s.wfm.UploadImportBody(ctx, attrs, gzipped); err != nil {
		s.metrics.UpstreamCalls.WithLabelValues("wfm", "error").Inc()
		return nil, err
	}
	resp, err := s.wfm.RunImport(ctx, run.BusinessUnit.ID, run.Options.WeekStart, attrs.UploadKey)
	if err != nil {
		s.metrics.UpstreamCalls.WithLabelValues("wfm", "error").Inc()
		return nil, err
	}
	s.metrics.UpstreamCalls.WithLabelValues("wfm", "ok").Inc()

	s.logger.InfoContext(ctx, "forecast import started",
		"run_id", run.ID,
		"planning_groups", len(body.PlanningGroups),
		"payload_bytes", len(gzipped),
	)
	return resp, nil
}
