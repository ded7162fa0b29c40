package core

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"forecastgen/internal/curve"
	"forecastgen/internal/types"
)

// generateTimeout bounds a background forecast generation, including the
// polling wait on an asynchronous inbound forecast.
const generateTimeout = 10 * time.Minute

// runGroupInput is one planning group in a create-run request. Campaign is
// optional: groups without one are classified inbound-only.
type runGroupInput struct {
	PlanningGroup types.EntityRef  `json:"planningGroup" validate:"required"`
	Queue         types.EntityRef  `json:"queue"`
	Campaign      *types.EntityRef `json:"campaign,omitempty"`
	NumContacts   float64          `json:"numContacts" validate:"min=0"`
}

type createRunRequest struct {
	BusinessUnit types.BusinessUnitSettings `json:"businessUnit" validate:"required"`
	Options      types.ForecastOptions      `json:"options" validate:"required"`
	Groups       []runGroupInput            `json:"planningGroups" validate:"required,min=1,dive"`
}

// runSummary is the projection of a run safe to return while generation is
// still in flight.
type runSummary struct {
	ID            string                     `json:"id"`
	CreatedAt     time.Time                  `json:"createdAt"`
	BusinessUnit  types.BusinessUnitSettings `json:"businessUnit"`
	Options       types.ForecastOptions      `json:"options"`
	State         types.RunState             `json:"state"`
	FailureReason string                     `json:"failureReason,omitempty"`
}

func summarize(run *types.ForecastRun) runSummary {
	state, reason := run.Status()
	return runSummary{
		ID:            run.ID,
		CreatedAt:     run.CreatedAt,
		BusinessUnit:  run.BusinessUnit,
		Options:       run.Options,
		State:         state,
		FailureReason: reason,
	}
}

// HandleCreateRun validates the request, registers the run, and starts
// generation in the background. The response is the run summary; clients
// poll the run until it reaches ready or failed.
func (s *Server) HandleCreateRun(w http.ResponseWriter, r *http.Request) {
	var req createRunRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		Error(w, r, err)
		return
	}
	if err := s.Validator.ValidateStruct(req); err != nil {
		Error(w, r, err)
		return
	}

	now := time.Now().UTC()
	run := &types.ForecastRun{
		ID:           uuid.NewString(),
		CreatedAt:    now,
		UpdatedAt:    now,
		BusinessUnit: req.BusinessUnit,
		Options:      req.Options,
		State:        types.RunIdle,
	}
	for _, g := range req.Groups {
		run.Generated = append(run.Generated, &types.PlanningGroupForecast{
			PlanningGroup: g.PlanningGroup,
			Queue:         g.Queue,
			Campaign:      g.Campaign,
			Metadata:      types.GroupMetadata{NumContacts: g.NumContacts},
		})
	}
	s.Runs.Put(run)

	// Generation outlives the request. WithoutCancel keeps the request ID
	// for log correlation while detaching from the client's lifetime.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), generateTimeout)
	go func() {
		defer cancel()
		if err := s.Forecasts.Generate(ctx, run); err != nil {
			s.Logger.Error("background generation failed",
				"run_id", run.ID,
				"error", err,
			)
		}
	}()

	// Group statuses are settled during classification; at creation every
	// group is pending. Built from the request so the response never reads
	// state the generation goroutine is about to mutate.
	groups := make([]map[string]string, len(req.Groups))
	for i, g := range req.Groups {
		groups[i] = map[string]string{
			"planningGroupId": g.PlanningGroup.ID,
			"status":          "pending",
		}
	}

	JSON(w, r, http.StatusAccepted, APIResponse{Data: map[string]any{
		"run":    summarize(run),
		"groups": groups,
	}})
}

// HandleListRuns returns summaries of all runs, newest first.
func (s *Server) HandleListRuns(w http.ResponseWriter, r *http.Request) {
	runs := s.Runs.List()
	summaries := make([]runSummary, len(runs))
	for i, run := range runs {
		summaries[i] = summarize(run)
	}
	JSON(w, r, http.StatusOK, APIResponse{Data: summaries})
}

// HandleGetRun returns the run. While generation is in flight only the
// summary is returned; once the run is terminal the full run, planning
// groups included, is safe to serve.
func (s *Server) HandleGetRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.Runs.Get(chi.URLParam(r, "runID"))
	if err != nil {
		Error(w, r, err)
		return
	}

	state, _ := run.Status()
	if !state.Terminal() {
		JSON(w, r, http.StatusOK, APIResponse{Data: summarize(run)})
		return
	}

	run.RLock()
	defer run.RUnlock()
	JSON(w, r, http.StatusOK, APIResponse{Data: run})
}

// HandleGetRunGroup returns one planning group's forecast from a ready
// run. The variant query parameter selects the pristine generated output
// or the working modified copy; modified is the default.
func (s *Server) HandleGetRunGroup(w http.ResponseWriter, r *http.Request) {
	run, err := s.Runs.Get(chi.URLParam(r, "runID"))
	if err != nil {
		Error(w, r, err)
		return
	}

	state, _ := run.Status()
	if state != types.RunReady {
		Error(w, r, types.NewAppError(types.ErrCodeRunNotReady,
			"run is not ready", nil).WithDetail("state", string(state)))
		return
	}

	run.RLock()
	defer run.RUnlock()
	groupID := chi.URLParam(r, "groupID")
	var group *types.PlanningGroupForecast
	switch variant := r.URL.Query().Get("variant"); variant {
	case "", "modified":
		group = run.ModifiedGroup(groupID)
	case "generated":
		group = run.GeneratedGroup(groupID)
	default:
		Error(w, r, types.NewAppError(types.ErrCodeValidationFailed,
			"variant must be generated or modified", nil).WithDetail("variant", variant))
		return
	}
	if group == nil {
		Error(w, r, types.NewAppError(types.ErrCodeRunGroupNotFound,
			"planning group not in run", nil).WithDetail("planningGroupId", groupID))
		return
	}
	JSON(w, r, http.StatusOK, APIResponse{Data: group})
}

// HandleModifyRun applies a curve modification to the run's working copy.
// The run's write lock serializes concurrent modification requests.
func (s *Server) HandleModifyRun(w http.ResponseWriter, r *http.Request) {
	var req curve.Request
	if err := DecodeJSON(w, r, &req); err != nil {
		Error(w, r, err)
		return
	}
	if err := s.Validator.ValidateStruct(req); err != nil {
		Error(w, r, err)
		return
	}

	run, err := s.Runs.Get(chi.URLParam(r, "runID"))
	if err != nil {
		Error(w, r, err)
		return
	}

	run.Lock()
	err = s.Modifier.Apply(run, req)
	var group *types.PlanningGroupForecast
	if err == nil {
		// Clone inside the lock so a concurrent modification cannot
		// mutate the matrices while the response is being written.
		group = run.ModifiedGroup(req.PlanningGroupID).Clone()
	}
	run.Unlock()
	if err != nil {
		Error(w, r, err)
		return
	}
	JSON(w, r, http.StatusOK, APIResponse{Data: group})
}

// operationNotification is the payload the platform posts when an
// asynchronous operation finishes.
type operationNotification struct {
	OperationID string `json:"operationId" validate:"required"`
	Status      string `json:"status" validate:"required,oneof=Complete Error"`
	ForecastID  string `json:"forecastId"`
	Message     string `json:"message"`
}

// HandleOperationNotification resolves a pending operation wait. Mounted
// only when a notification hub is configured.
func (s *Server) HandleOperationNotification(w http.ResponseWriter, r *http.Request) {
	var req operationNotification
	if err := DecodeJSON(w, r, &req); err != nil {
		Error(w, r, err)
		return
	}
	if err := s.Validator.ValidateStruct(req); err != nil {
		Error(w, r, err)
		return
	}

	if req.Status == "Complete" {
		s.Notifications.Complete(req.OperationID, req.ForecastID)
	} else {
		message := req.Message
		if message == "" {
			message = "inbound forecast generation failed"
		}
		s.Notifications.Fail(req.OperationID, message)
	}
	JSON(w, r, http.StatusAccepted, APIResponse{Data: map[string]string{"status": "accepted"}})
}

// HandleImportRun exports the run's working forecast to the platform as a
// short-term forecast import.
func (s *Server) HandleImportRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.Runs.Get(chi.URLParam(r, "runID"))
	if err != nil {
		Error(w, r, err)
		return
	}

	run.RLock()
	resp, err := s.Forecasts.Export(r.Context(), run)
	run.RUnlock()
	if err != nil {
		Error(w, r, err)
		return
	}
	JSON(w, r, http.StatusOK, APIResponse{Data: resp})
}
