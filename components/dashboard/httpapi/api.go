package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-dataview/components/chart"
	"github.com/goliatone/go-dataview/components/dashboard"
	"github.com/goliatone/go-dataview/components/dashboard/commands"
)

// Handlers exposes HTTP endpoints backed by shared commands.
type Handlers struct {
	Open    gocommand.Commander[commands.OpenSessionInput]
	Close   gocommand.Commander[commands.CloseSessionInput]
	Refresh gocommand.Commander[commands.RefreshSessionInput]
	Table   gocommand.Commander[commands.ApplyTableInput]
	Chart   gocommand.Commander[commands.ApplyChartInput]
	Ask     gocommand.Commander[commands.AskInput]
	Notify  gocommand.Commander[commands.NotifyViewInput]
}

type openPayload struct {
	Code          string         `json:"code"`
	Configuration map[string]any `json:"configuration,omitempty"`
}

type askPayload struct {
	Query string `json:"query"`
}

func (h *Handlers) HandleOpenSession(w http.ResponseWriter, r *http.Request, viewer dashboard.ViewerContext) {
	var payload openPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var result commands.OpenSessionResult
	input := commands.OpenSessionInput{
		Viewer:        viewer,
		Code:          payload.Code,
		Configuration: payload.Configuration,
		Result:        &result,
	}
	if err := h.Open.Execute(r.Context(), input); err != nil {
		http.Error(w, err.Error(), StatusFor(err))
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (h *Handlers) HandleCloseSession(w http.ResponseWriter, r *http.Request, sessionID string) {
	if err := h.Close.Execute(r.Context(), commands.CloseSessionInput{SessionID: sessionID}); err != nil {
		http.Error(w, err.Error(), StatusFor(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) HandleRefreshSession(w http.ResponseWriter, r *http.Request, sessionID string) {
	if err := h.Refresh.Execute(r.Context(), commands.RefreshSessionInput{SessionID: sessionID}); err != nil {
		http.Error(w, err.Error(), StatusFor(err))
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (h *Handlers) HandleTableCommand(w http.ResponseWriter, r *http.Request, sessionID string) {
	var payload dashboard.TableCommand
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.Table.Execute(r.Context(), commands.ApplyTableInput{SessionID: sessionID, Command: payload}); err != nil {
		http.Error(w, err.Error(), StatusFor(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) HandleChartCommand(w http.ResponseWriter, r *http.Request, sessionID string) {
	var payload dashboard.ChartCommand
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.Chart.Execute(r.Context(), commands.ApplyChartInput{SessionID: sessionID, Command: payload}); err != nil {
		http.Error(w, err.Error(), StatusFor(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) HandleAsk(w http.ResponseWriter, r *http.Request, sessionID string) {
	var payload askPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var reply chart.Message
	input := commands.AskInput{SessionID: sessionID, Query: payload.Query, Reply: &reply}
	if err := h.Ask.Execute(r.Context(), input); err != nil {
		http.Error(w, err.Error(), StatusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

func (h *Handlers) HandleNotify(w http.ResponseWriter, r *http.Request) {
	var payload commands.NotifyViewInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.Notify.Execute(r.Context(), payload); err != nil {
		http.Error(w, err.Error(), StatusFor(err))
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// StatusFor maps service errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, dashboard.ErrUnknownSession), errors.Is(err, dashboard.ErrUnknownWidget):
		return http.StatusNotFound
	case errors.Is(err, dashboard.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, dashboard.ErrWrongKind):
		return http.StatusConflict
	case errors.Is(err, chart.ErrEmptyQuery):
		return http.StatusBadRequest
	case errors.Is(err, dashboard.ErrNoSource):
		return http.StatusBadGateway
	default:
		return http.StatusUnprocessableEntity
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
