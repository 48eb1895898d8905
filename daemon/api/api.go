package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/caio-ishikawa/bountyboard/daemon/notify"
	"github.com/caio-ishikawa/bountyboard/daemon/store"
	"github.com/caio-ishikawa/bountyboard/shared/models"
	"github.com/caio-ishikawa/bountyboard/shared/recon"
	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const notificationBuffer = 100

type notification struct {
	vuln   models.Vulnerability
	target models.Target
}

type API struct {
	db            store.Database
	notifier      notify.Notifier
	notifications chan notification
	log           zerolog.Logger
}

func NewAPI(db store.Database, notifier notify.Notifier, logger zerolog.Logger) API {
	if notifier == nil {
		notifier = notify.Nop{}
	}

	return API{
		db:            db,
		notifier:      notifier,
		notifications: make(chan notification, notificationBuffer),
		log:           logger,
	}
}

func (a API) root(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		a.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	a.writeJSON(w, http.StatusOK, models.StatusResponse{
		Message: "Bug Bounty Recon Dashboard API",
		Status:  "running",
	})
}

func (a API) getStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		a.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	stats, err := a.db.GetStats()
	if err != nil {
		requestLogger(r).Error().Err(err).Msg("Failed to get stats")
		a.writeError(w, "Failed to get stats", http.StatusInternalServerError)
		return
	}

	a.writeJSON(w, http.StatusOK, stats)
}

func (a API) programs(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		a.getPrograms(w, r)
	case http.MethodPost:
		a.insertProgram(w, r)
	default:
		a.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (a API) getPrograms(w http.ResponseWriter, r *http.Request) {
	programs, err := a.db.GetAllPrograms()
	if err != nil {
		requestLogger(r).Error().Err(err).Msg("Failed to get programs")
		a.writeError(w, "Failed to get programs", http.StatusInternalServerError)
		return
	}

	a.writeJSON(w, http.StatusOK, programs)
}

func (a API) insertProgram(w http.ResponseWriter, r *http.Request) {
	var req models.ProgramCreate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		requestLogger(r).Warn().Err(err).Msg("Invalid program request")
		a.writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}

	if err := req.Validate(); err != nil {
		a.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	program, err := a.db.InsertProgram(req)
	if err != nil {
		requestLogger(r).Error().Err(err).Msg("Failed to insert program")
		a.writeError(w, "Failed to insert program", http.StatusInternalServerError)
		return
	}

	a.writeJSON(w, http.StatusCreated, program)
}

func (a API) programByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		a.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id, err := pathID(r)
	if err != nil {
		a.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	removed, err := a.db.RemoveProgram(id)
	if err != nil {
		requestLogger(r).Error().Err(err).Int64("program_id", id).Msg("Failed to delete program")
		a.writeError(w, "Failed to delete program", http.StatusInternalServerError)
		return
	}

	if !removed {
		a.writeError(w, fmt.Sprintf("Could not find program %v", id), http.StatusNotFound)
		return
	}

	a.writeJSON(w, http.StatusOK, models.MessageResponse{Message: "Program deleted successfully"})
}

func (a API) targets(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		a.getTargets(w, r)
	case http.MethodPost:
		a.insertTarget(w, r)
	default:
		a.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (a API) getTargets(w http.ResponseWriter, r *http.Request) {
	programID, err := queryID(r, "program_id")
	if err != nil {
		a.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	targets, err := a.db.GetTargets(programID)
	if err != nil {
		requestLogger(r).Error().Err(err).Msg("Failed to get targets")
		a.writeError(w, "Failed to get targets", http.StatusInternalServerError)
		return
	}

	a.writeJSON(w, http.StatusOK, targets)
}

func (a API) insertTarget(w http.ResponseWriter, r *http.Request) {
	var req models.TargetCreate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		requestLogger(r).Warn().Err(err).Msg("Invalid target request")
		a.writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}

	if err := req.Validate(); err != nil {
		a.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	domain, err := recon.NormalizeDomain(req.Domain)
	if err != nil {
		a.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	req.Domain = domain

	program, err := a.db.GetProgram(req.ProgramID)
	if err != nil {
		requestLogger(r).Error().Err(err).Msg("Failed to get program")
		a.writeError(w, "Failed to get program", http.StatusInternalServerError)
		return
	}

	if program == nil {
		a.writeError(w, fmt.Sprintf("Could not find program %v", req.ProgramID), http.StatusNotFound)
		return
	}

	target, err := a.db.InsertTarget(req)
	if err != nil {
		requestLogger(r).Error().Err(err).Msg("Failed to insert target")
		a.writeError(w, "Failed to insert target", http.StatusInternalServerError)
		return
	}

	a.writeJSON(w, http.StatusCreated, target)
}

func (a API) targetByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		a.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id, err := pathID(r)
	if err != nil {
		a.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	removed, err := a.db.RemoveTarget(id)
	if err != nil {
		requestLogger(r).Error().Err(err).Int64("target_id", id).Msg("Failed to delete target")
		a.writeError(w, "Failed to delete target", http.StatusInternalServerError)
		return
	}

	if !removed {
		a.writeError(w, fmt.Sprintf("Could not find target %v", id), http.StatusNotFound)
		return
	}

	a.writeJSON(w, http.StatusOK, models.MessageResponse{Message: "Target deleted successfully"})
}

func (a API) vulnerabilities(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		a.getVulnerabilities(w, r)
	case http.MethodPost:
		a.insertVulnerability(w, r)
	default:
		a.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (a API) getVulnerabilities(w http.ResponseWriter, r *http.Request) {
	targetID, err := queryID(r, "target_id")
	if err != nil {
		a.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	vulns, err := a.db.GetVulnerabilities(targetID)
	if err != nil {
		requestLogger(r).Error().Err(err).Msg("Failed to get vulnerabilities")
		a.writeError(w, "Failed to get vulnerabilities", http.StatusInternalServerError)
		return
	}

	a.writeJSON(w, http.StatusOK, vulns)
}

// decodeVulnerability reads and validates a vulnerability body and resolves its target.
// It writes the error response itself and returns ok=false on failure.
func (a API) decodeVulnerability(w http.ResponseWriter, r *http.Request) (models.VulnerabilityCreate, *models.Target, bool) {
	var req models.VulnerabilityCreate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		requestLogger(r).Warn().Err(err).Msg("Invalid vulnerability request")
		a.writeError(w, "Invalid request", http.StatusBadRequest)
		return req, nil, false
	}

	if err := req.Validate(); err != nil {
		a.writeError(w, err.Error(), http.StatusBadRequest)
		return req, nil, false
	}

	target, err := a.db.GetTarget(req.TargetID)
	if err != nil {
		requestLogger(r).Error().Err(err).Msg("Failed to get target")
		a.writeError(w, "Failed to get target", http.StatusInternalServerError)
		return req, nil, false
	}

	if target == nil {
		a.writeError(w, fmt.Sprintf("Could not find target %v", req.TargetID), http.StatusNotFound)
		return req, nil, false
	}

	return req, target, true
}

func (a API) insertVulnerability(w http.ResponseWriter, r *http.Request) {
	req, target, ok := a.decodeVulnerability(w, r)
	if !ok {
		return
	}

	vuln, err := a.db.InsertVulnerability(req)
	if err != nil {
		requestLogger(r).Error().Err(err).Msg("Failed to insert vulnerability")
		a.writeError(w, "Failed to insert vulnerability", http.StatusInternalServerError)
		return
	}

	select {
	case a.notifications <- notification{vuln: *vuln, target: *target}:
	default:
		requestLogger(r).Warn().Int64("vulnerability_id", vuln.ID).Msg("Notification queue full - SKIPPING")
	}

	a.writeJSON(w, http.StatusCreated, vuln)
}

func (a API) vulnerabilityByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodPut:
		a.updateVulnerability(w, r, id)
	case http.MethodDelete:
		a.deleteVulnerability(w, r, id)
	default:
		a.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (a API) updateVulnerability(w http.ResponseWriter, r *http.Request, id int64) {
	req, _, ok := a.decodeVulnerability(w, r)
	if !ok {
		return
	}

	vuln, err := a.db.UpdateVulnerability(id, req)
	if err != nil {
		requestLogger(r).Error().Err(err).Int64("vulnerability_id", id).Msg("Failed to update vulnerability")
		a.writeError(w, "Failed to update vulnerability", http.StatusInternalServerError)
		return
	}

	if vuln == nil {
		a.writeError(w, fmt.Sprintf("Could not find vulnerability %v", id), http.StatusNotFound)
		return
	}

	a.writeJSON(w, http.StatusOK, vuln)
}

func (a API) deleteVulnerability(w http.ResponseWriter, r *http.Request, id int64) {
	removed, err := a.db.RemoveVulnerability(id)
	if err != nil {
		requestLogger(r).Error().Err(err).Int64("vulnerability_id", id).Msg("Failed to delete vulnerability")
		a.writeError(w, "Failed to delete vulnerability", http.StatusInternalServerError)
		return
	}

	if !removed {
		a.writeError(w, fmt.Sprintf("Could not find vulnerability %v", id), http.StatusNotFound)
		return
	}

	a.writeJSON(w, http.StatusOK, models.MessageResponse{Message: "Vulnerability deleted successfully"})
}

func pathID(r *http.Request) (int64, error) {
	idStr := r.PathValue("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("Invalid id %s", idStr)
	}

	return id, nil
}

// queryID returns nil when the parameter is absent.
func queryID(r *http.Request, name string) (*int64, error) {
	idStr := r.URL.Query().Get(name)
	if idStr == "" {
		return nil, nil
	}

	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("Invalid %s value %s", name, idStr)
	}

	return &id, nil
}

func (a API) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		a.log.Error().Err(err).Msg("Failed to write response")
	}
}

func (a API) writeError(w http.ResponseWriter, errMsg string, status int) {
	a.writeJSON(w, status, models.ErrorResponse{Message: errMsg})
}

// Notify delivers queued notifications until ctx is done.
func (a API) Notify(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case n := <-a.notifications:
			sendCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			if err := a.notifier.VulnerabilityCreated(sendCtx, n.vuln, n.target); err != nil {
				a.log.Error().Err(err).Int64("vulnerability_id", n.vuln.ID).Msg("[NOTIFY] Failed to send notification")
			}
			cancel()
		}
	}
}

func (a API) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/{$}", a.root)
	mux.HandleFunc("/api/stats", a.getStats)
	mux.HandleFunc("/api/programs", a.programs)
	mux.HandleFunc("/api/programs/{id}", a.programByID)
	mux.HandleFunc("/api/targets", a.targets)
	mux.HandleFunc("/api/targets/{id}", a.targetByID)
	mux.HandleFunc("/api/vulnerabilities", a.vulnerabilities)
	mux.HandleFunc("/api/vulnerabilities/{id}", a.vulnerabilityByID)

	return a.logRequests(cors(mux))
}

// StartAPI serves until ctx is cancelled, then shuts down gracefully.
func (a API) StartAPI(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go a.Notify(ctx)

	errChan := make(chan error, 1)
	go func() {
		a.log.Info().Msgf("API listening on %s", addr)
		errChan <- srv.ListenAndServe()
	}()

	select {
	case err := <-errChan:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("Error serving API on %s: %w", addr, err)
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		a.log.Info().Msg("Shutting down API")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("Failed to shut down API: %w", err)
		}
		return nil
	}
}
