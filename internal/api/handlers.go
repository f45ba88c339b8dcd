package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/edkuperman/pairsort/internal/dag"
	apperrors "github.com/edkuperman/pairsort/internal/errors"
	"github.com/edkuperman/pairsort/internal/scheduler"
)

// DAGChecker reports whether a stored DAG exists.
type DAGChecker interface {
	Exists(ctx context.Context, id string) (bool, error)
}

// Auditor runs a cycle audit over every stored DAG.
type Auditor interface {
	Run(ctx context.Context) ([]scheduler.Finding, error)
}

// Options configures Handlers. DAGs, Edges and Auditor are only needed for
// the database-backed routes and may be left nil.
type Options struct {
	Logger       *log.Logger
	MaxBodyBytes int64
	DAGs         DAGChecker
	Edges        dag.EdgeSource
	Auditor      Auditor
}

// Handlers wires up all API endpoints.
type Handlers struct {
	logger  *log.Logger
	maxBody int64
	dags    DAGChecker
	edges   dag.EdgeSource
	auditor Auditor
}

func NewHandlers(o Options) *Handlers {
	logger := o.Logger
	if logger == nil {
		logger = log.Default()
	}
	maxBody := o.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = 1 << 20
	}
	return &Handlers{
		logger:  logger,
		maxBody: maxBody,
		dags:    o.DAGs,
		edges:   o.Edges,
		auditor: o.Auditor,
	}
}

// storageEnabled reports whether the database-backed routes can be served.
func (h *Handlers) storageEnabled() bool {
	return h.dags != nil && h.edges != nil && h.auditor != nil
}

// Health check
func (h *Handlers) healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// ===== Sorting =====

func (h *Handlers) submitPairs(w http.ResponseWriter, r *http.Request) {
	edges, err := h.decodePairs(w, r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.logger.Debug("inputs", "request_id", requestIDFrom(r.Context()), "pairs", len(edges))
	h.writeResult(w, r, dag.Sort(dag.Build(edges)))
}

func (h *Handlers) decodePairs(w http.ResponseWriter, r *http.Request) ([]dag.Edge, error) {
	return DecodePairs(http.MaxBytesReader(w, r.Body, h.maxBody))
}

func (h *Handlers) writeResult(w http.ResponseWriter, r *http.Request, res dag.Result) {
	switch res := res.(type) {
	case dag.Ordering:
		h.logger.Debug("output", "request_id", requestIDFrom(r.Context()), "sorted", []string(res))
	case dag.Diagnostic:
		h.logger.Info("cycle detected",
			"request_id", requestIDFrom(r.Context()),
			"most_outgoing", res.MostOutgoing,
			"least_incoming", res.LeastIncoming)
	}
	body, err := ResponseBody(res)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, body)
}

// ===== Stored DAGs =====

func (h *Handlers) dagOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "dag_id")

	exists, err := h.dags.Exists(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if !exists {
		h.fail(w, r, apperrors.New(apperrors.ErrCodeNotFound, "dag %s not found", id))
		return
	}

	res, err := dag.Order(r.Context(), h.edges, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeResult(w, r, res)
}

// ===== Admin =====

// Scan all DAGs and perform DFS-based cycle detection for each.
func (h *Handlers) checkGlobalCycles(w http.ResponseWriter, r *http.Request) {
	findings, err := h.auditor.Run(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count":   len(findings),
		"results": findings,
	})
}

func (h *Handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	code := apperrors.HTTPStatus(err)
	if code >= http.StatusInternalServerError {
		h.logger.Error("request failed", "request_id", requestIDFrom(r.Context()), "err", err)
	}
	writeErr(w, code, err)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, err error) {
	body := map[string]string{"error": apperrors.UserMessage(err)}
	if c := apperrors.GetCode(err); c != "" {
		body["code"] = string(c)
	}
	writeJSON(w, code, body)
}
