package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/edkuperman/pairsort/internal/dag"
	apperrors "github.com/edkuperman/pairsort/internal/errors"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// pair is one wire record. Pointers let validation tell a missing or null
// field from an empty name, which is a legal node.
type pair struct {
	From *string `json:"from" validate:"required"`
	To   *string `json:"to" validate:"required"`
}

type submitRequest struct {
	Pairs []pair `json:"pairs" validate:"required,dive"`
}

func (req submitRequest) edges() []dag.Edge {
	out := make([]dag.Edge, len(req.Pairs))
	for i, p := range req.Pairs {
		out[i] = dag.Edge{From: *p.From, To: *p.To}
	}
	return out
}

// DecodePairs reads a {"pairs":[{"from":..,"to":..}]} document. The pairs
// list must be present but may be empty.
func DecodePairs(r io.Reader) ([]dag.Edge, error) {
	var req submitRequest
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, apperrors.New(apperrors.ErrCodePayloadTooLarge, "request body over %d bytes", tooLarge.Limit)
		}
		return nil, apperrors.New(apperrors.ErrCodeInvalidInput, "decode body: %v", err)
	}
	if err := validate.Struct(req); err != nil {
		return nil, validationError(err)
	}
	return req.edges(), nil
}

// validationError flattens validator output into one coded error naming
// every offending field, e.g. "pairs[1].to is required".
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.New(apperrors.ErrCodeInvalidInput, "validate body: %v", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Namespace()
		if _, rest, ok := strings.Cut(field, "."); ok {
			field = rest
		}
		msgs = append(msgs, fmt.Sprintf("%s is %s", field, fe.Tag()))
	}
	return apperrors.New(apperrors.ErrCodeInvalidInput, "%s", strings.Join(msgs, "; "))
}

// SortedResponse is the body for an ordered graph.
type SortedResponse struct {
	Sorted []string `json:"sorted"`
}

// CycleResponse is the body for a graph with a cycle.
type CycleResponse struct {
	Message          string   `json:"message"`
	Error            string   `json:"error"`
	MostOutgoing     string   `json:"most_outgoing"`
	LeastIncoming    string   `json:"least_incoming"`
	MostOutgoingCnt  int      `json:"most_outgoing_cnt"`
	LeastIncomingCnt int      `json:"least_incoming_cnt"`
	Unresolved       []string `json:"unresolved"`
}

// ResponseBody converts a sort result into its wire body.
func ResponseBody(res dag.Result) (any, error) {
	switch res := res.(type) {
	case dag.Ordering:
		sorted := []string(res)
		if sorted == nil {
			sorted = []string{}
		}
		return SortedResponse{Sorted: sorted}, nil
	case dag.Diagnostic:
		unresolved := res.Unresolved
		if unresolved == nil {
			unresolved = []string{}
		}
		return CycleResponse{
			Message:          res.Message(),
			Error:            "cycle detected",
			MostOutgoing:     res.MostOutgoing,
			LeastIncoming:    res.LeastIncoming,
			MostOutgoingCnt:  res.MostOutgoingCount,
			LeastIncomingCnt: res.LeastIncomingCount,
			Unresolved:       unresolved,
		}, nil
	default:
		return nil, apperrors.New(apperrors.ErrCodeInternal, "unexpected result %T", res)
	}
}
