package backend

import (
	"errors"
	"net/http"
	"strings"

	"github.com/christopherklint97/ponto/internal/records"
)

// EmptyMessage is the text the backend sends with a 400/404 when a period
// simply has no apontamentos.
const EmptyMessage = "Nenhum apontamento encontrado"

// Outcome tags a fetch so callers branch on it instead of on error text.
type Outcome int

const (
	OutcomeOK Outcome = iota
	OutcomeEmpty
	OutcomeFailure
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeEmpty:
		return "empty"
	default:
		return "failure"
	}
}

// Result is a tagged fetch result. Value is only meaningful for OutcomeOK;
// Err is only set for OutcomeFailure.
type Result[T any] struct {
	Outcome Outcome
	Value   T
	Err     error
}

func OK[T any](v T) Result[T] {
	return Result[T]{Outcome: OutcomeOK, Value: v}
}

func Empty[T any]() Result[T] {
	return Result[T]{Outcome: OutcomeEmpty}
}

func Failure[T any](err error) Result[T] {
	return Result[T]{Outcome: OutcomeFailure, Err: err}
}

// FromError builds the Result for a failed fetch.
func FromError[T any](err error) Result[T] {
	if Classify(err) == OutcomeEmpty {
		return Empty[T]()
	}
	return Failure[T](err)
}

// Unwrap returns the value, the zero value for an empty result, or the error.
func (r Result[T]) Unwrap() (T, error) {
	var zero T
	switch r.Outcome {
	case OutcomeOK:
		return r.Value, nil
	case OutcomeEmpty:
		return zero, nil
	default:
		if r.Err == nil {
			return zero, errors.New("backend fetch failed")
		}
		return zero, r.Err
	}
}

// Classify maps an error from the client to an Outcome. Only a 400 or 404
// carrying EmptyMessage, compared without case or accents, is a legitimate
// empty period.
func Classify(err error) Outcome {
	if err == nil {
		return OutcomeOK
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return OutcomeFailure
	}
	if apiErr.Status != http.StatusNotFound && apiErr.Status != http.StatusBadRequest {
		return OutcomeFailure
	}
	needle := records.FoldLabel(EmptyMessage)
	if strings.Contains(records.FoldLabel(apiErr.Message), needle) || strings.Contains(records.FoldLabel(apiErr.Body), needle) {
		return OutcomeEmpty
	}
	return OutcomeFailure
}
