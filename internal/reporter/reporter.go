// Package reporter renders pktfmt diagnostics and arbitrates how many of
// them a compilation run gets to see, mirroring the ErrorReporter/Handler
// split in protocompile's reporter package.
package reporter

import (
	"errors"
	"sync"
)

// PosError is the shape every compiler-stage error implements: a message,
// the byte-offset span that produced it, and a stage-specific kind string.
// token.Error, ast.Error and parser.Error all satisfy this structurally.
type PosError interface {
	error
	Pos() (start, end int)
	Kind() string
}

// ErrInvalidSource is the error compiler.Compile returns once it has
// rendered the diagnostic for an invalid source.
var ErrInvalidSource = errors.New("pktfmt: invalid source")

// ErrorReporter decides what to do with a reported error: return non-nil to
// abort immediately with that error, or nil to let compilation continue
// looking for more diagnostics (pktfmt's own Handler never does this, per
// spec.md §7, but the hook mirrors the teacher's design for testability).
type ErrorReporter func(PosError) error

// Handler accumulates the first error reported to it and refuses all
// subsequent ones, per spec.md §7: "Every error is recoverable at the unit
// level only: the compiler emits the first diagnostic... and returns
// non-zero."
type Handler struct {
	report ErrorReporter

	mu  sync.Mutex
	err error
}

// NewHandler builds a Handler. A nil report function uses the default
// first-error-wins behavior.
func NewHandler(report ErrorReporter) *Handler {
	return &Handler{report: report}
}

// HandleError records err as the terminal error for this compilation unit,
// unless one was already recorded (in which case the first one wins).
func (h *Handler) HandleError(err PosError) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.err != nil {
		return h.err
	}
	if h.report != nil {
		if custom := h.report(err); custom != nil {
			h.err = custom
			return custom
		}
	}
	h.err = err
	return err
}

// Error returns the first error recorded, or nil.
func (h *Handler) Error() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.err
}
