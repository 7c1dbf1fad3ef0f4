package analysis

import (
	"errors"
	"fmt"
	"strings"
)

// Severity separates blocking problems from suspicious ones.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Code identifies the kind of problem found.
type Code string

const (
	CodeDuplicateID      Code = "duplicate_id"
	CodeMissingID        Code = "missing_id"
	CodeMissingStart     Code = "missing_start"
	CodeInvalidTarget    Code = "invalid_target"
	CodeUnresolvedTarget Code = "unresolved_target"
	CodeUnreachable      Code = "unreachable_node"
	CodeDeadEnd          Code = "dead_end"
)

// ErrInvalidGraph is wrapped by Report.Err when the report has errors.
var ErrInvalidGraph = errors.New("story graph is invalid")

// Issue is a single finding. Index is the node position in the authoring
// array and Choice the choice position, or -1 when not applicable.
type Issue struct {
	Severity Severity `json:"severity"`
	Code     Code     `json:"code"`
	NodeID   string   `json:"nodeId,omitempty"`
	Index    int      `json:"index"`
	Choice   int      `json:"choice"`
	Message  string   `json:"message"`
}

func (i Issue) String() string {
	return fmt.Sprintf("[%s] %s: %s", i.Severity, i.Code, i.Message)
}

// Report groups the findings of Validate.
type Report struct {
	Errors   []Issue `json:"errors"`
	Warnings []Issue `json:"warnings"`
}

// OK reports whether there are no blocking errors.
func (r *Report) OK() bool { return len(r.Errors) == 0 }

// Err returns nil when OK, otherwise an error listing every blocking issue.
func (r *Report) Err() error {
	if r.OK() {
		return nil
	}
	lines := make([]string, 0, len(r.Errors))
	for _, is := range r.Errors {
		lines = append(lines, is.Message)
	}
	return fmt.Errorf("%w: found %d errors:\n- %s", ErrInvalidGraph, len(r.Errors), strings.Join(lines, "\n- "))
}

func (r *Report) add(issues []Issue) {
	for _, is := range issues {
		if is.Severity == SeverityError {
			r.Errors = append(r.Errors, is)
		} else {
			r.Warnings = append(r.Warnings, is)
		}
	}
}
