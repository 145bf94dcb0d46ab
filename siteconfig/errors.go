package siteconfig

import (
	"fmt"
	"strings"
)

// FindingsError is returned by Err for hosts that treat findings as fatal
type FindingsError struct {
	findings []Finding
}

// Error implements the error interface.
func (e *FindingsError) Error() string {
	paths := make([]string, len(e.findings))
	for i, f := range e.findings {
		paths[i] = f.Path
	}
	return fmt.Sprintf("site config validation failed: invalid fields [%s]", strings.Join(paths, ", "))
}

// Findings returns a copy of the findings.
func (e *FindingsError) Findings() []Finding {
	out := make([]Finding, len(e.findings))
	copy(out, e.findings)
	return out
}

// Err converts findings into an error, nil when there are none
func Err(findings []Finding) error {
	if len(findings) == 0 {
		return nil
	}
	return &FindingsError{findings: append([]Finding(nil), findings...)}
}
