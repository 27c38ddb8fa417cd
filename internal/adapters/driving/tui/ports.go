// Package tui provides an interactive chat over the ingested documents.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/siddhantttt/context-iq/internal/core/ports/driving"
)

// Ports aggregates the driving ports the TUI needs.
type Ports struct {
	// Retrieval answers questions.
	Retrieval driving.RetrievalService

	// Documents lists documents for the filter picker. Optional.
	Documents driving.DocumentService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Retrieval == nil {
		return ErrMissingRetrievalService
	}
	return nil
}
