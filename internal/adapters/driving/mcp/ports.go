package mcp

import (
	"github.com/siddhantttt/context-iq/internal/core/ports/driving"
)

// Ports aggregates the driving ports the MCP server needs.
type Ports struct {
	// Retrieval answers searches and questions.
	Retrieval driving.RetrievalService

	// Documents lists ingested documents. Optional.
	Documents driving.DocumentService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Retrieval == nil {
		return ErrMissingRetrievalService
	}
	return nil
}
