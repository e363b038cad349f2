// Package tui provides the interactive contract chat for lexrag.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/lexrag/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the TUI.
type Ports struct {
	// Answer generates grounded answers. Required.
	Answer driving.AnswerService

	// Status reports index state for the header. Optional.
	Status driving.StatusService
}

// NewPorts creates a new Ports aggregate.
func NewPorts(answer driving.AnswerService, status driving.StatusService) *Ports {
	return &Ports{Answer: answer, Status: status}
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Answer == nil {
		return ErrMissingAnswerService
	}
	return nil
}
