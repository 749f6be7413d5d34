// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "fmt"

// =============================================================================
// STATUS TYPE
// =============================================================================

// Status is the readiness of the model as reported by the server.
type Status string

const (
	StatusReady         Status = "ready"
	StatusNotConfigured Status = "not_configured"
	StatusNotLoaded     Status = "not_loaded"
	StatusError         Status = "error"
)

// ConfigureHint is the tooltip shown when no model has been configured.
const ConfigureHint = "Press ctrl+o to configure model"

// ParseStatus maps a status string from the server onto a Status.
// Anything unrecognized is treated as an error.
func ParseStatus(s string) Status {
	switch Status(s) {
	case StatusReady, StatusNotConfigured, StatusNotLoaded:
		return Status(s)
	default:
		return StatusError
	}
}

// Label returns the short indicator text for the status.
func (s Status) Label() string {
	switch s {
	case StatusReady:
		return "Ready"
	case StatusNotConfigured:
		return "Not Configured"
	case StatusNotLoaded:
		return "Not Loaded"
	default:
		return "Error"
	}
}

// Class returns the style class name for the status.
func (s Status) Class() string {
	switch s {
	case StatusReady:
		return "status-ready"
	case StatusNotConfigured:
		return "status-not-configured"
	case StatusNotLoaded:
		return "status-not-loaded"
	default:
		return "status-error"
	}
}

// =============================================================================
// STATUS REPORT
// =============================================================================

// StatusReport is one fresh status check. It is never persisted.
type StatusReport struct {
	Status      Status
	ModelLoaded bool

	// AvgSpeed is the server's average generation speed in tokens/s,
	// zero when the server did not report performance.
	AvgSpeed float64

	Detail string
}

// Indicator describes how a status is displayed.
type Indicator struct {
	Status  Status
	Label   string
	Class   string
	Tooltip string
}

// Indicator builds the display indicator for the report.
func (r StatusReport) Indicator() Indicator {
	ind := Indicator{
		Status: r.Status,
		Label:  r.Status.Label(),
		Class:  r.Status.Class(),
	}

	switch r.Status {
	case StatusReady:
		ind.Tooltip = fmt.Sprintf("Performance: %.2f tokens/s", r.AvgSpeed)
	case StatusNotConfigured:
		ind.Tooltip = ConfigureHint
	case StatusNotLoaded:
		ind.Tooltip = "Model configuration error"
	default:
		ind.Tooltip = r.Detail
		if ind.Tooltip == "" {
			ind.Tooltip = "Unknown error"
		}
	}
	return ind
}

// NeedsConfiguration reports whether the configuration panel should open.
func (r StatusReport) NeedsConfiguration() bool {
	return r.Status != StatusReady
}
