package dto

import (
	"time"

	"github.com/spec-kit/sla-service/internal/domain"
	"github.com/spec-kit/sla-service/internal/service"
	"github.com/spec-kit/sla-service/internal/sla"
)

// TicketSLAResponse is the on-demand verdict for one ticket.
type TicketSLAResponse struct {
	TicketID             string                `json:"ticket_id"`
	Priority             domain.TicketPriority `json:"priority"`
	Status               sla.Status            `json:"status"`
	ElapsedBusinessHours float64               `json:"elapsed_business_hours"`
	LimitHours           float64               `json:"limit_hours"`
	PercentUsed          float64               `json:"percent_used"`

	FirstResponseHours       float64    `json:"first_response_hours"`
	FirstResponseLimitHours  float64    `json:"first_response_limit_hours"`
	FirstResponseViolated    bool       `json:"first_response_violated"`
	FirstResponseApproximate bool       `json:"first_response_approximate,omitempty"`
	FirstResponseDeadline    *time.Time `json:"first_response_deadline,omitempty"`
	ResolutionDeadline       *time.Time `json:"resolution_deadline,omitempty"`

	UnknownPriority bool `json:"unknown_priority,omitempty"`
	MissingClosedAt bool `json:"missing_closed_at,omitempty"`
	ConfigFallback  bool `json:"config_fallback,omitempty"`
}

// SLAReportFromService maps the computed report onto the response shape.
func SLAReportFromService(report *service.TicketSLAReport) TicketSLAResponse {
	eval := report.Evaluation
	resp := TicketSLAResponse{
		TicketID:                 eval.TicketID,
		Priority:                 eval.Priority,
		Status:                   eval.Status,
		ElapsedBusinessHours:     eval.ElapsedBusinessHours,
		LimitHours:               eval.LimitHours,
		PercentUsed:              eval.PercentUsed,
		FirstResponseHours:       eval.FirstResponseHours,
		FirstResponseLimitHours:  eval.FirstResponseLimitHours,
		FirstResponseViolated:    eval.FirstResponseViolated,
		FirstResponseApproximate: eval.FirstResponseApproximate,
		UnknownPriority:          eval.UnknownPriority,
		MissingClosedAt:          eval.MissingClosedAt,
		ConfigFallback:           report.ConfigFallback,
	}
	if !report.FirstResponseDeadline.IsZero() {
		d := report.FirstResponseDeadline
		resp.FirstResponseDeadline = &d
	}
	if !report.ResolutionDeadline.IsZero() {
		d := report.ResolutionDeadline
		resp.ResolutionDeadline = &d
	}
	return resp
}
