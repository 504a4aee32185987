package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/cybershield/threat-exchange/internal/api/dto"
	"github.com/cybershield/threat-exchange/internal/auth"
	"github.com/cybershield/threat-exchange/internal/domain"
	"github.com/cybershield/threat-exchange/internal/service"
	apperrors "github.com/cybershield/threat-exchange/pkg/util"
)

// ReportsHandler manages report lifecycle endpoints.
type ReportsHandler struct {
	service *service.ReportService
}

// NewReportsHandler constructs handler.
func NewReportsHandler(reportService *service.ReportService) *ReportsHandler {
	return &ReportsHandler{service: reportService}
}

// CreateReport POST /reports.
func (h *ReportsHandler) CreateReport(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateReportRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	messages := []string{}
	if req.OrganizationID == "" {
		messages = append(messages, "organization_id required")
	}
	if req.Title == "" {
		messages = append(messages, "title required")
	}
	if len(messages) > 0 {
		return apperrors.NewValidationErrors(messages)
	}

	report, err := h.service.Create(c.Context(), principal.User, service.ReportCreateInput{
		OrganizationID: req.OrganizationID,
		Title:          req.Title,
		Description:    req.Description,
		TypeOfThreat:   req.TypeOfThreat,
		Severity:       req.Severity,
		Status:         req.Status,
		STIX:           req.STIX,
		RiskScore:      req.RiskScore,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": reportResponse(report)})
}

// UpdateReport PATCH /reports/:id.
func (h *ReportsHandler) UpdateReport(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.UpdateReportRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	report, err := h.service.Update(c.Context(), principal.User, c.Params("id"), service.ReportUpdateInput{
		Title:        req.Title,
		Description:  req.Description,
		TypeOfThreat: req.TypeOfThreat,
		Severity:     req.Severity,
		Status:       req.Status,
		STIX:         req.STIX,
		RiskScore:    req.RiskScore,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": reportResponse(report)})
}

// DeleteReport DELETE /reports/:id.
func (h *ReportsHandler) DeleteReport(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.service.Delete(c.Context(), principal.User, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"message": "report deleted"}})
}

// ListUserReports GET /reports/user.
func (h *ReportsHandler) ListUserReports(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	reports, err := h.service.ListForUser(c.Context(), principal.User)
	if err != nil {
		return err
	}
	items := make([]dto.ReportResponse, 0, len(reports))
	for i := range reports {
		items = append(items, reportResponse(&reports[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetReport GET /reports/:id.
func (h *ReportsHandler) GetReport(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	report, err := h.service.Get(c.Context(), principal.User, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": reportResponse(report)})
}

// SubmitReport POST /reports/:id/submit.
func (h *ReportsHandler) SubmitReport(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	report, err := h.service.Submit(c.Context(), principal.User, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": reportResponse(report)})
}

// ShareReport POST /reports/:id/:sourceOrgId/share/:targetOrgId.
func (h *ReportsHandler) ShareReport(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	report, err := h.service.Share(c.Context(), principal.User,
		c.Params("id"), c.Params("sourceOrgId"), c.Params("targetOrgId"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": reportResponse(report)})
}

// RevokeReport POST /reports/:id/:sourceOrgId/revoke/:targetOrgId.
func (h *ReportsHandler) RevokeReport(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	report, err := h.service.Revoke(c.Context(), principal.User,
		c.Params("id"), c.Params("sourceOrgId"), c.Params("targetOrgId"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": reportResponse(report)})
}

// BroadcastReport POST /reports/:id/broadcast.
func (h *ReportsHandler) BroadcastReport(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	report, err := h.service.Broadcast(c.Context(), principal.User, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"message": "report broadcast to network",
		"report":  reportResponse(report),
	}})
}

// RemoveReportFromNetwork POST /reports/:id/remove-from-network.
func (h *ReportsHandler) RemoveReportFromNetwork(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	report, err := h.service.RemoveFromNetwork(c.Context(), principal.User, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"message": "report removed from network",
		"report":  reportResponse(report),
	}})
}

// ProposeResponseAction POST /reports/:id/response-actions.
func (h *ReportsHandler) ProposeResponseAction(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.ProposeResponseActionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	action, err := h.service.ProposeResponseAction(c.Context(), principal.User, c.Params("id"), req.Description)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": responseActionResponse(action)})
}

// ListResponseActions GET /reports/:id/response-actions.
func (h *ReportsHandler) ListResponseActions(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	actions, err := h.service.ListResponseActions(c.Context(), principal.User, c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.ResponseActionResponse, 0, len(actions))
	for i := range actions {
		items = append(items, responseActionResponse(&actions[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

func reportResponse(report *domain.Report) dto.ReportResponse {
	shared := report.SharedWith
	if shared == nil {
		shared = []string{}
	}
	return dto.ReportResponse{
		ID:             report.ID,
		Title:          report.Title,
		Description:    report.Description,
		TypeOfThreat:   report.TypeOfThreat,
		Severity:       report.Severity,
		Status:         report.Status,
		Submitted:      report.Submitted,
		SubmittedAt:    report.SubmittedAt,
		STIX:           report.STIX,
		BlockchainHash: report.BlockchainHash,
		RiskScore:      report.RiskScore,
		AuthorID:       report.AuthorID,
		OrganizationID: report.OrganizationID,
		SharedWith:     shared,
		NetworkStatus:  report.NetworkStatus,
		Version:        report.Version,
		CreatedAt:      report.CreatedAt,
		UpdatedAt:      report.UpdatedAt,
	}
}

func responseActionResponse(action *domain.ResponseAction) dto.ResponseActionResponse {
	return dto.ResponseActionResponse{
		ID:           action.ID,
		ReportID:     action.ReportID,
		Description:  action.Description,
		ProposedByID: action.ProposedByID,
		CreatedAt:    action.CreatedAt,
	}
}
