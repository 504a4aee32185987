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

// OrganizationsHandler manages organization endpoints.
type OrganizationsHandler struct {
	service *service.OrganizationService
}

// NewOrganizationsHandler constructs handler.
func NewOrganizationsHandler(orgService *service.OrganizationService) *OrganizationsHandler {
	return &OrganizationsHandler{service: orgService}
}

// CreateOrganization POST /organizations.
func (h *OrganizationsHandler) CreateOrganization(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateOrganizationRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	org, err := h.service.Create(c.Context(), principal.User, req.Name, req.MemberIDs)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": organizationResponse(org)})
}

// UpdateOrganization PATCH /organizations/:id.
func (h *OrganizationsHandler) UpdateOrganization(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.UpdateOrganizationRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	org, err := h.service.Update(c.Context(), principal.User, c.Params("id"), service.OrganizationUpdate{
		Name:      req.Name,
		MemberIDs: req.MemberIDs,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": organizationResponse(org)})
}

// DeleteOrganization DELETE /organizations/:id.
func (h *OrganizationsHandler) DeleteOrganization(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.service.Delete(c.Context(), principal.User, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"message": "organization deleted"}})
}

// ListOrganizations GET /organizations.
func (h *OrganizationsHandler) ListOrganizations(c *fiber.Ctx) error {
	orgs, err := h.service.List(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": organizationResponses(orgs)})
}

// ListUserOrganizations GET /users/organizations.
func (h *OrganizationsHandler) ListUserOrganizations(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	orgs, err := h.service.ListForUser(c.Context(), principal.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": organizationResponses(orgs)})
}

func organizationResponse(org *domain.Organization) dto.OrganizationResponse {
	members := org.MemberIDs
	if members == nil {
		members = []string{}
	}
	return dto.OrganizationResponse{
		ID:        org.ID,
		Name:      org.Name,
		FounderID: org.FounderID,
		MemberIDs: members,
		CreatedAt: org.CreatedAt,
		UpdatedAt: org.UpdatedAt,
	}
}

func organizationResponses(orgs []domain.Organization) []dto.OrganizationResponse {
	items := make([]dto.OrganizationResponse, 0, len(orgs))
	for i := range orgs {
		items = append(items, organizationResponse(&orgs[i]))
	}
	return items
}
