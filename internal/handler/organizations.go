package handler

import (
	"net/http"

	"vendaflow/internal/apierror"
	"vendaflow/internal/dto"
	"vendaflow/internal/middleware"
	"vendaflow/internal/service"

	"github.com/gin-gonic/gin"
)

// OrganizationsHandler serves two surfaces: /admin/organizations for the
// super admin (tenant management) and /v1/organization for the tenant's own
// profile and onboarding.
type OrganizationsHandler struct{ svc service.OrganizationService }

func NewOrganizationsHandler(svc service.OrganizationService) *OrganizationsHandler {
	return &OrganizationsHandler{svc: svc}
}

// ── Super admin surface ──────────────────────────────────────────────────────

// Create godoc
// @Summary      Criar organização
// @Description  Provisiona um tenant com seu primeiro usuário admin.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CreateOrganizationRequest true "Dados da organização"
// @Success      201  {object} dto.OrganizationResponse
// @Failure      400  {object} apierror.APIError
// @Router       /admin/organizations [post]
func (h *OrganizationsHandler) Create(c *gin.Context) {
	var req dto.CreateOrganizationRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// List godoc
// @Summary      Listar organizações
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        include_inactive query bool false "Incluir suspensas"
// @Success      200 {array} dto.OrganizationResponse
// @Router       /admin/organizations [get]
func (h *OrganizationsHandler) List(c *gin.Context) {
	includeInactive := c.Query("include_inactive") == "true"
	resp, err := h.svc.List(c.Request.Context(), includeInactive)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Erro ao listar organizações"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Update godoc
// @Summary      Atualizar organização
// @Tags         admin
// @Security     BearerAuth
// @Param        id   path string true "UUID da organização"
// @Param        body body dto.UpdateOrganizationRequest true "Campos a atualizar"
// @Success      200  {object} dto.OrganizationResponse
// @Router       /admin/organizations/{id} [put]
func (h *OrganizationsHandler) Update(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateOrganizationRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Suspend godoc
// @Summary      Suspender organização
// @Description  Bloqueia o login de todos os usuários do tenant.
// @Tags         admin
// @Security     BearerAuth
// @Param        id path string true "UUID da organização"
// @Success      204
// @Router       /admin/organizations/{id}/suspend [post]
func (h *OrganizationsHandler) Suspend(c *gin.Context) {
	h.setActive(c, false)
}

// Reactivate godoc
// @Summary      Reativar organização
// @Tags         admin
// @Security     BearerAuth
// @Param        id path string true "UUID da organização"
// @Success      204
// @Router       /admin/organizations/{id}/reactivate [post]
func (h *OrganizationsHandler) Reactivate(c *gin.Context) {
	h.setActive(c, true)
}

func (h *OrganizationsHandler) setActive(c *gin.Context, active bool) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.SetActive(c.Request.Context(), id, active); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.Status(http.StatusNoContent)
}

// ── Tenant surface ───────────────────────────────────────────────────────────

// Me godoc
// @Summary      Dados da própria organização
// @Tags         organization
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.OrganizationResponse
// @Router       /v1/organization [get]
func (h *OrganizationsHandler) Me(c *gin.Context) {
	resp, err := h.svc.Get(c.Request.Context(), middleware.GetOrgID(c))
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SaveOnboarding godoc
// @Summary      Salvar respostas do onboarding
// @Tags         organization
// @Accept       json
// @Security     BearerAuth
// @Param        body body dto.OnboardingRequest true "Respostas do questionário"
// @Success      204
// @Router       /v1/organization/onboarding [post]
func (h *OrganizationsHandler) SaveOnboarding(c *gin.Context) {
	var req dto.OnboardingRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.SaveOnboarding(c.Request.Context(), middleware.GetOrgID(c), req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.Status(http.StatusNoContent)
}

// OnboardingStatus godoc
// @Summary      Status do onboarding
// @Tags         organization
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.OnboardingStatusResponse
// @Router       /v1/organization/onboarding [get]
func (h *OrganizationsHandler) OnboardingStatus(c *gin.Context) {
	resp, err := h.svc.OnboardingStatus(c.Request.Context(), middleware.GetOrgID(c))
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}
