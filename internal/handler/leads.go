package handler

import (
	"net/http"

	"vendaflow/internal/apierror"
	"vendaflow/internal/dto"
	"vendaflow/internal/middleware"
	"vendaflow/internal/service"

	"github.com/gin-gonic/gin"
)

type LeadsHandler struct{ svc service.LeadService }

func NewLeadsHandler(svc service.LeadService) *LeadsHandler { return &LeadsHandler{svc: svc} }

// Create godoc
// @Summary      Criar lead
// @Description  Cadastra um lead; o telefone é normalizado e deduplicado por variante (com/sem DDI 55 e nono dígito).
// @Tags         leads
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CreateLeadRequest true "Dados do lead"
// @Success      201  {object} dto.LeadResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/leads [post]
func (h *LeadsHandler) Create(c *gin.Context) {
	var req dto.CreateLeadRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), middleware.GetOrgID(c), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// List godoc
// @Summary      Listar leads
// @Tags         leads
// @Produce      json
// @Security     BearerAuth
// @Param        search query string false "Nome ou telefone"
// @Param        region query string false "Região"
// @Param        source query string false "Origem"
// @Param        seller_user_id query string false "UUID do vendedor"
// @Param        page   query int    false "Página (default 1)"
// @Param        limit  query int    false "Registros por página (default 50)"
// @Success      200 {object} dto.LeadListResponse
// @Router       /v1/leads [get]
func (h *LeadsHandler) List(c *gin.Context) {
	var filter dto.LeadFilter
	if !bindQueryAndValidate(c, &filter) {
		return
	}
	resp, err := h.svc.List(c.Request.Context(), middleware.GetOrgID(c), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Erro ao listar leads"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get godoc
// @Summary      Detalhar lead
// @Tags         leads
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID do lead"
// @Success      200 {object} dto.LeadResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/leads/{id} [get]
func (h *LeadsHandler) Get(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), middleware.GetOrgID(c), id)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Update godoc
// @Summary      Atualizar lead
// @Tags         leads
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string true "UUID do lead"
// @Param        body body dto.UpdateLeadRequest true "Campos a atualizar"
// @Success      200  {object} dto.LeadResponse
// @Router       /v1/leads/{id} [put]
func (h *LeadsHandler) Update(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateLeadRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), middleware.GetOrgID(c), id, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SaveAnswers godoc
// @Summary      Registrar respostas de qualificação
// @Description  Grava as respostas do lead às perguntas-chave de um produto.
// @Tags         leads
// @Accept       json
// @Security     BearerAuth
// @Param        id   path string true "UUID do lead"
// @Param        body body dto.SaveAnswersRequest true "Respostas"
// @Success      204
// @Router       /v1/leads/{id}/answers [post]
func (h *LeadsHandler) SaveAnswers(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req dto.SaveAnswersRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.SaveAnswers(c.Request.Context(), middleware.GetOrgID(c), id, req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.Status(http.StatusNoContent)
}
