package handler

import (
	"net/http"

	"vendaflow/internal/apierror"
	"vendaflow/internal/dto"
	"vendaflow/internal/middleware"
	"vendaflow/internal/service"

	"github.com/gin-gonic/gin"
)

type PaymentMethodsHandler struct{ svc service.PaymentMethodService }

func NewPaymentMethodsHandler(svc service.PaymentMethodService) *PaymentMethodsHandler {
	return &PaymentMethodsHandler{svc: svc}
}

// Create godoc
// @Summary      Criar método de pagamento
// @Description  Cadastra o método com sua tabela de taxas por tipo de transação.
// @Tags         payment-methods
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CreatePaymentMethodRequest true "Método e taxas"
// @Success      201  {object} dto.PaymentMethodResponse
// @Router       /v1/payment-methods [post]
func (h *PaymentMethodsHandler) Create(c *gin.Context) {
	var req dto.CreatePaymentMethodRequest
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
// @Summary      Listar métodos de pagamento
// @Tags         payment-methods
// @Produce      json
// @Security     BearerAuth
// @Param        include_inactive query bool false "Incluir desativados"
// @Success      200 {array} dto.PaymentMethodResponse
// @Router       /v1/payment-methods [get]
func (h *PaymentMethodsHandler) List(c *gin.Context) {
	includeInactive := c.Query("include_inactive") == "true"
	resp, err := h.svc.List(c.Request.Context(), middleware.GetOrgID(c), includeInactive)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Erro ao listar métodos de pagamento"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get godoc
// @Summary      Detalhar método de pagamento
// @Tags         payment-methods
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID do método"
// @Success      200 {object} dto.PaymentMethodResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/payment-methods/{id} [get]
func (h *PaymentMethodsHandler) Get(c *gin.Context) {
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
// @Summary      Atualizar método de pagamento
// @Description  Atualiza dados e substitui a tabela de taxas.
// @Tags         payment-methods
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string true "UUID do método"
// @Param        body body dto.UpdatePaymentMethodRequest true "Campos a atualizar"
// @Success      200  {object} dto.PaymentMethodResponse
// @Router       /v1/payment-methods/{id} [put]
func (h *PaymentMethodsHandler) Update(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdatePaymentMethodRequest
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

// Deactivate godoc
// @Summary      Desativar método de pagamento
// @Tags         payment-methods
// @Security     BearerAuth
// @Param        id path string true "UUID do método"
// @Success      204
// @Router       /v1/payment-methods/{id} [delete]
func (h *PaymentMethodsHandler) Deactivate(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.SetActive(c.Request.Context(), middleware.GetOrgID(c), id, false); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.Status(http.StatusNoContent)
}

// Reactivate godoc
// @Summary      Reativar método de pagamento
// @Tags         payment-methods
// @Security     BearerAuth
// @Param        id path string true "UUID do método"
// @Success      204
// @Router       /v1/payment-methods/{id}/reactivate [post]
func (h *PaymentMethodsHandler) Reactivate(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.SetActive(c.Request.Context(), middleware.GetOrgID(c), id, true); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.Status(http.StatusNoContent)
}
