package handler

import (
	"net/http"

	"vendaflow/internal/apierror"
	"vendaflow/internal/dto"
	"vendaflow/internal/infra"
	"vendaflow/internal/middleware"
	"vendaflow/internal/service"

	"github.com/gin-gonic/gin"
)

type SalesHandler struct {
	svc     service.SaleService
	storage *infra.Storage
}

func NewSalesHandler(svc service.SaleService, storage *infra.Storage) *SalesHandler {
	return &SalesHandler{svc: svc, storage: storage}
}

// Create godoc
// @Summary      Criar venda
// @Description  Cria uma venda em rascunho: precifica cada item pelo kit/tier, consome autorização de desconto se necessário e reserva estoque.
// @Tags         sales
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CreateSaleRequest true "Itens e entrega"
// @Success      201  {object} dto.SaleResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/sales [post]
func (h *SalesHandler) Create(c *gin.Context) {
	var req dto.CreateSaleRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), middleware.GetOrgID(c), middleware.GetUserID(c), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// List godoc
// @Summary      Listar vendas
// @Tags         sales
// @Produce      json
// @Security     BearerAuth
// @Param        status          query string false "Status da venda"
// @Param        delivery_status query string false "Status de entrega"
// @Param        delivery_type   query string false "pickup | motoboy | carrier"
// @Param        scheduled_date  query string false "YYYY-MM-DD"
// @Param        page            query int    false "Página (default 1)"
// @Param        limit           query int    false "Registros por página (default 50)"
// @Success      200 {object} dto.SaleListResponse
// @Router       /v1/sales [get]
func (h *SalesHandler) List(c *gin.Context) {
	var filter dto.SaleFilter
	if !bindQueryAndValidate(c, &filter) {
		return
	}
	resp, err := h.svc.List(c.Request.Context(), middleware.GetOrgID(c), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Erro ao listar vendas"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get godoc
// @Summary      Detalhar venda
// @Tags         sales
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID da venda"
// @Success      200 {object} dto.SaleResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/sales/{id} [get]
func (h *SalesHandler) Get(c *gin.Context) {
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

// ── Lifecycle transitions ────────────────────────────────────────────────────

// ValidateExpedition godoc
// @Summary      Validar expedição
// @Description  draft → pending_expedition. Confere itens e libera a venda para o romaneio.
// @Tags         sales
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID da venda"
// @Success      200 {object} dto.SaleResponse
// @Failure      400 {object} apierror.APIError
// @Router       /v1/sales/{id}/validate-expedition [post]
func (h *SalesHandler) ValidateExpedition(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ValidateExpedition(c.Request.Context(), middleware.GetOrgID(c), id, middleware.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Dispatch godoc
// @Summary      Despachar venda
// @Description  pending_expedition → dispatched. Registra a saída com o entregador.
// @Tags         sales
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string true "UUID da venda"
// @Param        body body dto.DispatchRequest true "Entregador e observação"
// @Success      200  {object} dto.SaleResponse
// @Router       /v1/sales/{id}/dispatch [post]
func (h *SalesHandler) Dispatch(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req dto.DispatchRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Dispatch(c.Request.Context(), middleware.GetOrgID(c), id, middleware.GetUserID(c), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Deliver godoc
// @Summary      Registrar desfecho da entrega
// @Description  Desfecho "delivered" baixa o estoque e avança a venda; desfechos de falha movem para returned mantendo a reserva.
// @Tags         sales
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string true "UUID da venda"
// @Param        body body dto.DeliverRequest true "Desfecho do checklist"
// @Success      200  {object} dto.SaleResponse
// @Router       /v1/sales/{id}/deliver [post]
func (h *SalesHandler) Deliver(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req dto.DeliverRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Deliver(c.Request.Context(), middleware.GetOrgID(c), id, middleware.GetUserID(c), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ConfirmPayment godoc
// @Summary      Confirmar pagamento
// @Description  Fecha a venda em payment_confirmed e calcula taxa e data de liquidação pela tabela do método.
// @Tags         sales
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string true "UUID da venda"
// @Param        body body dto.ConfirmPaymentRequest true "Método e parcelas"
// @Success      200  {object} dto.SaleResponse
// @Router       /v1/sales/{id}/confirm-payment [post]
func (h *SalesHandler) ConfirmPayment(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req dto.ConfirmPaymentRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.ConfirmPayment(c.Request.Context(), middleware.GetOrgID(c), id, middleware.GetUserID(c), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Cancel godoc
// @Summary      Cancelar venda
// @Description  Cancela em qualquer status não terminal. Devolve ou libera o estoque conforme já tenha sido baixado.
// @Tags         sales
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string true "UUID da venda"
// @Param        body body dto.CancelSaleRequest true "Motivo"
// @Success      200  {object} dto.SaleResponse
// @Router       /v1/sales/{id}/cancel [post]
func (h *SalesHandler) Cancel(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req dto.CancelSaleRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Cancel(c.Request.Context(), middleware.GetOrgID(c), id, middleware.GetUserID(c), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Return godoc
// @Summary      Registrar devolução
// @Description  delivered → returned. Restaura o estoque físico e refaz a reserva para eventual reagendamento.
// @Tags         sales
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string true "UUID da venda"
// @Param        body body dto.ReturnSaleRequest true "Motivo"
// @Success      200  {object} dto.SaleResponse
// @Router       /v1/sales/{id}/return [post]
func (h *SalesHandler) Return(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req dto.ReturnSaleRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Return(c.Request.Context(), middleware.GetOrgID(c), id, middleware.GetUserID(c), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Reschedule godoc
// @Summary      Reagendar venda devolvida
// @Description  returned → draft. Limpa os dados de despacho/entrega e recebe a nova programação.
// @Tags         sales
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string true "UUID da venda"
// @Param        body body dto.RescheduleRequest true "Nova programação de entrega"
// @Success      200  {object} dto.SaleResponse
// @Router       /v1/sales/{id}/reschedule [post]
func (h *SalesHandler) Reschedule(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req dto.RescheduleRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Reschedule(c.Request.Context(), middleware.GetOrgID(c), id, middleware.GetUserID(c), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AttachPaymentProof godoc
// @Summary      Anexar comprovante de pagamento
// @Description  Upload multipart (campo "file"); o arquivo vai para o storage local e a URL fica na venda.
// @Tags         sales
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        id   path     string true "UUID da venda"
// @Param        file formData file   true "Comprovante (imagem ou PDF)"
// @Success      200  {object} map[string]string
// @Failure      400  {object} apierror.APIError
// @Router       /v1/sales/{id}/payment-proof [post]
func (h *SalesHandler) AttachPaymentProof(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("arquivo obrigatório no campo 'file'"))
		return
	}
	url, err := h.storage.Save("payment-proofs", file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Erro ao salvar o arquivo"))
		return
	}
	if err := h.svc.AttachPaymentProof(c.Request.Context(), middleware.GetOrgID(c), id, url); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

// AttachInvoice godoc
// @Summary      Anexar nota fiscal
// @Description  Upload multipart da nota fiscal: campo "pdf" (DANFE) e/ou "xml" (NF-e). Pelo menos um arquivo é obrigatório.
// @Tags         sales
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        id  path     string true  "UUID da venda"
// @Param        pdf formData file   false "DANFE em PDF"
// @Param        xml formData file   false "NF-e em XML"
// @Success      200  {object} map[string]string
// @Failure      400  {object} apierror.APIError
// @Router       /v1/sales/{id}/invoice [post]
func (h *SalesHandler) AttachInvoice(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var pdfURL, xmlURL *string
	if file, err := c.FormFile("pdf"); err == nil {
		url, serr := h.storage.Save("invoices", file)
		if serr != nil {
			c.JSON(http.StatusInternalServerError, apierror.New("Erro ao salvar o PDF da nota"))
			return
		}
		pdfURL = &url
	}
	if file, err := c.FormFile("xml"); err == nil {
		url, serr := h.storage.Save("invoices", file)
		if serr != nil {
			c.JSON(http.StatusInternalServerError, apierror.New("Erro ao salvar o XML da nota"))
			return
		}
		xmlURL = &url
	}
	if pdfURL == nil && xmlURL == nil {
		c.JSON(http.StatusBadRequest, apierror.New("envie o PDF e/ou o XML da nota fiscal"))
		return
	}

	if err := h.svc.AttachInvoice(c.Request.Context(), middleware.GetOrgID(c), id, pdfURL, xmlURL); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp := gin.H{}
	if pdfURL != nil {
		resp["pdf_url"] = *pdfURL
	}
	if xmlURL != nil {
		resp["xml_url"] = *xmlURL
	}
	c.JSON(http.StatusOK, resp)
}

// ── Pricing ─────────────────────────────────────────────────────────────────

// PriceCheck godoc
// @Summary      Simular preço de um item
// @Description  Resolve preço, comissão (interpolada para valores customizados) e sinaliza piso de desconto sem criar a venda.
// @Tags         sales
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.PriceCheckRequest true "Item a simular"
// @Success      200  {object} dto.PriceCheckResponse
// @Router       /v1/sales/price-check [post]
func (h *SalesHandler) PriceCheck(c *gin.Context) {
	var req dto.PriceCheckRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.PriceCheck(c.Request.Context(), middleware.GetOrgID(c), middleware.GetUserID(c), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GrantAuthorization godoc
// @Summary      Autorizar venda abaixo do mínimo
// @Description  Gestor concede autorização de uso único para um lead/produto com valor mínimo autorizado.
// @Tags         sales
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.GrantAuthorizationRequest true "Lead, produto e valor autorizado"
// @Success      201  {object} dto.AuthorizationResponse
// @Router       /v1/sales/authorizations [post]
func (h *SalesHandler) GrantAuthorization(c *gin.Context) {
	var req dto.GrantAuthorizationRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.GrantAuthorization(c.Request.Context(), middleware.GetOrgID(c), middleware.GetUserID(c), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ListAuthorizations godoc
// @Summary      Listar autorizações de desconto
// @Tags         sales
// @Produce      json
// @Security     BearerAuth
// @Param        open query bool false "Somente não consumidas"
// @Success      200 {array} dto.AuthorizationResponse
// @Router       /v1/sales/authorizations [get]
func (h *SalesHandler) ListAuthorizations(c *gin.Context) {
	openOnly := c.Query("open") == "true"
	resp, err := h.svc.ListAuthorizations(c.Request.Context(), middleware.GetOrgID(c), openOnly)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Erro ao listar autorizações"))
		return
	}
	c.JSON(http.StatusOK, resp)
}
