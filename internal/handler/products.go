package handler

import (
	"net/http"

	"vendaflow/internal/apierror"
	"vendaflow/internal/dto"
	"vendaflow/internal/middleware"
	"vendaflow/internal/repository"
	"vendaflow/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ProductsHandler struct {
	svc   service.ProductService
	stock service.StockService
}

func NewProductsHandler(svc service.ProductService, stock service.StockService) *ProductsHandler {
	return &ProductsHandler{svc: svc, stock: stock}
}

// Create godoc
// @Summary      Criar produto
// @Description  Cadastra um produto com seus kits (pontos de preço por quantidade) e perguntas-chave.
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CreateProductRequest true "Dados do produto"
// @Success      201  {object} dto.ProductResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/products [post]
func (h *ProductsHandler) Create(c *gin.Context) {
	var req dto.CreateProductRequest
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
// @Summary      Listar produtos
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Param        search   query string false "Nome"
// @Param        category query string false "Categoria"
// @Param        active   query bool   false "Somente ativos/inativos"
// @Param        featured query bool   false "Somente destaque"
// @Success      200 {object} dto.ProductListResponse
// @Router       /v1/products [get]
func (h *ProductsHandler) List(c *gin.Context) {
	var filter dto.ProductFilter
	if !bindQueryAndValidate(c, &filter) {
		return
	}
	resp, err := h.svc.List(c.Request.Context(), middleware.GetOrgID(c), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Erro ao listar produtos"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get godoc
// @Summary      Detalhar produto
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID do produto"
// @Success      200 {object} dto.ProductResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/products/{id} [get]
func (h *ProductsHandler) Get(c *gin.Context) {
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
// @Summary      Atualizar produto
// @Description  Atualiza dados escalares e substitui o conjunto de kits.
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string true "UUID do produto"
// @Param        body body dto.UpdateProductRequest true "Campos a atualizar"
// @Success      200  {object} dto.ProductResponse
// @Router       /v1/products/{id} [put]
func (h *ProductsHandler) Update(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateProductRequest
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
// @Summary      Desativar produto
// @Tags         products
// @Security     BearerAuth
// @Param        id path string true "UUID do produto"
// @Success      204
// @Router       /v1/products/{id} [delete]
func (h *ProductsHandler) Deactivate(c *gin.Context) {
	h.setActive(c, false)
}

// Reactivate godoc
// @Summary      Reativar produto
// @Tags         products
// @Security     BearerAuth
// @Param        id path string true "UUID do produto"
// @Success      204
// @Router       /v1/products/{id}/reactivate [post]
func (h *ProductsHandler) Reactivate(c *gin.Context) {
	h.setActive(c, true)
}

func (h *ProductsHandler) setActive(c *gin.Context, active bool) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.SetActive(c.Request.Context(), middleware.GetOrgID(c), id, active); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.Status(http.StatusNoContent)
}

// AdjustStock godoc
// @Summary      Ajuste manual de estoque
// @Description  Corrige o contador físico com motivo obrigatório. Gera movimento auditável.
// @Tags         products
// @Accept       json
// @Security     BearerAuth
// @Param        id   path string true "UUID do produto"
// @Param        body body dto.AdjustStockRequest true "Delta e motivo"
// @Success      204
// @Failure      400  {object} apierror.APIError
// @Router       /v1/products/{id}/stock/adjust [post]
func (h *ProductsHandler) AdjustStock(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req dto.AdjustStockRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.AdjustStock(c.Request.Context(), middleware.GetOrgID(c), id, req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.Status(http.StatusNoContent)
}

// ListMovements godoc
// @Summary      Histórico de movimentos de estoque
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Param        product_id query string false "UUID do produto"
// @Param        sale_id    query string false "UUID da venda"
// @Param        operation  query string false "reserve | unreserve | deduct | restore | manual_adjust"
// @Success      200 {array} dto.StockMovementResponse
// @Router       /v1/stock/movements [get]
func (h *ProductsHandler) ListMovements(c *gin.Context) {
	var filter repository.StockMovementFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 200 {
		filter.Limit = 50
	}
	movements, total, err := h.stock.ListMovements(c.Request.Context(), middleware.GetOrgID(c), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Erro ao listar movimentos"))
		return
	}

	out := make([]dto.StockMovementResponse, 0, len(movements))
	for _, m := range movements {
		var saleID *string
		if m.SaleID != nil {
			v := m.SaleID.String()
			saleID = &v
		}
		out = append(out, dto.StockMovementResponse{
			ID:             m.ID.String(),
			ProductID:      m.ProductID.String(),
			SaleID:         saleID,
			Operation:      m.Operation,
			Quantity:       m.Quantity,
			ActualBefore:   m.ActualBefore,
			ActualAfter:    m.ActualAfter,
			ReservedBefore: m.ReservedBefore,
			ReservedAfter:  m.ReservedAfter,
			Reason:         m.Reason,
			CreatedAt:      m.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	c.JSON(http.StatusOK, gin.H{"data": out, "total": total, "page": filter.Page, "limit": filter.Limit})
}

// ── Progressive disclosure ──────────────────────────────────────────────────

// Disclosure godoc
// @Summary      Kits visíveis para um lead
// @Description  Retorna apenas o kit atual da negociação; tiers ocultos aparecem conforme revelados.
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Param        id      path  string true "UUID do produto"
// @Param        lead_id query string true "UUID do lead"
// @Success      200 {object} dto.DisclosureResponse
// @Router       /v1/products/{id}/disclosure [get]
func (h *ProductsHandler) Disclosure(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	leadID, err := uuid.Parse(c.Query("lead_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("lead_id inválido"))
		return
	}
	resp, err := h.svc.Disclosure(c.Request.Context(), middleware.GetOrgID(c), id, leadID)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RejectKit godoc
// @Summary      Registrar recusa de kit
// @Description  Marca o kit como recusado pelo lead e libera o próximo da sequência.
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string true "UUID do produto"
// @Param        body body dto.RejectKitRequest true "Kit recusado e motivo"
// @Success      200  {object} dto.DisclosureResponse
// @Router       /v1/products/{id}/reject-kit [post]
func (h *ProductsHandler) RejectKit(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req dto.RejectKitRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RejectKit(c.Request.Context(), middleware.GetOrgID(c), id, middleware.GetUserID(c), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RevealTier godoc
// @Summary      Revelar tier oculto
// @Description  Expõe promotional_2 ou minimum do kit atual para a sessão de negociação.
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string true "UUID do produto"
// @Param        body body dto.RevealTierRequest true "Kit e tier a revelar"
// @Success      200  {object} dto.DisclosureResponse
// @Router       /v1/products/{id}/reveal-tier [post]
func (h *ProductsHandler) RevealTier(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req dto.RevealTierRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RevealTier(c.Request.Context(), middleware.GetOrgID(c), id, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}
