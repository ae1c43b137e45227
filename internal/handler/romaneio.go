package handler

import (
	"fmt"
	"net/http"
	"time"

	"vendaflow/internal/apierror"
	"vendaflow/internal/dto"
	"vendaflow/internal/middleware"
	"vendaflow/internal/service"

	"github.com/gin-gonic/gin"
)

type RomaneioHandler struct{ svc service.RomaneioService }

func NewRomaneioHandler(svc service.RomaneioService) *RomaneioHandler {
	return &RomaneioHandler{svc: svc}
}

// Get godoc
// @Summary      Romaneio do dia (JSON)
// @Description  Monta o manifesto de entregas: um bloco por venda com endereço, pagamento a cobrar e checklist de desfecho.
// @Tags         romaneio
// @Produce      json
// @Security     BearerAuth
// @Param        date            query string false "YYYY-MM-DD (default: hoje)"
// @Param        courier_user_id query string false "UUID do entregador"
// @Param        delivery_type   query string false "pickup | motoboy | carrier"
// @Success      200 {object} dto.RomaneioDocument
// @Failure      400 {object} apierror.APIError
// @Router       /v1/romaneio [get]
func (h *RomaneioHandler) Get(c *gin.Context) {
	var filter dto.RomaneioFilter
	if !bindQueryAndValidate(c, &filter) {
		return
	}
	doc, err := h.svc.BuildDocument(c.Request.Context(), middleware.GetOrgID(c), filter)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, doc)
}

// PDF godoc
// @Summary      Romaneio do dia (PDF)
// @Description  Mesmo documento do GET /v1/romaneio, renderizado para impressão.
// @Tags         romaneio
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        date            query string false "YYYY-MM-DD (default: hoje)"
// @Param        courier_user_id query string false "UUID do entregador"
// @Param        delivery_type   query string false "pickup | motoboy | carrier"
// @Success      200 {file} binary
// @Failure      400 {object} apierror.APIError
// @Router       /v1/romaneio/pdf [get]
func (h *RomaneioHandler) PDF(c *gin.Context) {
	var filter dto.RomaneioFilter
	if !bindQueryAndValidate(c, &filter) {
		return
	}
	data, err := h.svc.RenderPDF(c.Request.Context(), middleware.GetOrgID(c), filter)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}

	date := filter.Date
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="romaneio-%s.pdf"`, date))
	c.Data(http.StatusOK, "application/pdf", data)
}
