package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/valvequote/quote_api/internal/models"
	"github.com/valvequote/quote_api/internal/utils"
)

// MaterialLister lists the active material catalogue.
type MaterialLister interface {
	ListMaterials(ctx context.Context) ([]models.Material, error)
}

// MaterialHandler serves the material price list used by configuration forms.
type MaterialHandler struct {
	repo MaterialLister
}

// NewMaterialHandler creates a new MaterialHandler
func NewMaterialHandler(repo MaterialLister) *MaterialHandler {
	return &MaterialHandler{repo: repo}
}

// ListMaterials handles GET /v1/materials
func (h *MaterialHandler) ListMaterials(c *gin.Context) {
	materials, err := h.repo.ListMaterials(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list materials")
		utils.Error(c, 503, "DATA_UNAVAILABLE", "Material list is temporarily unavailable")
		return
	}
	if materials == nil {
		materials = []models.Material{}
	}

	utils.Success(c, 200, "Materials retrieved", gin.H{
		"materials": materials,
		"total":     len(materials),
	})
}
