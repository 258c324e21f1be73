package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/kiosk404/oracle/internal/oracle/service/llm/domain/entity"
	"github.com/kiosk404/oracle/internal/pkg/core"
)

// ModelLister lists the models of the configured provider.
type ModelLister interface {
	Models() []*entity.ModelInfo
}

// ModelHandler handles GET /v1/models (OpenAI-compatible).
type ModelHandler struct {
	lister ModelLister
}

// NewModelHandler creates a new ModelHandler.
func NewModelHandler(lister ModelLister) *ModelHandler {
	return &ModelHandler{lister: lister}
}

// List handles GET /v1/models.
func (h *ModelHandler) List(c *gin.Context) {
	models := h.lister.Models()
	data := make([]ModelObject, 0, len(models))
	for _, m := range models {
		data = append(data, ModelObject{
			ID:      m.ID,
			Object:  "model",
			OwnedBy: m.Provider,
			Active:  m.Active,
		})
	}

	core.WriteResponse(c, nil, ModelListResponse{
		Object: "list",
		Data:   data,
	})
}
