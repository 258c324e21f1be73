package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/kiosk404/oracle/internal/oracle/service/tools"
	"github.com/kiosk404/oracle/internal/pkg/core"
)

// ToolHandler handles GET /v1/tools.
type ToolHandler struct {
	registry *tools.Registry
}

// NewToolHandler creates a new ToolHandler.
func NewToolHandler(registry *tools.Registry) *ToolHandler {
	return &ToolHandler{registry: registry}
}

// List handles GET /v1/tools.
func (h *ToolHandler) List(c *gin.Context) {
	specs := h.registry.Specs()
	resp := make([]ToolResponse, 0, len(specs))
	for _, s := range specs {
		resp = append(resp, toolResponse(s))
	}
	core.WriteResponse(c, nil, gin.H{"data": resp})
}

func toolResponse(s *tools.ToolSpec) ToolResponse {
	r := ToolResponse{
		Name:        s.Name,
		Description: s.Description,
		Marker:      s.Marker(),
		Parameters:  make([]ParameterResponse, 0, len(s.Parameters)),
		Source:      "builtin",
	}
	if s.Schema != nil {
		r.Source = "mcp"
		if r.Description == "" {
			r.Description = s.Schema.Desc
		}
	}
	for _, p := range s.Parameters {
		r.Parameters = append(r.Parameters, ParameterResponse{
			Name:        p.Name,
			Type:        string(p.Type),
			Description: p.Description,
			Required:    p.Required,
			Enum:        p.Enum,
			Default:     p.Default,
		})
	}
	return r
}
