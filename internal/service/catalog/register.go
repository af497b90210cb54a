package catalog

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/oggyb/mappool-community/internal/app"
	svcErr "github.com/oggyb/mappool-community/internal/errors"
)

// Registrar ties the catalog proxy into the HTTP server
type Registrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates a new Registrar for the catalog proxy
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register attaches the catalog routes to the /api group
func (r *Registrar) Register(api *gin.RouterGroup) {
	s := NewService(r.appCtx)
	api.GET("/catalog/:id", s.handleFetch)
}

func (s *Service) handleFetch(c *gin.Context) {
	if !s.Configured() {
		svcErr.Respond(c, &svcErr.Error{
			Status: http.StatusServiceUnavailable,
			Msg:    "catalog API not configured",
		})
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		svcErr.Respond(c, svcErr.Validation("invalid beatmap id"))
		return
	}

	info, err := s.FetchBeatmap(c.Request.Context(), id)
	if err != nil {
		svcErr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, info)
}
