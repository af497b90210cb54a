package notify

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oggyb/mappool-community/internal/app"
	svcErr "github.com/oggyb/mappool-community/internal/errors"
)

// Registrar ties the notification dispatcher into the HTTP server
type Registrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates a new Registrar for the notification dispatcher
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register attaches the notify route to the /api group
func (r *Registrar) Register(api *gin.RouterGroup) {
	s := NewService(r.appCtx)
	api.POST("/notify", s.handleNotify)
}

func (s *Service) handleNotify(c *gin.Context) {
	if !s.Configured() {
		svcErr.Respond(c, &svcErr.Error{
			Status: http.StatusServiceUnavailable,
			Msg:    "no webhook configured",
		})
		return
	}

	var ev Event
	if err := c.ShouldBindJSON(&ev); err != nil {
		svcErr.Respond(c, svcErr.Validation("invalid request body"))
		return
	}

	if err := s.Notify(c.Request.Context(), ev); err != nil {
		svcErr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
