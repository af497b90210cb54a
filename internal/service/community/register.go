package community

import (
	"github.com/gin-gonic/gin"

	"github.com/oggyb/mappool-community/internal/app"
)

// Registrar ties the community service into the HTTP server
type Registrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates a new Registrar for the community service
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register attaches the community routes to the /api group
func (r *Registrar) Register(api *gin.RouterGroup) {
	s := NewService(r.appCtx)

	users := api.Group("/users")
	{
		users.POST("", s.handleRegister)
		users.GET("/:id", s.handleGetUser)
		users.PUT("/:id", s.handleUpdateUser)
	}

	submissions := api.Group("/submissions")
	{
		submissions.POST("", s.handleSubmit)
		submissions.GET("", s.handleList)
		submissions.PUT("/:id", s.handleUpdateBeatmap)
		submissions.DELETE("/:id", s.handleDeleteBeatmap)

		submissions.GET("/:id/votes", s.handleGetVotes)
		submissions.POST("/:id/vote", s.handleVote)

		submissions.GET("/:id/comments", s.handleListComments)
		submissions.POST("/:id/comments", s.handleAddComment)
	}

	api.DELETE("/comments/:id", s.handleDeleteComment)
}
