package errors

import (
	"github.com/gin-gonic/gin"
)

// Respond writes err as a structured {error} body with the mapped status.
// Only the client-safe message is serialized; wrapped causes stay in logs.
func Respond(c *gin.Context, err error) {
	appErr := Map(err)
	c.JSON(appErr.Status, gin.H{"error": appErr.Msg})
}
