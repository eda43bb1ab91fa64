package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Every payload carries a top-level "success" boolean; failures carry the
// error message and a machine code.

func RespondOK(c *gin.Context, payload gin.H) {
	out := gin.H{"success": true}
	for k, v := range payload {
		out[k] = v
	}
	c.JSON(http.StatusOK, out)
}

func RespondCreated(c *gin.Context, payload gin.H) {
	out := gin.H{"success": true}
	for k, v := range payload {
		out[k] = v
	}
	c.JSON(http.StatusCreated, out)
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, gin.H{
		"success": false,
		"error":   msg,
		"code":    code,
	})
}
