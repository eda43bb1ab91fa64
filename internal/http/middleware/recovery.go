package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/auditnet/validator-backend/internal/http/response"
	"github.com/auditnet/validator-backend/internal/platform/logger"
)

// Recovery converts panics into the generic failure envelope so a bad request
// can never take the process down.
func Recovery(log *logger.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		if log != nil {
			log.Error("panic recovered", "panic", fmt.Sprint(recovered), "path", c.Request.URL.Path)
		}
		response.RespondError(c, http.StatusInternalServerError, "internal_error", fmt.Errorf("internal server error"))
	})
}
