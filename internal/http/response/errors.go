package response

import (
	"github.com/gin-gonic/gin"

	"github.com/auditnet/validator-backend/internal/platform/apierr"
)

// RespondFromError maps a classified service error onto the wire envelope.
// Unclassified errors degrade to an opaque internal failure.
func RespondFromError(c *gin.Context, err error) {
	ae := apierr.From(err)
	RespondError(c, ae.Status, ae.Code, ae)
}
