package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/alexhq/alex-backend/internal/apierr"
	"github.com/alexhq/alex-backend/internal/requestdata"
)

// currentUserID pulls the authenticated user from the request context set by
// the auth middleware. A miss writes the 401 response itself.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, apierr.CodeUnauthorized, apierr.Unauthorized("not authenticated"))
		return uuid.Nil, false
	}
	return rd.UserID, true
}
