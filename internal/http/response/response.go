package response

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/pagehub-backend/internal/platform/apierr"
	"github.com/yungbote/pagehub-backend/internal/platform/logger"
)

// statusClientClosed is the de-facto status for a request the client abandoned.
const statusClientClosed = 499

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Field   string `json:"field,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.AbortWithStatusJSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondAPIError writes err using its *apierr.Error status and code. Anything else is logged and
// reported as a 500 without leaking its text.
func RespondAPIError(c *gin.Context, log *logger.Logger, err error) {
	if ae, ok := apierr.As(err); ok {
		c.AbortWithStatusJSON(ae.Status, ErrorEnvelope{
			Error: APIError{Message: ae.Error(), Code: ae.Code, Field: ae.Field},
		})
		return
	}
	if errors.Is(err, context.Canceled) {
		RespondError(c, statusClientClosed, "canceled", err)
		return
	}
	if errors.Is(err, context.DeadlineExceeded) {
		RespondError(c, http.StatusGatewayTimeout, "timeout", errors.New("the request took too long"))
		return
	}
	if log != nil {
		log.Error("request failed", "path", c.FullPath(), "error", err)
	}
	RespondError(c, http.StatusInternalServerError, "internal", errors.New("internal error"))
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}
