package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	perrors "github.com/yungbote/hetiograph/internal/pkg/errors"
	"github.com/yungbote/hetiograph/internal/platform/apierr"
	"github.com/yungbote/hetiograph/internal/platform/ctxutil"
)

// APIError is the body of every non-2xx response. Op and Details are set for
// typed failures, e.g. the relation group and batch of a failed edge write.
type APIError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Op      string         `json:"op,omitempty"`
	Details map[string]any `json:"details,omitempty"`
	TraceID string         `json:"trace_id,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// RespondError writes an explicit status and code. A nil err uses the code
// as the message.
func RespondError(c *gin.Context, status int, code string, err error) {
	body := APIError{Code: code, Message: code, TraceID: ctxutil.TraceID(c.Request.Context())}
	if err != nil {
		body.Message = err.Error()
		var pe *perrors.Error
		if errors.As(err, &pe) {
			body.Op = pe.Op
			if len(pe.Context) > 0 {
				body.Details = pe.Context
			}
		}
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, ErrorEnvelope{Error: body})
}

// RespondErr writes err with the status its failure kind maps to.
func RespondErr(c *gin.Context, err error) {
	ae := apierr.FromError(err)
	RespondError(c, ae.Status, ae.Code, err)
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
