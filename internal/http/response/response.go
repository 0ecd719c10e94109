package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/shipping-estimator/internal/platform/apierr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondErr maps err through apierr.StatusOf. Internal errors are recorded
// on the gin context and their message is not exposed.
func RespondErr(c *gin.Context, err error) {
	status, code := apierr.StatusOf(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
		if code == apierr.CodeInternal {
			RespondError(c, status, code, errors.New("internal server error"))
			return
		}
	}
	RespondError(c, status, code, err)
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
