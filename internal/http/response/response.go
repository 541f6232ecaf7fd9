package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/twingraph-backend/internal/platform/apierr"
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

// RespondErr maps err through apierr and writes the envelope. Store failures are reported
// with a fixed message so driver internals never reach the client.
func RespondErr(c *gin.Context, err error) {
	ae := apierr.From(err)
	_ = c.Error(err)
	if ae.Status >= http.StatusInternalServerError {
		RespondError(c, ae.Status, ae.Code, errors.New(http.StatusText(ae.Status)))
		return
	}
	RespondError(c, ae.Status, ae.Code, ae.Err)
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
