package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/evgsol/vipgate/internal/common"
)

// Resp is the uniform JSON envelope. Code mirrors the HTTP status so clients
// that cannot read transport status still see the outcome.
type Resp struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func successResp(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Resp{Code: http.StatusOK, Message: "success", Data: data})
}

// errorResp maps domain errors onto HTTP statuses. Internal failures are
// reported with a constant message so storage details never reach clients.
func errorResp(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "internal error"

	var usedErr *common.CardUsedError

	switch {
	case errors.As(err, &usedErr):
		status = http.StatusConflict
		message = usedErr.Error()
	case errors.Is(err, common.ErrorConflict):
		status = http.StatusConflict
		message = err.Error()
	case errors.Is(err, common.ErrorNotFound):
		status = http.StatusNotFound
		message = err.Error()
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrWrongTokenType),
		errors.Is(err, common.ErrTokenExpired):
		status = http.StatusUnauthorized
		message = "unauthorized"
	case errors.Is(err, common.ErrorBadRequest), errors.Is(err, common.ErrWeakPassword):
		status = http.StatusBadRequest
		message = err.Error()
	}

	c.AbortWithStatusJSON(status, Resp{Code: status, Message: message})
}

func badRequestResp(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, Resp{Code: http.StatusBadRequest, Message: message})
}
