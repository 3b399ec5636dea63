package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/tradesync/pkg/helpers"
)

// MsgServerError is the only text a client ever sees for an unexpected failure.
const MsgServerError = "Server error"

// MessageBody is the {"msg": ...} envelope used for errors and confirmations.
type MessageBody struct {
	Msg       string      `json:"msg"`
	RequestID string      `json:"request_id,omitempty"`
	Errors    interface{} `json:"errors,omitempty"`
}

// JSON writes data as the response body.
func JSON[T any](ctx *gin.Context, status int, data T) {
	if status == 0 {
		status = http.StatusOK
	}
	ctx.JSON(status, data)
}

// Message writes a {"msg": ...} body.
func Message(ctx *gin.Context, status int, msg string) {
	if status == 0 {
		status = http.StatusOK
	}
	ctx.JSON(status, MessageBody{Msg: msg})
}

// Error writes a {"msg": ..., "errors": ...} body and aborts the chain.
func Error(ctx *gin.Context, status int, msg string, details interface{}) {
	if status == 0 {
		status = http.StatusBadRequest
	}
	ctx.AbortWithStatusJSON(status, MessageBody{
		Msg:       msg,
		RequestID: ctx.GetString("request_id"),
		Errors:    details,
	})
}

// ServerError logs err with the request context and answers 500 "Server error".
func ServerError(ctx *gin.Context, logger *logrus.Logger, err error) {
	helpers.LogError(logger, "request failed", err, logrus.Fields{
		"request_id": ctx.GetString("request_id"),
		"user_id":    ctx.GetString("userID"),
		"method":     ctx.Request.Method,
		"path":       ctx.FullPath(),
	})
	Error(ctx, http.StatusInternalServerError, MsgServerError, nil)
}
