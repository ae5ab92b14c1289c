package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"prodtrack/internal/middleware"
	"prodtrack/internal/tracking"
)

// Response is the envelope of every JSON reply.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Code: 0, Message: "success", Data: data})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{Code: 0, Message: "success", Data: data})
}

// Error writes code/100 as the HTTP status.
func Error(c *gin.Context, code int, message string, data interface{}) {
	status := code / 100
	if status < 100 || status > 599 {
		status = http.StatusInternalServerError
	}
	c.JSON(status, Response{Code: code, Message: message, Data: data})
}

func BadRequest(c *gin.Context, message string) {
	Error(c, 40000, message, nil)
}

func InternalError(c *gin.Context, message string) {
	Error(c, 50000, message, nil)
}

var kindCodes = map[tracking.Kind]int{
	tracking.KindNotFound:            40400,
	tracking.KindValidation:          40000,
	tracking.KindDuplicateItemNumber: 40901,
	tracking.KindDuplicateAssignment: 40902,
	tracking.KindDuplicateEmail:      40903,
	tracking.KindPersistence:         50000,
}

// fail maps a manager error onto the envelope. Only tracking.Error messages
// reach the client.
func fail(c *gin.Context, err error) {
	var te *tracking.Error
	if !errors.As(err, &te) {
		_ = c.Error(err)
		InternalError(c, "internal error")
		return
	}
	_ = c.Error(err)

	detail := gin.H{"kind": te.Kind}
	if te.Kind == tracking.KindUnauthorized {
		if middleware.GetActor(c).Authenticated() {
			Error(c, 40300, te.Message, detail)
		} else {
			Error(c, 40100, te.Message, detail)
		}
		return
	}
	code, ok := kindCodes[te.Kind]
	if !ok {
		code = 50000
	}
	Error(c, code, te.Message, detail)
}

func bindFailed(c *gin.Context, err error) {
	BadRequest(c, "invalid request body: "+err.Error())
}

func queryInt(c *gin.Context, key string, def int) int {
	if v, err := strconv.Atoi(c.Query(key)); err == nil {
		return v
	}
	return def
}
