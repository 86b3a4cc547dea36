package web

import (
	"errors"
	"net/http"

	"gitee.com/flycash/notification-dispatch/internal/errs"
	"github.com/gin-gonic/gin"
	"github.com/gotomicro/ego/core/elog"
)

// Result 统一的响应格式
type Result struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data any    `json:"data"`
}

// 业务错误码，0 表示成功
const (
	CodeOK             = 0
	CodeBadRequest     = 400001
	CodeNotFound       = 404001
	CodeNotAcceptable  = 406001
	CodeConflict       = 409001
	CodeTooManyRequest = 429001
	CodeInternal       = 500001
)

type errMapping struct {
	target error
	status int
	code   int
}

// 按顺序匹配，先匹配到的生效
var errMappings = []errMapping{
	{target: errs.ErrInvalidParameter, status: http.StatusBadRequest, code: CodeBadRequest},
	{target: errs.ErrNotificationNotFound, status: http.StatusNotFound, code: CodeNotFound},
	{target: errs.ErrOtpNotFound, status: http.StatusNotFound, code: CodeNotFound},
	{target: errs.ErrOtpAlreadyUsed, status: http.StatusNotAcceptable, code: CodeNotAcceptable},
	{target: errs.ErrOtpExpired, status: http.StatusNotAcceptable, code: CodeNotAcceptable},
	{target: errs.ErrNotificationStatusConflict, status: http.StatusConflict, code: CodeConflict},
	{target: errs.ErrNotificationCompleted, status: http.StatusConflict, code: CodeConflict},
	{target: errs.ErrNotificationInFlight, status: http.StatusConflict, code: CodeConflict},
	{target: errs.ErrOtpDuplicate, status: http.StatusConflict, code: CodeConflict},
	{target: errs.ErrOtpTooFrequent, status: http.StatusTooManyRequests, code: CodeTooManyRequest},
}

func ok(ctx *gin.Context, data any) {
	ctx.JSON(http.StatusOK, Result{Code: CodeOK, Msg: "OK", Data: data})
}

// fail 把业务错误转换成 HTTP 状态码，未知错误不把细节返回给调用方
func fail(ctx *gin.Context, err error) {
	for _, m := range errMappings {
		if errors.Is(err, m.target) {
			ctx.JSON(m.status, Result{Code: m.code, Msg: m.target.Error()})
			return
		}
	}
	elog.DefaultLogger.Error("处理请求失败",
		elog.String("path", ctx.FullPath()),
		elog.FieldErr(err))
	ctx.JSON(http.StatusInternalServerError, Result{Code: CodeInternal, Msg: "系统错误"})
}

func badRequest(ctx *gin.Context, err error) {
	ctx.JSON(http.StatusBadRequest, Result{Code: CodeBadRequest, Msg: errs.ErrInvalidParameter.Error() + ": " + err.Error()})
}
