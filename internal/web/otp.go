package web

import (
	"gitee.com/flycash/notification-dispatch/internal/service/otp"
	"github.com/gin-gonic/gin"
)

type SendOtpReq struct {
	Email string `json:"email" binding:"required,email"`
}

type ValidateOtpReq struct {
	Email string `json:"email" binding:"required,email"`
	Otp   string `json:"otp" binding:"required"`
}

type OtpHandler struct {
	svc otp.Service
}

func NewOtpHandler(svc otp.Service) *OtpHandler {
	return &OtpHandler{svc: svc}
}

func (h *OtpHandler) PublicRoutes(server *gin.Engine) {
	g := server.Group("/otp")
	g.POST("/send", h.Send)
	g.POST("/validate", h.Validate)
	g.POST("/resend", h.Resend)
}

func (h *OtpHandler) Send(ctx *gin.Context) {
	var req SendOtpReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return
	}
	if err := h.svc.Send(ctx.Request.Context(), req.Email); err != nil {
		fail(ctx, err)
		return
	}
	ok(ctx, nil)
}

func (h *OtpHandler) Validate(ctx *gin.Context) {
	var req ValidateOtpReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return
	}
	if err := h.svc.Validate(ctx.Request.Context(), req.Email, req.Otp); err != nil {
		fail(ctx, err)
		return
	}
	ok(ctx, nil)
}

func (h *OtpHandler) Resend(ctx *gin.Context) {
	var req SendOtpReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return
	}
	if err := h.svc.Resend(ctx.Request.Context(), req.Email); err != nil {
		fail(ctx, err)
		return
	}
	ok(ctx, nil)
}
