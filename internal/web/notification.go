package web

import (
	"fmt"
	"strconv"

	"gitee.com/flycash/notification-dispatch/internal/domain"
	"gitee.com/flycash/notification-dispatch/internal/errs"
	"gitee.com/flycash/notification-dispatch/internal/service/notification"
	"github.com/ecodeclub/ekit/slice"
	"github.com/gin-gonic/gin"
)

type ListNotificationsReq struct {
	Search        string `form:"search"`
	Page          int    `form:"page"`
	ResultPerPage int    `form:"resultPerPage"`
}

type ResendResp struct {
	// ID 用字符串，sonyflake 的 ID 超过了 JS 的安全整数范围
	ID     string `json:"id"`
	Cloned bool   `json:"cloned"`
}

type Attachment struct {
	Filename string `json:"filename"`
	Encoding string `json:"encoding"`
}

type Notification struct {
	ID          string       `json:"id"`
	Status      string       `json:"status"`
	Type        string       `json:"type"`
	To          string       `json:"to"`
	From        string       `json:"from"`
	Subject     string       `json:"subject"`
	Text        string       `json:"text"`
	Seen        bool         `json:"seen"`
	Attachments []Attachment `json:"attachments"`
	Ctime       int64        `json:"ctime"`
	Utime       int64        `json:"utime"`
}

type ListNotificationsResp struct {
	Items         []Notification `json:"items"`
	Total         int64          `json:"total"`
	Page          int            `json:"page"`
	ResultPerPage int            `json:"resultPerPage"`
}

type NotificationHandler struct {
	svc notification.Service
}

func NewNotificationHandler(svc notification.Service) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

func (h *NotificationHandler) PublicRoutes(server *gin.Engine) {
	g := server.Group("/email-notifications")
	g.GET("/resend/:id", h.Resend)
	g.GET("/failed-pending", h.ListFailedOrPending)
}

// Resend force=true 的时候已经发送成功的通知也会再发一次
func (h *NotificationHandler) Resend(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		badRequest(ctx, fmt.Errorf("id = %q", ctx.Param("id")))
		return
	}
	force := false
	if v := ctx.Query("force"); v != "" {
		force, err = strconv.ParseBool(v)
		if err != nil {
			badRequest(ctx, fmt.Errorf("force = %q", v))
			return
		}
	}
	res, err := h.svc.Resend(ctx.Request.Context(), id, force)
	if err != nil {
		fail(ctx, err)
		return
	}
	ok(ctx, ResendResp{ID: strconv.FormatUint(res.ID, 10), Cloned: res.Cloned})
}

func (h *NotificationHandler) ListFailedOrPending(ctx *gin.Context) {
	var req ListNotificationsReq
	if err := ctx.ShouldBindQuery(&req); err != nil {
		badRequest(ctx, err)
		return
	}
	if req.Page < 0 || req.ResultPerPage < 0 {
		fail(ctx, fmt.Errorf("%w: page = %d, resultPerPage = %d", errs.ErrInvalidParameter, req.Page, req.ResultPerPage))
		return
	}
	page, err := h.svc.ListFailedOrPending(ctx.Request.Context(), req.Search, req.Page, req.ResultPerPage)
	if err != nil {
		fail(ctx, err)
		return
	}
	ok(ctx, ListNotificationsResp{
		Items:         slice.Map(page.Items, func(_ int, src domain.Notification) Notification { return toNotification(src) }),
		Total:         page.Total,
		Page:          page.Page,
		ResultPerPage: page.ResultPerPage,
	})
}

func toNotification(n domain.Notification) Notification {
	return Notification{
		ID:      strconv.FormatUint(n.ID, 10),
		Status:  n.Status.String(),
		Type:    string(n.Type),
		To:      n.To,
		From:    n.From,
		Subject: n.Subject,
		Text:    n.Text,
		Seen:    n.Seen,
		Attachments: slice.Map(n.Attachments, func(_ int, src domain.Attachment) Attachment {
			return Attachment{Filename: src.Filename, Encoding: src.Encoding}
		}),
		Ctime: n.Ctime.UnixMilli(),
		Utime: n.Utime.UnixMilli(),
	}
}
