package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	appNotification "github.com/zeus1411/aquastore/internal/application/notification"
	"github.com/zeus1411/aquastore/internal/interface/http/dto"
	"github.com/zeus1411/aquastore/internal/interface/http/middleware"
	apperrors "github.com/zeus1411/aquastore/pkg/errors"
	"github.com/zeus1411/aquastore/pkg/response"
)

// NotificationHandler 站内通知HTTP处理器
type NotificationHandler struct {
	uc *appNotification.UseCase
}

// NewNotificationHandler 创建通知处理器
func NewNotificationHandler(uc *appNotification.UseCase) *NotificationHandler {
	return &NotificationHandler{uc: uc}
}

// List 我的通知列表
// @Summary 我的通知列表
// @Tags 通知
// @Produce json
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} response.Response{data=response.PageData}
// @Security BearerAuth
// @Router /api/v1/notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	var q dto.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "分页参数格式错误")
		return
	}

	list, total, err := h.uc.List(c.Request.Context(), middleware.CurrentUserID(c), q.Page, q.PageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPage(c, list, total, q.Page, q.PageSize)
}

// MarkRead 标记通知已读
// @Summary 标记通知已读
// @Tags 通知
// @Produce json
// @Param id path int true "通知ID"
// @Success 200 {object} response.Response
// @Security BearerAuth
// @Router /api/v1/notifications/{id}/read [put]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, "无效的通知ID")
		return
	}

	if err := h.uc.MarkRead(c.Request.Context(), uint(id), middleware.CurrentUserID(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}
