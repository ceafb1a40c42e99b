package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/restokit/resto-erp/internal/api/handler/v1/response"
	"github.com/restokit/resto-erp/internal/domain"
	"github.com/restokit/resto-erp/internal/service"
)

type NotificationService interface {
	ListNotifications(ctx context.Context, limit, offset int) ([]domain.Notification, error)
	MarkRead(ctx context.Context, id uint) error
}

type NotificationHandler struct {
	svc NotificationService
}

func NewNotificationHandler(svc NotificationService) *NotificationHandler {
	return &NotificationHandler{
		svc: svc,
	}
}

// HandleListNotifications godoc
// @Summary      List notifications, unread first
// @Tags         notifications
// @Produce      json
// @Param        limit    query     int  false  "page size (default 50)"
// @Param        offset   query     int  false  "page offset"
// @Success      200      {array}   domain.Notification
// @Failure      401      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /notifications [get]
// @Security BearerAuth
func (h *NotificationHandler) HandleListNotifications(ctx *gin.Context) {
	limit, offset := parsePagination(ctx)

	notifications, err := h.svc.ListNotifications(ctx.Request.Context(), limit, offset)
	if err != nil {
		err = fmt.Errorf("v1.HandleListNotifications -> h.svc.ListNotifications -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, notifications)
}

// HandleMarkNotificationRead godoc
// @Summary      Mark a notification as read
// @Description  Acknowledging is the only way an unread low-stock alert resolves; restocking does not clear it.
// @Tags         notifications
// @Produce      json
// @Param        notificationID   path      int  true  "notification ID"
// @Success      200              {object}  map[string]string
// @Failure      400              {object}  response.Err
// @Failure      404              {object}  response.Err
// @Failure      500              {object}  response.Err
// @Router       /notifications/{notificationID}/read [patch]
// @Security BearerAuth
func (h *NotificationHandler) HandleMarkNotificationRead(ctx *gin.Context) {
	notificationID, err := strconv.ParseUint(ctx.Param("notificationID"), 10, 32)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(errors.New("invalid notification ID")))
		return
	}

	if err := h.svc.MarkRead(ctx.Request.Context(), uint(notificationID)); err != nil {
		if errors.Is(err, service.ErrNotificationNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("notification", "ID", notificationID))
			return
		}

		err = fmt.Errorf("v1.HandleMarkNotificationRead -> h.svc.MarkRead -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "notification marked as read"})
}
