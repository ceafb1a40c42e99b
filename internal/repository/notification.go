package repository

import (
	"context"
	"fmt"

	"github.com/restokit/resto-erp/internal/domain"
	"github.com/restokit/resto-erp/internal/repository/dao"
)

var (
	ErrNotificationNotFound = dao.ErrNotificationNotFound
	ErrDuplicateUnreadAlert = dao.ErrDuplicateUnreadAlert
)

type NotificationDAO interface {
	Insert(ctx context.Context, notification dao.Notification) (dao.Notification, error)
	HasUnreadForItem(ctx context.Context, category string, itemID uint) (bool, error)
	FindAll(ctx context.Context, limit, offset int) ([]dao.Notification, error)
	MarkRead(ctx context.Context, id uint) error
	CountUnread(ctx context.Context, category string) (int64, error)
}

type NotificationRepository struct {
	dao NotificationDAO
}

func NewNotificationRepository(dao NotificationDAO) *NotificationRepository {
	return &NotificationRepository{
		dao: dao,
	}
}

func (r *NotificationRepository) Create(ctx context.Context, notification domain.Notification) (domain.Notification, error) {
	created, err := r.dao.Insert(ctx, r.domainToDao(notification))
	if err != nil {
		return domain.Notification{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *NotificationRepository) HasUnreadForItem(ctx context.Context, category string, itemID uint) (bool, error) {
	found, err := r.dao.HasUnreadForItem(ctx, category, itemID)
	if err != nil {
		return false, fmt.Errorf("r.dao.HasUnreadForItem -> %w", err)
	}

	return found, nil
}

func (r *NotificationRepository) List(ctx context.Context, limit, offset int) ([]domain.Notification, error) {
	found, err := r.dao.FindAll(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindAll -> %w", err)
	}

	notifications := make([]domain.Notification, len(found))
	for i, n := range found {
		notifications[i] = r.daoToDomain(n)
	}

	return notifications, nil
}

func (r *NotificationRepository) MarkRead(ctx context.Context, id uint) error {
	if err := r.dao.MarkRead(ctx, id); err != nil {
		return fmt.Errorf("r.dao.MarkRead -> %w", err)
	}

	return nil
}

func (r *NotificationRepository) CountUnread(ctx context.Context, category string) (int64, error) {
	count, err := r.dao.CountUnread(ctx, category)
	if err != nil {
		return 0, fmt.Errorf("r.dao.CountUnread -> %w", err)
	}

	return count, nil
}

func (r *NotificationRepository) domainToDao(n domain.Notification) dao.Notification {
	return dao.Notification{
		ID:        n.ID,
		Category:  n.Category,
		ItemID:    n.ItemID,
		Message:   n.Message,
		Priority:  n.Priority,
		Quantity:  n.Quantity,
		Threshold: n.Threshold,
		Unit:      n.Unit,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
}

func (r *NotificationRepository) daoToDomain(n dao.Notification) domain.Notification {
	return domain.Notification{
		ID:        n.ID,
		Category:  n.Category,
		ItemID:    n.ItemID,
		Message:   n.Message,
		Priority:  n.Priority,
		Quantity:  n.Quantity,
		Threshold: n.Threshold,
		Unit:      n.Unit,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
}
