package notifications

import "context"

type StoreAPI interface {
	CreateNotification(ctx context.Context, companyID, userID, ntype, title, body string) error
	ListNotifications(ctx context.Context, companyID, userID string, limit, offset int) ([]Notification, error)
	CountUnread(ctx context.Context, companyID, userID string) (int, error)
	MarkRead(ctx context.Context, companyID, userID, notificationID string) error
	MarkAllRead(ctx context.Context, companyID, userID string) error
}
