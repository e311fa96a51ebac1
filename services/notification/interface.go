package notification

import "context"

// NotificationService dispatches push notifications to users and academies.
// Delivery is fire-and-forget: callers log errors and never fail the
// surrounding operation on them.
type NotificationService interface {
	SendUserPushNotification(ctx context.Context, userID, title, body string, data map[string]string) error
	SendAcademyPushNotification(ctx context.Context, academyID, title, body string, data map[string]string) error
}
