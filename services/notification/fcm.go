package notification

import (
	"context"
	"fmt"
	"time"

	"academix/database"
	"academix/utils"

	"firebase.google.com/go/v4/messaging"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// DefaultNotificationService sends FCM pushes, resolving device tokens from
// the device_tokens collection keyed by (owner_type, owner_id).
type DefaultNotificationService struct {
	tokens *mongo.Collection
}

// NewDefaultNotificationService creates the production notification service.
func NewDefaultNotificationService() *DefaultNotificationService {
	return &DefaultNotificationService{tokens: database.Collection("device_tokens")}
}

// SendUserPushNotification looks up a user's FCM token and sends a push.
func (s *DefaultNotificationService) SendUserPushNotification(
	ctx context.Context,
	userID, title, body string,
	data map[string]string,
) error {
	return s.send(ctx, "user", userID, title, body, data)
}

// SendAcademyPushNotification looks up an academy's FCM token and sends a push.
func (s *DefaultNotificationService) SendAcademyPushNotification(
	ctx context.Context,
	academyID, title, body string,
	data map[string]string,
) error {
	return s.send(ctx, "academy", academyID, title, body, data)
}

func (s *DefaultNotificationService) send(
	ctx context.Context,
	ownerType, ownerID, title, body string,
	data map[string]string,
) error {
	if utils.FCMClient == nil {
		return nil // push disabled, nothing to deliver
	}

	token, err := s.lookupToken(ctx, ownerType, ownerID)
	if err != nil {
		return err
	}

	msg := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	}

	if _, err := utils.FCMClient.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send FCM message to %s %s: %w", ownerType, ownerID, err)
	}
	return nil
}

func (s *DefaultNotificationService) lookupToken(ctx context.Context, ownerType, ownerID string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var doc struct {
		Token string `bson:"token"`
	}
	filter := bson.M{"owner_type": ownerType, "owner_id": ownerID}
	if err := s.tokens.FindOne(ctx, filter).Decode(&doc); err != nil {
		return "", fmt.Errorf("no device token for %s %s: %w", ownerType, ownerID, err)
	}
	if doc.Token == "" {
		return "", fmt.Errorf("%s %s has an empty device token", ownerType, ownerID)
	}
	return doc.Token, nil
}
