package push

import (
	"context"
	"fmt"

	"tourstaff-service/internal/domain/entity"
	"tourstaff-service/pkg/logger"

	"golang.org/x/oauth2"
	"google.golang.org/api/fcm/v1"
	"google.golang.org/api/option"
)

// FCMPushRepository sends notifications through the FCM HTTP v1 API
type FCMPushRepository struct {
	service   *fcm.Service
	projectID string
	logger    logger.Logger
}

// NewFCMPushRepository creates a new FCM push sender
func NewFCMPushRepository(ctx context.Context, tokenSource oauth2.TokenSource, projectID string, logger logger.Logger, opts ...option.ClientOption) (*FCMPushRepository, error) {
	opts = append([]option.ClientOption{option.WithTokenSource(tokenSource)}, opts...)
	service, err := fcm.NewService(ctx, opts...)
	if err != nil {
		return nil, err
	}

	return &FCMPushRepository{
		service:   service,
		projectID: projectID,
		logger:    logger,
	}, nil
}

// Send delivers one message to one device token and returns the FCM message name
func (p *FCMPushRepository) Send(ctx context.Context, msg *entity.PushMessage) (string, error) {
	if msg.Token == "" {
		return "", fmt.Errorf("push message has no device token")
	}

	data := make(map[string]string, len(msg.Data)+1)
	for k, v := range msg.Data {
		data[k] = v
	}
	data["type"] = string(msg.Type)

	req := &fcm.SendMessageRequest{
		Message: &fcm.Message{
			Token: msg.Token,
			Notification: &fcm.Notification{
				Title: msg.Title,
				Body:  msg.Body,
			},
			Data: data,
			Android: &fcm.AndroidConfig{
				Priority: "HIGH",
			},
		},
	}

	parent := fmt.Sprintf("projects/%s", p.projectID)
	resp, err := p.service.Projects.Messages.Send(parent, req).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to send push: %w", err)
	}

	p.logger.Debug("FCM message sent", "name", resp.Name, "type", msg.Type)
	return resp.Name, nil
}
