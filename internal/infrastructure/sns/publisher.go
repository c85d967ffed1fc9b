package sns

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/studypal-api/internal/config"
	"github.com/studypal-api/internal/domain"
)

// EventPublisher fans out entitlement-granted events to downstream consumers
// (receipt mails, analytics) via an SNS topic.
type EventPublisher interface {
	PublishEntitlementGranted(ctx context.Context, e *domain.Entitlement) error
}

type publisher struct {
	client   *sns.Client
	topicARN string
}

func NewPublisher(cfg *config.Config) (EventPublisher, error) {
	if cfg.SNSTopicARN == "" {
		return nil, fmt.Errorf("SNS_TOPIC_ARN not set")
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.AWSRegion),
	)
	if err != nil {
		return nil, err
	}
	return &publisher{client: sns.NewFromConfig(awsCfg), topicARN: cfg.SNSTopicARN}, nil
}

func (p *publisher) PublishEntitlementGranted(ctx context.Context, e *domain.Entitlement) error {
	msg, err := json.Marshal(struct {
		Event         string    `json:"event"`
		EntitlementID string    `json:"entitlement_id"`
		UserID        string    `json:"user_id"`
		OrderID       string    `json:"order_id"`
		PaymentID     string    `json:"payment_id"`
		At            time.Time `json:"at"`
	}{
		Event:         "entitlement.granted",
		EntitlementID: e.EntitlementID,
		UserID:        e.UserID,
		OrderID:       e.OrderID,
		PaymentID:     e.PaymentID,
		At:            e.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("marshal entitlement event: %w", err)
	}
	_, err = p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(p.topicARN),
		Message:  aws.String(string(msg)),
	})
	return err
}
