package sns

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/neighbourlink-api/internal/config"
)

// PushSender delivers push notifications to registered devices.
type PushSender interface {
	// RegisterDevice exchanges an FCM device token for an SNS endpoint ARN.
	RegisterDevice(ctx context.Context, fcmToken string) (string, error)
	// SendPush publishes a notification to a device endpoint. The data map
	// is attached as the message payload for client-side routing.
	SendPush(ctx context.Context, endpointARN, title, body string, data map[string]string) error
}

type sender struct {
	client         *sns.Client
	platformAppARN string
}

// NewSender creates a PushSender backed by AWS SNS platform endpoints.
func NewSender(cfg *config.Config) (PushSender, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.AWSRegion),
	}
	if cfg.AWSAccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, err
	}

	clientOpts := []func(*sns.Options){}
	if cfg.AWSEndpointURL != "" {
		clientOpts = append(clientOpts, func(o *sns.Options) {
			o.BaseEndpoint = aws.String(cfg.AWSEndpointURL)
		})
	}

	return &sender{
		client:         sns.NewFromConfig(awsCfg, clientOpts...),
		platformAppARN: cfg.SNSPlatformAppARN,
	}, nil
}

func (s *sender) RegisterDevice(ctx context.Context, fcmToken string) (string, error) {
	out, err := s.client.CreatePlatformEndpoint(ctx, &sns.CreatePlatformEndpointInput{
		PlatformApplicationArn: aws.String(s.platformAppARN),
		Token:                  aws.String(fcmToken),
	})
	if err != nil {
		return "", fmt.Errorf("create platform endpoint: %w", err)
	}
	return aws.ToString(out.EndpointArn), nil
}

// gcmPayload is the FCM message body wrapped into the SNS message envelope.
type gcmPayload struct {
	Notification struct {
		Title string `json:"title"`
		Body  string `json:"body"`
	} `json:"notification"`
	Data map[string]string `json:"data,omitempty"`
}

func (s *sender) SendPush(ctx context.Context, endpointARN, title, body string, data map[string]string) error {
	var p gcmPayload
	p.Notification.Title = title
	p.Notification.Body = body
	p.Data = data

	gcm, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal push payload: %w", err)
	}
	envelope, err := json.Marshal(map[string]string{
		"default": body,
		"GCM":     string(gcm),
	})
	if err != nil {
		return fmt.Errorf("marshal push envelope: %w", err)
	}

	_, err = s.client.Publish(ctx, &sns.PublishInput{
		TargetArn:        aws.String(endpointARN),
		Message:          aws.String(string(envelope)),
		MessageStructure: aws.String("json"),
	})
	if err != nil {
		return fmt.Errorf("sns publish: %w", err)
	}
	return nil
}
