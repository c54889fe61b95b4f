package aws

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"go.uber.org/zap"

	"github.com/cyphera/cyphera-rebalancer/internal/types/business"
)

// SQSAPI is the slice of the SQS SDK the publisher calls.
type SQSAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// SQSPublisher sends run summaries to the downstream queue.
type SQSPublisher struct {
	client   SQSAPI
	queueURL string
	logger   *zap.Logger
}

// SQSConfig selects the queue and, for local stacks, an endpoint override.
type SQSConfig struct {
	QueueURL string
	Region   string
	Endpoint string
}

// NewSQSPublisher builds a publisher from the default AWS chain. With an Endpoint set
// (localstack) static test credentials are used instead.
func NewSQSPublisher(ctx context.Context, cfg SQSConfig, logger *zap.Logger) (*SQSPublisher, error) {
	var opts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	}
	if cfg.Endpoint != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("test", "test", "")))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := sqs.NewFromConfig(awsCfg, func(o *sqs.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	return NewSQSPublisherWithAPI(client, cfg.QueueURL, logger), nil
}

// NewSQSPublisherWithAPI wraps an existing SQS API implementation.
func NewSQSPublisherWithAPI(client SQSAPI, queueURL string, logger *zap.Logger) *SQSPublisher {
	return &SQSPublisher{client: client, queueURL: queueURL, logger: logger}
}

// PublishRunSummary serializes the summary and sends it with run attributes.
func (p *SQSPublisher) PublishRunSummary(ctx context.Context, summary *business.RunSummary) error {
	body, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal run summary: %w", err)
	}

	_, err = p.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(p.queueURL),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"RunID": {
				StringValue: aws.String(summary.RunID.String()),
				DataType:    aws.String("String"),
			},
			"Status": {
				StringValue: aws.String(summary.Status),
				DataType:    aws.String("String"),
			},
			"Action": {
				StringValue: aws.String(string(summary.Action)),
				DataType:    aws.String("String"),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to send message to SQS: %w", err)
	}

	p.logger.Info("Published run summary", zap.String("run_id", summary.RunID.String()), zap.String("queue_url", p.queueURL))
	return nil
}
