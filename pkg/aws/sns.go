package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

// SNS subjects are limited to 100 characters
const maxSubjectLength = 100

// SNSAPI is the subset of the SNS client used for notifications
type SNSAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// Notifier publishes messages to a single SNS topic
type Notifier struct {
	client   SNSAPI
	topicARN string
}

// NewNotifier creates a Notifier for topicARN from a loaded AWS config
func NewNotifier(cfg aws.Config, topicARN string) *Notifier {
	return NewNotifierFromAPI(sns.NewFromConfig(cfg), topicARN)
}

// NewNotifierFromAPI wraps an existing SNS API implementation
func NewNotifierFromAPI(api SNSAPI, topicARN string) *Notifier {
	return &Notifier{
		client:   api,
		topicARN: topicARN,
	}
}

// Publish sends one message and returns its message ID
func (n *Notifier) Publish(ctx context.Context, subject, body string) (string, error) {
	if len(subject) > maxSubjectLength {
		subject = subject[:maxSubjectLength]
	}

	result, err := n.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(n.topicARN),
		Subject:  aws.String(subject),
		Message:  aws.String(body),
	})
	if err != nil {
		return "", fmt.Errorf("error publishing to %s: %w", n.topicARN, err)
	}
	return aws.ToString(result.MessageId), nil
}
