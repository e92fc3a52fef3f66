package sink

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"go.uber.org/zap"

	"github.com/Sena-ops/sentrius/internal/export"
	"github.com/Sena-ops/sentrius/internal/model"
)

// maxSQSMessageBytes is the SQS message size limit.
const maxSQSMessageBytes = 256 * 1024

// SQSAPI is the subset of the SQS client used by SQS.
type SQSAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// SQS publishes the payload as a single message on a queue, for log pipelines
// that ingest from SQS instead of HTTP.
type SQS struct {
	Client     SQSAPI
	QueueURL   string
	SourceType string
	Source     string

	log *zap.SugaredLogger
}

// NewSQS builds a sink from the default AWS credential chain.
func NewSQS(ctx context.Context, region, queueURL string, log *zap.SugaredLogger) (*SQS, error) {
	var opts []func(*config.LoadOptions) error
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &SQS{Client: sqs.NewFromConfig(awsCfg), QueueURL: queueURL, log: log}, nil
}

func (s *SQS) Send(ctx context.Context, p export.Payload) error {
	p = withMeta(p, s.SourceType, s.Source)

	body, err := json.Marshal(p)
	if err != nil {
		return &model.TransportError{Op: "export", URL: s.QueueURL, Err: fmt.Errorf("encode payload: %w", err)}
	}
	if len(body) > maxSQSMessageBytes {
		return &model.TransportError{Op: "export", URL: s.QueueURL, Err: fmt.Errorf("payload of %d bytes exceeds the %d byte SQS limit", len(body), maxSQSMessageBytes)}
	}

	attrs := map[string]types.MessageAttributeValue{
		"findings": {DataType: aws.String("Number"), StringValue: aws.String(fmt.Sprintf("%d", len(p.Findings)))},
	}
	if p.SourceType != "" {
		attrs["sourcetype"] = types.MessageAttributeValue{DataType: aws.String("String"), StringValue: aws.String(p.SourceType)}
	}

	out, err := s.Client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:          aws.String(s.QueueURL),
		MessageBody:       aws.String(string(body)),
		MessageAttributes: attrs,
	})
	if err != nil {
		return &model.TransportError{Op: "export", URL: s.QueueURL, Err: err}
	}

	if s.log != nil {
		s.log.Debugw("export delivered", "sink", "sqs", "queue", s.QueueURL, "findings", len(p.Findings), "message_id", aws.ToString(out.MessageId))
	}
	return nil
}
