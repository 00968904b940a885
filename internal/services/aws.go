package services

import (
	"context"
	"fmt"
	"io"

	"github.com/Pakhtun2017/compliance-checker/internal/compliance"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/rs/zerolog"
)

// S3GetObjectAPI is the S3 call S3Fetcher needs
type S3GetObjectAPI interface {
	GetObject(ctx context.Context, params *awss3.GetObjectInput, optFns ...func(*awss3.Options)) (*awss3.GetObjectOutput, error)
}

// SNSPublishAPI is the SNS call SNSPublisher needs
type SNSPublishAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// LoadAWSConfig resolves credentials and region the standard SDK way.
// An empty region leaves resolution to the environment.
func LoadAWSConfig(ctx context.Context, region string) (aws.Config, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	return cfg, nil
}

// S3Fetcher reads whole object bodies from S3
type S3Fetcher struct {
	client S3GetObjectAPI
}

func NewS3Fetcher(client S3GetObjectAPI) *S3Fetcher {
	return &S3Fetcher{client: client}
}

func (f *S3Fetcher) FetchObject(ctx context.Context, bucket, key string) ([]byte, error) {
	out, err := f.client.GetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("s3 get object: %w", err)
	}
	defer func() { _ = out.Body.Close() }()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("s3 read body: %w", err)
	}
	return body, nil
}

// SNSPublisher publishes alerts to one SNS topic
type SNSPublisher struct {
	client   SNSPublishAPI
	topicARN string
}

func NewSNSPublisher(client SNSPublishAPI, topicARN string) *SNSPublisher {
	return &SNSPublisher{client: client, topicARN: topicARN}
}

func (p *SNSPublisher) Publish(ctx context.Context, subject, message string) error {
	_, err := p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(p.topicARN),
		Subject:  aws.String(subject),
		Message:  aws.String(message),
	})
	if err != nil {
		return fmt.Errorf("sns publish: %w", err)
	}
	return nil
}

// LogPublisher writes alerts to the log instead of sending them
type LogPublisher struct {
	log zerolog.Logger
}

func NewLogPublisher(log zerolog.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) Publish(_ context.Context, subject, message string) error {
	p.log.Warn().Str("subject", subject).Bool("dry_run", true).Msg(message)
	return nil
}

var (
	_ compliance.Fetcher   = (*S3Fetcher)(nil)
	_ compliance.Publisher = (*SNSPublisher)(nil)
	_ compliance.Publisher = (*LogPublisher)(nil)
)
