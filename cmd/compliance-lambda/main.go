// Command compliance-lambda is the Lambda entrypoint invoked by S3
// ObjectCreated notifications.
package main

import (
	"context"

	"github.com/Pakhtun2017/compliance-checker/internal/compliance"
	"github.com/Pakhtun2017/compliance-checker/internal/config"
	"github.com/Pakhtun2017/compliance-checker/internal/logger"
	"github.com/Pakhtun2017/compliance-checker/internal/services"
	"github.com/aws/aws-lambda-go/lambda"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

func main() {
	cfg, err := config.LoadChecker(true)
	if err != nil {
		boot := logger.New("info", logger.FormatJSON)
		boot.Fatal().Err(err).Msg("invalid configuration")
	}

	log := logger.New(cfg.Log.Level, logger.FormatJSON)

	awsCfg, err := services.LoadAWSConfig(context.Background(), cfg.Region)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load AWS configuration")
	}

	checker := compliance.NewChecker(
		services.NewS3Fetcher(awss3.NewFromConfig(awsCfg)),
		services.NewSNSPublisher(sns.NewFromConfig(awsCfg), cfg.TopicARN),
		log,
	)

	lambda.Start(checker.HandleS3Event)
}
