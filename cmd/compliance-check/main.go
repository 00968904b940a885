// Command compliance-check runs the compliance check outside Lambda, either
// against a single object or by replaying a saved S3 event.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/Pakhtun2017/compliance-checker/internal/compliance"
	"github.com/Pakhtun2017/compliance-checker/internal/config"
	"github.com/Pakhtun2017/compliance-checker/internal/logger"
	"github.com/Pakhtun2017/compliance-checker/internal/services"
	"github.com/aws/aws-lambda-go/events"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/urfave/cli/v2"
)

func dryRunFlag() *cli.BoolFlag {
	return &cli.BoolFlag{
		Name:  "dry-run",
		Usage: "Log alerts instead of publishing them to SNS",
	}
}

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:  "compliance-check",
		Usage: "Check S3 objects for a compliant flag",
		Commands: []*cli.Command{
			{
				Name:      "object",
				Usage:     "Check one object",
				ArgsUsage: "s3://<bucket>/<key>",
				Flags:     []cli.Flag{dryRunFlag()},
				Action: func(c *cli.Context) error {
					ev, err := compliance.ParseURI(c.Args().First())
					if err != nil {
						return err
					}

					checker, err := newChecker(c)
					if err != nil {
						return err
					}

					result, err := checker.Check(c.Context, ev)
					if err != nil {
						return err
					}
					return writeResult(out, result)
				},
			},
			{
				Name:      "event",
				Usage:     "Replay an S3 notification saved as JSON",
				ArgsUsage: "<event.json>",
				Flags:     []cli.Flag{dryRunFlag()},
				Action: func(c *cli.Context) error {
					event, err := readEvent(c.Args().First())
					if err != nil {
						return err
					}

					checker, err := newChecker(c)
					if err != nil {
						return err
					}

					result, err := checker.HandleS3Event(c.Context, event)
					if err != nil {
						return err
					}
					return writeResult(out, result)
				},
			},
		},
	}
}

func newChecker(c *cli.Context) (*compliance.Checker, error) {
	dryRun := c.Bool("dry-run")

	cfg, err := config.LoadChecker(!dryRun)
	if err != nil {
		return nil, err
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format)

	awsCfg, err := services.LoadAWSConfig(c.Context, cfg.Region)
	if err != nil {
		return nil, err
	}

	var publisher compliance.Publisher = services.NewLogPublisher(log)
	if !dryRun {
		publisher = services.NewSNSPublisher(sns.NewFromConfig(awsCfg), cfg.TopicARN)
	}

	return compliance.NewChecker(services.NewS3Fetcher(awss3.NewFromConfig(awsCfg)), publisher, log), nil
}

func readEvent(path string) (events.S3Event, error) {
	var event events.S3Event
	if path == "" {
		return event, fmt.Errorf("event file is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return event, err
	}
	if err := json.Unmarshal(data, &event); err != nil {
		return event, fmt.Errorf("invalid S3 event %s: %w", path, err)
	}
	return event, nil
}

func writeResult(out io.Writer, result compliance.Result) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
