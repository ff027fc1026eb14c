package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	kafkaadapter "github.com/couchcryptid/route-risk-service/internal/adapter/kafka"
	"github.com/couchcryptid/route-risk-service/internal/observability"
	"github.com/couchcryptid/route-risk-service/internal/publisher"
)

func publishCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "publish",
		Short: "Assess every route once and publish the results to Kafka",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !e.cfg.PublisherEnabled() {
				return errors.New("KAFKA_BROKERS is not set")
			}
			metrics := observability.NewUnregisteredMetrics()
			repo, err := e.newRepository(metrics)
			if err != nil {
				return err
			}

			writer := kafkaadapter.NewWriter(e.cfg.KafkaBrokers, e.cfg.KafkaTopic, e.logger)
			defer writer.Close()

			pub := publisher.New(repo, writer, e.cfg.PublishInterval, e.logger, metrics)
			n, err := pub.RunOnce(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "published %d assessments to %s\n", n, e.cfg.KafkaTopic)
			return nil
		},
	}
}
