//go:build integration

package submission_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"onboarding/internal/form/models"
	"onboarding/internal/platform/config"
	"onboarding/internal/platform/kafka"
	"onboarding/internal/submission"
	"onboarding/pkg/testutil/containers"
)

func TestKafkaPublisher_Redpanda(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	rp := containers.NewRedpandaContainer(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cfg := config.KafkaConfig{
		Brokers:           []string{rp.Broker},
		Topic:             "onboarding.submissions.test",
		Partitions:        1,
		ReplicationFactor: 1,
		ProduceTimeout:    10 * time.Second,
	}
	producer, err := kafka.New(cfg, nil)
	require.NoError(t, err)
	defer producer.Close()
	require.NoError(t, kafka.EnsureTopic(ctx, producer, cfg))
	require.NoError(t, kafka.EnsureTopic(ctx, producer, cfg), "second call tolerates an existing topic")

	rec := models.Record{FormID: uuid.New(), SubmittedAt: time.Now().UTC(), Fields: models.Draft{"gender": "Other"}}
	require.NoError(t, submission.NewKafkaPublisher(producer, cfg.Topic).Submit(ctx, rec))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(rp.Broker),
		kgo.ConsumeTopics(cfg.Topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	defer consumer.Close()

	fetches := consumer.PollFetches(ctx)
	require.NoError(t, fetches.Err())
	records := fetches.Records()
	require.Len(t, records, 1)

	var event submission.Event
	require.NoError(t, json.Unmarshal(records[0].Value, &event))
	require.Equal(t, rec.FormID, event.FormID)
	require.Equal(t, "Other", event.Fields["gender"])
}
