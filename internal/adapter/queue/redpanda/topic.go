package redpanda

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kmsg"
)

type requester interface {
	Request(ctx context.Context, req kmsg.Request) (kmsg.Response, error)
}

// topicSpec describes the evaluation events topic.
type topicSpec struct {
	Name        string
	Partitions  int32
	Replication int16
	Retention   time.Duration
}

// eventsTopic is a single-partition topic; consumers only aggregate, so
// ordering across users does not matter and one partition keeps it cheap.
func eventsTopic(name string) topicSpec {
	return topicSpec{Name: name, Partitions: 1, Replication: 1, Retention: 7 * 24 * time.Hour}
}

func (s topicSpec) validate() error {
	switch {
	case s.Name == "":
		return errors.New("topic name is empty")
	case s.Partitions <= 0:
		return fmt.Errorf("topic %s: partitions must be positive", s.Name)
	case s.Replication <= 0:
		return fmt.Errorf("topic %s: replication must be positive", s.Name)
	}
	return nil
}

// ensureTopic creates the topic through the admin API. A topic that already
// exists is left as it is.
func ensureTopic(ctx context.Context, client requester, spec topicSpec) error {
	if err := spec.validate(); err != nil {
		return fmt.Errorf("op=redpanda.ensureTopic: %w", err)
	}

	t := kmsg.NewCreateTopicsRequestTopic()
	t.Topic = spec.Name
	t.NumPartitions = spec.Partitions
	t.ReplicationFactor = spec.Replication
	if spec.Retention > 0 {
		c := kmsg.NewCreateTopicsRequestTopicConfig()
		c.Name = "retention.ms"
		v := strconv.FormatInt(spec.Retention.Milliseconds(), 10)
		c.Value = &v
		t.Configs = append(t.Configs, c)
	}
	req := kmsg.NewPtrCreateTopicsRequest()
	req.TimeoutMillis = 30000
	req.Topics = append(req.Topics, t)

	raw, err := client.Request(ctx, req)
	if err != nil {
		return fmt.Errorf("op=redpanda.ensureTopic: %w", err)
	}
	resp, ok := raw.(*kmsg.CreateTopicsResponse)
	if !ok {
		return fmt.Errorf("op=redpanda.ensureTopic: unexpected response %T", raw)
	}
	for _, tr := range resp.Topics {
		err := kerr.ErrorForCode(tr.ErrorCode)
		switch {
		case err == nil:
			slog.Info("events topic created", slog.String("topic", tr.Topic), slog.Duration("retention", spec.Retention))
		case errors.Is(err, kerr.TopicAlreadyExists):
			slog.Debug("events topic exists", slog.String("topic", tr.Topic))
		default:
			if tr.ErrorMessage != nil {
				return fmt.Errorf("op=redpanda.ensureTopic: %s: %w: %s", tr.Topic, err, *tr.ErrorMessage)
			}
			return fmt.Errorf("op=redpanda.ensureTopic: %s: %w", tr.Topic, err)
		}
	}
	return nil
}
