// Package redis persists simulation run output as Redis series so runs can
// be inspected and compared after the process exits.
package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/erain9/marketsim/pkg/messaging"
)

// Options represents configuration options for the Redis connection
type Options struct {
	Addr     string
	Password string
	DB       int
}

var defaultOptions = &Options{
	Addr:     "localhost:6379",
	Password: "",
	DB:       0,
}

// SetDefaultOptions sets the default options for Redis connections
func SetDefaultOptions(options *Options) {
	defaultOptions = options
}

// GetClient creates a new Redis client using the default options
func GetClient() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     defaultOptions.Addr,
		Password: defaultOptions.Password,
		DB:       defaultOptions.DB,
	})
}

// RunStore writes per-step records of a simulation run into Redis lists,
// one list per run, with a set indexing known run IDs.
type RunStore struct {
	client *redis.Client
	prefix string
}

// NewRunStore creates a RunStore using the given client and key prefix.
func NewRunStore(client *redis.Client, prefix string) *RunStore {
	if prefix == "" {
		prefix = "marketsim"
	}
	return &RunStore{client: client, prefix: prefix}
}

// StartRun registers a fresh run and returns its ID.
func (s *RunStore) StartRun(ctx context.Context) (string, error) {
	runID := uuid.NewString()
	if err := s.client.SAdd(ctx, s.runsKey(), runID).Err(); err != nil {
		return "", fmt.Errorf("failed to register run: %w", err)
	}
	return runID, nil
}

// AppendStep appends one step record to the run's series.
func (s *RunStore) AppendStep(ctx context.Context, runID string, msg *messaging.StepMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal step record: %w", err)
	}
	if err := s.client.RPush(ctx, s.stepsKey(runID), data).Err(); err != nil {
		return fmt.Errorf("failed to append step record: %w", err)
	}
	return nil
}

// Steps returns every step record of the given run in order.
func (s *RunStore) Steps(ctx context.Context, runID string) ([]*messaging.StepMessage, error) {
	raw, err := s.client.LRange(ctx, s.stepsKey(runID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read run series: %w", err)
	}

	out := make([]*messaging.StepMessage, 0, len(raw))
	for _, item := range raw {
		var msg messaging.StepMessage
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			log.Warn().Err(err).Str("run_id", runID).Msg("Skipping malformed step record")
			continue
		}
		out = append(out, &msg)
	}
	return out, nil
}

// ListRuns returns the IDs of all recorded runs.
func (s *RunStore) ListRuns(ctx context.Context) ([]string, error) {
	runs, err := s.client.SMembers(ctx, s.runsKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

// DeleteRun removes a run's series and its index entry.
func (s *RunStore) DeleteRun(ctx context.Context, runID string) error {
	if err := s.client.Del(ctx, s.stepsKey(runID)).Err(); err != nil {
		return fmt.Errorf("failed to delete run series: %w", err)
	}
	if err := s.client.SRem(ctx, s.runsKey(), runID).Err(); err != nil {
		return fmt.Errorf("failed to deindex run: %w", err)
	}
	return nil
}

func (s *RunStore) runsKey() string {
	return fmt.Sprintf("%s:runs", s.prefix)
}

func (s *RunStore) stepsKey(runID string) string {
	return fmt.Sprintf("%s:run:%s:steps", s.prefix, runID)
}
