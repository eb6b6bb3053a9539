package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"wmrecon/internal/application/port"
	"wmrecon/internal/domain/model"

	"github.com/redis/go-redis/v9"
)

// Repo publishes reconciliation results: run summaries in a hash per run,
// failed checks appended to a stream and announced on a channel.
type Repo struct {
	rdb           *redis.Client
	prefix        string
	ttl           time.Duration
	resultStream  string
	resultChannel string
}

type checkMessage struct {
	RunID     string   `json:"run_id"`
	Check     string   `json:"check"`
	Portfolio string   `json:"portfolio"`
	Summary   string   `json:"summary"`
	Failures  []string `json:"failures,omitempty"`
	Error     string   `json:"error,omitempty"`
}

func New(rdb *redis.Client, prefix string, ttl time.Duration, resultStream, resultChannel string) *Repo {
	if strings.TrimSpace(resultStream) == "" {
		resultStream = prefix + ":failures"
	}
	if strings.TrimSpace(resultChannel) == "" {
		resultChannel = prefix + ":failures:pub"
	}
	return &Repo{
		rdb:           rdb,
		prefix:        prefix,
		ttl:           ttl,
		resultStream:  resultStream,
		resultChannel: resultChannel,
	}
}

func (r *Repo) runKey(id string) string { return r.prefix + ":run:" + id }

func (r *Repo) writeRun(ctx context.Context, run *model.Run) error {
	key := r.runKey(run.ID)
	pipe := r.rdb.Pipeline()
	pipe.HSet(ctx, key,
		"env", run.Env,
		"as_of", model.FormatDay(run.AsOf),
		"started_at", run.StartedAt.UTC().Format(time.RFC3339),
		"checks", run.Checks,
		"failed", run.Failed,
	)
	if !run.FinishedAt.IsZero() {
		pipe.HSet(ctx, key, "finished_at", run.FinishedAt.UTC().Format(time.RFC3339))
	}
	if r.ttl > 0 {
		pipe.Expire(ctx, key, r.ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (r *Repo) InsertRun(ctx context.Context, run *model.Run) error {
	return r.writeRun(ctx, run)
}

func (r *Repo) FinishRun(ctx context.Context, run *model.Run) error {
	if err := r.writeRun(ctx, run); err != nil {
		return err
	}
	msg := fmt.Sprintf(`{"run_id":%q,"checks":%d,"failed":%d}`, run.ID, run.Checks, run.Failed)
	return r.rdb.Publish(ctx, r.resultChannel, msg).Err()
}

// InsertCheck records failed checks only.
func (r *Repo) InsertCheck(ctx context.Context, runID string, res *model.CheckResult) error {
	if res.Passed() {
		return nil
	}
	payload, err := json.Marshal(checkMessage{
		RunID:     runID,
		Check:     res.Check,
		Portfolio: res.Portfolio,
		Summary:   res.Summary(),
		Failures:  res.Failures,
		Error:     res.Err,
	})
	if err != nil {
		return err
	}

	// 1) Stream: XADD <stream> * run check portfolio payload
	_, err = r.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: r.resultStream,
		Values: map[string]any{
			"run_id":    runID,
			"check":     res.Check,
			"portfolio": res.Portfolio,
			"payload":   string(payload),
		},
	}).Result()
	if err != nil {
		return err
	}

	// 2) PubSub: PUBLISH <channel> json
	return r.rdb.Publish(ctx, r.resultChannel, string(payload)).Err()
}

// Close leaves the client to its owner.
func (r *Repo) Close() error { return nil }

var _ port.ResultRepository = (*Repo)(nil)
