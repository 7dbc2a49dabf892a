package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/amankumarsingh77/video-ingest/internal/models"
	"github.com/amankumarsingh77/video-ingest/internal/videofiles"
	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
)

type videoRedisRepo struct {
	redisClient *redis.Client
	keyPrefix   string
	channel     string
	ttl         time.Duration
}

func NewVideoRedisRepo(redisClient *redis.Client, keyPrefix, channel string, ttl time.Duration) videofiles.RedisRepository {
	return &videoRedisRepo{
		redisClient: redisClient,
		keyPrefix:   keyPrefix,
		channel:     channel,
		ttl:         ttl,
	}
}

func (v *videoRedisRepo) UpdateStatus(ctx context.Context, status *models.JobStatus) error {
	key := v.keyPrefix + status.JobID
	if status.UpdatedAt.IsZero() {
		status.UpdatedAt = time.Now()
	}

	pipe := v.redisClient.TxPipeline()
	pipe.HSet(ctx, key, map[string]interface{}{
		"job_id":     status.JobID,
		"state":      string(status.State),
		"video_id":   status.VideoID,
		"error":      status.Error,
		"updated_at": status.UpdatedAt.Format(time.RFC3339Nano),
	})
	pipe.Expire(ctx, key, v.ttl)
	if status.State.Terminal() && v.channel != "" {
		notification, err := json.Marshal(status)
		if err != nil {
			return errors.Wrap(err, "videoRedisRepo.UpdateStatus.Marshal")
		}
		pipe.Publish(ctx, v.channel, notification)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Wrap(err, "videoRedisRepo.UpdateStatus.Exec")
	}
	return nil
}

func (v *videoRedisRepo) GetJobStatus(ctx context.Context, jobID string) (*models.JobStatus, error) {
	fields, err := v.redisClient.HGetAll(ctx, v.keyPrefix+jobID).Result()
	if err != nil {
		return nil, errors.Wrap(err, "videoRedisRepo.GetJobStatus.HGetAll")
	}
	if len(fields) == 0 {
		return nil, videofiles.ErrNotFound
	}
	status := &models.JobStatus{
		JobID:   fields["job_id"],
		State:   models.JobState(fields["state"]),
		VideoID: fields["video_id"],
		Error:   fields["error"],
	}
	if ts := fields["updated_at"]; ts != "" {
		if parsed, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			status.UpdatedAt = parsed
		}
	}
	return status, nil
}
