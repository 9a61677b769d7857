package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sysu-ecnc-dev/shift-engine/backend/internal/domain"
)

// 只有持有者才能释放锁，避免误删其他任务重新获取的锁
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Tracker 在 redis 中保存生成任务的状态，以及每个排班的互斥锁
type Tracker struct {
	rdb        *redis.Client
	expiration time.Duration
}

func NewTracker(rdb *redis.Client, expiration time.Duration) *Tracker {
	return &Tracker{
		rdb:        rdb,
		expiration: expiration,
	}
}

func JobKey(id string) string {
	return fmt.Sprintf("generation_job_%s", id)
}

func LockKey(ref domain.ScheduleRef) string {
	return fmt.Sprintf("generation_lock_%s_%d", ref.Kind, ref.ID)
}

func (t *Tracker) Save(ctx context.Context, job *domain.GenerationJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return t.rdb.Set(ctx, JobKey(job.ID), data, t.expiration).Err()
}

func (t *Tracker) Get(ctx context.Context, id string) (*domain.GenerationJob, error) {
	data, err := t.rdb.Get(ctx, JobKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrJobNotFound
		}
		return nil, err
	}

	job := &domain.GenerationJob{}
	if err := json.Unmarshal(data, job); err != nil {
		return nil, fmt.Errorf("任务 %s 的状态无法解析: %w", id, err)
	}
	return job, nil
}

// AcquireLock 为 ref 加锁，ttl 应不小于单次生成的超时时间；已被其他任务持有时返回 false
func (t *Tracker) AcquireLock(ctx context.Context, ref domain.ScheduleRef, jobID string, ttl time.Duration) (bool, error) {
	return t.rdb.SetNX(ctx, LockKey(ref), jobID, ttl).Result()
}

func (t *Tracker) ReleaseLock(ctx context.Context, ref domain.ScheduleRef, jobID string) error {
	return releaseScript.Run(ctx, t.rdb, []string{LockKey(ref)}, jobID).Err()
}

// LockHolder 返回当前持有锁的任务 ID，没有锁时返回空字符串
func (t *Tracker) LockHolder(ctx context.Context, ref domain.ScheduleRef) (string, error) {
	holder, err := t.rdb.Get(ctx, LockKey(ref)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return holder, err
}
