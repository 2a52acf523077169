package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campushq/timetable-api/internal/models"
	"github.com/campushq/timetable-api/pkg/jobs"
)

const jobTypeConflictNotice = "conflict_notice"

// ConflictNotice is the payload delivered to a lecturer whose assignment
// ended up in a conflict.
type ConflictNotice struct {
	UserID      string              `json:"user_id"`
	EntryID     string              `json:"entry_id"`
	Type        models.ConflictType `json:"type"`
	Description string              `json:"description"`
}

// Sender delivers a single notice. Implementations may push to email, chat
// webhooks or an in-app inbox.
type Sender interface {
	Send(ctx context.Context, notice ConflictNotice) error
}

// LogSender writes notices to the application log. It is the default sender
// when no delivery channel is configured.
type LogSender struct {
	logger *zap.Logger
}

func NewLogSender(logger *zap.Logger) *LogSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(_ context.Context, notice ConflictNotice) error {
	s.logger.Sugar().Infow("conflict notice",
		"user_id", notice.UserID,
		"entry_id", notice.EntryID,
		"type", notice.Type,
		"description", notice.Description,
	)
	return nil
}

// NotificationService fans conflict notices out through the background job
// queue so generation latency never depends on delivery.
type NotificationService struct {
	queue  *jobs.Queue
	sender Sender
	logger *zap.Logger
}

func NewNotificationService(sender Sender, cfg jobs.QueueConfig, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if sender == nil {
		sender = NewLogSender(logger)
	}
	svc := &NotificationService{sender: sender, logger: logger}
	if cfg.Logger == nil {
		cfg.Logger = logger
	}
	svc.queue = jobs.NewQueue("notifications", svc.handle, cfg)
	return svc
}

// Start begins background delivery. Stop drains the workers.
func (s *NotificationService) Start(ctx context.Context) { s.queue.Start(ctx) }
func (s *NotificationService) Stop()                     { s.queue.Stop() }

func (s *NotificationService) handle(ctx context.Context, job jobs.Job) error {
	notice, ok := job.Payload.(ConflictNotice)
	if !ok {
		return fmt.Errorf("unexpected payload type for job %s", job.ID)
	}
	return s.sender.Send(ctx, notice)
}

// NotifyConflict enqueues one notice. When the queue is not running the
// notice is delivered inline so nothing is silently dropped.
func (s *NotificationService) NotifyConflict(notice ConflictNotice) error {
	job := jobs.Job{
		ID:      uuid.NewString(),
		Type:    jobTypeConflictNotice,
		Payload: notice,
	}
	if err := s.queue.Enqueue(job); err != nil {
		s.logger.Sugar().Warnw("enqueue failed, sending inline", "entry_id", notice.EntryID, "error", err)
		return s.sender.Send(context.Background(), notice)
	}
	return nil
}
