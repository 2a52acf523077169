package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushq/timetable-api/internal/models"
	"github.com/campushq/timetable-api/pkg/jobs"
)

type recordingSender struct {
	mu        sync.Mutex
	delivered []ConflictNotice
	done      chan struct{}
}

func newRecordingSender() *recordingSender {
	return &recordingSender{done: make(chan struct{}, 8)}
}

func (s *recordingSender) Send(_ context.Context, notice ConflictNotice) error {
	s.mu.Lock()
	s.delivered = append(s.delivered, notice)
	s.mu.Unlock()
	s.done <- struct{}{}
	return nil
}

func (s *recordingSender) notices() []ConflictNotice {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ConflictNotice(nil), s.delivered...)
}

func TestNotifyConflictDeliversThroughQueue(t *testing.T) {
	sender := newRecordingSender()
	svc := NewNotificationService(sender, jobs.QueueConfig{Workers: 1, BufferSize: 4}, nil)

	svc.Start(context.Background())
	defer svc.Stop()

	notice := ConflictNotice{UserID: "u1", EntryID: "e1", Type: models.ConflictRoom, Description: "double booked"}
	require.NoError(t, svc.NotifyConflict(notice))

	select {
	case <-sender.done:
	case <-time.After(2 * time.Second):
		t.Fatal("notice was not delivered")
	}
	delivered := sender.notices()
	require.Len(t, delivered, 1)
	assert.Equal(t, notice, delivered[0])
}

func TestNotifyConflictFallsBackInlineWhenQueueStopped(t *testing.T) {
	sender := newRecordingSender()
	svc := NewNotificationService(sender, jobs.QueueConfig{Workers: 1}, nil)

	notice := ConflictNotice{UserID: "u2", EntryID: "e2", Type: models.ConflictCapacity}
	require.NoError(t, svc.NotifyConflict(notice))

	delivered := sender.notices()
	require.Len(t, delivered, 1)
	assert.Equal(t, "u2", delivered[0].UserID)
}
