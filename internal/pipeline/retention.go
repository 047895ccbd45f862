package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/verihire/verihire/internal/storage"
)

const (
	retentionQueueSize   = 256
	retentionCallTimeout = 15 * time.Second
)

// RetentionManager deletes raw recordings from the storage service after
// analysis, off the critical path. Deletions are queued to a background
// worker; failures are logged and swallowed and never touch the response
// already returned to the caller.
type RetentionManager struct {
	deleter storage.Deleter
	log     *logrus.Logger

	queue chan string
	once  sync.Once
	wg    sync.WaitGroup
}

func NewRetentionManager(deleter storage.Deleter, log *logrus.Logger) *RetentionManager {
	if log == nil {
		log = logrus.New()
	}
	m := &RetentionManager{
		deleter: deleter,
		log:     log,
		queue:   make(chan string, retentionQueueSize),
	}
	m.wg.Add(1)
	go m.run()
	return m
}

// ScheduleDelete enqueues a media reference for deletion. Non-blocking:
// if the queue is full the reference is dropped with a log line.
func (m *RetentionManager) ScheduleDelete(mediaRef string) {
	if mediaRef == "" {
		return
	}
	select {
	case m.queue <- mediaRef:
	default:
		m.log.WithField("media_ref", mediaRef).Warn("retention queue full; skipping delete")
	}
}

// Close drains the queue and stops the worker.
func (m *RetentionManager) Close() {
	m.once.Do(func() { close(m.queue) })
	m.wg.Wait()
}

func (m *RetentionManager) run() {
	defer m.wg.Done()
	for ref := range m.queue {
		bucket, object, ok := storage.ParseObjectRef(ref)
		if !ok {
			// inline payloads and foreign URLs have nothing to delete
			m.log.WithField("media_ref", ref).Debug("not a stored object; skipping delete")
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), retentionCallTimeout)
		err := m.deleter.Delete(ctx, bucket, object)
		cancel()

		if err != nil {
			m.log.WithFields(logrus.Fields{
				"bucket": bucket,
				"object": object,
			}).WithError(err).Warn("media delete failed")
			continue
		}
		m.log.WithFields(logrus.Fields{
			"bucket": bucket,
			"object": object,
		}).Debug("media deleted")
	}
}
