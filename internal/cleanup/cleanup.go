// Package cleanup removes blobs that no longer back an image record. Callers
// never wait on it and never see its failures.
package cleanup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"imageBackend/internal/lib/logger/sl"
	"imageBackend/internal/metrics"
)

const DefaultTimeout = 30 * time.Second

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=Deleter
type Deleter interface {
	Delete(ctx context.Context, name string) error
}

// Publisher is satisfied by producer.Producer.
type Publisher interface {
	SendMessage(ctx context.Context, message []byte) error
}

// Message is the queue payload of a pending deletion.
type Message struct {
	BlobKey string `json:"blob_key"`
}

// Inline deletes in a background goroutine of the current process.
type Inline struct {
	log     *slog.Logger
	deleter Deleter
	metrics *metrics.Metrics
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewInline(log *slog.Logger, deleter Deleter, m *metrics.Metrics) *Inline {
	return &Inline{
		log:     log,
		deleter: deleter,
		metrics: m,
		timeout: DefaultTimeout,
	}
}

// Discard schedules the deletion of key and returns immediately. The work is
// detached from ctx so it survives the request that triggered it.
func (c *Inline) Discard(ctx context.Context, key string) {
	if key == "" {
		return
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()

		c.delete(dctx, key)
	}()
}

// Wait blocks until every scheduled deletion has finished.
func (c *Inline) Wait() {
	c.wg.Wait()
}

func (c *Inline) delete(ctx context.Context, key string) {
	const op = "cleanup.Inline.delete"

	log := c.log.With(slog.String("op", op), slog.String("blob_key", key))

	if err := c.deleter.Delete(ctx, key); err != nil {
		log.Warn("failed to delete blob", sl.Err(err))
		c.metrics.BlobDeleteFailed()
		return
	}

	log.Debug("blob deleted")
}

// Queue hands deletions to a message broker. Publishing happens in the
// background; when it fails the blob is deleted inline instead.
type Queue struct {
	log       *slog.Logger
	publisher Publisher
	fallback  *Inline
}

func NewQueue(log *slog.Logger, publisher Publisher, fallback *Inline) *Queue {
	return &Queue{
		log:       log,
		publisher: publisher,
		fallback:  fallback,
	}
}

// Discard schedules publication of key and returns immediately.
func (q *Queue) Discard(ctx context.Context, key string) {
	if key == "" {
		return
	}

	q.fallback.wg.Add(1)
	go func() {
		defer q.fallback.wg.Done()

		pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), q.fallback.timeout)
		defer cancel()

		q.publish(pctx, key)
	}()
}

// Wait blocks until every publication and fallback deletion has finished.
func (q *Queue) Wait() {
	q.fallback.Wait()
}

func (q *Queue) publish(ctx context.Context, key string) {
	const op = "cleanup.Queue.publish"

	log := q.log.With(slog.String("op", op), slog.String("blob_key", key))

	msg, err := json.Marshal(Message{BlobKey: key})
	if err == nil {
		err = q.publisher.SendMessage(ctx, msg)
	}
	if err != nil {
		log.Warn("failed to enqueue blob deletion, deleting inline", sl.Err(err))
		q.fallback.Discard(ctx, key)
		return
	}

	log.Debug("blob deletion enqueued")
}

// Handler consumes queued deletions.
type Handler struct {
	log     *slog.Logger
	deleter Deleter
	metrics *metrics.Metrics
}

func NewHandler(log *slog.Logger, deleter Deleter, m *metrics.Metrics) *Handler {
	return &Handler{
		log:     log,
		deleter: deleter,
		metrics: m,
	}
}

func (h *Handler) ProcessMessage(ctx context.Context, message []byte) error {
	const op = "cleanup.Handler.ProcessMessage"

	var msg Message
	if err := json.Unmarshal(message, &msg); err != nil {
		return fmt.Errorf("%s: unmarshal: %w", op, err)
	}

	if msg.BlobKey == "" {
		return fmt.Errorf("%s: %w", op, errors.New("empty blob key"))
	}

	if err := h.deleter.Delete(ctx, msg.BlobKey); err != nil {
		h.metrics.BlobDeleteFailed()
		return fmt.Errorf("%s: %w", op, err)
	}

	h.log.Debug("blob deleted", slog.String("op", op), slog.String("blob_key", msg.BlobKey))

	return nil
}
