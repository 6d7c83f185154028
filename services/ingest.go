package services

import (
	"hash/fnv"
	"os"
	"strconv"
	"sync"

	"github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"

	"github.com/lumen-learn/lumen_api/model"
	"github.com/lumen-learn/lumen_api/shared"
)

// IngestService is the asynchronous front door for events. Events hash onto
// a fixed worker by user ID, which preserves arrival order per user while
// different users ride different workers.
type IngestService struct {
	context.DefaultService

	progress *ProgressService

	workers   int
	queueSize int
	queues    []chan *model.Event
	wg        sync.WaitGroup
}

const INGEST_SVC = "ingest_svc"

func (svc *IngestService) Id() string {
	return INGEST_SVC
}

func (svc *IngestService) Configure(ctx *context.Context) error {
	svc.workers = envIngestInt("INGEST_WORKERS", 8)
	svc.queueSize = envIngestInt("INGEST_QUEUE_SIZE", 1024)
	return svc.DefaultService.Configure(ctx)
}

func envIngestInt(key string, fallback int) int {
	if raw := os.Getenv(key); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			return v
		}
	}
	return fallback
}

func (svc *IngestService) Start() error {
	svc.progress = svc.Service(PROGRESS_SVC).(*ProgressService)
	svc.run()

	log.WithField("workers", svc.workers).Info("Event ingest workers started")
	return nil
}

func (svc *IngestService) initQueues() {
	svc.queues = make([]chan *model.Event, svc.workers)
	for i := 0; i < svc.workers; i++ {
		svc.queues[i] = make(chan *model.Event, svc.queueSize)
	}
}

func (svc *IngestService) run() {
	svc.initQueues()
	for i := 0; i < svc.workers; i++ {
		svc.wg.Add(1)
		go svc.worker(i)
	}
}

func (svc *IngestService) Shutdown() {
	for _, q := range svc.queues {
		close(q)
	}
	svc.wg.Wait()
}

func (svc *IngestService) worker(n int) {
	defer svc.wg.Done()

	for event := range svc.queues[n] {
		if _, err := svc.progress.Apply(event); err != nil {
			log.WithError(err).WithFields(log.Fields{
				"event_id": event.ID,
				"user_id":  event.UserID,
				"worker":   n,
			}).Error("Failed to apply event")
		}
	}
}

// workerFor maps a user to a fixed worker so one user's events stay ordered.
func (svc *IngestService) workerFor(userID string) int {
	h := fnv.New32a()
	h.Write([]byte(userID))
	return int(h.Sum32() % uint32(svc.workers))
}

// Enqueue accepts an event for asynchronous processing. Returns
// shared.ErrTransient when the owning worker's queue is full so the caller
// can signal a retryable rejection.
func (svc *IngestService) Enqueue(event *model.Event) error {
	n := svc.workerFor(event.UserID)

	select {
	case svc.queues[n] <- event:
		return nil
	default:
		ObserveEventRejected(event.Type)
		return shared.NewUnavailableError(shared.ErrTransient, "Event queue is full, retry later")
	}
}
