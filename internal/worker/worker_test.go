package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"docquery/internal/docstore"
	"docquery/internal/ingest"
	"docquery/pkg/applog"
)

// MockProcessor tracks how many jobs reached it
type MockProcessor struct {
	ProcessedCount int32
}

func (m *MockProcessor) Process(ctx context.Context, job ingest.Job) {
	atomic.AddInt32(&m.ProcessedCount, 1)
}

func TestWorkerPool_Flow(t *testing.T) {
	ingestSvc := &ingest.Service{
		JobChannel:        make(chan ingest.Job, 10),
		DispatcherChannel: make(chan bool, 10),
		Store:             docstore.NewMemoryDocumentStore(),
	}
	mockProcessor := &MockProcessor{}
	stopChan := make(chan bool)
	wg := &sync.WaitGroup{}

	InitServices(ingestSvc, mockProcessor)
	InitWorkerPool(stopChan, wg)

	// Reset global state for test
	atomic.StoreInt64(&currentWorkerCount, 0)

	t.Run("Dispatcher creates worker on signal", func(t *testing.T) {
		ingestSvc.DispatcherChannel <- true

		time.Sleep(50 * time.Millisecond)

		count := atomic.LoadInt64(&currentWorkerCount)
		if count < 1 {
			t.Errorf("Expected at least 1 worker, got %d", count)
		}
	})

	t.Run("Worker processes a job", func(t *testing.T) {
		ingestSvc.JobChannel <- ingest.Job{DocumentID: "doc-test-1", TraceID: "trace-1"}

		time.Sleep(50 * time.Millisecond)

		processed := atomic.LoadInt32(&mockProcessor.ProcessedCount)
		if processed != 1 {
			t.Errorf("Expected 1 job processed, got %d", processed)
		}
	})

	t.Run("Stop signal retires workers", func(t *testing.T) {
		close(stopChan)

		done := make(chan struct{})
		go func() {
			wg.Wait()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Error("Workers did not stop within timeout")
		}
	})
}

func TestWorker_IdleTimeout(t *testing.T) {
	atomic.StoreInt64(&currentWorkerCount, 0)
	atomic.StoreInt64(&minWorkerCount, 2)
	previousIdle := idleWorkerTimeout
	idleWorkerTimeout = 50 * time.Millisecond
	defer func() { idleWorkerTimeout = previousIdle }()

	logger = applog.NewLogger("TestWorkerPool")
	ingestSvc := &ingest.Service{
		JobChannel: make(chan ingest.Job),
	}
	InitServices(ingestSvc, &MockProcessor{})

	wg := &sync.WaitGroup{}
	stopChan := make(chan bool)
	workerWaitGroup = wg
	stopWorkerChannel = stopChan

	createWorker()
	time.Sleep(idleWorkerTimeout + 100*time.Millisecond)

	count := atomic.LoadInt64(&currentWorkerCount)
	if count != 0 {
		t.Errorf("Worker should have timed out and retired, but count is %d", count)
	}
}
