package audit

import (
	"errors"
	"sync"

	"github.com/sirupsen/logrus"
)

const DefaultQueueSize = 1000

var (
	ErrSinkClosed = errors.New("audit sink is closed")
	errQueueFull  = errors.New("audit queue is full")
)

// worker runs audit tasks off the reply path on a bounded queue. A full queue drops the
// task instead of blocking the caller.
type worker struct {
	logger   *logrus.Logger
	taskChan chan func()
	mu       sync.RWMutex
	closed   bool
	wg       sync.WaitGroup
}

func newWorker(logger *logrus.Logger, queueSize int) *worker {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &worker{
		logger:   logger,
		taskChan: make(chan func(), queueSize),
	}
}

func (w *worker) StartWorkers(n int) {
	if n <= 0 {
		n = 1
	}
	w.logger.WithField("workers", n).Info("starting audit workers")
	for i := 0; i < n; i++ {
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			for task := range w.taskChan {
				task()
			}
		}()
	}
}

func (w *worker) enqueue(task func()) error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return ErrSinkClosed
	}
	select {
	case w.taskChan <- task:
		return nil
	default:
		return errQueueFull
	}
}

// Shutdown stops accepting tasks and waits for the queued ones to finish.
func (w *worker) Shutdown() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	close(w.taskChan)
	w.mu.Unlock()

	w.logger.Info("shutting down audit workers")
	w.wg.Wait()
	w.logger.Info("audit workers stopped")
}
