package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"biaslens/backend/internal/util"
)

const (
	batchProgressThrottle = 500 * time.Millisecond
	batchTitleMaxLen      = 120
)

func (s *Server) handleAnalyzeBatch(c *gin.Context) {
	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.renderError(c, http.StatusBadRequest, err)
		return
	}
	if len(req.Jobs) == 0 {
		s.renderError(c, http.StatusBadRequest, errors.New("jobs are required"))
		return
	}
	if len(req.Jobs) > s.batchLimit {
		s.renderError(c, http.StatusBadRequest, fmt.Errorf("batch size %d exceeds limit %d", len(req.Jobs), s.batchLimit))
		return
	}

	c.JSON(http.StatusOK, BatchResponse{Results: s.runBatch(c.Request.Context(), req.Jobs)})
}

// runBatch analyzes jobs concurrently and returns results in input order.
// Progress is broadcast to stream subscribers, throttled so large batches
// do not flood slow clients.
func (s *Server) runBatch(ctx context.Context, jobs []BatchJob) []BatchItem {
	runID := uuid.NewString()
	total := len(jobs)
	results := make([]BatchItem, total)

	workerCount := determineWorkerCount()
	if workerCount > total {
		workerCount = total
	}

	timer := util.StartTimer()
	logrus.WithFields(logrus.Fields{
		"run":     runID,
		"jobs":    total,
		"workers": workerCount,
	}).Info("batch analysis started")

	s.batchNotifier.Broadcast(BatchEvent{
		Type:    "started",
		RunID:   runID,
		Total:   total,
		Message: "batch analysis started",
	})

	var (
		emitMu    sync.Mutex
		processed int
		lastEmit  time.Time
	)
	emit := func(item BatchItem) {
		emitMu.Lock()
		defer emitMu.Unlock()
		processed++
		if processed < total && !lastEmit.IsZero() && time.Since(lastEmit) < batchProgressThrottle {
			return
		}
		s.batchNotifier.Broadcast(BatchEvent{
			Type:      "progress",
			RunID:     runID,
			Total:     total,
			Processed: processed,
			Item:      &item,
		})
		lastEmit = time.Now()
	}

	taskCh := make(chan int)
	var wg sync.WaitGroup
	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range taskCh {
				item := s.analyzeBatchJob(ctx, jobs[idx])
				results[idx] = item
				emit(item)
			}
		}()
	}
	for idx := range jobs {
		taskCh <- idx
	}
	close(taskCh)
	wg.Wait()

	s.batchNotifier.Broadcast(BatchEvent{
		Type:      "complete",
		RunID:     runID,
		Total:     total,
		Processed: total,
		Message:   fmt.Sprintf("batch analysis finished in %dms", timer.ElapsedMs()),
	})
	logrus.WithFields(logrus.Fields{
		"run":        runID,
		"jobs":       total,
		"workers":    workerCount,
		"elapsed_ms": timer.ElapsedMs(),
	}).Info("batch analysis complete")

	return results
}

func (s *Server) analyzeBatchJob(ctx context.Context, job BatchJob) BatchItem {
	if err := ctx.Err(); err != nil {
		return BatchItem{ID: job.ID, Error: err.Error()}
	}
	if strings.TrimSpace(job.Text) == "" {
		return BatchItem{ID: job.ID, Error: errTextRequired.Error()}
	}

	analysis := s.analyze(ctx, job.Text, job.UseNLP)
	return BatchItem{
		ID:             job.ID,
		Title:          batchTitle(job.Text),
		AnalysisResult: &analysis,
	}
}

// batchTitle derives a display title from the first line of the posting.
func batchTitle(text string) string {
	trimmed := strings.TrimSpace(text)
	if idx := strings.IndexAny(trimmed, "\r\n"); idx >= 0 {
		trimmed = strings.TrimSpace(trimmed[:idx])
	}
	runes := []rune(trimmed)
	if len(runes) > batchTitleMaxLen {
		return string(runes[:batchTitleMaxLen])
	}
	return trimmed
}

func determineWorkerCount() int {
	workers := runtime.NumCPU()
	if workers < 2 {
		workers = 2
	}
	if workers > 12 {
		workers = 12
	}
	return workers
}
