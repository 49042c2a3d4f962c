package service

import (
	"context"
	"sync"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/printops/jobtrack/internal/events"
	"github.com/printops/jobtrack/internal/observability"
	"github.com/printops/jobtrack/internal/repository"
	"github.com/printops/jobtrack/internal/storage"
	apperrors "github.com/printops/jobtrack/pkg/util"
)

// ReaperService removes a job and its uploaded files once the job reaches
// the terminal pipeline stage.
type ReaperService struct {
	jobs       repository.JobRepository
	updates    repository.JobUpdateRepository
	files      storage.FileStore
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// ReaperDependencies bundles collaborators for the reaper.
type ReaperDependencies struct {
	JobRepo       repository.JobRepository
	JobUpdateRepo repository.JobUpdateRepository
	Files         storage.FileStore
	Dispatcher    events.Dispatcher
	Logger        *zap.Logger
	Metrics       *observability.Metrics
}

// NewReaperService constructs the service.
func NewReaperService(deps ReaperDependencies) *ReaperService {
	return &ReaperService{
		jobs:       deps.JobRepo,
		updates:    deps.JobUpdateRepo,
		files:      deps.Files,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		metrics:    deps.Metrics,
	}
}

// ReapResult reports what the cleanup accomplished.
type ReapResult struct {
	FilesDeleted int
	FilesFailed  int
}

// Reap deletes every file referenced by the job's history, then the job
// row itself. The file phase is best effort: a file may already be gone or
// a URL may not point at a deletable object, so per-file failures are
// logged and counted but never abort the operation. The row delete is
// strict; the job must not silently survive after its history was assumed
// cleaned. A second call on the same id reports NOT_FOUND, nothing worse.
func (s *ReaperService) Reap(ctx context.Context, actorID, jobID string) (*ReapResult, error) {
	history, err := s.updates.ListByJob(ctx, jobID)
	if err != nil {
		return nil, apperrors.Classify(err)
	}

	seen := make(map[string]struct{})
	var urls []string
	for i := range history {
		for _, url := range history[i].ReferencedFiles() {
			if _, ok := seen[url]; ok {
				continue
			}
			seen[url] = struct{}{}
			urls = append(urls, url)
		}
	}

	result := &ReapResult{}
	if len(urls) > 0 {
		var mu sync.Mutex
		var wg sync.WaitGroup
		for _, url := range urls {
			wg.Add(1)
			go func(fileURL string) {
				defer wg.Done()
				if err := s.files.DeleteByURL(ctx, fileURL); err != nil {
					s.logger.Warn("reaper file delete failed",
						zap.String("job_id", jobID),
						zap.String("file_url", fileURL),
						zap.Error(err))
					mu.Lock()
					result.FilesFailed++
					mu.Unlock()
					return
				}
				mu.Lock()
				result.FilesDeleted++
				mu.Unlock()
			}(url)
		}
		wg.Wait()
	}

	if err := s.jobs.Delete(ctx, jobID); err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("job", map[string]any{"job_id": jobID})
		}
		return nil, apperrors.Classify(err)
	}

	if s.metrics != nil {
		s.metrics.RecordReap(result.FilesFailed)
	}
	publishEvent(ctx, s.dispatcher, events.Event{
		Type:    events.EventJobReaped,
		JobID:   jobID,
		ActorID: actorID,
		Payload: events.JobReapedPayload{
			FilesDeleted: result.FilesDeleted,
			FilesFailed:  result.FilesFailed,
		},
	})
	return result, nil
}
