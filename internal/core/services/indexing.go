package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/forlandeivan/search-engine-sub011/internal/chunker"
	"github.com/forlandeivan/search-engine-sub011/internal/core/domain"
	"github.com/forlandeivan/search-engine-sub011/internal/core/ports/driven"
	"github.com/forlandeivan/search-engine-sub011/internal/core/ports/driving"
	"github.com/forlandeivan/search-engine-sub011/internal/logger"
)

// Ensure IndexingService implements the interface.
var _ driving.IndexingController = (*IndexingService)(nil)

// DefaultRetryBudget is the number of retries after a transient vector
// failure before the document counts as failed.
const DefaultRetryBudget = 3

// DefaultCallTimeout bounds one vector service call.
const DefaultCallTimeout = 30 * time.Second

// DefaultCallsPerSecond paces vector service calls.
const DefaultCallsPerSecond = 10

// runControl is the desired-state record for one running action. The worker
// observes it at checkpoints; the steering methods only write it.
type runControl struct {
	mu         sync.Mutex
	desired    domain.ActionStatus
	deleteData bool
	resume     chan struct{}
}

func newRunControl() *runControl {
	return &runControl{
		desired: domain.StatusProcessing,
		resume:  make(chan struct{}),
	}
}

func (c *runControl) read() (domain.ActionStatus, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.desired, c.deleteData
}

func (c *runControl) requestPause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.desired == domain.StatusProcessing {
		c.desired = domain.StatusPaused
	}
}

func (c *runControl) requestResume() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.desired != domain.StatusPaused {
		return
	}
	c.desired = domain.StatusProcessing
	close(c.resume)
	c.resume = make(chan struct{})
}

func (c *runControl) requestCancel(deleteData bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.desired == domain.StatusCanceled {
		return
	}
	wasPaused := c.desired == domain.StatusPaused
	c.desired = domain.StatusCanceled
	c.deleteData = deleteData
	if wasPaused {
		close(c.resume)
		c.resume = make(chan struct{})
	}
}

func (c *runControl) resumeSignal() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resume
}

// IndexingService drives indexing jobs through their stages, checkpointing
// between documents so pause and cancel requests take effect promptly.
type IndexingService struct {
	docs    driven.DocumentStore
	actions driven.ActionStore
	vectors driven.VectorService

	mu      sync.Mutex
	running map[string]*runControl

	limiter     *rate.Limiter
	callTimeout time.Duration
	retryBudget int
	newID       func() string
	now         func() time.Time

	// onCheckpoint, when set, runs after every checkpoint persist. Tests
	// synchronize on it.
	onCheckpoint func(action *domain.IndexingAction)
}

// IndexingOption configures the indexing service.
type IndexingOption func(*IndexingService)

// WithRetryBudget sets the transient failure retry budget per document.
func WithRetryBudget(n int) IndexingOption {
	return func(s *IndexingService) {
		if n >= 0 {
			s.retryBudget = n
		}
	}
}

// WithCallTimeout sets the per-call vector service timeout.
func WithCallTimeout(d time.Duration) IndexingOption {
	return func(s *IndexingService) {
		if d > 0 {
			s.callTimeout = d
		}
	}
}

// WithCallRate sets the vector service call pacing.
func WithCallRate(callsPerSecond float64) IndexingOption {
	return func(s *IndexingService) {
		if callsPerSecond > 0 {
			s.limiter = rate.NewLimiter(rate.Limit(callsPerSecond), 1)
		}
	}
}

// WithIndexingClock overrides the time source. Useful for testing.
func WithIndexingClock(now func() time.Time) IndexingOption {
	return func(s *IndexingService) {
		s.now = now
	}
}

// WithCheckpointHook installs a hook invoked after every checkpoint persist.
func WithCheckpointHook(hook func(action *domain.IndexingAction)) IndexingOption {
	return func(s *IndexingService) {
		s.onCheckpoint = hook
	}
}

// NewIndexingService creates an indexing controller.
func NewIndexingService(docs driven.DocumentStore, actions driven.ActionStore, vectors driven.VectorService, opts ...IndexingOption) *IndexingService {
	s := &IndexingService{
		docs:        docs,
		actions:     actions,
		vectors:     vectors,
		running:     make(map[string]*runControl),
		limiter:     rate.NewLimiter(rate.Limit(DefaultCallsPerSecond), 1),
		callTimeout: DefaultCallTimeout,
		retryBudget: DefaultRetryBudget,
		newID:       uuid.NewString,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start creates a new action for the base and launches the worker. A base
// with a non-terminal action is rejected with domain.ErrAlreadyExists.
func (s *IndexingService) Start(ctx context.Context, baseID string, params driving.IndexingParams) (*domain.IndexingAction, error) {
	if params.Collection == "" || params.Dimensions <= 0 {
		return nil, fmt.Errorf("%w: collection and dimensions are required", domain.ErrInvalidInput)
	}

	existing, err := s.actions.ListActionsByBase(ctx, baseID)
	if err != nil {
		return nil, err
	}
	for _, a := range existing {
		if !a.Terminal() {
			return nil, fmt.Errorf("%w: action %s is still %s", domain.ErrAlreadyExists, a.ID, a.Status)
		}
	}

	now := s.now()
	action := &domain.IndexingAction{
		ID:        s.newID(),
		BaseID:    baseID,
		Status:    domain.StatusProcessing,
		Stage:     domain.StageInitializing,
		Progress:  domain.ActionProgress{DisplayText: "initializing"},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.actions.CreateAction(ctx, action); err != nil {
		return nil, err
	}

	control := newRunControl()
	s.mu.Lock()
	s.running[action.ID] = control
	s.mu.Unlock()

	snapshot := *action
	go s.run(context.WithoutCancel(ctx), snapshot, params, control)

	return action, nil
}

// Pause requests suspension at the next checkpoint.
func (s *IndexingService) Pause(ctx context.Context, actionID string) error {
	action, control, err := s.lookup(ctx, actionID)
	if err != nil {
		return err
	}
	if action.Terminal() {
		return fmt.Errorf("%w: action %s is %s", domain.ErrActionTerminal, actionID, action.Status)
	}
	// Pausing an already-paused action is a no-op.
	if action.Status == domain.StatusPaused {
		return nil
	}
	if !domain.CanTransitionStatus(action.Status, domain.StatusPaused) {
		return fmt.Errorf("%w: status %s -> %s", domain.ErrInvalidTransition, action.Status, domain.StatusPaused)
	}
	control.requestPause()
	return nil
}

// Resume continues a paused action.
func (s *IndexingService) Resume(ctx context.Context, actionID string) error {
	action, control, err := s.lookup(ctx, actionID)
	if err != nil {
		return err
	}
	if action.Terminal() {
		return fmt.Errorf("%w: action %s is %s", domain.ErrActionTerminal, actionID, action.Status)
	}
	// The request is forwarded even when the store still reads processing:
	// a pause the worker has not observed yet must be withdrawn, and
	// requestResume is a no-op when no pause is pending.
	control.requestResume()
	return nil
}

// Cancel terminally stops the action at the next checkpoint.
func (s *IndexingService) Cancel(ctx context.Context, actionID string, deleteIndexedData bool) error {
	action, control, err := s.lookup(ctx, actionID)
	if err != nil {
		return err
	}
	if action.Terminal() {
		return fmt.Errorf("%w: action %s is %s", domain.ErrActionTerminal, actionID, action.Status)
	}
	control.requestCancel(deleteIndexedData)
	return nil
}

// Status returns the current action state.
func (s *IndexingService) Status(ctx context.Context, actionID string) (*domain.IndexingAction, error) {
	return s.actions.GetAction(ctx, actionID)
}

// List returns the base's actions, newest first.
func (s *IndexingService) List(ctx context.Context, baseID string) ([]*domain.IndexingAction, error) {
	return s.actions.ListActionsByBase(ctx, baseID)
}

func (s *IndexingService) lookup(ctx context.Context, actionID string) (*domain.IndexingAction, *runControl, error) {
	action, err := s.actions.GetAction(ctx, actionID)
	if err != nil {
		return nil, nil, err
	}
	s.mu.Lock()
	control := s.running[actionID]
	s.mu.Unlock()
	if control == nil {
		return nil, nil, fmt.Errorf("%w: action %s has no running worker", domain.ErrActionTerminal, actionID)
	}
	return action, control, nil
}

// docWork is the unit the stage loop carries per document.
type docWork struct {
	doc       *domain.KnowledgeDocument
	chunks    []domain.DocumentChunk
	recordIDs []string
	tokens    int
	failed    bool
}

// run executes the stage loop for one action. It owns the action record:
// nothing else mutates it while the worker lives.
func (s *IndexingService) run(ctx context.Context, action domain.IndexingAction, params driving.IndexingParams, control *runControl) {
	defer func() {
		s.mu.Lock()
		delete(s.running, action.ID)
		s.mu.Unlock()
	}()

	logger.Section("indexing " + action.BaseID)

	// Stage: initializing. Load the document set.
	docs, err := s.docs.ListDocumentsByBase(ctx, action.BaseID)
	if err != nil {
		s.fail(ctx, &action, fmt.Errorf("load documents: %w", err))
		return
	}
	if len(params.DocumentIDs) > 0 {
		wanted := make(map[string]bool, len(params.DocumentIDs))
		for _, id := range params.DocumentIDs {
			wanted[id] = true
		}
		kept := docs[:0]
		for _, d := range docs {
			if wanted[d.ID] {
				kept = append(kept, d)
			}
		}
		docs = kept
	}
	work := make([]*docWork, len(docs))
	for i, d := range docs {
		work[i] = &docWork{doc: d}
	}
	action.Progress.TotalDocuments = len(docs)
	action.Progress.DisplayText = fmt.Sprintf("indexing %d documents", len(docs))
	if !s.checkpoint(ctx, &action, control, params.Collection, nil) {
		return
	}

	// Stage: creating_collection.
	if !s.advance(ctx, &action, domain.StageCreatingCollection) {
		return
	}
	if err := s.vectors.EnsureCollection(ctx, params.Collection, params.Dimensions); err != nil {
		s.fail(ctx, &action, fmt.Errorf("ensure collection %s: %w", params.Collection, err))
		return
	}
	if !s.checkpoint(ctx, &action, control, params.Collection, nil) {
		return
	}

	// Stage: chunking.
	if !s.advance(ctx, &action, domain.StageChunking) {
		return
	}
	ch := chunker.New(chunker.WithChunkSize(params.ChunkSize), chunker.WithOverlap(params.ChunkOverlap))
	for _, w := range work {
		chunks, err := ch.Chunk(w.doc)
		if err != nil || len(chunks) == 0 {
			w.failed = true
			action.Progress.FailedDocuments++
			continue
		}
		w.chunks = chunks
		action.Progress.TotalChunks += len(chunks)
	}
	action.Progress.DisplayText = fmt.Sprintf("chunked %d documents into %d chunks", len(work), action.Progress.TotalChunks)
	if !s.checkpoint(ctx, &action, control, params.Collection, nil) {
		return
	}

	// Stage: vectorizing. One upsert batch per document, checkpoint between
	// documents so steering requests land on document boundaries.
	if !s.advance(ctx, &action, domain.StageVectorizing) {
		return
	}
	var written []string
	for _, w := range work {
		if w.failed {
			continue
		}
		res, err := s.upsertWithRetry(ctx, params.Collection, params.ProviderID, w.chunks)
		if err != nil {
			logger.Warn("document %s failed vectorization: %v", w.doc.ID, err)
			w.failed = true
			action.Progress.FailedDocuments++
		} else {
			w.recordIDs = res.RecordIDs
			w.tokens = res.TokensUsed
			written = append(written, res.RecordIDs...)
			action.Progress.ProcessedDocuments++
			action.Progress.ProcessedChunks += len(w.chunks)
		}
		action.Progress.DisplayText = fmt.Sprintf("vectorized %d/%d documents",
			action.Progress.ProcessedDocuments, action.Progress.TotalDocuments)
		if !s.checkpoint(ctx, &action, control, params.Collection, written) {
			return
		}
	}

	// Stage: uploading. Vectorization records replace any previous ones.
	if !s.advance(ctx, &action, domain.StageUploading) {
		return
	}
	now := s.now()
	for _, w := range work {
		if w.failed {
			continue
		}
		v := &domain.KnowledgeDocumentVectorization{
			Collection:   params.Collection,
			ProviderID:   params.ProviderID,
			Dimensions:   params.Dimensions,
			ChunkSize:    params.ChunkSize,
			ChunkOverlap: params.ChunkOverlap,
			RecordIDs:    w.recordIDs,
			PointCount:   len(w.recordIDs),
			TotalTokens:  w.tokens,
			CreatedAt:    now,
		}
		if err := s.docs.SetVectorization(ctx, w.doc.ID, v); err != nil {
			s.fail(ctx, &action, fmt.Errorf("record vectorization for %s: %w", w.doc.ID, err))
			return
		}
	}
	if !s.checkpoint(ctx, &action, control, params.Collection, written) {
		return
	}

	// Stage: verifying. The collection must hold at least what was written.
	if !s.advance(ctx, &action, domain.StageVerifying) {
		return
	}
	count, err := s.vectors.CountPoints(ctx, params.Collection)
	if err != nil {
		s.fail(ctx, &action, fmt.Errorf("count points: %w", err))
		return
	}
	if count < len(written) {
		s.fail(ctx, &action, fmt.Errorf("collection %s holds %d points, expected at least %d",
			params.Collection, count, len(written)))
		return
	}

	// Stage: completed.
	if !s.advance(ctx, &action, domain.StageCompleted) {
		return
	}
	action.Progress.Percent = 100
	action.Progress.DisplayText = fmt.Sprintf("indexed %d documents, %d failed",
		action.Progress.ProcessedDocuments, action.Progress.FailedDocuments)
	if err := action.TransitionStatus(domain.StatusDone); err != nil {
		s.fail(ctx, &action, err)
		return
	}
	s.persist(ctx, &action)
	logger.Info("indexing action %s done", action.ID)
}

// upsertWithRetry paces, bounds and retries one document's upsert. Only
// transient failures consume the retry budget.
func (s *IndexingService) upsertWithRetry(ctx context.Context, collection, providerID string, chunks []domain.DocumentChunk) (*driven.UpsertResult, error) {
	var lastErr error
	for attempt := 0; attempt <= s.retryBudget; attempt++ {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
		res, err := s.vectors.UpsertChunks(callCtx, collection, providerID, chunks)
		cancel()
		if err == nil {
			return res, nil
		}
		lastErr = err
		if !driven.IsTransient(err) {
			return nil, err
		}
		logger.Debug("transient vector failure, attempt %d: %v", attempt+1, err)
	}
	return nil, lastErr
}

// checkpoint persists progress and observes steering requests. It returns
// false when the run must stop. written carries the record ids a cancel
// with data deletion must remove from collection.
func (s *IndexingService) checkpoint(ctx context.Context, action *domain.IndexingAction, control *runControl, collection string, written []string) bool {
	for {
		desired, deleteData := control.read()
		switch desired {
		case domain.StatusCanceled:
			s.settleCancel(ctx, action, collection, written, deleteData)
			return false

		case domain.StatusPaused:
			if action.Status != domain.StatusPaused {
				if err := action.TransitionStatus(domain.StatusPaused); err != nil {
					s.fail(ctx, action, err)
					return false
				}
				s.persist(ctx, action)
				logger.Info("indexing action %s paused at %s", action.ID, action.Stage)
			}
			// Capture the signal channel before re-reading desired: a
			// resume arriving in between closes the captured channel.
			signal := control.resumeSignal()
			if desired, _ = control.read(); desired == domain.StatusPaused {
				<-signal
				desired, _ = control.read()
			}
			if desired == domain.StatusProcessing {
				if err := action.TransitionStatus(domain.StatusProcessing); err != nil {
					s.fail(ctx, action, err)
					return false
				}
				s.persist(ctx, action)
			}
			continue

		default:
			s.persist(ctx, action)
			return true
		}
	}
}

// settleCancel finalizes a canceled action, removing written records when
// the request asked for it.
func (s *IndexingService) settleCancel(ctx context.Context, action *domain.IndexingAction, collection string, written []string, deleteData bool) {
	if deleteData && len(written) > 0 {
		// Best effort: the action settles as canceled either way.
		if err := s.vectors.DeleteRecords(ctx, collection, written); err != nil {
			logger.Warn("failed to delete %d records on cancel: %v", len(written), err)
		}
	}
	if err := action.TransitionStatus(domain.StatusCanceled); err != nil {
		logger.Warn("cancel transition: %v", err)
		return
	}
	action.Progress.DisplayText = "canceled"
	s.persist(ctx, action)
	logger.Info("indexing action %s canceled", action.ID)
}

// advance moves the action one stage forward; a rejected transition is a
// job-level fault.
func (s *IndexingService) advance(ctx context.Context, action *domain.IndexingAction, to domain.ActionStage) bool {
	if err := action.AdvanceStage(to); err != nil {
		s.fail(ctx, action, err)
		return false
	}
	s.persist(ctx, action)
	return true
}

// fail settles the action in the error stage and status.
func (s *IndexingService) fail(ctx context.Context, action *domain.IndexingAction, cause error) {
	logger.Warn("indexing action %s failed: %v", action.ID, cause)
	if action.Stage != domain.StageError {
		_ = action.AdvanceStage(domain.StageError)
	}
	action.Progress.DisplayText = cause.Error()
	if !action.Status.Terminal() {
		_ = action.TransitionStatus(domain.StatusError)
	}
	s.persist(ctx, action)
}

func (s *IndexingService) persist(ctx context.Context, action *domain.IndexingAction) {
	action.UpdatedAt = s.now()
	if err := s.actions.UpdateAction(ctx, action); err != nil {
		logger.Warn("persist action %s: %v", action.ID, err)
	}
	if s.onCheckpoint != nil {
		s.onCheckpoint(action)
	}
}
