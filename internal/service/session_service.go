package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/tuwir2002/maligo-backend/internal/config"
	"github.com/tuwir2002/maligo-backend/internal/examflow"
	"github.com/tuwir2002/maligo-backend/internal/model"
	"github.com/tuwir2002/maligo-backend/internal/repository"
)

// SessionState is the snapshot returned to the exam UI on every poll.
type SessionState struct {
	State            examflow.State       `json:"state"`
	RemainingSeconds int                  `json:"remaining_seconds"`
	StartedAt        time.Time            `json:"started_at"`
	AnsweredCount    int                  `json:"answered_count"`
	QuestionCount    int                  `json:"question_count"`
	ViolationCount   int                  `json:"violation_count"`
	CanSubmit        bool                 `json:"can_submit"`
	Drafts           map[uuid.UUID]string `json:"drafts"`
}

// monitorEvent is published on the exam's Redis PubSub channel for the
// lecturer's live monitor.
type monitorEvent struct {
	Type       string    `json:"type"` // joined | answered | violation | submitted
	StudentID  int       `json:"student_id"`
	StudentNIM string    `json:"student_nim"`
	Detail     string    `json:"detail,omitempty"`
	Count      int       `json:"count,omitempty"`
	At         time.Time `json:"at"`
}

// violationJob is the payload queued for the violation worker.
type violationJob struct {
	ExamID     uuid.UUID           `json:"exam_id"`
	StudentID  int                 `json:"student_id"`
	Kind       model.ViolationKind `json:"kind"`
	Detail     string              `json:"detail,omitempty"`
	OccurredAt time.Time           `json:"occurred_at"`
}

// SessionService hosts the live exam session controllers: one per
// (exam, student) attempt, each with a 1-second ticker goroutine driving its
// countdown. The service is also the production Submitter — it grades the
// multiple-choice answers against the cached key and lands the submission.
type SessionService struct {
	mu       sync.Mutex
	sessions map[string]*sessionEntry

	examService  *ExamService
	rekapService *RekapService
	sessionRepo  *repository.SessionRepository
	answerRepo   *repository.AnswerRepository
	rdb          *redis.Client
	cfg          *config.Config
	log          zerolog.Logger
}

type sessionEntry struct {
	ctrl   *examflow.Controller
	nim    string
	cancel context.CancelFunc
	// finalScore is stashed by SubmitAnswers for the finalize step.
	finalScore *float64
	finalized  bool
}

// NewSessionService creates a new SessionService.
func NewSessionService(
	examService *ExamService,
	rekapService *RekapService,
	sessionRepo *repository.SessionRepository,
	answerRepo *repository.AnswerRepository,
	rdb *redis.Client,
	cfg *config.Config,
	log zerolog.Logger,
) *SessionService {
	return &SessionService{
		sessions:     make(map[string]*sessionEntry),
		examService:  examService,
		rekapService: rekapService,
		sessionRepo:  sessionRepo,
		answerRepo:   answerRepo,
		rdb:          rdb,
		cfg:          cfg,
		log:          log.With().Str("component", "session_service").Logger(),
	}
}

func sessionKey(examID uuid.UUID, studentID int) string {
	return fmt.Sprintf("%s|%d", examID, studentID)
}

// Start joins a student into an exam, creating or resuming the live session.
// Re-joining an attempt already running returns the existing controller's
// state; re-joining a submitted exam fails with ErrAlreadySubmitted.
func (s *SessionService) Start(ctx context.Context, examID uuid.UUID, studentID int, nim string) (*SessionState, error) {
	key := sessionKey(examID, studentID)

	s.mu.Lock()
	if entry, ok := s.sessions[key]; ok {
		s.mu.Unlock()
		return s.snapshot(entry), nil
	}
	s.mu.Unlock()

	submitted, err := s.answerRepo.HasSubmitted(ctx, examID, studentID)
	if err != nil {
		return nil, fmt.Errorf("check prior submission: %w", err)
	}
	if submitted {
		return nil, examflow.ErrAlreadySubmitted
	}

	paper, err := s.examService.Paper(ctx, examID)
	if err != nil {
		return nil, err
	}

	row, err := s.sessionRepo.Start(ctx, examID, studentID, time.Now())
	if err != nil {
		return nil, fmt.Errorf("persist session row: %w", err)
	}

	ctrl := examflow.New(examflow.Config{
		Paper:             *paper,
		StudentID:         studentID,
		StudentNIM:        nim,
		Store:             examflow.NewRedisDraftStore(s.rdb),
		Submitter:         s,
		SubmitGateSeconds: s.cfg.SubmitGateSeconds,
		Log:               s.log,
	})
	if err := ctrl.Start(ctx, false, row.StartedAt); err != nil {
		return nil, err
	}

	tickCtx, cancel := context.WithCancel(context.Background())
	entry := &sessionEntry{ctrl: ctrl, nim: nim, cancel: cancel}

	s.mu.Lock()
	if existing, ok := s.sessions[key]; ok {
		// Lost a concurrent start race: keep the first controller.
		s.mu.Unlock()
		cancel()
		return s.snapshot(existing), nil
	}
	s.sessions[key] = entry
	s.mu.Unlock()

	go s.run(tickCtx, key, entry)

	s.publishMonitor(ctx, examID, monitorEvent{
		Type: "joined", StudentID: studentID, StudentNIM: nim, At: time.Now(),
	})
	return s.snapshot(entry), nil
}

// expiredRetryInterval spaces the submission retries for an expired session
// whose forced submit failed, so a down database is not hammered every tick.
const expiredRetryInterval = 5 // seconds

// run drives one controller's countdown and finalizes it once terminal. Ticks
// are no-ops once the session expires, so the retry after a failed expiry
// submission goes through Submit here until it lands.
func (s *SessionService) run(ctx context.Context, key string, entry *sessionEntry) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	retryIn := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := entry.ctrl.Tick(ctx); err != nil {
				s.log.Error().Err(err).Str("session", key).Msg("Forced submission on expiry failed")
				retryIn = expiredRetryInterval
				continue
			}
			if entry.ctrl.State() == examflow.StateExpired {
				if retryIn > 0 {
					retryIn--
					continue
				}
				if err := entry.ctrl.Submit(ctx); err != nil {
					s.log.Error().Err(err).Str("session", key).Msg("Submission retry failed")
					retryIn = expiredRetryInterval
					continue
				}
			}
			if entry.ctrl.State() == examflow.StateSubmitted {
				s.finalize(ctx, key, entry)
				return
			}
		}
	}
}

// History retrieves a student's persisted attempt history.
func (s *SessionService) History(ctx context.Context, studentID int) ([]model.ExamSessionRow, error) {
	return s.sessionRepo.ListByStudent(ctx, studentID)
}

// Results retrieves the paginated lecturer results table for one exam.
func (s *SessionService) Results(ctx context.Context, examID uuid.UUID, page, limit int) ([]model.ExamResult, int, error) {
	return s.sessionRepo.ListByExam(ctx, examID, page, limit)
}

// Violations retrieves the persisted violation trail for one attempt.
func (s *SessionService) Violations(ctx context.Context, examID uuid.UUID, studentID int) ([]model.ViolationEvent, error) {
	return s.sessionRepo.ListViolations(ctx, examID, studentID)
}

// State returns the live snapshot for an attempt.
func (s *SessionService) State(examID uuid.UUID, studentID int) (*SessionState, error) {
	entry, err := s.entry(examID, studentID)
	if err != nil {
		return nil, err
	}
	return s.snapshot(entry), nil
}

// RecordAnswer saves a draft answer on the live session.
func (s *SessionService) RecordAnswer(ctx context.Context, examID uuid.UUID, studentID int, questionID uuid.UUID, value string) error {
	entry, err := s.entry(examID, studentID)
	if err != nil {
		return err
	}
	if err := entry.ctrl.RecordAnswer(ctx, questionID, value); err != nil {
		return err
	}
	s.publishMonitor(ctx, examID, monitorEvent{
		Type: "answered", StudentID: studentID, StudentNIM: entry.nim,
		Count: len(entry.ctrl.Drafts()), At: time.Now(),
	})
	return nil
}

// ReportViolation records an advisory integrity signal on the live session.
// Counted violations are queued for the audit trail and pushed to the
// lecturer monitor; a debounced duplicate returns a nil warning.
func (s *SessionService) ReportViolation(ctx context.Context, examID uuid.UUID, studentID int, kind model.ViolationKind, detail string) (*examflow.Warning, error) {
	entry, err := s.entry(examID, studentID)
	if err != nil {
		return nil, err
	}

	warning, err := entry.ctrl.ReportViolation(ctx, kind, detail)
	if warning != nil {
		s.queueViolation(ctx, violationJob{
			ExamID: examID, StudentID: studentID, Kind: kind, Detail: detail, OccurredAt: time.Now(),
		})
		s.publishMonitor(ctx, examID, monitorEvent{
			Type: "violation", StudentID: studentID, StudentNIM: entry.nim,
			Detail: string(kind), Count: warning.Count, At: time.Now(),
		})
		if warning.ForcedSubmit && entry.ctrl.State() == examflow.StateSubmitted {
			s.finalize(ctx, sessionKey(examID, studentID), entry)
		}
	}
	return warning, err
}

// Submit finalizes the attempt on the student's request.
func (s *SessionService) Submit(ctx context.Context, examID uuid.UUID, studentID int) error {
	entry, err := s.entry(examID, studentID)
	if err != nil {
		return err
	}
	if err := entry.ctrl.Submit(ctx); err != nil {
		return err
	}
	s.finalize(ctx, sessionKey(examID, studentID), entry)
	return nil
}

// SubmitAnswers implements examflow.Submitter: grade the multiple-choice
// answers against the cached key and land the whole submission in one
// transaction. Essay answers stay ungraded (nil score) for the lecturer.
func (s *SessionService) SubmitAnswers(ctx context.Context, examID uuid.UUID, studentID int, answers []model.AnswerSubmission) error {
	key, err := s.examService.AnswerKey(ctx, examID)
	if err != nil {
		return err
	}

	records := make([]model.AnswerRecord, 0, len(answers))
	var mcScores []float64
	for _, a := range answers {
		record := model.AnswerRecord{
			StudentID:   studentID,
			Category:    model.AnswerCategoryExam,
			QuestionID:  a.QuestionRef,
			SourceID:    examID,
			AnswerValue: a.AnswerValue,
		}
		if expected, ok := key[a.QuestionRef.String()]; ok {
			score := 0.0
			if a.AnswerValue == expected {
				score = 100.0
			}
			record.Score = &score
			mcScores = append(mcScores, score)
		}
		records = append(records, record)
	}

	if err := s.answerRepo.SubmitBatch(ctx, records); err != nil {
		return fmt.Errorf("store submission: %w", err)
	}

	// Stash the machine-graded portion for the finalize step. Essays graded
	// later will shift the rekap, not this row.
	if entry, ok := s.lookup(examID, studentID); ok {
		var sum float64
		for _, sc := range mcScores {
			sum += sc
		}
		if len(mcScores) > 0 {
			avg := sum / float64(len(mcScores))
			entry.finalScore = &avg
		}
	}
	return nil
}

// finalize completes the session row, queues the rekap recompute and retires
// the controller. Idempotent: the submit paths and the ticker can race here.
func (s *SessionService) finalize(ctx context.Context, key string, entry *sessionEntry) {
	s.mu.Lock()
	if entry.finalized {
		s.mu.Unlock()
		return
	}
	entry.finalized = true
	delete(s.sessions, key)
	s.mu.Unlock()

	entry.cancel()

	ctrl := entry.ctrl
	if err := s.sessionRepo.Complete(ctx, ctrl.ExamID(), ctrl.StudentID(), entry.finalScore, ctrl.ViolationCount()); err != nil {
		s.log.Error().Err(err).Str("session", key).Msg("Session completion write failed")
	}

	if paper, err := s.examService.Paper(ctx, ctrl.ExamID()); err == nil {
		s.rekapService.QueueRecomputeStudent(ctx, ctrl.StudentID(), paper.CourseID)
	}

	s.publishMonitor(ctx, ctrl.ExamID(), monitorEvent{
		Type: "submitted", StudentID: ctrl.StudentID(), StudentNIM: entry.nim, At: time.Now(),
	})
}

func (s *SessionService) entry(examID uuid.UUID, studentID int) (*sessionEntry, error) {
	entry, ok := s.lookup(examID, studentID)
	if !ok {
		return nil, examflow.ErrNotActive
	}
	return entry, nil
}

func (s *SessionService) lookup(examID uuid.UUID, studentID int) (*sessionEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.sessions[sessionKey(examID, studentID)]
	return entry, ok
}

func (s *SessionService) snapshot(entry *sessionEntry) *SessionState {
	ctrl := entry.ctrl
	drafts := ctrl.Drafts()
	return &SessionState{
		State:            ctrl.State(),
		RemainingSeconds: ctrl.RemainingSeconds(),
		StartedAt:        ctrl.StartedAt(),
		AnsweredCount:    len(drafts),
		QuestionCount:    ctrl.QuestionCount(),
		ViolationCount:   ctrl.ViolationCount(),
		CanSubmit:        ctrl.CanSubmit(),
		Drafts:           drafts,
	}
}

func (s *SessionService) queueViolation(ctx context.Context, job violationJob) {
	payload, err := json.Marshal(job)
	if err != nil {
		return
	}
	if err := s.rdb.RPush(ctx, config.WorkerKey.PersistViolationsQueue, payload).Err(); err != nil {
		s.log.Warn().Err(err).Msg("Violation enqueue failed")
	}
}

func (s *SessionService) publishMonitor(ctx context.Context, examID uuid.UUID, event monitorEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}
	channel := config.CacheKey.ExamMonitorChannel(examID.String())
	if err := s.rdb.Publish(ctx, channel, payload).Err(); err != nil {
		s.log.Warn().Err(err).Str("channel", channel).Msg("Monitor publish failed")
	}
}

// Shutdown stops every live ticker. Sessions are not submitted: an attempt
// interrupted by a restart resumes from its persisted start time and drafts.
func (s *SessionService) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, entry := range s.sessions {
		entry.cancel()
	}
}
