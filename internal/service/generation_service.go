package service

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/campushq/timetable-api/internal/ai"
	"github.com/campushq/timetable-api/internal/dto"
	"github.com/campushq/timetable-api/internal/models"
	"github.com/campushq/timetable-api/internal/scheduler"
	appErrors "github.com/campushq/timetable-api/pkg/errors"
)

type courseLister interface {
	ListOffered(ctx context.Context, academicYear string, semester models.Semester) ([]models.Course, error)
}

type roomLister interface {
	ListActive(ctx context.Context) ([]models.Room, error)
}

type lecturerLister interface {
	ListActive(ctx context.Context) ([]models.Lecturer, error)
}

type slotLister interface {
	List(ctx context.Context) ([]models.TimeSlot, error)
}

type entryWriter interface {
	BulkCreateWithTx(ctx context.Context, tx *sqlx.Tx, entries []models.TimetableEntry) error
	DeleteByTermTx(ctx context.Context, tx *sqlx.Tx, academicYear string, semester models.Semester) error
}

type conflictWriter interface {
	BulkCreateWithTx(ctx context.Context, tx *sqlx.Tx, conflicts []models.Conflict) error
	DeleteByTermTx(ctx context.Context, tx *sqlx.Tx, academicYear string, semester models.Semester) error
}

type attemptStore interface {
	Insert(ctx context.Context, attempt *models.GenerationAttempt) error
	AggregateByMethod(ctx context.Context) ([]models.MethodMetrics, error)
	RecentFailures(ctx context.Context, method models.GenerationMethod, academicYear string, semester models.Semester, since time.Time) (int, error)
}

type timetableProposer interface {
	ProposeTimetable(ctx context.Context, snap *scheduler.Snapshot) ([]ai.ProposedEntry, error)
}

type termLocker interface {
	Acquire(ctx context.Context, academicYear string, semester models.Semester) (release func(), ok bool, err error)
}

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

type generationObserver interface {
	ObserveGeneration(method models.GenerationMethod, success bool, duration time.Duration, conflicts int)
}

type conflictNotifier interface {
	NotifyConflict(notice ConflictNotice) error
}

// GenerationConfig tunes orchestrator behaviour around a run.
type GenerationConfig struct {
	Engine         scheduler.Config
	Policy         scheduler.Policy
	AIEnabled      bool
	FailureWindow  time.Duration
	MinAIAttempts  int
	MinSuccessRate float64
	Seed           int64
}

// GenerationService orchestrates one timetable generation run: an optional
// AI first pass, the evolutionary fallback, batch conflict detection, and an
// atomic commit of the term's schedule.
type GenerationService struct {
	courses   courseLister
	rooms     roomLister
	lecturers lecturerLister
	slots     slotLister
	entries   entryWriter
	conflicts conflictWriter
	attempts  attemptStore
	proposer  timetableProposer
	locker    termLocker
	tx        txProvider
	observer  generationObserver
	notifier  conflictNotifier
	validator *validator.Validate
	logger    *zap.Logger
	cfg       GenerationConfig
}

// NewGenerationService wires orchestrator dependencies. Nil validator and
// logger fall back to defaults; nil proposer, locker, observer and notifier
// disable the matching behaviour.
func NewGenerationService(
	courses courseLister,
	rooms roomLister,
	lecturers lecturerLister,
	slots slotLister,
	entries entryWriter,
	conflicts conflictWriter,
	attempts attemptStore,
	proposer timetableProposer,
	locker termLocker,
	tx txProvider,
	observer generationObserver,
	notifier conflictNotifier,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg GenerationConfig,
) *GenerationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.FailureWindow <= 0 {
		cfg.FailureWindow = 24 * time.Hour
	}
	if cfg.MinAIAttempts <= 0 {
		cfg.MinAIAttempts = 5
	}
	if cfg.MinSuccessRate <= 0 {
		cfg.MinSuccessRate = 0.3
	}
	return &GenerationService{
		courses:   courses,
		rooms:     rooms,
		lecturers: lecturers,
		slots:     slots,
		entries:   entries,
		conflicts: conflicts,
		attempts:  attempts,
		proposer:  proposer,
		locker:    locker,
		tx:        tx,
		observer:  observer,
		notifier:  notifier,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
	}
}

// Generate builds and commits a full timetable for the term. It always
// returns either a committed schedule with its conflict report or an error
// naming exactly which required resource was missing.
func (s *GenerationService) Generate(ctx context.Context, req dto.GenerateTimetableRequest) (*dto.GenerateTimetableResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid generation payload")
	}
	if !req.Semester.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "semester must be 1, 2 or 3")
	}

	if s.locker != nil {
		release, ok, err := s.locker.Acquire(ctx, req.AcademicYear, req.Semester)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to acquire term lock")
		}
		if !ok {
			return nil, appErrors.Clone(appErrors.ErrGenerationInProgress, "")
		}
		defer release()
	}

	snap, err := s.loadSnapshot(ctx, req.AcademicYear, req.Semester)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	method := models.MethodGenetic
	var fitness *float64
	generations := 0

	entries, aiErr := s.tryAI(ctx, snap, req)
	if aiErr == nil && entries != nil {
		method = models.MethodAI
	} else {
		if aiErr != nil {
			s.logger.Sugar().Warnw("ai generation failed, falling back to genetic search",
				"academic_year", req.AcademicYear, "semester", req.Semester, "error", aiErr)
			s.recordAttempt(ctx, models.MethodAI, time.Since(started), false, 0, 0, aiErr, req)
		}
		rng := s.newRand()
		engine := scheduler.NewEngine(snap, s.cfg.Engine, rng, s.logger)
		result := engine.Run(ctx)
		if len(result.Best) == 0 {
			err := fmt.Errorf("search produced no candidate")
			s.recordAttempt(ctx, models.MethodGenetic, time.Since(started), false, 0, 0, err, req)
			return nil, appErrors.Wrap(err, appErrors.ErrGeneration.Code, appErrors.ErrGeneration.Status, appErrors.ErrGeneration.Message)
		}
		entries = s.chromosomeToEntries(result.Best, req)
		best := result.BestFitness
		fitness = &best
		generations = result.Generations
	}

	// Both strategies get the same batch validation before commit.
	detector := scheduler.NewDetector(snap)
	batch := detector.DetectBatch(entries)
	for i := range entries {
		if conflictType, flagged := batch.Flags[entries[i].ID]; flagged {
			entries[i].HasConflict = true
			entries[i].ConflictType = conflictType
		}
	}
	conflictRecords := s.descriptorsToConflicts(batch.Descriptors, req)

	if err := s.commit(ctx, req, entries, conflictRecords); err != nil {
		s.recordAttempt(ctx, method, time.Since(started), false, 0, 0, err, req)
		return nil, appErrors.Wrap(err, appErrors.ErrGeneration.Code, appErrors.ErrGeneration.Status, "failed to commit generated timetable")
	}

	s.notifyLecturers(snap, entries, batch.Descriptors)
	s.recordAttempt(ctx, method, time.Since(started), true, len(entries), len(conflictRecords), nil, req)

	return &dto.GenerateTimetableResponse{
		Method:      method,
		Entries:     entries,
		Conflicts:   conflictRecords,
		Stats:       buildStats(entries, snap),
		Fitness:     fitness,
		Generations: generations,
	}, nil
}

func (s *GenerationService) loadSnapshot(ctx context.Context, academicYear string, semester models.Semester) (*scheduler.Snapshot, error) {
	courses, err := s.courses.ListOffered(ctx, academicYear, semester)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load courses")
	}
	if len(courses) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNoCourses, "")
	}
	rooms, err := s.rooms.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load rooms")
	}
	if len(rooms) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNoRooms, "")
	}
	lecturers, err := s.lecturers.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lecturers")
	}
	if len(lecturers) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNoLecturers, "")
	}
	slots, err := s.slots.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load time slots")
	}
	if len(slots) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNoTimeSlots, "")
	}
	return scheduler.NewSnapshot(courses, rooms, lecturers, slots, s.cfg.Policy), nil
}

// tryAI runs the first-pass AI attempt. A nil, nil return means the attempt
// was skipped; any error is a fallback trigger, never surfaced to the caller.
func (s *GenerationService) tryAI(ctx context.Context, snap *scheduler.Snapshot, req dto.GenerateTimetableRequest) ([]models.TimetableEntry, error) {
	if !s.cfg.AIEnabled || s.proposer == nil {
		return nil, nil
	}
	if !s.aiAdvisable(ctx, req) {
		s.logger.Sugar().Infow("skipping ai attempt on historical performance",
			"academic_year", req.AcademicYear, "semester", req.Semester)
		return nil, nil
	}

	proposed, err := s.proposer.ProposeTimetable(ctx, snap)
	if err != nil {
		return nil, err
	}
	return s.mapProposal(proposed, snap, req)
}

// aiAdvisable consults accumulated method metrics and recent term-scoped
// failures. Advisory only: a thin history always allows the attempt.
func (s *GenerationService) aiAdvisable(ctx context.Context, req dto.GenerateTimetableRequest) bool {
	if s.attempts == nil {
		return true
	}
	metrics, err := s.attempts.AggregateByMethod(ctx)
	if err != nil {
		s.logger.Sugar().Warnw("failed to load method metrics", "error", err)
		return true
	}
	for _, m := range metrics {
		if m.Method != models.MethodAI {
			continue
		}
		if m.TotalAttempts >= s.cfg.MinAIAttempts && m.SuccessRate < s.cfg.MinSuccessRate {
			return false
		}
	}
	failures, err := s.attempts.RecentFailures(ctx, models.MethodAI, req.AcademicYear, req.Semester, time.Now().Add(-s.cfg.FailureWindow))
	if err != nil {
		s.logger.Sugar().Warnw("failed to load recent failures", "error", err)
		return true
	}
	return failures < 3
}

// mapProposal validates the structural shape of the AI response and turns it
// into entries. Every course must appear exactly once with resolvable room
// and slot identifiers.
func (s *GenerationService) mapProposal(proposed []ai.ProposedEntry, snap *scheduler.Snapshot, req dto.GenerateTimetableRequest) ([]models.TimetableEntry, error) {
	if len(proposed) == 0 {
		return nil, fmt.Errorf("ai proposal is empty")
	}

	rng := s.newRand()
	gen := scheduler.NewGenerator(snap, rng, s.cfg.Engine.RetryLimit)
	seen := make(map[string]bool, len(proposed))
	entries := make([]models.TimetableEntry, 0, len(proposed))
	for _, item := range proposed {
		if item.CourseCode == "" || item.RoomID == "" || item.TimeSlotID == "" {
			return nil, fmt.Errorf("ai proposal entry is missing identifiers")
		}
		course, ok := snap.CourseByCode(item.CourseCode)
		if !ok {
			return nil, fmt.Errorf("ai proposal references unknown course %q", item.CourseCode)
		}
		if _, ok := snap.Room(item.RoomID); !ok {
			return nil, fmt.Errorf("ai proposal references unknown room %q", item.RoomID)
		}
		if _, ok := snap.Slot(item.TimeSlotID); !ok {
			return nil, fmt.Errorf("ai proposal references unknown slot %q", item.TimeSlotID)
		}
		if seen[course.ID] {
			return nil, fmt.Errorf("ai proposal schedules course %q twice", item.CourseCode)
		}
		seen[course.ID] = true

		lecturerID := ""
		if course.LecturerID != nil && *course.LecturerID != "" {
			lecturerID = *course.LecturerID
		} else if candidates := gen.CandidateLecturers(course, false); len(candidates) > 0 {
			lecturerID = candidates[rng.Intn(len(candidates))].ID
		} else {
			return nil, fmt.Errorf("no lecturer available for course %q", item.CourseCode)
		}

		entries = append(entries, models.TimetableEntry{
			ID:           uuid.NewString(),
			CourseID:     course.ID,
			RoomID:       item.RoomID,
			LecturerID:   lecturerID,
			Day:          gen.RandomDay(),
			TimeSlotID:   item.TimeSlotID,
			AcademicYear: req.AcademicYear,
			Semester:     req.Semester,
		})
	}
	if len(seen) != len(snap.Courses) {
		return nil, fmt.Errorf("ai proposal covers %d of %d courses", len(seen), len(snap.Courses))
	}
	return entries, nil
}

func (s *GenerationService) chromosomeToEntries(best scheduler.Chromosome, req dto.GenerateTimetableRequest) []models.TimetableEntry {
	entries := make([]models.TimetableEntry, 0, len(best))
	for _, gene := range best {
		entries = append(entries, models.TimetableEntry{
			ID:           uuid.NewString(),
			CourseID:     gene.CourseID,
			RoomID:       gene.RoomID,
			LecturerID:   gene.LecturerID,
			Day:          gene.Day,
			TimeSlotID:   gene.SlotID,
			AcademicYear: req.AcademicYear,
			Semester:     req.Semester,
		})
	}
	return entries
}

func (s *GenerationService) descriptorsToConflicts(descriptors []scheduler.Descriptor, req dto.GenerateTimetableRequest) []models.Conflict {
	conflicts := make([]models.Conflict, 0, len(descriptors))
	for _, desc := range descriptors {
		conflicts = append(conflicts, models.Conflict{
			ID:            uuid.NewString(),
			FirstEntryID:  desc.FirstEntryID,
			SecondEntryID: desc.SecondEntryID,
			Type:          desc.Type,
			Description:   desc.Description,
			AcademicYear:  req.AcademicYear,
			Semester:      req.Semester,
		})
	}
	return conflicts
}

// commit replaces the term's schedule in one transaction. A failure anywhere
// rolls back, so regeneration never leaves a half-overwritten term.
func (s *GenerationService) commit(ctx context.Context, req dto.GenerateTimetableRequest, entries []models.TimetableEntry, conflicts []models.Conflict) (err error) {
	if s.tx == nil {
		return fmt.Errorf("transaction provider missing")
	}
	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin commit transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = s.conflicts.DeleteByTermTx(ctx, tx, req.AcademicYear, req.Semester); err != nil {
		return err
	}
	if err = s.entries.DeleteByTermTx(ctx, tx, req.AcademicYear, req.Semester); err != nil {
		return err
	}
	if err = s.entries.BulkCreateWithTx(ctx, tx, entries); err != nil {
		return err
	}
	if err = s.conflicts.BulkCreateWithTx(ctx, tx, conflicts); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit generated timetable: %w", err)
	}
	return nil
}

// notifyLecturers enqueues a notice for every conflict touching a lecturer.
// Delivery is asynchronous and failures never affect the committed schedule.
func (s *GenerationService) notifyLecturers(snap *scheduler.Snapshot, entries []models.TimetableEntry, descriptors []scheduler.Descriptor) {
	if s.notifier == nil {
		return
	}
	entryByID := make(map[string]models.TimetableEntry, len(entries))
	for _, entry := range entries {
		entryByID[entry.ID] = entry
	}
	for _, desc := range descriptors {
		entry, ok := entryByID[desc.FirstEntryID]
		if !ok {
			continue
		}
		lecturer, ok := snap.Lecturer(entry.LecturerID)
		if !ok || lecturer.UserID == "" {
			continue
		}
		notice := ConflictNotice{
			UserID:      lecturer.UserID,
			EntryID:     entry.ID,
			Type:        desc.Type,
			Description: desc.Description,
		}
		if err := s.notifier.NotifyConflict(notice); err != nil {
			s.logger.Sugar().Warnw("failed to enqueue conflict notice", "entry_id", entry.ID, "error", err)
		}
	}
}

func (s *GenerationService) recordAttempt(ctx context.Context, method models.GenerationMethod, duration time.Duration, success bool, entriesGenerated, conflictsCount int, cause error, req dto.GenerateTimetableRequest) {
	if s.observer != nil {
		s.observer.ObserveGeneration(method, success, duration, conflictsCount)
	}
	if s.attempts == nil {
		return
	}
	attempt := &models.GenerationAttempt{
		Method:           method,
		DurationMs:       duration.Milliseconds(),
		Success:          success,
		EntriesGenerated: entriesGenerated,
		ConflictsCount:   conflictsCount,
		AcademicYear:     req.AcademicYear,
		Semester:         req.Semester,
	}
	if cause != nil {
		message := cause.Error()
		attempt.ErrorMessage = &message
	}
	if err := s.attempts.Insert(ctx, attempt); err != nil {
		s.logger.Sugar().Warnw("failed to record generation attempt", "error", err)
	}
}

func (s *GenerationService) newRand() *rand.Rand {
	seed := s.cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

func buildStats(entries []models.TimetableEntry, snap *scheduler.Snapshot) dto.GenerationStats {
	rooms := make(map[string]bool)
	lecturers := make(map[string]bool)
	for _, entry := range entries {
		rooms[entry.RoomID] = true
		lecturers[entry.LecturerID] = true
	}
	return dto.GenerationStats{
		CoursesScheduled:   len(entries),
		RoomsUsed:          len(rooms),
		LecturersAssigned:  len(lecturers),
		TimeSlotsAvailable: len(snap.Slots),
	}
}
