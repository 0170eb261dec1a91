package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/operacoevilla-web/avalia-o-desempenho/internal/narrative"
	"github.com/operacoevilla-web/avalia-o-desempenho/internal/repository/models"
	"github.com/operacoevilla-web/avalia-o-desempenho/internal/rubric"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	storeTimeout = 5 * time.Second

	// MinRatingsForReport is how many criteria must be rated before a report
	// can be requested.
	MinRatingsForReport = 3
)

var (
	ErrNameRequired        = errors.New("name is required")
	ErrSupervisorNotFound  = errors.New("supervisor not found")
	ErrEmployeeNotFound    = errors.New("employee not found")
	ErrEvaluationIdentity  = errors.New("evaluation must reference a supervisor and an employee")
	ErrRoleRequired        = errors.New("role is required")
	ErrInsufficientRatings = fmt.Errorf("at least %d criteria must be rated", MinRatingsForReport)
	ErrUnknownCriterion    = errors.New("unknown criterion")
	ErrTooManyPhotos       = fmt.Errorf("at most %d photos are allowed", MaxPhotos)
	ErrInvalidPhoto        = errors.New("photos must be data:image URIs")
	ErrPhotoNotFound       = errors.New("photo not found")
	ErrStorageFailure      = errors.New("storage failure")

	ErrGenerationInProgress = errors.New("report generation already in progress for this evaluation")
)

// EvaluationService runs the supervisor, roster and evaluation workflows on
// top of the local store.
type EvaluationService struct {
	store     Store
	generator ReportGenerator
	catalog   *rubric.Catalog
	logger    *zap.Logger
	now       func() time.Time
	newID     func() string

	// rosterMu serializes roster read-modify-write cycles.
	rosterMu sync.Mutex
	reports  singleflight.Group

	// inflightMu guards inflight, the record digest being generated per pair.
	inflightMu sync.Mutex
	inflight   map[string]string
}

type ServiceOption func(*EvaluationService)

func WithClock(now func() time.Time) ServiceOption {
	return func(s *EvaluationService) { s.now = now }
}

func WithIDGenerator(newID func() string) ServiceOption {
	return func(s *EvaluationService) { s.newID = newID }
}

// NewEvaluationService creates a new EvaluationService instance.
func NewEvaluationService(store Store, generator ReportGenerator, catalog *rubric.Catalog, logger *zap.Logger, opts ...ServiceOption) *EvaluationService {
	if store == nil {
		panic("store must not be nil")
	}
	if generator == nil {
		panic("report generator must not be nil")
	}
	if catalog == nil {
		catalog = rubric.Default()
	}
	if logger == nil {
		l, _ := zap.NewProduction()
		logger = l
	}
	s := &EvaluationService{
		store:     store,
		generator: generator,
		catalog:   catalog,
		logger:    logger.Named("evaluation-service"),
		now:       time.Now,
		newID:     uuid.NewString,
		inflight:  make(map[string]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *EvaluationService) Catalog() *rubric.Catalog {
	return s.catalog
}

func (s *EvaluationService) ListSupervisors(ctx context.Context) ([]models.Supervisor, error) {
	dbCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	supervisors, err := s.store.ListSupervisors(dbCtx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return supervisors, nil
}

func (s *EvaluationService) GetSupervisor(ctx context.Context, supervisorID string) (models.Supervisor, error) {
	supervisors, err := s.ListSupervisors(ctx)
	if err != nil {
		return models.Supervisor{}, err
	}
	for _, sup := range supervisors {
		if sup.ID == supervisorID {
			return sup, nil
		}
	}
	return models.Supervisor{}, fmt.Errorf("%w: %s", ErrSupervisorNotFound, supervisorID)
}

// CreateSupervisor registers a new supervisor profile with an empty roster.
func (s *EvaluationService) CreateSupervisor(ctx context.Context, name string) (models.Supervisor, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Supervisor{}, ErrNameRequired
	}

	sup := models.Supervisor{
		ID:        s.newID(),
		Name:      name,
		Employees: []models.Employee{},
	}

	s.rosterMu.Lock()
	defer s.rosterMu.Unlock()

	dbCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	if err := s.store.UpsertSupervisor(dbCtx, sup); err != nil {
		return models.Supervisor{}, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	s.logger.Info("supervisor created", zap.String("supervisor_id", sup.ID), zap.String("name", sup.Name))
	return sup, nil
}

// AddEmployee appends a new employee to the supervisor's roster.
func (s *EvaluationService) AddEmployee(ctx context.Context, supervisorID, name, role string) (models.Supervisor, models.Employee, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Supervisor{}, models.Employee{}, ErrNameRequired
	}

	s.rosterMu.Lock()
	defer s.rosterMu.Unlock()

	sup, err := s.GetSupervisor(ctx, supervisorID)
	if err != nil {
		return models.Supervisor{}, models.Employee{}, err
	}

	emp := models.Employee{ID: s.newID(), Name: name, Role: strings.TrimSpace(role)}
	sup.Employees = append(append([]models.Employee{}, sup.Employees...), emp)

	dbCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	if err := s.store.UpsertSupervisor(dbCtx, sup); err != nil {
		return models.Supervisor{}, models.Employee{}, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	s.logger.Info("employee added",
		zap.String("supervisor_id", sup.ID),
		zap.String("employee_id", emp.ID),
		zap.Int("roster_size", len(sup.Employees)))
	return sup, emp, nil
}

// NewForm loads the form for a roster employee, hydrated from any stored
// evaluation for the pair.
func (s *EvaluationService) NewForm(ctx context.Context, supervisorID, employeeID string) (*Form, bool, error) {
	sup, err := s.GetSupervisor(ctx, supervisorID)
	if err != nil {
		return nil, false, err
	}
	emp, ok := sup.FindEmployee(employeeID)
	if !ok {
		return nil, false, fmt.Errorf("%w: %s", ErrEmployeeNotFound, employeeID)
	}

	dbCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	stored, found, err := s.store.GetEvaluation(dbCtx, supervisorID, employeeID)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	if !found {
		return NewForm(s.catalog, supervisorID, emp, nil, s.now()), false, nil
	}
	return NewForm(s.catalog, supervisorID, emp, &stored, s.now()), true, nil
}

// OpenEvaluation returns the form contents for a pair without keeping state.
func (s *EvaluationService) OpenEvaluation(ctx context.Context, supervisorID, employeeID string) (OpenedEvaluation, error) {
	form, stored, err := s.NewForm(ctx, supervisorID, employeeID)
	if err != nil {
		return OpenedEvaluation{}, err
	}
	return OpenedEvaluation{
		Evaluation:   form.Data(),
		ShowAdvanced: form.ShowAdvanced(),
		Stored:       stored,
	}, nil
}

func validateIdentity(ev models.EvaluationData) error {
	if strings.TrimSpace(ev.SupervisorID) == "" || strings.TrimSpace(ev.ID) == "" {
		return ErrEvaluationIdentity
	}
	return nil
}

func validatePhotos(ev models.EvaluationData) error {
	if ev.AdvancedSession == nil {
		return nil
	}
	if len(ev.AdvancedSession.Photos) > MaxPhotos {
		return ErrTooManyPhotos
	}
	for _, p := range ev.AdvancedSession.Photos {
		if !isPhotoDataURI(p) {
			return ErrInvalidPhoto
		}
	}
	return nil
}

// SaveEvaluation validates and persists the evaluation, overwriting any
// earlier record for the same pair.
func (s *EvaluationService) SaveEvaluation(ctx context.Context, ev models.EvaluationData) (models.EvaluationData, error) {
	if err := validateIdentity(ev); err != nil {
		return models.EvaluationData{}, err
	}
	if strings.TrimSpace(ev.Role) == "" {
		return models.EvaluationData{}, ErrRoleRequired
	}
	if err := validatePhotos(ev); err != nil {
		return models.EvaluationData{}, err
	}

	return s.persist(ctx, ev)
}

func (s *EvaluationService) persist(ctx context.Context, ev models.EvaluationData) (models.EvaluationData, error) {
	dbCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	saved, err := s.store.SaveEvaluation(dbCtx, ev.Clone())
	if err != nil {
		return models.EvaluationData{}, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	s.logger.Info("evaluation saved",
		zap.String("key", saved.Key()),
		zap.Int("ratings", len(saved.Ratings)),
		zap.Bool("advanced_session", saved.AdvancedSession != nil))
	return saved, nil
}

// GenerateReport requests the narrative for ev and, on success, persists ev.
// Identical concurrent requests for a pair share one generator call; a
// request carrying a different record while one is in flight gets
// ErrGenerationInProgress. The shared call is detached from the callers'
// cancellation, and each caller stops waiting when its own ctx is done.
func (s *EvaluationService) GenerateReport(ctx context.Context, ev models.EvaluationData) (Report, error) {
	if err := validateIdentity(ev); err != nil {
		return Report{}, err
	}
	if len(ev.Ratings) < MinRatingsForReport {
		return Report{}, ErrInsufficientRatings
	}
	if err := validatePhotos(ev); err != nil {
		return Report{}, err
	}

	key := ev.Key()
	digest, err := recordDigest(ev)
	if err != nil {
		return Report{}, fmt.Errorf("digest evaluation: %w", err)
	}

	s.inflightMu.Lock()
	if running, ok := s.inflight[key]; ok && running != digest {
		s.inflightMu.Unlock()
		s.logger.Info("report generation already running for pair", zap.String("key", key))
		return Report{}, ErrGenerationInProgress
	}
	s.inflight[key] = digest
	ch := s.reports.DoChan(key+"|"+digest, func() (any, error) {
		defer s.finishGeneration(key, digest)
		return s.generate(context.WithoutCancel(ctx), key, ev)
	})
	s.inflightMu.Unlock()

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return Report{}, ctx.Err()
	}
	if res.Err != nil {
		return Report{}, res.Err
	}
	if res.Shared {
		s.logger.Debug("joined in-flight report generation", zap.String("key", key))
	}

	report := res.Val.(Report)
	report.Evaluation = report.Evaluation.Clone()
	report.Blocks = append([]narrative.Block(nil), report.Blocks...)
	return report, nil
}

func (s *EvaluationService) generate(ctx context.Context, key string, ev models.EvaluationData) (Report, error) {
	start := s.now()
	text, err := s.generator.Generate(ctx, ev.Clone())
	if err != nil {
		s.logger.Warn("report generation failed", zap.String("key", key), zap.Error(err))
		return Report{}, err
	}

	saved, err := s.persist(ctx, ev)
	if err != nil {
		return Report{}, err
	}

	s.logger.Info("report generated",
		zap.String("key", key),
		zap.Duration("elapsed", s.now().Sub(start)))
	return Report{
		Evaluation: saved,
		Text:       text,
		Blocks:     narrative.Render(text),
	}, nil
}

func (s *EvaluationService) finishGeneration(key, digest string) {
	s.inflightMu.Lock()
	defer s.inflightMu.Unlock()
	if s.inflight[key] == digest {
		delete(s.inflight, key)
	}
}

// recordDigest fingerprints the submitted record; map keys are sorted by the
// JSON encoder so equal records hash equally.
func recordDigest(ev models.EvaluationData) (string, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// ListEvaluations returns every stored evaluation keyed by composite key.
func (s *EvaluationService) ListEvaluations(ctx context.Context) (map[string]models.EvaluationData, error) {
	dbCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	all, err := s.store.ListEvaluations(dbCtx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return all, nil
}

// StoredEvaluation returns the persisted record for a pair.
func (s *EvaluationService) StoredEvaluation(ctx context.Context, supervisorID, employeeID string) (models.EvaluationData, bool, error) {
	dbCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	ev, found, err := s.store.GetEvaluation(dbCtx, supervisorID, employeeID)
	if err != nil {
		return models.EvaluationData{}, false, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return ev, found, nil
}
