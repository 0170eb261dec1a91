package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/operacoevilla-web/avalia-o-desempenho/internal/repository/models"
	"go.uber.org/zap"
)

const (
	SupervisorsKey = "supervisors_v2"
	EvaluationsKey = "evaluations_v2"
)

// LocalStore keeps the supervisors and evaluations collections as two JSON
// documents in a key-value backend. Writes within one process are serialized;
// across processes the last write wins.
type LocalStore struct {
	kv     KeyValueStore
	logger *zap.Logger
	now    func() time.Time
	mu     sync.Mutex
}

type StoreOption func(*LocalStore)

func WithLogger(logger *zap.Logger) StoreOption {
	return func(s *LocalStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time source used to stamp lastUpdated.
func WithClock(now func() time.Time) StoreOption {
	return func(s *LocalStore) {
		if now != nil {
			s.now = now
		}
	}
}

func NewLocalStore(kv KeyValueStore, opts ...StoreOption) *LocalStore {
	if kv == nil {
		panic("key-value store must not be nil")
	}
	s := &LocalStore{
		kv:     kv,
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.Named("store")
	return s
}

// ListSupervisors returns the stored supervisors in insertion order. Missing
// or malformed data reads as an empty list; only backend failures are errors.
func (s *LocalStore) ListSupervisors(ctx context.Context) ([]models.Supervisor, error) {
	return s.readSupervisors(ctx)
}

// UpsertSupervisor replaces the supervisor with the same id or appends it.
func (s *LocalStore) UpsertSupervisor(ctx context.Context, supervisor models.Supervisor) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	supervisors, err := s.readSupervisors(ctx)
	if err != nil {
		return err
	}

	replaced := false
	for i := range supervisors {
		if supervisors[i].ID == supervisor.ID {
			supervisors[i] = supervisor
			replaced = true
			break
		}
	}
	if !replaced {
		supervisors = append(supervisors, supervisor)
	}

	data, err := json.Marshal(supervisors)
	if err != nil {
		return fmt.Errorf("encode supervisors: %w", err)
	}
	if err := s.kv.Set(ctx, SupervisorsKey, string(data)); err != nil {
		return fmt.Errorf("write %s: %w", SupervisorsKey, err)
	}
	return nil
}

// SaveEvaluation overwrites the record for (SupervisorID, ID) and stamps
// LastUpdated with the current time. The stamped record is returned.
func (s *LocalStore) SaveEvaluation(ctx context.Context, evaluation models.EvaluationData) (models.EvaluationData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.readEvaluations(ctx)
	if err != nil {
		return models.EvaluationData{}, err
	}

	evaluation.LastUpdated = s.now().UnixMilli()
	record, err := json.Marshal(evaluation)
	if err != nil {
		return models.EvaluationData{}, fmt.Errorf("encode evaluation: %w", err)
	}
	all[evaluation.Key()] = record

	data, err := json.Marshal(all)
	if err != nil {
		return models.EvaluationData{}, fmt.Errorf("encode evaluations: %w", err)
	}
	if err := s.kv.Set(ctx, EvaluationsKey, string(data)); err != nil {
		return models.EvaluationData{}, fmt.Errorf("write %s: %w", EvaluationsKey, err)
	}

	s.logger.Debug("evaluation saved",
		zap.String("key", evaluation.Key()),
		zap.Int64("last_updated", evaluation.LastUpdated))
	return evaluation, nil
}

// GetEvaluation looks up the exact composite key. A record that was never
// saved, or that no longer decodes, is reported as not found.
func (s *LocalStore) GetEvaluation(ctx context.Context, supervisorID, employeeID string) (models.EvaluationData, bool, error) {
	all, err := s.readEvaluations(ctx)
	if err != nil {
		return models.EvaluationData{}, false, err
	}

	key := models.EvaluationKey(supervisorID, employeeID)
	raw, ok := all[key]
	if !ok {
		return models.EvaluationData{}, false, nil
	}

	var evaluation models.EvaluationData
	if err := json.Unmarshal(raw, &evaluation); err != nil {
		s.logger.Warn("stored evaluation is malformed, treating as absent",
			zap.String("key", key), zap.Error(err))
		return models.EvaluationData{}, false, nil
	}
	return evaluation, true, nil
}

// ListEvaluations returns every decodable record keyed by composite key.
func (s *LocalStore) ListEvaluations(ctx context.Context) (map[string]models.EvaluationData, error) {
	all, err := s.readEvaluations(ctx)
	if err != nil {
		return nil, err
	}

	out := make(map[string]models.EvaluationData, len(all))
	for key, raw := range all {
		var evaluation models.EvaluationData
		if err := json.Unmarshal(raw, &evaluation); err != nil {
			s.logger.Warn("skipping malformed evaluation", zap.String("key", key), zap.Error(err))
			continue
		}
		out[key] = evaluation
	}
	return out, nil
}

func (s *LocalStore) readSupervisors(ctx context.Context) ([]models.Supervisor, error) {
	raw, found, err := s.kv.Get(ctx, SupervisorsKey)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", SupervisorsKey, err)
	}
	if !found || strings.TrimSpace(raw) == "" {
		return []models.Supervisor{}, nil
	}

	var supervisors []models.Supervisor
	if err := json.Unmarshal([]byte(raw), &supervisors); err != nil {
		s.logger.Warn("stored supervisors are malformed, treating as empty", zap.Error(err))
		return []models.Supervisor{}, nil
	}
	if supervisors == nil {
		supervisors = []models.Supervisor{}
	}
	return supervisors, nil
}

// readEvaluations keeps each record as raw JSON so that entries this build
// cannot decode are written back untouched.
func (s *LocalStore) readEvaluations(ctx context.Context) (map[string]json.RawMessage, error) {
	raw, found, err := s.kv.Get(ctx, EvaluationsKey)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", EvaluationsKey, err)
	}
	if !found || strings.TrimSpace(raw) == "" {
		return map[string]json.RawMessage{}, nil
	}

	var all map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &all); err != nil {
		s.logger.Warn("stored evaluations are malformed, treating as empty", zap.Error(err))
		return map[string]json.RawMessage{}, nil
	}
	if all == nil {
		all = map[string]json.RawMessage{}
	}
	return all, nil
}
