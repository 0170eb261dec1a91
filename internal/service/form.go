package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/operacoevilla-web/avalia-o-desempenho/internal/repository/models"
	"github.com/operacoevilla-web/avalia-o-desempenho/internal/rubric"
)

const (
	MaxPhotos          = 4
	referenceMonthFmt  = "2006-01"
	photoDataURIPrefix = "data:image/"
)

// Form is the in-progress assessment of one employee by one supervisor. It is
// never persisted implicitly; callers hand Data() to SaveEvaluation.
type Form struct {
	data    models.EvaluationData
	catalog *rubric.Catalog
}

// NewForm starts from the stored record when there is one, otherwise from
// defaults: the current month, the roster role and no ratings.
func NewForm(catalog *rubric.Catalog, supervisorID string, employee models.Employee, stored *models.EvaluationData, now time.Time) *Form {
	if catalog == nil {
		catalog = rubric.Default()
	}
	if stored != nil {
		data := stored.Clone()
		if data.Ratings == nil {
			data.Ratings = map[string]rubric.Rating{}
		}
		return &Form{data: data, catalog: catalog}
	}
	return &Form{
		catalog: catalog,
		data: models.EvaluationData{
			ID:             employee.ID,
			SupervisorID:   supervisorID,
			EmployeeName:   employee.Name,
			Role:           employee.Role,
			ReferenceMonth: now.Format(referenceMonthFmt),
			Ratings:        map[string]rubric.Rating{},
			LastUpdated:    now.UnixMilli(),
		},
	}
}

// Data returns a copy of the current form contents.
func (f *Form) Data() models.EvaluationData {
	return f.data.Clone()
}

// ShowAdvanced recomputes the follow-up visibility from the current ratings.
func (f *Form) ShowAdvanced() bool {
	return ShowAdvancedSession(f.data.Ratings)
}

// SetRating records a rating for a catalog criterion.
func (f *Form) SetRating(criterion string, r rubric.Rating) error {
	if !f.catalog.Has(criterion) {
		return fmt.Errorf("%w: %q", ErrUnknownCriterion, criterion)
	}
	if !r.Valid() {
		return fmt.Errorf("%w: %d", rubric.ErrUnknownRating, int(r))
	}
	f.data.Ratings[criterion] = r
	return nil
}

func (f *Form) ClearRating(criterion string) {
	delete(f.data.Ratings, criterion)
}

func (f *Form) SetRole(role string) { f.data.Role = role }
func (f *Form) SetReferenceMonth(month string) { f.data.ReferenceMonth = month }
func (f *Form) SetEvaluator(evaluator string) { f.data.Evaluator = evaluator }
func (f *Form) SetObservations(observations string) { f.data.Observations = observations }

func (f *Form) SetSignatures(employee, evaluator string) {
	f.data.EmployeeSignature = employee
	f.data.EvaluatorSignature = evaluator
}

// advanced returns the session data, creating it on first use. Once created
// it is kept even if the section later becomes hidden.
func (f *Form) advanced() *models.AdvancedSessionData {
	if f.data.AdvancedSession == nil {
		f.data.AdvancedSession = &models.AdvancedSessionData{Photos: []string{}}
	}
	return f.data.AdvancedSession
}

func (f *Form) SetAdvancedReport(report string) { f.advanced().Report = report }
func (f *Form) SetAdvancedLink(link string) { f.advanced().Link = link }
func (f *Form) SetAdvancedDate(date string) { f.advanced().Date = date }

// AddPhotos appends data-URI images up to the remaining capacity and reports
// how many were taken. Photos beyond capacity are ignored.
func (f *Form) AddPhotos(photos ...string) (int, error) {
	for _, p := range photos {
		if !isPhotoDataURI(p) {
			return 0, ErrInvalidPhoto
		}
	}
	adv := f.advanced()
	room := MaxPhotos - len(adv.Photos)
	if room <= 0 {
		return 0, nil
	}
	if len(photos) > room {
		photos = photos[:room]
	}
	adv.Photos = append(adv.Photos, photos...)
	return len(photos), nil
}

// RemovePhoto drops the photo at index i.
func (f *Form) RemovePhoto(i int) error {
	adv := f.data.AdvancedSession
	if adv == nil || i < 0 || i >= len(adv.Photos) {
		return fmt.Errorf("%w: index %d", ErrPhotoNotFound, i)
	}
	adv.Photos = append(adv.Photos[:i], adv.Photos[i+1:]...)
	return nil
}

func isPhotoDataURI(s string) bool {
	return strings.HasPrefix(s, photoDataURIPrefix) && strings.Contains(s, ",")
}
