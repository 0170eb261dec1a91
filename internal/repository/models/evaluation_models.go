package models

import "github.com/operacoevilla-web/avalia-o-desempenho/internal/rubric"

type Employee struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role,omitempty"`
}

type Supervisor struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Employees []Employee `json:"employees"`
}

// FindEmployee returns the roster entry with the given id.
func (s Supervisor) FindEmployee(employeeID string) (Employee, bool) {
	for _, e := range s.Employees {
		if e.ID == employeeID {
			return e, true
		}
	}
	return Employee{}, false
}

type AdvancedSessionData struct {
	Report string   `json:"report"`
	Photos []string `json:"photos"`
	Link   string   `json:"link"`
	Date   string   `json:"date"`
}

// EvaluationData is one supervisor's assessment of one employee. ID is the
// employee id.
type EvaluationData struct {
	ID                 string                   `json:"id"`
	SupervisorID       string                   `json:"supervisorId"`
	EmployeeName       string                   `json:"employeeName"`
	Role               string                   `json:"role"`
	ReferenceMonth     string                   `json:"referenceMonth"`
	Evaluator          string                   `json:"evaluator"`
	Ratings            map[string]rubric.Rating `json:"ratings"`
	Observations       string                   `json:"observations"`
	AdvancedSession    *AdvancedSessionData     `json:"advancedSession,omitempty"`
	EmployeeSignature  string                   `json:"employeeSignature"`
	EvaluatorSignature string                   `json:"evaluatorSignature"`
	LastUpdated        int64                    `json:"lastUpdated"`
}

// EvaluationKey is the composite key of the evaluations collection.
func EvaluationKey(supervisorID, employeeID string) string {
	return supervisorID + "_" + employeeID
}

func (e EvaluationData) Key() string {
	return EvaluationKey(e.SupervisorID, e.ID)
}

// Clone returns a deep copy so callers can mutate ratings and photos freely.
func (e EvaluationData) Clone() EvaluationData {
	out := e
	if e.Ratings != nil {
		out.Ratings = make(map[string]rubric.Rating, len(e.Ratings))
		for k, v := range e.Ratings {
			out.Ratings[k] = v
		}
	}
	if e.AdvancedSession != nil {
		adv := *e.AdvancedSession
		if e.AdvancedSession.Photos != nil {
			adv.Photos = make([]string, len(e.AdvancedSession.Photos))
			copy(adv.Photos, e.AdvancedSession.Photos)
		}
		out.AdvancedSession = &adv
	}
	return out
}
