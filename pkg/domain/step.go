package domain

import "fmt"

// Step is the position of a session in the conversation.
// The zero value is not a valid step.
type Step int

const (
	StepAskRole Step = iota + 1
	StepAskStudentID
	StepAskStudentCourse
	StepStudentMenu
	StepFinancialMenu
	StepFinancialDetail
	StepRegistrarMenu
	StepRegistrarDetail
	StepDocsMenu
	StepDocsDetail
	StepCourseQuery
	StepCourseQueryContinue
	StepVisitorMenu
)

var stepNames = map[Step]string{
	StepAskRole:             "ASK_ROLE",
	StepAskStudentID:        "ASK_STUDENT_ID",
	StepAskStudentCourse:    "ASK_STUDENT_COURSE",
	StepStudentMenu:         "STUDENT_MENU",
	StepFinancialMenu:       "FINANCIAL_MENU",
	StepFinancialDetail:     "FINANCIAL_DETAIL",
	StepRegistrarMenu:       "REGISTRAR_MENU",
	StepRegistrarDetail:     "REGISTRAR_DETAIL",
	StepDocsMenu:            "DOCS_MENU",
	StepDocsDetail:          "DOCS_DETAIL",
	StepCourseQuery:         "COURSE_QUERY",
	StepCourseQueryContinue: "COURSE_QUERY_CONTINUE",
	StepVisitorMenu:         "VISITOR_MENU",
}

// Steps returns every valid step in declaration order.
func Steps() []Step {
	steps := make([]Step, 0, len(stepNames))
	for s := StepAskRole; s <= StepVisitorMenu; s++ {
		steps = append(steps, s)
	}
	return steps
}

// Valid reports whether s belongs to the defined step set.
func (s Step) Valid() bool {
	_, ok := stepNames[s]
	return ok
}

func (s Step) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Step(%d)", int(s))
}

// ParseStep resolves a step from its stable name.
func ParseStep(name string) (Step, error) {
	for s, n := range stepNames {
		if n == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidStep, name)
}

// MarshalText encodes the step by name so persisted sessions survive reordering of the enum.
func (s Step) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidStep, int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText decodes a step name.
func (s *Step) UnmarshalText(text []byte) error {
	parsed, err := ParseStep(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
