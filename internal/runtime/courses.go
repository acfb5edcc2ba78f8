package runtime

import (
	"errors"
	"fmt"
	"strings"

	"github.com/unifecaf/triagebot/pkg/catalog"
	"github.com/unifecaf/triagebot/pkg/domain"
)

// semesterTokens are looked up literally in the raw text, in this order.
var semesterTokens = []string{"1º", "2º", "3º", "4º", "5º", "6º"}

var listingRequests = []string{"quais cursos", "cursos disponíveis", "quais são os cursos", "listar cursos"}

// freeCourseQuery answers a typed course question and offers to continue.
func (e *Engine) freeCourseQuery(t *turn) {
	answer := e.courseQuery(t)
	t.set(domain.KeyCourseQueryText, t.raw)
	t.set(domain.KeyCourseQueryAnswer, answer)
	t.say(answer, nil)
	t.goTo(domain.StepCourseQueryContinue, msgCourseContinue, kbCourseContinue)
}

// courseQuery resolves free text against the catalog: an explicit listing
// request, then a course name (with an optional semester token), then a
// discipline name. Anything else goes to the completion service together
// with the course listing.
func (e *Engine) courseQuery(t *turn) string {
	for _, req := range listingRequests {
		if strings.Contains(t.input, req) {
			return e.listing(t)
		}
	}

	courses, err := e.catalog.Courses(t.ctx)
	if err != nil {
		return e.catalogFailure(t, err)
	}
	for _, course := range courses {
		if !strings.Contains(t.input, strings.ToLower(course)) {
			continue
		}
		filter := domain.CourseFilter{Course: course}
		for _, token := range semesterTokens {
			if strings.Contains(t.raw, token) {
				filter.Semester = token + " Semestre"
				break
			}
		}
		return e.query(t, filter)
	}

	match, ok, err := e.catalog.SearchDiscipline(t.ctx, t.input)
	if err != nil {
		return e.catalogFailure(t, err)
	}
	if ok {
		return fmt.Sprintf("🔍 **Disciplina encontrada:** %s\n\n📚 **Curso:** %s\n🎯 **Semestre:** %s\n\n%s",
			match.Discipline, match.Course, match.Semester,
			e.query(t, domain.CourseFilter{Course: match.Course, Semester: match.Semester}))
	}

	prompt := fmt.Sprintf("Pergunta do usuário: %s\n\nInformações reais dos cursos:\n%s\n\nResponda de forma precisa usando essas informações.", t.raw, e.listing(t))
	return e.consult(t, prompt, "")
}

// listing is the unfiltered catalog query.
func (e *Engine) listing(t *turn) string {
	return e.query(t, domain.CourseFilter{})
}

func (e *Engine) query(t *turn, filter domain.CourseFilter) string {
	text, err := e.catalog.Query(t.ctx, filter)
	if err != nil {
		return e.catalogFailure(t, err)
	}
	return text
}

func (e *Engine) catalogFailure(t *turn, err error) string {
	if errors.Is(err, domain.ErrCatalogUnavailable) {
		return catalog.Unavailable
	}
	e.logger.Error("Catalog query failed", "user_id", t.sess.UserID, "err", err)
	return msgCourseError
}
