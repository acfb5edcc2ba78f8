// Package catalog holds the course catalog (courses, semesters and
// disciplines) and answers the lookups used by the course-information menu.
//
// Matching is case-insensitive substring and always returns the first entry
// in catalog order, never the best one.
package catalog

import (
	"fmt"
	"strings"

	"github.com/unifecaf/triagebot/pkg/domain"
)

// Unavailable is shown when no catalog data could be loaded.
const Unavailable = "Não foi possível carregar as informações dos cursos no momento."

// Semester groups the disciplines of one course period.
type Semester struct {
	Name        string   `yaml:"name" json:"name"`
	Disciplines []string `yaml:"disciplines" json:"disciplines"`
}

// Course is a degree program and its semesters, in catalog order.
type Course struct {
	Name      string     `yaml:"name" json:"name"`
	Semesters []Semester `yaml:"semesters" json:"semesters"`
}

// Catalog is an immutable, ordered list of courses.
type Catalog struct {
	Courses []Course `yaml:"courses" json:"courses"`
}

// Empty reports whether the catalog holds no course.
func (c *Catalog) Empty() bool {
	return c == nil || len(c.Courses) == 0
}

// CourseNames returns the course names in catalog order.
func (c *Catalog) CourseNames() []string {
	if c == nil {
		return nil
	}
	names := make([]string, len(c.Courses))
	for i, course := range c.Courses {
		names[i] = course.Name
	}
	return names
}

// Listing formats every course name.
func (c *Catalog) Listing() string {
	return "🎓 **Cursos Disponíveis na UniFECAF**\n\n" + bullets(c.CourseNames())
}

// Query formats the entries selected by filter.
//
// With no course it lists every course. With a course it lists that course's
// semesters, or the disciplines of one semester, or the disciplines matching
// the discipline filter. Misses produce a "not found" text listing the
// alternatives at that level.
func (c *Catalog) Query(filter domain.CourseFilter) string {
	if c.Empty() {
		return Unavailable
	}
	if filter.Course == "" {
		return c.Listing()
	}

	course, ok := c.findCourse(filter.Course)
	if !ok {
		return fmt.Sprintf("❌ Curso '%s' não encontrado.\n\n🎓 Cursos disponíveis:\n%s", filter.Course, bullets(c.CourseNames()))
	}

	if filter.Semester == "" {
		var b strings.Builder
		fmt.Fprintf(&b, "📚 **Curso: %s**\n\n**Semestres disponíveis:**\n", course.Name)
		for _, sem := range course.Semesters {
			fmt.Fprintf(&b, "• %s: %d disciplinas\n", sem.Name, len(sem.Disciplines))
		}
		return b.String()
	}

	sem, ok := course.findSemester(filter.Semester)
	if !ok {
		return fmt.Sprintf("❌ Semestre '%s' não encontrado no curso %s.\n\n**Semestres disponíveis:**\n%s",
			filter.Semester, course.Name, bullets(course.semesterNames()))
	}

	if filter.Discipline != "" {
		var found []string
		needle := strings.ToLower(filter.Discipline)
		for _, d := range sem.Disciplines {
			if strings.Contains(strings.ToLower(d), needle) {
				found = append(found, d)
			}
		}
		if len(found) == 0 {
			return fmt.Sprintf("❌ Nenhuma disciplina contendo '%s' encontrada em %s - %s", filter.Discipline, course.Name, sem.Name)
		}
		return fmt.Sprintf("🔍 **Disciplinas encontradas em %s - %s:**\n%s", course.Name, sem.Name, bullets(found))
	}

	return fmt.Sprintf("📚 **Curso: %s**\n🎯 **Semestre: %s**\n\n**Disciplinas:**\n%s", course.Name, sem.Name, bullets(sem.Disciplines))
}

// FindCourseIn returns the first course whose name appears in text.
func (c *Catalog) FindCourseIn(text string) (string, bool) {
	if c == nil {
		return "", false
	}
	lower := strings.ToLower(text)
	for _, course := range c.Courses {
		if strings.Contains(lower, strings.ToLower(course.Name)) {
			return course.Name, true
		}
	}
	return "", false
}

// SearchDiscipline returns the first discipline whose name appears in text,
// scanning courses, then semesters, then disciplines in catalog order.
func (c *Catalog) SearchDiscipline(text string) (domain.DisciplineMatch, bool) {
	if c == nil {
		return domain.DisciplineMatch{}, false
	}
	lower := strings.ToLower(text)
	for _, course := range c.Courses {
		for _, sem := range course.Semesters {
			for _, d := range sem.Disciplines {
				if strings.Contains(lower, strings.ToLower(d)) {
					return domain.DisciplineMatch{Course: course.Name, Semester: sem.Name, Discipline: d}, true
				}
			}
		}
	}
	return domain.DisciplineMatch{}, false
}

func (c *Catalog) findCourse(name string) (*Course, bool) {
	needle := strings.ToLower(name)
	for i := range c.Courses {
		if strings.Contains(strings.ToLower(c.Courses[i].Name), needle) {
			return &c.Courses[i], true
		}
	}
	return nil, false
}

func (c *Course) findSemester(name string) (*Semester, bool) {
	needle := strings.ToLower(name)
	for i := range c.Semesters {
		if strings.Contains(strings.ToLower(c.Semesters[i].Name), needle) {
			return &c.Semesters[i], true
		}
	}
	return nil, false
}

func (c *Course) semesterNames() []string {
	names := make([]string, len(c.Semesters))
	for i, s := range c.Semesters {
		names[i] = s.Name
	}
	return names
}

func bullets(items []string) string {
	lines := make([]string, len(items))
	for i, it := range items {
		lines[i] = "• " + it
	}
	return strings.Join(lines, "\n")
}
