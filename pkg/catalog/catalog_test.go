package catalog_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unifecaf/triagebot/pkg/catalog"
	"github.com/unifecaf/triagebot/pkg/domain"
)

func engineering() *catalog.Catalog {
	return &catalog.Catalog{Courses: []catalog.Course{
		{Name: "Engenharia", Semesters: []catalog.Semester{
			{Name: "1º Semestre", Disciplines: []string{"Cálculo I", "Física I"}},
		}},
		{Name: "Engenharia de Produção", Semesters: []catalog.Semester{
			{Name: "1º Semestre", Disciplines: []string{"Gestão da Produção"}},
			{Name: "2º Semestre", Disciplines: []string{"Logística"}},
		}},
	}}
}

func TestQuery_FirstMatchWins(t *testing.T) {
	got := engineering().Query(domain.CourseFilter{Course: "engenharia"})

	assert.True(t, strings.HasPrefix(got, "📚 **Curso: Engenharia**\n"), "got %q", got)
	assert.NotContains(t, got, "Produção")
	assert.Contains(t, got, "• 1º Semestre: 2 disciplinas")
}

func TestQuery(t *testing.T) {
	cat := engineering()

	tests := []struct {
		name   string
		filter domain.CourseFilter
		want   string
	}{
		{
			name:   "No Filters",
			filter: domain.CourseFilter{},
			want:   "🎓 **Cursos Disponíveis na UniFECAF**\n\n• Engenharia\n• Engenharia de Produção",
		},
		{
			name:   "Unknown Course",
			filter: domain.CourseFilter{Course: "Medicina"},
			want:   "❌ Curso 'Medicina' não encontrado.\n\n🎓 Cursos disponíveis:\n• Engenharia\n• Engenharia de Produção",
		},
		{
			name:   "Semesters",
			filter: domain.CourseFilter{Course: "produção"},
			want:   "📚 **Curso: Engenharia de Produção**\n\n**Semestres disponíveis:**\n• 1º Semestre: 1 disciplinas\n• 2º Semestre: 1 disciplinas\n",
		},
		{
			name:   "Semester Disciplines",
			filter: domain.CourseFilter{Course: "Engenharia", Semester: "1º"},
			want:   "📚 **Curso: Engenharia**\n🎯 **Semestre: 1º Semestre**\n\n**Disciplinas:**\n• Cálculo I\n• Física I",
		},
		{
			name:   "Unknown Semester",
			filter: domain.CourseFilter{Course: "Engenharia", Semester: "9º"},
			want:   "❌ Semestre '9º' não encontrado no curso Engenharia.\n\n**Semestres disponíveis:**\n• 1º Semestre",
		},
		{
			name:   "Discipline Found",
			filter: domain.CourseFilter{Course: "Engenharia", Semester: "1º Semestre", Discipline: "física"},
			want:   "🔍 **Disciplinas encontradas em Engenharia - 1º Semestre:**\n• Física I",
		},
		{
			name:   "Discipline Missing",
			filter: domain.CourseFilter{Course: "Engenharia", Semester: "1º Semestre", Discipline: "Química"},
			want:   "❌ Nenhuma disciplina contendo 'Química' encontrada em Engenharia - 1º Semestre",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cat.Query(tt.filter))
		})
	}
}

func TestQuery_EmptyCatalog(t *testing.T) {
	var cat *catalog.Catalog
	assert.Equal(t, catalog.Unavailable, cat.Query(domain.CourseFilter{}))
}

func TestFindCourseIn(t *testing.T) {
	cat := engineering()

	name, ok := cat.FindCourseIn("quero ver engenharia de produção 2º semestre")
	require.True(t, ok)
	assert.Equal(t, "Engenharia", name, "the first course contained in the text wins")

	_, ok = cat.FindCourseIn("medicina")
	assert.False(t, ok)
}

func TestSearchDiscipline(t *testing.T) {
	cat := engineering()

	m, ok := cat.SearchDiscipline("tenho dúvida em logística")
	require.True(t, ok)
	assert.Equal(t, domain.DisciplineMatch{Course: "Engenharia de Produção", Semester: "2º Semestre", Discipline: "Logística"}, m)

	_, ok = cat.SearchDiscipline("nada a ver")
	assert.False(t, ok)
}
