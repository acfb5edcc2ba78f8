package runtime_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unifecaf/triagebot/internal/runtime"
	"github.com/unifecaf/triagebot/pkg/domain"
)

func TestValidStudentID(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"123", true},
		{"2023001", true},
		{"12", false},
		{"", false},
		{"12a", false},
		{"１２３", false},
		{"-123", false},
		{"12 3", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, runtime.ValidStudentID(tt.in), "input %q", tt.in)
	}
}

func TestTransitions_Labels(t *testing.T) {
	tests := []struct {
		name  string
		from  domain.Step
		input string
		to    domain.Step
		key   string
		value string
	}{
		{"Visitor", domain.StepAskRole, "Não sou aluno", domain.StepVisitorMenu, domain.KeyRole, domain.RoleVisitor},
		{"Visitor Unaccented", domain.StepAskRole, "nao sou aluno", domain.StepVisitorMenu, domain.KeyRole, domain.RoleVisitor},
		{"Role Reprompt", domain.StepAskRole, "talvez", domain.StepAskRole, "", ""},
		{"Financial", domain.StepStudentMenu, "Financeiro", domain.StepFinancialMenu, domain.KeySector, "financeiro"},
		{"Registrar", domain.StepStudentMenu, "SECRETARIA", domain.StepRegistrarMenu, domain.KeySector, "secretaria"},
		{"Documents", domain.StepStudentMenu, "documentos", domain.StepDocsMenu, domain.KeySector, "documentos"},
		{"Course Info", domain.StepStudentMenu, "Informações do curso", domain.StepCourseQuery, domain.KeySector, "info_curso"},
		{"Course Info Unaccented", domain.StepStudentMenu, "informacoes do curso", domain.StepCourseQuery, domain.KeySector, "info_curso"},
		{"Invoices", domain.StepFinancialMenu, "Ver boletos", domain.StepFinancialDetail, domain.KeyFinancialAction, "ver_boletos"},
		{"Duplicate", domain.StepFinancialMenu, "Segunda via", domain.StepFinancialDetail, domain.KeyFinancialAction, "segunda_via"},
		{"Settlement", domain.StepFinancialMenu, "Acordo / Renegociação", domain.StepFinancialDetail, domain.KeyFinancialAction, "acordo"},
		{"Settlement Unaccented", domain.StepFinancialMenu, "acordo / renegociacao", domain.StepFinancialDetail, domain.KeyFinancialAction, "acordo"},
		{"Payments", domain.StepFinancialMenu, "Consultar pagamentos", domain.StepFinancialDetail, domain.KeyFinancialAction, "consultar_pagamentos"},
		{"Financial Back", domain.StepFinancialMenu, "Voltar", domain.StepStudentMenu, "", ""},
		{"Recovery", domain.StepRegistrarMenu, "Reposição / Recuperação", domain.StepRegistrarDetail, domain.KeyRegistrarAction, "recuperacao"},
		{"Timetable", domain.StepRegistrarMenu, "horario das aulas", domain.StepRegistrarDetail, domain.KeyRegistrarAction, "horario"},
		{"Course Change", domain.StepRegistrarMenu, "Troca de curso", domain.StepRegistrarDetail, domain.KeyRegistrarAction, "troca_curso"},
		{"Registrar Back", domain.StepRegistrarMenu, "voltar", domain.StepStudentMenu, "", ""},
		{"Enrollment Letter", domain.StepDocsMenu, "Declaração de matrícula", domain.StepDocsDetail, domain.KeyDocument, "declaracao_matricula"},
		{"Attendance", domain.StepDocsMenu, "Atestado de frequência", domain.StepDocsDetail, domain.KeyDocument, "atestado_frequencia"},
		{"Transcript", domain.StepDocsMenu, "Histórico parcial", domain.StepDocsDetail, domain.KeyDocument, "historico_parcial"},
		{"Diploma", domain.StepDocsMenu, "Solicitar diploma", domain.StepDocsDetail, domain.KeyDocument, "diploma"},
		{"Docs Back", domain.StepDocsMenu, "Voltar", domain.StepStudentMenu, "", ""},
		{"Curriculum", domain.StepCourseQuery, "Grade curricular", domain.StepCourseQuery, domain.KeyCourseQueryMode, "grade_geral"},
		{"By Semester", domain.StepCourseQuery, "Disciplinas por semestre", domain.StepCourseQuery, domain.KeyCourseQueryMode, "disciplinas_semestre"},
		{"Course Back", domain.StepCourseQuery, "Voltar", domain.StepStudentMenu, "", ""},
		{"New Query", domain.StepCourseQueryContinue, "Nova consulta", domain.StepCourseQuery, "", ""},
		{"Another Query", domain.StepCourseQueryContinue, "outra consulta", domain.StepCourseQuery, "", ""},
		{"Back To Menu", domain.StepCourseQueryContinue, "Voltar ao menu", domain.StepStudentMenu, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exp := &recordingExporter{}
			e := newEngine(&fakeCompleter{reply: "ok"}, exp)

			res := send(t, e, student(tt.from), tt.input)

			require.False(t, res.Terminated)
			assert.Equal(t, tt.to, res.Session.Step)
			assert.NotEmpty(t, res.Messages)
			if tt.key != "" {
				assert.Equal(t, tt.value, res.Session.Attributes.ValueOr(tt.key, ""))
			}
			assert.Empty(t, exp.exported)
		})
	}
}

func TestTransitions_Handoffs(t *testing.T) {
	tests := []struct {
		from    domain.Step
		email   string
		request string
	}{
		{domain.StepStudentMenu, "atendimento@unifecaf.edu.br", "falar_com_atendente"},
		{domain.StepFinancialMenu, "financeiro@unifecaf.edu.br", "falar_com_atendente_financeiro"},
		{domain.StepRegistrarMenu, "secretaria@unifecaf.edu.br", "falar_com_atendente_secretaria"},
		{domain.StepDocsMenu, "documentos@unifecaf.edu.br", "falar_com_atendente_documentos"},
	}

	for _, tt := range tests {
		t.Run(tt.from.String(), func(t *testing.T) {
			exp := &recordingExporter{id: "a.csv"}
			e := newEngine(&fakeCompleter{}, exp)

			res := send(t, e, student(tt.from), "Falar com atendente")

			assert.True(t, res.Terminated)
			assert.Contains(t, res.Messages[0].Text, tt.email)
			assert.Contains(t, res.Messages[0].Text, "• Seu RA: 123\n• Seu curso: ADS\n")
			require.Len(t, exp.exported, 1)
			assert.Equal(t, tt.request, exp.exported[0].Attributes.ValueOr(domain.KeyRequest, ""))
		})
	}
}

func TestTransitions_HandoffWithoutData(t *testing.T) {
	e := newEngine(&fakeCompleter{}, &recordingExporter{})
	res := send(t, e, sessionAt(domain.StepStudentMenu), "falar com atendente")
	assert.Contains(t, res.Messages[0].Text, "• Seu RA: Não informado\n")
}

func TestTransitions_AcademicCalendar(t *testing.T) {
	exp := &recordingExporter{id: "a.csv"}
	e := newEngine(&fakeCompleter{}, exp)

	res := send(t, e, student(domain.StepRegistrarMenu), "Calendário acadêmico")

	assert.True(t, res.Terminated)
	assert.Contains(t, res.Messages[0].Text, "Calendário Acadêmico")
	require.Len(t, exp.exported, 1)
	assert.Equal(t, "calendario", exp.exported[0].Attributes.ValueOr(domain.KeyRegistrarAction, ""))
}

func TestTransitions_DocumentDelivery(t *testing.T) {
	comp := &fakeCompleter{reply: "Documento a caminho."}
	exp := &recordingExporter{}
	e := newEngine(comp, exp)
	sess := student(domain.StepDocsDetail)
	sess.Attributes.Set(domain.KeyDocument, "diploma")

	res := send(t, e, sess, "EMAIL")

	assert.True(t, res.Terminated)
	assert.Equal(t, "Documento a caminho.", res.Messages[0].Text)
	require.Len(t, exp.exported, 1)
	assert.Equal(t, "email", exp.exported[0].Attributes.ValueOr(domain.KeyDocumentDelivery, ""))
	assert.Equal(t, "Confirmar solicitação de documento com preferência: 'email'. Forneça confirmação e próximos passos.", comp.prompts[0])
}

func TestTransitions_SectorFreeText(t *testing.T) {
	comp := &fakeCompleter{reply: "Entendi."}
	e := newEngine(comp, &recordingExporter{})

	res := send(t, e, student(domain.StepRegistrarMenu), "preciso de ajuda")

	assert.Equal(t, domain.StepRegistrarMenu, res.Session.Step)
	assert.Equal(t, "Entendi.\n\nEscolha uma opção no menu da secretaria.", res.Messages[0].Text)
	assert.Len(t, res.Messages[0].Options, 3)
	assert.Equal(t, "Entendi.", res.Session.Attributes.ValueOr("ia_secretaria_interpretacao", ""))
	assert.Contains(t, comp.prompts[0], "Setor: Secretaria")
}

func TestTransitions_Visitor(t *testing.T) {
	t.Run("Courses", func(t *testing.T) {
		exp := &recordingExporter{}
		e := newEngine(&fakeCompleter{}, exp)
		res := send(t, e, sessionAt(domain.StepVisitorMenu), "Ver cursos")
		assert.True(t, res.Terminated)
		assert.True(t, strings.HasPrefix(res.Messages[0].Text, "🎓 **Cursos Disponíveis na UniFECAF**"))
		require.Len(t, exp.exported, 1)
		assert.Equal(t, "ver_cursos", exp.exported[0].Attributes.ValueOr(domain.KeyVisitorAction, ""))
	})

	t.Run("Prices", func(t *testing.T) {
		comp := &fakeCompleter{reply: "Consulte o portal."}
		e := newEngine(comp, &recordingExporter{})
		res := send(t, e, sessionAt(domain.StepVisitorMenu), "Ver valores")
		assert.True(t, res.Terminated)
		assert.Equal(t, "Consulte o portal.", res.Messages[0].Text)
		assert.Contains(t, comp.prompts[0], "mensalidades")
	})

	t.Run("Consultant", func(t *testing.T) {
		e := newEngine(&fakeCompleter{}, &recordingExporter{})
		res := send(t, e, sessionAt(domain.StepVisitorMenu), "Falar com consultor")
		assert.True(t, res.Terminated)
		assert.Contains(t, res.Messages[0].Text, "comercial@unifecaf.edu.br")
	})

	t.Run("Cancel", func(t *testing.T) {
		e := newEngine(&fakeCompleter{}, &recordingExporter{})
		res := send(t, e, sessionAt(domain.StepVisitorMenu), "cancelar")
		assert.True(t, res.Terminated)
		assert.Equal(t, "Atendimento cancelado.", res.Messages[0].Text)
	})
}

func TestCourseQuery(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		prefix string
	}{
		{"Listing Request", "quais cursos vocês têm?", "🎓 **Cursos Disponíveis na UniFECAF**"},
		{"Course", "me fale de análise e desenvolvimento de sistemas", "📚 **Curso: Análise e Desenvolvimento de Sistemas**\n\n**Semestres disponíveis:**"},
		{"Course And Semester", "Análise e Desenvolvimento de Sistemas 3º", "📚 **Curso: Análise e Desenvolvimento de Sistemas**\n🎯 **Semestre: 3º Semestre**"},
		{"Discipline", "tenho dúvida em métodos ágeis", "🔍 **Disciplina encontrada:** Métodos Ágeis\n\n📚 **Curso:** Análise e Desenvolvimento de Sistemas\n🎯 **Semestre:** 1º Semestre"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			comp := &fakeCompleter{reply: "gerado"}
			e := newEngine(comp, &recordingExporter{})

			res := send(t, e, student(domain.StepCourseQuery), tt.input)

			assert.Equal(t, domain.StepCourseQueryContinue, res.Session.Step)
			require.Len(t, res.Messages, 2)
			assert.True(t, strings.HasPrefix(res.Messages[0].Text, tt.prefix), "got %q", res.Messages[0].Text)
			assert.Empty(t, comp.prompts)
		})
	}
}

func TestCourseQuery_FallsBackToCompletion(t *testing.T) {
	comp := &fakeCompleter{reply: "Temos cursos EAD."}
	e := newEngine(comp, &recordingExporter{})

	res := send(t, e, student(domain.StepCourseQueryContinue), "tem aula aos sábados?")

	assert.Equal(t, domain.StepCourseQueryContinue, res.Session.Step)
	assert.Equal(t, "Temos cursos EAD.", res.Messages[0].Text)
	require.Len(t, comp.prompts, 1)
	assert.True(t, strings.HasPrefix(comp.prompts[0], "Pergunta do usuário: tem aula aos sábados?\n\nInformações reais dos cursos:\n🎓"))
}

func TestCourseQuery_CatalogUnavailable(t *testing.T) {
	comp := &fakeCompleter{reply: "x"}
	e := runtime.NewEngine(nil, comp, &recordingExporter{})

	res := send(t, e, student(domain.StepCourseQuery), "Análise e Desenvolvimento de Sistemas")

	assert.Equal(t, "Não foi possível carregar as informações dos cursos no momento.", res.Messages[0].Text)
	assert.Empty(t, comp.prompts)
}

// Every reachable outcome keeps the session in a defined step, and every
// termination exports exactly once.
func TestTransitions_Properties(t *testing.T) {
	inputs := []string{
		"", "sou aluno", "não sou aluno", "123", "12", "ADS", "financeiro", "secretaria",
		"documentos", "informações do curso", "voltar", "voltar ao menu", "nova consulta",
		"cancelar", "falar com atendente", "listar todos os cursos", "ver cursos",
		"calendário acadêmico", "qualquer coisa", "Banco de Dados 2º",
	}

	for _, step := range domain.Steps() {
		for _, input := range inputs {
			exp := &recordingExporter{id: "a.csv"}
			e := newEngine(&fakeCompleter{reply: "ok"}, exp)

			res := send(t, e, student(step), input)

			if res.Terminated {
				assert.Nil(t, res.Session, "%s/%q", step, input)
				assert.Len(t, exp.exported, 1, "%s/%q", step, input)
				continue
			}
			require.NotNil(t, res.Session, "%s/%q", step, input)
			assert.True(t, res.Session.Step.Valid(), "%s/%q", step, input)
			assert.Empty(t, exp.exported, "%s/%q", step, input)
			assert.NotEmpty(t, res.Messages, "%s/%q", step, input)
		}
	}
}
