package runtime

import (
	"fmt"
	"slices"
	"strings"

	"github.com/unifecaf/triagebot/pkg/domain"
)

// Keys under which generated answers are recorded.
const (
	keyStudentMenuAnswer   = "ia_interpretacao_menu"
	keyFinancialMenuAnswer = "ia_financeiro_interpretacao"
	keyFinancialAnswer     = "ia_financeiro_resposta"
	keyRegistrarMenuAnswer = "ia_secretaria_interpretacao"
	keyRegistrarAnswer     = "ia_secretaria_resposta"
	keyDocsMenuAnswer      = "ia_documentos_interpretacao"
	keyDocsAnswer          = "ia_documentos_resposta"
	keyVisitorCourses      = "ia_visitante_cursos"
	keyVisitorPrices       = "ia_visitante_valores"
	keyVisitorDocs         = "ia_visitante_docs"
	keyVisitorSignUp       = "ia_visitante_inscricao"
	keyVisitorMenuAnswer   = "ia_visitante_interpretacao"
)

// rule fires when the normalized input equals one of its labels.
type rule struct {
	labels []string
	apply  func(*turn)
}

func (r rule) matches(input string) bool {
	return slices.Contains(r.labels, input)
}

func on(apply func(*turn), labels ...string) rule {
	return rule{labels: labels, apply: apply}
}

// state lists the labelled transitions of a step. otherwise handles any
// other non-empty input; a state without it hands the user off.
type state struct {
	rules     []rule
	otherwise func(*turn)
}

// sectorMenu is the shape shared by the financial, registrar and document menus.
type sectorMenu struct {
	sector    string
	keyboard  [][]string
	actionKey string
	detail    domain.Step
	actions   []sectorAction
	extra     []rule
	handoff   handoff

	freePrompt string
	answerKey  string
	suffix     string
}

type sectorAction struct {
	labels []string
	value  string
	ask    string
}

// detailStep collects the free-text detail of a sector request and ends the conversation.
type detailStep struct {
	detailKey   string
	actionKey   string
	actionLabel string
	detailLabel string
	lower       bool
	prompt      string
	answerKey   string
}

func (e *Engine) transitions() map[domain.Step]state {
	backToMenu := on(func(t *turn) {
		t.goTo(domain.StepStudentMenu, msgBackToMenu, kbStudent)
	}, "voltar")

	return map[domain.Step]state{
		domain.StepAskRole: {
			rules: []rule{
				on(func(t *turn) {
					t.set(domain.KeyRole, domain.RoleStudent)
					t.goTo(domain.StepAskStudentID, msgAskStudentID, nil)
				}, "sou aluno"),
				on(func(t *turn) {
					t.set(domain.KeyRole, domain.RoleVisitor)
					t.goTo(domain.StepVisitorMenu, msgVisitorMenu, kbVisitor)
				}, "não sou aluno", "nao sou aluno"),
			},
			otherwise: func(t *turn) {
				t.say(msgChooseRole, kbRole)
			},
		},

		domain.StepAskStudentID: {
			otherwise: func(t *turn) {
				if !ValidStudentID(t.raw) {
					t.say(msgInvalidID, nil)
					return
				}
				t.set(domain.KeyStudentID, t.raw)
				t.goTo(domain.StepAskStudentCourse, msgAskCourse, nil)
			},
		},

		domain.StepAskStudentCourse: {
			otherwise: func(t *turn) {
				t.set(domain.KeyCourse, t.raw)
				t.goTo(domain.StepStudentMenu, msgStudentMenu, kbStudent)
			},
		},

		domain.StepStudentMenu: {
			rules: []rule{
				on(func(t *turn) {
					t.set(domain.KeySector, "financeiro")
					t.goTo(domain.StepFinancialMenu, msgFinancialMenu, kbFinancial)
				}, "financeiro"),
				on(func(t *turn) {
					t.set(domain.KeySector, "secretaria")
					t.goTo(domain.StepRegistrarMenu, msgRegistrarMenu, kbRegistrar)
				}, "secretaria"),
				on(func(t *turn) {
					t.set(domain.KeySector, "documentos")
					t.goTo(domain.StepDocsMenu, msgDocsMenu, kbDocs)
				}, "documentos"),
				on(func(t *turn) {
					t.set(domain.KeySector, "info_curso")
					t.goTo(domain.StepCourseQuery, msgCourseIntro, kbCourses)
				}, "informações do curso", "informacoes do curso"),
				on(e.handOff(handoffStudent), "falar com atendente"),
				on(func(t *turn) {
					t.say(msgUserCancelled, nil)
					e.finish(t)
				}, "cancelar"),
			},
			otherwise: func(t *turn) {
				details := fmt.Sprintf("Aluno: RA %s, Curso: %s", t.get(domain.KeyStudentID), t.get(domain.KeyCourse))
				prompt := fmt.Sprintf("O usuário (aluno) escreveu: '%s'. %s. Resuma em uma frase e responda de forma cortês, sugerindo as opções do menu.", t.raw, details)
				answer := e.consult(t, prompt, details)
				t.set(keyStudentMenuAnswer, answer)
				t.say(answer+"\n\nSe preferir, escolha uma opção no menu.", kbStudent)
			},
		},

		domain.StepFinancialMenu: e.sector(sectorMenu{
			sector:    "Financeiro",
			keyboard:  kbFinancial,
			actionKey: domain.KeyFinancialAction,
			detail:    domain.StepFinancialDetail,
			actions: []sectorAction{
				{[]string{"ver boletos"}, "ver_boletos", "Deseja alguma observação específica sobre os boletos? Descreva resumidamente (ou digite 'não'):"},
				{[]string{"segunda via"}, "segunda_via", "Informe, se quiser, o mês/competência da segunda via (ou digite 'não'):"},
				{[]string{"acordo / renegociação", "acordo / renegociacao", "acordo"}, "acordo", "Descreva a proposta de acordo (valor/parcelas) ou digite 'não':"},
				{[]string{"consultar pagamentos"}, "consultar_pagamentos", "Se quiser, escreva detalhes (período) ou digite 'não':"},
			},
			handoff:    handoffFinancial,
			freePrompt: "Usuário pediu algo no Financeiro: '%s'. %s. Resuma a solicitação e explique os próximos passos possíveis em linguagem natural.",
			answerKey:  keyFinancialMenuAnswer,
			suffix:     "Se deseja, escolha uma opção no menu financeiro.",
		}, backToMenu),

		domain.StepFinancialDetail: e.detail(detailStep{
			detailKey:   domain.KeyFinancialDetail,
			actionKey:   domain.KeyFinancialAction,
			actionLabel: "Ação Financeira",
			detailLabel: "Detalhes",
			prompt:      "Processar solicitação financeira: '%s'. Forneça confirmação e próximos passos.",
			answerKey:   keyFinancialAnswer,
		}),

		domain.StepRegistrarMenu: e.sector(sectorMenu{
			sector:    "Secretaria",
			keyboard:  kbRegistrar,
			actionKey: domain.KeyRegistrarAction,
			detail:    domain.StepRegistrarDetail,
			actions: []sectorAction{
				{[]string{"reposição / recuperação", "reposicao / recuperacao", "reposição", "recuperação", "reposicao", "recuperacao"}, "recuperacao", "Qual a disciplina / período relacionada à recuperação? Descreva:"},
				{[]string{"horário das aulas", "horario das aulas"}, "horario", "Informe, por favor, qual curso/turno (ex: Tarde, Noite) para buscarmos o horário:"},
				{[]string{"troca de curso"}, "troca_curso", "Para qual curso deseja trocar? Informe o nome do curso:"},
			},
			extra: []rule{
				on(func(t *turn) {
					t.set(domain.KeyRegistrarAction, "calendario")
					t.say(msgCalendar, nil)
					e.finish(t)
				}, "calendário acadêmico", "calendario acadêmico", "calendario academico"),
			},
			handoff:    handoffRegistrar,
			freePrompt: "Solicitação para Secretaria: '%s'. %s. Explique em poucas palavras o que pode ser feito pelo bot e sugira opções.",
			answerKey:  keyRegistrarMenuAnswer,
			suffix:     "Escolha uma opção no menu da secretaria.",
		}, backToMenu),

		domain.StepRegistrarDetail: e.detail(detailStep{
			detailKey:   domain.KeyRegistrarDetail,
			actionKey:   domain.KeyRegistrarAction,
			actionLabel: "Ação Secretaria",
			detailLabel: "Detalhes",
			prompt:      "Processar solicitação da secretaria: '%s'. Forneça confirmação e próximos passos.",
			answerKey:   keyRegistrarAnswer,
		}),

		domain.StepDocsMenu: e.sector(sectorMenu{
			sector:    "Documentos",
			keyboard:  kbDocs,
			actionKey: domain.KeyDocument,
			detail:    domain.StepDocsDetail,
			actions: []sectorAction{
				{[]string{"declaração de matrícula", "declaracao de matricula", "declaracao de matrícula", "declaração"}, "declaracao_matricula", askDelivery},
				{[]string{"atestado de frequência", "atestado de frequencia", "atestado"}, "atestado_frequencia", askDelivery},
				{[]string{"histórico parcial", "historico parcial", "histórico"}, "historico_parcial", askDelivery},
				{[]string{"solicitar diploma"}, "diploma", "Solicitação de diploma iniciada. Deseja instruções por e-mail? (digite 'sim' ou 'não')"},
			},
			handoff:    handoffDocs,
			freePrompt: "Solicitação de documento: '%s'. %s. Resuma e indique opções (email/retirar/voltar).",
			answerKey:  keyDocsMenuAnswer,
			suffix:     "Escolha uma opção no menu de documentos.",
		}, backToMenu),

		domain.StepDocsDetail: e.detail(detailStep{
			detailKey:   domain.KeyDocumentDelivery,
			actionKey:   domain.KeyDocument,
			actionLabel: "Documento",
			detailLabel: "Preferência",
			lower:       true,
			prompt:      "Confirmar solicitação de documento com preferência: '%s'. Forneça confirmação e próximos passos.",
			answerKey:   keyDocsAnswer,
		}),

		domain.StepCourseQuery: {
			rules: []rule{
				on(func(t *turn) {
					t.say(e.listing(t), nil)
					e.finish(t)
				}, "listar todos os cursos"),
				on(func(t *turn) {
					t.set(domain.KeyCourseQueryMode, "grade_geral")
					t.say(msgAskCurriculum, nil)
				}, "grade curricular"),
				on(func(t *turn) {
					t.set(domain.KeyCourseQueryMode, "disciplinas_semestre")
					t.say(msgAskSemester, nil)
				}, "disciplinas por semestre"),
				backToMenu,
			},
			otherwise: e.freeCourseQuery,
		},

		domain.StepCourseQueryContinue: {
			rules: []rule{
				on(func(t *turn) {
					t.goTo(domain.StepCourseQuery, msgNextQuery, kbCourses)
				}, "nova consulta", "outra consulta"),
				on(func(t *turn) {
					t.goTo(domain.StepStudentMenu, msgBackToMenu, kbStudent)
				}, "voltar ao menu", "voltar"),
			},
			otherwise: e.freeCourseQuery,
		},

		domain.StepVisitorMenu: {
			rules: []rule{
				on(func(t *turn) {
					t.set(domain.KeyVisitorAction, "ver_cursos")
					listing := e.listing(t)
					t.set(keyVisitorCourses, listing)
					t.say(listing, nil)
					e.finish(t)
				}, "ver cursos"),
				on(e.visitorQuestion("ver_valores", promptPrices, keyVisitorPrices), "ver valores"),
				on(e.visitorQuestion("documentos_matricula", promptEnrollDocs, keyVisitorDocs), "documentos para matrícula", "documentos para matricula"),
				on(e.visitorQuestion("como_inscrever", promptSignUp, keyVisitorSignUp), "como se inscrever"),
				on(func(t *turn) {
					t.set(domain.KeyVisitorAction, "falar_consultor")
					t.say(msgConsultant, nil)
					e.finish(t)
				}, "falar com consultor"),
				on(func(t *turn) {
					t.say(msgCancelled, nil)
					e.finish(t)
				}, "cancelar"),
			},
			otherwise: func(t *turn) {
				prompt := fmt.Sprintf("Visitante escreveu: '%s'. Resuma a intenção e sugira as opções do menu de visitante.", t.raw)
				answer := e.consult(t, prompt, "")
				t.set(keyVisitorMenuAnswer, answer)
				t.say(answer+"\n\nEscolha uma opção ou digite 'Cancelar'.", kbVisitor)
			},
		},
	}
}

const askDelivery = "Deseja receber por e-mail em PDF ou retirar na secretaria? (digite 'email' ou 'retirar')"

func (e *Engine) sector(m sectorMenu, back rule) state {
	rules := make([]rule, 0, len(m.actions)+len(m.extra)+2)
	for _, a := range m.actions {
		rules = append(rules, on(func(t *turn) {
			t.set(m.actionKey, a.value)
			t.goTo(m.detail, a.ask, nil)
		}, a.labels...))
	}
	rules = append(rules, m.extra...)
	rules = append(rules, back, on(e.handOff(m.handoff), "falar com atendente"))

	return state{
		rules: rules,
		otherwise: func(t *turn) {
			details := fmt.Sprintf("Aluno: RA %s, Curso: %s, Setor: %s", t.get(domain.KeyStudentID), t.get(domain.KeyCourse), m.sector)
			answer := e.consult(t, fmt.Sprintf(m.freePrompt, t.raw, details), details)
			t.set(m.answerKey, answer)
			t.say(answer+"\n\n"+m.suffix, m.keyboard)
		},
	}
}

func (e *Engine) detail(d detailStep) state {
	return state{
		otherwise: func(t *turn) {
			value := t.raw
			if d.lower {
				value = t.input
			}
			t.set(d.detailKey, value)

			var b strings.Builder
			b.WriteString("DADOS DO ALUNO:\n")
			fmt.Fprintf(&b, "• RA: %s\n", t.get(domain.KeyStudentID))
			fmt.Fprintf(&b, "• Curso: %s\n", t.get(domain.KeyCourse))
			fmt.Fprintf(&b, "• %s: %s\n", d.actionLabel, t.get(d.actionKey))
			fmt.Fprintf(&b, "• %s: %s", d.detailLabel, value)

			answer := e.consult(t, fmt.Sprintf(d.prompt, value), b.String())
			t.set(d.answerKey, answer)
			t.say(answer, nil)
			e.finish(t)
		},
	}
}

func (e *Engine) handOff(h handoff) func(*turn) {
	return func(t *turn) {
		t.set(domain.KeyRequest, h.request)
		t.say(h.text(t.get(domain.KeyStudentID), t.get(domain.KeyCourse)), nil)
		e.finish(t)
	}
}

func (e *Engine) visitorQuestion(action, prompt, answerKey string) func(*turn) {
	return func(t *turn) {
		t.set(domain.KeyVisitorAction, action)
		answer := e.consult(t, prompt, "")
		t.set(answerKey, answer)
		t.say(answer, nil)
		e.finish(t)
	}
}

// ValidStudentID reports whether s is a student registration number: at
// least three ASCII digits and nothing else.
func ValidStudentID(s string) bool {
	if len(s) < 3 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
