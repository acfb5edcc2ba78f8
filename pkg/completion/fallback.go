package completion

import (
	"fmt"
	"strings"
)

// Category is the kind of canned answer chosen for a prompt.
type Category string

const (
	CategoryRecovery  Category = "recovery"
	CategoryFinancial Category = "financial"
	CategoryDocuments Category = "documents"
	CategoryCourse    Category = "course"
	CategoryGeneric   Category = "generic"
)

const agileRecovery = "✅ **SOLICITAÇÃO DE RECUPERAÇÃO/REPOSIÇÃO REGISTRADA**\n\n" +
	"📚 **Disciplina:** MÉTODOS ÁGEIS\n🎯 **Semestre:** 1º Semestre\n👤 **Curso:** Análise e Desenvolvimento de Sistemas\n\n" +
	"📋 **Próximos passos:**\n• Secretaria entrará em contato em até 48h úteis\n• Serão informadas datas disponíveis para prova\n• Documentação necessária será solicitada\n\n" +
	"📞 **Contato:** secretaria@unifecaf.edu.br"

const genericRecovery = "✅ **SOLICITAÇÃO DE RECUPERAÇÃO/REPOSIÇÃO REGISTRADA**\n\n" +
	"Sua solicitação foi encaminhada para a secretaria acadêmica. A equipe entrará em contato em até 48h úteis com todas as orientações.\n\n" +
	"📞 **Contato:** secretaria@unifecaf.edu.br"

const financialTemplate = "✅ **SOLICITAÇÃO FINANCEIRA REGISTRADA**\n\n" +
	"💼 **Tipo:** %s\n📅 **Prazo:** Até 24h úteis para retorno\n\n" +
	"📋 **Próximos passos:**\n• Equipe financeira analisará sua solicitação\n• Retornaremos por email com informações\n• Mantenha seus dados atualizados\n\n" +
	"📞 **Contato:** financeiro@unifecaf.edu.br"

const documentTemplate = "✅ **SOLICITAÇÃO DE DOCUMENTO REGISTRADA**\n\n" +
	"📄 **Documento:** %s\n📅 **Prazo de emissão:** 2-3 dias úteis\n\n" +
	"📋 **Próximos passos:**\n• Documento será processado conforme sua escolha\n• Receberá confirmação por email\n• Retirada disponível na secretaria\n\n" +
	"📞 **Contato:** documentos@unifecaf.edu.br"

const courseTip = "\n\n💡 **Dica:** Para informações detalhadas, entre em contato com a coordenação do curso."

const genericAck = "✅ **SOLICITAÇÃO REGISTRADA COM SUCESSO**\n\n" +
	"Sua mensagem foi recebida e será processada pela nossa equipe.\n\n" +
	"📞 **Atendimento humano:** atendimento@unifecaf.edu.br\n⏰ **Horário:** Segunda a sexta, 8h às 18h"

// keyword pairs a term found in the prompt with the label it selects.
type keyword struct {
	term  string
	label string
}

var financialActions = []keyword{
	{"boleto", "consulta de boletos"},
	{"segunda via", "emissão de segunda via"},
	{"acordo", "proposta de acordo"},
	{"pagamento", "consulta de pagamentos"},
}

var documentTypes = []keyword{
	{"declaração", "declaração de matrícula"},
	{"atestado", "atestado de frequência"},
	{"histórico", "histórico parcial"},
	{"diploma", "diploma"},
}

// Fallback picks the canned answer for prompt. Categories are tried in
// priority order: recovery, financial, documents, course, generic.
// listing is the catalog listing appended by the course category.
func Fallback(prompt, listing string) (Category, string) {
	p := strings.ToLower(prompt)

	switch {
	case containsAny(p, "recuperação", "reposição"):
		if strings.Contains(p, "métodos ágeis") {
			return CategoryRecovery, agileRecovery
		}
		return CategoryRecovery, genericRecovery

	case containsAny(p, "financeiro", "boleto", "pagamento", "acordo"):
		return CategoryFinancial, fmt.Sprintf(financialTemplate, pick(p, financialActions, "solicitação financeira"))

	case containsAny(p, "documento", "declaração", "atestado", "histórico", "diploma"):
		return CategoryDocuments, fmt.Sprintf(documentTemplate, strings.ToUpper(pick(p, documentTypes, "documento")))

	case containsAny(p, "curso", "disciplina"):
		return CategoryCourse, listing + courseTip

	default:
		return CategoryGeneric, genericAck
	}
}

func containsAny(s string, terms ...string) bool {
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}

func pick(s string, options []keyword, def string) string {
	for _, k := range options {
		if strings.Contains(s, k.term) {
			return k.label
		}
	}
	return def
}
