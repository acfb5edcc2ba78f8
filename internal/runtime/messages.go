package runtime

import (
	"fmt"
	"strings"
)

// Keyboards offered with menu prompts.
var (
	kbRole = [][]string{
		{"Sou aluno", "Não sou aluno"},
	}
	kbStudent = [][]string{
		{"Financeiro", "Secretaria"},
		{"Documentos", "Informações do curso"},
		{"Falar com atendente", "Cancelar"},
	}
	kbFinancial = [][]string{
		{"Ver boletos", "Segunda via"},
		{"Acordo / Renegociação", "Consultar pagamentos"},
		{"Voltar", "Falar com atendente"},
	}
	kbRegistrar = [][]string{
		{"Reposição / Recuperação", "Calendário acadêmico"},
		{"Horário das aulas", "Troca de curso"},
		{"Voltar", "Falar com atendente"},
	}
	kbDocs = [][]string{
		{"Declaração de matrícula", "Atestado de frequência"},
		{"Histórico parcial", "Solicitar diploma"},
		{"Voltar", "Falar com atendente"},
	}
	kbCourses = [][]string{
		{"Listar todos os cursos", "Grade curricular"},
		{"Disciplinas por semestre", "Voltar"},
	}
	kbCourseContinue = [][]string{
		{"Nova consulta", "Voltar ao menu"},
	}
	kbVisitor = [][]string{
		{"Ver cursos", "Ver valores"},
		{"Documentos para matrícula", "Como se inscrever"},
		{"Falar com consultor", "Cancelar"},
	}
)

const (
	msgGreeting = "Olá! 👋 Seja bem-vindo ao atendimento virtual da UniFECAF.\n" +
		"Antes de começarmos: você é aluno da instituição?"
	msgExpired      = "⏰ Sessão expirada. Vamos iniciar um novo atendimento."
	msgInvalidInput = "Por favor, digite uma mensagem válida."
	msgInputTooLong = "Sua mensagem é muito longa. Por favor, resuma e envie novamente."

	msgChooseRole    = "Por favor escolha: 'Sou aluno' ou 'Não sou aluno'."
	msgAskStudentID  = "Perfeito — por favor, informe seu RA (apenas números):"
	msgInvalidID     = "Por favor, digite um RA válido (apenas números, pelo menos 3 dígitos):"
	msgAskCourse     = "Obrigado. Qual é o seu curso? (digite o nome ou abreviação)"
	msgStudentMenu   = "O que deseja fazer hoje? Escolha uma opção:"
	msgVisitorMenu   = "Perfeito — como posso te ajudar hoje?"
	msgBackToMenu    = "Voltando ao menu principal."
	msgUserCancelled = "Atendimento cancelado pelo usuário."
	msgCancelled     = "Atendimento cancelado."

	msgFinancialMenu = "Você escolheu Financeiro. O que deseja?"
	msgRegistrarMenu = "Você escolheu Secretaria. O que deseja?"
	msgDocsMenu      = "Você escolheu Documentos. O que deseja?"

	msgCourseIntro = "🎓 **Consulta de Informações do Curso**\n\n" +
		"Você pode:\n" +
		"- Digitar o nome de um curso específico\n" +
		"- Perguntar sobre disciplinas\n" +
		"- Usar os botões abaixo para navegar"
	msgCourseCommand = "🎓 **Consulta de Cursos UniFECAF**\n\n" +
		"Escolha uma opção ou digite o nome de um curso específico:"
	msgAskCurriculum  = "Digite o nome do curso que deseja ver a grade curricular completa:"
	msgAskSemester    = "Digite o curso e semestre (ex: 'Análise e Desenvolvimento de Sistemas 1º semestre'):"
	msgCourseContinue = "Deseja fazer outra consulta ou voltar ao menu principal?"
	msgNextQuery      = "🎓 Digite sua próxima consulta sobre cursos:"
	msgCourseError    = "❌ Erro ao consultar informações do curso."

	msgCalendar = "📅 **Calendário Acadêmico**\n\n" +
		"Você pode acessar o calendário acadêmico atualizado no portal institucional da UniFECAF."

	msgConsultant = "👥 **Falar com Consultor**\n\n" +
		"📧 **E-mail:** comercial@unifecaf.edu.br\n" +
		"📞 **Telefone:** (11) 1234-5678\n" +
		"🕒 **Horário:** Segunda a sexta, 8h às 18h\n\n" +
		"Nossa equipe comercial terá prazer em tirar suas dúvidas!"

	msgArtifact = "📁 Atendimento registrado em:\n%s"
	msgClosing  = "✅ Atendimento finalizado. Digite /start para iniciar outro atendimento."

	notInformed = "Não informado"
)

// Fixed prompts of the visitor menu.
const (
	promptPrices     = "Explique brevemente como consultar valores de mensalidades e opções de bolsas/financiamento na UniFECAF."
	promptEnrollDocs = "Liste os documentos necessários para matrícula de graduação (RG, CPF, comprovante, histórico, etc.)"
	promptSignUp     = "Explique o processo de inscrição (link, provas, ENEM, contato) na UniFECAF de forma clara e convidativa."
)

// handoff describes where a conversation is forwarded when the user asks
// for a human.
type handoff struct {
	title    string
	email    string
	request  string
	include  []string
	deadline string
}

var (
	handoffStudent = handoff{
		title:    "Atendimento Humano",
		email:    "atendimento@unifecaf.edu.br",
		request:  "falar_com_atendente",
		include:  []string{"Descrição detalhada do seu pedido"},
		deadline: "24h úteis",
	}
	handoffFinancial = handoff{
		title:    "Financeiro",
		email:    "financeiro@unifecaf.edu.br",
		request:  "falar_com_atendente_financeiro",
		include:  []string{"Descrição detalhada da solicitação financeira"},
		deadline: "24h úteis",
	}
	handoffRegistrar = handoff{
		title:    "Secretaria",
		email:    "secretaria@unifecaf.edu.br",
		request:  "falar_com_atendente_secretaria",
		include:  []string{"Descrição detalhada da solicitação"},
		deadline: "48h úteis",
	}
	handoffDocs = handoff{
		title:    "Documentos",
		email:    "documentos@unifecaf.edu.br",
		request:  "falar_com_atendente_documentos",
		include:  []string{"Documento(s) solicitado(s)", "Preferência de recebimento"},
		deadline: "24h úteis",
	}
)

func (h handoff) text(ra, course string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "👥 **Encaminhando para %s**\n\n", h.title)
	fmt.Fprintf(&b, "📧 **E-mail:** %s\n", h.email)
	b.WriteString("📋 **Inclua em seu e-mail:**\n")
	fmt.Fprintf(&b, "• Seu RA: %s\n", ra)
	fmt.Fprintf(&b, "• Seu curso: %s\n", course)
	for _, line := range h.include {
		fmt.Fprintf(&b, "• %s\n", line)
	}
	fmt.Fprintf(&b, "\n⏰ **Prazo de retorno:** %s", h.deadline)
	return b.String()
}

func unmappedText(ra string) string {
	return "❌ **Não foi possível processar automaticamente**\n\n" +
		"👥 **Atendimento Humano**\n" +
		"📧 **E-mail:** atendimento@unifecaf.edu.br\n" +
		"📋 **Inclua:**\n" +
		"• Seu RA: " + ra + "\n" +
		"• Descrição detalhada do pedido\n\n" +
		"⏰ **Retorno em até 24h úteis**"
}
