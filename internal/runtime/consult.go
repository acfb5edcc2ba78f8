package runtime

import (
	"strings"

	"github.com/unifecaf/triagebot/pkg/completion"
	"github.com/unifecaf/triagebot/pkg/domain"
)

// courseTerms mark prompts that get the catalog listing as extra context.
var courseTerms = []string{
	"curso", "disciplina", "semestre", "grade", "matéria", "matriz",
	"métodos ágeis", "recuperação", "reposição",
}

// consult asks the completion service about prompt. Any failure is replaced
// by the canned answer for the prompt's category.
func (e *Engine) consult(t *turn, prompt, details string) string {
	if mentionsCourses(prompt) {
		enriched := "Informações dos cursos disponíveis:\n" + e.listing(t) +
			"\n\nBaseie sua resposta nessas informações reais dos cursos."
		if details != "" {
			enriched = details + "\n\n" + enriched
		}
		details = enriched
	}

	start := e.now()
	answer, err := e.completer.Complete(t.ctx, prompt, details)
	ev := &domain.CompletionEvent{
		EventBase: e.event(domain.EventCompletion, t.sess.UserID),
		Step:      t.sess.Step,
		Err:       err,
	}
	if err != nil {
		category, text := completion.Fallback(prompt, e.listing(t))
		e.logger.Warn("Completion failed, using fallback",
			"user_id", t.sess.UserID,
			"step", t.sess.Step,
			"category", category,
			"err", err,
		)
		answer = text
		ev.Fallback = true
		ev.Category = string(category)
	}
	ev.Duration = e.now().Sub(start)

	if e.hooks.OnCompletion != nil {
		e.hooks.OnCompletion(t.ctx, ev)
	}
	return answer
}

func mentionsCourses(prompt string) bool {
	p := strings.ToLower(prompt)
	for _, term := range courseTerms {
		if strings.Contains(p, term) {
			return true
		}
	}
	return false
}
