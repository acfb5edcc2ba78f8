package triagebot_test

import (
	"context"
	"fmt"
	"log"

	"github.com/unifecaf/triagebot"
	"github.com/unifecaf/triagebot/pkg/domain"
)

// ExampleAssistant_Handle walks a student through the opening questions
// using the default in-memory store.
func ExampleAssistant_Handle() {
	bot := triagebot.New()
	ctx := context.Background()

	for _, text := range []string{"Sou aluno", "12a", "12345"} {
		reply, err := bot.Handle(ctx, "aluno-1", text)
		if err != nil {
			log.Fatal(err)
		}
		for _, m := range reply.Messages {
			fmt.Println(m.Text)
		}
	}

	// Output:
	// Perfeito — por favor, informe seu RA (apenas números):
	// Por favor, digite um RA válido (apenas números, pelo menos 3 dígitos):
	// Obrigado. Qual é o seu curso? (digite o nome ou abreviação)
}

// ExampleAssistant_QueryCourses answers a catalog query without touching
// any session.
func ExampleAssistant_QueryCourses() {
	bot := triagebot.New()

	text, err := bot.QueryCourses(context.Background(), domain.CourseFilter{Course: "Medicina"})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(text[:len("❌ Curso 'Medicina' não encontrado.")])

	// Output:
	// ❌ Curso 'Medicina' não encontrado.
}
