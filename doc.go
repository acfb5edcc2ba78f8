/*
Package triagebot is the help-desk assistant of the UniFECAF college: a
turn-based state machine that routes students and visitors to the financial,
registrar and document sectors, answers course questions from the catalog and
writes an audit record when a conversation ends.

# Concept

Each inbound message is one turn. The Assistant loads (or creates) the
caller's session, lets the conversation engine compute the next step and the
outbound messages, and stores the session back. Sessions expire 30 minutes
after creation; the next message after that starts over.

Everything outside the state machine sits behind a port in pkg/ports:

  - SessionStore: memory, Redis or JSON files.
  - CatalogClient: CSV or YAML course catalog with hot reload.
  - CompletionClient: OpenAI, Anthropic or Gemini, with canned answers when
    the service fails.
  - AuditExporter: CSV files, SQLite, or both.

# Usage

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/unifecaf/triagebot"
	)

	func main() {
		bot := triagebot.New()

		reply, err := bot.Handle(context.Background(), "user-42", "sou aluno")
		if err != nil {
			log.Fatal(err)
		}
		for _, msg := range reply.Messages {
			fmt.Println(msg.Text)
		}
	}

The cmd/triagebot binary wires the same Assistant to an HTTP/WebSocket
server, an MCP tool server and an interactive terminal chat.
*/
package triagebot
