/*
Package runner drives a conversation with the assistant from a terminal or a
pipe.

The Runner reads one line at a time through an IOHandler, hands it to the
assistant and writes the reply back. Two handlers are provided:

  - TextHandler: human-oriented, with an optional markdown renderer and
    styled option labels.
  - JSONHandler: JSON Lines in and out, for scripting and headless tests.

The loop ends on EOF, on "exit" or "quit", or when the context is cancelled.
A finished conversation does not end the loop: the next line opens a new one.
*/
package runner
