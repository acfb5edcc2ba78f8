// Package validator checks the conversation graph for consistency.
package validator

import (
	"fmt"
	"strings"

	"github.com/unifecaf/triagebot/internal/runtime"
	"github.com/unifecaf/triagebot/pkg/domain"
)

// ValidateGraph crawls edges from start and reports broken links, steps
// without outgoing edges and steps that cannot be reached.
func ValidateGraph(edges []runtime.Transition, start domain.Step) error {
	if !start.Valid() {
		return fmt.Errorf("start step '%s' is not a known step", start)
	}

	out := make(map[domain.Step][]runtime.Transition)
	var errs []string
	for _, e := range edges {
		out[e.From] = append(out[e.From], e)
		if !e.Terminal && !e.To.Valid() {
			errs = append(errs, fmt.Sprintf("Missing step: '%s' -> '%s'", e.From, e.To))
		}
	}

	visited := map[domain.Step]bool{}
	queue := []domain.Step{start}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if visited[current] {
			continue
		}
		visited[current] = true

		if len(out[current]) == 0 {
			errs = append(errs, fmt.Sprintf("Dead end: '%s' has no transitions", current))
		}
		for _, e := range out[current] {
			if e.Terminal || !e.To.Valid() || visited[e.To] {
				continue
			}
			queue = append(queue, e.To)
		}
	}

	for _, step := range domain.Steps() {
		if !visited[step] {
			errs = append(errs, fmt.Sprintf("Unreachable step: '%s'", step))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("found %d errors:\n- %s", len(errs), strings.Join(errs, "\n- "))
	}
	return nil
}
