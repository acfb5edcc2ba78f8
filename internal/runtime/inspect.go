package runtime

import (
	"context"
	"time"

	"github.com/unifecaf/triagebot/pkg/domain"
)

// Transition is one edge of the conversation graph. An empty Label stands
// for free text.
type Transition struct {
	From     domain.Step
	Label    string
	To       domain.Step
	Terminal bool
}

// probeText is the free text used to discover where the fallback branch of a
// step leads. It is also a valid student id.
const probeText = "12345"

// Transitions lists the edges of the conversation graph, in table order. It
// runs every branch against a scratch engine with no collaborators, so
// nothing is exported and no external service is called.
func Transitions() []Transition {
	probe := NewEngine(nil, nil, nil)
	var edges []Transition
	for _, step := range domain.Steps() {
		st := probe.table[step]
		for _, r := range st.rules {
			edges = append(edges, probe.walk(step, r.labels[0], r.apply))
		}
		if st.otherwise == nil {
			edges = append(edges, Transition{From: step, To: step, Terminal: true})
			continue
		}
		if edge := probe.walk(step, "", st.otherwise); edge.To != step || edge.Terminal {
			edges = append(edges, edge)
		}
	}
	return edges
}

func (e *Engine) walk(step domain.Step, label string, apply func(*turn)) Transition {
	sess := domain.NewSession("probe", time.Time{})
	sess.Step = step
	sess.Attributes.Set(domain.KeyStudentID, probeText)
	sess.Attributes.Set(domain.KeyCourse, "probe")

	t := &turn{ctx: context.Background(), sess: sess, raw: label, input: label}
	if label == "" {
		t.raw, t.input = probeText, probeText
	}
	apply(t)
	return Transition{From: step, Label: label, To: t.sess.Step, Terminal: t.done}
}
