package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unifecaf/triagebot/internal/runtime"
	"github.com/unifecaf/triagebot/pkg/domain"
)

func TestValidateGraph_Conversation(t *testing.T) {
	require.NoError(t, ValidateGraph(runtime.Transitions(), domain.StepAskRole))
}

func TestValidateGraph_Broken(t *testing.T) {
	edges := runtime.Transitions()

	t.Run("Unknown start", func(t *testing.T) {
		err := ValidateGraph(edges, domain.Step(99))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not a known step")
	})

	t.Run("Missing step", func(t *testing.T) {
		broken := append([]runtime.Transition{}, edges...)
		broken = append(broken, runtime.Transition{From: domain.StepAskRole, Label: "fantasma", To: domain.Step(99)})

		err := ValidateGraph(broken, domain.StepAskRole)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Missing step: 'ASK_ROLE' -> 'Step(99)'")
	})

	t.Run("Unreachable and dead end", func(t *testing.T) {
		only := []runtime.Transition{
			{From: domain.StepAskRole, Label: "sou aluno", To: domain.StepAskStudentID},
		}

		err := ValidateGraph(only, domain.StepAskRole)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Dead end: 'ASK_STUDENT_ID'")
		assert.Contains(t, err.Error(), "Unreachable step: 'VISITOR_MENU'")
	})
}
