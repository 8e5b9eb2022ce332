package messaging

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatDecimal(t *testing.T) {
	assert.Equal(t, "100.500", FormatDecimal(100.5))
	assert.Equal(t, "-3.250", FormatDecimal(-3.25))
}

// Zero and anything that quantizes to zero must still render the full
// three-digit width.
func TestFormatDecimal_ZeroIsPadded(t *testing.T) {
	assert.Equal(t, "0.000", FormatDecimal(0))
	assert.Equal(t, "0.000", FormatDecimal(math.Copysign(0, -1)))
	assert.Equal(t, "0.000", FormatDecimal(0.0004))
}

func TestMockSenderRecordsMessages(t *testing.T) {
	sender := NewMockMessageSender()

	first := &StepMessage{RunID: "run-1", Step: 1, SpotMid: FormatDecimal(100.0)}
	second := &StepMessage{RunID: "run-1", Step: 2, SpotMid: FormatDecimal(100.5)}

	require.NoError(t, sender.SendStepMessage(first))
	require.NoError(t, sender.SendStepMessage(second))
	require.NoError(t, sender.Close())

	msgs := sender.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, int64(1), msgs[0].Step)
	assert.Equal(t, "100.500", msgs[1].SpotMid)
}
