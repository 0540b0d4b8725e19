package providers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatInstructions(t *testing.T) {
	assert.Equal(t, "", FormatInstructions(nil))
	assert.Equal(t, "", FormatInstructions([]string{" ", ""}))
	assert.Equal(t,
		"Follow these rules:\n1. Be kind.\n2. Keep it short.\n",
		FormatInstructions([]string{"Be kind.", "  ", " Keep it short. "}),
	)
}
