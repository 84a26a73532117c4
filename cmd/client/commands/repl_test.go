package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		line string
		want replCommand
	}{
		{"piz", replCommand{arg: "piz"}},
		{"  joe's ", replCommand{arg: "  joe's "}},
		{":tab", replCommand{name: "tab"}},
		{":PICK 2", replCommand{name: "pick", arg: "2"}},
		{":add Pizza Planet | 12", replCommand{name: "add", arg: "Pizza Planet | 12"}},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLine(tt.line))
		})
	}
}

func TestParseAdd(t *testing.T) {
	name, n, err := parseAdd(" Pizza Planet | 12 ")
	require.NoError(t, err)
	assert.Equal(t, "Pizza Planet", name)
	assert.Equal(t, 12, n)

	name, n, err = parseAdd("Bagel Bay")
	require.NoError(t, err)
	assert.Equal(t, "Bagel Bay", name)
	assert.Zero(t, n)

	_, _, err = parseAdd("Bagel Bay | lots")
	assert.Error(t, err)
}
