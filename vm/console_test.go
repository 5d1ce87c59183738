package vm

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamConsole_ReadLine(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{
			name:  "plain line",
			input: "42\n",
			want:  "42",
		},
		{
			name:  "crlf stripped",
			input: "42\r\n",
			want:  "42",
		},
		{
			name: "final line without terminator",
			// the stream ends mid-line; the partial line still counts
			input: "42",
			want:  "42",
		},
		{
			name:    "end of stream",
			input:   "",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewStreamConsole(strings.NewReader(tt.input), &bytes.Buffer{})
			got, err := c.ReadLine()
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStreamConsole_ReadByte(t *testing.T) {
	c := NewStreamConsole(strings.NewReader("ab"), &bytes.Buffer{})

	b, err := c.ReadByte()
	require.NoError(t, err)
	assert.Equal(t, byte('a'), b)

	b, err = c.ReadByte()
	require.NoError(t, err)
	assert.Equal(t, byte('b'), b)

	_, err = c.ReadByte()
	assert.Error(t, err)
}

func TestStreamConsole_Writes(t *testing.T) {
	out := &bytes.Buffer{}
	c := NewStreamConsole(strings.NewReader(""), out)

	require.NoError(t, c.WriteString("hi "))
	require.NoError(t, c.WriteByte('!'))
	require.NoError(t, c.Flush())
	assert.Equal(t, "hi !", out.String())
}

func TestStreamConsole_SharesBufferedReader(t *testing.T) {
	// two consoles over the same *bufio.Reader must not read ahead of
	// each other; the repl depends on this when 'i' follows the program
	// line on stdin
	br := bufio.NewReader(strings.NewReader("one\ntwo\n"))

	first := NewStreamConsole(br, &bytes.Buffer{})
	line, err := first.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "one", line)

	second := NewStreamConsole(br, &bytes.Buffer{})
	line, err = second.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "two", line)
}
