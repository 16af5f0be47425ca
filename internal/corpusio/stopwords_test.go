package corpusio

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadStopwordsSplitsOnePerLine(t *testing.T) {
	data := "the\na\nan\n"
	set, err := ReadStopwords(strings.NewReader(data))
	require.NoError(t, err)
	assert.True(t, set["the"])
	assert.True(t, set["a"])
	assert.True(t, set["an"])
	assert.Len(t, set, 3)
}

func TestReadStopwordsSkipsBlankLines(t *testing.T) {
	data := "the\n\n\na\n"
	set, err := ReadStopwords(strings.NewReader(data))
	require.NoError(t, err)
	assert.Len(t, set, 2)
}

func TestReadStopwordsEmptyInput(t *testing.T) {
	set, err := ReadStopwords(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, set)
}
