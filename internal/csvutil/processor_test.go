package csvutil

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lepinkainen/mylibrary/internal/testutil"
)

func firstColumn(record []string) (string, error) {
	if record[0] == "" {
		return "", errors.New("empty value")
	}
	return record[0], nil
}

func TestProcessCSV(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.WriteFileString("isbns.csv", "isbn,note\n9784101010014,first\n9784101010021,second\n")

	got, err := ProcessCSV(env.Path("isbns.csv"), firstColumn, ProcessorOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"9784101010014", "9784101010021"}, got)
}

func TestProcessCSV_EmptyFile(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.WriteFileString("empty.csv", "")

	_, err := ProcessCSV(env.Path("empty.csv"), firstColumn, ProcessorOptions{})
	assert.Error(t, err)
}

func TestProcessCSV_FileNotFound(t *testing.T) {
	_, err := ProcessCSV("/nonexistent/file.csv", firstColumn, ProcessorOptions{})
	assert.Error(t, err)
}

func TestProcessReader_NoHeader(t *testing.T) {
	got, err := ProcessReader(strings.NewReader("a\nb\n"), firstColumn, ProcessorOptions{NoHeader: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestProcessReader_OnHeader(t *testing.T) {
	var seen []string
	opts := ProcessorOptions{OnHeader: func(h []string) error {
		seen = h
		return nil
	}}

	_, err := ProcessReader(strings.NewReader("ISBN13,Title\nx,y\n"), firstColumn, opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"ISBN13", "Title"}, seen)

	opts.OnHeader = func([]string) error { return errors.New("no isbn column") }
	_, err = ProcessReader(strings.NewReader("Title\nx\n"), firstColumn, opts)
	assert.ErrorContains(t, err, "no isbn column")
}

func TestProcessReader_InvalidRecords(t *testing.T) {
	input := "v\nok\n\"\"\nalso\n"

	_, err := ProcessReader(strings.NewReader(input), firstColumn, ProcessorOptions{})
	assert.ErrorContains(t, err, "invalid record 2")

	got, err := ProcessReader(strings.NewReader(input), firstColumn, ProcessorOptions{SkipInvalid: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"ok", "also"}, got)
}

func TestProcessReader_VariableFields(t *testing.T) {
	input := "isbn\n9784101010014\n9784101010021,extra\n"

	got, err := ProcessReader(strings.NewReader(input), firstColumn, ProcessorOptions{FieldsPerRecord: -1})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = ProcessReader(strings.NewReader(input), firstColumn, ProcessorOptions{})
	require.NoError(t, err)
	assert.Len(t, got, 1, "records with the wrong field count are skipped")
}
