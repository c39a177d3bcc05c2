package output

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

// yamlProbeSample stands in for a probe outcome in handler tests.
type yamlProbeSample struct {
	Name   string `yaml:"name"`
	Status string `yaml:"status"`
}

func TestNewYAMLHandler_Writer(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	h := NewYAMLHandler[yamlProbeSample](buf, 3)
	require.Equal(t, buf, h.Writer())
}

func TestYAMLHandler_HandleResult(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	h := NewYAMLHandler[yamlProbeSample](buf, 2)

	err := h.HandleResult(yamlProbeSample{Name: "github-mcp", Status: "online"})
	require.NoError(t, err)

	expected := "result:\n" +
		"  name: github-mcp\n" +
		"  status: online\n"
	require.Equal(t, expected, buf.String())
}

func TestYAMLHandler_HandleResults(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	h := NewYAMLHandler[yamlProbeSample](buf, 2)

	samples := []yamlProbeSample{
		{Name: "github-mcp", Status: "online"},
		{Name: "time-server", Status: "offline"},
	}
	err := h.HandleResults(samples...)
	require.NoError(t, err)

	expected := "results:\n" +
		"  - name: github-mcp\n" +
		"    status: online\n" +
		"  - name: time-server\n" +
		"    status: offline\n"
	require.Equal(t, expected, buf.String())
}

func TestYAMLHandler_HandleResults_Empty(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	h := NewYAMLHandler[yamlProbeSample](buf, 0)

	err := h.HandleResults(nil...)
	require.NoError(t, err)

	require.Contains(t, buf.String(), "results:")
	require.Contains(t, buf.String(), "null")
}

func TestYAMLHandler_HandleError(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	h := NewYAMLHandler[yamlProbeSample](buf, 4)

	err := h.HandleError(errors.New("registry unreachable"))
	require.NoError(t, err)

	expected := "error: registry unreachable\n"
	require.Equal(t, expected, buf.String())
}

func TestYAMLHandler_HandleError_EmptyMessage(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	h := NewYAMLHandler[yamlProbeSample](buf, 0)

	err := h.HandleError(errors.New(""))
	require.NoError(t, err)

	expected := "error: \"\"\n"
	require.Equal(t, expected, buf.String())
}
