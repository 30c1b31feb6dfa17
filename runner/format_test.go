package runner

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDotsFormatter_Format(t *testing.T) {
	var buf bytes.Buffer

	f := NewDotsFormatter(&buf)

	_ = f.Format(Event{Action: ActionRun}, nil)
	_ = f.Format(Event{Action: ActionOutput, Output: "typed ..."}, nil)

	if buf.Len() != 0 {
		t.Error("Non-terminal should produce no output")
	}

	_ = f.Format(Event{Action: ActionPass}, nil)
	_ = f.Format(Event{Action: ActionFail}, nil)
	_ = f.Format(Event{Action: ActionReject}, nil)

	if got := buf.String(); got != ".FR" {
		t.Errorf("got %q, want %q", got, ".FR")
	}
}

func TestDotsFormatter_Summary(t *testing.T) {
	var buf bytes.Buffer

	f := NewDotsFormatter(&buf)

	result := NewResult()
	result.Add(Event{Action: ActionPass, File: "q.csv", Line: 2})
	result.Add(Event{
		Action:    ActionFail,
		File:      "q.csv",
		Line:      3,
		Statement: "(a:A)-->(b:B)",
		Expected:  "(a:A)<--(b:B)",
		Actual:    "(a:A)-->(b:B)",
	})
	result.Add(Event{
		Action:   ActionReject,
		File:     "q.csv",
		Line:     4,
		Expected: "(a:A)-->(b:B)",
		Error:    errors.New("no schema match"),
	})
	result.Finish()

	_ = f.Summary(result)

	got := buf.String()

	for _, want := range []string{
		"FAIL q.csv:3",
		"expected:  (a:A)<--(b:B)",
		"actual:    (a:A)-->(b:B)",
		"REJECT q.csv:4",
		"error:     no schema match",
		"FAIL 3 cases, 1 passed, 1 failed, 1 rejected",
	} {
		assert.Contains(t, got, want)
	}
}

func TestVerboseFormatter_Format(t *testing.T) {
	var buf bytes.Buffer

	f := NewVerboseFormatter(&buf)

	_ = f.Format(Event{Action: ActionRun, File: "q.csv", Line: 2}, nil)

	if got, want := buf.String(), "=== RUN    q.csv:2\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	buf.Reset()

	_ = f.Format(Event{Action: ActionPass, File: "q.csv", Line: 2, Elapsed: 10 * time.Millisecond}, nil)

	if got, want := buf.String(), "--- PASS:   q.csv:2 (10ms)\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	buf.Reset()

	_ = f.Format(Event{Action: ActionFail, File: "q.csv", Line: 2, Expected: "x", Actual: "y"}, nil)

	want := `--- FAIL:   q.csv:2 (0s)
        expected: x
        actual:   y
`
	if got := buf.String(); got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}

	buf.Reset()

	_ = f.Format(Event{Action: ActionOutput, File: "q.csv", Line: 2, Output: "short (a)-->(b) at 0: unconstrained"}, nil)

	if got, want := buf.String(), "    short (a)-->(b) at 0: unconstrained\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestJSONFormatter_Format(t *testing.T) {
	var buf bytes.Buffer

	f := NewJSONFormatter(&buf)

	fixedTime := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

	_ = f.Format(Event{
		Time:     fixedTime,
		Action:   ActionReject,
		File:     "data/q.csv",
		Line:     7,
		Elapsed:  50 * time.Millisecond,
		Expected: "(a)-->(b)",
		Error:    errors.New("boom"),
	}, nil)

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))

	assert.Equal(t, "rejected", got["action"])
	assert.Equal(t, "data/q.csv:7", got["case"])
	assert.Equal(t, "boom", got["error"])
	assert.Equal(t, "(a)-->(b)", got["expected"])
	assert.Equal(t, "", got["actual"], "empty answers are still reported")
	assert.InDelta(t, 0.05, got["elapsed"], 1e-9)
}

func TestJSONFormatter_Summary(t *testing.T) {
	var buf bytes.Buffer

	f := NewJSONFormatter(&buf)

	result := NewResult()
	result.Add(Event{Action: ActionPass, File: "q.csv", Line: 2})
	result.Add(Event{Action: ActionReject, File: "q.csv", Line: 3})
	result.Finish()

	_ = f.Summary(result)

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))

	assert.Equal(t, "summary", got["action"])
	assert.InDelta(t, 2, got["total"], 0)
	assert.InDelta(t, 1, got["rejected"], 0)
	assert.Equal(t, false, got["ok"])
}

func TestPrettyFormatter(t *testing.T) {
	var buf bytes.Buffer

	f := NewPrettyFormatter(&buf)

	_ = f.Format(Event{Action: ActionRun, File: "q.csv", Line: 2}, nil)
	_ = f.Format(Event{Action: ActionPass, File: "q.csv", Line: 2}, nil)
	_ = f.Format(Event{Action: ActionFail, File: "q.csv", Line: 3}, nil)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "✓ q.csv:2"), lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "✗ q.csv:3"), lines[1])

	buf.Reset()

	result := NewResult()
	result.Add(Event{Action: ActionPass, File: "q.csv", Line: 2})
	result.Add(Event{Action: ActionFail, File: "q.csv", Line: 3, Expected: "want", Actual: "got"})
	result.AddOutput(Event{Action: ActionOutput, File: "q.csv", Line: 3, Output: "typed (a)-[:R]->(b) at 0: consistent"})
	result.Finish()

	_ = f.Summary(result)

	got := buf.String()
	assert.Contains(t, got, "FAIL q.csv:3")
	assert.Contains(t, got, "actual    got")
	assert.Contains(t, got, "typed (a)-[:R]->(b) at 0: consistent")
	assert.Contains(t, got, "1 passed │ 1 failed (2 total)")
	assert.NotContains(t, got, "\x1b[", "colors are dropped for non-terminals")
}

func TestNewFormatter(t *testing.T) {
	var buf bytes.Buffer

	for _, name := range []string{"", FormatDots, FormatVerbose, FormatJSON, FormatPretty} {
		f, err := NewFormatter(name, &buf)
		require.NoError(t, err, name)
		assert.NotNil(t, f, name)
	}

	_, err := NewFormatter(FormatTUI, &buf)
	require.ErrorIs(t, err, ErrUnknownFormat)

	_, err = NewFormatter("xml", &buf)
	require.ErrorIs(t, err, ErrUnknownFormat)
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{500 * time.Microsecond, "<1ms"},
		{42 * time.Millisecond, "42ms"},
		{1500 * time.Millisecond, "1.5s"},
		{90 * time.Second, "1m30s"},
	}

	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%s) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
