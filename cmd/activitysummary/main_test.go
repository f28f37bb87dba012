package main

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleLog = `{"session_id":"s1","user":"ana","timestamp":"2024-03-01T10:00:00Z","event":"commit","table":"todo","application":7,"item":"a","column":"status","old":"Not started","new":"Done"}
{"session_id":"s1","user":"ana","timestamp":"2024-03-01T10:05:00Z","event":"commit","table":"todo","application":7,"item":"a","column":"status","old":"Done","new":"In progress"}
not json
{"session_id":"s1","user":"ana","timestamp":"2024-03-01T10:06:00Z","event":"add","table":"todo","application":3,"item":"b","column":"task","old":"","new":"Call"}
{"session_id":"s2","timestamp":"2024-03-02T09:00:00Z","event":"commit","table":"applications","application":3,"column":"stage","old":"","new":"Offer"}
{"session_id":"s2","timestamp":"2024-03-02T09:01:00Z","event":"delete","table":"todo","application":3,"item":"b","column":"task","old":"Call","new":""}
`

func TestSummarize(t *testing.T) {
	rep, err := summarize(strings.NewReader(sampleLog), filter{})
	require.NoError(t, err)

	assert.Equal(t, 5, rep.Events)
	assert.Equal(t, 1, rep.Skipped)
	require.Len(t, rep.Sessions, 2)

	s1 := rep.Sessions[0]
	assert.Equal(t, "s1", s1.SessionID)
	assert.Equal(t, 2, s1.Commits)
	assert.Equal(t, 1, s1.Adds)
	assert.Equal(t, []columnCount{{Column: "status", Commits: 2}}, s1.Columns)
	assert.Equal(t, 6*time.Minute, s1.End.Sub(s1.Start))

	s2 := rep.Sessions[1]
	assert.Equal(t, 1, s2.Deletes)
	assert.Equal(t, 1, s2.Commits)

	assert.Equal(t, []applicationCount{{Application: 3, Events: 3}, {Application: 7, Events: 2}}, rep.Applications)
}

func TestSummarizeFilters(t *testing.T) {
	since := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	rep, err := summarize(strings.NewReader(sampleLog), filter{since: since})
	require.NoError(t, err)
	assert.Equal(t, 2, rep.Events)
	require.NotNil(t, rep.Since)

	rep, err = summarize(strings.NewReader(sampleLog), filter{table: "applications"})
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Events)
	require.Len(t, rep.Sessions, 1)
	assert.Equal(t, "s2", rep.Sessions[0].SessionID)
}
