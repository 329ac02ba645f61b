package grader

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSession() *Session {
	return &Session{
		Timestamp: "2026-03-01T10:00:00Z",
		Course:    SessionCourse{ID: 101, Name: "Intro to Databases", CourseCode: "COP3703"},
		Quiz:      SessionQuiz{AssignmentID: 555, QuizID: 202, Name: "Quiz 3"},
		Question: SessionQuestion{
			ID: 303, Name: "Normalization", Text: "<p>Explain 3NF.</p>", PointsPossible: 10,
		},
		Guidelines: "Full credit requires an example.",
		Submissions: []GradedSubmission{
			{UserID: 1, UserName: "Ada", SubmissionID: 9, Attempt: 1, Answer: "...", AIScore: 8, AIFeedback: "Good."},
			{UserID: 2, UserName: "Grace", SubmissionID: 10, Attempt: 2, Answer: "...", AIScore: 5.5, AIFeedback: "Missing example."},
		},
	}
}

func TestSessionRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, sampleSession().Save(path))

	got, err := LoadSession(path)
	require.NoError(t, err)
	assert.Equal(t, sampleSession(), got)
}

func TestLoadSessionBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))

	_, err := LoadSession(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad grading session")
}

func TestSessionFilename(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 30, 15, 0, time.UTC)
	assert.Equal(t, "grading_session_101_202_303_20260301_093015.json", SessionFilename(101, 202, 303, now))
}

func TestBackupCopiesSession(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "session.json")
	require.NoError(t, sampleSession().Save(path))

	now := time.Date(2026, 3, 1, 9, 30, 15, 0, time.UTC)
	backupPath, err := Backup(path, now)
	require.NoError(t, err)
	assert.Equal(t, path+".backup_20260301_093015", backupPath)

	original, err := os.ReadFile(path)
	require.NoError(t, err)
	backup, err := os.ReadFile(backupPath)
	require.NoError(t, err)
	assert.Equal(t, original, backup)
}
