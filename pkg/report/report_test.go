package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWritePreviewSortsByStudent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preview.csv")
	rows := []GradePreviewRow{
		{StudentID: 2, StudentName: "Grace", OldQuestion: 0, NewQuestion: 5, OldTotal: 70, NewTotal: 75, Correct: 2, Misclassified: 0},
		{StudentID: 1, StudentName: "Ada", OldQuestion: 10, NewQuestion: 8.75, OldTotal: 90, NewTotal: 88.75, Correct: 4, Misclassified: 1},
	}
	require.NoError(t, WritePreview(rows, path))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "student_id,student,old_question_grade,new_question_grade,old_total_grade,new_total_grade,correct,misclassified", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "1,Ada,"))
	assert.True(t, strings.HasPrefix(lines[2], "2,Grace,"))

	// Input order is untouched.
	assert.Equal(t, "Grace", rows[0].StudentName)
}

func TestWriteCsvSummary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.csv")
	rows := []SessionSummaryRow{{
		Course: "Intro to Databases", Quiz: "Quiz 3", Question: "Normalization",
		Total: 30, Graded: 27, Skipped: 2, Failed: 1, AvgScore: 7.4,
	}}
	require.NoError(t, WriteCsv(rows, path))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(b)
	assert.Contains(t, content, "course,quiz,question,total,graded,skipped,failed,avg_score")
	assert.Contains(t, content, "Intro to Databases,Quiz 3,Normalization,30,27,2,1,7.4")
}
