// Package report writes grading results to CSV for record keeping.
package report

import (
	"os"
	"sort"

	"github.com/gocarina/gocsv"
)

// GradePreviewRow is one student of a categorization regrade preview.
type GradePreviewRow struct {
	StudentID     int     `csv:"student_id"`
	StudentName   string  `csv:"student"`
	OldQuestion   float64 `csv:"old_question_grade"`
	NewQuestion   float64 `csv:"new_question_grade"`
	OldTotal      float64 `csv:"old_total_grade"`
	NewTotal      float64 `csv:"new_total_grade"`
	Correct       int     `csv:"correct"`
	Misclassified int     `csv:"misclassified"`
}

// SessionSummaryRow is the one-line record of an essay grading run.
type SessionSummaryRow struct {
	Course   string  `csv:"course"`
	Quiz     string  `csv:"quiz"`
	Question string  `csv:"question"`
	Total    int     `csv:"total"`
	Graded   int     `csv:"graded"`
	Skipped  int     `csv:"skipped"`
	Failed   int     `csv:"failed"`
	AvgScore float64 `csv:"avg_score"`
}

// WritePreview saves preview rows sorted by student name.
func WritePreview(rows []GradePreviewRow, fileName string) error {
	sorted := make([]GradePreviewRow, len(rows))
	copy(sorted, rows)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].StudentName < sorted[j].StudentName
	})
	return WriteCsv(sorted, fileName)
}

func WriteCsv(in interface{}, fileName string) error {
	file, err := os.Create(fileName)
	if err != nil {
		return err
	}
	if err := gocsv.Marshal(in, file); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}
