package database

import (
	"io"
	"time"
)

// GradeRecord is one posted (or collected) AI grade, flattened for storage.
type GradeRecord struct {
	ID           uint64    `db:"id, primarykey, autoincrement" bigquery:"-"`
	CourseID     int       `db:"course_id" bigquery:"course_id"`
	CourseName   string    `db:"course_name" bigquery:"course_name"`
	QuizID       int       `db:"quiz_id" bigquery:"quiz_id"`
	QuizName     string    `db:"quiz_name" bigquery:"quiz_name"`
	QuestionID   int       `db:"question_id" bigquery:"question_id"`
	QuestionName string    `db:"question_name" bigquery:"question_name"`
	UserID       int       `db:"user_id" bigquery:"user_id"`
	UserName     string    `db:"user_name" bigquery:"user_name"`
	SubmissionID int       `db:"submission_id" bigquery:"submission_id"`
	Attempt      int       `db:"attempt" bigquery:"attempt"`
	Score        float64   `db:"score" bigquery:"score"`
	Feedback     string    `db:"feedback" bigquery:"feedback"`
	GradedAt     time.Time `db:"graded_at" bigquery:"graded_at"`
}

// Database archives grading runs.
type Database interface {
	io.Closer
	SaveGrades([]GradeRecord) error
}
