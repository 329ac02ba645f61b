package grader

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"
)

// Session kinds decide how a reviewed grade is posted back to Canvas.
const (
	// KindQuizQuestion posts a per-question score on a classic quiz
	// submission. Sessions without a kind are read as this for
	// compatibility with earlier checkpoint files.
	KindQuizQuestion = "quiz_question"
	// KindAssignment posts the grade directly on a text-entry assignment
	// submission.
	KindAssignment = "assignment"
	// KindNewQuizEssay posts a recomputed total grade on the New Quiz
	// assignment: old total minus the old question score plus the new one.
	KindNewQuizEssay = "new_quiz_essay"
)

// Session is the on-disk checkpoint between collecting AI grades and
// reviewing them. Reviewed submissions are removed as they are posted, so a
// partially reviewed file resumes where it left off.
type Session struct {
	Timestamp   string             `json:"timestamp"`
	Kind        string             `json:"kind,omitempty"`
	Course      SessionCourse      `json:"course"`
	Quiz        SessionQuiz        `json:"quiz"`
	Question    SessionQuestion    `json:"question"`
	Guidelines  string             `json:"grading_guidelines"`
	Submissions []GradedSubmission `json:"submissions"`
}

type SessionCourse struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	CourseCode string `json:"course_code"`
}

type SessionQuiz struct {
	AssignmentID int    `json:"id"`      // assignment id, used for SpeedGrader links
	QuizID       int    `json:"quiz_id"` // classic quiz id
	Name         string `json:"name"`
}

type SessionQuestion struct {
	ID             int     `json:"id,omitempty"`      // classic quiz question id
	ItemID         string  `json:"item_id,omitempty"` // New Quiz item id
	Name           string  `json:"question_name"`
	Text           string  `json:"question_text"`
	PointsPossible float64 `json:"points_possible"`
}

type GradedSubmission struct {
	UserID       int    `json:"user_id"`
	UserName     string `json:"user_name"`
	SubmissionID int    `json:"submission_id,omitempty"`
	Attempt      int    `json:"attempt,omitempty"`
	Answer       string `json:"answer"`
	// Prior grades, carried for kinds that post a recomputed total.
	OldQuestionGrade float64 `json:"old_question_grade,omitempty"`
	OldTotalGrade    float64 `json:"old_total_grade,omitempty"`
	AIScore          float64 `json:"ai_score"`
	AIFeedback       string  `json:"ai_feedback"`
}

// PostKind returns the session's kind, defaulting to KindQuizQuestion for
// checkpoint files written before kinds existed.
func (s *Session) PostKind() string {
	if s.Kind == "" {
		return KindQuizQuestion
	}
	return s.Kind
}

// SessionFilename names a new checkpoint after its course, quiz and question.
func SessionFilename(courseID, quizID, questionID int, now time.Time) string {
	return fmt.Sprintf("grading_session_%d_%d_%d_%s.json", courseID, quizID, questionID, now.Format("20060102_150405"))
}

func LoadSession(path string) (*Session, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s Session
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("bad grading session %s: %w", path, err)
	}
	return &s, nil
}

func (s *Session) Save(path string) error {
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// Backup copies the session file aside before a review run mutates it.
func Backup(path string, now time.Time) (string, error) {
	src, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer src.Close()

	backupPath := fmt.Sprintf("%s.backup_%s", path, now.Format("20060102_150405"))
	dst, err := os.Create(backupPath)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return "", err
	}
	return backupPath, dst.Close()
}
