// Package review drives the human pass over an AI grading session: each
// pending submission is shown and the instructor accepts the AI grade,
// overrides it, skips it, or quits. Posted submissions are removed from the
// session file immediately so an interrupted run resumes cleanly.
package review

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/canvasops/canvasctl/pkg/grader"
	"github.com/canvasops/canvasctl/pkg/htmltext"
)

// Poster posts reviewed grades back to Canvas. Classic quiz sessions use the
// per-question score endpoint; assignment and New Quiz sessions post through
// the submission grade endpoint.
type Poster interface {
	PostQuestionScore(ctx context.Context, courseID, quizID, submissionID, attempt, questionID int, score float64, comment string) error
	UpdateSubmissionGrade(ctx context.Context, courseID, assignmentID, userID int, grade float64, comment string) error
}

// Stats totals a review run.
type Stats struct {
	Validated  int
	Overridden int
	Skipped    int
	Failed     int
	Remaining  int
}

type Reviewer struct {
	poster Poster
	in     *bufio.Reader
	out    io.Writer
}

func New(poster Poster, in io.Reader, out io.Writer) *Reviewer {
	return &Reviewer{poster: poster, in: bufio.NewReader(in), out: out}
}

// Run reviews every pending submission in the session at path. The file is
// rewritten after each successful post; a timestamped backup is written once
// up front.
func (r *Reviewer) Run(ctx context.Context, path string) (*Stats, error) {
	session, err := grader.LoadSession(path)
	if err != nil {
		return nil, err
	}
	stats := &Stats{}
	if len(session.Submissions) == 0 {
		fmt.Fprintln(r.out, "All submissions have been processed; nothing to review.")
		return stats, nil
	}

	backupPath, err := grader.Backup(path, time.Now())
	if err != nil {
		return nil, fmt.Errorf("backup session: %w", err)
	}
	fmt.Fprintf(r.out, "Backup saved to %s\n", backupPath)
	r.printSummary(session)

	questionText := htmltext.Strip(session.Question.Text)
	points := session.Question.PointsPossible

	i := 0
	for i < len(session.Submissions) {
		sub := session.Submissions[i]
		r.printSubmission(sub, i, len(session.Submissions), questionText, points)
		if session.PostKind() == grader.KindNewQuizEssay {
			fmt.Fprintf(r.out, "Total:    %g -> %g\n",
				sub.OldTotalGrade, sub.OldTotalGrade-sub.OldQuestionGrade+sub.AIScore)
		}

		switch r.choice() {
		case "v":
			if r.post(ctx, session, sub, sub.AIScore, sub.AIFeedback) {
				fmt.Fprintf(r.out, "Posted: %s (%g/%g)\n", sub.UserName, sub.AIScore, points)
				stats.Validated++
				session.Submissions = append(session.Submissions[:i], session.Submissions[i+1:]...)
				if err := session.Save(path); err != nil {
					return stats, err
				}
			} else {
				stats.Failed++
				i++
			}
		case "o":
			score, feedback, ok := r.manualGrade(points)
			if !ok {
				fmt.Fprintln(r.out, "Manual override cancelled")
				i++
				continue
			}
			if r.post(ctx, session, sub, score, feedback) {
				fmt.Fprintf(r.out, "Posted: %s (%g/%g)\n", sub.UserName, score, points)
				stats.Overridden++
				session.Submissions = append(session.Submissions[:i], session.Submissions[i+1:]...)
				if err := session.Save(path); err != nil {
					return stats, err
				}
			} else {
				stats.Failed++
				i++
			}
		case "s":
			fmt.Fprintf(r.out, "Skipped: %s\n", sub.UserName)
			stats.Skipped++
			i++
		case "q":
			stats.Remaining = len(session.Submissions)
			fmt.Fprintf(r.out, "Progress saved to %s; run again to resume.\n", path)
			return stats, nil
		}
	}

	stats.Remaining = len(session.Submissions)
	return stats, nil
}

func (r *Reviewer) post(ctx context.Context, s *grader.Session, sub grader.GradedSubmission, score float64, feedback string) bool {
	var err error
	switch s.PostKind() {
	case grader.KindAssignment:
		err = r.poster.UpdateSubmissionGrade(ctx, s.Course.ID, s.Quiz.AssignmentID, sub.UserID, score, feedback)
	case grader.KindNewQuizEssay:
		// New Quizzes take no per-question score; post the adjusted total.
		total := sub.OldTotalGrade - sub.OldQuestionGrade + score
		err = r.poster.UpdateSubmissionGrade(ctx, s.Course.ID, s.Quiz.AssignmentID, sub.UserID, total, feedback)
	default:
		err = r.poster.PostQuestionScore(ctx, s.Course.ID, s.Quiz.QuizID, sub.SubmissionID, sub.Attempt, s.Question.ID, score, feedback)
	}
	if err != nil {
		fmt.Fprintf(r.out, "Failed to post grade: %v\n", err)
		return false
	}
	return true
}

func (r *Reviewer) printSummary(s *grader.Session) {
	fmt.Fprintln(r.out, strings.Repeat("=", 70))
	fmt.Fprintf(r.out, "Course:   %s\n", s.Course.Name)
	fmt.Fprintf(r.out, "Quiz:     %s\n", s.Quiz.Name)
	fmt.Fprintf(r.out, "Question: %s (%g pts)\n", s.Question.Name, s.Question.PointsPossible)
	fmt.Fprintf(r.out, "Pending submissions: %d\n", len(s.Submissions))
	fmt.Fprintln(r.out, strings.Repeat("=", 70))
}

func (r *Reviewer) printSubmission(sub grader.GradedSubmission, index, total int, questionText string, points float64) {
	fmt.Fprintf(r.out, "\n[%d/%d] %s\n", index+1, total, sub.UserName)
	fmt.Fprintln(r.out, strings.Repeat("-", 70))
	fmt.Fprintf(r.out, "Question: %s\n", htmltext.Truncate(questionText, 200))
	fmt.Fprintf(r.out, "Answer:   %s\n", htmltext.Truncate(htmltext.Strip(sub.Answer), 800))
	fmt.Fprintf(r.out, "AI score: %g/%g\n", sub.AIScore, points)
	fmt.Fprintf(r.out, "Feedback: %s\n", sub.AIFeedback)
}

func (r *Reviewer) choice() string {
	for {
		fmt.Fprintln(r.out, "\n  (v) Validate - post the AI grade")
		fmt.Fprintln(r.out, "  (o) Override - enter a manual grade and post it")
		fmt.Fprintln(r.out, "  (s) Skip - leave this one in the file")
		fmt.Fprintln(r.out, "  (q) Quit - save progress and exit")
		fmt.Fprint(r.out, "\nYour choice (v/o/s/q): ")
		line, err := r.in.ReadString('\n')
		if err != nil {
			return "q"
		}
		choice := strings.ToLower(strings.TrimSpace(line))
		switch choice {
		case "v", "o", "s", "q":
			return choice
		}
		fmt.Fprintln(r.out, "Please enter v, o, s, or q")
	}
}

func (r *Reviewer) manualGrade(points float64) (float64, string, bool) {
	var score float64
	for {
		fmt.Fprintf(r.out, "Enter score (0-%g, or blank to cancel): ", points)
		line, err := r.in.ReadString('\n')
		if err != nil {
			return 0, "", false
		}
		line = strings.TrimSpace(line)
		if line == "" {
			return 0, "", false
		}
		score, err = strconv.ParseFloat(line, 64)
		if err != nil || score < 0 || score > points {
			fmt.Fprintf(r.out, "Score must be a number between 0 and %g\n", points)
			continue
		}
		break
	}

	fmt.Fprintln(r.out, "Enter feedback (finish with an empty line):")
	var lines []string
	for {
		line, err := r.in.ReadString('\n')
		if err != nil {
			break
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		lines = append(lines, line)
	}
	feedback := strings.TrimSpace(strings.Join(lines, "\n"))
	if feedback == "" {
		fmt.Fprintln(r.out, "Feedback cannot be empty")
		return 0, "", false
	}
	return score, feedback, true
}
