package cmd

import (
	"fmt"
	"time"

	"github.com/canvasops/canvasctl/pkg/canvas"
	"github.com/canvasops/canvasctl/pkg/grader"
	"github.com/canvasops/canvasctl/pkg/htmltext"
	"github.com/canvasops/canvasctl/pkg/report"
	"github.com/spf13/cobra"
)

var (
	gradePost bool
	gradeCSV  bool
)

var gradeCmd = &cobra.Command{
	Use:   "grade",
	Short: "AI-assisted grading workflows",
}

var gradeEssaysCmd = &cobra.Command{
	Use:   "essays",
	Short: "Grade a classic quiz essay question with Gemini",
	Long: `Interactively picks a course, quiz and essay question, grades every
completed submission with Gemini under your guidelines, and checkpoints the
results to a grading session JSON file for later review with
"canvasctl grade review". With --post, quiz results are hidden and the AI
grades are posted straight to Canvas instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		essays, err := grader.NewEssayGrader(ctx, cfg.GeminiAPIKey, cfg.Model)
		if err != nil {
			return err
		}

		course, ok, err := chooseCourse(ctx)
		if err != nil || !ok {
			return err
		}

		quizzes, err := client.QuizAssignments(ctx, course.ID)
		if err != nil {
			return err
		}
		if len(quizzes) == 0 {
			return fmt.Errorf("no quiz assignments in %s", course.Name)
		}
		fmt.Println("\nQuiz assignments:")
		for i, q := range quizzes {
			fmt.Printf("%d. %s (quiz %d)\n", i+1, q.Name, q.QuizID)
		}
		qi, ok := chooseIndex("Select a quiz", len(quizzes))
		if !ok {
			return nil
		}
		quiz := quizzes[qi]

		questions, err := client.EssayQuestions(ctx, course.ID, quiz.QuizID)
		if err != nil {
			return err
		}
		if len(questions) == 0 {
			return fmt.Errorf("no essay questions in %s", quiz.Name)
		}
		fmt.Println("\nEssay questions:")
		for i, q := range questions {
			fmt.Printf("%d. %s (%g pts)\n", i+1, q.QuestionName, q.PointsPossible)
			fmt.Printf("    %s\n", htmltext.Truncate(htmltext.Strip(q.QuestionText), 100))
		}
		xi, ok := chooseIndex("Select a question", len(questions))
		if !ok {
			return nil
		}
		question := questions[xi]

		guidelines, ok := readGuidelines()
		if !ok {
			fmt.Println("Aborted.")
			return nil
		}

		fmt.Printf("\nCourse:   %s\nQuiz:     %s\nQuestion: %s (%g pts)\n",
			course.Name, quiz.Name, question.QuestionName, question.PointsPossible)
		if !confirm("Proceed with automated grading?") {
			fmt.Println("Aborted.")
			return nil
		}

		submissions, err := client.CompletedQuizSubmissions(ctx, course.ID, quiz.QuizID)
		if err != nil {
			return err
		}
		if len(submissions) == 0 {
			return fmt.Errorf("no completed submissions found")
		}
		log.Infof("found %d completed submissions", len(submissions))

		var pending []grader.Pending
		skipped := 0
		for _, sub := range submissions {
			answers, err := client.SubmissionAnswers(ctx, sub.ID)
			if err != nil {
				log.Errorw("failed to fetch answers", "student", sub.StudentName(), "err", err)
				skipped++
				continue
			}
			answer := ""
			for _, a := range answers {
				if a.ID == question.ID {
					answer = a.Answer
					break
				}
			}
			if answer == "" {
				log.Debugf("skipped (no answer): %s", sub.StudentName())
				skipped++
				continue
			}
			pending = append(pending, grader.Pending{
				UserID:       sub.UserID,
				UserName:     sub.StudentName(),
				SubmissionID: sub.ID,
				Attempt:      sub.Attempt,
				Answer:       answer,
			})
		}
		if len(pending) == 0 {
			return fmt.Errorf("no answers to grade")
		}

		if gradePost {
			// Nothing reaches students until the instructor unhides results.
			if err := client.HideQuizResults(ctx, course.ID, quiz.QuizID); err != nil {
				log.Warnw("could not hide quiz results", "err", err)
			}
		}

		log.Infof("grading %d submissions, up to 5 in parallel", len(pending))
		failed := 0
		graded := essays.GradeAll(ctx, pending, question.QuestionText, question.PointsPossible, guidelines,
			func(p grader.Pending, r *grader.Result, err error) {
				if err != nil {
					log.Errorw("grading failed", "student", p.UserName, "err", err)
					failed++
					return
				}
				log.Infof("graded %s (%g/%g)", p.UserName, r.Score, question.PointsPossible)
			})

		if gradePost {
			posted := 0
			for _, g := range graded {
				err := client.PostQuestionScore(ctx, course.ID, quiz.QuizID, g.SubmissionID, g.Attempt, question.ID, g.AIScore, g.AIFeedback)
				if err != nil {
					log.Errorw("failed to post grade", "student", g.UserName, "err", err)
					failed++
					continue
				}
				posted++
			}
			log.Infof("posted %d grades; review them in SpeedGrader before unhiding results", posted)
			fmt.Println("SpeedGrader:", client.SpeedGraderURL(course.ID, quiz.ID))
		} else {
			session := &grader.Session{
				Timestamp: time.Now().Format(time.RFC3339),
				Kind:      grader.KindQuizQuestion,
				Course: grader.SessionCourse{
					ID:         course.ID,
					Name:       course.Name,
					CourseCode: course.CourseCode,
				},
				Quiz: grader.SessionQuiz{
					AssignmentID: quiz.ID,
					QuizID:       quiz.QuizID,
					Name:         quiz.Name,
				},
				Question: grader.SessionQuestion{
					ID:             question.ID,
					Name:           question.QuestionName,
					Text:           question.QuestionText,
					PointsPossible: question.PointsPossible,
				},
				Guidelines:  guidelines,
				Submissions: graded,
			}
			path := grader.SessionFilename(course.ID, quiz.QuizID, question.ID, time.Now())
			if err := session.Save(path); err != nil {
				return err
			}
			log.Infof("saved %d graded submissions to %s", len(graded), path)
			fmt.Printf("\nReview and post with: canvasctl grade review %s\n", path)
		}

		printGradeSummary(course, quiz, graded, skipped, failed)

		if gradeCSV {
			row := summaryRow(course, quiz, question.QuestionName, len(submissions), graded, skipped, failed)
			name := fmt.Sprintf("quiz_grading_%s.csv", time.Now().Format("20060102_150405"))
			if err := report.WriteCsv([]report.SessionSummaryRow{row}, name); err != nil {
				return err
			}
			log.Infof("results saved to %s", name)
		}
		return nil
	},
}

func printGradeSummary(course canvas.Course, quiz canvas.Assignment, graded []grader.GradedSubmission, skipped, failed int) {
	fmt.Printf("\nGrading complete: %s / %s\n", course.Name, quiz.Name)
	fmt.Printf("  graded:  %d\n  skipped: %d\n  failed:  %d\n", len(graded), skipped, failed)
	if len(graded) > 0 {
		min, max, sum := graded[0].AIScore, graded[0].AIScore, 0.0
		for _, g := range graded {
			if g.AIScore < min {
				min = g.AIScore
			}
			if g.AIScore > max {
				max = g.AIScore
			}
			sum += g.AIScore
		}
		fmt.Printf("  scores:  avg %.2f, min %.2f, max %.2f\n", sum/float64(len(graded)), min, max)
	}
}

func summaryRow(course canvas.Course, quiz canvas.Assignment, question string, total int, graded []grader.GradedSubmission, skipped, failed int) report.SessionSummaryRow {
	avg := 0.0
	for _, g := range graded {
		avg += g.AIScore
	}
	if len(graded) > 0 {
		avg /= float64(len(graded))
	}
	return report.SessionSummaryRow{
		Course:   course.Name,
		Quiz:     quiz.Name,
		Question: question,
		Total:    total,
		Graded:   len(graded),
		Skipped:  skipped,
		Failed:   failed,
		AvgScore: avg,
	}
}

func init() {
	rootCmd.AddCommand(gradeCmd)
	gradeCmd.AddCommand(gradeEssaysCmd)

	gradeEssaysCmd.Flags().BoolVar(&gradePost, "post", false, "Hide quiz results and post AI grades immediately")
	gradeEssaysCmd.Flags().BoolVar(&gradeCSV, "csv", false, "Also write a one-line CSV summary of the run")
}
