package cmd

import (
	"fmt"
	"time"

	"github.com/canvasops/canvasctl/pkg/grader"
	"github.com/canvasops/canvasctl/pkg/htmltext"
	"github.com/spf13/cobra"
)

var newQuizEssaysCmd = &cobra.Command{
	Use:   "new-quiz-essays",
	Short: "Grade a New Quizzes essay question with Gemini",
	Long: `Interactively picks a course, a New Quiz and one of its essay questions,
pulls the student_analysis report for the quiz, grades every answer with
Gemini under your guidelines, and checkpoints the results to a grading
session JSON file. Review and post with "canvasctl grade review"; because
New Quizzes expose no per-question score endpoint, posting updates each
student's total grade by the difference between the old and new question
scores.`,
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

		quizzes, err := client.NewQuizAssignments(ctx, course.ID)
		if err != nil {
			return err
		}
		if len(quizzes) == 0 {
			return fmt.Errorf("no New Quizzes in %s", course.Name)
		}
		fmt.Println("\nNew Quizzes:")
		for i, q := range quizzes {
			fmt.Printf("%d. %s (%g pts)\n", i+1, q.Name, q.PointsPossible)
		}
		qi, ok := chooseIndex("Select a quiz", len(quizzes))
		if !ok {
			return nil
		}
		quiz := quizzes[qi]

		items, err := client.QuizItems(ctx, course.ID, quiz.ID)
		if err != nil {
			return err
		}
		var questions []*grader.EssayItem
		// Report rows identify responses positionally when item ids are
		// missing, so the index among essay items rides along.
		positions := make(map[string]int)
		for _, item := range items {
			if q, ok := grader.ParseEssayItem(item); ok {
				positions[q.ItemID] = len(questions)
				questions = append(questions, q)
			}
		}
		if len(questions) == 0 {
			return fmt.Errorf("no essay questions in %s", quiz.Name)
		}
		fmt.Println("\nEssay questions:")
		for i, q := range questions {
			fmt.Printf("%d. %s (%g pts)\n", i+1, q.Title, q.PointsPossible)
		}
		xi, ok := chooseIndex("Select a question", len(questions))
		if !ok {
			return nil
		}
		question := questions[xi]
		position := positions[question.ItemID]

		guidelines, ok := readGuidelines()
		if !ok {
			fmt.Println("Aborted.")
			return nil
		}

		fmt.Printf("\nCourse:   %s\nQuiz:     %s\nQuestion: %s (%g pts)\n",
			course.Name, quiz.Name, question.Title, question.PointsPossible)
		if !confirm("Proceed with automated grading?") {
			fmt.Println("Aborted.")
			return nil
		}

		log.Info("requesting student analysis report")
		progressURL, err := client.CreateStudentAnalysis(ctx, course.ID, quiz.ID)
		if err != nil {
			return err
		}
		prog, err := client.PollProgress(ctx, progressURL, 2*time.Second, 15*time.Minute)
		if err != nil {
			return err
		}
		downloadURL, err := client.ResolveDownloadURL(ctx, prog)
		if err != nil {
			return err
		}
		rows, err := client.DownloadStudentAnalysis(ctx, downloadURL)
		if err != nil {
			return err
		}
		log.Infof("report has %d students", len(rows))

		var pending []grader.Pending
		skipped := 0
		for _, row := range rows {
			resp, ok := itemResponse(row, question.ItemID, "essay", position)
			if !ok {
				log.Debugf("no essay response for %s", row.StudentData.Name)
				skipped++
				continue
			}
			answer := htmltext.Strip(resp.Answer)
			if answer == "" {
				log.Debugf("skipped (empty answer): %s", row.StudentData.Name)
				skipped++
				continue
			}
			pending = append(pending, grader.Pending{
				UserID:           row.StudentData.ID,
				UserName:         row.StudentData.Name,
				Answer:           answer,
				OldQuestionGrade: resp.Score,
				OldTotalGrade:    row.Summary.Score,
			})
		}
		if len(pending) == 0 {
			return fmt.Errorf("no essay answers to grade")
		}

		log.Infof("grading %d answers, up to 5 in parallel", len(pending))
		failed := 0
		questionText := htmltext.Strip(question.Body)
		graded := essays.GradeAll(ctx, pending, questionText, question.PointsPossible, guidelines,
			func(p grader.Pending, r *grader.Result, err error) {
				if err != nil {
					log.Errorw("grading failed", "student", p.UserName, "err", err)
					failed++
					return
				}
				log.Infof("graded %s (%g/%g)", p.UserName, r.Score, question.PointsPossible)
			})

		session := &grader.Session{
			Timestamp: time.Now().Format(time.RFC3339),
			Kind:      grader.KindNewQuizEssay,
			Course: grader.SessionCourse{
				ID:         course.ID,
				Name:       course.Name,
				CourseCode: course.CourseCode,
			},
			Quiz: grader.SessionQuiz{
				AssignmentID: quiz.ID,
				Name:         quiz.Name,
			},
			Question: grader.SessionQuestion{
				ItemID:         question.ItemID,
				Name:           question.Title,
				Text:           question.Body,
				PointsPossible: question.PointsPossible,
			},
			Guidelines:  guidelines,
			Submissions: graded,
		}
		path := fmt.Sprintf("essays_%d_%s.json", course.ID, time.Now().Format("20060102_150405"))
		if err := session.Save(path); err != nil {
			return err
		}
		log.Infof("saved %d graded answers to %s", len(graded), path)
		fmt.Printf("\nReview and post with: canvasctl grade review %s\n", path)

		printGradeSummary(course, quiz, graded, skipped, failed)
		return nil
	},
}

func init() {
	gradeCmd.AddCommand(newQuizEssaysCmd)
}
