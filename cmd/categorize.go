package cmd

import (
	"fmt"
	"time"

	"github.com/canvasops/canvasctl/pkg/canvas"
	"github.com/canvasops/canvasctl/pkg/grader"
	"github.com/canvasops/canvasctl/pkg/report"
	"github.com/spf13/cobra"
)

var categorizeCSV bool

var categorizeCmd = &cobra.Command{
	Use:   "categorization",
	Short: "Regrade a New Quizzes categorization question with partial credit",
	Long: `Canvas scores categorization questions all-or-nothing. This command
rebuilds the grade with partial credit: each correctly placed item earns a
share of the points and each misclassified item costs half a share. It pulls
a student_analysis report for the quiz, previews every change, and posts the
adjusted total grades on confirmation.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

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
		var questions []*grader.CategorizationQuestion
		// Report rows identify responses positionally, not by item id, so the
		// index among categorization items is recorded alongside each key.
		positions := make(map[string]int)
		for _, item := range items {
			if q, ok := grader.ParseCategorizationItem(item); ok {
				positions[q.ItemID] = len(questions)
				questions = append(questions, q)
			}
		}
		if len(questions) == 0 {
			return fmt.Errorf("no categorization questions in %s", quiz.Name)
		}
		fmt.Println("\nCategorization questions:")
		for i, q := range questions {
			fmt.Printf("%d. %s (%g pts, %d items, %d distractors)\n",
				i+1, q.Title, q.PointsPossible, len(q.CorrectAnswers), len(q.Distractors))
		}
		xi, ok := chooseIndex("Select a question", len(questions))
		if !ok {
			return nil
		}
		question := questions[xi]
		position := positions[question.ItemID]

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

		var preview []report.GradePreviewRow
		for _, row := range rows {
			resp, ok := itemResponse(row, question.ItemID, "categorization", position)
			if !ok {
				log.Debugf("no categorization response for %s", row.StudentData.Name)
				continue
			}
			placements := grader.ParsePlacements(resp.Answer)
			newScore, correct, misclassified := grader.ScorePlacements(question, placements)
			if newScore == resp.Score {
				continue
			}
			preview = append(preview, report.GradePreviewRow{
				StudentID:     row.StudentData.ID,
				StudentName:   row.StudentData.Name,
				OldQuestion:   resp.Score,
				NewQuestion:   newScore,
				OldTotal:      row.Summary.Score,
				NewTotal:      row.Summary.Score - resp.Score + newScore,
				Correct:       correct,
				Misclassified: misclassified,
			})
		}
		if len(preview) == 0 {
			fmt.Println("No grades would change; nothing to do.")
			return nil
		}

		fmt.Printf("\n%-25s %15s %15s\n", "Student", "Question", "Total")
		for _, p := range preview {
			fmt.Printf("%-25s %6.2f -> %5.2f %6.2f -> %5.2f\n",
				p.StudentName, p.OldQuestion, p.NewQuestion, p.OldTotal, p.NewTotal)
		}
		fmt.Printf("\n%d students would be regraded.\n", len(preview))

		if categorizeCSV {
			name := fmt.Sprintf("categorization_regrade_%d_%d.csv", course.ID, quiz.ID)
			if err := report.WritePreview(preview, name); err != nil {
				return err
			}
			log.Infof("preview saved to %s", name)
		}

		if !confirm("Post the adjusted total grades?") {
			fmt.Println("Aborted; no grades were changed.")
			return nil
		}

		posted, failed := 0, 0
		for _, p := range preview {
			comment := fmt.Sprintf(
				"Partial credit applied to %q: %d correct, %d misclassified (%.2f/%.2f points).",
				question.Title, p.Correct, p.Misclassified, p.NewQuestion, question.PointsPossible)
			err := client.UpdateSubmissionGrade(ctx, course.ID, quiz.ID, p.StudentID, p.NewTotal, comment)
			if err != nil {
				log.Errorw("failed to update grade", "student", p.StudentName, "err", err)
				failed++
				continue
			}
			log.Infof("updated %s: %.2f -> %.2f", p.StudentName, p.OldTotal, p.NewTotal)
			posted++
		}
		fmt.Printf("\nDone: %d updated, %d failed.\n", posted, failed)
		return nil
	},
}

// itemResponse finds the student's response to the chosen question. Item ids
// match when the tenant reports them; otherwise fall back to the question's
// position among the row's responses of the same type.
func itemResponse(row canvas.StudentAnalysisRow, itemID, itemType string, position int) (canvas.ItemResponse, bool) {
	var sameType []canvas.ItemResponse
	for _, resp := range row.ItemResponses {
		if resp.ItemID == itemID {
			return resp, true
		}
		if resp.ItemType == itemType {
			sameType = append(sameType, resp)
		}
	}
	if position < len(sameType) {
		return sameType[position], true
	}
	return canvas.ItemResponse{}, false
}

func init() {
	gradeCmd.AddCommand(categorizeCmd)

	categorizeCmd.Flags().BoolVar(&categorizeCSV, "csv", false, "Save the regrade preview to CSV")
}
