package cmd

import (
	"fmt"
	"time"

	"github.com/canvasops/canvasctl/pkg/grader"
	"github.com/canvasops/canvasctl/pkg/htmltext"
	"github.com/spf13/cobra"
)

var gradeAssignmentsCmd = &cobra.Command{
	Use:   "assignments",
	Short: "Grade text-entry assignment submissions with Gemini",
	Long: `Interactively picks a course and a text-entry assignment, grades every
submitted text with Gemini under your guidelines, and checkpoints the results
to a grading session JSON file. Review and post the grades with
"canvasctl grade review"; posting writes each grade and feedback comment
straight onto the assignment submission.`,
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

		assignments, err := client.TextEntryAssignments(ctx, course.ID)
		if err != nil {
			return err
		}
		if len(assignments) == 0 {
			return fmt.Errorf("no text-entry assignments in %s", course.Name)
		}
		fmt.Println("\nText-entry assignments:")
		for i, a := range assignments {
			due := a.DueAt
			if due == "" {
				due = "no due date"
			}
			fmt.Printf("%d. %s (%g pts, due %s)\n", i+1, a.Name, a.PointsPossible, due)
		}
		ai, ok := chooseIndex("Select an assignment", len(assignments))
		if !ok {
			return nil
		}
		assignment := assignments[ai]

		guidelines, ok := readGuidelines()
		if !ok {
			fmt.Println("Aborted.")
			return nil
		}

		fmt.Printf("\nCourse:     %s\nAssignment: %s (%g pts)\n",
			course.Name, assignment.Name, assignment.PointsPossible)
		if !confirm("Proceed with automated grading?") {
			fmt.Println("Aborted.")
			return nil
		}

		submissions, err := client.AssignmentSubmissions(ctx, course.ID, assignment.ID)
		if err != nil {
			return err
		}

		var pending []grader.Pending
		skipped := 0
		for _, sub := range submissions {
			if sub.SubmissionType != "online_text_entry" {
				continue
			}
			text := htmltext.Strip(sub.Body)
			if text == "" {
				log.Debugf("skipped (empty submission): %s", sub.StudentName())
				skipped++
				continue
			}
			pending = append(pending, grader.Pending{
				UserID:        sub.UserID,
				UserName:      sub.StudentName(),
				Answer:        text,
				OldTotalGrade: sub.Score,
			})
		}
		if len(pending) == 0 {
			return fmt.Errorf("no text submissions to grade")
		}

		log.Infof("grading %d submissions, up to 5 in parallel", len(pending))
		failed := 0
		graded := essays.GradeAll(ctx, pending, assignment.Name, assignment.PointsPossible, guidelines,
			func(p grader.Pending, r *grader.Result, err error) {
				if err != nil {
					log.Errorw("grading failed", "student", p.UserName, "err", err)
					failed++
					return
				}
				log.Infof("graded %s (%g/%g)", p.UserName, r.Score, assignment.PointsPossible)
			})

		session := &grader.Session{
			Timestamp: time.Now().Format(time.RFC3339),
			Kind:      grader.KindAssignment,
			Course: grader.SessionCourse{
				ID:         course.ID,
				Name:       course.Name,
				CourseCode: course.CourseCode,
			},
			Quiz: grader.SessionQuiz{
				AssignmentID: assignment.ID,
				Name:         assignment.Name,
			},
			Question: grader.SessionQuestion{
				Name:           assignment.Name,
				PointsPossible: assignment.PointsPossible,
			},
			Guidelines:  guidelines,
			Submissions: graded,
		}
		path := fmt.Sprintf("text_entries_%d_%s.json", course.ID, time.Now().Format("20060102_150405"))
		if err := session.Save(path); err != nil {
			return err
		}
		log.Infof("saved %d graded submissions to %s", len(graded), path)
		fmt.Printf("\nReview and post with: canvasctl grade review %s\n", path)

		printGradeSummary(course, assignment, graded, skipped, failed)
		return nil
	},
}

func init() {
	gradeCmd.AddCommand(gradeAssignmentsCmd)
}
