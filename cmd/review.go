package cmd

import (
	"fmt"
	"os"

	"github.com/canvasops/canvasctl/pkg/grader"
	"github.com/canvasops/canvasctl/pkg/review"
	"github.com/spf13/cobra"
)

var reviewCmd = &cobra.Command{
	Use:   "review <session.json>",
	Short: "Review an AI grading session and post grades",
	Long: `Walks through every pending submission in a grading session file. Each
AI grade can be validated, overridden with a manual score and feedback, or
skipped. Posted submissions are removed from the file as they go, so the
review resumes where it left off after an interruption.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		session, err := grader.LoadSession(path)
		if err != nil {
			return err
		}

		r := review.New(client, os.Stdin, os.Stdout)
		stats, err := r.Run(cmd.Context(), path)
		if err != nil {
			return err
		}

		fmt.Printf("\nReview complete:\n")
		fmt.Printf("  validated:  %d\n", stats.Validated)
		fmt.Printf("  overridden: %d\n", stats.Overridden)
		fmt.Printf("  skipped:    %d\n", stats.Skipped)
		fmt.Printf("  failed:     %d\n", stats.Failed)
		fmt.Printf("  remaining:  %d\n", stats.Remaining)

		if stats.Validated+stats.Overridden > 0 {
			fmt.Println("\nGrades were posted with results hidden. Verify in SpeedGrader,")
			fmt.Println("then unhide quiz results so students can see them:")
			fmt.Println("  " + client.SpeedGraderURL(session.Course.ID, session.Quiz.AssignmentID))
		}
		return nil
	},
}

func init() {
	gradeCmd.AddCommand(reviewCmd)
}
