package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var assignmentsCmd = &cobra.Command{
	Use:   "assignments",
	Short: "Bulk-edit assignments",
}

// assignmentsZeroCmd converts every assignment in a chosen assignment group
// to non-graded with zero points, after an explicit confirmation.
var assignmentsZeroCmd = &cobra.Command{
	Use:   "zero",
	Short: "Convert an assignment group's assignments to non-graded",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		courses, err := client.TeachingCourses(ctx)
		if err != nil {
			return err
		}
		if len(courses) == 0 {
			return fmt.Errorf("no teaching courses found")
		}
		fmt.Println("\nYour courses:")
		for i, c := range courses {
			fmt.Printf("%d. [%s] %s\n", i+1, c.CourseCode, c.Name)
		}
		ci, ok := chooseIndex("Select a course", len(courses))
		if !ok {
			return nil
		}
		course := courses[ci]

		groups, err := client.AssignmentGroups(ctx, course.ID)
		if err != nil {
			return err
		}
		if len(groups) == 0 {
			return fmt.Errorf("no assignment groups in %s", course.Name)
		}
		fmt.Println("\nAssignment groups:")
		for i, g := range groups {
			fmt.Printf("%d. %s\n", i+1, g.Name)
		}
		gi, ok := chooseIndex("Select an assignment group", len(groups))
		if !ok {
			return nil
		}
		group := groups[gi]

		assignments, err := client.AssignmentsInGroup(ctx, course.ID, group.ID)
		if err != nil {
			return err
		}
		if len(assignments) == 0 {
			log.Infof("group %q has no assignments", group.Name)
			return nil
		}

		if !confirm(fmt.Sprintf("Convert %d assignment(s) in %q to non-graded?", len(assignments), group.Name)) {
			fmt.Println("Aborted.")
			return nil
		}

		converted := 0
		for _, a := range assignments {
			if a.GradingType == "not_graded" {
				log.Debugf("already non-graded: %s", a.Name)
				continue
			}
			if err := client.MakeAssignmentNonGraded(ctx, course.ID, a.ID); err != nil {
				log.Errorw("failed to convert assignment", "assignment", a.Name, "err", err)
				continue
			}
			log.Infof("converted to non-graded: %s", a.Name)
			converted++
		}
		log.Infof("converted %d of %d assignments in %q", converted, len(assignments), group.Name)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(assignmentsCmd)
	assignmentsCmd.AddCommand(assignmentsZeroCmd)
}
