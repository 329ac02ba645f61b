package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/canvasops/canvasctl/pkg/appoint"
	"github.com/spf13/cobra"
)

var (
	apptCourses   []int
	apptDatesFile string
	apptLocation  string
	apptTitle     string
	apptStart     string
	apptSlots     int
	apptSlotMin   int
	apptLeadDays  int
	apptPrefix    string
	apptDryRun    bool
)

var appointmentsCmd = &cobra.Command{
	Use:   "appointments",
	Short: "Manage office-hours appointment groups",
}

var appointmentsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create one appointment group per class day, slots included",
	Long: `Reads class dates (YYYY-MM-DD, one per line) from a dates file and
creates a published appointment group for each, sliced into individual
sign-up slots shared across the given courses. Sign-up opens a fixed number
of days before each date.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(apptCourses) == 0 {
			return fmt.Errorf("at least one --course is required")
		}

		f, err := os.Open(apptDatesFile)
		if err != nil {
			return err
		}
		dates, err := appoint.ParseDates(f)
		_ = f.Close()
		if err != nil {
			return err
		}
		if len(dates) == 0 {
			return fmt.Errorf("no class dates in %s", apptDatesFile)
		}

		plan := appoint.DefaultPlan(apptCourses, apptLocation)
		plan.Title = apptTitle
		plan.SlotCount = apptSlots
		plan.SlotLength = time.Duration(apptSlotMin) * time.Minute
		plan.ReleaseLead = time.Duration(apptLeadDays) * 24 * time.Hour
		if _, err := fmt.Sscanf(apptStart, "%d:%d", &plan.StartHour, &plan.StartMinute); err != nil {
			return fmt.Errorf("bad --start %q, want HH:MM", apptStart)
		}

		ctx := cmd.Context()
		for _, day := range dates {
			req := plan.Group(day)
			if apptDryRun {
				fmt.Printf("would create %q with %d slots\n", req.Title, len(req.NewAppointments))
				continue
			}
			group, err := client.CreateAppointmentGroup(ctx, req)
			if err != nil {
				return fmt.Errorf("create group for %s: %w", day.Format("2006-01-02"), err)
			}
			log.Infow("created appointment group", "id", group.ID, "title", req.Title, "slots", len(req.NewAppointments))
		}
		log.Infof("created %d appointment groups", len(dates))
		return nil
	},
}

var appointmentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List manageable appointment groups",
	RunE: func(cmd *cobra.Command, args []string) error {
		groups, err := client.ManageableAppointmentGroups(cmd.Context())
		if err != nil {
			return err
		}
		for _, g := range groups {
			fmt.Printf("%d\t%s\t%s\n", g.ID, g.StartAt, g.Title)
		}
		log.Infof("found %d appointment groups", len(groups))
		return nil
	},
}

var appointmentsDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete future appointment groups by title prefix",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		groups, err := client.ManageableAppointmentGroups(ctx)
		if err != nil {
			return err
		}
		future := appoint.FutureWithPrefix(groups, apptPrefix, time.Now().UTC())
		if len(future) == 0 {
			log.Infof("no future %q groups to delete", apptPrefix)
			return nil
		}
		for _, g := range future {
			if apptDryRun {
				fmt.Printf("would delete %d %q (start %s)\n", g.ID, g.Title, g.StartAt)
				continue
			}
			if err := client.DeleteAppointmentGroup(ctx, g.ID); err != nil {
				log.Errorw("failed to delete group", "id", g.ID, "title", g.Title, "err", err)
				continue
			}
			log.Infow("deleted appointment group", "id", g.ID, "title", g.Title, "start", g.StartAt)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(appointmentsCmd)
	appointmentsCmd.AddCommand(appointmentsCreateCmd, appointmentsListCmd, appointmentsDeleteCmd)

	appointmentsCreateCmd.Flags().IntSliceVar(&apptCourses, "course", nil, "Course ID sharing the office hours (repeatable)")
	appointmentsCreateCmd.Flags().StringVar(&apptDatesFile, "dates", "class_dates.txt", "File of class dates, one YYYY-MM-DD per line")
	appointmentsCreateCmd.Flags().StringVar(&apptLocation, "location", "", "Location name or meeting URL")
	appointmentsCreateCmd.Flags().StringVar(&apptTitle, "title", "Office Hours", "Group title prefix, the date is appended")
	appointmentsCreateCmd.Flags().StringVar(&apptStart, "start", "09:00", "First slot start time (HH:MM)")
	appointmentsCreateCmd.Flags().IntVar(&apptSlots, "slots", 4, "Number of slots per day")
	appointmentsCreateCmd.Flags().IntVar(&apptSlotMin, "slot-minutes", 15, "Minutes per slot")
	appointmentsCreateCmd.Flags().IntVar(&apptLeadDays, "lead-days", 7, "Days before the date sign-up opens")
	appointmentsCreateCmd.Flags().BoolVar(&apptDryRun, "dry-run", false, "Print what would be created without calling Canvas")

	appointmentsDeleteCmd.Flags().StringVar(&apptPrefix, "prefix", "Office Hours", "Delete only groups whose title starts with this")
	appointmentsDeleteCmd.Flags().BoolVar(&apptDryRun, "dry-run", false, "Print what would be deleted without calling Canvas")
}
