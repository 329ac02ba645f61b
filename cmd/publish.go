package cmd

import (
	"context"
	"fmt"

	"github.com/canvasops/canvasctl/pkg/canvas"
	"github.com/spf13/cobra"
)

var (
	pubCourse      int
	pubFiles       bool
	pubPages       bool
	pubAssignments bool
	pubModules     bool
	pubItems       bool
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Publish course content in bulk",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPublishPass(cmd.Context(), true)
	},
}

var unpublishCmd = &cobra.Command{
	Use:   "unpublish",
	Short: "Unpublish course content in bulk",
	Long: `Walks a course's files, pages, assignments, module items and modules
and unpublishes each. Forbidden objects are skipped and logged; failures
never stop the pass. With kind flags set, only those kinds are touched.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPublishPass(cmd.Context(), false)
	},
}

// runPublishPass flips the published flag across the selected content kinds.
// Module items go before modules so collapsing a module doesn't hide items
// that still need the update.
func runPublishPass(ctx context.Context, published bool) error {
	if pubCourse == 0 {
		return fmt.Errorf("--course is required")
	}
	all := !pubFiles && !pubPages && !pubAssignments && !pubModules && !pubItems
	verb := "unpublished"
	if published {
		verb = "published"
	}

	outcome := func(label string, err error) {
		switch {
		case err == nil:
			log.Infof("%s %s", verb, label)
		case canvas.IsForbidden(err):
			log.Warnf("skipped (forbidden): %s", label)
		default:
			log.Errorw("failed to update", "object", label, "err", err)
		}
	}

	if all || pubFiles {
		files, err := client.Files(ctx, pubCourse)
		if err != nil {
			return err
		}
		for _, f := range files {
			if f.Published == published {
				continue
			}
			outcome(fmt.Sprintf("file %q", f.DisplayName), client.SetFilePublished(ctx, f.ID, published))
		}
	}

	if all || pubPages {
		pages, err := client.Pages(ctx, pubCourse)
		if err != nil {
			return err
		}
		for _, p := range pages {
			if p.Published == published {
				continue
			}
			outcome(fmt.Sprintf("page %q", p.Title), client.SetPagePublished(ctx, pubCourse, p.URL, published))
		}
	}

	if all || pubAssignments {
		assignments, err := client.Assignments(ctx, pubCourse)
		if err != nil {
			return err
		}
		for _, a := range assignments {
			if a.Published == published {
				continue
			}
			outcome(fmt.Sprintf("assignment %q", a.Name), client.SetAssignmentPublished(ctx, pubCourse, a.ID, published))
		}
	}

	if all || pubItems || pubModules {
		modules, err := client.Modules(ctx, pubCourse)
		if err != nil {
			return err
		}
		if all || pubItems {
			for _, m := range modules {
				items, err := client.ModuleItems(ctx, pubCourse, m.ID)
				if err != nil {
					log.Errorw("failed to list module items", "module", m.Name, "err", err)
					continue
				}
				for _, item := range items {
					if item.Published == published {
						continue
					}
					outcome(fmt.Sprintf("module item %q", item.Title), client.SetModuleItemPublished(ctx, pubCourse, m.ID, item.ID, published))
				}
			}
		}
		if all || pubModules {
			for _, m := range modules {
				if m.Published == published {
					continue
				}
				outcome(fmt.Sprintf("module %q", m.Name), client.SetModulePublished(ctx, pubCourse, m, published))
			}
		}
	}

	log.Infof("finished %s pass for course %d", verb, pubCourse)
	return nil
}

func init() {
	rootCmd.AddCommand(publishCmd, unpublishCmd)

	for _, c := range []*cobra.Command{publishCmd, unpublishCmd} {
		c.Flags().IntVar(&pubCourse, "course", 0, "Course ID")
		c.Flags().BoolVar(&pubFiles, "files", false, "Only touch files")
		c.Flags().BoolVar(&pubPages, "pages", false, "Only touch pages")
		c.Flags().BoolVar(&pubAssignments, "assignments", false, "Only touch assignments")
		c.Flags().BoolVar(&pubModules, "modules", false, "Only touch modules")
		c.Flags().BoolVar(&pubItems, "items", false, "Only touch module items")
	}
}
