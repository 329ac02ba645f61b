package cmd

import (
	"fmt"
	"os"

	"github.com/canvasops/canvasctl/pkg/canvas"
	"github.com/canvasops/canvasctl/pkg/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	verbose bool

	cfg    *config.Config
	log    *zap.SugaredLogger
	client *canvas.Client
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "canvasctl",
	Short: "Instructor-side automation for Canvas LMS",
	Long: `Automates the repetitive parts of running a course on Canvas:
appointment groups for office hours, publish/unpublish passes over course
content, bulk assignment edits, New Quizzes reports, and AI-assisted grading
with a human review step before anything reaches students.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initApp)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging (default: false)")
}

func initApp() {
	log = config.NewLogger(verbose)

	var err error
	cfg, err = config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	client = canvas.NewClient(cfg.BaseURL, cfg.CanvasToken, log)
}
