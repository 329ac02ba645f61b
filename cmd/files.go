package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/canvasops/canvasctl/pkg/filesync"
	"github.com/spf13/cobra"
)

var (
	filesCourse int
	filesDir    string
)

var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "Sync local files to a Canvas course",
}

var filesPushCmd = &cobra.Command{
	Use:   "push",
	Short: "Upload changed files from a directory",
	Long: `Uploads every file named in the directory's upload_list.json whose
content has changed since the last push. Uploads overwrite the equally named
file in the course, and the sync manifest remembers each file's hash so
unchanged files are skipped.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		names, err := filesync.LoadUploadList(filesDir)
		if err != nil {
			return fmt.Errorf("read %s: %w (create it with \"canvasctl files track\")", filesync.UploadListName, err)
		}
		manifest, err := filesync.LoadManifest(filesDir)
		if err != nil {
			return err
		}

		uploaded, skipped, failed := 0, 0, 0
		for _, name := range names {
			path := filepath.Join(filesDir, name)
			hash, err := filesync.HashFile(path)
			if err != nil {
				log.Errorw("cannot hash file", "file", name, "err", err)
				failed++
				continue
			}
			if !manifest.Changed(name, hash) {
				log.Debugf("unchanged: %s", name)
				skipped++
				continue
			}

			file, err := client.UploadCourseFile(ctx, filesCourse, path)
			if err != nil {
				log.Errorw("upload failed", "file", name, "err", err)
				failed++
				continue
			}
			manifest[name] = filesync.Entry{Hash: hash, FileID: file.ID}
			if err := manifest.Save(filesDir); err != nil {
				return err
			}
			log.Infof("uploaded %s (file %d)", name, file.ID)
			uploaded++
		}

		fmt.Printf("Done: %d uploaded, %d unchanged, %d failed.\n", uploaded, skipped, failed)
		if failed > 0 {
			return fmt.Errorf("%d uploads failed", failed)
		}
		return nil
	},
}

var filesTrackCmd = &cobra.Command{
	Use:   "track <path>...",
	Short: "Add files to their directory's upload list",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, path := range args {
			changed, err := filesync.Track(path)
			if err != nil {
				return err
			}
			if changed {
				fmt.Printf("Tracking %s\n", path)
			} else {
				fmt.Printf("Already tracked: %s\n", path)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(filesCmd)
	filesCmd.AddCommand(filesPushCmd)
	filesCmd.AddCommand(filesTrackCmd)

	filesPushCmd.Flags().IntVar(&filesCourse, "course", 0, "Canvas course id (required)")
	filesPushCmd.Flags().StringVar(&filesDir, "dir", ".", "Directory to push from")
	_ = filesPushCmd.MarkFlagRequired("course")
}
