package cli

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/kilupskalvis/catalogd/internal/blobstore"
	"github.com/kilupskalvis/catalogd/internal/config"
	"github.com/spf13/cobra"
)

var (
	initBackend      string
	initDefaultImage string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the catalogd data directory",
	Long: `Creates the data directory layout: the configuration file, the image
blob directory with its default placeholder, and the selected
repository backend.`,
	Run: func(_ *cobra.Command, _ []string) {
		cfg, err := config.Initialize(dataDir, initBackend)
		if err != nil {
			exitError("%v", err)
		}

		blobs, err := blobstore.NewFSStore(cfg.ImagesPath())
		if err != nil {
			exitError("failed to create blob store: %v", err)
		}

		placeholder := placeholderJPEG
		if initDefaultImage != "" {
			placeholder, err = os.ReadFile(initDefaultImage)
			if err != nil {
				exitError("failed to read default image: %v", err)
			}
		}
		if err := blobs.EnsureDefault(placeholder); err != nil {
			exitError("%v", err)
		}

		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("%s initialized catalog in %s (backend: %s)\n", green("✓"), cfg.DataPath(), cfg.Backend)
	},
}

func init() {
	initCmd.Flags().StringVar(&initBackend, "backend", "", "Repository backend: document or sqlite (default document)")
	initCmd.Flags().StringVar(&initDefaultImage, "default-image", "", "File to use as the fallback placeholder image")
}
