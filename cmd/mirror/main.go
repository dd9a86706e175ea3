package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/texasiusc/resources/internal/config"
	"github.com/texasiusc/resources/internal/database"
	"github.com/texasiusc/resources/internal/imageurl"
	"github.com/texasiusc/resources/internal/mirror"
	"github.com/texasiusc/resources/internal/post/repository"
	"github.com/texasiusc/resources/internal/sanity"
	"github.com/texasiusc/resources/internal/storage"
	"github.com/texasiusc/resources/internal/views"
	"github.com/texasiusc/resources/pkg/logger"
)

var (
	withImages bool
	dryRun     bool
	timeout    time.Duration
)

// rootCmd copies posts from the hosted dataset into Mongo, and optionally
// their 550x310 image renditions into MinIO.
var rootCmd = &cobra.Command{
	Use:   "mirror",
	Short: "Mirror the hosted content dataset into Mongo and MinIO",
	Long: "Fetches every post from the hosted content API, upserts it into the Mongo\n" +
		"collection used by CONTENT_BACKEND=mongo and, with --images, uploads each post's\n" +
		"image rendition to the bucket used by ASSET_BACKEND=minio.",
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().BoolVar(&withImages, "images", false, "also mirror image renditions into MinIO")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "list what would be mirrored without writing")
	rootCmd.Flags().DurationVar(&timeout, "timeout", 10*time.Minute, "overall time limit")
}

func main() {
	logger.Init(os.Getenv("LOG_LEVEL"))
	logger.SetFormat(os.Getenv("LOG_FORMAT"))
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	if cfg.Sanity.ProjectID == "" {
		return errors.New("SANITY_PROJECT_ID is required")
	}
	if cfg.MongoDB.URI == "" && !dryRun {
		return errors.New("MONGODB_URI is required")
	}
	if withImages && cfg.Assets.MinIO.Endpoint == "" {
		return errors.New("MINIO_ENDPOINT is required with --images")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := sanity.New(sanity.Config{
		ProjectID:  cfg.Sanity.ProjectID,
		Dataset:    cfg.Sanity.Dataset,
		APIVersion: cfg.Sanity.APIVersion,
		UseCDN:     cfg.Sanity.UseCDN,
		Token:      cfg.Sanity.Token,
		Timeout:    cfg.Sanity.Timeout,
	})
	if err != nil {
		return err
	}
	m := &mirror.Mirror{Source: repository.NewSanityStore(client), DryRun: dryRun}

	if !dryRun {
		mc, err := database.ConnectMongoWithRetry(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout, 3)
		if err != nil {
			return err
		}
		defer func() { _ = mc.Disconnect(context.Background()) }()
		m.Posts = repository.NewMongoStore(mc.Database(cfg.MongoDB.Database).Collection(cfg.MongoDB.Collection))

		if withImages {
			mi := cfg.Assets.MinIO
			assets, err := storage.NewMinIOStorage(&storage.MinIOConfig{
				Endpoint:  mi.Endpoint,
				AccessKey: mi.AccessKey,
				SecretKey: mi.SecretKey,
				UseSSL:    mi.UseSSL,
				Bucket:    mi.Bucket,
			})
			if err != nil {
				return err
			}
			m.Images = &mirror.ImageCopier{
				CDN:    imageurl.NewCDN(cfg.Sanity.ProjectID, cfg.Sanity.Dataset),
				Assets: assets,
				Width:  views.ImageWidth,
				Height: views.ImageHeight,
			}
		}
	}

	rep, err := m.Run(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "posts=%d skipped=%d images=%d images_present=%d failures=%d\n",
		rep.Posts, rep.Skipped, rep.Images, rep.ImagesPresent, rep.Failures)
	if rep.Failures > 0 {
		return fmt.Errorf("%d items failed to mirror", rep.Failures)
	}
	return nil
}
