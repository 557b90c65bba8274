package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/andresuchdata/supplyops/backend-go/internal/storage"
	"github.com/urfave/cli/v2"
)

// newDownloadCommand pulls CSV data drops from the org's S3-compatible bucket
// into the local seed directory, ready for the seed commands to consume.
func newDownloadCommand() *cli.Command {
	return &cli.Command{
		Name:  "download",
		Usage: "Download seed CSV drops from object storage",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "storage-endpoint",
				Usage:   "S3-compatible endpoint",
				EnvVars: []string{"STORAGE_ENDPOINT"},
			},
			&cli.StringFlag{
				Name:    "storage-access-key",
				EnvVars: []string{"STORAGE_ACCESS_KEY"},
			},
			&cli.StringFlag{
				Name:    "storage-secret-key",
				EnvVars: []string{"STORAGE_SECRET_KEY"},
			},
			&cli.StringFlag{
				Name:    "storage-bucket",
				EnvVars: []string{"STORAGE_BUCKET"},
			},
			&cli.StringFlag{
				Name:    "storage-region",
				Value:   "us-east-1",
				EnvVars: []string{"STORAGE_REGION"},
			},
			&cli.BoolFlag{
				Name:    "storage-use-ssl",
				Value:   true,
				EnvVars: []string{"STORAGE_USE_SSL"},
			},
			&cli.StringFlag{
				Name:  "prefix",
				Usage: "Object key prefix of the drop to download",
				Value: "seeds/",
			},
			newDataDirFlag(),
		},
		Action: runDownload,
	}
}

func runDownload(c *cli.Context) error {
	client, err := storage.NewMinioClient(storage.MinioConfig{
		Endpoint:  c.String("storage-endpoint"),
		AccessKey: c.String("storage-access-key"),
		SecretKey: c.String("storage-secret-key"),
		Bucket:    c.String("storage-bucket"),
		Region:    c.String("storage-region"),
		UseSSL:    c.Bool("storage-use-ssl"),
	})
	if err != nil {
		return err
	}

	destDir := c.String("data-dir")
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("failed to ensure download dir %s: %w", destDir, err)
	}

	ctx := context.Background()
	prefix := strings.TrimSpace(c.String("prefix"))

	objects, err := client.ListObjects(ctx, prefix)
	if err != nil {
		return fmt.Errorf("failed to list objects for prefix %s: %w", prefix, err)
	}

	var keys []string
	for _, obj := range objects {
		if strings.HasSuffix(strings.ToLower(obj.Key), ".csv") {
			keys = append(keys, obj.Key)
		}
	}
	if len(keys) == 0 {
		return fmt.Errorf("no CSV objects found under prefix %s", prefix)
	}
	sort.Strings(keys)

	for _, key := range keys {
		destPath := filepath.Join(destDir, filepath.Base(key))
		if err := client.DownloadObject(ctx, key, destPath); err != nil {
			return fmt.Errorf("failed to download %s: %w", key, err)
		}
		fmt.Printf("Downloaded %s -> %s\n", key, destPath)
	}

	return nil
}
