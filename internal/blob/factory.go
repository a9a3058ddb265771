// Package blob selects the report output store.
package blob

import (
	"context"
	"fmt"

	"amity/internal/blob/core"
	"amity/internal/infra/blob/fs"
	"amity/internal/infra/blob/memory"
	"amity/internal/infra/blob/s3"
)

// S3Config configures the s3 driver. Callers outside this package use it
// instead of importing the driver.
type S3Config = s3.Config

// Options selects and configures a blob driver.
type Options struct {
	Driver core.Driver // fs|s3|memory (default fs)
	FSRoot string      // directory root when Driver=fs (default .)
	S3     S3Config
}

// Open returns the core.Store for opts.Driver.
func Open(ctx context.Context, opts Options) (core.Store, error) {
	driver := opts.Driver
	if driver == "" {
		driver = core.DriverFilesystem
	}
	switch driver {
	case core.DriverFilesystem:
		return fs.New(opts.FSRoot)
	case core.DriverS3:
		return s3.New(ctx, opts.S3)
	case core.DriverMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %s", driver)
	}
}
