package storage

import (
	"context"
	"fmt"
)

// Options selects and configures a driver. Empty Driver means local.
type Options struct {
	Driver         string   `mapstructure:"driver"`
	LocalDir       string   `mapstructure:"local_dir"`
	LocalURLPrefix string   `mapstructure:"local_url_prefix"`
	S3             S3Config `mapstructure:"s3"`
}

func New(ctx context.Context, o Options) (Storage, error) {
	switch o.Driver {
	case "", "local":
		return NewLocal(o.LocalDir, o.LocalURLPrefix), nil

	case "s3":
		if o.S3.Region == "" || o.S3.Bucket == "" || o.S3.PublicBaseURL == "" {
			return nil, fmt.Errorf("s3 storage: region, bucket and public_base_url are required")
		}
		return NewS3(ctx, o.S3)

	default:
		return nil, fmt.Errorf("unknown storage driver: %s", o.Driver)
	}
}
