package parquet

import (
	"fmt"

	"github.com/datazip-inc/olake-clubspeed/utils"
)

type Config struct {
	Path        string `json:"local_path" validate:"required"` // Local file path (for local file system usage)
	Compression string `json:"compression,omitempty" validate:"omitempty,oneof=snappy zstd gzip none"`

	// optional upload of finished files
	Bucket    string `json:"s3_bucket,omitempty"`
	Region    string `json:"s3_region,omitempty"`
	AccessKey string `json:"s3_access_key,omitempty"`
	SecretKey string `json:"s3_secret_key,omitempty"`
	Prefix    string `json:"s3_path,omitempty"`
	// S3 endpoint for custom S3-compatible services (like MinIO)
	S3Endpoint string `json:"s3_endpoint,omitempty" validate:"omitempty,url"`
}

func (c *Config) Validate() error {
	if c.Compression == "" {
		c.Compression = "snappy"
	}
	if c.Bucket != "" && c.Region == "" {
		return fmt.Errorf("s3_region is required when s3_bucket is set")
	}
	return utils.Validate(c)
}
