package s3

import (
	"context"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type Config struct {
	// Host пустой - архив и бэкапы выключены
	Host         string `envconfig:"HOST"`
	AccessKey    string `envconfig:"ACCESS_KEY"`
	SecretKey    string `envconfig:"SECRET_KEY"`
	Bucket       string `envconfig:"BUCKET" default:"figurine"`
	UseSSL       bool   `envconfig:"USE_SSL" default:"false"`
	CreateBucket bool   `envconfig:"CREATE_BUCKET" default:"false"`
}

func (c *Config) Enabled() bool {
	return c != nil && c.Host != ""
}

// NewClient создаёт MinIO клиент и проверяет бакет
func (c *Config) NewClient() (*minio.Client, error) {
	client, err := minio.New(c.Host, &minio.Options{
		Creds:  credentials.NewStaticV4(c.AccessKey, c.SecretKey, ""),
		Secure: c.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, c.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if exists {
		return client, nil
	}
	if !c.CreateBucket {
		return nil, fmt.Errorf("bucket %s does not exist", c.Bucket)
	}
	if err := client.MakeBucket(ctx, c.Bucket, minio.MakeBucketOptions{}); err != nil {
		return nil, fmt.Errorf("failed to create bucket %s: %w", c.Bucket, err)
	}

	return client, nil
}
