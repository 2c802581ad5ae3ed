package source

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// AwsS3Repository reads the desired-state document from an S3 object.
type AwsS3Repository struct {
	document
	Name            string
	BucketName      string
	ObjectName      string
	Region          string // from the environment when empty
	Endpoint        string // S3 compatible store, path-style addressing
	AccessKeyID     string // static credentials, the default chain when empty
	SecretAccessKey string
	Client          *s3.Client

	clientOnce    sync.Once
	clientInitErr error
}

func (a *AwsS3Repository) initClient(ctx context.Context) {
	var opts []func(*config.LoadOptions) error
	if a.Region != "" {
		opts = append(opts, config.WithRegion(a.Region))
	}
	if a.AccessKeyID != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(a.AccessKeyID, a.SecretAccessKey, "")))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		a.clientInitErr = fmt.Errorf("failed to load AWS config: %w", err)
		return
	}
	a.Client = s3.NewFromConfig(cfg, func(o *s3.Options) {
		if a.Endpoint != "" {
			o.BaseEndpoint = aws.String(a.Endpoint)
			o.UsePathStyle = true
		}
	})
}

// Refresh reads the object again. A missing or malformed object keeps the
// previous copy.
func (a *AwsS3Repository) Refresh() error {
	ctx := context.Background()
	if a.Client == nil {
		a.clientOnce.Do(func() { a.initClient(ctx) })
		if a.clientInitErr != nil {
			return failed(a.Name, "error creating s3 client", a.clientInitErr)
		}
	}

	out, err := a.Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.BucketName),
		Key:    aws.String(a.ObjectName),
	})
	if err != nil {
		return failed(a.Name, "error getting object", err)
	}
	defer out.Body.Close()

	raw, err := io.ReadAll(out.Body)
	if err != nil {
		return failed(a.Name, "error reading object", err)
	}
	if err := a.load(raw); err != nil {
		return failed(a.Name, "error unmarshalling object", err)
	}
	return nil
}

// GetName returns the name of the configuration source.
func (a *AwsS3Repository) GetName() string {
	return a.Name
}
