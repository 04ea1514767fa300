// Package bucket stores encoded charts in S3. Objects live under
// charts/<id>.rox where the id is the uuid minted at publish time.
package bucket

import (
	"bytes"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/openrhythm/rox/constants"
)

type Bucket struct {
	name     string
	uploader *s3manager.Uploader
}

// New connects to the chart bucket named by the environment.
func New() (*Bucket, error) {
	config := aws.Config{Region: aws.String(constants.GetAwsRegion())}
	if endpoint := constants.GetAwsEndpoint(); endpoint != "" {
		config.Endpoint = aws.String(endpoint)
		// Local S3 stand-ins do not speak virtual-hosted addressing.
		config.S3ForcePathStyle = aws.Bool(true)
	}
	sess, err := session.NewSession(&config)
	if err != nil {
		return nil, errors.Wrap(err, "could not create an AWS session")
	}
	return &Bucket{
		name:     constants.GetChartBucket(),
		uploader: s3manager.NewUploader(sess),
	}, nil
}

// NewChartID mints the id shared by the object key and the registry row.
func NewChartID() string {
	return uuid.NewString()
}

// ChartKey is the object key a chart id maps to.
func ChartKey(id string) string {
	return "charts/" + id + ".rox"
}

// UploadChart stores encoded chart bytes and returns their object key.
func (b *Bucket) UploadChart(id string, data []byte) (string, error) {
	key := ChartKey(id)
	_, err := b.uploader.Upload(&s3manager.UploadInput{
		Bucket:      aws.String(b.name),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/octet-stream"),
	})
	if err != nil {
		return "", errors.Wrapf(err, "could not upload chart %v", id)
	}
	return key, nil
}
