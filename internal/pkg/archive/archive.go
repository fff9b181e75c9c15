// Package archive copies issued ticket codes to S3 compatible object
// storage (Cloudflare R2 in production).
package archive

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type Config struct {
	AccountID       string
	AccessKeyID     string
	AccessKeySecret string
	Bucket          string
	PublicBaseURL   string
}

type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type Store struct {
	client        objectPutter
	bucket        string
	publicBaseURL string
}

func NewR2(ctx context.Context, conf Config) (*Store, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion("auto"),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			conf.AccessKeyID, conf.AccessKeySecret, "",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("config.LoadDefaultConfig -> %w", err)
	}

	endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", conf.AccountID)
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
	})

	publicBaseURL := conf.PublicBaseURL
	if publicBaseURL == "" {
		publicBaseURL = endpoint + "/" + conf.Bucket
	}

	return newStore(client, conf.Bucket, publicBaseURL), nil
}

func newStore(client objectPutter, bucket, publicBaseURL string) *Store {
	return &Store{
		client:        client,
		bucket:        bucket,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

func TicketQRKey(ticketID string) string {
	return "tickets/" + ticketID + ".png"
}

// PutTicketQR uploads the PNG for ticketID and returns its public URL.
func (s *Store) PutTicketQR(ctx context.Context, ticketID string, png []byte) (string, error) {
	key := TicketQRKey(ticketID)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(png),
		ContentType: aws.String("image/png"),
	})
	if err != nil {
		return "", fmt.Errorf("s.client.PutObject -> %w", err)
	}

	return s.publicBaseURL + "/" + key, nil
}
