package storage

import (
	"context"
	"log"
	"os"
	"strings"
	"testing"

	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/localstack"
)

var archive *Storage

func TestMain(m *testing.M) {
	ctx := context.Background()

	ls, err := localstack.Run(ctx,
		"localstack/localstack:1.4.0",
		testcontainers.WithEnv(map[string]string{"SERVICES": "s3"}),
	)
	if err != nil {
		log.Fatalf("failed to start localstack: %v", err)
	}

	mappedPort, err := ls.MappedPort(ctx, "4566/tcp")
	if err != nil {
		log.Fatalf("failed to get port: %v", err)
	}
	provider, err := testcontainers.NewDockerProvider()
	if err != nil {
		log.Fatalf("failed to start docker provider: %v", err)
	}
	defer provider.Close()
	host, err := provider.DaemonHost(ctx)
	if err != nil {
		log.Fatalf("failed to get host: %v", err)
	}

	os.Setenv("AWS_ACCESS_KEY_ID", "test")
	os.Setenv("AWS_SECRET_ACCESS_KEY", "test")
	os.Setenv("AWS_REGION", "us-east-1")
	os.Setenv("AWS_ENDPOINT_URL", "http://"+host+":"+mappedPort.Port())

	cfg, err := awsConfig.LoadDefaultConfig(ctx)
	if err != nil {
		log.Fatalf("failed to load aws config: %v", err)
	}
	archive = NewStorage(cfg)

	bucket := archive.bucket
	if _, err := archive.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: &bucket}); err != nil {
		log.Fatalf("failed to create bucket: %v", err)
	}

	exitCode := m.Run()

	if err := ls.Terminate(ctx); err != nil {
		log.Printf("failed to terminate localstack: %s", err)
	}

	os.Exit(exitCode)
}

func TestListKeysEmpty(t *testing.T) {
	keys := archive.ListKeys(context.Background(), 10, "documents/none/")
	require.Empty(t, keys)
}

func TestUploadAndGetDocument(t *testing.T) {
	ctx := context.Background()
	key := "documents/sub-1/doc-1"

	url, err := archive.UploadDocument(ctx, key, nil, strings.NewReader("%PDF-1.4 agreement"))
	require.NoError(t, err)
	require.Contains(t, url, key)

	data, err := archive.GetDocument(ctx, key)
	require.NoError(t, err)
	require.Equal(t, "%PDF-1.4 agreement", string(data))

	keys := archive.ListKeys(ctx, 10, "documents/sub-1/")
	require.Equal(t, []string{key}, keys)
}

func TestGetDocumentMissingKey(t *testing.T) {
	_, err := archive.GetDocument(context.Background(), "documents/sub-1/missing")
	require.Error(t, err)
}
