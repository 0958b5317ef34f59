package config

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBucket struct {
	objects map[string]string
	calls   []string
}

func (f *fakeBucket) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	key := aws.ToString(in.Bucket) + "/" + aws.ToString(in.Key)
	f.calls = append(f.calls, key)
	body, ok := f.objects[key]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(body))}, nil
}

func TestParseS3URI(t *testing.T) {
	tests := []struct {
		uri         string
		bucket, key string
		ok          bool
	}{
		{"s3://grid/scenarios/a.yaml", "grid", "scenarios/a.yaml", true},
		{"s3://grid/", "", "", false},
		{"s3://grid", "", "", false},
		{"s3:///key", "", "", false},
		{"/tmp/a.yaml", "", "", false},
	}
	for _, tt := range tests {
		bucket, key, ok := ParseS3URI(tt.uri)
		assert.Equal(t, tt.ok, ok, tt.uri)
		assert.Equal(t, tt.bucket, bucket, tt.uri)
		assert.Equal(t, tt.key, key, tt.uri)
	}
}

func TestFetchScenario_S3(t *testing.T) {
	bucket := &fakeBucket{objects: map[string]string{
		"grid/sub.yaml": "buses: [{id: A}, {id: B}]\nswitches: [{name: S, bus0: A, bus1: B}]\n",
	}}

	s, err := FetchScenario(context.Background(), bucket, "s3://grid/sub.yaml")
	require.NoError(t, err)
	assert.Len(t, s.Buses, 2)
	assert.Equal(t, []string{"grid/sub.yaml"}, bucket.calls)

	_, err = FetchScenario(context.Background(), bucket, "s3://grid/missing.yaml")
	assert.ErrorContains(t, err, "NoSuchKey")

	_, err = FetchScenario(context.Background(), nil, "s3://grid/sub.yaml")
	assert.Error(t, err)

	_, err = FetchScenario(context.Background(), bucket, "s3://grid")
	assert.ErrorContains(t, err, "malformed")
}

func TestFetchScenario_Local(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte("buses: [{id: A}]\n"), 0o600))

	s, err := FetchScenario(context.Background(), nil, path)
	require.NoError(t, err)
	assert.Equal(t, "A", s.Buses[0].ID)
}
