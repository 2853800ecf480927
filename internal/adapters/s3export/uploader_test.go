package s3export

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blinkit_scraper/internal/domain"
)

// mockPutter records the last PutObject call.
type mockPutter struct {
	in   *s3.PutObjectInput
	body []byte
	err  error
}

func (m *mockPutter) PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	m.in = in
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	m.body = b
	if m.err != nil {
		return nil, m.err
	}
	return &s3.PutObjectOutput{}, nil
}

func writeExport(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "blinkit.csv")
	require.NoError(t, os.WriteFile(p, []byte("latitude,longitude\n28.6139,77.209\n"), 0o644))
	return p
}

func TestUpload_PutsUnderPrefix(t *testing.T) {
	m := &mockPutter{}
	u := NewWithClient(m, "exports-bucket", "exports/", zerolog.Nop())
	local := writeExport(t)

	loc, err := u.Upload(context.Background(), domain.Run{ID: "r-42", Records: 5, MockRecords: 5}, local)
	require.NoError(t, err)

	assert.Equal(t, "s3://exports-bucket/exports/r-42.csv", loc)
	assert.Equal(t, "exports-bucket", aws.ToString(m.in.Bucket))
	assert.Equal(t, "exports/r-42.csv", aws.ToString(m.in.Key))
	assert.Equal(t, "text/csv", aws.ToString(m.in.ContentType))
	assert.Equal(t, int64(len(m.body)), aws.ToInt64(m.in.ContentLength))
	assert.Equal(t, "5", m.in.Metadata["records"])
	assert.Contains(t, string(m.body), "28.6139")
}

func TestUpload_Errors(t *testing.T) {
	u := NewWithClient(&mockPutter{err: errors.New("access denied")}, "b", "", zerolog.Nop())

	_, err := u.Upload(context.Background(), domain.Run{ID: "r1"}, writeExport(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")

	_, err = u.Upload(context.Background(), domain.Run{ID: "r1"}, filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestKey(t *testing.T) {
	u := NewWithClient(&mockPutter{}, "b", "p/", zerolog.Nop())
	assert.Equal(t, "p/r1.csv", u.Key(domain.Run{ID: "r1", OutputPath: "out/data.txt"}))
}
