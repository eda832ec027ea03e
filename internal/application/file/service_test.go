package file

import (
	"context"
	"encoding/base64"
	"fmt"
	"testing"
	"time"

	"github.com/neighbourlink-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockFileStore struct{ mock.Mock }

func (m *mockFileStore) Put(ctx context.Context, f *domain.File) error {
	return m.Called(ctx, f).Error(0)
}

func (m *mockFileStore) Get(ctx context.Context, fileID string) (*domain.File, error) {
	args := m.Called(ctx, fileID)
	if f, _ := args.Get(0).(*domain.File); f != nil {
		return f, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockFileStore) SoftDelete(ctx context.Context, fileID string) error {
	return m.Called(ctx, fileID).Error(0)
}

type mockObjectStore struct{ mock.Mock }

func (m *mockObjectStore) UploadBase64(ctx context.Context, key, b64Data string) (string, error) {
	args := m.Called(ctx, key, b64Data)
	return args.String(0), args.Error(1)
}

func (m *mockObjectStore) PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	args := m.Called(ctx, key, ttl)
	return args.String(0), args.Error(1)
}

func (m *mockObjectStore) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func newTestService(repo *mockFileStore, objects *mockObjectStore) Service {
	return NewService(ServiceDeps{
		FileRepo:     repo,
		Objects:      objects,
		SignedURLTTL: 15 * time.Minute,
	})
}

func TestUpload_Success(t *testing.T) {
	data := base64.StdEncoding.EncodeToString([]byte("fake jpeg bytes"))
	repo := &mockFileStore{}
	objects := &mockObjectStore{}
	objects.On("UploadBase64", mock.Anything, mock.Anything, data).Return("etag", nil)
	repo.On("Put", mock.Anything, mock.Anything).Return(nil)

	svc := newTestService(repo, objects)
	f, err := svc.Upload(context.Background(), "alice", UploadRequest{Name: "photo.jpg", Data: data})

	require.NoError(t, err)
	assert.NotEmpty(t, f.FileID)
	assert.Equal(t, "jpg", f.Type)
	assert.Equal(t, int64(len("fake jpeg bytes")), f.Size)
	assert.Equal(t, "alice", f.UploadedByUserID)
	assert.Contains(t, f.Object, "uploads/alice/")
	assert.True(t, f.Enable)
	repo.AssertExpectations(t)
	objects.AssertExpectations(t)
}

func TestUpload_InvalidBase64(t *testing.T) {
	svc := newTestService(&mockFileStore{}, &mockObjectStore{})

	_, err := svc.Upload(context.Background(), "alice", UploadRequest{Name: "photo.jpg", Data: "%%not-base64%%"})

	assert.ErrorIs(t, err, domain.ErrBadRequest)
}

func TestGetSigned_PrivateFileOnlyForUploader(t *testing.T) {
	repo := &mockFileStore{}
	repo.On("Get", mock.Anything, "f1").Return(&domain.File{
		FileID: "f1", Object: "uploads/alice/f1.jpg",
		IsPrivate: true, UploadedByUserID: "alice", Enable: true,
	}, nil)
	objects := &mockObjectStore{}
	objects.On("PresignedURL", mock.Anything, "uploads/alice/f1.jpg", 15*time.Minute).
		Return("https://signed.example/f1", nil)

	svc := newTestService(repo, objects)

	signed, err := svc.GetSigned(context.Background(), "f1", "alice")
	require.NoError(t, err)
	assert.Equal(t, "https://signed.example/f1", signed.URL)

	_, err = svc.GetSigned(context.Background(), "f1", "mallory")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestGetSigned_DisabledFileHidden(t *testing.T) {
	repo := &mockFileStore{}
	repo.On("Get", mock.Anything, "f1").Return(&domain.File{
		FileID: "f1", UploadedByUserID: "alice", Enable: false,
	}, nil)

	svc := newTestService(repo, &mockObjectStore{})
	_, err := svc.GetSigned(context.Background(), "f1", "alice")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDelete_UploaderAndAdmin(t *testing.T) {
	repo := &mockFileStore{}
	repo.On("Get", mock.Anything, "f1").Return(&domain.File{
		FileID: "f1", Object: "uploads/alice/f1.jpg", UploadedByUserID: "alice", Enable: true,
	}, nil)
	repo.On("SoftDelete", mock.Anything, "f1").Return(nil)
	objects := &mockObjectStore{}
	objects.On("Delete", mock.Anything, "uploads/alice/f1.jpg").Return(nil)

	svc := newTestService(repo, objects)

	assert.ErrorIs(t, svc.Delete(context.Background(), "f1", "mallory", domain.RoleUser), domain.ErrForbidden)
	require.NoError(t, svc.Delete(context.Background(), "f1", "bob", domain.RoleAdmin))
	repo.AssertExpectations(t)
}

func TestDelete_ObjectStoreFailureKeepsRecord(t *testing.T) {
	repo := &mockFileStore{}
	repo.On("Get", mock.Anything, "f1").Return(&domain.File{
		FileID: "f1", Object: "uploads/alice/f1.jpg", UploadedByUserID: "alice", Enable: true,
	}, nil)
	objects := &mockObjectStore{}
	objects.On("Delete", mock.Anything, "uploads/alice/f1.jpg").
		Return(fmt.Errorf("s3 unavailable"))

	svc := newTestService(repo, objects)
	err := svc.Delete(context.Background(), "f1", "alice", domain.RoleUser)

	assert.Error(t, err)
	repo.AssertNotCalled(t, "SoftDelete", mock.Anything, mock.Anything)
}
