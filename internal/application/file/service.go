package file

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/neighbourlink-api/internal/domain"
	"github.com/neighbourlink-api/internal/pkg/id"
)

type UploadRequest struct {
	Name      string `json:"name" validate:"required"`
	Data      string `json:"data" validate:"required"` // base64
	IsPrivate bool   `json:"is_private"`
}

type SignedFile struct {
	File *domain.File `json:"file"`
	URL  string       `json:"url"`
}

type Service interface {
	Upload(ctx context.Context, userID string, req UploadRequest) (*domain.File, error)
	// GetSigned returns the file metadata with a presigned download URL.
	GetSigned(ctx context.Context, fileID, callerID string) (*SignedFile, error)
	Delete(ctx context.Context, fileID, callerID, callerRole string) error
}

type fileStore interface {
	Put(ctx context.Context, f *domain.File) error
	Get(ctx context.Context, fileID string) (*domain.File, error)
	SoftDelete(ctx context.Context, fileID string) error
}

type objectStore interface {
	UploadBase64(ctx context.Context, key, b64Data string) (string, error)
	PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

type service struct {
	repo         fileStore
	objects      objectStore
	signedURLTTL time.Duration
}

type ServiceDeps struct {
	FileRepo     fileStore
	Objects      objectStore
	SignedURLTTL time.Duration
}

func NewService(deps ServiceDeps) Service {
	return &service{
		repo:         deps.FileRepo,
		objects:      deps.Objects,
		signedURLTTL: deps.SignedURLTTL,
	}
}

func (s *service) Upload(ctx context.Context, userID string, req UploadRequest) (*domain.File, error) {
	raw, err := base64.StdEncoding.DecodeString(req.Data)
	if err != nil {
		return nil, fmt.Errorf("file data must be base64: %w", domain.ErrBadRequest)
	}
	fileID := id.New()
	key := objectKey(userID, fileID, req.Name)
	if _, err := s.objects.UploadBase64(ctx, key, req.Data); err != nil {
		return nil, err
	}
	sum := sha256.Sum256(raw)
	now := time.Now().UTC()
	f := &domain.File{
		FileID:           fileID,
		Object:           key,
		Size:             int64(len(raw)),
		Type:             strings.TrimPrefix(path.Ext(req.Name), "."),
		Name:             req.Name,
		Hash:             hex.EncodeToString(sum[:]),
		IsPrivate:        req.IsPrivate,
		UploadedByUserID: userID,
		Enable:           true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.repo.Put(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

func (s *service) GetSigned(ctx context.Context, fileID, callerID string) (*SignedFile, error) {
	f, err := s.repo.Get(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if !f.Enable {
		return nil, fmt.Errorf("file not found: %w", domain.ErrNotFound)
	}
	if f.IsPrivate && f.UploadedByUserID != callerID {
		return nil, fmt.Errorf("file is private: %w", domain.ErrForbidden)
	}
	url, err := s.objects.PresignedURL(ctx, f.Object, s.signedURLTTL)
	if err != nil {
		return nil, err
	}
	return &SignedFile{File: f, URL: url}, nil
}

func (s *service) Delete(ctx context.Context, fileID, callerID, callerRole string) error {
	f, err := s.repo.Get(ctx, fileID)
	if err != nil {
		return err
	}
	if f.UploadedByUserID != callerID && callerRole != domain.RoleAdmin {
		return fmt.Errorf("only the uploader or an admin can delete a file: %w", domain.ErrForbidden)
	}
	if err := s.objects.Delete(ctx, f.Object); err != nil {
		return err
	}
	return s.repo.SoftDelete(ctx, fileID)
}

func objectKey(userID, fileID, name string) string {
	ext := strings.ToLower(path.Ext(name))
	return fmt.Sprintf("uploads/%s/%s%s", userID, fileID, ext)
}
