package document

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/studypal-api/internal/domain"
	s3infra "github.com/studypal-api/internal/infrastructure/s3"
	"github.com/studypal-api/internal/pkg/id"
)

const (
	maxUploadSize   = 25 << 20 // 25 MiB
	downloadLinkTTL = 15 * time.Minute
)

type Service interface {
	Upload(ctx context.Context, ownerUserID, filename string, r io.Reader, size int64) (*domain.Document, error)
	List(ctx context.Context, ownerUserID string) ([]domain.Document, error)
	DownloadURL(ctx context.Context, ownerUserID, documentID string) (string, error)
	Delete(ctx context.Context, ownerUserID, documentID string) error
}

type documentStore interface {
	Put(ctx context.Context, d *domain.Document) error
	Get(ctx context.Context, documentID string) (*domain.Document, error)
	ListByOwner(ctx context.Context, ownerUserID string) ([]domain.Document, error)
	SoftDelete(ctx context.Context, documentID string) error
}

type objectStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

type service struct {
	repo    documentStore
	objects objectStore
}

type ServiceDeps struct {
	DocumentRepo documentStore
	ObjectStore  objectStore
}

func NewService(deps ServiceDeps) Service {
	return &service{repo: deps.DocumentRepo, objects: deps.ObjectStore}
}

func (s *service) Upload(ctx context.Context, ownerUserID, filename string, r io.Reader, size int64) (*domain.Document, error) {
	if size <= 0 || size > maxUploadSize {
		return nil, fmt.Errorf("file size out of range: %w", domain.ErrBadRequest)
	}
	name := sanitizeFilename(filename)
	if name == "" {
		return nil, fmt.Errorf("invalid filename: %w", domain.ErrBadRequest)
	}

	// Hash while uploading so the object is read only once.
	hasher := sha256.New()
	body := io.TeeReader(io.LimitReader(r, maxUploadSize), hasher)

	docID := id.New()
	key := fmt.Sprintf("documents/%s/%s_%s", ownerUserID, docID, name)
	contentType := s3infra.DetectContentType(name)

	object, err := s.objects.Upload(ctx, key, body, contentType)
	if err != nil {
		return nil, fmt.Errorf("upload object: %w", err)
	}

	now := time.Now().UTC()
	d := &domain.Document{
		DocumentID:  docID,
		Object:      object,
		Size:        size,
		Type:        contentType,
		Name:        name,
		Hash:        hex.EncodeToString(hasher.Sum(nil)),
		OwnerUserID: ownerUserID,
		Enable:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Put(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *service) List(ctx context.Context, ownerUserID string) ([]domain.Document, error) {
	return s.repo.ListByOwner(ctx, ownerUserID)
}

func (s *service) DownloadURL(ctx context.Context, ownerUserID, documentID string) (string, error) {
	d, err := s.getOwned(ctx, ownerUserID, documentID)
	if err != nil {
		return "", err
	}
	return s.objects.PresignedURL(ctx, objectKey(d.Object), downloadLinkTTL)
}

func (s *service) Delete(ctx context.Context, ownerUserID, documentID string) error {
	d, err := s.getOwned(ctx, ownerUserID, documentID)
	if err != nil {
		return err
	}
	if err := s.objects.Delete(ctx, objectKey(d.Object)); err != nil {
		return fmt.Errorf("delete object: %w", err)
	}
	return s.repo.SoftDelete(ctx, documentID)
}

func (s *service) getOwned(ctx context.Context, ownerUserID, documentID string) (*domain.Document, error) {
	d, err := s.repo.Get(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if d.OwnerUserID != ownerUserID {
		return nil, fmt.Errorf("document belongs to another user: %w", domain.ErrForbidden)
	}
	if !d.Enable {
		return nil, fmt.Errorf("document deleted: %w", domain.ErrNotFound)
	}
	return d, nil
}

// objectKey strips the s3://bucket/ prefix stored on the document record.
func objectKey(object string) string {
	trimmed := strings.TrimPrefix(object, "s3://")
	if i := strings.Index(trimmed, "/"); i >= 0 {
		return trimmed[i+1:]
	}
	return trimmed
}

func sanitizeFilename(filename string) string {
	name := filepath.Base(strings.TrimSpace(filename))
	if name == "." || name == ".." || name == "/" {
		return ""
	}
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	out := b.String()
	if strings.Trim(out, "._-") == "" {
		return ""
	}
	return out
}
