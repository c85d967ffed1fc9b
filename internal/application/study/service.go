package study

import (
	"context"
	"fmt"
	"time"

	"github.com/studypal-api/internal/domain"
	"github.com/studypal-api/internal/pkg/id"
)

type Service interface {
	Record(ctx context.Context, userID string, req domain.CreateStudyRecordRequest) (*domain.StudyRecord, error)
	List(ctx context.Context, userID string, limit int) ([]domain.StudyRecord, error)
	Delete(ctx context.Context, userID, recordID string) error
}

type recordStore interface {
	Put(ctx context.Context, r *domain.StudyRecord) error
	Get(ctx context.Context, recordID string) (*domain.StudyRecord, error)
	ListByUser(ctx context.Context, userID string, limit int32) ([]domain.StudyRecord, error)
	Delete(ctx context.Context, recordID string) error
}

type service struct {
	repo recordStore
}

type ServiceDeps struct {
	StudyRepo recordStore
}

func NewService(deps ServiceDeps) Service {
	return &service{repo: deps.StudyRepo}
}

func (s *service) Record(ctx context.Context, userID string, req domain.CreateStudyRecordRequest) (*domain.StudyRecord, error) {
	if req.Total > 0 && req.Score > req.Total {
		return nil, fmt.Errorf("score exceeds total: %w", domain.ErrBadRequest)
	}
	r := &domain.StudyRecord{
		RecordID:   id.New(),
		UserID:     userID,
		Kind:       req.Kind,
		Topic:      req.Topic,
		Score:      req.Score,
		Total:      req.Total,
		Difficulty: req.Difficulty,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.repo.Put(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *service) List(ctx context.Context, userID string, limit int) ([]domain.StudyRecord, error) {
	if limit < 1 || limit > 100 {
		limit = 50
	}
	return s.repo.ListByUser(ctx, userID, int32(limit))
}

func (s *service) Delete(ctx context.Context, userID, recordID string) error {
	r, err := s.repo.Get(ctx, recordID)
	if err != nil {
		return err
	}
	if r.UserID != userID {
		return fmt.Errorf("record belongs to another user: %w", domain.ErrForbidden)
	}
	return s.repo.Delete(ctx, recordID)
}
