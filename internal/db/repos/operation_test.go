package repos

import (
	"errors"
	"time"

	"github.com/appian-deploy/appian-deploy/internal/db/models"
)

func (s *DBRepositoryTestSuite) TestRecordAndGet() {
	op := s.createTestOperation("11111111-1111-1111-1111-111111111111", "deployment")

	got, err := s.operationRepo.GetByUUID(s.ctx, op.UUID)
	s.Require().NoError(err)
	s.Equal("deployment", got.Kind)
	s.Equal("IN_PROGRESS", got.Status)
	s.False(got.Terminal)
	s.Nil(got.LastCheckedAt)
}

func (s *DBRepositoryTestSuite) TestRecordUpsertsByUUID() {
	op := s.createTestOperation("22222222-2222-2222-2222-222222222222", "export")

	again := &models.Operation{
		UUID:     op.UUID,
		Kind:     "export",
		Name:     "renamed",
		BaseURL:  op.BaseURL,
		Status:   "COMPLETED",
		Terminal: true,
		Success:  true,
	}
	s.Require().NoError(s.operationRepo.Record(s.ctx, again))

	var count int64
	s.Require().NoError(s.db.Model(&models.Operation{}).Count(&count).Error)
	s.Equal(int64(1), count)

	got, err := s.operationRepo.GetByUUID(s.ctx, op.UUID)
	s.Require().NoError(err)
	s.Equal("renamed", got.Name)
	s.Equal("COMPLETED", got.Status)
	s.True(got.Terminal)
	s.True(got.Success)
}

func (s *DBRepositoryTestSuite) TestRecordRequiresUUID() {
	err := s.operationRepo.Record(s.ctx, &models.Operation{Kind: "deployment"})
	s.Error(err)
}

func (s *DBRepositoryTestSuite) TestUpdateStatus() {
	op := s.createTestOperation("33333333-3333-3333-3333-333333333333", "inspection")
	observed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	err := s.operationRepo.UpdateStatus(s.ctx, op.UUID, "COMPLETED_WITH_ERRORS", true, false, observed)
	s.Require().NoError(err)

	got, err := s.operationRepo.GetByUUID(s.ctx, op.UUID)
	s.Require().NoError(err)
	s.Equal("COMPLETED_WITH_ERRORS", got.Status)
	s.True(got.Terminal)
	s.False(got.Success)
	s.Require().NotNil(got.LastCheckedAt)
	s.True(observed.Equal(*got.LastCheckedAt))
}

func (s *DBRepositoryTestSuite) TestUpdateStatusUnknown() {
	err := s.operationRepo.UpdateStatus(s.ctx, "missing", "FAILED", true, false, time.Now())
	s.True(errors.Is(err, ErrOperationNotFound))
}

func (s *DBRepositoryTestSuite) TestGetByUUIDNotFound() {
	_, err := s.operationRepo.GetByUUID(s.ctx, "missing")
	s.True(errors.Is(err, ErrOperationNotFound))
}

func (s *DBRepositoryTestSuite) TestList() {
	first := s.createTestOperation("44444444-4444-4444-4444-444444444444", "deployment")
	s.createTestOperation("55555555-5555-5555-5555-555555555555", "export")
	last := s.createTestOperation("66666666-6666-6666-6666-666666666666", "deployment")

	all, err := s.operationRepo.List(s.ctx, nil)
	s.Require().NoError(err)
	s.Require().Len(all, 3)
	s.Equal(last.UUID, all[0].UUID, "newest first")
	s.Equal(first.UUID, all[2].UUID)

	deployments, err := s.operationRepo.List(s.ctx, &models.ListOptions{Kind: "deployment"})
	s.Require().NoError(err)
	s.Len(deployments, 2)

	limited, err := s.operationRepo.List(s.ctx, &models.ListOptions{Limit: 1})
	s.Require().NoError(err)
	s.Require().Len(limited, 1)
	s.Equal(last.UUID, limited[0].UUID)

	offset, err := s.operationRepo.List(s.ctx, &models.ListOptions{Limit: 1, Offset: 2})
	s.Require().NoError(err)
	s.Require().Len(offset, 1)
	s.Equal(first.UUID, offset[0].UUID)
}
