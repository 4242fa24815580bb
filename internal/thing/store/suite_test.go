package store_test

import (
	"context"
	"errors"

	"github.com/stretchr/testify/suite"

	"scaffold/internal/thing/models"
	"scaffold/pkg/platform/sentinel"
)

// RepositorySuite is the behaviour every models.Repository must show.
type RepositorySuite struct {
	suite.Suite
	repo  models.Repository
	reset func()
}

func (s *RepositorySuite) SetupTest() {
	if s.reset != nil {
		s.reset()
	}
}

func (s *RepositorySuite) TestSaveThenFind() {
	ctx := context.Background()
	s.Require().NoError(s.repo.Save(ctx, models.Create("t1", "widget")))

	got, err := s.repo.Find(ctx, "t1")

	s.Require().NoError(err)
	s.Equal(models.Snapshot{ID: "t1", Name: "widget"}, got.Snapshot())
	s.Empty(got.PullDomainEvents(), "loaded aggregates carry no pending events")
}

func (s *RepositorySuite) TestSaveIsUpsert() {
	ctx := context.Background()
	s.Require().NoError(s.repo.Save(ctx, models.Create("t1", "widget")))
	s.Require().NoError(s.repo.Save(ctx, models.Create("t1", "gadget")))

	got, err := s.repo.Find(ctx, "t1")

	s.Require().NoError(err)
	s.Equal(models.ThingName("gadget"), got.Name())
}

func (s *RepositorySuite) TestFindMissing() {
	_, err := s.repo.Find(context.Background(), "missing")
	s.True(errors.Is(err, sentinel.ErrNotFound), "got %v", err)
}

func (s *RepositorySuite) TestStoredStateIsDetached() {
	ctx := context.Background()
	thing := models.Create("t1", "widget")
	s.Require().NoError(s.repo.Save(ctx, thing))

	first, err := s.repo.Find(ctx, "t1")
	s.Require().NoError(err)
	second, err := s.repo.Find(ctx, "t1")
	s.Require().NoError(err)

	s.NotSame(first, second)
	s.NotSame(thing, first)
}
