package branches

import (
	"context"
	"fmt"
	"strings"

	"github.com/backstock/backstock/internal/platform/httpx"
	"github.com/backstock/backstock/internal/shared"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Branch, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Branch, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, b Branch) (Branch, error) {
	if err := validate(b); err != nil {
		return Branch{}, err
	}
	return s.repo.Create(ctx, b)
}

func (s *Service) Update(ctx context.Context, id int64, b Branch) error {
	if err := validate(b); err != nil {
		return err
	}
	return s.repo.Update(ctx, id, b)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func validate(b Branch) error {
	if strings.TrimSpace(b.Name) == "" {
		return fmt.Errorf("%w: branch name is required", httpx.ErrValidation)
	}
	return nil
}
