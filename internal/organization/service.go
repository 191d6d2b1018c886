package organization

import (
	"context"
	"log/slog"

	organizationDatamodel "github.com/frahmantamala/meeting-manager/internal/core/datamodel/organization"
)

type RepositoryAPI interface {
	GetAll(ctx context.Context) ([]*organizationDatamodel.Organization, error)
	GetByID(ctx context.Context, id int64) (*organizationDatamodel.Organization, error)
	GetByName(ctx context.Context, name string) (*organizationDatamodel.Organization, error)
	Create(ctx context.Context, organization *organizationDatamodel.Organization) error
	Update(ctx context.Context, organization *organizationDatamodel.Organization) error
	Delete(ctx context.Context, id int64) error
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) List(ctx context.Context) ([]*Organization, error) {
	rows, err := s.repo.GetAll(ctx)
	if err != nil {
		s.logger.Error("failed to list organizations", "error", err)
		return nil, err
	}

	organizations := make([]*Organization, 0, len(rows))
	for _, row := range rows {
		organizations = append(organizations, FromDataModel(row))
	}
	return organizations, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Organization, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, ErrOrganizationNotFound
	}
	return FromDataModel(row), nil
}

func (s *Service) Create(ctx context.Context, dto OrganizationDTO) (*Organization, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByName(ctx, dto.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateName
	}

	row := &organizationDatamodel.Organization{Name: dto.Name, Description: dto.Description}
	if err := s.repo.Create(ctx, row); err != nil {
		s.logger.Error("failed to create organization", "error", err, "name", dto.Name)
		return nil, err
	}

	s.logger.Info("organization created", "organization_id", row.ID)
	return FromDataModel(row), nil
}

func (s *Service) Update(ctx context.Context, id int64, dto OrganizationDTO) (*Organization, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, ErrOrganizationNotFound
	}

	existing, err := s.repo.GetByName(ctx, dto.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.ID != id {
		return nil, ErrDuplicateName
	}

	row.Name = dto.Name
	row.Description = dto.Description
	if err := s.repo.Update(ctx, row); err != nil {
		return nil, err
	}
	return FromDataModel(row), nil
}

// Delete removes the organization together with the participant and
// affiliation rows that point at it.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete organization", "error", err, "organization_id", id)
		return err
	}
	s.logger.Info("organization deleted", "organization_id", id)
	return nil
}
