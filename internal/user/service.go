package user

import (
	"context"
	"fmt"
	"log/slog"

	userDatamodel "github.com/frahmantamala/meeting-manager/internal/core/datamodel/user"
	"golang.org/x/crypto/bcrypt"
)

// RepositoryAPI returns nil, nil from lookups that find nothing.
type RepositoryAPI interface {
	GetAll(ctx context.Context) ([]*userDatamodel.User, error)
	GetByID(ctx context.Context, id int64) (*userDatamodel.User, error)
	GetByUsername(ctx context.Context, username string) (*userDatamodel.User, error)
	// CreateWithProfile stores the user and its profile in one transaction.
	CreateWithProfile(ctx context.Context, user *userDatamodel.User, profile *userDatamodel.UserProfile) error
	GetProfile(ctx context.Context, userID int64) (*userDatamodel.UserProfile, error)
	SaveProfile(ctx context.Context, profile *userDatamodel.UserProfile) error
	GetAffiliations(ctx context.Context, userID int64) ([]*userDatamodel.UserAffiliation, error)
	CreateAffiliation(ctx context.Context, affiliation *userDatamodel.UserAffiliation) error
	SetAffiliationActive(ctx context.Context, userID, affiliationID int64, active bool) (*userDatamodel.UserAffiliation, error)
	DeleteAffiliation(ctx context.Context, userID, affiliationID int64) error
	// ReferenceNames maps department and organization ids to their names.
	ReferenceNames(ctx context.Context, departmentIDs, organizationIDs []int64) (map[int64]string, map[int64]string, error)
}

type Service struct {
	repo       RepositoryAPI
	bcryptCost int
	logger     *slog.Logger
}

func NewService(repo RepositoryAPI, bcryptCost int, logger *slog.Logger) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		repo:       repo,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

func (s *Service) List(ctx context.Context) ([]*User, error) {
	rows, err := s.repo.GetAll(ctx)
	if err != nil {
		s.logger.Error("failed to list users", "error", err)
		return nil, err
	}
	users := make([]*User, 0, len(rows))
	for _, row := range rows {
		users = append(users, FromDataModel(row))
	}
	return users, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*User, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	if row == nil {
		return nil, ErrNotFound
	}

	profile, err := s.repo.GetProfile(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user profile: %w", err)
	}

	u := FromDataModel(row)
	u.Profile = ProfileFromDataModel(profile)
	return u, nil
}

// Create hashes the password and stores the user with a default profile.
func (s *Service) Create(ctx context.Context, dto CreateUserDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByUsername(ctx, dto.Username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateUsername
	}

	hash, err := s.HashPassword(dto.Password)
	if err != nil {
		return nil, err
	}

	row := &userDatamodel.User{
		Username:     dto.Username,
		Email:        dto.Email,
		FirstName:    dto.FirstName,
		LastName:     dto.LastName,
		PasswordHash: hash,
		IsActive:     true,
	}
	profile := &userDatamodel.UserProfile{ZaloNotification: true}

	if err := s.repo.CreateWithProfile(ctx, row, profile); err != nil {
		s.logger.Error("failed to create user", "error", err, "username", dto.Username)
		return nil, err
	}

	s.logger.Info("user created", "user_id", row.ID, "username", row.Username)
	u := FromDataModel(row)
	u.Profile = ProfileFromDataModel(profile)
	return u, nil
}

// HashPassword creates a bcrypt hash of the password
func (s *Service) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// UpdateProfile applies the supplied fields. A user created before profiles
// existed gets one on first update.
func (s *Service) UpdateProfile(ctx context.Context, userID int64, dto UpdateProfileDTO) (*Profile, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	profile, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		profile = &userDatamodel.UserProfile{UserID: userID, ZaloNotification: true}
	}

	if dto.ZaloID != nil {
		profile.ZaloID = emptyToNil(dto.ZaloID)
	}
	if dto.PhoneNumber != nil {
		profile.PhoneNumber = emptyToNil(dto.PhoneNumber)
	}
	if dto.ZaloNotification != nil {
		profile.ZaloNotification = *dto.ZaloNotification
	}

	if err := s.repo.SaveProfile(ctx, profile); err != nil {
		s.logger.Error("failed to save profile", "error", err, "user_id", userID)
		return nil, err
	}
	return ProfileFromDataModel(profile), nil
}

func (s *Service) ListAffiliations(ctx context.Context, userID int64) ([]*Affiliation, error) {
	if _, err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	rows, err := s.repo.GetAffiliations(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.labelled(ctx, rows...)
}

// labelled converts rows and fills in department and organization names.
func (s *Service) labelled(ctx context.Context, rows ...*userDatamodel.UserAffiliation) ([]*Affiliation, error) {
	var deptIDs, orgIDs []int64
	for _, row := range rows {
		if row.DepartmentID != nil {
			deptIDs = append(deptIDs, *row.DepartmentID)
		}
		if row.OrganizationID != nil {
			orgIDs = append(orgIDs, *row.OrganizationID)
		}
	}
	depts, orgs, err := s.repo.ReferenceNames(ctx, deptIDs, orgIDs)
	if err != nil {
		return nil, err
	}

	out := make([]*Affiliation, 0, len(rows))
	for _, row := range rows {
		a := AffiliationFromDataModel(row)
		if row.DepartmentID != nil {
			a.DepartmentName = depts[*row.DepartmentID]
		}
		if row.OrganizationID != nil {
			a.OrganizationName = orgs[*row.OrganizationID]
		}
		a.Label = labelFor(a)
		out = append(out, a)
	}
	return out, nil
}

func (s *Service) AddAffiliation(ctx context.Context, userID int64, dto AffiliationDTO) (*Affiliation, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	row := &userDatamodel.UserAffiliation{
		UserID:         userID,
		DepartmentID:   dto.DepartmentID,
		OrganizationID: dto.OrganizationID,
		Role:           dto.Role,
		IsActive:       true,
	}
	if dto.IsActive != nil {
		row.IsActive = *dto.IsActive
	}

	if err := s.repo.CreateAffiliation(ctx, row); err != nil {
		return nil, err
	}

	s.logger.Info("affiliation added", "user_id", userID, "affiliation_id", row.ID)
	out, err := s.labelled(ctx, row)
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

// SetAffiliationActive toggles an affiliation. Inactive affiliations are
// skipped when department or organization members are notified.
func (s *Service) SetAffiliationActive(ctx context.Context, userID, affiliationID int64, active bool) (*Affiliation, error) {
	row, err := s.repo.SetAffiliationActive(ctx, userID, affiliationID, active)
	if err != nil {
		return nil, err
	}
	out, err := s.labelled(ctx, row)
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

func (s *Service) RemoveAffiliation(ctx context.Context, userID, affiliationID int64) error {
	return s.repo.DeleteAffiliation(ctx, userID, affiliationID)
}

func (s *Service) requireUser(ctx context.Context, id int64) (*userDatamodel.User, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, ErrNotFound
	}
	return row, nil
}

func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
