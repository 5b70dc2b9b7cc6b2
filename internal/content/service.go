package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/solemate/solemate-backend/pkg/db/models"
	pkgerrors "github.com/solemate/solemate-backend/pkg/errors"
)

// SectionDTO is one homepage content block.
type SectionDTO struct {
	ID        uuid.UUID       `json:"id"`
	Kind      string          `json:"kind"`
	Title     string          `json:"title,omitempty"`
	Position  int             `json:"position"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	IsActive  bool            `json:"is_active"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// SectionInput carries section fields for create and update.
type SectionInput struct {
	Kind     string
	Title    string
	Position int
	Payload  json.RawMessage
	IsActive *bool
}

// Service manages the admin-curated homepage layout.
type Service interface {
	Homepage(ctx context.Context) ([]SectionDTO, error)
	ListSections(ctx context.Context) ([]SectionDTO, error)
	CreateSection(ctx context.Context, input SectionInput) (*SectionDTO, error)
	UpdateSection(ctx context.Context, sectionID uuid.UUID, input SectionInput) (*SectionDTO, error)
	DeleteSection(ctx context.Context, sectionID uuid.UUID) error
}

// Known section kinds. The payload shape is owned by the storefront client;
// the backend stores it opaquely.
var sectionKinds = map[string]struct{}{
	"hero":         {},
	"banner":       {},
	"collection":   {},
	"product_grid": {},
	"editorial":    {},
}

type service struct {
	repo *Repository
}

func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("content repository required")
	}
	return &service{repo: repo}, nil
}

// Homepage returns active sections for the storefront.
func (s *service) Homepage(ctx context.Context) ([]SectionDTO, error) {
	rows, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list homepage sections")
	}
	return toDTOs(rows), nil
}

// ListSections returns every section for the admin console.
func (s *service) ListSections(ctx context.Context) ([]SectionDTO, error) {
	rows, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list sections")
	}
	return toDTOs(rows), nil
}

func (s *service) CreateSection(ctx context.Context, input SectionInput) (*SectionDTO, error) {
	kind := strings.ToLower(strings.TrimSpace(input.Kind))
	if _, ok := sectionKinds[kind]; !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown section kind %q", input.Kind))
	}

	active := true
	if input.IsActive != nil {
		active = *input.IsActive
	}
	section := &models.HomepageSection{
		Kind:     kind,
		Title:    input.Title,
		Position: input.Position,
		Payload:  input.Payload,
		IsActive: active,
	}
	created, err := s.repo.Create(ctx, section)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert section")
	}
	dto := toDTO(created)
	return &dto, nil
}

func (s *service) UpdateSection(ctx context.Context, sectionID uuid.UUID, input SectionInput) (*SectionDTO, error) {
	section, err := s.repo.FindByID(ctx, sectionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "section not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load section")
	}

	if kind := strings.ToLower(strings.TrimSpace(input.Kind)); kind != "" {
		if _, ok := sectionKinds[kind]; !ok {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown section kind %q", input.Kind))
		}
		section.Kind = kind
	}
	if input.Title != "" {
		section.Title = input.Title
	}
	section.Position = input.Position
	if input.Payload != nil {
		section.Payload = input.Payload
	}
	if input.IsActive != nil {
		section.IsActive = *input.IsActive
	}

	updated, err := s.repo.Update(ctx, section)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update section")
	}
	dto := toDTO(updated)
	return &dto, nil
}

func (s *service) DeleteSection(ctx context.Context, sectionID uuid.UUID) error {
	if err := s.repo.Delete(ctx, sectionID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete section")
	}
	return nil
}

func toDTO(section *models.HomepageSection) SectionDTO {
	return SectionDTO{
		ID:        section.ID,
		Kind:      section.Kind,
		Title:     section.Title,
		Position:  section.Position,
		Payload:   section.Payload,
		IsActive:  section.IsActive,
		UpdatedAt: section.UpdatedAt,
	}
}

func toDTOs(rows []models.HomepageSection) []SectionDTO {
	out := make([]SectionDTO, 0, len(rows))
	for i := range rows {
		out = append(out, toDTO(&rows[i]))
	}
	return out
}
