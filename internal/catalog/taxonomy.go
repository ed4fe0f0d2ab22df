package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/souq-backoffice/internal/repo"
	"github.com/angelmondragon/souq-backoffice/pkg/db/models"
	pkgerrors "github.com/angelmondragon/souq-backoffice/pkg/errors"
	"github.com/angelmondragon/souq-backoffice/pkg/slug"
	"github.com/angelmondragon/souq-backoffice/pkg/validation"
)

func (s *service) CreateCategory(ctx context.Context, input CategoryInput) (*models.Category, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	category := &models.Category{
		Name:            input.Name,
		Slug:            slug.Make(input.Name),
		Description:     input.Description,
		ParentID:        input.ParentID,
		ImagePath:       input.ImagePath,
		IsActive:        input.IsActive == nil || *input.IsActive,
		Ordering:        input.Ordering,
		MetaTitle:       input.MetaTitle,
		MetaDescription: input.MetaDescription,
	}
	if category.Slug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name must contain letters or digits")
	}
	if input.ParentID != nil {
		if _, err := s.repo.FindCategory(ctx, *input.ParentID); err != nil {
			return nil, repo.MapError(err, "parent category")
		}
	}
	if err := s.repo.CreateCategory(ctx, category); err != nil {
		return nil, repo.MapError(err, "category")
	}
	return category, nil
}

// DeleteCategory removes the category with its whole subtree. Products only
// lose their links.
func (s *service) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		r := s.repo.WithTx(tx)
		if _, err := r.FindCategory(ctx, id); err != nil {
			return err
		}

		all := []uuid.UUID{id}
		frontier := []uuid.UUID{id}
		seen := map[uuid.UUID]struct{}{id: {}}
		for len(frontier) > 0 {
			children, err := r.ListChildCategoryIDs(ctx, frontier)
			if err != nil {
				return err
			}
			frontier = frontier[:0]
			for _, child := range children {
				if _, ok := seen[child]; ok {
					continue
				}
				seen[child] = struct{}{}
				all = append(all, child)
				frontier = append(frontier, child)
			}
		}
		return r.DeleteCategories(ctx, all)
	})
	return repo.MapError(err, "category")
}

// ActiveProductsCount counts active, published products linked to the category.
func (s *service) ActiveProductsCount(ctx context.Context, categoryID uuid.UUID) (int64, error) {
	n, err := s.repo.CountActiveProducts(ctx, categoryID)
	if err != nil {
		return 0, repo.MapError(err, "category")
	}
	return n, nil
}

func (s *service) CreateBrand(ctx context.Context, input BrandInput) (*models.Brand, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	brand := &models.Brand{
		Name:        input.Name,
		Slug:        slug.Make(input.Name),
		LogoPath:    input.LogoPath,
		Description: input.Description,
		IsActive:    input.IsActive == nil || *input.IsActive,
	}
	if brand.Slug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name must contain letters or digits")
	}
	if err := s.repo.CreateBrand(ctx, brand); err != nil {
		return nil, repo.MapError(err, "brand")
	}
	return brand, nil
}

func (s *service) DeleteBrand(ctx context.Context, id uuid.UUID) error {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).DeleteBrand(ctx, id)
	})
	return repo.MapError(err, "brand")
}

func (s *service) CreateAttribute(ctx context.Context, input AttributeInput) (*models.Attribute, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	attribute := &models.Attribute{
		Name:        input.Name,
		Slug:        slug.Make(input.Name),
		Description: input.Description,
	}
	if attribute.Slug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name must contain letters or digits")
	}
	if err := s.repo.CreateAttribute(ctx, attribute); err != nil {
		return nil, repo.MapError(err, "attribute")
	}
	return attribute, nil
}

// CreateAttributeValue adds a value; the same value twice on one attribute is a conflict.
func (s *service) CreateAttributeValue(ctx context.Context, input AttributeValueInput) (*models.AttributeValue, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	if _, err := s.repo.FindAttribute(ctx, input.AttributeID); err != nil {
		return nil, repo.MapError(err, "attribute")
	}
	value := &models.AttributeValue{
		AttributeID: input.AttributeID,
		Value:       input.Value,
		Color:       input.Color,
	}
	if err := s.repo.CreateAttributeValue(ctx, value); err != nil {
		return nil, repo.MapError(err, "attribute value")
	}
	return value, nil
}
