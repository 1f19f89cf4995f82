package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/inkwell-cms/inkwell/internal/apperror"
	"github.com/inkwell-cms/inkwell/internal/model"
	"github.com/inkwell-cms/inkwell/internal/repository"
	"github.com/inkwell-cms/inkwell/internal/slug"
)

const MaxCategoryNameLength = 100

// CategoryService manages the category forest.
//
// HIERARCHY INVARIANTS:
// A node may never be its own parent, and a parent change may never
// make a node an ancestor of itself. Both are checked here, before any
// write: validateParent walks the would-be ancestor chain, so A→B→A
// cycles are rejected, not just the direct self-reference.
type CategoryService struct {
	categories repository.CategoryRepository
	logger     *slog.Logger
}

func NewCategoryService(categories repository.CategoryRepository, logger *slog.Logger) *CategoryService {
	return &CategoryService{
		categories: categories,
		logger:     logger,
	}
}

// Create validates and saves a new category. The slug is derived from
// the name and resolved to uniqueness within the category scope.
func (s *CategoryService) Create(ctx context.Context, name, description, color string, parentID *string, sortOrder int) (*model.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.ValidationFailed("name", "category name is required")
	}
	if len(name) > MaxCategoryNameLength {
		return nil, apperror.ValidationFailed("name",
			fmt.Sprintf("category name must be %d characters or less", MaxCategoryNameLength))
	}

	if parentID != nil {
		if _, err := s.categories.GetByID(ctx, *parentID); err != nil {
			return nil, apperror.ValidationFailed("parentId", "parent category does not exist")
		}
	}

	finalSlug, err := slug.EnsureUnique(ctx, s.categories, slug.Make(name), "")
	if err != nil {
		return nil, fmt.Errorf("resolving category slug: %w", err)
	}

	category := &model.Category{
		Name:        name,
		Slug:        finalSlug,
		Description: strings.TrimSpace(description),
		Color:       strings.TrimSpace(color),
		ParentID:    parentID,
		SortOrder:   sortOrder,
	}

	if err := s.categories.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("creating category: %w", err)
	}

	s.logger.Info("category created",
		slog.String("id", category.ID),
		slog.String("slug", category.Slug),
	)

	return category, nil
}

func (s *CategoryService) GetByID(ctx context.Context, id string) (*model.Category, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperror.ValidationFailed("id", "category ID is required")
	}
	return s.categories.GetByID(ctx, id)
}

func (s *CategoryService) GetBySlug(ctx context.Context, slugStr string) (*model.Category, error) {
	if strings.TrimSpace(slugStr) == "" {
		return nil, apperror.ValidationFailed("slug", "category slug is required")
	}
	return s.categories.GetBySlug(ctx, slugStr)
}

// List returns the flat category list, ordered by sort_order then name.
func (s *CategoryService) List(ctx context.Context) ([]model.Category, error) {
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	return categories, nil
}

// GetTree assembles the forest: root categories with their children
// nested to any depth, preserving the flat list's ordering at each
// level. A node whose parent is missing is treated as a root rather
// than dropped.
func (s *CategoryService) GetTree(ctx context.Context) ([]*model.Category, error) {
	flat, err := s.categories.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing categories for tree: %w", err)
	}

	byID := make(map[string]*model.Category, len(flat))
	nodes := make([]*model.Category, len(flat))
	for i := range flat {
		node := flat[i]
		node.Children = nil
		nodes[i] = &node
		byID[node.ID] = nodes[i]
	}

	var roots []*model.Category
	for _, node := range nodes {
		if node.ParentID == nil {
			roots = append(roots, node)
			continue
		}
		parent, ok := byID[*node.ParentID]
		if !ok {
			roots = append(roots, node)
			continue
		}
		parent.Children = append(parent.Children, node)
	}

	return roots, nil
}

// Update edits a category. A changed name regenerates the slug (with
// the row excluded from its own uniqueness check); a changed parent is
// re-validated against the hierarchy invariants.
func (s *CategoryService) Update(ctx context.Context, id, name, description, color string, parentID *string, sortOrder int) (*model.Category, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "category ID is required")
	}

	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if name = strings.TrimSpace(name); name != "" && name != category.Name {
		if len(name) > MaxCategoryNameLength {
			return nil, apperror.ValidationFailed("name",
				fmt.Sprintf("category name must be %d characters or less", MaxCategoryNameLength))
		}
		finalSlug, err := slug.EnsureUnique(ctx, s.categories, slug.Make(name), id)
		if err != nil {
			return nil, fmt.Errorf("resolving category slug: %w", err)
		}
		category.Name = name
		category.Slug = finalSlug
	}

	if err := s.validateParent(ctx, id, parentID); err != nil {
		return nil, err
	}
	category.ParentID = parentID

	category.Description = strings.TrimSpace(description)
	category.Color = strings.TrimSpace(color)
	category.SortOrder = sortOrder

	if err := s.categories.Update(ctx, category); err != nil {
		return nil, fmt.Errorf("updating category %s: %w", id, err)
	}

	s.logger.Info("category updated", slog.String("id", category.ID))
	return category, nil
}

// Delete removes a category; its children are re-parented by the store.
func (s *CategoryService) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return apperror.ValidationFailed("id", "category ID is required")
	}

	if err := s.categories.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("category deleted", slog.String("id", id))
	return nil
}

// validateParent rejects, before any write, a parent assignment that
// would break the forest: a missing parent, the node itself, or any of
// the node's descendants (which would close a cycle). The ancestor walk
// is bounded by the number of rows, so a corrupted chain cannot loop
// forever.
func (s *CategoryService) validateParent(ctx context.Context, id string, parentID *string) error {
	if parentID == nil {
		return nil
	}
	if *parentID == id {
		return apperror.ValidationFailed("parentId", "category cannot be its own parent")
	}

	seen := 0
	current := parentID
	for current != nil {
		if *current == id {
			return apperror.ValidationFailed("parentId",
				"category cannot be moved under one of its own descendants")
		}
		ancestor, err := s.categories.GetByID(ctx, *current)
		if err != nil {
			return apperror.ValidationFailed("parentId", "parent category does not exist")
		}
		current = ancestor.ParentID

		if seen++; seen > 1000 {
			return fmt.Errorf("category %s: ancestor chain too deep, possible cycle in storage", id)
		}
	}

	return nil
}
