package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/inkwell-cms/inkwell/internal/apperror"
	"github.com/inkwell-cms/inkwell/internal/model"
	"github.com/inkwell-cms/inkwell/internal/repository"
	"github.com/inkwell-cms/inkwell/internal/slug"
)

const MaxTagNameLength = 50

// TagService manages the flat tag set.
type TagService struct {
	tags   repository.TagRepository
	logger *slog.Logger
}

func NewTagService(tags repository.TagRepository, logger *slog.Logger) *TagService {
	return &TagService{
		tags:   tags,
		logger: logger,
	}
}

// Create validates and saves a single tag, resolving its slug within
// the tag scope.
func (s *TagService) Create(ctx context.Context, name string) (*model.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.ValidationFailed("name", "tag name is required")
	}
	if len(name) > MaxTagNameLength {
		return nil, apperror.ValidationFailed("name",
			fmt.Sprintf("tag name must be %d characters or less", MaxTagNameLength))
	}

	finalSlug, err := slug.EnsureUnique(ctx, s.tags, slug.Make(name), "")
	if err != nil {
		return nil, fmt.Errorf("resolving tag slug: %w", err)
	}

	tag := &model.Tag{Name: name, Slug: finalSlug}
	if err := s.tags.Create(ctx, tag); err != nil {
		return nil, fmt.Errorf("creating tag: %w", err)
	}

	s.logger.Info("tag created", slog.String("id", tag.ID), slog.String("slug", tag.Slug))
	return tag, nil
}

func (s *TagService) GetBySlug(ctx context.Context, slugStr string) (*model.Tag, error) {
	if strings.TrimSpace(slugStr) == "" {
		return nil, apperror.ValidationFailed("slug", "tag slug is required")
	}
	return s.tags.GetBySlug(ctx, slugStr)
}

// List returns all tags with their post association counts.
func (s *TagService) List(ctx context.Context) ([]model.Tag, error) {
	tags, err := s.tags.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	return tags, nil
}

// FindOrCreateByNames resolves a list of human-entered names to tags,
// creating the missing ones. Matching is by name, case-insensitively,
// so "Go" in the input reuses an existing "go" tag. Blank and duplicate
// entries in the input are skipped; order of first appearance is kept.
//
// This is the path posts use when saved with a free-form tag list.
func (s *TagService) FindOrCreateByNames(ctx context.Context, names []string) ([]model.Tag, error) {
	var out []model.Tag
	seen := make(map[string]bool)

	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if name == "" || seen[strings.ToLower(name)] {
			continue
		}
		seen[strings.ToLower(name)] = true

		existing, err := s.tags.GetByName(ctx, name)
		if err == nil {
			out = append(out, *existing)
			continue
		}
		if !errors.Is(err, apperror.ErrNotFound) {
			return nil, fmt.Errorf("looking up tag %q: %w", name, err)
		}

		created, err := s.Create(ctx, name)
		if err != nil {
			// A concurrent request may have created the same tag between
			// our lookup and insert; re-read instead of failing the batch.
			if errors.Is(err, apperror.ErrConflict) {
				if existing, lookupErr := s.tags.GetByName(ctx, name); lookupErr == nil {
					out = append(out, *existing)
					continue
				}
			}
			return nil, err
		}
		out = append(out, *created)
	}

	return out, nil
}

func (s *TagService) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return apperror.ValidationFailed("id", "tag ID is required")
	}

	if err := s.tags.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("tag deleted", slog.String("id", id))
	return nil
}

// DeleteUnused sweeps all tags with zero post associations and returns
// the number removed.
func (s *TagService) DeleteUnused(ctx context.Context) (int, error) {
	n, err := s.tags.DeleteUnused(ctx)
	if err != nil {
		return 0, fmt.Errorf("deleting unused tags: %w", err)
	}

	if n > 0 {
		s.logger.Info("unused tags deleted", slog.Int("count", n))
	}
	return n, nil
}
