package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/inkwell-cms/inkwell/internal/apperror"
	"github.com/inkwell-cms/inkwell/internal/model"
)

func newTestCategoryStore(t *testing.T) *CategoryStore {
	t.Helper()
	return newTestDB(t).Categories()
}

func createTestCategory(t *testing.T, s *CategoryStore, name, slug string, parentID *string) *model.Category {
	t.Helper()
	category := &model.Category{
		Name:     name,
		Slug:     slug,
		ParentID: parentID,
	}
	if err := s.Create(context.Background(), category); err != nil {
		t.Fatalf("failed to create test category %q: %v", name, err)
	}
	return category
}

func TestCategoryCreateAndGet(t *testing.T) {
	s := newTestCategoryStore(t)
	ctx := context.Background()

	created := createTestCategory(t, s, "News", "news", nil)
	if created.ID == "" {
		t.Fatal("Create() did not set ID")
	}

	byID, err := s.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if byID.Slug != "news" {
		t.Errorf("GetByID() slug = %q", byID.Slug)
	}

	bySlug, err := s.GetBySlug(ctx, "news")
	if err != nil {
		t.Fatalf("GetBySlug() error = %v", err)
	}
	if bySlug.ID != created.ID {
		t.Errorf("GetBySlug() ID = %q, want %q", bySlug.ID, created.ID)
	}
}

// The UNIQUE index on slug is the arbiter under concurrent creations:
// even when the application-level pre-check is bypassed entirely (as
// here), the second insert loses with a conflict — never a second row.
func TestCategoryCreate_DuplicateSlugBackstop(t *testing.T) {
	s := newTestCategoryStore(t)
	ctx := context.Background()

	createTestCategory(t, s, "Launch", "launch", nil)

	dup := &model.Category{Name: "Launch Again", Slug: "launch"}
	err := s.Create(ctx, dup)
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("Create() duplicate slug error = %v, want ErrConflict", err)
	}

	var n int
	if err := s.db.conn.QueryRow(
		`SELECT COUNT(*) FROM categories WHERE slug = 'launch'`,
	).Scan(&n); err != nil {
		t.Fatalf("counting rows: %v", err)
	}
	if n != 1 {
		t.Errorf("found %d rows with slug 'launch', want exactly 1", n)
	}
}

func TestCategorySlugExists(t *testing.T) {
	s := newTestCategoryStore(t)
	ctx := context.Background()

	created := createTestCategory(t, s, "News", "news", nil)

	taken, err := s.SlugExists(ctx, "news", "")
	if err != nil {
		t.Fatalf("SlugExists() error = %v", err)
	}
	if !taken {
		t.Error("SlugExists(news) = false, want true")
	}

	// The owning row is excluded from its own check.
	taken, err = s.SlugExists(ctx, "news", created.ID)
	if err != nil {
		t.Fatalf("SlugExists() error = %v", err)
	}
	if taken {
		t.Error("SlugExists(news, excluding owner) = true, want false")
	}

	taken, err = s.SlugExists(ctx, "free-slug", "")
	if err != nil {
		t.Fatalf("SlugExists() error = %v", err)
	}
	if taken {
		t.Error("SlugExists(free-slug) = true, want false")
	}
}

// Deleting a mid-tree node re-parents its children to the grandparent;
// deleting a root re-parents its children to root.
func TestCategoryDelete_ReparentsChildren(t *testing.T) {
	s := newTestCategoryStore(t)
	ctx := context.Background()

	root := createTestCategory(t, s, "Root", "root", nil)
	mid := createTestCategory(t, s, "Mid", "mid", &root.ID)
	leaf := createTestCategory(t, s, "Leaf", "leaf", &mid.ID)

	if err := s.Delete(ctx, mid.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	got, err := s.GetByID(ctx, leaf.ID)
	if err != nil {
		t.Fatalf("GetByID(leaf) error = %v", err)
	}
	if got.ParentID == nil || *got.ParentID != root.ID {
		t.Errorf("leaf parent = %v, want %q (the grandparent)", got.ParentID, root.ID)
	}

	if err := s.Delete(ctx, root.ID); err != nil {
		t.Fatalf("Delete(root) error = %v", err)
	}
	got, err = s.GetByID(ctx, leaf.ID)
	if err != nil {
		t.Fatalf("GetByID(leaf) error = %v", err)
	}
	if got.ParentID != nil {
		t.Errorf("leaf parent = %v after root delete, want nil", *got.ParentID)
	}
}

func TestCategoryDelete_NotFound(t *testing.T) {
	s := newTestCategoryStore(t)

	err := s.Delete(context.Background(), "no-such-id")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("Delete() error = %v, want ErrNotFound", err)
	}
}

func TestCategoryList_Ordering(t *testing.T) {
	s := newTestCategoryStore(t)
	ctx := context.Background()

	b := &model.Category{Name: "Bravo", Slug: "bravo", SortOrder: 2}
	a := &model.Category{Name: "Alpha", Slug: "alpha", SortOrder: 1}
	for _, c := range []*model.Category{b, a} {
		if err := s.Create(ctx, c); err != nil {
			t.Fatalf("Create(%s) error = %v", c.Name, err)
		}
	}

	list, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("List() returned %d categories, want 2", len(list))
	}
	if list[0].Slug != "alpha" || list[1].Slug != "bravo" {
		t.Errorf("List() order = %s, %s; want alpha, bravo", list[0].Slug, list[1].Slug)
	}
}

func TestCategoryUpdate(t *testing.T) {
	s := newTestCategoryStore(t)
	ctx := context.Background()

	category := createTestCategory(t, s, "News", "news", nil)
	category.Name = "World News"
	category.Slug = "world-news"
	category.SortOrder = 5

	if err := s.Update(ctx, category); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got, err := s.GetByID(ctx, category.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Slug != "world-news" || got.SortOrder != 5 {
		t.Errorf("after update: slug=%q sortOrder=%d", got.Slug, got.SortOrder)
	}
}
