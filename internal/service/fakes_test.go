package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/inkwell-cms/inkwell/internal/apperror"
	"github.com/inkwell-cms/inkwell/internal/model"
)

// Hand-written in-memory fakes for the repository interfaces. Fakes
// (not a mock framework) keep the tests dependency-free and readable —
// what each fake does is right here.

func testLogger(t *testing.T) *slog.Logger {
	t.Helper()
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// ---------------------------------------------------------------------
// fakeUserRepo

type fakeUserRepo struct {
	users  map[string]*model.User
	nextID int

	// set to simulate failures on specific operations
	lastLoginErr error
	createErr    error

	lastLoginCalls int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*model.User), nextID: 1}
}

func (f *fakeUserRepo) Create(ctx context.Context, user *model.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	for _, existing := range f.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return apperror.Conflict("user", user.Email)
		}
	}
	user.ID = fmt.Sprintf("user-%d", f.nextID)
	f.nextID++
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, apperror.NotFound("user", email)
}

func (f *fakeUserRepo) List(ctx context.Context) ([]model.User, error) {
	var out []model.User
	for _, u := range f.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeUserRepo) Count(ctx context.Context) (int, error) {
	return len(f.users), nil
}

func (f *fakeUserRepo) Update(ctx context.Context, user *model.User) error {
	if _, ok := f.users[user.ID]; !ok {
		return apperror.NotFound("user", user.ID)
	}
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserRepo) UpdateLastLogin(ctx context.Context, id string) error {
	f.lastLoginCalls++
	if f.lastLoginErr != nil {
		return f.lastLoginErr
	}
	if u, ok := f.users[id]; ok {
		now := time.Now()
		u.LastLoginAt = &now
	}
	return nil
}

func (f *fakeUserRepo) Deactivate(ctx context.Context, id string) error {
	u, ok := f.users[id]
	if !ok {
		return apperror.NotFound("user", id)
	}
	u.IsActive = false
	return nil
}

func (f *fakeUserRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.users[id]; !ok {
		return apperror.NotFound("user", id)
	}
	delete(f.users, id)
	return nil
}

// ---------------------------------------------------------------------
// fakeCategoryRepo

type fakeCategoryRepo struct {
	categories map[string]*model.Category
	order      []string // insertion order stands in for sort ordering
	nextID     int
}

func newFakeCategoryRepo() *fakeCategoryRepo {
	return &fakeCategoryRepo{categories: make(map[string]*model.Category), nextID: 1}
}

func (f *fakeCategoryRepo) Create(ctx context.Context, category *model.Category) error {
	for _, c := range f.categories {
		if c.Slug == category.Slug {
			return apperror.Conflict("category", category.Slug)
		}
	}
	category.ID = fmt.Sprintf("cat-%d", f.nextID)
	f.nextID++
	copied := *category
	f.categories[category.ID] = &copied
	f.order = append(f.order, category.ID)
	return nil
}

func (f *fakeCategoryRepo) GetByID(ctx context.Context, id string) (*model.Category, error) {
	c, ok := f.categories[id]
	if !ok {
		return nil, apperror.NotFound("category", id)
	}
	copied := *c
	return &copied, nil
}

func (f *fakeCategoryRepo) GetBySlug(ctx context.Context, slug string) (*model.Category, error) {
	for _, c := range f.categories {
		if c.Slug == slug {
			copied := *c
			return &copied, nil
		}
	}
	return nil, apperror.NotFound("category", slug)
}

func (f *fakeCategoryRepo) List(ctx context.Context) ([]model.Category, error) {
	out := make([]model.Category, 0, len(f.order))
	for _, id := range f.order {
		out = append(out, *f.categories[id])
	}
	return out, nil
}

func (f *fakeCategoryRepo) Update(ctx context.Context, category *model.Category) error {
	if _, ok := f.categories[category.ID]; !ok {
		return apperror.NotFound("category", category.ID)
	}
	copied := *category
	f.categories[category.ID] = &copied
	return nil
}

func (f *fakeCategoryRepo) Delete(ctx context.Context, id string) error {
	node, ok := f.categories[id]
	if !ok {
		return apperror.NotFound("category", id)
	}
	for _, c := range f.categories {
		if c.ParentID != nil && *c.ParentID == id {
			c.ParentID = node.ParentID
		}
	}
	delete(f.categories, id)
	for i, oid := range f.order {
		if oid == id {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeCategoryRepo) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	for _, c := range f.categories {
		if c.Slug == slug && c.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

// ---------------------------------------------------------------------
// fakeTagRepo

type fakeTagRepo struct {
	tags   map[string]*model.Tag
	counts map[string]int // tag ID → post associations
	nextID int
}

func newFakeTagRepo() *fakeTagRepo {
	return &fakeTagRepo{tags: make(map[string]*model.Tag), counts: make(map[string]int), nextID: 1}
}

func (f *fakeTagRepo) Create(ctx context.Context, tag *model.Tag) error {
	for _, existing := range f.tags {
		if existing.Slug == tag.Slug {
			return apperror.Conflict("tag", tag.Slug)
		}
	}
	tag.ID = fmt.Sprintf("tag-%d", f.nextID)
	f.nextID++
	tag.CreatedAt = time.Now()
	copied := *tag
	f.tags[tag.ID] = &copied
	return nil
}

func (f *fakeTagRepo) GetByID(ctx context.Context, id string) (*model.Tag, error) {
	tag, ok := f.tags[id]
	if !ok {
		return nil, apperror.NotFound("tag", id)
	}
	copied := *tag
	return &copied, nil
}

func (f *fakeTagRepo) GetBySlug(ctx context.Context, slug string) (*model.Tag, error) {
	for _, tag := range f.tags {
		if tag.Slug == slug {
			copied := *tag
			return &copied, nil
		}
	}
	return nil, apperror.NotFound("tag", slug)
}

func (f *fakeTagRepo) GetByName(ctx context.Context, name string) (*model.Tag, error) {
	for _, tag := range f.tags {
		if strings.EqualFold(tag.Name, name) {
			copied := *tag
			return &copied, nil
		}
	}
	return nil, apperror.NotFound("tag", name)
}

func (f *fakeTagRepo) List(ctx context.Context) ([]model.Tag, error) {
	var out []model.Tag
	for id, tag := range f.tags {
		copied := *tag
		copied.PostCount = f.counts[id]
		out = append(out, copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeTagRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.tags[id]; !ok {
		return apperror.NotFound("tag", id)
	}
	delete(f.tags, id)
	return nil
}

func (f *fakeTagRepo) DeleteUnused(ctx context.Context) (int, error) {
	n := 0
	for id := range f.tags {
		if f.counts[id] == 0 {
			delete(f.tags, id)
			n++
		}
	}
	return n, nil
}

func (f *fakeTagRepo) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	for _, tag := range f.tags {
		if tag.Slug == slug && tag.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

// ---------------------------------------------------------------------
// fakeSettingRepo

type fakeSettingRepo struct {
	settings map[string]*model.Setting
	upserts  int
}

func newFakeSettingRepo() *fakeSettingRepo {
	return &fakeSettingRepo{settings: make(map[string]*model.Setting)}
}

func (f *fakeSettingRepo) Get(ctx context.Context, key string) (*model.Setting, error) {
	st, ok := f.settings[key]
	if !ok {
		return nil, apperror.NotFound("setting", key)
	}
	copied := *st
	return &copied, nil
}

func (f *fakeSettingRepo) List(ctx context.Context) ([]model.Setting, error) {
	var out []model.Setting
	for _, st := range f.settings {
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (f *fakeSettingRepo) Upsert(ctx context.Context, setting *model.Setting) error {
	f.upserts++
	setting.UpdatedAt = time.Now()
	copied := *setting
	f.settings[setting.Key] = &copied
	return nil
}
