package auth

import "github.com/inkwell-cms/inkwell/internal/model"

// Role ranks. The hierarchy is a strict total order: admin outranks
// editor outranks author. An unknown role ranks 0 and so passes no
// check, including checks against its own value.
var roleRank = map[model.Role]int{
	model.RoleAdmin:  3,
	model.RoleEditor: 2,
	model.RoleAuthor: 1,
}

// HasRole reports whether the user's role meets or exceeds required.
// Pure predicate; never touches storage.
func HasRole(user *model.User, required model.Role) bool {
	if user == nil {
		return false
	}
	have := roleRank[user.Role]
	want := roleRank[required]
	return have > 0 && want > 0 && have >= want
}

// CanManageUsers reports whether the user may create, edit, deactivate
// or delete accounts. Admin only.
func CanManageUsers(user *model.User) bool {
	return HasRole(user, model.RoleAdmin)
}

// CanManageCategories reports whether the user may edit the taxonomy.
// Admin or editor.
func CanManageCategories(user *model.User) bool {
	return HasRole(user, model.RoleEditor)
}

// CanEditPost reports whether the user may edit the post owned by
// postAuthorID: admins may edit anything, others only their own posts.
func CanEditPost(user *model.User, postAuthorID string) bool {
	if user == nil {
		return false
	}
	return HasRole(user, model.RoleAdmin) || (user.ID != "" && user.ID == postAuthorID)
}

// CanDeletePost has the same ownership rule as CanEditPost.
func CanDeletePost(user *model.User, postAuthorID string) bool {
	return CanEditPost(user, postAuthorID)
}
