package services

import "github.com/yatube/community/internal/models"

// CanEdit reports whether actor may modify post. Only the author may; there
// is no role override.
func CanEdit(actor *models.User, post *models.Post) bool {
	if actor == nil || post == nil {
		return false
	}
	return actor.ID == post.AuthorID
}
