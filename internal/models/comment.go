package models

// Comment is immutable once written; it only disappears when its photo
// is deleted.
type Comment struct {
	ID        string `db:"id" json:"id"`
	PhotoID   string `db:"photo_id" json:"photo_id"`
	UserID    string `db:"user_id" json:"user_id"`
	Content   string `db:"content" json:"content"`
	CreatedAt int64  `db:"created_at" json:"created_at"`
}

// CommentWithAuthor joins the commenter's display fields for the photo page.
type CommentWithAuthor struct {
	Comment
	AuthorName   string `db:"author_name" json:"author_name"`
	AuthorAvatar string `db:"author_avatar" json:"author_avatar"`
}
