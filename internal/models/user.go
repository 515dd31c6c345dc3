package models

// DefaultProfileImage is the avatar filename assigned to new accounts.
const DefaultProfileImage = "default_profile.jpg"

type User struct {
	ID           string `db:"id" json:"id"`
	FullName     string `db:"full_name" json:"full_name"`
	Email        string `db:"email" json:"email"`
	PasswordHash string `db:"password_hash" json:"-"`
	Bio          string `db:"bio" json:"bio"`
	ProfileImage string `db:"profile_image" json:"profile_image"`
	CreatedAt    int64  `db:"created_at" json:"created_at"`
}

// Public strips the fields other users should never see.
func (u *User) Public() *UserPublic {
	return &UserPublic{
		ID:           u.ID,
		FullName:     u.FullName,
		Bio:          u.Bio,
		ProfileImage: u.ProfileImage,
		CreatedAt:    u.CreatedAt,
	}
}

// UserPublic is the profile shape exposed on portfolios, search results
// and chat counterparts.
type UserPublic struct {
	ID           string `json:"id"`
	FullName     string `json:"full_name"`
	Bio          string `json:"bio"`
	ProfileImage string `json:"profile_image"`
	CreatedAt    int64  `json:"created_at"`
}

type RegisterRequest struct {
	FullName string `json:"full_name" form:"full_name"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

type LoginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

type AuthResponse struct {
	Token    string `json:"token"`
	UserID   string `json:"user_id"`
	FullName string `json:"full_name"`
}
