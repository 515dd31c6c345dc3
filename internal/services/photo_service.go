package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"lens-backend/internal/imgproc"
	"lens-backend/internal/models"
	"lens-backend/internal/store"
)

var (
	ErrCorruptUpload = errors.New("The uploaded file appears to be corrupted or invalid.")
	ErrEmptyComment  = errors.New("Comment cannot be empty.")
	ErrNotOwner      = errors.New("You do not have permission to delete this photo.")
)

// ExploreCategories is the fixed category strip on the explore page.
var ExploreCategories = []string{"Landscape", "Portrait", "Architecture", "Nature", "Street", "Abstract"}

type PhotoService struct {
	store     *store.Store
	uploadDir string
	maxWidth  int
	quality   int
}

func NewPhotoService(st *store.Store, uploadDir string, maxWidth, quality int) *PhotoService {
	return &PhotoService{store: st, uploadDir: uploadDir, maxWidth: maxWidth, quality: quality}
}

// Ingest normalizes an already-saved upload and creates the photo row.
// On any failure the file is removed, so a corrupt upload leaves neither
// a row nor a file behind.
func (s *PhotoService) Ingest(ctx context.Context, userID string, meta models.PhotoUpload, storedPath string) (*models.Photo, error) {
	finalPath, err := imgproc.Normalize(storedPath, s.maxWidth, s.quality)
	if err != nil {
		os.Remove(storedPath)
		return nil, ErrCorruptUpload
	}

	photo := &models.Photo{
		UserID:      userID,
		Title:       meta.Title,
		Category:    meta.Category,
		Description: meta.Description,
		Location:    meta.Location,
		Tags:        meta.Tags,
		Filename:    filepath.Base(finalPath),
	}
	if err := s.store.CreatePhoto(ctx, photo); err != nil {
		os.Remove(finalPath)
		return nil, fmt.Errorf("creating photo: %w", err)
	}
	return photo, nil
}

// Delete removes the photo, its comments and saved edges, and its file.
// Only the owner may delete.
func (s *PhotoService) Delete(ctx context.Context, userID, photoID string) error {
	photo, err := s.store.PhotoByID(ctx, photoID)
	if err != nil {
		return err
	}
	if photo.UserID != userID {
		return ErrNotOwner
	}

	path := filepath.Join(s.uploadDir, photo.Filename)
	if _, err := os.Stat(path); err == nil {
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("removing photo file: %w", err)
		}
	}
	return s.store.DeletePhoto(ctx, photoID)
}

// PhotoPage is everything the photo detail view shows.
type PhotoPage struct {
	Photo        *models.Photo               `json:"photo"`
	Photographer *models.UserPublic          `json:"photographer"`
	Comments     []*models.CommentWithAuthor `json:"comments"`
	IsSaved      bool                        `json:"is_saved"`
}

// View increments the view counter on every visit and returns the
// detail page data. viewerID may be empty for anonymous visits.
func (s *PhotoService) View(ctx context.Context, photoID, viewerID string) (*PhotoPage, error) {
	photo, err := s.store.PhotoByID(ctx, photoID)
	if err != nil {
		return nil, err
	}
	views, err := s.store.IncrementViews(ctx, photoID)
	if err != nil {
		return nil, err
	}
	photo.Views = views

	owner, err := s.store.UserByID(ctx, photo.UserID)
	if err != nil {
		return nil, err
	}
	comments, err := s.store.CommentsForPhoto(ctx, photoID)
	if err != nil {
		return nil, err
	}

	page := &PhotoPage{Photo: photo, Photographer: owner.Public(), Comments: comments}
	if viewerID != "" {
		saved, err := s.store.IsSaved(ctx, viewerID, photoID)
		if err != nil {
			return nil, err
		}
		page.IsSaved = saved
	}
	return page, nil
}

// Like bumps the like counter unconditionally and returns the new count.
func (s *PhotoService) Like(ctx context.Context, photoID string) (int64, error) {
	if _, err := s.store.PhotoByID(ctx, photoID); err != nil {
		return 0, err
	}
	return s.store.IncrementLikes(ctx, photoID)
}

// Comment rejects blank content before any write.
func (s *PhotoService) Comment(ctx context.Context, userID, photoID, content string) (*models.Comment, error) {
	if _, err := s.store.PhotoByID(ctx, photoID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyComment
	}

	comment := &models.Comment{PhotoID: photoID, UserID: userID, Content: content}
	if err := s.store.CreateComment(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// ToggleSave flips save-set membership and reports which way it went.
func (s *PhotoService) ToggleSave(ctx context.Context, userID, photoID string) (string, error) {
	if _, err := s.store.PhotoByID(ctx, photoID); err != nil {
		return "", err
	}

	saved, err := s.store.IsSaved(ctx, userID, photoID)
	if err != nil {
		return "", err
	}
	if saved {
		if err := s.store.UnsavePhoto(ctx, userID, photoID); err != nil {
			return "", err
		}
		return "unsaved", nil
	}
	if err := s.store.SavePhoto(ctx, userID, photoID); err != nil {
		return "", err
	}
	return "saved", nil
}

// Feed is the union of the user's own photos and those of everyone they
// follow, newest first.
func (s *PhotoService) Feed(ctx context.Context, userID string) ([]*models.Photo, error) {
	ids, err := s.store.FollowingIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.store.PhotosByUsers(ctx, append(ids, userID))
}

// ExplorePage is the global photo grid with derived tag and category strips.
type ExplorePage struct {
	Photos       []*models.Photo `json:"photos"`
	TrendingTags []string        `json:"trending_tags"`
	Categories   []string        `json:"categories"`
}

func (s *PhotoService) Explore(ctx context.Context) (*ExplorePage, error) {
	photos, err := s.store.AllPhotos(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var tags []string
	for _, p := range photos {
		for _, t := range strings.Split(p.Tags, ",") {
			t = strings.ToLower(strings.TrimSpace(t))
			if t != "" && !seen[t] {
				seen[t] = true
				tags = append(tags, t)
			}
		}
	}
	sort.Strings(tags)

	return &ExplorePage{Photos: photos, TrendingTags: tags, Categories: ExploreCategories}, nil
}

// Dashboard aggregates the signed-in user's stats.
type Dashboard struct {
	Photos      []*models.Photo `json:"photos"`
	TotalViews  int64           `json:"total_views"`
	TotalLikes  int64           `json:"total_likes"`
	SavedPhotos []*models.Photo `json:"saved_photos"`
	TopLabels   []string        `json:"top_photos_labels"`
	TopViews    []int64         `json:"top_photos_views"`
	TopLikes    []int64         `json:"top_photos_likes"`
}

func (s *PhotoService) Dashboard(ctx context.Context, userID string) (*Dashboard, error) {
	photos, err := s.store.PhotosByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	saved, err := s.store.SavedPhotos(ctx, userID)
	if err != nil {
		return nil, err
	}
	top, err := s.store.TopPhotosByUser(ctx, userID, 10)
	if err != nil {
		return nil, err
	}

	d := &Dashboard{Photos: photos, SavedPhotos: saved}
	for _, p := range photos {
		d.TotalViews += p.Views
		d.TotalLikes += p.Likes
	}
	for _, p := range top {
		d.TopLabels = append(d.TopLabels, p.Title)
		d.TopViews = append(d.TopViews, p.Views)
		d.TopLikes = append(d.TopLikes, p.Likes)
	}
	return d, nil
}

// Portfolio is a user's public page.
type Portfolio struct {
	User        *models.UserPublic `json:"user"`
	Photos      []*models.Photo    `json:"photos"`
	TotalViews  int64              `json:"total_views"`
	TotalLikes  int64              `json:"total_likes"`
	IsConnected bool               `json:"is_connected"`
}

// PortfolioFor builds a user's public portfolio. viewerID may be empty.
func (s *PhotoService) PortfolioFor(ctx context.Context, userID, viewerID string) (*Portfolio, error) {
	user, err := s.store.UserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	photos, err := s.store.PhotosByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	p := &Portfolio{User: user.Public(), Photos: photos}
	for _, ph := range photos {
		p.TotalViews += ph.Views
		p.TotalLikes += ph.Likes
	}
	if viewerID != "" && viewerID != userID {
		connected, err := s.store.IsFollowing(ctx, viewerID, userID)
		if err != nil {
			return nil, err
		}
		p.IsConnected = connected
	}
	return p, nil
}
