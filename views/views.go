// Package views projects model entities into response shapes relative to an
// explicit viewer identity. Nothing here reads ambient request state: the
// viewer ID (0 for unauthenticated) is always an argument, which is what
// makes anonymity masking and viewer-vote computation testable in isolation.
package views

import (
	"time"

	"github.com/campuslink/campuslink/models"
)

// TagView is the uniform {id, name} tag projection used everywhere.
type TagView struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// FileView exposes a stored file's serving path and mime type.
type FileView struct {
	ID       uint   `json:"id"`
	URL      string `json:"url"`
	MimeType string `json:"mime_type"`
}

// DesignationView is a profile designation.
type DesignationView struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Verified bool   `json:"verified"`
}

// CollegeRef is the compact college projection embedded in user views.
type CollegeRef struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// UserView is the author/profile projection embedded in content views.
type UserView struct {
	ID           uint              `json:"id"`
	Username     string            `json:"username"`
	FirstName    string            `json:"first_name"`
	LastName     string            `json:"last_name"`
	Email        string            `json:"email"`
	College      *CollegeRef       `json:"college"`
	Picture      *FileView         `json:"picture"`
	Designations []DesignationView `json:"designations"`
}

// PostView is the viewer-relative projection of a post. Vote membership is
// never exposed, only the two cardinalities and the viewer's own state.
type PostView struct {
	ID          uint       `json:"id"`
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	Created     time.Time  `json:"created"`
	Anonymous   bool       `json:"anonymous"`
	Visibility  string     `json:"visibility"`
	Tags        []TagView  `json:"tags"`
	Attachments []FileView `json:"attachments"`
	Upvotes     int        `json:"upvotes"`
	Downvotes   int        `json:"downvotes"`
	UserVote    int        `json:"user_vote"`
	User        *UserView  `json:"user"`
}

// ReplyView is the viewer-relative projection of a reply.
type ReplyView struct {
	ID         uint      `json:"id"`
	PostID     uint      `json:"post_id"`
	Content    string    `json:"content"`
	Created    time.Time `json:"created"`
	Visibility string    `json:"visibility"`
	Upvotes    int       `json:"upvotes"`
	Downvotes  int       `json:"downvotes"`
	UserVote   int       `json:"user_vote"`
	User       *UserView `json:"user"`
}

// NewFileView builds a FileView; the URL is the media serving path.
func NewFileView(f *models.File) *FileView {
	if f == nil {
		return nil
	}
	return &FileView{ID: f.ID, URL: "/media/" + f.Path, MimeType: f.MimeType}
}

// NewUserView projects a user for the given viewer. Unverified designations
// are included only when the viewer is the user themselves.
func NewUserView(u *models.User, viewerID uint) *UserView {
	if u == nil {
		return nil
	}
	v := &UserView{
		ID:           u.ID,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Email:        u.Email,
		Picture:      NewFileView(u.Picture),
		Designations: []DesignationView{},
	}
	if u.College != nil {
		v.College = &CollegeRef{ID: u.College.ID, Name: u.College.Name}
	}
	for _, d := range u.Designations {
		if !d.Verified && viewerID != u.ID {
			continue
		}
		v.Designations = append(v.Designations, DesignationView{ID: d.ID, Name: d.Name, Verified: d.Verified})
	}
	return v
}

// NewPostView renders a post for the given viewer. The author is withheld
// from everyone but the owner when the post is anonymous.
func NewPostView(p *models.Post, viewerID uint) PostView {
	v := PostView{
		ID:          p.ID,
		Title:       p.Title,
		Content:     p.Content,
		Created:     p.CreatedAt,
		Anonymous:   p.Anonymous,
		Visibility:  p.Visibility.String(),
		Tags:        tagViews(p.Tags),
		Attachments: fileViews(p.Attachments),
		Upvotes:     len(p.Upvoters),
		Downvotes:   len(p.Downvoters),
		UserVote:    voteStateOf(p.Upvoters, p.Downvoters, viewerID),
	}
	if !p.Anonymous || viewerID == p.UserID {
		v.User = NewUserView(&p.User, viewerID)
	}
	return v
}

// NewPostViews renders a slice of posts for the given viewer.
func NewPostViews(posts []models.Post, viewerID uint) []PostView {
	out := make([]PostView, 0, len(posts))
	for i := range posts {
		out = append(out, NewPostView(&posts[i], viewerID))
	}
	return out
}

// NewReplyView renders a reply for the given viewer.
func NewReplyView(r *models.Reply, viewerID uint) ReplyView {
	return ReplyView{
		ID:         r.ID,
		PostID:     r.PostID,
		Content:    r.Content,
		Created:    r.CreatedAt,
		Visibility: r.Visibility.String(),
		Upvotes:    len(r.Upvoters),
		Downvotes:  len(r.Downvoters),
		UserVote:   voteStateOf(r.Upvoters, r.Downvoters, viewerID),
		User:       NewUserView(&r.User, viewerID),
	}
}

// NewReplyViews renders a slice of replies for the given viewer.
func NewReplyViews(replies []models.Reply, viewerID uint) []ReplyView {
	out := make([]ReplyView, 0, len(replies))
	for i := range replies {
		out = append(out, NewReplyView(&replies[i], viewerID))
	}
	return out
}

// CollegeView is the full college projection for the college endpoints.
type CollegeView struct {
	ID       uint      `json:"id"`
	Name     string    `json:"name"`
	Location string    `json:"location"`
	Phone    string    `json:"phone"`
	Homepage string    `json:"homepage"`
	Logo     *FileView `json:"logo"`
	Cover    *FileView `json:"cover"`
	Tags     []TagView `json:"tags"`
}

// NewCollegeView renders a college. Email domains are intentionally omitted:
// they are registration plumbing, not public profile data.
func NewCollegeView(c *models.College) CollegeView {
	return CollegeView{
		ID:       c.ID,
		Name:     c.Name,
		Location: c.Location,
		Phone:    c.Phone,
		Homepage: c.Homepage,
		Logo:     NewFileView(c.Logo),
		Cover:    NewFileView(c.Cover),
		Tags:     tagViews(c.Tags),
	}
}

// NewCollegeViews renders a slice of colleges.
func NewCollegeViews(colleges []models.College) []CollegeView {
	out := make([]CollegeView, 0, len(colleges))
	for i := range colleges {
		out = append(out, NewCollegeView(&colleges[i]))
	}
	return out
}

func tagViews(tags []models.Tag) []TagView {
	out := make([]TagView, 0, len(tags))
	for _, t := range tags {
		out = append(out, TagView{ID: t.ID, Name: t.Name})
	}
	return out
}

func fileViews(files []models.File) []FileView {
	out := make([]FileView, 0, len(files))
	for i := range files {
		out = append(out, *NewFileView(&files[i]))
	}
	return out
}

// voteStateOf derives the viewer's vote from the membership sets. The sets
// are mutually exclusive by construction, so scan order is irrelevant.
func voteStateOf(up, down []models.User, viewerID uint) int {
	if viewerID == 0 {
		return 0
	}
	for _, u := range up {
		if u.ID == viewerID {
			return 1
		}
	}
	for _, u := range down {
		if u.ID == viewerID {
			return -1
		}
	}
	return 0
}
