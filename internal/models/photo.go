package models

// Photo is a single uploaded asset and its descriptive metadata.
// Tags are kept as the comma-joined string the uploader typed; they are
// split only for the explore page's trending list.
type Photo struct {
	ID          string `db:"id" json:"id"`
	UserID      string `db:"user_id" json:"user_id"`
	Title       string `db:"title" json:"title"`
	Category    string `db:"category" json:"category"`
	Description string `db:"description" json:"description"`
	Location    string `db:"location" json:"location"`
	Tags        string `db:"tags" json:"tags"`
	Filename    string `db:"filename" json:"filename"`
	Views       int64  `db:"views" json:"views"`
	Likes       int64  `db:"likes" json:"likes"`
	UploadedAt  int64  `db:"uploaded_at" json:"uploaded_at"`
}

// PhotoUpload carries the metadata form fields that accompany an upload.
type PhotoUpload struct {
	Title       string `json:"title" form:"title"`
	Category    string `json:"category" form:"category"`
	Description string `json:"description" form:"description"`
	Location    string `json:"location" form:"location"`
	Tags        string `json:"tags" form:"tags"`
}
