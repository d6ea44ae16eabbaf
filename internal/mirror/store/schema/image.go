package schema

// ImageTable represents the 'mirror.image' table.
type ImageTable struct {
	Table string

	ID             string
	Instance       string
	Title          string
	Date           string
	StudioID       string
	StudioInstance string
	Photographer   string
	Details        string
	Path           string
	Width          string
	Height         string
	Size           string
	OCount         string
	UpdatedAt      string
	DeletedAt      string
}

// Image is the schema definition for mirror.image.
var Image = ImageTable{
	Table:          "mirror.image",
	ID:             "id",
	Instance:       "instance",
	Title:          "title",
	Date:           "date",
	StudioID:       "studio_id",
	StudioInstance: "studio_instance",
	Photographer:   "photographer",
	Details:        "details",
	Path:           "path",
	Width:          "width",
	Height:         "height",
	Size:           "size",
	OCount:         "o_count",
	UpdatedAt:      "updated_at",
	DeletedAt:      "deleted_at",
}

func (t ImageTable) Columns() []string {
	return []string{
		t.ID, t.Instance, t.Title, t.Date, t.StudioID, t.StudioInstance,
		t.Photographer, t.Details, t.Path, t.Width, t.Height, t.Size,
		t.OCount, t.UpdatedAt, t.DeletedAt,
	}
}

// GalleryTable represents the 'mirror.gallery' table.
type GalleryTable struct {
	Table string

	ID                 string
	Instance           string
	Title              string
	CoverImageID       string
	CoverImageInstance string
	StudioID           string
	StudioInstance     string
	Date               string
	Photographer       string
	Details            string
	UpdatedAt          string
	DeletedAt          string
}

// Gallery is the schema definition for mirror.gallery.
var Gallery = GalleryTable{
	Table:              "mirror.gallery",
	ID:                 "id",
	Instance:           "instance",
	Title:              "title",
	CoverImageID:       "cover_image_id",
	CoverImageInstance: "cover_image_instance",
	StudioID:           "studio_id",
	StudioInstance:     "studio_instance",
	Date:               "date",
	Photographer:       "photographer",
	Details:            "details",
	UpdatedAt:          "updated_at",
	DeletedAt:          "deleted_at",
}

func (t GalleryTable) Columns() []string {
	return []string{
		t.ID, t.Instance, t.Title, t.CoverImageID, t.CoverImageInstance,
		t.StudioID, t.StudioInstance, t.Date, t.Photographer, t.Details,
		t.UpdatedAt, t.DeletedAt,
	}
}
