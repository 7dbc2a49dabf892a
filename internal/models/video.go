package models

import (
	"io"
	"time"

	"github.com/google/uuid"
)

type Genre string

const (
	GenreAction         Genre = "action"
	GenreComedy         Genre = "comedy"
	GenreHorror         Genre = "horror"
	GenreFantasy        Genre = "fantasy"
	GenreDrama          Genre = "drama"
	GenreMystery        Genre = "mystery"
	GenreThriller       Genre = "thriller"
	GenreRomance        Genre = "romance"
	GenreScienceFiction Genre = "science fiction"
	GenreUnclassified   Genre = "unclassified"
)

var genres = map[Genre]struct{}{
	GenreAction:         {},
	GenreComedy:         {},
	GenreHorror:         {},
	GenreFantasy:        {},
	GenreDrama:          {},
	GenreMystery:        {},
	GenreThriller:       {},
	GenreRomance:        {},
	GenreScienceFiction: {},
	GenreUnclassified:   {},
}

func (g Genre) Valid() bool {
	_, ok := genres[g]
	return ok
}

// CatalogEntry is the user visible record of a finished upload.
type CatalogEntry struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Title        string    `json:"title" db:"title" validate:"required,lte=255"`
	Description  string    `json:"description" db:"description" validate:"required"`
	Genre        Genre     `json:"genre" db:"genre" validate:"required,genre"`
	VideoURL     string    `json:"video" db:"video_url" validate:"required,url"`
	ThumbnailURL string    `json:"thumbnail" db:"thumbnail_url" validate:"required,url"`
	Views        int64     `json:"views" db:"views" validate:"gte=0"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// VideoMeta is the descriptive part of an upload that ends up in the catalog.
type VideoMeta struct {
	Title       string `json:"title" form:"title" validate:"required,lte=255"`
	Description string `json:"description" form:"description" validate:"required"`
	Genre       Genre  `json:"genre" form:"genre" validate:"omitempty,genre"`
}

// UploadFile is a handle to one received file. Open may be called once per read.
type UploadFile struct {
	Filename    string
	Size        int64
	ContentType string
	Open        func() (io.ReadCloser, error)
}

type RawUpload struct {
	VideoMeta
	Video     *UploadFile
	Thumbnail *UploadFile
}
