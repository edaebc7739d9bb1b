package domain

// ExtractionStatus is the terminal status of a pipeline run.
type ExtractionStatus string

const (
	ExtractionSucceeded ExtractionStatus = "succeeded"
	ExtractionFailed    ExtractionStatus = "failed"
)

// FileType identifies an accepted upload kind.
type FileType string

const (
	FileTypePDF   FileType = "pdf"
	FileTypeExcel FileType = "excel"
)

// AllowedExtensions maps lowercase file extensions to their file type.
var AllowedExtensions = map[string]FileType{
	"pdf":  FileTypePDF,
	"xlsx": FileTypeExcel,
	"xls":  FileTypeExcel,
}

// AllowedContentTypes lists declared MIME types accepted for upload. Browsers
// frequently send a generic octet-stream for spreadsheets, so those uploads
// are admitted on extension alone.
var AllowedContentTypes = map[string]struct{}{
	"application/pdf": {},
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": {},
	"application/vnd.ms-excel": {},
	"application/octet-stream": {},
	"":                         {},
}
