package index

// FileType categorizes a document by how its text was extracted.
type FileType string

const (
	FileTypeText    FileType = "text"
	FileTypePDF     FileType = "pdf"
	FileTypeTabular FileType = "tabular"
	FileTypeSlide   FileType = "slide"
)

// DocumentRecord is one fully extracted document. Records are immutable once
// constructed; a rebuild replaces the whole set, never individual records.
type DocumentRecord struct {
	ID            int      `json:"id"`
	Filename      string   `json:"filename"`
	Filetype      FileType `json:"filetype"`
	Content       string   `json:"content"`
	ContentLength int      `json:"content_length"`
}

var supportedExtensions = map[string]FileType{
	".txt":      FileTypeText,
	".md":       FileTypeText,
	".markdown": FileTypeText,
	".log":      FileTypeText,
	".pdf":      FileTypePDF,
	".csv":      FileTypeTabular,
	".tsv":      FileTypeTabular,
	".pptx":     FileTypeSlide,
}
