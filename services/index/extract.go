package index

import (
	"archive/zip"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Read at most this much of any single file to keep extraction memory-bounded.
const maxFileSize = 10 * 1024 * 1024

// extractContent turns a file on disk into plain text. The file type is decided
// by extension; unknown extensions and malformed files are errors the caller is
// expected to log and skip.
func extractContent(path string) (string, FileType, error) {
	filetype, ok := supportedExtensions[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return "", "", &UnsupportedTypeError{Path: path}
	}

	var content string
	var err error

	switch filetype {
	case FileTypeText:
		content, err = readTextFile(path)
	case FileTypePDF:
		content, err = readPDFFile(path)
	case FileTypeTabular:
		content, err = readTabularFile(path)
	case FileTypeSlide:
		content, err = readSlideFile(path)
	}
	if err != nil {
		return "", "", &ExtractionError{Path: path, Reason: err.Error()}
	}

	return content, filetype, nil
}

func readTextFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return "", err
	}

	if stat.Size() > maxFileSize {
		buffer := make([]byte, maxFileSize)
		n, err := file.Read(buffer)
		if err != nil && err != io.EOF {
			return "", err
		}
		return string(buffer[:n]), nil
	}

	content, err := io.ReadAll(file)
	if err != nil {
		return "", err
	}

	return string(content), nil
}

func readPDFFile(path string) (string, error) {
	file, reader, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	var allText strings.Builder
	totalPages := reader.NumPage()
	for pageIndex := 1; pageIndex <= totalPages; pageIndex++ {
		page := reader.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		allText.WriteString(text)
		allText.WriteString("\n")
	}

	return allText.String(), nil
}

func readTabularFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	if strings.EqualFold(filepath.Ext(path), ".tsv") {
		reader.Comma = '\t'
	}

	var rows strings.Builder
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		rows.WriteString(strings.Join(record, " "))
		rows.WriteString("\n")
	}

	return rows.String(), nil
}

// Slide decks are zip archives of DrawingML XML; the visible text lives in
// <a:t> elements of the per-slide parts.
var slideTextRegex = regexp.MustCompile(`<a:t>([^<]*)</a:t>`)

func readSlideFile(path string) (string, error) {
	archive, err := zip.OpenReader(path)
	if err != nil {
		return "", err
	}
	defer archive.Close()

	var allText strings.Builder
	for _, part := range archive.File {
		if !strings.HasPrefix(part.Name, "ppt/slides/slide") || !strings.HasSuffix(part.Name, ".xml") {
			continue
		}

		reader, err := part.Open()
		if err != nil {
			continue
		}
		raw, err := io.ReadAll(io.LimitReader(reader, maxFileSize))
		reader.Close()
		if err != nil {
			continue
		}

		for _, match := range slideTextRegex.FindAllSubmatch(raw, -1) {
			allText.Write(match[1])
			allText.WriteString(" ")
		}
		allText.WriteString("\n")
	}

	return allText.String(), nil
}
