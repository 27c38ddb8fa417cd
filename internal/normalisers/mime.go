package normalisers

import (
	"mime"
	"path/filepath"
	"strings"
)

// OctetStream is the MIME type used when a filename's type cannot be detected.
const OctetStream = "application/octet-stream"

// DOCXMIMEType is the MIME type of Word documents.
const DOCXMIMEType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// knownTypes pins the formats we extract, independent of the host's mime tables.
var knownTypes = map[string]string{
	".txt":      "text/plain",
	".text":     "text/plain",
	".log":      "text/plain",
	".csv":      "text/csv",
	".md":       "text/markdown",
	".markdown": "text/markdown",
	".htm":      "text/html",
	".html":     "text/html",
	".xhtml":    "application/xhtml+xml",
	".pdf":      "application/pdf",
	".docx":     DOCXMIMEType,
	".json":     "application/json",
}

// DetectMIMEType returns the MIME type for filename based on its extension.
// Parameters such as charset are dropped. Unknown or missing extensions
// yield OctetStream.
func DetectMIMEType(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return OctetStream
	}
	if t, ok := knownTypes[ext]; ok {
		return t
	}

	t := mime.TypeByExtension(ext)
	if t == "" {
		return OctetStream
	}
	mediaType, _, err := mime.ParseMediaType(t)
	if err != nil {
		return OctetStream
	}
	return mediaType
}
