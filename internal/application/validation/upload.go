package validation

import (
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// FileUpload describes a submitted file. Header holds the leading bytes of
// the content, enough for type sniffing.
type FileUpload struct {
	Filename string
	Size     int64
	Header   []byte
}

// UploadRule limits accepted files by sniffed type and size.
type UploadRule struct {
	Field string
	Mimes []string // extensions without dot
	MaxKB int64
}

// LogoRule accepts common image formats up to 2 MB
var LogoRule = UploadRule{
	Field: "logo",
	Mimes: []string{"jpeg", "png", "jpg", "gif", "webp"},
	MaxKB: 2048,
}

var mimeByExt = map[string]string{
	"jpeg": "image/jpeg",
	"jpg":  "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"webp": "image/webp",
}

// ValidateUpload checks size and type. Type is decided by content, never by
// the client's file name or declared content type.
func ValidateUpload(f FileUpload, rule UploadRule) FieldErrors {
	var errs FieldErrors
	field := humanize(rule.Field)

	detected := mimetype.Detect(f.Header)
	allowed := false
	for _, ext := range rule.Mimes {
		if m, ok := mimeByExt[ext]; ok && detected.Is(m) {
			allowed = true
			break
		}
	}
	if !allowed {
		errs = append(errs, FieldError{
			Field:   rule.Field,
			Rule:    "mimes",
			Message: "O campo " + field + " deve ser um arquivo do tipo: " + strings.Join(rule.Mimes, ", ") + ".",
		})
	}

	if rule.MaxKB > 0 && f.Size > rule.MaxKB*1024 {
		errs = append(errs, FieldError{
			Field:   rule.Field,
			Rule:    "max",
			Message: "O campo " + field + " não pode ser superior a " + strconv.FormatInt(rule.MaxKB, 10) + " kilobytes.",
		})
	}
	return errs
}

// Extension returns the canonical file extension of the sniffed content,
// including the dot
func Extension(header []byte) string {
	return mimetype.Detect(header).Extension()
}

// ContentType returns the sniffed media type of content
func ContentType(content []byte) string {
	return mimetype.Detect(content).String()
}
