package uploads

import (
	"path"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// AllowedExtensions lists the label photo formats accepted for upload.
var AllowedExtensions = []string{"png", "jpg", "jpeg", "gif", "webp"}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// Allowed reports whether name carries one of AllowedExtensions, ignoring case.
func Allowed(name string) bool {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return false
	}
	ext := strings.ToLower(name[i+1:])
	for _, allowed := range AllowedExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// SecureFilename reduces name to a flat ASCII file name that is safe to join
// with a directory. The result may be empty.
func SecureFilename(name string) string {
	decomposed := norm.NFKD.String(name)
	var b strings.Builder
	for _, r := range decomposed {
		if r <= unicode.MaxASCII {
			b.WriteRune(r)
		}
	}
	ascii := strings.NewReplacer("/", " ", "\\", " ").Replace(b.String())
	joined := strings.Join(strings.Fields(ascii), "_")
	return strings.Trim(unsafeChars.ReplaceAllString(joined, ""), "._")
}

// StoredName prefixes the sanitized name with id so uploads never collide.
// When sanitizing drops the extension, the original one is reattached.
func StoredName(id, original string) string {
	secure := SecureFilename(original)
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(original), "."))
	if secure == "" || !Allowed(secure) {
		if Allowed(original) {
			return id + "." + ext
		}
		return id
	}
	return id + "_" + secure
}
