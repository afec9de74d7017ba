package message

import (
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"spysignal/internal/domain"
)

// UnreadablePlaceholder is shown in place of a message that failed to
// decrypt.
const UnreadablePlaceholder = "[unreadable message]"

var errBadDataURI = errors.New("malformed data URI")

// isFatal reports whether err should stop a feed rather than mark one
// message unreadable.
func isFatal(err error) bool {
	return errors.Is(err, domain.ErrIdentityUnavailable)
}

// Describe renders a decrypted message as a single line of text.
func Describe(m domain.DecryptedMessage) string {
	if !m.Readable {
		return UnreadablePlaceholder
	}
	switch m.Payload.Kind {
	case domain.PayloadFile:
		data, _, err := DecodeFileData(m.Payload.Data)
		if err != nil {
			return fmt.Sprintf("[file] %s (undecodable)", displayName(m.Payload.Name))
		}
		return fmt.Sprintf("[file] %s (%d bytes)", displayName(m.Payload.Name), len(data))
	default:
		return EscapeControls(m.Payload.Body)
	}
}

// LocalFileName returns the name a received file is saved under: the base
// of the sender's name when it is a plain local name, else file-<record id>.
func LocalFileName(m domain.DecryptedMessage) string {
	name := filepath.Base(strings.TrimSpace(m.Payload.Name))
	if name == "." || !filepath.IsLocal(name) ||
		strings.ContainsAny(name, `/\`) || strings.IndexFunc(name, isUnsafeRune) >= 0 {
		return fmt.Sprintf("file-%d", m.Record.ID)
	}
	return name
}

// EscapeControls replaces terminal control characters and bidi overrides
// with their Go escape form so peer text cannot drive the terminal.
func EscapeControls(s string) string {
	if strings.IndexFunc(s, isUnsafeRune) < 0 {
		return s
	}
	var b strings.Builder
	for _, r := range s {
		if isUnsafeRune(r) {
			q := strconv.QuoteRune(r)
			b.WriteString(q[1 : len(q)-1])
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isUnsafeRune(r rune) bool {
	return unicode.IsControl(r) ||
		(r >= '\u202a' && r <= '\u202e') ||
		(r >= '\u2066' && r <= '\u2069')
}

// EncodeFileData builds the data URI a browser client would send for a file
// with the given contents.
func EncodeFileData(name string, data []byte) string {
	ctype := mime.TypeByExtension(filepath.Ext(name))
	if ctype == "" {
		ctype = http.DetectContentType(data)
	}
	if i := strings.IndexByte(ctype, ';'); i >= 0 {
		ctype = ctype[:i]
	}
	return "data:" + ctype + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// DecodeFileData decodes a file payload's data, which is either a base64
// data URI or bare base64. It returns the bytes and the declared media type.
func DecodeFileData(s string) ([]byte, string, error) {
	if !strings.HasPrefix(s, "data:") {
		b, err := base64.StdEncoding.DecodeString(s)
		return b, "", err
	}
	meta, body, ok := strings.Cut(s[len("data:"):], ",")
	if !ok {
		return nil, "", errBadDataURI
	}
	ctype, isB64 := strings.CutSuffix(meta, ";base64")
	if !isB64 {
		return nil, "", fmt.Errorf("%w: not base64", errBadDataURI)
	}
	b, err := base64.StdEncoding.DecodeString(body)
	return b, ctype, err
}

func displayName(name string) string {
	if name == "" {
		return "unnamed"
	}
	return EscapeControls(name)
}
