package referralapi

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxCVSize is the largest résumé accepted.
const MaxCVSize = 5 << 20

const (
	mimePDF  = "application/pdf"
	mimeDOC  = "application/msword"
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

var (
	errCVTooLarge = errors.New("cv exceeds size limit")
	errCVType     = errors.New("cv type not allowed")
)

// checkCV validates the declared and sniffed type of an uploaded résumé and
// returns the content type to store it with. The file is rewound before
// returning.
func checkCV(f multipart.File, h *multipart.FileHeader) (string, error) {
	if h.Size > MaxCVSize {
		return "", errCVTooLarge
	}

	declared, _, err := mime.ParseMediaType(h.Header.Get("Content-Type"))
	if err != nil {
		return "", errCVType
	}
	switch declared {
	case mimePDF, mimeDOC, mimeDOCX:
	default:
		return "", errCVType
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", err
	}

	sniffed := http.DetectContentType(head[:n])
	if !sniffAgrees(declared, sniffed) {
		return "", errCVType
	}
	return declared, nil
}

// sniffAgrees reports whether the sniffed type is plausible for declared.
// Word documents sniff as zip (DOCX) or an unknown binary (DOC).
func sniffAgrees(declared, sniffed string) bool {
	if declared == mimePDF {
		return sniffed == mimePDF
	}
	switch sniffed {
	case "application/zip", "application/octet-stream", mimeDOC:
		return true
	}
	return false
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// objectPath returns cvs/<vacante_id>/<unix-ms>_<uuid8>_<name>.
func objectPath(vacanteID string, now time.Time, filename string) string {
	name := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	name = unsafeName.ReplaceAllString(strings.Join(strings.Fields(name), "_"), "")
	if name == "" || name == "." {
		name = "cv"
	}
	return fmt.Sprintf("cvs/%s/%d_%s_%s", vacanteID, now.UnixMilli(), uuid.New().String()[:8], name)
}
