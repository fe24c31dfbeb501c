package storage

import (
	"bufio"
	"io"
	"net/http"
	"strings"
)

// Sniff detects the content type of r from its first bytes. The returned
// reader replays those bytes and stops after limit bytes.
func Sniff(r io.Reader, limit int64) (io.Reader, string) {
	br := bufio.NewReader(io.LimitReader(r, limit))
	head, _ := br.Peek(512)
	contentType := http.DetectContentType(head)
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	return br, contentType
}
