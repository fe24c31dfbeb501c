// Package adms parses the plain-text "iclock" push protocol spoken by
// biometric attendance terminals.
package adms

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/attendance"
)

const (
	TableAttLog  = "ATTLOG"
	TableOperLog = "OPERLOG"

	timestampLayout = "2006-01-02 15:04:05"
	maxLineLength   = 4096
)

// Record is one ATTLOG line.
type Record struct {
	Line       int
	PIN        string
	Timestamp  time.Time
	Kind       attendance.PunchKind
	VerifyMode *int
}

// ParseResult counts what happened to every non-empty line.
type ParseResult struct {
	Records []Record
	// Ignored lines are well formed but carry a status that is not a
	// check-in or check-out, e.g. break out/in.
	Ignored int
	// Malformed lines could not be parsed.
	Malformed []int
}

// Total is the number of non-empty lines seen.
func (r ParseResult) Total() int {
	return len(r.Records) + r.Ignored + len(r.Malformed)
}

// ParseAttLog parses an ATTLOG body: tab separated PIN, local timestamp,
// status and verify mode, one punch per line. Timestamps are wall clock
// times of the terminal and are interpreted in loc.
func ParseAttLog(r io.Reader, loc *time.Location) (ParseResult, error) {
	if loc == nil {
		loc = time.UTC
	}

	var result ParseResult
	br := bufio.NewReader(r)

	line := 0
	for {
		raw, tooLong, err := readLine(br)
		if err == io.EOF {
			break
		}
		if err != nil {
			return result, fmt.Errorf("failed to read attlog body: %w", err)
		}
		line++
		if tooLong {
			result.Malformed = append(result.Malformed, line)
			continue
		}
		text := strings.TrimRight(raw, "\r")
		if strings.TrimSpace(text) == "" {
			continue
		}

		fields := strings.Split(text, "\t")
		if len(fields) < 3 {
			result.Malformed = append(result.Malformed, line)
			continue
		}

		pin := strings.TrimSpace(fields[0])
		ts, err := time.ParseInLocation(timestampLayout, strings.TrimSpace(fields[1]), loc)
		if pin == "" || err != nil {
			result.Malformed = append(result.Malformed, line)
			continue
		}
		status, err := strconv.Atoi(strings.TrimSpace(fields[2]))
		if err != nil {
			result.Malformed = append(result.Malformed, line)
			continue
		}

		kind, ok := KindFromStatus(status)
		if !ok {
			result.Ignored++
			continue
		}

		rec := Record{Line: line, PIN: pin, Timestamp: ts, Kind: kind}
		if len(fields) > 3 {
			if v, err := strconv.Atoi(strings.TrimSpace(fields[3])); err == nil {
				rec.VerifyMode = &v
			}
		}
		result.Records = append(result.Records, rec)
	}
	return result, nil
}

// readLine returns the next line without its terminator. A line longer than
// maxLineLength is consumed to its end and reported as tooLong so the rest of
// the body can still be read.
func readLine(br *bufio.Reader) (string, bool, error) {
	var buf []byte
	tooLong := false
	for {
		chunk, isPrefix, err := br.ReadLine()
		if err != nil {
			if err == io.EOF && (len(buf) > 0 || tooLong) {
				return string(buf), tooLong, nil
			}
			return "", false, err
		}
		if !tooLong {
			if len(buf)+len(chunk) > maxLineLength {
				tooLong = true
				buf = nil
			} else {
				buf = append(buf, chunk...)
			}
		}
		if !isPrefix {
			return string(buf), tooLong, nil
		}
	}
}

// KindFromStatus maps the terminal punch state. 0 and 4 (overtime in) are
// check-ins, 1 and 5 (overtime out) check-outs.
func KindFromStatus(status int) (attendance.PunchKind, bool) {
	switch status {
	case 0, 4:
		return attendance.PunchCheckIn, true
	case 1, 5:
		return attendance.PunchCheckOut, true
	}
	return "", false
}

// HandshakeReply is the option block returned on the initial GET of
// /iclock/cdata. TimeZone is the whole-hour offset of loc at now.
func HandshakeReply(serialNumber string, loc *time.Location, now time.Time) string {
	if loc == nil {
		loc = time.UTC
	}
	_, offset := now.In(loc).Zone()

	var b strings.Builder
	fmt.Fprintf(&b, "GET OPTION FROM: %s\n", serialNumber)
	b.WriteString("ATTLOGStamp=None\n")
	b.WriteString("OPERLOGStamp=9999\n")
	b.WriteString("ATTPHOTOStamp=None\n")
	b.WriteString("ErrorDelay=30\n")
	b.WriteString("Delay=10\n")
	b.WriteString("TransTimes=00:00;14:05\n")
	b.WriteString("TransInterval=1\n")
	b.WriteString("TransFlag=TransData AttLog\n")
	fmt.Fprintf(&b, "TimeZone=%d\n", offset/3600)
	b.WriteString("Realtime=1\n")
	b.WriteString("Encrypt=None\n")
	return b.String()
}

// AckReply acknowledges n stored lines.
func AckReply(n int) string {
	return fmt.Sprintf("OK: %d", n)
}
