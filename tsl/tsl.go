package tsl

import (
	"regexp"
	"strings"
)

const (
	// Terminal Control
	CRLF = "\r\n"

	// Statement separator for multi-part command strings
	// (e.g. ".ec on;.iv;.ec off" is sent as three lines).
	Separator = ";"

	// Line markers
	CommandStart  = "CS:"
	Success       = "OK:"
	ErrorPrefix   = "ER:"
	TagPrefix     = "EP:"
	ReadingPrefix = "RI:"

	// Command tokens
	CmdVersion   = ".vr"
	CmdBattery   = ".bl"
	CmdInventory = ".iv"
	CmdEcho      = ".ec"

	// CmdInventoryOnce runs a single inventory sweep with streaming
	// enabled only for its duration.
	CmdInventoryOnce = ".ec on;.iv;.ec off"
)

// LineType identifies the nature of a line received from the reader.
type LineType int

const (
	TypeCommandStart LineType = iota // CS:<cmd>
	TypeSuccess                      // OK:
	TypeError                        // ER:<code>
	TypeTag                          // EP:<tag> or a bare hex tag id
	TypeReading                      // RI:<strength>
	TypeData                         // anything else (payload or noise)
)

// Older reader firmware emits tag identifiers as bare hex lines with no
// EP: marker.
var hexTag = regexp.MustCompile(`^[0-9A-Fa-f]+$`)

// Classify identifies the nature of a line from the reader.
func Classify(line string) LineType {
	if line == Success {
		return TypeSuccess
	}
	switch {
	case strings.HasPrefix(line, CommandStart):
		return TypeCommandStart
	case strings.HasPrefix(line, ErrorPrefix):
		return TypeError
	case strings.HasPrefix(line, TagPrefix):
		return TypeTag
	case strings.HasPrefix(line, ReadingPrefix):
		return TypeReading
	}
	if IsTag(line) {
		return TypeTag
	}
	return TypeData
}

// Command extracts the command token from a CS: line.
func Command(line string) string {
	return strings.TrimSpace(strings.TrimPrefix(line, CommandStart))
}

// ErrorCode extracts the error code from an ER: line.
func ErrorCode(line string) string {
	return strings.TrimSpace(strings.TrimPrefix(line, ErrorPrefix))
}

// Tag extracts the tag identifier from a tag line, with or without the
// EP: marker. Case is preserved.
func Tag(line string) string {
	return strings.TrimSpace(strings.TrimPrefix(line, TagPrefix))
}

// Reading extracts the raw strength text from an RI: line.
func Reading(line string) string {
	return strings.TrimSpace(strings.TrimPrefix(line, ReadingPrefix))
}

// IsTag reports whether line looks like a tag identifier: an EP:-marked
// line or a bare hex string. Identifiers are not validated beyond that.
func IsTag(line string) bool {
	if strings.HasPrefix(line, TagPrefix) {
		return true
	}
	s := strings.TrimSpace(line)
	return s != "" && !strings.Contains(s, ":") && hexTag.MatchString(s)
}

// Split breaks a command string on the statement separator and trims
// each part. Empty parts are dropped.
func Split(cmd string) []string {
	var parts []string
	for _, p := range strings.Split(cmd, Separator) {
		p = strings.TrimSpace(p)
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}
