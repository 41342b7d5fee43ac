// Package mailbox reads recent messages from a local mbox file and exposes
// their bodies as documents.
package mailbox

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrMailboxUnreadable indicates the mailbox file could not be opened or read.
var ErrMailboxUnreadable = errors.New("mailbox unreadable")

// maxLineSize bounds a single mbox line; longer lines fail the read.
const maxLineSize = 1 << 20

// splitMbox splits an mbox stream into raw RFC 5322 messages. Messages start
// at lines beginning with "From "; the separator line itself is dropped and
// mboxrd quoting (">From ", ">>From ") is undone by one level.
func splitMbox(r io.Reader) ([][]byte, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	var (
		messages [][]byte
		current  bytes.Buffer
		started  bool
	)
	flush := func() {
		if started && current.Len() > 0 {
			messages = append(messages, bytes.Clone(current.Bytes()))
		}
		current.Reset()
	}

	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "From ") {
			flush()
			started = true
			continue
		}
		if !started {
			continue
		}
		if unquoted, ok := unquoteFrom(line); ok {
			line = unquoted
		}
		current.WriteString(line)
		current.WriteString("\r\n")
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMailboxUnreadable, err)
	}
	flush()
	return messages, nil
}

// unquoteFrom strips one '>' from lines matching ^>+From .
func unquoteFrom(line string) (string, bool) {
	trimmed := strings.TrimLeft(line, ">")
	if len(trimmed) == len(line) || !strings.HasPrefix(trimmed, "From ") {
		return line, false
	}
	return line[1:], true
}
