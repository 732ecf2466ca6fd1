// This file is part of GopherST.
//
// GopherST is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// GopherST is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with GopherST.  If not, see <https://www.gnu.org/licenses/>.

package logger

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// Entry represents a single line/entry in the log.
type Entry struct {
	Timestamp time.Time
	Tag       string
	Detail    string
	Repeated  int
}

func (e *Entry) String() string {
	s := strings.Builder{}
	s.WriteString(fmt.Sprintf("%s: %s", e.Tag, e.Detail))
	if e.Repeated > 0 {
		s.WriteString(fmt.Sprintf(" (repeat x%d)", e.Repeated+1))
	}
	s.WriteString("\n")
	return s.String()
}

// the logger type is not exposed outside the package. the package level
// functions work with the single central logger.
type logger struct {
	maxEntries int
	entries    []Entry
	echo       io.Writer
}

func newLogger(maxEntries int) *logger {
	return &logger{
		maxEntries: maxEntries,
		entries:    make([]Entry, 0, maxEntries),
	}
}

func (l *logger) log(tag, detail string) {
	// tags and details must be newline free
	tag = strings.ReplaceAll(tag, "\n", "")
	detail = strings.ReplaceAll(detail, "\n", "")

	if len(l.entries) > 0 {
		e := &l.entries[len(l.entries)-1]
		if e.Tag == tag && e.Detail == detail {
			e.Repeated++
			e.Timestamp = time.Now()
			return
		}
	}

	l.entries = append(l.entries, Entry{Timestamp: time.Now(), Tag: tag, Detail: detail})

	if len(l.entries) > l.maxEntries {
		l.entries = l.entries[len(l.entries)-l.maxEntries:]
	}

	if l.echo != nil {
		io.WriteString(l.echo, l.entries[len(l.entries)-1].String())
	}
}

func (l *logger) clear() {
	l.entries = l.entries[:0]
}

func (l *logger) write(output io.Writer) {
	for i := range l.entries {
		io.WriteString(output, l.entries[i].String())
	}
}

func (l *logger) tail(output io.Writer, number int) {
	if number > len(l.entries) {
		number = len(l.entries)
	}
	for _, e := range l.entries[len(l.entries)-number:] {
		io.WriteString(output, e.String())
	}
}
