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

// Package logger is the central log for the project. Peripherals log
// unsupported modes and notable state transitions here under a short device
// tag ("pit", "dma", "snd", etc). Identical consecutive entries are folded
// into a repeat count.
//
// The emulation is single-threaded so there is no synchronisation around the
// log. Do not log from outside the emulation goroutine.
package logger

import (
	"fmt"
	"io"
)

// only one central log for the entire application
var central *logger

// maximum number of entries in the central logger
const maxCentral = 256

func init() {
	central = newLogger(maxCentral)
}

// Log adds an entry to the central logger.
func Log(tag, detail string) {
	central.log(tag, detail)
}

// Logf adds a formatted entry to the central logger.
func Logf(tag, detail string, args ...interface{}) {
	central.log(tag, fmt.Sprintf(detail, args...))
}

// Clear all entries from central logger.
func Clear() {
	central.clear()
}

// Write contents of central logger to io.Writer.
func Write(output io.Writer) {
	central.write(output)
}

// Tail writes the last number entries to io.Writer.
func Tail(output io.Writer, number int) {
	central.tail(output, number)
}

// SetEcho to print new log entries to io.Writer as they arrive. A nil writer
// turns echoing off.
func SetEcho(output io.Writer) {
	central.echo = output
}

// BorrowLog gives the provided function access to the list of log entries.
// The slice must not be retained after the function returns.
func BorrowLog(f func([]Entry)) {
	f(central.entries)
}
