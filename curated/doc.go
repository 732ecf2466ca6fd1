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

// Package curated is the error type used throughout GopherST wherever an
// error needs to be inspected after the fact. Errors are created with
// Errorf() and tested with Is() and Has(), using the creation pattern as the
// error's identity.
//
// Note that the peripheral packages themselves never return errors. Failure
// in a peripheral is a status bit or a logged fallback (see the logger
// package), never an error value. Curated errors appear only at the edges of
// the project: file loading, audio sinks, etc.
package curated
