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

// Package wavwriter allows writing of audio data to disk as a WAV file. Note
// that audio data is buffered in memory in its entirety, and written to disk
// on program end. It is therefore probably only suitable for testing
// purposes.
package wavwriter

import (
	"os"

	"github.com/youpy/go-wav"

	"gopherst/curated"
	"gopherst/logger"
)

// WavWriter implements the dmasound.AudioMixer interface.
type WavWriter struct {
	filename   string
	sampleRate uint32
	buffer     []wav.Sample
}

// New is the preferred method of initialisation for the WavWriter type. The
// sample rate should match the rate the sound channel is programmed with.
func New(filename string, sampleRate uint32) (*WavWriter, error) {
	aw := &WavWriter{
		filename:   filename,
		sampleRate: sampleRate,
		buffer:     make([]wav.Sample, 0),
	}

	return aw, nil
}

// SetAudio implements the dmasound.AudioMixer interface.
func (aw *WavWriter) SetAudio(samples []int8) error {
	for _, s := range samples {
		w := wav.Sample{}

		// 8-bit wav data is unsigned
		w.Values[0] = int(s) + 128
		w.Values[1] = int(s) + 128

		aw.buffer = append(aw.buffer, w)
	}

	return nil
}

// EndMixing writes the collected audio to disk.
func (aw *WavWriter) EndMixing() (rerr error) {
	f, err := os.Create(aw.filename)
	if err != nil {
		return curated.Errorf("wavwriter: %v", err)
	}
	defer func() {
		err := f.Close()
		if err != nil {
			rerr = curated.Errorf("wavwriter: %v", err)
		}
	}()

	enc := wav.NewWriter(f, uint32(len(aw.buffer)), 1, aw.sampleRate, 8)
	if enc == nil {
		return curated.Errorf("wavwriter: %v", "bad parameters for wav encoding")
	}

	logger.Logf("wavwriter", "writing audio to %s", aw.filename)
	err = enc.WriteSamples(aw.buffer)
	if err != nil {
		return curated.Errorf("wavwriter: %v", err)
	}

	return nil
}

// Reset empties the collection buffer.
func (aw *WavWriter) Reset() {
	aw.buffer = aw.buffer[:0]
}
