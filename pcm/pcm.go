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

// Package pcm loads audio files into the signed 8-bit mono form the sound
// DMA channel streams from RAM. WAV and MP3 files are supported; stereo
// sources keep the left channel only.
package pcm

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"

	"gopherst/curated"
	"gopherst/logger"
)

const logTag = "pcm"

// PCM is the result of loading an audio file.
type PCM struct {
	// sample rate of the source file. the caller quantises this to the
	// nearest rate the sound channel can be programmed with
	SampleRate float64

	// total time of recording in seconds
	TotalTime float64

	// mono samples (taken from the left channel in the case of stereo
	// source files)
	Data []int8
}

// Load an audio file from disk. The decoder is chosen by file extension.
func Load(filename string) (PCM, error) {
	p := PCM{
		Data: make([]int8, 0),
	}

	f, err := os.Open(filename)
	if err != nil {
		return p, curated.Errorf("pcm: %v", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".wav":
		dec := wav.NewDecoder(f)
		if dec == nil {
			return p, curated.Errorf("pcm: %v", "error decoding wav file")
		}

		if !dec.IsValidFile() {
			return p, curated.Errorf("pcm: %v", "not a valid wav file")
		}

		logger.Log(logTag, "loading from wav file")

		// load all data at once
		buf, err := dec.FullPCMBuffer()
		if err != nil {
			return p, curated.Errorf("pcm: %v", err)
		}
		floatBuf := buf.AsFloat32Buffer()

		// copy first channel only of data stream. float data is full scale
		// at one
		p.Data = make([]int8, 0, len(floatBuf.Data)/int(dec.NumChans))
		for i := 0; i < len(floatBuf.Data); i += int(dec.NumChans) {
			p.Data = append(p.Data, quantise(floatBuf.Data[i]))
		}

		p.SampleRate = float64(dec.SampleRate)

		dur, err := dec.Duration()
		if err != nil {
			return p, curated.Errorf("pcm: %v", err)
		}
		p.TotalTime = dur.Seconds()

	case ".mp3":
		dec, err := mp3.NewDecoder(f)
		if err != nil {
			return p, curated.Errorf("pcm: %v", err)
		}

		logger.Log(logTag, "loading from mp3 file")

		// the mp3 stream is always 16bit little-endian two channel data,
		// four bytes per sample. the high byte of the left channel is the
		// 8-bit sample
		err = nil
		chunk := make([]byte, 4096)
		for err != io.EOF {
			var chunkLen int
			chunkLen, err = dec.Read(chunk)
			if err != nil && err != io.EOF {
				return p, curated.Errorf("pcm: %v", err)
			}

			for i := 0; i+1 < chunkLen; i += 4 {
				v := int16(chunk[i]) | int16(chunk[i+1])<<8
				p.Data = append(p.Data, int8(v>>8))
			}
		}

		p.SampleRate = float64(dec.SampleRate())
		p.TotalTime = float64(len(p.Data)) / p.SampleRate

	default:
		return p, curated.Errorf("pcm: unsupported file type (%s)", filepath.Ext(filename))
	}

	logger.Logf(logTag, "sample rate: %0.2fHz", p.SampleRate)
	logger.Logf(logTag, "total time: %.02fs", p.TotalTime)

	return p, nil
}

func quantise(f float32) int8 {
	v := f * 127
	if v > 127 {
		v = 127
	}
	if v < -128 {
		v = -128
	}
	return int8(v)
}
