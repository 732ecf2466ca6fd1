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

// Package otoplay plays sound channel output through the host sound card.
// Samples pass through a ring buffer: the emulation pushes at the emulated
// rate while the audio library pulls from its own goroutine. If the
// emulation runs faster than real time the oldest samples are dropped; if
// it stalls, silence is played.
package otoplay

import (
	"sync"

	"github.com/ebitengine/oto/v3"

	"gopherst/curated"
	"gopherst/logger"
)

// size of the ring buffer in samples
const ringSize = 16384

// byte value of silence in unsigned 8-bit audio
const silence = 0x80

// Player implements the dmasound.AudioMixer interface.
type Player struct {
	ctx    *oto.Context
	player *oto.Player

	// the ring buffer and its guard. Read() is called from the audio
	// library's own goroutine
	crit sync.Mutex
	ring []byte
	head int
	used int
}

// New is the preferred method of initialisation for the Player type.
// Playback starts immediately.
func New(sampleRate int) (*Player, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatUnsignedInt8,
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, curated.Errorf("otoplay: %v", err)
	}
	<-ready

	p := &Player{
		ctx:  ctx,
		ring: make([]byte, ringSize),
	}
	p.player = ctx.NewPlayer(p)
	p.player.Play()

	logger.Logf("otoplay", "playing at %dHz", sampleRate)

	return p, nil
}

// SetAudio implements the dmasound.AudioMixer interface.
func (p *Player) SetAudio(samples []int8) error {
	p.crit.Lock()
	defer p.crit.Unlock()

	for _, s := range samples {
		if p.used == len(p.ring) {
			// overrun. drop the oldest sample
			p.head = (p.head + 1) % len(p.ring)
			p.used--
		}
		p.ring[(p.head+p.used)%len(p.ring)] = uint8(int(s) + 128)
		p.used++
	}

	return nil
}

// Read implements the io.Reader interface required by the audio library.
func (p *Player) Read(b []byte) (int, error) {
	p.crit.Lock()
	defer p.crit.Unlock()

	for i := range b {
		if p.used == 0 {
			b[i] = silence
			continue
		}
		b[i] = p.ring[p.head]
		p.head = (p.head + 1) % len(p.ring)
		p.used--
	}

	return len(b), nil
}

// EndMixing stops playback.
func (p *Player) EndMixing() error {
	err := p.player.Close()
	if err != nil {
		return curated.Errorf("otoplay: %v", err)
	}
	return nil
}

// Reset empties the ring buffer.
func (p *Player) Reset() {
	p.crit.Lock()
	defer p.crit.Unlock()
	p.head = 0
	p.used = 0
}
