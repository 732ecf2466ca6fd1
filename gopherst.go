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

package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/bradleyjkemp/memviz"

	"gopherst/hardware"
	"gopherst/hardware/clocks"
	"gopherst/hardware/peripherals/dmasound"
	"gopherst/otoplay"
	"gopherst/pcm"
	"gopherst/statsview"
	"gopherst/wavwriter"
)

// the address the samples are loaded at and streamed from
const loadAddress = 0x1000

// audioSink is the surface shared by every destination the demo can stream
// to. It is a superset of the dmasound.AudioMixer interface.
type audioSink interface {
	SetAudio(samples []int8) error
	EndMixing() error
	Reset()
}

// discard is the sink of last resort.
type discard struct{}

func (*discard) SetAudio([]int8) error { return nil }
func (*discard) EndMixing() error      { return nil }
func (*discard) Reset()                {}

func main() {
	wavFile := flag.String("wav", "", "write channel output to WAV file")
	play := flag.Bool("play", false, "play channel output through the sound card")
	stats := flag.Bool("stats", false, "launch stats server (requires statsview build tag)")
	memvizFile := flag.String("memviz", "", "dump machine state graph to DOT file")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <audio file (wav or mp3)>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}

	if *stats {
		if statsview.Available() {
			statsview.Launch(os.Stdout)
		} else {
			fmt.Fprintln(os.Stderr, "statsview not in this build (use the statsview build tag)")
		}
	}

	err := stream(flag.Arg(0), *wavFile, *play, *memvizFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "* %v\n", err)
		os.Exit(1)
	}
}

// quantise a source sample rate to the nearest rate the channel supports,
// returning the mode register rate select value
func nearestRate(sampleRate float64) uint8 {
	sel := 0
	for i, r := range clocks.DMASoundRate {
		if abs(sampleRate-float64(r)) < abs(sampleRate-float64(clocks.DMASoundRate[sel])) {
			sel = i
		}
	}
	return uint8(sel)
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

func stream(filename string, wavFile string, play bool, memvizFile string) error {
	p, err := pcm.Load(filename)
	if err != nil {
		return err
	}

	if len(p.Data) < 2 {
		return fmt.Errorf("no samples in %s", filename)
	}

	rate := nearestRate(p.SampleRate)
	fmt.Printf("streaming at %dHz (source %0.2fHz)\n", clocks.DMASoundRate[rate], p.SampleRate)

	var sink audioSink
	switch {
	case wavFile != "":
		sink, err = wavwriter.New(wavFile, uint32(clocks.DMASoundRate[rate]))
		if err != nil {
			return err
		}
	case play:
		sink, err = otoplay.New(clocks.DMASoundRate[rate])
		if err != nil {
			return err
		}
	default:
		sink = &discard{}
	}

	m := hardware.NewMachine(nil, sink, nil)

	// load the samples into RAM. the end address must be word aligned
	if len(p.Data) > hardware.RAMSize-loadAddress {
		p.Data = p.Data[:hardware.RAMSize-loadAddress]
	}
	end := uint32(loadAddress + len(p.Data)&^1)
	for i, s := range p.Data[:end-loadAddress] {
		m.Mem.WriteByte(loadAddress+uint32(i), uint8(s))
	}

	// program the channel for a single mono pass over the loaded samples
	m.Sound.BaseWrite(0, uint8(loadAddress>>16))
	m.Sound.BaseWrite(1, uint8(loadAddress>>8))
	m.Sound.BaseWrite(2, uint8(loadAddress))
	m.Sound.EndWrite(0, uint8(end>>16))
	m.Sound.EndWrite(1, uint8(end>>8))
	m.Sound.EndWrite(2, uint8(end))
	m.Sound.ModeWrite(dmasound.ModeMono | rate)
	m.Sound.ControlWrite(dmasound.ControlEnable)

	// run the machine in slices of about a hundredth of a second. when
	// playing live, pace the slices against the wall clock so the ring
	// buffer in the player neither starves nor overruns
	const slice = clocks.Master / 100
	sliceTime := time.Duration(float64(time.Second) * slice / clocks.Master)

	for m.Sound.Active() {
		start := time.Now()
		m.Run(slice)
		if play {
			if d := sliceTime - time.Since(start); d > 0 {
				time.Sleep(d)
			}
		}
	}

	// drain what is left in the channel FIFO
	m.Run(clocks.DMASoundPeriod[rate&0x03] * 8)

	if memvizFile != "" {
		err := dumpState(m, memvizFile)
		if err != nil {
			return err
		}
	}

	return sink.EndMixing()
}

// dump the object graph of a machine snapshot for inspection
func dumpState(m *hardware.Machine, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	memviz.Map(f, m.Snapshot())
	return nil
}
