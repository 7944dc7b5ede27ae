/*
   gsx - SDL2 reference frontend.

   Copyright (c) 2024, Richard Cornwell

   Permission is hereby granted, free of charge, to any person obtaining a
   copy of this software and associated documentation files (the "Software"),
   to deal in the Software without restriction, including without limitation
   the rights to use, copy, modify, merge, publish, distribute, sublicense,
   and/or sell copies of the Software, and to permit persons to whom the
   Software is furnished to do so, subject to the following conditions:

   The above copyright notice and this permission notice shall be included in
   all copies or substantial portions of the Software.

   THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
   IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
   FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT.  IN NO EVENT SHALL
   RICHARD CORNWELL BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER
   IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
   CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.

*/

// Command gsfe is a thin SDL2 presentation shell around the core: it runs
// the same cooperative Step/DrainCommands loop as the console (main.go)
// on its own goroutine, blits the published video.Frame to a streaming
// texture once per host frame, and feeds the DOC audio ring to an SDL
// audio device. It decodes no pixel formats itself -- a scanline byte is
// painted as a grayscale triplet, since full NTSC/SuperHires color
// decode is presentation detail the core's Non-goals exclude ("no
// sub-cycle analog timing or CRT beam effects").
package main

import (
	"log/slog"
	"os"

	getopt "github.com/pborman/getopt/v2"
	"github.com/veandco/go-sdl2/sdl"

	config "github.com/open-iigs/gsx/config/configparser"
	machineconfig "github.com/open-iigs/gsx/config/machineconfig"
	"github.com/open-iigs/gsx/emu/machine"
	"github.com/open-iigs/gsx/emu/video"
	logger "github.com/open-iigs/gsx/util/logger"

	_ "github.com/open-iigs/gsx/config/debugconfig"
)

const scale = 2

func main() {
	optConfig := getopt.StringLong("config", 'c', "gsx.cfg", "Configuration file")
	optHelp := getopt.BoolLong("help", 'h', "Help")
	getopt.Parse()

	if *optHelp {
		getopt.Usage()
		os.Exit(0)
	}

	programLevel := new(slog.LevelVar)
	programLevel.Set(slog.LevelInfo)
	noDebug := false
	slog.SetDefault(slog.New(logger.NewHandler(os.Stderr, &slog.HandlerOptions{Level: programLevel}, &noDebug)))

	if err := config.LoadConfigFile(*optConfig); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
	m, err := machineconfig.Build()
	if err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}

	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_AUDIO); err != nil {
		slog.Error("sdl init failed", slog.String("err", err.Error()))
		os.Exit(1)
	}
	defer sdl.Quit()

	width := int32(video.BytesPerScanline * scale)
	height := int32(video.ScanlinesPerFrame * scale)
	window, err := sdl.CreateWindow("gsx", sdl.WINDOWPOS_CENTERED, sdl.WINDOWPOS_CENTERED,
		width, height, sdl.WINDOW_SHOWN)
	if err != nil {
		slog.Error("create window failed", slog.String("err", err.Error()))
		os.Exit(1)
	}
	defer window.Destroy()

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED)
	if err != nil {
		slog.Error("create renderer failed", slog.String("err", err.Error()))
		os.Exit(1)
	}
	defer renderer.Destroy()

	texture, err := renderer.CreateTexture(sdl.PIXELFORMAT_RGB888, sdl.TEXTUREACCESS_STREAMING,
		video.BytesPerScanline, video.ScanlinesPerFrame)
	if err != nil {
		slog.Error("create texture failed", slog.String("err", err.Error()))
		os.Exit(1)
	}
	defer texture.Destroy()

	audioSpec := sdl.AudioSpec{Freq: 44100, Format: sdl.AUDIO_S16, Channels: 2, Samples: 1024}
	audioDev, err := sdl.OpenAudioDevice("", false, &audioSpec, nil, 0)
	if err != nil {
		slog.Warn("audio device unavailable, running muted", slog.String("err", err.Error()))
	} else {
		defer sdl.CloseAudioDevice(audioDev)
		sdl.PauseAudioDevice(audioDev, false)
	}

	done := make(chan struct{})
	go runLoop(m, done)

	running := true
	audioBuf := make([]int16, 2048)
	for running {
		for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
			switch event.(type) {
			case *sdl.QuitEvent:
				running = false
			}
		}

		blit(texture, m.PublishedFrame())
		renderer.Clear()
		renderer.Copy(texture, nil, nil)
		renderer.Present()

		if audioDev != 0 {
			n := m.AudioRing().Pull(audioBuf)
			if n > 0 {
				sdl.QueueAudio(audioDev, int16SliceToBytes(audioBuf[:n*2]))
			}
		}

		sdl.Delay(16)

		select {
		case <-done:
			running = false
		default:
		}
	}

	m.Commands() <- machine.Command{Kind: machine.CmdTerminate}
	<-done
}

func runLoop(m *machine.Machine, done chan<- struct{}) {
	defer close(done)
	for {
		if m.DrainCommands() {
			return
		}
		if m.Failed() {
			slog.Error("machine entered Failed state; halting")
			return
		}
		m.Step()
	}
}

// blit paints frame's raw scanline bytes into texture as grayscale RGB888
// triplets; this is a placeholder presentation path, not a color decoder.
func blit(texture *sdl.Texture, frame *video.Frame) {
	pixels := make([]byte, video.BytesPerScanline*video.ScanlinesPerFrame*4)
	for row := 0; row < video.ScanlinesPerFrame; row++ {
		for col := 0; col < video.BytesPerScanline; col++ {
			v := frame.Scanlines[row][col]
			idx := (row*video.BytesPerScanline + col) * 4
			pixels[idx] = v
			pixels[idx+1] = v
			pixels[idx+2] = v
		}
	}
	texture.Update(nil, pixels, video.BytesPerScanline*4)
}

func int16SliceToBytes(s []int16) []byte {
	out := make([]byte, len(s)*2)
	for i, v := range s {
		out[i*2] = byte(v)
		out[i*2+1] = byte(v >> 8)
	}
	return out
}
