// sim/replay.go
// Copyright(c) 2025-2026 OpenRA contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"bytes"
	"fmt"
	"os"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/gatekeep/OpenRA/math"
	"github.com/gatekeep/OpenRA/util"
)

const replayVersion = 1

// frameCacheSize bounds decoded frames held for scrubbing. A frame is
// a few hundred bytes per actor, so even large worlds stay small.
const frameCacheSize = 256

// ReplayActor is one actor's state in a frame, just enough to draw it
// and label what it is doing.
type ReplayActor struct {
	ID       ActorID
	Type     string
	Owner    string
	Pos      math.Vec
	Facing   math.Heading
	Health   int32
	Ammo     int32
	Movement MovementTypes
	Activity string
}

// ReplayFrame is the world as of the end of one tick, plus the events
// that were posted during it.
type ReplayFrame struct {
	Tick   int64
	Actors []ReplayActor
	Events []Event
}

// ReplayHeader identifies the run a replay came from. Scenario holds
// the raw scenario JSON so a viewer can rebuild the map without the
// original file.
type ReplayHeader struct {
	Version      int
	ScenarioName string
	Scenario     []byte
	TickRate     int32
	Seed         int64
}

type replayFile struct {
	Header ReplayHeader
	Frames [][]byte // delta-encoded msgpack frames
}

///////////////////////////////////////////////////////////////////////////
// recording

// Recorder accumulates one frame per tick. Successive frames differ
// little, so each is stored as a byte delta against the previous one;
// zstd then squeezes the mostly-zero deltas when the file is written.
type Recorder struct {
	world  *World
	events *EventsSubscription
	seed   int64
	frames [][]byte
	prev   []byte
}

func NewRecorder(w *World, seed int64) *Recorder {
	return &Recorder{
		world:  w,
		events: w.Events.Subscribe(),
		seed:   seed,
	}
}

// CaptureFrame records the current world state; call it once after
// each Tick.
func (r *Recorder) CaptureFrame() error {
	w := r.world
	frame := ReplayFrame{Tick: w.TickCount, Events: r.events.Get()}
	for _, a := range w.Actors {
		frame.Actors = append(frame.Actors, replayActorFor(a))
	}

	enc, err := msgpack.Marshal(frame)
	if err != nil {
		return fmt.Errorf("msgpack encode: %w", err)
	}
	if r.prev == nil {
		r.frames = append(r.frames, enc)
	} else {
		r.frames = append(r.frames, util.DeltaEncodeBytes(r.prev, enc))
	}
	r.prev = enc
	return nil
}

func (r *Recorder) NumFrames() int { return len(r.frames) }

// WriteFile finishes the recording and writes it, msgpack-encoded and
// zstd-compressed.
func (r *Recorder) WriteFile(path string) error {
	r.events.Unsubscribe()

	rf := replayFile{
		Header: ReplayHeader{
			Version:      replayVersion,
			ScenarioName: r.world.Scenario.Name,
			Scenario:     r.world.Scenario.Raw,
			TickRate:     r.world.Scenario.TickRate,
			Seed:         r.seed,
		},
		Frames: r.frames,
	}

	enc, err := msgpack.Marshal(rf)
	if err != nil {
		return fmt.Errorf("msgpack encode: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	zw, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		f.Close()
		return fmt.Errorf("zstd writer: %w", err)
	}
	if _, err := zw.Write(enc); err != nil {
		zw.Close()
		f.Close()
		return fmt.Errorf("zstd write: %w", err)
	}
	if err := zw.Close(); err != nil {
		f.Close()
		return fmt.Errorf("zstd close: %w", err)
	}
	return f.Close()
}

///////////////////////////////////////////////////////////////////////////
// playback

// Replay is a loaded recording with random access to frames. Raw frame
// bytes are reconstituted from their deltas once at load; decoding a
// frame's msgpack on demand is what the LRU cache avoids repeating
// while scrubbing.
type Replay struct {
	Header ReplayHeader
	frames [][]byte
	cache  *lru.Cache[int, *ReplayFrame]
}

func LoadReplay(path string) (*Replay, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	zr, err := zstd.NewReader(f, zstd.WithDecoderConcurrency(0))
	if err != nil {
		return nil, fmt.Errorf("zstd reader: %w", err)
	}
	defer zr.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(zr); err != nil {
		return nil, fmt.Errorf("zstd decompress: %w", err)
	}

	var rf replayFile
	if err := msgpack.Unmarshal(buf.Bytes(), &rf); err != nil {
		return nil, fmt.Errorf("msgpack decode: %w", err)
	}
	if rf.Header.Version != replayVersion {
		return nil, fmt.Errorf("%w: %d", ErrReplayVersion, rf.Header.Version)
	}

	cache, err := lru.New[int, *ReplayFrame](frameCacheSize)
	if err != nil {
		return nil, err
	}
	return &Replay{
		Header: rf.Header,
		frames: util.DeltaDecodeBytesSlice(rf.Frames),
		cache:  cache,
	}, nil
}

func (r *Replay) NumFrames() int { return len(r.frames) }

// Frame decodes and returns frame i, 0-based.
func (r *Replay) Frame(i int) (*ReplayFrame, error) {
	if i < 0 || i >= len(r.frames) {
		return nil, fmt.Errorf("%w: %d of %d", ErrReplayFrameRange, i, len(r.frames))
	}
	if fr, ok := r.cache.Get(i); ok {
		return fr, nil
	}
	var fr ReplayFrame
	if err := msgpack.Unmarshal(r.frames[i], &fr); err != nil {
		return nil, fmt.Errorf("frame %d: msgpack decode: %w", i, err)
	}
	r.cache.Add(i, &fr)
	return &fr, nil
}
