// Package recording reads a capture-session file from disk and decodes it
// into the in-memory model. MessagePack is the primary capture format;
// JSON is accepted for hand-built fixtures. Either may be gzip-framed.
package recording

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/klauspost/compress/gzip"
	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/oculab/gazeport/pkg/models"
)

// Loader decodes recording files and normalizes them for export.
type Loader struct {
	logger zerolog.Logger
}

// NewLoader creates a recording loader.
func NewLoader(logger zerolog.Logger) *Loader {
	return &Loader{
		logger: logger.With().Str("component", "recording-loader").Logger(),
	}
}

// Load reads, decodes, and normalizes the recording at path.
func (l *Loader) Load(path string) (*models.Recording, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open recording: %w", err)
	}
	defer f.Close()

	rec, err := l.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return rec, nil
}

// Decode decodes a recording from r, transparently unwrapping gzip and
// auto-detecting the serialization format.
func (l *Loader) Decode(r io.Reader) (*models.Recording, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read recording: %w", err)
	}

	if len(data) >= 2 && data[0] == 0x1f && data[1] == 0x8b {
		gz, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to open gzip stream: %w", err)
		}
		data, err = io.ReadAll(gz)
		if closeErr := gz.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			return nil, fmt.Errorf("failed to decompress recording: %w", err)
		}
	}

	rec := &models.Recording{}
	if looksLikeJSON(data) {
		if err := json.Unmarshal(data, rec); err != nil {
			return nil, fmt.Errorf("failed to unmarshal json recording: %w", err)
		}
	} else {
		if err := msgpack.Unmarshal(data, rec); err != nil {
			return nil, fmt.Errorf("failed to unmarshal msgpack recording: %w", err)
		}
	}

	if err := l.validate(rec); err != nil {
		return nil, err
	}
	l.normalizeMessages(rec)
	return rec, nil
}

// looksLikeJSON reports whether the payload starts with a JSON object
// opener after optional whitespace.
func looksLikeJSON(data []byte) bool {
	for _, b := range data {
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		case '{':
			return true
		default:
			return false
		}
	}
	return false
}

// validate checks that the gaze section is internally consistent: every
// signal array must match the timestamp column's length. Optional
// sections (messages, logs, notifications) may be absent.
func (l *Loader) validate(rec *models.Recording) error {
	n := rec.Gaze.SampleCount()

	check := func(name string, length int) error {
		if length != 0 && length != n {
			return fmt.Errorf("gaze signal length mismatch: %s has %d entries, expected %d", name, length, n)
		}
		return nil
	}

	if err := check("device_time", len(rec.Gaze.DeviceTime)); err != nil {
		return err
	}
	eyes := []struct {
		side string
		eye  *models.EyeData
	}{
		{"left", &rec.Gaze.Left},
		{"right", &rec.Gaze.Right},
	}
	for _, e := range eyes {
		side, eye := e.side, e.eye
		signals := map[string]int{
			"gaze_point_on_display_x": len(eye.GazePointOnDisplayX),
			"gaze_point_on_display_y": len(eye.GazePointOnDisplayY),
			"gaze_point_in_user_x":    len(eye.GazePointInUserX),
			"gaze_point_in_user_y":    len(eye.GazePointInUserY),
			"gaze_point_in_user_z":    len(eye.GazePointInUserZ),
			"gaze_point_valid":        len(eye.GazePointValid),
			"pupil_diameter":          len(eye.PupilDiameter),
			"pupil_valid":             len(eye.PupilValid),
			"gaze_origin_in_user_x":   len(eye.GazeOriginInUserX),
			"gaze_origin_in_user_y":   len(eye.GazeOriginInUserY),
			"gaze_origin_in_user_z":   len(eye.GazeOriginInUserZ),
			"gaze_origin_valid":       len(eye.GazeOriginValid),
		}
		for name, length := range signals {
			if err := check(side+"."+name, length); err != nil {
				return err
			}
		}
	}

	if len(rec.Messages) == 0 {
		l.logger.Warn().Msg("Recording has no messages; bracket columns will be empty")
	}
	return nil
}

// normalizeMessages enforces the downstream precondition on the message
// stream: ascending timestamps with no duplicates. Capture libraries
// occasionally flush messages out of order, so out-of-order input is
// sorted rather than rejected; duplicate timestamps keep the last message
// seen.
func (l *Loader) normalizeMessages(rec *models.Recording) {
	msgs := rec.Messages
	if len(msgs) < 2 {
		return
	}

	sorted := sort.SliceIsSorted(msgs, func(i, j int) bool {
		return msgs[i].Time < msgs[j].Time
	})
	if !sorted {
		l.logger.Warn().Int("messages", len(msgs)).Msg("Messages out of order; sorting by timestamp")
		sort.SliceStable(msgs, func(i, j int) bool {
			return msgs[i].Time < msgs[j].Time
		})
	}

	deduped := msgs[:1]
	dropped := 0
	for _, m := range msgs[1:] {
		if m.Time == deduped[len(deduped)-1].Time {
			deduped[len(deduped)-1] = m
			dropped++
			continue
		}
		deduped = append(deduped, m)
	}
	if dropped > 0 {
		l.logger.Warn().Int("dropped", dropped).Msg("Duplicate message timestamps; keeping last message per timestamp")
	}
	rec.Messages = deduped
}
