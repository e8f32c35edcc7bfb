// Package extract is the export driver: it projects every recording field
// into the output tables, one named column at a time, and runs the
// message-bracket join over the gaze time-series.
package extract

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/oculab/gazeport/internal/bracket"
	"github.com/oculab/gazeport/internal/naming"
	"github.com/oculab/gazeport/internal/table"
	"github.com/oculab/gazeport/pkg/models"
)

// Version is stamped into the session-info table; overridden at build
// time.
var Version = "dev"

// Output table identifiers.
const (
	TableSession       = "session"
	TableGaze          = "gaze"
	TableMessages      = "messages"
	TableLog           = "log"
	TableNotifications = "notifications"
)

// Exporter turns one recording into a set of rectangular tables. It owns
// the accumulator for the duration of the export session; create one
// exporter per recording.
type Exporter struct {
	acc    *table.Accumulator
	names  *naming.Resolver
	logger zerolog.Logger

	// Overrides supplies a per-column name override, keyed by default
	// column name. Entries pass through the resolver's validity rules.
	Overrides map[string]any

	sessionID uuid.UUID
	warnings  int
}

// NewExporter creates an exporter with the given rename map (nil for
// none).
func NewExporter(renames *naming.RenameMap, logger zerolog.Logger) *Exporter {
	return &Exporter{
		acc:       table.NewAccumulator(logger),
		names:     naming.NewResolver(renames, logger),
		logger:    logger.With().Str("component", "exporter").Logger(),
		sessionID: uuid.New(),
	}
}

// SessionID returns the identifier stamped on this export session.
func (e *Exporter) SessionID() uuid.UUID {
	return e.sessionID
}

// Warnings returns the number of columns dropped for shape problems.
func (e *Exporter) Warnings() int {
	return e.warnings
}

// Tables returns the accumulated tables. Valid after Export.
func (e *Exporter) Tables() *table.Accumulator {
	return e.acc
}

// Export runs the full projection inventory over rec. Shape problems in
// individual columns are logged and skipped; Export itself only reports
// totals.
func (e *Exporter) Export(rec *models.Recording) error {
	e.exportSession(&rec.Session)
	e.exportGaze(&rec.Gaze)
	e.exportMessages(rec.Messages)
	e.exportLog(rec.Logs)
	e.exportNotifications(rec.Notifications)

	events := make([]bracket.Event, len(rec.Messages))
	for i, m := range rec.Messages {
		events[i] = bracket.Event{Time: m.Time, Text: m.Text}
	}
	brackets := bracket.Join(events, rec.Gaze.SystemTime)
	if err := brackets.AppendTo(e.acc, TableGaze, func(def string) string {
		return e.names.Resolve(def, e.override(def))
	}); err != nil {
		e.warnings++
	}

	e.logger.Info().
		Str("export_id", e.sessionID.String()).
		Int("samples", rec.Gaze.SampleCount()).
		Int("messages", len(rec.Messages)).
		Int("warnings", e.warnings).
		Msg("Export complete")
	return nil
}

// append resolves the column's output name and stores it, counting (but
// swallowing) shape errors per the degrade-gracefully policy.
func (e *Exporter) append(tableID, defaultName string, values any) {
	name := e.names.Resolve(defaultName, e.override(defaultName))
	if err := e.acc.Append(tableID, name, values); err != nil {
		e.warnings++
	}
}

func (e *Exporter) override(defaultName string) any {
	if e.Overrides == nil {
		return nil
	}
	ov, ok := e.Overrides[defaultName]
	if !ok {
		return nil
	}
	return ov
}

// exportSession writes the single-row session-info table: plain field
// copies plus export bookkeeping.
func (e *Exporter) exportSession(s *models.SessionInfo) {
	e.append(TableSession, "export_date", time.Now().UTC().Format(time.RFC3339))
	e.append(TableSession, "exporter_version", Version)
	e.append(TableSession, "export_id", e.sessionID.String())
	e.append(TableSession, "device_model", s.DeviceModel)
	e.append(TableSession, "serial_number", s.SerialNumber)
	e.append(TableSession, "firmware_version", s.FirmwareVersion)
	e.append(TableSession, "runtime_version", s.RuntimeVersion)
	e.append(TableSession, "tracking_mode", s.TrackingMode)
	e.append(TableSession, "sample_frequency", s.SampleFrequency)
	e.append(TableSession, "display_width_px", float64(s.DisplayWidthPx))
	e.append(TableSession, "display_height_px", float64(s.DisplayHeightPx))
	e.append(TableSession, "start_system_time", float64(s.StartSystemTime))
	e.append(TableSession, "start_device_time", float64(s.StartDeviceTime))
}

// gazeSignal is one entry of the projection inventory: a default column
// name and the projection that copies the signal out of the gaze section.
type gazeSignal struct {
	name    string
	project func(g *models.Gaze) any
}

// eyeSignals builds the per-eye half of the inventory for one side.
func eyeSignals(side string, pick func(g *models.Gaze) *models.EyeData) []gazeSignal {
	return []gazeSignal{
		{side + "_gaze_point_on_display_x", func(g *models.Gaze) any { return pick(g).GazePointOnDisplayX }},
		{side + "_gaze_point_on_display_y", func(g *models.Gaze) any { return pick(g).GazePointOnDisplayY }},
		{side + "_gaze_point_in_user_x", func(g *models.Gaze) any { return pick(g).GazePointInUserX }},
		{side + "_gaze_point_in_user_y", func(g *models.Gaze) any { return pick(g).GazePointInUserY }},
		{side + "_gaze_point_in_user_z", func(g *models.Gaze) any { return pick(g).GazePointInUserZ }},
		{side + "_gaze_point_valid", func(g *models.Gaze) any { return pick(g).GazePointValid }},
		{side + "_pupil_diameter", func(g *models.Gaze) any { return pick(g).PupilDiameter }},
		{side + "_pupil_valid", func(g *models.Gaze) any { return pick(g).PupilValid }},
		{side + "_gaze_origin_in_user_x", func(g *models.Gaze) any { return pick(g).GazeOriginInUserX }},
		{side + "_gaze_origin_in_user_y", func(g *models.Gaze) any { return pick(g).GazeOriginInUserY }},
		{side + "_gaze_origin_in_user_z", func(g *models.Gaze) any { return pick(g).GazeOriginInUserZ }},
		{side + "_gaze_origin_valid", func(g *models.Gaze) any { return pick(g).GazeOriginValid }},
	}
}

// exportGaze projects every gaze signal into the time-series table.
func (e *Exporter) exportGaze(g *models.Gaze) {
	inventory := []gazeSignal{
		{"system_time_stamp", func(g *models.Gaze) any { return g.SystemTime }},
		{"device_time_stamp", func(g *models.Gaze) any { return g.DeviceTime }},
	}
	inventory = append(inventory, eyeSignals("left", func(g *models.Gaze) *models.EyeData { return &g.Left })...)
	inventory = append(inventory, eyeSignals("right", func(g *models.Gaze) *models.EyeData { return &g.Right })...)

	for _, sig := range inventory {
		e.append(TableGaze, sig.name, sig.project(g))
	}
}

// exportMessages reshapes the message stream into a two-column table.
func (e *Exporter) exportMessages(msgs []models.Message) {
	times := make([]int64, len(msgs))
	texts := make([]string, len(msgs))
	for i, m := range msgs {
		times[i] = m.Time
		texts[i] = m.Text
	}
	e.append(TableMessages, "system_time_stamp", times)
	e.append(TableMessages, "message", texts)
}

// exportLog passes the capture library's log through as a direct reshape.
func (e *Exporter) exportLog(entries []models.LogEntry) {
	if len(entries) == 0 {
		return
	}
	times := make([]int64, len(entries))
	levels := make([]string, len(entries))
	texts := make([]string, len(entries))
	for i, entry := range entries {
		times[i] = entry.Time
		levels[i] = entry.Level
		texts[i] = entry.Text
	}
	e.append(TableLog, "system_time_stamp", times)
	e.append(TableLog, "level", levels)
	e.append(TableLog, "message", texts)
}

// exportNotifications passes device notifications through as a direct
// reshape.
func (e *Exporter) exportNotifications(notes []models.Notification) {
	if len(notes) == 0 {
		return
	}
	times := make([]int64, len(notes))
	kinds := make([]string, len(notes))
	details := make([]string, len(notes))
	for i, n := range notes {
		times[i] = n.Time
		kinds[i] = n.Kind
		details[i] = n.Detail
	}
	e.append(TableNotifications, "system_time_stamp", times)
	e.append(TableNotifications, "notification", kinds)
	e.append(TableNotifications, "detail", details)
}
