package extract

import (
	"math"
	"testing"

	"github.com/rs/zerolog"

	"github.com/oculab/gazeport/internal/bracket"
	"github.com/oculab/gazeport/internal/naming"
	"github.com/oculab/gazeport/pkg/models"
)

func testRecording() *models.Recording {
	return &models.Recording{
		Session: models.SessionInfo{
			DeviceModel:     "Spectrum",
			SerialNumber:    "TS-123",
			SampleFrequency: 600,
			DisplayWidthPx:  1920,
			DisplayHeightPx: 1080,
		},
		Gaze: models.Gaze{
			SystemTime: []int64{100, 200, 300, 400},
			DeviceTime: []int64{90, 190, 290, 390},
			Left: models.EyeData{
				GazePointOnDisplayX: []float64{0.1, 0.2, math.NaN(), 0.4},
				GazePointOnDisplayY: []float64{0.5, 0.5, math.NaN(), 0.5},
				PupilDiameter:       []float64{3.1, 3.2, math.NaN(), 3.0},
				PupilValid:          []bool{true, true, false, true},
			},
			Right: models.EyeData{
				PupilDiameter: []float64{3.0, 3.1, math.NaN(), 2.9},
			},
		},
		Messages: []models.Message{
			{Time: 150, Text: "stimulus on"},
			{Time: 350, Text: "stimulus off"},
		},
		Logs: []models.LogEntry{
			{Time: 50, Level: "info", Text: "tracking started"},
		},
	}
}

func newTestExporter(entries map[string]string) *Exporter {
	rm, _ := naming.NewRenameMap(entries)
	return NewExporter(rm, zerolog.Nop())
}

func TestExport_GazeTableShape(t *testing.T) {
	e := newTestExporter(nil)
	if err := e.Export(testRecording()); err != nil {
		t.Fatalf("export: %v", err)
	}

	gaze, ok := e.Tables().Table(TableGaze)
	if !ok {
		t.Fatal("gaze table missing")
	}
	if gaze.Rows() != 4 {
		t.Fatalf("gaze rows: got %d, want 4", gaze.Rows())
	}

	// 2 timestamp columns + 12 signals per eye + 4 bracket columns.
	if got := len(gaze.Names()); got != 2+24+4 {
		t.Errorf("gaze columns: got %d, want 30", got)
	}
	for _, name := range gaze.Names() {
		col, _ := gaze.Column(name)
		if len(col) != 4 {
			t.Errorf("column %q: length %d, want 4", name, len(col))
		}
	}
}

func TestExport_BracketColumnsJoined(t *testing.T) {
	e := newTestExporter(nil)
	if err := e.Export(testRecording()); err != nil {
		t.Fatalf("export: %v", err)
	}

	gaze, _ := e.Tables().Table(TableGaze)
	prior, ok := gaze.Column(bracket.ColPriorMsg)
	if !ok {
		t.Fatal("prior message column missing")
	}

	// Samples at 100, 200, 300, 400 against messages at 150 and 350.
	want := []string{"", "stimulus on", "stimulus on", "stimulus off"}
	for i, w := range want {
		if prior[i].Text != w {
			t.Errorf("prior[%d]: got %q, want %q", i, prior[i].Text, w)
		}
	}

	priorTime, _ := gaze.Column(bracket.ColPriorTime)
	if !priorTime[0].IsMissing() {
		t.Errorf("priorTime[0]: got %+v, want missing", priorTime[0])
	}
	if priorTime[3].Num != 350 {
		t.Errorf("priorTime[3]: got %v, want 350", priorTime[3].Num)
	}
}

func TestExport_MissingSignalsPadOut(t *testing.T) {
	// The right eye supplies only pupil diameter; its other signal
	// columns are empty and must pad to the table's row count.
	e := newTestExporter(nil)
	if err := e.Export(testRecording()); err != nil {
		t.Fatalf("export: %v", err)
	}

	gaze, _ := e.Tables().Table(TableGaze)
	col, ok := gaze.Column("right_gaze_point_on_display_x")
	if !ok {
		t.Fatal("right display-x column missing")
	}
	for i, c := range col {
		if !c.IsMissing() {
			t.Errorf("[%d]: got %+v, want missing", i, c)
		}
	}
}

func TestExport_SessionTableIsSingleRow(t *testing.T) {
	e := newTestExporter(nil)
	if err := e.Export(testRecording()); err != nil {
		t.Fatalf("export: %v", err)
	}

	session, ok := e.Tables().Table(TableSession)
	if !ok {
		t.Fatal("session table missing")
	}
	if session.Rows() != 1 {
		t.Fatalf("session rows: got %d, want 1", session.Rows())
	}

	model, _ := session.Column("device_model")
	if model[0].Text != "Spectrum" {
		t.Errorf("device_model: got %+v", model[0])
	}
	id, ok := session.Column("export_id")
	if !ok || id[0].Text != e.SessionID().String() {
		t.Errorf("export_id: got %+v, want %s", id, e.SessionID())
	}
}

func TestExport_RenameMapAppliesToColumns(t *testing.T) {
	e := newTestExporter(map[string]string{
		"left_pupil_diameter": "pupil_l",
		"msg_prior":           "last_message",
	})
	if err := e.Export(testRecording()); err != nil {
		t.Fatalf("export: %v", err)
	}

	gaze, _ := e.Tables().Table(TableGaze)
	if _, ok := gaze.Column("pupil_l"); !ok {
		t.Error("renamed pupil column missing")
	}
	if _, ok := gaze.Column("left_pupil_diameter"); ok {
		t.Error("default pupil column should not exist after rename")
	}
	if _, ok := gaze.Column("last_message"); !ok {
		t.Error("renamed bracket column missing")
	}
}

func TestExport_OverrideWinsOverRename(t *testing.T) {
	e := newTestExporter(map[string]string{"left_pupil_diameter": "pupil_l"})
	e.Overrides = map[string]any{"left_pupil_diameter": "pd"}
	if err := e.Export(testRecording()); err != nil {
		t.Fatalf("export: %v", err)
	}

	gaze, _ := e.Tables().Table(TableGaze)
	if _, ok := gaze.Column("pd"); !ok {
		t.Errorf("override column missing; have %v", gaze.Names())
	}
}

func TestExport_TableOrder(t *testing.T) {
	e := newTestExporter(nil)
	if err := e.Export(testRecording()); err != nil {
		t.Fatalf("export: %v", err)
	}

	ids := e.Tables().TableIDs()
	want := []string{TableSession, TableGaze, TableMessages, TableLog}
	if len(ids) != len(want) {
		t.Fatalf("tables: got %v, want %v", ids, want)
	}
	for i, id := range want {
		if ids[i] != id {
			t.Errorf("tables[%d]: got %q, want %q", i, ids[i], id)
		}
	}
}

func TestExport_NoMessages(t *testing.T) {
	rec := testRecording()
	rec.Messages = nil
	e := newTestExporter(nil)
	if err := e.Export(rec); err != nil {
		t.Fatalf("export: %v", err)
	}

	gaze, _ := e.Tables().Table(TableGaze)
	prior, _ := gaze.Column(bracket.ColPriorTime)
	for i, c := range prior {
		if !c.IsMissing() {
			t.Errorf("prior[%d]: got %+v, want missing", i, c)
		}
	}
}
