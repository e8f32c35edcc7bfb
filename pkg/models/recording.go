package models

// Recording is a full capture session as decoded from disk.
// This is the internal format used throughout gazeport.
type Recording struct {
	Session       SessionInfo    `msgpack:"session" json:"session"`
	Gaze          Gaze           `msgpack:"gaze" json:"gaze"`
	Messages      []Message      `msgpack:"messages" json:"messages"`
	Logs          []LogEntry     `msgpack:"log" json:"log"`
	Notifications []Notification `msgpack:"notifications" json:"notifications"`

	// Calibration is carried through untouched. Interpreting it is out of
	// scope for the exporter.
	Calibration []byte `msgpack:"calibration,omitempty" json:"calibration,omitempty"`
}

// SessionInfo holds device and session metadata captured at recording start.
type SessionInfo struct {
	DeviceModel     string  `msgpack:"device_model" json:"device_model"`
	SerialNumber    string  `msgpack:"serial_number" json:"serial_number"`
	FirmwareVersion string  `msgpack:"firmware_version" json:"firmware_version"`
	RuntimeVersion  string  `msgpack:"runtime_version" json:"runtime_version"`
	TrackingMode    string  `msgpack:"tracking_mode" json:"tracking_mode"`
	SampleFrequency float64 `msgpack:"sample_frequency" json:"sample_frequency"`
	DisplayWidthPx  int64   `msgpack:"display_width_px" json:"display_width_px"`
	DisplayHeightPx int64   `msgpack:"display_height_px" json:"display_height_px"`

	// Recording start on the two clocks, microseconds.
	StartSystemTime int64 `msgpack:"start_system_time" json:"start_system_time"`
	StartDeviceTime int64 `msgpack:"start_device_time" json:"start_device_time"`
}

// Gaze holds the dense time-series in columnar form: parallel arrays with
// one entry per sample. Missing signal values are NaN.
type Gaze struct {
	// Timestamps in microseconds, ascending.
	SystemTime []int64 `msgpack:"system_time" json:"system_time"`
	DeviceTime []int64 `msgpack:"device_time" json:"device_time"`

	Left  EyeData `msgpack:"left" json:"left"`
	Right EyeData `msgpack:"right" json:"right"`
}

// EyeData holds the per-eye gaze signals, one array entry per sample.
type EyeData struct {
	// Gaze point on the display area, normalized [0,1].
	GazePointOnDisplayX []float64 `msgpack:"gaze_point_on_display_x" json:"gaze_point_on_display_x"`
	GazePointOnDisplayY []float64 `msgpack:"gaze_point_on_display_y" json:"gaze_point_on_display_y"`

	// Gaze point in the user coordinate system, millimeters.
	GazePointInUserX []float64 `msgpack:"gaze_point_in_user_x" json:"gaze_point_in_user_x"`
	GazePointInUserY []float64 `msgpack:"gaze_point_in_user_y" json:"gaze_point_in_user_y"`
	GazePointInUserZ []float64 `msgpack:"gaze_point_in_user_z" json:"gaze_point_in_user_z"`
	GazePointValid   []bool    `msgpack:"gaze_point_valid" json:"gaze_point_valid"`

	PupilDiameter []float64 `msgpack:"pupil_diameter" json:"pupil_diameter"`
	PupilValid    []bool    `msgpack:"pupil_valid" json:"pupil_valid"`

	// Gaze origin in the user coordinate system, millimeters.
	GazeOriginInUserX []float64 `msgpack:"gaze_origin_in_user_x" json:"gaze_origin_in_user_x"`
	GazeOriginInUserY []float64 `msgpack:"gaze_origin_in_user_y" json:"gaze_origin_in_user_y"`
	GazeOriginInUserZ []float64 `msgpack:"gaze_origin_in_user_z" json:"gaze_origin_in_user_z"`
	GazeOriginValid   []bool    `msgpack:"gaze_origin_valid" json:"gaze_origin_valid"`
}

// Message is one annotated event: a caller-supplied marker sent during the
// recording. The stream is sparse and irregularly timed relative to the
// gaze samples.
type Message struct {
	Time int64  `msgpack:"time" json:"time"` // system clock, microseconds
	Text string `msgpack:"text" json:"text"`
}

// LogEntry is one line from the capture library's own log.
type LogEntry struct {
	Time  int64  `msgpack:"time" json:"time"`
	Level string `msgpack:"level" json:"level"`
	Text  string `msgpack:"text" json:"text"`
}

// Notification is a device state-change event (e.g. connection lost,
// tracking mode switched).
type Notification struct {
	Time   int64  `msgpack:"time" json:"time"`
	Kind   string `msgpack:"kind" json:"kind"`
	Detail string `msgpack:"detail" json:"detail"`
}

// SampleCount returns the number of gaze samples, taken from the system
// timestamp column.
func (g *Gaze) SampleCount() int {
	return len(g.SystemTime)
}
