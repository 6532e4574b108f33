package model

import (
	"database/sql"
	"time"

	geom "github.com/peterstace/simplefeatures/geom"
	"gorm.io/datatypes"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []interface{}{
	&ScanRun{},
	&Recording{},
	&RecordingEvent{},
	&ScanFailure{},
}

// ScanRun is one pass over a directory tree.
type ScanRun struct {
	ID        string       `json:"id" gorm:"primaryKey;size:27"`
	Root      string       `json:"root" gorm:"size:1024"`
	Workers   int          `json:"workers"`
	StartedAt time.Time    `json:"startedAt" gorm:"index"`
	EndedAt   sql.NullTime `json:"endedAt"`
	Files     int          `json:"files"`
	OK        int          `json:"ok"`
	Failed    int          `json:"failed"`
	Skipped   int          `json:"skipped"`
}

func (*ScanRun) TableName() string {
	return "scan_runs"
}

// Recording is a decoded replay file and its digest.
type Recording struct {
	ID        uint      `json:"id" gorm:"primarykey;autoIncrement;"`
	CreatedAt time.Time `json:"createdAt"`
	RunID     string    `json:"runId" gorm:"size:27;index:idx_recording_run_id"`
	Run       ScanRun   `json:"-" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:RunID;"`

	Path     string    `json:"path" gorm:"size:1024;index:idx_recording_path"`
	Size     int64     `json:"size"`
	ModTime  time.Time `json:"modTime"`
	Checksum string    `json:"checksum" gorm:"size:64;index:idx_recording_checksum"`

	Version    uint32 `json:"version"`
	Link       uint32 `json:"link"`
	Level      uint32 `json:"level" gorm:"index:idx_recording_level"`
	FrameCount uint32 `json:"frameCount"`
	EventCount int    `json:"eventCount"`

	Apples           int     `json:"apples"`
	ObjectsTaken     int     `json:"objectsTaken"`
	Bounces          int     `json:"bounces"`
	Volts            int     `json:"volts"`
	DirectionChanges int     `json:"directionChanges"`
	Finished         bool    `json:"finished"`
	Failed           bool    `json:"failed"`
	Duration         float64 `json:"duration"`
	TrackLength      float64 `json:"trackLength"`

	Track  geom.LineString `json:"-"`      // bike path, M = frame index
	Bounds datatypes.JSON  `json:"bounds"` // geo.Box or null

	Events []RecordingEvent `json:"events" gorm:"foreignkey:RecordingID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

func (*Recording) TableName() string {
	return "recordings"
}

// RecordingEvent is one event of a Recording, in file order.
type RecordingEvent struct {
	ID          uint    `json:"id" gorm:"primarykey;autoIncrement;"`
	RecordingID uint    `json:"recordingId" gorm:"index:idx_recording_event_recording_id"`
	Seq         int     `json:"seq"`
	Time        float64 `json:"time"`
	Object      int16   `json:"object"`
	Kind        string  `json:"kind" gorm:"size:16;index:idx_recording_event_kind"`
	Volume      float32 `json:"volume"`
}

func (*RecordingEvent) TableName() string {
	return "recording_events"
}

// ScanFailure is a file that could not be decoded.
type ScanFailure struct {
	ID        uint      `json:"id" gorm:"primarykey;autoIncrement;"`
	CreatedAt time.Time `json:"createdAt"`
	RunID     string    `json:"runId" gorm:"size:27;index:idx_scan_failure_run_id"`
	Run       ScanRun   `json:"-" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:RunID;"`
	Path      string    `json:"path" gorm:"size:1024"`
	Size      int64     `json:"size"`
	ModTime   time.Time `json:"modTime"`
	Checksum  string    `json:"checksum" gorm:"size:64"`
	Stage     string    `json:"stage" gorm:"size:32;index:idx_scan_failure_stage"`
	Offset    int       `json:"offset"`
	Error     string    `json:"error" gorm:"size:1024"`
}

func (*ScanFailure) TableName() string {
	return "scan_failures"
}
