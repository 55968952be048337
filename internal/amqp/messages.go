package amqp

import (
	"encoding/json"
	"time"
)

// DatasetReloadMessage tells the export worker that the donations file was
// (re)loaded. It carries only the path and the file's modification time; the
// worker re-reads the dataset itself rather than shipping rows over the bus.
type DatasetReloadMessage struct {
	Path      string    `json:"path"`
	ModTime   time.Time `json:"mod_time"`
	RowsKept  int       `json:"rows_kept"`
	Timestamp time.Time `json:"timestamp"`
}

// NewDatasetReloadMessage creates a reload notification for a loaded file.
func NewDatasetReloadMessage(path string, modTime time.Time, rowsKept int) *DatasetReloadMessage {
	return &DatasetReloadMessage{
		Path:      path,
		ModTime:   modTime,
		RowsKept:  rowsKept,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *DatasetReloadMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// DatasetReloadMessageFromJSON creates a message from JSON bytes
func DatasetReloadMessageFromJSON(data []byte) (*DatasetReloadMessage, error) {
	var msg DatasetReloadMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
