package runlog

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// DefaultFileName is the run log written next to the config.
const DefaultFileName = "ticksel-runs.log"

// FileSink appends events to a JSON Lines file.
type FileSink struct {
	path string
}

// NewFileSink creates a sink writing to path. The file and its directory
// are created on first write.
func NewFileSink(path string) *FileSink {
	return &FileSink{path: path}
}

// Path returns the file the sink writes to.
func (s *FileSink) Path() string {
	return s.path
}

// Write appends events, one JSON object per line.
func (s *FileSink) Write(events []Event) error {
	if len(events) == 0 {
		return nil
	}

	var buf []byte
	for _, e := range events {
		line, err := json.Marshal(e)
		if err != nil {
			return err
		}
		buf = append(buf, line...)
		buf = append(buf, '\n')
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.Write(buf)
	return err
}
