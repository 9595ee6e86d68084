package log

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const timestampLayout = "2006-01-02 15:04:05"

// EventLog is the plain-text, regex-parseable sink workers and the control
// plane write to. One instance owns one EventLog; the local and snapshot
// files live under the instance's data directory, the global file in the
// process working directory so sibling instances share it.
type EventLog struct {
	mu sync.Mutex

	port       int
	localPath  string
	globalPath string
	snapPath   string
}

// NewEventLog creates (but does not truncate) the local, global, and
// snapshot log files for an instance listening on port, rooted at dataDir.
func NewEventLog(port int, dataDir string) (*EventLog, error) {
	el := &EventLog{
		port:       port,
		localPath:  filepath.Join(dataDir, fmt.Sprintf("logs_%d.txt", port)),
		globalPath: "global_logs.txt",
		snapPath:   filepath.Join(dataDir, "snapshot_log.txt"),
	}
	for _, p := range []string{el.localPath, el.globalPath, el.snapPath} {
		if _, err := os.Stat(p); os.IsNotExist(err) {
			f, err := os.Create(p)
			if err != nil {
				return nil, err
			}
			f.Close()
		}
	}
	return el, nil
}

func (e *EventLog) appendLine(path, line string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteString(line + "\n")
	return err
}

func (e *EventLog) write(level, message string, global bool) {
	ts := time.Now().Format(timestampLayout)
	_ = e.appendLine(e.localPath, fmt.Sprintf("[%s][%s] %s", ts, level, message))
	if global {
		_ = e.appendLine(e.globalPath, fmt.Sprintf("[PORT %d][%s][%s] %s", e.port, ts, level, message))
	}
}

// Info writes an INFO line. When global is true it is mirrored to the
// process-wide log.
func (e *EventLog) Info(message string, global bool) { e.write("INFO", message, global) }

// Warn writes a WARN line.
func (e *EventLog) Warn(message string, global bool) { e.write("WARN", message, global) }

// Error writes an ERROR line.
func (e *EventLog) Error(message string, global bool) { e.write("ERROR", message, global) }

// SnapshotEvent writes to both the instance log and the dedicated snapshot
// log, unprefixed by level (snapshot lines carry their own description).
func (e *EventLog) SnapshotEvent(message string) {
	ts := time.Now().Format(timestampLayout)
	line := fmt.Sprintf("[%s] %s", ts, message)
	_ = e.appendLine(e.localPath, line)
	_ = e.appendLine(e.snapPath, line)
}

// Cleanup writes a CLEANUP line to the instance and global logs, and also
// to the snapshot log if the message mentions a snapshot.
func (e *EventLog) Cleanup(message string) {
	ts := time.Now().Format(timestampLayout)
	line := fmt.Sprintf("[%s][CLEANUP] %s", ts, message)
	_ = e.appendLine(e.localPath, line)
	_ = e.appendLine(e.globalPath, line)
	if strings.Contains(strings.ToLower(message), "snapshot") {
		_ = e.appendLine(e.snapPath, line)
	}
}

// LocalTail returns up to lastN lines from the instance log, oldest first.
func (e *EventLog) LocalTail(lastN int) ([]string, error) {
	return tailLines(e.localPath, lastN)
}

// GlobalTail returns up to lastN lines from the global log, oldest first.
func (e *EventLog) GlobalTail(lastN int) ([]string, error) {
	return tailLines(e.globalPath, lastN)
}

func tailLines(path string, lastN int) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) == 1 && lines[0] == "" {
		return []string{}, nil
	}
	if len(lines) > lastN {
		lines = lines[len(lines)-lastN:]
	}
	return lines, nil
}
