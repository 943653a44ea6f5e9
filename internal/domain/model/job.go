package model

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"
)

// Job asks for one event log to be scored.
type Job struct {
	// ID fingerprints the file state the job was created for.
	ID      string
	Path    string
	Size    int64
	ModTime time.Time
}

// NewJob builds a Job whose ID changes whenever the file is rewritten.
func NewJob(path string, size int64, modTime time.Time) Job {
	h := sha256.New()
	h.Write([]byte(path))
	h.Write([]byte{0})
	h.Write([]byte(strconv.FormatInt(size, 10)))
	h.Write([]byte{0})
	h.Write([]byte(strconv.FormatInt(modTime.UnixNano(), 10)))
	return Job{
		ID:      hex.EncodeToString(h.Sum(nil)[:16]),
		Path:    path,
		Size:    size,
		ModTime: modTime,
	}
}
