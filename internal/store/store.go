package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"jobd/internal/model"
)

// ErrNotFound is returned when no record exists for a job id.
var ErrNotFound = errors.New("job not found")

// Store persists one JSON record file per job plus one append-only log
// file per job under the data directory. Record writes are atomic
// (temp file + rename) so concurrent readers never see a torn record.
type Store struct {
	dataDir string
}

func New(dataDir string) *Store {
	return &Store{dataDir: dataDir}
}

func (s *Store) JobsDir() string { return filepath.Join(s.dataDir, "jobs") }
func (s *Store) LogsDir() string { return filepath.Join(s.dataDir, "logs") }

func (s *Store) StatePath(jobID string) string {
	return filepath.Join(s.JobsDir(), jobID+".json")
}

func (s *Store) LogPath(jobID string) string {
	return filepath.Join(s.LogsDir(), jobID+".log")
}

// Read loads the record for jobID, or ErrNotFound.
func (s *Store) Read(jobID string) (*model.Job, error) {
	data, err := os.ReadFile(s.StatePath(jobID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read job %s: %w", jobID, err)
	}
	var job model.Job
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("failed to parse job %s: %w", jobID, err)
	}
	return &job, nil
}

// Write replaces the record for job.ID atomically. The record is
// marshalled into a uniquely named temp file in the jobs directory and
// renamed over the target; if the rename fails the temp file is removed
// and the previous record stays intact.
func (s *Store) Write(job *model.Job) error {
	if err := os.MkdirAll(s.JobsDir(), 0755); err != nil {
		return fmt.Errorf("failed to create jobs directory: %w", err)
	}

	data, err := json.MarshalIndent(job, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal job %s: %w", job.ID, err)
	}

	tmp, err := os.CreateTemp(s.JobsDir(), job.ID+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file for job %s: %w", job.ID, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write temp file for job %s: %w", job.ID, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file for job %s: %w", job.ID, err)
	}

	if err := os.Rename(tmpName, s.StatePath(job.ID)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace record for job %s: %w", job.ID, err)
	}
	return nil
}

// AppendLog appends text to the job's log file, creating it if needed.
func (s *Store) AppendLog(jobID, text string) error {
	f, err := s.OpenLog(jobID)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.WriteString(text); err != nil {
		return fmt.Errorf("failed to append to log for job %s: %w", jobID, err)
	}
	return nil
}

// OpenLog returns an append-mode handle on the job's log file, suitable
// for streaming a child process's output.
func (s *Store) OpenLog(jobID string) (*os.File, error) {
	if err := os.MkdirAll(s.LogsDir(), 0755); err != nil {
		return nil, fmt.Errorf("failed to create logs directory: %w", err)
	}
	f, err := os.OpenFile(s.LogPath(jobID), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log for job %s: %w", jobID, err)
	}
	return f, nil
}

// List returns the sorted ids of every job with a record on disk.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.JobsDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}

	var ids []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(ids)
	return ids, nil
}
