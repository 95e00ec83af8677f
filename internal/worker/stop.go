package worker

import (
	"fmt"
	"time"

	"jobd/internal/launcher"
	"jobd/internal/model"
	"jobd/internal/store"
)

// Stop cancels a job: if the record carries a live child pid its whole
// process tree is killed, and the record is marked cancelled so the
// worker's next cooperative checkpoint honors it. Jobs that already
// reached a terminal status are left untouched, which makes Stop
// idempotent. killed reports whether a termination signal was delivered.
func Stop(st *store.Store, jobID string) (killed bool, reason string, err error) {
	job, err := st.Read(jobID)
	if err != nil {
		return false, "", err
	}

	if job.Terminal() {
		return false, fmt.Sprintf("job already %s", job.Status), nil
	}

	reason = "no live process to terminate"
	if job.PID > 0 {
		if termErr := launcher.Terminate(job.PID); termErr != nil {
			reason = fmt.Sprintf("failed to terminate pid %d: %v", job.PID, termErr)
		} else {
			killed = true
			reason = fmt.Sprintf("terminated pid %d", job.PID)
		}
	}

	now := time.Now()
	job.Status = model.StatusCancelled
	job.EndedAt = &now
	job.NextRetryAt = nil
	if err := st.Write(job); err != nil {
		return killed, reason, err
	}
	st.AppendLog(jobID, "[control] stop requested: "+reason+"\n")
	return killed, reason, nil
}
