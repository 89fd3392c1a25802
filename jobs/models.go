// Copyright 2026 Quillstack Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package jobs

import "time"

// Job status values. A job in StatusCompleted or StatusFailed is terminal.
const (
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Per-document status values within a job.
const (
	DocCompleted = "completed"
	DocFailed    = "failed"
)

// DocumentEntry records the terminal outcome of one document within a job.
type DocumentEntry struct {
	Filename string `json:"filename"`
	Status   string `json:"status"`
	Error    string `json:"error,omitempty"`
}

// Job is the progress record for one batch ingestion job. It is serialized
// to JSON for storage.
type Job struct {
	JobID              string                   `json:"job_id"`
	Status             string                   `json:"status"`
	TotalDocuments     int                      `json:"total_documents"`
	CompletedDocuments int                      `json:"completed_documents"`
	FailedDocuments    int                      `json:"failed_documents"`
	Documents          map[string]DocumentEntry `json:"documents"`
	CurrentFile        string                   `json:"current_file,omitempty"`
	Error              string                   `json:"error,omitempty"`
	CreatedAt          time.Time                `json:"created_at"`
	UpdatedAt          time.Time                `json:"updated_at"`
}

// Terminal reports whether the job has reached a final status.
func (j *Job) Terminal() bool {
	return j.Status == StatusCompleted || j.Status == StatusFailed
}
