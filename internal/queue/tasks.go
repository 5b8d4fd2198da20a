package queue

const (
	TypeAudioProcess = "audio:process"

	// QueueDefault is the only queue audio jobs use.
	QueueDefault = "default"
)

// AudioProcessPayload points a worker at an uploaded file in object storage.
// The task id equals ProcessID.
type AudioProcessPayload struct {
	ProcessID  string `json:"process_id"`
	Filename   string `json:"filename"`
	StorageKey string `json:"storage_key"`
	Language   string `json:"language,omitempty"`
	Enhance    bool   `json:"enhance,omitempty"`
	Summarize  bool   `json:"summarize,omitempty"`
}

// JobStatus is the externally visible state of an async job.
type JobStatus string

const (
	StatusQueued    JobStatus = "queued"
	StatusRunning   JobStatus = "running"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
	StatusUnknown   JobStatus = "unknown"
)
