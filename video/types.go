package video

// CreateRequest 是一次视频生成任务请求。
type CreateRequest struct {
	Model   string `json:"model"`
	Prompt  string `json:"prompt"`
	Size    string `json:"size,omitempty"`
	Seconds string `json:"seconds,omitempty"`
}

// RemixRequest 基于既有视频生成新版本。
type RemixRequest struct {
	Prompt string `json:"prompt"`
}

// Job 是视频任务的快照。
type Job struct {
	ID                 string    `json:"id"`
	Object             string    `json:"object,omitempty"`
	Model              string    `json:"model,omitempty"`
	Status             string    `json:"status"` // queued, in_progress, completed, failed
	Progress           int       `json:"progress,omitempty"`
	Prompt             string    `json:"prompt,omitempty"`
	Size               string    `json:"size,omitempty"`
	Seconds            string    `json:"seconds,omitempty"`
	CreatedAt          int64     `json:"created_at,omitempty"`
	CompletedAt        int64     `json:"completed_at,omitempty"`
	ExpiresAt          int64     `json:"expires_at,omitempty"`
	RemixedFromVideoID string    `json:"remixed_from_video_id,omitempty"`
	Error              *JobError `json:"error,omitempty"`
}

// JobError 是供应商报告的任务失败详情。
type JobError struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// Done 报告任务是否已到终态。
func (j *Job) Done() bool {
	return j.Status == "completed" || j.Status == "failed"
}

// List 是任务列表响应。
type List struct {
	Object  string `json:"object,omitempty"`
	Data    []Job  `json:"data"`
	HasMore bool   `json:"has_more,omitempty"`
}
