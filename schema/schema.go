// Package schema has models, enums and global defaults for all parts of pulse.
package schema

import "time"

// EventRecord is the canonical form of one engineering-activity event.
// It is a tagged union: Source selects which of the metadata pointers is
// populated, and exactly one of them is non-nil after normalization.
type EventRecord struct {
	ID         string     `json:"id"`         // Globally unique within its source+type
	Source     SourceType `json:"source"`     // Variant tag for the metadata union
	Repository string     `json:"repository"` // Owning repository, exactly one per record
	Author     string     `json:"author"`     // Author identity as reported by the source
	CreatedAt  time.Time  `json:"created_at"` // Creation timestamp, always UTC
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`
	ClosedAt   *time.Time `json:"closed_at,omitempty"`
	State      string     `json:"state"` // Enumerated per source type

	PullRequest *PullRequestMeta `json:"pull_request,omitempty"`
	Issue       *IssueMeta       `json:"issue,omitempty"`
	Commit      *CommitMeta      `json:"commit,omitempty"`
	WorkflowRun *WorkflowRunMeta `json:"workflow_run,omitempty"`
}

// PullRequestMeta holds pull-request specific attributes.
type PullRequestMeta struct {
	Additions    int        `json:"additions"`
	Deletions    int        `json:"deletions"`
	ReviewCount  int        `json:"review_count"`
	CommentCount int        `json:"comment_count"`
	ChangedFiles int        `json:"changed_files"`
	MergedAt     *time.Time `json:"merged_at,omitempty"`
}

// IssueMeta holds issue-tracker specific attributes.
type IssueMeta struct {
	Labels      []string `json:"labels,omitempty"`
	StoryPoints float64  `json:"story_points"`
	IssueType   string   `json:"issue_type,omitempty"`
	Priority    string   `json:"priority,omitempty"`
	Assignee    string   `json:"assignee,omitempty"`
}

// CommitMeta holds commit specific attributes.
type CommitMeta struct {
	Additions    int    `json:"additions"`
	Deletions    int    `json:"deletions"`
	FilesChanged int    `json:"files_changed"`
	Message      string `json:"message,omitempty"`
}

// WorkflowRunMeta holds CI workflow-run specific attributes.
type WorkflowRunMeta struct {
	WorkflowName    string     `json:"workflow_name"`
	Conclusion      string     `json:"conclusion"` // success, failure, cancelled, ...
	DurationSeconds int64      `json:"duration_seconds"`
	StartedAt       *time.Time `json:"started_at,omitempty"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	RunnerName      string     `json:"runner_name,omitempty"`
	RunnerType      string     `json:"runner_type,omitempty"` // github-hosted or self-hosted
	Branch          string     `json:"branch,omitempty"`
}

// Churn returns total lines added plus removed for records that carry
// line counts (pull requests and commits). Other variants report zero.
func (r *EventRecord) Churn() int {
	switch {
	case r.PullRequest != nil:
		return r.PullRequest.Additions + r.PullRequest.Deletions
	case r.Commit != nil:
		return r.Commit.Additions + r.Commit.Deletions
	default:
		return 0
	}
}

// Team maps a named team to its member identities. Teams are static
// configuration resolved at query time, never stored per-event.
type Team struct {
	Name    string   `json:"name"`
	Members []string `json:"members"`
}

// Window is a half-open UTC time interval [Start, End).
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewWindow builds a window with both endpoints forced to UTC.
func NewWindow(start, end time.Time) Window {
	return Window{Start: start.UTC(), End: end.UTC()}
}

// Contains reports whether t falls inside the half-open interval.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Duration returns the window length.
func (w Window) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// Days returns the window length in fractional days. Used to normalize
// rates like deployment frequency to a per-day figure.
func (w Window) Days() float64 {
	return w.Duration().Hours() / 24.0
}
