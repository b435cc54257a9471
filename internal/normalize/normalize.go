// Package normalize converts raw source payloads into canonical event
// records. Input is a loosely typed map as decoded from JSON; output is
// the tagged union the record store persists. Normalization is
// idempotent: feeding a normalized record's JSON form back through
// produces the same record.
package normalize

import (
	"strings"

	"github.com/devexhq/pulse/internal/contract"
	"github.com/devexhq/pulse/schema"
)

// Normalize validates and converts one raw payload into an EventRecord.
// A payload missing a structurally required field (id, created_at)
// yields a MalformedRecordError; everything else gets a usable default.
// All timestamps come out in UTC.
func Normalize(raw map[string]any, source schema.SourceType) (schema.EventRecord, error) {
	if _, ok := schema.ValidSourceTypes[source]; !ok {
		return schema.EventRecord{}, contract.NewMalformedRecordError(string(source), "source")
	}

	// 1. Structurally required fields.
	id := getString(raw, "id")
	if id == "" {
		return schema.EventRecord{}, contract.NewMalformedRecordError(string(source), "id")
	}
	createdAt, ok := getTime(raw, "created_at")
	if !ok {
		return schema.EventRecord{}, contract.NewMalformedRecordError(string(source), "created_at")
	}

	// 2. Common optional fields.
	record := schema.EventRecord{
		ID:         id,
		Source:     source,
		Repository: getString(raw, "repository"),
		Author:     getString(raw, "author"),
		CreatedAt:  createdAt,
		UpdatedAt:  getTimePtr(raw, "updated_at"),
		ClosedAt:   getTimePtr(raw, "closed_at"),
		State:      strings.ToLower(getString(raw, "state")),
	}

	// 3. Variant metadata. Payloads may nest the variant under its own
	// key (the record's own JSON form does) or carry the fields flat.
	switch source {
	case schema.PullRequestSource:
		record.PullRequest = normalizePullRequest(variantFields(raw, "pull_request"))
		if record.PullRequest.MergedAt != nil {
			record.State = schema.PRStateMerged
		} else if record.State == "" {
			record.State = schema.PRStateOpen
		}
	case schema.IssueSource:
		record.Issue = normalizeIssue(variantFields(raw, "issue"))
		if record.State == "" {
			record.State = schema.IssueStateOpen
		}
	case schema.CommitSource:
		record.Commit = normalizeCommit(variantFields(raw, "commit"))
	case schema.WorkflowRunSource:
		record.WorkflowRun = normalizeWorkflowRun(variantFields(raw, "workflow_run"))
		if record.State == "" {
			record.State = record.WorkflowRun.Conclusion
		}
	}

	return record, nil
}

// variantFields returns the nested variant map when present, otherwise
// the top-level map so flat payloads work too.
func variantFields(raw map[string]any, key string) map[string]any {
	if nested, ok := raw[key].(map[string]any); ok {
		return nested
	}
	return raw
}

func normalizePullRequest(fields map[string]any) *schema.PullRequestMeta {
	return &schema.PullRequestMeta{
		Additions:    getInt(fields, "additions"),
		Deletions:    getInt(fields, "deletions"),
		ReviewCount:  getInt(fields, "review_count"),
		CommentCount: getInt(fields, "comment_count"),
		ChangedFiles: getInt(fields, "changed_files"),
		MergedAt:     getTimePtr(fields, "merged_at"),
	}
}

func normalizeIssue(fields map[string]any) *schema.IssueMeta {
	return &schema.IssueMeta{
		Labels:      getStringSlice(fields, "labels"),
		StoryPoints: getFloat(fields, "story_points"),
		IssueType:   getString(fields, "issue_type"),
		Priority:    getString(fields, "priority"),
		Assignee:    getString(fields, "assignee"),
	}
}

func normalizeCommit(fields map[string]any) *schema.CommitMeta {
	return &schema.CommitMeta{
		Additions:    getInt(fields, "additions"),
		Deletions:    getInt(fields, "deletions"),
		FilesChanged: getInt(fields, "files_changed"),
		Message:      getString(fields, "message"),
	}
}

func normalizeWorkflowRun(fields map[string]any) *schema.WorkflowRunMeta {
	meta := &schema.WorkflowRunMeta{
		WorkflowName:    getString(fields, "workflow_name"),
		Conclusion:      strings.ToLower(getString(fields, "conclusion")),
		DurationSeconds: int64(getInt(fields, "duration_seconds")),
		StartedAt:       getTimePtr(fields, "started_at"),
		CompletedAt:     getTimePtr(fields, "completed_at"),
		RunnerName:      getString(fields, "runner_name"),
		RunnerType:      getString(fields, "runner_type"),
		Branch:          getString(fields, "branch"),
	}

	// Derive the duration from the run boundaries when not provided.
	if meta.DurationSeconds == 0 && meta.StartedAt != nil && meta.CompletedAt != nil {
		if d := meta.CompletedAt.Sub(*meta.StartedAt); d > 0 {
			meta.DurationSeconds = int64(d.Seconds())
		}
	}
	return meta
}
