package core

import (
	"regexp"
	"strings"
)

// unsafeBranchChars matches characters that are not safe in git branch names.
var unsafeBranchChars = regexp.MustCompile(`[^a-zA-Z0-9._/-]`)

// collapseDashes collapses consecutive dashes into a single dash.
var collapseDashes = regexp.MustCompile(`-{2,}`)

// TaskBranchName builds the canonical branch name for a task slug:
// {prefix}-{slug}, with the slug sanitized for git.
func TaskBranchName(prefix, slug string) string {
	return prefix + "-" + sanitizeBranchSegment(slug)
}

// TaskBranchPattern builds the ref glob that matches every branch belonging
// to a task id: refs/heads/{prefix}-{id}-*.
func TaskBranchPattern(prefix, id string) string {
	return "refs/heads/" + prefix + "-" + id + "-*"
}

// sanitizeBranchSegment replaces spaces and special characters with dashes,
// collapses consecutive dashes, trims leading/trailing dashes, and lowercases
// the result. The output is safe for use as a git branch name segment.
func sanitizeBranchSegment(s string) string {
	s = strings.ToLower(s)
	s = unsafeBranchChars.ReplaceAllString(s, "-")
	s = collapseDashes.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	return s
}
