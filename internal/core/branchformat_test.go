package core

import "testing"

func TestTaskBranchName(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		slug   string
		want   string
	}{
		{
			name:   "plain slug",
			prefix: "task",
			slug:   "01-wire-up-parser",
			want:   "task-01-wire-up-parser",
		},
		{
			name:   "spaces become dashes",
			prefix: "task",
			slug:   "02 fix login timeout",
			want:   "task-02-fix-login-timeout",
		},
		{
			name:   "special characters collapse",
			prefix: "feat",
			slug:   "03-evaluate: redis!!",
			want:   "feat-03-evaluate-redis",
		},
		{
			name:   "uppercase lowered",
			prefix: "task",
			slug:   "04-Add-Auth",
			want:   "task-04-add-auth",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TaskBranchName(tt.prefix, tt.slug); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTaskBranchPattern(t *testing.T) {
	if got := TaskBranchPattern("task", "01"); got != "refs/heads/task-01-*" {
		t.Errorf("unexpected pattern: %q", got)
	}
}
