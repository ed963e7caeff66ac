package events

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		payload map[string]interface{}
		want    string
	}{
		{
			name:    "pull request action",
			raw:     "pull_request",
			payload: map[string]interface{}{"action": "opened"},
			want:    "pull_request.opened",
		},
		{
			name: "pull request closed without merge",
			raw:  "pull_request",
			payload: map[string]interface{}{
				"action":       "closed",
				"pull_request": map[string]interface{}{"merged": false},
			},
			want: "pull_request.closed",
		},
		{
			name: "pull request merged",
			raw:  "pull_request",
			payload: map[string]interface{}{
				"action":       "closed",
				"pull_request": map[string]interface{}{"merged": true},
			},
			want: "pull_request.merged",
		},
		{
			name: "merged flag ignored unless action is closed",
			raw:  "pull_request",
			payload: map[string]interface{}{
				"action":       "reopened",
				"pull_request": map[string]interface{}{"merged": true},
			},
			want: "pull_request.reopened",
		},
		{
			name:    "pull request without action",
			raw:     "pull_request",
			payload: map[string]interface{}{},
			want:    "pull_request.",
		},
		{
			name:    "branch created",
			raw:     "create",
			payload: map[string]interface{}{"ref_type": "branch"},
			want:    "create.branch",
		},
		{
			name:    "tag deleted",
			raw:     "delete",
			payload: map[string]interface{}{"ref_type": "tag"},
			want:    "delete.tag",
		},
		{
			name:    "create without ref_type passes through",
			raw:     "create",
			payload: map[string]interface{}{"ref": "main"},
			want:    "create",
		},
		{
			name:    "push passes through",
			raw:     "push",
			payload: map[string]interface{}{"ref": "refs/heads/main"},
			want:    "push",
		},
		{
			name:    "unknown category passes through",
			raw:     "workflow_run",
			payload: map[string]interface{}{"action": "completed"},
			want:    "workflow_run",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.raw, tt.payload)
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.raw, got, tt.want)
			}

			// Pure function: same input, same output.
			if again := Normalize(tt.raw, tt.payload); again != got {
				t.Errorf("Normalize not deterministic: %q then %q", got, again)
			}
		})
	}
}
