package events

// TriggerTypes is the canonical set the dashboard offers when creating a
// trigger. Normalize can additionally emit pull_request.<action>,
// create.<ref_type> and delete.<ref_type> for whatever GitHub supplies.
var TriggerTypes = []string{
	"pull_request.opened",
	"pull_request.closed",
	"pull_request.merged",
	"push",
	"create.branch",
	"delete.branch",
}

// Normalize maps a raw GitHub event category plus its payload to this
// system's canonical event type. Stored trigger rows match against these
// strings exactly, so the grammar must stay stable.
//
// A closed pull request whose payload carries pull_request.merged == true
// normalizes to "pull_request.merged", not "pull_request.closed"; GitHub
// reports merges as a close with a merged flag, and the merged variant is
// a selectable trigger type. A pull_request payload without an action
// yields the literal "pull_request." which matches nothing.
//
// Total function: unknown categories (push included) pass through unchanged.
func Normalize(raw string, payload map[string]interface{}) string {
	switch raw {
	case "pull_request":
		action, _ := payload["action"].(string)
		if action == "closed" && pullRequestMerged(payload) {
			return "pull_request.merged"
		}
		return "pull_request." + action
	case "create", "delete":
		if refType, ok := payload["ref_type"].(string); ok {
			return raw + "." + refType
		}
	}
	return raw
}

func pullRequestMerged(payload map[string]interface{}) bool {
	pr, ok := payload["pull_request"].(map[string]interface{})
	if !ok {
		return false
	}
	merged, _ := pr["merged"].(bool)
	return merged
}
