package timectl

import (
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"

	"github.com/pepperonas/mrx3k1-sub002/internal/hue"
)

// The bridge addresses a schedule's command at one of four v1 resource
// paths. The codec below is a pure translation between Action and that
// envelope; unrecognized addresses decode to "no action" so schedules
// created by other tools can still be listed.

var (
	lightStateRe  = regexp.MustCompile(`/lights/([^/]+)/state$`)
	groupActionRe = regexp.MustCompile(`/groups/([^/]+)/action$`)
	sensorStateRe = regexp.MustCompile(`/sensors/([^/]+)/state$`)
)

// EncodeCommand converts an action into the bridge's command envelope.
// The username is embedded in the address, as the bridge requires
// absolute v1 paths inside schedules.
func EncodeCommand(a Action, username string) (hue.Command, error) {
	if a.Target == "" {
		return hue.Command{}, &ValidationError{Field: "action.target", Reason: "must not be empty"}
	}

	var address string
	payload := a.State

	switch a.Kind {
	case ActionLight:
		address = fmt.Sprintf("/api/%s/lights/%s/state", username, a.Target)
	case ActionGroup:
		address = fmt.Sprintf("/api/%s/groups/%s/action", username, a.Target)
	case ActionScene:
		// Scene recall is a group action against group 0 (all lights)
		// carrying only the scene id.
		address = fmt.Sprintf("/api/%s/groups/0/action", username)
		payload = map[string]any{"scene": a.Target}
	case ActionSensor:
		address = fmt.Sprintf("/api/%s/sensors/%s/state", username, a.Target)
	default:
		return hue.Command{}, &ValidationError{Field: "action.kind", Reason: "unknown kind " + string(a.Kind)}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return hue.Command{}, fmt.Errorf("failed to encode action state: %w", err)
	}

	return hue.Command{
		Address: address,
		Body:    body,
		Method:  http.MethodPut,
	}, nil
}

// DecodeCommand reconstructs an action from a command envelope. The
// second return value is false when the address matches none of the four
// known shapes; such schedules are reported with empty actions, not as
// errors.
func DecodeCommand(cmd hue.Command) (Action, bool) {
	var state map[string]any
	if len(cmd.Body) > 0 {
		if err := json.Unmarshal(cmd.Body, &state); err != nil {
			return Action{}, false
		}
	}

	if m := lightStateRe.FindStringSubmatch(cmd.Address); m != nil {
		return Action{Kind: ActionLight, Target: m[1], State: state}, true
	}

	if m := groupActionRe.FindStringSubmatch(cmd.Address); m != nil {
		if scene, ok := state["scene"].(string); ok {
			return Action{Kind: ActionScene, Target: scene, State: state}, true
		}
		return Action{Kind: ActionGroup, Target: m[1], State: state}, true
	}

	if m := sensorStateRe.FindStringSubmatch(cmd.Address); m != nil {
		return Action{Kind: ActionSensor, Target: m[1], State: state}, true
	}

	return Action{}, false
}
