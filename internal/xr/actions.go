package xr

// Action names one input of the interaction action set.
type Action int

const (
	ActionPose Action = iota
	ActionPlace
	ActionExpand
	ActionShrink
	ActionModifierXA
	ActionModifierYB
	ActionThumbstickX
	ActionThumbstickY
)

// ActionKind is the value type an action produces.
type ActionKind int

const (
	KindPose ActionKind = iota
	KindBool
	KindFloat
)

// ActionDef describes one action of the set and where it is bound on each hand.
type ActionDef struct {
	Action    Action
	Name      string
	Localized string
	Kind      ActionKind
	// Bindings holds the component path per hand, relative to Hand.Path().
	Bindings [HandCount]string
}

// ActionSetName is the name the action set is registered under.
const ActionSetName = "interaction"

// InteractionProfile is the controller family the bindings are suggested for.
const InteractionProfile = "/interaction_profiles/hp/mixed_reality_controller"

// ActionSet is the fixed action table. The two modifiers map to the face buttons:
// X/Y on the left controller, A/B on the right one.
var ActionSet = []ActionDef{
	{ActionPose, "pose", "Pose", KindPose, [HandCount]string{"/input/grip/pose", "/input/grip/pose"}},
	{ActionPlace, "place", "Place", KindBool, [HandCount]string{"/input/thumbstick/click", "/input/thumbstick/click"}},
	{ActionExpand, "expand", "Expand", KindFloat, [HandCount]string{"/input/trigger/value", "/input/trigger/value"}},
	{ActionShrink, "shrink", "Shrink", KindFloat, [HandCount]string{"/input/squeeze/value", "/input/squeeze/value"}},
	{ActionModifierXA, "modifier_xa", "Modifier XA", KindBool, [HandCount]string{"/input/x/click", "/input/a/click"}},
	{ActionModifierYB, "modifier_yb", "Modifier YB", KindBool, [HandCount]string{"/input/y/click", "/input/b/click"}},
	{ActionThumbstickX, "thumbstick_x", "Thumbstick X", KindFloat, [HandCount]string{"/input/thumbstick/x", "/input/thumbstick/x"}},
	{ActionThumbstickY, "thumbstick_y", "Thumbstick Y", KindFloat, [HandCount]string{"/input/thumbstick/y", "/input/thumbstick/y"}},
}

func (a Action) String() string {
	for _, d := range ActionSet {
		if d.Action == a {
			return d.Name
		}
	}
	return "unknown"
}

// SuggestedBindings expands the action table into full binding paths.
func SuggestedBindings() map[Action][]string {
	out := make(map[Action][]string, len(ActionSet))
	for _, d := range ActionSet {
		for _, h := range Hands {
			out[d.Action] = append(out[d.Action], h.Path()+d.Bindings[h])
		}
	}
	return out
}
