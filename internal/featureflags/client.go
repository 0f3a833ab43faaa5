// Package featureflags gates optional behavior behind named flags enabled
// through the experimentals configuration.
package featureflags

// FlagPushChannel enables folding of real-time push channel events into the
// workspace state.
const FlagPushChannel = "push-channel"

type Client interface {
	// Boolean reports whether flagName is enabled. featureCtx carries the
	// attributes of the evaluated entity, such as the workspace.
	Boolean(flagName string, defaultValue bool, featureCtx map[string]any) bool
}

type defaultClient struct {
	flags map[string]struct{}
}

// NewDefaultClient enables exactly the given flags.
func NewDefaultClient(flags []string) Client {
	enabled := make(map[string]struct{}, len(flags))
	for _, flag := range flags {
		enabled[flag] = struct{}{}
	}
	return &defaultClient{flags: enabled}
}

func (c *defaultClient) Boolean(flagName string, defaultValue bool, _ map[string]any) bool {
	_, ok := c.flags[flagName]
	return ok || defaultValue
}

type hardcodedBooleanClient struct {
	result bool
}

// NewHardcodedBooleanClient returns a client answering result for every flag.
// Tests use it to force a feature on or off.
func NewHardcodedBooleanClient(result bool) Client {
	return &hardcodedBooleanClient{result: result}
}

func (h *hardcodedBooleanClient) Boolean(string, bool, map[string]any) bool {
	return h.result
}
