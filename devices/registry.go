package devices

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/ekmixon/ncclient/common"
	"github.com/ekmixon/ncclient/common/xmlns"
)

// ReplyKind tags the statically expected shape of an operation's reply.
// The handler's reply transforms are keyed by it, not by the content of
// the reply.
type ReplyKind string

const (
	// KindRPCReply is the general rpc reply shape.
	KindRPCReply ReplyKind = "rpc-reply"
	// KindGetSchema is the reply shape of the netconf monitoring
	// get-schema operation.
	KindGetSchema ReplyKind = "get-schema"
)

// ReplyTransform patches a parsed reply document in place, reporting
// whether the document was modified.
type ReplyTransform func(root *xmlns.Node) bool

// Operation describes one named rpc operation: how to build its request
// body and the kind of reply it produces.
type Operation struct {
	// NewRequest builds the request body from the operation arguments.
	NewRequest func(args ...string) (common.Request, error)

	// Kind routes the parsed reply to the handler transform for its shape.
	Kind ReplyKind
}

// Registry maps operation names to their descriptors.
type Registry map[string]Operation

// Merge overlays a vendor registry on a baseline, returning a new registry.
// Overlay entries win on name collision; neither input is modified.
func Merge(baseline, overlay Registry) Registry {
	merged := make(Registry, len(baseline)+len(overlay))
	for name, op := range baseline {
		merged[name] = op
	}
	for name, op := range overlay {
		merged[name] = op
	}
	return merged
}

// rawRequest passes a caller-supplied request body through unmodified.
func rawRequest(args ...string) (common.Request, error) {
	if len(args) != 1 {
		return nil, errors.Errorf("rpc takes the request body as its single argument, got %d", len(args))
	}
	return args[0], nil
}

// baselineOperations returns the standard operation set every handler
// starts from.
func baselineOperations() Registry {
	return Registry{
		"rpc": {NewRequest: rawRequest, Kind: KindRPCReply},
		"get": {Kind: KindRPCReply, NewRequest: func(args ...string) (common.Request, error) {
			if len(args) == 0 {
				return "<get/>", nil
			}
			return fmt.Sprintf(`<get><filter type="subtree">%s</filter></get>`, args[0]), nil
		}},
		"get-config": {Kind: KindRPCReply, NewRequest: func(args ...string) (common.Request, error) {
			source := "running"
			if len(args) > 0 && args[0] != "" {
				source = args[0]
			}
			if len(args) > 1 {
				return fmt.Sprintf(`<get-config><source><%s/></source><filter type="subtree">%s</filter></get-config>`,
					source, args[1]), nil
			}
			return fmt.Sprintf(`<get-config><source><%s/></source></get-config>`, source), nil
		}},
		"edit-config": {Kind: KindRPCReply, NewRequest: func(args ...string) (common.Request, error) {
			if len(args) != 2 {
				return nil, errors.New("edit-config takes a target datastore and a config body")
			}
			return fmt.Sprintf(`<edit-config><target><%s/></target><config>%s</config></edit-config>`,
				args[0], args[1]), nil
		}},
		"copy-config": {Kind: KindRPCReply, NewRequest: func(args ...string) (common.Request, error) {
			if len(args) != 2 {
				return nil, errors.New("copy-config takes a target and a source datastore")
			}
			return fmt.Sprintf(`<copy-config><target><%s/></target><source><%s/></source></copy-config>`,
				args[0], args[1]), nil
		}},
		"delete-config": {Kind: KindRPCReply, NewRequest: func(args ...string) (common.Request, error) {
			if len(args) != 1 {
				return nil, errors.New("delete-config takes a target datastore")
			}
			return fmt.Sprintf(`<delete-config><target><%s/></target></delete-config>`, args[0]), nil
		}},
		"lock": {Kind: KindRPCReply, NewRequest: func(args ...string) (common.Request, error) {
			return fmt.Sprintf(`<lock><target><%s/></target></lock>`, datastoreOrRunning(args)), nil
		}},
		"unlock": {Kind: KindRPCReply, NewRequest: func(args ...string) (common.Request, error) {
			return fmt.Sprintf(`<unlock><target><%s/></target></unlock>`, datastoreOrRunning(args)), nil
		}},
		"commit": {Kind: KindRPCReply, NewRequest: func(args ...string) (common.Request, error) {
			return "<commit/>", nil
		}},
		"discard-changes": {Kind: KindRPCReply, NewRequest: func(args ...string) (common.Request, error) {
			return "<discard-changes/>", nil
		}},
		"validate": {Kind: KindRPCReply, NewRequest: func(args ...string) (common.Request, error) {
			source := "candidate"
			if len(args) > 0 && args[0] != "" {
				source = args[0]
			}
			return fmt.Sprintf(`<validate><source><%s/></source></validate>`, source), nil
		}},
		"close-session": {Kind: KindRPCReply, NewRequest: func(args ...string) (common.Request, error) {
			return "<close-session/>", nil
		}},
		"kill-session": {Kind: KindRPCReply, NewRequest: func(args ...string) (common.Request, error) {
			if len(args) != 1 {
				return nil, errors.New("kill-session takes a session id")
			}
			return fmt.Sprintf(`<kill-session><session-id>%s</session-id></kill-session>`, args[0]), nil
		}},
		"get-schema": {Kind: KindGetSchema, NewRequest: func(args ...string) (common.Request, error) {
			if len(args) == 0 || args[0] == "" {
				return nil, errors.New("get-schema takes a schema identifier")
			}
			request := fmt.Sprintf(`<get-schema xmlns=%q><identifier>%s</identifier>`,
				common.NetconfMonitoringNS, args[0])
			if len(args) > 1 && args[1] != "" {
				request += fmt.Sprintf(`<version>%s</version>`, args[1])
			}
			if len(args) > 2 && args[2] != "" {
				request += fmt.Sprintf(`<format>%s</format>`, args[2])
			}
			return request + "</get-schema>", nil
		}},
	}
}

func datastoreOrRunning(args []string) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	return "running"
}
