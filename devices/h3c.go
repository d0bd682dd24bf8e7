package devices

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/ekmixon/ncclient/common"
)

// h3cHandler adapts the client to H3C Comware switches: legacy unqualified
// element names, an explicit default-namespace envelope declaration and the
// Comware operation set. The preferred ssh subsystem name for these devices
// varies by model and can be supplied through Parameters.SSHSubsystem.
type h3cHandler struct {
	defaultHandler
}

func newH3CHandler(p *Parameters, trace *DeviceTrace) *h3cHandler {
	return &h3cHandler{
		defaultHandler: defaultHandler{
			p:     p,
			trace: trace,
			ops:   Merge(baselineOperations(), h3cOperations()),
		},
	}
}

func (h *h3cHandler) BaseNamespaceMap() NamespaceMap {
	return NamespaceMap{"": common.NetconfNS}
}

func (h *h3cHandler) RequiresQualifiedNames() bool { return false }

// h3cOperations is the Comware operation set, overlaid on the baseline.
func h3cOperations() Registry {
	return Registry{
		"get-bulk": {Kind: KindRPCReply, NewRequest: func(args ...string) (common.Request, error) {
			if len(args) == 0 {
				return "<get-bulk/>", nil
			}
			return fmt.Sprintf(`<get-bulk><filter type="subtree">%s</filter></get-bulk>`, args[0]), nil
		}},
		"get-bulk-config": {Kind: KindRPCReply, NewRequest: func(args ...string) (common.Request, error) {
			source := "running"
			if len(args) > 0 && args[0] != "" {
				source = args[0]
			}
			return fmt.Sprintf(`<get-bulk-config><source><%s/></source></get-bulk-config>`, source), nil
		}},
		"cli": {Kind: KindRPCReply, NewRequest: func(args ...string) (common.Request, error) {
			if len(args) != 1 {
				return nil, errors.New("cli takes the command to execute")
			}
			return fmt.Sprintf(`<CLI><Execution>%s</Execution></CLI>`, args[0]), nil
		}},
		"action": {Kind: KindRPCReply, NewRequest: func(args ...string) (common.Request, error) {
			if len(args) != 1 {
				return nil, errors.New("action takes the action body")
			}
			return fmt.Sprintf(`<action>%s</action>`, args[0]), nil
		}},
		"save": {Kind: KindRPCReply, NewRequest: func(args ...string) (common.Request, error) {
			if len(args) != 1 {
				return nil, errors.New("save takes the target file name")
			}
			return fmt.Sprintf(`<save><file>%s</file></save>`, args[0]), nil
		}},
		"load": {Kind: KindRPCReply, NewRequest: func(args ...string) (common.Request, error) {
			if len(args) != 1 {
				return nil, errors.New("load takes the source file name")
			}
			return fmt.Sprintf(`<load><file>%s</file></load>`, args[0]), nil
		}},
		"rollback": {Kind: KindRPCReply, NewRequest: func(args ...string) (common.Request, error) {
			if len(args) != 1 {
				return nil, errors.New("rollback takes the configuration file name")
			}
			return fmt.Sprintf(`<rollback><file>%s</file></rollback>`, args[0]), nil
		}},
	}
}
