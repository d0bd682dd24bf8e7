package devices

import "github.com/ekmixon/ncclient/common"

// defaultHandler provides the rfc-standard baseline behaviour. Vendor
// handlers embed it and override only the hooks that differ.
type defaultHandler struct {
	p     *Parameters
	trace *DeviceTrace
	ops   Registry
}

func newDefaultHandler(p *Parameters, trace *DeviceTrace) *defaultHandler {
	return &defaultHandler{p: p, trace: trace, ops: baselineOperations()}
}

func (h *defaultHandler) Capabilities() []string {
	caps := make([]string, 0, len(common.DefaultCapabilities)+4)
	caps = append(caps, common.DefaultCapabilities...)
	return append(caps,
		common.CapCandidate,
		common.CapConfirmedCommit,
		common.CapValidate,
		common.CapRollbackOnError,
	)
}

func (h *defaultHandler) Operations() Registry { return h.ops }

func (h *defaultHandler) BaseNamespaceMap() NamespaceMap {
	return NamespaceMap{"": common.NetconfNS}
}

func (h *defaultHandler) RequiresQualifiedNames() bool { return true }

// RepairRawReply on the baseline never applies; compliant devices need no
// repair.
func (h *defaultHandler) RepairRawReply(raw string) (RawOutcome, bool) {
	return RawOutcome{}, false
}

func (h *defaultHandler) OnSessionEstablished(s Session) error { return nil }

func (h *defaultHandler) ReplyTransformFor(kind ReplyKind) ReplyTransform { return nil }

func (h *defaultHandler) ParserMode(s Session) ParserMode { return ParseWholeDocument }
