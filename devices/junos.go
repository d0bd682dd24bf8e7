package devices

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pkg/errors"

	"github.com/ekmixon/ncclient/common"
	"github.com/ekmixon/ncclient/common/xmlns"
)

// junosHandler compensates for Juniper JUNOS quirks: commit replies that
// leave a routing-engine element unclosed, error elements emitted inside an
// envelope with no namespace declaration, get-schema data carrying the
// wrong namespace, and a channel that needs a mode-switch command before
// netconf framing starts.
type junosHandler struct {
	defaultHandler
	transforms map[ReplyKind]ReplyTransform
	repairs    []repairRule
	observer   Listener
}

// repairRule is one raw-reply repair pattern. Rules are tried in order and
// the first applicable one decides the outcome; rules for further firmware
// quirks can be appended without touching the existing ones.
type repairRule struct {
	name  string
	apply func(raw string) (RawOutcome, bool)
}

// junosSetupCommand switches the channel out of cli mode so netconf
// framing can begin.
const junosSetupCommand = "xml-mode netconf need-trailer"

func newJunosHandler(p *Parameters, trace *DeviceTrace) *junosHandler {
	h := &junosHandler{
		defaultHandler: defaultHandler{
			p:     p,
			trace: trace,
			ops:   Merge(baselineOperations(), junosOperations()),
		},
	}
	h.transforms = map[ReplyKind]ReplyTransform{
		KindGetSchema: h.fixSchemaReply,
	}
	h.repairs = []repairRule{
		{name: "routing-engine", apply: h.repairRoutingEngine},
		{name: "bare-rpc-errors", apply: h.extractBareErrors},
	}
	return h
}

func (h *junosHandler) RequiresQualifiedNames() bool { return false }

func (h *junosHandler) RepairRawReply(raw string) (RawOutcome, bool) {
	for _, rule := range h.repairs {
		if outcome, ok := rule.apply(raw); ok {
			return outcome, true
		}
	}
	return RawOutcome{}, false
}

func (h *junosHandler) OnSessionEstablished(s Session) error {
	h.trace.SetupCommand(junosSetupCommand)
	if err := s.RunCommand(junosSetupCommand); err != nil {
		return &SetupError{Op: junosSetupCommand, Err: err}
	}
	return nil
}

func (h *junosHandler) ReplyTransformFor(kind ReplyKind) ReplyTransform {
	return h.transforms[kind]
}

func (h *junosHandler) ParserMode(s Session) ParserMode {
	if !h.p.StreamReplies {
		return ParseWholeDocument
	}
	if h.observer != nil {
		s.RemoveListener(h.observer)
		h.trace.ListenerDetached(s)
	}
	h.observer = &streamObserver{trace: h.trace}
	s.AddListener(h.observer)
	h.trace.ListenerAttached(s)
	return ParseStreaming
}

var okMarker = regexp.MustCompile(`<ok/>`)

// repairRoutingEngine closes the routing-engine element some JUNOS releases
// leave open before the ok marker. Everything but the inserted closing tag
// is preserved.
func (h *junosHandler) repairRoutingEngine(raw string) (RawOutcome, bool) {
	if !strings.Contains(raw, "routing-engine") {
		return RawOutcome{}, false
	}
	repaired := okMarker.ReplaceAllString(raw, "</routing-engine>\n<ok/>")
	h.trace.RepairApplied("routing-engine", raw, repaired)
	return RawOutcome{Raw: repaired}, true
}

var bareReplyEnvelope = regexp.MustCompile(`(?s)<rpc-reply>.*?</rpc-reply>`)

// extractBareErrors handles replies whose rpc-error elements arrive inside
// an envelope with no namespace declaration. The reply text is returned
// unmodified, paired with the errors extracted from it.
func (h *junosHandler) extractBareErrors(raw string) (RawOutcome, bool) {
	if !bareReplyEnvelope.MatchString(raw) || !rpcErrorFragment.MatchString(raw) {
		return RawOutcome{}, false
	}
	fault, err := ExtractErrors(raw)
	if err != nil {
		return RawOutcome{}, false
	}
	h.trace.ErrorsExtracted(len(fault.Details))
	return RawOutcome{Raw: raw, Fault: fault}, true
}

// fixSchemaReply realigns the namespace of the data element of a
// get-schema reply. Without 'set system services netconf rfc-compliant'
// configured the device qualifies it with the netconf base namespace; with
// it, the element arrives with no namespace at all. Either way it belongs
// in the monitoring namespace.
func (h *junosHandler) fixSchemaReply(root *xmlns.Node) bool {
	switch xmlns.Fix(root, "data", common.NetconfNS, common.NetconfMonitoringNS) {
	case xmlns.FixPatched:
		h.trace.NamespacePatched("data", common.NetconfNS, common.NetconfMonitoringNS)
		return true
	case xmlns.FixAligned:
		return true
	case xmlns.FixAmbiguous:
		h.trace.AmbiguousPatchTarget("data", len(xmlns.FindAll(root, "data")))
		return false
	default:
		return false
	}
}

// streamObserver reports raw transport reads through the device trace hooks
// while replies are parsed in streaming mode.
type streamObserver struct {
	trace *DeviceTrace
}

func (o *streamObserver) Received(p []byte) {
	o.trace.StreamRead(len(p))
}

// junosOperations is the JUNOS XML management protocol operation set,
// overlaid on the baseline.
func junosOperations() Registry {
	return Registry{
		"rpc": {NewRequest: rawRequest, Kind: KindRPCReply},
		"get-configuration": {Kind: KindRPCReply, NewRequest: func(args ...string) (common.Request, error) {
			format := "xml"
			if len(args) > 0 && args[0] != "" {
				format = args[0]
			}
			return fmt.Sprintf(`<get-configuration format=%q/>`, format), nil
		}},
		"load-configuration": {Kind: KindRPCReply, NewRequest: func(args ...string) (common.Request, error) {
			if len(args) != 2 {
				return nil, errors.New("load-configuration takes an action and a configuration body")
			}
			action, config := args[0], args[1]
			if action == "set" {
				return fmt.Sprintf(`<load-configuration action="set" format="text"><configuration-set>%s</configuration-set></load-configuration>`,
					config), nil
			}
			return fmt.Sprintf(`<load-configuration action=%q><configuration>%s</configuration></load-configuration>`,
				action, config), nil
		}},
		"compare-configuration": {Kind: KindRPCReply, NewRequest: func(args ...string) (common.Request, error) {
			rollback := "0"
			if len(args) > 0 && args[0] != "" {
				rollback = args[0]
			}
			return fmt.Sprintf(`<get-configuration compare="rollback" rollback=%q format="text"/>`, rollback), nil
		}},
		"command": {Kind: KindRPCReply, NewRequest: func(args ...string) (common.Request, error) {
			if len(args) != 1 {
				return nil, errors.New("command takes the cli command to run")
			}
			return fmt.Sprintf(`<command format="text">%s</command>`, args[0]), nil
		}},
		"reboot": {Kind: KindRPCReply, NewRequest: func(args ...string) (common.Request, error) {
			return "<request-reboot/>", nil
		}},
		"halt": {Kind: KindRPCReply, NewRequest: func(args ...string) (common.Request, error) {
			return "<request-halt/>", nil
		}},
		"commit": {Kind: KindRPCReply, NewRequest: func(args ...string) (common.Request, error) {
			if len(args) > 0 && args[0] == "confirmed" {
				return "<commit-configuration><confirmed/></commit-configuration>", nil
			}
			return "<commit-configuration/>", nil
		}},
		"rollback": {Kind: KindRPCReply, NewRequest: func(args ...string) (common.Request, error) {
			n := "0"
			if len(args) > 0 && args[0] != "" {
				n = args[0]
			}
			return fmt.Sprintf(`<load-configuration rollback=%q/>`, n), nil
		}},
	}
}
