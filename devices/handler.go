// Package devices implements the device-compliance layer of the client.
// Real netconf servers diverge from the RFCs in vendor-specific ways:
// malformed reply fragments, error elements without namespaces, channels
// that need an out-of-band mode switch, wrong namespaces on returned data.
// A Handler bound to a session compensates for the quirks of one device
// family; the message layer consults it at well-defined points without
// carrying any vendor logic itself.
package devices

import (
	"context"

	"github.com/pkg/errors"
)

// Parameters selects and configures the device handler for a session. The
// values are fixed once the session has been established; the handler holds
// a reference.
type Parameters struct {
	// Name identifies the handler variant: "default" (or empty), "junos" or "h3c".
	Name string

	// SSHSubsystem overrides the subsystem name used for the netconf channel.
	SSHSubsystem string

	// StreamReplies requests event-driven reply parsing where the handler
	// supports it.
	StreamReplies bool
}

// NamespaceMap maps xml prefixes to namespace URIs. The empty prefix
// denotes the default namespace.
type NamespaceMap map[string]string

// ParserMode identifies how session replies are parsed.
type ParserMode int

const (
	// ParseWholeDocument buffers each framed reply and parses it as one
	// document, offering the handler the raw text for repair first.
	ParseWholeDocument ParserMode = iota

	// ParseStreaming feeds reply bytes through an event-driven parse as
	// they arrive; the raw reply text never materialises, so repair does
	// not apply.
	ParseStreaming
)

// Listener observes raw transport reads on a session.
type Listener interface {
	Received(p []byte)
}

// Session is the handle a handler is given to the session that owns it.
type Session interface {
	// AddListener registers a transport read observer.
	AddListener(l Listener)

	// RemoveListener deregisters a previously added observer. Removing a
	// listener that is not registered is a no-op.
	RemoveListener(l Listener)

	// RunCommand executes a command on the connection, outside the netconf
	// channel.
	RunCommand(cmd string) error
}

// RawOutcome is the result of an applicable raw-reply repair. Exactly one
// interpretation holds: with Fault nil, Raw carries the repaired reply
// text; with Fault set, Raw carries the original text unmodified and Fault
// the errors extracted from it.
type RawOutcome struct {
	Raw   string
	Fault *ReplyError
}

// Handler supplies the vendor-specific compensation hooks consulted by the
// message layer. A handler serves exactly one session and its hooks are
// called sequentially by that session's reply-dispatch path.
type Handler interface {
	// Capabilities returns the capability URIs to advertise in the client
	// hello.
	Capabilities() []string

	// Operations returns the operation registry of the device: the
	// baseline set with the vendor's additions merged over it, vendor
	// entries winning on name collision. Built once at handler
	// construction; callers must not modify it.
	Operations() Registry

	// BaseNamespaceMap returns the namespace declarations applied to
	// outgoing request envelopes.
	BaseNamespaceMap() NamespaceMap

	// RequiresQualifiedNames reports whether outgoing element names must
	// be namespace qualified. Legacy devices that reject qualified names
	// return false.
	RequiresQualifiedNames() bool

	// RepairRawReply offers the handler a raw reply before it is parsed.
	// The second return value is false when no repair rule matches, in
	// which case the reply is parsed as received. Safe to call on every
	// reply.
	RepairRawReply(raw string) (RawOutcome, bool)

	// OnSessionEstablished is invoked once after the transport is up and
	// before netconf framing begins. An error aborts session setup.
	OnSessionEstablished(s Session) error

	// ReplyTransformFor returns the post-parse fixup for the expected
	// reply kind, or nil when that kind needs none.
	ReplyTransformFor(kind ReplyKind) ReplyTransform

	// ParserMode selects the reply parsing strategy, once, at session
	// setup. Selecting the streaming mode may attach a listener to the
	// session; no other hook mutates the session.
	ParserMode(s Session) ParserMode
}

// NewHandler returns the handler variant named by p.Name, with trace hooks
// resolved from ctx. The variant set is closed; unknown names are rejected.
func NewHandler(ctx context.Context, p *Parameters) (Handler, error) {
	if p == nil {
		p = &Parameters{}
	}
	trace := ContextDeviceTrace(ctx)
	switch p.Name {
	case "", "default":
		return newDefaultHandler(p, trace), nil
	case "junos":
		return newJunosHandler(p, trace), nil
	case "h3c":
		return newH3CHandler(p, trace), nil
	default:
		return nil, errors.Errorf("unsupported device type %q", p.Name)
	}
}
