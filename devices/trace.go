package devices

import (
	"context"
	"log"

	"github.com/imdario/mergo"
)

// unique type to prevent assignment.
type deviceEventContextKey struct{}

// ContextDeviceTrace returns the DeviceTrace associated with the provided
// context. If none, it returns the no-op hooks.
func ContextDeviceTrace(ctx context.Context) *DeviceTrace {
	trace, _ := ctx.Value(deviceEventContextKey{}).(*DeviceTrace)
	if trace == nil {
		trace = NoOpLoggingHooks
	} else {
		_ = mergo.Merge(trace, NoOpLoggingHooks)
	}
	return trace
}

// WithDeviceTrace returns a new context based on the provided parent ctx.
// Handlers built with the returned context will use the provided trace hooks.
func WithDeviceTrace(ctx context.Context, trace *DeviceTrace) context.Context {
	ctx = context.WithValue(ctx, deviceEventContextKey{}, trace)
	return ctx
}

// DeviceTrace defines a structure for handling device-compensation trace events
//nolint: golint
type DeviceTrace struct {
	// RepairApplied is called after a repair rule has been applied to a raw reply.
	RepairApplied func(rule string, raw, repaired string)

	// ErrorsExtracted is called after rpc-error fragments have been extracted
	// from a raw reply.
	ErrorsExtracted func(count int)

	// NamespacePatched is called when a reply transform rewrote an element
	// carrying the wrong namespace, the sign of a non-compliant server.
	NamespacePatched func(local, oldNS, newNS string)

	// AmbiguousPatchTarget is called when a reply transform found zero or
	// multiple candidate elements and left the reply unmodified.
	AmbiguousPatchTarget func(local string, matches int)

	// SetupCommand is called before a session-setup command is run.
	SetupCommand func(cmd string)

	// ListenerAttached is called after a stream listener has been attached
	// to a session during parser selection.
	ListenerAttached func(s Session)

	// ListenerDetached is called after a previously attached stream listener
	// has been removed from a session.
	ListenerDetached func(s Session)

	// StreamRead reports the size of each raw transport read observed while
	// a session is parsed in streaming mode.
	StreamRead func(n int)
}

// DefaultLoggingHooks provides a default logging hook to report unexpected
// device behaviour.
var DefaultLoggingHooks = &DeviceTrace{
	NamespacePatched: func(local, oldNS, newNS string) {
		log.Printf("NETCONF-NamespacePatched element:%s from:%s to:%s (device runs non-rfc compliant netconf)\n",
			local, oldNS, newNS)
	},
	AmbiguousPatchTarget: func(local string, matches int) {
		log.Printf("NETCONF-AmbiguousPatchTarget element:%s matches:%d\n", local, matches)
	},
}

// DiagnosticLoggingHooks provides a set of default diagnostic hooks
var DiagnosticLoggingHooks = &DeviceTrace{
	RepairApplied: func(rule string, raw, repaired string) {
		log.Printf("NETCONF-RepairApplied rule:%s rawlen:%d repairedlen:%d\n", rule, len(raw), len(repaired))
	},
	ErrorsExtracted: func(count int) {
		log.Printf("NETCONF-ErrorsExtracted count:%d\n", count)
	},
	NamespacePatched:     DefaultLoggingHooks.NamespacePatched,
	AmbiguousPatchTarget: DefaultLoggingHooks.AmbiguousPatchTarget,
	SetupCommand: func(cmd string) {
		log.Printf("NETCONF-SetupCommand cmd:%s\n", cmd)
	},
	ListenerAttached: func(s Session) {
		log.Printf("NETCONF-ListenerAttached\n")
	},
	ListenerDetached: func(s Session) {
		log.Printf("NETCONF-ListenerDetached\n")
	},
	StreamRead: func(n int) {
		log.Printf("NETCONF-StreamRead len:%d\n", n)
	},
}

// NoOpLoggingHooks provides set of hooks that do nothing.
var NoOpLoggingHooks = &DeviceTrace{
	RepairApplied:        func(rule string, raw, repaired string) {},
	ErrorsExtracted:      func(count int) {},
	NamespacePatched:     func(local, oldNS, newNS string) {},
	AmbiguousPatchTarget: func(local string, matches int) {},
	SetupCommand:         func(cmd string) {},
	ListenerAttached:     func(s Session) {},
	ListenerDetached:     func(s Session) {},
	StreamRead:           func(n int) {},
}
