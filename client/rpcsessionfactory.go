package client

import (
	"context"

	"github.com/ekmixon/ncclient/devices"

	"github.com/imdario/mergo"
	"golang.org/x/crypto/ssh"
)

// Defines factory methods for instantiating netconf rpc sessions.

const defaultSubsystem = "netconf"

// NewRPCSession connects to the  target using the ssh configuration, and establishes
// a netconf session with default configuration.
func NewRPCSession(ctx context.Context, sshcfg *ssh.ClientConfig, target string) (s Session, err error) {
	return NewRPCSessionWithConfig(ctx, sshcfg, target, DefaultConfig)
}

// NewRPCSessionWithConfig connects to the  target using the ssh configuration, and establishes
// a netconf session with the client configuration.
func NewRPCSessionWithConfig(ctx context.Context, sshcfg *ssh.ClientConfig, target string, cfg *Config) (s Session, err error) {
	// Use supplied config, but apply any defaults to unspecified values.
	resolvedConfig := *cfg
	_ = mergo.Merge(&resolvedConfig, DefaultConfig)

	var t Transport
	if t, err = createTransport(ctx, sshcfg, target, defaultSubsystem); err != nil {
		return
	}

	if s, err = NewSession(ctx, t, &resolvedConfig); err != nil {
		_ = t.Close()
	}
	return
}

// NewRPCSessionWithDevice connects to the target using the ssh configuration, and establishes
// a netconf session driven by the device handler selected by the device parameters.
func NewRPCSessionWithDevice(ctx context.Context, sshcfg *ssh.ClientConfig, target string, cfg *Config, p *devices.Parameters) (s Session, err error) {
	handler, err := devices.NewHandler(ctx, p)
	if err != nil {
		return nil, err
	}

	resolvedConfig := *cfg
	_ = mergo.Merge(&resolvedConfig, DefaultConfig)

	subsystem := defaultSubsystem
	if p != nil && p.SSHSubsystem != "" {
		subsystem = p.SSHSubsystem
	}

	var t Transport
	if t, err = createTransport(ctx, sshcfg, target, subsystem); err != nil {
		return
	}

	if s, err = NewSessionWithDevice(ctx, t, &resolvedConfig, handler); err != nil {
		_ = t.Close()
	}
	return
}

func createTransport(ctx context.Context, clientConfig *ssh.ClientConfig, target, subsystem string) (t Transport, err error) {
	return NewSSHTransport(ctx, clientConfig, target, subsystem)
}
