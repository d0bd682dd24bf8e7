package ops

import (
	"context"

	"github.com/ekmixon/ncclient/client"
	"github.com/ekmixon/ncclient/devices"

	"golang.org/x/crypto/ssh"
)

// Defines factory methods for instantiating netconf operations sessions.

// NewSession connects to the  target using the ssh configuration, and establishes
// a netconf session with default configuration.
func NewSession(ctx context.Context, sshcfg *ssh.ClientConfig, target string) (s OpSession, err error) {

	return NewSessionWithConfig(ctx, sshcfg, target, client.DefaultConfig)
}

// NewSessionWithConfig connects to the  target using the ssh configuration, and establishes
// a netconf session with the client configuration.
func NewSessionWithConfig(ctx context.Context, sshcfg *ssh.ClientConfig, target string, cfg *client.Config) (s OpSession, err error) {

	var cs client.Session
	if cs, err = client.NewRPCSessionWithConfig(ctx, sshcfg, target, cfg); err != nil {
		return
	}

	s = &sImpl{Session: cs}
	return
}

// NewDeviceSession connects to the target using the ssh configuration, and establishes
// a netconf session compensated for the device selected by the parameters.
func NewDeviceSession(ctx context.Context, sshcfg *ssh.ClientConfig, target string, p *devices.Parameters) (s OpSession, err error) {
	return NewDeviceSessionWithConfig(ctx, sshcfg, target, client.DefaultConfig, p)
}

// NewDeviceSessionWithConfig connects to the target using the ssh configuration, and establishes
// a netconf session with the client configuration, compensated for the device selected by
// the parameters.
func NewDeviceSessionWithConfig(ctx context.Context, sshcfg *ssh.ClientConfig, target string, cfg *client.Config, p *devices.Parameters) (s OpSession, err error) {

	var cs client.Session
	if cs, err = client.NewRPCSessionWithDevice(ctx, sshcfg, target, cfg, p); err != nil {
		return
	}

	s = &sImpl{Session: cs}
	return
}
