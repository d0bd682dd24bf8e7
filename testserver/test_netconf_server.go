package testserver

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/ekmixon/ncclient/server/netconf"
	"github.com/ekmixon/ncclient/server/ssh"

	assert "github.com/stretchr/testify/require"
)

// Defines credentials used for test sessions.
const (
	TestUserName = "testUser"
	TestPassword = "testPassword"
)

// TestNCServer represents a Netconf Server that can be used for 'on-board' testing.
// It encapsulates a transport connection to an SSH server, and a netconf session handler that will
// be invoked to handle netconf messages.
type TestNCServer struct {
	*netconf.Server
	lock            sync.Mutex
	sessionHandlers map[uint64]*SessionHandler
	reqHandlers     []RequestHandler
	caps            []string
	lastSid         uint64
	tctx            assert.TestingT
}

// NewTestNetconfServer creates a new TestNCServer that will accept Netconf localhost connections on an ephemeral port (available
// via Port()), with credentials defined by TestUserName and TestPassword.
// tctx will be used for handling failures; if the supplied value is nil, a default test context will be used.
// The behaviour of the Netconf session handler can be configured using the WithCapabilities and
// WithRequestHandler methods.
func NewTestNetconfServer(tctx assert.TestingT) *TestNCServer {

	ncs := &TestNCServer{sessionHandlers: make(map[uint64]*SessionHandler)}

	if tctx == nil {
		// Default test context to built-in implementation.
		tctx = ncs
	}
	ncs.tctx = tctx

	sshcfg, err := ssh.PasswordConfig(TestUserName, TestPassword)
	assert.NoError(tctx, err, "Failed to create server config")

	ncs.Server, err = netconf.NewServer(context.Background(), "localhost", 0, sshcfg, ncs.newFactory())
	assert.NoError(tctx, err, "Failed to start netconf server")

	return ncs
}

func (ncs *TestNCServer) newFactory() netconf.SessionFactory {
	return func(nch *netconf.SessionHandler) netconf.SessionCallback {
		ncs.lock.Lock()
		defer ncs.lock.Unlock()
		sess := &SessionHandler{
			SessionHandler: nch,
			tctx:           ncs.tctx,
			capabilities:   ncs.caps,
			reqHandlers:    ncs.reqHandlers,
		}
		ncs.sessionHandlers[nch.SID()] = sess
		ncs.lastSid = nch.SID()
		return sess
	}
}

// LastHandler delivers the handler of the most recently established session.
func (ncs *TestNCServer) LastHandler() *SessionHandler {
	ncs.lock.Lock()
	defer ncs.lock.Unlock()
	return ncs.sessionHandlers[ncs.lastSid]
}

// WithRequestHandler adds a request handler to the netconf session.
func (ncs *TestNCServer) WithRequestHandler(rh RequestHandler) *TestNCServer {
	ncs.lock.Lock()
	defer ncs.lock.Unlock()
	ncs.reqHandlers = append(ncs.reqHandlers, rh)
	return ncs
}

// WithCapabilities define the capabilities that the server will advertise when a netconf client connects.
func (ncs *TestNCServer) WithCapabilities(caps []string) *TestNCServer {
	ncs.lock.Lock()
	defer ncs.lock.Unlock()
	ncs.caps = caps
	return ncs
}

// Close closes any active transport to the test server and prevents subsequent connections.
func (ncs *TestNCServer) Close() {
	ncs.Server.Close()
}

// Errorf provides testing.T compatibility if a test context is not provided when the test server is
// created.
func (ncs *TestNCServer) Errorf(format string, args ...interface{}) {
	fmt.Printf(format, args...)
}

// FailNow provides testing.T compatibility if a test context is not provided when the test server is
// created.
func (ncs *TestNCServer) FailNow() {
	runtime.Goexit()
}

// SessionHandler delivers the netconf session handler associated with the specified session id.
func (ncs *TestNCServer) SessionHandler(id uint64) *SessionHandler {
	ncs.lock.Lock()
	defer ncs.lock.Unlock()
	sh, ok := ncs.sessionHandlers[id]
	if !ok {
		ncs.tctx.Errorf("Failed to get handler for session %d", id)
		ncs.tctx.FailNow()
	}
	return sh
}
