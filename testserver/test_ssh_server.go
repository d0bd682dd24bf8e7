package testserver

import (
	"bufio"
	"context"
	"fmt"

	"github.com/ekmixon/ncclient/server/ssh"

	assert "github.com/stretchr/testify/require"
	xssh "golang.org/x/crypto/ssh"
)

// SSHServer represents a test SSH Server that echoes back each line it
// receives, without any netconf layer on top.
type SSHServer struct {
	*ssh.Server
}

// NewSSHServer delivers a new test SSH Server.
// The server implements password authentication with the given credentials.
func NewSSHServer(tctx assert.TestingT, uname, password string) *SSHServer {
	cfg, err := ssh.PasswordConfig(uname, password)
	assert.NoError(tctx, err, "Failed to create server config")

	server, err := ssh.NewServer(context.Background(), "localhost", 0, cfg, echoFactory(tctx))
	assert.NoError(tctx, err, "Failed to start SSH server")

	return &SSHServer{Server: server}
}

func echoFactory(tctx assert.TestingT) ssh.HandlerFactory {
	return func(svrconn *xssh.ServerConn) ssh.Handler {
		return &echoHandler{tctx: tctx}
	}
}

// echoHandler replies to each input line with the same line prefixed by GOT:.
type echoHandler struct {
	tctx assert.TestingT
}

func (h *echoHandler) Handle(ch xssh.Channel) {
	chReader := bufio.NewReader(ch)
	chWriter := bufio.NewWriter(ch)
	for {
		input, err := chReader.ReadString('\n')
		if err != nil {
			return
		}
		_, err = chWriter.WriteString(fmt.Sprintf("GOT:%s", input))
		assert.NoError(h.tctx, err, "Write failed")
		_ = chWriter.Flush()
	}
}
