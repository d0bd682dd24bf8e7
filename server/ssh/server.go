package ssh

import (
	"context"
	"fmt"
	"net"
	"sync"

	"golang.org/x/crypto/ssh"
)

// Server represents an SSH server hosting channels driven by caller-supplied
// handlers.
type Server struct {
	listener net.Listener
	trace    *Trace

	cmdLock  sync.Mutex
	commands []string
}

// Handler is the interface that is implemented to handle an SSH channel.
type Handler interface {
	// Handler is a function that handles i/o to/from an SSH channel
	Handle(ch ssh.Channel)
}

// HandlerFactory is a function that will deliver an Handler.
type HandlerFactory func(conn *ssh.ServerConn) Handler

// NewServer delivers a new SSH Server, with a custom channel handler.
// The server implements password authentication with the given credentials.
func NewServer(ctx context.Context, address string, port int, cfg *ssh.ServerConfig, factory HandlerFactory) (server *Server, err error) {
	server = &Server{trace: ContextSSHTrace(ctx)}

	listenAddress := fmt.Sprintf("%s:%d", address, port)
	server.listener, err = net.Listen("tcp", listenAddress)
	server.trace.Listened(address, err)
	if err != nil {
		return nil, err
	}

	go server.acceptConnections(cfg, factory)

	return server, nil
}

// Port delivers the tcp port number on which the server is listening.
func (s *Server) Port() int {
	return s.listener.Addr().(*net.TCPAddr).Port
}

// Close closes any resources used by the server.
func (s *Server) Close() {
	_ = s.listener.Close()
}

// ExecutedCommands delivers the commands run on the server through exec
// channel requests, in arrival order.
func (s *Server) ExecutedCommands() []string {
	s.cmdLock.Lock()
	defer s.cmdLock.Unlock()
	return append([]string(nil), s.commands...)
}

func (s *Server) acceptConnections(config *ssh.ServerConfig, factory HandlerFactory) {
	s.trace.StartAccepting()
	for {
		nConn, err := s.listener.Accept()
		s.trace.Accepted(nConn, err)
		if err != nil {
			return
		}

		go s.serviceConnection(nConn, config, factory)
	}
}

func (s *Server) serviceConnection(nConn net.Conn, config *ssh.ServerConfig, factory HandlerFactory) {
	svrconn, chch, reqch, err := ssh.NewServerConn(nConn, config)
	s.trace.NewServerConn(nConn, err)
	if err != nil {
		return
	}

	go ssh.DiscardRequests(reqch)

	// Service the incoming Channel channel.
	for newChannel := range chch {
		dataChan, requests, err := newChannel.Accept()
		s.trace.SSHChannelAccept(nConn, err)
		if err != nil {
			continue
		}

		go s.serviceRequests(svrconn, dataChan, requests, factory)
	}
}

// serviceRequests answers the requests raised on a channel: a subsystem
// request hands the channel over to a factory-built handler, an exec request
// records the command and completes with a zero exit status.
func (s *Server) serviceRequests(svrconn *ssh.ServerConn, dataChan ssh.Channel, in <-chan *ssh.Request, factory HandlerFactory) {
	for req := range in {
		switch req.Type {
		case "subsystem":
			err := req.Reply(true, nil)
			s.trace.SubsystemRequestReply(err)

			go func() {
				defer dataChan.Close()
				factory(svrconn).Handle(dataChan)
			}()
		case "exec":
			s.handleExec(req, dataChan)
		default:
			err := req.Reply(false, nil)
			s.trace.SubsystemRequestReply(err)
		}
	}
}

func (s *Server) handleExec(req *ssh.Request, ch ssh.Channel) {
	var command string
	if len(req.Payload) > 4 {
		// RFC 4254 section 6.5: the command is a length-prefixed string.
		command = string(req.Payload[4:])
	}
	s.cmdLock.Lock()
	s.commands = append(s.commands, command)
	s.cmdLock.Unlock()

	err := req.Reply(true, nil)
	if err == nil {
		_, err = ch.SendRequest("exit-status", false, []byte{0, 0, 0, 0})
	}
	s.trace.ExecRequestReply(command, err)
	_ = ch.Close()
}
