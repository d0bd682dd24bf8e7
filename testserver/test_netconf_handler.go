package testserver

import (
	"sync"

	"github.com/ekmixon/ncclient/common"
	"github.com/ekmixon/ncclient/server/netconf"

	assert "github.com/stretchr/testify/require"
)

// SessionHandler represents the server side of an active netconf test session.
type SessionHandler struct {
	*netconf.SessionHandler

	// tctx is the testing context used for handling unexpected errors.
	tctx assert.TestingT

	// The capabilities the session advertises; nil selects the default set.
	capabilities []string

	lock sync.Mutex

	// The queue of handlers used to process incoming client requests.
	// If the queue is empty, a request is processed by the EchoRequestHandler.
	reqHandlers []RequestHandler

	// Counts the requests received by the session, keeping the most recent
	// one.
	reqCount int
	lastReq  *netconf.RPCRequest
}

// RequestHandler is a function type that will be invoked by the session handler to handle an RPC
// request. A nil reply means no response is sent.
type RequestHandler func(h *SessionHandler, req *netconf.RpcRequestMessage) *netconf.RpcReplyMessage

// EchoRequestHandler responds to a request with a reply containing a data element holding
// the body of the request.
var EchoRequestHandler = func(h *SessionHandler, req *netconf.RpcRequestMessage) *netconf.RpcReplyMessage {
	return &netconf.RpcReplyMessage{Data: netconf.ReplyData{Data: req.Request.Body}, MessageID: req.MessageID}
}

// FailingRequestHandler replies to a request with an error.
var FailingRequestHandler = func(h *SessionHandler, req *netconf.RpcRequestMessage) *netconf.RpcReplyMessage {
	return &netconf.RpcReplyMessage{
		MessageID: req.MessageID,
		Errors: []common.RPCError{
			{Severity: "error", Message: "oops"}},
	}
}

// CloseRequestHandler closes the transport channel on request receipt.
var CloseRequestHandler = func(h *SessionHandler, req *netconf.RpcRequestMessage) *netconf.RpcReplyMessage {
	h.Close()
	return nil
}

// IgnoreRequestHandler does nothing on receipt of a request.
var IgnoreRequestHandler = func(h *SessionHandler, req *netconf.RpcRequestMessage) *netconf.RpcReplyMessage {
	return nil
}

// RawReplyHandler delivers a request handler that responds to a request by
// writing raw to the transport without serialisation, so that tests can feed
// a client byte-exact reply documents.
func RawReplyHandler(raw string) RequestHandler {
	return func(h *SessionHandler, req *netconf.RpcRequestMessage) *netconf.RpcReplyMessage {
		err := h.SendRawReply(raw)
		assert.NoError(h.tctx, err, "Failed to send raw reply")
		return nil
	}
}

// Capabilities delivers the capabilities the session advertises to the client.
func (h *SessionHandler) Capabilities() []string {
	return h.capabilities
}

// HandleRequest invokes the next queued request handler with the incoming request.
func (h *SessionHandler) HandleRequest(req *netconf.RpcRequestMessage) *netconf.RpcReplyMessage {
	h.lock.Lock()
	h.reqCount++
	h.lastReq = &req.Request
	reqh := h.nextReqHandler()
	h.lock.Unlock()
	return reqh(h, req)
}

// ReqCount delivers the number of requests received by the session.
func (h *SessionHandler) ReqCount() int {
	h.lock.Lock()
	defer h.lock.Unlock()
	return h.reqCount
}

// LastReq delivers the most recent request received by the session, or nil if there has
// been none.
func (h *SessionHandler) LastReq() *netconf.RPCRequest {
	h.lock.Lock()
	defer h.lock.Unlock()
	return h.lastReq
}

func (h *SessionHandler) nextReqHandler() (reqh RequestHandler) {
	l := len(h.reqHandlers)
	if l == 0 {
		reqh = EchoRequestHandler
	} else {
		h.reqHandlers, reqh = h.reqHandlers[1:], h.reqHandlers[0]
	}
	return
}
