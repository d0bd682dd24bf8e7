package client

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/ekmixon/ncclient/common"

	"github.com/ekmixon/ncclient/common/codec"
	"github.com/ekmixon/ncclient/common/xmlns"
	"github.com/ekmixon/ncclient/devices"

	"github.com/google/uuid"

	"io"
	"sync"
)

// The Message layer defines a set of base protocol operations
// invoked as RPC methods with XML-encoded parameters.

// Session represents a Netconf Session
type Session interface {
	// Execute executes an RPC request on the server and returns the reply.
	Execute(req common.Request) (*common.RPCReply, error)

	// ExecuteAsync submits an RPC request for execution on the server, arranging for the
	// reply to be sent to the supplied channel.
	ExecuteAsync(req common.Request, rchan chan *common.RPCReply) (err error)

	// Subscribe issues an RPC request and returns the reply. If successful, notifications will
	// be sent to the supplied channel.
	Subscribe(req common.Request, nchan chan *common.Notification) (reply *common.RPCReply, err error)

	// Close closes the session and releases any associated resources.
	// The channel will be automatically closed if the underlying network connection is closed, for
	// example if the remote server disconnects.
	// When the session is closed, any outstanding execute requests and reads from a notification
	// channel will return nil.
	Close()

	// ID delivers the server-allocated id of the session.
	ID() uint64

	// Capabilities delivers the server-supplied capabilities.
	ServerCapabilities() []string

	// Device delivers the device handler bound to the session.
	Device() devices.Handler
}

// rpcResult carries the outcome of a single rpc: a decoded reply, or the
// failure that prevented one. A failed rpc does not disturb the session.
type rpcResult struct {
	reply *common.RPCReply
	err   error
}

type sesImpl struct {
	cfg    *Config
	t      Transport
	dec    *codec.Decoder
	enc    *codec.Encoder
	trace  *ClientTrace
	device devices.Handler

	mode     devices.ParserMode
	fanout   *listenerFanout
	envAttrs []xml.Attr

	pool []chan *rpcResult

	hellochan chan bool
	responseq []chan *rpcResult
	subchan   chan *common.Notification

	hello   *common.HelloMessage
	reqLock sync.Mutex
	pchLock sync.Mutex
	rchLock sync.Mutex

	notificationDropCount uint64

	target string
}

// NewSession creates a new Netconf session, using the supplied Transport and
// the default device handler.
func NewSession(ctx context.Context, t Transport, cfg *Config) (Session, error) {
	handler, err := devices.NewHandler(ctx, nil)
	if err != nil {
		return nil, err
	}
	return NewSessionWithDevice(ctx, t, cfg, handler)
}

// NewSessionWithDevice creates a new Netconf session using the supplied
// Transport, with the handler compensating for the quirks of the device at
// the far end.
func NewSessionWithDevice(ctx context.Context, t Transport, cfg *Config, handler devices.Handler) (Session, error) {

	si := &sesImpl{
		cfg:      cfg,
		t:        t,
		trace:    ContextClientTrace(ctx),
		device:   handler,
		fanout:   &listenerFanout{},
		envAttrs: envelopeAttrs(handler.BaseNamespaceMap()),

		hellochan: make(chan bool)}

	if tt, ok := t.(*tImpl); ok {
		si.target = tt.target
	}

	si.dec = codec.NewDecoder(&observedReader{r: t, lf: si.fanout})
	si.enc = codec.NewEncoder(t)

	// Give the device its setup hook after the transport is up, before any
	// netconf traffic.
	if err := handler.OnSessionEstablished(si); err != nil {
		si.trace.Error("Device setup failed", si.target, err)
		si.Close()
		return nil, err
	}

	si.mode = handler.ParserMode(si)

	// Send hello
	caps := handler.Capabilities()
	if cfg.DisableChunkedCodec {
		caps = withoutCapability(caps, common.CapBase11)
	}
	err := si.enc.Encode(&common.HelloMessage{Capabilities: caps})
	if err != nil {
		si.trace.Error("Failed to encode hello", si.target, err)
		si.Close()
		return nil, err
	}

	// Launch goroutine to handle incoming messages from the server.
	go si.handleIncomingMessages()

	err = si.waitForServerHello()
	if err != nil {
		si.trace.Error("Failed to receive hello", si.target, err)
		si.Close()
		return nil, err
	}
	return si, nil
}

func (si *sesImpl) Execute(req common.Request) (reply *common.RPCReply, err error) {

	si.trace.ExecuteStart(req, false)

	defer func(begin time.Time) {
		si.trace.ExecuteDone(req, false, reply, err, time.Since(begin))
	}(time.Now())

	// Allocate a response channel
	rchan := si.allocChan()
	defer si.relChan(rchan)

	// Submit the request
	err = si.execute(req, rchan)
	if err != nil {
		return nil, err
	}

	// Wait for the response.
	res := <-rchan
	if res == nil {
		return nil, io.ErrUnexpectedEOF
	}
	if res.err != nil {
		return res.reply, res.err
	}

	reply = res.reply
	err = mapError(reply)
	return reply, err
}

func (si *sesImpl) ExecuteAsync(req common.Request, rchan chan *common.RPCReply) (err error) {

	si.trace.ExecuteStart(req, true)
	defer func(begin time.Time) {
		si.trace.ExecuteDone(req, true, nil, err, time.Since(begin))
	}(time.Now())

	// Deliver the reply, or nil for an rpc that failed without one, and
	// close the caller's channel when the session goes down.
	ichan := make(chan *rpcResult, 1)
	go func() {
		res, ok := <-ichan
		if !ok {
			close(rchan)
			return
		}
		rchan <- res.reply
	}()

	return si.execute(req, ichan)
}

func (si *sesImpl) execute(req common.Request, rchan chan *rpcResult) (err error) {

	// Build the request to be submitted.
	msg := &common.RPCMessage{
		MessageID: uuid.New().String(),
		Attrs:     si.envAttrs,
		Union:     common.GetUnion(si.shapeRequest(req)),
	}

	// Lock the request channel, so the request and response channel set up is atomic.
	si.reqLock.Lock()
	defer si.reqLock.Unlock()

	// Add the response channel to the response queue, but take it off if the request was not
	// submitted successfully.
	si.pushRespChan(rchan)
	if err = si.enc.Encode(msg); err != nil {
		si.popRespChan()
	}
	return
}

func (si *sesImpl) Subscribe(req common.Request, nchan chan *common.Notification) (reply *common.RPCReply, err error) {
	// Store the notification channel for the session.
	si.subchan = nchan
	return si.Execute(req)
}

func (si *sesImpl) Close() {
	err := si.t.Close()
	if err != nil {
		si.trace.Error("Session close failed", si.target, err)
	}
}

func (si *sesImpl) ID() uint64 {
	return si.hello.SessionID
}

func (si *sesImpl) ServerCapabilities() []string {
	return si.hello.Capabilities
}

func (si *sesImpl) Device() devices.Handler {
	return si.device
}

// AddListener registers a transport read observer with the session.
func (si *sesImpl) AddListener(l devices.Listener) {
	si.fanout.add(l)
}

// RemoveListener deregisters a transport read observer. Removing an observer
// that is not registered has no effect.
func (si *sesImpl) RemoveListener(l devices.Listener) {
	si.fanout.remove(l)
}

// RunCommand executes a command on the underlying connection, outside the
// netconf channel.
func (si *sesImpl) RunCommand(cmd string) error {
	runner, ok := si.t.(CommandRunner)
	if !ok {
		return errors.New("transport cannot run commands")
	}
	return runner.RunCommand(cmd)
}

func (si *sesImpl) waitForServerHello() (err error) {

	select {
	case ok := <-si.hellochan:
		if !ok {
			err = errors.New("failed to get hello from server")
		}
	case <-time.After(time.Duration(si.cfg.SetupTimeoutSecs) * time.Second):
		err = errors.New("failed to get hello from server")
	}
	return
}

func (si *sesImpl) handleIncomingMessages() {

	// When this goroutine finishes, make sure anybody waiting for an async response or notification
	// gets informed.
	defer si.closeChannels()

	var err error
	if si.mode == devices.ParseStreaming {
		err = si.pumpStreaming()
	} else {
		err = si.pumpWholeDocument()
	}
	if err != nil {
		si.trace.Error("Failed to read message", si.target, err)
	}
}

// pumpStreaming decodes tokens off the wire as they arrive, looking for a
// start element type of hello, rpc-reply or notification.
func (si *sesImpl) pumpStreaming() error {
	for {
		token, err := si.dec.Token()
		if err != nil {
			return err
		}

		if err = si.handleToken(token); err != nil {
			return err
		}
	}
}

// pumpWholeDocument reads each framed message in full and hands the raw text
// to the device handler for repair before parsing it as one document.
func (si *sesImpl) pumpWholeDocument() error {
	for {
		msg, err := si.dec.ReadMessage()
		if err != nil {
			return err
		}

		if err = si.handleRawMessage(strings.TrimSpace(string(msg))); err != nil {
			return err
		}
	}
}

func (si *sesImpl) handleToken(token xml.Token) (err error) {
	switch token := token.(type) {
	case xml.StartElement:
		switch token.Name {
		case common.NameHello: // <hello>
			err = si.handleHello(token)

		case common.NameRPCReply: // <rpc-reply>
			err = si.handleRPCReply(token)

		case common.NameNotification: // <notification>
			err = si.handleNotification(token)

		default:
		}
	default:
	}
	return
}

func (si *sesImpl) handleHello(token xml.StartElement) (err error) {
	// Decode the hello element and send it down the channel to trigger the rest of the session setup.

	if err = si.decodeElement(&si.hello, &token); err != nil {
		si.hellochan <- false
		return
	}

	si.enableChunkedFraming()

	si.hellochan <- true
	si.trace.HelloDone(si.hello)
	return
}

func (si *sesImpl) handleRPCReply(token xml.StartElement) (err error) {
	reply := common.RPCReply{}
	if err = si.decodeElement(&reply, &token); err != nil {
		return
	}

	si.deliverResult(&rpcResult{reply: &reply})
	return
}

func (si *sesImpl) handleNotification(token xml.StartElement) (err error) {
	result := &common.NotificationMessage{}
	if err = si.decodeElement(&result, &token); err != nil {
		return
	}

	si.deliverNotification(result)
	return
}

func (si *sesImpl) handleRawMessage(raw string) (err error) {
	if outcome, ok := si.device.RepairRawReply(raw); ok {
		if outcome.Fault != nil {
			// The handler recognised the reply as a malformed error report
			// and extracted the errors; the rpc fails with them.
			si.deliverResult(&rpcResult{reply: outcome.Fault.Reply, err: outcome.Fault})
			return nil
		}
		raw = outcome.Raw
	}
	return si.dispatchDocument(raw)
}

func (si *sesImpl) dispatchDocument(raw string) error {
	name, err := rootName(raw)
	if err != nil {
		si.failCurrentRPC(raw, err)
		return nil
	}

	switch name.Local {
	case "hello":
		return si.handleHelloDoc(raw)
	case "rpc-reply":
		si.handleReplyDoc(raw)
	case "notification":
		si.handleNotificationDoc(raw)
	}
	return nil
}

func (si *sesImpl) handleHelloDoc(raw string) (err error) {
	hello := &common.HelloMessage{}
	if err = xml.Unmarshal([]byte(raw), hello); err != nil {
		si.trace.Error("Failed to parse hello", si.target, err)
		si.hellochan <- false
		return
	}

	si.hello = hello
	si.enableChunkedFraming()

	si.hellochan <- true
	si.trace.HelloDone(si.hello)
	return
}

func (si *sesImpl) handleReplyDoc(raw string) {
	reply := &common.RPCReply{}
	if err := xml.Unmarshal([]byte(raw), reply); err != nil {
		si.failCurrentRPC(raw, err)
		return
	}

	reply.RawReply = raw
	si.deliverResult(&rpcResult{reply: reply})
}

func (si *sesImpl) handleNotificationDoc(raw string) {
	result := &common.NotificationMessage{}
	if err := xml.Unmarshal([]byte(raw), result); err != nil {
		si.trace.Error("Failed to parse notification", si.target, err)
		return
	}

	si.deliverNotification(result)
}

// failCurrentRPC fails the oldest outstanding rpc with the parse failure.
// The reply was unusable even after the device handler saw it, but the
// session itself carries on.
func (si *sesImpl) failCurrentRPC(raw string, err error) {
	si.trace.Error("Failed to parse reply", si.target, err)
	si.deliverResult(&rpcResult{err: &devices.MalformedReplyError{Raw: raw, Err: err}})
}

// deliverResult sends the result to the oldest outstanding rpc, if any.
func (si *sesImpl) deliverResult(res *rpcResult) {
	respch := si.popRespChan()
	if respch == nil {
		return
	}
	go func(ch chan *rpcResult, r *rpcResult) {
		ch <- r
	}(respch, res)
}

// deliverNotification sends the notification to the subscription channel, if
// it is defined and not full.
func (si *sesImpl) deliverNotification(nmsg *common.NotificationMessage) {
	if si.subchan == nil {
		return
	}

	notification := buildNotification(nmsg)

	si.trace.NotificationReceived(notification)

	select {
	case si.subchan <- notification:
	default:
		atomic.AddUint64(&si.notificationDropCount, 1)
		si.trace.NotificationDropped(notification)
	}
}

func (si *sesImpl) enableChunkedFraming() {
	if si.cfg.DisableChunkedCodec {
		return
	}
	if common.PeerSupportsChunkedFraming(si.hello.Capabilities) {
		// Update the codec to use chunked framing from now.
		codec.EnableChunkedFraming(si.dec, si.enc)
	}
}

// shapeRequest adjusts a literal request body to the device profile. Devices
// that reject qualified element names get redundant base namespace
// declarations stripped, leaving bare names for the envelope to scope.
func (si *sesImpl) shapeRequest(req common.Request) common.Request {
	body, ok := req.(string)
	if !ok || si.device.RequiresQualifiedNames() {
		return req
	}
	if !strings.Contains(body, common.NetconfNS) {
		return req
	}

	root, err := xmlns.Parse([]byte(body))
	if err != nil {
		return req
	}
	xmlns.StripDefaultNS(root, common.NetconfNS)

	out, err := root.Marshal()
	if err != nil {
		return req
	}
	return string(out)
}

func buildNotification(nmsg *common.NotificationMessage) *common.Notification {
	event := fmt.Sprintf(`<%s xmlns="%s">%s</%s>`,
		nmsg.Event.XMLName.Local, nmsg.Event.XMLName.Space, nmsg.Event.Event, nmsg.Event.XMLName.Local)
	notification := &common.Notification{XMLName: nmsg.Event.XMLName, EventTime: nmsg.EventTime, Event: event}
	return notification
}

// rootName scans the document for its root start element.
func rootName(raw string) (xml.Name, error) {
	dec := xml.NewDecoder(strings.NewReader(raw))
	for {
		token, err := dec.Token()
		if err != nil {
			return xml.Name{}, err
		}
		if start, ok := token.(xml.StartElement); ok {
			return start.Name, nil
		}
	}
}

// envelopeAttrs builds the namespace declarations for the rpc envelope from
// the device namespace map. The default namespace is fixed by the rpc
// element itself and is not repeated here.
func envelopeAttrs(nsmap devices.NamespaceMap) (attrs []xml.Attr) {
	prefixes := make([]string, 0, len(nsmap))
	for prefix := range nsmap {
		if prefix == "" {
			continue
		}
		prefixes = append(prefixes, prefix)
	}
	sort.Strings(prefixes)

	for _, prefix := range prefixes {
		attrs = append(attrs, xml.Attr{Name: xml.Name{Local: "xmlns:" + prefix}, Value: nsmap[prefix]})
	}
	return
}

func withoutCapability(caps []string, uri string) []string {
	filtered := make([]string, 0, len(caps))
	for _, capability := range caps {
		if capability != uri {
			filtered = append(filtered, capability)
		}
	}
	return filtered
}

func (si *sesImpl) decodeElement(v interface{}, start *xml.StartElement) (err error) {
	if err = si.dec.DecodeElement(v, start); err != nil {
		si.trace.Error(fmt.Sprintf("DecodeElement token:%s", start.Name.Local), si.target, err)
	}
	return
}

func (si *sesImpl) closeChannels() {
	close(si.hellochan)
	if si.subchan != nil {
		close(si.subchan)
	}
	si.closeAllResponseChannels()
}

func (si *sesImpl) closeAllResponseChannels() {
	for {
		if ch := si.popRespChan(); ch != nil {
			close(ch)
		} else {
			return
		}
	}
}

func (si *sesImpl) allocChan() (ch chan *rpcResult) {
	si.pchLock.Lock()
	defer si.pchLock.Unlock()

	l := len(si.pool)
	if l == 0 {
		return make(chan *rpcResult)
	}

	si.pool, ch = si.pool[:l-1], si.pool[l-1]
	return
}

func (si *sesImpl) relChan(ch chan *rpcResult) {
	si.pchLock.Lock()
	defer si.pchLock.Unlock()
	si.pool = append(si.pool, ch)
}

func (si *sesImpl) pushRespChan(ch chan *rpcResult) {
	si.rchLock.Lock()
	defer si.rchLock.Unlock()
	si.responseq = append(si.responseq, ch)

}

func (si *sesImpl) popRespChan() (ch chan *rpcResult) {
	si.rchLock.Lock()
	defer si.rchLock.Unlock()
	if len(si.responseq) > 0 {
		si.responseq, ch = si.responseq[1:], si.responseq[0]
	}
	return
}

// Map an RPC reply to an error. A nil reply means the session closed before
// a reply arrived. A reply carrying rpc-error elements always fails the rpc,
// whatever else the reply carries.
func mapError(r *common.RPCReply) (err error) {
	if r == nil {
		err = io.ErrUnexpectedEOF
	} else if len(r.Errors) > 0 {
		err = devices.NewReplyError(r)
	}
	return
}
