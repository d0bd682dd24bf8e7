package devices

import (
	"encoding/xml"
	"fmt"
	"regexp"
	"strings"

	"github.com/pkg/errors"

	"github.com/ekmixon/ncclient/common"
	"github.com/ekmixon/ncclient/common/xmlns"
)

// ErrorDetail describes one rpc-error element of a reply, with its
// namespace-qualified element name.
type ErrorDetail struct {
	Name     xml.Name
	Type     string
	Tag      string
	Severity string
	Path     string
	Message  string
}

// ReplyError aggregates the rpc-error elements of a reply. A reply with at
// least one rpc-error always surfaces as a ReplyError, whatever partial
// data it also carries.
type ReplyError struct {
	// Reply is the parsed reply the errors were found in, or the synthetic
	// aggregate assembled by ExtractErrors.
	Reply *common.RPCReply

	// Details holds one entry per rpc-error element, in order of
	// appearance.
	Details []ErrorDetail
}

func (e *ReplyError) Error() string {
	if len(e.Details) == 0 {
		return "netconf rpc error"
	}
	first := e.Details[0]
	if len(e.Details) == 1 {
		return fmt.Sprintf("netconf rpc [%s] '%s'", first.Severity, first.Message)
	}
	return fmt.Sprintf("netconf rpc [%s] '%s' (and %d more)", first.Severity, first.Message, len(e.Details)-1)
}

// NewReplyError builds the aggregate error for a parsed reply carrying
// rpc-error elements.
func NewReplyError(reply *common.RPCReply) *ReplyError {
	details := make([]ErrorDetail, 0, len(reply.Errors))
	for i := range reply.Errors {
		re := &reply.Errors[i]
		details = append(details, ErrorDetail{
			Name:     common.NameRPCError,
			Type:     re.Type,
			Tag:      re.Tag,
			Severity: re.Severity,
			Path:     strings.TrimSpace(re.Path),
			Message:  strings.TrimSpace(re.Message),
		})
	}
	return &ReplyError{Reply: reply, Details: details}
}

var rpcErrorFragment = regexp.MustCompile(`(?s)<rpc-error>.*?</rpc-error>`)

// ExtractErrors pulls every non-overlapping <rpc-error> fragment out of raw
// reply text whose envelope is absent or unusable. Each fragment is parsed
// as a standalone document and requalified with the netconf base namespace,
// which it lost along with the envelope, yielding one ErrorDetail per
// fragment in order of appearance. The aggregate Reply is assembled from
// the original fragments wrapped in a synthetic rpc-reply envelope.
//
// Callers are responsible for establishing that raw contains at least one
// fragment.
func ExtractErrors(raw string) (*ReplyError, error) {
	fragments := rpcErrorFragment.FindAllString(raw, -1)

	details := make([]ErrorDetail, 0, len(fragments))
	for _, fragment := range fragments {
		root, err := xmlns.Parse([]byte(fragment))
		if err != nil {
			return nil, errors.Wrap(err, "parse rpc-error fragment")
		}
		xmlns.Inject(root, common.NetconfNS)
		details = append(details, ErrorDetail{
			Name:     root.XMLName,
			Type:     root.ChildText("error-type"),
			Tag:      root.ChildText("error-tag"),
			Severity: root.ChildText("error-severity"),
			Path:     strings.TrimSpace(root.ChildText("error-path")),
			Message:  strings.TrimSpace(root.ChildText("error-message")),
		})
	}

	reply := &common.RPCReply{}
	aggregate := "<rpc-reply>" + strings.Join(fragments, "") + "</rpc-reply>"
	if err := xml.Unmarshal([]byte(aggregate), reply); err != nil {
		return nil, errors.Wrap(err, "assemble aggregate reply")
	}
	reply.RawReply = raw

	return &ReplyError{Reply: reply, Details: details}, nil
}
