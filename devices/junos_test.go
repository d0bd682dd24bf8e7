package devices

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	assert "github.com/stretchr/testify/require"

	"github.com/ekmixon/ncclient/common"
	"github.com/ekmixon/ncclient/common/xmlns"
)

func newTestJunos(t *testing.T, trace *DeviceTrace, p *Parameters) Handler {
	ctx := context.Background()
	if trace != nil {
		ctx = WithDeviceTrace(ctx, trace)
	}
	if p == nil {
		p = &Parameters{Name: "junos"}
	}
	h, err := NewHandler(ctx, p)
	assert.NoError(t, err)
	return h
}

func TestJunosRoutingEngineRepair(t *testing.T) {
	h := newTestJunos(t, nil, nil)

	outcome, ok := h.RepairRawReply("<routing-engine><ok/>")
	assert.True(t, ok)
	assert.Nil(t, outcome.Fault)
	assert.Equal(t, "<routing-engine></routing-engine>\n<ok/>", outcome.Raw)
}

func TestJunosRoutingEngineRepairPreservesContent(t *testing.T) {
	h := newTestJunos(t, nil, nil)

	raw := "<commit-results><routing-engine><name>re0</name><ok/></commit-results>"
	outcome, ok := h.RepairRawReply(raw)
	assert.True(t, ok)
	assert.Equal(t, "<commit-results><routing-engine><name>re0</name></routing-engine>\n<ok/></commit-results>", outcome.Raw)
}

func TestJunosRepairNotApplicable(t *testing.T) {
	h := newTestJunos(t, nil, nil)

	for _, raw := range []string{
		`<rpc-reply xmlns="urn:ietf:params:xml:ns:netconf:base:1.0"><ok/></rpc-reply>`,
		`<rpc-reply xmlns="urn:ietf:params:xml:ns:netconf:base:1.0"><rpc-error><error-severity>error</error-severity></rpc-error></rpc-reply>`,
		"<rpc-reply><data/></rpc-reply>",
		"plain text",
	} {
		_, ok := h.RepairRawReply(raw)
		assert.False(t, ok, raw)
	}
}

func TestJunosBareErrorExtraction(t *testing.T) {
	var extracted int
	trace := &DeviceTrace{ErrorsExtracted: func(count int) { extracted = count }}
	h := newTestJunos(t, trace, nil)

	raw := "<rpc-reply>" +
		"<rpc-error><error-type>protocol</error-type><error-severity>error</error-severity>" +
		"<error-message>syntax error</error-message></rpc-error>" +
		"<rpc-error><error-type>protocol</error-type><error-severity>error</error-severity>" +
		"<error-message>unknown command</error-message></rpc-error>" +
		"</rpc-reply>"

	outcome, ok := h.RepairRawReply(raw)
	assert.True(t, ok)

	// Extraction returns the original text untouched, with the errors on
	// the side.
	assert.Equal(t, raw, outcome.Raw)
	assert.NotNil(t, outcome.Fault)
	assert.Len(t, outcome.Fault.Details, 2)
	assert.Equal(t, "syntax error", outcome.Fault.Details[0].Message)
	assert.Equal(t, "unknown command", outcome.Fault.Details[1].Message)
	assert.Equal(t, common.NetconfNS, outcome.Fault.Details[0].Name.Space)
	assert.Len(t, outcome.Fault.Reply.Errors, 2)
	assert.Equal(t, 2, extracted)
}

func TestJunosRepairRuleOrder(t *testing.T) {
	h := newTestJunos(t, nil, nil)

	// A reply matching both patterns takes the routing-engine repair;
	// rules apply in order and outcomes are mutually exclusive.
	raw := "<rpc-reply><routing-engine><ok/><rpc-error><error-severity>error</error-severity></rpc-error></rpc-reply>"
	outcome, ok := h.RepairRawReply(raw)
	assert.True(t, ok)
	assert.Nil(t, outcome.Fault)
	assert.Contains(t, outcome.Raw, "</routing-engine>\n<ok/>")
}

func TestJunosSessionSetup(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := newTestJunos(t, nil, nil)
	s := NewMockSession(ctrl)
	s.EXPECT().RunCommand("xml-mode netconf need-trailer").Return(nil)

	assert.NoError(t, h.OnSessionEstablished(s))
}

func TestJunosSessionSetupFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := newTestJunos(t, nil, nil)
	s := NewMockSession(ctrl)
	cause := errors.New("channel rejected")
	s.EXPECT().RunCommand(gomock.Any()).Return(cause)

	err := h.OnSessionEstablished(s)
	assert.Error(t, err)
	var setupErr *SetupError
	assert.True(t, errors.As(err, &setupErr))
	assert.Equal(t, junosSetupCommand, setupErr.Op)
	assert.Equal(t, cause, setupErr.Err)
}

func TestJunosSchemaReplyTransform(t *testing.T) {
	var warnings int
	trace := &DeviceTrace{NamespacePatched: func(local, oldNS, newNS string) { warnings++ }}
	h := newTestJunos(t, trace, nil)

	transform := h.ReplyTransformFor(KindGetSchema)
	assert.NotNil(t, transform)
	assert.Nil(t, h.ReplyTransformFor(KindRPCReply))

	// A data element wrongly carrying the base namespace is patched, with
	// exactly one warning.
	root, err := xmlns.Parse([]byte(`<rpc-reply xmlns="` + common.NetconfNS + `"><data>module demo {}</data></rpc-reply>`))
	assert.NoError(t, err)
	assert.True(t, transform(root))
	assert.Equal(t, common.NetconfMonitoringNS, xmlns.FindAll(root, "data")[0].XMLName.Space)
	assert.Equal(t, 1, warnings)

	// Applying the transform again changes nothing further.
	once, err := root.Marshal()
	assert.NoError(t, err)
	assert.False(t, transform(root))
	twice, err := root.Marshal()
	assert.NoError(t, err)
	assert.Equal(t, string(once), string(twice))
	assert.Equal(t, 1, warnings)

	// An unqualified data element is aligned silently.
	root, err = xmlns.Parse([]byte(`<rpc-reply><data>module demo {}</data></rpc-reply>`))
	assert.NoError(t, err)
	assert.True(t, transform(root))
	assert.Equal(t, common.NetconfMonitoringNS, xmlns.FindAll(root, "data")[0].XMLName.Space)
	assert.Equal(t, 1, warnings)
}

func TestJunosSchemaReplyTransformAmbiguous(t *testing.T) {
	var matches []int
	trace := &DeviceTrace{AmbiguousPatchTarget: func(local string, n int) { matches = append(matches, n) }}
	h := newTestJunos(t, trace, nil)
	transform := h.ReplyTransformFor(KindGetSchema)

	for _, doc := range []string{
		`<rpc-reply><data>a</data><data>b</data></rpc-reply>`,
		`<rpc-reply><ok></ok></rpc-reply>`,
	} {
		root, err := xmlns.Parse([]byte(doc))
		assert.NoError(t, err)
		before, err := root.Marshal()
		assert.NoError(t, err)

		assert.False(t, transform(root))

		after, err := root.Marshal()
		assert.NoError(t, err)
		assert.Equal(t, string(before), string(after))
	}
	assert.Equal(t, []int{2, 0}, matches)
}

func TestJunosParserModeDefault(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := newTestJunos(t, nil, nil)
	s := NewMockSession(ctrl)
	assert.Equal(t, ParseWholeDocument, h.ParserMode(s))
}

func TestJunosParserModeStreaming(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	var streamed int
	trace := &DeviceTrace{StreamRead: func(n int) { streamed += n }}
	h := newTestJunos(t, trace, &Parameters{Name: "junos", StreamReplies: true})

	s := NewMockSession(ctrl)
	var attached Listener
	s.EXPECT().AddListener(gomock.Any()).Do(func(l Listener) { attached = l })
	assert.Equal(t, ParseStreaming, h.ParserMode(s))
	assert.NotNil(t, attached)

	attached.Received([]byte("<rpc-reply>"))
	assert.Equal(t, len("<rpc-reply>"), streamed)

	// Selecting again swaps the listener rather than stacking a second one.
	s.EXPECT().RemoveListener(gomock.Any()).Do(func(l Listener) { assert.Same(t, attached, l) })
	s.EXPECT().AddListener(gomock.Any()).Do(func(l Listener) { assert.NotSame(t, attached, l) })
	assert.Equal(t, ParseStreaming, h.ParserMode(s))
}

func TestJunosProfile(t *testing.T) {
	h := newTestJunos(t, nil, nil)
	assert.False(t, h.RequiresQualifiedNames())
	assert.Equal(t, NamespaceMap{"": common.NetconfNS}, h.BaseNamespaceMap())
}

func TestJunosOperations(t *testing.T) {
	h := newTestJunos(t, nil, nil)
	ops := h.Operations()

	for _, tc := range []struct {
		name string
		op   string
		args []string
		want string
	}{
		{name: "GetConfiguration", op: "get-configuration",
			want: `<get-configuration format="xml"/>`},
		{name: "GetConfigurationText", op: "get-configuration", args: []string{"text"},
			want: `<get-configuration format="text"/>`},
		{name: "LoadConfigurationSet", op: "load-configuration", args: []string{"set", "set system host-name r1"},
			want: `<load-configuration action="set" format="text"><configuration-set>set system host-name r1</configuration-set></load-configuration>`},
		{name: "LoadConfigurationMerge", op: "load-configuration", args: []string{"merge", "<system/>"},
			want: `<load-configuration action="merge"><configuration><system/></configuration></load-configuration>`},
		{name: "CompareConfiguration", op: "compare-configuration",
			want: `<get-configuration compare="rollback" rollback="0" format="text"/>`},
		{name: "Command", op: "command", args: []string{"show version"},
			want: `<command format="text">show version</command>`},
		{name: "Reboot", op: "reboot", want: "<request-reboot/>"},
		{name: "Halt", op: "halt", want: "<request-halt/>"},
		{name: "Commit", op: "commit", want: "<commit-configuration/>"},
		{name: "CommitConfirmed", op: "commit", args: []string{"confirmed"},
			want: "<commit-configuration><confirmed/></commit-configuration>"},
		{name: "Rollback", op: "rollback", args: []string{"3"},
			want: `<load-configuration rollback="3"/>`},
	} {
		t.Run(tc.name, func(t *testing.T) {
			op, ok := ops[tc.op]
			assert.True(t, ok)
			req, err := op.NewRequest(tc.args...)
			assert.NoError(t, err)
			assert.Equal(t, tc.want, req)
		})
	}

	// The vendor commit shadows the baseline commit.
	baseline, err := baselineOperations()["commit"].NewRequest()
	assert.NoError(t, err)
	assert.Equal(t, "<commit/>", baseline)
}
