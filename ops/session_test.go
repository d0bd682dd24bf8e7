package ops

import (
	"context"
	"encoding/xml"
	"errors"
	"testing"

	"github.com/ekmixon/ncclient/common"
	"github.com/ekmixon/ncclient/devices"
	"github.com/ekmixon/ncclient/mocks"

	assert "github.com/stretchr/testify/require"
)

func TestGetSubtreeToString(t *testing.T) {

	ncs, mcli := newOpsSessionWithMockClient(t)
	defer ncs.Close()
	mcli.On("Execute", createGetSubtreeRequest(`<subtree-element/>`)).Return(&common.RPCReply{Data: `<data><element attr1="ABC"/></data>`}, nil)
	mcli.On("Close")

	var result string
	err := ncs.GetSubtree(`<subtree-element/>`, &result)
	assert.NoError(t, err, "Not expecting call to fail")
	assert.Equal(t, `<element attr1="ABC"/>`, result, "Reply should contain response data")
}

func TestGetSubtreeToStruct(t *testing.T) {

	ncs, mcli := newOpsSessionWithMockClient(t)
	mcli.On("Execute", createGetSubtreeRequest(`<subtree-element/>`)).Return(&common.RPCReply{Data: `<data><element attr1="ABC"/></data>`}, nil)

	var result = &Element{}
	err := ncs.GetSubtree(`<subtree-element/>`, result)
	assert.NoError(t, err, "Not expecting call to fail")
	assert.Equal(t, `ABC`, result.Attr1, "Reply should contain response data")
}

func TestGetSubtreeExecuteError(t *testing.T) {

	ncs, mcli := newOpsSessionWithMockClient(t)
	mcli.On("Execute", createGetSubtreeRequest(`<subtree-element/>`)).Return(nil, errors.New("failed"))

	var result string
	err := ncs.GetSubtree(`<subtree-element/>`, &result)
	assert.Error(t, err, "expecting call to fail")
}

func TestGetXpathToString(t *testing.T) {

	ncs, mcli := newOpsSessionWithMockClient(t)
	mcli.On("Execute", createGetXpathRequest(`/tns:element`, []Namespace{{"tns", "urn:tns"}})).Return(&common.RPCReply{Data: `<data><element attr1="ABC"/></data>`}, nil)

	var result string
	err := ncs.GetXpath(`/tns:element`, []Namespace{{"tns", "urn:tns"}}, &result)
	assert.NoError(t, err, "Not expecting call to fail")
	assert.Equal(t, `<element attr1="ABC"/>`, result, "Reply should contain response data")
}

func TestGetXpathToStruct(t *testing.T) {

	ncs, mcli := newOpsSessionWithMockClient(t)
	mcli.On("Execute", createGetXpathRequest(`/tns:element`, []Namespace{{"tns", "urn:tns"}})).Return(&common.RPCReply{Data: `<data><element attr1="ABC"/></data>`}, nil)

	var result = &Element{}
	err := ncs.GetXpath(`/tns:element`, []Namespace{{"tns", "urn:tns"}}, result)
	assert.NoError(t, err, "Not expecting call to fail")
	assert.Equal(t, `ABC`, result.Attr1, "Reply should contain response data")
}

func TestGetXpathExecuteError(t *testing.T) {

	ncs, mcli := newOpsSessionWithMockClient(t)
	mcli.On("Execute", createGetXpathRequest(`/tns:element`, []Namespace{{"tns", "urn:tns"}})).Return(nil, errors.New("failed"))

	var result string
	err := ncs.GetXpath(`/tns:element`, []Namespace{{"tns", "urn:tns"}}, &result)
	assert.Error(t, err, "Expecting call to fail")
}

func TestGetConfigSubtreeToString(t *testing.T) {

	ncs, mcli := newOpsSessionWithMockClient(t)
	mcli.On("Execute", createGetConfigSubtreeRequest(`<subtree-element/>`, RunningCfg)).Return(&common.RPCReply{Data: `<data><element attr1="ABC"/></data>`}, nil)

	var result string
	err := ncs.GetConfigSubtree(`<subtree-element/>`, RunningCfg, &result)
	assert.NoError(t, err, "Not expecting call to fail")
	assert.Equal(t, `<element attr1="ABC"/>`, result, "Reply should contain response data")
}

func TestGetConfigSubtreeToStruct(t *testing.T) {

	ncs, mcli := newOpsSessionWithMockClient(t)
	mcli.On("Execute", createGetConfigSubtreeRequest(`<subtree-element/>`, RunningCfg)).Return(&common.RPCReply{Data: `<data><element attr1="ABC"/></data>`}, nil)

	var result = &Element{}
	err := ncs.GetConfigSubtree(`<subtree-element/>`, RunningCfg, result)
	assert.NoError(t, err, "Not expecting call to fail")
	assert.Equal(t, `ABC`, result.Attr1, "Reply should contain response data")
}

func TestGetConfigSubtreeExecuteError(t *testing.T) {

	ncs, mcli := newOpsSessionWithMockClient(t)
	mcli.On("Execute", createGetConfigSubtreeRequest(`<subtree-element/>`, RunningCfg)).Return(nil, errors.New("failed"))

	var result string
	err := ncs.GetConfigSubtree(`<subtree-element/>`, RunningCfg, &result)
	assert.Error(t, err, "Expecting call to fail")
}

func TestGetConfigXpathToString(t *testing.T) {

	ncs, mcli := newOpsSessionWithMockClient(t)
	mcli.On("Execute", createGetConfigXpathRequest(`/tns:element`, RunningCfg, []Namespace{{"tns", "urn:tns"}})).Return(&common.RPCReply{Data: `<data><element attr1="ABC"/></data>`}, nil)

	var result string
	err := ncs.GetConfigXpath(`/tns:element`, []Namespace{{"tns", "urn:tns"}}, RunningCfg, &result)
	assert.NoError(t, err, "Not expecting call to fail")
	assert.Equal(t, `<element attr1="ABC"/>`, result, "Reply should contain response data")
}

func TestGetConfigXpathToStruct(t *testing.T) {

	ncs, mcli := newOpsSessionWithMockClient(t)
	mcli.On("Execute", createGetConfigXpathRequest(`/tns:element`, RunningCfg, []Namespace{{"tns", "urn:tns"}})).Return(&common.RPCReply{Data: `<data><element attr1="ABC"/></data>`}, nil)

	var result = &Element{}
	err := ncs.GetConfigXpath(`/tns:element`, []Namespace{{"tns", "urn:tns"}}, RunningCfg, result)
	assert.NoError(t, err, "Not expecting call to fail")
	assert.Equal(t, `ABC`, result.Attr1, "Reply should contain response data")
}

func TestGetConfigXpathExecuteError(t *testing.T) {

	ncs, mcli := newOpsSessionWithMockClient(t)
	mcli.On("Execute", createGetConfigXpathRequest(`/tns:element`, RunningCfg, []Namespace{{"tns", "urn:tns"}})).Return(nil, errors.New("failed"))

	var result string
	err := ncs.GetConfigXpath(`/tns:element`, []Namespace{{"tns", "urn:tns"}}, RunningCfg, &result)
	assert.Error(t, err, "Expecting call to fail")
}

func TestEditConfigString(t *testing.T) {

	ncs, mcli := newOpsSessionWithMockClient(t)
	mcli.On("Execute", createEditConfigRequest(CandidateCfg, Cfg(`<configuration/>`))).Return(&common.RPCReply{}, nil)

	err := ncs.EditConfig(CandidateCfg, Cfg(`<configuration/>`))
	assert.NoError(t, err, "Not expecting call to fail")

	mcli.AssertExpectations(t)
}

type testConfig struct {
	XMLName xml.Name `xml:"configuration"`
}

func TestEditConfigStruct(t *testing.T) {

	ncs, mcli := newOpsSessionWithMockClient(t)
	mcli.On("Execute", createEditConfigRequest(CandidateCfg, Cfg(&testConfig{}))).Return(&common.RPCReply{}, nil)

	err := ncs.EditConfig(CandidateCfg, Cfg(&testConfig{}))
	assert.NoError(t, err, "Not expecting call to fail")

	mcli.AssertExpectations(t)
}

func TestEditConfigURL(t *testing.T) {

	ncs, mcli := newOpsSessionWithMockClient(t)
	mcli.On("Execute", createEditConfigRequest(CandidateCfg, CfgURL("file://checkpoint.conf"))).Return(&common.RPCReply{}, nil)

	err := ncs.EditConfig(CandidateCfg, CfgURL("file://checkpoint.conf"))
	assert.NoError(t, err, "Not expecting call to fail")

	mcli.AssertExpectations(t)
}

func TestEditConfigOptions(t *testing.T) {

	ncs, mcli := newOpsSessionWithMockClient(t)
	mcli.On("Execute",
		createEditConfigRequest(CandidateCfg, Cfg(`<configuration/>`), ErrorOption(StopOnErrorErrOpt), DefaultOperation(NoneOp), TestOption(TestThenSetOpt))).Return(&common.RPCReply{}, nil)

	err := ncs.EditConfig(CandidateCfg, Cfg(`<configuration/>`), ErrorOption(StopOnErrorErrOpt), DefaultOperation(NoneOp), TestOption(TestThenSetOpt))
	assert.NoError(t, err, "Not expecting call to fail")

	mcli.AssertExpectations(t)
}

func TestEditConfigCfg(t *testing.T) {

	ncs, mcli := newOpsSessionWithMockClient(t)
	mcli.On("Execute", createEditConfigRequest(CandidateCfg, Cfg(`<configuration/>`))).Return(&common.RPCReply{}, nil)

	err := ncs.EditConfigCfg(CandidateCfg, `<configuration/>`)
	assert.NoError(t, err, "Not expecting call to fail")

	mcli.AssertExpectations(t)
}

func TestCopyConfig(t *testing.T) {

	ncs, mcli := newOpsSessionWithMockClient(t)
	mcli.On("Execute", createCopyConfigRequest(DsName(CandidateCfg), DsURL("file://checkpoint.conf"))).Return(&common.RPCReply{}, nil)

	err := ncs.CopyConfig(DsName(CandidateCfg), DsURL("file://checkpoint.conf"))
	assert.NoError(t, err, "Not expecting call to fail")

	mcli.AssertExpectations(t)
}

func TestDeleteConfig(t *testing.T) {

	ncs, mcli := newOpsSessionWithMockClient(t)
	mcli.On("Execute", createDeleteConfigRequest(DsURL("file://checkpoint.conf"))).Return(&common.RPCReply{}, nil)

	err := ncs.DeleteConfig(DsURL("file://checkpoint.conf"))
	assert.NoError(t, err, "Not expecting call to fail")

	mcli.AssertExpectations(t)
}

func TestLock(t *testing.T) {

	ncs, mcli := newOpsSessionWithMockClient(t)
	mcli.On("Execute", createLockRequest(CandidateCfg)).Return(&common.RPCReply{}, nil)

	err := ncs.Lock(CandidateCfg)
	assert.NoError(t, err, "Not expecting call to fail")

	mcli.AssertExpectations(t)
}

func TestUnlock(t *testing.T) {

	ncs, mcli := newOpsSessionWithMockClient(t)
	mcli.On("Execute", createUnlockRequest(CandidateCfg)).Return(&common.RPCReply{}, nil)

	err := ncs.Unlock(CandidateCfg)
	assert.NoError(t, err, "Not expecting call to fail")

	mcli.AssertExpectations(t)
}

func TestCommit(t *testing.T) {

	ncs, mcli := newOpsSessionWithMockClient(t)
	mcli.On("Device").Return(newDeviceHandler(t, ""))
	mcli.On("Execute", "<commit/>").Return(&common.RPCReply{}, nil)

	err := ncs.Commit()
	assert.NoError(t, err, "Not expecting call to fail")

	mcli.AssertExpectations(t)
}

func TestCommitVendorOverride(t *testing.T) {

	ncs, mcli := newOpsSessionWithMockClient(t)
	mcli.On("Device").Return(newDeviceHandler(t, "junos"))
	mcli.On("Execute", "<commit-configuration/>").Return(&common.RPCReply{}, nil)

	err := ncs.Commit()
	assert.NoError(t, err, "Not expecting call to fail")

	mcli.AssertExpectations(t)
}

func TestValidate(t *testing.T) {

	ncs, mcli := newOpsSessionWithMockClient(t)
	mcli.On("Device").Return(newDeviceHandler(t, ""))
	mcli.On("Execute", `<validate><source><candidate/></source></validate>`).Return(&common.RPCReply{}, nil)

	err := ncs.Validate(CandidateCfg)
	assert.NoError(t, err, "Not expecting call to fail")

	mcli.AssertExpectations(t)
}

func TestDiscard(t *testing.T) {

	ncs, mcli := newOpsSessionWithMockClient(t)
	mcli.On("Execute", createDiscardRequest()).Return(&common.RPCReply{}, nil)

	err := ncs.Discard()
	assert.NoError(t, err, "Not expecting call to fail")

	mcli.AssertExpectations(t)
}

func TestCloseSession(t *testing.T) {

	ncs, mcli := newOpsSessionWithMockClient(t)
	mcli.On("Execute", createCloseSessionRequest()).Return(&common.RPCReply{}, nil)

	err := ncs.CloseSession()
	assert.NoError(t, err, "Not expecting call to fail")

	mcli.AssertExpectations(t)
}

func TestKillSession(t *testing.T) {

	ncs, mcli := newOpsSessionWithMockClient(t)
	mcli.On("Execute", createKillSessionRequest(999)).Return(&common.RPCReply{}, nil)

	err := ncs.KillSession(999)
	assert.NoError(t, err, "Not expecting call to fail")

	mcli.AssertExpectations(t)
}

func TestGetSchemas(t *testing.T) {

	ncs, mcli := newOpsSessionWithMockClient(t)

	mcli.On("Execute", createGetSchemasRequest()).Return(&common.RPCReply{Data: `
    <data>
	<netconf-state xmlns="urn:ietf:params:xml:ns:yang:ietf-netconf-monitoring">
	<schemas>
	<schema>
	<identifier>junos-rpc-internal-invoke</identifier>
	<version>2019-01-01</version>
	<format>yang</format>
	<namespace>http://yang.juniper.net/junos/rpc/internal-invoke</namespace>
	<location>NETCONF</location>
	</schema>
	<schema>
	<identifier>junos-rpc-telemetry-agentd</identifier>
	<version>2019-01-01</version>
	<format>yang</format>
	<namespace>http://yang.juniper.net/junos/rpc/telemetry-agentd</namespace>
	<location>NETCONF</location>
	</schema>
    </schemas>
    </netconf-state>
    </data>`}, nil)

	reply, err := ncs.GetSchemas()
	assert.NoError(t, err, "Not expecting call to fail")
	assert.NotNil(t, reply, "Reply should not be nil")
	assert.Equal(t, 2, len(reply))
	assert.Equal(t, "junos-rpc-internal-invoke", reply[0].Identifier)
	assert.Equal(t, "junos-rpc-telemetry-agentd", reply[1].Identifier)
}

func TestGetSchemasExecuteError(t *testing.T) {

	ncs, mcli := newOpsSessionWithMockClient(t)
	mcli.On("Execute", createGetSchemasRequest()).Return(nil, errors.New("failure"))

	_, err := ncs.GetSchemas()
	assert.Error(t, err, "Expecting exec to fail")
}

func TestGetSchema(t *testing.T) {

	ncs, mcli := newOpsSessionWithMockClient(t)
	mcli.On("Device").Return(newDeviceHandler(t, ""))
	mcli.On("Execute", `<get-schema xmlns="urn:ietf:params:xml:ns:yang:ietf-netconf-monitoring"><identifier>id</identifier><version>vsn</version><format>yang</format></get-schema>`).
		Return(&common.RPCReply{Data: `<data>Some Yang</data>`}, nil)

	reply, err := ncs.GetSchema("id", "vsn", "yang")
	assert.NoError(t, err, "Not expecting exec to fail")
	assert.NotEmpty(t, reply, "Reply should not be empty")
	assert.Equal(t, "Some Yang", reply)
}

func TestGetSchemaExecuteError(t *testing.T) {

	ncs, mcli := newOpsSessionWithMockClient(t)
	mcli.On("Device").Return(newDeviceHandler(t, ""))
	mcli.On("Execute", `<get-schema xmlns="urn:ietf:params:xml:ns:yang:ietf-netconf-monitoring"><identifier>id</identifier><version>vsn</version><format>yang</format></get-schema>`).
		Return(nil, errors.New("failed"))

	reply, err := ncs.GetSchema("id", "vsn", "yang")
	assert.Error(t, err, "Expecting exec to fail")
	assert.Empty(t, reply, "Reply should be empty")
}

func TestGetSchemaMissingIdentifier(t *testing.T) {

	ncs, mcli := newOpsSessionWithMockClient(t)
	mcli.On("Device").Return(newDeviceHandler(t, ""))

	reply, err := ncs.GetSchema("", "vsn", "yang")
	assert.Error(t, err, "Expecting request build to fail")
	assert.Empty(t, reply, "Reply should be empty")
}

func TestDispatchVendorOperation(t *testing.T) {

	ncs, mcli := newOpsSessionWithMockClient(t)
	mcli.On("Device").Return(newDeviceHandler(t, "junos"))
	mcli.On("Execute", `<get-configuration format="text"/>`).
		Return(&common.RPCReply{Data: `<configuration-information><configuration-output>set system host-name left</configuration-output></configuration-information>`}, nil)

	reply, err := ncs.Dispatch("get-configuration", "text")
	assert.NoError(t, err, "Not expecting exec to fail")
	assert.Equal(t, `<configuration-information><configuration-output>set system host-name left</configuration-output></configuration-information>`, reply.Data)

	mcli.AssertExpectations(t)
}

func TestDispatchUnknownOperation(t *testing.T) {

	ncs, mcli := newOpsSessionWithMockClient(t)
	mcli.On("Device").Return(newDeviceHandler(t, ""))

	reply, err := ncs.Dispatch("get-telemetry")
	assert.EqualError(t, err, `device does not define operation "get-telemetry"`)
	assert.Nil(t, reply, "Reply should be nil")
}

func TestDispatchRequestBuildError(t *testing.T) {

	ncs, mcli := newOpsSessionWithMockClient(t)
	mcli.On("Device").Return(newDeviceHandler(t, "junos"))

	reply, err := ncs.Dispatch("load-configuration")
	assert.EqualError(t, err, "load-configuration takes an action and a configuration body")
	assert.Nil(t, reply, "Reply should be nil")
}

func TestDispatchExecuteError(t *testing.T) {

	ncs, mcli := newOpsSessionWithMockClient(t)
	mcli.On("Device").Return(newDeviceHandler(t, ""))
	mcli.On("Execute", "<discard-changes/>").Return(nil, errors.New("failed"))

	reply, err := ncs.Dispatch("discard-changes")
	assert.Error(t, err, "Expecting exec to fail")
	assert.Nil(t, reply, "Reply should be nil")
}

func TestDispatchPatchesSchemaReplyNamespace(t *testing.T) {

	ncs, mcli := newOpsSessionWithMockClient(t)
	mcli.On("Device").Return(newDeviceHandler(t, "junos"))
	mcli.On("Execute", `<get-schema xmlns="urn:ietf:params:xml:ns:yang:ietf-netconf-monitoring"><identifier>junos-conf-root</identifier></get-schema>`).
		Return(&common.RPCReply{
			Data:     `<data xmlns="urn:ietf:params:xml:ns:netconf:base:1.0">module junos-conf-root {}</data>`,
			RawReply: `<rpc-reply xmlns="urn:ietf:params:xml:ns:netconf:base:1.0" message-id="101"><data xmlns="urn:ietf:params:xml:ns:netconf:base:1.0">module junos-conf-root {}</data></rpc-reply>`,
		}, nil)

	reply, err := ncs.Dispatch("get-schema", "junos-conf-root")
	assert.NoError(t, err, "Not expecting exec to fail")
	assert.Equal(t, `<data xmlns="urn:ietf:params:xml:ns:yang:ietf-netconf-monitoring">module junos-conf-root {}</data>`, reply.Data,
		"Schema data should have been moved to the monitoring namespace")
}

func TestDispatchRealignsBareSchemaReply(t *testing.T) {

	ncs, mcli := newOpsSessionWithMockClient(t)
	mcli.On("Device").Return(newDeviceHandler(t, "junos"))
	mcli.On("Execute", `<get-schema xmlns="urn:ietf:params:xml:ns:yang:ietf-netconf-monitoring"><identifier>junos-conf-root</identifier></get-schema>`).
		Return(&common.RPCReply{Data: `<data>module junos-conf-root {}</data>`}, nil)

	reply, err := ncs.Dispatch("get-schema", "junos-conf-root")
	assert.NoError(t, err, "Not expecting exec to fail")
	assert.Equal(t, `<data xmlns="urn:ietf:params:xml:ns:yang:ietf-netconf-monitoring">module junos-conf-root {}</data>`, reply.Data,
		"Unqualified schema data should have been realigned")
}

func TestDispatchLeavesCompliantSchemaReplyUntouched(t *testing.T) {

	ncs, mcli := newOpsSessionWithMockClient(t)
	mcli.On("Device").Return(newDeviceHandler(t, "junos"))

	original := `<data xmlns="urn:ietf:params:xml:ns:yang:ietf-netconf-monitoring"><x:wrapped xmlns:x="urn:x">module junos-conf-root {}</x:wrapped></data>`
	mcli.On("Execute", `<get-schema xmlns="urn:ietf:params:xml:ns:yang:ietf-netconf-monitoring"><identifier>junos-conf-root</identifier></get-schema>`).
		Return(&common.RPCReply{
			Data:     original,
			RawReply: `<rpc-reply xmlns="urn:ietf:params:xml:ns:netconf:base:1.0" message-id="102">` + original + `</rpc-reply>`,
		}, nil)

	reply, err := ncs.Dispatch("get-schema", "junos-conf-root")
	assert.NoError(t, err, "Not expecting exec to fail")
	assert.Equal(t, original, reply.Data, "Compliant reply should keep its original bytes")
}

func newOpsSessionWithMockClient(t assert.TestingT) (OpSession, *mocks.OpSession) {
	mockClient := &mocks.OpSession{}
	return &sImpl{mockClient}, mockClient
}

func newDeviceHandler(t assert.TestingT, name string) devices.Handler {
	handler, err := devices.NewHandler(context.Background(), &devices.Parameters{Name: name})
	assert.NoError(t, err, "Not expecting handler construction to fail")
	return handler
}

type Element struct {
	XMLName xml.Name `xml:"element"`
	Attr1   string   `xml:"attr1,attr"`
}
