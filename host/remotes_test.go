package host

import (
	"context"
	"testing"

	"github.com/museumsvictoria/nodel-sub003/host/config"
	"github.com/museumsvictoria/nodel-sub003/host/handle"
	"github.com/museumsvictoria/nodel-sub003/host/registry"
	"github.com/museumsvictoria/nodel-sub003/host/toolkit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func remoteConfig() *config.Config {
	return &config.Config{
		HTTP: config.HTTP{Addr: "127.0.0.1:0"},
		Nodes: &config.Group[*config.Node]{Items: []*config.Node{
			{
				Name:    "Exhibit",
				Events:  []*config.Event{{Name: "Status"}},
				Actions: []*config.Action{{Name: "Screen Down", Forward: "Lower Screen"}},
				Remote: &config.Remote{
					Actions: []*config.RemoteAction{{Name: "Lower Screen", Node: "Screen", Action: "Lower"}},
					Events:  []*config.RemoteEvent{{Name: "Screen Position", Node: "Screen", Event: "Position", Emits: "Status"}},
				},
			},
			{
				Name:    "Screen",
				Events:  []*config.Event{{Name: "Position"}},
				Actions: []*config.Action{{Name: "Lower"}, {Name: "Raise"}},
			},
		}},
	}
}

func TestService_DeclaredRemotes(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, remoteConfig())

	remotes, err := svc.Remotes("Exhibit")
	require.NoError(t, err)
	assert.Equal(t, []*RemoteStatus{
		{Name: "Lower Screen", Kind: "action", Target: toolkit.Target{Node: "Screen", Member: "Lower"}, State: toolkit.BindingWired},
		{Name: "Screen Position", Kind: "event", Target: toolkit.Target{Node: "Screen", Member: "Position"}, State: toolkit.BindingWired},
	}, remotes)

	result, err := svc.Call(ctx, "Exhibit", "Screen Down", "half")
	require.NoError(t, err)
	assert.Equal(t, "half", result)

	require.NoError(t, svc.Emit(ctx, "Screen", "Position", "Down"))
	exhibit, err := svc.Node("Exhibit")
	require.NoError(t, err)
	assert.Equal(t, "Down", exhibit.LocalEvent("Status").Snapshot().Arg)

	_, err = svc.Remotes("Lobby")
	assert.ErrorIs(t, err, ErrNodeNotFound)
}

func TestService_Rewire(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, remoteConfig())

	rewire, err := svc.Registry().LookupAction("Exhibit", RewireAction)
	require.NoError(t, err)
	props, ok := rewire.Binding().Schema["properties"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, props, "remote")
	assert.Contains(t, props, "kind")
	_, err = svc.Registry().LookupAction("Screen", RewireAction)
	assert.ErrorIs(t, err, registry.ErrNotFound, "only nodes with remotes can rewire")

	var testCases = []struct {
		description string
		arg         map[string]interface{}
		state       toolkit.BindingState
		expectErr   error
	}{
		{
			description: "action to another member",
			arg:         map[string]interface{}{"remote": "Lower Screen", "kind": "action", "node": "Screen", "member": "Raise"},
			state:       toolkit.BindingWired,
		},
		{
			description: "action to a missing member",
			arg:         map[string]interface{}{"remote": "LowerScreen", "kind": "action", "node": "Screen", "member": "Tilt"},
			state:       toolkit.BindingMissing,
		},
		{
			description: "event unbound",
			arg:         map[string]interface{}{"remote": "Screen Position", "kind": "event", "node": "Screen"},
			state:       toolkit.BindingEmpty,
		},
		{
			description: "unknown remote",
			arg:         map[string]interface{}{"remote": "Lights", "kind": "action", "node": "Screen", "member": "Lower"},
			expectErr:   ErrRemoteNotFound,
		},
		{
			description: "unknown kind",
			arg:         map[string]interface{}{"remote": "Lower Screen", "kind": "lamp", "node": "Screen"},
			expectErr:   handle.ErrInvalidArgument,
		},
	}
	for _, testCase := range testCases {
		result, err := svc.Call(ctx, "Exhibit", RewireAction, testCase.arg)
		if testCase.expectErr != nil {
			assert.ErrorIs(t, err, testCase.expectErr, testCase.description)
			continue
		}
		require.NoError(t, err, testCase.description)
		status, ok := result.(*RemoteStatus)
		require.True(t, ok, testCase.description)
		assert.Equal(t, testCase.state, status.State, testCase.description)
	}

	_, err = svc.Call(ctx, "Exhibit", "Screen Down", nil)
	assert.ErrorIs(t, err, registry.ErrNotFound)
	require.NoError(t, svc.Emit(ctx, "Screen", "Position", "Up"))
	exhibit, err := svc.Node("Exhibit")
	require.NoError(t, err)
	assert.Nil(t, exhibit.LocalEvent("Status").Snapshot().Arg, "unbound remote event no longer forwards")

	require.NoError(t, svc.Stop(ctx))
	assert.Empty(t, exhibit.RemoteActions())
	assert.Empty(t, exhibit.RemoteEvents())
}
