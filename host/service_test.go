package host

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/museumsvictoria/nodel-sub003/host/binding"
	"github.com/museumsvictoria/nodel-sub003/host/config"
	"github.com/museumsvictoria/nodel-sub003/host/registry"
	"github.com/museumsvictoria/nodel-sub003/host/toolkit"
	"github.com/museumsvictoria/nodel-sub003/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		HTTP: config.HTTP{Addr: "127.0.0.1:0"},
		Nodes: &config.Group[*config.Node]{Items: []*config.Node{
			{
				Name: "Projector",
				Events: []*config.Event{
					{Name: "Power", Binding: binding.Binding{Schema: map[string]interface{}{"type": "string", "enum": []interface{}{"On", "Off"}}}, Initial: "Off"},
				},
				Actions: []*config.Action{
					{Name: "Power On", Emits: "Power", Value: "On"},
					{Name: "Power-Set", Emits: "Power"},
					{Name: "Echo"},
				},
			},
		}},
	}
}

func newTestService(t *testing.T, cfg *config.Config) *Service {
	t.Helper()
	svc, err := New(context.Background(), WithConfig(cfg), WithLogger(logging.Discard()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Stop(context.Background()) })
	return svc
}

func TestService_DeclaredNodes(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, testConfig())

	assert.Equal(t, []string{"Projector"}, svc.NodeNames())
	tk, err := svc.Node("Projector")
	require.NoError(t, err)
	assert.Equal(t, "Off", tk.LocalEvent("Power").Snapshot().Arg)

	var testCases = []struct {
		description string
		action      string
		arg         interface{}
		result      interface{}
		power       interface{}
	}{
		{description: "fixed value", action: "Power On", result: "On", power: "On"},
		{description: "argument value", action: "PowerSet", arg: "Off", result: "Off", power: "Off"},
		{description: "echo", action: "Echo", arg: map[string]interface{}{"a": 1.0}, result: map[string]interface{}{"a": 1.0}, power: "Off"},
	}
	for _, testCase := range testCases {
		result, err := svc.Call(ctx, "Projector", testCase.action, testCase.arg)
		require.NoError(t, err, testCase.description)
		assert.Equal(t, testCase.result, result, testCase.description)
		assert.Equal(t, testCase.power, tk.LocalEvent("Power").Snapshot().Arg, testCase.description)
	}

	_, err = svc.Call(ctx, "Projector", "Power Set", "Standby")
	assert.Error(t, err)

	_, err = svc.Call(ctx, "Projector", "Missing", nil)
	var notFound *registry.NotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "Projector-Missing", notFound.Endpoint)

	require.NoError(t, svc.Emit(ctx, "Projector", "Power", "On"))
	assert.Equal(t, "On", tk.LocalEvent("Power").Snapshot().Arg)
	assert.True(t, errors.Is(svc.Emit(ctx, "Amplifier", "Power", "On"), registry.ErrNotFound))
}

func TestService_InvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Nodes.Items[0].Actions = append(cfg.Nodes.Items[0].Actions, &config.Action{Name: "Echo"})
	_, err := New(context.Background(), WithConfig(cfg), WithLogger(logging.Discard()))
	assert.Error(t, err)

	cfg = testConfig()
	cfg.Nodes.Items[0].Events[0].Initial = "Standby"
	reg := registry.New()
	_, err = New(context.Background(), WithConfig(cfg), WithRegistry(reg), WithLogger(logging.Discard()))
	assert.Error(t, err)
	assert.Zero(t, reg.Len())
}

func TestService_Nodes(t *testing.T) {
	svc := newTestService(t, &config.Config{})

	tk, err := svc.AddNode("Projector Room")
	require.NoError(t, err)
	_, err = tk.CreateAction("Power On", nil, binding.Binding{})
	require.NoError(t, err)

	_, err = svc.AddNode("Projector-Room")
	assert.True(t, errors.Is(err, ErrNodeExists))
	_, err = svc.AddNode(" - ")
	assert.True(t, errors.Is(err, ErrEmptyNodeName))

	found, err := svc.Node("ProjectorRoom")
	require.NoError(t, err)
	assert.Same(t, tk, found)
	assert.True(t, svc.Registry().IsHosted("Projector Room"))

	require.NoError(t, svc.RemoveNode("ProjectorRoom"))
	assert.True(t, tk.Closed())
	assert.False(t, svc.Registry().IsHosted("Projector Room"))
	assert.Empty(t, svc.NodeNames())

	assert.True(t, errors.Is(svc.RemoveNode("ProjectorRoom"), ErrNodeNotFound))
	_, err = svc.Node("ProjectorRoom")
	assert.True(t, errors.Is(err, ErrNodeNotFound))
}

func TestService_ConcurrentAddNode(t *testing.T) {
	svc := newTestService(t, &config.Config{})
	var added int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.AddNode("Amplifier"); err == nil {
				atomic.AddInt32(&added, 1)
			}
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 1, added)
}

func TestService_Lifecycle(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, testConfig())

	require.NoError(t, svc.Start(ctx))
	require.NoError(t, svc.Start(ctx))
	assert.True(t, svc.Running())
	require.NotEmpty(t, svc.Addr())
	assert.Empty(t, svc.MCPAddr())

	resp, err := http.Get("http://" + svc.Addr() + "/REST/nodes")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `["Projector"]`, string(body))

	resp, err = http.Post("http://"+svc.Addr()+"/nodes/Projector/REST/actions/PowerOn/call", "application/json", nil)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	tk, err := svc.Node("Projector")
	require.NoError(t, err)

	require.NoError(t, svc.Stop(ctx))
	require.NoError(t, svc.Stop(ctx))
	assert.False(t, svc.Running())
	assert.True(t, tk.Closed())
	assert.Zero(t, svc.Registry().Len())

	_, err = svc.AddNode("Late")
	assert.True(t, errors.Is(err, toolkit.ErrClosed))
	require.NoError(t, svc.Start(ctx))
	assert.False(t, svc.Running())
}

func TestService_AddrWhileStarting(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, testConfig())

	done := make(chan struct{})
	seen := make(chan string, 1)
	go func() {
		defer close(seen)
		for {
			if addr := svc.Addr(); addr != "" {
				seen <- addr
				return
			}
			select {
			case <-done:
				return
			default:
			}
		}
	}()
	require.NoError(t, svc.Start(ctx))
	addr := svc.Addr()
	close(done)
	require.NotEmpty(t, addr)
	if polled, ok := <-seen; ok {
		assert.Equal(t, addr, polled)
	}
	assert.Empty(t, svc.MCPAddr())
}

func TestService_StartStopRace(t *testing.T) {
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		svc := newTestService(t, testConfig())
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = svc.Start(ctx)
		}()
		go func() {
			defer wg.Done()
			_ = svc.Stop(ctx)
		}()
		wg.Wait()
		require.NoError(t, svc.Stop(ctx))
		assert.False(t, svc.Running())
		if addr := svc.Addr(); addr != "" {
			_, err := http.Get("http://" + addr + "/REST/nodes")
			assert.Error(t, err)
		}
	}
}

func TestService_StopWithoutStart(t *testing.T) {
	svc := newTestService(t, testConfig())
	require.NoError(t, svc.Stop(context.Background()))
	assert.Zero(t, svc.Registry().Len())
	assert.Empty(t, svc.Registry().Nodes())
}

func TestService_StartListenFailure(t *testing.T) {
	cfg := testConfig()
	cfg.HTTP.Addr = "256.0.0.1:bad"
	svc := newTestService(t, cfg)
	assert.Error(t, svc.Start(context.Background()))
	assert.False(t, svc.Running())
}

func TestService_Handler(t *testing.T) {
	svc := newTestService(t, testConfig())
	data, err := json.Marshal(svc.Registry().Nodes())
	require.NoError(t, err)
	assert.Equal(t, `["Projector"]`, string(data))
	assert.NotNil(t, svc.Handler())
	assert.NotNil(t, svc.Flow())
	assert.NotNil(t, svc.Config())
}
