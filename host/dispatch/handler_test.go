package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/museumsvictoria/nodel-sub003/host/binding"
	"github.com/museumsvictoria/nodel-sub003/host/registry"
	"github.com/museumsvictoria/nodel-sub003/host/toolkit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFixture(t *testing.T) (*Handler, *toolkit.Toolkit) {
	t.Helper()
	reg := registry.New()
	tk := toolkit.New(reg, "Projector", toolkit.WithValidation(true))
	_, err := tk.CreateAction("Power On", func(_ context.Context, arg interface{}) (interface{}, error) {
		return map[string]interface{}{"power": "on", "arg": arg}, nil
	}, binding.Binding{Title: "Power On", Group: "Power"})
	require.NoError(t, err)
	_, err = tk.CreateAction("Set Level", func(_ context.Context, arg interface{}) (interface{}, error) {
		return arg, nil
	}, binding.Binding{Schema: map[string]interface{}{"type": "integer"}})
	require.NoError(t, err)
	_, err = tk.CreateAction("Fail", func(_ context.Context, _ interface{}) (interface{}, error) {
		return nil, errors.New("lamp failure")
	}, binding.Binding{})
	require.NoError(t, err)
	_, err = tk.CreateEvent("Power-State", binding.Binding{})
	require.NoError(t, err)
	return New(reg), tk
}

func serve(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandler_Routes(t *testing.T) {
	var testCases = []struct {
		description string
		method      string
		target      string
		body        string
		status      int
		contains    string
	}{
		{description: "list nodes", method: http.MethodGet, target: "/REST/nodes", status: http.StatusOK, contains: `["Projector"]`},
		{description: "list actions", method: http.MethodGet, target: "/nodes/Projector/REST/actions", status: http.StatusOK, contains: `"reduced":"PowerOn"`},
		{description: "describe action by reduced name", method: http.MethodGet, target: "/nodes/Projector/REST/actions/PowerOn", status: http.StatusOK, contains: `"name":"Power On"`},
		{description: "action schema", method: http.MethodGet, target: "/nodes/Projector/REST/actions/SetLevel/schema", status: http.StatusOK, contains: `"arg":{"type":"integer"}`},
		{description: "call with body", method: http.MethodPost, target: "/nodes/Projector/REST/actions/Set-Level/call", body: `{"arg":7}`, status: http.StatusOK, contains: `7`},
		{description: "call with query", method: http.MethodGet, target: "/nodes/Projector/REST/actions/PowerOn/call?arg=front", status: http.StatusOK, contains: `"arg":"front"`},
		{description: "invalid argument", method: http.MethodPost, target: "/nodes/Projector/REST/actions/SetLevel/call", body: `{"arg":"loud"}`, status: http.StatusBadRequest, contains: `"code":"400"`},
		{description: "malformed body", method: http.MethodPost, target: "/nodes/Projector/REST/actions/SetLevel/call", body: `{`, status: http.StatusBadRequest, contains: `"code":"400"`},
		{description: "target failure", method: http.MethodPost, target: "/nodes/Projector/REST/actions/Fail/call", status: http.StatusInternalServerError, contains: `lamp failure`},
		{description: "unknown action", method: http.MethodGet, target: "/nodes/Projector/REST/actions/Missing", status: http.StatusNotFound, contains: `"error":"'Missing' not found.","code":"404"`},
		{description: "unknown action keeps requested segment", method: http.MethodGet, target: "/nodes/Projector/REST/actions/Power%20Cycle", status: http.StatusNotFound, contains: `"error":"'Power Cycle' not found."`},
		{description: "unknown event keeps requested segment", method: http.MethodGet, target: "/nodes/Projector/REST/events/Lamp%20Hours", status: http.StatusNotFound, contains: `"error":"'Lamp Hours' not found."`},
		{description: "unknown node", method: http.MethodGet, target: "/nodes/Amplifier/REST/actions", status: http.StatusNotFound, contains: `'Amplifier' not found.`},
		{description: "event is not an action", method: http.MethodGet, target: "/nodes/Projector/REST/actions/PowerState", status: http.StatusNotFound, contains: `"code":"404"`},
		{description: "emit event", method: http.MethodPost, target: "/nodes/Projector/REST/events/PowerState/emit", body: `{"arg":"on"}`, status: http.StatusOK, contains: `"seq":1`},
		{description: "list events", method: http.MethodGet, target: "/nodes/Projector/REST/events", status: http.StatusOK, contains: `"endpoint":"Projector-PowerState"`},
		{description: "event schema", method: http.MethodGet, target: "/nodes/Projector/REST/events/Power State/schema", status: http.StatusOK, contains: `"arg":{"type":"null"}`},
	}

	for _, testCase := range testCases {
		h, _ := newFixture(t)
		rec := serve(h, testCase.method, strings.ReplaceAll(testCase.target, " ", "%20"), testCase.body)
		assert.Equal(t, testCase.status, rec.Code, testCase.description)
		assert.Contains(t, rec.Body.String(), testCase.contains, testCase.description)
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"), testCase.description)
	}
}

func TestHandler_ClosedMemberIsNotFound(t *testing.T) {
	h, tk := newFixture(t)
	require.NoError(t, tk.LocalAction("PowerOn").Close())

	rec := serve(h, http.MethodPost, "/nodes/Projector/REST/actions/PowerOn/call", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	tk.DisposeAll()
	rec = serve(h, http.MethodGet, "/nodes/Projector/REST/actions", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_EmitRecordsSnapshot(t *testing.T) {
	h, tk := newFixture(t)
	rec := serve(h, http.MethodPost, "/nodes/Projector/REST/events/PowerState/emit", `{"arg":{"lamp":"warm"}}`)
	require.Equal(t, http.StatusOK, rec.Code)

	snapshot := tk.LocalEvent("Power State").Snapshot()
	assert.Equal(t, map[string]interface{}{"lamp": "warm"}, snapshot.Arg)

	rec = serve(h, http.MethodGet, "/nodes/Projector/REST/events/PowerState", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var member Member
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &member))
	require.NotNil(t, member.Snapshot)
	assert.EqualValues(t, 1, member.Snapshot.Seq)
}

func TestHandler_NodeResolver(t *testing.T) {
	reg := registry.New()
	tk := toolkit.New(reg, "Projector Room")
	_, err := tk.CreateAction("Power On", func(_ context.Context, _ interface{}) (interface{}, error) {
		return true, nil
	}, binding.Binding{})
	require.NoError(t, err)

	h := New(reg, WithNodeResolver(func(segment string) (string, bool) {
		if segment == "ProjectorRoom" {
			return "Projector Room", true
		}
		return "", false
	}))
	rec := serve(h, http.MethodPost, "/nodes/ProjectorRoom/REST/actions/PowerOn/call", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "true", rec.Body.String())
}

func TestHandler_Preflight(t *testing.T) {
	h, _ := newFixture(t)
	rec := serve(h, http.MethodOptions, "/nodes/Projector/REST/actions/PowerOn/call", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
}
