package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-jobform/pkg/fmeflow"
	"github.com/goliatone/go-jobform/pkg/formstate"
	"github.com/goliatone/go-jobform/pkg/httpapi"
	"github.com/goliatone/go-jobform/pkg/model"
	"github.com/goliatone/go-jobform/pkg/renderers/html"
	"github.com/goliatone/go-jobform/pkg/session"
	"github.com/goliatone/go-jobform/pkg/workspace"
)

const bufferFixture = `
item:
  title: Buffer features
parameters:
  - name: DISTANCE
    description: Buffer distance
    type: INTEGER
    minimum: 1
  - name: AOI
    type: GEOMETRY
    optional: true
`

type fakeSubmitter struct {
	payloads []formstate.Payload
	err      error
}

func (f *fakeSubmitter) Submit(_ context.Context, payload formstate.Payload) (fmeflow.Result, error) {
	f.payloads = append(f.payloads, payload)
	if f.err != nil {
		return fmeflow.Result{}, f.err
	}
	return fmeflow.Result{JobID: 42, Status: "SUBMITTED"}, nil
}

type formBody struct {
	View struct {
		Workspace string `json:"workspace"`
		Valid     bool   `json:"valid"`
		Errors    []string
		Geometry  string `json:"geometry"`
		Fields    []struct {
			Control string `json:"control"`
			Error   string `json:"error"`
			Field   struct {
				Name string `json:"name"`
			} `json:"field"`
		} `json:"fields"`
	} `json:"view"`
	Status session.Status `json:"status"`
}

func newServer(t *testing.T, opts ...httpapi.ServerOption) *httptest.Server {
	t.Helper()

	fsys := fstest.MapFS{"samples/buffer.yaml": {Data: []byte(bufferFixture)}}
	sess := session.New(workspace.NewFSClient(fsys), "samples")
	t.Cleanup(sess.Close)

	srv := httptest.NewServer(httpapi.NewServer(sess, opts...).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func call(t *testing.T, srv *httptest.Server, method, path string, body any) (*http.Response, []byte) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, srv.URL+path, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, buf.Bytes()
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("decode %s: %v", data, err)
	}
	return out
}

func TestListWorkspaces(t *testing.T) {
	t.Parallel()
	srv := newServer(t)

	resp, data := call(t, srv, http.MethodGet, "/workspaces", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.StatusCode, data)
	}
	body := decode[struct {
		Repository string `json:"repository"`
		Workspaces []struct {
			Name  string `json:"name"`
			Title string `json:"title"`
		} `json:"workspaces"`
	}](t, data)
	if body.Repository != "samples" || len(body.Workspaces) != 1 || body.Workspaces[0].Name != "buffer" {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestFormLifecycle(t *testing.T) {
	t.Parallel()
	submitter := &fakeSubmitter{}
	srv := newServer(t, httpapi.WithSubmitter(submitter))

	resp, data := call(t, srv, http.MethodPost, "/workspaces/buffer", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("select: %d %s", resp.StatusCode, data)
	}
	form := decode[formBody](t, data)
	if form.View.Workspace != "buffer" || form.View.Valid || form.Status.Kind != session.KindValidation {
		t.Fatalf("unexpected form %+v", form)
	}

	resp, data = call(t, srv, http.MethodPost, "/form/submit", nil)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected blocked submit, got %d %s", resp.StatusCode, data)
	}
	if len(submitter.payloads) != 0 {
		t.Fatalf("invalid form must not reach the submitter")
	}

	resp, data = call(t, srv, http.MethodPatch, "/form/fields/DISTANCE", map[string]any{"value": 0})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("patch: %d %s", resp.StatusCode, data)
	}
	form = decode[formBody](t, data)
	if diff := cmp.Diff([]string{"DISTANCE"}, form.View.Errors); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
	if form.View.Fields[0].Error != "belowMin" {
		t.Fatalf("expected belowMin, got %q", form.View.Fields[0].Error)
	}

	call(t, srv, http.MethodPatch, "/form/fields/DISTANCE", map[string]any{"value": 3})
	resp, data = call(t, srv, http.MethodPut, "/form/geometry", map[string]any{"geometry": `{"type":"Point"}`})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("geometry: %d %s", resp.StatusCode, data)
	}
	form = decode[formBody](t, data)
	if !form.View.Valid || form.Status.Kind != session.KindReady {
		t.Fatalf("expected valid form, got %+v", form)
	}

	resp, data = call(t, srv, http.MethodPost, "/form/submit", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("submit: %d %s", resp.StatusCode, data)
	}
	result := decode[struct {
		Workspace string         `json:"workspace"`
		Result    fmeflow.Result `json:"result"`
	}](t, data)
	if result.Workspace != "buffer" || result.Result.JobID != 42 {
		t.Fatalf("unexpected submit response %s", data)
	}
	if len(submitter.payloads) != 1 {
		t.Fatalf("expected one submission, got %d", len(submitter.payloads))
	}
	got := submitter.payloads[0].Data
	if got["DISTANCE"] != float64(3) || got["AOI"] != `{"type":"Point"}` {
		t.Fatalf("unexpected payload %#v", got)
	}
}

func TestSubmitWithoutSubmitterEchoesPayload(t *testing.T) {
	t.Parallel()
	srv := newServer(t)

	call(t, srv, http.MethodPost, "/workspaces/buffer", nil)
	call(t, srv, http.MethodPatch, "/form/fields/DISTANCE", map[string]any{"value": 7})

	resp, data := call(t, srv, http.MethodPost, "/form/submit", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("submit: %d %s", resp.StatusCode, data)
	}
	body := decode[struct {
		Payload map[string]any `json:"payload"`
	}](t, data)
	if body.Payload["DISTANCE"] != float64(7) {
		t.Fatalf("unexpected payload %#v", body.Payload)
	}
}

func TestSubmitterFailureMapsToBadGateway(t *testing.T) {
	t.Parallel()
	submitter := &fakeSubmitter{err: &fmeflow.Error{Code: fmeflow.CodeForbidden, Status: http.StatusForbidden, Op: "submit job"}}
	srv := newServer(t, httpapi.WithSubmitter(submitter))

	call(t, srv, http.MethodPost, "/workspaces/buffer", nil)
	call(t, srv, http.MethodPatch, "/form/fields/DISTANCE", map[string]any{"value": 2})

	resp, data := call(t, srv, http.MethodPost, "/form/submit", nil)
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d %s", resp.StatusCode, data)
	}
	body := decode[map[string]string](t, data)
	if body["code"] != fmeflow.CodeForbidden {
		t.Fatalf("unexpected error body %v", body)
	}
}

func TestErrorMapping(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		setup  bool
		method string
		path   string
		body   any
		status int
		code   string
	}{
		{name: "not initialized", method: http.MethodPatch, path: "/form/fields/DISTANCE", body: map[string]any{"value": 1}, status: http.StatusConflict, code: "NOT_INITIALIZED"},
		{name: "unknown field", setup: true, method: http.MethodPatch, path: "/form/fields/NOPE", body: map[string]any{"value": 1}, status: http.StatusNotFound, code: "UNKNOWN_FIELD"},
		{name: "missing workspace", method: http.MethodPost, path: "/workspaces/ghost", status: http.StatusNotFound, code: workspace.CodeNotFound},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			srv := newServer(t)
			if tc.setup {
				call(t, srv, http.MethodPost, "/workspaces/buffer", nil)
			}
			resp, data := call(t, srv, tc.method, tc.path, tc.body)
			if resp.StatusCode != tc.status {
				t.Fatalf("expected %d, got %d %s", tc.status, resp.StatusCode, data)
			}
			body := decode[map[string]any](t, data)
			if body["code"] != tc.code {
				t.Fatalf("expected code %q, got %v", tc.code, body["code"])
			}
		})
	}
}

func TestInvalidBody(t *testing.T) {
	t.Parallel()
	srv := newServer(t)

	req, err := http.NewRequest(http.MethodPut, srv.URL+"/form/geometry", bytes.NewBufferString("{"))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestFileUploadFieldUpdate(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{"samples/load.yaml": {Data: []byte(`
parameters:
  - name: SOURCE
    type: FILENAME
`)}}
	sess := session.New(workspace.NewFSClient(fsys), "samples")
	t.Cleanup(sess.Close)
	srv := httptest.NewServer(httpapi.NewServer(sess).Handler())
	t.Cleanup(srv.Close)

	call(t, srv, http.MethodPost, "/workspaces/load", nil)
	resp, data := call(t, srv, http.MethodPatch, "/form/fields/SOURCE", map[string]any{
		"file": map[string]any{"name": "roads.zip", "data": []byte("PK")},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("patch: %d %s", resp.StatusCode, data)
	}

	payload, err := sess.Payload()
	if err != nil {
		t.Fatalf("Payload: %v", err)
	}
	file, ok := payload.Data["SOURCE"].(model.File)
	if !ok || string(file.Data) != "PK" {
		t.Fatalf("expected uploaded file in payload, got %#v", payload.Data["SOURCE"])
	}

	resp, data = call(t, srv, http.MethodPost, "/form/submit", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("submit: %d %s", resp.StatusCode, data)
	}
	body := decode[struct {
		Payload map[string]map[string]any `json:"payload"`
	}](t, data)
	if body.Payload["SOURCE"]["name"] != "roads.zip" || body.Payload["SOURCE"]["size"] != float64(2) {
		t.Fatalf("unexpected payload %s", data)
	}
}

func TestRenderedFormView(t *testing.T) {
	t.Parallel()

	renderer, err := html.New()
	if err != nil {
		t.Fatalf("html.New: %v", err)
	}
	srv := newServer(t, httpapi.WithViewRenderer(renderer))

	call(t, srv, http.MethodPost, "/workspaces/buffer", nil)
	resp, data := call(t, srv, http.MethodGet, "/form/view", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("view: %d %s", resp.StatusCode, data)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("unexpected content type %q", ct)
	}
	page := string(data)
	if !strings.Contains(page, `name="DISTANCE"`) || !strings.Contains(page, `data-code="required"`) {
		t.Fatalf("unexpected page:\n%s", page)
	}
}

func TestRenderedFormViewNeedsRenderer(t *testing.T) {
	t.Parallel()
	srv := newServer(t)

	resp, _ := call(t, srv, http.MethodGet, "/form/view", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 without a renderer, got %d", resp.StatusCode)
	}
}

func TestMissingRepositoryIsUnprocessable(t *testing.T) {
	t.Parallel()

	sess := session.New(workspace.NewFSClient(fstest.MapFS{}), " ")
	t.Cleanup(sess.Close)
	srv := httptest.NewServer(httpapi.NewServer(sess).Handler())
	t.Cleanup(srv.Close)

	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/workspaces"},
		{http.MethodPost, "/workspaces/buffer"},
	} {
		resp, data := call(t, srv, route.method, route.path, nil)
		if resp.StatusCode != http.StatusUnprocessableEntity {
			t.Fatalf("%s %s: expected 422, got %d %s", route.method, route.path, resp.StatusCode, data)
		}
		body := decode[map[string]string](t, data)
		if body["code"] != workspace.CodeConfiguration {
			t.Fatalf("%s %s: unexpected code %q", route.method, route.path, body["code"])
		}
	}
}
