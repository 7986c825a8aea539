package web

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"markestedt/dictbar/config"
	"markestedt/dictbar/hotkey"
	"markestedt/dictbar/storage"
)

type fakeBackend struct {
	mu        sync.Mutex
	combo     hotkey.Combo
	capturing bool
	open      bool
	dicts     []config.Dictionary
	selected  int
	keys      []hotkey.Combo
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{combo: hotkey.Default, dicts: config.Default().Dictionaries}
}

func (f *fakeBackend) Hotkey() (hotkey.Combo, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.combo, !f.capturing
}

func (f *fakeBackend) BeginCapture() error {
	f.mu.Lock()
	f.capturing = true
	f.mu.Unlock()
	return nil
}
func (f *fakeBackend) EndCapture() error { f.mu.Lock(); f.capturing = false; f.mu.Unlock(); return nil }

func (f *fakeBackend) Capturing() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.capturing
}

func (f *fakeBackend) PopoverOpen() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.open
}

func (f *fakeBackend) OpenPopover()   { f.mu.Lock(); f.open = true; f.mu.Unlock() }
func (f *fakeBackend) ClosePopover()  { f.mu.Lock(); f.open = false; f.mu.Unlock() }
func (f *fakeBackend) TogglePopover() { f.mu.Lock(); f.open = !f.open; f.mu.Unlock() }

func (f *fakeBackend) Dictionaries() []config.Dictionary { return f.dicts }

func (f *fakeBackend) SelectedDictionary() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.selected
}

func (f *fakeBackend) SelectDictionary(index int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.selected = index
	return nil
}

func (f *fakeBackend) HandleKeyDown(keyCode uint16, flags uint64) bool {
	c := hotkey.FromOSEvent(keyCode, flags)
	f.mu.Lock()
	f.keys = append(f.keys, c)
	f.mu.Unlock()
	return c.Key == hotkey.KeyEscape
}

func newTestServer(t *testing.T, backend Backend, db *storage.DB) (*Server, *httptest.Server) {
	t.Helper()
	s := NewServer(backend, db, 0)
	handler, err := s.Handler()
	if err != nil {
		t.Fatalf("Handler: %v", err)
	}
	ts := httptest.NewServer(handler)
	t.Cleanup(func() {
		s.Stop()
		ts.Close()
	})
	return s, ts
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestGetHotkey(t *testing.T) {
	_, ts := newTestServer(t, newFakeBackend(), nil)

	resp, err := http.Get(ts.URL + "/api/hotkey")
	if err != nil {
		t.Fatal(err)
	}
	var view HotkeyView
	decodeBody(t, resp, &view)

	want := hotkeyView(hotkey.Default)
	want.Registered = true
	if view != want {
		t.Errorf("GET /api/hotkey = %+v, want %+v", view, want)
	}
	if view.Description != "Option + Command + Space" {
		t.Errorf("description = %q", view.Description)
	}
}

func TestCaptureActions(t *testing.T) {
	backend := newFakeBackend()
	_, ts := newTestServer(t, backend, nil)

	post := func(body string) *http.Response {
		t.Helper()
		resp, err := http.Post(ts.URL+"/api/preferences/capture", "application/json", strings.NewReader(body))
		if err != nil {
			t.Fatal(err)
		}
		return resp
	}

	var got struct {
		Capturing bool `json:"capturing"`
	}
	decodeBody(t, post(`{"action":"begin"}`), &got)
	if !got.Capturing || !backend.Capturing() {
		t.Error("begin did not start capture")
	}
	decodeBody(t, post(`{"action":"end"}`), &got)
	if got.Capturing || backend.Capturing() {
		t.Error("end did not stop capture")
	}

	resp := post(`{"action":"restart"}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("unknown action status = %d", resp.StatusCode)
	}

	resp, err := http.Get(ts.URL + "/api/preferences/capture")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("GET capture status = %d", resp.StatusCode)
	}
}

func TestSelectDictionary(t *testing.T) {
	backend := newFakeBackend()
	_, ts := newTestServer(t, backend, nil)

	put := func(body string) int {
		t.Helper()
		req, _ := http.NewRequest(http.MethodPut, ts.URL+"/api/dictionaries/selected", strings.NewReader(body))
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		return resp.StatusCode
	}

	if code := put(`{"index":2}`); code != http.StatusOK {
		t.Fatalf("select status = %d", code)
	}
	if backend.SelectedDictionary() != 2 {
		t.Errorf("selected = %d, want 2", backend.SelectedDictionary())
	}
	for _, body := range []string{`{"index":4}`, `{"index":-1}`, `{}`, `nope`} {
		if code := put(body); code != http.StatusBadRequest {
			t.Errorf("PUT %s status = %d, want 400", body, code)
		}
	}
	if backend.SelectedDictionary() != 2 {
		t.Error("invalid request changed the selection")
	}

	resp, err := http.Get(ts.URL + "/api/dictionaries")
	if err != nil {
		t.Fatal(err)
	}
	var list struct {
		Dictionaries []config.Dictionary `json:"dictionaries"`
		Selected     int                 `json:"selected"`
	}
	decodeBody(t, resp, &list)
	if len(list.Dictionaries) != 4 || list.Selected != 2 {
		t.Errorf("GET /api/dictionaries = %+v", list)
	}
}

func TestPopoverAction(t *testing.T) {
	backend := newFakeBackend()
	_, ts := newTestServer(t, backend, nil)

	resp, err := http.Post(ts.URL+"/api/popover", "application/json", strings.NewReader(`{"action":"toggle"}`))
	if err != nil {
		t.Fatal(err)
	}
	var got PopoverMessage
	decodeBody(t, resp, &got)
	if !got.Open || !backend.PopoverOpen() {
		t.Error("toggle did not open the popover")
	}
}

func TestActivityEndpoints(t *testing.T) {
	db, err := storage.Open(t.TempDir())
	if err != nil {
		t.Fatalf("storage.Open: %v", err)
	}
	defer db.Close()
	for _, a := range []storage.Activity{
		{Topic: "summon", Channel: "global"},
		{Topic: "dismiss", Channel: "mouse"},
	} {
		if err := db.SaveActivity(&a); err != nil {
			t.Fatal(err)
		}
	}

	_, ts := newTestServer(t, newFakeBackend(), db)

	resp, err := http.Get(ts.URL + "/api/activity?limit=1")
	if err != nil {
		t.Fatal(err)
	}
	var page struct {
		Activity []storage.Activity `json:"activity"`
		Total    int                `json:"total"`
		Limit    int                `json:"limit"`
	}
	decodeBody(t, resp, &page)
	if page.Total != 2 || page.Limit != 1 || len(page.Activity) != 1 || page.Activity[0].Topic != "dismiss" {
		t.Errorf("GET /api/activity = %+v", page)
	}

	resp, err = http.Get(ts.URL + "/api/stats?days=bogus")
	if err != nil {
		t.Fatal(err)
	}
	var stats struct {
		Days   int                  `json:"days"`
		Topics []storage.TopicCount `json:"topics"`
	}
	decodeBody(t, resp, &stats)
	if stats.Days != 7 || len(stats.Topics) != 2 {
		t.Errorf("GET /api/stats = %+v", stats)
	}
}

func TestActivityWithoutDB(t *testing.T) {
	_, ts := newTestServer(t, newFakeBackend(), nil)
	resp, err := http.Get(ts.URL + "/api/activity")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestStaticPage(t *testing.T) {
	_, ts := newTestServer(t, newFakeBackend(), nil)
	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var buf bytes.Buffer
	buf.ReadFrom(resp.Body)
	if resp.StatusCode != http.StatusOK || !strings.Contains(buf.String(), "modifierFlags") {
		t.Errorf("index page status %d, missing key relay", resp.StatusCode)
	}
}

func dialWS(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

type rawMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func readMessage(t *testing.T, conn *websocket.Conn) rawMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg rawMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read message: %v", err)
	}
	return msg
}

func TestWebSocketKeyDown(t *testing.T) {
	backend := newFakeBackend()
	_, ts := newTestServer(t, backend, nil)
	conn := dialWS(t, ts)

	if msg := readMessage(t, conn); msg.Type != MessageTypeState {
		t.Fatalf("first message = %q, want state", msg.Type)
	}

	send := func(code string, flags uint64) bool {
		t.Helper()
		if err := conn.WriteJSON(ClientMessage{Type: ClientMessageKeyDown, Code: code, ModifierFlags: flags}); err != nil {
			t.Fatal(err)
		}
		msg := readMessage(t, conn)
		if msg.Type != MessageTypeKey {
			t.Fatalf("reply type = %q, want key", msg.Type)
		}
		var key KeyMessage
		if err := json.Unmarshal(msg.Data, &key); err != nil {
			t.Fatal(err)
		}
		return key.Swallow
	}

	if !send("Escape", 0) {
		t.Error("Escape not swallowed")
	}
	if send("KeyD", 1<<17|1<<20) {
		t.Error("Shift+Command+D swallowed")
	}
	if send("Hyper", 0) {
		t.Error("unmapped key swallowed")
	}

	backend.mu.Lock()
	defer backend.mu.Unlock()
	want := []hotkey.Combo{hotkey.New(hotkey.KeyEscape, hotkey.NoModifiers), hotkey.New(hotkey.KeyD, hotkey.Shift|hotkey.Command)}
	if len(backend.keys) != 2 || backend.keys[0] != want[0] || backend.keys[1] != want[1] {
		t.Errorf("backend saw %v, want %v", backend.keys, want)
	}
}

func TestWebSocketInvalidFrame(t *testing.T) {
	_, ts := newTestServer(t, newFakeBackend(), nil)
	conn := dialWS(t, ts)
	readMessage(t, conn)

	if err := conn.WriteMessage(websocket.TextMessage, []byte("{")); err != nil {
		t.Fatal(err)
	}
	if msg := readMessage(t, conn); msg.Type != MessageTypeError {
		t.Errorf("reply type = %q, want error", msg.Type)
	}
}

func TestBroadcastReachesClients(t *testing.T) {
	s, ts := newTestServer(t, newFakeBackend(), nil)
	a := dialWS(t, ts)
	b := dialWS(t, ts)
	readMessage(t, a)
	readMessage(t, b)

	if n := s.ClientCount(); n != 2 {
		t.Errorf("ClientCount() = %d, want 2", n)
	}

	s.BroadcastNotification(hotkey.Notification{
		Topic:   hotkey.TopicSummon,
		Channel: hotkey.ChannelGlobal,
		Combo:   hotkey.Default,
	})
	s.BroadcastPopover(true)

	for _, conn := range []*websocket.Conn{a, b} {
		msg := readMessage(t, conn)
		if msg.Type != MessageTypeNotification {
			t.Fatalf("message type = %q, want notification", msg.Type)
		}
		var n NotificationMessage
		if err := json.Unmarshal(msg.Data, &n); err != nil {
			t.Fatal(err)
		}
		if n.Topic != "summon" || n.Channel != "global" || n.Hotkey.Description != "Option + Command + Space" {
			t.Errorf("notification = %+v", n)
		}

		msg = readMessage(t, conn)
		var p PopoverMessage
		json.Unmarshal(msg.Data, &p)
		if msg.Type != MessageTypePopover || !p.Open {
			t.Errorf("second message = %s %s, want popover open", msg.Type, msg.Data)
		}
	}
}
