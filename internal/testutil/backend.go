// Package testutil provides an in-memory AgentBay backend for package tests.
// It speaks the same action envelope as the real service and keeps its own
// authoritative session/context state, so tests can verify registry
// reconciliation against it.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/agentbay/agentbay-go/pkg/agentbay/filesystem"
	"github.com/agentbay/agentbay-go/pkg/agentbay/label"
)

// Backend is a fake AgentBay service backed by httptest.
type Backend struct {
	mu         sync.Mutex
	sessions   map[string]*fakeSession
	contexts   map[string]*fakeContext
	callCounts map[string]int
	failNext   map[string]string
	server     *httptest.Server
}

type fakeSession struct {
	ID                    string
	ResourceURL           string
	Labels                map[string]string
	FileTransferContextID string
	Files                 map[string]string
	PendingChanges        []filesystem.ChangeEvent
}

type fakeContext struct {
	ID   string
	Name string
}

// NewBackend starts a fake backend. Callers must Close it.
func NewBackend() *Backend {
	b := &Backend{
		sessions:   make(map[string]*fakeSession),
		contexts:   make(map[string]*fakeContext),
		callCounts: make(map[string]int),
		failNext:   make(map[string]string),
	}

	router := mux.NewRouter()
	router.HandleFunc("/api/v1/{action}", b.handle).Methods("POST")
	b.server = httptest.NewServer(router)
	return b
}

// URL returns the backend's base URL.
func (b *Backend) URL() string {
	return b.server.URL
}

// Close shuts the backend down.
func (b *Backend) Close() {
	b.server.Close()
}

// CallCount reports how many times an action was invoked.
func (b *Backend) CallCount(action string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.callCounts[action]
}

// FailNext makes the next call to action fail logically with the given
// message.
func (b *Backend) FailNext(action, message string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failNext[action] = message
}

// SessionCount reports how many sessions the backend currently holds.
func (b *Backend) SessionCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.sessions)
}

// HasSession reports whether the backend holds the given session id.
func (b *Backend) HasSession(sessionID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.sessions[sessionID]
	return ok
}

// SeedSession inserts a session directly, bypassing CreateSession. Used to
// model sessions created by other client handles.
func (b *Backend) SeedSession(sessionID string, labels map[string]string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sessions[sessionID] = &fakeSession{
		ID:                    sessionID,
		ResourceURL:           "wss://gateway.fake/" + sessionID,
		Labels:                labels,
		FileTransferContextID: "ftc-" + sessionID,
		Files:                 make(map[string]string),
	}
}

// QueueChanges stages change events that the next GetFileChange poll for the
// session will return.
func (b *Backend) QueueChanges(sessionID string, events []filesystem.ChangeEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if s, ok := b.sessions[sessionID]; ok {
		s.PendingChanges = append(s.PendingChanges, events...)
	}
}

type request map[string]any

func (r request) str(key string) string {
	v, _ := r[key].(string)
	return v
}

func (r request) boolean(key string) bool {
	v, _ := r[key].(bool)
	return v
}

func (r request) num(key string) int {
	v, _ := r[key].(float64)
	return int(v)
}

func (b *Backend) handle(w http.ResponseWriter, r *http.Request) {
	action := mux.Vars(r)["action"]

	var req request
	_ = json.NewDecoder(r.Body).Decode(&req)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.callCounts[action]++

	if msg, ok := b.failNext[action]; ok {
		delete(b.failNext, action)
		writeEnvelope(w, false, msg, nil)
		return
	}

	switch action {
	case "CreateSession":
		b.createSession(w, req)
	case "GetSession":
		b.getSession(w, req)
	case "ListSessions":
		b.listSessions(w, req)
	case "ReleaseSession":
		b.releaseSession(w, req)
	case "SetLabels":
		b.setLabels(w, req)
	case "GetLabels":
		b.getLabels(w, req)
	case "GetSessionInfo":
		b.getSessionInfo(w, req)
	case "ExecuteCommand", "RunCode":
		b.execute(w, req)
	case "ReadFile":
		b.readFile(w, req)
	case "WriteFile":
		b.writeFile(w, req)
	case "ListDirectory":
		b.listDirectory(w, req)
	case "GetFileChange":
		b.getFileChange(w, req)
	case "ListContexts":
		b.listContexts(w)
	case "GetContext":
		b.getContext(w, req)
	case "UpdateContext":
		b.updateContext(w, req)
	case "DeleteContext":
		b.deleteContext(w, req)
	case "SyncContext":
		b.syncContext(w, req)
	default:
		writeEnvelope(w, false, "unknown action: "+action, nil)
	}
}

func (b *Backend) createSession(w http.ResponseWriter, req request) {
	id := "session-" + uuid.NewString()[:8]
	s := &fakeSession{
		ID:          id,
		ResourceURL: "wss://gateway.fake/" + id,
		Labels:      label.Decode(req.str("labels")),
		Files:       make(map[string]string),
	}
	b.sessions[id] = s
	writeEnvelope(w, true, "", map[string]any{
		"sessionId":   s.ID,
		"resourceUrl": s.ResourceURL,
	})
}

func (b *Backend) getSession(w http.ResponseWriter, req request) {
	s, ok := b.sessions[req.str("sessionId")]
	if !ok {
		writeEnvelope(w, false, "session not found", nil)
		return
	}
	encoded, _ := label.Encode(s.Labels)
	writeEnvelope(w, true, "", map[string]any{
		"sessionId":             s.ID,
		"resourceUrl":           s.ResourceURL,
		"labels":                encoded,
		"fileTransferContextId": s.FileTransferContextID,
	})
}

func (b *Backend) listSessions(w http.ResponseWriter, req request) {
	filter := label.Decode(req.str("labels"))

	var ids []string
	for id, s := range b.sessions {
		if matchesLabels(s.Labels, filter) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	maxResults := req.num("maxResults")
	if maxResults <= 0 {
		maxResults = 10
	}
	offset := 0
	if token := req.str("nextToken"); token != "" {
		offset, _ = strconv.Atoi(token)
	}

	end := offset + maxResults
	if end > len(ids) {
		end = len(ids)
	}
	var page []map[string]any
	for _, id := range ids[offset:end] {
		encoded, _ := label.Encode(b.sessions[id].Labels)
		page = append(page, map[string]any{"sessionId": id, "labels": encoded})
	}

	data := map[string]any{
		"sessions":   page,
		"maxResults": maxResults,
		"totalCount": len(ids),
	}
	if end < len(ids) {
		data["nextToken"] = strconv.Itoa(end)
	}
	writeEnvelope(w, true, "", data)
}

func (b *Backend) releaseSession(w http.ResponseWriter, req request) {
	id := req.str("sessionId")
	if _, ok := b.sessions[id]; !ok {
		writeEnvelope(w, false, "session not found", nil)
		return
	}
	delete(b.sessions, id)
	writeEnvelope(w, true, "", nil)
}

func (b *Backend) setLabels(w http.ResponseWriter, req request) {
	s, ok := b.sessions[req.str("sessionId")]
	if !ok {
		writeEnvelope(w, false, "session not found", nil)
		return
	}
	s.Labels = label.Decode(req.str("labels"))
	writeEnvelope(w, true, "", nil)
}

func (b *Backend) getLabels(w http.ResponseWriter, req request) {
	s, ok := b.sessions[req.str("sessionId")]
	if !ok {
		writeEnvelope(w, false, "session not found", nil)
		return
	}
	encoded, _ := label.Encode(s.Labels)
	writeEnvelope(w, true, "", map[string]any{"labels": encoded})
}

func (b *Backend) getSessionInfo(w http.ResponseWriter, req request) {
	s, ok := b.sessions[req.str("sessionId")]
	if !ok {
		writeEnvelope(w, false, "session not found", nil)
		return
	}
	writeEnvelope(w, true, "", map[string]any{
		"sessionId":   s.ID,
		"resourceUrl": s.ResourceURL,
	})
}

func (b *Backend) execute(w http.ResponseWriter, req request) {
	if _, ok := b.sessions[req.str("sessionId")]; !ok {
		writeEnvelope(w, false, "session not found", nil)
		return
	}
	output := req.str("command")
	if output == "" {
		output = fmt.Sprintf("ran %s code", req.str("language"))
	}
	writeEnvelope(w, true, "", map[string]any{"output": output})
}

func (b *Backend) readFile(w http.ResponseWriter, req request) {
	s, ok := b.sessions[req.str("sessionId")]
	if !ok {
		writeEnvelope(w, false, "session not found", nil)
		return
	}
	content, ok := s.Files[req.str("path")]
	if !ok {
		writeEnvelope(w, false, "file not found", nil)
		return
	}
	writeEnvelope(w, true, "", map[string]any{"content": content})
}

func (b *Backend) writeFile(w http.ResponseWriter, req request) {
	s, ok := b.sessions[req.str("sessionId")]
	if !ok {
		writeEnvelope(w, false, "session not found", nil)
		return
	}
	path := req.str("path")
	if req.str("mode") == "append" {
		s.Files[path] += req.str("content")
	} else {
		s.Files[path] = req.str("content")
	}
	writeEnvelope(w, true, "", nil)
}

func (b *Backend) listDirectory(w http.ResponseWriter, req request) {
	s, ok := b.sessions[req.str("sessionId")]
	if !ok {
		writeEnvelope(w, false, "session not found", nil)
		return
	}
	var names []string
	for path := range s.Files {
		names = append(names, path)
	}
	sort.Strings(names)
	var entries []map[string]any
	for _, name := range names {
		entries = append(entries, map[string]any{
			"name":        name,
			"isDirectory": false,
			"size":        len(s.Files[name]),
		})
	}
	writeEnvelope(w, true, "", map[string]any{"entries": entries})
}

func (b *Backend) getFileChange(w http.ResponseWriter, req request) {
	s, ok := b.sessions[req.str("sessionId")]
	if !ok {
		writeEnvelope(w, false, "session not found", nil)
		return
	}
	events := s.PendingChanges
	s.PendingChanges = nil
	writeEnvelope(w, true, "", map[string]any{"events": events})
}

func (b *Backend) listContexts(w http.ResponseWriter) {
	var names []string
	for name := range b.contexts {
		names = append(names, name)
	}
	sort.Strings(names)
	var contexts []map[string]any
	for _, name := range names {
		c := b.contexts[name]
		contexts = append(contexts, map[string]any{"id": c.ID, "name": c.Name})
	}
	writeEnvelope(w, true, "", map[string]any{"contexts": contexts})
}

func (b *Backend) getContext(w http.ResponseWriter, req request) {
	name := req.str("name")
	c, ok := b.contexts[name]
	if !ok {
		if !req.boolean("allowCreate") {
			writeEnvelope(w, false, "context not found", nil)
			return
		}
		c = &fakeContext{ID: "ctx-" + uuid.NewString()[:8], Name: name}
		b.contexts[name] = c
	}
	writeEnvelope(w, true, "", map[string]any{"id": c.ID, "name": c.Name})
}

func (b *Backend) updateContext(w http.ResponseWriter, req request) {
	id := req.str("contextId")
	for name, c := range b.contexts {
		if c.ID == id {
			delete(b.contexts, name)
			c.Name = req.str("name")
			b.contexts[c.Name] = c
			writeEnvelope(w, true, "", nil)
			return
		}
	}
	writeEnvelope(w, false, "context not found", nil)
}

func (b *Backend) deleteContext(w http.ResponseWriter, req request) {
	id := req.str("contextId")
	for name, c := range b.contexts {
		if c.ID == id {
			delete(b.contexts, name)
			writeEnvelope(w, true, "", nil)
			return
		}
	}
	writeEnvelope(w, false, "context not found", nil)
}

func (b *Backend) syncContext(w http.ResponseWriter, req request) {
	if _, ok := b.sessions[req.str("sessionId")]; !ok {
		writeEnvelope(w, false, "session not found", nil)
		return
	}
	writeEnvelope(w, true, "", nil)
}

func matchesLabels(have, want map[string]string) bool {
	for k, v := range want {
		if have[k] != v {
			return false
		}
	}
	return true
}

func writeEnvelope(w http.ResponseWriter, success bool, errorMessage string, data any) {
	envelope := map[string]any{
		"requestId":      uuid.NewString(),
		"code":           "ok",
		"httpStatusCode": http.StatusOK,
		"success":        success,
	}
	if !success {
		envelope["code"] = "error"
		envelope["errorMessage"] = errorMessage
	}
	if data != nil {
		envelope["data"] = data
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(envelope)
}
