// Package webdrivertest provides an in-memory WebDriver endpoint for tests.
package webdrivertest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/jbolsens-legion/docker-selenium/internal/webdriver"
)

const elementKey = "element-6066-11e4-a52e-4f735466cecf"

// Page is a document served by the fake browser
type Page struct {
	Title    string
	Elements []*Node
}

// Node is an element of a fake page. It matches a lookup when one of its
// Locators equals the requested strategy and value.
type Node struct {
	Locators   []webdriver.By
	Tag        string
	Text       string
	Selected   bool
	Hidden     bool
	Disabled   bool
	Properties map[string]any
	Children   []*Node
	// Frame makes the node a frame whose document is Frame
	Frame *Page
	// OnClick runs with the server lock held, so it may mutate server and node state directly
	OnClick func(s *Server)

	ref    string
	parent *Node
}

// Request is a command received by the server
type Request struct {
	Method string
	Path   string
	Body   map[string]any
}

type session struct {
	url     string
	context *Page
	caps    map[string]any
}

// Server is a fake WebDriver endpoint
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	sessions map[string]*session
	refs     map[string]*Node
	nextID   int

	// Pages maps URLs to documents; unknown URLs load an empty page
	Pages map[string]*Page
	// Downloads is returned by the managed downloads endpoint
	Downloads []string
	// Username and Password, when set, are required as basic auth
	Username string
	Password string
	// SessionError, when set, fails every new session request with this code
	SessionError string
	// ReturnedCaps are merged into the capabilities returned for new sessions
	ReturnedCaps map[string]any
	// ScriptResult is returned by script execution
	ScriptResult any

	Requests []Request
	Sessions []map[string]any // Requested capabilities, in order
	Quits    int
	Scripts  []string
	Addons   []string
}

// NewServer starts a fake WebDriver endpoint. Close it when done.
func NewServer() *Server {
	s := &Server{
		sessions:     make(map[string]*session),
		refs:         make(map[string]*Node),
		Pages:        make(map[string]*Page),
		ReturnedCaps: make(map[string]any),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

// Lock and Unlock guard the exported fields while requests may be in flight
func (s *Server) Lock()   { s.mu.Lock() }
func (s *Server) Unlock() { s.mu.Unlock() }

// SessionCount returns the number of sessions created
func (s *Server) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Sessions)
}

// QuitCount returns the number of sessions deleted
func (s *Server) QuitCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Quits
}

// LastCapabilities returns the capabilities of the most recent session request
func (s *Server) LastCapabilities() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Sessions) == 0 {
		return nil
	}
	return s.Sessions[len(s.Sessions)-1]
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Username != "" {
		user, pass, ok := r.BasicAuth()
		if !ok || user != s.Username || pass != s.Password {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte("unauthorized"))
			return
		}
	}

	var body map[string]any
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&body)
	}
	s.Requests = append(s.Requests, Request{Method: r.Method, Path: r.URL.Path, Body: body})

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) == 1 && parts[0] == "status" {
		writeValue(w, map[string]any{"ready": true, "message": "Selenium Grid ready."})
		return
	}
	if parts[0] != "session" {
		writeError(w, http.StatusNotFound, "unknown command", r.URL.Path)
		return
	}
	if len(parts) == 1 && r.Method == http.MethodPost {
		s.newSession(w, body)
		return
	}

	sess, ok := s.sessions[parts[1]]
	if !ok {
		writeError(w, http.StatusNotFound, "invalid session id", parts[1])
		return
	}
	s.route(w, r.Method, parts[1], sess, parts[2:], body)
}

func (s *Server) newSession(w http.ResponseWriter, body map[string]any) {
	caps := map[string]any{}
	if c, ok := body["capabilities"].(map[string]any); ok {
		if am, ok := c["alwaysMatch"].(map[string]any); ok {
			caps = am
		}
	}
	s.Sessions = append(s.Sessions, caps)

	if s.SessionError != "" {
		writeError(w, http.StatusInternalServerError, s.SessionError, "could not start a new session")
		return
	}

	s.nextID++
	id := fmt.Sprintf("session-%d", s.nextID)
	returned := make(map[string]any, len(caps)+len(s.ReturnedCaps))
	for k, v := range caps {
		returned[k] = v
	}
	for k, v := range s.ReturnedCaps {
		returned[k] = v
	}
	s.sessions[id] = &session{context: &Page{}, caps: returned}
	writeValue(w, map[string]any{"sessionId": id, "capabilities": returned})
}

func (s *Server) route(w http.ResponseWriter, method, id string, sess *session, rest []string, body map[string]any) {
	cmd := strings.Join(rest, "/")
	switch {
	case cmd == "" && method == http.MethodDelete:
		delete(s.sessions, id)
		s.Quits++
		writeValue(w, nil)
	case cmd == "url" && method == http.MethodPost:
		url, _ := body["url"].(string)
		sess.url = url
		page, ok := s.Pages[url]
		if !ok {
			page = &Page{}
		}
		sess.context = page
		writeValue(w, nil)
	case cmd == "title":
		title := ""
		if page, ok := s.Pages[sess.url]; ok {
			title = page.Title
		}
		writeValue(w, title)
	case cmd == "element" || cmd == "elements":
		matches := s.find(sess.context.Elements, nil, body)
		s.writeLookup(w, cmd == "element", matches, body)
	case cmd == "frame":
		s.switchFrame(w, sess, body)
	case cmd == "window/maximize":
		writeValue(w, map[string]any{"x": 0, "y": 0, "width": 1920, "height": 1080})
	case cmd == "execute/sync":
		script, _ := body["script"].(string)
		s.Scripts = append(s.Scripts, script)
		writeValue(w, s.ScriptResult)
	case cmd == "se/files":
		writeValue(w, map[string]any{"names": append([]string{}, s.Downloads...)})
	case cmd == "moz/addon/install":
		addon, _ := body["addon"].(string)
		s.Addons = append(s.Addons, addon)
		writeValue(w, "langpack-vi@firefox.mozilla.org")
	case len(rest) >= 3 && rest[0] == "element":
		s.elementCommand(w, rest[1], rest[2:], body)
	default:
		writeError(w, http.StatusNotFound, "unknown command", cmd)
	}
}

func (s *Server) switchFrame(w http.ResponseWriter, sess *session, body map[string]any) {
	id, _ := body["id"].(map[string]any)
	if id == nil {
		if page, ok := s.Pages[sess.url]; ok {
			sess.context = page
		}
		writeValue(w, nil)
		return
	}
	ref, _ := id[elementKey].(string)
	node, ok := s.refs[ref]
	if !ok || node.Frame == nil {
		writeError(w, http.StatusNotFound, "no such frame", ref)
		return
	}
	sess.context = node.Frame
	writeValue(w, nil)
}

func (s *Server) elementCommand(w http.ResponseWriter, ref string, rest []string, body map[string]any) {
	node, ok := s.refs[ref]
	if !ok {
		writeError(w, http.StatusNotFound, "stale element reference", ref)
		return
	}
	switch rest[0] {
	case "text":
		writeValue(w, node.Text)
	case "click":
		if node.Tag == "option" && node.parent != nil {
			for _, sibling := range node.parent.Children {
				sibling.Selected = false
			}
			node.Selected = true
		}
		if node.OnClick != nil {
			node.OnClick(s)
		}
		writeValue(w, nil)
	case "selected":
		writeValue(w, node.Selected)
	case "displayed":
		writeValue(w, !node.Hidden)
	case "enabled":
		writeValue(w, !node.Disabled)
	case "property":
		if len(rest) < 2 {
			writeError(w, http.StatusBadRequest, "invalid argument", "missing property name")
			return
		}
		writeValue(w, node.Properties[rest[1]])
	case "elements", "element":
		s.writeLookup(w, rest[0] == "element", s.find(node.Children, node, body), body)
	default:
		writeError(w, http.StatusNotFound, "unknown command", rest[0])
	}
}

func (s *Server) writeLookup(w http.ResponseWriter, single bool, matches []*Node, body map[string]any) {
	if single {
		if len(matches) == 0 {
			writeError(w, http.StatusNotFound, "no such element", fmt.Sprintf("%v=%v", body["using"], body["value"]))
			return
		}
		writeValue(w, s.reference(matches[0]))
		return
	}
	refs := make([]any, 0, len(matches))
	for _, n := range matches {
		refs = append(refs, s.reference(n))
	}
	writeValue(w, refs)
}

// find does a depth-first search through nodes, not descending into frames
func (s *Server) find(nodes []*Node, parent *Node, body map[string]any) []*Node {
	using, _ := body["using"].(string)
	value, _ := body["value"].(string)
	var out []*Node
	var walk func(nodes []*Node, parent *Node)
	walk = func(nodes []*Node, parent *Node) {
		for _, n := range nodes {
			if n.parent == nil {
				n.parent = parent
			}
			for _, loc := range n.Locators {
				if loc.Using == using && loc.Value == value {
					out = append(out, n)
					break
				}
			}
			walk(n.Children, n)
		}
	}
	walk(nodes, parent)
	return out
}

func (s *Server) reference(n *Node) map[string]string {
	if n.ref == "" {
		s.nextID++
		n.ref = fmt.Sprintf("element-%d", s.nextID)
		s.refs[n.ref] = n
	}
	return map[string]string{elementKey: n.ref}
}

func writeValue(w http.ResponseWriter, value any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(map[string]any{"value": value})
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"value": map[string]any{
			"error":      code,
			"message":    message,
			"stacktrace": "",
		},
	})
}
