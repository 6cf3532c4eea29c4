// Package session keeps the documents the HTTP API is editing. Each session
// owns one buffer and serializes the commands run against it.
package session

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dgallion1/orgtree/internal/buffer"
)

// ErrNotFound is returned when no session has the requested id.
var ErrNotFound = errors.New("document not found")

// Session tracks one open document.
type Session struct {
	mu sync.Mutex

	ID       string
	Title    string
	Filename string

	doc         *buffer.Document
	contentHash string
	commands    int
	createdAt   time.Time
	updatedAt   time.Time
}

// Snapshot is a read-only, JSON-safe copy of session state.
type Snapshot struct {
	ID          string    `json:"doc_id"`
	Title       string    `json:"title"`
	Filename    string    `json:"filename,omitempty"`
	Version     int64     `json:"version"`
	Lines       int       `json:"lines"`
	Commands    int       `json:"commands"`
	ContentHash string    `json:"content_hash"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func newSession(title, filename, text string) *Session {
	now := time.Now()
	return &Session{
		ID:          newID(),
		Title:       title,
		Filename:    filename,
		doc:         buffer.Parse(text),
		contentHash: ContentHashHex([]byte(text)),
		createdAt:   now,
		updatedAt:   now,
	}
}

// Do runs fn with exclusive access to the document. Commands against one
// session never interleave.
func (s *Session) Do(fn func(doc *buffer.Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	before := s.doc.Version()
	err := fn(s.doc)
	s.commands++
	if s.doc.Version() != before {
		s.contentHash = ContentHashHex([]byte(s.doc.String()))
	}
	s.updatedAt = time.Now()
	return err
}

// View runs fn with the document locked, for reads.
func (s *Session) View(fn func(doc *buffer.Document)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.doc)
}

// Snapshot returns a JSON-safe copy of the session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		ID:          s.ID,
		Title:       s.Title,
		Filename:    s.Filename,
		Version:     s.doc.Version(),
		Lines:       s.doc.LineCount(),
		Commands:    s.commands,
		ContentHash: s.contentHash,
		CreatedAt:   s.createdAt,
		UpdatedAt:   s.updatedAt,
	}
}

func (s *Session) lastUsed() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updatedAt
}

// Store is a thread-safe in-memory session registry with TTL eviction.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
}

func NewStore(ttl time.Duration) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
	}
}

// Create opens a new session holding text.
func (s *Store) Create(title, filename, text string) *Session {
	sess := newSession(title, filename, text)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess
	return sess
}

// Get returns the session with id or ErrNotFound.
func (s *Store) Get(id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return sess, nil
}

// Delete removes the session with id.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(s.sessions, id)
	return nil
}

// Do runs fn against the document of session id.
func (s *Store) Do(id string, fn func(doc *buffer.Document) error) error {
	sess, err := s.Get(id)
	if err != nil {
		return err
	}
	return sess.Do(fn)
}

// List returns snapshots of every session, oldest first.
func (s *Store) List() []Snapshot {
	s.mu.Lock()
	all := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		all = append(all, sess)
	}
	s.mu.Unlock()

	out := make([]Snapshot, 0, len(all))
	for _, sess := range all {
		out = append(out, sess.Snapshot())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// Len returns the number of open sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Cleanup removes sessions idle for longer than the TTL and returns how
// many were evicted.
func (s *Store) Cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	n := 0
	for id, sess := range s.sessions {
		if now.Sub(sess.lastUsed()) > s.ttl {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
