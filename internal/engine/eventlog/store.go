package eventlog

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/forgewright/mtgcore/internal/logger"
	"go.uber.org/zap"
)

// Store is the persistence-boundary interface: the engine never reads
// persistence during a tick; it only appends accepted intents and, on
// restart, loads the full stream to replay.
type Store interface {
	Append(ctx context.Context, gameID string, seq int64, intent Intent) error
	Load(ctx context.Context, gameID string) ([]Record, error)
}

// MemoryStore is an in-memory Store, used by tests and by hosts that don't
// need cross-restart durability.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string][]Record
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string][]Record)}
}

func (s *MemoryStore) Append(ctx context.Context, gameID string, seq int64, intent Intent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[gameID] = append(s.records[gameID], Record{Seq: seq, GameID: gameID, Intent: intent})
	return nil
}

func (s *MemoryStore) Load(ctx context.Context, gameID string) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Record, len(s.records[gameID]))
	copy(out, s.records[gameID])
	return out, nil
}

// FileStore persists each game's stream as a JSON-lines file, one Record per
// line, appended in order. Loading reads the whole file back. This is
// intentionally the simplest possible durable backend — no database
// dependency is introduced since the on-disk log is explicitly an external
// collaborator and the corpus offers no embedded-log library that
// fits better than a flat append-only file.
type FileStore struct {
	mu   sync.Mutex
	dir  string
	open map[string]*os.File
}

// NewFileStore returns a FileStore rooted at dir (created if absent).
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("eventlog: create dir: %w", err)
	}
	return &FileStore{dir: dir, open: make(map[string]*os.File)}, nil
}

func (s *FileStore) pathFor(gameID string) string {
	return fmt.Sprintf("%s/%s.jsonl", s.dir, gameID)
}

func (s *FileStore) fileFor(gameID string) (*os.File, error) {
	if f, ok := s.open[gameID]; ok {
		return f, nil
	}
	f, err := os.OpenFile(s.pathFor(gameID), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	s.open[gameID] = f
	return f, nil
}

func (s *FileStore) Append(ctx context.Context, gameID string, seq int64, intent Intent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.fileFor(gameID)
	if err != nil {
		return fmt.Errorf("eventlog: open %s: %w", gameID, err)
	}

	rec := Record{Seq: seq, GameID: gameID, Intent: intent}
	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("eventlog: marshal record: %w", err)
	}
	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("eventlog: write record: %w", err)
	}

	logger.WithTickContext(gameID, seq).Debug("appended intent", zap.String("type", string(intent.Type)))
	return nil
}

func (s *FileStore) Load(ctx context.Context, gameID string) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.pathFor(gameID))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("eventlog: open %s: %w", gameID, err)
	}
	defer f.Close()

	var out []Record
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var rec Record
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			return nil, fmt.Errorf("eventlog: decode record: %w", err)
		}
		out = append(out, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("eventlog: scan %s: %w", gameID, err)
	}
	return out, nil
}

// Close releases any open file handles.
func (s *FileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var firstErr error
	for id, f := range s.open {
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(s.open, id)
	}
	return firstErr
}
