package defstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"sync"

	ros "github.com/foxglove/go-rosbag/ros1msg"
	"github.com/goccy/go-json"
	"github.com/wkalt/msgdef/storage"
	"github.com/wkalt/msgdef/util"
	"github.com/wkalt/msgdef/util/log"
	"github.com/wkalt/msgdef/util/ros1msg"
)

/*
The definition store persists concatenated message definitions in object
storage, addressed by the fingerprint of their canonical text. Submitted text
may be canonical or human-authored; either way it is decoded, re-encoded
canonically, and checked for interoperability with the go-rosbag transcoder
before anything is written, so stored blobs are always usable by ROS tooling.

The fingerprint covers the type name as well as the text, since unqualified
field types resolve relative to the type's package. Objects are stored under
<prefix>/<fingerprint>. Reads are cached in an LRU.
*/

////////////////////////////////////////////////////////////////////////////////

// ErrDefinitionNotFound is returned when no definition is stored under a
// fingerprint.
var ErrDefinitionNotFound = errors.New("definition not found")

// InteropError is returned when canonical text is rejected by the go-rosbag
// transcoder.
type InteropError struct {
	Name string
	Err  error
}

// Error returns a string representation of the error.
func (e InteropError) Error() string {
	return fmt.Sprintf("definition of %s is not usable by ROS tooling: %s", e.Name, e.Err)
}

// Unwrap returns the underlying error.
func (e InteropError) Unwrap() error {
	return e.Err
}

// Is returns true if the target error is an InteropError.
func (e InteropError) Is(target error) bool {
	_, ok := target.(InteropError)
	return ok
}

// Envelope is the stored form of a definition.
type Envelope struct {
	Name        string `json:"name"`
	Encoding    string `json:"encoding"`
	Fingerprint string `json:"fingerprint"`
	MD5Sum      string `json:"md5sum"`
	Data        string `json:"data"`
}

// Store is a cached definition store over a storage provider.
type Store struct {
	cache  *util.LRU[string, *Envelope]
	store  storage.Provider
	prefix string

	mtx *sync.Mutex
}

// NewStore creates a new Store caching up to capacity definitions.
func NewStore(store storage.Provider, prefix string, capacity int) (*Store, error) {
	cache, err := util.NewLRU[string, *Envelope](capacity)
	if err != nil {
		return nil, err
	}
	return &Store{
		cache:  cache,
		store:  store,
		prefix: prefix,
		mtx:    &sync.Mutex{},
	}, nil
}

// Normalize parses definition text, accepting both canonical and
// human-authored forms, and returns the parsed sequence with its canonical
// encoding. If neither parser accepts the text, the canonical parser's error
// is returned.
func Normalize(text string) (ros1msg.Sequence, string, error) {
	seq, err := ros1msg.Decode(text)
	if err != nil {
		lenient, lerr := ros1msg.ParseMessageDefinition([]byte(text))
		if lerr != nil {
			return nil, "", err
		}
		seq = lenient
	}
	canonical, err := ros1msg.Encode(seq)
	if err != nil {
		return nil, "", err
	}
	return seq, canonical, nil
}

// Put normalizes and stores a definition of the named type, returning the
// stored envelope. Storing a definition that is already present is a no-op.
func (s *Store) Put(ctx context.Context, name string, text string) (*Envelope, error) {
	if err := ros1msg.ValidateTypeName(name); err != nil {
		return nil, err
	}
	seq, canonical, err := Normalize(text)
	if err != nil {
		return nil, err
	}
	if err := seq.ValidateDependencyNames(); err != nil {
		return nil, err
	}
	sum, err := ros1msg.MD5Sum(name, seq)
	if err != nil {
		return nil, fmt.Errorf("failed to compute md5sum: %w", err)
	}
	if _, err := ros.NewJSONTranscoder(ros1msg.PackageName(name), []byte(canonical)); err != nil {
		return nil, InteropError{Name: name, Err: err}
	}
	envelope := &Envelope{
		Name:        name,
		Encoding:    "ros1msg",
		Fingerprint: ros1msg.Fingerprint(name, canonical),
		MD5Sum:      sum,
		Data:        canonical,
	}

	// Puts are serialized so concurrent submissions of a new definition
	// result in a single upload.
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if existing, ok := s.cache.Get(envelope.Fingerprint); ok {
		return existing, nil
	}
	data, err := json.Marshal(envelope)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize definition: %w", err)
	}
	if err := s.store.Put(ctx, s.objectID(envelope.Fingerprint), bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("failed to put definition to storage: %w", err)
	}
	s.cache.Put(envelope.Fingerprint, envelope)
	log.Debugw(ctx, "stored definition", "type", name, "fingerprint", envelope.Fingerprint)
	return envelope, nil
}

// Get returns the definition stored under a fingerprint.
func (s *Store) Get(ctx context.Context, fingerprint string) (*Envelope, error) {
	if envelope, ok := s.cache.Get(fingerprint); ok {
		return envelope, nil
	}
	reader, err := s.store.Get(ctx, s.objectID(fingerprint))
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, ErrDefinitionNotFound
		}
		return nil, fmt.Errorf("failed to find definition: %w", err)
	}
	defer reader.Close()
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read definition: %w", err)
	}
	envelope := &Envelope{}
	if err := json.Unmarshal(data, envelope); err != nil {
		return nil, fmt.Errorf("failed to deserialize definition: %w", err)
	}
	// cache on read
	s.cache.Put(fingerprint, envelope)
	return envelope, nil
}

func (s *Store) objectID(fingerprint string) string {
	return path.Join(s.prefix, fingerprint)
}
