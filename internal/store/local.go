package store

import (
	"bufio"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"
	"lukechampine.com/blake3"

	"github.com/napolitain/kingdom/internal/models"
	"github.com/napolitain/kingdom/internal/schema"
)

// LocalVersion is the envelope version written by LocalStore
const LocalVersion = 1

// envelope is the decompressed content of a save file
type envelope struct {
	Version int             `json:"version"`
	Digest  string          `json:"digest"`
	SavedAt int64           `json:"saved_at"`
	State   json.RawMessage `json:"state"`
}

// LocalStore keeps one kingdom in a zstd-compressed file
type LocalStore struct {
	path string
}

func NewLocal(path string) *LocalStore {
	return &LocalStore{path: path}
}

func (s *LocalStore) Kind() string { return "local" }

func (s *LocalStore) Path() string { return s.path }

func (s *LocalStore) Close() error { return nil }

// Save replaces the file atomically. The kingdom id is kept as it is.
func (s *LocalStore) Save(ctx context.Context, state models.GameState) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	raw, err := json.Marshal(normalize(state))
	if err != nil {
		return "", fmt.Errorf("encode state: %w", err)
	}
	env := envelope{
		Version: LocalVersion,
		Digest:  hashBLAKE3(raw),
		SavedAt: time.Now().UnixMilli(),
		State:   raw,
	}
	data, err := json.Marshal(env)
	if err != nil {
		return "", fmt.Errorf("encode envelope: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return "", err
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())

	if err := writeCompressed(tmp, data); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return "", err
	}
	return state.Kingdom.ID, nil
}

func writeCompressed(w io.Writer, data []byte) error {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(enc)
	if _, err := bw.Write(data); err != nil {
		enc.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

// Load reads the file back. A missing file yields nil, nil.
func (s *LocalStore) Load(ctx context.Context) (*models.GameState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	defer dec.Close()

	data, err := io.ReadAll(bufio.NewReader(dec))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: envelope: %v", ErrCorrupt, err)
	}
	if env.Version != LocalVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrCorrupt, env.Version)
	}
	if hashBLAKE3(env.State) != env.Digest {
		return nil, fmt.Errorf("%w: digest mismatch", ErrCorrupt)
	}
	if err := schema.Validate(schema.SaveState, env.State); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	var state models.GameState
	if err := json.Unmarshal(env.State, &state); err != nil {
		return nil, fmt.Errorf("%w: state: %v", ErrCorrupt, err)
	}
	return &state, nil
}

func hashBLAKE3(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}
