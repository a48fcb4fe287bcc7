package vault

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/sentryvault/sentryvault/internal/crypto"
	"github.com/sentryvault/sentryvault/internal/guard"
	"github.com/sentryvault/sentryvault/internal/shard"
	"github.com/sentryvault/sentryvault/internal/storage"
)

var (
	ErrNotInitialized = errors.New("vault not initialized")
	ErrAlreadyExists  = errors.New("vault already exists")

	// ErrUnlockFailed is the uniform failure for the whole unlock path.
	// Derivation, reconstruction and decryption failures all collapse into
	// it so a caller learns nothing about which stage rejected a guess.
	ErrUnlockFailed = errors.New("unable to unlock vault")

	// ErrStateConflict is returned when a save is already in flight.
	// Concurrent writers are rejected, never merged.
	ErrStateConflict = errors.New("another save is in progress")
)

// State tracks the unlock lifecycle of a store
type State int

const (
	Locked State = iota
	Unlocking
	Unlocked
	Saving
)

func (s State) String() string {
	switch s {
	case Locked:
		return "locked"
	case Unlocking:
		return "unlocking"
	case Unlocked:
		return "unlocked"
	case Saving:
		return "saving"
	default:
		return "unknown"
	}
}

// SaveOptions controls optional sharding of the persisted blob.
// Zero Shares means the blob is persisted whole.
type SaveOptions struct {
	Shares    int
	Threshold int
}

// Info describes a vault without requiring the passphrase
type Info struct {
	VaultID    string
	Created    time.Time
	Modified   time.Time
	BlobSize   int
	ShardCount int
}

// Store owns the persisted vault state and runs the full pipeline:
// serialize, derive, encrypt, optionally shard, persist. Opens may run
// concurrently with each other but never overlap an in-flight Save.
type Store struct {
	mu    sync.RWMutex
	path  string
	db    *storage.Storage
	gate  *guard.Guard
	prm   crypto.Params
	state State
	stMu  sync.Mutex
}

// NewStore opens the vault database at path, creating the file on first use
func NewStore(path string) (*Store, error) {
	db, err := storage.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open vault database: %w", err)
	}
	return &Store{
		path: path,
		db:   db,
		prm:  crypto.DefaultParams(),
	}, nil
}

// SetGuard installs an access policy gate consulted before every unlock
func (s *Store) SetGuard(g *guard.Guard) {
	s.gate = g
}

// SetParams overrides the default derivation costs for future saves.
// Out-of-range values are rejected; existing blobs keep their own params.
func (s *Store) SetParams(p crypto.Params) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.prm = p
	return nil
}

// Close releases the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}

// State returns the current lifecycle state
func (s *Store) State() State {
	s.stMu.Lock()
	defer s.stMu.Unlock()
	return s.state
}

func (s *Store) setState(st State) {
	s.stMu.Lock()
	s.state = st
	s.stMu.Unlock()
}

// Init creates a new empty vault protected by the passphrase
func (s *Store) Init(passphrase []byte) error {
	initialized, err := s.db.IsInitialized()
	if err != nil {
		return err
	}
	if initialized {
		return ErrAlreadyExists
	}
	if err := s.db.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize vault: %w", err)
	}

	if _, _, err := s.Save(New(), passphrase, SaveOptions{}); err != nil {
		return err
	}

	id, _ := s.db.GetOrCreateVaultID()
	log.WithField("vault", id).Info("vault initialized")
	return nil
}

// Open unlocks the persisted vault. The key is re-derived from the salt and
// params embedded in the blob, used for one decryption and cleared. Any
// failure surfaces as ErrUnlockFailed with no further detail.
func (s *Store) Open(passphrase []byte) (*Vault, error) {
	if err := s.checkGuard(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	s.setState(Unlocking)
	data, err := s.db.GetBlob()
	if err != nil {
		s.setState(Locked)
		if errors.Is(err, storage.ErrNoBlob) {
			return nil, ErrNotInitialized
		}
		return nil, ErrUnlockFailed
	}

	v, err := s.unlock(data, passphrase)
	if err != nil {
		s.setState(Locked)
		log.Debug("unlock rejected")
		return nil, ErrUnlockFailed
	}

	s.setState(Unlocked)
	if s.gate != nil {
		s.gate.Reset()
	}
	return v, nil
}

// OpenShards unlocks a vault from a gathered shard set instead of the local
// blob. The same uniform failure applies to every stage.
func (s *Store) OpenShards(shards []shard.Shard, passphrase []byte) (*Vault, error) {
	if err := s.checkGuard(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	s.setState(Unlocking)
	data, err := shard.Reconstruct(shards)
	if err != nil {
		s.setState(Locked)
		return nil, ErrUnlockFailed
	}

	v, err := s.unlock(data, passphrase)
	if err != nil {
		s.setState(Locked)
		return nil, ErrUnlockFailed
	}

	s.setState(Unlocked)
	if s.gate != nil {
		s.gate.Reset()
	}
	return v, nil
}

// Save encrypts the full current entry set under a fresh salt and replaces
// the persisted state atomically. With sharding options set, the encoded
// blob is also split and the shards stored for export. A save already in
// flight rejects the newcomer with ErrStateConflict.
func (s *Store) Save(v *Vault, passphrase []byte, opts SaveOptions) (*Blob, []shard.Shard, error) {
	if !s.mu.TryLock() {
		return nil, nil, ErrStateConflict
	}
	defer s.mu.Unlock()

	s.setState(Saving)
	defer s.setState(Unlocked)

	plaintext, err := v.serialize()
	if err != nil {
		return nil, nil, err
	}
	defer crypto.ClearBytes(plaintext)

	salt, err := crypto.NewSalt()
	if err != nil {
		return nil, nil, err
	}

	key, err := crypto.DeriveKey(passphrase, salt, s.prm)
	if err != nil {
		return nil, nil, err
	}
	defer crypto.ClearBytes(key)

	enc := crypto.NewEncryptor(key)
	defer enc.Destroy()

	sealed, err := enc.Encrypt(plaintext)
	if err != nil {
		return nil, nil, err
	}

	blob := newBlob(s.prm, salt, sealed)
	data, err := blob.Marshal()
	if err != nil {
		return nil, nil, err
	}

	var shards []shard.Shard
	shardData := make(map[byte][]byte)
	if opts.Shares > 0 {
		shards, err = shard.Split(data, opts.Shares, opts.Threshold, FormatVersion)
		if err != nil {
			return nil, nil, err
		}
		for _, sh := range shards {
			encoded, err := encodeShard(sh)
			if err != nil {
				return nil, nil, err
			}
			shardData[sh.Index] = encoded
		}
	}

	// Single transaction: either the new blob and shard set fully replace
	// the old state, or the old state stays untouched.
	if err := s.db.ReplaceState(data, shardData); err != nil {
		return nil, nil, fmt.Errorf("failed to persist vault: %w", err)
	}

	log.WithFields(log.Fields{
		"entries": v.Len(),
		"shards":  len(shards),
	}).Debug("vault saved")
	return blob, shards, nil
}

// Verify reports whether the passphrase unlocks the vault. Failures are as
// uniform as Open's.
func (s *Store) Verify(passphrase []byte) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := s.db.GetBlob()
	if err != nil {
		if errors.Is(err, storage.ErrNoBlob) {
			return ErrNotInitialized
		}
		return ErrUnlockFailed
	}
	if _, err := s.unlock(data, passphrase); err != nil {
		return ErrUnlockFailed
	}
	return nil
}

// ChangePassphrase re-encrypts the vault under a new passphrase with a
// fresh salt. Previously issued shards become stale; the stored shard set
// is replaced along with the blob.
func (s *Store) ChangePassphrase(oldPass, newPass []byte, opts SaveOptions) error {
	if len(newPass) == 0 {
		return fmt.Errorf("%w: empty passphrase", crypto.ErrDerivation)
	}

	v, err := s.Open(oldPass)
	if err != nil {
		return err
	}

	if _, _, err := s.Save(v, newPass, opts); err != nil {
		return err
	}

	id, _ := s.db.GetVaultID()
	log.WithField("vault", id).Info("passphrase changed")
	return nil
}

// Restore replaces the local vault state with a blob rebuilt from shard
// files, after verifying the passphrase actually unlocks it. Shard set
// problems surface distinctly here: restore is a recovery operation, not a
// guess of the passphrase.
func (s *Store) Restore(shards []shard.Shard, passphrase []byte) error {
	data, err := shard.Reconstruct(shards)
	if err != nil {
		return err
	}
	if _, err := s.unlock(data, passphrase); err != nil {
		return ErrUnlockFailed
	}

	if !s.mu.TryLock() {
		return ErrStateConflict
	}
	defer s.mu.Unlock()

	initialized, err := s.db.IsInitialized()
	if err != nil {
		return err
	}
	if !initialized {
		if err := s.db.Initialize(); err != nil {
			return err
		}
	}

	if err := s.db.ReplaceState(data, nil); err != nil {
		return fmt.Errorf("failed to persist restored vault: %w", err)
	}

	log.Info("vault restored from shards")
	return nil
}

// StoredShards returns the shard set persisted by the last sharded save
func (s *Store) StoredShards() ([]shard.Shard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	raw, err := s.db.GetShards()
	if err != nil {
		return nil, err
	}
	shards := make([]shard.Shard, 0, len(raw))
	for _, data := range raw {
		sh, err := decodeShard(data)
		if err != nil {
			return nil, err
		}
		shards = append(shards, sh)
	}
	return shards, nil
}

// Info describes the vault without touching any secret material
func (s *Store) Info() (Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	initialized, err := s.db.IsInitialized()
	if err != nil {
		return Info{}, err
	}
	if !initialized {
		return Info{}, ErrNotInitialized
	}

	info := Info{}
	info.VaultID, _ = s.db.GetVaultID()
	info.Created, _ = s.db.GetCreated()
	info.Modified, _ = s.db.GetModified()

	if data, err := s.db.GetBlob(); err == nil {
		info.BlobSize = len(data)
	}
	if raw, err := s.db.GetShards(); err == nil {
		info.ShardCount = len(raw)
	}
	return info, nil
}

// VaultID returns the stable identifier of this vault, generating one on
// first use. Used as the keyring account name.
func (s *Store) VaultID() (string, error) {
	return s.db.GetOrCreateVaultID()
}

// Exists reports whether an initialized vault database is present at path
func Exists(path string) bool {
	if _, err := os.Stat(path); err != nil {
		return false
	}
	return true
}

// checkGuard consults the access policy before any derivation work runs
func (s *Store) checkGuard() error {
	if s.gate == nil {
		return nil
	}
	if err := s.gate.Check(guard.Context{At: time.Now()}); err != nil {
		log.WithError(err).Warn("unlock denied by policy")
		return err
	}
	return nil
}

// unlock runs derive, decrypt, deserialize. Callers translate every failure
// into the uniform unlock error.
func (s *Store) unlock(blobData, passphrase []byte) (*Vault, error) {
	blob, err := UnmarshalBlob(blobData)
	if err != nil {
		return nil, err
	}

	key, err := crypto.DeriveKey(passphrase, blob.KDF.Salt, blob.KDF.Params())
	if err != nil {
		return nil, err
	}
	defer crypto.ClearBytes(key)

	enc := crypto.NewEncryptor(key)
	defer enc.Destroy()

	plaintext, err := enc.Decrypt(blob.sealed())
	if err != nil {
		return nil, err
	}
	defer crypto.ClearBytes(plaintext)

	return deserialize(plaintext)
}
