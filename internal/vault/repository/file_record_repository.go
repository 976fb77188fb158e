// Package repository persists vault records, one JSON document per secret id.
package repository

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	cryptoDomain "github.com/allisson/keyvault/internal/crypto/domain"
	vaultDomain "github.com/allisson/keyvault/internal/vault/domain"
)

const (
	// FilePermissions is the mode of every record file.
	FilePermissions os.FileMode = 0o600
	// DirPermissions is the mode of the vault directory.
	DirPermissions os.FileMode = 0o700

	recordExt     = ".json"
	tempPrefix    = ".tmp-"
	defaultLister = 8
)

// storedRecord is the on-disk document. Binary fields are hex encoded.
type storedRecord struct {
	Metadata      vaultDomain.Metadata   `json:"metadata"`
	Algorithm     cryptoDomain.Algorithm `json:"algorithm"`
	EncryptedData string                 `json:"encryptedData"`
	Nonce         string                 `json:"nonce"`
	AuthTag       string                 `json:"authTag"`
}

// FileRecordRepository stores records as <dir>/<id>.json.
//
// Writes go to a temp file in the same directory which is synced and then renamed
// over the target, so a reader sees either the previous document or the new one.
// The repository does not serialize callers; per-id ordering is the use case's job.
type FileRecordRepository struct {
	dir         string
	concurrency int
}

// NewFileRecordRepository creates the vault directory if needed and removes temp
// files left behind by an interrupted write. listConcurrency bounds parallel
// decoding in List; values < 1 use a default.
func NewFileRecordRepository(dir string, listConcurrency int) (*FileRecordRepository, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: empty directory", vaultDomain.ErrStorageUnavailable)
	}
	if err := os.MkdirAll(dir, DirPermissions); err != nil {
		return nil, fmt.Errorf("%w: %v", vaultDomain.ErrStorageUnavailable, err)
	}

	if listConcurrency < 1 {
		listConcurrency = defaultLister
	}

	r := &FileRecordRepository{dir: dir, concurrency: listConcurrency}
	if err := r.removeStaleTemps(); err != nil {
		return nil, fmt.Errorf("%w: %v", vaultDomain.ErrStorageUnavailable, err)
	}
	return r, nil
}

// Dir returns the vault directory.
func (r *FileRecordRepository) Dir() string {
	return r.dir
}

// Save writes rec durably, replacing any existing record with the same id.
func (r *FileRecordRepository) Save(ctx context.Context, rec *vaultDomain.SecretRecord) error {
	if err := vaultDomain.ValidateSecretID(rec.Metadata.ID); err != nil {
		return err
	}

	doc := storedRecord{
		Metadata:      rec.Metadata,
		Algorithm:     rec.Algorithm,
		EncryptedData: hex.EncodeToString(rec.Ciphertext),
		Nonce:         hex.EncodeToString(rec.Nonce),
		AuthTag:       hex.EncodeToString(rec.AuthTag),
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	return r.writeAtomic(r.path(rec.Metadata.ID), data)
}

// Get reads the record for id. Returns ErrSecretNotFound when it does not exist
// and ErrMalformedRecord when the document cannot be decoded.
func (r *FileRecordRepository) Get(ctx context.Context, id string) (*vaultDomain.SecretRecord, error) {
	if err := vaultDomain.ValidateSecretID(id); err != nil {
		return nil, err
	}
	return r.read(id, r.path(id))
}

// Delete removes the record for id, reporting whether one existed.
func (r *FileRecordRepository) Delete(ctx context.Context, id string) (bool, error) {
	if err := vaultDomain.ValidateSecretID(id); err != nil {
		return false, err
	}

	if err := os.Remove(r.path(id)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to delete record %s: %w", id, err)
	}

	if err := syncDir(r.dir); err != nil {
		return true, err
	}
	return true, nil
}

// List returns every record currently present, in no particular order.
// Records deleted between the directory scan and the read are skipped.
func (r *FileRecordRepository) List(ctx context.Context) ([]*vaultDomain.SecretRecord, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read vault directory: %w", err)
	}

	var ids []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, tempPrefix) || !strings.HasSuffix(name, recordExt) {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, recordExt))
	}

	records := make([]*vaultDomain.SecretRecord, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for i, id := range ids {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rec, err := r.read(id, filepath.Join(r.dir, id+recordExt))
			if errors.Is(err, vaultDomain.ErrSecretNotFound) {
				return nil
			}
			if err != nil {
				return err
			}
			records[i] = rec
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := records[:0]
	for _, rec := range records {
		if rec != nil {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *FileRecordRepository) path(id string) string {
	return filepath.Join(r.dir, id+recordExt)
}

func (r *FileRecordRepository) read(id, path string) (*vaultDomain.SecretRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, vaultDomain.ErrSecretNotFound
		}
		return nil, fmt.Errorf("failed to read record %s: %w", id, err)
	}

	var doc storedRecord
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", vaultDomain.ErrMalformedRecord, id, err)
	}
	if doc.Metadata.ID != id {
		return nil, fmt.Errorf("%w: %s: metadata id %q does not match", vaultDomain.ErrMalformedRecord, id, doc.Metadata.ID)
	}

	rec := &vaultDomain.SecretRecord{Metadata: doc.Metadata, Algorithm: doc.Algorithm}
	fields := []struct {
		name string
		src  string
		dst  *[]byte
	}{
		{"encryptedData", doc.EncryptedData, &rec.Ciphertext},
		{"nonce", doc.Nonce, &rec.Nonce},
		{"authTag", doc.AuthTag, &rec.AuthTag},
	}
	for _, f := range fields {
		b, err := hex.DecodeString(f.src)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %s: %v", vaultDomain.ErrMalformedRecord, id, f.name, err)
		}
		*f.dst = b
	}

	return rec, nil
}

// writeAtomic writes data to a synced temp file and renames it over path.
func (r *FileRecordRepository) writeAtomic(path string, data []byte) error {
	tmpFile, err := os.CreateTemp(r.dir, tempPrefix+"*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	cleanup := func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}

	if err := tmpFile.Chmod(FilePermissions); err != nil {
		cleanup()
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if _, err := tmpFile.Write(data); err != nil {
		cleanup()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to replace record: %w", err)
	}

	return syncDir(r.dir)
}

func (r *FileRecordRepository) removeStaleTemps() error {
	matches, err := filepath.Glob(filepath.Join(r.dir, tempPrefix+"*"))
	if err != nil {
		return err
	}
	for _, m := range matches {
		if err := os.Remove(m); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

// syncDir flushes directory entries so a rename or unlink survives a crash.
func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return fmt.Errorf("failed to open vault directory: %w", err)
	}
	defer func() { _ = d.Close() }()

	if err := d.Sync(); err != nil && !errors.Is(err, os.ErrInvalid) {
		return fmt.Errorf("failed to sync vault directory: %w", err)
	}
	return nil
}
