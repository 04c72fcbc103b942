// Package artifact persists account session/metadata artifacts to the
// filesystem layout the control surface's upload contract promises, with
// an optional MinIO mirror for durability.
package artifact

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tgwatch/tgwatch/internal/errs"
	"github.com/tgwatch/tgwatch/internal/log"
	"go.mongodb.org/mongo-driver/v2/bson"
)

const (
	sessionsDir = "sessions"
	jsonDir     = "json"
)

// Store writes to {root}/sessions/{tenant}/{hash}.session and
// {root}/json/{tenant}/{hash}.json.
type Store struct {
	root  string
	mirror Mirror
}

// Mirror is an optional durability sink; nil disables mirroring.
type Mirror interface {
	Put(ctx context.Context, key string, data []byte) error
	Remove(ctx context.Context, key string) error
}

func NewStore(root string, mirror Mirror) *Store {
	return &Store{root: root, mirror: mirror}
}

// Paths is the pair of on-disk locations an upload produces.
type Paths struct {
	SessionPath  string
	MetadataPath string
}

// Save writes both artifacts under a unique name composed from
// {tenant_id, timestamp}, per the account registry's upload contract.
func (s *Store) Save(ctx context.Context, tenantID bson.ObjectID, sessionBytes, jsonBytes []byte) (Paths, error) {
	hash := artifactHash(tenantID, time.Now())
	sessionPath := filepath.Join(s.root, sessionsDir, tenantID.Hex(), hash+".session")
	jsonPath := filepath.Join(s.root, jsonDir, tenantID.Hex(), hash+".json")

	if err := writeFile(sessionPath, sessionBytes); err != nil {
		return Paths{}, errs.WrapStoreUnavailable(err, "writing session artifact")
	}
	if err := writeFile(jsonPath, jsonBytes); err != nil {
		return Paths{}, errs.WrapStoreUnavailable(err, "writing metadata artifact")
	}
	if s.mirror != nil {
		ll := log.GetLogger(log.ArtifactModule)
		if err := s.mirror.Put(ctx, mirrorKey(tenantID, hash, "session"), sessionBytes); err != nil {
			ll.WithError(err).Warn("mirror upload failed for session artifact")
		}
		if err := s.mirror.Put(ctx, mirrorKey(tenantID, hash, "json"), jsonBytes); err != nil {
			ll.WithError(err).Warn("mirror upload failed for metadata artifact")
		}
	}
	return Paths{SessionPath: sessionPath, MetadataPath: jsonPath}, nil
}

// Delete removes both files; mirror deletion is best-effort.
func (s *Store) Delete(ctx context.Context, p Paths) error {
	var firstErr error
	for _, path := range []string{p.SessionPath, p.MetadataPath} {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) && firstErr == nil {
			firstErr = err
		}
	}
	if s.mirror != nil {
		ll := log.GetLogger(log.ArtifactModule)
		for _, path := range []string{p.SessionPath, p.MetadataPath} {
			key := filepath.Base(filepath.Dir(path)) + "/" + filepath.Base(path)
			if err := s.mirror.Remove(ctx, key); err != nil {
				ll.WithError(err).Warn("mirror removal failed for artifact")
			}
		}
	}
	if firstErr != nil {
		return errs.WrapStoreUnavailable(firstErr, "removing artifacts")
	}
	return nil
}

func (s *Store) Read(p Paths) (sessionBytes, jsonBytes []byte, err error) {
	sessionBytes, err = os.ReadFile(p.SessionPath)
	if err != nil {
		return nil, nil, errs.WrapStoreUnavailable(err, "reading session artifact")
	}
	jsonBytes, err = os.ReadFile(p.MetadataPath)
	if err != nil {
		return nil, nil, errs.WrapStoreUnavailable(err, "reading metadata artifact")
	}
	return sessionBytes, jsonBytes, nil
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o640)
}

func artifactHash(tenantID bson.ObjectID, at time.Time) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s-%d", tenantID.Hex(), at.UnixNano())))
	return hex.EncodeToString(sum[:])[:32]
}

func mirrorKey(tenantID bson.ObjectID, hash, kind string) string {
	return fmt.Sprintf("%s/%s.%s", tenantID.Hex(), hash, kind)
}
