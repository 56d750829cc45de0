package docstore

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/meghashyamc/askthat/logger"
	bolt "go.etcd.io/bbolt"
)

type BoltStore struct {
	store  *bolt.DB
	logger logger.Logger
}

const (
	documentsBucket = "documents"
	metaBucket      = "meta"
)

func New(logger logger.Logger, storePath string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(storePath), 0755); err != nil {
		logger.Error("failed to create document store directory", "err", err.Error(), "path", storePath)
		return nil, fmt.Errorf("failed to create document store directory: %w", err)
	}

	store, err := bolt.Open(storePath, 0600, &bolt.Options{
		Timeout: 1 * time.Second,
	})
	if err != nil {
		logger.Error("failed to open document store", "err", err.Error(), "path", storePath)
		return nil, fmt.Errorf("failed to open document store: %w", err)
	}

	boltStore := &BoltStore{
		store:  store,
		logger: logger,
	}

	if err := boltStore.initBuckets(); err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to initialize buckets: %w", err)
	}

	return boltStore, nil
}

func (b *BoltStore) initBuckets() error {
	return b.store.Update(func(tx *bolt.Tx) error {
		for _, bucket := range []string{documentsBucket, metaBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(bucket)); err != nil {
				b.logger.Error("failed to create bucket", "bucket", bucket, "err", err.Error())
				return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
		}
		return nil
	})
}

// Put stores one extracted document payload keyed by filename.
func (b *BoltStore) Put(filename string, payload string) error {
	if filename == "" {
		b.logger.Error("filename cannot be empty")
		return &InvalidKeyError{
			Key:    filename,
			Reason: "filename cannot be empty",
		}
	}

	return b.store.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(documentsBucket))
		if bucket == nil {
			b.logger.Error("bucket not found", "bucket", documentsBucket)
			return fmt.Errorf("bucket not found")
		}

		if err := bucket.Put([]byte(filename), []byte(payload)); err != nil {
			b.logger.Error("failed to store document", "filename", filename, "err", err.Error())
			return fmt.Errorf("failed to store document %s: %w", filename, err)
		}

		return nil
	})
}

// GetAll returns every stored document payload keyed by filename.
func (b *BoltStore) GetAll() (map[string]string, error) {
	payloads := make(map[string]string)

	err := b.store.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(documentsBucket))
		if bucket == nil {
			b.logger.Error("bucket not found", "bucket", documentsBucket)
			return fmt.Errorf("bucket not found")
		}

		return bucket.ForEach(func(k, v []byte) error {
			payloads[string(k)] = string(v)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return payloads, nil
}

// Clear drops all stored documents. Called before a rebuild writes the
// replacement corpus through.
func (b *BoltStore) Clear() error {
	return b.store.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket([]byte(documentsBucket)); err != nil {
			b.logger.Error("failed to delete bucket", "bucket", documentsBucket, "err", err.Error())
			return fmt.Errorf("failed to delete bucket: %w", err)
		}
		if _, err := tx.CreateBucket([]byte(documentsBucket)); err != nil {
			b.logger.Error("failed to recreate bucket", "bucket", documentsBucket, "err", err.Error())
			return fmt.Errorf("failed to recreate bucket: %w", err)
		}
		return nil
	})
}

func (b *BoltStore) SetMeta(key string, value string) error {
	if key == "" {
		return &InvalidKeyError{
			Key:    key,
			Reason: "key cannot be empty",
		}
	}

	return b.store.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(metaBucket))
		if bucket == nil {
			return fmt.Errorf("bucket not found")
		}

		return bucket.Put([]byte(key), []byte(value))
	})
}

func (b *BoltStore) GetMeta(key string) (string, error) {
	if key == "" {
		return "", &InvalidKeyError{
			Key:    key,
			Reason: "key cannot be empty",
		}
	}

	var value []byte
	err := b.store.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(metaBucket))
		if bucket == nil {
			return fmt.Errorf("bucket not found")
		}

		v := bucket.Get([]byte(key))
		if v == nil {
			return &NotFoundError{Key: key}
		}

		value = make([]byte, len(v))
		copy(value, v)
		return nil
	})
	if err != nil {
		return "", err
	}

	return string(value), nil
}

func (b *BoltStore) Close() error {
	if b.store != nil {
		return b.store.Close()
	}
	return nil
}
