package repository

import (
	"context"
	"fmt"
	"time"

	"laluna/pkg/config"
	"laluna/pkg/lock"
	"laluna/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	LockCollectionName = "Room_locks"
)

type mongoRoomLockRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

// NewRoomLockRepository returns the lock.Store backing the cross-process
// room guard. The TTL index on expires_at is created by the migrate job.
func NewRoomLockRepository(cfg *config.Config) lock.Store {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoRoomLockRepository{
		cfg:        cfg,
		collection: db.Collection(LockCollectionName),
	}
}

// Acquire inserts the lock document. An expired leftover is removed first,
// so a crashed holder blocks the room for at most one TTL even before the
// TTL monitor runs.
func (r *mongoRoomLockRepository) Acquire(ctx context.Context, l *model.RoomLock) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	_, err := r.collection.DeleteOne(ctx, bson.M{
		"_id":        l.ID,
		"expires_at": bson.M{"$lte": time.Now().UTC()},
	})
	if err != nil {
		return fmt.Errorf("failed to clear expired room lock: %w", err)
	}

	if _, err = r.collection.InsertOne(ctx, l); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return lock.ErrLockBusy
		}
		return fmt.Errorf("failed to create room lock: %w", err)
	}
	return nil
}

func (r *mongoRoomLockRepository) Release(ctx context.Context, id, owner string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "owner": owner})
	if err != nil {
		return fmt.Errorf("failed to delete room lock: %w", err)
	}
	return nil
}
