package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/eduventure/auth-service/internal/core/domain"
)

const collectionRefreshTokens = "refresh_tokens"

type SessionRepository struct {
	coll *mongo.Collection
}

func NewSessionRepository(db *mongo.Database) *SessionRepository {
	return &SessionRepository{coll: db.Collection(collectionRefreshTokens)}
}

type mongoSession struct {
	UserID    string    `bson:"user_id"`
	Token     string    `bson:"token"`
	CreatedAt time.Time `bson:"created_at"`
}

func (r *SessionRepository) Insert(ctx context.Context, s *domain.RefreshSession) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.coll.InsertOne(ctx, mongoSession{
		UserID:    s.UserID,
		Token:     s.Token,
		CreatedAt: s.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("insert refresh token: %w", err)
	}
	return nil
}

func (r *SessionRepository) Find(ctx context.Context, userID, token string) (*domain.RefreshSession, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoSession
	err := r.coll.FindOne(ctx, bson.M{"user_id": userID, "token": token}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("find refresh token: %w", err)
	}
	return &domain.RefreshSession{UserID: doc.UserID, Token: doc.Token, CreatedAt: doc.CreatedAt}, nil
}

func (r *SessionRepository) DeleteByToken(ctx context.Context, token string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.coll.DeleteOne(ctx, bson.M{"token": token}); err != nil {
		return fmt.Errorf("delete refresh token: %w", err)
	}
	return nil
}

// EnsureIndexes creates the lookup indexes for refresh and logout.
func (r *SessionRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "token", Value: 1}}},
		{Keys: bson.D{{Key: "token", Value: 1}}},
	}
	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}
