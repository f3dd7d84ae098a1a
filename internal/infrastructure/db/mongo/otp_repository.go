package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/eduventure/auth-service/internal/core/domain"
)

const collectionOTPs = "otps"

// OTPRepository stores passcode challenges, one document per email.
type OTPRepository struct {
	coll *mongo.Collection
}

func NewOTPRepository(db *mongo.Database) *OTPRepository {
	return &OTPRepository{coll: db.Collection(collectionOTPs)}
}

type mongoOTP struct {
	Email          string    `bson:"email"`
	OTP            string    `bson:"otp"`
	ExpirationDate time.Time `bson:"expiration_date"`
}

// Save replaces the email's challenge, inserting one if none exists. Two
// racing upserts can both take the insert path; the loser retries once as a
// plain replace.
func (r *OTPRepository) Save(ctx context.Context, c *domain.OTPChallenge) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoOTP{
		Email:          c.Email,
		OTP:            c.Code,
		ExpirationDate: c.ExpirationDate.UTC(),
	}
	filter := bson.M{"email": c.Email}
	opts := options.Replace().SetUpsert(true)

	_, err := r.coll.ReplaceOne(ctx, filter, doc, opts)
	if mongo.IsDuplicateKeyError(err) {
		_, err = r.coll.ReplaceOne(ctx, filter, doc, opts)
	}
	if err != nil {
		return fmt.Errorf("save otp: %w", err)
	}
	return nil
}

func (r *OTPRepository) FindByEmail(ctx context.Context, email string) (*domain.OTPChallenge, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoOTP
	if err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrOTPNotFound
		}
		return nil, fmt.Errorf("find otp: %w", err)
	}
	return &domain.OTPChallenge{
		Email:          doc.Email,
		Code:           doc.OTP,
		ExpirationDate: doc.ExpirationDate,
	}, nil
}

func (r *OTPRepository) DeleteByEmail(ctx context.Context, email string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"email": email})
	if err != nil {
		return false, fmt.Errorf("delete otp: %w", err)
	}
	return res.DeletedCount > 0, nil
}

// EnsureIndexes enforces one challenge per email and lets Mongo reap
// documents an hour after they expire. Expiry itself is checked in code.
func (r *OTPRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "expiration_date", Value: 1}}, Options: options.Index().SetExpireAfterSeconds(3600)},
	}
	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}
