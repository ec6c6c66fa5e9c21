package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/agrishield/identity/domain"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// AccountRepository implements domain.AccountRepository on MongoDB.
// The subject id doubles as the document _id, so a duplicate first
// login surfaces as a duplicate-key error on insert.
type AccountRepository struct {
	accounts *mongo.Collection
}

// NewAccountRepository creates the repository and ensures its indexes.
func NewAccountRepository(ctx context.Context, db *mongo.Database) (*AccountRepository, error) {
	repo := &AccountRepository{
		accounts: db.Collection(AccountsCollection),
	}
	if err := repo.createIndexes(ctx); err != nil {
		// Index creation commonly fails when a compatible index already
		// exists; keep starting and let the operator sort it out.
		log.Warn().Err(err).Msg("Failed to create account indexes")
	}
	return repo, nil
}

func (r *AccountRepository) createIndexes(ctx context.Context) error {
	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetCollation(&options.Collation{Locale: "en", Strength: 2}),
		},
	}

	_, err := r.accounts.Indexes().CreateMany(ctx, indexModels, options.CreateIndexes())
	if err != nil {
		return fmt.Errorf("failed to create indexes for accounts collection: %w", err)
	}
	return nil
}

// GetBySubject returns the account for a subject id.
func (r *AccountRepository) GetBySubject(ctx context.Context, subjectID string) (*domain.Account, error) {
	var account domain.Account
	err := r.accounts.FindOne(ctx, bson.M{"_id": subjectID}).Decode(&account)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAccountNotFound
		}
		log.Error().Err(err).Str("subject_id", subjectID).Msg("Error getting account from MongoDB")
		return nil, err
	}
	return &account, nil
}

// Create inserts a new account document.
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	if account.SubjectID == "" {
		return errors.New("subject id is required")
	}
	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now().UTC()
	}
	if account.LastLoginAt.IsZero() {
		account.LastLoginAt = account.CreatedAt
	}

	_, err := r.accounts.InsertOne(ctx, account)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrAccountExists
		}
		log.Error().Err(err).Str("subject_id", account.SubjectID).Msg("Error creating account in MongoDB")
		return err
	}
	return nil
}

// RecordLogin stamps last_login_at and email_verified on an existing
// account. All other fields, created_at included, are left alone.
func (r *AccountRepository) RecordLogin(ctx context.Context, subjectID string, loginAt time.Time, emailVerified bool) error {
	update := bson.M{"$set": bson.M{
		"last_login_at":  loginAt.UTC(),
		"email_verified": emailVerified,
	}}

	result, err := r.accounts.UpdateOne(ctx, bson.M{"_id": subjectID}, update)
	if err != nil {
		log.Error().Err(err).Str("subject_id", subjectID).Msg("Error recording login in MongoDB")
		return err
	}
	if result.MatchedCount == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

var _ domain.AccountRepository = (*AccountRepository)(nil)
