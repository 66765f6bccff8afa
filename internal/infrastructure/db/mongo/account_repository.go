package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/99minutos/identity-service/internal/core/domain"
	"github.com/99minutos/identity-service/internal/core/ports"
)

const collectionAccounts = "accounts"

// AccountRepository implements ports.AccountRepository using MongoDB. The
// unique index on username is what makes concurrent registrations safe.
type AccountRepository struct {
	col *mongo.Collection
}

var (
	_ ports.AccountRepository = (*AccountRepository)(nil)
	_ ports.Pinger            = (*AccountRepository)(nil)
)

func NewAccountRepository(db *mongo.Database) *AccountRepository {
	return &AccountRepository{col: db.Collection(collectionAccounts)}
}

type mongoAccount struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Username     string             `bson:"username"`
	PasswordHash string             `bson:"password_hash"`
	Role         string             `bson:"role"`
	EmailID      string             `bson:"email_id,omitempty"`
	PhoneNumber  string             `bson:"phone_number,omitempty"`
	CreatedAt    time.Time          `bson:"created_at"`
}

// Insert stores a new account and sets its ID. A duplicate username yields
// domain.ErrAccountExists.
func (r *AccountRepository) Insert(ctx context.Context, a *domain.Account) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoAccount{
		ID:           primitive.NewObjectID(),
		Username:     a.Username,
		PasswordHash: a.CredentialHash,
		Role:         a.Role.String(),
		EmailID:      a.EmailID,
		PhoneNumber:  a.PhoneNumber,
		CreatedAt:    a.CreatedAt.UTC(),
	}

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrAccountExists
		}
		return fmt.Errorf("insert account: %w", err)
	}

	a.ID = doc.ID.Hex()
	return nil
}

func (r *AccountRepository) FindByUsername(ctx context.Context, username string) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoAccount
	if err := r.col.FindOne(ctx, bson.M{"username": username}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return doc.toDomain()
}

// List returns all accounts ordered by creation time.
func (r *AccountRepository) List(ctx context.Context) ([]*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "username", Value: 1}})
	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer cur.Close(ctx)

	accounts := make([]*domain.Account, 0)
	for cur.Next(ctx) {
		var doc mongoAccount
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode account: %w", err)
		}
		a, err := doc.toDomain()
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return accounts, nil
}

// DeleteByUsername removes the account in a single round trip. Zero deleted
// documents means the account did not exist.
func (r *AccountRepository) DeleteByUsername(ctx context.Context, username string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"username": username})
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

// EnsureIndexes creates the unique username index on the accounts collection.
func (r *AccountRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_username"),
		},
		{Keys: bson.D{{Key: "created_at", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

func (r *AccountRepository) Ping(ctx context.Context) error {
	return r.col.Database().Client().Ping(ctx, readpref.Primary())
}

func (d mongoAccount) toDomain() (*domain.Account, error) {
	role, err := domain.ParseRole(d.Role)
	if err != nil {
		return nil, fmt.Errorf("account %q: %w", d.Username, err)
	}
	return &domain.Account{
		ID:             d.ID.Hex(),
		Username:       d.Username,
		CredentialHash: d.PasswordHash,
		Role:           role,
		EmailID:        d.EmailID,
		PhoneNumber:    d.PhoneNumber,
		CreatedAt:      d.CreatedAt.UTC(),
	}, nil
}
