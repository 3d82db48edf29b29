package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ccarlsson/todo-app/internal/domain"
)

type userDocument struct {
	ID           string `bson:"_id"`
	Email        string `bson:"email"`
	PasswordHash string `bson:"password_hash"`
}

type UserRepository struct {
	users *mongo.Collection
}

func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{users: db.database.Collection(usersCollection)}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (string, error) {
	doc := userDocument{
		ID:           user.ID,
		Email:        user.Email.String(),
		PasswordHash: user.PasswordHash,
	}

	if _, err := r.users.InsertOne(ctx, doc); err != nil {
		// The unique email index catches registrations racing past the
		// handler's existence check.
		if mongo.IsDuplicateKeyError(err) {
			return "", domain.ErrEmailTaken
		}
		return "", fmt.Errorf("insert user: %w", err)
	}
	return user.ID, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email domain.Email) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email.String()})
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var doc userDocument
	err := r.users.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	email, err := domain.NewEmail(doc.Email)
	if err != nil {
		return nil, fmt.Errorf("stored email %q: %w", doc.Email, err)
	}
	return &domain.User{ID: doc.ID, Email: email, PasswordHash: doc.PasswordHash}, nil
}
