package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/toronto-opendata/auth-service/internal/core/domain"
)

const usersCollection = "users"

// UserRepository is the MongoDB-backed credential store for accounts.
// Uniqueness of username and email is enforced by unique indexes, so a
// concurrent duplicate write loses at the store rather than slipping past an
// application-level check.
type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(usersCollection)}
}

type mongoUser struct {
	ID                    primitive.ObjectID `bson:"_id,omitempty"`
	Username              string             `bson:"username"`
	Email                 string             `bson:"email"`
	PasswordHash          string             `bson:"password_hash"`
	FirstName             string             `bson:"first_name,omitempty"`
	LastName              string             `bson:"last_name,omitempty"`
	Enabled               bool               `bson:"enabled"`
	AccountNonExpired     bool               `bson:"account_non_expired"`
	AccountNonLocked      bool               `bson:"account_non_locked"`
	CredentialsNonExpired bool               `bson:"credentials_non_expired"`
	LastLogin             *time.Time         `bson:"last_login,omitempty"`
	CreatedAt             time.Time          `bson:"created_at"`
	UpdatedAt             time.Time          `bson:"updated_at"`
	RoleIDs               []string           `bson:"role_ids"`
}

func toMongoUser(u *domain.User) (*mongoUser, error) {
	mu := &mongoUser{
		Username:              u.Username,
		Email:                 u.Email,
		PasswordHash:          u.PasswordHash,
		FirstName:             u.FirstName,
		LastName:              u.LastName,
		Enabled:               u.Enabled,
		AccountNonExpired:     u.AccountNonExpired,
		AccountNonLocked:      u.AccountNonLocked,
		CredentialsNonExpired: u.CredentialsNonExpired,
		LastLogin:             u.LastLogin,
		CreatedAt:             u.CreatedAt,
		UpdatedAt:             u.UpdatedAt,
		RoleIDs:               u.RoleIDs,
	}
	if u.ID != "" {
		oid, err := primitive.ObjectIDFromHex(u.ID)
		if err != nil {
			return nil, domain.ErrUserNotFound
		}
		mu.ID = oid
	}
	return mu, nil
}

func (mu *mongoUser) toDomain() *domain.User {
	roleIDs := mu.RoleIDs
	if roleIDs == nil {
		roleIDs = []string{}
	}
	return &domain.User{
		ID:                    mu.ID.Hex(),
		Username:              mu.Username,
		Email:                 mu.Email,
		PasswordHash:          mu.PasswordHash,
		FirstName:             mu.FirstName,
		LastName:              mu.LastName,
		Enabled:               mu.Enabled,
		AccountNonExpired:     mu.AccountNonExpired,
		AccountNonLocked:      mu.AccountNonLocked,
		CredentialsNonExpired: mu.CredentialsNonExpired,
		LastLogin:             mu.LastLogin,
		CreatedAt:             mu.CreatedAt,
		UpdatedAt:             mu.UpdatedAt,
		RoleIDs:               roleIDs,
	}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	doc, err := toMongoUser(user)
	if err != nil {
		return nil, err
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, duplicateUserError(err)
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	created := *user
	created.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return &created, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var mu mongoUser
	if err := r.coll.FindOne(ctx, filter).Decode(&mu); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return mu.toDomain(), nil
}

func (r *UserRepository) FindAll(ctx context.Context) ([]domain.User, error) {
	cur, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	defer cur.Close(ctx)

	var users []domain.User
	for cur.Next(ctx) {
		var mu mongoUser
		if err := cur.Decode(&mu); err != nil {
			return nil, fmt.Errorf("decode user: %w", err)
		}
		users = append(users, *mu.toDomain())
	}
	return users, cur.Err()
}

func (r *UserRepository) Update(ctx context.Context, user *domain.User) (*domain.User, error) {
	doc, err := toMongoUser(user)
	if err != nil {
		return nil, err
	}

	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, duplicateUserError(err)
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrUserNotFound
	}

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// RemoveRoleFromAll pulls the role id out of every user's edge set in one
// update, so role deletion never leaves dangling memberships behind.
func (r *UserRepository) RemoveRoleFromAll(ctx context.Context, roleID string) error {
	_, err := r.coll.UpdateMany(ctx,
		bson.M{"role_ids": roleID},
		bson.M{"$pull": bson.M{"role_ids": roleID}},
	)
	if err != nil {
		return fmt.Errorf("remove role from users: %w", err)
	}
	return nil
}

// EnsureIndexes creates the unique indexes backing the username and email
// invariants. Must run before the service accepts traffic.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "role_ids", Value: 1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}

// duplicateUserError inspects which unique index tripped so the caller gets
// the right duplicate error.
func duplicateUserError(err error) error {
	if strings.Contains(err.Error(), "email") {
		return domain.ErrDuplicateEmail
	}
	return domain.ErrDuplicateUsername
}
