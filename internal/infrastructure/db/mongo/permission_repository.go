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

	"github.com/toronto-opendata/auth-service/internal/core/domain"
)

const permissionsCollection = "permissions"

// PermissionRepository is the MongoDB-backed store for permissions. The
// (resource, action) pair is a compound unique index.
type PermissionRepository struct {
	coll *mongo.Collection
}

func NewPermissionRepository(db *mongo.Database) *PermissionRepository {
	return &PermissionRepository{coll: db.Collection(permissionsCollection)}
}

type mongoPermission struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Resource    string             `bson:"resource"`
	Action      string             `bson:"action"`
	Name        string             `bson:"name"`
	Description string             `bson:"description,omitempty"`
	CreatedAt   time.Time          `bson:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at"`
}

func (mp *mongoPermission) toDomain() *domain.Permission {
	return &domain.Permission{
		ID:          mp.ID.Hex(),
		Resource:    mp.Resource,
		Action:      mp.Action,
		Name:        mp.Name,
		Description: mp.Description,
		CreatedAt:   mp.CreatedAt,
		UpdatedAt:   mp.UpdatedAt,
	}
}

func (r *PermissionRepository) Create(ctx context.Context, permission *domain.Permission) (*domain.Permission, error) {
	doc := mongoPermission{
		Resource:    permission.Resource,
		Action:      permission.Action,
		Name:        permission.Name,
		Description: permission.Description,
		CreatedAt:   permission.CreatedAt,
		UpdatedAt:   permission.UpdatedAt,
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrDuplicatePermission
		}
		return nil, fmt.Errorf("insert permission: %w", err)
	}

	created := *permission
	created.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return &created, nil
}

func (r *PermissionRepository) FindByID(ctx context.Context, id string) (*domain.Permission, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrPermissionNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *PermissionRepository) FindByResourceAndAction(ctx context.Context, resource, action string) (*domain.Permission, error) {
	return r.findOne(ctx, bson.M{"resource": resource, "action": action})
}

func (r *PermissionRepository) findOne(ctx context.Context, filter bson.M) (*domain.Permission, error) {
	var mp mongoPermission
	if err := r.coll.FindOne(ctx, filter).Decode(&mp); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrPermissionNotFound
		}
		return nil, fmt.Errorf("find permission: %w", err)
	}
	return mp.toDomain(), nil
}

func (r *PermissionRepository) FindByResource(ctx context.Context, resource string) ([]domain.Permission, error) {
	return r.findMany(ctx, bson.M{"resource": resource})
}

func (r *PermissionRepository) FindByAction(ctx context.Context, action string) ([]domain.Permission, error) {
	return r.findMany(ctx, bson.M{"action": action})
}

func (r *PermissionRepository) FindAll(ctx context.Context) ([]domain.Permission, error) {
	return r.findMany(ctx, bson.M{})
}

func (r *PermissionRepository) findMany(ctx context.Context, filter bson.M) ([]domain.Permission, error) {
	cur, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find permissions: %w", err)
	}
	defer cur.Close(ctx)

	var perms []domain.Permission
	for cur.Next(ctx) {
		var mp mongoPermission
		if err := cur.Decode(&mp); err != nil {
			return nil, fmt.Errorf("decode permission: %w", err)
		}
		perms = append(perms, *mp.toDomain())
	}
	return perms, cur.Err()
}

func (r *PermissionRepository) Update(ctx context.Context, permission *domain.Permission) (*domain.Permission, error) {
	oid, err := primitive.ObjectIDFromHex(permission.ID)
	if err != nil {
		return nil, domain.ErrPermissionNotFound
	}

	doc := mongoPermission{
		ID:          oid,
		Resource:    permission.Resource,
		Action:      permission.Action,
		Name:        permission.Name,
		Description: permission.Description,
		CreatedAt:   permission.CreatedAt,
		UpdatedAt:   permission.UpdatedAt,
	}

	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": oid}, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrDuplicatePermission
		}
		return nil, fmt.Errorf("update permission: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, domain.ErrPermissionNotFound
	}
	return permission, nil
}

func (r *PermissionRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrPermissionNotFound
	}

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete permission: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrPermissionNotFound
	}
	return nil
}

// EnsureIndexes creates the compound unique index on (resource, action).
func (r *PermissionRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "resource", Value: 1}, {Key: "action", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}
