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

	"github.com/taskdesk/taskdesk-api/internal/core/domain"
)

const groupsCollection = "groups"

// caseInsensitive compares strings ignoring case (strength 2).
var caseInsensitive = &options.Collation{Locale: "en", Strength: 2}

// GroupRepository stores groups. Names are unique under a case-insensitive
// collation, so "Acme" and "acme" collide. Lookups and sorting use the same
// collation so they agree with the index.
type GroupRepository struct {
	pool *Pool
}

func NewGroupRepository(pool *Pool) *GroupRepository {
	return &GroupRepository{pool: pool}
}

type groupDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	CreatedAt time.Time          `bson:"createdAt"`
}

func (d *groupDoc) toDomain() *domain.Group {
	return &domain.Group{ID: d.ID.Hex(), Name: d.Name, CreatedAt: d.CreatedAt.UTC()}
}

func (r *GroupRepository) List(ctx context.Context) ([]*domain.Group, error) {
	coll, err := r.pool.Collection(ctx, groupsCollection)
	if err != nil {
		return nil, err
	}

	cur, err := coll.Find(ctx, bson.M{}, options.Find().
		SetSort(bson.D{{Key: "name", Value: 1}}).
		SetCollation(caseInsensitive))
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}

	var docs []groupDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode groups: %w", err)
	}

	groups := make([]*domain.Group, len(docs))
	for i := range docs {
		groups[i] = docs[i].toDomain()
	}
	return groups, nil
}

func (r *GroupRepository) FindByName(ctx context.Context, name string) (*domain.Group, error) {
	coll, err := r.pool.Collection(ctx, groupsCollection)
	if err != nil {
		return nil, err
	}

	var doc groupDoc
	filter := bson.M{"name": strings.TrimSpace(name)}
	if err := coll.FindOne(ctx, filter, options.FindOne().SetCollation(caseInsensitive)).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrGroupNotFound
		}
		return nil, fmt.Errorf("find group: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *GroupRepository) Create(ctx context.Context, g *domain.Group) (*domain.Group, error) {
	coll, err := r.pool.Collection(ctx, groupsCollection)
	if err != nil {
		return nil, err
	}

	doc := groupDoc{Name: strings.TrimSpace(g.Name), CreatedAt: g.CreatedAt}
	res, err := coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrGroupExists
		}
		return nil, fmt.Errorf("insert group: %w", err)
	}

	created := *g
	created.ID = insertedID(res)
	return &created, nil
}

func (r *GroupRepository) Delete(ctx context.Context, id string) error {
	oid, err := parseID(id, domain.ErrGroupNotFound)
	if err != nil {
		return err
	}
	coll, err := r.pool.Collection(ctx, groupsCollection)
	if err != nil {
		return err
	}

	res, err := coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete group: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrGroupNotFound
	}
	return nil
}

// EnsureIndexes creates the case-insensitive uniqueness index on name.
func (r *GroupRepository) EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(groupsCollection).Indexes().CreateOne(ctx, groupNameIndex())
	return err
}

func groupNameIndex() mongo.IndexModel {
	return mongo.IndexModel{
		Keys: bson.D{{Key: "name", Value: 1}},
		Options: options.Index().
			SetName("name_ci_unique").
			SetUnique(true).
			SetCollation(caseInsensitive),
	}
}
