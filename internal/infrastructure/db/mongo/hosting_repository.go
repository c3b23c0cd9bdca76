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

	"github.com/taskdesk/taskdesk-api/internal/core/domain"
)

const hostingCollection = "hostingservices"

type HostingRepository struct {
	pool *Pool
}

func NewHostingRepository(pool *Pool) *HostingRepository {
	return &HostingRepository{pool: pool}
}

type hostingDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	Domain    string             `bson:"domain,omitempty"`
	Provider  string             `bson:"provider,omitempty"`
	ClientID  string             `bson:"clientId,omitempty"`
	Price     float64            `bson:"price,omitempty"`
	Currency  string             `bson:"currency,omitempty"`
	StartDate time.Time          `bson:"startDate,omitempty"`
	EndDate   time.Time          `bson:"endDate"`
	Notes     string             `bson:"notes,omitempty"`
	CreatedBy string             `bson:"createdBy"`
	UpdatedBy string             `bson:"updatedBy"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func (d *hostingDoc) toDomain() *domain.HostingService {
	return &domain.HostingService{
		ID:        d.ID.Hex(),
		Name:      d.Name,
		Domain:    d.Domain,
		Provider:  d.Provider,
		ClientID:  d.ClientID,
		Price:     d.Price,
		Currency:  d.Currency,
		StartDate: d.StartDate.UTC(),
		EndDate:   d.EndDate.UTC(),
		Notes:     d.Notes,
		CreatedBy: d.CreatedBy,
		UpdatedBy: d.UpdatedBy,
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
}

var byEndDate = bson.D{{Key: "endDate", Value: 1}}

func (r *HostingRepository) List(ctx context.Context) ([]*domain.HostingService, error) {
	return r.find(ctx, bson.M{})
}

func (r *HostingRepository) ListEndingBefore(ctx context.Context, t time.Time) ([]*domain.HostingService, error) {
	return r.find(ctx, bson.M{"endDate": bson.M{"$lte": t.UTC()}})
}

func (r *HostingRepository) find(ctx context.Context, filter bson.M) ([]*domain.HostingService, error) {
	coll, err := r.pool.Collection(ctx, hostingCollection)
	if err != nil {
		return nil, err
	}

	cur, err := coll.Find(ctx, filter, options.Find().SetSort(byEndDate))
	if err != nil {
		return nil, fmt.Errorf("list hosting services: %w", err)
	}

	var docs []hostingDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode hosting services: %w", err)
	}

	out := make([]*domain.HostingService, len(docs))
	for i := range docs {
		out[i] = docs[i].toDomain()
	}
	return out, nil
}

func (r *HostingRepository) FindByID(ctx context.Context, id string) (*domain.HostingService, error) {
	oid, err := parseID(id, domain.ErrHostingNotFound)
	if err != nil {
		return nil, err
	}
	coll, err := r.pool.Collection(ctx, hostingCollection)
	if err != nil {
		return nil, err
	}

	var doc hostingDoc
	if err := coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrHostingNotFound
		}
		return nil, fmt.Errorf("find hosting service: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *HostingRepository) Create(ctx context.Context, h *domain.HostingService) (*domain.HostingService, error) {
	coll, err := r.pool.Collection(ctx, hostingCollection)
	if err != nil {
		return nil, err
	}

	doc := hostingDoc{
		Name:      h.Name,
		Domain:    h.Domain,
		Provider:  h.Provider,
		ClientID:  h.ClientID,
		Price:     h.Price,
		Currency:  h.Currency,
		StartDate: h.StartDate,
		EndDate:   h.EndDate,
		Notes:     h.Notes,
		CreatedBy: h.CreatedBy,
		UpdatedBy: h.UpdatedBy,
		CreatedAt: h.CreatedAt,
		UpdatedAt: h.UpdatedAt,
	}
	res, err := coll.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert hosting service: %w", err)
	}
	doc.ID, _ = res.InsertedID.(primitive.ObjectID)
	return doc.toDomain(), nil
}

// Update overwrites the editable fields and audit stamp; createdBy and
// createdAt are kept.
func (r *HostingRepository) Update(ctx context.Context, h *domain.HostingService) (*domain.HostingService, error) {
	oid, err := parseID(h.ID, domain.ErrHostingNotFound)
	if err != nil {
		return nil, err
	}
	coll, err := r.pool.Collection(ctx, hostingCollection)
	if err != nil {
		return nil, err
	}

	set := bson.M{
		"name":      h.Name,
		"domain":    h.Domain,
		"provider":  h.Provider,
		"clientId":  h.ClientID,
		"price":     h.Price,
		"currency":  h.Currency,
		"startDate": h.StartDate,
		"endDate":   h.EndDate,
		"notes":     h.Notes,
		"updatedBy": h.UpdatedBy,
		"updatedAt": h.UpdatedAt,
	}

	var doc hostingDoc
	if err := coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, returnAfter()).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrHostingNotFound
		}
		return nil, fmt.Errorf("update hosting service: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *HostingRepository) Delete(ctx context.Context, id string) error {
	oid, err := parseID(id, domain.ErrHostingNotFound)
	if err != nil {
		return err
	}
	coll, err := r.pool.Collection(ctx, hostingCollection)
	if err != nil {
		return err
	}

	res, err := coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete hosting service: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrHostingNotFound
	}
	return nil
}

// EnsureIndexes creates the endDate index used by renewal queries.
func (r *HostingRepository) EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(hostingCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: byEndDate,
	})
	return err
}
