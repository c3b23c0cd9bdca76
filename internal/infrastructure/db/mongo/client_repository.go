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

const clientsCollection = "clientsv2"

// ClientRepository stores clients with their notes and login details embedded.
type ClientRepository struct {
	pool *Pool
}

func NewClientRepository(pool *Pool) *ClientRepository {
	return &ClientRepository{pool: pool}
}

type noteDoc struct {
	ID        primitive.ObjectID `bson:"_id"`
	Title     string             `bson:"title"`
	Content   string             `bson:"content"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

type loginDetailDoc struct {
	ID       primitive.ObjectID `bson:"_id"`
	Label    string             `bson:"label"`
	URL      string             `bson:"url,omitempty"`
	Username string             `bson:"username,omitempty"`
	Password string             `bson:"password,omitempty"`
}

type clientDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Name         string             `bson:"name"`
	Email        string             `bson:"email,omitempty"`
	Phone        string             `bson:"phone,omitempty"`
	Website      string             `bson:"website,omitempty"`
	Group        string             `bson:"group,omitempty"`
	Notes        []noteDoc          `bson:"notes"`
	LoginDetails []loginDetailDoc   `bson:"loginDetails"`
	CreatedAt    time.Time          `bson:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt"`
}

func newNoteDoc(n domain.Note) noteDoc {
	return noteDoc{
		ID:        embeddedID(n.ID),
		Title:     n.Title,
		Content:   n.Content,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
}

func newLoginDetailDocs(in []domain.LoginDetail) []loginDetailDoc {
	out := make([]loginDetailDoc, len(in))
	for i, l := range in {
		out[i] = loginDetailDoc{
			ID:       embeddedID(l.ID),
			Label:    l.Label,
			URL:      l.URL,
			Username: l.Username,
			Password: l.Password,
		}
	}
	return out
}

func (d *clientDoc) toDomain() *domain.Client {
	c := &domain.Client{
		ID:           d.ID.Hex(),
		Name:         d.Name,
		Email:        d.Email,
		Phone:        d.Phone,
		Website:      d.Website,
		Group:        d.Group,
		Notes:        make([]domain.Note, len(d.Notes)),
		LoginDetails: make([]domain.LoginDetail, len(d.LoginDetails)),
		CreatedAt:    d.CreatedAt.UTC(),
		UpdatedAt:    d.UpdatedAt.UTC(),
	}
	for i, n := range d.Notes {
		c.Notes[i] = domain.Note{
			ID:        n.ID.Hex(),
			Title:     n.Title,
			Content:   n.Content,
			CreatedAt: n.CreatedAt.UTC(),
			UpdatedAt: n.UpdatedAt.UTC(),
		}
	}
	for i, l := range d.LoginDetails {
		c.LoginDetails[i] = domain.LoginDetail{
			ID:       l.ID.Hex(),
			Label:    l.Label,
			URL:      l.URL,
			Username: l.Username,
			Password: l.Password,
		}
	}
	return c
}

func clientSortSpec(s domain.ClientSort) bson.D {
	switch s {
	case domain.SortClientsByNameDesc:
		return bson.D{{Key: "name", Value: -1}}
	case domain.SortClientsByCreatedAt:
		return bson.D{{Key: "createdAt", Value: 1}}
	case domain.SortClientsByCreatedAtDesc:
		return bson.D{{Key: "createdAt", Value: -1}}
	default:
		return bson.D{{Key: "name", Value: 1}}
	}
}

func (r *ClientRepository) List(ctx context.Context, sort domain.ClientSort) ([]*domain.Client, error) {
	coll, err := r.pool.Collection(ctx, clientsCollection)
	if err != nil {
		return nil, err
	}

	cur, err := coll.Find(ctx, bson.M{}, options.Find().SetSort(clientSortSpec(sort)))
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}

	var docs []clientDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode clients: %w", err)
	}

	clients := make([]*domain.Client, len(docs))
	for i := range docs {
		clients[i] = docs[i].toDomain()
	}
	return clients, nil
}

func (r *ClientRepository) FindByID(ctx context.Context, id string) (*domain.Client, error) {
	oid, err := parseID(id, domain.ErrClientNotFound)
	if err != nil {
		return nil, err
	}
	coll, err := r.pool.Collection(ctx, clientsCollection)
	if err != nil {
		return nil, err
	}

	var doc clientDoc
	if err := coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrClientNotFound
		}
		return nil, fmt.Errorf("find client: %w", err)
	}
	return doc.toDomain(), nil
}

// FindByName matches the exact stored name, the same key the unique index uses.
func (r *ClientRepository) FindByName(ctx context.Context, name string) (*domain.Client, error) {
	coll, err := r.pool.Collection(ctx, clientsCollection)
	if err != nil {
		return nil, err
	}

	var doc clientDoc
	if err := coll.FindOne(ctx, bson.M{"name": name}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrClientNotFound
		}
		return nil, fmt.Errorf("find client by name: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *ClientRepository) Create(ctx context.Context, c *domain.Client) (*domain.Client, error) {
	coll, err := r.pool.Collection(ctx, clientsCollection)
	if err != nil {
		return nil, err
	}

	doc := clientDoc{
		Name:         c.Name,
		Email:        c.Email,
		Phone:        c.Phone,
		Website:      c.Website,
		Group:        c.Group,
		Notes:        make([]noteDoc, len(c.Notes)),
		LoginDetails: newLoginDetailDocs(c.LoginDetails),
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
	for i, n := range c.Notes {
		doc.Notes[i] = newNoteDoc(n)
	}

	res, err := coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrClientExists
		}
		return nil, fmt.Errorf("insert client: %w", err)
	}
	doc.ID, _ = res.InsertedID.(primitive.ObjectID)
	return doc.toDomain(), nil
}

// Update replaces the client's own fields and login details. Notes are only
// changed through the note operations.
func (r *ClientRepository) Update(ctx context.Context, c *domain.Client) (*domain.Client, error) {
	oid, err := parseID(c.ID, domain.ErrClientNotFound)
	if err != nil {
		return nil, err
	}

	update := bson.M{"$set": bson.M{
		"name":         c.Name,
		"email":        c.Email,
		"phone":        c.Phone,
		"website":      c.Website,
		"group":        c.Group,
		"loginDetails": newLoginDetailDocs(c.LoginDetails),
		"updatedAt":    c.UpdatedAt,
	}}
	updated, err := r.findAndUpdate(ctx, bson.M{"_id": oid}, update)
	if mongo.IsDuplicateKeyError(err) {
		return nil, domain.ErrClientExists
	}
	return updated, err
}

func (r *ClientRepository) Delete(ctx context.Context, id string) error {
	oid, err := parseID(id, domain.ErrClientNotFound)
	if err != nil {
		return err
	}
	coll, err := r.pool.Collection(ctx, clientsCollection)
	if err != nil {
		return err
	}

	res, err := coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrClientNotFound
	}
	return nil
}

func (r *ClientRepository) AddNote(ctx context.Context, clientID string, note domain.Note) (*domain.Client, error) {
	oid, err := parseID(clientID, domain.ErrClientNotFound)
	if err != nil {
		return nil, err
	}

	update := bson.M{
		"$push": bson.M{"notes": newNoteDoc(note)},
		"$set":  bson.M{"updatedAt": note.UpdatedAt},
	}
	return r.findAndUpdate(ctx, bson.M{"_id": oid}, update)
}

func (r *ClientRepository) UpdateNote(ctx context.Context, clientID string, note domain.Note) (*domain.Client, error) {
	oid, err := parseID(clientID, domain.ErrClientNotFound)
	if err != nil {
		return nil, err
	}
	nid, err := parseID(note.ID, domain.ErrNoteNotFound)
	if err != nil {
		return nil, err
	}

	filter := bson.M{"_id": oid, "notes._id": nid}
	update := bson.M{"$set": bson.M{
		"notes.$.title":     note.Title,
		"notes.$.content":   note.Content,
		"notes.$.updatedAt": note.UpdatedAt,
		"updatedAt":         note.UpdatedAt,
	}}
	updated, err := r.findAndUpdate(ctx, filter, update)
	if errors.Is(err, domain.ErrClientNotFound) {
		return nil, r.noteMiss(ctx, oid)
	}
	return updated, err
}

func (r *ClientRepository) DeleteNote(ctx context.Context, clientID, noteID string, at time.Time) (*domain.Client, error) {
	oid, err := parseID(clientID, domain.ErrClientNotFound)
	if err != nil {
		return nil, err
	}
	nid, err := parseID(noteID, domain.ErrNoteNotFound)
	if err != nil {
		return nil, err
	}

	filter := bson.M{"_id": oid, "notes._id": nid}
	update := bson.M{
		"$pull": bson.M{"notes": bson.M{"_id": nid}},
		"$set":  bson.M{"updatedAt": at},
	}
	updated, err := r.findAndUpdate(ctx, filter, update)
	if errors.Is(err, domain.ErrClientNotFound) {
		return nil, r.noteMiss(ctx, oid)
	}
	return updated, err
}

// noteMiss tells apart a missing client from a missing note after a filtered
// update matched nothing.
func (r *ClientRepository) noteMiss(ctx context.Context, clientID primitive.ObjectID) error {
	coll, err := r.pool.Collection(ctx, clientsCollection)
	if err != nil {
		return err
	}
	n, err := coll.CountDocuments(ctx, bson.M{"_id": clientID}, options.Count().SetLimit(1))
	if err != nil {
		return fmt.Errorf("count clients: %w", err)
	}
	if n == 0 {
		return domain.ErrClientNotFound
	}
	return domain.ErrNoteNotFound
}

func (r *ClientRepository) findAndUpdate(ctx context.Context, filter, update bson.M) (*domain.Client, error) {
	coll, err := r.pool.Collection(ctx, clientsCollection)
	if err != nil {
		return nil, err
	}

	var doc clientDoc
	if err := coll.FindOneAndUpdate(ctx, filter, update, returnAfter()).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrClientNotFound
		}
		return nil, fmt.Errorf("update client: %w", err)
	}
	return doc.toDomain(), nil
}

// EnsureIndexes creates the unique client name index.
func (r *ClientRepository) EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(clientsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
