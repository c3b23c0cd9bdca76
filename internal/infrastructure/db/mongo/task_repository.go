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

const tasksCollection = "tasks"

type TaskRepository struct {
	pool *Pool
}

func NewTaskRepository(pool *Pool) *TaskRepository {
	return &TaskRepository{pool: pool}
}

type taskDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	Description string             `bson:"description,omitempty"`
	Completed   bool               `bson:"completed"`
	Priority    string             `bson:"priority"`
	Status      string             `bson:"status"`
	DueDate     *time.Time         `bson:"dueDate,omitempty"`
	CMS         string             `bson:"cms,omitempty"`
	WebsiteURL  string             `bson:"websiteUrl,omitempty"`
	StagingURL  string             `bson:"stagingUrl,omitempty"`
	Price       float64            `bson:"price,omitempty"`
	Currency    string             `bson:"currency,omitempty"`
	IsPaid      bool               `bson:"isPaid"`
	ClientID    string             `bson:"clientId,omitempty"`
	Group       string             `bson:"group,omitempty"`
	AssignedTo  string             `bson:"assignedTo,omitempty"`
	CreatedBy   string             `bson:"createdBy,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func newTaskDoc(t *domain.Task) taskDoc {
	return taskDoc{
		Title:       t.Title,
		Description: t.Description,
		Completed:   t.Completed,
		Priority:    string(t.Priority),
		Status:      string(t.Status),
		DueDate:     t.DueDate,
		CMS:         string(t.CMS),
		WebsiteURL:  t.WebsiteURL,
		StagingURL:  t.StagingURL,
		Price:       t.Price,
		Currency:    t.Currency,
		IsPaid:      t.IsPaid,
		ClientID:    t.ClientID,
		Group:       t.Group,
		AssignedTo:  t.AssignedTo,
		CreatedBy:   t.CreatedBy,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func (d *taskDoc) toDomain() *domain.Task {
	t := &domain.Task{
		ID:          d.ID.Hex(),
		Title:       d.Title,
		Description: d.Description,
		Completed:   d.Completed,
		Priority:    domain.Priority(d.Priority),
		Status:      domain.TaskStatus(d.Status),
		CMS:         domain.CMS(d.CMS),
		WebsiteURL:  d.WebsiteURL,
		StagingURL:  d.StagingURL,
		Price:       d.Price,
		Currency:    d.Currency,
		IsPaid:      d.IsPaid,
		ClientID:    d.ClientID,
		Group:       d.Group,
		AssignedTo:  d.AssignedTo,
		CreatedBy:   d.CreatedBy,
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
	if d.DueDate != nil {
		due := d.DueDate.UTC()
		t.DueDate = &due
	}
	return t
}

func taskFilter(f domain.TaskFilter) bson.M {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = string(f.Status)
	}
	if f.AssignedTo != "" {
		filter["assignedTo"] = f.AssignedTo
	}
	if f.ClientID != "" {
		filter["clientId"] = f.ClientID
	}
	if f.Completed != nil {
		filter["completed"] = *f.Completed
	}
	return filter
}

// List returns matching tasks, newest first.
func (r *TaskRepository) List(ctx context.Context, f domain.TaskFilter) ([]*domain.Task, error) {
	coll, err := r.pool.Collection(ctx, tasksCollection)
	if err != nil {
		return nil, err
	}

	cur, err := coll.Find(ctx, taskFilter(f), options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	var docs []taskDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode tasks: %w", err)
	}

	tasks := make([]*domain.Task, len(docs))
	for i := range docs {
		tasks[i] = docs[i].toDomain()
	}
	return tasks, nil
}

func (r *TaskRepository) FindByID(ctx context.Context, id string) (*domain.Task, error) {
	oid, err := parseID(id, domain.ErrTaskNotFound)
	if err != nil {
		return nil, err
	}
	coll, err := r.pool.Collection(ctx, tasksCollection)
	if err != nil {
		return nil, err
	}

	var doc taskDoc
	if err := coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("find task: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *TaskRepository) Create(ctx context.Context, t *domain.Task) (*domain.Task, error) {
	coll, err := r.pool.Collection(ctx, tasksCollection)
	if err != nil {
		return nil, err
	}

	doc := newTaskDoc(t)
	res, err := coll.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	doc.ID, _ = res.InsertedID.(primitive.ObjectID)
	return doc.toDomain(), nil
}

// Update overwrites every editable field; createdBy and createdAt are kept.
func (r *TaskRepository) Update(ctx context.Context, t *domain.Task) (*domain.Task, error) {
	oid, err := parseID(t.ID, domain.ErrTaskNotFound)
	if err != nil {
		return nil, err
	}
	coll, err := r.pool.Collection(ctx, tasksCollection)
	if err != nil {
		return nil, err
	}

	doc := newTaskDoc(t)
	set := bson.M{
		"title":       doc.Title,
		"description": doc.Description,
		"completed":   doc.Completed,
		"priority":    doc.Priority,
		"status":      doc.Status,
		"dueDate":     doc.DueDate,
		"cms":         doc.CMS,
		"websiteUrl":  doc.WebsiteURL,
		"stagingUrl":  doc.StagingURL,
		"price":       doc.Price,
		"currency":    doc.Currency,
		"isPaid":      doc.IsPaid,
		"clientId":    doc.ClientID,
		"group":       doc.Group,
		"assignedTo":  doc.AssignedTo,
		"updatedAt":   doc.UpdatedAt,
	}

	var out taskDoc
	if err := coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, returnAfter()).Decode(&out); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("update task: %w", err)
	}
	return out.toDomain(), nil
}

func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	oid, err := parseID(id, domain.ErrTaskNotFound)
	if err != nil {
		return err
	}
	coll, err := r.pool.Collection(ctx, tasksCollection)
	if err != nil {
		return err
	}

	res, err := coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

// EnsureIndexes creates the lookup indexes used by task filters.
func (r *TaskRepository) EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "assignedTo", Value: 1}}},
		{Keys: bson.D{{Key: "clientId", Value: 1}}},
	}
	_, err := db.Collection(tasksCollection).Indexes().CreateMany(ctx, indexes)
	return err
}
