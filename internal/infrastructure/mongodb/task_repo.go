package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ccarlsson/todo-app/internal/domain"
)

type taskDocument struct {
	ID          string     `bson:"_id"`
	UserID      string     `bson:"user_id"`
	Title       string     `bson:"title"`
	Description *string    `bson:"description,omitempty"`
	DueDate     *time.Time `bson:"due_date,omitempty"`
	Priority    *string    `bson:"priority,omitempty"`
	Status      string     `bson:"status"`
	CreatedAt   time.Time  `bson:"created_at"`
	UpdatedAt   time.Time  `bson:"updated_at"`
}

type TaskRepository struct {
	tasks *mongo.Collection
}

func NewTaskRepository(db *DB) *TaskRepository {
	return &TaskRepository{tasks: db.database.Collection(tasksCollection)}
}

func (r *TaskRepository) Create(ctx context.Context, task *domain.Task) (string, error) {
	if _, err := r.tasks.InsertOne(ctx, toDocument(task)); err != nil {
		return "", fmt.Errorf("insert task: %w", err)
	}
	return task.ID, nil
}

func (r *TaskRepository) GetByUser(ctx context.Context, userID string) ([]*domain.Task, error) {
	cursor, err := r.tasks.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("find tasks: %w", err)
	}
	defer cursor.Close(ctx)

	var out []*domain.Task
	for cursor.Next(ctx) {
		var doc taskDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode task: %w", err)
		}
		out = append(out, toDomain(&doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}
	return out, nil
}

func (r *TaskRepository) GetByID(ctx context.Context, taskID, userID string) (*domain.Task, error) {
	var doc taskDocument
	err := r.tasks.FindOne(ctx, bson.M{"_id": taskID, "user_id": userID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("find task: %w", err)
	}
	return toDomain(&doc), nil
}

func (r *TaskRepository) Exists(ctx context.Context, taskID string) (bool, error) {
	n, err := r.tasks.CountDocuments(ctx, bson.M{"_id": taskID})
	if err != nil {
		return false, fmt.Errorf("count task: %w", err)
	}
	return n > 0, nil
}

// Update replaces the whole document; the replace is atomic per document,
// so concurrent updates to the same task resolve last-write-wins.
func (r *TaskRepository) Update(ctx context.Context, task *domain.Task) error {
	filter := bson.M{"_id": task.ID, "user_id": task.UserID}
	if _, err := r.tasks.ReplaceOne(ctx, filter, toDocument(task)); err != nil {
		return fmt.Errorf("replace task: %w", err)
	}
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, taskID, userID string) error {
	// Deleting a missing or foreign (taskID, userID) pair matches zero
	// documents and is deliberately not an error.
	if _, err := r.tasks.DeleteOne(ctx, bson.M{"_id": taskID, "user_id": userID}); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

func toDocument(t *domain.Task) *taskDocument {
	doc := &taskDocument{
		ID:          t.ID,
		UserID:      t.UserID,
		Title:       t.Title,
		Description: t.Description,
		DueDate:     t.DueDate,
		Status:      string(t.Status),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if t.Priority != nil {
		p := string(*t.Priority)
		doc.Priority = &p
	}
	return doc
}

func toDomain(doc *taskDocument) *domain.Task {
	t := &domain.Task{
		ID:          doc.ID,
		UserID:      doc.UserID,
		Title:       doc.Title,
		Description: doc.Description,
		DueDate:     doc.DueDate,
		Status:      domain.Status(doc.Status),
		CreatedAt:   doc.CreatedAt,
		UpdatedAt:   doc.UpdatedAt,
	}
	if doc.Priority != nil {
		p := domain.Priority(*doc.Priority)
		t.Priority = &p
	}
	return t
}
