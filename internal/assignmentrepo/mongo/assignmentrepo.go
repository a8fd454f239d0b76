package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/haguru/kakashi/internal/collections"
	"github.com/haguru/kakashi/internal/interfaces"
	"github.com/haguru/kakashi/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	mongoClient "github.com/haguru/kakashi/pkg/databases/mongo"
	mongosdk "go.mongodb.org/mongo-driver/mongo"
)

// mongoAssignment is the BSON shape of an assignment document.
type mongoAssignment struct {
	ID       primitive.ObjectID `bson:"_id,omitempty"`
	UserID   string             `bson:"user_id"`
	Task     string             `bson:"task"`
	Admin    string             `bson:"admin"`
	Status   string             `bson:"status"`
	DateTime time.Time          `bson:"date_time"`
}

// MongoAssignmentRepository implements AssignmentRepository using the generic DBClient.
type MongoAssignmentRepository struct {
	dbClient interfaces.DBClient
}

// NewMongoAssignmentRepository creates a new MongoDB assignment repository.
func NewMongoAssignmentRepository(dbClient interfaces.DBClient) (interfaces.AssignmentRepository, error) {
	if dbClient == nil {
		return nil, fmt.Errorf("dbClient cannot be nil")
	}
	if _, ok := dbClient.(*mongoClient.MongoDBClient); !ok {
		return nil, fmt.Errorf("dbClient must be a MongoDB client")
	}
	return &MongoAssignmentRepository{dbClient: dbClient}, nil
}

// AddAssignment saves a new assignment and returns its id.
func (r *MongoAssignmentRepository) AddAssignment(ctx context.Context, assignment models.Assignment) (string, error) {
	doc := mongoAssignment{
		ID:       primitive.NewObjectID(),
		UserID:   assignment.UserID,
		Task:     assignment.Task,
		Admin:    assignment.Admin,
		Status:   string(assignment.Status),
		DateTime: assignment.DateTime,
	}

	insertedID, err := r.dbClient.InsertOne(ctx, collections.Assignments, doc)
	if err != nil {
		return "", fmt.Errorf("failed to add assignment to MongoDB: %w", err)
	}

	objID, ok := insertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("failed to assert inserted ID to ObjectID")
	}
	return objID.Hex(), nil
}

// GetAssignmentByID retrieves an assignment by its ObjectID hex. Returns
// (nil, nil) when no document matches; a malformed id cannot match anything.
func (r *MongoAssignmentRepository) GetAssignmentByID(ctx context.Context, id string) (*models.Assignment, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	var doc mongoAssignment
	err = r.dbClient.FindOne(ctx, collections.Assignments, bson.M{"_id": objID}, &doc)
	if err != nil {
		if err == mongosdk.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get assignment from MongoDB: %w", err)
	}
	if doc.ID.IsZero() {
		return nil, nil
	}

	assignment := doc.toModel()
	return &assignment, nil
}

// ListByAdmin returns every assignment addressed to the given admin id, in
// store-native order.
func (r *MongoAssignmentRepository) ListByAdmin(ctx context.Context, adminID string) ([]models.Assignment, error) {
	docs, err := r.dbClient.FindMany(ctx, collections.Assignments, bson.M{"admin": adminID})
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments from MongoDB: %w", err)
	}

	assignments := make([]models.Assignment, 0, len(docs))
	for _, doc := range docs {
		docMap, ok := doc.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("unexpected document type from MongoDB cursor")
		}
		assignments = append(assignments, assignmentFromMap(docMap))
	}

	return assignments, nil
}

// UpdateStatus sets the status of the assignment with the given id.
func (r *MongoAssignmentRepository) UpdateStatus(ctx context.Context, id string, status models.Status) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid assignment id: %s", id)
	}

	update := bson.M{"$set": bson.M{"status": string(status)}}
	_, err = r.dbClient.UpdateOne(ctx, collections.Assignments, bson.M{"_id": objID}, update)
	if err != nil {
		return fmt.Errorf("failed to update assignment status in MongoDB: %w", err)
	}
	return nil
}

// EnsureIndices creates the index on the admin field used by ListByAdmin.
func (r *MongoAssignmentRepository) EnsureIndices(ctx context.Context) error {
	indexModel := mongosdk.IndexModel{
		Keys: bson.M{"admin": 1},
	}
	return r.dbClient.EnsureSchema(ctx, collections.Assignments, indexModel)
}

// Close disconnects the MongoDB client.
func (r *MongoAssignmentRepository) Close(ctx context.Context) error {
	return r.dbClient.Disconnect(ctx)
}

func (d mongoAssignment) toModel() models.Assignment {
	return models.Assignment{
		ID:       d.ID.Hex(),
		UserID:   d.UserID,
		Task:     d.Task,
		Admin:    d.Admin,
		Status:   models.Status(d.Status),
		DateTime: d.DateTime,
	}
}

// assignmentFromMap converts a cursor document into the model, tolerating
// the driver's BSON primitive types for id and timestamp.
func assignmentFromMap(doc map[string]interface{}) models.Assignment {
	assignment := models.Assignment{}

	if objID, ok := doc["_id"].(primitive.ObjectID); ok {
		assignment.ID = objID.Hex()
	}
	if userID, ok := doc["user_id"].(string); ok {
		assignment.UserID = userID
	}
	if task, ok := doc["task"].(string); ok {
		assignment.Task = task
	}
	if admin, ok := doc["admin"].(string); ok {
		assignment.Admin = admin
	}
	if status, ok := doc["status"].(string); ok {
		assignment.Status = models.Status(status)
	}
	switch dt := doc["date_time"].(type) {
	case primitive.DateTime:
		assignment.DateTime = dt.Time()
	case time.Time:
		assignment.DateTime = dt
	}

	return assignment
}
