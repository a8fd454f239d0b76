package mongo

import (
	"context"
	"fmt"
	"strings"

	"github.com/haguru/kakashi/internal/interfaces"
	"github.com/haguru/kakashi/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	mongoClient "github.com/haguru/kakashi/pkg/databases/mongo"
	mongosdk "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	MAXLENGTH_USERNAME = 64 // Maximum length for username
)

// mongoPrincipal is the BSON shape of a principal document.
type mongoPrincipal struct {
	ID       primitive.ObjectID `bson:"_id,omitempty"`
	Username string             `bson:"username"`
	Password string             `bson:"password"`
}

// MongoPrincipalRepository implements PrincipalRepository on the generic
// DBClient, bound to a single collection (users or admins). Two instances
// give the two disjoint namespaces.
type MongoPrincipalRepository struct {
	dbClient   interfaces.DBClient
	collection string
}

// NewMongoPrincipalRepository creates a repository over the given collection.
func NewMongoPrincipalRepository(dbClient interfaces.DBClient, collection string) (interfaces.PrincipalRepository, error) {
	if dbClient == nil {
		return nil, fmt.Errorf("dbClient cannot be nil")
	}
	if _, ok := dbClient.(*mongoClient.MongoDBClient); !ok {
		return nil, fmt.Errorf("dbClient must be a MongoDB client")
	}
	if collection == "" {
		return nil, fmt.Errorf("collection cannot be empty")
	}
	return &MongoPrincipalRepository{dbClient: dbClient, collection: collection}, nil
}

// AddPrincipal saves a new principal. The unique index on username makes the
// insert an atomic insert-if-absent; a duplicate fails without mutating the
// store.
func (r *MongoPrincipalRepository) AddPrincipal(ctx context.Context, principal models.Principal) (string, error) {
	doc := mongoPrincipal{
		ID:       primitive.NewObjectID(),
		Username: principal.Username,
		Password: principal.HashedPassword,
	}

	insertedID, err := r.dbClient.InsertOne(ctx, r.collection, doc)
	if err != nil {
		if strings.Contains(err.Error(), "E11000 duplicate key error") { // MongoDB duplicate key error
			return "", fmt.Errorf("username '%s' already exists", principal.Username)
		}
		return "", fmt.Errorf("failed to add principal to MongoDB: %w", err)
	}

	objID, ok := insertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("failed to assert inserted ID to ObjectID")
	}
	return objID.Hex(), nil
}

// GetPrincipalByUsername retrieves a principal by username. Returns
// (nil, nil) when no document matches.
func (r *MongoPrincipalRepository) GetPrincipalByUsername(ctx context.Context, username string) (*models.Principal, error) {
	if len(username) == 0 || len(username) > MAXLENGTH_USERNAME {
		return nil, fmt.Errorf("invalid username: must be between 1 and %d characters", MAXLENGTH_USERNAME)
	}

	return r.findOne(ctx, bson.M{"username": username})
}

// GetPrincipalByID retrieves a principal by its ObjectID hex. A malformed id
// cannot match any document and reports (nil, nil).
func (r *MongoPrincipalRepository) GetPrincipalByID(ctx context.Context, id string) (*models.Principal, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	return r.findOne(ctx, bson.M{"_id": objID})
}

func (r *MongoPrincipalRepository) findOne(ctx context.Context, filter bson.M) (*models.Principal, error) {
	var doc mongoPrincipal
	err := r.dbClient.FindOne(ctx, r.collection, filter, &doc)
	if err != nil {
		if err == mongosdk.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get principal from MongoDB: %w", err)
	}
	if doc.ID.IsZero() {
		return nil, nil
	}

	return &models.Principal{
		ID:             doc.ID.Hex(),
		Username:       doc.Username,
		HashedPassword: doc.Password,
	}, nil
}

// EnsureIndices creates the unique index on username for this collection.
func (r *MongoPrincipalRepository) EnsureIndices(ctx context.Context) error {
	indexModel := mongosdk.IndexModel{
		Keys:    bson.M{"username": 1},
		Options: options.Index().SetUnique(true),
	}
	return r.dbClient.EnsureSchema(ctx, r.collection, indexModel)
}

// Close disconnects the MongoDB client.
func (r *MongoPrincipalRepository) Close(ctx context.Context) error {
	return r.dbClient.Disconnect(ctx)
}
