package store

import (
	"context"
	"errors"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"muniboard-be/models"
)

// Mongo repositories are the swappable real persistence behind the same
// interfaces the snapshot store implements.

type MongoIssueRepository struct {
	col *mongo.Collection
}

type MongoUserRepository struct {
	col *mongo.Collection
}

type MongoContractorRepository struct {
	col *mongo.Collection
}

func NewMongoIssueRepository(db *mongo.Database) *MongoIssueRepository {
	return &MongoIssueRepository{col: db.Collection("issues")}
}

func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{col: db.Collection("users")}
}

func NewMongoContractorRepository(db *mongo.Database) *MongoContractorRepository {
	return &MongoContractorRepository{col: db.Collection("contractors")}
}

func nextID(ctx context.Context, col *mongo.Collection) (int, error) {
	var doc struct {
		ID int `bson:"_id"`
	}
	opts := options.FindOne().SetSort(bson.D{{Key: "_id", Value: -1}})
	err := col.FindOne(ctx, bson.M{}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	return doc.ID + 1, nil
}

func (r *MongoIssueRepository) List(ctx context.Context) ([]models.Issue, error) {
	cursor, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var issues []models.Issue
	if err := cursor.All(ctx, &issues); err != nil {
		return nil, err
	}
	return issues, nil
}

func (r *MongoIssueRepository) Get(ctx context.Context, id int) (*models.Issue, error) {
	var issue models.Issue
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&issue)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrIssueNotFound
	}
	if err != nil {
		return nil, err
	}
	return &issue, nil
}

func (r *MongoIssueRepository) Create(ctx context.Context, issue *models.Issue) error {
	id, err := nextID(ctx, r.col)
	if err != nil {
		return err
	}
	issue.ID = id
	_, err = r.col.InsertOne(ctx, issue)
	return err
}

func (r *MongoIssueRepository) Update(ctx context.Context, issue models.Issue) (*models.Issue, error) {
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": issue.ID}, issue)
	if err != nil {
		return nil, err
	}
	if res.MatchedCount == 0 {
		return nil, ErrIssueNotFound
	}
	return &issue, nil
}

func (r *MongoUserRepository) List(ctx context.Context) ([]models.User, error) {
	cursor, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *MongoUserRepository) Get(ctx context.Context, id int) (*models.User, error) {
	var u models.User
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// emailFilter matches emails case-insensitively, like the snapshot store's
// fold-equal lookup. Emails are stored as entered.
func emailFilter(email string) bson.M {
	return bson.M{"email": primitive.Regex{Pattern: "^" + regexp.QuoteMeta(email) + "$", Options: "i"}}
}

func (r *MongoUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := r.col.FindOne(ctx, emailFilter(email)).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *MongoUserRepository) Create(ctx context.Context, u *models.User) error {
	count, err := r.col.CountDocuments(ctx, emailFilter(u.Email))
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrEmailTaken
	}
	id, err := nextID(ctx, r.col)
	if err != nil {
		return err
	}
	u.ID = id
	_, err = r.col.InsertOne(ctx, u)
	return err
}

func (r *MongoUserRepository) Update(ctx context.Context, u models.User) (*models.User, error) {
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": u.ID}, u)
	if err != nil {
		return nil, err
	}
	if res.MatchedCount == 0 {
		return nil, ErrUserNotFound
	}
	return &u, nil
}

func (r *MongoUserRepository) Delete(ctx context.Context, id int) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *MongoContractorRepository) List(ctx context.Context) ([]models.Contractor, error) {
	cursor, err := r.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var links []models.Contractor
	if err := cursor.All(ctx, &links); err != nil {
		return nil, err
	}
	return links, nil
}

func (r *MongoContractorRepository) Link(ctx context.Context, userID int) (*models.Contractor, error) {
	count, err := r.col.CountDocuments(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrAlreadyLinked
	}
	id, err := nextID(ctx, r.col)
	if err != nil {
		return nil, err
	}
	link := models.Contractor{ID: id, UserID: userID}
	if _, err := r.col.InsertOne(ctx, link); err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *MongoContractorRepository) Unlink(ctx context.Context, userID int) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"user_id": userID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrLinkNotFound
	}
	return nil
}

// SeedMongo fills empty collections from the snapshot so a fresh database
// starts with the same dataset the in-memory store loads.
func SeedMongo(ctx context.Context, db *mongo.Database, data Dataset) error {
	seed := func(name string, docs []interface{}) error {
		col := db.Collection(name)
		count, err := col.CountDocuments(ctx, bson.M{})
		if err != nil {
			return err
		}
		if count > 0 || len(docs) == 0 {
			return nil
		}
		_, err = col.InsertMany(ctx, docs)
		return err
	}

	issues := make([]interface{}, len(data.Issues))
	for i, v := range data.Issues {
		issues[i] = v
	}
	users := make([]interface{}, len(data.Users))
	for i, v := range data.Users {
		users[i] = v
	}
	contractors := make([]interface{}, len(data.Contractors))
	for i, v := range data.Contractors {
		contractors[i] = v
	}

	if err := seed("issues", issues); err != nil {
		return err
	}
	if err := seed("users", users); err != nil {
		return err
	}
	return seed("contractors", contractors)
}
