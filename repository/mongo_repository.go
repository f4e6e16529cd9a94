package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/atlaslearn/atlas/backend/models"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const (
	usersCollection         = "users"
	refreshTokensCollection = "refresh_tokens"
	quizzesCollection       = "quizzes"
	interviewsCollection    = "interviews"
	chatMessagesCollection  = "chat_messages"
)

// MongoRepository stores every entity as a document in one database.
type MongoRepository struct {
	client *mongo.Client
	db     *mongo.Database
}

var _ Store = (*MongoRepository)(nil)

// OpenMongo connects to uri and verifies the connection with a ping.
func OpenMongo(ctx context.Context, uri, database string) (*MongoRepository, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	slog.Info("Connected to MongoDB", "database", database)
	return &MongoRepository{client: client, db: client.Database(database)}, nil
}

func (r *MongoRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, nil)
}

func (r *MongoRepository) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return r.client.Disconnect(ctx)
}

// Migrate creates the indexes the queries rely on. The unique email
// index is what turns a racing signup into ErrDuplicateEmail.
func (r *MongoRepository) Migrate(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		usersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		refreshTokensCollection: {
			{Keys: bson.D{{Key: "token", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "user_id", Value: 1}}},
			{Keys: bson.D{{Key: "expires_at", Value: 1}}, Options: options.Index().SetExpireAfterSeconds(0)},
		},
		quizzesCollection: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "timestamp", Value: -1}}},
			{Keys: bson.D{{Key: "email", Value: 1}}},
		},
		interviewsCollection: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "timestamp", Value: -1}}},
		},
		chatMessagesCollection: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
	}

	for name, idx := range indexes {
		if _, err := r.db.Collection(name).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", name, err)
		}
		slog.Info("Collection indexes ensured", "collection", name, "count", len(idx))
	}
	return nil
}

// User operations
func (r *MongoRepository) CreateUser(ctx context.Context, user *models.User) error {
	user.Prepare(time.Now())
	if _, err := r.db.Collection(usersCollection).InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateEmail
		}
		slog.Error("Failed to create user", "error", err)
		return fmt.Errorf("failed to create user: %w", err)
	}
	slog.Info("User created", "user_id", user.ID, "email", user.Email)
	return nil
}

func (r *MongoRepository) findUser(ctx context.Context, filter bson.D) (*models.User, error) {
	var user models.User
	if err := r.db.Collection(usersCollection).FindOne(ctx, filter).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *MongoRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := r.findUser(ctx, bson.D{{Key: "email", Value: email}})
	if err != nil {
		slog.Error("Failed to get user by email", "error", err, "email", email)
		return nil, err
	}
	return user, nil
}

func (r *MongoRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	user, err := r.findUser(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		slog.Error("Failed to get user by ID", "error", err, "user_id", id)
		return nil, err
	}
	return user, nil
}

func (r *MongoRepository) UpdateUserProfile(ctx context.Context, id, name, standard string) error {
	res, err := r.db.Collection(usersCollection).UpdateByID(ctx, id, bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "name", Value: name},
			{Key: "standard", Value: standard},
			{Key: "updatedAt", Value: time.Now()},
		}},
	})
	if err != nil {
		slog.Error("Failed to update user profile", "error", err, "user_id", id)
		return fmt.Errorf("failed to update user profile: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// MergeWeakTopics relies on $addToSet, which appends only unseen values
// and keeps the existing order, so concurrent merges stay lossless.
func (r *MongoRepository) MergeWeakTopics(ctx context.Context, userID string, topics []string) ([]string, error) {
	clean := models.MergeTopics(nil, topics)
	update := bson.D{
		{Key: "$addToSet", Value: bson.D{{Key: "weaktopics", Value: bson.D{{Key: "$each", Value: []string(clean)}}}}},
		{Key: "$set", Value: bson.D{{Key: "updatedAt", Value: time.Now()}}},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var user models.User
	err := r.db.Collection(usersCollection).FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: userID}}, update, opts).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		slog.Error("Failed to merge weak topics", "error", err, "user_id", userID)
		return nil, fmt.Errorf("failed to merge weak topics: %w", err)
	}
	return user.WeakTopics, nil
}

// Token operations
func (r *MongoRepository) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	if token.ID == "" {
		token.ID = models.NewID()
	}
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now()
	}
	if _, err := r.db.Collection(refreshTokensCollection).InsertOne(ctx, token); err != nil {
		slog.Error("Failed to create refresh token", "error", err)
		return err
	}
	return nil
}

func (r *MongoRepository) GetRefreshToken(ctx context.Context, tokenHash string) (*models.RefreshToken, error) {
	filter := bson.D{
		{Key: "token", Value: tokenHash},
		{Key: "expires_at", Value: bson.D{{Key: "$gt", Value: time.Now()}}},
	}
	var token models.RefreshToken
	if err := r.db.Collection(refreshTokensCollection).FindOne(ctx, filter).Decode(&token); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		slog.Error("Failed to get refresh token", "error", err)
		return nil, err
	}
	return &token, nil
}

func (r *MongoRepository) DeleteRefreshToken(ctx context.Context, tokenHash string) error {
	if _, err := r.db.Collection(refreshTokensCollection).DeleteOne(ctx, bson.D{{Key: "token", Value: tokenHash}}); err != nil {
		slog.Error("Failed to delete refresh token", "error", err)
		return err
	}
	return nil
}

func (r *MongoRepository) DeleteAllUserTokens(ctx context.Context, userID string) error {
	if _, err := r.db.Collection(refreshTokensCollection).DeleteMany(ctx, bson.D{{Key: "user_id", Value: userID}}); err != nil {
		slog.Error("Failed to delete user refresh tokens", "error", err, "user_id", userID)
		return err
	}
	return nil
}

// Quiz results
func (r *MongoRepository) CreateQuizResult(ctx context.Context, result *models.QuizResult) error {
	result.Prepare(time.Now())
	if result.WeakTopics == nil {
		result.WeakTopics = models.StringList{}
	}
	if _, err := r.db.Collection(quizzesCollection).InsertOne(ctx, result); err != nil {
		slog.Error("Failed to save quiz result", "error", err, "user_id", result.UserID)
		return fmt.Errorf("failed to save quiz result: %w", err)
	}
	slog.Info("Quiz result saved", "result_id", result.ID, "user_id", result.UserID, "topic", result.Topic)
	return nil
}

func (r *MongoRepository) ListQuizResults(ctx context.Context, userID string) ([]models.QuizResult, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	cur, err := r.db.Collection(quizzesCollection).Find(ctx, bson.D{{Key: "user_id", Value: userID}}, opts)
	if err != nil {
		slog.Error("Failed to list quiz results", "error", err, "user_id", userID)
		return nil, fmt.Errorf("failed to list quiz results: %w", err)
	}
	results := []models.QuizResult{}
	if err := cur.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("failed to decode quiz results: %w", err)
	}
	return results, nil
}

// Interview records
func (r *MongoRepository) CreateInterviewRecord(ctx context.Context, record *models.InterviewRecord) error {
	record.Prepare(time.Now())
	if _, err := r.db.Collection(interviewsCollection).InsertOne(ctx, record); err != nil {
		slog.Error("Failed to save interview record", "error", err, "user_id", record.UserID)
		return fmt.Errorf("failed to save interview record: %w", err)
	}
	slog.Info("Interview record saved", "record_id", record.ID, "interview_id", record.InterviewID, "source", record.Source)
	return nil
}

func (r *MongoRepository) ListInterviewRecords(ctx context.Context, userID string, limit int) ([]models.InterviewRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := r.db.Collection(interviewsCollection).Find(ctx, bson.D{{Key: "user_id", Value: userID}}, opts)
	if err != nil {
		slog.Error("Failed to list interview records", "error", err, "user_id", userID)
		return nil, fmt.Errorf("failed to list interview records: %w", err)
	}
	records := []models.InterviewRecord{}
	if err := cur.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode interview records: %w", err)
	}
	return records, nil
}

// Chat messages
func (r *MongoRepository) SaveChatMessage(ctx context.Context, msg *models.ChatMessage) error {
	msg.Prepare(time.Now())
	if _, err := r.db.Collection(chatMessagesCollection).InsertOne(ctx, msg); err != nil {
		slog.Error("Failed to save message", "error", err, "message_id", msg.ID)
		return fmt.Errorf("failed to save message: %w", err)
	}
	return nil
}

func (r *MongoRepository) GetRecentChatMessages(ctx context.Context, userID string, limit int) ([]models.ChatMessage, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := r.db.Collection(chatMessagesCollection).Find(ctx, bson.D{{Key: "user_id", Value: userID}}, opts)
	if err != nil {
		slog.Error("Failed to get recent messages", "error", err, "user_id", userID)
		return nil, fmt.Errorf("failed to get recent messages: %w", err)
	}
	messages := []models.ChatMessage{}
	if err := cur.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("failed to decode messages: %w", err)
	}
	return messages, nil
}
