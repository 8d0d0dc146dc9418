// mongodb.go - MongoDB connection and analysis history persistence

package storage

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/bosocmputer/credit_analyzer_gemini/configs"
	"github.com/bosocmputer/credit_analyzer_gemini/internal/analysis"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var mongoClient *mongo.Client
var mongoDB *mongo.Database

const analysesCollection = "creditAnalyses"

// InitMongoDB initializes MongoDB connection
func InitMongoDB() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(configs.MONGO_URI)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	// Ping to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	mongoClient = client
	mongoDB = client.Database(configs.MONGO_DB_NAME)

	log.Println("✅ Connected to MongoDB successfully!")
	return nil
}

// GetMongoDB returns the MongoDB database instance
func GetMongoDB() *mongo.Database {
	return mongoDB
}

// CloseMongoDB closes MongoDB connection
func CloseMongoDB() {
	if mongoClient != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		mongoClient.Disconnect(ctx)
		log.Println("MongoDB connection closed")
	}
}

// AnalysisRecord is one persisted analysis run
type AnalysisRecord struct {
	RequestID   string                  `bson:"request_id" json:"request_id"`
	Filenames   []string                `bson:"filenames" json:"filenames"`
	Result      analysis.AnalysisResult `bson:"result" json:"result"`
	TotalTokens int                     `bson:"total_tokens" json:"total_tokens"`
	CostUSD     float64                 `bson:"cost_usd" json:"cost_usd"`
	CreatedAt   time.Time               `bson:"created_at" json:"created_at"`
}

// SaveAnalysis persists one analysis run. Best-effort: callers log and
// continue on error, history is not part of the response contract.
func SaveAnalysis(record AnalysisRecord) error {
	if mongoDB == nil {
		return fmt.Errorf("mongodb not initialized")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	collection := mongoDB.Collection(analysesCollection)
	if _, err := collection.InsertOne(ctx, record); err != nil {
		return fmt.Errorf("failed to save analysis: %w", err)
	}

	return nil
}

// RecentAnalyses returns the latest analysis runs, newest first
func RecentAnalyses(limit int) ([]AnalysisRecord, error) {
	if mongoDB == nil {
		return nil, fmt.Errorf("mongodb not initialized")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if limit <= 0 || limit > 100 {
		limit = 20
	}

	opts := options.Find().
		SetSort(bson.M{"created_at": -1}).
		SetLimit(int64(limit))

	collection := mongoDB.Collection(analysesCollection)
	cursor, err := collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query analyses: %w", err)
	}
	defer cursor.Close(ctx)

	var results []AnalysisRecord
	if err := cursor.All(ctx, &results); err != nil {
		return nil, err
	}

	return results, nil
}
