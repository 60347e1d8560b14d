package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	hcerrors "github.com/matzehuels/hicluster/pkg/errors"
	"github.com/matzehuels/hicluster/pkg/pipeline"
)

// Default collection names.
const (
	DefaultDatabase          = "hicluster"
	DefaultRunsCollection    = "runs"
	DefaultRecordsCollection = "clusters"
)

// MongoConfig holds MongoDB connection settings.
type MongoConfig struct {
	URI      string
	Database string
	// Collection prefixes the runs and clusters collections when set.
	Collection string
	Timeout    time.Duration
}

// MongoStore stores runs in MongoDB.
type MongoStore struct {
	client  *mongo.Client
	runs    *mongo.Collection
	records *mongo.Collection
	timeout time.Duration
}

type runDoc struct {
	ID          string         `bson:"_id"`
	Started     time.Time      `bson:"started"`
	Samples     []string       `bson:"samples"`
	Chromosomes []string       `bson:"chromosomes"`
	Stats       pipeline.Stats `bson:"stats"`
}

type recordDoc struct {
	RunID           string    `bson:"run_id"`
	Started         time.Time `bson:"started"`
	Seq             int       `bson:"seq"`
	pipeline.Record `bson:",inline"`
}

// NewMongoStore connects to MongoDB, verifies the connection and ensures
// the query indexes exist.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.URI == "" {
		return nil, hcerrors.New(hcerrors.ErrCodeInvalidConfig, "mongo uri cannot be empty")
	}
	if cfg.Database == "" {
		cfg.Database = DefaultDatabase
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	runsName, recordsName := DefaultRunsCollection, DefaultRecordsCollection
	if cfg.Collection != "" {
		runsName, recordsName = cfg.Collection+"_"+runsName, cfg.Collection+"_"+recordsName
	}

	cctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	client, err := mongo.Connect(cctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(cctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	db := client.Database(cfg.Database)
	s := &MongoStore{
		client:  client,
		runs:    db.Collection(runsName),
		records: db.Collection(recordsName),
		timeout: cfg.Timeout,
	}
	_, err = s.records.Indexes().CreateMany(cctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "run_id", Value: 1}, {Key: "seq", Value: 1}}},
		{Keys: bson.D{{Key: "sample_id", Value: 1}, {Key: "started", Value: -1}}},
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo indexes: %w", err)
	}
	return s, nil
}

// SaveRun implements [Store].
func (s *MongoStore) SaveRun(ctx context.Context, res *pipeline.Result) error {
	if res.RunID == "" {
		return hcerrors.New(hcerrors.ErrCodeInvalidInput, "run id cannot be empty")
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, err := s.runs.InsertOne(ctx, runDoc{
		ID:          res.RunID,
		Started:     res.Started,
		Samples:     res.Samples,
		Chromosomes: res.Chromosomes,
		Stats:       res.Stats,
	})
	if err != nil {
		return fmt.Errorf("insert run %s: %w", res.RunID, err)
	}
	if len(res.Records) == 0 {
		return nil
	}
	docs := make([]interface{}, len(res.Records))
	for i, rec := range res.Records {
		docs[i] = recordDoc{RunID: res.RunID, Started: res.Started, Seq: i, Record: rec}
	}
	if _, err := s.records.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("insert records of run %s: %w", res.RunID, err)
	}
	return nil
}

// Run implements [Store].
func (s *MongoStore) Run(ctx context.Context, runID string) (*pipeline.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var doc runDoc
	err := s.runs.FindOne(ctx, bson.M{"_id": runID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, hcerrors.New(hcerrors.ErrCodeRunNotFound, "run %q not found", runID)
	}
	if err != nil {
		return nil, fmt.Errorf("find run %s: %w", runID, err)
	}

	cur, err := s.records.Find(ctx, bson.M{"run_id": runID},
		options.Find().SetSort(bson.D{{Key: "seq", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find records of run %s: %w", runID, err)
	}
	var recs []recordDoc
	if err := cur.All(ctx, &recs); err != nil {
		return nil, fmt.Errorf("decode records of run %s: %w", runID, err)
	}

	res := &pipeline.Result{
		RunID:       doc.ID,
		Started:     doc.Started,
		Samples:     doc.Samples,
		Chromosomes: doc.Chromosomes,
		Stats:       doc.Stats,
		Records:     make([]pipeline.Record, len(recs)),
	}
	for i, r := range recs {
		res.Records[i] = r.Record
	}
	return res, nil
}

// SampleClusters implements [Store].
func (s *MongoStore) SampleClusters(ctx context.Context, sample string) ([]StoredRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	cur, err := s.records.Find(ctx, bson.M{"sample_id": sample},
		options.Find().SetSort(bson.D{{Key: "started", Value: -1}, {Key: "seq", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find clusters of %s: %w", sample, err)
	}
	var recs []recordDoc
	if err := cur.All(ctx, &recs); err != nil {
		return nil, fmt.Errorf("decode clusters of %s: %w", sample, err)
	}
	out := make([]StoredRecord, len(recs))
	for i, r := range recs {
		out[i] = StoredRecord{RunID: r.RunID, Record: r.Record}
	}
	return out, nil
}

// Close disconnects from MongoDB.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
