package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/kirankjolly/AI-GitHub-Repository-Issue-Scanner/internal/models"
)

// IssueMongo provides Mongo-backed persistence for cached issues and scans.
//
// Expected schema:
//
//	issues
//	  { _id: ObjectId, repo, number, title, body, html_url, created_at }  unique (repo, number)
//
//	scans
//	  { _id: "owner/name", scanned_at, issues_count }
type IssueMongo struct {
	client    *mongo.Client
	issuesCol *mongo.Collection
	scansCol  *mongo.Collection
	now       func() time.Time
	log       *zap.Logger
}

// NewIssueRepository wires the collections and ensures the unique issue index.
func NewIssueRepository(ctx context.Context, client *mongo.Client, db *mongo.Database, logger *zap.Logger) (*IssueMongo, error) {
	r := &IssueMongo{
		client:    client,
		issuesCol: db.Collection("issues"),
		scansCol:  db.Collection("scans"),
		now:       func() time.Time { return time.Now().UTC() },
		log:       logger.Named("issue_repository"),
	}

	_, err := r.issuesCol.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "repo", Value: 1}, {Key: "number", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uix_issue_repo"),
	})
	if err != nil {
		return nil, storageErr("init_indexes", "", err)
	}
	return r, nil
}

// ReplaceIssues deletes the repo's issues, inserts the new set and upserts
// the scan record inside one multi-document transaction.
func (r *IssueMongo) ReplaceIssues(ctx context.Context, repo string, issues []models.Issue) (int, error) {
	r.log.Debug("replacing issues", zap.String("repo", repo), zap.Int("count", len(issues)))

	sess, err := r.client.StartSession()
	if err != nil {
		return 0, storageErr("replace_issues", repo, err)
	}
	defer sess.EndSession(context.Background())

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if _, err := r.issuesCol.DeleteMany(sc, bson.M{"repo": repo}); err != nil {
			return nil, err
		}

		if len(issues) > 0 {
			docs := make([]interface{}, len(issues))
			for i, is := range issues {
				is.Repo = repo
				docs[i] = is
			}
			if _, err := r.issuesCol.InsertMany(sc, docs); err != nil {
				return nil, err
			}
		}

		_, err := r.scansCol.UpdateOne(sc,
			bson.M{"_id": repo},
			bson.M{"$set": bson.M{
				"scanned_at":   r.now(),
				"issues_count": len(issues),
			}},
			options.Update().SetUpsert(true),
		)
		return nil, err
	})
	if err != nil {
		r.log.Error("replace issues failed", zap.String("repo", repo), zap.Error(err))
		return 0, storageErr("replace_issues", repo, err)
	}

	r.log.Info("replaced cached issues", zap.String("repo", repo), zap.Int("count", len(issues)))
	return len(issues), nil
}

// GetIssues returns every cached issue for repo in insertion order.
func (r *IssueMongo) GetIssues(ctx context.Context, repo string) ([]models.Issue, error) {
	cur, err := r.issuesCol.Find(ctx, bson.M{"repo": repo},
		options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, storageErr("get_issues", repo, err)
	}
	defer cur.Close(ctx)

	var issues []models.Issue
	if err := cur.All(ctx, &issues); err != nil {
		return nil, storageErr("get_issues", repo, err)
	}
	// Mongo stores millisecond UTC datetimes; decode into UTC for stable output.
	for i := range issues {
		issues[i].CreatedAt = issues[i].CreatedAt.UTC()
	}
	return issues, nil
}

// IsScanned reports whether a scan record exists for repo.
func (r *IssueMongo) IsScanned(ctx context.Context, repo string) (bool, error) {
	n, err := r.scansCol.CountDocuments(ctx, bson.M{"_id": repo}, options.Count().SetLimit(1))
	if err != nil {
		return false, storageErr("is_scanned", repo, err)
	}
	return n > 0, nil
}

// FindScan returns the scan record for repo.
// When the document is not found, it returns an empty record and a nil error.
func (r *IssueMongo) FindScan(ctx context.Context, repo string) (models.ScanRecord, error) {
	var rec models.ScanRecord
	err := r.scansCol.FindOne(ctx, bson.M{"_id": repo}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.ScanRecord{}, nil
	}
	if err != nil {
		return models.ScanRecord{}, storageErr("find_scan", repo, err)
	}
	rec.ScannedAt = rec.ScannedAt.UTC()
	return rec, nil
}

// Ping checks the primary is reachable.
func (r *IssueMongo) Ping(ctx context.Context) error {
	return storageErr("ping", "", r.client.Ping(ctx, nil))
}
