package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"climateguard/models"
)

type groupMembership struct {
	ID       string    `bson:"_id"`
	UserID   string    `bson:"user_id"`
	GroupID  string    `bson:"group_id"`
	JoinedAt time.Time `bson:"joined_at"`
}

// Mongo is the remote backend.
type Mongo struct {
	client         *mongo.Client
	db             *mongo.Database
	profiles       *mongo.Collection
	actions        *mongo.Collection
	recent         *mongo.Collection
	projects       *mongo.Collection
	participations *mongo.Collection
	memberships    *mongo.Collection
	kits           *mongo.Collection
	goals          *mongo.Collection
}

// DialMongo connects, pings and makes sure the indexes exist.
func DialMongo(ctx context.Context, uri, dbName string) (*Mongo, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.WithoutCancel(ctx))
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	db := client.Database(dbName)

	m := &Mongo{
		client:         client,
		db:             db,
		profiles:       db.Collection("user_profiles"),
		actions:        db.Collection("user_actions"),
		recent:         db.Collection("recent_actions"),
		projects:       db.Collection("community_projects"),
		participations: db.Collection("project_participations"),
		memberships:    db.Collection("group_memberships"),
		kits:           db.Collection("emergency_kits"),
		goals:          db.Collection("monthly_goals"),
	}
	if err := m.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.WithoutCancel(ctx))
		return nil, err
	}
	return m, nil
}

func (m *Mongo) ensureIndexes(ctx context.Context) error {
	indexes := []struct {
		coll  *mongo.Collection
		model mongo.IndexModel
	}{
		{m.profiles, mongo.IndexModel{
			Keys: bson.D{{Key: "level", Value: -1}, {Key: "actions_completed", Value: -1}},
		}},
		{m.actions, mongo.IndexModel{
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "date_completed", Value: -1}},
		}},
		{m.recent, mongo.IndexModel{
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
		}},
		{m.participations, mongo.IndexModel{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "project_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		}},
		{m.memberships, mongo.IndexModel{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "group_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		}},
		{m.kits, mongo.IndexModel{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "item_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		}},
		{m.goals, mongo.IndexModel{
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "month_year", Value: 1}},
		}},
		{m.projects, mongo.IndexModel{
			Keys: bson.D{{Key: "status", Value: 1}, {Key: "date", Value: 1}},
		}},
	}
	for _, ix := range indexes {
		if _, err := ix.coll.Indexes().CreateOne(ctx, ix.model); err != nil {
			return fmt.Errorf("create index on %s: %w", ix.coll.Name(), err)
		}
	}
	return nil
}

func (m *Mongo) Close(ctx context.Context) error { return m.client.Disconnect(ctx) }

func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}

func (m *Mongo) CreateProfile(ctx context.Context, p models.UserProfile) (models.UserProfile, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Achievements == nil {
		p.Achievements = []string{}
	}
	if _, err := m.profiles.InsertOne(ctx, p); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.UserProfile{}, ErrDuplicate
		}
		return models.UserProfile{}, err
	}
	return p, nil
}

func (m *Mongo) Profile(ctx context.Context, userID string) (models.UserProfile, error) {
	var p models.UserProfile
	if err := m.profiles.FindOne(ctx, bson.M{"_id": userID}).Decode(&p); err != nil {
		return models.UserProfile{}, notFound(err)
	}
	return p, nil
}

func (m *Mongo) UpdateProfile(ctx context.Context, userID string, u models.ProfileUpdate, at time.Time) (models.UserProfile, error) {
	p, err := m.Profile(ctx, userID)
	if err != nil {
		return models.UserProfile{}, err
	}
	p = u.Apply(p, at)
	if _, err := m.profiles.ReplaceOne(ctx, bson.M{"_id": userID}, p); err != nil {
		return models.UserProfile{}, err
	}
	return p, nil
}

func (m *Mongo) Profiles(ctx context.Context, limit int) ([]models.UserProfile, error) {
	opts := options.Find().SetSort(bson.D{{Key: "level", Value: -1}, {Key: "actions_completed", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return findAll[models.UserProfile](ctx, m.profiles, bson.M{}, opts)
}

func findAll[T any](ctx context.Context, coll *mongo.Collection, filter any, opts *options.FindOptions) ([]T, error) {
	cur, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []T
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (m *Mongo) Actions(ctx context.Context, userID string) ([]models.UserAction, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "date_completed", Value: -1}, {Key: "created_at", Value: -1}}).
		SetLimit(MaxActions)
	return findAll[models.UserAction](ctx, m.actions, bson.M{"user_id": userID}, opts)
}

func (m *Mongo) AddAction(ctx context.Context, a models.UserAction) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	_, err := m.actions.InsertOne(ctx, a)
	return err
}

func (m *Mongo) RecentActions(ctx context.Context, userID string) ([]models.RecentAction, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(MaxRecentActions)
	return findAll[models.RecentAction](ctx, m.recent, bson.M{"user_id": userID}, opts)
}

func (m *Mongo) AddRecentAction(ctx context.Context, a models.RecentAction) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	_, err := m.recent.InsertOne(ctx, a)
	return err
}

func (m *Mongo) JoinProject(ctx context.Context, p models.ProjectParticipation) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if _, err := m.participations.InsertOne(ctx, p); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return err
	}
	_, err := m.memberships.InsertOne(ctx, groupMembership{
		ID:       uuid.NewString(),
		UserID:   p.UserID,
		GroupID:  p.ProjectID,
		JoinedAt: p.JoinedAt,
	})
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return err
	}
	return nil
}

func (m *Mongo) LeaveProject(ctx context.Context, userID, projectID string) error {
	res, err := m.participations.DeleteOne(ctx, bson.M{"user_id": userID, "project_id": projectID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	_, err = m.memberships.DeleteOne(ctx, bson.M{"user_id": userID, "group_id": projectID})
	return err
}

func (m *Mongo) Participations(ctx context.Context, userID string) ([]models.ProjectParticipation, error) {
	return findAll[models.ProjectParticipation](ctx, m.participations, bson.M{"user_id": userID}, options.Find())
}

func (m *Mongo) Memberships(ctx context.Context, userID string) ([]string, error) {
	opts := options.Find().SetSort(bson.D{{Key: "joined_at", Value: 1}})
	docs, err := findAll[groupMembership](ctx, m.memberships, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.GroupID
	}
	return out, nil
}

func (m *Mongo) Kit(ctx context.Context, userID string) ([]models.EmergencyKitItem, error) {
	opts := options.Find().SetSort(bson.D{{Key: "item_id", Value: 1}})
	return findAll[models.EmergencyKitItem](ctx, m.kits, bson.M{"user_id": userID}, opts)
}

func (m *Mongo) SaveKit(ctx context.Context, items []models.EmergencyKitItem) error {
	for _, it := range items {
		_, err := m.kits.ReplaceOne(ctx,
			bson.M{"user_id": it.UserID, "item_id": it.ID},
			it,
			options.Replace().SetUpsert(true),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (m *Mongo) UpdateKitItem(ctx context.Context, userID, itemID string, u models.KitUpdate, at time.Time) (models.EmergencyKitItem, error) {
	filter := bson.M{"user_id": userID, "item_id": itemID}
	var it models.EmergencyKitItem
	if err := m.kits.FindOne(ctx, filter).Decode(&it); err != nil {
		return models.EmergencyKitItem{}, notFound(err)
	}
	it = u.Apply(it, at)
	if _, err := m.kits.ReplaceOne(ctx, filter, it); err != nil {
		return models.EmergencyKitItem{}, err
	}
	return it, nil
}

func (m *Mongo) Goals(ctx context.Context, userID, month string) ([]models.MonthlyGoal, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	return findAll[models.MonthlyGoal](ctx, m.goals, bson.M{"user_id": userID, "month_year": month}, opts)
}

func (m *Mongo) SaveGoals(ctx context.Context, goals []models.MonthlyGoal) error {
	for _, g := range goals {
		if _, err := m.goals.ReplaceOne(ctx, bson.M{"_id": g.ID}, g, options.Replace().SetUpsert(true)); err != nil {
			return err
		}
	}
	return nil
}

func (m *Mongo) AddProject(ctx context.Context, p models.CommunityProject) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if _, err := m.projects.InsertOne(ctx, p); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (m *Mongo) ActiveProjects(ctx context.Context) ([]models.CommunityProject, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})
	return findAll[models.CommunityProject](ctx, m.projects, bson.M{"status": models.ProjectActive}, opts)
}
