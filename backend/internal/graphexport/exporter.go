package graphexport

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"socialgraph/backend/internal/constants"
	"socialgraph/backend/internal/query"
	"socialgraph/backend/internal/state"
	"socialgraph/backend/internal/store"
	"socialgraph/backend/pkg/logger"
)

// Node labels and relationship types of the mirror
const (
	LabelUser       = "User"
	LabelProfile    = "Profile"
	LabelPost       = "Post"
	LabelMemberType = "MemberType"

	RelSubscribedTo  = "SUBSCRIBED_TO"
	RelHasProfile    = "HAS_PROFILE"
	RelAuthored      = "AUTHORED"
	RelHasMembership = "HAS_MEMBERSHIP"
)

// maxConcurrentBatches bounds the statements in flight at once
const maxConcurrentBatches = 4

// Summary reports what an export wrote, or what the mirror holds
type Summary struct {
	Users         int `json:"users"`
	Profiles      int `json:"profiles"`
	Posts         int `json:"posts"`
	MemberTypes   int `json:"memberTypes"`
	Subscriptions int `json:"subscriptions"`
	Statements    int `json:"statements,omitempty"`
}

// Exporter mirrors the in-memory graph into Neo4j. Nodes are merged by id,
// so exporting twice is idempotent. Nodes and edges removed locally are not
// removed from the mirror.
type Exporter struct {
	db        *store.DB
	runner    Runner
	batchSize int
	logger    *zap.Logger
}

// Option configures an Exporter
type Option func(*Exporter)

// WithBatchSize sets the number of rows per UNWIND statement
func WithBatchSize(n int) Option {
	return func(e *Exporter) {
		if n > 0 {
			e.batchSize = n
		}
	}
}

// NewExporter creates an exporter reading from db and writing through runner
func NewExporter(db *store.DB, runner Runner, opts ...Option) *Exporter {
	e := &Exporter{
		db:        db,
		runner:    runner,
		batchSize: constants.ExportBatchSize,
		logger:    logger.Get(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type snapshot struct {
	users       []state.User
	profiles    []state.Profile
	posts       []state.Post
	memberTypes []state.MemberType
}

type statement struct {
	cypher string
	rows   []interface{}
}

// Export writes a consistent snapshot of db to the mirror. All nodes are
// merged before any relationship so that every MATCH finds its endpoints.
func (e *Exporter) Export(ctx context.Context) (*Summary, error) {
	start := time.Now()

	snap, err := e.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	nodes := e.nodeStatements(snap)
	if err := e.runAll(ctx, nodes); err != nil {
		return nil, fmt.Errorf("failed to export nodes: %w", err)
	}

	rels := e.relationshipStatements(snap)
	if err := e.runAll(ctx, rels); err != nil {
		return nil, fmt.Errorf("failed to export relationships: %w", err)
	}

	summary := &Summary{
		Users:       len(snap.users),
		Profiles:    len(snap.profiles),
		Posts:       len(snap.posts),
		MemberTypes: len(snap.memberTypes),
		Statements:  len(nodes) + len(rels),
	}
	for _, u := range snap.users {
		summary.Subscriptions += u.SubscribedToUserIDs.Len()
	}

	e.logger.Info("Graph exported",
		zap.Int("users", summary.Users),
		zap.Int("profiles", summary.Profiles),
		zap.Int("posts", summary.Posts),
		zap.Int("member_types", summary.MemberTypes),
		zap.Int("subscriptions", summary.Subscriptions),
		zap.Int("statements", summary.Statements),
		zap.Duration("duration", time.Since(start)))
	return summary, nil
}

// snapshot reads all collections inside one writer scope so no mutation
// interleaves between them.
func (e *Exporter) snapshot(ctx context.Context) (*snapshot, error) {
	snap := &snapshot{}
	err := e.db.RunInTransaction(ctx, "export snapshot", func(ctx context.Context) error {
		var err error
		if snap.users, err = e.db.Users.FindMany(ctx, query.All[state.User]()); err != nil {
			return err
		}
		if snap.profiles, err = e.db.Profiles.FindMany(ctx, query.All[state.Profile]()); err != nil {
			return err
		}
		if snap.posts, err = e.db.Posts.FindMany(ctx, query.All[state.Post]()); err != nil {
			return err
		}
		snap.memberTypes, err = e.db.MemberTypes.FindMany(ctx, query.All[state.MemberType]())
		return err
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

func (e *Exporter) nodeStatements(snap *snapshot) []statement {
	users := make([]interface{}, 0, len(snap.users))
	for _, u := range snap.users {
		users = append(users, map[string]interface{}{
			"id":        u.ID,
			"firstName": u.FirstName,
			"lastName":  u.LastName,
			"email":     u.Email,
		})
	}

	profiles := make([]interface{}, 0, len(snap.profiles))
	for _, p := range snap.profiles {
		profiles = append(profiles, map[string]interface{}{
			"id":           p.ID,
			"avatar":       p.Avatar,
			"sex":          p.Sex,
			"birthday":     int64(p.Birthday),
			"country":      p.Country,
			"street":       p.Street,
			"city":         p.City,
			"memberTypeId": string(p.MemberTypeID),
			"userId":       p.UserID,
		})
	}

	posts := make([]interface{}, 0, len(snap.posts))
	for _, p := range snap.posts {
		posts = append(posts, map[string]interface{}{
			"id":      p.ID,
			"title":   p.Title,
			"content": p.Content,
			"userId":  p.UserID,
		})
	}

	memberTypes := make([]interface{}, 0, len(snap.memberTypes))
	for _, m := range snap.memberTypes {
		memberTypes = append(memberTypes, map[string]interface{}{
			"id":              string(m.ID),
			"discount":        int64(m.Discount),
			"monthPostsLimit": int64(m.MonthPostsLimit),
		})
	}

	var out []statement
	out = append(out, e.batch(mergeNodes(LabelUser), users)...)
	out = append(out, e.batch(mergeNodes(LabelProfile), profiles)...)
	out = append(out, e.batch(mergeNodes(LabelPost), posts)...)
	out = append(out, e.batch(mergeNodes(LabelMemberType), memberTypes)...)
	return out
}

func (e *Exporter) relationshipStatements(snap *snapshot) []statement {
	var subscriptions, hasProfile, authored, membership []interface{}

	for _, u := range snap.users {
		for _, target := range u.SubscribedToUserIDs.Slice() {
			subscriptions = append(subscriptions, edge(u.ID, target))
		}
	}
	for _, p := range snap.profiles {
		hasProfile = append(hasProfile, edge(p.UserID, p.ID))
		membership = append(membership, edge(p.ID, string(p.MemberTypeID)))
	}
	for _, p := range snap.posts {
		authored = append(authored, edge(p.UserID, p.ID))
	}

	var out []statement
	out = append(out, e.batch(mergeEdges(LabelUser, RelSubscribedTo, LabelUser), subscriptions)...)
	out = append(out, e.batch(mergeEdges(LabelUser, RelHasProfile, LabelProfile), hasProfile)...)
	out = append(out, e.batch(mergeEdges(LabelUser, RelAuthored, LabelPost), authored)...)
	out = append(out, e.batch(mergeEdges(LabelProfile, RelHasMembership, LabelMemberType), membership)...)
	return out
}

// runAll executes statements concurrently and fails on the first error
func (e *Exporter) runAll(ctx context.Context, statements []statement) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentBatches)

	for _, st := range statements {
		st := st
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			_, err := e.runner.Run(gctx, st.cypher, map[string]interface{}{"rows": st.rows})
			return err
		})
	}
	return g.Wait()
}

func (e *Exporter) batch(cypher string, rows []interface{}) []statement {
	var out []statement
	for start := 0; start < len(rows); start += e.batchSize {
		end := start + e.batchSize
		if end > len(rows) {
			end = len(rows)
		}
		out = append(out, statement{cypher: cypher, rows: rows[start:end]})
	}
	return out
}

func edge(from, to string) map[string]interface{} {
	return map[string]interface{}{"from": from, "to": to}
}

func mergeNodes(label string) string {
	return fmt.Sprintf(`UNWIND $rows AS row
MERGE (n:%s {id: row.id})
SET n += row`, label)
}

func mergeEdges(fromLabel, relType, toLabel string) string {
	return fmt.Sprintf(`UNWIND $rows AS row
MATCH (a:%s {id: row.from})
MATCH (b:%s {id: row.to})
MERGE (a)-[:%s]->(b)`, fromLabel, toLabel, relType)
}

const statsQuery = `
OPTIONAL MATCH (u:User) WITH count(u) AS users
OPTIONAL MATCH (p:Profile) WITH users, count(p) AS profiles
OPTIONAL MATCH (po:Post) WITH users, profiles, count(po) AS posts
OPTIONAL MATCH (m:MemberType) WITH users, profiles, posts, count(m) AS memberTypes
OPTIONAL MATCH (:User)-[s:SUBSCRIBED_TO]->(:User)
RETURN users, profiles, posts, memberTypes, count(s) AS subscriptions`

// Stats counts what the mirror currently holds
func (e *Exporter) Stats(ctx context.Context) (*Summary, error) {
	result, err := e.runner.Run(ctx, statsQuery, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to read mirror stats: %w", err)
	}

	record, ok := firstRecord(result)
	if !ok {
		return &Summary{}, nil
	}
	return &Summary{
		Users:         intFromRecord(record, "users"),
		Profiles:      intFromRecord(record, "profiles"),
		Posts:         intFromRecord(record, "posts"),
		MemberTypes:   intFromRecord(record, "memberTypes"),
		Subscriptions: intFromRecord(record, "subscriptions"),
	}, nil
}
