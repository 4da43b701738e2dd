// Package engine owns the similarity graph, the social graphs and the
// autocomplete index, and coordinates building and updating them.
//
// All structures sit behind one RWMutex: queries share the read lock and
// mutations take the write lock. Full builds score pairs on fresh
// structures without holding the lock and swap them in when done, so
// readers are only blocked for the swap.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ritzau/syncup/pkg/catalog"
	"github.com/ritzau/syncup/pkg/graph"
	"github.com/ritzau/syncup/pkg/logging"
	"github.com/ritzau/syncup/pkg/metrics"
	"github.com/ritzau/syncup/pkg/model"
	"github.com/ritzau/syncup/pkg/pubsub"
	"github.com/ritzau/syncup/pkg/similarity"
	"github.com/ritzau/syncup/pkg/trie"
)

// ErrNilTrack is returned by AddTrack when given no track
var ErrNilTrack = graph.ErrNilTrack

// ErrInvalidThreshold is returned by New for thresholds outside [0,1]
var ErrInvalidThreshold = errors.New("similarity threshold must be within [0,1]")

// Options tunes graph construction and the size of derived listings
type Options struct {
	Threshold     float64 // minimum score for a similarity edge
	RadioSize     int
	DiscoverySize int
}

// DefaultOptions returns the standard tuning
func DefaultOptions() Options {
	return Options{
		Threshold:     0.3,
		RadioSize:     30,
		DiscoverySize: 20,
	}
}

// Engine is the single owner of every discovery structure. Create one with
// New and share it by reference.
type Engine struct {
	opts      Options
	tracks    catalog.TrackProvider
	users     catalog.UserProvider
	publisher pubsub.Publisher

	writeMu sync.Mutex // serializes builds and mutations
	mu      sync.RWMutex

	similarity *graph.SimilarityGraph
	social     *graph.SocialGraph
	follows    *graph.FollowGraph
	titles     *trie.Trie
	favorites  map[string][]string // username -> track IDs
}

// New creates an empty engine. Call BuildAll to load the providers.
// A nil publisher discards status events.
func New(opts Options, tracks catalog.TrackProvider, users catalog.UserProvider, publisher pubsub.Publisher) (*Engine, error) {
	if opts.Threshold < 0 || opts.Threshold > 1 {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidThreshold, opts.Threshold)
	}
	if publisher == nil {
		publisher = pubsub.Discard{}
	}
	return &Engine{
		opts:       opts,
		tracks:     tracks,
		users:      users,
		publisher:  publisher,
		similarity: graph.NewSimilarityGraph(),
		social:     graph.NewSocialGraph(),
		follows:    graph.NewFollowGraph(),
		titles:     trie.New(),
		favorites:  make(map[string][]string),
	}, nil
}

// Options returns the tuning the engine was created with
func (e *Engine) Options() Options {
	return e.opts
}

// catalogIndex is a freshly built similarity graph with its title index
type catalogIndex struct {
	similarity *graph.SimilarityGraph
	titles     *trie.Trie
}

// socialIndex is a freshly built pair of user graphs
type socialIndex struct {
	social    *graph.SocialGraph
	follows   *graph.FollowGraph
	favorites map[string][]string
}

// BuildAll loads every track and user from the providers and replaces the
// current structures with the result. Calling it again reloads rather than
// duplicating edges.
func (e *Engine) BuildAll(ctx context.Context) error {
	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	start := time.Now()
	err := e.buildAll(ctx)
	metrics.RecordBuild("all", start, err)
	return err
}

func (e *Engine) buildAll(ctx context.Context) error {
	cat, err := e.loadCatalog(ctx, 1, 3)
	if err != nil {
		return err
	}
	soc, err := e.loadSocial(ctx, 3, 3)
	if err != nil {
		return err
	}

	e.mu.Lock()
	e.similarity, e.titles = cat.similarity, cat.titles
	e.social, e.follows, e.favorites = soc.social, soc.follows, soc.favorites
	e.mu.Unlock()

	e.publishReady("Engine ready")
	return nil
}

// BuildCatalog reloads only the tracks, leaving the social graphs alone
func (e *Engine) BuildCatalog(ctx context.Context) error {
	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	start := time.Now()
	cat, err := e.loadCatalog(ctx, 1, 2)
	metrics.RecordBuild("catalog", start, err)
	if err != nil {
		return err
	}

	e.mu.Lock()
	e.similarity, e.titles = cat.similarity, cat.titles
	e.mu.Unlock()

	e.publishReady("Catalog reloaded")
	return nil
}

// BuildSocial reloads only the users, leaving the catalog alone
func (e *Engine) BuildSocial(ctx context.Context) error {
	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	start := time.Now()
	soc, err := e.loadSocial(ctx, 1, 1)
	metrics.RecordBuild("social", start, err)
	if err != nil {
		return err
	}

	e.mu.Lock()
	e.social, e.follows, e.favorites = soc.social, soc.follows, soc.favorites
	e.mu.Unlock()

	e.publishReady("Users reloaded")
	return nil
}

// RebuildAll discards every structure and builds them again from the
// providers. The old structures stay live until the new ones are complete,
// so a failed or cancelled rebuild leaves the engine as it was.
func (e *Engine) RebuildAll(ctx context.Context) error {
	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	start := time.Now()
	err := e.buildAll(ctx)
	metrics.RecordBuild("all", start, err)
	if err != nil {
		logging.Warn("rebuild abandoned, keeping current structures", "error", err)
	}
	return err
}

// loadCatalog fetches the tracks and scores every unordered pair. It runs
// without the engine lock. step and total describe its place in the
// published progress.
func (e *Engine) loadCatalog(ctx context.Context, step, total int) (*catalogIndex, error) {
	e.publishStatus(pubsub.EngineStatus{State: "building", Message: "Loading tracks", Step: step, Total: total})

	tracks, err := e.tracks.ListAll(ctx)
	if err != nil {
		e.publishError(err, step, total)
		return nil, fmt.Errorf("track provider failed: %w", err)
	}

	idx := &catalogIndex{
		similarity: graph.NewSimilarityGraph(),
		titles:     trie.New(),
	}

	// First instance of an ID wins, matching AddVertex
	unique := make([]*model.Track, 0, len(tracks))
	for _, t := range tracks {
		if t == nil || t.ID == "" {
			continue
		}
		if idx.similarity.Contains(t) {
			logging.Warn("duplicate track id skipped", "id", t.ID, "title", t.Title)
			continue
		}
		stored := cloneTrack(t)
		idx.similarity.AddVertex(stored)
		idx.titles.Insert(stored.Title)
		unique = append(unique, stored)
	}

	e.publishStatus(pubsub.EngineStatus{
		State:   "building",
		Message: fmt.Sprintf("Scoring %d tracks", len(unique)),
		Step:    step + 1,
		Total:   total,
		Tracks:  len(unique),
	})

	for i := 0; i < len(unique); i++ {
		if err := ctx.Err(); err != nil {
			e.publishError(err, step+1, total)
			return nil, err
		}
		for j := i + 1; j < len(unique); j++ {
			if err := e.link(idx.similarity, unique[i], unique[j]); err != nil {
				return nil, err
			}
		}
	}

	logging.Info("similarity graph built",
		"tracks", idx.similarity.VertexCount(),
		"edges", idx.similarity.EdgeCount(),
		"threshold", e.opts.Threshold,
	)
	return idx, nil
}

// link scores a pair and adds the edge when it meets the threshold
func (e *Engine) link(g *graph.SimilarityGraph, a, b *model.Track) error {
	score := similarity.Score(a, b)
	if score < e.opts.Threshold {
		return nil
	}
	if err := g.AddEdge(a, b, score); err != nil {
		return fmt.Errorf("link %s-%s: %w", a.ID, b.ID, err)
	}
	logging.Trace("similarity edge", "from", a.ID, "to", b.ID, "score", score)
	return nil
}

// loadSocial fetches the users and derives both user graphs. Follows that
// name an unknown user are skipped.
func (e *Engine) loadSocial(ctx context.Context, step, total int) (*socialIndex, error) {
	e.publishStatus(pubsub.EngineStatus{State: "building", Message: "Loading users", Step: step, Total: total})

	users, err := e.users.ListAll(ctx)
	if err != nil {
		e.publishError(err, step, total)
		return nil, fmt.Errorf("user provider failed: %w", err)
	}

	idx := &socialIndex{
		social:    graph.NewSocialGraph(),
		follows:   graph.NewFollowGraph(),
		favorites: make(map[string][]string),
	}
	for _, u := range users {
		if u == nil || u.Username == "" {
			continue
		}
		idx.social.AddUser(u.Username)
		idx.follows.AddUser(u.Username)
		idx.favorites[u.Username] = append([]string(nil), u.Favorites...)
	}

	dangling := 0
	for _, u := range users {
		if u == nil || u.Username == "" {
			continue
		}
		for _, followed := range u.Follows {
			if !idx.social.Contains(followed) {
				logging.Debug("skipping follow of unknown user", "user", u.Username, "follows", followed)
				dangling++
				continue
			}
			idx.social.AddConnection(u.Username, followed)
			idx.follows.Follow(u.Username, followed)
		}
	}
	metrics.DanglingFollows.Add(float64(dangling))

	logging.Info("social graph built", "users", idx.social.UserCount(), "dangling", dangling)
	return idx, nil
}

// AddTrack inserts a track, links it to every existing track that scores
// at or above the threshold and indexes its title. A track whose ID is
// already present replaces the old one.
func (e *Engine) AddTrack(t *model.Track) error {
	if t == nil {
		return ErrNilTrack
	}
	if t.ID == "" {
		return fmt.Errorf("track has no id: %q", t.Title)
	}

	e.writeMu.Lock()
	defer e.writeMu.Unlock()
	e.mu.Lock()
	defer e.mu.Unlock()

	if old, ok := e.similarity.Vertex(t.ID); ok {
		e.removeTrackLocked(old)
	}

	stored := cloneTrack(t)
	existing := e.similarity.Vertices()
	e.similarity.AddVertex(stored)
	for _, other := range existing {
		if err := e.link(e.similarity, stored, other); err != nil {
			return err
		}
	}
	e.titles.Insert(stored.Title)

	logging.Debug("track added", "id", stored.ID, "title", stored.Title, "edges", len(e.similarity.Neighbors(stored)))
	e.updateSizesLocked()
	return nil
}

// RemoveTrack drops a track and its edges. Its title leaves the
// autocomplete index unless another track has the same title. It reports
// whether the track was present.
func (e *Engine) RemoveTrack(id string) bool {
	e.writeMu.Lock()
	defer e.writeMu.Unlock()
	e.mu.Lock()
	defer e.mu.Unlock()

	t, ok := e.similarity.Vertex(id)
	if !ok {
		return false
	}
	e.removeTrackLocked(t)
	logging.Debug("track removed", "id", id)
	e.updateSizesLocked()
	return true
}

func (e *Engine) removeTrackLocked(t *model.Track) {
	e.similarity.RemoveVertex(t)
	for _, other := range e.similarity.Vertices() {
		if strings.EqualFold(other.Title, t.Title) {
			return
		}
	}
	e.titles.Delete(t.Title)
}

// AddUser inserts a user and connects it to every known user it follows.
// Adding a known user merges the follow list. Empty usernames are ignored.
func (e *Engine) AddUser(u *model.User) bool {
	if u == nil || u.Username == "" {
		return false
	}

	e.writeMu.Lock()
	defer e.writeMu.Unlock()
	e.mu.Lock()
	defer e.mu.Unlock()

	e.social.AddUser(u.Username)
	e.follows.AddUser(u.Username)
	for _, followed := range u.Follows {
		if !e.social.Contains(followed) || followed == u.Username {
			logging.Debug("skipping follow of unknown user", "user", u.Username, "follows", followed)
			continue
		}
		e.social.AddConnection(u.Username, followed)
		e.follows.Follow(u.Username, followed)
	}
	if len(u.Favorites) > 0 {
		e.favorites[u.Username] = append([]string(nil), u.Favorites...)
	}

	e.updateSizesLocked()
	return true
}

// RemoveUser drops a user and every connection to it
func (e *Engine) RemoveUser(username string) bool {
	e.writeMu.Lock()
	defer e.writeMu.Unlock()
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.social.Contains(username) {
		return false
	}
	e.social.RemoveUser(username)
	e.follows.RemoveUser(username)
	delete(e.favorites, username)

	e.updateSizesLocked()
	return true
}

// Follow records that follower follows followee and connects them in the
// social graph. Both users must be known and distinct.
func (e *Engine) Follow(follower, followee string) bool {
	if follower == followee {
		return false
	}

	e.writeMu.Lock()
	defer e.writeMu.Unlock()
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.social.Contains(follower) || !e.social.Contains(followee) {
		return false
	}
	e.follows.Follow(follower, followee)
	e.social.AddConnection(follower, followee)
	return true
}

// Unfollow removes the follow relation. The social connection stays while
// the reverse follow exists.
func (e *Engine) Unfollow(follower, followee string) bool {
	e.writeMu.Lock()
	defer e.writeMu.Unlock()
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.follows.IsFollowing(follower, followee) {
		return false
	}
	e.follows.Unfollow(follower, followee)
	if !e.follows.IsFollowing(followee, follower) {
		e.social.RemoveConnection(follower, followee)
	}
	return true
}

// SetFavorites replaces the favorite track IDs of a known user
func (e *Engine) SetFavorites(username string, trackIDs []string) bool {
	e.writeMu.Lock()
	defer e.writeMu.Unlock()
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.social.Contains(username) {
		return false
	}
	e.favorites[username] = append([]string(nil), trackIDs...)
	return true
}

// InsertTitle adds a title to the autocomplete index only
func (e *Engine) InsertTitle(title string) {
	e.writeMu.Lock()
	defer e.writeMu.Unlock()
	e.mu.Lock()
	defer e.mu.Unlock()
	e.titles.Insert(title)
}

// DeleteTitle removes a title from the autocomplete index only
func (e *Engine) DeleteTitle(title string) bool {
	e.writeMu.Lock()
	defer e.writeMu.Unlock()
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.titles.Delete(title)
}

func (e *Engine) updateSizesLocked() {
	metrics.SetGraphSizes(
		e.similarity.VertexCount(),
		e.similarity.EdgeCount(),
		e.social.UserCount(),
		e.titles.Count(),
	)
}

func (e *Engine) publishReady(message string) {
	e.mu.RLock()
	e.updateSizesLocked()
	status := pubsub.EngineStatus{
		State:    "ready",
		Message:  message,
		Tracks:   e.similarity.VertexCount(),
		Edges:    e.similarity.EdgeCount(),
		Users:    e.social.UserCount(),
		Complete: true,
	}
	e.mu.RUnlock()
	e.publishStatus(status)
}

func (e *Engine) publishError(err error, step, total int) {
	e.publishStatus(pubsub.EngineStatus{
		State:   "error",
		Message: err.Error(),
		Step:    step,
		Total:   total,
	})
}

func (e *Engine) publishStatus(status pubsub.EngineStatus) {
	if err := e.publisher.Publish(pubsub.TopicEngineStatus, status.State, status); err != nil {
		logging.Warn("failed to publish engine status", "state", status.State, "error", err)
	}
}

func cloneTrack(t *model.Track) *model.Track {
	c := *t
	return &c
}
