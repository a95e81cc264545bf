package block

import (
	"context"
	"sync"

	"github.com/ltst/latest-block/config"
	"github.com/ltst/latest-block/entitystore"
	"github.com/ltst/latest-block/latest"
	"github.com/ltst/latest-block/logging"
	"github.com/ltst/latest-block/metrics"
)

// SentinelNoChannel marks a backing entity identifier that must not be
// treated as a channel identifier under the name-echo strategy.
const SentinelNoChannel = "none"

// latestUpdateSchema is the fixed schema declared once per block lifetime
// under the write-through strategy.
var latestUpdateSchema = entitystore.Schema{
	Title: "LatestUpdate",
	Properties: map[string]string{
		"text":      "string",
		"image":     "string",
		"href":      "string",
		"bgColor":   "string",
		"textColor": "string",
		"ts":        "number",
	},
}

// Block is the component instance bound to one backing entity. It owns
// its local state exclusively; the view is fully determined by
// (channel ID present, loading flag, update present).
type Block struct {
	mu sync.Mutex

	entityID     string
	strategy     config.Strategy
	channelID    string
	channel      *latest.Channel
	update       *latest.Update
	loading      bool
	entityTypeID string

	fetcher latest.Interface
	store   entitystore.Interface
	logger  *logging.Logger
	siteURL string

	// persistMu serializes host writes so the entity type is declared at
	// most once even when a reset/resubmit overlaps an earlier write.
	persistMu sync.Mutex
	writes    sync.WaitGroup
}

// Options configures a new block instance
type Options struct {
	// EntityID identifies the backing entity the block is bound to
	EntityID string

	// Properties is the inbound properties bag supplied by the host at mount
	Properties map[string]interface{}

	// Strategy selects the persistence behavior
	Strategy config.Strategy

	// SiteURL is the external site base URL used for the channel page link
	SiteURL string

	Fetcher latest.Interface
	Store   entitystore.Interface
	Logger  *logging.Logger
}

// New creates a block bound to a backing entity. The initial channel
// identifier comes from the inbound properties under the write-through
// strategy, and from the backing entity's own identifier under name-echo
// (unless it is the "none" sentinel). No fetch happens here; call
// EnsureLoaded to trigger the initial load.
func New(opts Options) *Block {
	b := &Block{
		entityID: opts.EntityID,
		strategy: opts.Strategy,
		fetcher:  opts.Fetcher,
		store:    opts.Store,
		logger:   opts.Logger,
		siteURL:  opts.SiteURL,
	}

	switch opts.Strategy {
	case config.StrategyNameEcho:
		if opts.EntityID != SentinelNoChannel {
			b.channelID = opts.EntityID
		}
	default:
		if v, ok := opts.Properties["channelId"].(string); ok {
			b.channelID = v
		}
	}

	return b
}

// EnsureLoaded triggers a fetch for the current channel identifier if one
// is set and nothing is loaded or loading yet. Used at mount time when the
// channel identifier was pre-populated.
func (b *Block) EnsureLoaded(ctx context.Context) {
	b.mu.Lock()
	channelID := b.channelID
	b.mu.Unlock()

	if channelID == "" {
		return
	}
	b.Submit(ctx, channelID)
}

// Submit sets the channel identifier and fetches its latest update.
// Empty identifiers are ignored. The fetch fires only while no update is
// loaded and no fetch is in flight; the loading flag is the single-request
// gate. On any fetch failure the state degrades to the input view silently.
func (b *Block) Submit(ctx context.Context, channelID string) {
	b.mu.Lock()
	if channelID == "" || b.loading || b.update != nil {
		b.mu.Unlock()
		return
	}
	b.channelID = channelID
	b.loading = true
	b.mu.Unlock()

	result, err := b.fetcher.Latest(ctx, channelID)

	b.mu.Lock()
	b.loading = false
	if err != nil {
		// Channel and update stay nil; the view falls back to the input
		// form and the user can resubmit.
		b.mu.Unlock()
		b.logger.Debug("Fetch failed, reverting to input view", map[string]interface{}{
			"channelId": channelID,
			"error":     err.Error(),
		})
		return
	}
	b.channel = result.Channel
	b.update = result.Update
	loaded := b.channel != nil && b.update != nil
	b.mu.Unlock()

	if loaded {
		b.persist(channelID, result.Update)
	}
}

// Reset clears the channel identifier and any loaded state, returning the
// block to the input view.
func (b *Block) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.channelID = ""
	b.channel = nil
	b.update = nil
}

// persist pushes the loaded state into the host entity store without
// blocking the caller. Store failures are counted and logged, never
// surfaced to the user.
func (b *Block) persist(channelID string, update *latest.Update) {
	b.writes.Add(1)
	go func() {
		defer b.writes.Done()

		b.persistMu.Lock()
		defer b.persistMu.Unlock()

		ctx := context.Background()
		switch b.strategy {
		case config.StrategyNameEcho:
			b.persistName(ctx, channelID)
		default:
			b.persistUpdate(ctx, update)
			b.persistChannelID(ctx, channelID)
		}
	}()
}

// persistUpdate stores the fetched update as a new host entity, declaring
// the LatestUpdate entity type on first use and reusing its identifier on
// later loads.
func (b *Block) persistUpdate(ctx context.Context, update *latest.Update) {
	b.mu.Lock()
	typeID := b.entityTypeID
	b.mu.Unlock()

	if typeID == "" {
		created, err := b.store.CreateEntityType(ctx, latestUpdateSchema)
		metrics.RecordHostWrite("create_entity_type", err)
		if err != nil {
			// Nothing was declared; the next load will try again.
			b.logger.Debug("Entity type declaration failed", map[string]interface{}{
				"error": err.Error(),
			})
			return
		}
		typeID = created

		b.mu.Lock()
		b.entityTypeID = typeID
		b.mu.Unlock()
	}

	_, err := b.store.CreateEntity(ctx, typeID, updateProperties(update))
	metrics.RecordHostWrite("create_entity", err)
	if err != nil {
		b.logger.Debug("Update entity creation failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

// persistChannelID writes the raw channel identifier onto the backing entity
func (b *Block) persistChannelID(ctx context.Context, channelID string) {
	err := b.store.UpdateEntity(ctx, b.entityID, map[string]interface{}{
		"channelId": channelID,
	})
	metrics.RecordHostWrite("update_entity", err)
	if err != nil {
		b.logger.Debug("Backing entity channelId write failed", map[string]interface{}{
			"entityId": b.entityID,
			"error":    err.Error(),
		})
	}
}

// persistName writes the derived channel label onto the backing entity
func (b *Block) persistName(ctx context.Context, channelID string) {
	err := b.store.UpdateEntity(ctx, b.entityID, map[string]interface{}{
		"name": "Latest Channel " + channelID,
	})
	metrics.RecordHostWrite("update_entity", err)
	if err != nil {
		b.logger.Debug("Backing entity name write failed", map[string]interface{}{
			"entityId": b.entityID,
			"error":    err.Error(),
		})
	}
}

// updateProperties flattens an update into entity properties, omitting
// absent optional fields.
func updateProperties(update *latest.Update) map[string]interface{} {
	props := map[string]interface{}{
		"ts": update.TS,
	}
	if update.Text != nil {
		props["text"] = *update.Text
	}
	if update.Image != nil {
		props["image"] = *update.Image
	}
	if update.Href != nil {
		props["href"] = *update.Href
	}
	if update.BGColor != nil {
		props["bgColor"] = *update.BGColor
	}
	if update.TextColor != nil {
		props["textColor"] = *update.TextColor
	}
	return props
}

// Flush waits for outstanding host writes to finish. Called on shutdown
// and by tests that assert on persisted state.
func (b *Block) Flush() {
	b.writes.Wait()
}
