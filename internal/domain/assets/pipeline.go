// Package assets post-processes generated slide content: placeholder
// references go in synchronously so a slide is renderable the moment it is
// emitted, and real image/icon resolution runs in the background until the
// orchestrator's join barrier.
package assets

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"deckgen-server/internal/domain/presentation"
	"deckgen-server/internal/domain/schema"
	"deckgen-server/internal/infrastructure/metrics"
)

// Fetcher resolves prompts/queries to concrete asset URLs.
type Fetcher interface {
	FetchImage(ctx context.Context, prompt string) (string, error)
	FetchIcon(ctx context.Context, query string) (string, error)
}

// Placeholder references inserted before real assets resolve.
const (
	PlaceholderImageURL = "/static/images/placeholder.jpg"
	PlaceholderIconURL  = "/static/icons/placeholder.svg"
)

const maxConcurrentFetches = 8

// Pipeline owns the fetcher; one Run is created per stream invocation.
type Pipeline struct {
	fetcher Fetcher
	log     zerolog.Logger
}

// NewPipeline wires the asset pipeline.
func NewPipeline(fetcher Fetcher, log zerolog.Logger) *Pipeline {
	return &Pipeline{
		fetcher: fetcher,
		log:     log.With().Str("component", "asset-pipeline").Logger(),
	}
}

// InsertPlaceholders mutates slide content in place, filling missing or
// empty URL sub-fields next to every image prompt and icon query.
func InsertPlaceholders(content map[string]any) {
	walkAssetNodes(content, func(node map[string]any, urlField string) {
		if url, ok := node[urlField].(string); ok && url != "" {
			return
		}
		if urlField == schema.FieldImageURL {
			node[schema.FieldImageURL] = PlaceholderImageURL
		} else {
			node[schema.FieldIconURL] = PlaceholderIconURL
		}
	})
}

// Run collects the asset tasks scheduled for one stream. It is owned by a
// single orchestrator invocation and joined exactly once; cancelling ctx
// cancels all outstanding fetches.
type Run struct {
	fetcher  Fetcher
	log      zerolog.Logger
	group    *errgroup.Group
	ctx      context.Context
	mu       sync.Mutex
	warnings []string
}

// NewRun starts an empty task collection bound to ctx.
func (p *Pipeline) NewRun(ctx context.Context) *Run {
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(maxConcurrentFetches)
	return &Run{
		fetcher: p.fetcher,
		log:     p.log,
		group:   group,
		ctx:     groupCtx,
	}
}

// assetTask is one pending fetch, captured while walking the content tree.
type assetTask struct {
	node     map[string]any
	urlField string
	kind     string
	query    string
	fetch    func(context.Context, string) (string, error)
}

// Schedule registers background resolution of every asset field in the
// slide's content. The slide can be emitted immediately; its content maps
// are mutated once each fetch resolves. Failures keep the placeholder and
// are reported as warnings at the join barrier, never as stream errors.
//
// The walk finishes before any goroutine starts: a resolve goroutine writes
// into the content maps, and launching it mid-walk would race the iteration.
func (r *Run) Schedule(slide *presentation.Slide) {
	var tasks []assetTask
	walkAssetNodes(slide.Content, func(node map[string]any, urlField string) {
		if urlField == schema.FieldImageURL {
			prompt, _ := node[schema.FieldImagePrompt].(string)
			if prompt == "" {
				return
			}
			tasks = append(tasks, assetTask{node: node, urlField: schema.FieldImageURL, kind: "image", query: prompt, fetch: r.fetcher.FetchImage})
			return
		}
		query, _ := node[schema.FieldIconQuery].(string)
		if query == "" {
			return
		}
		tasks = append(tasks, assetTask{node: node, urlField: schema.FieldIconURL, kind: "icon", query: query, fetch: r.fetcher.FetchIcon})
	})

	index := slide.Index
	for _, task := range tasks {
		task := task
		r.group.Go(func() error {
			r.resolve(task.node, task.urlField, task.kind, index, task.query, task.fetch)
			return nil
		})
	}
}

// Wait is the join barrier: it blocks until every scheduled task settles and
// returns the warnings collected from failed fetches.
func (r *Run) Wait() []string {
	_ = r.group.Wait()
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.warnings
}

func (r *Run) resolve(node map[string]any, urlField, kind string, slideIndex int, query string, fetch func(context.Context, string) (string, error)) {
	url, err := fetch(r.ctx, query)
	if err != nil {
		metrics.AssetFetchFailuresTotal.WithLabelValues(kind).Inc()
		r.log.Warn().Err(err).
			Str("kind", kind).
			Int("slide", slideIndex).
			Str("query", query).
			Msg("asset fetch failed, keeping placeholder")
		r.mu.Lock()
		r.warnings = append(r.warnings, fmt.Sprintf("slide %d: %s for %q unresolved, placeholder kept", slideIndex, kind, query))
		r.mu.Unlock()
		return
	}

	r.mu.Lock()
	node[urlField] = url
	r.mu.Unlock()
}

// walkAssetNodes visits every object in the content tree that carries an
// image prompt or icon query, in both nested objects and arrays.
func walkAssetNodes(value any, visit func(node map[string]any, urlField string)) {
	switch typed := value.(type) {
	case map[string]any:
		if _, ok := typed[schema.FieldImagePrompt]; ok {
			visit(typed, schema.FieldImageURL)
		}
		if _, ok := typed[schema.FieldIconQuery]; ok {
			visit(typed, schema.FieldIconURL)
		}
		for _, child := range typed {
			walkAssetNodes(child, visit)
		}
	case []any:
		for _, child := range typed {
			walkAssetNodes(child, visit)
		}
	}
}
