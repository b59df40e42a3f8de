// Package crawl runs the three crawl stages over a checkpoint: co-author
// expansion, article listing, and journal resolution.
package crawl

//go:generate mockgen -source=engine.go -destination=mocks/mock_engine.go -package=mocks

import (
	"context"

	"github.com/matsen/jrec/internal/checkpoint"
	"github.com/matsen/jrec/internal/logger"
	"github.com/matsen/jrec/internal/pace"
	"github.com/matsen/jrec/internal/record"
)

// DefaultMaxDepth bounds co-author recursion.
const DefaultMaxDepth = 2

// AuthorSource resolves a display name to a profile.
type AuthorSource interface {
	FetchAuthor(ctx context.Context, name string) (record.Author, error)
}

// ArticleSource lists every article of a profile.
type ArticleSource interface {
	FetchArticles(ctx context.Context, authorID string) ([]record.Article, error)
}

// JournalSource resolves a source title to a journal.
type JournalSource interface {
	FetchJournal(ctx context.Context, title string) (record.Journal, error)
}

// Waiter inserts a paced delay.
type Waiter interface {
	Wait(ctx context.Context, r pace.Range) error
}

// Sources bundles the fetchers the engine drives.
type Sources struct {
	Authors  AuthorSource
	Articles ArticleSource
	Journals JournalSource
}

// Delays are the pauses after each unit of work.
type Delays struct {
	Author   pace.Range
	Articles pace.Range
	Journal  pace.Range
}

// Config configures an Engine.
type Config struct {
	MaxDepth int
	Delays   Delays
}

// Engine owns the crawl state for one run. It is not safe for concurrent
// use.
type Engine struct {
	state   *checkpoint.Checkpoint
	store   checkpoint.Saver
	sources Sources
	pacer   Waiter
	log     logger.Logger
	cfg     Config

	summary Summary
	// failedSources holds source titles whose lookup failed in this run.
	failedSources map[string]struct{}
	// fetchedAuthors holds author IDs whose articles were fetched in this run.
	fetchedAuthors map[string]struct{}
}

// New creates an Engine over state. Every unit of work is persisted through
// store.
func New(state *checkpoint.Checkpoint, store checkpoint.Saver, sources Sources, pacer Waiter, log logger.Logger, cfg Config) *Engine {
	if log == nil {
		log = logger.NewNop()
	}
	return &Engine{
		state:          state,
		store:          store,
		sources:        sources,
		pacer:          pacer,
		log:            log,
		cfg:            cfg,
		failedSources:  make(map[string]struct{}),
		fetchedAuthors: make(map[string]struct{}),
	}
}

// State returns the checkpoint the engine mutates.
func (e *Engine) State() *checkpoint.Checkpoint {
	return e.state
}

// Summary returns the counters accumulated so far.
func (e *Engine) Summary() Summary {
	return e.summary
}

func (e *Engine) save() error {
	if err := e.store.Save(e.state); err != nil {
		return err
	}
	e.log.Debug("Checkpoint saved")
	return nil
}

func (e *Engine) wait(ctx context.Context, r pace.Range) error {
	if e.pacer == nil {
		return ctx.Err()
	}
	return e.pacer.Wait(ctx, r)
}
