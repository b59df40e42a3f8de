package crawl

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/matsen/jrec/internal/fetch"
	"github.com/matsen/jrec/internal/logger"
)

// Expand resolves name and then its co-authors, depth first.
//
// Expansion runs on the checkpoint's pending stack, so a run stopped
// between two authors resumes where it left off. Entries deeper than the
// configured maximum and names already visited are dropped when they reach
// the top of the stack. A name whose profile cannot be resolved is left
// unvisited so a later run retries it. The returned error is non-nil only
// for a failed save or a cancelled ctx.
func (e *Engine) Expand(ctx context.Context, name string, depth int) error {
	base := len(e.state.Pending)
	e.state.Push(name, depth)
	return e.drain(ctx, base)
}

// Resume finishes expansions left pending by an interrupted run.
func (e *Engine) Resume(ctx context.Context) error {
	if n := len(e.state.Pending); n > 0 {
		e.log.Info("Resuming pending expansions", logger.Int("pending", n))
	}
	return e.drain(ctx, 0)
}

// drain expands stack entries until the stack is back to base entries.
func (e *Engine) drain(ctx context.Context, base int) error {
	for len(e.state.Pending) > base {
		if err := ctx.Err(); err != nil {
			return err
		}
		next, _ := e.state.Peek()
		if err := e.expandOne(ctx, next.Name, next.Depth); err != nil {
			return err
		}
	}
	return nil
}

// expandOne handles the top stack entry. On success the entry is replaced by
// the author's co-authors, first co-author on top.
func (e *Engine) expandOne(ctx context.Context, name string, depth int) error {
	log := e.log.With(logger.String("author", name), logger.Int("depth", depth))

	if depth > e.cfg.MaxDepth {
		e.state.Pop()
		log.Debug("Author skipped: beyond max depth")
		return nil
	}
	if e.state.IsVisited(name) {
		e.state.Pop()
		e.summary.AuthorsSkipped++
		log.Debug("Author skipped: already visited")
		return nil
	}

	a, err := e.sources.Authors.FetchAuthor(ctx, name)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		e.state.Pop()
		e.summary.AuthorsFailed++
		if errors.Is(err, fetch.ErrNotFound) {
			log.Info("Author not found")
		} else {
			log.Warn("Author fetch failed", logger.Error(err))
		}
		return nil
	}

	e.state.Pop()
	e.state.AddAuthor(a)
	e.state.MarkVisited(name)
	for i := len(a.CoAuthors) - 1; i >= 0; i-- {
		e.state.Push(a.CoAuthors[i], depth+1)
	}
	e.summary.AuthorsAdded++
	log.Info("Author expanded",
		logger.String("author_id", a.ID),
		logger.Int("coauthors", len(a.CoAuthors)),
	)

	if err := e.save(); err != nil {
		return err
	}
	return e.wait(ctx, e.cfg.Delays.Author)
}

// ProcessArticles fetches the articles of every author that has none yet.
func (e *Engine) ProcessArticles(ctx context.Context) error {
	for i := 0; i < len(e.state.Authors); i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		id := e.state.Authors[i].ID
		if id == "" {
			continue
		}
		if _, done := e.fetchedAuthors[id]; done || e.state.HasArticlesFor(id) {
			continue
		}
		log := e.log.With(logger.String("author_id", id))

		articles, err := e.sources.Articles.FetchArticles(ctx, id)
		if err != nil {
			if ctx.Err() != nil {
				// A partial batch would look complete on resume.
				return ctx.Err()
			}
			e.summary.ArticleBatchesFailed++
			e.fetchedAuthors[id] = struct{}{}
			log.Warn("Article batch failed", logger.Error(err))
			continue
		}

		e.fetchedAuthors[id] = struct{}{}
		e.summary.ArticleBatches++
		log.Info("Article batch fetched", logger.Int("articles", len(articles)))
		// An empty batch changes nothing; the author is fetched again next run.
		if len(articles) > 0 {
			e.state.AddArticles(articles)
			e.summary.ArticlesAdded += len(articles)
			if err := e.save(); err != nil {
				return err
			}
		}
		if err := e.wait(ctx, e.cfg.Delays.Articles); err != nil {
			return err
		}
	}
	return nil
}

// ProcessJournals resolves the journal of every article without an ISSN.
//
// A source title already resolved on another article is attached without a
// lookup. A title whose lookup failed is not looked up again in this run. A
// journal whose ISSN is already known is not appended twice.
func (e *Engine) ProcessJournals(ctx context.Context) error {
	for i := 0; i < len(e.state.Articles); i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		article := e.state.Articles[i]
		if article.HasISSN() {
			continue
		}
		title := strings.TrimSpace(article.Source)
		if title == "" {
			e.summary.SourcesMissing++
			continue
		}
		if issn, ok := e.state.ISSNForSource(title); ok {
			e.state.SetArticleISSN(i, issn)
			e.summary.ArticlesResolved++
			e.summary.SourcesReused++
			continue
		}
		if _, failed := e.failedSources[title]; failed {
			continue
		}
		log := e.log.With(logger.String("source", title))

		j, err := e.sources.Journals.FetchJournal(ctx, title)
		if err == nil && strings.TrimSpace(j.ISSN) == "" {
			err = fmt.Errorf("journal %q has no ISSN", j.Name)
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			e.failedSources[title] = struct{}{}
			e.summary.JournalLookupsFailed++
			if errors.Is(err, fetch.ErrNoResults) {
				log.Info("Journal not found")
			} else {
				log.Warn("Journal lookup failed", logger.Error(err))
			}
			if err := e.wait(ctx, e.cfg.Delays.Journal); err != nil {
				return err
			}
			continue
		}

		issn := strings.TrimSpace(j.ISSN)
		e.state.SetArticleISSN(i, issn)
		e.summary.ArticlesResolved++
		if e.state.AddJournal(j) {
			e.summary.JournalsAdded++
			log.Info("Journal resolved", logger.String("issn", issn), logger.String("name", j.Name))
		} else {
			log.Info("Journal already known", logger.String("issn", issn))
		}
		if err := e.save(); err != nil {
			return err
		}
		if err := e.wait(ctx, e.cfg.Delays.Journal); err != nil {
			return err
		}
	}
	return nil
}
