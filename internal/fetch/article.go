package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/matsen/jrec/internal/browser"
	"github.com/matsen/jrec/internal/extract"
	"github.com/matsen/jrec/internal/logger"
	"github.com/matsen/jrec/internal/pace"
	"github.com/matsen/jrec/internal/record"
)

// ArticleConfig configures an ArticleFetcher.
type ArticleConfig struct {
	BaseURL   string // profile site root
	Selectors extract.ScholarSelectors
	PageDelay pace.Range // after each "show more"
}

// ArticleFetcher reads every publication listed on a profile.
type ArticleFetcher struct {
	Deps
	cfg ArticleConfig
}

// NewArticleFetcher creates an ArticleFetcher.
func NewArticleFetcher(d Deps, cfg ArticleConfig) *ArticleFetcher {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultScholarURL
	}
	return &ArticleFetcher{Deps: d, cfg: cfg}
}

// ListingURL returns the publication listing of a profile.
func (f *ArticleFetcher) ListingURL(authorID string) string {
	q := url.Values{"user": {authorID}, "hl": {"en"}}
	return strings.TrimRight(f.cfg.BaseURL, "/") + "/citations?" + q.Encode()
}

// FetchArticles pages through the listing of authorID, reading each row's
// detail view in an auxiliary context. Listing pages grow in place, so only
// rows past those already read are processed after each "show more".
//
// A row whose detail cannot be read still yields an Article built from the
// row. The error is non-nil only when the listing could not be loaded at
// all or ctx was cancelled; in the latter case the articles read so far are
// returned with it.
func (f *ArticleFetcher) FetchArticles(ctx context.Context, authorID string) ([]record.Article, error) {
	s := f.Session
	sel := f.cfg.Selectors
	log := f.logger(ctx).With(logger.String("author_id", authorID))

	if err := s.Load(ctx, f.ListingURL(authorID)); err != nil {
		return nil, err
	}

	var articles []record.Article
	for {
		if err := ctx.Err(); err != nil {
			return articles, err
		}
		if err := s.WaitFor(ctx, sel.ArticleRow); err != nil {
			log.Debug("No more article rows", logger.Error(err))
			break
		}
		page, err := f.snapshot(ctx, s)
		if err != nil {
			return articles, fmt.Errorf("reading listing: %w", err)
		}

		rows := sel.ArticleRows(page)
		if len(rows) <= len(articles) {
			break
		}
		for _, row := range rows[len(articles):] {
			if err := ctx.Err(); err != nil {
				return articles, err
			}
			a := extract.Article(row, f.detail(ctx, row, log))
			a.AuthorID = authorID
			articles = append(articles, a)
		}

		if !sel.MoreEnabled(page) {
			break
		}
		if err := s.Click(ctx, sel.MoreButton); err != nil {
			log.Debug("Show-more click failed", logger.Error(err))
			break
		}
		if err := f.wait(ctx, f.cfg.PageDelay); err != nil {
			return articles, err
		}
	}
	return articles, nil
}

// detail reads a row's detail view, or returns nil when it has none or it
// cannot be read.
func (f *ArticleFetcher) detail(ctx context.Context, row extract.ArticleRow, log logger.Logger) *extract.ArticleDetail {
	if !row.URL.OK {
		return nil
	}
	sel := f.cfg.Selectors

	var d *extract.ArticleDetail
	err := browser.WithAux(ctx, f.Session, func(aux browser.Session) error {
		if err := aux.Load(ctx, row.URL.Value); err != nil {
			return err
		}
		if err := aux.WaitFor(ctx, sel.DetailReady); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			// Read whatever fields the page has.
			log.Debug("Article detail not ready",
				logger.String("url", row.URL.Value),
				logger.Error(err),
			)
		}
		page, err := f.snapshot(ctx, aux)
		if err != nil {
			return err
		}
		detail := sel.ArticleDetail(page)
		d = &detail
		return nil
	})
	if err != nil {
		lvl := log.Warn
		if errors.Is(err, browser.ErrTimeout) {
			lvl = log.Debug
		}
		lvl("Article detail unavailable",
			logger.String("url", row.URL.Value),
			logger.Error(err),
		)
		return nil
	}
	return d
}
