package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/reelist/internal/formatter"
	"github.com/desertthunder/reelist/internal/models"
	"github.com/desertthunder/reelist/internal/services"
)

// pager is implemented by providers that can accumulate several result pages.
type pager interface {
	SearchPages(ctx context.Context, q services.SearchQuery, maxPages int) (*models.SearchResult, error)
}

// MoviesSearch searches the movie provider by title.
func (r *Runner) MoviesSearch(ctx context.Context, cmd *cli.Command) error {
	query, err := requireArg(cmd, "query")
	if err != nil {
		return err
	}
	provider, err := r.provider()
	if err != nil {
		return err
	}

	q := services.SearchQuery{
		Query: query,
		Page:  int(cmd.Int("page")),
		Type:  cmd.String("type"),
		Year:  cmd.String("year"),
	}

	var result *models.SearchResult
	if p, ok := provider.(pager); ok && cmd.Int("pages") > 1 {
		result, err = p.SearchPages(ctx, q, int(cmd.Int("pages")))
	} else {
		result, err = provider.Search(ctx, q)
	}
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(result, cmd.Bool("pretty"))
	}
	return r.writeBytes(formatter.FormatSearch(result))
}

// MoviesShow prints the details of one movie.
func (r *Runner) MoviesShow(ctx context.Context, cmd *cli.Command) error {
	movieID, err := requireArg(cmd, "movie")
	if err != nil {
		return err
	}
	provider, err := r.provider()
	if err != nil {
		return err
	}

	movie, err := provider.Details(ctx, movieID)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(movie, cmd.Bool("pretty"))
	}
	return r.writeBytes(formatter.FormatMovie(movie))
}
