package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/reelist/internal/formatter"
	"github.com/desertthunder/reelist/internal/lists"
	"github.com/desertthunder/reelist/internal/models"
	"github.com/desertthunder/reelist/internal/shared"
)

// findList resolves a list argument given either as an ID or as a (case-insensitive) name.
func findList(ctx context.Context, svc *lists.Service, uid, ref string) (*models.List, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("%w: list ID or name", shared.ErrMissingArgument)
	}

	all, err := svc.Lists(ctx, uid)
	if err != nil {
		return nil, err
	}
	for _, l := range all {
		if l.ID == ref {
			return l, nil
		}
	}
	for _, l := range all {
		if strings.EqualFold(l.Name, ref) {
			return l, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", shared.ErrListNotFound, ref)
}

func requireArg(cmd *cli.Command, name string) (string, error) {
	v := strings.TrimSpace(cmd.StringArg(name))
	if v == "" {
		return "", fmt.Errorf("%w: %s", shared.ErrMissingArgument, name)
	}
	return v, nil
}

// ListsLs prints the signed-in user's lists.
func (r *Runner) ListsLs(ctx context.Context, cmd *cli.Command) error {
	svc, uid, err := r.session()
	if err != nil {
		return err
	}

	all, err := svc.Lists(ctx, uid)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(all, cmd.Bool("pretty"))
	}
	return r.writeBytes(formatter.FormatLists(all))
}

// ListsCreate creates a list.
func (r *Runner) ListsCreate(ctx context.Context, cmd *cli.Command) error {
	svc, uid, err := r.session()
	if err != nil {
		return err
	}

	id, err := svc.CreateList(ctx, uid, cmd.StringArg("name"))
	if err != nil {
		return err
	}
	return r.writePlain("✓ Created list %s\n", id)
}

// ListsRename renames a list.
func (r *Runner) ListsRename(ctx context.Context, cmd *cli.Command) error {
	svc, uid, err := r.session()
	if err != nil {
		return err
	}

	list, err := findList(ctx, svc, uid, cmd.StringArg("list"))
	if err != nil {
		return err
	}
	if err := svc.RenameList(ctx, uid, list.ID, cmd.StringArg("name")); err != nil {
		return err
	}

	renamed, err := svc.Store().GetList(ctx, uid, list.ID)
	if err != nil {
		return err
	}
	return r.writePlain("✓ Renamed '%s' to '%s'\n", list.Name, renamed.Name)
}

// ListsDelete deletes a list with all of its movies. The default list is refused.
func (r *Runner) ListsDelete(ctx context.Context, cmd *cli.Command) error {
	svc, uid, err := r.session()
	if err != nil {
		return err
	}

	list, err := findList(ctx, svc, uid, cmd.StringArg("list"))
	if err != nil {
		return err
	}
	if err := svc.DeleteList(ctx, uid, list.ID); err != nil {
		return err
	}
	return r.writePlain("✓ Deleted '%s'\n", list.Name)
}

// ListsShow prints the movies in a list.
func (r *Runner) ListsShow(ctx context.Context, cmd *cli.Command) error {
	svc, uid, err := r.session()
	if err != nil {
		return err
	}

	list, err := findList(ctx, svc, uid, cmd.StringArg("list"))
	if err != nil {
		return err
	}
	items, err := svc.Items(ctx, uid, list.ID)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(items, cmd.Bool("pretty"))
	}
	return r.writeBytes(formatter.FormatItems(list, items))
}

// ListsAdd snapshots a movie from the provider into a list.
func (r *Runner) ListsAdd(ctx context.Context, cmd *cli.Command) error {
	svc, uid, list, movieID, err := r.listMovieArgs(ctx, cmd)
	if err != nil {
		return err
	}

	movie, err := r.resolveMovie(ctx, movieID)
	if err != nil {
		return err
	}
	if _, err := svc.AddMovieToList(ctx, uid, list.ID, movie); err != nil {
		return err
	}
	return r.writePlain("✓ Added '%s' to '%s'\n", titleOf(movie), list.Name)
}

// ListsRemove removes a movie from a list.
func (r *Runner) ListsRemove(ctx context.Context, cmd *cli.Command) error {
	svc, uid, list, movieID, err := r.listMovieArgs(ctx, cmd)
	if err != nil {
		return err
	}

	if err := svc.RemoveMovieFromList(ctx, uid, list.ID, movieID); err != nil {
		return err
	}
	return r.writePlain("✓ Removed %s from '%s'\n", movieID, list.Name)
}

// ListsToggle adds a movie to a list or removes it when already present.
func (r *Runner) ListsToggle(ctx context.Context, cmd *cli.Command) error {
	svc, uid, list, movieID, err := r.listMovieArgs(ctx, cmd)
	if err != nil {
		return err
	}

	movie, err := r.resolveMovie(ctx, movieID)
	if err != nil {
		return err
	}
	present, err := svc.ToggleMovie(ctx, uid, list.ID, movie)
	if err != nil {
		return err
	}

	if present {
		return r.writePlain("✓ Added '%s' to '%s'\n", titleOf(movie), list.Name)
	}
	return r.writePlain("✓ Removed '%s' from '%s'\n", titleOf(movie), list.Name)
}

// ListsMembership prints which lists contain a movie.
func (r *Runner) ListsMembership(ctx context.Context, cmd *cli.Command) error {
	movieID, err := requireArg(cmd, "movie")
	if err != nil {
		return err
	}
	svc, uid, err := r.session()
	if err != nil {
		return err
	}

	all, membership, err := svc.MembershipFor(ctx, uid, movieID)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(membership, cmd.Bool("pretty"))
	}
	return r.writeBytes(formatter.FormatMembership(movieID, all, membership))
}

func (r *Runner) listMovieArgs(ctx context.Context, cmd *cli.Command) (*lists.Service, string, *models.List, string, error) {
	movieID, err := requireArg(cmd, "movie")
	if err != nil {
		return nil, "", nil, "", err
	}
	svc, uid, err := r.session()
	if err != nil {
		return nil, "", nil, "", err
	}
	list, err := findList(ctx, svc, uid, cmd.StringArg("list"))
	if err != nil {
		return nil, "", nil, "", err
	}
	return svc, uid, list, movieID, nil
}

func titleOf(movie models.Movie) string {
	if movie.Title == "" {
		return movie.IMDbID
	}
	return movie.Title
}
