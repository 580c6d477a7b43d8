package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"issueapi/internal/attachment"
	"issueapi/internal/model"
	"issueapi/internal/repository"
	"issueapi/internal/scope"
)

// ThumbnailsOptions holds flags for the thumbnails command.
type ThumbnailsOptions struct {
	*RootOptions
	DryRun bool
}

// BackfillResult summarises a thumbnail backfill.
type BackfillResult struct {
	Scanned int
	Updated int
	Failed  int
}

// NewThumbnailsCommand creates the thumbnails command.
func NewThumbnailsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ThumbnailsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "thumbnails",
		Short: "Derive missing photo thumbnails",
		Long: `Walk every issue, derive the thumbnail of each stored photo and resolution
photo when it is missing, and record its URL on the issue. Photos whose
thumbnail already exists are left alone.

Examples:
  issuectl thumbnails
  issuectl thumbnails --dry-run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := openEnv(ctx, opts.RootOptions, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer e.Close()

			res, err := backfillThumbnails(ctx, e.issues, e.files, e.log, opts.DryRun)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "scanned %d, updated %d, failed %d\n", res.Scanned, res.Updated, res.Failed)
			if res.Failed > 0 {
				return fmt.Errorf("%d thumbnails could not be derived", res.Failed)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "report what would change without writing")

	return cmd
}

type thumbPatch struct {
	issueID string
	patch   repository.IssuePatch
}

// backfillThumbnails derives the thumbnail of every photo slot and records any
// URL the row is missing. Rows are patched after the scan so that no update
// runs while the export cursor is open.
func backfillThumbnails(ctx context.Context, issues repository.IssueRepository, files *attachment.Store, log *zap.Logger, dryRun bool) (BackfillResult, error) {
	if log == nil {
		log = zap.NewNop()
	}
	var (
		res     BackfillResult
		pending []thumbPatch
	)

	q := model.IssueQuery{Order: model.OrderOldest}
	err := issues.Export(ctx, q, scope.For(operator), func(is *model.Issue) error {
		res.Scanned++
		var p repository.IssuePatch
		slots := []struct {
			photo, thumb *string
			dst          **string
		}{
			{is.PhotoURL, is.ThumbURL, &p.ThumbURL},
			{is.ResolutionPhotoURL, is.ResolutionThumbURL, &p.ResolutionThumbURL},
		}
		for _, s := range slots {
			if s.photo == nil {
				continue
			}
			url, err := deriveThumb(ctx, files, *s.photo, dryRun)
			if err != nil {
				res.Failed++
				log.Warn("thumbnail_backfill_failed", zap.String("issue_id", is.ID), zap.String("photo_url", *s.photo), zap.Error(err))
				continue
			}
			if s.thumb == nil || *s.thumb != url {
				*s.dst = &url
			}
		}
		if !p.Empty() {
			pending = append(pending, thumbPatch{issueID: is.ID, patch: p})
		}
		return nil
	})
	if err != nil {
		return res, fmt.Errorf("scan issues: %w", err)
	}

	for _, tp := range pending {
		if dryRun {
			log.Info("thumbnail_backfill_pending", zap.String("issue_id", tp.issueID))
			res.Updated++
			continue
		}
		if _, err := issues.Update(ctx, tp.issueID, tp.patch); err != nil {
			res.Failed++
			log.Warn("thumbnail_backfill_update_failed", zap.String("issue_id", tp.issueID), zap.Error(err))
			continue
		}
		res.Updated++
	}
	return res, nil
}

func deriveThumb(ctx context.Context, files *attachment.Store, photoURL string, dryRun bool) (string, error) {
	if dryRun {
		url, ok := files.ThumbnailURL(photoURL)
		if !ok {
			return "", fmt.Errorf("not a managed url")
		}
		return url, nil
	}
	key, ok := files.KeyFromURL(photoURL)
	if !ok {
		return "", fmt.Errorf("not a managed url")
	}
	return files.DeriveThumbnail(ctx, key)
}
