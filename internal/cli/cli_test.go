package cli

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"issueapi/internal/attachment"
	"issueapi/internal/config"
	"issueapi/internal/database/migration"
	"issueapi/internal/model"
	repoMocks "issueapi/internal/repository/mocks"
	serviceMocks "issueapi/internal/service/mocks"
	storeMocks "issueapi/internal/storage/mocks"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "issuectl", cmd.Use)

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()

	for _, name := range []string{"migrate", "export", "thumbnails", "token"} {
		t.Run(name, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{name})
			require.NoError(t, err, "Command %s should exist", name)
			assert.Equal(t, name, subCmd.Name())
		})
	}
}

func TestExportCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	exportCmd, _, err := cmd.Find([]string{"export"})
	require.NoError(t, err)

	out := exportCmd.Flags().Lookup("output")
	require.NotNil(t, out)
	assert.Equal(t, "o", out.Shorthand)

	order := exportCmd.Flags().Lookup("order")
	require.NotNil(t, order)
	assert.Equal(t, string(model.OrderNewest), order.DefValue)
}

func TestMigrateList(t *testing.T) {
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"migrate", "--list"})

	require.NoError(t, cmd.Execute())
	for _, name := range migration.StepNames() {
		assert.Contains(t, out.String(), name)
	}
}

func TestExportRejectsBadFilters(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"export", "--status", "closed", "--output", "-"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status")
}

func TestWriteCSV(t *testing.T) {
	q := model.IssueQuery{Order: model.OrderOldest}

	t.Run("rows", func(t *testing.T) {
		svc := new(serviceMocks.MockIssueService)
		svc.On("Export", mock.Anything, operator, q, mock.Anything).Return([]model.Issue{
			{ID: "a", Title: "Farola", Status: model.StatusOpen, CreatedAt: time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)},
			{ID: "b", Title: "Bache", Status: model.StatusResolved, CreatedAt: time.Date(2024, 5, 2, 8, 0, 0, 0, time.UTC)},
		}, nil).Once()

		var buf bytes.Buffer
		n, err := writeCSV(context.Background(), svc, operator, q, &buf)
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		records, err := csv.NewReader(&buf).ReadAll()
		require.NoError(t, err)
		require.Len(t, records, 3)
		assert.Equal(t, "ID", records[0][0])
		assert.Equal(t, "b", records[2][0])
		svc.AssertExpectations(t)
	})

	t.Run("service error", func(t *testing.T) {
		svc := new(serviceMocks.MockIssueService)
		svc.On("Export", mock.Anything, operator, q, mock.Anything).Return(nil, errors.New("db down")).Once()

		_, err := writeCSV(context.Background(), svc, operator, q, &bytes.Buffer{})
		assert.EqualError(t, err, "db down")
	})
}

func TestSignToken(t *testing.T) {
	const secret = "cli-test-secret-0123456789abcdef"
	sub := "6f1c0d2e-8a8b-4a52-9d0e-0c3f1f4f7a11"

	tests := []struct {
		name    string
		secret  string
		opts    TokenOptions
		wantErr string
	}{
		{name: "admin", secret: secret, opts: TokenOptions{Subject: sub, Role: "admin", TTL: time.Minute}},
		{name: "no secret", opts: TokenOptions{Subject: sub, Role: "user", TTL: time.Minute}, wantErr: "JWT_SECRET"},
		{name: "bad subject", secret: secret, opts: TokenOptions{Subject: "bob", Role: "user", TTL: time.Minute}, wantErr: "--sub"},
		{name: "bad role", secret: secret, opts: TokenOptions{Subject: sub, Role: "root", TTL: time.Minute}, wantErr: "--role"},
		{name: "bad ttl", secret: secret, opts: TokenOptions{Subject: sub, Role: "user"}, wantErr: "--ttl"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok, err := signToken(tt.secret, &tt.opts)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 2, strings.Count(tok, "."))
		})
	}
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 64, 48))
	for x := 0; x < 64; x++ {
		for y := 0; y < 48; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 4), G: uint8(y * 5), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func str(s string) *string { return &s }

func backfillFixture(t *testing.T) (*repoMocks.MemIssueRepository, *storeMocks.MemStorage, *attachment.Store) {
	t.Helper()
	mem := storeMocks.NewMemStorage()
	mem.Objects["photo_1_aaaaaaaaaaaa.png"] = pngBytes(t)
	files := attachment.NewStore(mem, config.StorageConfig{URLPrefix: "/uploads"}, nil, nil)

	repo := repoMocks.NewMemIssueRepository()
	repo.Put(model.Issue{ID: "1", CreatedBy: str("u"), Status: model.StatusOpen, PhotoURL: str("/uploads/photo_1_aaaaaaaaaaaa.png")})
	repo.Put(model.Issue{ID: "2", CreatedBy: str("u"), Status: model.StatusResolved, ResolutionPhotoURL: str("/uploads/photo_2_bbbbbbbbbbbb.png")})
	repo.Put(model.Issue{ID: "3", CreatedBy: str("u"), Status: model.StatusOpen})
	return repo, mem, files
}

func TestBackfillThumbnails(t *testing.T) {
	ctx := context.Background()
	repo, mem, files := backfillFixture(t)

	res, err := backfillThumbnails(ctx, repo, files, nil, false)
	require.NoError(t, err)
	assert.Equal(t, BackfillResult{Scanned: 3, Updated: 1, Failed: 1}, res)
	assert.True(t, mem.Has("thumbs/photo_1_aaaaaaaaaaaa.png.jpg"))

	is, err := repo.FindByID(ctx, "1")
	require.NoError(t, err)
	require.NotNil(t, is.ThumbURL)
	assert.Equal(t, "/uploads/thumbs/photo_1_aaaaaaaaaaaa.png.jpg", *is.ThumbURL)

	// A second run finds nothing left to record.
	res, err = backfillThumbnails(ctx, repo, files, nil, false)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Updated)
	assert.Equal(t, 1, repo.Updates)
}

func TestBackfillThumbnails_DryRun(t *testing.T) {
	repo, mem, files := backfillFixture(t)
	before := mem.Len()

	res, err := backfillThumbnails(context.Background(), repo, files, nil, true)
	require.NoError(t, err)
	assert.Equal(t, BackfillResult{Scanned: 3, Updated: 2}, res)
	assert.Equal(t, before, mem.Len())
	assert.Zero(t, repo.Updates)
}

func TestBackfillThumbnails_UpdateFailure(t *testing.T) {
	repo, _, files := backfillFixture(t)
	repo.UpdateErr = errors.New("conn reset")

	res, err := backfillThumbnails(context.Background(), repo, files, nil, false)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Updated)
	assert.Equal(t, 2, res.Failed)
}
