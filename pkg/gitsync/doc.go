// Package gitsync keeps a local checkout of a style-pack repository
// in sync with its remote.
//
// This package enables GitOps workflows for style packs: the pack
// directory lives in a git repository, ganymede clones it at startup,
// and a background poller pulls the tracked branch and rebuilds the
// catalog whenever pack files change. It supports HTTPS token and SSH
// key authentication and rolls the checkout back when a reload fails,
// so a broken commit never replaces a serving catalog.
//
// # Basic Usage
//
//	cfg := &config.GitSyncConfig{
//		Repository: "https://github.com/company/style-packs.git",
//		Branch:     "main",
//		Path:       "packs",
//	}
//
//	syncer, err := gitsync.NewSyncer(cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	if err := syncer.Clone(context.Background()); err != nil {
//		log.Fatal(err)
//	}
//
// The catalog loader then reads from syncer.PacksPath().
//
// # Change Detection
//
// The poller pulls at a fixed interval and reloads only when files
// under the pack path change:
//
//	poller := gitsync.NewPoller(syncer, 60*time.Second, 30*time.Second, reloadFn, logger)
//	poller.Start(context.Background())
//	defer poller.Stop()
//
// Commits touching nothing under the pack path advance the tracked
// SHA without a reload. Rapid consecutive commits are debounced into
// a single reload.
//
// # Authentication
//
// Three auth types are supported:
//   - token: HTTPS access tokens (GitHub, GitLab, Bitbucket)
//   - ssh: public key authentication from a key file
//   - none: public repositories
//
// Token and passphrase values go through environment expansion, so
// config files can carry "${GITHUB_TOKEN}" instead of the secret.
//
// # Rollback
//
// When a reload fails, the poller checks the worktree back out at the
// last commit that loaded cleanly and reloads from it, keeping the
// catalog and the checkout consistent. Rollback is also available
// directly:
//
//	if err := syncer.Rollback(ctx, "a1b2c3d4"); err != nil {
//		log.Fatal(err)
//	}
package gitsync
