package gitsync

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"mercator-hq/ganymede/pkg/config"
)

// Syncer manages the local checkout of a style-pack repository. It
// clones on startup, pulls on demand, and exposes the checkout path so
// the catalog loader can read pack files straight from the worktree.
type Syncer struct {
	config    *config.GitSyncConfig
	localPath string
	auth      AuthProvider
	repo      *gogit.Repository
	mu        sync.RWMutex
	metrics   *SyncMetrics
}

// NewSyncer creates a syncer for the configured repository. The config
// must name a repository URL and branch; authentication is built from
// cfg.Auth with environment expansion applied to secrets.
func NewSyncer(cfg *config.GitSyncConfig) (*Syncer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	if cfg.Repository == "" {
		return nil, fmt.Errorf("repository URL cannot be empty")
	}

	if cfg.Branch == "" {
		return nil, fmt.Errorf("branch cannot be empty")
	}

	auth, err := NewAuthProvider(&cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth provider: %w", err)
	}

	localPath := cfg.Clone.LocalPath
	if localPath == "" {
		localPath = filepath.Join(os.TempDir(), "ganymede-style-packs")
	}

	return &Syncer{
		config:    cfg,
		localPath: localPath,
		auth:      auth,
		metrics:   &SyncMetrics{},
	}, nil
}

// Clone materializes the repository at the local path. An existing
// checkout is opened in place unless CleanOnStart is set, in which
// case it is removed and cloned fresh. Shallow clones (Depth > 0)
// track a single branch.
func (s *Syncer) Clone(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	defer func() {
		s.metrics.CloneDuration = time.Since(start)
	}()

	if s.config.Clone.CleanOnStart {
		if err := os.RemoveAll(s.localPath); err != nil {
			return fmt.Errorf("failed to clean existing checkout: %w", err)
		}
	}

	// Reuse a checkout left over from a previous run.
	gitDir := filepath.Join(s.localPath, ".git")
	if _, err := os.Stat(gitDir); err == nil {
		repo, err := gogit.PlainOpen(s.localPath)
		if err != nil {
			return fmt.Errorf("failed to open existing checkout: %w", err)
		}
		s.repo = repo
		return nil
	}

	if err := os.MkdirAll(s.localPath, 0o755); err != nil {
		return fmt.Errorf("failed to create checkout directory: %w", err)
	}

	cloneOpts := &gogit.CloneOptions{
		URL:           s.config.Repository,
		ReferenceName: plumbing.NewBranchReferenceName(s.config.Branch),
		SingleBranch:  s.config.Clone.Depth > 0,
		Depth:         s.config.Clone.Depth,
	}

	auth, err := s.auth.GetAuth()
	if err != nil {
		return fmt.Errorf("failed to get auth: %w", err)
	}
	cloneOpts.Auth = auth

	cloneCtx, cancel := context.WithTimeout(ctx, s.config.Poll.Timeout)
	defer cancel()

	repo, err := gogit.PlainCloneContext(cloneCtx, s.localPath, false, cloneOpts)
	if err != nil {
		return fmt.Errorf("failed to clone repository: %w", err)
	}

	s.repo = repo
	return nil
}

// Pull fetches the tracked branch from origin and fast-forwards the
// worktree. The result reports whether HEAD moved and which files
// changed between the old and new commits. Safe for concurrent use.
func (s *Syncer) Pull(ctx context.Context) (*PullResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	defer func() {
		s.metrics.PullDuration = time.Since(start)
		s.metrics.LastPullTime = time.Now()
	}()

	if s.repo == nil {
		return nil, fmt.Errorf("repository not initialized, call Clone() first")
	}

	ref, err := s.repo.Head()
	if err != nil {
		return nil, fmt.Errorf("failed to get HEAD: %w", err)
	}
	fromSHA := ref.Hash().String()

	worktree, err := s.repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to get worktree: %w", err)
	}

	pullOpts := &gogit.PullOptions{
		RemoteName: "origin",
		Force:      false,
	}

	auth, err := s.auth.GetAuth()
	if err != nil {
		return nil, fmt.Errorf("failed to get auth: %w", err)
	}
	pullOpts.Auth = auth

	pullCtx, cancel := context.WithTimeout(ctx, s.config.Poll.Timeout)
	defer cancel()

	err = worktree.PullContext(pullCtx, pullOpts)
	if err != nil && err != gogit.NoErrAlreadyUpToDate {
		s.metrics.FailedPulls++
		return nil, fmt.Errorf("failed to pull: %w", err)
	}

	s.metrics.SuccessfulPulls++

	newRef, err := s.repo.Head()
	if err != nil {
		return nil, fmt.Errorf("failed to get new HEAD: %w", err)
	}
	toSHA := newRef.Hash().String()

	result := &PullResult{
		FromSHA:    fromSHA,
		ToSHA:      toSHA,
		HadChanges: fromSHA != toSHA,
	}

	if result.HadChanges {
		changedFiles, err := s.changedFilesBetween(fromSHA, toSHA)
		if err != nil {
			return nil, fmt.Errorf("failed to get changed files: %w", err)
		}
		result.ChangedFiles = changedFiles
		s.metrics.LastCommitSHA = toSHA
	}

	return result, nil
}

// CurrentCommit returns metadata about the commit the worktree sits
// on. Safe for concurrent use.
func (s *Syncer) CurrentCommit() (*CommitInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.repo == nil {
		return nil, fmt.Errorf("repository not initialized, call Clone() first")
	}

	ref, err := s.repo.Head()
	if err != nil {
		return nil, fmt.Errorf("failed to get HEAD: %w", err)
	}

	commit, err := s.repo.CommitObject(ref.Hash())
	if err != nil {
		return nil, fmt.Errorf("failed to get commit: %w", err)
	}

	return &CommitInfo{
		SHA:        commit.Hash.String(),
		Author:     commit.Author.Name,
		Email:      commit.Author.Email,
		Timestamp:  commit.Author.When,
		Message:    commit.Message,
		Branch:     s.config.Branch,
		Repository: s.config.Repository,
	}, nil
}

// Rollback checks the worktree out at the given commit. Used by the
// poller to restore the last known-good pack set when a reload fails.
func (s *Syncer) Rollback(ctx context.Context, targetSHA string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.repo == nil {
		return fmt.Errorf("repository not initialized")
	}

	targetHash := plumbing.NewHash(targetSHA)
	if _, err := s.repo.CommitObject(targetHash); err != nil {
		return fmt.Errorf("target commit not found: %w", err)
	}

	worktree, err := s.repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}

	err = worktree.Checkout(&gogit.CheckoutOptions{
		Hash: targetHash,
	})
	if err != nil {
		return fmt.Errorf("failed to checkout commit %s: %w", targetSHA, err)
	}

	return nil
}

// ListPackFiles returns the pack files sitting directly in the
// configured pack directory, sorted by name. Subdirectories and
// dot-files are skipped, mirroring the catalog loader's flat scan.
func (s *Syncer) ListPackFiles() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	packsPath := filepath.Join(s.localPath, s.config.Path)

	entries, err := os.ReadDir(packsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read pack directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		if isPackFile(name) {
			files = append(files, filepath.Join(packsPath, name))
		}
	}
	sort.Strings(files)

	return files, nil
}

// changedFilesBetween diffs two commits and returns the repo-relative
// paths that differ. Deleted files report their old path. Caller must
// hold the lock.
func (s *Syncer) changedFilesBetween(fromSHA, toSHA string) ([]string, error) {
	if s.repo == nil {
		return nil, fmt.Errorf("repository not initialized")
	}

	fromCommit, err := s.repo.CommitObject(plumbing.NewHash(fromSHA))
	if err != nil {
		return nil, fmt.Errorf("failed to get from commit: %w", err)
	}

	toCommit, err := s.repo.CommitObject(plumbing.NewHash(toSHA))
	if err != nil {
		return nil, fmt.Errorf("failed to get to commit: %w", err)
	}

	fromTree, err := fromCommit.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to get from tree: %w", err)
	}

	toTree, err := toCommit.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to get to tree: %w", err)
	}

	changes, err := fromTree.Diff(toTree)
	if err != nil {
		return nil, fmt.Errorf("failed to diff trees: %w", err)
	}

	var files []string
	for _, change := range changes {
		if change.To.Name != "" {
			files = append(files, change.To.Name)
		} else if change.From.Name != "" {
			files = append(files, change.From.Name)
		}
	}

	return files, nil
}

// Metrics returns a copy of the sync counters.
func (s *Syncer) Metrics() SyncMetrics {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return *s.metrics
}

// LocalPath returns the checkout directory.
func (s *Syncer) LocalPath() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.localPath
}

// PacksPath returns the pack directory inside the checkout. This is
// the directory the catalog loader should scan when the git source is
// enabled.
func (s *Syncer) PacksPath() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return filepath.Join(s.localPath, s.config.Path)
}

// isPackFile reports whether the path carries a pack extension.
func isPackFile(path string) bool {
	switch filepath.Ext(path) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}
