package gitsync

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"mercator-hq/ganymede/pkg/config"
)

const sourcePack = `{
  "version": 1,
  "styles": [
    {
      "id": "noir",
      "name": "Film Noir",
      "category": "Film",
      "default": {"prefix": "film noir, high contrast", "suffix": "dramatic shadows"}
    }
  ]
}`

// createSourceRepo initializes a git repository holding one pack file
// under packs/, standing in for the remote. go-git's PlainInit names
// the initial branch "master".
func createSourceRepo(t testing.TB, dir string) *gogit.Repository {
	t.Helper()

	repo, err := gogit.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("failed to init repo: %v", err)
	}

	commitFile(t, repo, dir, "packs/10_core.json", sourcePack, "add core pack")

	return repo
}

// commitFile writes a file into the source repository and commits it,
// returning the new commit SHA.
func commitFile(t testing.TB, repo *gogit.Repository, dir, rel, content, message string) string {
	t.Helper()

	path := filepath.Join(dir, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		t.Fatalf("failed to get worktree: %v", err)
	}

	if _, err := worktree.Add(rel); err != nil {
		t.Fatalf("failed to add file: %v", err)
	}

	hash, err := worktree.Commit(message, &gogit.CommitOptions{
		Author: &object.Signature{
			Name:  "Test User",
			Email: "test@example.com",
			When:  time.Now(),
		},
	})
	if err != nil {
		t.Fatalf("failed to commit: %v", err)
	}

	return hash.String()
}

// newSyncConfig builds a config that clones the local source repo into
// a fresh temp directory. Depth 0 because shallow clones of local
// paths are not supported by go-git.
func newSyncConfig(t testing.TB, sourceDir string) *config.GitSyncConfig {
	t.Helper()

	return &config.GitSyncConfig{
		Enabled:    true,
		Repository: sourceDir,
		Branch:     "master",
		Path:       "packs",
		Auth: config.GitAuthConfig{
			Type: "none",
		},
		Poll: config.GitPollConfig{
			Enabled:  true,
			Interval: time.Hour,
			Timeout:  10 * time.Second,
		},
		Clone: config.GitCloneConfig{
			Depth:     0,
			LocalPath: t.TempDir(),
		},
	}
}

func TestNewSyncer(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.GitSyncConfig
		wantErr bool
	}{
		{
			name:    "nil config",
			cfg:     nil,
			wantErr: true,
		},
		{
			name: "empty repository URL",
			cfg: &config.GitSyncConfig{
				Repository: "",
				Branch:     "main",
			},
			wantErr: true,
		},
		{
			name: "empty branch",
			cfg: &config.GitSyncConfig{
				Repository: "https://github.com/test/style-packs.git",
				Branch:     "",
			},
			wantErr: true,
		},
		{
			name: "invalid auth type",
			cfg: &config.GitSyncConfig{
				Repository: "https://github.com/test/style-packs.git",
				Branch:     "main",
				Auth: config.GitAuthConfig{
					Type: "kerberos",
				},
			},
			wantErr: true,
		},
		{
			name: "valid config",
			cfg: &config.GitSyncConfig{
				Repository: "https://github.com/test/style-packs.git",
				Branch:     "main",
				Path:       "packs",
				Auth: config.GitAuthConfig{
					Type: "none",
				},
				Poll: config.GitPollConfig{
					Enabled:  true,
					Interval: 60 * time.Second,
					Timeout:  30 * time.Second,
				},
				Clone: config.GitCloneConfig{
					Depth:     1,
					LocalPath: "/tmp/test-style-packs",
				},
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			syncer, err := NewSyncer(tt.cfg)

			if (err != nil) != tt.wantErr {
				t.Errorf("NewSyncer() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if err == nil {
				if syncer == nil {
					t.Fatal("NewSyncer() returned nil syncer")
				}
				if syncer.metrics == nil {
					t.Error("NewSyncer() metrics not initialized")
				}
				if syncer.auth == nil {
					t.Error("NewSyncer() auth not initialized")
				}
			}
		})
	}
}

func TestNewSyncer_DefaultLocalPath(t *testing.T) {
	syncer, err := NewSyncer(&config.GitSyncConfig{
		Repository: "https://github.com/test/style-packs.git",
		Branch:     "main",
	})
	if err != nil {
		t.Fatalf("NewSyncer() error = %v", err)
	}

	if syncer.LocalPath() == "" {
		t.Error("LocalPath() is empty, want temp dir fallback")
	}
}

func TestSyncer_Clone(t *testing.T) {
	sourceDir := t.TempDir()
	createSourceRepo(t, sourceDir)

	tests := []struct {
		name    string
		cfg     *config.GitSyncConfig
		wantErr bool
	}{
		{
			name:    "clone local repository",
			cfg:     newSyncConfig(t, sourceDir),
			wantErr: false,
		},
		{
			name:    "clone nonexistent repository",
			cfg:     newSyncConfig(t, "/nonexistent/repo"),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			syncer, err := NewSyncer(tt.cfg)
			if err != nil {
				t.Fatalf("NewSyncer() error = %v", err)
			}

			err = syncer.Clone(context.Background())
			if (err != nil) != tt.wantErr {
				t.Errorf("Clone() error = %v, wantErr %v", err, tt.wantErr)
			}

			if err == nil {
				if syncer.Metrics().CloneDuration == 0 {
					t.Error("Clone() did not record duration")
				}
				if syncer.repo == nil {
					t.Error("Clone() did not initialize repo")
				}
				if _, err := os.Stat(filepath.Join(syncer.PacksPath(), "10_core.json")); err != nil {
					t.Errorf("pack file missing from checkout: %v", err)
				}
			}
		})
	}
}

func TestSyncer_CloneReusesExistingCheckout(t *testing.T) {
	sourceDir := t.TempDir()
	createSourceRepo(t, sourceDir)

	cfg := newSyncConfig(t, sourceDir)

	first, err := NewSyncer(cfg)
	if err != nil {
		t.Fatalf("NewSyncer() error = %v", err)
	}
	if err := first.Clone(context.Background()); err != nil {
		t.Fatalf("first Clone() error = %v", err)
	}

	// Same local path again: the existing checkout is opened in place.
	second, err := NewSyncer(cfg)
	if err != nil {
		t.Fatalf("NewSyncer() error = %v", err)
	}
	if err := second.Clone(context.Background()); err != nil {
		t.Fatalf("second Clone() error = %v", err)
	}

	// With CleanOnStart the checkout is recreated from scratch.
	cfg.Clone.CleanOnStart = true
	third, err := NewSyncer(cfg)
	if err != nil {
		t.Fatalf("NewSyncer() error = %v", err)
	}
	if err := third.Clone(context.Background()); err != nil {
		t.Fatalf("clean Clone() error = %v", err)
	}
}

func TestSyncer_PullBeforeClone(t *testing.T) {
	sourceDir := t.TempDir()
	createSourceRepo(t, sourceDir)

	syncer, err := NewSyncer(newSyncConfig(t, sourceDir))
	if err != nil {
		t.Fatalf("NewSyncer() error = %v", err)
	}

	if _, err := syncer.Pull(context.Background()); err == nil {
		t.Error("Pull() before Clone() should error")
	}
}

func TestSyncer_PullNoChanges(t *testing.T) {
	sourceDir := t.TempDir()
	createSourceRepo(t, sourceDir)

	syncer, err := NewSyncer(newSyncConfig(t, sourceDir))
	if err != nil {
		t.Fatalf("NewSyncer() error = %v", err)
	}
	if err := syncer.Clone(context.Background()); err != nil {
		t.Fatalf("Clone() error = %v", err)
	}

	result, err := syncer.Pull(context.Background())
	if err != nil {
		t.Fatalf("Pull() error = %v", err)
	}

	if result.HadChanges {
		t.Error("Pull() reported changes on an up-to-date checkout")
	}
	if result.FromSHA != result.ToSHA {
		t.Errorf("FromSHA %s != ToSHA %s without changes", result.FromSHA, result.ToSHA)
	}
	if syncer.Metrics().SuccessfulPulls != 1 {
		t.Errorf("SuccessfulPulls = %d, want 1", syncer.Metrics().SuccessfulPulls)
	}
}

func TestSyncer_PullWithChanges(t *testing.T) {
	sourceDir := t.TempDir()
	source := createSourceRepo(t, sourceDir)

	syncer, err := NewSyncer(newSyncConfig(t, sourceDir))
	if err != nil {
		t.Fatalf("NewSyncer() error = %v", err)
	}
	if err := syncer.Clone(context.Background()); err != nil {
		t.Fatalf("Clone() error = %v", err)
	}

	newSHA := commitFile(t, source, sourceDir, "packs/20_extra.yaml", "version: 1\nstyles: []\n", "add extra pack")

	result, err := syncer.Pull(context.Background())
	if err != nil {
		t.Fatalf("Pull() error = %v", err)
	}

	if !result.HadChanges {
		t.Fatal("Pull() reported no changes after upstream commit")
	}
	if result.ToSHA != newSHA {
		t.Errorf("ToSHA = %s, want %s", result.ToSHA, newSHA)
	}

	found := false
	for _, f := range result.ChangedFiles {
		if f == "packs/20_extra.yaml" {
			found = true
		}
	}
	if !found {
		t.Errorf("ChangedFiles = %v, want to contain packs/20_extra.yaml", result.ChangedFiles)
	}

	if syncer.Metrics().LastCommitSHA != newSHA {
		t.Errorf("LastCommitSHA = %s, want %s", syncer.Metrics().LastCommitSHA, newSHA)
	}
}

func TestSyncer_CurrentCommit(t *testing.T) {
	sourceDir := t.TempDir()
	createSourceRepo(t, sourceDir)

	syncer, err := NewSyncer(newSyncConfig(t, sourceDir))
	if err != nil {
		t.Fatalf("NewSyncer() error = %v", err)
	}

	if _, err := syncer.CurrentCommit(); err == nil {
		t.Error("CurrentCommit() before Clone() should error")
	}

	if err := syncer.Clone(context.Background()); err != nil {
		t.Fatalf("Clone() error = %v", err)
	}

	commit, err := syncer.CurrentCommit()
	if err != nil {
		t.Fatalf("CurrentCommit() error = %v", err)
	}

	if len(commit.SHA) != 40 {
		t.Errorf("SHA length = %d, want 40", len(commit.SHA))
	}
	if commit.Author != "Test User" {
		t.Errorf("Author = %v, want %v", commit.Author, "Test User")
	}
	if commit.Email != "test@example.com" {
		t.Errorf("Email = %v, want %v", commit.Email, "test@example.com")
	}
	if commit.Message == "" {
		t.Error("Message is empty")
	}
	if commit.Branch != "master" {
		t.Errorf("Branch = %v, want master", commit.Branch)
	}
	if commit.Repository != sourceDir {
		t.Errorf("Repository = %v, want %v", commit.Repository, sourceDir)
	}
}

func TestSyncer_Rollback(t *testing.T) {
	sourceDir := t.TempDir()
	source := createSourceRepo(t, sourceDir)

	firstSHA := commitFile(t, source, sourceDir, "packs/20_extra.json", `{"version": 1, "styles": []}`, "add extra pack")
	commitFile(t, source, sourceDir, "packs/30_more.json", `{"version": 1, "styles": []}`, "add more packs")

	syncer, err := NewSyncer(newSyncConfig(t, sourceDir))
	if err != nil {
		t.Fatalf("NewSyncer() error = %v", err)
	}
	if err := syncer.Clone(context.Background()); err != nil {
		t.Fatalf("Clone() error = %v", err)
	}

	if err := syncer.Rollback(context.Background(), firstSHA); err != nil {
		t.Fatalf("Rollback() error = %v", err)
	}

	commit, err := syncer.CurrentCommit()
	if err != nil {
		t.Fatalf("CurrentCommit() error = %v", err)
	}
	if commit.SHA != firstSHA {
		t.Errorf("SHA after rollback = %s, want %s", commit.SHA, firstSHA)
	}

	// The file introduced after the rollback target is gone from the
	// worktree.
	if _, err := os.Stat(filepath.Join(syncer.PacksPath(), "30_more.json")); !os.IsNotExist(err) {
		t.Errorf("30_more.json still present after rollback (stat err = %v)", err)
	}
	if _, err := os.Stat(filepath.Join(syncer.PacksPath(), "20_extra.json")); err != nil {
		t.Errorf("20_extra.json missing after rollback: %v", err)
	}

	if err := syncer.Rollback(context.Background(), "0000000000000000000000000000000000000000"); err == nil {
		t.Error("Rollback() to nonexistent commit should error")
	}
}

func TestSyncer_ListPackFiles(t *testing.T) {
	sourceDir := t.TempDir()
	source := createSourceRepo(t, sourceDir)

	extra := map[string]string{
		"packs/20_extra.yaml":      "version: 1\n",
		"packs/30_alt.yml":         "version: 1\n",
		"packs/sub/40_nested.json": `{"version": 1, "styles": []}`,
		"packs/.hidden.json":       `{}`,
		"packs/README.md":          "pack docs",
		"notes.txt":                "not a pack",
	}
	for rel, content := range extra {
		commitFile(t, source, sourceDir, rel, content, "add "+rel)
	}

	syncer, err := NewSyncer(newSyncConfig(t, sourceDir))
	if err != nil {
		t.Fatalf("NewSyncer() error = %v", err)
	}
	if err := syncer.Clone(context.Background()); err != nil {
		t.Fatalf("Clone() error = %v", err)
	}

	files, err := syncer.ListPackFiles()
	if err != nil {
		t.Fatalf("ListPackFiles() error = %v", err)
	}

	// 10_core.json, 20_extra.yaml, 30_alt.yml. Hidden files, non-pack
	// extensions, files outside packs/, and nested files are excluded,
	// matching what the catalog loader would read.
	if len(files) != 3 {
		t.Errorf("ListPackFiles() found %d files, want 3: %v", len(files), files)
	}

	for i, f := range files {
		base := filepath.Base(f)
		if base[0] == '.' {
			t.Errorf("ListPackFiles() included hidden file: %s", f)
		}
		if !isPackFile(f) {
			t.Errorf("ListPackFiles() included non-pack file: %s", f)
		}
		if i > 0 && files[i-1] > f {
			t.Errorf("ListPackFiles() not sorted: %s before %s", files[i-1], f)
		}
	}
}

func TestSyncer_ListPackFilesNonexistentPath(t *testing.T) {
	sourceDir := t.TempDir()
	createSourceRepo(t, sourceDir)

	cfg := newSyncConfig(t, sourceDir)
	cfg.Path = "missing/dir"

	syncer, err := NewSyncer(cfg)
	if err != nil {
		t.Fatalf("NewSyncer() error = %v", err)
	}
	if err := syncer.Clone(context.Background()); err != nil {
		t.Fatalf("Clone() error = %v", err)
	}

	if _, err := syncer.ListPackFiles(); err == nil {
		t.Error("ListPackFiles() with nonexistent path should error")
	}
}

func TestSyncer_PacksPath(t *testing.T) {
	localPath := t.TempDir()

	cfg := &config.GitSyncConfig{
		Repository: "https://github.com/test/style-packs.git",
		Branch:     "main",
		Path:       "packs",
		Clone: config.GitCloneConfig{
			LocalPath: localPath,
		},
	}

	syncer, err := NewSyncer(cfg)
	if err != nil {
		t.Fatalf("NewSyncer() error = %v", err)
	}

	if got, want := syncer.PacksPath(), filepath.Join(localPath, "packs"); got != want {
		t.Errorf("PacksPath() = %v, want %v", got, want)
	}
	if got := syncer.LocalPath(); got != localPath {
		t.Errorf("LocalPath() = %v, want %v", got, localPath)
	}

	// Empty Path means the repository root is the pack directory.
	cfg.Path = ""
	rootSyncer, err := NewSyncer(cfg)
	if err != nil {
		t.Fatalf("NewSyncer() error = %v", err)
	}
	if got := rootSyncer.PacksPath(); got != localPath {
		t.Errorf("PacksPath() with empty Path = %v, want %v", got, localPath)
	}
}
