package source

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"sync"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/storage/memory"
	"github.com/sirupsen/logrus"
)

// GitRepository is a struct that implements the Repository interface for
// a desired-state document kept in a git repository. The repository is
// cloned into memory on the first refresh and pulled afterwards.
type GitRepository struct {
	document
	Name   string
	URL    *url.URL
	Path   string          // path of the document inside the repository
	Branch string          // the remote HEAD when empty
	Auth   *http.BasicAuth // nil for anonymous access

	pullMu        sync.Mutex
	gitRepository *git.Repository
	fs            billy.Filesystem
}

// NewGitRepository creates a GitRepository. Basic auth is used when a
// username or password is given.
func NewGitRepository(name, gitURL, path, branch, username, password string) (*GitRepository, error) {
	parsed, err := url.Parse(gitURL)
	if err != nil {
		return nil, err
	}
	g := &GitRepository{Name: name, URL: parsed, Path: path, Branch: branch}
	if username != "" || password != "" {
		g.Auth = &http.BasicAuth{Username: username, Password: password}
	}
	return g, nil
}

// GetName returns the name of the configuration source.
func (g *GitRepository) GetName() string {
	return g.Name
}

// pull clones the repository on first use and pulls it afterwards. Auth is
// only set when present so go-git never sees a typed nil.
func (g *GitRepository) pull(ctx context.Context) error {
	if g.fs == nil {
		fs := memfs.New()
		logrus.Debugf("Cloning %s into memory", g.URL.Redacted())
		opts := &git.CloneOptions{URL: g.URL.String()}
		if g.Auth != nil {
			opts.Auth = g.Auth
		}
		if g.Branch != "" {
			opts.ReferenceName = plumbing.NewBranchReferenceName(g.Branch)
			opts.SingleBranch = true
		}
		r, err := git.CloneContext(ctx, memory.NewStorage(), fs, opts)
		if err != nil {
			return err
		}
		logrus.Debug("Cloned")
		g.fs = fs
		g.gitRepository = r
		return nil
	}

	w, err := g.gitRepository.Worktree()
	if err != nil {
		return err
	}
	logrus.Debug("Pulling")
	pullOptions := &git.PullOptions{Force: true}
	if g.Auth != nil {
		pullOptions.Auth = g.Auth
	}
	if g.Branch != "" {
		pullOptions.ReferenceName = plumbing.NewBranchReferenceName(g.Branch)
		pullOptions.SingleBranch = true
	}
	err = w.PullContext(ctx, pullOptions)
	if err == git.NoErrAlreadyUpToDate {
		logrus.Debug("Already up to date")
		return nil
	}
	if err != nil {
		return err
	}
	logrus.Debug("Pulled")
	return nil
}

// Refresh clones or pulls the repository, then reads and unmarshals the
// YAML document.
func (g *GitRepository) Refresh() error {
	g.pullMu.Lock()
	defer g.pullMu.Unlock()

	if err := g.pull(context.Background()); err != nil {
		return failed(g.Name, "error pulling repository", err)
	}

	file, err := g.fs.Open(g.Path)
	if err != nil {
		return failed(g.Name, "error opening file", fmt.Errorf("opening %s: %w", g.Path, err))
	}
	defer func(file billy.File) {
		err := file.Close()
		if err != nil {
			logrus.WithError(err).WithField("repository", g.Name).Error("error closing file")
		}
	}(file)

	raw, err := io.ReadAll(file)
	if err != nil {
		return failed(g.Name, "error reading file", fmt.Errorf("reading %s: %w", g.Path, err))
	}
	if err := g.load(raw); err != nil {
		return failed(g.Name, "error unmarshalling file", err)
	}
	return nil
}
