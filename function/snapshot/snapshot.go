// Package snapshot records a synced challenge tree as a git commit, so
// upstream edits to descriptions or values show up in git log.
package snapshot

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/dimasma0305/ctfdsync/function/log"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

var ErrNothingToCommit = errors.New("nothing to commit")

const (
	authorName  = "ctfdsync"
	authorEmail = "ctfdsync@localhost"
)

// Commit stages every change under dir except the paths in ignore and
// commits it. The repository is created on first use, with ignore written
// to its .gitignore.
func Commit(dir string, message string, now time.Time, ignore ...string) (plumbing.Hash, error) {
	repo, err := open(dir, ignore)
	if err != nil {
		return plumbing.ZeroHash, err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("error open worktree: %w", err)
	}
	status, err := wt.Status()
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("error read status: %w", err)
	}

	staged := 0
	for path, st := range status {
		if slices.Contains(ignore, path) {
			continue
		}
		if st.Worktree == git.Unmodified && st.Staging == git.Unmodified {
			continue
		}
		if st.Worktree == git.Deleted {
			_, err = wt.Remove(path)
		} else {
			_, err = wt.Add(path)
		}
		if err != nil {
			return plumbing.ZeroHash, fmt.Errorf("error stage %s: %w", path, err)
		}
		staged++
	}
	if staged == 0 {
		return plumbing.ZeroHash, ErrNothingToCommit
	}

	hash, err := wt.Commit(message, &git.CommitOptions{
		Author: &object.Signature{Name: authorName, Email: authorEmail, When: now},
	})
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("error commit: %w", err)
	}
	log.DebugH3("committed %s in %s", hash, dir)
	return hash, nil
}

func open(dir string, ignore []string) (*git.Repository, error) {
	repo, err := git.PlainOpen(dir)
	if err == nil {
		return repo, nil
	}
	if !errors.Is(err, git.ErrRepositoryNotExists) {
		return nil, fmt.Errorf("error open repository: %w", err)
	}

	repo, err = git.PlainInit(dir, false)
	if err != nil {
		return nil, fmt.Errorf("error init repository: %w", err)
	}
	if len(ignore) > 0 {
		var content string
		for _, pattern := range ignore {
			content += pattern + "\n"
		}
		if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(content), 0644); err != nil {
			return nil, fmt.Errorf("error write .gitignore: %w", err)
		}
	}
	log.Info("initialized git repository in %s", dir)
	return repo, nil
}
