package environment

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"git.home.luguber.info/inful/awesometheme/internal/docs"
)

// ChangedSince returns the docnames of Markdown sources below sourceDir that
// differ between revision rev and HEAD of the enclosing git repository.
// Deleted sources are included; callers ignore names that no longer exist.
func ChangedSince(sourceDir, rev string) ([]string, error) {
	abs, err := filepath.Abs(sourceDir)
	if err != nil {
		return nil, fmt.Errorf("resolve source directory: %w", err)
	}
	repo, err := git.PlainOpenWithOptions(abs, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("open worktree: %w", err)
	}
	prefix, err := filepath.Rel(wt.Filesystem.Root(), abs)
	if err != nil {
		return nil, fmt.Errorf("relate source to worktree: %w", err)
	}
	prefix = filepath.ToSlash(prefix)

	from, err := commitTree(repo, plumbing.Revision(rev))
	if err != nil {
		return nil, err
	}
	to, err := commitTree(repo, plumbing.Revision(plumbing.HEAD))
	if err != nil {
		return nil, err
	}

	changes, err := object.DiffTree(from, to)
	if err != nil {
		return nil, fmt.Errorf("diff trees: %w", err)
	}

	seen := map[string]struct{}{}
	var names []string
	for _, ch := range changes {
		for _, p := range []string{ch.From.Name, ch.To.Name} {
			name, ok := sourceDocName(prefix, p)
			if !ok {
				continue
			}
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			names = append(names, name)
		}
	}
	return names, nil
}

func commitTree(repo *git.Repository, rev plumbing.Revision) (*object.Tree, error) {
	hash, err := repo.ResolveRevision(rev)
	if err != nil {
		return nil, fmt.Errorf("resolve revision %s: %w", rev, err)
	}
	commit, err := repo.CommitObject(*hash)
	if err != nil {
		return nil, fmt.Errorf("get commit object: %w", err)
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("get tree: %w", err)
	}
	return tree, nil
}

// sourceDocName maps a repository path to a docname when it is a Markdown
// file below the source prefix.
func sourceDocName(prefix, p string) (string, bool) {
	if p == "" || !docs.IsMarkdownFile(p) {
		return "", false
	}
	if prefix != "." {
		if !strings.HasPrefix(p, prefix+"/") {
			return "", false
		}
		p = strings.TrimPrefix(p, prefix+"/")
	}
	return docs.DocName(path.Clean(p)), true
}
