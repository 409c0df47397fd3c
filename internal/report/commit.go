package report

import (
	"github.com/go-git/go-git/v5"
)

// DetectCommit returns the HEAD commit of the git checkout containing root,
// or "" when root is not inside a repository.
func DetectCommit(root string) string {
	repo, err := git.PlainOpenWithOptions(root, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return ""
	}
	ref, err := repo.Head()
	if err != nil {
		return ""
	}
	return ref.Hash().String()
}
