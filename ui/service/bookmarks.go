package service

import (
	"context"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/linkpg/linkpg/storage"
)

// ListBookmarks returns the cached bookmark list for the given identity,
// newest first. The first call for an identity triggers the initial fetch;
// until it completes the list may be empty.
func (s *Service[TTx]) ListBookmarks(ctx context.Context, identity string) ([]*storage.Bookmark, error) {
	sync, err := s.SyncFor(identity)
	if err != nil {
		return nil, err
	}
	return sync.Bookmarks(), nil
}

// CreateBookmark inserts a bookmark for the given identity.
//
// The title is stripped of any HTML before storage. A blank title or URL is
// a silent no-op; a URL that is not http(s) is rejected with ErrInvalidURL.
func (s *Service[TTx]) CreateBookmark(ctx context.Context, identity, title, rawURL string) error {
	title = strings.TrimSpace(s.policy.Sanitize(title))
	rawURL = strings.TrimSpace(rawURL)
	if title == "" || rawURL == "" {
		return nil
	}

	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidURL
	}

	sync, err := s.SyncFor(identity)
	if err != nil {
		return err
	}
	return sync.Create(ctx, title, u.String())
}

// DeleteBookmark removes a bookmark by id for the given identity.
func (s *Service[TTx]) DeleteBookmark(ctx context.Context, identity, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrInvalidID
	}

	sync, err := s.SyncFor(identity)
	if err != nil {
		return err
	}
	return sync.Delete(ctx, id)
}

// SubscribeBookmarks registers fn to run whenever the identity's cached list
// is replaced. The returned function unsubscribes.
func (s *Service[TTx]) SubscribeBookmarks(ctx context.Context, identity string, fn func(bookmarks []*storage.Bookmark)) (func(), error) {
	sync, err := s.SyncFor(identity)
	if err != nil {
		return nil, err
	}
	return sync.OnChange(fn), nil
}
