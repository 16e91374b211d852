package service

import (
	"context"
	"path"
	"strings"

	"stride/internal/platform/vault"
	"stride/internal/services/srs/domain"
)

// TextMatchExtractor is the default backlink finder: a note B links to note A
// when B's body mentions A's name, either as a [[wikilink]] or as plain text.
// The plain match also fires inside code fences; callers needing better
// precision supply their own extractor
type TextMatchExtractor struct {
	Vault *vault.Vault
}

var _ domain.BacklinkExtractor = (*TextMatchExtractor)(nil)

// Backlinks implements domain.BacklinkExtractor
func (e *TextMatchExtractor) Backlinks(ctx context.Context, notePath string, limit int) ([]string, error) {
	base := path.Base(notePath)
	name := strings.TrimSuffix(base, path.Ext(base))
	if name == "" {
		return nil, nil
	}
	wikilink := "[[" + name + "]]"

	files, err := e.Vault.ListFiles("")
	if err != nil {
		return nil, err
	}

	var out []string
	for _, rel := range files {
		if rel == notePath || !strings.HasSuffix(rel, ".md") {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		_, body, err := e.Vault.Read(rel)
		if err != nil {
			continue // file vanished mid-walk
		}
		if strings.Contains(body, wikilink) || strings.Contains(body, name) {
			out = append(out, rel)
			if len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}
