package aggregate

import (
	"context"
	"log"
	"strings"

	"github.com/polymarket-feed/internal/gamma"
)

// findTags fetches the tag catalog and returns the tags whose label or slug
// contains any of the keywords, case-insensitively, in catalog order,
// truncated to maxTags. A catalog failure is recoverable: it is logged and
// yields zero tags, which the caller turns into an empty feed rather than an
// error.
func (s *Service) findTags(ctx context.Context, keywords []string, maxTags int) []gamma.Tag {
	catalog, err := s.source.Tags(ctx)
	if err != nil {
		log.Printf("tag catalog fetch failed: %v", err)
		return nil
	}

	lowered := make([]string, len(keywords))
	for i, kw := range keywords {
		lowered[i] = strings.ToLower(kw)
	}

	matched := make([]gamma.Tag, 0, maxTags)
	for _, tag := range catalog {
		if len(matched) >= maxTags {
			break
		}
		label := strings.ToLower(tag.Label)
		slug := strings.ToLower(tag.Slug)
		for _, kw := range lowered {
			if strings.Contains(label, kw) || strings.Contains(slug, kw) {
				matched = append(matched, tag)
				break
			}
		}
	}

	return matched
}
