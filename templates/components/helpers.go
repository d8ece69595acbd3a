// Package components holds the templ building blocks shared by the pages.
package components

import (
	"sort"

	"forum-harvester/internal/domain"
)

type statItem struct {
	label string
	value int
}

func statItems(s domain.ThreadStats) []statItem {
	return []statItem{
		{"Posts", s.Posts},
		{"Unique authors", s.UniqueAuthors},
		{"Attachments", s.Attachments},
		{"Media embeds", s.MediaEmbeds},
		{"Links", s.Links},
		{"Reactions", s.Reactions},
	}
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
