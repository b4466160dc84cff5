// Package recipe maintains the recipe service's read-side projections: the
// group tag preferences used for recommendations and the recipe search index.
package recipe

import "time"

const (
	preferenceCollection = "group_preferences"
	searchIndexName      = "recipes"
)

// Cache entities, e.g. recipe:12 and group-preferences:42.
const (
	recipeCacheEntity     = "recipe"
	preferenceCacheEntity = "group-preferences"
)

// GroupPreference is the tag list a group prefers. A group without
// preferences has no row at all.
type GroupPreference struct {
	GroupID      int64     `bson:"_id"`
	GroupTagList []int64   `bson:"group_tag_list"`
	UpdatedAt    time.Time `bson:"updated_at"`
}
