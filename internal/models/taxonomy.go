package models

import (
	"time"

	"github.com/lib/pq"
)

// MajorCategory maps an academic major grouping to the industries it feeds.
// Seeded administratively; read-only from the matching core.
type MajorCategory struct {
	ID         string         `db:"id" json:"id"`
	Name       string         `db:"name" json:"name"`
	Industries pq.StringArray `db:"industries" json:"industries"`
	CreatedAt  time.Time      `db:"created_at" json:"created_at"`
}

// Industries is the reference list of industry tags offered in the UI.
// The major_categories table is canonical at runtime; this is a seed/fallback.
var Industries = []string{
	"technology",
	"finance",
	"healthcare",
	"fitness",
	"apparel",
	"food_beverage",
	"media",
	"entertainment",
	"education",
	"automotive",
	"beauty",
	"travel",
	"sports",
	"nonprofit",
}

// MajorIndustrySeed is the offline fallback copy of the major-to-industry map.
// Prefer the database copy for runtime logic; this only backs cold starts.
var MajorIndustrySeed = map[string][]string{
	"Business & Management":      {"finance", "media", "sports"},
	"Computer Science & IT":      {"technology", "media", "education"},
	"Communications & Marketing": {"media", "entertainment", "apparel"},
	"Health Sciences":            {"healthcare", "fitness", "food_beverage"},
	"Engineering":                {"technology", "automotive", "sports"},
	"Education":                  {"education", "nonprofit", "sports"},
	"Arts & Design":              {"entertainment", "beauty", "apparel"},
	"Hospitality & Tourism":      {"travel", "food_beverage", "entertainment"},
	"Exercise & Sports Science":  {"fitness", "sports", "apparel"},
	"Social Sciences":            {"nonprofit", "education", "media"},
}
