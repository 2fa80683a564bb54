// Package catalog cleans a streaming media catalog: text and list
// normalization, relocation of durations misfiled as ratings, group-wise mode
// imputation of dates and ratings, and duration parsing.
package catalog

// Sentinel is the placeholder written wherever a text value is missing or
// unparseable.
const Sentinel = "unknown"

// Catalog column names.
const (
	ColShowID      = "show_id"
	ColType        = "type"
	ColTitle       = "title"
	ColDirector    = "director"
	ColCast        = "cast"
	ColCountry     = "country"
	ColDateAdded   = "date_added"
	ColReleaseYear = "release_year"
	ColRating      = "rating"
	ColDuration    = "duration"
	ColListedIn    = "listed_in"
	ColDescription = "description"

	ColDateImputed   = "date_imputed"
	ColRatingImputed = "rating_imputed"
	ColDurationValue = "duration_value"
	ColDurationUnit  = "duration_unit"
)

// TextColumns are trimmed, lowercased and sentinel-filled.
var TextColumns = []string{ColCountry, ColTitle, ColCast, ColDirector, ColListedIn, ColDescription}

// ListColumns hold comma-joined values.
var ListColumns = []string{ColCountry, ColListedIn}

// Content kinds as they appear in the type column.
const (
	KindMovie  = "movie"
	KindTVShow = "tv show"
	KindShow   = "show"
)

// Canonical duration units.
const (
	UnitMinute = "min"
	UnitSeason = "season"
)

// DefaultDate is written when a missing date has neither a group mode nor a
// release year to derive from.
const DefaultDate = "1900-01-01"

// DateLayout is the layout dates are written in.
const DateLayout = "2006-01-02"
