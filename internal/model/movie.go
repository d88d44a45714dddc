package model

// Movie represents a row in the `movies` table.
//
// Fields:
//  ID        – primary key identifier.
//  Title     – display title.
//  Overview  – short synopsis.
//  Year      – release year.
//  Rating    – average rating on a 0–10 scale.
//  Category  – genre label used for exact-match filtering.
//  Director  – director's name.
//  Studio    – producing studio.
//  BoxOffice – gross takings in millions of US dollars.
type Movie struct {
	ID        uint64  `json:"id"`         // movies.id
	Title     string  `json:"title"`      // movies.title
	Overview  string  `json:"overview"`   // movies.overview
	Year      int     `json:"year"`       // movies.year
	Rating    float64 `json:"rating"`     // movies.rating
	Category  string  `json:"category"`   // movies.category
	Director  string  `json:"director"`   // movies.director
	Studio    string  `json:"studio"`     // movies.studio
	BoxOffice float64 `json:"box_office"` // movies.box_office
}

// MovieInput is the validated payload for creating or fully overwriting a
// movie.  It carries every column except the id.
type MovieInput struct {
	Title     string  `json:"title" validate:"required,min=1,max=255"`
	Overview  string  `json:"overview" validate:"required,min=1,max=2000"`
	Year      int     `json:"year" validate:"required,gte=1888,lte=2100"`
	Rating    float64 `json:"rating" validate:"gte=0,lte=10"`
	Category  string  `json:"category" validate:"required,min=1,max=100"`
	Director  string  `json:"director" validate:"required,min=1,max=100"`
	Studio    string  `json:"studio" validate:"required,min=1,max=100"`
	BoxOffice float64 `json:"box_office" validate:"gte=0"`
}

// Movie builds a Movie with the given id from the input fields.
func (in MovieInput) Movie(id uint64) Movie {
	return Movie{
		ID:        id,
		Title:     in.Title,
		Overview:  in.Overview,
		Year:      in.Year,
		Rating:    in.Rating,
		Category:  in.Category,
		Director:  in.Director,
		Studio:    in.Studio,
		BoxOffice: in.BoxOffice,
	}
}
