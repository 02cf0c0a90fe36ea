package domain

// Area is a physical stage or location. Capacity bounds the events hosted there.
type Area struct {
	ID          string
	Name        string
	Type        string
	Capacity    int
	Latitude    *float64
	Longitude   *float64
	Description *string
	Image       *string
}

type Artist struct {
	ID       string
	Name     string
	Nickname *string
	Bio      *string
	Links    []string
	Image    *string
}

// ArtistDetails is an Artist together with its own tags.
type ArtistDetails struct {
	Artist
	Tags []Tag
}

type Tag struct {
	ID          string
	Name        string
	Description *string
}
