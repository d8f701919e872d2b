package googlebooks

// searchResponse matches the /volumes search envelope. Items is absent when
// nothing matched.
type searchResponse struct {
	TotalItems int      `json:"totalItems"`
	Items      []Volume `json:"items"`
}

// Volume is a single search result.
type Volume struct {
	ID         string     `json:"id"`
	VolumeInfo VolumeInfo `json:"volumeInfo"`
}

// VolumeInfo holds the bibliographic fields of a volume. Pointer fields are
// required by the record model and are nil when the API omitted them.
type VolumeInfo struct {
	Title               *string              `json:"title"`
	Subtitle            string               `json:"subtitle,omitempty"`
	Authors             []string             `json:"authors,omitempty"`
	PublishedDate       *string              `json:"publishedDate"`
	Description         string               `json:"description,omitempty"`
	IndustryIdentifiers []IndustryIdentifier `json:"industryIdentifiers"`
	ImageLinks          *ImageLinks          `json:"imageLinks,omitempty"`
	PageCount           *int                 `json:"pageCount"`
}

// IndustryIdentifier is one of the ISBN_10, ISBN_13, ISSN or OTHER ids of a volume
type IndustryIdentifier struct {
	Type       string `json:"type"`
	Identifier string `json:"identifier"`
}

// ImageLinks holds cover thumbnails
type ImageLinks struct {
	SmallThumbnail string `json:"smallThumbnail,omitempty"`
	Thumbnail      string `json:"thumbnail,omitempty"`
}

// IdentifierTypeISBN13 is the industry identifier type carrying an ISBN-13
const IdentifierTypeISBN13 = "ISBN_13"

// cachedSearch wraps the first search result with not-found metadata for caching.
type cachedSearch struct {
	Volume   *Volume `json:"volume,omitempty"`
	NotFound bool    `json:"not_found"`
}

// ISBN13s returns every ISBN-13 identifier of the volume
func (v *Volume) ISBN13s() []string {
	var out []string
	for _, id := range v.VolumeInfo.IndustryIdentifiers {
		if id.Type == IdentifierTypeISBN13 {
			out = append(out, id.Identifier)
		}
	}
	return out
}

// MatchISBN13 searches the identifier list for an ISBN-13 equal to isbn13.
// The position of the entry in the list is not significant.
func (v *Volume) MatchISBN13(isbn13 string) (string, bool) {
	for _, id := range v.VolumeInfo.IndustryIdentifiers {
		if id.Type == IdentifierTypeISBN13 && id.Identifier == isbn13 {
			return id.Identifier, true
		}
	}
	return "", false
}

// Thumbnail returns the best available cover URL
func (v *Volume) Thumbnail() string {
	links := v.VolumeInfo.ImageLinks
	if links == nil {
		return ""
	}
	if links.Thumbnail != "" {
		return links.Thumbnail
	}
	return links.SmallThumbnail
}

// missingField names the first required field the API left out
func (v *Volume) missingField() string {
	switch {
	case v.VolumeInfo.Title == nil:
		return "title"
	case v.VolumeInfo.PublishedDate == nil:
		return "publishedDate"
	case v.VolumeInfo.PageCount == nil:
		return "pageCount"
	default:
		return ""
	}
}
