package forms

import "time"

// PostForm is the create/edit form of a post. The author and the published
// flag are deliberately absent; the image arrives as a separate file part.
type PostForm struct {
	Title      string `form:"title" binding:"required,notblank,max=256"`
	Text       string `form:"text" binding:"required,notblank"`
	PubDate    string `form:"pub_date" binding:"required"`
	LocationID string `form:"location"`
	CategoryID string `form:"category"`
}

// PostData is a PostForm after cleaning.
type PostData struct {
	Title      string
	Text       string
	PubDate    time.Time
	LocationID *uint
	CategoryID *uint
}

// Clean converts the raw values. Related ids are only checked for shape here;
// the handler checks that they exist.
func (f *PostForm) Clean() (PostData, Errors) {
	errs := Errors{}
	data := PostData{Title: f.Title, Text: f.Text}

	if f.PubDate != "" {
		if t, ok := parsePubDate(f.PubDate); ok {
			data.PubDate = t
		} else {
			errs.Add("pub_date", "Enter a valid date/time.")
		}
	}
	if id, ok := parseOptionalID(f.LocationID); ok {
		data.LocationID = id
	} else {
		errs.Add("location", "Select a valid choice.")
	}
	if id, ok := parseOptionalID(f.CategoryID); ok {
		data.CategoryID = id
	} else {
		errs.Add("category", "Select a valid choice.")
	}
	return data, errs
}
