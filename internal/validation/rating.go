package validation

// RatingInput carries the scored fields of a rating.
type RatingInput struct {
	Comment       string `validate:"max=2000" msg:"comment is too long (max 2000 characters)"`
	RatingDesign  int    `validate:"score" msg:"ratings must be between 1 and 5"`
	RatingComfort int    `validate:"score" msg:"ratings must be between 1 and 5"`
	RatingQuality int    `validate:"score" msg:"ratings must be between 1 and 5"`
	RatingValue   int    `validate:"score" msg:"ratings must be between 1 and 5"`
	Sizing        int    `validate:"sizing" msg:"sizing must be between -2 and 2"`
}

// SneakerInput carries the user supplied metadata of a new sneaker.
type SneakerInput struct {
	Name           string `validate:"required,max=200"`
	Brand          string `validate:"max=100"`
	Description    string `validate:"max=2000"`
	ImageStorageID string `validate:"required" msg:"image is required"`
}

// ProfileInput carries identity provider profile fields.
type ProfileInput struct {
	Email     string `validate:"omitempty,email,max=254"`
	FirstName string `validate:"max=100"`
	LastName  string `validate:"max=100"`
}
