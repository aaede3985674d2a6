package validation

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/templui/sneakerbase/internal/model"
)

func validRating() RatingInput {
	return RatingInput{RatingDesign: 5, RatingComfort: 4, RatingQuality: 5, RatingValue: 3, Sizing: 0}
}

func TestRatingInputBounds(t *testing.T) {
	require.NoError(t, Struct(validRating()))

	tests := []struct {
		name    string
		mutate  func(*RatingInput)
		field   string
		message string
	}{
		{"design too low", func(r *RatingInput) { r.RatingDesign = 0 }, "RatingDesign", "ratings must be between 1 and 5"},
		{"comfort too high", func(r *RatingInput) { r.RatingComfort = 6 }, "RatingComfort", "ratings must be between 1 and 5"},
		{"value negative", func(r *RatingInput) { r.RatingValue = -1 }, "RatingValue", "ratings must be between 1 and 5"},
		{"sizing too small", func(r *RatingInput) { r.Sizing = -3 }, "Sizing", "sizing must be between -2 and 2"},
		{"sizing too large", func(r *RatingInput) { r.Sizing = 3 }, "Sizing", "sizing must be between -2 and 2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validRating()
			tt.mutate(&in)

			err := Struct(in)
			var verr *Error
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
			assert.Equal(t, tt.message, verr.Message)
		})
	}

	t.Run("edges are inclusive", func(t *testing.T) {
		in := RatingInput{RatingDesign: 1, RatingComfort: 5, RatingQuality: 1, RatingValue: 5, Sizing: -2}
		assert.NoError(t, Struct(in))
		in.Sizing = 2
		assert.NoError(t, Struct(&in))
	})

	t.Run("bounds follow the model", func(t *testing.T) {
		in := RatingInput{RatingDesign: model.MinScore, RatingComfort: model.MaxScore, RatingQuality: model.MinScore, RatingValue: model.MaxScore, Sizing: model.MinSizing}
		assert.NoError(t, Struct(in))

		in.RatingDesign = model.MaxScore + 1
		assert.Error(t, Struct(in))

		in = RatingInput{RatingDesign: model.MinScore, RatingComfort: model.MinScore, RatingQuality: model.MinScore, RatingValue: model.MinScore, Sizing: model.MaxSizing + 1}
		assert.Error(t, Struct(in))
	})
}

func TestSneakerInput(t *testing.T) {
	err := Struct(SneakerInput{ImageStorageID: "sneakers/x"})
	var verr *Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "name is required", verr.Message)

	err = Struct(SneakerInput{Name: "Air Jordan 1"})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "image is required", verr.Message)
}

func TestValidateContent(t *testing.T) {
	png := append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)

	contentType, err := ValidateContent(png, ImageConstraints)
	require.NoError(t, err)
	assert.Equal(t, "image/png", contentType)

	_, err = ValidateContent([]byte("just some text"), ImageConstraints)
	var verr *Error
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Message, "invalid file type")

	_, err = ValidateContent(png, ImageConstraints.WithMaxSize(8))
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Message, "file too large")

	_, err = ValidateContent(nil, ImageConstraints)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "file is empty", verr.Message)
}
