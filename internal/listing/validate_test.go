package listing

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "roost/pkg/domain-errors"
)

func validTestForm() Form {
	return Form{
		Title:       "Seaside cabin",
		Description: "Two rooms, own pier",
		Price:       120,
		PriceRaw:    "120",
		Location:    "Tallinn, Estonia",
		Country:     "Estonia",
	}
}

func TestValidateForm(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Form)
		wantErr []string
	}{
		{
			name:   "valid form passes",
			mutate: func(*Form) {},
		},
		{
			name:    "blank title",
			mutate:  func(f *Form) { f.Title = "   " },
			wantErr: []string{"title is required"},
		},
		{
			name:    "overlong title",
			mutate:  func(f *Form) { f.Title = strings.Repeat("x", 141) },
			wantErr: []string{"title must be at most 140 characters"},
		},
		{
			name:    "missing description",
			mutate:  func(f *Form) { f.Description = "" },
			wantErr: []string{"description is required"},
		},
		{
			name:    "missing price",
			mutate:  func(f *Form) { f.PriceRaw = ""; f.Price = 0 },
			wantErr: []string{"price is required"},
		},
		{
			name:    "non-numeric price",
			mutate:  func(f *Form) { f.PriceRaw = "cheap" },
			wantErr: []string{"price must be a number"},
		},
		{
			name:    "negative price",
			mutate:  func(f *Form) { f.PriceRaw = "-5"; f.Price = -5 },
			wantErr: []string{"price must not be negative"},
		},
		{
			name:    "missing location",
			mutate:  func(f *Form) { f.Location = "" },
			wantErr: []string{"location is required"},
		},
		{
			name:    "missing country",
			mutate:  func(f *Form) { f.Country = "" },
			wantErr: []string{"country is required"},
		},
		{
			name: "all violations reported at once",
			mutate: func(f *Form) {
				*f = Form{}
			},
			wantErr: []string{
				"title is required",
				"description is required",
				"price is required",
				"location is required",
				"country is required",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := validTestForm()
			tt.mutate(&form)

			err := ValidateForm(form)
			if len(tt.wantErr) == 0 {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.Equal(t, dErrors.CodeInvalidInput, dErrors.CodeOf(err))
			for _, want := range tt.wantErr {
				assert.Contains(t, err.Error(), want)
			}
		})
	}
}

// The joined message keeps the individual violations in schema order so the
// client can render them as one line.
func TestValidateFormMessageJoining(t *testing.T) {
	err := ValidateForm(Form{Title: "x", PriceRaw: "9", Price: 9, Location: "y"})
	require.Error(t, err)
	assert.Equal(t, "description is required, country is required", dErrors.MessageOf(err))
}
