package testutil

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/smikis/how-well-you-know/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertStatusCode checks the HTTP response status
func AssertStatusCode(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	assert.Equal(t, expected, resp.StatusCode, "unexpected status code")
}

// AssertJSONResponse decodes the response body into v
func AssertJSONResponse(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer resp.Body.Close()
	err := json.NewDecoder(resp.Body).Decode(v)
	require.NoError(t, err, "failed to decode JSON response")
}

// validationErrorBody mirrors the handlers' 400 response shape
type validationErrorBody struct {
	Errors []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	} `json:"errors"`
}

// AssertValidationResponse checks a 400 response carrying accumulated
// validation errors and requires one of them to target the given field.
func AssertValidationResponse(t *testing.T, resp *http.Response, field string) {
	t.Helper()

	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body validationErrorBody
	AssertJSONResponse(t, resp, &body)
	require.NotEmpty(t, body.Errors)

	for _, e := range body.Errors {
		if e.Field == field {
			return
		}
	}
	t.Fatalf("no validation error for field %q in %+v", field, body.Errors)
}

// AssertValidationField checks that err carries a validation error for field
func AssertValidationField(t *testing.T, err error, field string) {
	t.Helper()

	verrs, ok := domain.AsValidation(err)
	require.True(t, ok, "expected validation errors, got %v", err)

	for _, e := range verrs {
		if e.Field == field {
			return
		}
	}
	t.Fatalf("no validation error for field %q in %v", field, verrs)
}

// AssertGameStatus checks the aggregate's lifecycle state
func AssertGameStatus(t *testing.T, game *domain.Game, status domain.GameStatus) {
	t.Helper()
	assert.Equal(t, status, game.Status)
}
