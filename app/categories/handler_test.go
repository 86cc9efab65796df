package categories

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jmoralesv/go-storefront/models"
)

// --- Mock Repository ---

type MockCategoryRepo struct {
	Categories []models.Category
	CreateErr  error
	ListErr    error
	RenameErr  error
	LastSaved  *models.Category

	lastRenamedSlug string
	lastRenamedName string
}

func (m *MockCategoryRepo) GetAllCategories() ([]models.Category, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	return m.Categories, nil
}

func (m *MockCategoryRepo) CreateCategory(cat *models.Category) error {
	m.LastSaved = cat
	return m.CreateErr
}

func (m *MockCategoryRepo) RenameCategory(slug, name string) (*models.Category, error) {
	m.lastRenamedSlug = slug
	m.lastRenamedName = name

	if m.RenameErr != nil {
		return nil, m.RenameErr
	}
	for _, c := range m.Categories {
		if c.Slug == slug {
			renamed := c
			renamed.Name = name
			return &renamed, nil
		}
	}
	return nil, models.ErrCategoryNotFound
}

// --- Tests: GET /categories ---

func TestHandleGetAll(t *testing.T) {
	testCases := []struct {
		name               string
		mockRepoSetup      func() *MockCategoryRepo
		expectedStatusCode int
		checkResponse      func(t *testing.T, rec *httptest.ResponseRecorder)
	}{
		{
			name: "Success with multiple categories",
			mockRepoSetup: func() *MockCategoryRepo {
				return &MockCategoryRepo{
					Categories: []models.Category{
						{Slug: "tools", Name: "Tools"},
						{Slug: "safety", Name: "Safety"},
					},
				}
			},
			expectedStatusCode: http.StatusOK,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var resp []CategoryResponse
				err := json.NewDecoder(rec.Body).Decode(&resp)
				assert.NoError(t, err)
				assert.Len(t, resp, 2)
				assert.Equal(t, "tools", resp[0].Slug)
				assert.Equal(t, "Safety", resp[1].Name)
			},
		},
		{
			name: "Success with empty list",
			mockRepoSetup: func() *MockCategoryRepo {
				return &MockCategoryRepo{
					Categories: []models.Category{},
				}
			},
			expectedStatusCode: http.StatusOK,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var resp []CategoryResponse
				err := json.NewDecoder(rec.Body).Decode(&resp)
				assert.NoError(t, err)
				assert.Len(t, resp, 0)
			},
		},
		{
			name: "Repository error",
			mockRepoSetup: func() *MockCategoryRepo {
				return &MockCategoryRepo{
					ListErr: errors.New("db down"),
				}
			},
			expectedStatusCode: http.StatusInternalServerError,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var errResp map[string]string
				err := json.NewDecoder(rec.Body).Decode(&errResp)
				assert.NoError(t, err)
				assert.Equal(t, "failed to fetch categories", errResp["error"])
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			mockRepo := tc.mockRepoSetup()
			handler := NewCategoryHandler(mockRepo)
			req := httptest.NewRequest("GET", "/categories", nil)
			rec := httptest.NewRecorder()

			// Act
			handler.HandleGetAll(rec, req)

			// Assert
			assert.Equal(t, tc.expectedStatusCode, rec.Code)
			if tc.checkResponse != nil {
				tc.checkResponse(t, rec)
			}
		})
	}
}

// --- Tests: POST /categories ---

func TestHandleCreate(t *testing.T) {
	testCases := []struct {
		name               string
		requestBody        string
		mockRepoSetup      func() *MockCategoryRepo
		expectedStatusCode int
		checkResponse      func(t *testing.T, rec *httptest.ResponseRecorder)
		checkRepoCall      func(t *testing.T, repo *MockCategoryRepo)
	}{
		{
			name:        "Success",
			requestBody: `{"slug":"garden","name":"Garden"}`,
			mockRepoSetup: func() *MockCategoryRepo {
				return &MockCategoryRepo{}
			},
			expectedStatusCode: http.StatusCreated,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var resp CategoryResponse
				err := json.NewDecoder(rec.Body).Decode(&resp)
				assert.NoError(t, err)
				assert.Equal(t, "garden", resp.Slug)
				assert.Equal(t, "Garden", resp.Name)
			},
			checkRepoCall: func(t *testing.T, repo *MockCategoryRepo) {
				assert.NotNil(t, repo.LastSaved)
				assert.Equal(t, "garden", repo.LastSaved.Slug)
				assert.Equal(t, "Garden", repo.LastSaved.Name)
			},
		},
		{
			name:        "Invalid JSON body",
			requestBody: `{invalid json`,
			mockRepoSetup: func() *MockCategoryRepo {
				return &MockCategoryRepo{}
			},
			expectedStatusCode: http.StatusBadRequest,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var errResp map[string]string
				err := json.NewDecoder(rec.Body).Decode(&errResp)
				assert.NoError(t, err)
				assert.Equal(t, "Invalid JSON body", errResp["error"])
			},
			checkRepoCall: func(t *testing.T, repo *MockCategoryRepo) {
				assert.Nil(t, repo.LastSaved, "CreateCategory should not be called with invalid JSON")
			},
		},
		{
			name:        "Missing required fields (slug)",
			requestBody: `{"name":"MissingSlug"}`,
			mockRepoSetup: func() *MockCategoryRepo {
				return &MockCategoryRepo{}
			},
			expectedStatusCode: http.StatusBadRequest,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var errResp map[string]string
				err := json.NewDecoder(rec.Body).Decode(&errResp)
				assert.NoError(t, err)
				assert.Equal(t, "Missing slug or name", errResp["error"])
			},
			checkRepoCall: func(t *testing.T, repo *MockCategoryRepo) {
				assert.Nil(t, repo.LastSaved, "CreateCategory should not be called with missing fields")
			},
		},
		{
			name:        "Repository error on create",
			requestBody: `{"slug":"paint","name":"Paint"}`,
			mockRepoSetup: func() *MockCategoryRepo {
				return &MockCategoryRepo{CreateErr: errors.New("insert failed")}
			},
			expectedStatusCode: http.StatusInternalServerError,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var errResp map[string]string
				err := json.NewDecoder(rec.Body).Decode(&errResp)
				assert.NoError(t, err)
				assert.Equal(t, "Failed to create category", errResp["error"])
			},
			checkRepoCall: func(t *testing.T, repo *MockCategoryRepo) {
				assert.NotNil(t, repo.LastSaved, "CreateCategory should have been called")
				assert.Equal(t, "paint", repo.LastSaved.Slug)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			mockRepo := tc.mockRepoSetup()
			handler := NewCategoryHandler(mockRepo)
			req := httptest.NewRequest("POST", "/categories", strings.NewReader(tc.requestBody))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()

			// Act
			handler.HandleCreate(rec, req)

			// Assert
			assert.Equal(t, tc.expectedStatusCode, rec.Code)

			if tc.checkResponse != nil {
				tc.checkResponse(t, rec)
			}

			if tc.checkRepoCall != nil {
				tc.checkRepoCall(t, mockRepo)
			}
		})
	}
}

// --- Tests: PUT /categories/{slug} ---

func TestHandleRename(t *testing.T) {
	existing := []models.Category{
		{Slug: "tools", Name: "Tools"},
	}

	testCases := []struct {
		name               string
		slug               string
		requestBody        string
		mockRepoSetup      func() *MockCategoryRepo
		expectedStatusCode int
		checkResponse      func(t *testing.T, rec *httptest.ResponseRecorder)
		checkRepoCall      func(t *testing.T, repo *MockCategoryRepo)
	}{
		{
			name:        "Success",
			slug:        "tools",
			requestBody: `{"name":"Hand Tools"}`,
			mockRepoSetup: func() *MockCategoryRepo {
				return &MockCategoryRepo{Categories: existing}
			},
			expectedStatusCode: http.StatusOK,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var resp CategoryResponse
				err := json.NewDecoder(rec.Body).Decode(&resp)
				assert.NoError(t, err)
				assert.Equal(t, "tools", resp.Slug, "Slug must not change on rename")
				assert.Equal(t, "Hand Tools", resp.Name)
			},
			checkRepoCall: func(t *testing.T, repo *MockCategoryRepo) {
				assert.Equal(t, "tools", repo.lastRenamedSlug)
				assert.Equal(t, "Hand Tools", repo.lastRenamedName)
			},
		},
		{
			name:        "Unknown category",
			slug:        "garden",
			requestBody: `{"name":"Garden"}`,
			mockRepoSetup: func() *MockCategoryRepo {
				return &MockCategoryRepo{Categories: existing}
			},
			expectedStatusCode: http.StatusNotFound,
		},
		{
			name:        "Missing name",
			slug:        "tools",
			requestBody: `{}`,
			mockRepoSetup: func() *MockCategoryRepo {
				return &MockCategoryRepo{Categories: existing}
			},
			expectedStatusCode: http.StatusBadRequest,
			checkRepoCall: func(t *testing.T, repo *MockCategoryRepo) {
				assert.Empty(t, repo.lastRenamedSlug, "RenameCategory should not be called without a name")
			},
		},
		{
			name:        "Repository error on rename",
			slug:        "tools",
			requestBody: `{"name":"Hand Tools"}`,
			mockRepoSetup: func() *MockCategoryRepo {
				return &MockCategoryRepo{Categories: existing, RenameErr: errors.New("update failed")}
			},
			expectedStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			mockRepo := tc.mockRepoSetup()
			handler := NewCategoryHandler(mockRepo)
			req := httptest.NewRequest("PUT", "/categories/"+tc.slug, strings.NewReader(tc.requestBody))
			req.Header.Set("Content-Type", "application/json")
			req.SetPathValue("slug", tc.slug)
			rec := httptest.NewRecorder()

			// Act
			handler.HandleRename(rec, req)

			// Assert
			assert.Equal(t, tc.expectedStatusCode, rec.Code)

			if tc.checkResponse != nil {
				tc.checkResponse(t, rec)
			}

			if tc.checkRepoCall != nil {
				tc.checkRepoCall(t, mockRepo)
			}
		})
	}
}
