package ocr

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPExtractorExtract(t *testing.T) {
	t.Run("sends the document reference and decodes the extraction", func(t *testing.T) {
		var gotBody map[string]string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "Bearer ocr-key", r.Header.Get("Authorization"))

			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

			json.NewEncoder(w).Encode(map[string]any{
				"success":                 true,
				"extractedName":           "Jane Citizen",
				"extractedDocumentNumber": "P1234567",
				"extractedDOB":            "1990-05-20",
				"isValid":                 true,
			})
		}))
		defer server.Close()

		extractor := NewHTTPExtractor(server.URL, "ocr-key", 5*time.Second)
		extraction, err := extractor.Extract(context.Background(), "https://documents.example.com/passport.jpg", DocumentTypePassport)
		require.NoError(t, err)

		assert.Equal(t, "https://documents.example.com/passport.jpg", gotBody["documentUrl"])
		assert.Equal(t, "passport", gotBody["documentType"])
		assert.Equal(t, "AU", gotBody["country"])

		assert.Equal(t, "Jane Citizen", extraction.ExtractedName)
		assert.Equal(t, "P1234567", extraction.ExtractedDocumentNumber)
		assert.True(t, extraction.IsValid)
		assert.False(t, extraction.HasRecords)
	})

	t.Run("unsuccessful extraction is an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{
				"success": false,
				"error":   "document unreadable",
			})
		}))
		defer server.Close()

		extractor := NewHTTPExtractor(server.URL, "ocr-key", 5*time.Second)
		_, err := extractor.Extract(context.Background(), "https://documents.example.com/blurry.jpg", DocumentTypePoliceCheck)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "document unreadable")
	})

	t.Run("non-2xx status is an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		extractor := NewHTTPExtractor(server.URL, "ocr-key", 5*time.Second)
		_, err := extractor.Extract(context.Background(), "https://documents.example.com/doc.jpg", DocumentTypeDriversLicense)
		assert.Error(t, err)
	})
}
