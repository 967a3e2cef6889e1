// ai_test.go

package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func genaiServer(t *testing.T, captured *genaiRequest, parts []genaiPart) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if captured != nil {
			if err := json.NewDecoder(r.Body).Decode(captured); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
		}
		resp := map[string]any{
			"candidates": []map[string]any{
				{"content": genaiContent{Role: "model", Parts: parts}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
}

func TestGenerateDesign(t *testing.T) {
	var captured genaiRequest
	srv := genaiServer(t, &captured, []genaiPart{
		{Text: "here you go"},
		{InlineData: &genaiInlineData{MimeType: "image/png", Data: "R0lGODlh"}},
	})
	defer srv.Close()

	client := NewGenAIClient("test-key", srv.URL)
	url, err := client.GenerateDesign(context.Background(), DesignRequest{
		ProductType:           CategoryNeonSign,
		Size:                  "Medium (up to 4ft)",
		MainPrompt:            "a pink flamingo",
		SpecialRequirements:   "weatherproof",
		DesignStyle:           "Minimalist",
		ColorPalette:          "warm colors",
		ReferenceImageDataURI: "data:image/jpeg;base64,QUJDRA==",
		ReferenceImagePrompt:  "keep the outline",
	})
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,R0lGODlh", url)

	require.Len(t, captured.Contents, 1)
	parts := captured.Contents[0].Parts
	require.Len(t, parts, 2)

	// Reference image travels first, as its own part.
	require.NotNil(t, parts[0].InlineData)
	assert.Equal(t, "image/jpeg", parts[0].InlineData.MimeType)
	assert.Equal(t, "QUJDRA==", parts[0].InlineData.Data)

	text := parts[1].Text
	assert.Contains(t, text, `Generate a design for a Neon Sign of size "Medium (up to 4ft)"`)
	assert.Contains(t, text, `The main idea is: "a pink flamingo".`)
	assert.Contains(t, text, `Special requirements: "weatherproof".`)
	assert.Contains(t, text, `The design style should be: "Minimalist".`)
	assert.Contains(t, text, `The preferred color palette is: "warm colors".`)
	assert.Contains(t, text, `Regarding the provided reference image: "keep the outline".`)

	require.NotNil(t, captured.GenerationConfig)
	assert.Equal(t, []string{"TEXT", "IMAGE"}, captured.GenerationConfig.ResponseModalities)

	require.Len(t, captured.SafetySettings, 4)
	for _, s := range captured.SafetySettings {
		assert.Equal(t, "BLOCK_MEDIUM_AND_ABOVE", s.Threshold)
	}
}

func TestGenerateDesignWithoutReferenceImage(t *testing.T) {
	var captured genaiRequest
	srv := genaiServer(t, &captured, []genaiPart{
		{InlineData: &genaiInlineData{MimeType: "image/png", Data: "AAAA"}},
	})
	defer srv.Close()

	client := NewGenAIClient("test-key", srv.URL)
	url, err := client.GenerateDesign(context.Background(), DesignRequest{
		ProductType: CategoryFlexBanner,
		Size:        "3x5 ft",
		MainPrompt:  "grand opening sale",
	})
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,AAAA", url)

	parts := captured.Contents[0].Parts
	require.Len(t, parts, 1)
	assert.Nil(t, parts[0].InlineData)
	assert.NotContains(t, parts[0].Text, "reference image")
}

func TestGenerateDesignNoImageInResponse(t *testing.T) {
	srv := genaiServer(t, nil, []genaiPart{{Text: "sorry, text only"}})
	defer srv.Close()

	client := NewGenAIClient("test-key", srv.URL)
	_, err := client.GenerateDesign(context.Background(), DesignRequest{
		ProductType: CategoryAcrylicSign,
		Size:        "12x18 in",
		MainPrompt:  "law office sign",
	})
	assert.ErrorIs(t, err, ErrGenerationFailed)
}

func TestGenerateDesignValidation(t *testing.T) {
	client := NewGenAIClient("test-key", "http://127.0.0.1:0")

	_, err := client.GenerateDesign(context.Background(), DesignRequest{
		ProductType: CategoryNeonSign,
		Size:        "Custom",
		MainPrompt:  "   ",
	})
	assert.Error(t, err)

	_, err = client.GenerateDesign(context.Background(), DesignRequest{
		ProductType: Category("Sticker"),
		Size:        "Custom",
		MainPrompt:  "logo",
	})
	assert.Error(t, err)

	_, err = client.GenerateDesign(context.Background(), DesignRequest{
		ProductType:           CategoryNeonSign,
		Size:                  "Custom",
		MainPrompt:            "logo",
		ReferenceImageDataURI: "https://example.com/not-a-data-uri.png",
	})
	assert.Error(t, err)
}

func TestGenerateDesignProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"quota exceeded"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewGenAIClient("test-key", srv.URL)
	_, err := client.GenerateDesign(context.Background(), DesignRequest{
		ProductType: CategoryFlexBanner,
		Size:        "3x5 ft",
		MainPrompt:  "sale",
	})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrGenerationFailed)
	assert.Contains(t, err.Error(), "429")
}

func TestAnswerDesignFAQ(t *testing.T) {
	var captured genaiRequest
	srv := genaiServer(t, &captured, []genaiPart{{Text: "Vector files print sharpest."}})
	defer srv.Close()

	client := NewGenAIClient("test-key", srv.URL)
	answer, err := client.AnswerDesignFAQ(context.Background(), "What file format should I upload?")
	require.NoError(t, err)
	assert.Equal(t, "Vector files print sharpest.", answer)
	assert.Contains(t, captured.Contents[0].Parts[0].Text, "What file format should I upload?")

	_, err = client.AnswerDesignFAQ(context.Background(), "  ")
	assert.Error(t, err)
}

func TestGenerateSalesReport(t *testing.T) {
	payload, _ := json.Marshal(SalesReport{Report: "full report", Summary: "short summary"})
	srv := genaiServer(t, nil, []genaiPart{{Text: string(payload)}})
	defer srv.Close()

	client := NewGenAIClient("test-key", srv.URL)
	report, err := client.GenerateSalesReport(context.Background(), "last 30 days")
	require.NoError(t, err)
	assert.Equal(t, "full report", report.Report)
	assert.Equal(t, "short summary", report.Summary)
}

func TestParseDataURI(t *testing.T) {
	mime, data, err := parseDataURI("data:image/png;base64,QUJD")
	require.NoError(t, err)
	assert.Equal(t, "image/png", mime)
	assert.Equal(t, "QUJD", data)

	_, _, err = parseDataURI("image/png;base64,QUJD")
	assert.Error(t, err)
	_, _, err = parseDataURI("data:image/png,QUJD")
	assert.Error(t, err)
}
