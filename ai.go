// ai.go

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrGenerationFailed means the provider answered but returned no image.
var ErrGenerationFailed = errors.New("generation returned no image")

const (
	designModel = "gemini-2.0-flash-exp"
	textModel   = "gemini-2.0-flash"

	defaultGenAIBaseURL = "https://generativelanguage.googleapis.com/v1beta"
)

// blockMediumAndAbove on all four harm categories; this configuration ships
// with every design generation request.
var designSafetySettings = []genaiSafetySetting{
	{Category: "HARM_CATEGORY_HATE_SPEECH", Threshold: "BLOCK_MEDIUM_AND_ABOVE"},
	{Category: "HARM_CATEGORY_SEXUALLY_EXPLICIT", Threshold: "BLOCK_MEDIUM_AND_ABOVE"},
	{Category: "HARM_CATEGORY_HARASSMENT", Threshold: "BLOCK_MEDIUM_AND_ABOVE"},
	{Category: "HARM_CATEGORY_DANGEROUS_CONTENT", Threshold: "BLOCK_MEDIUM_AND_ABOVE"},
}

// ----- Wire types -----

type genaiInlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type genaiPart struct {
	Text       string           `json:"text,omitempty"`
	InlineData *genaiInlineData `json:"inlineData,omitempty"`
}

type genaiContent struct {
	Role  string      `json:"role,omitempty"`
	Parts []genaiPart `json:"parts"`
}

type genaiSafetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

type genaiGenerationConfig struct {
	ResponseModalities []string `json:"responseModalities,omitempty"`
	ResponseMimeType   string   `json:"responseMimeType,omitempty"`
}

type genaiRequest struct {
	Contents         []genaiContent         `json:"contents"`
	GenerationConfig *genaiGenerationConfig `json:"generationConfig,omitempty"`
	SafetySettings   []genaiSafetySetting   `json:"safetySettings,omitempty"`
}

type genaiResponse struct {
	Candidates []struct {
		Content genaiContent `json:"content"`
	} `json:"candidates"`
}

// ----- Client -----

// GenAIClient is a thin adapter over the generative endpoint: it assembles
// the multi-part prompt and unwraps the one field the callers care about.
// No retries, rate limiting or caching.
type GenAIClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

func NewGenAIClient(apiKey, baseURL string) *GenAIClient {
	if baseURL == "" {
		baseURL = defaultGenAIBaseURL
	}
	return &GenAIClient{
		apiKey:  apiKey,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		// Generation latency is unbounded on the provider side; cap it.
		http: &http.Client{Timeout: 90 * time.Second},
	}
}

type DesignRequest struct {
	ProductType           Category `json:"productType" binding:"required"`
	Size                  string   `json:"size" binding:"required"`
	MainPrompt            string   `json:"mainPrompt" binding:"required"`
	SpecialRequirements   string   `json:"specialRequirements"`
	ReferenceImageDataURI string   `json:"referenceImageDataUri"`
	ReferenceImagePrompt  string   `json:"referenceImagePrompt"`
	DesignStyle           string   `json:"designStyle"`
	ColorPalette          string   `json:"colorPalettePreference"`
}

// promptText flattens the structured request into one instruction string.
func (r DesignRequest) promptText() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate a design for a %s of size %q. The main idea is: %q.", r.ProductType, r.Size, r.MainPrompt)
	if r.SpecialRequirements != "" {
		fmt.Fprintf(&b, " Special requirements: %q.", r.SpecialRequirements)
	}
	if r.DesignStyle != "" {
		fmt.Fprintf(&b, " The design style should be: %q.", r.DesignStyle)
	}
	if r.ColorPalette != "" {
		fmt.Fprintf(&b, " The preferred color palette is: %q.", r.ColorPalette)
	}
	if r.ReferenceImageDataURI != "" {
		if r.ReferenceImagePrompt != "" {
			fmt.Fprintf(&b, " Regarding the provided reference image: %q.", r.ReferenceImagePrompt)
		} else {
			b.WriteString(" Consider the provided reference image as inspiration or a base.")
		}
	}
	return b.String()
}

// GenerateDesign submits the prompt (reference image part first, text part
// last) requesting text and image modalities, and returns the generated image
// as a data URI. ErrGenerationFailed when the response holds no image.
func (g *GenAIClient) GenerateDesign(ctx context.Context, req DesignRequest) (string, error) {
	if strings.TrimSpace(req.MainPrompt) == "" {
		return "", errors.New("design prompt is required")
	}
	if !req.ProductType.Valid() {
		return "", fmt.Errorf("unknown product type %q", req.ProductType)
	}

	var parts []genaiPart
	if req.ReferenceImageDataURI != "" {
		mime, data, err := parseDataURI(req.ReferenceImageDataURI)
		if err != nil {
			return "", err
		}
		parts = append(parts, genaiPart{InlineData: &genaiInlineData{MimeType: mime, Data: data}})
	}
	parts = append(parts, genaiPart{Text: req.promptText()})

	resp, err := g.generate(ctx, designModel, genaiRequest{
		Contents:         []genaiContent{{Parts: parts}},
		GenerationConfig: &genaiGenerationConfig{ResponseModalities: []string{"TEXT", "IMAGE"}},
		SafetySettings:   designSafetySettings,
	})
	if err != nil {
		return "", err
	}

	for _, cand := range resp.Candidates {
		for _, part := range cand.Content.Parts {
			if part.InlineData != nil && part.InlineData.Data != "" {
				return fmt.Sprintf("data:%s;base64,%s", part.InlineData.MimeType, part.InlineData.Data), nil
			}
		}
	}
	return "", ErrGenerationFailed
}

// AnswerDesignFAQ answers a question about the product design process.
func (g *GenAIClient) AnswerDesignFAQ(ctx context.Context, question string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", errors.New("question is required")
	}
	prompt := "You are a helpful AI assistant answering questions about the product design process.\n" +
		"Answer the following question:\n" + question

	resp, err := g.generate(ctx, textModel, genaiRequest{
		Contents: []genaiContent{{Parts: []genaiPart{{Text: prompt}}}},
	})
	if err != nil {
		return "", err
	}
	answer := firstText(resp)
	if answer == "" {
		return "", errors.New("assistant returned no answer")
	}
	return answer, nil
}

type SalesReport struct {
	Report  string `json:"report"`
	Summary string `json:"summary"`
}

// GenerateSalesReport turns the aggregated criteria into a readable report
// plus a brief summary.
func (g *GenAIClient) GenerateSalesReport(ctx context.Context, criteria string) (*SalesReport, error) {
	prompt := "You are an expert sales data analyst. Based on the following criteria, " +
		"generate a comprehensive sales report and a brief summary of the report.\n\n" +
		"Criteria: " + criteria + "\n\n" +
		"Respond with a JSON object holding two string fields: \"report\" (well-formatted and " +
		"easy to read, including key metrics and trends) and \"summary\" (a concise summary of " +
		"the main findings)."

	resp, err := g.generate(ctx, textModel, genaiRequest{
		Contents:         []genaiContent{{Parts: []genaiPart{{Text: prompt}}}},
		GenerationConfig: &genaiGenerationConfig{ResponseMimeType: "application/json"},
	})
	if err != nil {
		return nil, err
	}
	text := firstText(resp)
	if text == "" {
		return nil, errors.New("analyst returned no report")
	}
	var report SalesReport
	if err := json.Unmarshal([]byte(text), &report); err != nil {
		return nil, fmt.Errorf("malformed report payload: %w", err)
	}
	return &report, nil
}

func (g *GenAIClient) generate(ctx context.Context, model string, reqBody genaiRequest) (*genaiResponse, error) {
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}
	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.baseURL, model, g.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := g.http.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(httpResp.Body, 32<<20))
	if err != nil {
		return nil, err
	}
	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("generation endpoint returned %d: %s", httpResp.StatusCode, truncate(string(respBody), 512))
	}
	var resp genaiResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func firstText(resp *genaiResponse) string {
	for _, cand := range resp.Candidates {
		for _, part := range cand.Content.Parts {
			if part.Text != "" {
				return part.Text
			}
		}
	}
	return ""
}

// parseDataURI splits "data:<mime>;base64,<data>" into mime type and payload.
func parseDataURI(uri string) (mime, data string, err error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", "", errors.New("reference image must be a data URI")
	}
	mime, data, ok = strings.Cut(rest, ";base64,")
	if !ok || mime == "" || data == "" {
		return "", "", errors.New("reference image must be base64-encoded with a MIME type")
	}
	return mime, data, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
