package llm

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/markdave123-py/kbase/internal/core"
)

// extractionPrompt instructs the model to OCR protected or image-embedded
// content, keep the reading order, convert tables to markdown syntax, and
// structure the output with markdown headings so the section parser can
// work with it.
const extractionPrompt = "I have a PDF document where text content might be protected or embedded as images. Please perform the following steps:\n" +
	"\n" +
	"    1. Apply OCR: If the PDF's text is not directly accessible, use OCR to capture all the content accurately.\n" +
	"    2. Comprehensive extraction: Extract every bit of text from the document - not only the table data, but also all accompanying descriptions, captions, and contextual information that explains what the tables are and what the measurements mean.\n" +
	"    3. Maintain logical structure: Preserve the natural reading order. Ensure that section titles, headers, footers, paragraphs, and any descriptive text are maintained in the correct order relative to the tables.\n" +
	"    4. Convert tables to Markdown: For any tables in the PDF, convert them to Markdown table syntax using pipes and dashes. Ensure the table content is complete.\n" +
	"    5. Organize into a Markdown document: Structure the final output in Markdown format, using appropriate Markdown headings (e.g., #, ##, etc.) to separate sections. Ensure that the descriptive text is clearly associated with the corresponding tables and measurements."

// GeminiExtractor converts PDF bytes to markdown text via a multimodal
// Gemini call with the file passed inline.
type GeminiExtractor struct {
	client    *genai.Client
	modelName string
}

func NewGeminiExtractor(ctx context.Context, apiKey, modelName string) (*GeminiExtractor, error) {
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}
	return &GeminiExtractor{client: cl, modelName: modelName}, nil
}

func (g *GeminiExtractor) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

// Extract sends the document inline and returns the model's markdown.
func (g *GeminiExtractor) Extract(ctx context.Context, data []byte) (string, error) {
	m := g.client.GenerativeModel(g.modelName)
	m.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(extractionPrompt)},
	}

	resp, err := m.GenerateContent(ctx, genai.Blob{MIMEType: "application/pdf", Data: data})
	if err != nil {
		return "", fmt.Errorf("gemini extract: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini extract: empty response")
	}

	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if t, ok := p.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return strings.TrimSpace(b.String()), nil
}

var _ core.TextExtractor = (*GeminiExtractor)(nil)
