package planner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dwizi/friday/internal/actions"
	"github.com/dwizi/friday/internal/assisterr"
)

type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

type Gemini struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger
}

func NewGemini(cfg Config, logger *slog.Logger) *Gemini {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = "gemini-2.5-flash"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Gemini{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

type part struct {
	Text             string            `json:"text,omitempty"`
	FunctionCall     *functionCall     `json:"functionCall,omitempty"`
	FunctionResponse *functionResponse `json:"functionResponse,omitempty"`
}

type functionCall struct {
	Name string          `json:"name"`
	Args json.RawMessage `json:"args"`
}

type functionResponse struct {
	Name     string         `json:"name"`
	Response map[string]any `json:"response"`
}

type content struct {
	Role  string `json:"role"`
	Parts []part `json:"parts"`
}

type functionDeclaration struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}

type tool struct {
	FunctionDeclarations []functionDeclaration `json:"functionDeclarations,omitempty"`
	GoogleSearch         *struct{}             `json:"googleSearch,omitempty"`
}

type generateRequest struct {
	Contents          []content `json:"contents"`
	SystemInstruction *content  `json:"systemInstruction,omitempty"`
	Tools             []tool    `json:"tools,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
		GroundingMetadata *struct {
			GroundingChunks []struct {
				Web *struct {
					URI   string `json:"uri"`
					Title string `json:"title"`
				} `json:"web"`
			} `json:"groundingChunks"`
		} `json:"groundingMetadata"`
	} `json:"candidates"`
}

func (g *Gemini) Plan(ctx context.Context, input Input) (Outcome, error) {
	contents := historyContents(input.History)
	contents = append(contents, content{Role: "user", Parts: []part{{Text: input.Message}}})

	response, err := g.generate(ctx, generateRequest{
		Contents:          contents,
		SystemInstruction: directiveContent(input.Directive),
		Tools:             catalogTools(input.Catalog),
	})
	if err != nil {
		return Outcome{}, err
	}
	return parseOutcome(response)
}

// Synthesize replays the planner's own tool-call turn followed by the
// results, order-aligned with the requests, and returns the model's
// conversational summary. The summary can itself be grounded, so the full
// parsed outcome is returned with any citations intact.
func (g *Gemini) Synthesize(ctx context.Context, input Input, prior Outcome, results []actions.Result) (Outcome, error) {
	resultParts := make([]part, 0, len(results))
	for _, result := range results {
		payload := map[string]any{}
		if result.Success {
			payload["result"] = result.Payload
		} else {
			payload["error"] = result.Reason
		}
		resultParts = append(resultParts, part{FunctionResponse: &functionResponse{
			Name:     result.Name,
			Response: payload,
		}})
	}

	contents := historyContents(input.History)
	contents = append(contents,
		content{Role: "user", Parts: []part{{Text: input.Message}}},
		content{Role: "model", Parts: prior.modelParts},
		content{Role: "tool", Parts: resultParts},
	)

	response, err := g.generate(ctx, generateRequest{
		Contents: contents,
		Tools:    catalogTools(input.Catalog),
	})
	if err != nil {
		return Outcome{}, err
	}
	return parseOutcome(response)
}

func (g *Gemini) generate(ctx context.Context, payload generateRequest) (generateResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return generateResponse{}, fmt.Errorf("marshal planner request: %w", err)
	}

	endpoint := fmt.Sprintf(
		"%s/models/%s:generateContent?key=%s",
		strings.TrimRight(g.cfg.BaseURL, "/"),
		url.PathEscape(g.cfg.Model),
		url.QueryEscape(g.cfg.APIKey),
	)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return generateResponse{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := g.httpClient.Do(req)
	if err != nil {
		return generateResponse{}, fmt.Errorf("%w: %v", assisterr.ErrPlannerUnavailable, err)
	}
	defer res.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(res.Body, 8<<20))
	if err != nil {
		return generateResponse{}, fmt.Errorf("%w: read response: %v", assisterr.ErrPlannerUnavailable, err)
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		g.logger.Error("planner call failed", "status", res.StatusCode, "body", strings.TrimSpace(string(respBody)))
		return generateResponse{}, fmt.Errorf("%w: status %d", assisterr.ErrPlannerUnavailable, res.StatusCode)
	}

	var response generateResponse
	if err := json.Unmarshal(respBody, &response); err != nil {
		return generateResponse{}, fmt.Errorf("%w: decode response: %v", assisterr.ErrPlannerUnavailable, err)
	}
	return response, nil
}

func parseOutcome(response generateResponse) (Outcome, error) {
	if len(response.Candidates) == 0 {
		return Outcome{}, fmt.Errorf("%w: response returned no candidates", assisterr.ErrPlannerUnavailable)
	}
	candidate := response.Candidates[0]

	var text strings.Builder
	var requested []actions.Request
	for _, item := range candidate.Content.Parts {
		if item.FunctionCall != nil {
			args := item.FunctionCall.Args
			if len(args) == 0 {
				args = json.RawMessage(`{}`)
			}
			requested = append(requested, actions.Request{
				Name: strings.TrimSpace(item.FunctionCall.Name),
				Args: args,
			})
			continue
		}
		text.WriteString(item.Text)
	}

	outcome := Outcome{
		Text:       strings.TrimSpace(text.String()),
		modelParts: candidate.Content.Parts,
	}

	if candidate.GroundingMetadata != nil {
		for _, chunk := range candidate.GroundingMetadata.GroundingChunks {
			if chunk.Web == nil || strings.TrimSpace(chunk.Web.URI) == "" {
				continue
			}
			outcome.Citations = append(outcome.Citations, Citation{
				Title: chunk.Web.Title,
				URI:   chunk.Web.URI,
			})
		}
	}

	switch {
	case len(requested) > 0:
		outcome.Kind = KindActions
		outcome.Actions = requested
	case len(outcome.Citations) > 0:
		outcome.Kind = KindGrounded
	default:
		outcome.Kind = KindText
	}
	return outcome, nil
}

func historyContents(history []Turn) []content {
	contents := make([]content, 0, len(history)+3)
	for _, turn := range history {
		role := turn.Role
		if role != "model" {
			role = "user"
		}
		contents = append(contents, content{Role: role, Parts: []part{{Text: turn.Text}}})
	}
	return contents
}

func directiveContent(directive string) *content {
	if strings.TrimSpace(directive) == "" {
		return nil
	}
	return &content{Parts: []part{{Text: directive}}}
}

func catalogTools(catalog []actions.Declaration) []tool {
	declarations := make([]functionDeclaration, 0, len(catalog))
	for _, entry := range catalog {
		declarations = append(declarations, functionDeclaration{
			Name:        entry.Name,
			Description: entry.Description,
			Parameters:  entry.Parameters,
		})
	}
	tools := []tool{}
	if len(declarations) > 0 {
		tools = append(tools, tool{FunctionDeclarations: declarations})
	}
	tools = append(tools, tool{GoogleSearch: &struct{}{}})
	return tools
}
