package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	productpkg "github.com/solemate/solemate-backend/internal/products"
	"github.com/solemate/solemate-backend/pkg/enums"
	pkgerrors "github.com/solemate/solemate-backend/pkg/errors"
	"github.com/solemate/solemate-backend/pkg/logger"
	"github.com/solemate/solemate-backend/pkg/openai"
)

const (
	// ModeTools lets the model call catalog functions mid-conversation.
	ModeTools = "tools"
	// ModeExtract runs the vision extraction path on an attached image.
	ModeExtract = "extract"

	// maxToolRounds bounds how many tool-call/completion cycles one chat
	// turn may trigger.
	maxToolRounds = 3
	// historyWindow caps how many stored turns are replayed to the model.
	historyWindow = 30
)

const chatSystemPrompt = `You are the SoleMate admin assistant. You help store
administrators manage the footwear catalog and homepage content. Use the
provided tools to look up or change products; never invent product data.`

const extractSystemPrompt = `You extract product attributes from a footwear
photo. Reply with a single JSON object with keys: title, brand, color,
category, collection, price_estimate, description, tags (array),
follow_ups (array of questions for missing attributes). No prose.`

const genericFailureReply = "Sorry, I could not reach the model just now. Please try again."

// chatClient is the completion surface the service needs; *openai.Client
// satisfies it and tests substitute a scripted fake.
type chatClient interface {
	Chat(ctx context.Context, req openai.ChatRequest) (*openai.ChatResponse, error)
	ChatModel() string
	VisionModel() string
}

// ChatInput is one admin chat turn.
type ChatInput struct {
	ConversationID uuid.UUID `json:"conversation_id"`
	Mode           string    `json:"mode" validate:"required,oneof=tools extract"`
	Message        string    `json:"message"`
	ImageBase64    string    `json:"image_base64"`
	ImageHint      string    `json:"image_hint"`
}

// ToolCallDTO is one executed tool call in the reply transcript.
type ToolCallDTO struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
	Result    string `json:"result,omitempty"`
	Error     string `json:"error,omitempty"`
}

// ChatResultDTO is the assistant's reply. Failed marks a model outage reply
// so the client renders it as an error bubble rather than advice.
type ChatResultDTO struct {
	ConversationID uuid.UUID      `json:"conversation_id"`
	Reply          string         `json:"reply"`
	ToolCalls      []ToolCallDTO  `json:"tool_calls,omitempty"`
	Extraction     *ExtractionDTO `json:"extraction,omitempty"`
	Failed         bool           `json:"failed,omitempty"`
}

// MessageDTO is one persisted conversation turn.
type MessageDTO struct {
	Role      enums.ChatRole  `json:"role"`
	Content   string          `json:"content"`
	ToolCalls json.RawMessage `json:"tool_calls,omitempty"`
}

// Service is the admin AI assistant: catalog chat with tool calling and
// product extraction from photos.
type Service interface {
	Chat(ctx context.Context, userID uuid.UUID, input ChatInput) (*ChatResultDTO, error)
	ExtractFromImage(ctx context.Context, imageBase64, hint string) (*ExtractionDTO, error)
	History(ctx context.Context, conversationID uuid.UUID) ([]MessageDTO, error)
}

// ServiceParams bundles the assistant dependencies.
type ServiceParams struct {
	Repository *Repository
	Products   productpkg.Service
	Model      chatClient
	Logger     *logger.Logger
}

type service struct {
	repo     *Repository
	products productpkg.Service
	model    chatClient
	logg     *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repository == nil {
		return nil, fmt.Errorf("assistant repository required")
	}
	if params.Products == nil {
		return nil, fmt.Errorf("product service required")
	}
	if params.Model == nil {
		return nil, fmt.Errorf("model client required")
	}
	return &service{
		repo:     params.Repository,
		products: params.Products,
		model:    params.Model,
		logg:     params.Logger,
	}, nil
}

// Chat routes one turn by the client-supplied mode. Mode is explicit: the
// UI knows whether the admin attached a photo, so the server never sniffs
// intent out of the message text.
func (s *service) Chat(ctx context.Context, userID uuid.UUID, input ChatInput) (*ChatResultDTO, error) {
	conversationID := input.ConversationID
	if conversationID == uuid.Nil {
		conversationID = uuid.New()
	}

	switch input.Mode {
	case ModeTools:
		if strings.TrimSpace(input.Message) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "message required in tools mode")
		}
		return s.chatWithTools(ctx, userID, conversationID, input.Message)
	case ModeExtract:
		if input.ImageBase64 == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "image required in extract mode")
		}
		extraction, err := s.ExtractFromImage(ctx, input.ImageBase64, input.ImageHint)
		if err != nil {
			return nil, err
		}
		reply := "Here is what I could read from the photo."
		if extraction.Note != "" {
			reply = extraction.Note
		}
		s.persist(ctx, conversationID, userID, enums.ChatRoleUser, "[image attached] "+input.ImageHint, nil)
		s.persist(ctx, conversationID, userID, enums.ChatRoleAssistant, reply, nil)
		return &ChatResultDTO{
			ConversationID: conversationID,
			Reply:          reply,
			Extraction:     extraction,
		}, nil
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown chat mode %q", input.Mode))
	}
}

func (s *service) chatWithTools(ctx context.Context, userID, conversationID uuid.UUID, message string) (*ChatResultDTO, error) {
	history, err := s.repo.History(ctx, conversationID, historyWindow)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: chat history")
	}

	messages := []openai.Message{{Role: "system", Content: chatSystemPrompt}}
	for _, turn := range history {
		if turn.Role != enums.ChatRoleUser && turn.Role != enums.ChatRoleAssistant {
			continue
		}
		messages = append(messages, openai.Message{Role: turn.Role.String(), Content: turn.Content})
	}
	messages = append(messages, openai.Message{Role: "user", Content: message})

	s.persist(ctx, conversationID, userID, enums.ChatRoleUser, message, nil)

	var transcript []ToolCallDTO
	for round := 0; round < maxToolRounds; round++ {
		resp, err := s.model.Chat(ctx, openai.ChatRequest{
			Model:    s.model.ChatModel(),
			Messages: messages,
			Tools:    catalogTools,
		})
		if err != nil {
			if s.logg != nil {
				s.logg.Warn(ctx, "assistant model call failed: "+err.Error())
			}
			return &ChatResultDTO{
				ConversationID: conversationID,
				Reply:          genericFailureReply,
				Failed:         true,
			}, nil
		}

		choice := resp.Choices[0].Message
		if len(choice.ToolCalls) == 0 {
			reply, _ := choice.Content.(string)
			toolJSON, _ := json.Marshal(transcript)
			s.persist(ctx, conversationID, userID, enums.ChatRoleAssistant, reply, toolJSON)
			return &ChatResultDTO{
				ConversationID: conversationID,
				Reply:          reply,
				ToolCalls:      transcript,
			}, nil
		}

		messages = append(messages, openai.Message{
			Role:      "assistant",
			Content:   choice.Content,
			ToolCalls: choice.ToolCalls,
		})
		for _, call := range choice.ToolCalls {
			entry := ToolCallDTO{Name: call.Function.Name, Arguments: call.Function.Arguments}
			result, err := s.executeTool(ctx, call)
			if err != nil {
				entry.Error = err.Error()
				result = fmt.Sprintf(`{"error": %q}`, err.Error())
			} else {
				entry.Result = result
			}
			transcript = append(transcript, entry)
			messages = append(messages, openai.Message{
				Role:       "tool",
				Content:    result,
				ToolCallID: call.ID,
			})
		}
	}

	// The model kept asking for tools; stop the loop and say so.
	reply := "I could not finish that request in one go. Please narrow it down."
	toolJSON, _ := json.Marshal(transcript)
	s.persist(ctx, conversationID, userID, enums.ChatRoleAssistant, reply, toolJSON)
	return &ChatResultDTO{
		ConversationID: conversationID,
		Reply:          reply,
		ToolCalls:      transcript,
	}, nil
}

// ExtractFromImage asks the vision model for strict-JSON product attributes
// and never surfaces a model failure: malformed JSON falls back to regex
// scraping, and an outage degrades to an apology note.
func (s *service) ExtractFromImage(ctx context.Context, imageBase64, hint string) (*ExtractionDTO, error) {
	prompt := "Extract the product attributes from this photo."
	if strings.TrimSpace(hint) != "" {
		prompt += " Hint: " + hint
	}

	imageURL := imageBase64
	if !strings.HasPrefix(imageURL, "data:") {
		imageURL = "data:image/jpeg;base64," + imageBase64
	}

	resp, err := s.model.Chat(ctx, openai.ChatRequest{
		Model: s.model.VisionModel(),
		Messages: []openai.Message{
			{Role: "system", Content: extractSystemPrompt},
			{Role: "user", Content: []openai.ContentPart{
				{Type: "text", Text: prompt},
				{Type: "image_url", ImageURL: &openai.ImageURL{URL: imageURL}},
			}},
		},
		ResponseFormat: &openai.ResponseFormat{Type: "json_object"},
	})
	if err != nil {
		if s.logg != nil {
			s.logg.Warn(ctx, "vision extraction failed: "+err.Error())
		}
		return &ExtractionDTO{
			Degraded: true,
			Note:     "Sorry, I could not read the image just now. Please fill the product form manually.",
		}, nil
	}

	reply, _ := resp.Choices[0].Message.Content.(string)
	if extraction, ok := parseExtraction(reply); ok {
		return extraction, nil
	}
	return fallbackExtraction(reply), nil
}

// History replays a stored conversation for the admin console.
func (s *service) History(ctx context.Context, conversationID uuid.UUID) ([]MessageDTO, error) {
	rows, err := s.repo.History(ctx, conversationID, 0)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: chat history")
	}
	out := make([]MessageDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, MessageDTO{
			Role:      row.Role,
			Content:   row.Content,
			ToolCalls: row.ToolCalls,
		})
	}
	return out, nil
}

// persist is best-effort: losing a transcript row must not fail the chat.
func (s *service) persist(ctx context.Context, conversationID, userID uuid.UUID, role enums.ChatRole, content string, toolCalls json.RawMessage) {
	if err := s.repo.Append(ctx, conversationID, userID, role, content, toolCalls); err != nil && s.logg != nil {
		s.logg.Warn(ctx, "persist chat turn failed: "+err.Error())
	}
}
