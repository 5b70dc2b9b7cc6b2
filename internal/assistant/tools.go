package assistant

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	productpkg "github.com/solemate/solemate-backend/internal/products"
	"github.com/solemate/solemate-backend/pkg/openai"
)

// catalogTools is the function schema advertised to the model in tools mode.
var catalogTools = []openai.Tool{
	{
		Type: "function",
		Function: openai.ToolFunction{
			Name:        "searchProducts",
			Description: "Search the catalog by free text over title and brand.",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"query": {"type": "string", "description": "Search text"}
				},
				"required": ["query"]
			}`),
		},
	},
	{
		Type: "function",
		Function: openai.ToolFunction{
			Name:        "getProductById",
			Description: "Fetch one product by its id or slug.",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"id": {"type": "string", "description": "Product id or slug"}
				},
				"required": ["id"]
			}`),
		},
	},
	{
		Type: "function",
		Function: openai.ToolFunction{
			Name:        "getAllProducts",
			Description: "List catalog products including inactive ones.",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"limit": {"type": "integer", "description": "Max rows to return"}
				}
			}`),
		},
	},
	{
		Type: "function",
		Function: openai.ToolFunction{
			Name:        "updateProduct",
			Description: "Update product fields. Only provided fields change.",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"id": {"type": "string", "description": "Product id"},
					"title": {"type": "string"},
					"brand": {"type": "string"},
					"color": {"type": "string"},
					"category": {"type": "string"},
					"collection": {"type": "string"},
					"description": {"type": "string"},
					"price": {"type": "number"},
					"is_active": {"type": "boolean"}
				},
				"required": ["id"]
			}`),
		},
	},
}

// executeTool dispatches one model-requested call against the catalog and
// returns a JSON result string for the follow-up completion.
func (s *service) executeTool(ctx context.Context, call openai.ToolCall) (string, error) {
	switch call.Function.Name {
	case "searchProducts":
		var args struct {
			Query string `json:"query"`
		}
		if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
			return "", fmt.Errorf("searchProducts arguments: %w", err)
		}
		res, err := s.products.ListProducts(ctx, productpkg.ListProductsInput{Search: args.Query})
		if err != nil {
			return "", err
		}
		return marshalResult(res.Products)

	case "getProductById":
		var args struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
			return "", fmt.Errorf("getProductById arguments: %w", err)
		}
		dto, err := s.products.GetProduct(ctx, args.ID)
		if err != nil {
			return "", err
		}
		return marshalResult(dto)

	case "getAllProducts":
		var args struct {
			Limit int `json:"limit"`
		}
		if call.Function.Arguments != "" {
			if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
				return "", fmt.Errorf("getAllProducts arguments: %w", err)
			}
		}
		res, err := s.products.ListProducts(ctx, productpkg.ListProductsInput{
			IncludeInactive: true,
			Limit:           args.Limit,
		})
		if err != nil {
			return "", err
		}
		return marshalResult(res.Products)

	case "updateProduct":
		var args struct {
			ID          string   `json:"id"`
			Title       *string  `json:"title"`
			Brand       *string  `json:"brand"`
			Color       *string  `json:"color"`
			Category    *string  `json:"category"`
			Collection  *string  `json:"collection"`
			Description *string  `json:"description"`
			Price       *float64 `json:"price"`
			IsActive    *bool    `json:"is_active"`
		}
		if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
			return "", fmt.Errorf("updateProduct arguments: %w", err)
		}
		productID, err := uuid.Parse(args.ID)
		if err != nil {
			return "", fmt.Errorf("updateProduct: invalid product id %q", args.ID)
		}
		input := productpkg.UpdateProductInput{
			Title:       args.Title,
			Brand:       args.Brand,
			Color:       args.Color,
			Category:    args.Category,
			Collection:  args.Collection,
			Description: args.Description,
			IsActive:    args.IsActive,
		}
		if args.Price != nil {
			price := decimal.NewFromFloat(*args.Price)
			input.Price = &price
		}
		dto, err := s.products.UpdateProduct(ctx, productID, input)
		if err != nil {
			return "", err
		}
		return marshalResult(dto)

	default:
		return "", fmt.Errorf("unknown tool %q", call.Function.Name)
	}
}

func marshalResult(v any) (string, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(body), nil
}
