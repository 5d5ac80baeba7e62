package openai

import (
	"context"
	"fmt"

	openaisdk "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/packages/param"
	"github.com/openai/openai-go/v3/shared"
)

// CompleteJSON sends a chat completion request constrained to a JSON object
// response and returns the raw JSON text. Temperature is pinned to zero so
// repeated calls with the same prompt parse the same way.
func (c *Client) CompleteJSON(ctx context.Context, system, user string) (string, error) {
	if user == "" {
		return "", ErrEmptyInput
	}

	if err := c.wait(ctx); err != nil {
		return "", err
	}

	resp, err := c.sdk.Chat.Completions.New(ctx, openaisdk.ChatCompletionNewParams{
		Model: c.chatModel,
		Messages: []openaisdk.ChatCompletionMessageParamUnion{
			openaisdk.SystemMessage(system),
			openaisdk.UserMessage(user),
		},
		Temperature: param.NewOpt(0.0),
		ResponseFormat: openaisdk.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrNoChoiceInResponse
	}

	return resp.Choices[0].Message.Content, nil
}

// Complete sends a free-form chat completion request and returns the text of
// the first choice.
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	if user == "" {
		return "", ErrEmptyInput
	}

	if err := c.wait(ctx); err != nil {
		return "", err
	}

	resp, err := c.sdk.Chat.Completions.New(ctx, openaisdk.ChatCompletionNewParams{
		Model: c.chatModel,
		Messages: []openaisdk.ChatCompletionMessageParamUnion{
			openaisdk.SystemMessage(system),
			openaisdk.UserMessage(user),
		},
		Temperature: param.NewOpt(0.7),
	})
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrNoChoiceInResponse
	}

	return resp.Choices[0].Message.Content, nil
}
