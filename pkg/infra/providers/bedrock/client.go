package bedrock

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/NeuralTrust/SafeChat/pkg/infra/providers"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	stsTypes "github.com/aws/aws-sdk-go-v2/service/sts/types"
)

const (
	defaultRegion      = "us-east-1"
	defaultSessionName = "SafeChatGeneration"
)

// ConverseAPI is the part of the bedrock runtime client the provider calls.
type ConverseAPI interface {
	Converse(
		ctx context.Context,
		params *bedrockruntime.ConverseInput,
		optFns ...func(*bedrockruntime.Options),
	) (*bedrockruntime.ConverseOutput, error)
}

// RuntimeBuilder creates a runtime client for a set of credentials.
type RuntimeBuilder func(ctx context.Context, credentials *providers.AwsCredentials) (ConverseAPI, error)

type client struct {
	clientPool *sync.Map
	build      RuntimeBuilder
}

type Option func(*client)

func WithRuntimeBuilder(b RuntimeBuilder) Option {
	return func(c *client) {
		c.build = b
	}
}

func NewBedrockClient(opts ...Option) providers.Client {
	c := &client{
		clientPool: &sync.Map{},
		build:      buildRuntimeClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Ask uses the model-agnostic Converse API, so any chat model enabled in the account works
// without per-family payload formats.
func (c *client) Ask(
	ctx context.Context,
	cfg *providers.Config,
	prompt string,
) (*providers.CompletionResponse, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required")
	}
	if cfg.Credentials.Aws == nil {
		return nil, fmt.Errorf("aws credentials are required")
	}

	runtime, err := c.getOrCreateClient(ctx, cfg.Credentials.Aws)
	if err != nil {
		return nil, err
	}

	input := &bedrockruntime.ConverseInput{
		ModelId: aws.String(cfg.Model),
		Messages: []types.Message{
			{
				Role:    types.ConversationRoleUser,
				Content: []types.ContentBlock{&types.ContentBlockMemberText{Value: prompt}},
			},
		},
	}
	if cfg.SystemPrompt != "" {
		input.System = append(input.System, &types.SystemContentBlockMemberText{Value: cfg.SystemPrompt})
	}
	if rules := providers.FormatInstructions(cfg.Instructions); rules != "" {
		input.System = append(input.System, &types.SystemContentBlockMemberText{
			Value: rules,
		})
	}
	if cfg.MaxTokens > 0 || cfg.Temperature > 0 {
		inference := &types.InferenceConfiguration{}
		if cfg.MaxTokens > 0 {
			inference.MaxTokens = aws.Int32(int32(cfg.MaxTokens)) // #nosec G115
		}
		if cfg.Temperature > 0 {
			inference.Temperature = aws.Float32(float32(cfg.Temperature))
		}
		input.InferenceConfig = inference
	}

	out, err := runtime.Converse(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("bedrock converse failed: %w", err)
	}

	msg, ok := out.Output.(*types.ConverseOutputMemberMessage)
	if !ok {
		return nil, fmt.Errorf("unexpected converse output %T", out.Output)
	}
	var b strings.Builder
	for _, block := range msg.Value.Content {
		if text, ok := block.(*types.ContentBlockMemberText); ok {
			b.WriteString(text.Value)
		}
	}
	if b.Len() == 0 {
		return nil, fmt.Errorf("no text content returned")
	}

	resp := &providers.CompletionResponse{
		Model:    cfg.Model,
		Response: b.String(),
	}
	if out.Usage != nil {
		resp.Usage = providers.Usage{
			PromptTokens:     int(aws.ToInt32(out.Usage.InputTokens)),
			CompletionTokens: int(aws.ToInt32(out.Usage.OutputTokens)),
			TotalTokens:      int(aws.ToInt32(out.Usage.TotalTokens)),
		}
	}
	return resp, nil
}

func (c *client) getOrCreateClient(ctx context.Context, credentials *providers.AwsCredentials) (ConverseAPI, error) {
	key := buildClientKey(credentials)
	if v, ok := c.clientPool.Load(key); ok {
		if runtime, ok := v.(ConverseAPI); ok {
			return runtime, nil
		}
	}
	runtime, err := c.build(ctx, credentials)
	if err != nil {
		return nil, fmt.Errorf("failed to build Bedrock client: %w", err)
	}
	c.clientPool.Store(key, runtime)
	return runtime, nil
}

func buildClientKey(credentials *providers.AwsCredentials) string {
	return fmt.Sprintf("%s:%s:%v:%s",
		credentials.AccessKey,
		credentials.Region,
		credentials.UseRole,
		credentials.RoleARN,
	)
}

func buildRuntimeClient(ctx context.Context, credentials *providers.AwsCredentials) (ConverseAPI, error) {
	cfg, err := buildAwsConfig(ctx, credentials)
	if err != nil {
		return nil, err
	}
	return bedrockruntime.NewFromConfig(cfg), nil
}

func buildAwsConfig(ctx context.Context, credentials *providers.AwsCredentials) (aws.Config, error) {
	region := credentials.Region
	if region == "" {
		region = defaultRegion
	}

	if credentials.UseRole && credentials.RoleARN != "" {
		creds, err := assumeRole(ctx, credentials, region)
		if err != nil {
			return aws.Config{}, err
		}
		return loadAWSConfig(ctx, *creds.AccessKeyId, *creds.SecretAccessKey, *creds.SessionToken, region)
	}
	return loadAWSConfig(ctx, credentials.AccessKey, credentials.SecretKey, credentials.SessionToken, region)
}

// loadAWSConfig falls back to the default credential chain when no static keys are given.
func loadAWSConfig(ctx context.Context, accessKey, secretKey, sessionToken, region string) (aws.Config, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if accessKey != "" && secretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(aws.CredentialsProviderFunc(
			func(ctx context.Context) (aws.Credentials, error) {
				return aws.Credentials{
					AccessKeyID:     accessKey,
					SecretAccessKey: secretKey,
					SessionToken:    sessionToken,
				}, nil
			},
		)))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return cfg, nil
}

func assumeRole(ctx context.Context, credentials *providers.AwsCredentials, region string) (*stsTypes.Credentials, error) {
	baseCfg, err := loadAWSConfig(ctx, credentials.AccessKey, credentials.SecretKey, credentials.SessionToken, region)
	if err != nil {
		return nil, fmt.Errorf("unable to load base AWS config: %w", err)
	}
	output, err := sts.NewFromConfig(baseCfg).AssumeRole(ctx, &sts.AssumeRoleInput{
		RoleArn:         aws.String(credentials.RoleARN),
		RoleSessionName: aws.String(defaultSessionName),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to assume role: %w", err)
	}
	return output.Credentials, nil
}
